package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Numeric fields of a record, in the order they are reported.
var countFields = []string{"overall", "total", "partial", "precaution"}

// Parse decodes a JSON object of the form
//
//	{"IN-MH": {"name": "Maharashtra", "overall": 1, "total": 1, "partial": 0, "precaution": 0}, ...}
//
// keeping the key order of the document. Only a document that is not a JSON
// object is an error; malformed records are loaded with zeroed fields and
// reported as issues.
func Parse(data []byte) (*Dataset, []Issue, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("reading dataset: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, errors.New("dataset must be a JSON object keyed by region id")
	}

	var records []Record
	var issues []Issue
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("reading region id: %w", err)
		}
		id, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, fmt.Errorf("reading region %q: %w", id, err)
		}

		rec, recIssues := parseRecord(id, raw)
		records = append(records, rec)
		issues = append(issues, recIssues...)
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, fmt.Errorf("reading end of dataset: %w", err)
	}

	issues = append(issues, validateSchema(data, issues)...)

	ds, dupIssues := New(records)
	issues = append(issues, dupIssues...)
	return ds, issues, nil
}

func parseRecord(id string, raw json.RawMessage) (Record, []Issue) {
	rec := Record{ID: id, Name: id}
	var issues []Issue

	var fields map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil || fields == nil {
		issues = append(issues, Issue{ID: id, Message: "record is not an object, counts default to 0"})
		return rec, issues
	}

	if v, ok := fields["name"]; ok {
		if name, ok := v.(string); ok && strings.TrimSpace(name) != "" {
			rec.Name = name
		} else {
			issues = append(issues, Issue{ID: id, Field: "name", Message: "invalid name, using region id"})
		}
	} else {
		issues = append(issues, Issue{ID: id, Field: "name", Message: "missing name, using region id"})
	}

	targets := map[string]*int64{
		"overall":    &rec.Overall,
		"total":      &rec.Total,
		"partial":    &rec.Partial,
		"precaution": &rec.Precaution,
	}
	for _, field := range countFields {
		v, present := fields[field]
		if !present {
			issues = append(issues, Issue{ID: id, Field: field, Message: "missing, defaulting to 0"})
			continue
		}
		n, msg := toCount(v)
		*targets[field] = n
		if msg != "" {
			issues = append(issues, Issue{ID: id, Field: field, Message: msg})
		}
	}
	return rec, issues
}

// toCount coerces a decoded JSON value into a non-negative count. The returned
// message is empty when the value was already a valid count.
func toCount(v any) (int64, string) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			if n < 0 {
				return 0, "negative count, defaulting to 0"
			}
			return n, ""
		}
		f, err := t.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, "not a number, defaulting to 0"
		}
		return floatCount(f)
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(t), ",", "")
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			if n < 0 {
				return 0, "negative count, defaulting to 0"
			}
			return n, "count given as string"
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			n, msg := floatCount(f)
			if msg == "" {
				msg = "count given as string"
			}
			return n, msg
		}
		return 0, "not a number, defaulting to 0"
	case nil:
		return 0, "null count, defaulting to 0"
	default:
		return 0, "not a number, defaulting to 0"
	}
}

func floatCount(f float64) (int64, string) {
	if f < 0 {
		return 0, "negative count, defaulting to 0"
	}
	if f >= math.MaxInt64 {
		return 0, "count out of range, defaulting to 0"
	}
	if f != math.Trunc(f) {
		return int64(f), "fractional count truncated"
	}
	return int64(f), ""
}
