package dataset

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const recordSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": {
    "type": "object",
    "required": ["name", "overall", "total", "partial", "precaution"],
    "additionalProperties": false,
    "properties": {
      "name":       {"type": "string", "minLength": 1},
      "overall":    {"type": "integer", "minimum": 0},
      "total":      {"type": "integer", "minimum": 0},
      "partial":    {"type": "integer", "minimum": 0},
      "precaution": {"type": "integer", "minimum": 0}
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(recordSchema)

// validateSchema checks the raw document against the dataset schema.
// Violations on a record or field that already has an issue in reported are
// dropped. Problems are returned as issues only; loading continues regardless.
func validateSchema(data []byte, reported []Issue) []Issue {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return []Issue{{Message: fmt.Sprintf("schema check skipped: %v", err)}}
	}
	if result.Valid() {
		return nil
	}

	seen := make(map[[2]string]bool, len(reported))
	for _, is := range reported {
		seen[[2]string{is.ID, is.Field}] = true
	}

	var issues []Issue
	for _, e := range result.Errors() {
		id, field := schemaLocation(e)
		if seen[[2]string{id, ""}] || seen[[2]string{id, field}] {
			continue
		}
		seen[[2]string{id, field}] = true
		issues = append(issues, Issue{
			ID:      id,
			Field:   field,
			Message: "schema: " + e.Description(),
		})
	}
	return issues
}

// schemaLocation returns the region id and field a schema error points at.
// Errors reported on the record itself (missing or extra properties) name the
// property in their details.
func schemaLocation(e gojsonschema.ResultError) (id, field string) {
	path := strings.Split(e.Context().String("\x00"), "\x00")
	if len(path) > 1 {
		id = path[1]
	}
	if len(path) > 2 {
		field = path[2]
	}
	if field == "" && id != "" {
		if p, ok := e.Details()["property"].(string); ok {
			field = p
		}
	}
	return id, field
}
