package dataset

import (
	_ "embed"
	"fmt"
	"math"
)

//go:embed india.json
var defaultData []byte

// Record holds the vaccination counts of a single region.
// Overall drives classification and ranking; the other three counts are
// independently reported and are not expected to add up to Overall.
type Record struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Overall    int64  `json:"overall"`
	Total      int64  `json:"total"`
	Partial    int64  `json:"partial"`
	Precaution int64  `json:"precaution"`
}

// Issue describes a problem found while loading a dataset that did not stop
// the load.
type Issue struct {
	ID      string `json:"id,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	switch {
	case i.ID != "" && i.Field != "":
		return fmt.Sprintf("%s.%s: %s", i.ID, i.Field, i.Message)
	case i.ID != "":
		return fmt.Sprintf("%s: %s", i.ID, i.Message)
	default:
		return i.Message
	}
}

// Dataset is an immutable, insertion-ordered mapping from region id to Record.
type Dataset struct {
	records []Record
	index   map[string]int
}

// New builds a dataset from records. Later records with an already seen id
// are dropped and reported.
func New(records []Record) (*Dataset, []Issue) {
	d := &Dataset{
		records: make([]Record, 0, len(records)),
		index:   make(map[string]int, len(records)),
	}
	var issues []Issue
	for _, r := range records {
		if _, dup := d.index[r.ID]; dup {
			issues = append(issues, Issue{ID: r.ID, Message: "duplicate region id, keeping first occurrence"})
			continue
		}
		d.index[r.ID] = len(d.records)
		d.records = append(d.records, r)
	}
	return d, issues
}

// Default returns the embedded sample dataset.
func Default() (*Dataset, []Issue, error) {
	return Parse(defaultData)
}

func (d *Dataset) Get(id string) (Record, bool) {
	if d == nil {
		return Record{}, false
	}
	i, ok := d.index[id]
	if !ok {
		return Record{}, false
	}
	return d.records[i], true
}

func (d *Dataset) Has(id string) bool {
	if d == nil {
		return false
	}
	_, ok := d.index[id]
	return ok
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// Records returns a copy of all records in load order.
func (d *Dataset) Records() []Record {
	if d == nil {
		return nil
	}
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

// IDs returns region ids in load order.
func (d *Dataset) IDs() []string {
	if d == nil {
		return nil
	}
	ids := make([]string, len(d.records))
	for i, r := range d.records {
		ids[i] = r.ID
	}
	return ids
}

// Range returns the smallest and largest Overall value. Both are zero for an
// empty dataset.
func (d *Dataset) Range() (min, max int64) {
	if d.Len() == 0 {
		return 0, 0
	}
	min, max = d.records[0].Overall, d.records[0].Overall
	for _, r := range d.records[1:] {
		if r.Overall < min {
			min = r.Overall
		}
		if r.Overall > max {
			max = r.Overall
		}
	}
	return min, max
}

// TotalOverall sums Overall across all regions, saturating at
// math.MaxInt64.
func (d *Dataset) TotalOverall() int64 {
	var sum int64
	if d == nil {
		return 0
	}
	for _, r := range d.records {
		sum = AddCounts(sum, r.Overall)
	}
	return sum
}

// AddCounts adds two counts, saturating at the int64 limits instead of
// wrapping.
func AddCounts(a, b int64) int64 {
	s := a + b
	switch {
	case a > 0 && b > 0 && s < 0:
		return math.MaxInt64
	case a < 0 && b < 0 && s >= 0:
		return math.MinInt64
	}
	return s
}
