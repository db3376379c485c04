package output

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/srivarshini-21/india-vaccination-dashboard/classify"
	"github.com/srivarshini-21/india-vaccination-dashboard/dataset"
	"github.com/srivarshini-21/india-vaccination-dashboard/panels"
	"github.com/srivarshini-21/india-vaccination-dashboard/svgmap"
	"github.com/srivarshini-21/india-vaccination-dashboard/version"
)

// Report is the complete classification output of a dataset.
type Report struct {
	Metadata Metadata       `json:"metadata"`
	Summary  Summary        `json:"summary"`
	TopN     []string       `json:"top_n"`
	Regions  []RegionResult `json:"regions"`
	Warnings []Warning      `json:"warnings"`
	Errors   []Error        `json:"errors"`

	// Mutex for thread-safe warning/error appending
	mu sync.Mutex `json:"-"`
}

// Metadata contains information about the run
type Metadata struct {
	GeneratedAt   time.Time `json:"generated_at"`
	RunID         string    `json:"run_id"`
	Version       string    `json:"version"`
	DurationMS    int64     `json:"duration_ms"`
	DatasetSource string    `json:"dataset_source"`
	MapSource     string    `json:"map_source,omitempty"`
}

// Summary contains dataset-wide figures
type Summary struct {
	Regions    int              `json:"regions"`
	Min        int64            `json:"min_overall"`
	Max        int64            `json:"max_overall"`
	Thresholds Thresholds       `json:"thresholds"`
	TierCounts map[string]int   `json:"tier_counts"`
	Insights   panels.Insights  `json:"insights"`
	Legend     []LegendEntry    `json:"legend"`
	Breakdown  []BreakdownSlice `json:"national_breakdown"`
}

// Thresholds are the ratio cut points in effect
type Thresholds struct {
	VeryHigh float64 `json:"very_high"`
	High     float64 `json:"high"`
	Medium   float64 `json:"medium"`
}

// LegendEntry is one tier of the color scale
type LegendEntry struct {
	Tier  string `json:"tier"`
	Color string `json:"color"`
	Label string `json:"label"`
}

// BreakdownSlice is one dose category
type BreakdownSlice struct {
	Label   string  `json:"label"`
	Value   int64   `json:"value"`
	Percent float64 `json:"percent"`
}

// RegionResult is the classification of one region, in rank order
type RegionResult struct {
	Rank       int     `json:"rank"`
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Overall    int64   `json:"overall"`
	Total      int64   `json:"total"`
	Partial    int64   `json:"partial"`
	Precaution int64   `json:"precaution"`
	Ratio      float64 `json:"ratio"`
	Tier       string  `json:"tier"`
	Color      string  `json:"color"`
}

// Warning represents a warning message
type Warning struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// Error represents an error message
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// ReportInput is everything BuildReport reads.
type ReportInput struct {
	Dataset       *dataset.Dataset
	Issues        []dataset.Issue
	Mismatch      svgmap.MismatchReport
	Classifier    *classify.Classifier
	TopN          int
	Population    int64
	CampaignDays  int
	DatasetSource string
	MapSource     string
	RunID         string
	Start         time.Time
}

// NewReport creates an empty report with default metadata
func NewReport(runID string, startTime time.Time) *Report {
	return &Report{
		Metadata: Metadata{
			GeneratedAt: time.Now().UTC(),
			RunID:       runID,
			Version:     version.Version,
			DurationMS:  time.Since(startTime).Milliseconds(),
		},
		TopN:     []string{},
		Regions:  []RegionResult{},
		Warnings: []Warning{},
		Errors:   []Error{},
	}
}

// BuildReport classifies every region and collects load warnings.
func BuildReport(in ReportInput) *Report {
	r := NewReport(in.RunID, in.Start)
	r.Metadata.DatasetSource = in.DatasetSource
	if r.Metadata.DatasetSource == "" {
		r.Metadata.DatasetSource = "embedded"
	}
	r.Metadata.MapSource = in.MapSource

	c := in.Classifier
	scale := c.Scale()
	th := scale.Thresholds
	r.Summary = Summary{
		Regions:    in.Dataset.Len(),
		Min:        c.Min(),
		Max:        c.Max(),
		Thresholds: Thresholds{VeryHigh: th.VeryHigh, High: th.High, Medium: th.Medium},
		TierCounts: make(map[string]int, len(classify.Tiers)),
		Insights:   panels.ComputeInsights(in.Dataset, in.Population, in.CampaignDays),
	}
	for _, tier := range classify.Tiers {
		r.Summary.TierCounts[tier.String()] = 0
	}
	for _, e := range panels.Legend(scale) {
		r.Summary.Legend = append(r.Summary.Legend, LegendEntry{Tier: e.Tier.String(), Color: e.Color, Label: e.Label})
	}
	for _, s := range panels.Breakdown(NationalRecord(in.Dataset)) {
		r.Summary.Breakdown = append(r.Summary.Breakdown, BreakdownSlice{Label: s.Label, Value: s.Value, Percent: s.Percent})
	}

	for _, bar := range panels.Summary(in.Dataset, 0) {
		rec := bar.Record
		tier, _ := c.Region(rec.ID)
		r.Summary.TierCounts[tier.String()]++
		r.Regions = append(r.Regions, RegionResult{
			Rank:       bar.Rank,
			ID:         rec.ID,
			Name:       rec.Name,
			Overall:    rec.Overall,
			Total:      rec.Total,
			Partial:    rec.Partial,
			Precaution: rec.Precaution,
			Ratio:      c.Ratio(rec.Overall),
			Tier:       tier.String(),
			Color:      c.Color(tier),
		})
	}
	for _, bar := range panels.Summary(in.Dataset, in.TopN) {
		r.TopN = append(r.TopN, bar.Record.ID)
	}

	for _, issue := range in.Issues {
		r.AddWarning("dataset", issue.String(), 0)
	}
	if n := len(in.Mismatch.MissingShapes); n > 0 {
		r.AddWarning("map_missing_shape", fmt.Sprintf("regions without a map shape: %v", in.Mismatch.MissingShapes), n)
	}
	if n := len(in.Mismatch.UnknownShapes); n > 0 {
		r.AddWarning("map_unknown_shape", fmt.Sprintf("map shapes without a dataset record: %v", in.Mismatch.UnknownShapes), n)
	}

	r.UpdateDuration(in.Start)
	return r
}

// NationalRecord sums every region into one record.
func NationalRecord(ds *dataset.Dataset) dataset.Record {
	nat := dataset.Record{ID: "IN", Name: "All regions"}
	for _, rec := range ds.Records() {
		nat.Overall = dataset.AddCounts(nat.Overall, rec.Overall)
		nat.Total = dataset.AddCounts(nat.Total, rec.Total)
		nat.Partial = dataset.AddCounts(nat.Partial, rec.Partial)
		nat.Precaution = dataset.AddCounts(nat.Precaution, rec.Precaution)
	}
	return nat
}

// ToJSON converts the report to pretty-printed JSON
func (r *Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// ToCompactJSON converts the report to compact JSON
func (r *Report) ToCompactJSON() ([]byte, error) {
	return json.Marshal(r)
}

// AddWarning adds a warning to the report (thread-safe)
func (r *Report) AddWarning(warningType, message string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Warnings = append(r.Warnings, Warning{
		Type:    warningType,
		Message: message,
		Count:   count,
	})
}

// AddError adds an error to the report (thread-safe)
func (r *Report) AddError(errorType, message string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, Error{
		Type:    errorType,
		Message: message,
		Count:   count,
	})
}

// UpdateDuration updates the duration in metadata
func (r *Report) UpdateDuration(startTime time.Time) {
	r.Metadata.DurationMS = time.Since(startTime).Milliseconds()
}
