package classify

import (
	"fmt"

	"github.com/alphadose/haxmap"
	"github.com/srivarshini-21/india-vaccination-dashboard/dataset"
)

// Tier is an ordered coverage bucket. Higher values mean higher coverage.
type Tier int

const (
	Low Tier = iota
	Medium
	High
	VeryHigh
)

// Tiers lists every tier from highest to lowest coverage.
var Tiers = []Tier{VeryHigh, High, Medium, Low}

func (t Tier) String() string {
	switch t {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	case VeryHigh:
		return "very high"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// Thresholds are the exclusive lower ratio bounds of the upper three tiers.
type Thresholds struct {
	VeryHigh float64
	High     float64
	Medium   float64
}

// DefaultThresholds are the cut points used by the dashboard.
var DefaultThresholds = Thresholds{VeryHigh: 0.7, High: 0.4, Medium: 0.2}

// Validate checks that thresholds are strictly descending inside (0, 1).
func (th Thresholds) Validate() error {
	if !(th.VeryHigh < 1 && th.VeryHigh > th.High && th.High > th.Medium && th.Medium > 0) {
		return fmt.Errorf("thresholds must satisfy 1 > veryHigh > high > medium > 0, got %.3f/%.3f/%.3f",
			th.VeryHigh, th.High, th.Medium)
	}
	return nil
}

// Scale couples thresholds with a display color per tier.
type Scale struct {
	Thresholds Thresholds
	Colors     map[Tier]string
}

// DefaultScale returns the dashboard's standard red→green scale.
func DefaultScale() Scale {
	return Scale{
		Thresholds: DefaultThresholds,
		Colors: map[Tier]string{
			VeryHigh: "#15803d",
			High:     "#22c55e",
			Medium:   "#facc15",
			Low:      "#dc2626",
		},
	}
}

// Color returns the display color of a tier, falling back to the default
// scale when the tier has no configured color.
func (s Scale) Color(t Tier) string {
	if c, ok := s.Colors[t]; ok && c != "" {
		return c
	}
	return DefaultScale().Colors[t]
}

// Ratio normalizes value into [0, 1] against [min, max]. A degenerate range
// yields 0.
func Ratio(value, min, max int64) float64 {
	if max <= min {
		return 0
	}
	r := float64(value-min) / float64(max-min)
	switch {
	case r < 0:
		return 0
	case r > 1:
		return 1
	}
	return r
}

// Classify maps value to a tier relative to the dataset range [min, max].
func Classify(value, min, max int64, th Thresholds) Tier {
	return tierFor(Ratio(value, min, max), th)
}

func tierFor(ratio float64, th Thresholds) Tier {
	switch {
	case ratio > th.VeryHigh:
		return VeryHigh
	case ratio > th.High:
		return High
	case ratio > th.Medium:
		return Medium
	default:
		return Low
	}
}

// Classifier classifies regions of one dataset. The range is computed once and
// per-region tiers are memoized.
type Classifier struct {
	ds    *dataset.Dataset
	scale Scale
	min   int64
	max   int64
	memo  *haxmap.Map[string, Tier]
}

// New builds a classifier for ds.
func New(ds *dataset.Dataset, scale Scale) *Classifier {
	min, max := ds.Range()
	return &Classifier{
		ds:    ds,
		scale: scale,
		min:   min,
		max:   max,
		memo:  haxmap.New[string, Tier](uintptr(maxInt(ds.Len(), 8))),
	}
}

func (c *Classifier) Min() int64 { return c.min }

func (c *Classifier) Max() int64 { return c.max }

func (c *Classifier) Scale() Scale { return c.scale }

// Ratio returns the normalized position of value in the dataset range.
func (c *Classifier) Ratio(value int64) float64 {
	return Ratio(value, c.min, c.max)
}

// Classify returns the tier of an arbitrary count.
func (c *Classifier) Classify(value int64) Tier {
	return Classify(value, c.min, c.max, c.scale.Thresholds)
}

// Color returns the display color of a tier.
func (c *Classifier) Color(t Tier) string {
	return c.scale.Color(t)
}

// Region returns the tier of a dataset region; ok is false for unknown ids.
func (c *Classifier) Region(id string) (Tier, bool) {
	if t, ok := c.memo.Get(id); ok {
		return t, true
	}
	rec, ok := c.ds.Get(id)
	if !ok {
		return Low, false
	}
	t := c.Classify(rec.Overall)
	c.memo.Set(id, t)
	return t, true
}

// RegionColor is Region followed by Color.
func (c *Classifier) RegionColor(id string) (string, bool) {
	t, ok := c.Region(id)
	if !ok {
		return "", false
	}
	return c.Color(t), true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
