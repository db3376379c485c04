package panels

import (
	"fmt"

	"github.com/srivarshini-21/india-vaccination-dashboard/classify"
	"github.com/srivarshini-21/india-vaccination-dashboard/dataset"
)

// Slice is one category of a region's dose breakdown.
type Slice struct {
	Label   string
	Value   int64
	Percent float64
	Color   string
}

// Breakdown slice colors.
const (
	PartialColor    = "#60a5fa"
	FullyColor      = "#22c55e"
	PrecautionColor = "#facc15"
)

// Breakdown splits a record into partial, fully and precaution slices. The
// percentages are shares of the three slices' own sum, not of Overall.
func Breakdown(r dataset.Record) []Slice {
	slices := []Slice{
		{Label: "Partially Vaccinated", Value: r.Partial, Color: PartialColor},
		{Label: "Fully Vaccinated", Value: r.Total, Color: FullyColor},
		{Label: "Precaution Dose", Value: r.Precaution, Color: PrecautionColor},
	}
	sum := BreakdownTotal(r)
	if sum == 0 {
		return slices
	}
	for i := range slices {
		slices[i].Percent = float64(slices[i].Value) * 100 / float64(sum)
	}
	return slices
}

// BreakdownTotal is the "Total Vaccinated" figure shown under the breakdown.
func BreakdownTotal(r dataset.Record) int64 {
	return dataset.AddCounts(dataset.AddCounts(r.Partial, r.Total), r.Precaution)
}

// LegendEntry describes one tier of the color scale.
type LegendEntry struct {
	Tier  classify.Tier
	Color string
	Label string
	// Ratio bounds within the dataset range; From is exclusive except for the
	// lowest tier.
	From, To float64
}

// Legend lists the scale's tiers from highest to lowest coverage.
func Legend(s classify.Scale) []LegendEntry {
	th := s.Thresholds
	bounds := map[classify.Tier][2]float64{
		classify.VeryHigh: {th.VeryHigh, 1},
		classify.High:     {th.High, th.VeryHigh},
		classify.Medium:   {th.Medium, th.High},
		classify.Low:      {0, th.Medium},
	}
	entries := make([]LegendEntry, 0, len(classify.Tiers))
	for _, tier := range classify.Tiers {
		b := bounds[tier]
		entries = append(entries, LegendEntry{
			Tier:  tier,
			Color: s.Color(tier),
			Label: fmt.Sprintf("%s (%.0f%%-%.0f%%)", titleTier(tier), b[0]*100, b[1]*100),
			From:  b[0],
			To:    b[1],
		})
	}
	return entries
}

func titleTier(t classify.Tier) string {
	switch t {
	case classify.VeryHigh:
		return "Very High"
	case classify.High:
		return "High"
	case classify.Medium:
		return "Medium"
	default:
		return "Low"
	}
}
