// Package panels computes the data behind the dashboard's charts: the ranked
// summary bars, the per-region breakdown, the legend and the insights panel.
// Rendering is left to the terminal UI and the HTML export.
package panels

import (
	"sort"

	"github.com/srivarshini-21/india-vaccination-dashboard/dataset"
	"github.com/srivarshini-21/india-vaccination-dashboard/highlight"
)

// Bar is one entry of the ranked summary chart.
type Bar struct {
	Rank   int
	Record dataset.Record
}

// Summary ranks regions by Overall, highest first. Ties keep dataset order.
// topN bounds the result; zero or a negative value returns every region.
func Summary(ds *dataset.Dataset, topN int) []Bar {
	recs := ds.Records()
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Overall > recs[j].Overall
	})
	if topN > 0 && topN < len(recs) {
		recs = recs[:topN]
	}
	bars := make([]Bar, len(recs))
	for i, r := range recs {
		bars[i] = Bar{Rank: i + 1, Record: r}
	}
	return bars
}

// RankedIDs returns every region id in summary order.
func RankedIDs(ds *dataset.Dataset) []string {
	bars := Summary(ds, 0)
	ids := make([]string, len(bars))
	for i, b := range bars {
		ids[i] = b.Record.ID
	}
	return ids
}

// EmphasisLevel is how a chart entry is drawn under the current highlight.
type EmphasisLevel int

const (
	Normal EmphasisLevel = iota
	Highlighted
	Dimmed
)

func (e EmphasisLevel) String() string {
	switch e {
	case Highlighted:
		return "highlighted"
	case Dimmed:
		return "dimmed"
	default:
		return "normal"
	}
}

// Emphasis returns the level of entry id. With no emphasized region every
// entry is Normal; otherwise only the emphasized entry is Highlighted and all
// others are Dimmed.
func Emphasis(id string, st highlight.State) EmphasisLevel {
	active, ok := st.Emphasized()
	switch {
	case !ok:
		return Normal
	case id == active:
		return Highlighted
	default:
		return Dimmed
	}
}

// Bar colors per emphasis level.
const (
	BarColor            = "#10b981"
	BarHighlightedColor = "#3b82f6"
	BarDimmedColor      = "rgba(16, 185, 129, 0.3)"
)

// BarFill returns the bar color of a level.
func BarFill(e EmphasisLevel) string {
	switch e {
	case Highlighted:
		return BarHighlightedColor
	case Dimmed:
		return BarDimmedColor
	default:
		return BarColor
	}
}
