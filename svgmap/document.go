// Package svgmap styles a vector map of India whose shapes carry region ids.
package svgmap

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"github.com/srivarshini-21/india-vaccination-dashboard/classify"
	"github.com/srivarshini-21/india-vaccination-dashboard/dataset"
	"github.com/srivarshini-21/india-vaccination-dashboard/highlight"
)

// GlowFilterID is the id of the filter applied to the emphasized region.
const GlowFilterID = "glow"

const glowFilter = `<filter id="` + GlowFilterID + `" x="-20%" y="-20%" width="140%" height="140%">` +
	`<feGaussianBlur stdDeviation="2.5" result="blur"></feGaussianBlur>` +
	`<feMerge><feMergeNode in="blur"></feMergeNode><feMergeNode in="SourceGraphic"></feMergeNode></feMerge>` +
	`</filter>`

// Region stroke colors.
const (
	StrokeNormal     = "#ffffff"
	StrokeEmphasized = "#1e40af"
)

// ErrNoSVG is returned when a map asset contains no <svg> element.
var ErrNoSVG = errors.New("map document has no <svg> element")

// RegionStyle is the presentation of one region shape.
type RegionStyle struct {
	Fill        string
	Stroke      string
	StrokeWidth int
	Filter      string
	Class       string
	Tier        string
}

// Styler returns the style of a region id; ok is false for ids that are not
// regions and must be left untouched.
type Styler func(id string) (style RegionStyle, ok bool)

// Style builds the styler for a classifier under a highlight state.
func Style(c *classify.Classifier, st highlight.State) Styler {
	active, hasActive := st.Emphasized()
	return func(id string) (RegionStyle, bool) {
		tier, ok := c.Region(id)
		if !ok {
			return RegionStyle{}, false
		}
		s := RegionStyle{
			Fill:        c.Color(tier),
			Stroke:      StrokeNormal,
			StrokeWidth: 1,
			Class:       "region",
			Tier:        tier.String(),
		}
		if hasActive && id == active {
			s.Stroke = StrokeEmphasized
			s.StrokeWidth = 2
			s.Filter = "url(#" + GlowFilterID + ")"
			s.Class = "region region-active"
		}
		return s, true
	}
}

// Document is a parsed map. Styling mutates the tree in place, so a document
// can be restyled for a new highlight state and rendered again.
type Document struct {
	doc *goquery.Document
	svg *goquery.Selection
}

// ParseDocument parses an SVG map, standalone or embedded in an HTML page.
func ParseDocument(data []byte) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse map: %w", err)
	}
	svg := doc.Find("svg").First()
	if svg.Length() == 0 {
		return nil, ErrNoSVG
	}
	return &Document{doc: doc, svg: svg}, nil
}

// shapes selects id-carrying elements outside <defs>.
func (d *Document) shapes() *goquery.Selection {
	return d.svg.Find("[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Closest("defs").Length() == 0
	})
}

// RegionIDs lists shape ids in document order without duplicates.
func (d *Document) RegionIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	d.shapes().Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	})
	return ids
}

// Apply styles every shape accepted by styler and returns how many elements
// were styled. Shapes that share an id are styled identically.
func (d *Document) Apply(styler Styler) int {
	d.ensureGlow()

	n := 0
	d.shapes().Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		style, ok := styler(id)
		if !ok {
			return
		}
		s.SetAttr("fill", style.Fill)
		s.SetAttr("stroke", style.Stroke)
		s.SetAttr("stroke-width", strconv.Itoa(style.StrokeWidth))
		if style.Filter != "" {
			s.SetAttr("filter", style.Filter)
		} else {
			s.RemoveAttr("filter")
		}
		s.SetAttr("class", style.Class)
		s.SetAttr("data-tier", style.Tier)
		n++
	})
	return n
}

func (d *Document) ensureGlow() {
	if d.svg.Find("filter#" + GlowFilterID).Length() > 0 {
		return
	}
	defs := d.svg.ChildrenFiltered("defs").First()
	if defs.Length() == 0 {
		d.svg.PrependHtml("<defs></defs>")
		defs = d.svg.ChildrenFiltered("defs").First()
	}
	defs.AppendHtml(glowFilter)
}

// Render serializes the <svg> element.
func (d *Document) Render() (string, error) {
	out, err := goquery.OuterHtml(d.svg)
	if err != nil {
		return "", fmt.Errorf("failed to render map: %w", err)
	}
	return out, nil
}

// MismatchReport lists ids present on one side only.
type MismatchReport struct {
	// MissingShapes are dataset regions the map does not draw.
	MissingShapes []string `json:"missingShapes,omitempty"`
	// UnknownShapes are map ids the dataset has no record for.
	UnknownShapes []string `json:"unknownShapes,omitempty"`
}

// Empty reports whether both sides agree.
func (m MismatchReport) Empty() bool {
	return len(m.MissingShapes) == 0 && len(m.UnknownShapes) == 0
}

// Mismatch compares the map's shape ids with the dataset keys.
func Mismatch(d *Document, ds *dataset.Dataset) MismatchReport {
	var r MismatchReport
	inMap := make(map[string]bool)
	for _, id := range d.RegionIDs() {
		inMap[id] = true
		if !ds.Has(id) {
			r.UnknownShapes = append(r.UnknownShapes, id)
		}
	}
	for _, id := range ds.IDs() {
		if !inMap[id] {
			r.MissingShapes = append(r.MissingShapes, id)
		}
	}
	return r
}
