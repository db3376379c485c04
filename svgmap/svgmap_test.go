package svgmap

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/srivarshini-21/india-vaccination-dashboard/classify"
	"github.com/srivarshini-21/india-vaccination-dashboard/dataset"
	"github.com/srivarshini-21/india-vaccination-dashboard/highlight"
)

func smallDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, issues := dataset.New([]dataset.Record{
		{ID: "A", Name: "Alpha", Overall: 100},
		{ID: "B", Name: "Beta", Overall: 50},
		{ID: "C", Name: "Gamma", Overall: 200},
	})
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
	return ds
}

func defaultDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, _, err := dataset.Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	return ds
}

func attr(t *testing.T, d *Document, id, name string) (string, bool) {
	t.Helper()
	sel := d.svg.Find("#" + id).First()
	if sel.Length() == 0 {
		t.Fatalf("no element with id %s", id)
	}
	return sel.Attr(name)
}

func TestParseDocumentWithoutSVG(t *testing.T) {
	_, err := ParseDocument([]byte("<div>no map here</div>"))
	if !errors.Is(err, ErrNoSVG) {
		t.Errorf("error = %v, want ErrNoSVG", err)
	}
}

func TestParseDocumentEmbeddedInHTML(t *testing.T) {
	page := `<html><body><h1>Map</h1><svg viewBox="0 0 10 10"><path id="A" d="M0 0"></path></svg></body></html>`
	d, err := ParseDocument([]byte(page))
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	if got := d.RegionIDs(); !reflect.DeepEqual(got, []string{"A"}) {
		t.Errorf("RegionIDs() = %v", got)
	}
}

func TestApplyStylesRegions(t *testing.T) {
	ds := smallDataset(t)
	c := classify.New(ds, classify.DefaultScale())
	svg := `<svg><path id="A" d="M0 0"></path><path id="B" d="M1 1"></path><path id="C" d="M2 2"></path><path id="sea" d="M3 3"></path></svg>`
	d, err := ParseDocument([]byte(svg))
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}

	n := d.Apply(Style(c, highlight.State{Mode: highlight.Pinned, Region: "A"}))
	if n != 3 {
		t.Errorf("Apply styled %d elements, want 3", n)
	}

	tests := []struct {
		id, name, want string
	}{
		{"A", "fill", "#facc15"},
		{"A", "stroke", StrokeEmphasized},
		{"A", "stroke-width", "2"},
		{"A", "filter", "url(#glow)"},
		{"A", "data-tier", "medium"},
		{"B", "fill", "#dc2626"},
		{"B", "stroke", StrokeNormal},
		{"B", "stroke-width", "1"},
		{"C", "fill", "#15803d"},
		{"C", "data-tier", "very high"},
	}
	for _, tt := range tests {
		if got, _ := attr(t, d, tt.id, tt.name); got != tt.want {
			t.Errorf("%s %s = %q, want %q", tt.id, tt.name, got, tt.want)
		}
	}
	if _, ok := attr(t, d, "B", "filter"); ok {
		t.Error("non-emphasized region should have no filter")
	}
	if _, ok := attr(t, d, "sea", "fill"); ok {
		t.Error("non-region shape should be left untouched")
	}
}

func TestApplyRestyleMovesEmphasis(t *testing.T) {
	ds := smallDataset(t)
	c := classify.New(ds, classify.DefaultScale())
	d, err := ParseDocument([]byte(`<svg><rect id="A"></rect><rect id="B"></rect></svg>`))
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}

	d.Apply(Style(c, highlight.State{Mode: highlight.Hovering, Region: "A"}))
	d.Apply(Style(c, highlight.State{Mode: highlight.Hovering, Region: "B"}))

	if _, ok := attr(t, d, "A", "filter"); ok {
		t.Error("A kept its glow after emphasis moved")
	}
	if got, _ := attr(t, d, "B", "filter"); got != "url(#glow)" {
		t.Errorf("B filter = %q", got)
	}

	d.Apply(Style(c, highlight.State{}))
	if got, _ := attr(t, d, "B", "stroke"); got != StrokeNormal {
		t.Errorf("idle stroke = %q", got)
	}
}

func TestApplyInjectsGlowOnce(t *testing.T) {
	ds := smallDataset(t)
	c := classify.New(ds, classify.DefaultScale())
	tests := []struct {
		name string
		svg  string
	}{
		{"no defs", `<svg><rect id="A"></rect></svg>`},
		{"existing defs", `<svg><defs><linearGradient id="grad"></linearGradient></defs><rect id="A"></rect></svg>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDocument([]byte(tt.svg))
			if err != nil {
				t.Fatalf("ParseDocument() error = %v", err)
			}
			for i := 0; i < 3; i++ {
				d.Apply(Style(c, highlight.State{Mode: highlight.Pinned, Region: "A"}))
			}
			out, err := d.Render()
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if got := strings.Count(out, `id="glow"`); got != 1 {
				t.Errorf("glow filter appears %d times in %s", got, out)
			}
			if got := strings.Count(out, "<defs>"); got != 1 {
				t.Errorf("defs appears %d times in %s", got, out)
			}
			if !strings.HasPrefix(out, "<svg") || strings.Count(out, "<svg") != 1 {
				t.Errorf("render is not a single svg element: %s", out)
			}
			for _, id := range d.RegionIDs() {
				if id == "grad" || id == GlowFilterID {
					t.Errorf("RegionIDs() includes definition %q", id)
				}
			}
		})
	}
}

func TestApplyRepeatedIDs(t *testing.T) {
	ds := smallDataset(t)
	c := classify.New(ds, classify.DefaultScale())
	d, err := ParseDocument([]byte(`<svg><path id="C" d="M0 0"></path><path id="C" d="M5 5"></path></svg>`))
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	if n := d.Apply(Style(c, highlight.State{})); n != 2 {
		t.Errorf("Apply styled %d elements, want 2", n)
	}
	d.svg.Find("#C").Each(func(i int, s *goquery.Selection) {
		if fill, _ := s.Attr("fill"); fill != "#15803d" {
			t.Errorf("copy %d fill = %q", i, fill)
		}
	})
	if got := d.RegionIDs(); !reflect.DeepEqual(got, []string{"C"}) {
		t.Errorf("RegionIDs() = %v, want [C]", got)
	}
}

func TestMismatch(t *testing.T) {
	ds := smallDataset(t)
	d, err := ParseDocument([]byte(`<svg><path id="A"></path><path id="X"></path><path id="C"></path></svg>`))
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	got := Mismatch(d, ds)
	want := MismatchReport{MissingShapes: []string{"B"}, UnknownShapes: []string{"X"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Mismatch() = %+v, want %+v", got, want)
	}
	if got.Empty() {
		t.Error("Empty() = true for a mismatch")
	}
}

func TestSchematicCoversDefaultDataset(t *testing.T) {
	ds := defaultDataset(t)
	d, err := ParseDocument(Schematic(IndiaLayout(), ds))
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	if m := Mismatch(d, ds); !m.Empty() {
		t.Errorf("schematic mismatch: %+v", m)
	}
	c := classify.New(ds, classify.DefaultScale())
	if n := d.Apply(Style(c, highlight.State{})); n != ds.Len() {
		t.Errorf("Apply styled %d tiles, want %d", n, ds.Len())
	}
}

func TestSchematicSkipsRegionsWithoutRecord(t *testing.T) {
	ds := smallDataset(t)
	l, err := NewLayout(2, 1, []Tile{{"A", 0, 0}, {"Z", 1, 0}})
	if err != nil {
		t.Fatalf("NewLayout() error = %v", err)
	}
	d, err := ParseDocument(Schematic(l, ds))
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	if got := d.RegionIDs(); !reflect.DeepEqual(got, []string{"A"}) {
		t.Errorf("RegionIDs() = %v, want [A]", got)
	}
}

func TestLayout(t *testing.T) {
	l := IndiaLayout()
	if len(l.Tiles) != 36 {
		t.Fatalf("India layout has %d tiles, want 36", len(l.Tiles))
	}
	if tile, ok := l.At(3, 2); !ok || tile.ID != "IN-DL" {
		t.Errorf("At(3,2) = %+v, %v", tile, ok)
	}
	if _, ok := l.At(0, 0); ok {
		t.Error("At(0,0) should be empty")
	}
	if tile, ok := l.Lookup("IN-KL"); !ok || tile.Col != 1 || tile.Row != 7 || tile.Abbr() != "KL" {
		t.Errorf("Lookup(IN-KL) = %+v, %v", tile, ok)
	}
}

func TestNewLayoutRejectsBadTiles(t *testing.T) {
	tests := []struct {
		name  string
		tiles []Tile
	}{
		{"outside", []Tile{{"A", 5, 0}}},
		{"negative", []Tile{{"A", -1, 0}}},
		{"overlap", []Tile{{"A", 0, 0}, {"B", 0, 0}}},
		{"duplicate", []Tile{{"A", 0, 0}, {"A", 1, 0}}},
	}
	for _, tt := range tests {
		if _, err := NewLayout(2, 2, tt.tiles); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}
