package svgmap

import (
	"fmt"
	"html"
	"strings"

	"github.com/srivarshini-21/india-vaccination-dashboard/dataset"
)

// Tile is one region cell of the tile cartogram.
type Tile struct {
	ID  string
	Col int
	Row int
}

// Abbr is the short label drawn on the tile.
func (t Tile) Abbr() string {
	return strings.TrimPrefix(t.ID, "IN-")
}

// Layout is a grid cartogram where every region occupies one cell.
type Layout struct {
	Cols  int
	Rows  int
	Tiles []Tile

	byID  map[string]int
	byPos map[[2]int]int
}

// NewLayout indexes tiles. Tiles outside the grid or on an occupied cell are
// rejected.
func NewLayout(cols, rows int, tiles []Tile) (*Layout, error) {
	l := &Layout{
		Cols:  cols,
		Rows:  rows,
		Tiles: make([]Tile, 0, len(tiles)),
		byID:  make(map[string]int, len(tiles)),
		byPos: make(map[[2]int]int, len(tiles)),
	}
	for _, t := range tiles {
		if t.Col < 0 || t.Col >= cols || t.Row < 0 || t.Row >= rows {
			return nil, fmt.Errorf("tile %s at (%d,%d) is outside the %dx%d grid", t.ID, t.Col, t.Row, cols, rows)
		}
		pos := [2]int{t.Col, t.Row}
		if other, taken := l.byPos[pos]; taken {
			return nil, fmt.Errorf("tile %s overlaps %s at (%d,%d)", t.ID, l.Tiles[other].ID, t.Col, t.Row)
		}
		if _, dup := l.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate tile %s", t.ID)
		}
		l.byID[t.ID] = len(l.Tiles)
		l.byPos[pos] = len(l.Tiles)
		l.Tiles = append(l.Tiles, t)
	}
	return l, nil
}

// Lookup returns the tile of a region.
func (l *Layout) Lookup(id string) (Tile, bool) {
	i, ok := l.byID[id]
	if !ok {
		return Tile{}, false
	}
	return l.Tiles[i], true
}

// At returns the tile drawn at a grid cell.
func (l *Layout) At(col, row int) (Tile, bool) {
	i, ok := l.byPos[[2]int{col, row}]
	if !ok {
		return Tile{}, false
	}
	return l.Tiles[i], true
}

var indiaTiles = []Tile{
	{"IN-JK", 3, 0}, {"IN-LA", 4, 0},
	{"IN-CH", 1, 1}, {"IN-PB", 2, 1}, {"IN-HP", 3, 1}, {"IN-UT", 4, 1},
	{"IN-RJ", 1, 2}, {"IN-HR", 2, 2}, {"IN-DL", 3, 2}, {"IN-UP", 4, 2}, {"IN-SK", 6, 2}, {"IN-AR", 8, 2},
	{"IN-GJ", 0, 3}, {"IN-MP", 2, 3}, {"IN-BR", 5, 3}, {"IN-ML", 6, 3}, {"IN-AS", 7, 3}, {"IN-NL", 8, 3},
	{"IN-DH", 0, 4}, {"IN-MH", 1, 4}, {"IN-CT", 3, 4}, {"IN-JH", 4, 4}, {"IN-WB", 5, 4}, {"IN-TR", 6, 4}, {"IN-MZ", 7, 4}, {"IN-MN", 8, 4},
	{"IN-GA", 1, 5}, {"IN-TG", 2, 5}, {"IN-OR", 3, 5},
	{"IN-KA", 1, 6}, {"IN-AP", 2, 6},
	{"IN-LD", 0, 7}, {"IN-KL", 1, 7}, {"IN-TN", 2, 7}, {"IN-PY", 3, 7}, {"IN-AN", 6, 7},
}

// IndiaLayout returns the tile cartogram of the 36 states and union
// territories.
func IndiaLayout() *Layout {
	l, err := NewLayout(9, 8, indiaTiles)
	if err != nil {
		panic(err)
	}
	return l
}

// Schematic tile geometry in SVG user units.
const (
	tileSize = 56
	tileGap  = 4
)

// Schematic draws the layout as an SVG document with one <rect> per dataset
// region. It is the map used when no map asset is configured.
func Schematic(l *Layout, ds *dataset.Dataset) []byte {
	pitch := tileSize + tileGap
	w := l.Cols*pitch + tileGap
	h := l.Rows*pitch + tileGap

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d" role="img" aria-label="India vaccination coverage">`, w, h, w, h)
	b.WriteString("\n")
	for _, t := range l.Tiles {
		rec, ok := ds.Get(t.ID)
		if !ok {
			continue
		}
		x := tileGap + t.Col*pitch
		y := tileGap + t.Row*pitch
		fmt.Fprintf(&b, `<g class="tile"><rect id="%s" x="%d" y="%d" width="%d" height="%d" rx="6" fill="#e5e7eb"><title>%s</title></rect>`,
			html.EscapeString(t.ID), x, y, tileSize, tileSize, html.EscapeString(rec.Name))
		fmt.Fprintf(&b, `<text x="%d" y="%d" text-anchor="middle" dominant-baseline="middle" font-size="14" pointer-events="none">%s</text></g>`,
			x+tileSize/2, y+tileSize/2, html.EscapeString(t.Abbr()))
		b.WriteString("\n")
	}
	b.WriteString("</svg>\n")
	return []byte(b.String())
}
