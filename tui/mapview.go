package tui

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/srivarshini-21/india-vaccination-dashboard/classify"
	"github.com/srivarshini-21/india-vaccination-dashboard/dataset"
	"github.com/srivarshini-21/india-vaccination-dashboard/highlight"
	"github.com/srivarshini-21/india-vaccination-dashboard/placement"
	"github.com/srivarshini-21/india-vaccination-dashboard/svgmap"
)

// Tile size in terminal cells
const (
	tileWidth  = 5
	tileHeight = 2
)

// MapView draws the tile map of the regions and maps screen cells back to
// region ids.
type MapView struct {
	*tview.Box

	layout *svgmap.Layout

	mu         sync.RWMutex
	ds         *dataset.Dataset
	classifier *classify.Classifier
	state      highlight.State
}

// NewMapView creates an empty map for the given layout
func NewMapView(l *svgmap.Layout) *MapView {
	m := &MapView{
		Box:    tview.NewBox(),
		layout: l,
	}
	m.SetBorder(true).SetTitle(" Coverage Map ").SetTitleAlign(tview.AlignLeft)
	return m
}

// Width is the number of columns the map needs including its border.
func (m *MapView) Width() int {
	return m.layout.Cols*tileWidth + 2
}

// Height is the number of rows the map needs including its border.
func (m *MapView) Height() int {
	return m.layout.Rows*tileHeight + 2
}

// SetData sets the dataset and classifier the tiles are colored from
func (m *MapView) SetData(ds *dataset.Dataset, c *classify.Classifier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ds = ds
	m.classifier = c
}

// SetState sets the highlight the map is drawn with
func (m *MapView) SetState(st highlight.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = st
}

// Draw draws the tiles of every region that has a record.
func (m *MapView) Draw(screen tcell.Screen) {
	m.Box.DrawForSubclass(screen, m)

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ds == nil || m.classifier == nil {
		return
	}

	ix, iy, iw, ih := m.GetInnerRect()
	active, hasActive := m.state.Emphasized()

	for _, tile := range m.layout.Tiles {
		if !m.ds.Has(tile.ID) {
			continue
		}
		x0 := ix + tile.Col*tileWidth
		y0 := iy + tile.Row*tileHeight
		if x0+tileWidth > ix+iw || y0+tileHeight > iy+ih {
			continue
		}

		color, _ := m.classifier.RegionColor(tile.ID)
		style := tcell.StyleDefault.
			Background(tcell.GetColor(color)).
			Foreground(tcell.ColorBlack)
		if hasActive && tile.ID == active {
			style = style.Foreground(tcell.ColorWhite).Bold(true).Reverse(true)
		}

		label := []rune(tile.Abbr())
		// The last column of each tile is left blank as the gap.
		for dy := 0; dy < tileHeight; dy++ {
			for dx := 0; dx < tileWidth-1; dx++ {
				r := ' '
				if dy == 0 && dx > 0 && dx-1 < len(label) {
					r = label[dx-1]
				}
				screen.SetContent(x0+dx, y0+dy, r, nil, style)
			}
		}
	}
}

// RegionAt returns the region under screen cell (x, y). onMap reports
// whether the cell lies inside the map at all; id is empty for gaps and
// tiles without a record.
func (m *MapView) RegionAt(x, y int) (id string, onMap bool) {
	ix, iy, iw, ih := m.GetInnerRect()
	if x < ix || y < iy || x >= ix+iw || y >= iy+ih {
		return "", false
	}

	dx, dy := x-ix, y-iy
	if dx%tileWidth == tileWidth-1 {
		return "", true
	}
	tile, ok := m.layout.At(dx/tileWidth, dy/tileHeight)
	if !ok {
		return "", true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ds == nil || !m.ds.Has(tile.ID) {
		return "", true
	}
	return tile.ID, true
}

// TileCenter returns the screen cell at the middle of a region's tile.
func (m *MapView) TileCenter(id string) (placement.Point, bool) {
	tile, ok := m.layout.Lookup(id)
	if !ok {
		return placement.Point{}, false
	}
	ix, iy, _, _ := m.GetInnerRect()
	return placement.Point{
		X: ix + tile.Col*tileWidth + tileWidth/2,
		Y: iy + tile.Row*tileHeight,
	}, true
}
