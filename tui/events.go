package tui

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/srivarshini-21/india-vaccination-dashboard/highlight"
	"github.com/srivarshini-21/india-vaccination-dashboard/placement"
)

// Surface is what the dispatcher hit-tests pointer events against.
type Surface interface {
	RegionAt(x, y int) (id string, onMap bool)
	TileCenter(id string) (placement.Point, bool)
}

// Dispatcher turns terminal input into highlight transitions. It is the only
// code that mutates the highlight store.
type Dispatcher struct {
	store   *highlight.Store
	surface Surface
	ranking []string

	mu     sync.Mutex
	anchor placement.Point
}

// NewDispatcher creates a dispatcher. ranking is the region order that Tab and
// Backtab cycle through.
func NewDispatcher(store *highlight.Store, surface Surface, ranking []string) *Dispatcher {
	return &Dispatcher{
		store:   store,
		surface: surface,
		ranking: ranking,
	}
}

// Anchor is the point the tooltip is placed from. It follows the pointer
// while hovering and stays put while a region is pinned.
func (d *Dispatcher) Anchor() placement.Point {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.anchor
}

func (d *Dispatcher) setAnchor(p placement.Point) {
	d.mu.Lock()
	d.anchor = p
	d.mu.Unlock()
}

// Move handles the pointer moving to (x, y).
func (d *Dispatcher) Move(x, y int) {
	id, onMap := d.surface.RegionAt(x, y)
	switch {
	case !onMap:
		d.store.PointerLeave()
	case id != "":
		d.store.PointerEnter(id)
		if d.store.State().Mode == highlight.Hovering {
			d.setAnchor(placement.Point{X: x, Y: y})
		}
	}
}

// Click handles a primary button click at (x, y).
func (d *Dispatcher) Click(x, y int) {
	id, onMap := d.surface.RegionAt(x, y)
	switch {
	case !onMap:
		d.store.ClickOutside()
	case id != "":
		if d.store.Click(id) {
			d.setAnchor(placement.Point{X: x, Y: y})
		}
	}
}

// HandleMouse feeds a tview mouse action to the dispatcher. It reports
// whether the action was used.
func (d *Dispatcher) HandleMouse(event *tcell.EventMouse, action tview.MouseAction) bool {
	x, y := event.Position()
	switch action {
	case tview.MouseMove:
		d.Move(x, y)
	case tview.MouseLeftClick:
		d.Click(x, y)
	default:
		return false
	}
	return true
}

// HandleKey handles keyboard navigation and reports whether the key was used.
func (d *Dispatcher) HandleKey(event *tcell.EventKey) bool {
	switch event.Key() {
	case tcell.KeyTab:
		d.step(1)
	case tcell.KeyBacktab:
		d.step(-1)
	case tcell.KeyEscape:
		d.store.Clear()
	default:
		return false
	}
	return true
}

// step pins the region dir places away from the emphasized one in ranking
// order, wrapping at both ends.
func (d *Dispatcher) step(dir int) {
	n := len(d.ranking)
	if n == 0 {
		return
	}

	next := 0
	if dir < 0 {
		next = n - 1
	}
	if cur, ok := d.store.State().Emphasized(); ok {
		for i, id := range d.ranking {
			if id == cur {
				next = ((i+dir)%n + n) % n
				break
			}
		}
	}

	id := d.ranking[next]
	if d.store.Pin(id) {
		if p, ok := d.surface.TileCenter(id); ok {
			d.setAnchor(p)
		}
	}
}
