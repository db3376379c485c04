// Package highlight holds the shared "which region is the user looking at"
// state observed by the map, the charts and the tooltip.
package highlight

import (
	"fmt"
	"sync"
)

// Mode is the kind of emphasis currently active.
type Mode int

const (
	// Idle means nothing is highlighted.
	Idle Mode = iota
	// Hovering follows the pointer and ends when the pointer leaves the map.
	Hovering
	// Pinned survives pointer movement until toggled off or dismissed.
	Pinned
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Hovering:
		return "hovering"
	case Pinned:
		return "pinned"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// State is an immutable snapshot. Region is empty when Mode is Idle.
type State struct {
	Mode   Mode
	Region string
}

func (s State) String() string {
	if s.Mode == Idle {
		return "idle"
	}
	return fmt.Sprintf("%s(%s)", s.Mode, s.Region)
}

// Emphasized returns the region every consumer should emphasize.
func (s State) Emphasized() (string, bool) {
	if s.Mode == Idle {
		return "", false
	}
	return s.Region, true
}

// IsPinned reports whether the state pins region id.
func (s State) IsPinned(id string) bool {
	return s.Mode == Pinned && s.Region == id
}

// Listener receives every effective transition.
type Listener func(prev, next State)

// Store is the single mutation point for the highlight state. Events naming
// regions that are not known to the store are ignored.
type Store struct {
	mu        sync.Mutex
	state     State
	known     func(id string) bool
	listeners map[int]Listener
	order     []int
	nextID    int
}

// NewStore creates an idle store. known reports whether a region id exists in
// the dataset; a nil known accepts every non-empty id.
func NewStore(known func(id string) bool) *Store {
	if known == nil {
		known = func(id string) bool { return id != "" }
	}
	return &Store{
		known:     known,
		listeners: make(map[int]Listener),
	}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers l and returns a function that removes it. Listeners are
// called in subscription order, after the store lock is released.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.order = append(s.order, id)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

// PointerEnter moves the hover to id unless a region is pinned.
func (s *Store) PointerEnter(id string) bool {
	return s.apply(func(cur State) State {
		if !s.known(id) || cur.Mode == Pinned {
			return cur
		}
		return State{Mode: Hovering, Region: id}
	})
}

// PointerLeave ends a hover. A pinned region is unaffected.
func (s *Store) PointerLeave() bool {
	return s.apply(func(cur State) State {
		if cur.Mode == Hovering {
			return State{}
		}
		return cur
	})
}

// Click pins id, or unpins it when it is already pinned.
func (s *Store) Click(id string) bool {
	return s.apply(func(cur State) State {
		if !s.known(id) {
			return cur
		}
		if cur.IsPinned(id) {
			return State{}
		}
		return State{Mode: Pinned, Region: id}
	})
}

// ClickOutside dismisses a pinned region.
func (s *Store) ClickOutside() bool {
	return s.apply(func(cur State) State {
		if cur.Mode == Pinned {
			return State{}
		}
		return cur
	})
}

// Pin pins id without toggling.
func (s *Store) Pin(id string) bool {
	return s.apply(func(cur State) State {
		if !s.known(id) {
			return cur
		}
		return State{Mode: Pinned, Region: id}
	})
}

// Clear returns to Idle from any state.
func (s *Store) Clear() bool {
	return s.apply(func(State) State { return State{} })
}

// apply runs a transition and notifies listeners when the state changed.
func (s *Store) apply(transition func(State) State) bool {
	s.mu.Lock()
	prev := s.state
	next := transition(prev)
	if next == prev {
		s.mu.Unlock()
		return false
	}
	s.state = next
	listeners := make([]Listener, 0, len(s.order))
	for _, id := range s.order {
		listeners = append(listeners, s.listeners[id])
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(prev, next)
	}
	return true
}
