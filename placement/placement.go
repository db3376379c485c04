// Package placement positions the region tooltip inside the visible viewport.
package placement

// Point is a position in viewport cells.
type Point struct {
	X, Y int
}

// Size is a width/height pair in viewport cells.
type Size struct {
	W, H int
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X, Y, W, H int
}

// Within reports whether r lies entirely within the viewport v.
func (r Rect) Within(v Size) bool {
	return r.X >= 0 && r.Y >= 0 && r.X+r.W <= v.W && r.Y+r.H <= v.H
}

// Class distinguishes pointer-following placement from centered placement.
type Class int

const (
	// Pointer places the tooltip next to the pointer.
	Pointer Class = iota
	// Touch centers the tooltip, for narrow viewports.
	Touch
)

func (c Class) String() string {
	if c == Touch {
		return "touch"
	}
	return "pointer"
}

// DefaultOffset is the gap between pointer and tooltip.
const DefaultOffset = 2

// DefaultBreakpoint is the viewport width below which placement is centered.
const DefaultBreakpoint = 80

// ViewportClass chooses Touch for viewports narrower than breakpoint.
func ViewportClass(width, breakpoint int) Class {
	if width < breakpoint {
		return Touch
	}
	return Pointer
}

// Place returns the tooltip rectangle for a pointer at p. The result always
// lies within the viewport: a tooltip larger than the viewport is shrunk to
// fit, and one that would spill past an edge is shifted back inside.
func Place(p Point, size Size, viewport Size, offset int, class Class) Rect {
	if viewport.W <= 0 || viewport.H <= 0 {
		return Rect{}
	}
	w := clamp(size.W, 0, viewport.W)
	h := clamp(size.H, 0, viewport.H)

	if class == Touch {
		return Rect{
			X: (viewport.W - w) / 2,
			Y: (viewport.H - h) / 2,
			W: w,
			H: h,
		}
	}

	return Rect{
		X: clamp(p.X+offset, 0, viewport.W-w),
		Y: clamp(p.Y+offset, 0, viewport.H-h),
		W: w,
		H: h,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
