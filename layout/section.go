package layout

import (
	"math"

	"github.com/bloeys/glyphbrush/fontface"
)

// Color is a straight (non-premultiplied) RGBA color in [0,1] per channel.
type Color [4]float32

// Point is a 2D float coordinate, used for both screen positions and
// relative offsets within a word or line.
type Point struct {
	X, Y float32
}

// Add returns p+o.
func (p Point) Add(o Point) Point { return Point{p.X + o.X, p.Y + o.Y} }

// SectionText is one styled run of text within a section: spec.md §4.A's
// "run of text sharing one font, scale and color".
type SectionText struct {
	Text   string
	Scale  fontface.Scale
	FontId fontface.FontId
	Color  Color
}

// VariedSection is spec.md §4's unit of layout: one or more styled runs
// laid out together within an optional wrap/bounds box, anchored at
// ScreenPosition.
type VariedSection struct {
	ScreenPosition Point
	// Bounds is the (width, height) box used for wrapping and the
	// h_align/v_align anchor math. {+Inf, +Inf} (the zero value wrapped
	// by NoBounds) disables wrapping entirely.
	Bounds Point
	Text   []SectionText
}

// NoBounds returns the effectively-unbounded (width, height) pair
// spec.md §4.E uses for SingleLine layout and for Wrap layout with no
// caller-supplied box.
func NoBounds() Point {
	inf := float32(math.Inf(1))
	return Point{X: inf, Y: inf}
}
