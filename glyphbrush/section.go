// Package glyphbrush orchestrates the layout and atlas packages into the
// section-queue/process-queued workflow described in spec.md §4.G: an
// application queues styled text sections each frame, and ProcessQueued
// decides whether glyphs moved, only colors changed, or nothing changed
// at all, handing back vertices through a caller-supplied builder.
package glyphbrush

import (
	"github.com/bloeys/glyphbrush/layout"
)

// SectionText is one styled run of text sharing a font, scale and
// color — re-exported from layout so callers of this package never need
// to import it directly.
type SectionText = layout.SectionText

// Color is a straight RGBA color in [0,1] per channel.
type Color = layout.Color

// SectionGeometry is the screen-space placement of a VariedSection,
// hashed independently of its text/color content (see SectionHashDetail)
// so a pure pan/scroll can be detected without rehashing text runs.
type SectionGeometry struct {
	ScreenPosition layout.Point
	Bounds         layout.Point
	Z              float32
}

// VariedSection is one unit of queued text: a position/bounds box, a
// layout strategy, and the styled runs to lay out within it.
type VariedSection struct {
	Geometry SectionGeometry
	Layout   layout.Layout
	Text     []SectionText
}

func (s VariedSection) toLayoutSection() layout.VariedSection {
	return layout.VariedSection{
		ScreenPosition: s.Geometry.ScreenPosition,
		Bounds:         s.Geometry.Bounds,
		Text:           s.Text,
	}
}
