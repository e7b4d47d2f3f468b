package layout

import (
	"math"

	"github.com/bloeys/glyphbrush/fontface"
)

// HorizontalAlign anchors a line relative to a section's screen
// position (spec.md §4.D/E).
type HorizontalAlign int

const (
	Left HorizontalAlign = iota
	Center
	Right
)

// VerticalAlign anchors a SingleLine's one line, or a Wrap layout's
// whole laid-out block, relative to the section's screen position and
// bounds height (spec.md §4.E). Vertical alignment is not a spec.md
// Non-goal — the Non-goals list is shaping, emoji compositing,
// rich-text parsing and cursor tracking only. The vertical centre is
// VCenter, since Center already names the horizontal one.
type VerticalAlign int

const (
	Top VerticalAlign = iota
	VCenter
	Bottom
)

// Mode selects whether a section lays out as one unbroken line or wraps
// within its bounds (spec.md §4.E).
type Mode int

const (
	ModeSingleLine Mode = iota
	ModeWrap
)

// Layout is the positioner: it turns a VariedSection into absolute
// on-screen glyph positions. The zero value is not usable; use Default
// or DefaultSingleLine.
type Layout struct {
	Mode    Mode
	Breaker LineBreaker
	HAlign  HorizontalAlign
	VAlign  VerticalAlign
}

// Default returns the Wrap layout with UAX #14 breaking and left/top
// alignment — spec.md §4.E's default.
func Default() Layout {
	return Layout{Mode: ModeWrap, Breaker: UnicodeLineBreaker{}, HAlign: Left, VAlign: Top}
}

// DefaultSingleLine returns the SingleLine counterpart of Default.
func DefaultSingleLine() Layout {
	l := Default()
	l.Mode = ModeSingleLine
	return l
}

// PositionedGlyph is one glyph with an absolute screen-space origin,
// ready to be queued into an atlas.
type PositionedGlyph struct {
	FontId   fontface.FontId
	Rune     rune
	Scale    fontface.Scale
	Color    Color
	Position Point
}

// Rect is an axis-aligned float rectangle, used for BoundsRect.
type Rect struct {
	MinX, MinY, MaxX, MaxY float32
}

// CalculateGlyphs runs the full pipeline (spec.md §4.B–E): characters,
// words, lines, then per-mode line placement. fonts is indexed by
// FontId, the same table the caller's atlas/brush uses.
func (l Layout) CalculateGlyphs(fonts []fontface.Font, section VariedSection) []PositionedGlyph {
	chars := Characters(section.Text, l.Breaker)
	words := Words(chars, fonts)
	lines := Lines(words, section.Bounds.X)

	switch l.Mode {
	case ModeSingleLine:
		if len(lines) == 0 {
			return nil
		}
		glyphs := l.alignLine(fonts, lines[0], section.ScreenPosition)
		return l.applyVerticalAlign(fonts, glyphs, lines[0].Height(), section)

	default: // ModeWrap
		return l.layoutWrap(fonts, lines, section)
	}
}

// layoutWrap places every Line per spec.md §4.E's Wrap mode. Top can
// stop as soon as the bounds bottom is reached, since later lines can
// only fall further outside. Center/Bottom must lay out every line
// first to know the block's total height before it can be shifted.
func (l Layout) layoutWrap(fonts []fontface.Font, lines []Line, section VariedSection) []PositionedGlyph {
	vAlign := l.VAlign
	if math.IsInf(float64(section.Bounds.Y), 1) {
		// There is no "bottom" to anchor to when the box is unbounded.
		vAlign = Top
	}

	if vAlign == Top {
		var out []PositionedGlyph
		caret := section.ScreenPosition
		boundBottom := section.ScreenPosition.Y + section.Bounds.Y
		for _, ln := range lines {
			if caret.Y >= boundBottom {
				break
			}
			out = append(out, l.alignLine(fonts, ln, caret)...)
			caret.Y += ln.Height()
		}
		return out
	}

	var out []PositionedGlyph
	var totalHeight float32
	caret := section.ScreenPosition
	for _, ln := range lines {
		out = append(out, l.alignLine(fonts, ln, caret)...)
		h := ln.Height()
		caret.Y += h
		totalHeight += h
	}

	shift := section.Bounds.Y - totalHeight
	if vAlign == VCenter {
		shift /= 2
	}
	for i := range out {
		out[i].Position.Y += shift
	}

	return l.filterOutOfBounds(fonts, out, section)
}

// applyVerticalAlign shifts a SingleLine's glyphs per spec.md §4.E's
// Top/Center/Bottom v-align, then filters anything pushed entirely
// outside the bounds.
func (l Layout) applyVerticalAlign(fonts []fontface.Font, glyphs []PositionedGlyph, lineHeight float32, section VariedSection) []PositionedGlyph {
	if l.VAlign == Top || math.IsInf(float64(section.Bounds.Y), 1) {
		return glyphs
	}

	shift := section.Bounds.Y - lineHeight
	if l.VAlign == VCenter {
		shift /= 2
	}
	for i := range glyphs {
		glyphs[i].Position.Y += shift
	}

	return l.filterOutOfBounds(fonts, glyphs, section)
}

// filterOutOfBounds drops glyphs whose pixel bounding box falls
// entirely outside l.BoundsRect(section), per spec.md §4.E's Wrap
// Center/Bottom behavior and Testable Property #1.
func (l Layout) filterOutOfBounds(fonts []fontface.Font, glyphs []PositionedGlyph, section VariedSection) []PositionedGlyph {
	box := l.BoundsRect(section)

	var out []PositionedGlyph
	for _, g := range glyphs {
		minX, minY := g.Position.X, g.Position.Y
		maxX, maxY := g.Position.X, g.Position.Y
		if min, max, _, ok := fonts[g.FontId].FaceAt(g.Scale).GlyphBounds(g.Rune); ok {
			minX, minY = g.Position.X+min[0], g.Position.Y+min[1]
			maxX, maxY = g.Position.X+max[0], g.Position.Y+max[1]
		}
		if maxX <= box.MinX || minX >= box.MaxX || maxY <= box.MinY || minY >= box.MaxY {
			continue
		}
		out = append(out, g)
	}
	return out
}

// alignLine positions one Line's glyphs at screenPos according to
// l.HAlign, per spec.md §4.D's right/center shift-left-from-left-anchor
// construction.
func (l Layout) alignLine(fonts []fontface.Font, ln Line, screenPos Point) []PositionedGlyph {
	if len(ln.Glyphs) == 0 {
		return nil
	}

	screenLeft := screenPos
	if l.HAlign != Left {
		last := ln.Glyphs[len(ln.Glyphs)-1]
		face := fonts[last.FontId].FaceAt(last.Scale)

		rightmostX := last.Relative.X
		if _, max, _, ok := face.GlyphBounds(last.Rune); ok {
			rightmostX = ceilF32(last.Relative.X + max[0])
		}

		shift := rightmostX
		if l.HAlign == Center {
			shift /= 2
		}
		screenLeft = Point{X: screenPos.X - shift, Y: screenPos.Y}
	}

	out := make([]PositionedGlyph, len(ln.Glyphs))
	for i, g := range ln.Glyphs {
		out[i] = PositionedGlyph{
			FontId: g.FontId, Rune: g.Rune, Scale: g.Scale, Color: g.Color,
			Position: screenLeft.Add(g.Relative),
		}
	}
	return out
}

// BoundsRect returns the screen-space box CalculateGlyphs lays text
// into, per spec.md §4.E. Its min/max shift with HAlign exactly as the
// glyph placement does, so a caller can use it for clipping or
// highlight backgrounds without re-running layout.
func (l Layout) BoundsRect(section VariedSection) Rect {
	sx, sy := section.ScreenPosition.X, section.ScreenPosition.Y
	bw, bh := section.Bounds.X, section.Bounds.Y

	switch l.HAlign {
	case Center:
		return Rect{MinX: sx - bw/2, MinY: sy, MaxX: sx + bw/2, MaxY: sy + bh}
	case Right:
		return Rect{MinX: sx - bw, MinY: sy, MaxX: sx, MaxY: sy + bh}
	default:
		return Rect{MinX: sx, MinY: sy, MaxX: sx + bw, MaxY: sy + bh}
	}
}

// Translate shifts every glyph's Position by delta without re-running
// the layout pipeline — the O(n) fast path spec.md §8 requires when two
// consecutive calculations differ only in ScreenPosition (GlyphBrush
// uses this for scrolling/panning text without a full re-layout).
func Translate(glyphs []PositionedGlyph, delta Point) []PositionedGlyph {
	out := make([]PositionedGlyph, len(glyphs))
	for i, g := range glyphs {
		out[i] = g
		out[i].Position = g.Position.Add(delta)
	}
	return out
}
