// Package atlas implements the dynamic glyph texture atlas described in
// spec.md §4.F: a 2D byte grid that packs rasterized glyph coverage into
// rows, evicts on LRU when full, coalesces requests within a scale and
// subpixel tolerance, and drives incremental GPU texture uploads through
// a caller-supplied callback.
package atlas

import "github.com/bloeys/glyphbrush/fontface"

// Position is a glyph's screen position at subpixel precision.
type Position struct {
	X, Y float32
}

// Rect is an axis-aligned rectangle in float coordinates, used both for
// normalized [0,1] UV rectangles and for pixel-space rectangles.
type Rect struct {
	MinX, MinY, MaxX, MaxY float32
}

// Width and Height return the rectangle's extent.
func (r Rect) Width() float32  { return r.MaxX - r.MinX }
func (r Rect) Height() float32 { return r.MaxY - r.MinY }

// Glyph is one request to place a rasterized glyph in the atlas: which
// rune to rasterize (rasterization is done by rune, not GlyphIndex —
// see fontface.Font), at what scale, and at what screen position. The
// draw cache derives the cache-identity GlyphSpec from this plus the
// font table passed to CacheQueued.
type Glyph struct {
	Rune     rune
	Scale    fontface.Scale
	Position Position
}

// GlyphSpec identifies one cached atlas entry: a specific glyph of a
// specific font at a specific scale and normalized subpixel offset.
// GlyphSpec values are kept in an ordered map (a sorted slice, see
// ordered.go) so the draw cache can binary-search for the greatest
// spec <= target and the least spec >= target when tolerance-matching
// (spec.md §4.F step 2).
type GlyphSpec struct {
	FontId fontface.FontId
	Glyph  fontface.GlyphIndex
	Scale  fontface.Scale
	Offset fontface.SubpixelOffset
}

func cmpF32(a, b float32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compareGlyphSpec orders GlyphSpec lexicographically on
// (FontId, Glyph, Scale.X, Scale.Y, Offset.X, Offset.Y), per spec.md §3.
func compareGlyphSpec(a, b GlyphSpec) int {
	if a.FontId != b.FontId {
		return int(a.FontId) - int(b.FontId)
	}
	if a.Glyph != b.Glyph {
		if a.Glyph < b.Glyph {
			return -1
		}
		return 1
	}
	if c := cmpF32(a.Scale.X, b.Scale.X); c != 0 {
		return c
	}
	if c := cmpF32(a.Scale.Y, b.Scale.Y); c != 0 {
		return c
	}
	if c := cmpF32(a.Offset.X, b.Offset.X); c != 0 {
		return c
	}
	return cmpF32(a.Offset.Y, b.Offset.Y)
}

// withinTolerance reports whether b is a valid substitute for a given
// scaleTol/posTol, and if so the weighted distance used to break ties
// between a lower and an upper candidate (spec.md §4.F step 2, §9).
func withinTolerance(a, b GlyphSpec, scaleTol, posTol float32) (dist float32, ok bool) {
	if a.FontId != b.FontId || a.Glyph != b.Glyph {
		return 0, false
	}

	dsx := absF32(a.Scale.X-b.Scale.X) / scaleTol
	dsy := absF32(a.Scale.Y-b.Scale.Y) / scaleTol
	dox := absF32(a.Offset.X-b.Offset.X) / posTol
	doy := absF32(a.Offset.Y-b.Offset.Y) / posTol

	if absF32(a.Scale.X-b.Scale.X) > scaleTol || absF32(a.Scale.Y-b.Scale.Y) > scaleTol {
		return 0, false
	}
	if absF32(a.Offset.X-b.Offset.X) > posTol || absF32(a.Offset.Y-b.Offset.Y) > posTol {
		return 0, false
	}

	return dsx + dsy + dox + doy, true
}

func absF32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
