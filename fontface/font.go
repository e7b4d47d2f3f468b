// Package fontface defines the operation surface this module needs from a
// parsed font, and a github.com/golang/freetype/truetype-backed
// implementation of it. Font-file parsing itself stays the external
// collaborator's job (spec.md §1) — this package only adapts an already
// parsed font into the shape the layout and atlas packages consume.
package fontface

// FontId is a small integer index into a brush-owned font table. It is
// never negative and never >= the table length the brush maintains;
// callers that hand an out-of-range FontId to this module trigger a
// debug-build assertion (internal/assert), not a runtime error, since
// that is a caller contract violation (spec.md §7).
type FontId int

// GlyphIndex identifies one glyph outline within a font, independent of
// which codepoint(s) map to it. It is the cache-identity component of a
// GlyphSpec (see atlas.GlyphSpec): two requests for the same GlyphIndex
// at the same Scale and a close-enough SubpixelOffset are reuse
// candidates in the draw cache.
type GlyphIndex uint32

// Scale holds independent horizontal and vertical pixel sizes for a
// glyph, per spec.md §3 ("Scale has independent x/y pixel values").
type Scale struct {
	X, Y float32
}

// Uniform reports whether the two axes carry the same pixel size.
func (s Scale) Uniform() bool {
	return s.X == s.Y
}

// SubpixelOffset is the fractional part of a glyph's on-screen position,
// used to select among multiple rasterizations of the same glyph at
// different phases.
type SubpixelOffset struct {
	X, Y float32
}

// normalizeAxis folds v into (-0.5, 0.5], per spec.md §3's subpixel
// normalization invariant. It is idempotent: normalizeAxis(normalizeAxis(v)) == normalizeAxis(v).
func normalizeAxis(v float32) float32 {
	v -= float32(int32(v))
	if v > 0.5 {
		v -= 1
	} else if v <= -0.5 {
		v += 1
	}
	return v
}

// Normalize folds both axes of o into (-0.5, 0.5].
func Normalize(o SubpixelOffset) SubpixelOffset {
	return SubpixelOffset{X: normalizeAxis(o.X), Y: normalizeAxis(o.Y)}
}

// VMetrics carries the vertical metrics of a font at a given Scale.
// Descent is negative (below the baseline), matching spec.md's GLOSSARY.
type VMetrics struct {
	Ascent  float32
	Descent float32
	LineGap float32
}

// Raster is a rasterized glyph: a row-major 8-bit alpha coverage buffer
// plus the pixel-space offset from the glyph's drawing origin to the
// bitmap's top-left corner.
type Raster struct {
	Width, Height int
	OffsetX       float32
	OffsetY       float32
	Pix           []byte // len == Width*Height, row stride == Width
}

// Face is the subset of golang.org/x/image/font.Face this module relies
// on for one font rendered at one Scale: glyph metrics, kerning and
// rasterization. TrueType.FaceAt returns a value satisfying this for
// any requested Scale, including non-square ones (see hScaleFace in
// truetype.go).
type Face interface {
	// GlyphBounds returns the pixel bounding box of r (y grows downward,
	// matching golang.org/x/image/font.Face.GlyphBounds) and its advance.
	GlyphBounds(r rune) (min, max [2]float32, advance float32, ok bool)
	// Advance returns the horizontal advance of r.
	Advance(r rune) (advance float32, ok bool)
	// Kern returns the kerning adjustment to add between r0 and r1 when
	// they are drawn consecutively in the same font.
	Kern(r0, r1 rune) float32
	// Rasterize renders r at the given subpixel offset, already folded
	// into (-0.5, 0.5] by the caller.
	Rasterize(r rune, sub SubpixelOffset) (*Raster, bool)
}

// Font is the full per-font operation surface the layout and atlas
// packages use: glyph identity plus scale-parameterized metrics and
// rendering. A brush's font table is a []Font indexed by FontId.
type Font interface {
	// Index returns the glyph identity for r. Two runes that render
	// identically for this font (ligature targets, composed forms) may
	// share a GlyphIndex; this module never forms such compositions
	// itself (no shaping, per spec.md Non-goals), so in practice it is
	// one rune in, one GlyphIndex out.
	Index(r rune) GlyphIndex
	// Metrics returns ascent/descent/line-gap at scale.
	Metrics(scale Scale) VMetrics
	// FaceAt returns the renderable Face for scale, building and caching
	// it on first use.
	FaceAt(scale Scale) Face
}
