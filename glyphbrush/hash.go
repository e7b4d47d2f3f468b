package glyphbrush

import (
	"hash"
	"math"

	"github.com/bloeys/glyphbrush/layout"
	"github.com/cespare/xxhash/v2"
)

// Hasher builds a fresh keyed hash.Hash64 for one SectionHashDetail
// computation. The default, newXxhash, is cespare/xxhash/v2 — the same
// keyed-hash library the rest of the retrieved pack already depends on
// (mmp-vice, serialexp-cross-notifier) — but any hash.Hash64
// implementation (stdlib maphash, fnv, a custom one) works.
type Hasher func() hash.Hash64

func newXxhash() hash.Hash64 { return xxhash.New() }

// SectionHashDetail is five independent hashes over one VariedSection,
// each covering a different slice of its state, so ProcessQueued can
// tell apart "nothing changed", "only moved", "only recolored" and
// "content changed" without diffing the section itself (spec.md §4.G).
type SectionHashDetail struct {
	// TextHash covers layout mode/alignment, font id, scale and text
	// content only.
	TextHash uint64
	// TextColorHash covers the same plus each run's full RGBA color.
	TextColorHash uint64
	// TextAlphaHash covers the same as TextHash plus each run's RGB
	// channels, leaving alpha out, so that together with TextColorHash
	// it lets a caller distinguish an alpha fade from an RGB recolor
	// (AlphaOnlyChanged) without a full vertex color rewrite either way.
	TextAlphaHash uint64
	// GeometryHash covers screen position, bounds and z only.
	GeometryHash uint64
	// FullHash covers everything; equal FullHash values mean the
	// section is pixel-for-pixel identical to last frame.
	FullHash uint64
}

// HashSection computes a SectionHashDetail for section using newHasher
// (nil selects the xxhash default).
func HashSection(newHasher Hasher, section VariedSection) SectionHashDetail {
	if newHasher == nil {
		newHasher = newXxhash
	}

	text := newHasher()
	textColor := newHasher()
	textAlpha := newHasher()
	geom := newHasher()

	// spec.md §3: the text hash (and everything derived from it) covers
	// "text + layout + scale + font-id only" — a layout-only change
	// (HAlign/VAlign/Mode) must be visible here so Diff doesn't serve
	// stale glyph positions from the old layout.
	writeLayout(text, section.Layout)
	writeLayout(textColor, section.Layout)
	writeLayout(textAlpha, section.Layout)

	for _, t := range section.Text {
		writeString(text, t.Text)
		writeFontScale(text, t)

		writeString(textColor, t.Text)
		writeFontScale(textColor, t)
		writeColor(textColor, t.Color)

		writeString(textAlpha, t.Text)
		writeFontScale(textAlpha, t)
		writeF32(textAlpha, t.Color[0])
		writeF32(textAlpha, t.Color[1])
		writeF32(textAlpha, t.Color[2])
	}

	writeF32(geom, section.Geometry.ScreenPosition.X)
	writeF32(geom, section.Geometry.ScreenPosition.Y)
	writeF32(geom, section.Geometry.Bounds.X)
	writeF32(geom, section.Geometry.Bounds.Y)
	writeF32(geom, section.Geometry.Z)

	full := newHasher()
	writeU64(full, textColor.Sum64())
	writeU64(full, geom.Sum64())

	return SectionHashDetail{
		TextHash:      text.Sum64(),
		TextColorHash: textColor.Sum64(),
		TextAlphaHash: textAlpha.Sum64(),
		GeometryHash:  geom.Sum64(),
		FullHash:      full.Sum64(),
	}
}

// SectionDiff classifies what changed between two SectionHashDetail
// snapshots of the same logical section across two frames.
type SectionDiff int

const (
	// DiffNone: FullHash matched — nothing to do.
	DiffNone SectionDiff = iota
	// DiffGeometry: only position/bounds/z changed — glyph shapes are
	// identical, so layout.Translate can reposition them without a full
	// relayout when the change is a pure screen-position shift.
	DiffGeometry
	// DiffColor: only run colors changed; glyph positions are the same.
	// ProcessQueued does not special-case it: such a section is laid
	// out again in full, as for DiffUnknown.
	DiffColor
	// DiffUnknown: text, font, scale or more than one category changed
	// — a full relayout and recache is required.
	DiffUnknown
)

// Diff reports how cur differs from prev.
func (prev SectionHashDetail) Diff(cur SectionHashDetail) SectionDiff {
	if prev.FullHash == cur.FullHash {
		return DiffNone
	}
	if prev.TextHash != cur.TextHash {
		return DiffUnknown
	}
	if prev.GeometryHash != cur.GeometryHash && prev.TextColorHash == cur.TextColorHash {
		return DiffGeometry
	}
	if prev.TextColorHash != cur.TextColorHash && prev.GeometryHash == cur.GeometryHash {
		return DiffColor
	}
	return DiffUnknown
}

// AlphaOnlyChanged reports whether cur's colors differ from prev's only
// in their alpha channel (a fade), not in RGB — useful for callers that
// batch by blend state and want to avoid re-bucketing on every frame of
// a fade animation.
func (prev SectionHashDetail) AlphaOnlyChanged(cur SectionHashDetail) bool {
	return prev.TextHash == cur.TextHash &&
		prev.GeometryHash == cur.GeometryHash &&
		prev.TextColorHash != cur.TextColorHash &&
		prev.TextAlphaHash == cur.TextAlphaHash
}

func writeString(h hash.Hash64, s string) {
	_, _ = h.Write([]byte(s))
}

// writeLayout mixes the parts of l that change a section's glyph
// positions into h. Breaker identity is deliberately excluded: two
// Layouts using equivalent breaking rules should hash the same even if
// they hold distinct LineBreaker values.
func writeLayout(h hash.Hash64, l layout.Layout) {
	buf := [3]byte{byte(l.Mode), byte(l.HAlign), byte(l.VAlign)}
	_, _ = h.Write(buf[:])
}

// writePrePositioned mixes pre-positioned glyph data into h for
// GlyphBrush's draw-state hash, since these glyphs bypass HashSection
// entirely (spec.md §4.G's queue_pre_positioned).
func writePrePositioned(h hash.Hash64, glyphs []layout.PositionedGlyph) {
	for _, g := range glyphs {
		var idBuf [4]byte
		idBuf[0] = byte(g.FontId)
		idBuf[1] = byte(g.FontId >> 8)
		idBuf[2] = byte(g.FontId >> 16)
		idBuf[3] = byte(g.FontId >> 24)
		_, _ = h.Write(idBuf[:])
		writeF32(h, float32(g.Rune))
		writeF32(h, g.Scale.X)
		writeF32(h, g.Scale.Y)
		writeF32(h, g.Position.X)
		writeF32(h, g.Position.Y)
		writeColor(h, g.Color)
	}
}

func writeFontScale(h hash.Hash64, t SectionText) {
	var buf [12]byte
	buf[0] = byte(t.FontId)
	buf[1] = byte(t.FontId >> 8)
	buf[2] = byte(t.FontId >> 16)
	buf[3] = byte(t.FontId >> 24)
	putF32(buf[4:8], t.Scale.X)
	putF32(buf[8:12], t.Scale.Y)
	_, _ = h.Write(buf[:])
}

func writeColor(h hash.Hash64, c Color) {
	var buf [16]byte
	putF32(buf[0:4], c[0])
	putF32(buf[4:8], c[1])
	putF32(buf[8:12], c[2])
	putF32(buf[12:16], c[3])
	_, _ = h.Write(buf[:])
}

func writeF32(h hash.Hash64, v float32) {
	var buf [4]byte
	putF32(buf[:], v)
	_, _ = h.Write(buf[:])
}

func writeU64(h hash.Hash64, v uint64) {
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	_, _ = h.Write(buf[:])
}

func putF32(buf []byte, v float32) {
	bits := math.Float32bits(v)
	buf[0] = byte(bits)
	buf[1] = byte(bits >> 8)
	buf[2] = byte(bits >> 16)
	buf[3] = byte(bits >> 24)
}
