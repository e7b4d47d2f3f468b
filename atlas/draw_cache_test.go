package atlas

import (
	"image"
	"testing"

	"github.com/bloeys/glyphbrush/fontface"
)

func Check[T comparable](t *testing.T, name string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %v; want %v", name, got, want)
	}
}

// fakeFace rasterizes every rune as a solid square of side fixed
// regardless of scale, so tests can reason about packing without a real
// font file.
type fakeFace struct {
	side int
}

func (f fakeFace) GlyphBounds(r rune) (min, max [2]float32, advance float32, ok bool) {
	s := float32(f.side)
	return [2]float32{0, 0}, [2]float32{s, s}, s, true
}

func (f fakeFace) Advance(r rune) (float32, bool) { return float32(f.side), true }

func (f fakeFace) Kern(a, b rune) float32 { return 0 }

func (f fakeFace) Rasterize(r rune, off fontface.SubpixelOffset) (*fontface.Raster, bool) {
	pix := make([]byte, f.side*f.side)
	for i := range pix {
		pix[i] = 0xFF
	}
	return &fontface.Raster{Width: f.side, Height: f.side, Pix: pix}, true
}

// fakeFont hands out one fakeFace regardless of requested scale, and
// assigns each distinct rune a GlyphIndex on first sight.
type fakeFont struct {
	side    int
	indices map[rune]fontface.GlyphIndex
	next    fontface.GlyphIndex
}

func newFakeFont(side int) *fakeFont {
	return &fakeFont{side: side, indices: map[rune]fontface.GlyphIndex{}}
}

func (f *fakeFont) Index(r rune) fontface.GlyphIndex {
	if idx, ok := f.indices[r]; ok {
		return idx
	}
	idx := f.next
	f.next++
	f.indices[r] = idx
	return idx
}

func (f *fakeFont) Metrics(scale fontface.Scale) fontface.VMetrics {
	return fontface.VMetrics{Ascent: scale.Y, Descent: 0, LineGap: 0}
}

func (f *fakeFont) FaceAt(scale fontface.Scale) fontface.Face {
	return fakeFace{side: f.side}
}

func newTestAtlas(dims image.Point) *Atlas {
	return New(Config{
		Dimensions:        dims,
		ScaleTolerance:    0.1,
		PositionTolerance: 0.1,
	})
}

func TestCacheQueuedAddsNewGlyphs(t *testing.T) {
	font := newFakeFont(8)
	fonts := []fontface.Font{font}
	a := newTestAtlas(image.Pt(64, 64))

	a.QueueGlyph(0, Glyph{Rune: 'a', Scale: fontface.Scale{X: 16, Y: 16}})
	a.QueueGlyph(0, Glyph{Rune: 'b', Scale: fontface.Scale{X: 16, Y: 16}})

	var uploads int
	by, err := a.CacheQueued(fonts, func(rect image.Rectangle, pix []byte) { uploads++ })
	if err != nil {
		t.Fatalf("CacheQueued: %v", err)
	}
	Check(t, "CachedBy", by, CachedByAdding)
	Check(t, "uploads", uploads, 2)
}

func TestCacheQueuedReusesWithinTolerance(t *testing.T) {
	font := newFakeFont(8)
	fonts := []fontface.Font{font}
	a := newTestAtlas(image.Pt(64, 64))

	scale := fontface.Scale{X: 16, Y: 16}
	a.QueueGlyph(0, Glyph{Rune: 'a', Scale: scale, Position: Position{X: 10.0, Y: 10.0}})
	if _, err := a.CacheQueued(fonts, func(image.Rectangle, []byte) {}); err != nil {
		t.Fatalf("first CacheQueued: %v", err)
	}

	// Same glyph, subpixel position shifted by less than the tolerance:
	// should match the existing entry without a new rasterization.
	a.QueueGlyph(0, Glyph{Rune: 'a', Scale: scale, Position: Position{X: 10.02, Y: 10.0}})

	var uploads int
	by, err := a.CacheQueued(fonts, func(image.Rectangle, []byte) { uploads++ })
	if err != nil {
		t.Fatalf("second CacheQueued: %v", err)
	}
	Check(t, "CachedBy", by, CachedByAdding)
	Check(t, "uploads", uploads, 0)
}

func TestCacheQueuedEvictsLRUWhenFull(t *testing.T) {
	font := newFakeFont(16)
	fonts := []fontface.Font{font}
	// Exactly two 16x16 glyphs fit in one row of a 32x16 atlas; a third
	// distinct glyph forces an eviction.
	a := newTestAtlas(image.Pt(32, 16))

	scale := fontface.Scale{X: 16, Y: 16}
	a.QueueGlyph(0, Glyph{Rune: 'a', Scale: scale})
	a.QueueGlyph(0, Glyph{Rune: 'b', Scale: scale})
	if _, err := a.CacheQueued(fonts, func(image.Rectangle, []byte) {}); err != nil {
		t.Fatalf("first CacheQueued: %v", err)
	}

	a.QueueGlyph(0, Glyph{Rune: 'c', Scale: scale})
	by, err := a.CacheQueued(fonts, func(image.Rectangle, []byte) {})
	if err != nil {
		t.Fatalf("second CacheQueued: %v", err)
	}
	Check(t, "CachedBy", by, CachedByReordering)

	_, _, err = a.RectFor(0, font.Index('c'), scale, Position{})
	Check(t, "RectFor(c) err", err, nil)
}

func TestCacheQueuedTooSmall(t *testing.T) {
	font := newFakeFont(64)
	fonts := []fontface.Font{font}
	a := newTestAtlas(image.Pt(32, 32))

	scale := fontface.Scale{X: 64, Y: 64}
	a.QueueGlyph(0, Glyph{Rune: 'a', Scale: scale})

	_, err := a.CacheQueued(fonts, func(image.Rectangle, []byte) {})
	if err == nil {
		t.Fatal("expected ErrTextureTooSmall, got nil")
	}
	if _, ok := err.(*ErrTextureTooSmall); !ok {
		t.Fatalf("expected *ErrTextureTooSmall, got %T: %v", err, err)
	}
}

func TestRebuildDropsCache(t *testing.T) {
	font := newFakeFont(8)
	fonts := []fontface.Font{font}
	a := newTestAtlas(image.Pt(32, 32))

	scale := fontface.Scale{X: 16, Y: 16}
	a.QueueGlyph(0, Glyph{Rune: 'a', Scale: scale})
	if _, err := a.CacheQueued(fonts, func(image.Rectangle, []byte) {}); err != nil {
		t.Fatalf("CacheQueued: %v", err)
	}

	a.Rebuild(image.Pt(64, 64))
	Check(t, "Dimensions", a.Dimensions(), image.Pt(64, 64))

	_, _, err := a.RectFor(0, font.Index('a'), scale, Position{})
	if err == nil {
		t.Fatal("expected glyph to be evicted by Rebuild")
	}
}
