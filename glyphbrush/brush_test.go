package glyphbrush

import (
	"image"
	"testing"

	"github.com/bloeys/glyphbrush/atlas"
	"github.com/bloeys/glyphbrush/fontface"
	"github.com/bloeys/glyphbrush/layout"
)

func check[T comparable](t *testing.T, name string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %v, want %v", name, got, want)
	}
}

// boxFace is a monospace test face: every non-space rune is a filled
// side x side square sitting on the baseline (y from -side to 0) with
// no kerning, grounded on the same fixture shape
// atlas/draw_cache_test.go and layout/layout_test.go already use.
type boxFace struct {
	side int
}

func (f boxFace) GlyphBounds(r rune) (min, max [2]float32, advance float32, ok bool) {
	if r == ' ' {
		return [2]float32{}, [2]float32{}, float32(f.side) / 2, false
	}
	return [2]float32{0, -float32(f.side)}, [2]float32{float32(f.side), 0}, float32(f.side), true
}

func (f boxFace) Advance(r rune) (float32, bool) {
	if r == ' ' {
		return float32(f.side) / 2, true
	}
	return float32(f.side), true
}

func (f boxFace) Kern(r0, r1 rune) float32 { return 0 }

func (f boxFace) Rasterize(r rune, sub fontface.SubpixelOffset) (*fontface.Raster, bool) {
	if r == ' ' {
		return nil, false
	}
	pix := make([]byte, f.side*f.side)
	for i := range pix {
		pix[i] = 0xFF
	}
	return &fontface.Raster{Width: f.side, Height: f.side, OffsetY: -float32(f.side), Pix: pix}, true
}

type boxFont struct {
	side    int
	indices map[rune]fontface.GlyphIndex
	next    fontface.GlyphIndex
}

func newBoxFont(side int) *boxFont {
	return &boxFont{side: side, indices: make(map[rune]fontface.GlyphIndex)}
}

func (f *boxFont) Index(r rune) fontface.GlyphIndex {
	if idx, ok := f.indices[r]; ok {
		return idx
	}
	idx := f.next
	f.next++
	f.indices[r] = idx
	return idx
}

func (f *boxFont) Metrics(scale fontface.Scale) fontface.VMetrics {
	return fontface.VMetrics{Ascent: scale.Y, Descent: 0, LineGap: 0}
}

func (f *boxFont) FaceAt(scale fontface.Scale) fontface.Face {
	return boxFace{side: int(scale.Y)}
}

func newTestBrush() *GlyphBrush {
	b := NewBuilder()
	b.InitialDimensions = image.Point{X: 256, Y: 256}
	b.AddFont(newBoxFont(16))
	return b.Build()
}

func sectionOf(text string) VariedSection {
	return VariedSection{
		Geometry: SectionGeometry{ScreenPosition: layout.Point{X: 0, Y: 0}, Bounds: layout.NoBounds()},
		Layout:   layout.DefaultSingleLine(),
		Text: []SectionText{
			{Text: text, Scale: fontface.Scale{X: 16, Y: 16}, FontId: 0, Color: Color{1, 1, 1, 1}},
		},
	}
}

func uploadNoop(rect image.Rectangle, pix []byte) {}

func TestProcessQueuedProducesOneVertexPerGlyph(t *testing.T) {
	gb := newTestBrush()
	gb.Queue("greeting", sectionOf("Hi"))

	action, verts, err := ProcessQueued(gb, uploadNoop, func(gv GlyphVertex) GlyphVertex { return gv })
	if err != nil {
		t.Fatalf("ProcessQueued: %v", err)
	}
	check(t, "action", action, ActionDraw)
	check(t, "vertex count", len(verts), 2)
}

// TestProcessQueuedReDrawsWhenNothingChanged is spec.md §8's round-trip
// law: queue, process, queue-same-again, process → second result is
// ReDraw, never a second Draw with a (possibly different) vertex list.
func TestProcessQueuedReDrawsWhenNothingChanged(t *testing.T) {
	gb := newTestBrush()
	section := sectionOf("Hi")

	gb.Queue("greeting", section)
	firstAction, first, err := ProcessQueued(gb, uploadNoop, func(gv GlyphVertex) GlyphVertex { return gv })
	if err != nil {
		t.Fatalf("first ProcessQueued: %v", err)
	}
	check(t, "first action", firstAction, ActionDraw)
	check(t, "first vertex count", len(first), 2)

	gb.Queue("greeting", section)
	secondAction, second, err := ProcessQueued(gb, uploadNoop, func(gv GlyphVertex) GlyphVertex { return gv })
	if err != nil {
		t.Fatalf("second ProcessQueued: %v", err)
	}
	check(t, "second action", secondAction, ActionReDraw)
	check(t, "redraw carries no vertices", len(second), 0)
}

// TestProcessQueuedDoesNotReDrawWhenCacheRedrawsDisabled confirms
// CacheRedraws actually gates the short circuit: disabling it means an
// unchanged queue still produces a full Draw every time.
func TestProcessQueuedDoesNotReDrawWhenCacheRedrawsDisabled(t *testing.T) {
	b := NewBuilder()
	b.InitialDimensions = image.Point{X: 256, Y: 256}
	b.CacheRedraws = false
	b.AddFont(newBoxFont(16))
	gb := b.Build()

	section := sectionOf("Hi")
	gb.Queue("greeting", section)
	if _, _, err := ProcessQueued(gb, uploadNoop, func(gv GlyphVertex) GlyphVertex { return gv }); err != nil {
		t.Fatalf("first ProcessQueued: %v", err)
	}

	gb.Queue("greeting", section)
	action, verts, err := ProcessQueued(gb, uploadNoop, func(gv GlyphVertex) GlyphVertex { return gv })
	if err != nil {
		t.Fatalf("second ProcessQueued: %v", err)
	}
	check(t, "action", action, ActionDraw)
	check(t, "vertex count", len(verts), 2)
}

func TestProcessQueuedTranslatesOnPureGeometryChange(t *testing.T) {
	gb := newTestBrush()
	section := sectionOf("Hi")

	gb.Queue("greeting", section)
	_, _, err := ProcessQueued(gb, uploadNoop, func(gv GlyphVertex) GlyphVertex { return gv })
	if err != nil {
		t.Fatalf("first ProcessQueued: %v", err)
	}

	moved := section
	moved.Geometry.ScreenPosition = layout.Point{X: 10, Y: 5}
	gb.Queue("greeting", moved)
	action, verts, err := ProcessQueued(gb, uploadNoop, func(gv GlyphVertex) GlyphVertex { return gv })
	if err != nil {
		t.Fatalf("second ProcessQueued: %v", err)
	}

	check(t, "action", action, ActionDraw)
	check(t, "vertex count", len(verts), 2)
	check(t, "first glyph minX", verts[0].PixelCoords.Data[0], float32(10))
	check(t, "first glyph minY", verts[0].PixelCoords.Data[1], float32(5))
}

// TestProcessQueuedRelayoutsOnLayoutOnlyChange is the regression for
// HashSection folding in section.Layout (spec.md §3): identical text
// and geometry but a different HAlign must not be classified DiffNone
// and must not serve stale glyph positions from the old alignment.
func TestProcessQueuedRelayoutsOnLayoutOnlyChange(t *testing.T) {
	gb := newTestBrush()
	section := sectionOf("Hi")
	section.Geometry.Bounds = layout.Point{X: 100, Y: 100}
	section.Layout.Mode = layout.ModeSingleLine
	section.Layout.HAlign = layout.Left

	gb.Queue("greeting", section)
	_, left, err := ProcessQueued(gb, uploadNoop, func(gv GlyphVertex) GlyphVertex { return gv })
	if err != nil {
		t.Fatalf("first ProcessQueued: %v", err)
	}

	recentered := section
	recentered.Layout.HAlign = layout.Center
	gb.Queue("greeting", recentered)
	action, centered, err := ProcessQueued(gb, uploadNoop, func(gv GlyphVertex) GlyphVertex { return gv })
	if err != nil {
		t.Fatalf("second ProcessQueued: %v", err)
	}

	check(t, "action", action, ActionDraw)
	if centered[0].PixelCoords.Data[0] == left[0].PixelCoords.Data[0] {
		t.Fatalf("center-aligned glyph should not land at the same x as left-aligned: %v", centered[0].PixelCoords.Data[0])
	}
}

func TestProcessQueuedDropsUnqueuedSections(t *testing.T) {
	gb := newTestBrush()
	gb.Queue("a", sectionOf("Hi"))
	if _, _, err := ProcessQueued(gb, uploadNoop, func(gv GlyphVertex) GlyphVertex { return gv }); err != nil {
		t.Fatalf("ProcessQueued: %v", err)
	}

	check(t, "cache entries before drop", len(gb.lastHash), 1)

	gb.Queue("b", sectionOf("Yo"))
	if _, _, err := ProcessQueued(gb, uploadNoop, func(gv GlyphVertex) GlyphVertex { return gv }); err != nil {
		t.Fatalf("ProcessQueued: %v", err)
	}

	if _, ok := gb.lastHash["a"]; ok {
		t.Errorf("section %q should have been purged after not being re-queued", "a")
	}
	check(t, "cache entries after drop", len(gb.lastHash), 1)
}

func TestKeepInCacheSurvivesUnqueuedFrame(t *testing.T) {
	gb := newTestBrush()
	gb.Queue("a", sectionOf("Hi"))
	gb.KeepInCache("a")
	if _, _, err := ProcessQueued(gb, uploadNoop, func(gv GlyphVertex) GlyphVertex { return gv }); err != nil {
		t.Fatalf("ProcessQueued: %v", err)
	}

	gb.Queue("b", sectionOf("Yo"))
	if _, _, err := ProcessQueued(gb, uploadNoop, func(gv GlyphVertex) GlyphVertex { return gv }); err != nil {
		t.Fatalf("ProcessQueued: %v", err)
	}

	if _, ok := gb.lastHash["a"]; !ok {
		t.Errorf("kept section %q should have survived an unqueued frame", "a")
	}
}

func TestProcessQueuedReportsTextureTooSmall(t *testing.T) {
	b := NewBuilder()
	b.InitialDimensions = image.Point{X: 4, Y: 4}
	b.AddFont(newBoxFont(16))
	gb := b.Build()

	gb.Queue("big", sectionOf("Hello, World!"))
	_, _, err := ProcessQueued(gb, uploadNoop, func(gv GlyphVertex) GlyphVertex { return gv })
	if err == nil {
		t.Fatal("expected ErrTextureTooSmall, got nil")
	}
	tooSmall, ok := err.(*ErrTextureTooSmall)
	if !ok {
		t.Fatalf("expected *ErrTextureTooSmall, got %T: %v", err, err)
	}
	if tooSmall.Suggested.X <= 4 || tooSmall.Suggested.Y <= 4 {
		t.Errorf("suggested dimensions %v should exceed the original 4x4", tooSmall.Suggested)
	}
}

func TestResizeTextureDropsCache(t *testing.T) {
	gb := newTestBrush()
	gb.Queue("a", sectionOf("Hi"))
	if _, _, err := ProcessQueued(gb, uploadNoop, func(gv GlyphVertex) GlyphVertex { return gv }); err != nil {
		t.Fatalf("ProcessQueued: %v", err)
	}

	gb.ResizeTexture(image.Point{X: 512, Y: 512})
	check(t, "atlas dimensions", gb.atlas.Dimensions(), image.Point{X: 512, Y: 512})

	// 'H' was cached at scale 16 with its origin on the baseline (0, 16).
	idx := gb.fonts[0].Index('H')
	if _, _, err := gb.atlas.RectFor(0, idx, fontface.Scale{X: 16, Y: 16}, atlas.Position{X: 0, Y: 16}); err == nil {
		t.Error("expected ResizeTexture to drop the cached glyph")
	}
}

// TestResizeTextureForcesDrawNotReDraw is spec.md §8's second
// round-trip law: queue, process, resize_texture, queue-same, process
// → second result is Draw (atlas was cleared), not ReDraw, with the
// same vertex count as the first Draw.
func TestResizeTextureForcesDrawNotReDraw(t *testing.T) {
	gb := newTestBrush()
	section := sectionOf("Hi")

	gb.Queue("greeting", section)
	_, first, err := ProcessQueued(gb, uploadNoop, func(gv GlyphVertex) GlyphVertex { return gv })
	if err != nil {
		t.Fatalf("first ProcessQueued: %v", err)
	}

	gb.ResizeTexture(image.Point{X: 512, Y: 512})

	gb.Queue("greeting", section)
	action, second, err := ProcessQueued(gb, uploadNoop, func(gv GlyphVertex) GlyphVertex { return gv })
	if err != nil {
		t.Fatalf("second ProcessQueued: %v", err)
	}

	check(t, "action", action, ActionDraw)
	check(t, "vertex count", len(second), len(first))
}
