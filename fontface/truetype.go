package fontface

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// TrueType adapts a github.com/golang/freetype/truetype.Font into a Font,
// the way the teacher's glyphs.NewFontAtlasFromFile already parses and
// scales a TrueType font, but lazily and per-scale instead of eagerly
// rasterizing a fixed rune set into one static atlas.
type TrueType struct {
	font    *truetype.Font
	hinting font.Hinting

	mu           sync.Mutex
	uniformFaces map[float32]font.Face
	faces        map[Scale]Face
}

// NewTrueType parses data (the raw bytes of a .ttf/.ttc file) and returns
// a Font backed by it. data must outlive the returned Font.
func NewTrueType(data []byte) (*TrueType, error) {
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, err
	}
	return &TrueType{
		font:         f,
		hinting:      font.HintingFull,
		uniformFaces: make(map[float32]font.Face),
		faces:        make(map[Scale]Face),
	}, nil
}

// SetHinting overrides the rasterization hinting mode. Must be called
// before the first FaceAt/Metrics call for a given size to take effect,
// since faces are cached on first build.
func (t *TrueType) SetHinting(h font.Hinting) {
	t.hinting = h
}

func (t *TrueType) Index(r rune) GlyphIndex {
	return GlyphIndex(t.font.Index(r))
}

func (t *TrueType) Metrics(scale Scale) VMetrics {
	face := t.faceAtUniform(scale.Y)
	m := face.Metrics()
	ascent := fixedToF32(m.Ascent)
	descent := fixedToF32(m.Descent)
	lineGap := fixedToF32(m.Height) - ascent - descent
	return VMetrics{Ascent: ascent, Descent: -descent, LineGap: lineGap}
}

func (t *TrueType) FaceAt(scale Scale) Face {
	t.mu.Lock()
	if f, ok := t.faces[scale]; ok {
		t.mu.Unlock()
		return f
	}
	t.mu.Unlock()

	var f Face = &ttFace{face: t.faceAtUniform(scale.Y)}
	if !scale.Uniform() && scale.Y != 0 {
		f = &hScaleFace{inner: f, ratio: scale.X / scale.Y}
	}

	t.mu.Lock()
	t.faces[scale] = f
	t.mu.Unlock()
	return f
}

// faceAtUniform returns the font.Face rendering at pixel size size,
// building it with 72 DPI so that Options.Size is read directly in
// pixels (matching glyphs/font_atlas.go's use of truetype.Options.Size).
func (t *TrueType) faceAtUniform(size float32) font.Face {
	t.mu.Lock()
	defer t.mu.Unlock()

	if f, ok := t.uniformFaces[size]; ok {
		return f
	}

	f := truetype.NewFace(t.font, &truetype.Options{
		Size:    float64(size),
		DPI:     72,
		Hinting: t.hinting,
	})
	t.uniformFaces[size] = f
	return f
}

// ttFace is the square-scale Face backed directly by a truetype font.Face.
type ttFace struct {
	face font.Face
}

func (f *ttFace) GlyphBounds(r rune) (min, max [2]float32, advance float32, ok bool) {
	b, adv, ok := f.face.GlyphBounds(r)
	if !ok {
		return min, max, 0, false
	}
	return [2]float32{fixedToF32(b.Min.X), fixedToF32(b.Min.Y)},
		[2]float32{fixedToF32(b.Max.X), fixedToF32(b.Max.Y)},
		fixedToF32(adv), true
}

func (f *ttFace) Advance(r rune) (float32, bool) {
	adv, ok := f.face.GlyphAdvance(r)
	if !ok {
		return 0, false
	}
	return fixedToF32(adv), true
}

func (f *ttFace) Kern(r0, r1 rune) float32 {
	return fixedToF32(f.face.Kern(r0, r1))
}

// Rasterize renders r with the origin placed at the given subpixel
// offset. Grounded on glyphs/font_atlas.go's raster loop
// (face.Glyph(dot, g) then reading the returned mask), generalized to
// return a plain coverage buffer instead of drawing into a shared atlas
// image directly.
func (f *ttFace) Rasterize(r rune, sub SubpixelOffset) (*Raster, bool) {
	dot := fixed.Point26_6{X: f32ToFixed(sub.X), Y: f32ToFixed(sub.Y)}
	dr, mask, maskp, _, ok := f.face.Glyph(dot, r)
	if !ok || dr.Empty() {
		return nil, false
	}

	w, h := dr.Dx(), dr.Dy()
	pix := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			_, _, _, a := mask.At(maskp.X+x, maskp.Y+y).RGBA()
			pix[y*w+x] = byte(a >> 8)
		}
	}

	return &Raster{
		Width:   w,
		Height:  h,
		OffsetX: float32(dr.Min.X),
		OffsetY: float32(dr.Min.Y),
		Pix:     pix,
	}, true
}

// hScaleFace stretches a square-scaled Face horizontally by ratio,
// bridging spec.md's independent x/y glyph scale with
// golang.org/x/image/font.Face, which (like the underlying TrueType
// hinter) only renders at one isotropic pixel size.
type hScaleFace struct {
	inner Face
	ratio float32
}

func (f *hScaleFace) GlyphBounds(r rune) (min, max [2]float32, advance float32, ok bool) {
	min, max, advance, ok = f.inner.GlyphBounds(r)
	if !ok {
		return min, max, 0, false
	}
	min[0] *= f.ratio
	max[0] *= f.ratio
	return min, max, advance * f.ratio, true
}

func (f *hScaleFace) Advance(r rune) (float32, bool) {
	a, ok := f.inner.Advance(r)
	return a * f.ratio, ok
}

func (f *hScaleFace) Kern(r0, r1 rune) float32 {
	return f.inner.Kern(r0, r1) * f.ratio
}

func (f *hScaleFace) Rasterize(r rune, sub SubpixelOffset) (*Raster, bool) {
	raster, ok := f.inner.Rasterize(r, SubpixelOffset{X: sub.X / f.ratio, Y: sub.Y})
	if !ok {
		return nil, false
	}

	newWidth := int(float32(raster.Width)*f.ratio + 0.5)
	if newWidth < 1 {
		newWidth = 1
	}

	pix := make([]byte, newWidth*raster.Height)
	for y := 0; y < raster.Height; y++ {
		for x := 0; x < newWidth; x++ {
			srcX := int(float32(x) / f.ratio)
			if srcX >= raster.Width {
				srcX = raster.Width - 1
			}
			pix[y*newWidth+x] = raster.Pix[y*raster.Width+srcX]
		}
	}

	return &Raster{
		Width:   newWidth,
		Height:  raster.Height,
		OffsetX: raster.OffsetX * f.ratio,
		OffsetY: raster.OffsetY,
		Pix:     pix,
	}, true
}
