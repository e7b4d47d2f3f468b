package glyphbrush

import "github.com/bloeys/gglm/gglm"

// GlyphVertex is the per-glyph instance data ProcessQueued hands to its
// caller, one per visible glyph, in the teacher's flat-vec4-group shape
// (glyphs.go's drawRune packs (U,V,SizeU,SizeV) and
// (PosX,PosY,PosZ,ScaleU,ScaleV) the same way): components are packed
// into gglm.Vec4 as (minX, minY, maxX, maxY) rather than broken into
// individual floats, since that is exactly what an instanced vertex
// buffer wants to upload.
type GlyphVertex struct {
	// TexCoords is the atlas UV rectangle, normalized to [0,1].
	TexCoords gglm.Vec4
	// PixelCoords is the on-screen rectangle in pixels.
	PixelCoords gglm.Vec4
	// Bounds is the section's clip rectangle in pixels; PixelCoords and
	// TexCoords are always clipped to stay within it before ToVertex's
	// build function ever sees them, matching spec.md §4.I's glyph
	// clipping rule.
	Bounds gglm.Vec4
	Color  gglm.Vec4
	Z      float32
}

// ToVertex clips gv to its Bounds, shrinking TexCoords in proportion to
// however much of PixelCoords was cut away, then calls build. A glyph
// whose pixel rect lies entirely outside Bounds is dropped — ok is
// false and build is never called — matching spec.md §4.I's "dropped
// from vertex output, not an error".
func ToVertex[V any](gv GlyphVertex, build func(GlyphVertex) V) (out V, ok bool) {
	clipped, ok := clipToBounds(gv)
	if !ok {
		return out, false
	}
	return build(clipped), true
}

func clipToBounds(gv GlyphVertex) (GlyphVertex, bool) {
	pxMinX, pxMinY, pxMaxX, pxMaxY := gv.PixelCoords.Data[0], gv.PixelCoords.Data[1], gv.PixelCoords.Data[2], gv.PixelCoords.Data[3]
	uvMinX, uvMinY, uvMaxX, uvMaxY := gv.TexCoords.Data[0], gv.TexCoords.Data[1], gv.TexCoords.Data[2], gv.TexCoords.Data[3]
	bMinX, bMinY, bMaxX, bMaxY := gv.Bounds.Data[0], gv.Bounds.Data[1], gv.Bounds.Data[2], gv.Bounds.Data[3]

	if pxMaxX <= bMinX || pxMinX >= bMaxX || pxMaxY <= bMinY || pxMinY >= bMaxY {
		return GlyphVertex{}, false
	}

	pxW := pxMaxX - pxMinX
	pxH := pxMaxY - pxMinY
	uvW := uvMaxX - uvMinX
	uvH := uvMaxY - uvMinY

	if clippedLeft := bMinX - pxMinX; clippedLeft > 0 && pxW > 0 {
		uvMinX += uvW * clippedLeft / pxW
		pxMinX = bMinX
	}
	if clippedTop := bMinY - pxMinY; clippedTop > 0 && pxH > 0 {
		uvMinY += uvH * clippedTop / pxH
		pxMinY = bMinY
	}
	if clippedRight := pxMaxX - bMaxX; clippedRight > 0 && pxW > 0 {
		uvMaxX -= uvW * clippedRight / pxW
		pxMaxX = bMaxX
	}
	if clippedBottom := pxMaxY - bMaxY; clippedBottom > 0 && pxH > 0 {
		uvMaxY -= uvH * clippedBottom / pxH
		pxMaxY = bMaxY
	}

	out := gv
	out.PixelCoords = gglm.Vec4{Data: [4]float32{pxMinX, pxMinY, pxMaxX, pxMaxY}}
	out.TexCoords = gglm.Vec4{Data: [4]float32{uvMinX, uvMinY, uvMaxX, uvMaxY}}
	return out, true
}
