package fontface

import "golang.org/x/image/math/fixed"

// fixedToF32 converts a 26.6 fixed-point value to float32. Grounded on
// the bit-shift pattern in the teacher's glyphs/font_atlas.go
// (absFixedI26_6), generalized to a full signed conversion rather than
// an absolute-value helper.
func fixedToF32(x fixed.Int26_6) float32 {
	return float32(x) / 64
}

// f32ToFixed converts a float32 pixel value to 26.6 fixed-point.
func f32ToFixed(x float32) fixed.Int26_6 {
	return fixed.Int26_6(x * 64)
}
