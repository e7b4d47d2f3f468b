package fontface

import "testing"

func TestNormalizeAxisRange(t *testing.T) {

	cases := []float32{0, 0.5, 0.50001, -0.5, -0.50001, 1.2, -1.2, 3.75, -3.75}
	for _, v := range cases {

		n := normalizeAxis(v)
		if n <= -0.5 || n > 0.5 {
			t.Fatalf("normalizeAxis(%v) = %v, want in (-0.5, 0.5]", v, n)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {

	cases := []float32{0, 0.5, -0.5, 0.3, -0.3, 1.7, -1.7}
	for _, v := range cases {

		once := normalizeAxis(v)
		twice := normalizeAxis(once)
		if once != twice {
			t.Fatalf("normalizeAxis not idempotent for %v: once=%v twice=%v", v, once, twice)
		}
	}
}

func TestNormalizeOffset(t *testing.T) {

	o := Normalize(SubpixelOffset{X: 1.7, Y: -2.3})
	if o.X <= -0.5 || o.X > 0.5 {
		t.Fatalf("X out of range: %v", o.X)
	}
	if o.Y <= -0.5 || o.Y > 0.5 {
		t.Fatalf("Y out of range: %v", o.Y)
	}
}
