package fontface

import (
	"testing"

	"golang.org/x/image/math/fixed"
)

func TestFixedToF32(t *testing.T) {

	x := fixed.I(55)
	var ans float32 = 55
	Check(t, ans, fixedToF32(x))

	x = fixed.I(-10)
	ans = -10
	Check(t, ans, fixedToF32(x))

	x = fixed.Int26_6(0<<6 + 1<<0)
	ans = 1 / 64.0
	Check(t, ans, fixedToF32(x))

	x = fixed.Int26_6(12<<6 + 0<<0)
	ans = 12
	Check(t, ans, fixedToF32(x))

	x = fixed.Int26_6(-3<<6 + 1<<2)
	ans = -3.0 + 4/64.0
	Check(t, ans, fixedToF32(x))
}

func TestF32ToFixedRoundTrip(t *testing.T) {

	for _, v := range []float32{0, 1, -1, 12.5, -12.5, 0.015625, -0.5} {
		got := fixedToF32(f32ToFixed(v))
		if got != v {
			t.Fatalf("round trip of %v produced %v", v, got)
		}
	}
}

func Check[T comparable](t *testing.T, expected, got T) {
	if got != expected {
		t.Fatalf("Expected %v but got %v\n", expected, got)
	}
}
