package glyphbrush

import (
	"fmt"
	"image"
)

// ErrTextureTooSmall is returned by ProcessQueued when the underlying
// atlas overflowed even after its own retry-clear pass. The brush
// itself doesn't grow the atlas — per spec.md §7 that decision belongs
// to the caller, who owns the GPU texture — but it does double the
// suggested dimensions the atlas reported, matching the common
// "retry once, then give up and ask for double" resize strategy.
type ErrTextureTooSmall struct {
	Suggested image.Point
}

func (e *ErrTextureTooSmall) Error() string {
	return fmt.Sprintf("glyphbrush: texture too small, suggest %dx%d", e.Suggested.X, e.Suggested.Y)
}

func doubled(p image.Point) image.Point {
	return image.Point{X: p.X * 2, Y: p.Y * 2}
}
