package atlas

import (
	"fmt"
	"image"
)

// ErrTextureTooSmall is returned by CacheQueued when the atlas cannot fit
// every queued glyph even after the single clear-and-retry pass
// (spec.md §4.F step 4, §7). It is the only recoverable draw-cache
// error: the caller is expected to Rebuild at Suggested (or larger) and
// re-queue.
type ErrTextureTooSmall struct {
	Suggested image.Point
}

func (e *ErrTextureTooSmall) Error() string {
	return fmt.Sprintf("draw cache: texture too small, suggest %dx%d", e.Suggested.X, e.Suggested.Y)
}

// errNotCached is returned internally by RectFor when a glyph was never
// placed (or was evicted since). glyphbrush.GlyphBrush skips a glyph
// for which RectFor returns it and draws nothing for that glyph; it
// does not re-queue it.
type errNotCached struct{}

func (errNotCached) Error() string { return "draw cache: glyph not cached" }

var errGlyphNotCached error = errNotCached{}
