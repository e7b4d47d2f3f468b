package glyphbrush

import (
	"image"

	"github.com/bloeys/glyphbrush/atlas"
	"github.com/bloeys/glyphbrush/fontface"
	"github.com/bloeys/glyphbrush/layout"
)

// Default tuning values, matching spec.md §6's stated GlyphBrushBuilder
// defaults exactly (initial_cache_size (256, 256), scale_tolerance 0.5,
// position_tolerance 0.1).
const (
	DefaultAtlasWidth        = 256
	DefaultAtlasHeight       = 256
	DefaultScaleTolerance    = 0.5
	DefaultPositionTolerance = 0.1
)

// Builder configures a GlyphBrush before Build, in the teacher's plain
// struct-builder style (truetype.Options, not a functional-options
// chain).
type Builder struct {
	Fonts             []fontface.Font
	InitialDimensions image.Point
	ScaleTolerance    float32
	PositionTolerance float32
	Multithread       bool
	Align4x4          bool
	Hasher            Hasher
	DefaultLayout     layout.Layout

	// CacheGlyphPositioning keeps a queued section's computed glyph
	// positions cached across frames so an unchanged section can be
	// reused without relaying out (spec.md §6). Disabling it clears the
	// layout cache every frame.
	CacheGlyphPositioning bool
	// CacheRedraws lets ProcessQueued return ReDraw instead of
	// recomputing vertices when nothing queued this frame differs from
	// last frame (spec.md §4.G, §6). Ignored when CacheGlyphPositioning
	// is false.
	CacheRedraws bool
}

// NewBuilder returns a Builder with spec.md §6's defaults.
func NewBuilder() Builder {
	return Builder{
		InitialDimensions:     image.Point{X: DefaultAtlasWidth, Y: DefaultAtlasHeight},
		ScaleTolerance:        DefaultScaleTolerance,
		PositionTolerance:     DefaultPositionTolerance,
		Multithread:           true,
		DefaultLayout:         layout.Default(),
		CacheGlyphPositioning: true,
		CacheRedraws:          true,
	}
}

// AddFont appends f to the brush's font table and returns its FontId.
func (b *Builder) AddFont(f fontface.Font) fontface.FontId {
	id := fontface.FontId(len(b.Fonts))
	b.Fonts = append(b.Fonts, f)
	return id
}

// Build constructs the GlyphBrush. The returned brush owns its own copy
// of b's font table; further AddFont calls on b do not affect it.
func (b Builder) Build() *GlyphBrush {
	fonts := make([]fontface.Font, len(b.Fonts))
	copy(fonts, b.Fonts)

	a := atlas.New(atlas.Config{
		Dimensions:        b.InitialDimensions,
		ScaleTolerance:    b.ScaleTolerance,
		PositionTolerance: b.PositionTolerance,
		Multithread:       b.Multithread,
		Align4x4:          b.Align4x4,
	})

	return &GlyphBrush{
		fonts:                 fonts,
		atlas:                 a,
		hasher:                b.Hasher,
		defaultLayout:         b.DefaultLayout,
		cacheGlyphPositioning: b.CacheGlyphPositioning,
		cacheRedraws:          b.CacheRedraws,
		queued:                make(map[SectionID]queuedSection),
		lastHash:              make(map[SectionID]SectionHashDetail),
		lastGlyphs:            make(map[SectionID][]layout.PositionedGlyph),
		lastGeometry:          make(map[SectionID]SectionGeometry),
		keepInCache:           make(map[SectionID]struct{}),
	}
}
