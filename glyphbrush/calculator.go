package glyphbrush

import (
	"sync"

	"github.com/bloeys/glyphbrush/fontface"
	"github.com/bloeys/glyphbrush/layout"
)

// GlyphCalculator is GlyphBrush cut down to the parts that only need
// glyph positions and bounds, not an atlas — for callers that want to
// measure text (tooltips, auto-sizing a text box) without owning a GPU
// texture, grounded on original_source/src/glyph_calculator.rs's
// GlyphCalculator/GlyphCruncher split.
type GlyphCalculator struct {
	fonts  []fontface.Font
	hasher Hasher

	mu    sync.Mutex
	cache map[uint64]calculatedSection
}

type calculatedSection struct {
	bounds layout.Rect
	glyphs []layout.PositionedGlyph
}

// NewGlyphCalculator builds a GlyphCalculator over fonts, sharing the
// given Hasher (nil selects the xxhash default) with HashSection's
// cache-key computation.
func NewGlyphCalculator(fonts []fontface.Font, hasher Hasher) *GlyphCalculator {
	return &GlyphCalculator{
		fonts:  append([]fontface.Font(nil), fonts...),
		hasher: hasher,
		cache:  make(map[uint64]calculatedSection),
	}
}

// CacheScope opens a CalculatorGuard over the calculator's shared cache.
// Sections computed through the guard that survive to Finish stay cached
// for the next scope; everything else is evicted, mirroring the
// original's "drop ends the cache frame" behaviour without relying on Go
// having destructors.
func (gc *GlyphCalculator) CacheScope() *CalculatorGuard {
	gc.mu.Lock()
	return &CalculatorGuard{gc: gc, touched: make(map[uint64]struct{})}
}

// CalculatorGuard is one cache "frame" of a GlyphCalculator: every
// section computed through it is kept in the shared cache until Finish,
// at which point anything not touched during the scope is evicted.
type CalculatorGuard struct {
	gc      *GlyphCalculator
	touched map[uint64]struct{}
}

func (g *CalculatorGuard) keyAndLayout(section VariedSection, custom *layout.Layout) (uint64, layout.Layout) {
	l := section.Layout
	if custom != nil {
		l = *custom
	}

	// HashSection itself mixes in Mode/HAlign/VAlign, so hashing section
	// with its effective layout substituted in is enough to tell apart
	// two identical sections laid out differently (e.g. left vs.
	// center) without any separate key-mixing step.
	effective := section
	effective.Layout = l
	h := HashSection(g.gc.hasher, effective)
	return h.FullHash, l
}

func (g *CalculatorGuard) glyphsFor(section VariedSection, custom *layout.Layout) calculatedSection {
	key, l := g.keyAndLayout(section, custom)
	g.touched[key] = struct{}{}

	if cached, ok := g.gc.cache[key]; ok {
		return cached
	}

	ls := section.toLayoutSection()
	cs := calculatedSection{
		bounds: l.BoundsRect(ls),
		glyphs: l.CalculateGlyphs(g.gc.fonts, ls),
	}
	g.gc.cache[key] = cs
	return cs
}

// Glyphs returns section's positioned glyphs using section.Layout (the
// brush's own default layout is not consulted — a calculator has no
// DefaultLayout of its own, since it has no Builder-configured brush to
// inherit one from).
func (g *CalculatorGuard) Glyphs(section VariedSection) []layout.PositionedGlyph {
	return g.glyphsFor(section, nil).glyphs
}

// GlyphsCustomLayout is Glyphs with an explicit layout, overriding
// section.Layout.
func (g *CalculatorGuard) GlyphsCustomLayout(section VariedSection, custom layout.Layout) []layout.PositionedGlyph {
	return g.glyphsFor(section, &custom).glyphs
}

// PixelBounds returns the conservative whole-section pixel bounding box
// of section's glyphs, or ok=false if the section has no drawn glyphs at
// all (empty text, or every rune whitespace/control).
func (g *CalculatorGuard) PixelBounds(section VariedSection) (bounds layout.Rect, ok bool) {
	return g.pixelBounds(section, nil)
}

// PixelBoundsCustomLayout is PixelBounds with an explicit layout.
func (g *CalculatorGuard) PixelBoundsCustomLayout(section VariedSection, custom layout.Layout) (bounds layout.Rect, ok bool) {
	return g.pixelBounds(section, &custom)
}

func (g *CalculatorGuard) pixelBounds(section VariedSection, custom *layout.Layout) (layout.Rect, bool) {
	glyphs := g.glyphsFor(section, custom).glyphs
	if len(glyphs) == 0 {
		return layout.Rect{}, false
	}

	fonts := g.gc.fonts
	r := layout.Rect{MinX: glyphs[0].Position.X, MinY: glyphs[0].Position.Y, MaxX: glyphs[0].Position.X, MaxY: glyphs[0].Position.Y}
	matched := false

	for _, pg := range glyphs {
		face := fonts[pg.FontId].FaceAt(pg.Scale)
		min, max, _, hasBounds := face.GlyphBounds(pg.Rune)
		if !hasBounds {
			continue
		}

		minX, minY := pg.Position.X+min[0], pg.Position.Y+min[1]
		maxX, maxY := pg.Position.X+max[0], pg.Position.Y+max[1]

		if !matched || minX < r.MinX {
			r.MinX = minX
		}
		if !matched || minY < r.MinY {
			r.MinY = minY
		}
		if !matched || maxX > r.MaxX {
			r.MaxX = maxX
		}
		if !matched || maxY > r.MaxY {
			r.MaxY = maxY
		}
		matched = true
	}

	return r, matched
}

// Finish ends the cache scope, evicting every cached section that
// wasn't touched (via Glyphs/PixelBounds or a custom-layout variant)
// during it, then releasing the calculator's lock. Call it exactly once
// per CacheScope, typically deferred.
func (g *CalculatorGuard) Finish() {
	for key := range g.gc.cache {
		if _, ok := g.touched[key]; !ok {
			delete(g.gc.cache, key)
		}
	}
	g.gc.mu.Unlock()
}
