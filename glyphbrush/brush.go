package glyphbrush

import (
	"image"

	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/glyphbrush/atlas"
	"github.com/bloeys/glyphbrush/fontface"
	"github.com/bloeys/glyphbrush/layout"
)

// SectionID identifies one queued section across frames so ProcessQueued
// can tell whether it is the same logical piece of text (and thus
// eligible for the unchanged and translate-only fast paths) as last
// frame. A color-only change (DiffColor) is laid out again in full;
// the previous glyph positions are not reused for it. Callers
// typically use a stable per-widget or per-label id.
type SectionID string

type queuedSection struct {
	section        VariedSection
	layoutOverride *layout.Layout
	prePositioned  []layout.PositionedGlyph
}

// GlyphBrush is the top-level orchestrator (spec.md §4.G): it owns a
// font table and an atlas, accepts queued sections each frame, and
// turns them into vertices through ProcessQueued.
type GlyphBrush struct {
	fonts         []fontface.Font
	atlas         *atlas.Atlas
	hasher        Hasher
	defaultLayout layout.Layout

	cacheGlyphPositioning bool
	cacheRedraws          bool

	queueOrder []SectionID
	queued     map[SectionID]queuedSection

	lastHash     map[SectionID]SectionHashDetail
	lastGlyphs   map[SectionID][]layout.PositionedGlyph
	lastGeometry map[SectionID]SectionGeometry

	keepInCache map[SectionID]struct{}

	// lastDrawState is a hash of the previous frame's whole queue
	// (spec.md §4.G's section_buffer), letting ProcessQueued short
	// circuit to ReDraw when nothing queued this frame differs at all.
	lastDrawState uint64
}

// BrushAction is ProcessQueued's per-frame result (spec.md §4.G, §6
// Glossary): either a fresh vertex buffer to upload, or ReDraw,
// meaning the caller should reuse the vertex buffer from its previous
// Draw verbatim because nothing queued this frame changed at all.
type BrushAction int

const (
	ActionDraw BrushAction = iota
	ActionReDraw
)

func (a BrushAction) String() string {
	if a == ActionReDraw {
		return "ReDraw"
	}
	return "Draw"
}

// AddFont appends f to the brush's font table, returning its FontId for
// use in SectionText.FontId.
func (gb *GlyphBrush) AddFont(f fontface.Font) fontface.FontId {
	id := fontface.FontId(len(gb.fonts))
	gb.fonts = append(gb.fonts, f)
	return id
}

// Queue schedules section for layout and caching on the next
// ProcessQueued call, using section.Layout (or the brush's default
// layout if section.Layout is the zero value) to position its glyphs.
func (gb *GlyphBrush) Queue(id SectionID, section VariedSection) {
	gb.enqueue(id, queuedSection{section: section})
}

// QueueCustomLayout is Queue with an explicit layout strategy,
// overriding both section.Layout and the brush's default — spec.md
// §4.G's escape hatch for layout logic the built-in Layout modes don't
// cover.
func (gb *GlyphBrush) QueueCustomLayout(id SectionID, section VariedSection, custom layout.Layout) {
	gb.enqueue(id, queuedSection{section: section, layoutOverride: &custom})
}

// QueuePrePositioned bypasses the layout pipeline entirely: glyphs are
// already placed in screen space (e.g. by an external shaper) and only
// need atlas caching and vertex generation. bounds is used for clipping
// in ToVertex the same way a normal section's BoundsRect is.
func (gb *GlyphBrush) QueuePrePositioned(id SectionID, glyphs []layout.PositionedGlyph, bounds layout.Rect, z float32) {
	gb.enqueue(id, queuedSection{
		prePositioned: glyphs,
		section: VariedSection{
			Geometry: SectionGeometry{
				ScreenPosition: layout.Point{X: bounds.MinX, Y: bounds.MinY},
				Bounds:         layout.Point{X: bounds.MaxX - bounds.MinX, Y: bounds.MaxY - bounds.MinY},
				Z:              z,
			},
		},
	})
}

func (gb *GlyphBrush) enqueue(id SectionID, q queuedSection) {
	if gb.queued == nil {
		gb.queued = make(map[SectionID]queuedSection)
	}
	if _, exists := gb.queued[id]; !exists {
		gb.queueOrder = append(gb.queueOrder, id)
	}
	gb.queued[id] = q
}

// KeepInCache marks id to survive a ProcessQueued call even if it isn't
// re-queued that frame — spec.md §4.G's explicit retention set, for
// sections drawn less often than every frame that would otherwise be
// evicted and relaid-out needlessly next time they are queued.
func (gb *GlyphBrush) KeepInCache(id SectionID) {
	gb.keepInCache[id] = struct{}{}
}

func (gb *GlyphBrush) layoutFor(q queuedSection) layout.Layout {
	if q.layoutOverride != nil {
		return *q.layoutOverride
	}
	if q.section.Layout.Breaker != nil {
		return q.section.Layout
	}
	return gb.defaultLayout
}

func (gb *GlyphBrush) computeGlyphs(q queuedSection) []layout.PositionedGlyph {
	if q.prePositioned != nil {
		return q.prePositioned
	}
	return gb.layoutFor(q).CalculateGlyphs(gb.fonts, q.section.toLayoutSection())
}

// effectiveHash hashes q's section with its effective layout (the
// custom override, section.Layout, or the brush default — whichever
// layoutFor would pick) substituted in, so a custom-layout override
// that leaves section.Layout at its zero value still hashes the layout
// that will actually be used (spec.md §3's "text + layout + scale +
// font-id only").
func (gb *GlyphBrush) effectiveHash(q queuedSection) SectionHashDetail {
	effective := q.section
	effective.Layout = gb.layoutFor(q)
	return HashSection(gb.hasher, effective)
}

// drawState hashes the whole queue in draw order (spec.md §4.G's
// section_buffer, step 1), including pre-positioned glyph data, so
// ProcessQueued can tell whether anything queued this frame differs
// from last frame at all without re-running layout.
func (gb *GlyphBrush) drawState() uint64 {
	newHasher := gb.hasher
	if newHasher == nil {
		newHasher = newXxhash
	}
	h := newHasher()

	for _, id := range gb.queueOrder {
		q := gb.queued[id]
		writeString(h, string(id))
		if q.prePositioned != nil {
			writePrePositioned(h, q.prePositioned)
			continue
		}
		writeU64(h, gb.effectiveHash(q).FullHash)
	}
	return h.Sum64()
}

// ProcessQueued lays out every section queued since the last call,
// reusing cached layout where the section's hash says it is safe to
// (spec.md §4.G), caches every visible glyph in the atlas, and builds
// one V per visible glyph via build. It is a free function rather than
// a method because Go methods cannot carry their own type parameters.
func ProcessQueued[V any](gb *GlyphBrush, upload atlas.UploadFunc, build func(GlyphVertex) V) (BrushAction, []V, error) {

	state := gb.drawState()
	if gb.cacheGlyphPositioning && gb.cacheRedraws && state == gb.lastDrawState {
		// spec.md §4.G step 2: nothing queued this frame differs from
		// last frame at all — skip layout, atlas and vertex work
		// entirely and tell the caller to reuse its last Draw.
		gb.queued = make(map[SectionID]queuedSection)
		gb.queueOrder = nil
		return ActionReDraw, nil, nil
	}

	type sectionResult struct {
		id      SectionID
		section VariedSection
		bounds  layout.Rect
		glyphs  []layout.PositionedGlyph
	}
	results := make([]sectionResult, 0, len(gb.queueOrder))

	for _, id := range gb.queueOrder {
		q := gb.queued[id]
		bounds := gb.layoutFor(q).BoundsRect(q.section.toLayoutSection())
		curHash := gb.effectiveHash(q)
		prevHash, hadPrev := gb.lastHash[id]

		var glyphs []layout.PositionedGlyph
		switch {
		case !hadPrev:
			glyphs = gb.computeGlyphs(q)

		case prevHash.Diff(curHash) == DiffNone:
			// Byte-for-byte identical to last frame: nothing to recompute.
			glyphs = gb.lastGlyphs[id]

		case prevHash.Diff(curHash) == DiffGeometry && q.prePositioned == nil:
			prevGeom := gb.lastGeometry[id]
			if prevGeom.Bounds == q.section.Geometry.Bounds {
				delta := layout.Point{
					X: q.section.Geometry.ScreenPosition.X - prevGeom.ScreenPosition.X,
					Y: q.section.Geometry.ScreenPosition.Y - prevGeom.ScreenPosition.Y,
				}
				glyphs = layout.Translate(gb.lastGlyphs[id], delta)
			} else {
				glyphs = gb.computeGlyphs(q)
			}

		default:
			glyphs = gb.computeGlyphs(q)
		}

		gb.lastHash[id] = curHash
		gb.lastGlyphs[id] = glyphs
		gb.lastGeometry[id] = q.section.Geometry

		for _, g := range glyphs {
			gb.atlas.QueueGlyph(g.FontId, atlas.Glyph{
				Rune:     g.Rune,
				Scale:    g.Scale,
				Position: atlas.Position(g.Position),
			})
		}

		results = append(results, sectionResult{id: id, section: q.section, bounds: bounds, glyphs: glyphs})
	}

	if gb.cacheGlyphPositioning {
		gb.purgeUnqueued()
	} else {
		// spec.md §3's Lifecycle: with positioning caching disabled the
		// layout cache is cleared every frame rather than on a
		// not-requeued delay.
		gb.lastHash = make(map[SectionID]SectionHashDetail)
		gb.lastGlyphs = make(map[SectionID][]layout.PositionedGlyph)
		gb.lastGeometry = make(map[SectionID]SectionGeometry)
	}
	gb.queued = make(map[SectionID]queuedSection)
	gb.queueOrder = nil

	_, err := gb.atlas.CacheQueued(gb.fonts, upload)
	if err != nil {
		if tooSmall, ok := err.(*atlas.ErrTextureTooSmall); ok {
			return ActionDraw, nil, &ErrTextureTooSmall{Suggested: doubled(tooSmall.Suggested)}
		}
		return ActionDraw, nil, err
	}

	var out []V
	for _, r := range results {
		bounds := r.bounds

		for _, g := range r.glyphs {
			idx := gb.fonts[g.FontId].Index(g.Rune)
			uv, pixel, err := gb.atlas.RectFor(g.FontId, idx, g.Scale, atlas.Position(g.Position))
			if err != nil {
				continue // whitespace/empty glyph: never placed in the atlas, nothing to draw
			}

			gv := GlyphVertex{
				TexCoords:   gglm.Vec4{Data: [4]float32{uv.MinX, uv.MinY, uv.MaxX, uv.MaxY}},
				PixelCoords: gglm.Vec4{Data: [4]float32{pixel.MinX, pixel.MinY, pixel.MaxX, pixel.MaxY}},
				Bounds:      gglm.Vec4{Data: [4]float32{bounds.MinX, bounds.MinY, bounds.MaxX, bounds.MaxY}},
				Color:       gglm.Vec4{Data: [4]float32{g.Color[0], g.Color[1], g.Color[2], g.Color[3]}},
				Z:           r.section.Geometry.Z,
			}
			if v, ok := ToVertex(gv, build); ok {
				out = append(out, v)
			}
		}
	}

	gb.lastDrawState = state
	return ActionDraw, out, nil
}

// purgeUnqueued drops cached state for any section not re-queued this
// frame and not explicitly kept via KeepInCache.
func (gb *GlyphBrush) purgeUnqueued() {
	for id := range gb.lastHash {
		if _, stillQueued := gb.queued[id]; stillQueued {
			continue
		}
		if _, kept := gb.keepInCache[id]; kept {
			continue
		}
		delete(gb.lastHash, id)
		delete(gb.lastGlyphs, id)
		delete(gb.lastGeometry, id)
	}
}

// ResizeTexture rebuilds the brush's atlas at the given dimensions,
// dropping every cached glyph rectangle, and resets last_draw_state so
// the next ProcessQueued call cannot short circuit to ReDraw on a
// texture that no longer holds anything (spec.md §4.G) — callers
// should call this in response to an *ErrTextureTooSmall and re-queue
// every section afterward.
func (gb *GlyphBrush) ResizeTexture(dims image.Point) {
	gb.atlas.Rebuild(dims)
	gb.lastDrawState = 0
}
