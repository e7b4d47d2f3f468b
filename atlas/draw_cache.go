package atlas

import (
	"image"
	"math"
	"sort"

	"github.com/bloeys/glyphbrush/fontface"
	"github.com/bloeys/glyphbrush/internal/assert"
	"golang.org/x/sync/errgroup"
)

// UploadFunc mirrors spec.md §6's update_texture callback: rect's
// origin is the top-left of the changed region within the atlas, and
// pix holds rect.Dx()*rect.Dy() bytes of 8-bit alpha coverage, row-major
// with stride == rect.Dx().
type UploadFunc func(rect image.Rectangle, pix []byte)

// CachedBy reports what CacheQueued had to do to satisfy the current
// queue, per spec.md §4.F step 6.
type CachedBy int

const (
	// CachedByAdding means every queued glyph was either already cached
	// or placed without disturbing any existing rectangle.
	CachedByAdding CachedBy = iota
	// CachedByReordering means at least one existing rectangle moved —
	// the eviction loop ran, or a retry-clear happened (spec.md §9's
	// "safe choice" for the retry-clear open question) — so the caller
	// must treat every previously cached UV as invalid.
	CachedByReordering
)

// Config configures an Atlas, matching spec.md §4.F and
// glyphbrush.Builder's atlas-facing options.
type Config struct {
	Dimensions        image.Point
	ScaleTolerance    float32
	PositionTolerance float32
	Multithread       bool
	Align4x4          bool
}

const (
	minScaleTolerance    = 0.001
	minPositionTolerance = 0.001
)

func (c *Config) normalize() {
	if c.ScaleTolerance < minScaleTolerance {
		c.ScaleTolerance = minScaleTolerance
	}
	if c.PositionTolerance < minPositionTolerance {
		c.PositionTolerance = minPositionTolerance
	}
}

type pendingEntry struct {
	fontID fontface.FontId
	glyph  Glyph
}

// Atlas is the CPU-side mirror of the GPU glyph texture described in
// spec.md §4.F. It owns no GPU resources itself — every pixel it
// produces leaves through the UploadFunc passed to CacheQueued.
type Atlas struct {
	cfg     Config
	rows    *rowSet
	entries orderedMap
	pending []pendingEntry
}

// New creates an Atlas with the given configuration. Tolerances below
// the spec's minimums are clamped up to them.
func New(cfg Config) *Atlas {
	cfg.normalize()
	return &Atlas{
		cfg:  cfg,
		rows: newRowSet(cfg.Dimensions.Y),
	}
}

// QueueGlyph pushes g into the pending list for the next CacheQueued
// call. Cheap: no font lookups or rasterization happen here.
func (a *Atlas) QueueGlyph(fontID fontface.FontId, g Glyph) {
	a.pending = append(a.pending, pendingEntry{fontID: fontID, glyph: g})
}

type resolvedGlyph struct {
	spec           GlyphSpec
	rne            rune
	fontID         fontface.FontId
	scale          fontface.Scale
	offset         fontface.SubpixelOffset
	allocW, allocH int
}

// CacheQueued resolves every glyph queued since the last call: reuses
// existing atlas rectangles within tolerance, packs the rest, evicting
// LRU rows as needed, and uploads newly rasterized pixels through
// upload. See spec.md §4.F for the full algorithm this implements.
func (a *Atlas) CacheQueued(fonts []fontface.Font, upload UploadFunc) (CachedBy, error) {
	by, err := a.cacheQueued(fonts, upload, false)
	a.pending = a.pending[:0]
	return by, err
}

func (a *Atlas) cacheQueued(fonts []fontface.Font, upload UploadFunc, isRetry bool) (CachedBy, error) {

	resolved := make([]resolvedGlyph, 0, len(a.pending))
	for _, p := range a.pending {

		assert.T(int(p.fontID) >= 0 && int(p.fontID) < len(fonts), "invalid FontId %d (font table has %d entries)", p.fontID, len(fonts))

		f := fonts[p.fontID]
		idx := f.Index(p.glyph.Rune)
		offset := fontface.Normalize(fontface.SubpixelOffset{X: p.glyph.Position.X, Y: p.glyph.Position.Y})
		spec := GlyphSpec{FontId: p.fontID, Glyph: idx, Scale: p.glyph.Scale, Offset: offset}

		face := f.FaceAt(p.glyph.Scale)
		minXY, maxXY, _, ok := face.GlyphBounds(p.glyph.Rune)
		w, h := 0, 0
		if ok {
			w = pixelCeil(maxXY[0] - minXY[0])
			h = pixelCeil(maxXY[1] - minXY[1])
		}
		if a.cfg.Align4x4 {
			w, h = align4(w), align4(h)
		}

		resolved = append(resolved, resolvedGlyph{
			spec: spec, rne: p.glyph.Rune, fontID: p.fontID,
			scale: p.glyph.Scale, offset: offset,
			allocW: w, allocH: h,
		})
	}

	// Sort by descending pixel-bounding-box height for better packing
	// (spec.md §4.F step 1). Stable: any tie-break is fine.
	sort.SliceStable(resolved, func(i, j int) bool { return resolved[i].allocH > resolved[j].allocH })

	a.rows.clearUsageMarks()

	toPlace := resolved[:0:0]
	for _, rg := range resolved {

		if rg.allocW <= 0 || rg.allocH <= 0 {
			continue // invisible glyph (whitespace, empty outline)
		}

		if e, ok := a.matchExisting(rg.spec); ok {
			r := a.rows.rows[e.rowY]
			a.rows.touchRow(r)
			r.inUseThisCall = true
			continue
		}

		toPlace = append(toPlace, rg)
	}

	reordered, err := a.placeAll(toPlace, fonts)
	if err != nil {
		if isRetry {
			return 0, err
		}
		a.clearAll()
		if _, err2 := a.cacheQueued(fonts, upload, true); err2 != nil {
			return 0, err2
		}
		return CachedByReordering, nil
	}

	if err := a.rasterizeAndUpload(toPlace, fonts, upload); err != nil {
		return 0, err
	}

	if reordered {
		return CachedByReordering, nil
	}
	return CachedByAdding, nil
}

// matchExisting applies spec.md §4.F step 2's tolerance search: the
// greatest spec <= target and the least spec >= target, each tested for
// fit, the closer (weighted-distance) one winning ties going to the
// lower candidate (spec.md §9).
func (a *Atlas) matchExisting(target GlyphSpec) (entry, bool) {

	lower, upper := a.entries.neighbours(target)

	var best *entry
	var bestDist float32

	if lower != nil {
		if d, ok := withinTolerance(target, lower.spec, a.cfg.ScaleTolerance, a.cfg.PositionTolerance); ok {
			best, bestDist = lower, d
		}
	}
	if upper != nil {
		if d, ok := withinTolerance(target, upper.spec, a.cfg.ScaleTolerance, a.cfg.PositionTolerance); ok {
			if best == nil || d < bestDist {
				best, bestDist = upper, d
			}
		}
	}

	if best == nil {
		return entry{}, false
	}
	return *best, true
}

// placeAll runs spec.md §4.F step 3's allocation loop for every glyph in
// toPlace (already sorted descending by height), returning whether any
// eviction happened.
func (a *Atlas) placeAll(toPlace []resolvedGlyph, fonts []fontface.Font) (reordered bool, err error) {

	for i := range toPlace {
		rg := &toPlace[i]

		for {
			if r, ok := a.findFittingRow(rg.allocW, rg.allocH); ok {
				a.placeInRow(r, rg)
				break
			}

			if start, height, ok := a.rows.takeSmallestFittingGap(rg.allocH); ok {
				r := a.rows.addRow(start, rg.allocH)
				if leftover := height - rg.allocH; leftover > 0 {
					a.rows.addFreeGap(start+rg.allocH, leftover)
				}
				a.placeInRow(r, rg)
				break
			}

			if victim, ok := a.rows.evictLRU(); ok {
				a.removeRowEntries(victim)
				reordered = true
				continue
			}

			return reordered, &ErrTextureTooSmall{Suggested: a.cfg.Dimensions}
		}
	}

	return reordered, nil
}

func (a *Atlas) findFittingRow(w, h int) (*row, bool) {
	for _, y := range a.rows.mruOrder() {
		r := a.rows.rows[y]
		if r.height >= h && a.cfg.Dimensions.X-r.width >= w {
			return r, true
		}
	}
	return nil, false
}

func (a *Atlas) placeInRow(r *row, rg *resolvedGlyph) {
	localX := r.width
	r.width += rg.allocW
	r.glyphs = append(r.glyphs, rg.spec)
	a.rows.touchRow(r)
	r.inUseThisCall = true

	a.entries.insert(entry{
		spec:   rg.spec,
		rowY:   r.y,
		localX: localX,
		localY: r.y,
		width:  rg.allocW,
		height: rg.allocH,
	})
}

func (a *Atlas) removeRowEntries(r *row) {
	for _, spec := range r.glyphs {
		a.entries.remove(spec)
	}
}

func (a *Atlas) clearAll() {
	a.rows.reset()
	a.entries = orderedMap{}
}

// rasterizeAndUpload rasterizes every newly placed glyph and calls
// upload for each, serially, regardless of cfg.Multithread — only the
// rasterization step itself fans out (spec.md §5).
func (a *Atlas) rasterizeAndUpload(placed []resolvedGlyph, fonts []fontface.Font, upload UploadFunc) error {

	if len(placed) == 0 {
		return nil
	}

	rasters := make([]*fontface.Raster, len(placed))

	rasterOne := func(i int) {
		rg := placed[i]
		face := fonts[rg.fontID].FaceAt(rg.scale)
		r, ok := face.Rasterize(rg.rne, rg.offset)
		if ok {
			rasters[i] = r
		}
	}

	if a.cfg.Multithread {
		var g errgroup.Group
		for i := range placed {
			i := i
			g.Go(func() error {
				rasterOne(i)
				return nil
			})
		}
		_ = g.Wait() // rasterOne never returns an error; fan-out is fire-and-forget
	} else {
		for i := range placed {
			rasterOne(i)
		}
	}

	for i, rg := range placed {
		e, ok := a.entries.get(rg.spec)
		if !ok {
			continue // evicted again by a later glyph's allocation in this same call
		}

		raster := rasters[i]
		if raster == nil {
			// Rasterization failure: treated as a missing glyph, not an
			// error (spec.md §7). Leave the allocated rect blank.
			continue
		}

		e.bearingX, e.bearingY = raster.OffsetX, raster.OffsetY
		a.entries.insert(e)

		rect := image.Rect(e.localX, e.localY, e.localX+raster.Width, e.localY+raster.Height)
		upload(rect, raster.Pix)
	}

	return nil
}

// RectFor mirrors the tolerance search in CacheQueued (spec.md §4.F
// step 2) to answer "where is this glyph, if cached": the returned
// pixel rectangle is anchored at the requested position, but its size
// and UV come from whichever entry matched, so a reused rasterization's
// bearing drives on-screen placement (spec.md §4.F "rect_for"). idx must
// already be resolved by the caller (glyphbrush.GlyphBrush keeps its own
// font table and resolves FontId+rune→GlyphIndex once per glyph before
// calling either QueueGlyph or RectFor, so both sides agree).
func (a *Atlas) RectFor(fontID fontface.FontId, idx fontface.GlyphIndex, scale fontface.Scale, pos Position) (uv, pixel Rect, err error) {

	offset := fontface.Normalize(fontface.SubpixelOffset{X: pos.X, Y: pos.Y})
	target := GlyphSpec{FontId: fontID, Glyph: idx, Scale: scale, Offset: offset}

	e, ok := a.matchExisting(target)
	if !ok {
		return Rect{}, Rect{}, errGlyphNotCached
	}

	w, h := float32(e.width), float32(e.height)
	atlasW, atlasH := float32(a.cfg.Dimensions.X), float32(a.cfg.Dimensions.Y)

	uv = Rect{
		MinX: float32(e.localX) / atlasW,
		MinY: float32(e.localY) / atlasH,
		MaxX: float32(e.localX+e.width) / atlasW,
		MaxY: float32(e.localY+e.height) / atlasH,
	}

	originX := pos.X + e.bearingX
	originY := pos.Y + e.bearingY
	pixel = Rect{
		MinX: originX,
		MinY: originY,
		MaxX: originX + w,
		MaxY: originY + h,
	}
	return uv, pixel, nil
}

// ToBuilder returns the Atlas's current Config so a caller can construct
// a resized Atlas (via New) without carrying over any cached contents —
// spec.md §4.F's "to_builder()".
func (a *Atlas) ToBuilder() Config {
	return a.cfg
}

// Rebuild reallocates the backing grid at dims, dropping every cached
// entry — spec.md §4.F's "rebuild(&mut self)".
func (a *Atlas) Rebuild(dims image.Point) {
	a.cfg.Dimensions = dims
	a.rows = newRowSet(dims.Y)
	a.entries = orderedMap{}
	a.pending = a.pending[:0]
}

// Dimensions returns the atlas's current pixel size.
func (a *Atlas) Dimensions() image.Point { return a.cfg.Dimensions }

func pixelCeil(v float32) int {
	return int(math.Ceil(float64(v)))
}

func align4(v int) int {
	if v <= 0 {
		return v
	}
	return (v + 3) &^ 3
}
