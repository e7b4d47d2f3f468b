package atlas

import "golang.org/x/exp/slices"

// entry is the ordered map's value: where a GlyphSpec's rectangle lives.
type entry struct {
	spec GlyphSpec
	rowY int
	// localX/localY/width/height is the glyph's rectangle within the
	// atlas, in pixels, with localX/localY relative to the atlas origin
	// (not the row). Kept denormalized here (rather than re-derived from
	// row.glyphs) so RectFor doesn't need to re-rasterize or re-measure.
	localX, localY int
	width, height  int
	bearingX       float32
	bearingY       float32
}

// orderedMap is spec.md §3's "ordered map GlyphSpec → (row-key,
// index-within-row)", implemented as a slice kept sorted by
// compareGlyphSpec and searched with golang.org/x/exp/slices —
// binary search and range queries without pulling in a B-tree
// dependency the pack never shows for this exact shape.
type orderedMap struct {
	entries []entry
}

func (m *orderedMap) search(spec GlyphSpec) (idx int, found bool) {
	return slices.BinarySearchFunc(m.entries, spec, func(e entry, s GlyphSpec) int {
		return compareGlyphSpec(e.spec, s)
	})
}

func (m *orderedMap) get(spec GlyphSpec) (entry, bool) {
	idx, found := m.search(spec)
	if !found {
		return entry{}, false
	}
	return m.entries[idx], true
}

func (m *orderedMap) insert(e entry) {
	idx, found := m.search(e.spec)
	if found {
		m.entries[idx] = e
		return
	}
	m.entries = slices.Insert(m.entries, idx, e)
}

func (m *orderedMap) remove(spec GlyphSpec) {
	idx, found := m.search(spec)
	if !found {
		return
	}
	m.entries = slices.Delete(m.entries, idx, idx+1)
}

// neighbours returns the greatest entry <= target and the least entry
// >= target, per spec.md §4.F step 2. Either may be absent.
func (m *orderedMap) neighbours(target GlyphSpec) (lower, upper *entry) {
	idx, found := m.search(target)
	if found {
		return &m.entries[idx], &m.entries[idx]
	}
	if idx > 0 {
		lower = &m.entries[idx-1]
	}
	if idx < len(m.entries) {
		upper = &m.entries[idx]
	}
	return lower, upper
}
