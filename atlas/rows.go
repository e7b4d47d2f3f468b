package atlas

import "sort"

// row is one horizontal shelf of the atlas: a fixed y-offset and height,
// a monotonically-growing fill cursor, and the glyphs currently placed
// in it in placement order (used to drop their ordered-map entries,
// see ordered.go, when the row is evicted).
type row struct {
	y, height int
	width     int // current fill cursor; grows, never shrinks
	glyphs    []GlyphSpec

	lastTouch     uint64 // recency counter for LRU eviction
	inUseThisCall bool   // forbidden from eviction within the current CacheQueued call
}

// rowSet owns every row plus the free vertical gaps between them. The
// invariant spec.md §3 names — row intervals ∪ free-gap intervals ==
// [0, height) exactly, no two rows overlap — is maintained by every
// method below; gapByStart/gapByEnd mirror each other so a freed
// interval can be coalesced with an adjacent gap in O(1).
type rowSet struct {
	height int
	rows   map[int]*row // keyed by y (top)

	gapByStart map[int]int // startY -> gap height
	gapByEnd   map[int]int // endY (== startY+height) -> startY

	touch uint64
}

func newRowSet(height int) *rowSet {
	rs := &rowSet{
		height:     height,
		rows:       make(map[int]*row),
		gapByStart: make(map[int]int),
		gapByEnd:   make(map[int]int),
	}
	if height > 0 {
		rs.addFreeGap(0, height)
	}
	return rs
}

func (rs *rowSet) addFreeGap(start, height int) {
	if height <= 0 {
		return
	}

	// Coalesce with a gap ending exactly where this one starts.
	if prevStart, ok := rs.gapByEnd[start]; ok {
		prevHeight := rs.gapByStart[prevStart]
		delete(rs.gapByStart, prevStart)
		delete(rs.gapByEnd, start)
		start = prevStart
		height += prevHeight
	}

	end := start + height
	// Coalesce with a gap starting exactly where this one ends.
	if nextHeight, ok := rs.gapByStart[end]; ok {
		delete(rs.gapByStart, end)
		delete(rs.gapByEnd, end+nextHeight)
		height += nextHeight
		end = start + height
	}

	rs.gapByStart[start] = height
	rs.gapByEnd[end] = start
}

func (rs *rowSet) removeFreeGap(start int) {
	height, ok := rs.gapByStart[start]
	if !ok {
		return
	}
	delete(rs.gapByStart, start)
	delete(rs.gapByEnd, start+height)
}

// takeSmallestFittingGap finds the smallest free gap whose height is at
// least minHeight (best fit, per spec.md §4.F step 3's "smallest free
// vertical gap of sufficient height"), removes it, and returns its
// start and height. Any leftover above minHeight is re-added as a new,
// smaller gap by the caller once it knows how tall the new row actually
// is.
func (rs *rowSet) takeSmallestFittingGap(minHeight int) (start, height int, ok bool) {
	bestStart, bestHeight := -1, -1
	for s, h := range rs.gapByStart {
		if h < minHeight {
			continue
		}
		if bestHeight == -1 || h < bestHeight || (h == bestHeight && s < bestStart) {
			bestStart, bestHeight = s, h
		}
	}
	if bestHeight == -1 {
		return 0, 0, false
	}
	rs.removeFreeGap(bestStart)
	return bestStart, bestHeight, true
}

// addRow inserts a new row of the given height starting at start,
// consuming exactly that much of whatever gap the caller already took.
func (rs *rowSet) addRow(start, height int) *row {
	rs.touch++
	r := &row{y: start, height: height, lastTouch: rs.touch}
	rs.rows[start] = r
	return r
}

func (rs *rowSet) touchRow(r *row) {
	rs.touch++
	r.lastTouch = rs.touch
}

// mruOrder returns row y-keys ordered most-recently-used first, per
// spec.md §4.F step 3's "iterate rows by most-recently-used first".
func (rs *rowSet) mruOrder() []int {
	keys := make([]int, 0, len(rs.rows))
	for y := range rs.rows {
		keys = append(keys, y)
	}
	sort.Slice(keys, func(i, j int) bool {
		return rs.rows[keys[i]].lastTouch > rs.rows[keys[j]].lastTouch
	})
	return keys
}

// evictLRU removes the least-recently-used row not marked in-use this
// call, frees its interval, and returns the evicted row's glyphs so the
// caller can drop their ordered-map entries. ok is false if every row
// is in use.
func (rs *rowSet) evictLRU() (evicted *row, ok bool) {
	var victim *row
	for _, r := range rs.rows {
		if r.inUseThisCall {
			continue
		}
		if victim == nil || r.lastTouch < victim.lastTouch {
			victim = r
		}
	}
	if victim == nil {
		return nil, false
	}

	delete(rs.rows, victim.y)
	rs.addFreeGap(victim.y, victim.height)
	return victim, true
}

// clearUsageMarks resets inUseThisCall ahead of a new CacheQueued call.
func (rs *rowSet) clearUsageMarks() {
	for _, r := range rs.rows {
		r.inUseThisCall = false
	}
}

// reset drops every row and gap, replacing them with one gap spanning
// the whole atlas height. Used both by Rebuild and by the
// retry-then-clear path in CacheQueued.
func (rs *rowSet) reset() {
	rs.rows = make(map[int]*row)
	rs.gapByStart = make(map[int]int)
	rs.gapByEnd = make(map[int]int)
	if rs.height > 0 {
		rs.addFreeGap(0, rs.height)
	}
}
