package layout

import "github.com/bloeys/glyphbrush/fontface"

// Line is one or more Words accumulated up to a width bound, still
// relative to the line's own origin (spec.md §4.D).
type Line struct {
	Glyphs []GlyphRun
	MaxV   fontface.VMetrics
}

// Height is the line's total vertical extent (ascent to descent plus
// inter-line gap), used to advance the caret between lines and to size
// a Wrap layout's laid-out block for vertical alignment.
func (ln Line) Height() float32 {
	return ln.MaxV.Ascent - ln.MaxV.Descent + ln.MaxV.LineGap
}

// Lines packs words greedily into Line runs no wider than widthBound
// (a single word wider than widthBound still gets a line of its own),
// breaking early whenever a word carries a hard break, per spec.md
// §4.D's greedy wrap algorithm: a word is appended to the current line
// if it still fits, using each word's LayoutWidthNoTrail (not
// LayoutWidth, so a word's trailing whitespace advance doesn't itself
// trigger a wrap) against the caret position.
func Lines(words []Word, widthBound float32) []Line {
	var lines []Line

	var caretX, caretY float32
	var cur Line
	progressed := false

	flush := func() {
		if progressed {
			lines = append(lines, cur)
		}
		cur = Line{}
		caretX, caretY = 0, 0
		progressed = false
	}

	for _, w := range words {
		if progressed && ceilF32(caretX+w.LayoutWidthNoTrail) > widthBound {
			flush()
		}

		if w.MaxV.Ascent > cur.MaxV.Ascent {
			diffY := w.MaxV.Ascent - caretY
			caretY += diffY
			for i := range cur.Glyphs {
				cur.Glyphs[i].Relative.Y += diffY
			}
			cur.MaxV = w.MaxV
		}

		if w.HasBounds {
			for _, g := range w.Glyphs {
				g.Relative = g.Relative.Add(Point{X: caretX, Y: caretY})
				cur.Glyphs = append(cur.Glyphs, g)
			}
		}

		progressed = true

		if w.HardBreak {
			flush()
			continue
		}

		caretX += w.LayoutWidth
	}

	if progressed {
		lines = append(lines, cur)
	}

	return lines
}

func ceilF32(v float32) float32 {
	i := float32(int64(v))
	if i < v {
		return i + 1
	}
	return i
}
