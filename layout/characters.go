package layout

import (
	"unicode"
	"unicode/utf8"

	"github.com/bloeys/glyphbrush/fontface"
)

// Character is one decoded, styled, possibly-breaking codepoint —
// spec.md §4.B's per-codepoint iteration unit.
type Character struct {
	Rune      rune
	FontId    fontface.FontId
	Scale     fontface.Scale
	Color     Color
	Control   bool
	LineBreak *Break // non-nil if a break falls immediately after this rune (a soft break at a run's end is not recorded)
}

// Characters flattens every run in texts into one sequence of
// Character, resolving line breaks per-run via breaker. A run's breaks
// are computed once, over that run's text only: breaks never span two
// SectionText runs, matching spec.md §4.B ("apply the line breaker
// independently within each section-text's text run").
func Characters(texts []SectionText, breaker LineBreaker) []Character {
	var out []Character

	for _, run := range texts {
		breaks := breaker.Breaks(run.Text)
		breakAt := make(map[int]*Break, len(breaks))
		for i := range breaks {
			breakAt[breaks[i].Offset] = &breaks[i]
		}

		offset := 0
		for _, r := range run.Text {
			size := utf8.RuneLen(r)
			offset += size

			c := Character{
				Rune:    r,
				FontId:  run.FontId,
				Scale:   run.Scale,
				Color:   run.Color,
				Control: unicode.IsControl(r),
			}
			if b, ok := breakAt[offset]; ok && (offset < len(run.Text) || b.Kind == BreakHard) {
				c.LineBreak = b
			}
			out = append(out, c)
		}

		// spec.md §4.B: the end of a run does NOT itself end a word. The
		// break a LineBreaker reports at a run's final byte is kept only
		// when it is hard (the run ends in a line terminator); a soft one
		// is dropped. Words' own loop termination already closes the
		// final word when characters run out, so a word started in one
		// SectionText run can continue into the next (e.g. "wo"+"rld"
		// split only by color/font, not content).
	}

	return out
}
