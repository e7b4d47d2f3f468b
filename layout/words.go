package layout

import (
	"unicode"

	"github.com/bloeys/glyphbrush/fontface"
)

// GlyphRun is one non-control character placed relative to its word's
// origin, not yet positioned on screen.
type GlyphRun struct {
	Rune     rune
	FontId   fontface.FontId
	Scale    fontface.Scale
	Color    Color
	Relative Point // position relative to the word's own origin
}

// Word is a maximal run of characters with no soft or hard break
// between them, plus the bookkeeping Lines needs to decide whether it
// fits on the current line (spec.md §4.C).
type Word struct {
	Glyphs []GlyphRun
	// LayoutWidth is the pixel advance width of the word, including any
	// trailing space run — Lines uses this to accumulate caret position
	// once a word has been placed.
	LayoutWidth float32
	// LayoutWidthNoTrail is LayoutWidth with the trailing whitespace
	// run's advance excluded (spec.md §4.C/D): Lines' greedy fit test
	// compares against this so a trailing space doesn't itself trigger
	// a wrap.
	LayoutWidthNoTrail float32
	// BoundsWidth is the rightmost ink extent of the word's glyphs from
	// its own origin.
	BoundsWidth float32
	HasBounds   bool
	MaxV        fontface.VMetrics
	HardBreak   bool
}

// Words groups chars into Word runs, looking up each character's font
// face for advance/kerning/metrics via fonts (indexed by FontId).
func Words(chars []Character, fonts []fontface.Font) []Word {
	var words []Word

	i := 0
	for i < len(chars) {
		var w Word
		var caretX, noTrailX float32
		var maxV fontface.VMetrics
		haveMaxV := false

		for ; i < len(chars); i++ {
			c := chars[i]
			font := fonts[c.FontId]
			face := font.FaceAt(c.Scale)

			v := font.Metrics(c.Scale)
			if !haveMaxV || v.Ascent > maxV.Ascent {
				maxV = v
				haveMaxV = true
			}

			if i > 0 && chars[i-1].FontId == c.FontId && chars[i-1].Scale == c.Scale && !chars[i-1].Control && !c.Control {
				caretX += face.Kern(chars[i-1].Rune, c.Rune)
			}

			advance, _ := face.Advance(c.Rune)

			if !c.Control {
				rel := Point{X: caretX, Y: 0}
				w.Glyphs = append(w.Glyphs, GlyphRun{
					Rune: c.Rune, FontId: c.FontId, Scale: c.Scale, Color: c.Color, Relative: rel,
				})

				if _, max, _, ok := face.GlyphBounds(c.Rune); ok {
					gMaxX := rel.X + max[0]
					if !w.HasBounds || gMaxX > w.BoundsWidth {
						w.BoundsWidth = gMaxX
						w.HasBounds = true
					}
				}
			}

			caretX += advance
			if !unicode.IsSpace(c.Rune) {
				noTrailX = caretX
			}

			if c.LineBreak != nil {
				if c.LineBreak.Kind == BreakHard {
					w.HardBreak = true
				}
				i++
				break
			}
		}

		w.LayoutWidth = caretX
		w.LayoutWidthNoTrail = noTrailX
		if haveMaxV {
			w.MaxV = maxV
		}
		words = append(words, w)
	}

	return words
}
