// Package layout implements spec.md §4's text layout pipeline: turning a
// section's runs of styled text into positioned glyphs, one line-break
// style, word, and line at a time.
package layout

import (
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// BreakKind distinguishes a break that only ends a word from one that
// also forces a new line (spec.md §4.B/D).
type BreakKind int

const (
	BreakSoft BreakKind = iota
	BreakHard
)

// Break is one candidate break point within a run of text: Offset is the
// byte offset immediately after the breaking character(s).
type Break struct {
	Offset int
	Kind   BreakKind
}

// LineBreaker produces the sequence of legal break points within text,
// in increasing Offset order. Implementations must be safe to reuse
// across many calls (see UnicodeLineBreaker/AnyCharLineBreaker, both
// stateless).
type LineBreaker interface {
	Breaks(text string) []Break
}

// UnicodeLineBreaker finds breaks per UAX #14, the default line breaker
// (spec.md §4.B): it wraps words the way most text editors do. The
// break at the end of text is hard only when the text ends in a line
// terminator, and soft otherwise.
type UnicodeLineBreaker struct{}

func (UnicodeLineBreaker) Breaks(text string) []Break {
	var out []Break
	state := -1
	offset := 0
	for len(text) > 0 {
		segment, rest, mustBreak, newState := uniseg.FirstLineSegmentInString(text, state)
		offset += len(segment)
		state = newState
		// uniseg reports mustBreak for the final segment of every text
		// (UAX #14 LB3); only a trailing line terminator makes it hard.
		if mustBreak && (len(rest) > 0 || uniseg.HasTrailingLineBreakInString(segment)) {
			out = append(out, Break{Offset: offset, Kind: BreakHard})
		} else {
			out = append(out, Break{Offset: offset, Kind: BreakSoft})
		}
		text = rest
	}
	return out
}

// AnyCharLineBreaker soft-breaks after every character, and hard-breaks
// wherever UnicodeLineBreaker would — useful for character-grid or
// CJK-dense layouts where wrapping mid-word is acceptable (spec.md §4.B
// alternate breaker).
type AnyCharLineBreaker struct{}

func (AnyCharLineBreaker) Breaks(text string) []Break {
	hard := UnicodeLineBreaker{}.Breaks(text)
	hardAt := make(map[int]bool, len(hard))
	for _, b := range hard {
		if b.Kind == BreakHard {
			hardAt[b.Offset] = true
		}
	}

	var out []Break
	for i := 0; i < len(text); {
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
		kind := BreakSoft
		if hardAt[i] {
			kind = BreakHard
		}
		out = append(out, Break{Offset: i, Kind: kind})
	}
	return out
}
