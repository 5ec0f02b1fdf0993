// Package text implements the text helpers used by inline layout:
// white-space processing, text-transform, line break opportunities,
// and host measurers based on x/image fonts.
package text

import (
	"strings"

	"github.com/go-text/typesetting/segmenter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	replacerCollapse = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")
	replacerNewlines = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\t", " ")
	replacerTabs     = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\t", "        ")
)

// PreservesSpaces returns true for white-space modes keeping
// sequences of spaces.
func PreservesSpaces(whiteSpace string) bool {
	return whiteSpace == "pre" || whiteSpace == "pre-wrap"
}

// PreservesNewlines returns true for white-space modes where
// newlines force a line break.
func PreservesNewlines(whiteSpace string) bool {
	return whiteSpace == "pre" || whiteSpace == "pre-wrap" || whiteSpace == "pre-line"
}

// Wraps returns true if lines may be broken to fit the available width.
func Wraps(whiteSpace string) bool {
	return whiteSpace != "nowrap" && whiteSpace != "pre"
}

// ProcessWhitespace applies the white-space processing rules of
// [whiteSpace] to [s]. [trailingSpace] tells if the previous text of
// the same inline formatting context ended with a collapsible space,
// in which case leading spaces are dropped. The returned flag is the
// value to use for the next text.
func ProcessWhitespace(s, whiteSpace string, trailingSpace bool) (string, bool) {
	if PreservesSpaces(whiteSpace) {
		return replacerTabs.Replace(s), false
	}
	keepNewlines := PreservesNewlines(whiteSpace)
	if keepNewlines {
		s = replacerNewlines.Replace(s)
	} else {
		s = replacerCollapse.Replace(s)
	}
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		switch r {
		case ' ':
			pendingSpace = true
		case '\n':
			// spaces around a preserved newline are removed
			pendingSpace, trailingSpace = false, true
			b.WriteByte('\n')
		default:
			if pendingSpace && !trailingSpace {
				b.WriteByte(' ')
			}
			pendingSpace, trailingSpace = false, false
			b.WriteRune(r)
		}
	}
	if pendingSpace && !trailingSpace {
		b.WriteByte(' ')
		trailingSpace = true
	}
	return b.String(), trailingSpace
}

// Transform applies the "text-transform" property.
func Transform(s, transform string) string {
	switch transform {
	case "uppercase":
		return cases.Upper(language.Und).String(s)
	case "lowercase":
		return cases.Lower(language.Und).String(s)
	case "capitalize":
		return cases.Title(language.Und, cases.NoLower).String(s)
	default:
		return s
	}
}

// Segment is a run of text ending at a line break opportunity.
// Text includes the trailing spaces, which are not counted at the end
// of a line.
type Segment struct {
	Text          string
	TrailingSpace string
}

// Word returns the text without its trailing spaces.
func (s Segment) Word() string { return s.Text[:len(s.Text)-len(s.TrailingSpace)] }

// Segments splits [s], which must not contain newlines, at its line
// break opportunities (UAX #14).
func Segments(s string) []Segment {
	if s == "" {
		return nil
	}
	var seg segmenter.Segmenter
	seg.Init([]rune(s))
	iter := seg.LineIterator()
	var out []Segment
	for iter.Next() {
		line := string(iter.Line().Text)
		word := strings.TrimRight(line, " ")
		out = append(out, Segment{Text: line, TrailingSpace: line[len(word):]})
	}
	return out
}
