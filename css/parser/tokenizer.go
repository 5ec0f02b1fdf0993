package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/benoitkugler/boxlayout/utils"
)

var (
	numberRe    = regexp.MustCompile(`^[-+]?([0-9]*\.)?[0-9]+([eE][+-]?[0-9]+)?`)
	hexEscapeRe = regexp.MustCompile(`^([0-9A-Fa-f]{1,6})[ \n\t]?`)
)

// Tokenize splits a declaration list into component values.
// Comments are dropped. Unterminated strings and unbalanced
// parenthesis are reported as KError tokens.
func Tokenize(css string) []Token {
	css = strings.NewReplacer("\u0000", "�", "\r\n", "\n", "\r", "\n", "\f", "\n").Replace(css)
	var (
		out   []Token
		stack []*[]Token // function arguments being filled
	)
	current := &out
	line, lineStart := 1, 0
	pos := 0
	for pos < len(css) {
		tokenPos := Pos{Line: line, Column: pos - lineStart + 1}
		c := css[pos]
		switch {
		case c == ' ' || c == '\n' || c == '\t':
			start := pos
			for pos < len(css) && (css[pos] == ' ' || css[pos] == '\n' || css[pos] == '\t') {
				if css[pos] == '\n' {
					line++
					lineStart = pos + 1
				}
				pos++
			}
			*current = append(*current, Token{Pos: tokenPos, Kind: KWhitespace, Text: css[start:pos]})
			continue
		case strings.HasPrefix(css[pos:], "/*"):
			end := strings.Index(css[pos+2:], "*/")
			if end == -1 {
				pos = len(css)
			} else {
				pos += end + 4
			}
			continue
		case isIdentStart(css, pos):
			var name string
			name, pos = consumeIdent(css, pos)
			if pos < len(css) && css[pos] == '(' {
				pos++
				*current = append(*current, Token{Pos: tokenPos, Kind: KFunction, Text: strings.ToLower(name)})
				fn := &(*current)[len(*current)-1]
				stack = append(stack, current)
				current = &fn.Arguments
				continue
			}
			*current = append(*current, Token{Pos: tokenPos, Kind: KIdent, Text: name})
			continue
		}

		if match := numberRe.FindStringIndex(css[pos:]); match != nil {
			repr := css[pos : pos+match[1]]
			pos += match[1]
			value, _ := strconv.ParseFloat(repr, 32)
			if value == 0 {
				value = 0 // avoid -0
			}
			_, err := strconv.ParseInt(repr, 10, 0)
			tok := Token{Pos: tokenPos, Kind: KNumber, Text: repr, Value: utils.Fl(value), IsInteger: err == nil}
			if pos < len(css) && isIdentStart(css, pos) {
				tok.Kind = KDimension
				tok.Unit, pos = consumeIdent(css, pos)
				tok.Unit = strings.ToLower(tok.Unit)
			} else if pos < len(css) && css[pos] == '%' {
				tok.Kind = KPercentage
				pos++
			}
			*current = append(*current, tok)
			continue
		}

		switch c {
		case '"', '\'':
			value, newPos, ok := consumeQuotedString(css, pos)
			pos = newPos
			if !ok {
				*current = append(*current, Token{Pos: tokenPos, Kind: KError, Text: "bad-string"})
				continue
			}
			*current = append(*current, Token{Pos: tokenPos, Kind: KString, Text: value})
		case '#':
			pos++
			if pos < len(css) && (isNameStart(css, pos) || ('0' <= css[pos] && css[pos] <= '9') || css[pos] == '-') {
				var name string
				name, pos = consumeIdent(css, pos)
				*current = append(*current, Token{Pos: tokenPos, Kind: KHash, Text: name})
			} else {
				*current = append(*current, Token{Pos: tokenPos, Kind: KLiteral, Text: "#"})
			}
		case ')':
			pos++
			if len(stack) == 0 {
				*current = append(*current, Token{Pos: tokenPos, Kind: KError, Text: ")"})
				continue
			}
			current = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		default:
			r, w := utf8.DecodeRuneInString(css[pos:])
			pos += w
			*current = append(*current, Token{Pos: tokenPos, Kind: KLiteral, Text: string(r)})
		}
	}
	if len(stack) != 0 {
		out = append(out, Token{Pos: Pos{Line: line, Column: pos - lineStart + 1}, Kind: KError, Text: "eof-in-function"})
	}
	return out
}

// Return true if the given character is a name-start code point.
func isNameStart(css string, pos int) bool {
	c, _ := utf8.DecodeRuneInString(css[pos:])
	return c > 0x7F || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_'
}

// Return true if the given position is the start of a CSS identifier.
func isIdentStart(css string, pos int) bool {
	switch {
	case isNameStart(css, pos):
		return true
	case css[pos] == '-':
		pos++
		if pos >= len(css) {
			return false
		}
		return isNameStart(css, pos) || css[pos] == '-' ||
			(css[pos] == '\\' && !strings.HasPrefix(css[pos:], "\\\n"))
	case css[pos] == '\\':
		return !strings.HasPrefix(css[pos:], "\\\n")
	}
	return false
}

func consumeIdent(css string, pos int) (string, int) {
	var chunks strings.Builder
	startPos := pos
	for pos < len(css) {
		c, w := utf8.DecodeRuneInString(css[pos:])
		if c == '-' || c == '_' || c > 0x7F || unicode.IsLetter(c) || unicode.IsDigit(c) {
			pos += w
		} else if c == '\\' && !strings.HasPrefix(css[pos:], "\\\n") {
			chunks.WriteString(css[startPos:pos])
			var car string
			car, pos = consumeEscape(css, pos+w)
			chunks.WriteString(car)
			startPos = pos
		} else {
			break
		}
	}
	chunks.WriteString(css[startPos:pos])
	return chunks.String(), pos
}

// css[pos] is assumed to be a quote; ok is false
// for an unescaped newline.
func consumeQuotedString(css string, pos int) (value string, newPos int, ok bool) {
	quote := css[pos]
	pos++
	var chunks strings.Builder
	for pos < len(css) {
		c := css[pos]
		switch c {
		case quote:
			return chunks.String(), pos + 1, true
		case '\\':
			pos++
			if pos < len(css) {
				if css[pos] == '\n' {
					pos++
				} else {
					var s string
					s, pos = consumeEscape(css, pos)
					chunks.WriteString(s)
				}
			}
		case '\n':
			return "", pos, false
		default:
			chunks.WriteByte(c)
			pos++
		}
	}
	return chunks.String(), pos, true
}

// Assumes pos is just after '\'.
func consumeEscape(css string, pos int) (string, int) {
	if m := hexEscapeRe.FindStringSubmatch(css[pos:]); m != nil {
		codepoint, _ := strconv.ParseInt(m[1], 16, 32)
		char := "�"
		if 0 < codepoint && codepoint <= unicode.MaxRune {
			char = string(rune(codepoint))
		}
		return char, pos + len(m[0])
	} else if pos < len(css) {
		r, w := utf8.DecodeRuneInString(css[pos:])
		return string(r), pos + w
	}
	return "�", pos
}
