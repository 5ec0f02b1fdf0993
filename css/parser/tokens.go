package parser

import (
	"fmt"

	"github.com/benoitkugler/boxlayout/utils"
)

// Pos is the position of a token in the input, 1-based.
type Pos struct {
	Line, Column int
}

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Column) }

// Kind identifies a token type.
type Kind uint8

const (
	KWhitespace Kind = iota
	KIdent
	KNumber
	KPercentage
	KDimension
	KString
	KHash
	KLiteral
	KFunction
	KError
)

func (k Kind) String() string {
	switch k {
	case KWhitespace:
		return "whitespace"
	case KIdent:
		return "ident"
	case KNumber:
		return "number"
	case KPercentage:
		return "percentage"
	case KDimension:
		return "dimension"
	case KString:
		return "string"
	case KHash:
		return "hash"
	case KLiteral:
		return "literal"
	case KFunction:
		return "function"
	case KError:
		return "error"
	default:
		return "<invalid kind>"
	}
}

// Token is one component value of a declaration.
// Numbers, percentages and dimensions use Value (and Unit for dimensions),
// other tokens use Text. Functions store their arguments in Arguments.
type Token struct {
	Pos       Pos
	Kind      Kind
	Text      string
	Value     utils.Fl
	IsInteger bool
	Unit      string
	Arguments []Token
}

func (t Token) String() string {
	switch t.Kind {
	case KNumber:
		return fmt.Sprintf("%g", t.Value)
	case KPercentage:
		return fmt.Sprintf("%g%%", t.Value)
	case KDimension:
		return fmt.Sprintf("%g%s", t.Value, t.Unit)
	case KFunction:
		return t.Text + "(...)"
	case KWhitespace:
		return " "
	default:
		return t.Text
	}
}

// IsLiteral returns true for the literal token [s].
func (t Token) IsLiteral(s string) bool { return t.Kind == KLiteral && t.Text == s }

// RemoveWhitespace returns the tokens without whitespace.
func RemoveWhitespace(tokens []Token) []Token {
	var out []Token
	for _, t := range tokens {
		if t.Kind != KWhitespace {
			out = append(out, t)
		}
	}
	return out
}

// SplitOnComma splits on "," literals.
func SplitOnComma(tokens []Token) [][]Token {
	var parts [][]Token
	var current []Token
	for _, t := range tokens {
		if t.IsLiteral(",") {
			parts = append(parts, current)
			current = nil
			continue
		}
		current = append(current, t)
	}
	return append(parts, current)
}
