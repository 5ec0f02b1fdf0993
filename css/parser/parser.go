// Package parser implements the subset of CSS syntax needed to read
// inline style attributes: a tokenizer and a declaration list parser.
package parser

import (
	"fmt"
	"strings"
)

// Declaration is a "name: value" pair. Name is lower cased, Value
// does not include the leading and trailing whitespace nor the
// !important flag.
type Declaration struct {
	Pos       Pos
	Name      string
	Value     []Token
	Important bool
}

// ParseError is a declaration which could not be parsed.
type ParseError struct {
	Pos     Pos
	Message string
}

func (e ParseError) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Message) }

// ParseDeclarationList parses the content of a "style" attribute.
// Invalid declarations are skipped and returned as errors.
func ParseDeclarationList(css string) ([]Declaration, []ParseError) {
	var (
		decls  []Declaration
		errs   []ParseError
		tokens []Token
	)
	flush := func() {
		if len(tokens) == 0 {
			return
		}
		decl, err := parseDeclaration(tokens)
		if err != nil {
			errs = append(errs, *err)
		} else {
			decls = append(decls, decl)
		}
		tokens = nil
	}
	for _, token := range Tokenize(css) {
		if token.IsLiteral(";") {
			flush()
			continue
		}
		if len(tokens) == 0 && token.Kind == KWhitespace {
			continue
		}
		tokens = append(tokens, token)
	}
	flush()
	return decls, errs
}

func parseDeclaration(tokens []Token) (Declaration, *ParseError) {
	name := tokens[0]
	if name.Kind != KIdent {
		return Declaration{}, &ParseError{Pos: name.Pos, Message: fmt.Sprintf("expected <ident> for declaration name, got %s", name.Kind)}
	}
	i := 1
	for i < len(tokens) && tokens[i].Kind == KWhitespace {
		i++
	}
	if i == len(tokens) || !tokens[i].IsLiteral(":") {
		return Declaration{}, &ParseError{Pos: name.Pos, Message: "expected ':' after declaration name"}
	}
	value := trimWhitespace(tokens[i+1:])
	for _, t := range value {
		if t.Kind == KError {
			return Declaration{}, &ParseError{Pos: t.Pos, Message: "invalid token " + t.Text}
		}
	}
	important := false
	if n := len(value); n >= 2 && value[n-1].Kind == KIdent && strings.EqualFold(value[n-1].Text, "important") {
		bang := n - 2
		for bang >= 0 && value[bang].Kind == KWhitespace {
			bang--
		}
		if bang >= 0 && value[bang].IsLiteral("!") {
			important = true
			value = trimWhitespace(value[:bang])
		}
	}
	return Declaration{
		Pos:       name.Pos,
		Name:      strings.ToLower(name.Text),
		Value:     value,
		Important: important,
	}, nil
}

func trimWhitespace(tokens []Token) []Token {
	for len(tokens) > 0 && tokens[0].Kind == KWhitespace {
		tokens = tokens[1:]
	}
	for len(tokens) > 0 && tokens[len(tokens)-1].Kind == KWhitespace {
		tokens = tokens[:len(tokens)-1]
	}
	return tokens
}
