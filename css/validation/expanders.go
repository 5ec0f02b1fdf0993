package validation

import (
	"fmt"

	pa "github.com/benoitkugler/boxlayout/css/parser"
	pr "github.com/benoitkugler/boxlayout/css/properties"
)

type expander func(tokens []Token) ([]namedTokens, error)

var expanders = map[string]expander{
	"margin":        expandFourSides("margin-", ""),
	"padding":       expandFourSides("padding-", ""),
	"border-width":  expandFourSides("border-", "-width"),
	"border-style":  expandFourSides("border-", "-style"),
	"border":        expandBorder,
	"border-top":    expandBorderSide("top"),
	"border-right":  expandBorderSide("right"),
	"border-bottom": expandBorderSide("bottom"),
	"border-left":   expandBorderSide("left"),
	"border-radius": expandBorderRadius,
	"flex":          expandFlex,
	"flex-flow":     expandFlexFlow,
	"font":          expandFont,
	"overflow-x":    alias("overflow"),
	"overflow-y":    alias("overflow"),
}

func alias(name string) expander {
	return func(tokens []Token) ([]namedTokens, error) {
		return []namedTokens{{name: name, tokens: tokens}}, nil
	}
}

var sides = [4]string{"top", "right", "bottom", "left"}

// Expand properties setting a token for the four sides of a box.
func expandFourSides(prefix, suffix string) expander {
	return func(tokens []Token) ([]namedTokens, error) {
		tokens = pa.RemoveWhitespace(tokens)
		switch len(tokens) {
		case 1:
			tokens = []Token{tokens[0], tokens[0], tokens[0], tokens[0]}
		case 2:
			tokens = []Token{tokens[0], tokens[1], tokens[0], tokens[1]} // (bottom, left) defaults to (top, right)
		case 3:
			tokens = append(tokens, tokens[1]) // left defaults to right
		case 4:
		default:
			return nil, fmt.Errorf("expected 1 to 4 token components got %d", len(tokens))
		}
		out := make([]namedTokens, 4)
		for i, side := range sides {
			name := prefix + side + suffix
			out[i] = namedTokens{name: name, tokens: []Token{tokens[i]}}
			if err := checkLonghand(name, out[i].tokens); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
}

// checkLonghand validates without a computer: font relative units are
// accepted, since the shorthand is only rejected on syntax errors.
func checkLonghand(name string, tokens []Token) error {
	if kw := getSingleKeyword(tokens); kw == "inherit" || kw == "initial" {
		return nil
	}
	scratch := pr.InitialStyle()
	return properties[name].apply(&scratch, tokens, computer{fontSize: 16, parentFontSize: 16})
}

func isBorderStyle(token Token) bool {
	kw := getKeyword(token)
	for _, s := range borderStyles {
		if kw == s {
			return true
		}
	}
	return false
}

// splitBorder returns the width and style tokens, ignoring the color.
func splitBorder(tokens []Token) (width, style []Token, err error) {
	for _, token := range pa.RemoveWhitespace(tokens) {
		if isBorderStyle(token) {
			if style != nil {
				return nil, nil, ErrInvalidValue
			}
			style = []Token{token}
			continue
		}
		if _, err := borderWidth([]Token{token}, computer{fontSize: 16}); err == nil {
			if width != nil {
				return nil, nil, ErrInvalidValue
			}
			width = []Token{token}
			continue
		}
		// anything else is a color, which does not impact layout
	}
	return width, style, nil
}

func expandBorderSide(side string) expander {
	return func(tokens []Token) ([]namedTokens, error) {
		width, style, err := splitBorder(tokens)
		if err != nil {
			return nil, err
		}
		if width == nil {
			width = []Token{{Kind: pa.KIdent, Text: "medium"}}
		}
		if style == nil {
			style = []Token{{Kind: pa.KIdent, Text: "none"}}
		}
		return []namedTokens{
			{name: "border-" + side + "-width", tokens: width},
			{name: "border-" + side + "-style", tokens: style},
		}, nil
	}
}

func expandBorder(tokens []Token) ([]namedTokens, error) {
	var out []namedTokens
	for _, side := range sides {
		expanded, err := expandBorderSide(side)(tokens)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded...)
	}
	return out, nil
}

var cornerNames = [4]string{"top-left", "top-right", "bottom-right", "bottom-left"}

// expandBorderRadius handles "h1 h2 h3 h4 / v1 v2 v3 v4"
func expandBorderRadius(tokens []Token) ([]namedTokens, error) {
	var horizontal, vertical []Token
	current := &horizontal
	for _, token := range pa.RemoveWhitespace(tokens) {
		if token.IsLiteral("/") {
			if current == &vertical {
				return nil, ErrInvalidValue
			}
			current = &vertical
			continue
		}
		*current = append(*current, token)
	}
	if vertical == nil {
		vertical = horizontal
	}
	expand := func(values []Token) ([]Token, error) {
		switch len(values) {
		case 1:
			return []Token{values[0], values[0], values[0], values[0]}, nil
		case 2:
			return []Token{values[0], values[1], values[0], values[1]}, nil
		case 3:
			return []Token{values[0], values[1], values[2], values[1]}, nil
		case 4:
			return values, nil
		}
		return nil, fmt.Errorf("expected 1 to 4 token components got %d", len(values))
	}
	h, err := expand(horizontal)
	if err != nil {
		return nil, err
	}
	v, err := expand(vertical)
	if err != nil {
		return nil, err
	}
	out := make([]namedTokens, 4)
	for i, corner := range cornerNames {
		name := "border-" + corner + "-radius"
		out[i] = namedTokens{name: name, tokens: []Token{h[i], v[i]}}
		if err := checkLonghand(name, out[i].tokens); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func numberToken(v float32) Token { return Token{Kind: pa.KNumber, Value: v} }

func expandFlex(tokens []Token) ([]namedTokens, error) {
	tokens = pa.RemoveWhitespace(tokens)
	build := func(grow, shrink float32, basis Token) []namedTokens {
		return []namedTokens{
			{name: "flex-grow", tokens: []Token{numberToken(grow)}},
			{name: "flex-shrink", tokens: []Token{numberToken(shrink)}},
			{name: "flex-basis", tokens: []Token{basis}},
		}
	}
	autoToken := Token{Kind: pa.KIdent, Text: "auto"}
	switch getSingleKeyword(tokens) {
	case "none":
		return build(0, 0, autoToken), nil
	case "auto":
		return build(1, 1, autoToken), nil
	case "initial":
		return build(0, 1, autoToken), nil
	}
	var (
		grow, shrink           float32 = 1, 1
		basis                          = Token{Kind: pa.KDimension, Value: 0, Unit: "px"}
		growFound, shrinkFound bool
		basisFound             bool
	)
	for _, token := range tokens {
		// a unitless zero not preceded by two flex factors is a flex factor
		isNumber := token.Kind == pa.KNumber
		if !basisFound && (!isNumber || (growFound && shrinkFound && token.Value == 0)) {
			if err := checkLonghand("flex-basis", []Token{token}); err != nil {
				return nil, err
			}
			basis, basisFound = token, true
			continue
		}
		if !isNumber || token.Value < 0 {
			return nil, ErrInvalidValue
		}
		switch {
		case !growFound:
			grow, growFound = token.Value, true
		case !shrinkFound:
			shrink, shrinkFound = token.Value, true
		default:
			return nil, ErrInvalidValue
		}
	}
	return build(grow, shrink, basis), nil
}

func expandFlexFlow(tokens []Token) ([]namedTokens, error) {
	var out []namedTokens
	for _, token := range pa.RemoveWhitespace(tokens) {
		single := []Token{token}
		if checkLonghand("flex-direction", single) == nil {
			out = append(out, namedTokens{name: "flex-direction", tokens: single})
		} else if checkLonghand("flex-wrap", single) == nil {
			out = append(out, namedTokens{name: "flex-wrap", tokens: single})
		} else {
			return nil, ErrInvalidValue
		}
	}
	if len(out) == 0 || len(out) > 2 {
		return nil, ErrInvalidValue
	}
	return out, nil
}

// expandFont handles [style] [weight] size [/ line-height] family
func expandFont(tokens []Token) ([]namedTokens, error) {
	tokens = pa.RemoveWhitespace(tokens)
	var out []namedTokens
	i := 0
prefix:
	for ; i < len(tokens); i++ {
		single := tokens[i : i+1]
		switch {
		case getKeyword(tokens[i]) == "normal", getKeyword(tokens[i]) == "small-caps":
		case checkLonghand("font-style", single) == nil:
			out = append(out, namedTokens{name: "font-style", tokens: single})
		case checkLonghand("font-weight", single) == nil:
			out = append(out, namedTokens{name: "font-weight", tokens: single})
		default:
			break prefix
		}
	}
	if i >= len(tokens) || checkLonghand("font-size", tokens[i:i+1]) != nil {
		return nil, ErrInvalidValue
	}
	out = append(out, namedTokens{name: "font-size", tokens: tokens[i : i+1]})
	i++
	if i < len(tokens) && tokens[i].IsLiteral("/") {
		if i+1 >= len(tokens) || checkLonghand("line-height", tokens[i+1:i+2]) != nil {
			return nil, ErrInvalidValue
		}
		out = append(out, namedTokens{name: "line-height", tokens: tokens[i+1 : i+2]})
		i += 2
	}
	if i >= len(tokens) || checkLonghand("font-family", tokens[i:]) != nil {
		return nil, ErrInvalidValue
	}
	return append(out, namedTokens{name: "font-family", tokens: tokens[i:]}), nil
}
