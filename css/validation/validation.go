// Package validation checks the declarations of style attributes and
// stores them, computed, in a resolved style record.
package validation

import (
	"errors"
	"fmt"
	"strings"

	pa "github.com/benoitkugler/boxlayout/css/parser"
	pr "github.com/benoitkugler/boxlayout/css/properties"
	"github.com/benoitkugler/boxlayout/logger"
	"github.com/benoitkugler/boxlayout/utils"
)

type Token = pa.Token

// ErrInvalidValue is returned for values not accepted by a property.
var ErrInvalidValue = errors.New("invalid or unsupported values for a known CSS property")

// computer resolves relative units.
type computer struct {
	fontSize       pr.Float // computed font size of the element
	parentFontSize pr.Float
}

// property stores one parsed longhand on a style, and may copy it
// from another style (for "inherit" and "initial").
type property struct {
	apply func(s *pr.Style, tokens []Token, c computer) error
	copy  func(dst, src *pr.Style)
}

func prop[T any](field func(*pr.Style) *T, parse func(tokens []Token, c computer) (T, error)) property {
	return property{
		apply: func(s *pr.Style, tokens []Token, c computer) error {
			v, err := parse(tokens, c)
			if err != nil {
				return err
			}
			*field(s) = v
			return nil
		},
		copy: func(dst, src *pr.Style) { *field(dst) = *field(src) },
	}
}

func keyword(allowed ...string) func(tokens []Token, _ computer) (string, error) {
	set := utils.NewSet(allowed...)
	return func(tokens []Token, _ computer) (string, error) {
		kw := getSingleKeyword(tokens)
		if !set.Has(kw) {
			return "", ErrInvalidValue
		}
		return kw, nil
	}
}

// length parses <length> | <percentage> | keywords
func length(negative, percentage bool, keywords ...string) func(tokens []Token, c computer) (pr.Value, error) {
	return func(tokens []Token, c computer) (pr.Value, error) {
		if kw := getSingleKeyword(tokens); kw != "" {
			if utils.IsIn(keywords, kw) {
				return pr.SToV(kw), nil
			}
			return pr.Value{}, ErrInvalidValue
		}
		if len(tokens) != 1 {
			return pr.Value{}, ErrInvalidValue
		}
		v, ok := c.getLength(tokens[0], negative, percentage)
		if !ok {
			return pr.Value{}, ErrInvalidValue
		}
		return v, nil
	}
}

func number(negative bool) func(tokens []Token, _ computer) (pr.Float, error) {
	return func(tokens []Token, _ computer) (pr.Float, error) {
		if len(tokens) != 1 || tokens[0].Kind != pa.KNumber || (!negative && tokens[0].Value < 0) {
			return 0, ErrInvalidValue
		}
		return pr.Float(tokens[0].Value), nil
	}
}

func integer(tokens []Token, _ computer) (int, error) {
	if len(tokens) != 1 || tokens[0].Kind != pa.KNumber || !tokens[0].IsInteger {
		return 0, ErrInvalidValue
	}
	return int(tokens[0].Value), nil
}

var (
	borderStyles = []string{"none", "hidden", "dotted", "dashed", "solid", "double", "groove", "ridge", "inset", "outset"}
	alignValues  = []string{"flex-start", "flex-end", "center", "baseline", "stretch", "start", "end"}
)

// properties are the longhands understood by the layout engine.
var properties = map[string]property{
	"display": prop(func(s *pr.Style) *string { return &s.Display }, keyword(
		"block", "inline", "inline-block", "list-item", "flow-root", "none",
		"table", "inline-table", "table-row-group", "table-header-group", "table-footer-group",
		"table-row", "table-cell", "table-caption", "table-column", "table-column-group",
		"flex", "inline-flex")),
	"position":   prop(func(s *pr.Style) *string { return &s.Position }, keyword("static", "relative", "absolute", "fixed")),
	"float":      prop(func(s *pr.Style) *string { return &s.Float }, keyword("none", "left", "right")),
	"clear":      prop(func(s *pr.Style) *string { return &s.Clear }, keyword("none", "left", "right", "both")),
	"overflow":   prop(func(s *pr.Style) *string { return &s.Overflow }, keyword("visible", "hidden", "scroll", "auto", "clip")),
	"visibility": prop(func(s *pr.Style) *string { return &s.Visibility }, keyword("visible", "hidden", "collapse")),
	"z-index":    prop(func(s *pr.Style) *pr.IntOrAuto { return &s.ZIndex }, zIndex),

	"top":    prop(func(s *pr.Style) *pr.Value { return &s.Top }, length(true, true, "auto")),
	"right":  prop(func(s *pr.Style) *pr.Value { return &s.Right }, length(true, true, "auto")),
	"bottom": prop(func(s *pr.Style) *pr.Value { return &s.Bottom }, length(true, true, "auto")),
	"left":   prop(func(s *pr.Style) *pr.Value { return &s.Left }, length(true, true, "auto")),

	"box-sizing": prop(func(s *pr.Style) *string { return &s.BoxSizing }, keyword("content-box", "border-box")),
	"width":      prop(func(s *pr.Style) *pr.Value { return &s.Width }, length(false, true, "auto")),
	"height":     prop(func(s *pr.Style) *pr.Value { return &s.Height }, length(false, true, "auto")),
	"min-width":  prop(func(s *pr.Style) *pr.Value { return &s.MinWidth }, minSize),
	"min-height": prop(func(s *pr.Style) *pr.Value { return &s.MinHeight }, minSize),
	"max-width":  prop(func(s *pr.Style) *pr.Value { return &s.MaxWidth }, length(false, true, "none")),
	"max-height": prop(func(s *pr.Style) *pr.Value { return &s.MaxHeight }, length(false, true, "none")),

	"margin-top":     prop(func(s *pr.Style) *pr.Value { return &s.MarginTop }, length(true, true, "auto")),
	"margin-right":   prop(func(s *pr.Style) *pr.Value { return &s.MarginRight }, length(true, true, "auto")),
	"margin-bottom":  prop(func(s *pr.Style) *pr.Value { return &s.MarginBottom }, length(true, true, "auto")),
	"margin-left":    prop(func(s *pr.Style) *pr.Value { return &s.MarginLeft }, length(true, true, "auto")),
	"padding-top":    prop(func(s *pr.Style) *pr.Value { return &s.PaddingTop }, length(false, true)),
	"padding-right":  prop(func(s *pr.Style) *pr.Value { return &s.PaddingRight }, length(false, true)),
	"padding-bottom": prop(func(s *pr.Style) *pr.Value { return &s.PaddingBottom }, length(false, true)),
	"padding-left":   prop(func(s *pr.Style) *pr.Value { return &s.PaddingLeft }, length(false, true)),

	"border-top-width":    prop(func(s *pr.Style) *pr.Float { return &s.BorderTopWidth }, borderWidth),
	"border-right-width":  prop(func(s *pr.Style) *pr.Float { return &s.BorderRightWidth }, borderWidth),
	"border-bottom-width": prop(func(s *pr.Style) *pr.Float { return &s.BorderBottomWidth }, borderWidth),
	"border-left-width":   prop(func(s *pr.Style) *pr.Float { return &s.BorderLeftWidth }, borderWidth),
	"border-top-style":    prop(func(s *pr.Style) *string { return &s.BorderTopStyle }, keyword(borderStyles...)),
	"border-right-style":  prop(func(s *pr.Style) *string { return &s.BorderRightStyle }, keyword(borderStyles...)),
	"border-bottom-style": prop(func(s *pr.Style) *string { return &s.BorderBottomStyle }, keyword(borderStyles...)),
	"border-left-style":   prop(func(s *pr.Style) *string { return &s.BorderLeftStyle }, keyword(borderStyles...)),

	"border-top-left-radius":     prop(func(s *pr.Style) *[2]pr.Value { return &s.BorderTopLeftRadius }, cornerRadius),
	"border-top-right-radius":    prop(func(s *pr.Style) *[2]pr.Value { return &s.BorderTopRightRadius }, cornerRadius),
	"border-bottom-right-radius": prop(func(s *pr.Style) *[2]pr.Value { return &s.BorderBottomRightRadius }, cornerRadius),
	"border-bottom-left-radius":  prop(func(s *pr.Style) *[2]pr.Value { return &s.BorderBottomLeftRadius }, cornerRadius),

	"font-size":      prop(func(s *pr.Style) *pr.Float { return &s.Font.Size }, fontSize),
	"font-weight":    prop(func(s *pr.Style) *int { return &s.Font.Weight }, fontWeight),
	"font-style":     prop(func(s *pr.Style) *bool { return &s.Font.Italic }, fontStyle),
	"font-family":    prop(func(s *pr.Style) *string { return &s.Font.Family }, fontFamily),
	"line-height":    prop(func(s *pr.Style) *pr.Value { return &s.LineHeight }, lineHeight),
	"text-align":     prop(func(s *pr.Style) *string { return &s.TextAlign }, keyword("left", "right", "center", "justify", "start", "end")),
	"text-indent":    prop(func(s *pr.Style) *pr.Value { return &s.TextIndent }, length(true, true)),
	"text-transform": prop(func(s *pr.Style) *string { return &s.TextTransform }, keyword("none", "uppercase", "lowercase", "capitalize")),
	"white-space":    prop(func(s *pr.Style) *string { return &s.WhiteSpace }, keyword("normal", "nowrap", "pre", "pre-wrap", "pre-line")),
	"vertical-align": prop(func(s *pr.Style) *pr.Value { return &s.VerticalAlign }, length(true, true,
		"baseline", "sub", "super", "top", "text-top", "middle", "bottom", "text-bottom")),

	"border-collapse": prop(func(s *pr.Style) *string { return &s.BorderCollapse }, keyword("separate", "collapse")),
	"border-spacing":  prop(func(s *pr.Style) *[2]pr.Float { return &s.BorderSpacing }, borderSpacing),
	"caption-side":    prop(func(s *pr.Style) *string { return &s.CaptionSide }, keyword("top", "bottom")),

	"flex-direction":  prop(func(s *pr.Style) *string { return &s.FlexDirection }, keyword("row", "row-reverse", "column", "column-reverse")),
	"flex-wrap":       prop(func(s *pr.Style) *string { return &s.FlexWrap }, keyword("nowrap", "wrap", "wrap-reverse")),
	"flex-grow":       prop(func(s *pr.Style) *pr.Float { return &s.FlexGrow }, number(false)),
	"flex-shrink":     prop(func(s *pr.Style) *pr.Float { return &s.FlexShrink }, number(false)),
	"flex-basis":      prop(func(s *pr.Style) *pr.Value { return &s.FlexBasis }, length(false, true, "auto", "content")),
	"order":           prop(func(s *pr.Style) *int { return &s.Order }, integer),
	"justify-content": prop(func(s *pr.Style) *string { return &s.JustifyContent }, keyword("flex-start", "flex-end", "center", "space-between", "space-around", "space-evenly", "start", "end", "left", "right", "normal")),
	"align-items":     prop(func(s *pr.Style) *string { return &s.AlignItems }, keyword(alignValues...)),
	"align-self":      prop(func(s *pr.Style) *string { return &s.AlignSelf }, keyword(append([]string{"auto"}, alignValues...)...)),
	"align-content":   prop(func(s *pr.Style) *string { return &s.AlignContent }, keyword("flex-start", "flex-end", "center", "space-between", "space-around", "space-evenly", "stretch", "start", "end")),
}

// paintOnly are accepted and dropped: they have no effect on layout.
var paintOnly = utils.NewSet(
	"color", "background", "background-color", "background-image", "opacity", "cursor",
	"border-color", "border-top-color", "border-right-color", "border-bottom-color", "border-left-color",
	"outline", "outline-color", "outline-style", "outline-width", "text-decoration", "box-shadow",
)

// IsKnown returns true if [name] is a supported longhand or shorthand.
func IsKnown(name string) bool {
	_, isLong := properties[name]
	_, isShort := expanders[name]
	return isLong || isShort || paintOnly.Has(name)
}

type namedTokens struct {
	name   string
	tokens []Token
}

// ApplyDeclarations computes [decls] (in order, important declarations last)
// into [style]. [parent] is the computed style of the parent element,
// or nil for the root.
// Invalid declarations are ignored and logged.
func ApplyDeclarations(style, parent *pr.Style, decls []pa.Declaration) {
	if parent == nil {
		root := pr.InitialStyle()
		parent = &root
	}

	var longhands []namedTokens
	add := func(decl pa.Declaration) {
		name := decl.Name
		if paintOnly.Has(name) {
			return
		}
		if exp, ok := expanders[name]; ok {
			expanded, err := exp(decl.Value)
			if err != nil {
				logger.WarningLogger.Warnf("Ignored `%s: %s` at %s, %s.", name, serialize(decl.Value), decl.Pos, err)
				return
			}
			longhands = append(longhands, expanded...)
			return
		}
		if _, ok := properties[name]; !ok {
			logger.WarningLogger.Warnf("Ignored `%s: %s` at %s, unknown property.", name, serialize(decl.Value), decl.Pos)
			return
		}
		longhands = append(longhands, namedTokens{name: name, tokens: decl.Value})
	}
	for _, decl := range decls {
		if !decl.Important {
			add(decl)
		}
	}
	for _, decl := range decls {
		if decl.Important {
			add(decl)
		}
	}

	// font-size first: em units of other properties depend on it
	c := computer{parentFontSize: parent.Font.Size, fontSize: style.Font.Size}
	for _, lh := range longhands {
		if lh.name == "font-size" {
			applyOne(style, parent, lh, c)
		}
	}
	c.fontSize = style.Font.Size
	for _, lh := range longhands {
		if lh.name != "font-size" {
			applyOne(style, parent, lh, c)
		}
	}
}

func applyOne(style, parent *pr.Style, lh namedTokens, c computer) {
	p := properties[lh.name]
	tokens := pa.RemoveWhitespace(lh.tokens)
	switch getSingleKeyword(tokens) {
	case "inherit":
		p.copy(style, parent)
		return
	case "initial":
		initial := pr.InitialStyle()
		p.copy(style, &initial)
		return
	}
	if err := p.apply(style, tokens, c); err != nil {
		logger.WarningLogger.Warnf("Ignored `%s: %s`, %s.", lh.name, serialize(lh.tokens), err)
	}
}

// FinishBorders sets the used width of borders with
// style "none" or "hidden" to 0.
func FinishBorders(s *pr.Style) {
	fix := func(style string, width *pr.Float) {
		if style == "none" || style == "hidden" {
			*width = 0
		}
	}
	fix(s.BorderTopStyle, &s.BorderTopWidth)
	fix(s.BorderRightStyle, &s.BorderRightWidth)
	fix(s.BorderBottomStyle, &s.BorderBottomWidth)
	fix(s.BorderLeftStyle, &s.BorderLeftWidth)
}

func serialize(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.String())
	}
	return b.String()
}

func getKeyword(token Token) string {
	if token.Kind == pa.KIdent {
		return strings.ToLower(token.Text)
	}
	return ""
}

// If `tokens` is a 1-element list of ident, return its name.
// Otherwise return empty string.
func getSingleKeyword(tokens []Token) string {
	if len(tokens) == 1 {
		return getKeyword(tokens[0])
	}
	return ""
}

// getLength resolves absolute and font relative units to pixels;
// percentages are kept.
func (c computer) getLength(token Token, negative, percentage bool) (pr.Value, bool) {
	switch token.Kind {
	case pa.KPercentage:
		if percentage && (negative || token.Value >= 0) {
			return pr.PercToV(pr.Float(token.Value)), true
		}
	case pa.KDimension:
		if !negative && token.Value < 0 {
			return pr.Value{}, false
		}
		v := pr.Float(token.Value)
		switch token.Unit {
		case "em":
			return pr.FToPx(v * c.fontSize), true
		case "ex", "ch":
			return pr.FToPx(v * c.fontSize / 2), true
		case "rem":
			return pr.FToPx(v * pr.DefaultFontSize), true
		}
		for unit, factor := range pr.LengthsToPixels {
			if unit.String() == token.Unit {
				return pr.FToPx(v * factor), true
			}
		}
	case pa.KNumber:
		if token.Value == 0 {
			return pr.FToPx(0), true
		}
	}
	return pr.Value{}, false
}

func minSize(tokens []Token, c computer) (pr.Value, error) {
	v, err := length(false, true, "auto")(tokens, c)
	if err != nil {
		return v, err
	}
	if v.IsAuto() { // no flex or grid specific behaviour
		return pr.FToPx(0), nil
	}
	return v, nil
}

func zIndex(tokens []Token, c computer) (pr.IntOrAuto, error) {
	if getSingleKeyword(tokens) == "auto" {
		return pr.IntOrAuto{Auto: true}, nil
	}
	i, err := integer(tokens, c)
	return pr.IntOrAuto{Int: i}, err
}

var borderWidthKeywords = map[string]pr.Float{"thin": 1, "medium": 3, "thick": 5}

func borderWidth(tokens []Token, c computer) (pr.Float, error) {
	if w, ok := borderWidthKeywords[getSingleKeyword(tokens)]; ok {
		return w, nil
	}
	if len(tokens) != 1 {
		return 0, ErrInvalidValue
	}
	v, ok := c.getLength(tokens[0], false, false)
	if !ok {
		return 0, ErrInvalidValue
	}
	return v.Value, nil
}

func cornerRadius(tokens []Token, c computer) (out [2]pr.Value, err error) {
	if len(tokens) != 1 && len(tokens) != 2 {
		return out, ErrInvalidValue
	}
	for i, token := range tokens {
		v, ok := c.getLength(token, false, true)
		if !ok {
			return out, ErrInvalidValue
		}
		out[i] = v
	}
	if len(tokens) == 1 {
		out[1] = out[0]
	}
	return out, nil
}

func borderSpacing(tokens []Token, c computer) (out [2]pr.Float, err error) {
	if len(tokens) != 1 && len(tokens) != 2 {
		return out, ErrInvalidValue
	}
	for i, token := range tokens {
		v, ok := c.getLength(token, false, false)
		if !ok {
			return out, ErrInvalidValue
		}
		out[i] = v.Value
	}
	if len(tokens) == 1 {
		out[1] = out[0]
	}
	return out, nil
}

var fontSizeKeywords = map[string]pr.Float{
	"xx-small": 3. / 5., "x-small": 3. / 4., "small": 8. / 9., "medium": 1,
	"large": 6. / 5., "x-large": 3. / 2., "xx-large": 2.,
}

func fontSize(tokens []Token, c computer) (pr.Float, error) {
	kw := getSingleKeyword(tokens)
	if f, ok := fontSizeKeywords[kw]; ok {
		return f * pr.DefaultFontSize, nil
	}
	switch kw {
	case "smaller":
		return c.parentFontSize * 0.8, nil
	case "larger":
		return c.parentFontSize * 1.2, nil
	}
	if len(tokens) != 1 {
		return 0, ErrInvalidValue
	}
	// em and percentages are relative to the parent font size
	parent := computer{fontSize: c.parentFontSize}
	v, ok := parent.getLength(tokens[0], false, true)
	if !ok {
		return 0, ErrInvalidValue
	}
	if v.Unit == pr.Perc {
		return c.parentFontSize * v.Value / 100, nil
	}
	return v.Value, nil
}

func fontWeight(tokens []Token, c computer) (int, error) {
	switch getSingleKeyword(tokens) {
	case "normal":
		return 400, nil
	case "bold", "bolder":
		return 700, nil
	case "lighter":
		return 100, nil
	}
	w, err := integer(tokens, c)
	if err != nil || w < 1 || w > 1000 {
		return 0, ErrInvalidValue
	}
	return w, nil
}

func fontStyle(tokens []Token, _ computer) (bool, error) {
	switch getSingleKeyword(tokens) {
	case "normal":
		return false, nil
	case "italic", "oblique":
		return true, nil
	}
	return false, ErrInvalidValue
}

func fontFamily(tokens []Token, _ computer) (string, error) {
	var families []string
	for _, part := range pa.SplitOnComma(tokens) {
		if len(part) == 1 && part[0].Kind == pa.KString {
			families = append(families, part[0].Text)
			continue
		}
		var words []string
		for _, t := range part {
			if t.Kind != pa.KIdent {
				return "", ErrInvalidValue
			}
			words = append(words, t.Text)
		}
		if len(words) == 0 {
			return "", ErrInvalidValue
		}
		families = append(families, strings.Join(words, " "))
	}
	return strings.Join(families, ", "), nil
}

// lineHeight stores percentages and lengths as pixels, numbers as factors.
func lineHeight(tokens []Token, c computer) (pr.Value, error) {
	if getSingleKeyword(tokens) == "normal" {
		return pr.SToV("normal"), nil
	}
	if len(tokens) != 1 {
		return pr.Value{}, ErrInvalidValue
	}
	token := tokens[0]
	if token.Kind == pa.KNumber && token.Value >= 0 {
		return pr.ScalarToV(pr.Float(token.Value)), nil
	}
	v, ok := c.getLength(token, false, true)
	if !ok {
		return pr.Value{}, ErrInvalidValue
	}
	if v.Unit == pr.Perc {
		return pr.FToPx(v.Value * c.fontSize / 100), nil
	}
	return v, nil
}

// ParseStyleAttribute parses and applies an inline style attribute.
// Syntax errors are logged.
func ParseStyleAttribute(style, parent *pr.Style, css string) {
	decls, errs := pa.ParseDeclarationList(css)
	for _, err := range errs {
		logger.WarningLogger.Warnf("Invalid style declaration: %s", err)
	}
	ApplyDeclarations(style, parent, decls)
}

func (nt namedTokens) String() string { return fmt.Sprintf("%s: %s", nt.name, serialize(nt.tokens)) }
