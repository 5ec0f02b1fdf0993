package properties

// Font describes the font used to measure text.
type Font struct {
	Family string
	Size   Float
	Weight int
	Italic bool
}

// IntOrAuto is used by z-index.
type IntOrAuto struct {
	Auto bool
	Int  int
}

// Style is the resolved style of one element.
// Lengths are in pixels, except percentages and keywords,
// which are resolved during layout.
type Style struct {
	Display    string
	Position   string
	Float      string
	Clear      string
	Overflow   string
	Visibility string
	ZIndex     IntOrAuto

	Top, Right, Bottom, Left Value

	BoxSizing                                        string
	Width, Height, MinWidth, MinHeight               Value
	MaxWidth, MaxHeight                              Value
	MarginTop, MarginRight, MarginBottom, MarginLeft Value

	PaddingTop, PaddingRight, PaddingBottom, PaddingLeft Value

	BorderTopWidth, BorderRightWidth, BorderBottomWidth, BorderLeftWidth Float
	BorderTopStyle, BorderRightStyle, BorderBottomStyle, BorderLeftStyle string

	// Each radius is a (horizontal, vertical) pair.
	BorderTopLeftRadius, BorderTopRightRadius       [2]Value
	BorderBottomRightRadius, BorderBottomLeftRadius [2]Value

	Font          Font
	LineHeight    Value // "normal", a factor or a length
	TextAlign     string
	TextIndent    Value
	TextTransform string
	WhiteSpace    string
	VerticalAlign Value // a keyword, a length or a percentage of line-height

	BorderCollapse string
	BorderSpacing  [2]Float
	CaptionSide    string

	FlexDirection  string
	FlexWrap       string
	FlexGrow       Float
	FlexShrink     Float
	FlexBasis      Value
	Order          int
	JustifyContent string
	AlignItems     string
	AlignSelf      string
	AlignContent   string
}

// DefaultFontSize is the "medium" font size.
const DefaultFontSize Float = 16

var zeroRadius = [2]Value{FToPx(0), FToPx(0)}

// InitialStyle returns the initial values of every property.
func InitialStyle() Style {
	return Style{
		Display:    "inline",
		Position:   "static",
		Float:      "none",
		Clear:      "none",
		Overflow:   "visible",
		Visibility: "visible",
		ZIndex:     IntOrAuto{Auto: true},

		Top: SToV("auto"), Right: SToV("auto"), Bottom: SToV("auto"), Left: SToV("auto"),

		BoxSizing: "content-box",
		Width:     SToV("auto"), Height: SToV("auto"),
		MinWidth: FToPx(0), MinHeight: FToPx(0),
		MaxWidth: SToV("none"), MaxHeight: SToV("none"),

		BorderTopStyle: "none", BorderRightStyle: "none", BorderBottomStyle: "none", BorderLeftStyle: "none",

		BorderTopLeftRadius: zeroRadius, BorderTopRightRadius: zeroRadius,
		BorderBottomRightRadius: zeroRadius, BorderBottomLeftRadius: zeroRadius,

		Font:          Font{Family: "serif", Size: DefaultFontSize, Weight: 400},
		LineHeight:    SToV("normal"),
		TextAlign:     "start",
		TextTransform: "none",
		WhiteSpace:    "normal",
		VerticalAlign: SToV("baseline"),

		BorderCollapse: "separate",
		CaptionSide:    "top",

		FlexDirection:  "row",
		FlexWrap:       "nowrap",
		FlexShrink:     1,
		FlexBasis:      SToV("auto"),
		JustifyContent: "flex-start",
		AlignItems:     "stretch",
		AlignSelf:      "auto",
		AlignContent:   "stretch",
	}
}

// Inherit copies the inherited properties of [parent].
func (s *Style) Inherit(parent *Style) {
	s.Visibility = parent.Visibility
	s.Font = parent.Font
	s.LineHeight = parent.LineHeight
	s.TextAlign = parent.TextAlign
	s.TextIndent = parent.TextIndent
	s.TextTransform = parent.TextTransform
	s.WhiteSpace = parent.WhiteSpace
	s.BorderCollapse = parent.BorderCollapse
	s.BorderSpacing = parent.BorderSpacing
	s.CaptionSide = parent.CaptionSide
}

// AnonymousStyle returns the style of an anonymous box
// generated inside a box with style [parent].
func AnonymousStyle(parent *Style) *Style {
	s := InitialStyle()
	s.Inherit(parent)
	return &s
}

// IsFloated returns true for "float: left|right".
func (s *Style) IsFloated() bool { return s.Float != "none" }

// IsAbsolutelyPositioned returns true for "position: absolute|fixed".
func (s *Style) IsAbsolutelyPositioned() bool {
	return s.Position == "absolute" || s.Position == "fixed"
}

// IsInNormalFlow returns true for boxes neither floated nor
// absolutely positioned.
func (s *Style) IsInNormalFlow() bool {
	return !s.IsFloated() && !s.IsAbsolutelyPositioned()
}

// IsPositioned returns true if the box is a containing block
// for absolutely positioned descendants.
func (s *Style) IsPositioned() bool { return s.Position != "static" }
