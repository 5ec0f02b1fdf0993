package validation

import (
	"testing"

	pr "github.com/benoitkugler/boxlayout/css/properties"
	tu "github.com/benoitkugler/boxlayout/utils/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func computed(t *testing.T, parent *pr.Style, css string) pr.Style {
	t.Helper()
	s := pr.InitialStyle()
	if parent != nil {
		s.Inherit(parent)
	}
	ParseStyleAttribute(&s, parent, css)
	FinishBorders(&s)
	return s
}

func TestLonghands(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	s := computed(t, nil, `display: inline-block; float: right; clear: both; position: relative;
		width: 50%; height: 2em; min-width: auto; max-height: 10px;
		margin-left: auto; margin-top: -1in; padding-right: 12pt;
		z-index: 3; order: -1; flex-grow: 2; flex-basis: content;
		vertical-align: super; text-align: justify; white-space: pre-line`)
	assert.Equal(t, "inline-block", s.Display)
	assert.Equal(t, "right", s.Float)
	assert.Equal(t, "both", s.Clear)
	assert.Equal(t, "relative", s.Position)
	assert.Equal(t, pr.PercToV(50), s.Width)
	assert.Equal(t, pr.FToPx(32), s.Height)
	assert.Equal(t, pr.FToPx(0), s.MinWidth)
	assert.Equal(t, pr.FToPx(10), s.MaxHeight)
	assert.True(t, s.MarginLeft.IsAuto())
	assert.Equal(t, pr.FToPx(-96), s.MarginTop)
	assert.Equal(t, pr.FToPx(16), s.PaddingRight)
	assert.Equal(t, pr.IntOrAuto{Int: 3}, s.ZIndex)
	assert.Equal(t, -1, s.Order)
	assert.Equal(t, pr.Float(2), s.FlexGrow)
	assert.Equal(t, pr.SToV("content"), s.FlexBasis)
	assert.Equal(t, pr.SToV("super"), s.VerticalAlign)
	assert.Equal(t, "justify", s.TextAlign)
	assert.Equal(t, "pre-line", s.WhiteSpace)
}

func TestInvalidValues(t *testing.T) {
	logs := tu.CaptureLogs()
	s := computed(t, nil, "width: -10px; display: grid; foo: bar; padding: 1px 2px 3px 4px 5px; height: 5px")
	l := logs.CheckEqual(t, 4)
	assert.Contains(t, l[0], "unknown property")
	assert.True(t, s.Width.IsAuto())
	assert.Equal(t, "inline", s.Display)
	assert.Equal(t, pr.FToPx(5), s.Height)
}

func TestFontSize(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	parent := computed(t, nil, "font-size: 20px; line-height: 1.5")
	child := computed(t, &parent, "font-size: 2em; margin-top: 1em; line-height: 150%")
	assert.Equal(t, pr.Float(40), child.Font.Size)
	assert.Equal(t, pr.FToPx(40), child.MarginTop)
	assert.Equal(t, pr.FToPx(60), child.LineHeight)

	inherited := computed(t, &parent, "")
	assert.Equal(t, pr.Float(20), inherited.Font.Size)
	assert.Equal(t, pr.ScalarToV(1.5), inherited.LineHeight)

	perc := computed(t, &parent, "font-size: 50%")
	assert.Equal(t, pr.Float(10), perc.Font.Size)
	kw := computed(t, &parent, "font-size: large")
	assert.Equal(t, pr.Float(16*6./5.), kw.Font.Size)
}

func TestImportant(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	s := computed(t, nil, "width: 5px !important; width: 10px")
	assert.Equal(t, pr.FToPx(5), s.Width)
}

func TestInheritInitial(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	parent := computed(t, nil, "margin-top: 7px; display: block")
	s := computed(t, &parent, "margin-top: inherit; white-space: nowrap")
	assert.Equal(t, pr.FToPx(7), s.MarginTop)
	s2 := computed(t, &s, "white-space: initial")
	assert.Equal(t, "normal", s2.WhiteSpace)
}

func TestExpandFourSides(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	s := computed(t, nil, "margin: 1px 2px 3px; padding: 4px 5%")
	tu.AssertEqual(t, [4]pr.Value{s.MarginTop, s.MarginRight, s.MarginBottom, s.MarginLeft},
		[4]pr.Value{pr.FToPx(1), pr.FToPx(2), pr.FToPx(3), pr.FToPx(2)})
	tu.AssertEqual(t, [4]pr.Value{s.PaddingTop, s.PaddingRight, s.PaddingBottom, s.PaddingLeft},
		[4]pr.Value{pr.FToPx(4), pr.PercToV(5), pr.FToPx(4), pr.PercToV(5)})
}

func TestExpandBorder(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	s := computed(t, nil, "border: 2px solid red; border-left: dotted; border-bottom: 4px")
	tu.AssertEqual(t, [4]pr.Float{s.BorderTopWidth, s.BorderRightWidth, s.BorderBottomWidth, s.BorderLeftWidth},
		[4]pr.Float{2, 2, 0, 3})
	assert.Equal(t, "dotted", s.BorderLeftStyle)
	assert.Equal(t, "none", s.BorderBottomStyle)

	s = computed(t, nil, "border-style: solid; border-width: thin thick")
	tu.AssertEqual(t, [4]pr.Float{s.BorderTopWidth, s.BorderRightWidth, s.BorderBottomWidth, s.BorderLeftWidth},
		[4]pr.Float{1, 5, 1, 5})
}

func TestExpandBorderRadius(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	s := computed(t, nil, "border-radius: 1px 2px / 10%")
	assert.Equal(t, [2]pr.Value{pr.FToPx(1), pr.PercToV(10)}, s.BorderTopLeftRadius)
	assert.Equal(t, [2]pr.Value{pr.FToPx(2), pr.PercToV(10)}, s.BorderTopRightRadius)
	assert.Equal(t, [2]pr.Value{pr.FToPx(1), pr.PercToV(10)}, s.BorderBottomRightRadius)
}

func TestExpandFlex(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	for _, test := range []struct {
		css          string
		grow, shrink pr.Float
		basis        pr.Value
	}{
		{"flex: none", 0, 0, pr.SToV("auto")},
		{"flex: auto", 1, 1, pr.SToV("auto")},
		{"flex: 2", 2, 1, pr.FToPx(0)},
		{"flex: 2 3", 2, 3, pr.FToPx(0)},
		{"flex: 1 0 0", 1, 0, pr.FToPx(0)},
		{"flex: 3 20%", 3, 1, pr.PercToV(20)},
		{"flex: 10px", 1, 1, pr.FToPx(10)},
	} {
		s := computed(t, nil, test.css)
		assert.Equal(t, test.grow, s.FlexGrow, test.css)
		assert.Equal(t, test.shrink, s.FlexShrink, test.css)
		assert.Equal(t, test.basis, s.FlexBasis, test.css)
	}

	s := computed(t, nil, "flex-flow: column wrap")
	assert.Equal(t, "column", s.FlexDirection)
	assert.Equal(t, "wrap", s.FlexWrap)
}

func TestExpandFont(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	s := computed(t, nil, `font: italic bold 12px/30px "Ahem", serif`)
	require.True(t, s.Font.Italic)
	assert.Equal(t, 700, s.Font.Weight)
	assert.Equal(t, pr.Float(12), s.Font.Size)
	assert.Equal(t, pr.FToPx(30), s.LineHeight)
	assert.Equal(t, "Ahem, serif", s.Font.Family)
}

func TestIsKnown(t *testing.T) {
	assert.True(t, IsKnown("margin"))
	assert.True(t, IsKnown("width"))
	assert.True(t, IsKnown("color"))
	assert.False(t, IsKnown("grid-template"))
}
