package layout

import (
	"testing"

	pr "github.com/benoitkugler/boxlayout/css/properties"
	bo "github.com/benoitkugler/boxlayout/html/boxes"
	tu "github.com/benoitkugler/boxlayout/utils/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests for flex layout.

func renderFlex(t *testing.T, content string) *bo.Box {
	t.Helper()
	body := renderBody(t, content, 400)
	flex := unpack1(body)
	require.Equal(t, bo.KindFlex, flex.Kind)
	return flex
}

func TestFlexGrow(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	flex := renderFlex(t, `<div style="display: flex; width: 300px"><div style="flex-grow: 1; width: 100px"></div><div style="width: 100px"></div></div>`)
	div1, div2 := unpack2(flex)
	assert.Equal(t, pr.Float(200), div1.Width)
	assert.Equal(t, pr.Float(100), div2.Width)
	assert.Equal(t, pr.Float(0), div1.PositionX)
	assert.Equal(t, pr.Float(200), div2.PositionX)

	flex = renderFlex(t, `<div style="display: flex; width: 250px"><div style="flex-basis: 100px; flex-grow: 1"></div><div style="flex-basis: 50px; flex-grow: 3"></div></div>`)
	div1, div2 = unpack2(flex)
	assert.Equal(t, pr.Float(125), div1.Width)
	assert.Equal(t, pr.Float(125), div2.Width)
}

func TestFlexGrowMaxWidth(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	flex := renderFlex(t, `<div style="display: flex; width: 300px"><div style="flex-grow: 1; max-width: 50px"></div><div style="flex-grow: 1"></div></div>`)
	div1, div2 := unpack2(flex)
	assert.Equal(t, pr.Float(50), div1.Width)
	assert.Equal(t, pr.Float(250), div2.Width)
	assert.Equal(t, pr.Float(50), div2.PositionX)
}

func TestFlexShrink(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	flex := renderFlex(t, `<div style="display: flex; width: 100px"><div style="width: 150px"></div><div style="width: 50px"></div></div>`)
	div1, div2 := unpack2(flex)
	// proportional to the base sizes
	assert.Equal(t, pr.Float(75), div1.Width)
	assert.Equal(t, pr.Float(25), div2.Width)
	assert.Equal(t, pr.Float(75), div2.PositionX)

	flex = renderFlex(t, `<div style="display: flex; width: 100px"><div style="width: 150px; flex-shrink: 0"></div><div style="width: 50px"></div></div>`)
	div1, div2 = unpack2(flex)
	assert.Equal(t, pr.Float(150), div1.Width)
	assert.Equal(t, pr.Float(0), div2.Width)
}

func TestFlexJustifyContent(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	for _, test := range []struct {
		justify string
		x1, x2  pr.Float
	}{
		{"flex-start", 0, 50},
		{"flex-end", 200, 250},
		{"center", 100, 150},
		{"space-between", 0, 250},
		{"space-around", 50, 200},
		{"space-evenly", 200.0 / 3, 400.0/3 + 50},
	} {
		flex := renderFlex(t, `<div style="display: flex; width: 300px; justify-content: `+test.justify+`">`+
			`<div style="width: 50px"></div><div style="width: 50px"></div></div>`)
		div1, div2 := unpack2(flex)
		assertApprox(t, div1.PositionX, float64(test.x1), test.justify)
		assertApprox(t, div2.PositionX, float64(test.x2), test.justify)
	}
}

func TestFlexColumn(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	flex := renderFlex(t, `<div style="display: flex; flex-direction: column; width: 200px"><div style="height: 30px"></div><div style="height: 20px"></div></div>`)
	div1, div2 := unpack2(flex)
	assert.Equal(t, pr.Float(0), div1.PositionY)
	assert.Equal(t, pr.Float(30), div2.PositionY)
	assert.Equal(t, pr.Float(50), flex.Height)
	// stretched on the cross axis
	assert.Equal(t, pr.Float(200), div1.Width)
	assert.Equal(t, pr.Float(200), div2.Width)

	flex = renderFlex(t, `<div style="display: flex; flex-direction: column-reverse; height: 100px"><div style="height: 30px"></div><div style="height: 20px"></div></div>`)
	div1, div2 = unpack2(flex)
	assert.Equal(t, pr.Float(70), div1.PositionY)
	assert.Equal(t, pr.Float(50), div2.PositionY)
	assert.Equal(t, pr.Float(100), flex.Height)
}

func TestFlexColumnContentHeight(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	flex := renderFlex(t, `<div style="display: flex; flex-direction: column; width: 40px; align-items: flex-start"><div>ab cd</div></div>`)
	div := unpack1(flex)
	// shrunk to its content, which does not fit on one line
	assert.Equal(t, pr.Float(40), div.Width)
	assert.Equal(t, pr.Float(32), div.Height)
	assert.Equal(t, pr.Float(32), flex.Height)
}

func TestFlexOrder(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	flex := renderFlex(t, `<div style="display: flex"><div style="order: 2; width: 10px"></div><div style="order: 1; width: 20px"></div><div style="width: 5px"></div></div>`)
	div1, div2, div3 := unpack3(flex)
	assert.Equal(t, pr.Float(0), div3.PositionX)
	assert.Equal(t, pr.Float(5), div2.PositionX)
	assert.Equal(t, pr.Float(25), div1.PositionX)
}

func TestFlexWrap(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	flex := renderFlex(t, `<div style="display: flex; flex-wrap: wrap; width: 100px"><div style="width: 60px; height: 10px"></div><div style="width: 60px; height: 20px"></div></div>`)
	div1, div2 := unpack2(flex)
	assert.Equal(t, pr.Float(0), div1.PositionY)
	assert.Equal(t, pr.Float(0), div2.PositionX)
	assert.Equal(t, pr.Float(10), div2.PositionY)
	assert.Equal(t, pr.Float(30), flex.Height)

	flex = renderFlex(t, `<div style="display: flex; flex-wrap: wrap-reverse; width: 100px"><div style="width: 60px; height: 10px"></div><div style="width: 60px; height: 20px"></div></div>`)
	div1, div2 = unpack2(flex)
	assert.Equal(t, pr.Float(20), div1.PositionY)
	assert.Equal(t, pr.Float(0), div2.PositionY)

	// extra cross space is shared between the lines
	flex = renderFlex(t, `<div style="display: flex; flex-wrap: wrap; width: 100px; height: 50px"><div style="width: 60px; height: 10px"></div><div style="width: 60px; height: 20px"></div></div>`)
	div1, div2 = unpack2(flex)
	assert.Equal(t, pr.Float(20), div2.PositionY)
	assert.Equal(t, pr.Float(50), flex.Height)
}

func TestFlexAlignItems(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	for _, test := range []struct {
		align string
		y     pr.Float
	}{
		{"flex-start", 0},
		{"flex-end", 80},
		{"center", 40},
	} {
		flex := renderFlex(t, `<div style="display: flex; height: 100px; align-items: `+test.align+`"><div style="width: 10px; height: 20px"></div></div>`)
		assert.Equal(t, test.y, unpack1(flex).PositionY, test.align)
	}

	// stretched
	flex := renderFlex(t, `<div style="display: flex; height: 50px"><div style="width: 10px; margin-top: 5px"></div><div style="width: 10px; height: 20px"></div></div>`)
	div1, div2 := unpack2(flex)
	assert.Equal(t, pr.Float(45), div1.Height)
	assert.Equal(t, pr.Float(20), div2.Height)

	// align-self overrides align-items
	flex = renderFlex(t, `<div style="display: flex; height: 50px; align-items: center"><div style="height: 10px; align-self: flex-end"></div></div>`)
	assert.Equal(t, pr.Float(40), unpack1(flex).PositionY)
}

func TestFlexItemHeight(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	flex := renderFlex(t, `<div style="display: flex; width: 100px"><div style="width: 10px; height: 20px"></div></div>`)
	assert.Equal(t, pr.Float(20), unpack1(flex).Height)
	assert.Equal(t, pr.Float(20), flex.Height)

	// the tallest item sets the line cross size, and the others stretch
	flex = renderFlex(t, `<div style="display: flex; width: 100px"><div style="width: 10px; height: 20px"></div><div style="width: 10px; height: 30px"></div><div style="width: 10px"></div></div>`)
	div1, div2, div3 := unpack3(flex)
	assert.Equal(t, pr.Float(20), div1.Height)
	assert.Equal(t, pr.Float(30), div2.Height)
	assert.Equal(t, pr.Float(30), div3.Height)
	assert.Equal(t, pr.Float(30), flex.Height)
}

func TestFlexAlignBaseline(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	flex := renderFlex(t, `<div style="display: flex; align-items: baseline"><div>a</div><div style="font-size: 32px">b</div></div>`)
	div1, div2 := unpack2(flex)
	assertApprox(t, div1.PositionY, 12.8)
	assertApprox(t, div2.PositionY, 0)
	assertApprox(t, flex.Height, 32)
	assertApprox(t, flex.Baseline.V(), 25.6)
}

func TestFlexRowReverse(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	flex := renderFlex(t, `<div style="display: flex; flex-direction: row-reverse; width: 100px"><div style="width: 10px"></div><div style="width: 20px"></div></div>`)
	div1, div2 := unpack2(flex)
	assert.Equal(t, pr.Float(90), div1.PositionX)
	assert.Equal(t, pr.Float(70), div2.PositionX)
}

func TestFlexItemMargins(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	flex := renderFlex(t, `<div style="display: flex; width: 300px"><div style="width: 50px; margin: 10px; padding: 5px"></div><div style="width: 50px"></div></div>`)
	div1, div2 := unpack2(flex)
	assert.Equal(t, pr.Float(0), div1.PositionX)
	assert.Equal(t, pr.Float(15), div1.ContentBoxX())
	assert.Equal(t, pr.Float(50), div1.Width)
	assert.Equal(t, pr.Float(80), div2.PositionX)
}

func TestFlexAnonymousItems(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	flex := renderFlex(t, `<div style="display: flex">ab <span>cd</span></div>`)
	require.Len(t, flex.Children, 2)
	text, span := unpack2(flex)
	assert.True(t, text.Anonymous)
	assert.Equal(t, pr.Float(32), text.Width)
	// items are blockified
	assert.Equal(t, bo.KindBlock, span.Kind)
	assert.Equal(t, pr.Float(32), span.PositionX)
	assert.Equal(t, pr.Float(16), flex.Height)
}

func TestInlineFlex(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	body := renderBody(t, `<div style="display: inline-flex"><div style="width: 20px"></div><div style="width: 30px"></div></div>`, 300)
	flex := unpack1(body)
	require.Equal(t, bo.KindFlex, flex.Kind)
	assert.Equal(t, pr.Float(50), flex.Width)
	require.Len(t, body.Lines, 1)
}
