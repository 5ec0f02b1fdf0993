package layout

import (
	"strings"
	"testing"

	pr "github.com/benoitkugler/boxlayout/css/properties"
	bo "github.com/benoitkugler/boxlayout/html/boxes"
	"github.com/benoitkugler/boxlayout/html/tree"
	"github.com/benoitkugler/boxlayout/text"
	tu "github.com/benoitkugler/boxlayout/utils/testutils"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var fixedMeasurer = text.FixedMeasurer{}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeImages knows the size of "pattern.png" only.
type fakeImages struct{}

func (fakeImages) ImageSize(src, baseURL string) (pr.Float, pr.Float, bool) {
	if strings.HasSuffix(src, "pattern.png") {
		return 4, 4, true
	}
	return 0, 0, false
}

func build(t *testing.T, content string) *bo.Box {
	t.Helper()
	doc, err := tree.NewHTMLString(content, "", tree.TestUA)
	require.NoError(t, err)
	return bo.Build(doc.Root, fakeImages{}, doc.BaseURL)
}

// renderOpts lays out [content] and returns the root box.
func renderOpts(t *testing.T, content string, opts Options) *bo.Box {
	t.Helper()
	root := build(t, content)
	Layout(root, fixedMeasurer, opts)
	return root
}

// renderBody lays out [content] in a viewport of [width] and returns
// the <body> box.
func renderBody(t *testing.T, content string, width pr.Float) *bo.Box {
	t.Helper()
	root := renderOpts(t, content, Options{ViewportWidth: width})
	require.Len(t, root.Children, 1)
	body := root.Children[0]
	require.Equal(t, "body", body.Tag())
	return body
}

// unpack 1 children
func unpack1(box *bo.Box) *bo.Box { return box.Children[0] }

// unpack 2 children
func unpack2(box *bo.Box) (c1, c2 *bo.Box) { return box.Children[0], box.Children[1] }

// unpack 3 children
func unpack3(box *bo.Box) (c1, c2, c3 *bo.Box) {
	return box.Children[0], box.Children[1], box.Children[2]
}

func assertApprox(t *testing.T, got pr.Float, exp float64, msgAndArgs ...interface{}) {
	t.Helper()
	assert.InDelta(t, exp, float64(got), 0.01, msgAndArgs...)
}

type geometry struct {
	Box       string
	Margin    bo.Rect
	Content   bo.Rect
	Fragments []bo.Fragment
}

func collectGeometry(root *bo.Box) []geometry {
	var out []geometry
	root.Walk(func(b *bo.Box) bool {
		out = append(out, geometry{b.String(), b.MarginBox(), b.ContentBox(), b.Fragments})
		return true
	})
	return out
}

const mixedDocument = `
<div style="margin: 10px 20px; padding: 5px; border: 1px solid">
	<div style="float: left; width: 40px; height: 30px"></div>
	<p style="text-align: justify">some words to break in lines <span style="vertical-align: super">up</span>
	<span style="display: inline-block; width: 20px; height: 10px"></span> and the end</p>
	<table style="border-spacing: 2px"><tr><td>ab cd</td><td rowspan="2">e</td></tr><tr><td>f</td></tr></table>
	<div style="display: flex"><div style="flex-grow: 1">a</div><div>bc</div></div>
	<div style="position: relative"><div style="position: absolute; right: 0; width: 10px">x</div></div>
</div>`

func TestLayoutDeterministic(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	root1 := renderOpts(t, mixedDocument, Options{ViewportWidth: 300})
	root2 := renderOpts(t, mixedDocument, Options{ViewportWidth: 300})
	g1 := collectGeometry(root1)
	if diff := cmp.Diff(g1, collectGeometry(root2)); diff != "" {
		t.Fatalf("unexpected difference (-first +second):\n%s", diff)
	}

	// laying out the same tree again gives the same geometry
	Layout(root1, fixedMeasurer, Options{ViewportWidth: 300})
	if diff := cmp.Diff(g1, collectGeometry(root1)); diff != "" {
		t.Fatalf("unexpected difference after relayout (-first +second):\n%s", diff)
	}

	// and a relayout at another width is independent of the previous one
	Layout(root1, fixedMeasurer, Options{ViewportWidth: 500})
	Layout(root1, fixedMeasurer, Options{ViewportWidth: 300})
	if diff := cmp.Diff(g1, collectGeometry(root1)); diff != "" {
		t.Fatalf("unexpected difference after resize (-first +second):\n%s", diff)
	}
}

func TestBoxIdentity(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	root := renderOpts(t, mixedDocument, Options{ViewportWidth: 300})
	root.Walk(func(b *bo.Box) bool {
		margin, content := b.MarginBox(), b.ContentBox()
		assertApprox(t, margin.Width, float64(content.Width+b.PaddingLeft+b.PaddingRight+
			b.BorderLeftWidth+b.BorderRightWidth+b.MarginLeft+b.MarginRight), b)
		assertApprox(t, margin.Height, float64(content.Height+b.PaddingTop+b.PaddingBottom+
			b.BorderTopWidth+b.BorderBottomWidth+b.MarginTop+b.MarginBottom), b)
		assert.GreaterOrEqual(t, float64(b.Width), 0., b)
		assert.GreaterOrEqual(t, float64(b.Height), 0., b)
		return true
	})
}

func TestContainment(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	body := renderBody(t, `
	<div style="padding: 0 7px">
		<div style="margin: 0 auto; width: 50px"></div>
		<p style="margin-left: 12px">text text text text</p>
		<div style="margin-right: 30px"><div style="padding: 3px"></div></div>
	</div>`, 200)
	body.Walk(func(b *bo.Box) bool {
		if !b.IsBlockContainer() || b.IsInlineLevel() {
			return true
		}
		left, right := b.ContentBoxX(), b.ContentBoxX()+b.Width
		for _, child := range b.Children {
			if !child.IsBlockLevel() || !child.IsInNormalFlow() {
				continue
			}
			assert.GreaterOrEqual(t, float64(child.PositionX), float64(left)-0.01, child)
			assert.LessOrEqual(t, float64(child.PositionX+child.MarginWidth()), float64(right)+0.01, child)
		}
		for _, line := range b.Lines {
			assert.GreaterOrEqual(t, float64(line.PositionX), float64(left)-0.01)
			assert.LessOrEqual(t, float64(line.PositionX+line.Width), float64(right)+0.01)
		}
		return true
	})
}

func TestLayoutReturnsUsedWidth(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	root := build(t, `<p>abc</p>`)
	w := Layout(root, fixedMeasurer, Options{ViewportWidth: 123})
	assert.Equal(t, pr.Float(123), w)
	assert.Equal(t, pr.Float(123), root.Width)
	assert.Equal(t, pr.Float(16), root.Height)
}

func TestLayoutDebugLogs(t *testing.T) {
	logs := tu.CaptureLogs()
	renderOpts(t, `<p>abc</p>`, Options{ViewportWidth: 100, Debug: true})
	// debug output is informative only
	logs.AssertNoLogs(t)
}
