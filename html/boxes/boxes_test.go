package boxes

import (
	"strings"
	"testing"

	pr "github.com/benoitkugler/boxlayout/css/properties"
	"github.com/benoitkugler/boxlayout/html/tree"
	tu "github.com/benoitkugler/boxlayout/utils/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeImages knows the size of "pattern.png" only.
type fakeImages struct{}

func (fakeImages) ImageSize(src, baseURL string) (pr.Float, pr.Float, bool) {
	if strings.HasSuffix(src, "pattern.png") {
		return 4, 4, true
	}
	return 0, 0, false
}

func parseHTML(t *testing.T, content string) *tree.HTML {
	t.Helper()
	doc, err := tree.NewHTMLString(content, "", tree.TestUA)
	require.NoError(t, err)
	return doc
}

func parseAndBuild(t *testing.T, content string) *Box {
	t.Helper()
	doc := parseHTML(t, content)
	return Build(doc.Root, fakeImages{}, doc.BaseURL)
}

// Check the box tree equality.
//
// box: a Box object, starting with <html> and <body> blocks.
// expected: a list of serialized <body> children.
func assertTree(t *testing.T, box *Box, expected []SerBox) {
	t.Helper()

	require.Equal(t, "html", box.Tag())
	require.Equal(t, KindBlock, box.Kind)
	require.True(t, box.IsRoot)
	require.Len(t, box.Children, 1)

	body := box.Children[0]
	require.Equal(t, "body", body.Tag())
	require.Equal(t, KindBlock, body.Kind)

	if got := Serialize(body.Children); !assert.ObjectsAreEqual(expected, got) {
		t.Fatalf("expected \n%v\n, got\n%v", expected, got)
	}
}

func TestKinds(t *testing.T) {
	kinds := Kinds()
	require.Len(t, kinds, int(numKinds))
	seen := map[string]bool{}
	for _, k := range kinds {
		s := k.String()
		assert.NotContains(t, s, "invalid")
		assert.False(t, seen[s])
		seen[s] = true
		assert.NotEmpty(t, kindDisplay[k])
	}
	assert.Contains(t, Kind(numKinds).String(), "invalid")
}

func TestBoxTree(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	assertTree(t, parseAndBuild(t, "<p>"), []SerBox{{"p", KindBlock, "", nil}})
	assertTree(t, parseAndBuild(t, `<p>Hello <em>World <img src="pattern.png"><span style="display: inline-block">L</span></em>!</p>`),
		[]SerBox{
			{"p", KindBlock, "", []SerBox{
				{"p", KindText, "Hello ", nil},
				{"em", KindInline, "", []SerBox{
					{"em", KindText, "World ", nil},
					{"img", KindImage, "", nil},
					{"span", KindInlineBlock, "", []SerBox{
						{"span", KindText, "L", nil},
					}},
				}},
				{"p", KindText, "!", nil},
			}},
		})
}

func TestHtmlEntities(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	for _, quote := range []string{`"`, "&quot;", "&#x22;", "&#34;"} {
		assertTree(t, parseAndBuild(t, "<p>"+quote+"abc"+quote), []SerBox{
			{"p", KindBlock, "", []SerBox{
				{"p", KindText, `"abc"`, nil},
			}},
		})
	}
}

func TestInlineInBlock(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	assertTree(t, parseAndBuild(t, "<div>Hello, <em>World</em>!\n<p>Lipsum.</p></div>"), []SerBox{
		{"div", KindBlock, "", []SerBox{
			{"div", KindBlock, "", []SerBox{
				{"div", KindText, "Hello, ", nil},
				{"em", KindInline, "", []SerBox{
					{"em", KindText, "World", nil},
				}},
				{"div", KindText, "! ", nil},
			}},
			{"p", KindBlock, "", []SerBox{
				{"p", KindText, "Lipsum.", nil},
			}},
		}},
	})

	assertTree(t, parseAndBuild(t, "<div><p>Lipsum.</p>Hello, <em>World</em>!\n</div>"), []SerBox{
		{"div", KindBlock, "", []SerBox{
			{"p", KindBlock, "", []SerBox{
				{"p", KindText, "Lipsum.", nil},
			}},
			{"div", KindBlock, "", []SerBox{
				{"div", KindText, "Hello, ", nil},
				{"em", KindInline, "", []SerBox{
					{"em", KindText, "World", nil},
				}},
				{"div", KindText, "! ", nil},
			}},
		}},
	})

	// spaces between blocks do not generate boxes
	box := parseAndBuild(t, "<div>\n  <p>a</p>\n  <p>b</p>\n</div>")
	div := box.Children[0].Children[0]
	require.Len(t, div.Children, 2)
	assert.False(t, div.Children[0].Anonymous)
	assert.False(t, div.Children[1].Anonymous)
}

func TestFloatsAmongBlocks(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	assertTree(t, parseAndBuild(t, `<div><span style="float: left">f</span> <p>a</p></div>`), []SerBox{
		{"div", KindBlock, "", []SerBox{
			{"span", KindBlock, "", []SerBox{
				{"span", KindText, "f", nil},
			}},
			{"p", KindBlock, "", []SerBox{
				{"p", KindText, "a", nil},
			}},
		}},
	})
}

func TestBlockInInline(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	box := parseAndBuild(t, `<p>Lorem <em>ipsum <strong>dolor <span style="display: block">sit</span> amet</strong> conse</em></p>`)
	assertTree(t, box, []SerBox{
		{"p", KindBlock, "", []SerBox{
			{"p", KindBlock, "", []SerBox{
				{"p", KindText, "Lorem ", nil},
				{"em", KindInline, "", []SerBox{
					{"em", KindText, "ipsum ", nil},
					{"strong", KindInline, "", []SerBox{
						{"strong", KindText, "dolor ", nil},
					}},
				}},
			}},
			{"span", KindBlock, "", []SerBox{
				{"span", KindText, "sit", nil},
			}},
			{"p", KindBlock, "", []SerBox{
				{"em", KindInline, "", []SerBox{
					{"strong", KindInline, "", []SerBox{
						{"strong", KindText, "amet", nil},
					}},
					{"em", KindText, " conse", nil},
				}},
			}},
		}},
	})
}

func TestWhitespaces(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	assertTree(t, parseAndBuild(t, "<p>Lorem \t\r\n  ipsum\t<strong>  dolor <img src=pattern.png> sit</strong>"+
		"<em> amet </em><span style=\"display: block; white-space: pre\">\t\n  foo\n</span></p>"), []SerBox{
		{"p", KindBlock, "", []SerBox{
			{"p", KindBlock, "", []SerBox{
				{"p", KindText, "Lorem ipsum ", nil},
				{"strong", KindInline, "", []SerBox{
					{"strong", KindText, "dolor ", nil},
					{"img", KindImage, "", nil},
					{"strong", KindText, " sit", nil},
				}},
				{"em", KindInline, "", []SerBox{
					{"em", KindText, " amet ", nil},
				}},
			}},
			{"span", KindBlock, "", []SerBox{
				{"span", KindText, "        \n  foo\n", nil},
			}},
		}},
	})
}

func TestTextTransform(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	assertTree(t, parseAndBuild(t, `<p style="text-transform: uppercase">abc <em style="text-transform: capitalize">def ghi</em></p>`), []SerBox{
		{"p", KindBlock, "", []SerBox{
			{"p", KindText, "ABC ", nil},
			{"em", KindInline, "", []SerBox{
				{"em", KindText, "Def Ghi", nil},
			}},
		}},
	})
}

func TestImages(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	box := parseAndBuild(t, `<p><img src="pattern.png"><img src="missing.png" alt="No image"><img src="missing.png"></p>`)
	assertTree(t, box, []SerBox{
		{"p", KindBlock, "", []SerBox{
			{"img", KindImage, "", nil},
			{"img", KindInline, "", []SerBox{
				{"img", KindText, "No image", nil},
			}},
		}},
	})
	img := box.Children[0].Children[0].Children[0]
	assert.Equal(t, pr.Float(4), img.IntrinsicWidth)
	assert.Equal(t, pr.Float(4), img.IntrinsicHeight)
	assert.True(t, img.IsAtomicInline())

	box = parseAndBuild(t, `<img src="pattern.png" style="display: block">`)
	img = box.Children[0].Children[0]
	assert.True(t, img.IsBlockLevel())
	assert.False(t, img.IsInlineLevel())
}

func TestLineBreakAndDisplayNone(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	assertTree(t, parseAndBuild(t, `<p>a<br>b<span style="display: none">hidden</span></p>`), []SerBox{
		{"p", KindBlock, "", []SerBox{
			{"p", KindText, "a", nil},
			{"br", KindLineBreak, "", nil},
			{"p", KindText, "b", nil},
		}},
	})
}

func TestTables(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	assertTree(t, parseAndBuild(t, `<table> <tr> <td>foo</td> <th>bar</th> </tr> </table>`), []SerBox{
		{"table", KindTable, "", []SerBox{
			{"tbody", KindTableRowGroup, "", []SerBox{
				{"tr", KindTableRow, "", []SerBox{
					{"td", KindTableCell, "", []SerBox{{"td", KindText, "foo", nil}}},
					{"th", KindTableCell, "", []SerBox{{"th", KindText, "bar", nil}}},
				}},
			}},
		}},
	})

	// misparented cells
	assertTree(t, parseAndBuild(t, `<div><span style="display: table-cell">a</span>
		<span style="display: table-cell">b</span></div>`), []SerBox{
		{"div", KindBlock, "", []SerBox{
			{"div", KindTable, "", []SerBox{
				{"div", KindTableRowGroup, "", []SerBox{
					{"div", KindTableRow, "", []SerBox{
						{"span", KindTableCell, "", []SerBox{{"span", KindText, "a", nil}}},
						{"span", KindTableCell, "", []SerBox{{"span", KindText, "b", nil}}},
					}},
				}},
			}},
		}},
	})

	// content directly in rows
	assertTree(t, parseAndBuild(t, `<div style="display: table"><div style="display: table-row">x</div></div>`), []SerBox{
		{"div", KindTable, "", []SerBox{
			{"div", KindTableRowGroup, "", []SerBox{
				{"div", KindTableRow, "", []SerBox{
					{"div", KindTableCell, "", []SerBox{{"div", KindText, "x", nil}}},
				}},
			}},
		}},
	})
}

func TestInlineTableWrapper(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	box := parseAndBuild(t, `<p>a <span><span style="display: table-cell">b</span></span></p>`)
	span := box.Children[0].Children[0].Children[1]
	require.Equal(t, KindInline, span.Kind)
	table := span.Children[0]
	assert.Equal(t, KindTable, table.Kind)
	assert.True(t, table.Anonymous)
	assert.True(t, table.IsAtomicInline())
}

func TestSpans(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	box := parseAndBuild(t, `<table><colgroup span="3"></colgroup><colgroup><col span="2"><col span="0"></colgroup>
		<tr><td colspan="0" rowspan="0">a</td><td colspan="5000" rowspan="2">b</td></tr></table>`)
	table := box.Children[0].Children[0]
	require.Equal(t, KindTable, table.Kind)
	require.Len(t, table.Children, 3)

	group1, group2 := table.Children[0], table.Children[1]
	assert.Equal(t, KindTableColumnGroup, group1.Kind)
	require.Len(t, group1.Children, 3)
	assert.True(t, group1.Children[0].Anonymous)
	require.Len(t, group2.Children, 2)
	assert.Equal(t, 2, group2.Children[0].Colspan)
	assert.Equal(t, 1, group2.Children[1].Colspan)

	row := table.Children[2].Children[0]
	require.Len(t, row.Children, 2)
	assert.Equal(t, 1, row.Children[0].Colspan)
	assert.Equal(t, 0, row.Children[0].Rowspan)
	assert.Equal(t, maxColspan, row.Children[1].Colspan)
	assert.Equal(t, 2, row.Children[1].Rowspan)
}

func TestFlexItems(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	box := parseAndBuild(t, `<div style="display: flex">text <span>a</span> <p style="position: absolute">x</p></div>`)
	assertTree(t, box, []SerBox{
		{"div", KindFlex, "", []SerBox{
			{"div", KindBlock, "", []SerBox{{"div", KindText, "text ", nil}}},
			{"span", KindBlock, "", []SerBox{{"span", KindText, "a", nil}}},
			{"p", KindBlock, "", []SerBox{{"p", KindText, "x", nil}}},
		}},
	})
	flex := box.Children[0].Children[0]
	assert.True(t, flex.Children[0].FlexItem)
	assert.True(t, flex.Children[1].FlexItem)
	assert.False(t, flex.Children[2].FlexItem)
	assert.Equal(t, "block", flex.Children[1].Style.Display)
	// the element style is not modified
	assert.Equal(t, "inline", flex.Children[1].Element.Style.Display)
	assert.True(t, flex.Children[1].EstablishesFormattingContext())
}

func TestBlockify(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	box := parseAndBuild(t, `<p><span style="float: left">a</span><span style="position: absolute; display: inline-table">b</span></p>`)
	p := box.Children[0].Children[0]
	require.Len(t, p.Children, 2)
	assert.Equal(t, KindBlock, p.Children[0].Kind)
	assert.True(t, p.Children[0].IsFloated())
	assert.Equal(t, KindTable, p.Children[1].Kind)
	assert.Equal(t, "table", p.Children[1].Style.Display)
	assert.True(t, p.Children[1].IsBlockLevel())
}

func TestRootIsBlock(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	style := pr.InitialStyle()
	root := &tree.Element{Tag: "x", Style: &style}
	root.Children = []*tree.Element{{Text: "a", Style: &style, Parent: root}}
	box := Build(root, fakeImages{}, "")
	assert.Equal(t, KindBlock, box.Kind)
	assert.True(t, box.IsRoot)
	assert.True(t, box.EstablishesFormattingContext())
	assert.Equal(t, []SerBox{{"x", KindText, "a", nil}}, Serialize(box.Children))
}

func TestMissingElement(t *testing.T) {
	assert.Panics(t, func() { New(KindBlock, nil, nil) })
}

func TestInvalidation(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	doc := parseHTML(t, `<div id="d"><p>a</p></div><p id="other">b</p>`)
	root := Build(doc.Root, fakeImages{}, "")
	div := root.Children[0].Children[0]
	p := div.Children[0]
	other := root.Children[0].Children[1]

	doc.Restyle(doc.Root.GetElementByID("d"), "color: red")
	assert.True(t, div.Stale)
	assert.True(t, p.Stale)
	assert.False(t, other.Stale)
}

func TestGeometry(t *testing.T) {
	style := pr.InitialStyle()
	el := &tree.Element{Tag: "div", Style: &style}
	box := New(KindBlock, el, nil)
	box.PositionX, box.PositionY = 10, 20
	box.Width, box.Height = 100, 50
	box.MarginLeft, box.MarginRight, box.MarginTop, box.MarginBottom = 1, 2, 3, 4
	box.BorderLeftWidth, box.BorderRightWidth, box.BorderTopWidth, box.BorderBottomWidth = 5, 6, 7, 8
	box.PaddingLeft, box.PaddingRight, box.PaddingTop, box.PaddingBottom = 9, 10, 11, 12

	assert.Equal(t, pr.Float(100+9+10+5+6+1+2), box.MarginWidth())
	assert.Equal(t, pr.Float(50+11+12+7+8+3+4), box.MarginHeight())
	assert.Equal(t, pr.Float(10+1+5+9), box.ContentBoxX())
	assert.Equal(t, pr.Float(20+3+7+11), box.ContentBoxY())
	assert.Equal(t, Rect{11, 23, 130, 88}, box.BorderBox())

	child := New(KindInline, el, nil)
	child.Fragments = []Fragment{{X: 1, Y: 2, Width: 3, Height: 4}}
	box.Children = []*Box{child}
	box.Lines = []*LineBox{{PositionX: 5, PositionY: 6, Baseline: 10}}
	box.Translate(10, -5)
	assert.Equal(t, pr.Float(20), box.PositionX)
	assert.Equal(t, pr.Float(15), box.PositionY)
	assert.Equal(t, Fragment{X: 11, Y: -3, Width: 3, Height: 4}, child.Fragments[0])
	assert.Equal(t, LineBox{PositionX: 15, PositionY: 1, Baseline: 5}, *box.Lines[0])

	box.ResetSpacing("left")
	assert.Equal(t, pr.Float(0), box.MarginLeft+box.BorderLeftWidth+box.PaddingLeft)
}

func TestRect(t *testing.T) {
	r := Rect{0, 0, 10, 10}
	assert.True(t, r.Contains(0, 0))
	assert.False(t, r.Contains(10, 5))
	assert.Equal(t, Rect{0, 0, 20, 15}, r.Union(Rect{15, 5, 5, 10}))
	assert.Equal(t, r, r.Union(Rect{}))
	assert.Equal(t, r, Rect{}.Union(r))
}

func TestDump(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	box := parseAndBuild(t, `<p>a</p>`)
	var b strings.Builder
	require.NoError(t, Dump(&b, box))
	out := b.String()
	assert.Contains(t, out, "Block html 0,0")
	assert.Contains(t, out, `Text p 0,0 0x0 "a"`)
	assert.Contains(t, Serialize(box.Children)[0].String(), "Block body")
}
