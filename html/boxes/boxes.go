// Package boxes defines the render tree: the boxes produced from the
// element tree, positioned and sized by the layout package.
package boxes

import (
	"fmt"

	pr "github.com/benoitkugler/boxlayout/css/properties"
	"github.com/benoitkugler/boxlayout/html/tree"
)

// Kind is the type of a box, fixed at construction.
type Kind uint8

const (
	KindBlock Kind = iota
	KindInline
	KindInlineBlock
	KindText
	KindImage // replaced element, block-level or inline-level
	KindLineBreak
	KindTable // block-level or inline-level ("inline-table")
	KindTableRowGroup
	KindTableRow
	KindTableCell
	KindTableCaption
	KindTableColumnGroup
	KindTableColumn
	KindFlex // block-level or inline-level ("inline-flex")

	numKinds
)

// Kinds lists every box kind.
func Kinds() []Kind {
	out := make([]Kind, numKinds)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

func (k Kind) String() string {
	switch k {
	case KindBlock:
		return "Block"
	case KindInline:
		return "Inline"
	case KindInlineBlock:
		return "InlineBlock"
	case KindText:
		return "Text"
	case KindImage:
		return "Image"
	case KindLineBreak:
		return "LineBreak"
	case KindTable:
		return "Table"
	case KindTableRowGroup:
		return "TableRowGroup"
	case KindTableRow:
		return "TableRow"
	case KindTableCell:
		return "TableCell"
	case KindTableCaption:
		return "TableCaption"
	case KindTableColumnGroup:
		return "TableColumnGroup"
	case KindTableColumn:
		return "TableColumn"
	case KindFlex:
		return "Flex"
	default:
		return fmt.Sprintf("<invalid kind %d>", k)
	}
}

// Box is a node of the render tree.
//
// Positions are absolute, in pixels: (PositionX, PositionY) is the top left
// corner of the margin box and (Width, Height) the size of the content box.
type Box struct {
	Kind Kind

	// Element is the source element. Anonymous boxes use the
	// element of their parent.
	Element   *tree.Element
	Style     *pr.Style
	Anonymous bool
	IsRoot    bool // box of the root element
	FlexItem  bool // child of a flex container

	Children []*Box

	PositionX, PositionY pr.Float
	Width, Height        pr.Float

	MinWidth, MaxWidth, MinHeight, MaxHeight pr.Float

	MarginTop, MarginRight, MarginBottom, MarginLeft pr.Float

	PaddingTop, PaddingRight, PaddingBottom, PaddingLeft pr.Float

	BorderTopWidth, BorderRightWidth, BorderBottomWidth, BorderLeftWidth pr.Float

	// Used radii (horizontal, vertical), in the order top-left, top-right,
	// bottom-right, bottom-left.
	Radii [4][2]pr.Float

	// Baseline is the offset of the first baseline from PositionY,
	// or AutoF when the box has no line.
	Baseline pr.MaybeFloat

	// Text is the processed content of a KindText box.
	Text string

	// Intrinsic size of a KindImage box.
	IntrinsicWidth, IntrinsicHeight pr.Float
	// Broken is true for an image whose size is unknown.
	Broken bool

	// Lines are the line boxes of a block container with inline content.
	Lines []*LineBox
	// Fragments are the rectangles of an inline-level box, one per line.
	Fragments []Fragment

	// Positioned are the absolutely positioned descendants using
	// this box as containing block, laid out after it.
	Positioned []*Box
	// Static position of an absolutely positioned box.
	StaticX, StaticY pr.Float

	// Table cells and columns
	Colspan, Rowspan int
	GridX, GridY     int

	// Tables
	ColumnWidths    []pr.Float
	ColumnPositions []pr.Float
	ColumnMinWidths []pr.Float
	ColumnMaxWidths []pr.Float
	// Rows
	RowHeights []pr.Float

	// Stale is set when the source element has been restyled after
	// the box was built.
	Stale bool
}

// LineBox is a line of an inline formatting context.
type LineBox struct {
	PositionX, PositionY pr.Float
	Width, Height        pr.Float
	// Baseline is the absolute y of the baseline.
	Baseline pr.Float
	// Boxes are the inline-level boxes with a fragment on the line,
	// in order.
	Boxes []*Box
}

// Fragment is the part of an inline-level box on one line.
// The rectangle is the border box of the fragment.
type Fragment struct {
	X, Y, Width, Height pr.Float
	Line                int    // index in the Lines of the block container
	Text                string // for text boxes
}

// New returns a box with no children. [element] is required.
func New(kind Kind, element *tree.Element, style *pr.Style) *Box {
	if element == nil {
		panic("render box without source element")
	}
	if style == nil {
		style = element.Style
	}
	return &Box{Kind: kind, Element: element, Style: style, Colspan: 1, Rowspan: 1, Baseline: pr.AutoF}
}

// AnonymousFrom returns an anonymous box of [kind] generated
// inside [parent], with the given children.
func AnonymousFrom(parent *Box, kind Kind, children []*Box) *Box {
	box := New(kind, parent.Element, pr.AnonymousStyle(parent.Style))
	box.Style.Display = kindDisplay[kind]
	box.Anonymous = true
	box.Children = children
	return box
}

var kindDisplay = [numKinds]string{
	KindBlock:            "block",
	KindInline:           "inline",
	KindInlineBlock:      "inline-block",
	KindText:             "inline",
	KindImage:            "inline",
	KindLineBreak:        "inline",
	KindTable:            "table",
	KindTableRowGroup:    "table-row-group",
	KindTableRow:         "table-row",
	KindTableCell:        "table-cell",
	KindTableCaption:     "table-caption",
	KindTableColumnGroup: "table-column-group",
	KindTableColumn:      "table-column",
	KindFlex:             "flex",
}

// Invalidate implements tree.RenderHandle.
func (b *Box) Invalidate() { b.Stale = true }

// Tag returns the tag of the source element.
func (b *Box) Tag() string { return b.Element.Tag }

func (b *Box) String() string {
	if b.Kind == KindText {
		return fmt.Sprintf("<%s %s %q>", b.Kind, b.Tag(), b.Text)
	}
	return fmt.Sprintf("<%s %s>", b.Kind, b.Tag())
}

// IsInlineLevel returns true for boxes participating in an
// inline formatting context.
func (b *Box) IsInlineLevel() bool {
	switch b.Kind {
	case KindInline, KindInlineBlock, KindText, KindLineBreak:
		return true
	case KindImage, KindTable, KindFlex:
		return b.Style.Display == "inline" || b.Style.Display == "inline-block" ||
			b.Style.Display == "inline-table" || b.Style.Display == "inline-flex"
	default:
		return false
	}
}

// IsBlockLevel returns true for boxes participating in a
// block formatting context.
func (b *Box) IsBlockLevel() bool {
	switch b.Kind {
	case KindBlock:
		return true
	case KindImage, KindTable, KindFlex:
		return !b.IsInlineLevel()
	default:
		return false
	}
}

// IsAtomicInline returns true for inline-level boxes laid out as
// a single unbreakable rectangle.
func (b *Box) IsAtomicInline() bool {
	switch b.Kind {
	case KindInlineBlock:
		return true
	case KindImage, KindTable, KindFlex:
		return b.IsInlineLevel()
	default:
		return false
	}
}

// IsBlockContainer returns true for boxes whose children are laid
// out in a block or inline formatting context.
func (b *Box) IsBlockContainer() bool {
	switch b.Kind {
	case KindBlock, KindInlineBlock, KindTableCell, KindTableCaption:
		return true
	default:
		return false
	}
}

func (b *Box) IsFloated() bool { return b.Style.IsFloated() }

func (b *Box) IsAbsolutelyPositioned() bool { return b.Style.IsAbsolutelyPositioned() }

// IsInNormalFlow returns true for boxes neither floated nor
// absolutely positioned.
func (b *Box) IsInNormalFlow() bool { return b.Style.IsInNormalFlow() }

// IsTablePart returns true for the internal boxes of tables.
func (b *Box) IsTablePart() bool {
	switch b.Kind {
	case KindTableRowGroup, KindTableRow, KindTableCell, KindTableCaption,
		KindTableColumnGroup, KindTableColumn:
		return true
	default:
		return false
	}
}

// EstablishesFormattingContext returns true for floats holders:
// boxes whose content is laid out independently of the outside floats.
func (b *Box) EstablishesFormattingContext() bool {
	if b.IsFloated() || b.IsAbsolutelyPositioned() {
		return true
	}
	switch b.Kind {
	case KindInlineBlock, KindTableCell, KindTableCaption, KindFlex, KindTable, KindImage:
		return true
	case KindBlock:
		return b.Style.Overflow != "visible" || b.Style.Display == "flow-root" ||
			b.IsRoot || b.FlexItem
	default:
		return false
	}
}

// PaddingWidth is the width of the padding box.
func (b *Box) PaddingWidth() pr.Float {
	return b.Width + b.PaddingLeft + b.PaddingRight
}

// PaddingHeight is the height of the padding box.
func (b *Box) PaddingHeight() pr.Float {
	return b.Height + b.PaddingTop + b.PaddingBottom
}

// BorderWidth is the width of the border box.
func (b *Box) BorderWidth() pr.Float {
	return b.PaddingWidth() + b.BorderLeftWidth + b.BorderRightWidth
}

// BorderHeight is the height of the border box.
func (b *Box) BorderHeight() pr.Float {
	return b.PaddingHeight() + b.BorderTopWidth + b.BorderBottomWidth
}

// MarginWidth is the width of the margin box.
func (b *Box) MarginWidth() pr.Float {
	return b.BorderWidth() + b.MarginLeft + b.MarginRight
}

// MarginHeight is the height of the margin box.
func (b *Box) MarginHeight() pr.Float {
	return b.BorderHeight() + b.MarginTop + b.MarginBottom
}

// BorderBoxX is the absolute horizontal position of the border box.
func (b *Box) BorderBoxX() pr.Float { return b.PositionX + b.MarginLeft }

// BorderBoxY is the absolute vertical position of the border box.
func (b *Box) BorderBoxY() pr.Float { return b.PositionY + b.MarginTop }

// PaddingBoxX is the absolute horizontal position of the padding box.
func (b *Box) PaddingBoxX() pr.Float { return b.BorderBoxX() + b.BorderLeftWidth }

// PaddingBoxY is the absolute vertical position of the padding box.
func (b *Box) PaddingBoxY() pr.Float { return b.BorderBoxY() + b.BorderTopWidth }

// ContentBoxX is the absolute horizontal position of the content box.
func (b *Box) ContentBoxX() pr.Float { return b.PaddingBoxX() + b.PaddingLeft }

// ContentBoxY is the absolute vertical position of the content box.
func (b *Box) ContentBoxY() pr.Float { return b.PaddingBoxY() + b.PaddingTop }

// Rect is an axis aligned rectangle.
type Rect struct {
	X, Y, Width, Height pr.Float
}

// Contains returns true if (x, y) is inside the rectangle,
// the bottom and right edges being excluded.
func (r Rect) Contains(x, y pr.Float) bool {
	return r.X <= x && x < r.X+r.Width && r.Y <= y && y < r.Y+r.Height
}

// Union returns the smallest rectangle containing r and o.
// Empty rectangles are ignored.
func (r Rect) Union(o Rect) Rect {
	if o.Width <= 0 && o.Height <= 0 {
		return r
	}
	if r.Width <= 0 && r.Height <= 0 {
		return o
	}
	x0, y0 := pr.MinF(r.X, o.X), pr.MinF(r.Y, o.Y)
	x1, y1 := pr.MaxF(r.X+r.Width, o.X+o.Width), pr.MaxF(r.Y+r.Height, o.Y+o.Height)
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

// MarginBox returns the rectangle of the margin box.
func (b *Box) MarginBox() Rect {
	return Rect{b.PositionX, b.PositionY, b.MarginWidth(), b.MarginHeight()}
}

// BorderBox returns the rectangle of the border box.
func (b *Box) BorderBox() Rect {
	return Rect{b.BorderBoxX(), b.BorderBoxY(), b.BorderWidth(), b.BorderHeight()}
}

// PaddingBox returns the rectangle of the padding box.
func (b *Box) PaddingBox() Rect {
	return Rect{b.PaddingBoxX(), b.PaddingBoxY(), b.PaddingWidth(), b.PaddingHeight()}
}

// ContentBox returns the rectangle of the content box.
func (b *Box) ContentBox() Rect {
	return Rect{b.ContentBoxX(), b.ContentBoxY(), b.Width, b.Height}
}

// Translate moves the box and its descendants by (dx, dy).
func (b *Box) Translate(dx, dy pr.Float) {
	if dx == 0 && dy == 0 {
		return
	}
	b.PositionX += dx
	b.PositionY += dy
	b.StaticX += dx
	b.StaticY += dy
	for i := range b.ColumnPositions {
		b.ColumnPositions[i] += dx
	}
	for _, line := range b.Lines {
		line.PositionX += dx
		line.PositionY += dy
		line.Baseline += dy
	}
	for i := range b.Fragments {
		b.Fragments[i].X += dx
		b.Fragments[i].Y += dy
	}
	for _, child := range b.Children {
		child.Translate(dx, dy)
	}
}

// ResetSpacing sets the margin, border and padding of the given
// side ("top", "right", "bottom" or "left") to 0.
func (b *Box) ResetSpacing(side string) {
	switch side {
	case "top":
		b.MarginTop, b.PaddingTop, b.BorderTopWidth = 0, 0, 0
	case "right":
		b.MarginRight, b.PaddingRight, b.BorderRightWidth = 0, 0, 0
	case "bottom":
		b.MarginBottom, b.PaddingBottom, b.BorderBottomWidth = 0, 0, 0
	case "left":
		b.MarginLeft, b.PaddingLeft, b.BorderLeftWidth = 0, 0, 0
	}
}

// Walk calls [fn] on b and its descendants, in tree order.
// Returning false from [fn] skips the children of the box.
func (b *Box) Walk(fn func(*Box) bool) {
	if !fn(b) {
		return
	}
	for _, child := range b.Children {
		child.Walk(fn)
	}
}

// Copy returns a shallow copy of the box, with its own slice of children.
func (b *Box) Copy() *Box {
	out := *b
	out.Children = append([]*Box(nil), b.Children...)
	out.Fragments = nil
	out.Lines = nil
	return &out
}
