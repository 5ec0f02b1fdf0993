package boxes

import (
	"strings"

	pr "github.com/benoitkugler/boxlayout/css/properties"
	"github.com/benoitkugler/boxlayout/backend"
	"github.com/benoitkugler/boxlayout/html/tree"
	"github.com/benoitkugler/boxlayout/logger"
	"github.com/benoitkugler/boxlayout/text"
	"github.com/benoitkugler/boxlayout/utils"
)

const (
	maxColspan = 1000
	maxRowspan = 65534
)

// Build creates the render tree of [root], which always generates a
// block box. Image sizes are queried from [images], with [baseURL]
// resolving relative sources.
func Build(root *tree.Element, images backend.ImageSizer, baseURL string) *Box {
	logger.ProgressLogger.Info("Step 2 - Creating render tree")
	b := builder{images: images, baseURL: baseURL}

	var box *Box
	if root.Style.Display == "none" {
		box = New(KindBlock, root, blockify(root.Style))
	} else {
		box = b.elementToBox(root)[0]
		if !box.IsBlockContainer() && box.Kind != KindTable && box.Kind != KindFlex {
			style := *root.Style
			style.Display = "block"
			block := New(KindBlock, root, &style)
			block.Children = box.Children
			box = block
		}
	}
	box.IsRoot = true

	reset := true
	box.Children = collapseSpaces(box.Children, &reset)
	normalizeTables(box)
	flexItems(box)
	InlineInBlock(box)

	box.Walk(func(b *Box) bool {
		if !b.Anonymous && b.Kind != KindText {
			b.Element.Attach(b)
		}
		return true
	})
	return box
}

type builder struct {
	images  backend.ImageSizer
	baseURL string
}

var displayKinds = map[string]Kind{
	"block":              KindBlock,
	"list-item":          KindBlock,
	"flow-root":          KindBlock,
	"inline":             KindInline,
	"inline-block":       KindInlineBlock,
	"table":              KindTable,
	"inline-table":       KindTable,
	"table-row-group":    KindTableRowGroup,
	"table-header-group": KindTableRowGroup,
	"table-footer-group": KindTableRowGroup,
	"table-row":          KindTableRow,
	"table-cell":         KindTableCell,
	"table-caption":      KindTableCaption,
	"table-column-group": KindTableColumnGroup,
	"table-column":       KindTableColumn,
	"flex":               KindFlex,
	"inline-flex":        KindFlex,
}

// blockify returns a copy of [style] with a block-level display,
// as required for floats, positioned boxes and flex items.
func blockify(style *pr.Style) *pr.Style {
	out := *style
	switch style.Display {
	case "inline-table":
		out.Display = "table"
	case "inline-flex":
		out.Display = "flex"
	case "table", "flex", "block", "list-item", "flow-root":
	default:
		out.Display = "block"
	}
	return &out
}

func isFlexContainer(el *tree.Element) bool {
	return el != nil && (el.Style.Display == "flex" || el.Style.Display == "inline-flex")
}

// elementToBox returns the boxes generated by [el]: none for
// "display: none", one otherwise.
func (b builder) elementToBox(el *tree.Element) []*Box {
	if el.IsText() {
		if el.Parent == nil {
			panic("text without parent element")
		}
		box := New(KindText, el.Parent, el.Style)
		box.Text = el.Text
		return []*Box{box}
	}

	style := el.Style
	if style.Display == "none" {
		return nil
	}
	flexItem := isFlexContainer(el.Parent) && !style.IsAbsolutelyPositioned()
	if style.IsFloated() || style.IsAbsolutelyPositioned() || flexItem {
		style = blockify(style)
	}

	kind, ok := displayKinds[style.Display]
	if !ok {
		logger.WarningLogger.Warnf("Unsupported display %q on %s, using inline", style.Display, el)
		kind = KindInline
	}
	switch el.Tag {
	case "br":
		kind = KindLineBreak
	case "img":
		return b.handleImg(el, style)
	}

	box := New(kind, el, style)
	box.FlexItem = flexItem
	switch kind {
	case KindTableCell:
		box.Colspan = utils.MinInt(utils.MaxInt(el.IntAttr("colspan", 1), 1), maxColspan)
		box.Rowspan = utils.MinInt(el.IntAttr("rowspan", 1), maxRowspan) // 0 spans to the end of the group
	case KindTableColumn, KindTableColumnGroup:
		box.Colspan = utils.MinInt(utils.MaxInt(el.IntAttr("span", 1), 1), maxColspan)
	case KindLineBreak:
		return []*Box{box}
	}

	for _, child := range el.Children {
		box.Children = append(box.Children, b.elementToBox(child)...)
	}
	return []*Box{box}
}

// handleImg returns either an image box or the alternative text.
func (b builder) handleImg(el *tree.Element, style *pr.Style) []*Box {
	src, alt := el.Get("src"), el.Get("alt")
	if src != "" {
		if w, h, ok := b.images.ImageSize(src, b.baseURL); ok {
			box := New(KindImage, el, style)
			box.IntrinsicWidth, box.IntrinsicHeight = w, h
			return []*Box{box}
		}
	}
	if alt == "" {
		// the element represents nothing
		return nil
	}
	kind := KindInline
	if style.Display != "inline" {
		kind = KindBlock
	}
	box := New(kind, el, style)
	textBox := New(KindText, el, pr.AnonymousStyle(style))
	textBox.Text = alt
	box.Children = []*Box{textBox}
	return []*Box{box}
}

// collapseSpaces applies white-space processing and text-transform to
// the text boxes of [children], removing the empty ones. [trailing]
// is true when the previous text of the inline formatting context
// ended with a collapsible space.
func collapseSpaces(children []*Box, trailing *bool) []*Box {
	out := children[:0]
	for _, child := range children {
		switch child.Kind {
		case KindText:
			s, tr := text.ProcessWhitespace(child.Text, child.Style.WhiteSpace, *trailing)
			*trailing = tr
			if s == "" {
				continue
			}
			child.Text = text.Transform(s, child.Style.TextTransform)
		case KindLineBreak:
			*trailing = true
		case KindInline:
			child.Children = collapseSpaces(child.Children, trailing)
		default:
			reset := true
			child.Children = collapseSpaces(child.Children, &reset)
			if child.IsInNormalFlow() {
				// atomic inlines end with a non space content
				*trailing = !child.IsAtomicInline()
			}
		}
		out = append(out, child)
	}
	return out
}

// isCollapsibleSpace returns true for text boxes made of
// collapsible white space only.
func isCollapsibleSpace(box *Box) bool {
	return box.Kind == KindText && !text.PreservesSpaces(box.Style.WhiteSpace) &&
		strings.Trim(box.Text, " \n") == ""
}

func isProperTableChild(box *Box) bool {
	switch box.Kind {
	case KindTableRowGroup, KindTableRow, KindTableCaption, KindTableColumnGroup, KindTableColumn:
		return true
	default:
		return false
	}
}

func withoutSpaces(children []*Box) []*Box {
	out := children[:0]
	for _, child := range children {
		if !isCollapsibleSpace(child) {
			out = append(out, child)
		}
	}
	return out
}

// wrapRuns replaces each run of consecutive children matching [match]
// by an anonymous box of [kind], generated inside [parent].
func wrapRuns(parent *Box, children []*Box, match func(*Box) bool, kind Kind) []*Box {
	var (
		out []*Box
		run []*Box
	)
	flush := func() {
		if len(run) != 0 {
			out = append(out, AnonymousFrom(parent, kind, run))
			run = nil
		}
	}
	for _, child := range children {
		if match(child) {
			run = append(run, child)
		} else {
			flush()
			out = append(out, child)
		}
	}
	flush()
	return out
}

func isKind(kinds ...Kind) func(*Box) bool {
	return func(b *Box) bool {
		for _, k := range kinds {
			if b.Kind == k {
				return true
			}
		}
		return false
	}
}

// normalizeTables generates the missing anonymous table boxes, as
// described in CSS 2.1 §17.2.1.
func normalizeTables(box *Box) {
	switch box.Kind {
	case KindTable:
		children := withoutSpaces(box.Children)
		children = wrapRuns(box, children, func(b *Box) bool { return !isProperTableChild(b) }, KindTableRow)
		children = wrapRuns(box, children, isKind(KindTableRow), KindTableRowGroup)
		box.Children = wrapRuns(box, children, isKind(KindTableColumn), KindTableColumnGroup)
	case KindTableRowGroup:
		box.Children = wrapRuns(box, withoutSpaces(box.Children), func(b *Box) bool { return b.Kind != KindTableRow }, KindTableRow)
	case KindTableRow:
		box.Children = wrapRuns(box, withoutSpaces(box.Children), func(b *Box) bool { return b.Kind != KindTableCell }, KindTableCell)
	case KindTableColumnGroup:
		var columns []*Box
		for _, child := range box.Children {
			if child.Kind == KindTableColumn {
				columns = append(columns, child)
			}
		}
		if len(columns) == 0 {
			for i := 0; i < box.Colspan; i++ {
				columns = append(columns, AnonymousFrom(box, KindTableColumn, nil))
			}
		}
		box.Children = columns
	case KindTableColumn:
		box.Children = nil
	default:
		if hasTablePart(box.Children) {
			children := withoutSpacesAroundTableParts(box.Children)
			children = wrapRuns(box, children, isKind(KindTableCell), KindTableRow)
			children = wrapRuns(box, children, (*Box).IsTablePart, KindTable)
			if box.Kind == KindInline {
				for _, child := range children {
					if child.Anonymous && child.Kind == KindTable {
						child.Style.Display = "inline-table"
					}
				}
			}
			box.Children = children
		}
	}
	for _, child := range box.Children {
		normalizeTables(child)
	}
}

func hasTablePart(children []*Box) bool {
	for _, child := range children {
		if child.IsTablePart() {
			return true
		}
	}
	return false
}

func withoutSpacesAroundTableParts(children []*Box) []*Box {
	var out []*Box
	for i, child := range children {
		if isCollapsibleSpace(child) {
			prev := i > 0 && children[i-1].IsTablePart()
			next := i+1 < len(children) && children[i+1].IsTablePart()
			if prev || next {
				continue
			}
		}
		out = append(out, child)
	}
	return out
}

// flexItems wraps the runs of text children of flex containers
// in anonymous block boxes.
func flexItems(box *Box) {
	if box.Kind == KindFlex {
		children := withoutSpaces(box.Children)
		children = wrapRuns(box, children, isKind(KindText, KindLineBreak), KindBlock)
		for _, child := range children {
			if child.Anonymous {
				child.FlexItem = true
			}
		}
		box.Children = children
	}
	for _, child := range box.Children {
		flexItems(child)
	}
}

func isInFlowBlock(b *Box) bool { return b.IsBlockLevel() && b.IsInNormalFlow() }

func containsBlock(box *Box) bool {
	for _, child := range box.Children {
		if isInFlowBlock(child) || (child.Kind == KindInline && containsBlock(child)) {
			return true
		}
	}
	return false
}

// splitInline returns the boxes replacing the inline box [box]
// containing block-level boxes: copies of [box] holding the inline
// content, separated by the blocks.
func splitInline(box *Box) []*Box {
	var out []*Box
	current := box.Copy()
	current.Children = nil
	flush := func(block *Box) {
		if len(current.Children) != 0 {
			out = append(out, current)
		}
		out = append(out, block)
		current = box.Copy()
		current.Children = nil
	}
	for _, child := range box.Children {
		switch {
		case isInFlowBlock(child):
			flush(child)
		case child.Kind == KindInline && containsBlock(child):
			for _, part := range splitInline(child) {
				if isInFlowBlock(part) {
					flush(part)
				} else {
					current.Children = append(current.Children, part)
				}
			}
		default:
			current.Children = append(current.Children, child)
		}
	}
	if len(current.Children) != 0 {
		out = append(out, current)
	}
	return out
}

// InlineInBlock makes sure the children of every block container are
// either all block-level or all inline-level, splitting inline boxes
// around blocks and wrapping runs of inline content in anonymous
// block boxes. Runs made of out-of-flow boxes and collapsible spaces
// only are not wrapped, and their spaces are dropped.
func InlineInBlock(box *Box) {
	for _, child := range box.Children {
		InlineInBlock(child)
	}
	if !box.IsBlockContainer() {
		return
	}

	var children []*Box
	hasBlock := false
	for _, child := range box.Children {
		if child.Kind == KindInline && containsBlock(child) {
			children = append(children, splitInline(child)...)
			hasBlock = true
		} else {
			children = append(children, child)
			hasBlock = hasBlock || isInFlowBlock(child)
		}
	}
	if !hasBlock {
		box.Children = children
		return
	}

	var (
		out []*Box
		run []*Box
	)
	flush := func() {
		significant := false
		for _, b := range run {
			if b.IsInNormalFlow() && !isCollapsibleSpace(b) {
				significant = true
			}
		}
		if significant {
			out = append(out, AnonymousFrom(box, KindBlock, run))
		} else {
			for _, b := range run {
				if !b.IsInNormalFlow() {
					out = append(out, b)
				}
			}
		}
		run = nil
	}
	for _, child := range children {
		if isInFlowBlock(child) {
			flush()
			out = append(out, child)
		} else {
			run = append(run, child)
		}
	}
	flush()
	box.Children = out
}
