package layout

import (
	pr "github.com/benoitkugler/boxlayout/css/properties"
	bo "github.com/benoitkugler/boxlayout/html/boxes"
)

// Layout for block-level and block-container boxes.

type blockResult struct {
	// margins adjoining the bottom edge of the box, including its own
	// bottom margin, to collapse with the next in-flow box
	adjoining []pr.Float
	// the box has no height and its margins collapse through it
	collapsingThrough bool
	// floats and absolute boxes placed before the top of the box was
	// known, to be moved with the first content of an ancestor
	pending []pendingBox

	// intrinsic widths of the margin box
	minContent, maxContent pr.Float
	// natural width of the content box, used for shrink-to-fit
	natural pr.Float
}

// pendingBox is an out-of-flow box placed assuming the content of its
// container started at [top].
type pendingBox struct {
	box *bo.Box
	top pr.Float
}

// Return the amount of collapsed margin for a list of adjoining margins.
func collapseMargin(adjoiningMargins []pr.Float) pr.Float {
	var maxPos, minNeg pr.Float
	for _, m := range adjoiningMargins {
		if m > maxPos {
			maxPos = m
		} else if m < minNeg {
			minNeg = m
		}
	}
	return maxPos + minNeg
}

// with returns a copy of [margins] with [m] appended.
func with(margins []pr.Float, m pr.Float) []pr.Float {
	out := make([]pr.Float, len(margins), len(margins)+1)
	copy(out, margins)
	return append(out, m)
}

type widthFunc func(box *bo.Box, used usedValues, avail pr.Float)

// handleMinMaxWidth decorates a function setting the used width of a box
// to apply "min-width" and "max-width".
func handleMinMaxWidth(fn widthFunc) widthFunc {
	return func(box *bo.Box, used usedValues, avail pr.Float) {
		fn(box, used, avail)
		if box.Width > box.MaxWidth {
			used.width = box.MaxWidth
			fn(box, used, avail)
		}
		if box.Width < box.MinWidth {
			used.width = box.MinWidth
			fn(box, used, avail)
		}
	}
}

var blockLevelWidth = handleMinMaxWidth(blockLevelWidth_)

// @handleMinMaxWidth
// Set the box width and horizontal margins, in an available width [avail].
func blockLevelWidth_(box *bo.Box, used usedValues, avail pr.Float) {
	// https://www.w3.org/TR/CSS21/visudet.html#blockwidth

	marginL, marginR, width := used.marginLeft, used.marginRight, used.width
	paddingsPlusBorders := box.PaddingLeft + box.PaddingRight + box.BorderLeftWidth + box.BorderRightWidth

	// Only margin-left, margin-right and width can be "auto".
	// We want:  width of containing block ==
	//               margin-left + border-left-width + padding-left + width
	//               + padding-right + border-right-width + margin-right
	if !pr.IsAuto(width) {
		total := paddingsPlusBorders + width.V() + marginL.V() + marginR.V()
		if total > avail {
			if pr.IsAuto(marginL) {
				marginL = pr.Float(0)
			}
			if pr.IsAuto(marginR) {
				marginR = pr.Float(0)
			}
		}
	}
	// if the equation is over-constrained, do nothing in ltr
	if pr.IsAuto(width) {
		if pr.IsAuto(marginL) {
			marginL = pr.Float(0)
		}
		if pr.IsAuto(marginR) {
			marginR = pr.Float(0)
		}
		width = pr.MaxF(0, avail-(paddingsPlusBorders+marginL.V()+marginR.V()))
	}
	box.Width = width.V()
	box.MarginLeft, box.MarginRight = marginL.V(), marginR.V()
	marginSum := avail - paddingsPlusBorders - box.Width
	switch {
	case pr.IsAuto(marginL) && pr.IsAuto(marginR):
		box.MarginLeft = marginSum / 2
		box.MarginRight = marginSum / 2
	case pr.IsAuto(marginL):
		box.MarginLeft = marginSum - marginR.V()
	case pr.IsAuto(marginR):
		box.MarginRight = marginSum - marginL.V()
	}
}

// autoMarginsToZero is used for floats and inline-level boxes.
func autoMarginsToZero(used usedValues) usedValues {
	if pr.IsAuto(used.marginLeft) {
		used.marginLeft = pr.Float(0)
	}
	if pr.IsAuto(used.marginRight) {
		used.marginRight = pr.Float(0)
	}
	return used
}

// blockLevelLayout lays out a block-level box. The box PositionX is the
// left of the containing block, and its PositionY the current cursor,
// before the margins in [adjoining] are collapsed.
func (ctx *layoutContext) blockLevelLayout(box *bo.Box, cb containingBlock, fm *floatManager, adjoining []pr.Float) blockResult {
	switch box.Kind {
	case bo.KindBlock, bo.KindImage, bo.KindTable, bo.KindFlex:
	default:
		panic("unexpected block-level box " + box.String())
	}
	used := resolvePercentages(box, cb)
	setVerticalMargins(box, used)
	if box.Kind == bo.KindBlock && !box.EstablishesFormattingContext() {
		blockLevelWidth(box, used, cb.Width.Value)
		return ctx.blockContainerLayout(box, used, cb, fm, adjoining)
	}
	return ctx.formattingRootLayout(box, fm, adjoining, cb.Width.Value, func(avail pr.Float) blockResult {
		return ctx.layoutRootUsed(box, cb, used, avail, false)
	})
}

// formattingRootLayout places an in-flow block-level box establishing
// a new formatting context. Its border box must not overlap the floats of
// [fm], so that it is narrowed to the free band, or moved down when the
// band is too narrow. [layout] lays out the box at its current position.
func (ctx *layoutContext) formattingRootLayout(box *bo.Box, fm *floatManager, adjoining []pr.Float, avail pr.Float,
	layout func(avail pr.Float) blockResult,
) blockResult {
	left, right := box.PositionX, box.PositionX+avail
	y := box.PositionY + collapseMargin(with(adjoining, box.MarginTop))
	var res blockResult
	for try := 0; try <= len(fm.floats); try++ {
		l, r := fm.bandAt(y, left, right)
		box.PositionX, box.PositionY = l, y-box.MarginTop
		res = layout(r - l)
		if !fm.intrudes(y, box.BorderHeight(), left, right) {
			break
		}
		l, r = fm.bandOver(y, box.BorderHeight(), left, right)
		if box.MarginWidth() <= r-l {
			break
		}
		next := fm.nextTopWithRoom(y, box.MarginWidth(), box.BorderHeight(), left, right)
		if next <= y {
			break
		}
		y = next
	}
	res.adjoining = []pr.Float{box.MarginBottom}
	res.collapsingThrough = false
	return res
}

// layoutRoot lays out [box], which establishes a new formatting context,
// at its current position, in the available width [avail].
// Auto widths fill [avail] unless [shrink] is set, in which case the
// box is shrunk to fit its content.
func (ctx *layoutContext) layoutRoot(box *bo.Box, cb containingBlock, avail pr.Float, shrink bool) blockResult {
	used := resolvePercentages(box, cb)
	setVerticalMargins(box, used)
	return ctx.layoutRootUsed(box, cb, used, avail, shrink)
}

func (ctx *layoutContext) layoutRootUsed(box *bo.Box, cb containingBlock, used usedValues, avail pr.Float, shrink bool) blockResult {
	if shrink {
		used = autoMarginsToZero(used)
	}
	switch box.Kind {
	case bo.KindImage:
		return replacedLayout(box, used, avail)
	case bo.KindTable:
		return ctx.tableLayout(box, cb, used, avail)
	case bo.KindFlex:
		return ctx.flexLayout(box, cb, used, avail, shrink)
	default:
		if shrink && pr.IsAuto(used.width) {
			return ctx.shrinkToFit(box, cb, used, avail)
		}
		blockLevelWidth(box, used, avail)
		return ctx.blockContainerLayout(box, used, cb, ctx.newFloatManager(), nil)
	}
}

// shrinkToFit lays out [box] a first time at the available width to
// discover its natural width, then a second time at the smaller of the
// natural and the available width.
// Both calls only depend on their arguments.
func (ctx *layoutContext) shrinkToFit(box *bo.Box, cb containingBlock, used usedValues, avail pr.Float) blockResult {
	blockLevelWidth(box, used, avail)
	res := ctx.blockContainerLayout(box, used, cb, ctx.newFloatManager(), nil)
	spacing := box.MarginWidth() - box.Width
	width := pr.MaxF(0, pr.MinF(res.natural, avail-spacing))
	if width == box.Width {
		return res
	}
	used.width = width
	blockLevelWidth(box, used, avail)
	return ctx.blockContainerLayout(box, used, cb, ctx.newFloatManager(), nil)
}

// minContentWidth returns the minimum content width of the margin box
// of [box], obtained with a layout at width 1.
func (ctx *layoutContext) minContentWidth(box *bo.Box, cb containingBlock) pr.Float {
	return ctx.layoutRoot(box, cb, 1, false).minContent
}

// maxContentWidth returns the width of the margin box of [box] when
// laid out without constraint.
func (ctx *layoutContext) maxContentWidth(box *bo.Box, cb containingBlock) pr.Float {
	return ctx.layoutRoot(box, cb, unbounded, false).maxContent
}

// outerIntrinsic returns the intrinsic widths of the margin box of [box],
// given the ones of its content.
func outerIntrinsic(box *bo.Box, used usedValues, minContent, maxContent pr.Float) (pr.Float, pr.Float) {
	if isPx(box.Style.Width) && !pr.IsAuto(used.width) {
		minContent, maxContent = used.width.V(), used.width.V()
	}
	if isPx(box.Style.MaxWidth) {
		minContent, maxContent = pr.MinF(minContent, box.MaxWidth), pr.MinF(maxContent, box.MaxWidth)
	}
	if isPx(box.Style.MinWidth) {
		minContent, maxContent = pr.MaxF(minContent, box.MinWidth), pr.MaxF(maxContent, box.MinWidth)
	}
	spacing := fixedSpacing(box)
	return minContent + spacing, maxContent + spacing
}

// blockContainerLayout lays out the content of [box], whose width and
// horizontal margins are resolved. [fm] is the float manager of the
// formatting context the content belongs to.
func (ctx *layoutContext) blockContainerLayout(box *bo.Box, used usedValues, cb containingBlock, fm *floatManager, adjoining []pr.Float) blockResult {
	if box.Style.IsPositioned() && !box.IsRoot {
		ctx.pushAbsoluteContainer(box)
		defer ctx.popAbsoluteContainer()
	}
	box.Lines = box.Lines[:0]
	box.Baseline = pr.AutoF

	collapsingWithChildren := box.BorderTopWidth == 0 && box.PaddingTop == 0 && !box.EstablishesFormattingContext()
	cursor := box.PositionY
	topFixed := !collapsingWithChildren
	var pending []pendingBox
	if collapsingWithChildren {
		adjoining = with(adjoining, box.MarginTop)
	} else {
		box.PositionY += collapseMargin(with(adjoining, box.MarginTop)) - box.MarginTop
		adjoining = nil
		cursor = box.ContentBoxY()
	}
	// fixTop is called once the position of the content is known
	fixTop := func(contentTop pr.Float) {
		box.PositionY = contentTop - box.MarginTop
		for _, p := range pending {
			if d := contentTop - p.top; d != 0 {
				p.box.Translate(0, d)
			}
		}
		fm.invalidate()
		pending, adjoining, topFixed, cursor = nil, nil, true, contentTop
	}

	contentX := box.ContentBoxX()
	childCb := cb.forChildren(box, used.height)
	var minContent, maxContent pr.Float

	if hasInlineContent(box) {
		top := cursor + collapseMargin(adjoining)
		ifc := ctx.inlineLayout(box, childCb, fm, contentX, top)
		minContent, maxContent = ifc.minContent, ifc.maxContent
		if len(box.Lines) != 0 {
			if !topFixed {
				fixTop(top)
			}
			cursor = top + ifc.height
			adjoining = nil
			box.Baseline = box.Lines[0].Baseline - box.PositionY
		} else if !topFixed {
			for _, b := range ifc.outOfFlow {
				pending = append(pending, pendingBox{b, top})
			}
		}
	} else {
		for _, child := range box.Children {
			switch {
			case child.IsAbsolutelyPositioned():
				y := cursor + collapseMargin(adjoining)
				ctx.setStaticPosition(child, contentX, y)
				if !topFixed {
					pending = append(pending, pendingBox{child, y})
				}
			case child.IsFloated():
				y := cursor + collapseMargin(adjoining)
				res := ctx.floatLayout(child, childCb, fm, y, contentX, contentX+box.Width)
				minContent, maxContent = pr.MaxF(minContent, res.minContent), pr.MaxF(maxContent, res.maxContent)
				if !topFixed {
					pending = append(pending, pendingBox{child, y})
				}
			default:
				if cl, ok := fm.clearance(child.Style.Clear); ok {
					mt := resolveOnePercentage(child.Style.MarginTop, childCb.Width, false).V()
					if cursor+collapseMargin(with(adjoining, mt)) < cl {
						// the child has clearance: its margins do not
						// collapse with the previous ones
						y := cursor + collapseMargin(adjoining)
						if topFixed {
							cursor, adjoining = y, nil
						} else {
							fixTop(y)
						}
						cursor = pr.MaxF(cursor, cl-mt)
					}
				}
				child.PositionX, child.PositionY = contentX, cursor
				res := ctx.blockLevelLayout(child, childCb, fm, adjoining)
				minContent, maxContent = pr.MaxF(minContent, res.minContent), pr.MaxF(maxContent, res.maxContent)
				if res.collapsingThrough {
					adjoining = res.adjoining
					pending = append(pending, res.pending...)
					continue
				}
				if !topFixed {
					fixTop(child.BorderBoxY())
				}
				if pr.IsAuto(box.Baseline) && !pr.IsAuto(child.Baseline) {
					box.Baseline = child.PositionY + child.Baseline.V() - box.PositionY
				}
				cursor = child.BorderBoxY() + child.BorderHeight()
				adjoining = res.adjoining
			}
		}
	}

	var res blockResult
	res.natural = maxContent
	if isPx(box.Style.Width) {
		// the natural width of a sized box does not depend on its content
		res.natural = box.Width
	}
	res.minContent, res.maxContent = outerIntrinsic(box, used, minContent, maxContent)

	collapsingBottom := box.BorderBottomWidth == 0 && box.PaddingBottom == 0 &&
		!box.EstablishesFormattingContext() && pr.IsAuto(used.height)
	if !topFixed {
		emptyHeight := pr.IsAuto(used.height) || used.height.V() == 0
		if emptyHeight && box.BorderBottomWidth == 0 && box.PaddingBottom == 0 && box.MinHeight == 0 {
			// no content: the margins collapse through the box
			box.Height = 0
			box.PositionY = cursor + collapseMargin(adjoining) - box.MarginTop
			res.adjoining = with(adjoining, box.MarginBottom)
			res.collapsingThrough = true
			res.pending = pending
			ctx.layoutOwnAbsoluteBoxes(box)
			return res
		}
		fixTop(cursor + collapseMargin(adjoining))
	}

	contentBottom := cursor
	if !collapsingBottom {
		contentBottom += collapseMargin(adjoining)
		adjoining = nil
	}
	if pr.IsAuto(used.height) {
		height := contentBottom - box.ContentBoxY()
		if box.EstablishesFormattingContext() {
			if bottom, ok := fm.height("both"); ok {
				height = pr.MaxF(height, bottom-box.ContentBoxY())
			}
		}
		box.Height = pr.MaxF(0, height)
	} else {
		box.Height = used.height.V()
	}
	if clamped := pr.MaxF(box.MinHeight, pr.MinF(box.Height, box.MaxHeight)); clamped != box.Height {
		box.Height = clamped
		adjoining = nil
	}
	res.adjoining = with(adjoining, box.MarginBottom)
	ctx.layoutOwnAbsoluteBoxes(box)
	return res
}

// hasInlineContent returns true if the children of [box] are laid out
// in an inline formatting context.
func hasInlineContent(box *bo.Box) bool {
	for _, child := range box.Children {
		if child.IsInlineLevel() {
			return true
		}
	}
	return false
}

// floatLayout lays out the floated [box], shrunk to fit, and places
// it in [fm] at [y] or below, inside [left, right].
func (ctx *layoutContext) floatLayout(box *bo.Box, cb containingBlock, fm *floatManager, y, left, right pr.Float) blockResult {
	box.PositionX, box.PositionY = left, y
	res := ctx.layoutRoot(box, cb, right-left, true)
	fm.place(box, box.Style.Float, box.Style.Clear, y, left, right)
	return res
}

var replacedWidth = handleMinMaxWidth(func(box *bo.Box, used usedValues, _ pr.Float) {
	box.Width = used.width.V()
})

// replacedSize sets the used width and height of an image,
// keeping its intrinsic ratio when only one of them is given.
// https://www.w3.org/TR/CSS21/visudet.html#inline-replaced-width
func replacedSize(box *bo.Box, used usedValues) {
	iw, ih := box.IntrinsicWidth, box.IntrinsicHeight
	w, h := used.width, used.height
	switch {
	case !pr.IsAuto(w) && !pr.IsAuto(h):
	case !pr.IsAuto(w):
		h = ih
		if iw > 0 {
			h = w.V() * ih / iw
		}
	case !pr.IsAuto(h):
		w = iw
		if ih > 0 {
			w = h.V() * iw / ih
		}
	default:
		w, h = iw, ih
	}
	used.width = w
	replacedWidth(box, used, 0)
	box.Height = pr.MaxF(box.MinHeight, pr.MinF(h.V(), box.MaxHeight))
}

// replacedLayout sizes an image at its current position.
func replacedLayout(box *bo.Box, used usedValues, avail pr.Float) blockResult {
	replacedSize(box, used)
	used.width = box.Width
	blockLevelWidth_(box, used, avail)
	// the baseline is the bottom margin edge
	box.Baseline = box.MarginHeight()
	var res blockResult
	res.natural = box.Width
	res.minContent, res.maxContent = outerIntrinsic(box, used, box.Width, box.Width)
	res.adjoining = []pr.Float{box.MarginBottom}
	return res
}
