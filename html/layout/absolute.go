package layout

import (
	pr "github.com/benoitkugler/boxlayout/css/properties"
	bo "github.com/benoitkugler/boxlayout/html/boxes"
)

// Absolutely positioned boxes are laid out once their containing block
// is sized, from their static position.

// setStaticPosition records the position [box] would have in the
// normal flow, and registers it in its containing block.
func (ctx *layoutContext) setStaticPosition(box *bo.Box, x, y pr.Float) {
	box.StaticX, box.StaticY = x, y
	box.PositionX, box.PositionY = x, y
	ctx.registerAbsolute(box)
}

// layoutOwnAbsoluteBoxes lays out the boxes using [box] as containing
// block, if it is positioned.
func (ctx *layoutContext) layoutOwnAbsoluteBoxes(box *bo.Box) {
	if !box.Style.IsPositioned() || box.IsRoot {
		return
	}
	ctx.layoutAbsoluteBoxes(box, box.PaddingBox())
}

func (ctx *layoutContext) layoutAbsoluteBoxes(container *bo.Box, cb bo.Rect) {
	for _, box := range container.Positioned {
		ctx.absoluteLayout(box, cb)
	}
}

var fixedWidth = handleMinMaxWidth(func(box *bo.Box, used usedValues, _ pr.Float) {
	box.Width = used.width.V()
})

// absoluteLayout sizes and positions [box] in the containing block [cbRect].
// https://www.w3.org/TR/CSS2/visudet.html#abs-non-replaced-width
func (ctx *layoutContext) absoluteLayout(box *bo.Box, cbRect bo.Rect) {
	cb := containingBlock{Width: definite(cbRect.Width), Height: definite(cbRect.Height)}
	used := resolvePercentages(box, cb)
	if box.Kind == bo.KindImage {
		replacedSize(box, used)
		used.width, used.height = box.Width, box.Height
	}
	left := resolveOnePercentage(box.Style.Left, cb.Width, true)
	right := resolveOnePercentage(box.Style.Right, cb.Width, true)
	top := resolveOnePercentage(box.Style.Top, cb.Height, true)
	bottom := resolveOnePercentage(box.Style.Bottom, cb.Height, true)

	x, shrinkAvail, alignRight := absoluteWidth(box, &used, left, right, cbRect)
	y, alignBottom := absoluteHeight(box, &used, top, bottom, cbRect)

	box.PositionX, box.PositionY = x, y
	box.MarginLeft, box.MarginRight = used.marginLeft.V(), used.marginRight.V()
	box.MarginTop, box.MarginBottom = used.marginTop.V(), used.marginBottom.V()
	spacing := box.PaddingLeft + box.PaddingRight + box.BorderLeftWidth + box.BorderRightWidth + box.MarginLeft + box.MarginRight
	avail := cbRect.Width
	if shrinkAvail >= 0 {
		avail = shrinkAvail + spacing
	}

	switch box.Kind {
	case bo.KindImage:
		box.Baseline = box.MarginHeight()
	case bo.KindTable:
		ctx.tableLayout(box, cb, used, avail)
	case bo.KindFlex:
		ctx.flexLayout(box, cb, used, avail, shrinkAvail >= 0)
	default:
		if shrinkAvail >= 0 {
			ctx.shrinkToFit(box, cb, used, avail)
		} else {
			fixedWidth(box, used, avail)
			ctx.blockContainerLayout(box, used, cb, ctx.newFloatManager(), nil)
		}
	}

	var dx, dy pr.Float
	if alignRight {
		dx = cbRect.X + cbRect.Width - right.V() - box.MarginWidth() - box.PositionX
	}
	if alignBottom {
		dy = cbRect.Y + cbRect.Height - bottom.V() - box.MarginHeight() - box.PositionY
	}
	box.Translate(dx, dy)
}

// absoluteWidth solves the horizontal equation. It returns the left of
// the margin box, the width available for shrink-to-fit (or -1 for a
// known width), and true if the box must be aligned on the right once
// its width is known.
func absoluteWidth(box *bo.Box, used *usedValues, left, right pr.MaybeFloat, cb bo.Rect) (x, shrinkAvail pr.Float, alignRight bool) {
	paddingsBorders := box.PaddingLeft + box.PaddingRight + box.BorderLeftWidth + box.BorderRightWidth
	marginL, marginR, width := used.marginLeft, used.marginRight, used.width
	shrinkAvail = -1
	x = box.StaticX
	switch {
	case pr.IsAuto(left) && pr.IsAuto(right) && pr.IsAuto(width):
		marginL, marginR = zeroIfAuto(marginL), zeroIfAuto(marginR)
		shrinkAvail = pr.MaxF(0, cb.Width-(paddingsBorders+marginL.V()+marginR.V()))
	case !pr.IsAuto(left) && !pr.IsAuto(right) && !pr.IsAuto(width):
		widthForMargins := cb.Width - (right.V() + left.V() + width.V() + paddingsBorders)
		switch {
		case pr.IsAuto(marginL) && pr.IsAuto(marginR):
			if widthForMargins >= 0 {
				marginL, marginR = widthForMargins/2, widthForMargins/2
			} else {
				marginL, marginR = pr.Float(0), widthForMargins
			}
		case pr.IsAuto(marginL):
			marginL = widthForMargins - marginR.V()
		case pr.IsAuto(marginR):
			marginR = widthForMargins - marginL.V()
		default: // over-constrained: ignore right
			marginR = widthForMargins - marginL.V()
		}
		x = cb.X + left.V()
	default:
		marginL, marginR = zeroIfAuto(marginL), zeroIfAuto(marginR)
		spacing := paddingsBorders + marginL.V() + marginR.V()
		switch {
		case pr.IsAuto(left) && pr.IsAuto(width):
			shrinkAvail = pr.MaxF(0, cb.Width-spacing-right.V())
			alignRight = true
		case pr.IsAuto(left) && pr.IsAuto(right):
			// keep the static position
		case pr.IsAuto(width) && pr.IsAuto(right):
			shrinkAvail = pr.MaxF(0, cb.Width-spacing-left.V())
			x = cb.X + left.V()
		case pr.IsAuto(left):
			x = cb.X + cb.Width - right.V() - spacing - width.V()
		case pr.IsAuto(width):
			width = pr.MaxF(0, cb.Width-right.V()-left.V()-spacing)
			x = cb.X + left.V()
		default:
			x = cb.X + left.V()
		}
	}
	used.marginLeft, used.marginRight, used.width = marginL, marginR, width
	return x, shrinkAvail, alignRight
}

// absoluteHeight solves the vertical equation. It returns the top of
// the margin box, and true if the box must be aligned on the bottom
// once its height is known.
// https://www.w3.org/TR/CSS2/visudet.html#abs-non-replaced-height
func absoluteHeight(box *bo.Box, used *usedValues, top, bottom pr.MaybeFloat, cb bo.Rect) (y pr.Float, alignBottom bool) {
	paddingsBorders := box.PaddingTop + box.PaddingBottom + box.BorderTopWidth + box.BorderBottomWidth
	marginT, marginB, height := used.marginTop, used.marginBottom, used.height
	y = box.StaticY
	switch {
	case pr.IsAuto(top) && pr.IsAuto(bottom) && pr.IsAuto(height):
		// keep the static position
		marginT, marginB = zeroIfAuto(marginT), zeroIfAuto(marginB)
	case !pr.IsAuto(top) && !pr.IsAuto(bottom) && !pr.IsAuto(height):
		heightForMargins := cb.Height - (top.V() + bottom.V() + height.V() + paddingsBorders)
		switch {
		case pr.IsAuto(marginT) && pr.IsAuto(marginB):
			marginT, marginB = heightForMargins/2, heightForMargins/2
		case pr.IsAuto(marginT):
			marginT = heightForMargins - marginB.V()
		default:
			marginB = heightForMargins - marginT.V()
		}
		y = cb.Y + top.V()
	default:
		marginT, marginB = zeroIfAuto(marginT), zeroIfAuto(marginB)
		spacing := paddingsBorders + marginT.V() + marginB.V()
		switch {
		case pr.IsAuto(top) && pr.IsAuto(height):
			alignBottom = true
		case pr.IsAuto(top) && pr.IsAuto(bottom):
			// keep the static position
		case pr.IsAuto(height) && pr.IsAuto(bottom):
			y = cb.Y + top.V()
		case pr.IsAuto(top):
			y = cb.Y + cb.Height - bottom.V() - spacing - height.V()
		case pr.IsAuto(height):
			height = pr.MaxF(0, cb.Height-bottom.V()-top.V()-spacing)
			y = cb.Y + top.V()
		default:
			y = cb.Y + top.V()
		}
	}
	used.marginTop, used.marginBottom, used.height = marginT, marginB, height
	return y, alignBottom
}

func zeroIfAuto(v pr.MaybeFloat) pr.MaybeFloat {
	if pr.IsAuto(v) {
		return pr.Float(0)
	}
	return v
}
