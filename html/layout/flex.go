package layout

import (
	"sort"
	"strings"

	pr "github.com/benoitkugler/boxlayout/css/properties"
	bo "github.com/benoitkugler/boxlayout/html/boxes"
)

// Layout for flex containers and flex items.
// See https://www.w3.org/TR/css-flexbox-1/#layout-algorithm

type flexItem struct {
	box  *bo.Box
	used usedValues

	// main axis
	baseSize, hypotheticalMainSize, targetMainSize pr.Float
	// margins, paddings and borders on the main axis
	mainSpacing                     pr.Float
	factor, scaledShrink, adjustment pr.Float
	frozen                           bool

	// max-content width of the margin box
	maxContent pr.Float
	// outer cross size and baseline offset from the margin top
	crossSize, baseline pr.Float
	hasBaseline         bool
}

func (it *flexItem) outerTarget() pr.Float { return it.targetMainSize + it.mainSpacing }

func (it *flexItem) outerHypothetical() pr.Float { return it.hypotheticalMainSize + it.mainSpacing }

// horizontalSpacing returns the used horizontal margins, paddings and
// borders of the item.
func (it *flexItem) horizontalSpacing() pr.Float {
	b := it.box
	return it.used.marginLeft.V() + it.used.marginRight.V() + b.PaddingLeft + b.PaddingRight + b.BorderLeftWidth + b.BorderRightWidth
}

type flexLine struct {
	items                    []*flexItem
	crossSize, lowerBaseline pr.Float
	maxBaseline              pr.Float
}

func (f flexLine) reverse() {
	for left, right := 0, len(f.items)-1; left < right; left, right = left+1, right-1 {
		f.items[left], f.items[right] = f.items[right], f.items[left]
	}
}

func (f flexLine) sum() pr.Float {
	var sum pr.Float
	for _, child := range f.items {
		sum += child.outerHypothetical()
	}
	return sum
}

func (f flexLine) allFrozen() bool {
	for _, child := range f.items {
		if !child.frozen {
			return false
		}
	}
	return true
}

func (f flexLine) adjustments() pr.Float {
	var sum pr.Float
	for _, child := range f.items {
		sum += child.adjustment
	}
	return sum
}

func sumCross(f []flexLine) pr.Float {
	var sumCross pr.Float
	for _, line := range f {
		sumCross += line.crossSize
	}
	return sumCross
}

// alignSelf returns the cross alignment of [item] in [container].
func alignSelf(item, container *bo.Box) string {
	if a := item.Style.AlignSelf; a != "auto" {
		return a
	}
	return container.Style.AlignItems
}

// distributeFree returns the offset of the first element and the space
// between elements, for a free space of [free] shared between [n]
// elements, according to [mode] (a justify-content or align-content value).
func distributeFree(mode string, free pr.Float, n int) (offset, between pr.Float) {
	if n == 0 {
		return 0, 0
	}
	switch mode {
	case "flex-end", "end", "right":
		return free, 0
	case "center":
		return free / 2, 0
	case "space-between":
		if n > 1 && free > 0 {
			return 0, free / pr.Float(n-1)
		}
		return 0, 0
	case "space-around":
		if free > 0 {
			return free / pr.Float(2*n), free / pr.Float(n)
		}
		return free / 2, 0
	case "space-evenly":
		if free > 0 {
			return free / pr.Float(n+1), free / pr.Float(n+1)
		}
		return free / 2, 0
	default: // flex-start, start, left, stretch
		return 0, 0
	}
}

// layoutFlexItem lays out [item] at its current position with the given
// content [width], and [height]. An AutoF height keeps the used
// height of the item.
func (ctx *layoutContext) layoutFlexItem(it *flexItem, cb containingBlock, width pr.Float, height pr.MaybeFloat) blockResult {
	used := it.used
	used.width = width
	if !pr.IsAuto(height) {
		used.height = height
	}
	return ctx.layoutRootUsed(it.box, cb, used, width+it.horizontalSpacing(), false)
}

// flexLayout lays out the flex container [box] at its current position,
// in the available width [avail].
func (ctx *layoutContext) flexLayout(box *bo.Box, cb containingBlock, used usedValues, avail pr.Float, shrink bool) blockResult {
	if box.Style.IsPositioned() && !box.IsRoot {
		ctx.pushAbsoluteContainer(box)
		defer ctx.popAbsoluteContainer()
	}
	box.Baseline = pr.AutoF
	st := box.Style
	isRow := !strings.HasPrefix(st.FlexDirection, "column")
	wrap := st.FlexWrap != "nowrap"

	// Step 1: items, sorted by "order"
	var items []*flexItem
	var absolutes []*bo.Box
	for _, child := range box.Children {
		if child.IsAbsolutelyPositioned() {
			absolutes = append(absolutes, child)
			continue
		}
		items = append(items, &flexItem{box: child})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].box.Style.Order < items[j].box.Style.Order })

	// Step 2: available main and cross space
	if shrink && pr.IsAuto(used.width) {
		used = autoMarginsToZero(used)
		sizingCb := containingBlock{Width: cbSize{Value: avail, Mode: sizeNone}, Height: cbSize{Mode: sizeAuto}}
		var content pr.Float
		for _, it := range items {
			w := ctx.maxContentWidth(it.box, sizingCb)
			if isRow {
				content += w
			} else {
				content = pr.MaxF(content, w)
			}
		}
		spacing := box.PaddingLeft + box.PaddingRight + box.BorderLeftWidth + box.BorderRightWidth +
			used.marginLeft.V() + used.marginRight.V()
		used.width = pr.MaxF(0, pr.MinF(content, avail-spacing))
	}
	blockLevelWidth(box, used, avail)
	childCb := cb.forChildren(box, used.height)
	availableMain := box.Width
	if !isRow {
		availableMain = pr.Inf
		if !pr.IsAuto(used.height) {
			availableMain = used.height.V()
		}
	}
	contentX, contentY := box.ContentBoxX(), box.ContentBoxY()

	// Step 3: flex base size and hypothetical main size
	var minContent, maxContent pr.Float
	for _, it := range items {
		child := it.box
		child.PositionX, child.PositionY = contentX, contentY
		it.used = autoMarginsToZero(resolvePercentages(child, childCb))
		it.used.marginTop, it.used.marginBottom = zeroIfAuto(it.used.marginTop), zeroIfAuto(it.used.marginBottom)
		setVerticalMargins(child, it.used)
		child.MarginLeft, child.MarginRight = it.used.marginLeft.V(), it.used.marginRight.V()
		hSpacing := child.MarginLeft + child.MarginRight + child.PaddingLeft + child.PaddingRight + child.BorderLeftWidth + child.BorderRightWidth
		vSpacing := child.MarginTop + child.MarginBottom + child.PaddingTop + child.PaddingBottom + child.BorderTopWidth + child.BorderBottomWidth
		mainMargins := child.MarginLeft + child.MarginRight
		if !isRow {
			mainMargins = child.MarginTop + child.MarginBottom
		}

		itemMin := ctx.minContentWidth(child, childCb)
		itemMax := ctx.maxContentWidth(child, childCb)
		it.maxContent = itemMax
		if isRow {
			maxContent += itemMax
			if wrap {
				minContent = pr.MaxF(minContent, itemMin)
			} else {
				minContent += itemMin
			}
		} else {
			minContent, maxContent = pr.MaxF(minContent, itemMin), pr.MaxF(maxContent, itemMax)
		}

		basis := child.Style.FlexBasis
		mainRef := childCb.Width
		if !isRow {
			mainRef = childCb.Height
		}
		if basis.IsAuto() {
			if isRow {
				basis = child.Style.Width
			} else {
				basis = child.Style.Height
			}
		}
		if isRow {
			it.mainSpacing = hSpacing
		} else {
			it.mainSpacing = vSpacing
		}
		if b := resolveOnePercentage(basis, mainRef, true); !pr.IsAuto(b) {
			it.baseSize = b.V()
			if child.Style.BoxSizing == "border-box" {
				it.baseSize = pr.MaxF(0, it.baseSize-(it.mainSpacing-mainMargins))
			}
		} else if isRow {
			it.baseSize = pr.MaxF(0, itemMax-hSpacing)
		} else {
			// content height at the cross size the item would have
			ctx.layoutFlexItem(it, childCb, ctx.columnItemWidth(it, box, it.maxContent), pr.AutoF)
			it.baseSize = child.Height
		}
		if isRow {
			it.hypotheticalMainSize = pr.MaxF(child.MinWidth, pr.MinF(it.baseSize, child.MaxWidth))
		} else {
			it.hypotheticalMainSize = pr.MaxF(child.MinHeight, pr.MinF(it.baseSize, child.MaxHeight))
		}
	}
	// Step 4: collect the items into lines
	var lines []flexLine
	var current flexLine
	var lineMain pr.Float
	for _, it := range items {
		if wrap && len(current.items) != 0 && lineMain+it.outerHypothetical() > availableMain {
			lines = append(lines, current)
			current, lineMain = flexLine{}, 0
		}
		current.items = append(current.items, it)
		lineMain += it.outerHypothetical()
	}
	if len(current.items) != 0 {
		lines = append(lines, current)
	}

	// Step 5: resolve the flexible lengths
	var usedMain pr.Float
	for _, line := range lines {
		lineAvailable := availableMain
		if lineAvailable == pr.Inf {
			lineAvailable = line.sum()
		}
		resolveFlexibleLengths(line, lineAvailable, isRow)
		var outer pr.Float
		for _, it := range line.items {
			outer += it.outerTarget()
		}
		usedMain = pr.MaxF(usedMain, outer)
	}
	if !isRow && availableMain == pr.Inf {
		availableMain = usedMain
	}

	// Step 6: hypothetical cross sizes and baselines
	for i := range lines {
		line := &lines[i]
		for _, it := range line.items {
			if isRow {
				ctx.layoutFlexItem(it, childCb, it.targetMainSize, pr.AutoF)
				it.crossSize = it.box.MarginHeight()
			} else {
				ctx.layoutFlexItem(it, childCb, ctx.columnItemWidth(it, box, it.maxContent), it.targetMainSize)
				it.crossSize = it.box.MarginWidth()
			}
			if !pr.IsAuto(it.box.Baseline) {
				it.baseline, it.hasBaseline = it.box.Baseline.V(), true
			} else {
				it.baseline = it.box.MarginHeight()
			}
			if isRow && alignSelf(it.box, box) == "baseline" {
				line.maxBaseline = pr.MaxF(line.maxBaseline, it.baseline)
				line.lowerBaseline = pr.MaxF(line.lowerBaseline, it.crossSize-it.baseline)
			} else {
				line.crossSize = pr.MaxF(line.crossSize, it.crossSize)
			}
		}
		line.crossSize = pr.MaxF(line.crossSize, line.maxBaseline+line.lowerBaseline)
	}

	// Step 7: container cross size and line cross sizes
	var crossSize pr.Float
	definiteCross := false
	if isRow {
		if !pr.IsAuto(used.height) {
			crossSize, definiteCross = used.height.V(), true
		} else {
			crossSize = sumCross(lines)
			crossSize = pr.MaxF(box.MinHeight, pr.MinF(crossSize, box.MaxHeight))
			definiteCross = crossSize != sumCross(lines)
		}
	} else {
		crossSize, definiteCross = box.Width, true
	}
	if len(lines) == 1 && definiteCross && !wrap {
		lines[0].crossSize = crossSize
	}
	freeCross := crossSize - sumCross(lines)
	if wrap && st.AlignContent == "stretch" && freeCross > 0 && len(lines) != 0 {
		for i := range lines {
			lines[i].crossSize += freeCross / pr.Float(len(lines))
		}
		freeCross = 0
	}
	crossOffset, crossBetween := distributeFree(st.AlignContent, freeCross, len(lines))
	if !wrap {
		crossOffset, crossBetween = 0, 0
	}

	// Step 8: position the lines and the items
	reverseMain := strings.HasSuffix(st.FlexDirection, "-reverse")
	reverseCross := st.FlexWrap == "wrap-reverse"
	crossStart, mainStart := contentY, contentX
	if !isRow {
		crossStart, mainStart = contentX, contentY
	}
	crossCursor := crossStart + crossOffset
	if reverseCross {
		crossCursor = crossStart + crossSize - crossOffset
	}
	for _, line := range lines {
		lineStart := crossCursor
		if reverseCross {
			lineStart = crossCursor - line.crossSize
			crossCursor -= line.crossSize + crossBetween
		} else {
			crossCursor += line.crossSize + crossBetween
		}
		var outer pr.Float
		for _, it := range line.items {
			outer += it.outerTarget()
		}
		offset, between := distributeFree(st.JustifyContent, availableMain-outer, len(line.items))
		if reverseMain {
			line.reverse()
		}
		mainCursor := mainStart + offset
		if reverseMain {
			// items are laid out from the end
			end := availableMain - outer - offset
			mainCursor = mainStart + end
		}
		for _, it := range line.items {
			align := alignSelf(it.box, box)
			stretched := align == "stretch" && isAutoCross(it.box, isRow)
			var crossPos pr.Float
			switch align {
			case "flex-end", "end":
				crossPos = lineStart + line.crossSize - it.crossSize
			case "center":
				crossPos = lineStart + (line.crossSize-it.crossSize)/2
			case "baseline":
				if isRow {
					crossPos = lineStart + line.maxBaseline - it.baseline
				} else {
					crossPos = lineStart
				}
			default:
				crossPos = lineStart
			}
			if reverseCross && !stretched {
				switch align {
				case "flex-start", "start", "stretch":
					crossPos = lineStart + line.crossSize - it.crossSize
				case "flex-end", "end":
					crossPos = lineStart
				}
			}
			if isRow {
				it.box.PositionX, it.box.PositionY = mainCursor, crossPos
			} else {
				it.box.PositionX, it.box.PositionY = crossPos, mainCursor
			}
			if stretched {
				ctx.stretchFlexItem(it, childCb, line.crossSize, isRow)
			} else if isRow {
				ctx.layoutFlexItem(it, childCb, it.targetMainSize, pr.AutoF)
			} else {
				ctx.layoutFlexItem(it, childCb, it.box.Width, it.targetMainSize)
			}
			if pr.IsAuto(box.Baseline) {
				if it.hasBaseline && !pr.IsAuto(it.box.Baseline) {
					box.Baseline = it.box.PositionY + it.box.Baseline.V() - box.PositionY
				} else {
					box.Baseline = it.box.PositionY + it.box.MarginHeight() - box.PositionY
				}
			}
			mainCursor += it.outerTarget() + between
		}
	}

	// Step 9: container height
	if isRow {
		box.Height = crossSize
	} else if pr.IsAuto(used.height) {
		box.Height = pr.MaxF(box.MinHeight, pr.MinF(availableMain, box.MaxHeight))
	} else {
		box.Height = used.height.V()
	}
	for _, child := range absolutes {
		ctx.setStaticPosition(child, contentX, contentY)
	}
	ctx.layoutOwnAbsoluteBoxes(box)

	var res blockResult
	res.natural = maxContent
	if isPx(st.Width) {
		res.natural = box.Width
	}
	res.minContent, res.maxContent = outerIntrinsic(box, used, minContent, maxContent)
	res.adjoining = []pr.Float{box.MarginBottom}
	return res
}

func isAutoCross(box *bo.Box, isRow bool) bool {
	if isRow {
		return box.Style.Height.IsAuto()
	}
	return box.Style.Width.IsAuto()
}

// columnItemWidth returns the content width of an item of the column
// container [box], stretched or shrunk to its content.
func (ctx *layoutContext) columnItemWidth(it *flexItem, box *bo.Box, maxContent pr.Float) pr.Float {
	child := it.box
	spacing := it.horizontalSpacing()
	var w pr.Float
	switch {
	case !pr.IsAuto(it.used.width):
		w = it.used.width.V()
	case alignSelf(child, box) == "stretch":
		w = box.Width - spacing
	default:
		w = pr.MinF(maxContent, box.Width) - spacing
	}
	return pr.MaxF(child.MinWidth, pr.MinF(pr.MaxF(0, w), child.MaxWidth))
}

// stretchFlexItem lays out [it] again with its outer cross size set to
// [lineCross].
func (ctx *layoutContext) stretchFlexItem(it *flexItem, cb containingBlock, lineCross pr.Float, isRow bool) {
	child := it.box
	if isRow {
		spacing := child.MarginHeight() - child.Height
		height := pr.MaxF(child.MinHeight, pr.MinF(lineCross-spacing, child.MaxHeight))
		ctx.layoutFlexItem(it, cb, it.targetMainSize, pr.Float(pr.MaxF(0, height)))
	} else {
		spacing := it.horizontalSpacing()
		width := pr.MaxF(child.MinWidth, pr.MinF(lineCross-spacing, child.MaxWidth))
		ctx.layoutFlexItem(it, cb, pr.MaxF(0, width), it.targetMainSize)
	}
}

// resolveFlexibleLengths sets the target main size of the items of [line].
// See https://www.w3.org/TR/css-flexbox-1/#resolve-flexible-lengths
func resolveFlexibleLengths(line flexLine, availableMainSpace pr.Float, isRow bool) {
	clamp := func(it *flexItem, v pr.Float) pr.Float {
		if isRow {
			return pr.MaxF(it.box.MinWidth, pr.MinF(v, it.box.MaxWidth))
		}
		return pr.MaxF(it.box.MinHeight, pr.MinF(v, it.box.MaxHeight))
	}
	hypotheticalMainSize := line.sum()
	grow := hypotheticalMainSize < availableMainSpace

	for _, child := range line.items {
		if grow {
			child.factor = child.box.Style.FlexGrow
		} else {
			child.factor = child.box.Style.FlexShrink
		}
		if child.factor == 0 ||
			(grow && child.baseSize > child.hypotheticalMainSize) ||
			(!grow && child.baseSize < child.hypotheticalMainSize) {
			child.targetMainSize = child.hypotheticalMainSize
			child.frozen = true
		} else {
			child.frozen = false
		}
	}

	initialFreeSpace := availableMainSpace
	for _, child := range line.items {
		if child.frozen {
			initialFreeSpace -= child.targetMainSize + child.mainSpacing
		} else {
			initialFreeSpace -= child.baseSize + child.mainSpacing
		}
	}

	for !line.allFrozen() {
		var unfrozenFactorSum pr.Float
		remainingFreeSpace := availableMainSpace
		for _, child := range line.items {
			if child.frozen {
				remainingFreeSpace -= child.targetMainSize + child.mainSpacing
			} else {
				remainingFreeSpace -= child.baseSize + child.mainSpacing
				unfrozenFactorSum += child.factor
			}
		}
		if unfrozenFactorSum < 1 {
			if scaled := initialFreeSpace * unfrozenFactorSum; abs(scaled) < abs(remainingFreeSpace) {
				remainingFreeSpace = scaled
			}
		}

		var scaledShrinkSum, growSum pr.Float
		for _, child := range line.items {
			if !child.frozen {
				child.scaledShrink = child.baseSize * child.box.Style.FlexShrink
				scaledShrinkSum += child.scaledShrink
				growSum += child.box.Style.FlexGrow
			}
		}
		for _, child := range line.items {
			if child.frozen {
				continue
			}
			child.targetMainSize = child.baseSize
			if remainingFreeSpace == 0 {
				continue
			}
			if grow && growSum > 0 {
				child.targetMainSize += remainingFreeSpace * child.box.Style.FlexGrow / growSum
			} else if !grow && scaledShrinkSum > 0 {
				child.targetMainSize += remainingFreeSpace * child.scaledShrink / scaledShrinkSum
			}
		}

		// fix min/max violations
		for _, child := range line.items {
			child.adjustment = 0
			if child.frozen {
				continue
			}
			clamped := clamp(child, pr.MaxF(0, child.targetMainSize))
			child.adjustment = clamped - child.targetMainSize
			child.targetMainSize = clamped
		}
		adjustments := line.adjustments()
		for _, child := range line.items {
			if child.frozen {
				continue
			}
			if adjustments == 0 ||
				(adjustments > 0 && child.adjustment > 0) ||
				(adjustments < 0 && child.adjustment < 0) {
				child.frozen = true
			}
		}
	}
}

func abs(v pr.Float) pr.Float {
	if v < 0 {
		return -v
	}
	return v
}
