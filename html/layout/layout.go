// Package layout computes the geometry of a render tree: it resolves the
// used values of every box (PositionX, PositionY, Width, Height,
// margins, paddings and borders), breaks inline content into lines,
// places floats and sizes tables and flex containers.
//
// (see http://www.w3.org/TR/CSS21/cascade.html#used-value)
package layout

import (
	"github.com/benoitkugler/boxlayout/backend"
	pr "github.com/benoitkugler/boxlayout/css/properties"
	bo "github.com/benoitkugler/boxlayout/html/boxes"
	"github.com/benoitkugler/boxlayout/logger"
)

// unbounded is the available width used to measure the max-content
// width of boxes.
const unbounded pr.Float = 1e7

// Options configure a layout pass.
type Options struct {
	// Width of the viewport, used as the available width of the root.
	ViewportWidth pr.Float
	// Height of the viewport, the containing block of fixed boxes and of
	// percentage heights of the root. 0 means the content height.
	ViewportHeight pr.Float
	// Debug logs every laid out box.
	Debug bool
}

// layoutContext stores the global context needed during layout.
// A new context is used for each call to Layout, so that no state
// survives between layout passes.
type layoutContext struct {
	tm   backend.TextMeasurer
	opts Options

	root *bo.Box
	// counter for the ids of the block formatting contexts
	formattingContexts int
	// boxes containing absolutely positioned boxes, innermost last
	absoluteContainers []*bo.Box
}

// Layout lays out [root] (as returned by boxes.Build) with the given
// available width, and returns the used width of the document,
// that is the width of the margin box of the root.
// Each call is a full layout: the previous geometry is discarded.
func Layout(root *bo.Box, tm backend.TextMeasurer, opts Options) pr.Float {
	logger.ProgressLogger.Infof("Step 3 - Layout at width %g", opts.ViewportWidth)
	ctx := &layoutContext{tm: tm, opts: opts, root: root}

	cb := containingBlock{Width: definite(opts.ViewportWidth), Height: cbSize{Mode: sizeAuto}}
	if opts.ViewportHeight > 0 {
		cb.Height = definite(opts.ViewportHeight)
	}
	root.PositionX, root.PositionY = 0, 0
	ctx.pushAbsoluteContainer(root)
	ctx.blockLevelLayout(root, cb, ctx.newFloatManager(), nil)
	ctx.layoutAbsoluteBoxes(root, ctx.viewportBlock())
	ctx.popAbsoluteContainer()

	ctx.finish(root, cb.Width.Value)
	if opts.Debug {
		root.Walk(func(b *bo.Box) bool {
			logger.ProgressLogger.Infof("%s at (%g, %g), content %gx%g", b, b.PositionX, b.PositionY, b.Width, b.Height)
			return true
		})
	}
	return root.MarginWidth()
}

func (ctx *layoutContext) newFloatManager() *floatManager {
	ctx.formattingContexts++
	return newFloatManager(ctx.formattingContexts)
}

// viewportBlock is the containing block of fixed boxes.
func (ctx *layoutContext) viewportBlock() bo.Rect {
	h := ctx.opts.ViewportHeight
	if h <= 0 {
		h = ctx.root.MarginHeight()
	}
	return bo.Rect{Width: ctx.opts.ViewportWidth, Height: h}
}

func (ctx *layoutContext) pushAbsoluteContainer(box *bo.Box) {
	box.Positioned = box.Positioned[:0]
	ctx.absoluteContainers = append(ctx.absoluteContainers, box)
}

func (ctx *layoutContext) popAbsoluteContainer() {
	ctx.absoluteContainers = ctx.absoluteContainers[:len(ctx.absoluteContainers)-1]
}

// registerAbsolute records [box] in the list of its containing block.
func (ctx *layoutContext) registerAbsolute(box *bo.Box) {
	container := ctx.root
	if box.Style.Position != "fixed" {
		container = ctx.absoluteContainers[len(ctx.absoluteContainers)-1]
	}
	for _, b := range container.Positioned {
		if b == box { // laid out twice to shrink to fit
			return
		}
	}
	container.Positioned = append(container.Positioned, box)
}

// finish applies relative positioning and resolves border radii,
// once every box has its final size.
func (ctx *layoutContext) finish(box *bo.Box, cbWidth pr.Float) {
	if box.Style.Position == "relative" {
		relativePositioning(box, cbWidth)
	}
	resolveRadii(box)
	childWidth := box.Width
	if box.Kind == bo.KindInline || box.Kind == bo.KindText {
		childWidth = cbWidth
	}
	for _, child := range box.Children {
		ctx.finish(child, childWidth)
	}
}

// relativePositioning translates [box] by its "top", "left",
// "bottom" and "right" offsets.
func relativePositioning(box *bo.Box, cbWidth pr.Float) {
	cb := definite(cbWidth)
	var dx, dy pr.Float
	if left := resolveOnePercentage(box.Style.Left, cb, true); !pr.IsAuto(left) {
		dx = left.V()
	} else if right := resolveOnePercentage(box.Style.Right, cb, true); !pr.IsAuto(right) {
		dx = -right.V()
	}
	if top := resolveOnePercentage(box.Style.Top, cb, true); !pr.IsAuto(top) {
		dy = top.V()
	} else if bottom := resolveOnePercentage(box.Style.Bottom, cb, true); !pr.IsAuto(bottom) {
		dy = -bottom.V()
	}
	box.Translate(dx, dy)
}
