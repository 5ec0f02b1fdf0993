package document

import (
	"sort"

	pr "github.com/benoitkugler/boxlayout/css/properties"
	bo "github.com/benoitkugler/boxlayout/html/boxes"
)

// clip is the visible area left by the overflow of the ancestors.
type clip struct {
	rect bo.Rect
	set  bool
}

func (c clip) contains(x, y pr.Float) bool { return !c.set || c.rect.Contains(x, y) }

// inside returns the clip applying to the descendants of [box].
func (c clip) inside(box *bo.Box) clip {
	if box.Style.Overflow == "visible" {
		return c
	}
	r := box.PaddingBox()
	if !c.set {
		return clip{rect: r, set: true}
	}
	x0, y0 := pr.MaxF(c.rect.X, r.X), pr.MaxF(c.rect.Y, r.Y)
	x1 := pr.MinF(c.rect.X+c.rect.Width, r.X+r.Width)
	y1 := pr.MinF(c.rect.Y+c.rect.Height, r.Y+r.Height)
	return clip{rect: bo.Rect{X: x0, Y: y0, Width: pr.MaxF(0, x1-x0), Height: pr.MaxF(0, y1-y0)}, set: true}
}

// layer is a box painted on its own, or a context painted atomically.
type layer struct {
	box  *bo.Box
	sub  *StackingContext
	clip clip
}

// StackingContext groups the boxes of a subtree in painting order.
// See https://www.w3.org/TR/CSS21/zindex.html
type StackingContext struct {
	box    *bo.Box
	clip   clip
	zIndex int

	negativeZContexts []*StackingContext // z-index < 0
	blocksAndCells    []layer
	floats            []*StackingContext
	inlineContent     []layer
	zeroZContexts     []*StackingContext // z-index 0 or auto
	positiveZContexts []*StackingContext // z-index > 0
}

// NewStackingContextFromBox returns the root stacking context of a
// laid out render tree.
func NewStackingContextFromBox(root *bo.Box) *StackingContext {
	return newStackingContext(root, clip{}, nil)
}

// newStackingContext builds the context of [box]. Contexts created by
// descendants are added to [parentContexts] when it is not nil: floats,
// atomic inlines and positioned boxes with z-index auto only create
// pseudo contexts.
func newStackingContext(box *bo.Box, c clip, parentContexts *[]*StackingContext) *StackingContext {
	out := &StackingContext{box: box, clip: c}
	if box.Style.IsPositioned() && !box.Style.ZIndex.Auto {
		out.zIndex = box.Style.ZIndex.Int
	}
	var own []*StackingContext
	contexts := parentContexts
	if contexts == nil {
		contexts = &own
	}
	out.disperse(box, c, contexts)
	if parentContexts == nil {
		out.sortContexts(own)
	}
	return out
}

func (sc *StackingContext) disperse(parent *bo.Box, c clip, contexts *[]*StackingContext) {
	c = c.inside(parent)
	for _, child := range parent.Children {
		style := child.Style
		switch {
		case style.IsPositioned() && !style.ZIndex.Auto:
			*contexts = append(*contexts, newStackingContext(child, c, nil))
		case style.IsPositioned():
			// reserve the slot first: hoisted descendants come after
			i := len(*contexts)
			*contexts = append(*contexts, nil)
			(*contexts)[i] = newStackingContext(child, c, contexts)
		case child.IsFloated():
			sc.floats = append(sc.floats, newStackingContext(child, c, contexts))
		case child.IsAtomicInline():
			sc.inlineContent = append(sc.inlineContent, layer{sub: newStackingContext(child, c, contexts)})
		case child.IsBlockLevel() || child.IsTablePart():
			sc.blocksAndCells = append(sc.blocksAndCells, layer{box: child, clip: c})
			sc.disperse(child, c, contexts)
		default:
			sc.inlineContent = append(sc.inlineContent, layer{box: child, clip: c})
			sc.disperse(child, c, contexts)
		}
	}
}

func (sc *StackingContext) sortContexts(contexts []*StackingContext) {
	sort.SliceStable(contexts, func(i, j int) bool { return contexts[i].zIndex < contexts[j].zIndex })
	for _, ctx := range contexts {
		switch {
		case ctx.zIndex < 0:
			sc.negativeZContexts = append(sc.negativeZContexts, ctx)
		case ctx.zIndex == 0:
			sc.zeroZContexts = append(sc.zeroZContexts, ctx)
		default:
			sc.positiveZContexts = append(sc.positiveZContexts, ctx)
		}
	}
}

// hits returns true if (x, y) is in the painted area of [box].
func hits(box *bo.Box, c clip, x, y pr.Float) bool {
	if box.Style.Visibility != "visible" || !c.contains(x, y) {
		return false
	}
	for _, r := range areas(box) {
		if r.Contains(x, y) {
			return true
		}
	}
	return false
}

// hit returns the last painted box at (x, y), walking the painting
// order backwards.
func (sc *StackingContext) hit(x, y pr.Float) *bo.Box {
	for i := len(sc.positiveZContexts) - 1; i >= 0; i-- {
		if b := sc.positiveZContexts[i].hit(x, y); b != nil {
			return b
		}
	}
	for i := len(sc.zeroZContexts) - 1; i >= 0; i-- {
		if b := sc.zeroZContexts[i].hit(x, y); b != nil {
			return b
		}
	}
	for i := len(sc.inlineContent) - 1; i >= 0; i-- {
		l := sc.inlineContent[i]
		if l.sub != nil {
			if b := l.sub.hit(x, y); b != nil {
				return b
			}
		} else if hits(l.box, l.clip, x, y) {
			return l.box
		}
	}
	for i := len(sc.floats) - 1; i >= 0; i-- {
		if b := sc.floats[i].hit(x, y); b != nil {
			return b
		}
	}
	for i := len(sc.blocksAndCells) - 1; i >= 0; i-- {
		l := sc.blocksAndCells[i]
		if hits(l.box, l.clip, x, y) {
			return l.box
		}
	}
	for i := len(sc.negativeZContexts) - 1; i >= 0; i-- {
		if b := sc.negativeZContexts[i].hit(x, y); b != nil {
			return b
		}
	}
	if hits(sc.box, sc.clip, x, y) {
		return sc.box
	}
	return nil
}
