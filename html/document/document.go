// Package document exposes a laid out render tree to its host:
// rendering at a given width, content size, hit testing and
// line geometry queries.
package document

import (
	"github.com/benoitkugler/boxlayout/backend"
	pr "github.com/benoitkugler/boxlayout/css/properties"
	bo "github.com/benoitkugler/boxlayout/html/boxes"
	"github.com/benoitkugler/boxlayout/html/layout"
	"github.com/benoitkugler/boxlayout/html/tree"
	"github.com/benoitkugler/boxlayout/logger"
)

// Options configure the rendering of a document.
type Options struct {
	// BaseURL resolves the relative sources of images.
	BaseURL string
	// ViewportHeight is the height of the viewport, 0 meaning the
	// content height.
	ViewportHeight pr.Float
	// Debug logs every laid out box.
	Debug bool
}

// Document is the render tree of an element tree, together with the
// host services used to measure it.
// A Document is not safe for concurrent use.
type Document struct {
	root *tree.Element
	host backend.Host
	opts Options

	box      *bo.Box
	stacking *StackingContext
}

// New returns a document rendering [root]. Nothing is laid out
// before the first call to Render.
func New(root *tree.Element, host backend.Host, opts Options) *Document {
	return &Document{root: root, host: host, opts: opts}
}

// Render builds a fresh render tree and lays it out in [maxWidth],
// returning the used width of the document.
// Negative widths are treated as 0.
func (d *Document) Render(maxWidth pr.Float) pr.Float {
	if maxWidth < 0 {
		maxWidth = 0
	}
	// boxes from a previous pass are discarded
	d.root.Detach()
	d.box = bo.Build(d.root, d.host, d.opts.BaseURL)
	used := layout.Layout(d.box, d.host, layout.Options{
		ViewportWidth:  maxWidth,
		ViewportHeight: d.opts.ViewportHeight,
		Debug:          d.opts.Debug,
	})
	d.stacking = NewStackingContextFromBox(d.box)
	logger.ProgressLogger.Infof("Step 4 - Document rendered: %g used for %g available", used, maxWidth)
	return used
}

// Root returns the root of the render tree, or nil before the
// first Render.
func (d *Document) Root() *bo.Box { return d.box }

// NeedsRender returns true before the first Render, and when an
// element has been restyled since the last one.
func (d *Document) NeedsRender() bool {
	if d.box == nil {
		return true
	}
	stale := false
	d.box.Walk(func(b *bo.Box) bool {
		stale = stale || b.Stale
		return !stale
	})
	return stale
}

// ContentSize returns the bounding box of every box of the render
// tree, overflowing content included.
func (d *Document) ContentSize() bo.Rect {
	if d.box == nil {
		return bo.Rect{}
	}
	out := d.box.MarginBox()
	d.box.Walk(func(b *bo.Box) bool {
		for _, r := range areas(b) {
			out = out.Union(r)
		}
		return true
	})
	return out
}

// BoxAt returns the deepest box painted at (x, y), or nil.
func (d *Document) BoxAt(x, y pr.Float) *bo.Box {
	if d.stacking == nil {
		return nil
	}
	return d.stacking.hit(x, y)
}

// ElementAt returns the element of the box painted at (x, y), or nil.
// Anonymous boxes and text map to their parent element.
func (d *Document) ElementAt(x, y pr.Float) *tree.Element {
	box := d.BoxAt(x, y)
	if box == nil {
		return nil
	}
	return box.Element
}

// LineRects returns the rectangles occupied by [el]: one per line
// for inline elements, the line boxes for block containers of inline
// content, and the border box otherwise.
func (d *Document) LineRects(el *tree.Element) []bo.Rect {
	if d.box == nil {
		return nil
	}
	var out []bo.Rect
	d.box.Walk(func(b *bo.Box) bool {
		if b.Element != el || b.Anonymous || b.Kind == bo.KindText {
			return true
		}
		switch {
		case len(b.Fragments) != 0:
			for _, f := range b.Fragments {
				out = append(out, bo.Rect{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height})
			}
		case len(b.Lines) != 0:
			for _, l := range b.Lines {
				out = append(out, bo.Rect{X: l.PositionX, Y: l.PositionY, Width: l.Width, Height: l.Height})
			}
		default:
			out = append(out, b.BorderBox())
		}
		return true
	})
	return out
}

// areas returns the painted rectangles of a box.
func areas(b *bo.Box) []bo.Rect {
	switch b.Kind {
	case bo.KindInline, bo.KindText, bo.KindLineBreak:
		out := make([]bo.Rect, len(b.Fragments))
		for i, f := range b.Fragments {
			out[i] = bo.Rect{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height}
		}
		return out
	default:
		return []bo.Rect{b.BorderBox()}
	}
}
