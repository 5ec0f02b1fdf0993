// Package tree builds the element tree consumed by the layout engine:
// elements with their resolved style, built from HTML markup.
package tree

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	pa "github.com/benoitkugler/boxlayout/css/parser"
	pr "github.com/benoitkugler/boxlayout/css/properties"
	"github.com/benoitkugler/boxlayout/css/validation"
	"github.com/benoitkugler/boxlayout/logger"
	"github.com/benoitkugler/boxlayout/utils"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RenderHandle is implemented by render nodes built from an element,
// which are notified when the element style changes.
type RenderHandle interface {
	Invalidate()
}

// Element is a node of the document. Text nodes have an empty Tag
// and share the Style of their parent.
type Element struct {
	Tag      string
	Attrs    map[string]string
	Text     string
	Style    *pr.Style
	Parent   *Element
	Children []*Element

	handles []RenderHandle
}

// IsText returns true for text nodes.
func (e *Element) IsText() bool { return e.Tag == "" }

// Get returns the attribute [name], or an empty string.
func (e *Element) Get(name string) string { return e.Attrs[name] }

// IntAttr parses the attribute [name] as a positive integer,
// returning [def] when it is missing or invalid.
func (e *Element) IntAttr(name string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(e.Attrs[name]))
	if err != nil || v < 0 {
		return def
	}
	return v
}

// Attach registers a render node built from this element.
func (e *Element) Attach(h RenderHandle) { e.handles = append(e.handles, h) }

// Detach invalidates and forgets every render node attached to the
// element and its descendants.
func (e *Element) Detach() {
	for _, h := range e.handles {
		h.Invalidate()
	}
	e.handles = nil
	for _, child := range e.Children {
		child.Detach()
	}
}

// Walk calls [fn] on e and its descendants, in document order.
func (e *Element) Walk(fn func(*Element)) {
	fn(e)
	for _, child := range e.Children {
		child.Walk(fn)
	}
}

// GetElementByID returns the first element with the given id, or nil.
func (e *Element) GetElementByID(id string) *Element {
	var out *Element
	e.Walk(func(el *Element) {
		if out == nil && el.Attrs["id"] == id {
			out = el
		}
	})
	return out
}

func (e *Element) String() string {
	if e.IsText() {
		return fmt.Sprintf("%q", e.Text)
	}
	if id := e.Attrs["id"]; id != "" {
		return fmt.Sprintf("<%s#%s>", e.Tag, id)
	}
	return fmt.Sprintf("<%s>", e.Tag)
}

// HTML is a parsed document.
type HTML struct {
	Root    *Element // the <html> element
	BaseURL string
	UA      UserAgent
}

// NewHTML parses [r] and computes the style of every element,
// using the user agent rules [ua] and the "style" attributes.
// [baseURL] is used to resolve relative URLs, and may be overridden
// by a <base> element.
func NewHTML(r io.Reader, baseURL string, ua UserAgent) (*HTML, error) {
	logger.ProgressLogger.Info("Step 1 - Parsing HTML")
	doc, err := html.ParseWithOptions(r, html.ParseOptionEnableScripting(false))
	if err != nil {
		return nil, fmt.Errorf("invalid html input: %w", err)
	}
	var root *html.Node
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Html {
			root = c
		}
	}
	if root == nil {
		return nil, fmt.Errorf("invalid html input: missing root element")
	}
	out := &HTML{BaseURL: findBaseURL(root, baseURL), UA: ua}
	out.Root = out.build(root, nil)
	return out, nil
}

// NewHTMLString is a convenience wrapper around NewHTML.
func NewHTMLString(content, baseURL string, ua UserAgent) (*HTML, error) {
	return NewHTML(strings.NewReader(content), baseURL, ua)
}

func findBaseURL(root *html.Node, fallback string) string {
	var walk func(n *html.Node) string
	walk = func(n *html.Node) string {
		if n.Type == html.ElementNode && n.DataAtom == atom.Base {
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					return attr.Val
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if href := walk(c); href != "" {
				return href
			}
		}
		return ""
	}
	href := walk(root)
	if href == "" {
		return fallback
	}
	resolved, err := utils.ResolveURL(href, fallback)
	if err != nil {
		logger.WarningLogger.Warnf("Ignored <base> element: %s", err)
		return fallback
	}
	return resolved
}

func (h *HTML) build(node *html.Node, parent *Element) *Element {
	el := &Element{Tag: node.Data, Parent: parent, Attrs: make(map[string]string, len(node.Attr))}
	for _, attr := range node.Attr {
		el.Attrs[attr.Key] = attr.Val
	}
	h.computeStyle(el)
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if c.Data == "" {
				continue
			}
			el.Children = append(el.Children, &Element{Text: c.Data, Style: pr.AnonymousStyle(el.Style), Parent: el})
		case html.ElementNode:
			el.Children = append(el.Children, h.build(c, el))
		}
	}
	return el
}

// presentationalHints returns the declarations implied by HTML
// attributes, with a lower priority than the "style" attribute.
func presentationalHints(el *Element) string {
	var hints []string
	switch el.Tag {
	case "img", "table", "td", "th", "col", "colgroup", "iframe", "video", "canvas":
		for _, name := range [2]string{"width", "height"} {
			v := strings.TrimSpace(el.Attrs[name])
			if v == "" {
				continue
			}
			if strings.HasSuffix(v, "%") {
				hints = append(hints, name+":"+v)
			} else if _, err := strconv.ParseFloat(v, 32); err == nil {
				hints = append(hints, name+":"+v+"px")
			}
		}
	}
	switch el.Tag {
	case "table":
		if b := el.Attrs["border"]; b != "" {
			hints = append(hints, "border: "+b+"px outset")
		}
		if s := el.Attrs["cellspacing"]; s != "" {
			hints = append(hints, "border-spacing: "+s+"px")
		}
	case "td", "th":
		if v := el.Attrs["valign"]; v != "" {
			hints = append(hints, "vertical-align: "+v)
		}
		if _, ok := el.Attrs["nowrap"]; ok {
			hints = append(hints, "white-space: nowrap")
		}
	}
	switch strings.ToLower(el.Attrs["align"]) {
	case "center":
		if el.Tag == "table" {
			hints = append(hints, "margin-left: auto; margin-right: auto")
		} else {
			hints = append(hints, "text-align: center")
		}
	case "right":
		hints = append(hints, "text-align: right")
	case "left":
		hints = append(hints, "text-align: left")
	}
	return strings.Join(hints, ";")
}

// computeStyle resolves the style of [el], from its parent style,
// the user agent, presentational hints and its "style" attribute.
func (h *HTML) computeStyle(el *Element) {
	style := pr.InitialStyle()
	var parentStyle *pr.Style
	if el.Parent != nil {
		parentStyle = el.Parent.Style
		style.Inherit(parentStyle)
	}
	decls := append([]pa.Declaration(nil), h.UA[el.Tag]...)
	hints, errs := pa.ParseDeclarationList(presentationalHints(el))
	decls = append(decls, hints...)
	for _, err := range errs {
		logger.WarningLogger.Warnf("Ignored presentational hint on %s: %s", el, err)
	}
	if css, ok := el.Attrs["style"]; ok {
		inline, errs := pa.ParseDeclarationList(css)
		for _, err := range errs {
			logger.WarningLogger.Warnf("Invalid style declaration on %s: %s", el, err)
		}
		decls = append(decls, inline...)
	}
	validation.ApplyDeclarations(&style, parentStyle, decls)
	validation.FinishBorders(&style)
	el.Style = &style
}

// Restyle replaces the "style" attribute of [el], recomputes the
// style of its subtree and invalidates the render nodes built from it.
func (h *HTML) Restyle(el *Element, css string) {
	if el.IsText() {
		return
	}
	el.Attrs["style"] = css
	el.Detach()
	h.recompute(el)
}

func (h *HTML) recompute(el *Element) {
	h.computeStyle(el)
	for _, child := range el.Children {
		if child.IsText() {
			child.Style = pr.AnonymousStyle(el.Style)
		} else {
			h.recompute(child)
		}
	}
}
