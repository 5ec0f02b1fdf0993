package images

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	pr "github.com/benoitkugler/boxlayout/css/properties"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// default size of replaced elements without intrinsic dimensions
const (
	defaultSVGWidth  pr.Float = 300
	defaultSVGHeight pr.Float = 150
)

var svgUnits = map[string]pr.Float{
	"px": 1, "cm": 96. / 2.54, "mm": 9.6 / 2.54, "pt": 96. / 72., "in": 96.,
	"Q": 96. / 40. / 2.54, "pc": 96. / 6., "em": 16, "ex": 8,
}

// isSVG sniffs the beginning of [content].
func isSVG(content []byte) bool {
	head := content
	if len(head) > 512 {
		head = head[:512]
	}
	head = bytes.TrimSpace(head)
	return bytes.HasPrefix(head, []byte("<")) && bytes.Contains(bytes.ToLower(head), []byte("<svg"))
}

// parseLength returns the length in px, and false for percentages
// and missing values.
func parseLength(s string) (pr.Float, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, "%") {
		return 0, false, nil
	}
	factor := pr.Float(1)
	for suffix, f := range svgUnits {
		if strings.HasSuffix(s, suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			factor = f
			break
		}
	}
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, false, fmt.Errorf("invalid length %q", s)
	}
	return pr.Float(v) * factor, true, nil
}

// parseViewBox returns the width and height of the "viewBox" attribute.
func parseViewBox(attr string) (w, h pr.Float, ok bool) {
	fields := strings.FieldsFunc(attr, func(r rune) bool { return r == ' ' || r == ',' })
	if len(fields) != 4 {
		return 0, 0, false
	}
	var values [4]pr.Float
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return 0, 0, false
		}
		values[i] = pr.Float(v)
	}
	if values[2] <= 0 || values[3] <= 0 {
		return 0, 0, false
	}
	return values[2], values[3], true
}

func findSVG(node *html.Node) *html.Node {
	if node.Type == html.ElementNode && node.DataAtom == atom.Svg {
		return node
	}
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if n := findSVG(c); n != nil {
			return n
		}
	}
	return nil
}

// svgSize reads the intrinsic size of an SVG image from the width,
// height and viewBox attributes of its root element. A missing
// dimension follows the ratio of the view box.
func svgSize(content []byte) (Size, error) {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return Size{}, fmt.Errorf("error loading svg: %w", err)
	}
	root := findSVG(doc)
	if root == nil {
		return Size{}, errors.New("error loading svg: missing <svg> element")
	}
	attrs := map[string]string{}
	for _, attr := range root.Attr {
		attrs[attr.Key] = attr.Val
	}

	width, hasWidth, err := parseLength(attrs["width"])
	if err != nil {
		return Size{}, err
	}
	height, hasHeight, err := parseLength(attrs["height"])
	if err != nil {
		return Size{}, err
	}
	vbWidth, vbHeight, hasViewBox := parseViewBox(attrs["viewBox"])
	switch {
	case hasWidth && hasHeight:
	case hasViewBox && hasWidth:
		height = width * vbHeight / vbWidth
	case hasViewBox && hasHeight:
		width = height * vbWidth / vbHeight
	case hasViewBox:
		width, height = vbWidth, vbHeight
	default:
		if !hasWidth {
			width = defaultSVGWidth
		}
		if !hasHeight {
			height = defaultSVGHeight
		}
	}
	return Size{Width: width, Height: height, Format: "svg"}, nil
}
