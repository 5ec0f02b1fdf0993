package main

import (
	"io"
	"math"

	pr "github.com/benoitkugler/boxlayout/css/properties"
	bo "github.com/benoitkugler/boxlayout/html/boxes"
	"github.com/benoitkugler/boxlayout/html/document"
	"github.com/fogleman/gg"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type jsonRect struct {
	X      pr.Float `json:"x"`
	Y      pr.Float `json:"y"`
	Width  pr.Float `json:"width"`
	Height pr.Float `json:"height"`
}

func toJSONRect(r bo.Rect) jsonRect { return jsonRect{r.X, r.Y, r.Width, r.Height} }

type jsonLine struct {
	jsonRect
	Baseline pr.Float `json:"baseline"`
}

type jsonBox struct {
	Kind      string     `json:"kind"`
	Tag       string     `json:"tag,omitempty"`
	Anonymous bool       `json:"anonymous,omitempty"`
	Text      string     `json:"text,omitempty"`
	Margin    jsonRect   `json:"margin"`
	Content   jsonRect   `json:"content"`
	Lines     []jsonLine `json:"lines,omitempty"`
	Fragments []jsonRect `json:"fragments,omitempty"`
	Children  []jsonBox  `json:"children,omitempty"`
}

func newJSONBox(box *bo.Box) jsonBox {
	out := jsonBox{
		Kind:      box.Kind.String(),
		Tag:       box.Tag(),
		Anonymous: box.Anonymous,
		Text:      box.Text,
		Margin:    toJSONRect(box.MarginBox()),
		Content:   toJSONRect(box.ContentBox()),
	}
	for _, l := range box.Lines {
		out.Lines = append(out.Lines, jsonLine{jsonRect{l.PositionX, l.PositionY, l.Width, l.Height}, l.Baseline})
	}
	for _, f := range box.Fragments {
		out.Fragments = append(out.Fragments, jsonRect{f.X, f.Y, f.Width, f.Height})
	}
	for _, child := range box.Children {
		out.Children = append(out.Children, newJSONBox(child))
	}
	return out
}

type jsonDocument struct {
	UsedWidth pr.Float `json:"usedWidth"`
	Content   jsonRect `json:"content"`
	Root      jsonBox  `json:"root"`
}

func writeJSON(w io.Writer, doc *document.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonDocument{
		UsedWidth: doc.Root().MarginWidth(),
		Content:   toJSONRect(doc.ContentSize()),
		Root:      newJSONBox(doc.Root()),
	})
}

// drawOutline strokes the border box of every box, and fills the
// fragments of text, in a PNG image covering the content.
func drawOutline(doc *document.Document, path string) error {
	size := doc.ContentSize()
	w := int(math.Ceil(float64(size.X + size.Width)))
	h := int(math.Ceil(float64(size.Y + size.Height)))
	dc := gg.NewContext(max(w, 1), max(h, 1))
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetLineWidth(1)

	doc.Root().Walk(func(b *bo.Box) bool {
		switch b.Kind {
		case bo.KindText:
			dc.SetRGBA(0.2, 0.4, 0.9, 0.3)
			for _, f := range b.Fragments {
				dc.DrawRectangle(float64(f.X), float64(f.Y), float64(f.Width), float64(f.Height))
				dc.Fill()
			}
		case bo.KindInline:
			dc.SetRGB(0.2, 0.6, 0.2)
			for _, f := range b.Fragments {
				dc.DrawRectangle(float64(f.X)+0.5, float64(f.Y)+0.5, float64(f.Width)-1, float64(f.Height)-1)
				dc.Stroke()
			}
		case bo.KindLineBreak:
		default:
			r := b.BorderBox()
			dc.SetRGB(0, 0, 0)
			if b.Anonymous {
				dc.SetDash(2, 2)
			}
			dc.DrawRectangle(float64(r.X)+0.5, float64(r.Y)+0.5, float64(r.Width)-1, float64(r.Height)-1)
			dc.Stroke()
			dc.SetDash()
		}
		return true
	})
	return dc.SavePNG(path)
}
