package boxes

import (
	"fmt"
	"io"
	"strings"
)

// SerBox is a simplified view of a box, used to compare trees.
type SerBox struct {
	Tag  string
	Kind Kind
	Text string
	C    []SerBox
}

func (s SerBox) String() string {
	var b strings.Builder
	s.write(&b, 0)
	return b.String()
}

func (s SerBox) write(b *strings.Builder, depth int) {
	fmt.Fprintf(b, "%s%s %s", strings.Repeat("  ", depth), s.Kind, s.Tag)
	if s.Text != "" {
		fmt.Fprintf(b, " %q", s.Text)
	}
	b.WriteByte('\n')
	for _, c := range s.C {
		c.write(b, depth+1)
	}
}

// Serialize transforms a box list into a tree of [SerBox].
func Serialize(boxes []*Box) []SerBox {
	out := make([]SerBox, len(boxes))
	for i, box := range boxes {
		out[i] = SerBox{Tag: box.Tag(), Kind: box.Kind, Text: box.Text}
		if len(box.Children) != 0 {
			out[i].C = Serialize(box.Children)
		}
	}
	return out
}

// Dump writes an indented outline of [box] and its descendants,
// with their margin box geometry.
func Dump(w io.Writer, box *Box) error {
	return dump(w, box, 0)
}

func dump(w io.Writer, box *Box, depth int) error {
	indent := strings.Repeat("  ", depth)
	name := box.Tag()
	if box.Anonymous {
		name = "(" + name + ")"
	}
	_, err := fmt.Fprintf(w, "%s%s %s %g,%g %gx%g", indent, box.Kind, name,
		box.PositionX, box.PositionY, box.MarginWidth(), box.MarginHeight())
	if err != nil {
		return err
	}
	if box.Kind == KindText {
		if _, err = fmt.Fprintf(w, " %q", box.Text); err != nil {
			return err
		}
	}
	if _, err = fmt.Fprintln(w); err != nil {
		return err
	}
	for i, line := range box.Lines {
		_, err = fmt.Fprintf(w, "%s  line %d: %g,%g %gx%g baseline %g\n", indent, i,
			line.PositionX, line.PositionY, line.Width, line.Height, line.Baseline)
		if err != nil {
			return err
		}
	}
	for _, child := range box.Children {
		if err = dump(w, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}
