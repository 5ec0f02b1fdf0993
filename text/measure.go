package text

import (
	"fmt"
	"os"
	"sync"

	"github.com/benoitkugler/boxlayout/backend"
	pr "github.com/benoitkugler/boxlayout/css/properties"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	_ backend.TextMeasurer = (*FaceMeasurer)(nil)
	_ backend.TextMeasurer = FixedMeasurer{}
)

func fixedToFloat(v fixed.Int26_6) pr.Float { return pr.Float(v) / 64 }

// FaceMeasurer measures text with an OpenType font, or with the
// built-in bitmap face (scaled) if no font is loaded.
// It is safe for concurrent use.
type FaceMeasurer struct {
	font *opentype.Font

	mu    sync.Mutex
	faces map[pr.Float]font.Face
}

// NewFaceMeasurer uses [f], which may be nil.
func NewFaceMeasurer(f *opentype.Font) *FaceMeasurer {
	return &FaceMeasurer{font: f, faces: make(map[pr.Float]font.Face)}
}

// LoadFace parses the TrueType or OpenType font at [path].
func LoadFace(path string) (*FaceMeasurer, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading font: %w", err)
	}
	f, err := opentype.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parsing font %s: %w", path, err)
	}
	return NewFaceMeasurer(f), nil
}

// the bitmap face is designed for this size
const basicSize = 13

func (fm *FaceMeasurer) face(size pr.Float) (font.Face, pr.Float) {
	if fm.font == nil {
		return basicfont.Face7x13, size / basicSize
	}
	fm.mu.Lock()
	defer fm.mu.Unlock()
	if face, ok := fm.faces[size]; ok {
		return face, 1
	}
	face, err := opentype.NewFace(fm.font, &opentype.FaceOptions{Size: float64(size), DPI: 72, Hinting: font.HintingNone})
	if err != nil { // only for invalid sizes: fall back to the bitmap face
		return basicfont.Face7x13, size / basicSize
	}
	fm.faces[size] = face
	return face, 1
}

// TextWidth implements backend.TextMeasurer.
func (fm *FaceMeasurer) TextWidth(text string, f pr.Font) pr.Float {
	face, scale := fm.face(f.Size)
	return fixedToFloat(font.MeasureString(face, text)) * scale
}

// Metrics implements backend.TextMeasurer.
func (fm *FaceMeasurer) Metrics(f pr.Font) backend.FontMetrics {
	face, scale := fm.face(f.Size)
	m := face.Metrics()
	out := backend.FontMetrics{
		Height:  fixedToFloat(m.Height) * scale,
		Ascent:  fixedToFloat(m.Ascent) * scale,
		Descent: fixedToFloat(m.Descent) * scale,
		XHeight: fixedToFloat(m.XHeight) * scale,
	}
	if out.XHeight <= 0 {
		out.XHeight = out.Ascent / 2
	}
	return out
}

// DefaultFontSize implements backend.TextMeasurer.
func (fm *FaceMeasurer) DefaultFontSize() pr.Float { return pr.DefaultFontSize }

// FixedMeasurer gives every character (including spaces) an advance
// of 1em, an ascent of 0.8em and a descent of 0.2em, like the Ahem font.
type FixedMeasurer struct{}

// TextWidth implements backend.TextMeasurer.
func (FixedMeasurer) TextWidth(text string, f pr.Font) pr.Float {
	return pr.Float(len([]rune(text))) * f.Size
}

// Metrics implements backend.TextMeasurer.
func (FixedMeasurer) Metrics(f pr.Font) backend.FontMetrics {
	return backend.FontMetrics{Height: f.Size, Ascent: 0.8 * f.Size, Descent: 0.2 * f.Size, XHeight: 0.8 * f.Size}
}

// DefaultFontSize implements backend.TextMeasurer.
func (FixedMeasurer) DefaultFontSize() pr.Float { return pr.DefaultFontSize }
