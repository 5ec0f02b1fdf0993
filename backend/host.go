// Package backend defines the host callbacks used by the layout engine
// to measure text and images. The engine never draws.
package backend

import (
	pr "github.com/benoitkugler/boxlayout/css/properties"
)

// FontMetrics are the vertical metrics of a font, in pixels,
// at the size of the font description.
type FontMetrics struct {
	Height  pr.Float // ascent + descent + line gap
	Ascent  pr.Float
	Descent pr.Float // positive, below the baseline
	XHeight pr.Float
}

// TextMeasurer measures runs of text. Calls are synchronous and
// expected to be answered from a cache.
type TextMeasurer interface {
	// TextWidth returns the advance of [text] using [font].
	TextWidth(text string, font pr.Font) pr.Float
	// Metrics returns the vertical metrics of [font].
	Metrics(font pr.Font) FontMetrics
	// DefaultFontSize returns the size used for "medium".
	DefaultFontSize() pr.Float
}

// ImageSizer returns the intrinsic size of images.
type ImageSizer interface {
	// ImageSize resolves [src] against [baseURL] and returns the
	// intrinsic size of the image. ok is false for broken images.
	ImageSize(src, baseURL string) (width, height pr.Float, ok bool)
}

// Host groups the callbacks provided by the host application.
type Host interface {
	TextMeasurer
	ImageSizer
}

type host struct {
	TextMeasurer
	ImageSizer
}

// NewHost combines a text measurer and an image sizer.
func NewHost(tm TextMeasurer, is ImageSizer) Host { return host{tm, is} }

// NoImages reports every image as broken.
type NoImages struct{}

func (NoImages) ImageSize(src, baseURL string) (pr.Float, pr.Float, bool) { return 0, 0, false }
