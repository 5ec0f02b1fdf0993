// Package images reads the intrinsic size of raster and SVG images,
// decoding only their header.
package images

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/benoitkugler/boxlayout/backend"
	pr "github.com/benoitkugler/boxlayout/css/properties"
	"github.com/benoitkugler/boxlayout/logger"
	"github.com/benoitkugler/boxlayout/utils"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var _ backend.ImageSizer = (*Loader)(nil)

// Size is the intrinsic size of an image.
type Size struct {
	Width, Height pr.Float
	Format        string
}

// cache entry, with a nil error for valid images
type entry struct {
	size Size
	err  error
}

// Loader fetches images from local files and data: URLs.
// Results, including failures, are cached by resolved URL.
// It is safe for concurrent use.
type Loader struct {
	mu    sync.Mutex
	cache map[string]entry
}

func NewLoader() *Loader { return &Loader{cache: make(map[string]entry)} }

// ImageSize implements backend.ImageSizer. Errors are logged
// and reported as broken images.
func (l *Loader) ImageSize(src, baseURL string) (pr.Float, pr.Float, bool) {
	size, err := l.Get(src, baseURL)
	if err != nil {
		logger.WarningLogger.Warnf("Failed to load image %q: %s", src, err)
		return 0, 0, false
	}
	return size.Width, size.Height, true
}

// Get resolves and loads the image.
func (l *Loader) Get(src, baseURL string) (Size, error) {
	resolved, err := utils.ResolveURL(src, baseURL)
	if err != nil {
		return Size{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.cache[resolved]; ok {
		return e.size, e.err
	}
	size, err := load(resolved)
	l.cache[resolved] = entry{size, err}
	return size, err
}

func load(resolved string) (Size, error) {
	content, err := fetch(resolved)
	if err != nil {
		return Size{}, err
	}
	if isSVG(content) {
		return svgSize(content)
	}
	return DecodeSize(bytes.NewReader(content))
}

// DecodeSize reads the image header from [r].
func DecodeSize(r io.Reader) (Size, error) {
	config, format, err := image.DecodeConfig(r)
	if err != nil {
		return Size{}, fmt.Errorf("error loading image: %w", err)
	}
	return Size{Width: pr.Float(config.Width), Height: pr.Float(config.Height), Format: format}, nil
}

func fetch(resolved string) ([]byte, error) {
	if strings.HasPrefix(resolved, "data:") {
		return decodeDataURL(resolved)
	}
	u, err := url.Parse(resolved)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "", "file":
		return os.ReadFile(u.Path)
	default:
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
}

// decodeDataURL handles data:[<mediatype>][;base64],<data>
func decodeDataURL(s string) ([]byte, error) {
	header, data, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("invalid data url")
	}
	if strings.HasSuffix(header, ";base64") {
		return base64.StdEncoding.DecodeString(data)
	}
	decoded, err := url.PathUnescape(data)
	if err != nil {
		return nil, fmt.Errorf("invalid data url: %w", err)
	}
	return []byte(decoded), nil
}
