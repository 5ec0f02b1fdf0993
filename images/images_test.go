package images

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	pr "github.com/benoitkugler/boxlayout/css/properties"
	"github.com/benoitkugler/boxlayout/utils"
	tu "github.com/benoitkugler/boxlayout/utils/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.Black)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLocalFile(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pattern.png"), encodePNG(t, 4, 3), 0o644))
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, image.NewGray(image.Rect(0, 0, 7, 2))))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pattern.bmp"), buf.Bytes(), 0o644))

	base, err := utils.PathToURL(filepath.Join(dir, "index.html"))
	require.NoError(t, err)

	l := NewLoader()
	w, h, ok := l.ImageSize("pattern.png", base)
	require.True(t, ok)
	assert.Equal(t, [2]pr.Float{4, 3}, [2]pr.Float{w, h})

	size, err := l.Get("pattern.bmp", base)
	require.NoError(t, err)
	assert.Equal(t, Size{Width: 7, Height: 2, Format: "bmp"}, size)
}

func TestDataURL(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(encodePNG(t, 10, 20))
	w, h, ok := NewLoader().ImageSize(src, "file:///ignored/")
	require.True(t, ok)
	assert.Equal(t, pr.Float(10), w)
	assert.Equal(t, pr.Float(20), h)
}

func TestBrokenImage(t *testing.T) {
	logs := tu.CaptureLogs()
	l := NewLoader()
	_, _, ok := l.ImageSize("missing.png", "")
	assert.False(t, ok)
	_, _, ok = l.ImageSize("data:text/plain,hello", "")
	assert.False(t, ok)
	_, _, ok = l.ImageSize("http://example.com/a.png", "")
	assert.False(t, ok)
	logs.CheckEqual(t, 3)

	// failures are cached too
	_, err := l.Get("missing.png", "")
	assert.Error(t, err)
	assert.Len(t, l.cache, 3)
}

func TestSVGSize(t *testing.T) {
	for _, test := range []struct {
		content       string
		width, height pr.Float
	}{
		{`<svg width="20" height="10px"></svg>`, 20, 10},
		{`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg" width="1in" height="2cm"></svg>`, 96, 96 * 2 / 2.54},
		{`<svg width="40" viewBox="0 0 200 100"></svg>`, 40, 20},
		{`<svg height="40" viewBox="0,0,200,100"></svg>`, 80, 40},
		{`<svg width="100%" viewBox="0 0 30 15"></svg>`, 30, 15},
		{`<svg></svg>`, 300, 150},
		{`<svg width="12"></svg>`, 12, 150},
	} {
		assert.True(t, isSVG([]byte(test.content)), test.content)
		size, err := svgSize([]byte(test.content))
		require.NoError(t, err)
		assert.Equal(t, "svg", size.Format)
		assert.InDelta(t, float64(test.width), float64(size.Width), 0.01, test.content)
		assert.InDelta(t, float64(test.height), float64(size.Height), 0.01, test.content)
	}

	_, err := svgSize([]byte(`<svg width="abc"></svg>`))
	assert.Error(t, err)
	assert.False(t, isSVG(encodePNG(t, 2, 2)))
}

func TestSVGFile(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	src := "data:image/svg+xml," + `<svg width="8" height="6"></svg>`
	w, h, ok := NewLoader().ImageSize(src, "")
	require.True(t, ok)
	assert.Equal(t, [2]pr.Float{8, 6}, [2]pr.Float{w, h})
}
