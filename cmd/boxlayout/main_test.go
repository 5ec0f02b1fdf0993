package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benoitkugler/boxlayout/logger"
	"github.com/benoitkugler/boxlayout/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `<html style="margin: 0"><body style="margin: 0"><div id=a style="width: 100px; height: 20px"></div><p id=p style="margin: 0">ab cd</p></body></html>`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.html")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// run executes the command line with [args] and returns its output.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { logger.Initialize(logger.DefaultConfig(), os.Stderr) })
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, version.VersionString+"\n", out)

	out, err = run(t, "", "--version")
	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", out)
}

func TestRenderText(t *testing.T) {
	path := writeFixture(t, fixture)
	out, err := run(t, "", "render", path, "--width", "200")
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	assert.Equal(t, "used width 200, content 200x36", lines[0])
	assert.Contains(t, out, "Block div 0,0 100x20")
	assert.Contains(t, out, `"ab cd"`)
}

func TestRenderStdin(t *testing.T) {
	out, err := run(t, fixture, "render", "-w", "50")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "used width 50,"))
}

func TestRenderJSON(t *testing.T) {
	path := writeFixture(t, fixture)
	out, err := run(t, "", "render", path, "--width", "200", "--format", "json")
	require.NoError(t, err)

	var doc jsonDocument
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.EqualValues(t, 200, doc.UsedWidth)
	assert.Equal(t, "html", doc.Root.Tag)
	body := doc.Root.Children[0]
	require.Len(t, body.Children, 2)
	assert.EqualValues(t, 100, body.Children[0].Margin.Width)
	p := body.Children[1]
	require.Len(t, p.Lines, 1)
	assert.EqualValues(t, 20, p.Lines[0].Y)
}

func TestRenderPNG(t *testing.T) {
	path := writeFixture(t, fixture)
	pngPath := filepath.Join(t.TempDir(), "out.png")
	_, err := run(t, "", "render", path, "--width", "120", "--png", pngPath)
	require.NoError(t, err)

	f, err := os.Open(pngPath)
	require.NoError(t, err)
	defer f.Close()
	config, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 120, config.Width)
	assert.Equal(t, 36, config.Height)
}

func TestConfigSources(t *testing.T) {
	path := writeFixture(t, fixture)

	t.Setenv("BOXLAYOUT_WIDTH", "300")
	out, err := run(t, "", "render", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "used width 300,"), out)

	cfgPath := filepath.Join(t.TempDir(), "boxlayout.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("format: json\nfont-size: 32\nlog:\n  level: error\n"), 0o644))
	out, err = run(t, "", "render", path, "--config", cfgPath)
	require.NoError(t, err)
	var doc jsonDocument
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	// a line of the paragraph is now 32px high
	p := doc.Root.Children[0].Children[1]
	assert.EqualValues(t, 32, p.Lines[0].Height)

	// flags win over the environment
	out, err = run(t, "", "render", path, "--width", "150")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "used width 150,"), out)
}

func TestInvalidConfig(t *testing.T) {
	path := writeFixture(t, fixture)
	_, err := run(t, "", "render", path, "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")

	_, err = run(t, "", "render", path, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading config file")

	_, err = run(t, "", "render", filepath.Join(t.TempDir(), "missing.html"))
	assert.Error(t, err)
}

func TestHit(t *testing.T) {
	path := writeFixture(t, fixture)
	out, err := run(t, "", "hit", path, "5", "5", "--width", "200")
	require.NoError(t, err)
	assert.Equal(t, "<div#a> Block\n  0,0 100x20\n", out)

	out, err = run(t, "", "hit", path, "5", "25", "--width", "200")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<p#p> Text\n"), out)

	out, err = run(t, "", "hit", path, "5", "500")
	require.NoError(t, err)
	assert.Equal(t, "nothing\n", out)

	_, err = run(t, "", "hit", path, "a", "5")
	assert.ErrorContains(t, err, "invalid x")
}
