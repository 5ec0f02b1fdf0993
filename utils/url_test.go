package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveURL(t *testing.T) {
	for _, test := range []struct{ ref, base, exp string }{
		{"img.png", "", "img.png"},
		{"img.png", "file:///tmp/doc/index.html", "file:///tmp/doc/img.png"},
		{"../a.png", "http://example.com/b/c.html", "http://example.com/a.png"},
		{"data:image/png;base64,AAAA", "http://example.com/", "data:image/png;base64,AAAA"},
	} {
		got, err := ResolveURL(test.ref, test.base)
		require.NoError(t, err)
		assert.Equal(t, test.exp, got)
	}
}

func TestPathToURL(t *testing.T) {
	u, err := PathToURL("index.html")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "file:///"))
	assert.True(t, strings.HasSuffix(u, "/index.html"))
}

func TestMath(t *testing.T) {
	assert.Equal(t, Fl(3), Maxs(1, 3, 2))
	assert.Equal(t, Fl(1), Mins(1, 3, 2))
	assert.Equal(t, Fl(6), Sum([]Fl{1, 2, 3}))
	assert.Equal(t, Fl(5), Clamp(7, 0, 5))
	assert.Equal(t, Fl(4), Clamp(2, 4, 3))
	assert.Equal(t, Fl(1.5), RoundPrec(1.4999999, 3))
}
