package utils

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// PathToURL returns the file:// URL of the (possibly relative) path.
func PathToURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %s: %w", path, err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

// ResolveURL resolves ref against base. An empty base
// returns ref unchanged; data: URLs are never resolved.
func ResolveURL(ref, base string) (string, error) {
	if base == "" || strings.HasPrefix(ref, "data:") {
		return ref, nil
	}
	baseU, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base url %s: %w", base, err)
	}
	refU, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid url %s: %w", ref, err)
	}
	return baseU.ResolveReference(refU).String(), nil
}
