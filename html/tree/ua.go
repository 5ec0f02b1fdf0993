package tree

import (
	_ "embed"
	"strings"

	pa "github.com/benoitkugler/boxlayout/css/parser"
	"github.com/benoitkugler/boxlayout/logger"
)

// UserAgent maps a tag name to its default declarations.
// Only type selectors are supported.
type UserAgent map[string][]pa.Declaration

var (
	// Html5UA is a subset of the HTML5 user agent style sheet.
	Html5UA UserAgent

	// TestUA only sets display values, so that
	// tests control every margin and padding.
	TestUA UserAgent

	//go:embed html5_ua.css
	html5UACSS string

	//go:embed tests_ua.css
	testUACSS string
)

func init() {
	Html5UA = ParseUserAgent(html5UACSS)
	TestUA = ParseUserAgent(testUACSS)
}

// ParseUserAgent parses rules of the form
//
//	tag1, tag2 { declarations }
//
// Rules for the same tag are concatenated in order.
func ParseUserAgent(css string) UserAgent {
	out := UserAgent{}
	for _, rule := range strings.Split(css, "}") {
		selectors, body, ok := strings.Cut(rule, "{")
		if !ok {
			continue
		}
		decls, errs := pa.ParseDeclarationList(body)
		for _, err := range errs {
			logger.WarningLogger.Warnf("Invalid user agent declaration: %s", err)
		}
		for _, tag := range strings.Split(selectors, ",") {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" {
				continue
			}
			out[tag] = append(out[tag], decls...)
		}
	}
	return out
}
