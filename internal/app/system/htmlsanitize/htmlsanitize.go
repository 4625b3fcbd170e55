// Package htmlsanitize cleans user-supplied HTML before it is stored.
//
// Article content and work descriptions keep a rich-text subset (UGC
// policy plus tables); comment bodies are reduced to plain text.
package htmlsanitize

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richOnce sync.Once
	rich     *bluemonday.Policy

	strictOnce sync.Once
	strict     *bluemonday.Policy
)

func richPolicy() *bluemonday.Policy {
	richOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowTables()
		p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
		p.AllowAttrs("class").OnElements("table", "thead", "tbody", "tr", "td", "th", "pre", "code")
		rich = p
	})
	return rich
}

func strictPolicy() *bluemonday.Policy {
	strictOnce.Do(func() {
		strict = bluemonday.StrictPolicy()
	})
	return strict
}

// Sanitize keeps safe formatting markup and drops scripts, event handlers,
// iframes, styles and javascript: URLs.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return richPolicy().Sanitize(s)
}

// StripTags removes all markup, leaving escaped text.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(strictPolicy().Sanitize(s))
}

// IsPlainText reports whether s contains no markup.
func IsPlainText(s string) bool {
	return !(strings.Contains(s, "<") && strings.Contains(s, ">"))
}
