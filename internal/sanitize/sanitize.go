// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package sanitize strips executable markup from user supplied text and
// renders the small inline markup set used by submissions and posts.
//
// Sanitize is best effort: its output is not guaranteed to be valid HTML,
// only free of script blocks, embedded frames, event handler attributes,
// and javascript: or data:text/html URIs.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var stripRules = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script\b.*?</script\s*>`),
	regexp.MustCompile(`(?is)<iframe\b.*?</iframe\s*>`),
	regexp.MustCompile(`(?is)<style\b.*?</style\s*>`),
	regexp.MustCompile(`(?is)<object\b.*?</object\s*>`),
	regexp.MustCompile(`(?is)<embed\b.*?</embed\s*>`),
	// unterminated or orphaned tags of the same elements
	regexp.MustCompile(`(?i)</?(script|iframe|style|object|embed)[^>]*>?`),
	regexp.MustCompile(`(?i)<link[^>]*javascript:[^>]*>`),
	regexp.MustCompile(`(?i)<meta[^>]*http-equiv\s*=\s*["']refresh["'][^>]*>`),
	regexp.MustCompile(`(?i)\s*on\w+\s*=\s*["'][^"']*["']`),
	regexp.MustCompile(`(?i)\s*on\w+\s*=\s*[^\s>]*`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)data:text/html`),
}

// Sanitize removes dangerous markup from raw. Rules are reapplied until the
// text stops changing, so removals cannot splice a new match together
// (for example "javajavascript:script:").
func Sanitize(raw string) string {
	out := raw
	for {
		next := out
		for _, re := range stripRules {
			next = re.ReplaceAllString(next, "")
		}
		if next == out {
			return out
		}
		out = next
	}
}

// Changed reports whether Sanitize would modify s.
func Changed(s string) bool {
	return Sanitize(s) != s
}

var (
	htmlEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#x27;",
	)

	boldRe   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe = regexp.MustCompile(`\*(.*?)\*`)
	codeRe   = regexp.MustCompile("`(.*?)`")

	inlinePolicy = newInlinePolicy()
)

func newInlinePolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("strong", "em", "code", "br")
	return p
}

// EscapeAndLightMarkup escapes text, converts **bold**, *italic*, `code` and
// line breaks to HTML, and passes the result through Sanitize and an
// allow-list that admits only those four elements.
func EscapeAndLightMarkup(text string) string {
	if text == "" {
		return ""
	}

	html := htmlEscaper.Replace(text)
	html = strings.ReplaceAll(html, "\r\n", "\n")
	html = strings.ReplaceAll(html, "\n", "<br/>")
	html = boldRe.ReplaceAllString(html, "<strong>$1</strong>")
	html = italicRe.ReplaceAllString(html, "<em>$1</em>")
	html = codeRe.ReplaceAllString(html, "<code>$1</code>")

	return inlinePolicy.Sanitize(Sanitize(html))
}
