// Package render turns untrusted HTML-bearing fields (abstracts, bios,
// author credits) into safe markup or terminal text.
package render

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	boldMarker = regexp.MustCompile(`\*\*(.+?)\*\*`)
	lineBreak  = regexp.MustCompile(`\r\n|\r|\n`)
	blockEnd   = regexp.MustCompile(`(?i)<br\s*/?>|</p>`)
	blankRuns  = regexp.MustCompile(`\n{3,}`)

	inlineTags = []string{"strong", "u", "br", "p", "em", "b", "i", "span"}

	abstractPolicy = newAbstractPolicy()
	markupPolicy   = newMarkupPolicy()
	stripPolicy    = bluemonday.StrictPolicy()
)

func newAbstractPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(inlineTags...)
	return p
}

func newMarkupPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(inlineTags...)
	p.AllowStandardURLs()
	p.AllowAttrs("href").OnElements("a")
	return p
}

// Abstract converts the authoring shorthand (**bold**, line breaks) into
// HTML and keeps only inline formatting tags, with no attributes.
func Abstract(raw string) string {
	s := boldMarker.ReplaceAllString(raw, "<strong>$1</strong>")
	s = lineBreak.ReplaceAllString(s, "<br />")
	return abstractPolicy.Sanitize(s)
}

// Markup sanitizes stored HTML such as authorsHtml or member bios. Links
// survive when they use http, https or mailto.
func Markup(raw string) string {
	return markupPolicy.Sanitize(raw)
}

// PlainText strips every tag, keeping <br> and </p> as line breaks.
func PlainText(raw string) string {
	s := blockEnd.ReplaceAllString(raw, "\n")
	s = html.UnescapeString(stripPolicy.Sanitize(s))
	s = blankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
