// Package content holds the deterministic, backend-independent steps of article generation.
package content

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy = bluemonday.StrictPolicy()

	markdownHeader = regexp.MustCompile(`(?m)^#+\s*`)
	// Han runs of 2-6 runes or Latin words of 4-20 letters.
	keywordToken = regexp.MustCompile(`\p{Han}{2,6}|[A-Za-z]{4,20}`)
	hanRune      = regexp.MustCompile(`\p{Han}`)
	latinWord    = regexp.MustCompile(`[a-zA-Z]+`)
)

// Sanitize strips any markup from backend output and escapes it for HTML embedding.
func Sanitize(text string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(text))
}

// Plain strips markup and returns unescaped text, for titles and summaries.
func Plain(text string) string {
	return html.UnescapeString(Sanitize(text))
}

// PlainText removes tags from an HTML body, keeping adjacent elements' text apart.
func PlainText(body string) string {
	return strictPolicy.Sanitize(strings.ReplaceAll(body, "<", " <"))
}

// Format assembles backend text into the article markup. The trailing
// </article> is the closing content marker used by link enrichment.
func Format(raw, title string) string {
	text := markdownHeader.ReplaceAllString(raw, "")
	text = strings.ReplaceAll(text, "**", "")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if utf8.RuneCountInString(trimmed) < 50 && strings.ContainsAny(trimmed, ":：") {
			lines[i] = "<h2>" + trimmed + "</h2>"
		}
	}
	text = strings.Join(lines, "\n")
	text = strings.ReplaceAll(text, "\n\n", "</p>\n<p>")

	return "<h1>" + html.EscapeString(title) + "</h1>\n<article>\n<p>" + text + "</p>\n</article>"
}

// CountWords counts Han runes plus Latin words of the tag-stripped body.
func CountWords(body string) int {
	text := PlainText(body)
	return len(hanRune.FindAllStringIndex(text, -1)) + len(latinWord.FindAllStringIndex(text, -1))
}

// Truncate caps s at n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// Prefix returns at most n runes of the tag-stripped body, used as summary input.
func Prefix(body string, n int) string {
	return Truncate(PlainText(body), n)
}
