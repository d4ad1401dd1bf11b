package content

import (
	"fmt"
	"html"
	"strings"

	"TrendPress/internal/domain"
)

const closingMarker = "</article>"

// AffiliateProduct is a product name rewritten into an outbound link.
type AffiliateProduct struct {
	Name string
	Link string
}

// DefaultAffiliates is the fixed product set.
var DefaultAffiliates = []AffiliateProduct{
	{Name: "ChatGPT", Link: "https://chat.openai.com"},
	{Name: "Notion", Link: "https://notion.so"},
	{Name: "Midjourney", Link: "https://midjourney.com"},
}

// AddAffiliateLinks rewrites every literal product name occurrence into a nofollow link.
func AddAffiliateLinks(body string, products []AffiliateProduct) string {
	if len(products) == 0 {
		return body
	}
	pairs := make([]string, 0, len(products)*2)
	for _, p := range products {
		pairs = append(pairs, p.Name,
			fmt.Sprintf(`<a href="%s" target="_blank" rel="nofollow">%s</a>`, p.Link, p.Name))
	}
	// A single Replacer pass keeps a replaced link from being rewritten again.
	return strings.NewReplacer(pairs...).Replace(body)
}

// RelatedBlock renders the related-reading list.
func RelatedBlock(related []domain.Article) string {
	var b strings.Builder
	b.WriteString("\n<div class=\"related-articles\">\n<h3>Related reading</h3>\n<ul>\n")
	for _, r := range related {
		fmt.Fprintf(&b, "<li><a href=\"/article/%s\">%s</a></li>\n", html.EscapeString(r.Slug), html.EscapeString(r.Title))
	}
	b.WriteString("</ul>\n</div>\n")
	return b.String()
}

// InjectRelated inserts the related-reading block immediately before the closing
// content marker, or appends it when the marker is missing.
func InjectRelated(body string, related []domain.Article) string {
	if len(related) == 0 {
		return body
	}
	block := RelatedBlock(related)
	idx := strings.LastIndex(body, closingMarker)
	if idx < 0 {
		return body + block
	}
	return body[:idx] + block + body[idx:]
}
