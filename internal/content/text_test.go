package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"TrendPress/internal/domain"
)

func TestFormat(t *testing.T) {
	t.Parallel()

	raw := "## Intro\nFirst paragraph with **bold**.\n\nStep one: setup\nBody text"
	got := Format(raw, "My Title")

	assert.True(t, strings.HasPrefix(got, "<h1>My Title</h1>\n<article>\n<p>"))
	assert.True(t, strings.HasSuffix(got, "</p>\n</article>"))
	assert.Contains(t, got, "<h2>Step one: setup</h2>")
	assert.Contains(t, got, "</p>\n<p>")
	assert.NotContains(t, got, "**")
	assert.NotContains(t, got, "##")
}

func TestSanitizeStripsMarkup(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hello world", Sanitize(" <script>x()</script><b>hello</b> world "))
}

func TestFormatEscapesTitle(t *testing.T) {
	t.Parallel()

	got := Format("body", "Tom & Jerry <3")
	assert.True(t, strings.HasPrefix(got, "<h1>Tom &amp; Jerry &lt;3</h1>"))
}

func TestPlain(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Tom & Jerry's", Plain("<b>Tom & Jerry's</b>"))
}

func TestCountWords(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 8, CountWords("<h1>Go tips</h1><article><p>人工智能 is fun</p></article>"))
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "人工", Truncate("人工智能", 2))
	assert.Equal(t, "abc", Truncate("abc", 60))
	assert.Equal(t, "", Truncate("abc", 0))
}

func TestAddAffiliateLinks(t *testing.T) {
	t.Parallel()

	got := AddAffiliateLinks("Use ChatGPT and Notion. ChatGPT again.", DefaultAffiliates)

	assert.Equal(t, 2, strings.Count(got, `href="https://chat.openai.com"`))
	assert.Equal(t, 1, strings.Count(got, `href="https://notion.so"`))
	assert.Contains(t, got, `rel="nofollow"`)
}

func TestInjectRelated(t *testing.T) {
	t.Parallel()

	body := "<h1>T</h1>\n<article>\n<p>x</p>\n</article>"
	related := []domain.Article{{Slug: "a-1", Title: "A"}, {Slug: "b-2", Title: "B & C"}}

	got := InjectRelated(body, related)

	assert.Equal(t, 1, strings.Count(got, "related-articles"))
	assert.True(t, strings.HasSuffix(got, "</div>\n</article>"))
	assert.Contains(t, got, `<a href="/article/a-1">A</a>`)
	assert.Contains(t, got, "B &amp; C")
	assert.Equal(t, body, InjectRelated(body, nil))
}

func TestInjectRelatedWithoutMarker(t *testing.T) {
	t.Parallel()

	got := InjectRelated("<p>x</p>", []domain.Article{{Slug: "a", Title: "A"}})
	assert.True(t, strings.HasPrefix(got, "<p>x</p>\n<div"))
}
