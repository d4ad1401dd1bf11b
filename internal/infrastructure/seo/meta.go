package seo

import (
	"strings"
	"time"

	"TrendPress/internal/domain"
)

// MetaTags is the head metadata rendered for an article page.
type MetaTags struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Keywords      string `json:"keywords"`
	OGTitle       string `json:"og:title"`
	OGDescription string `json:"og:description"`
	OGType        string `json:"og:type"`
	OGURL         string `json:"og:url"`
	OGImage       string `json:"og:image,omitempty"`
	Canonical     string `json:"canonical"`
}

// ArticleURL is the public page of an article.
func ArticleURL(siteURL, slug string) string {
	return strings.TrimRight(siteURL, "/") + "/article/" + slug
}

// Meta builds head metadata, preferring the stored meta fields.
func Meta(a domain.Article, siteURL, siteName string) MetaTags {
	title := a.MetaTitle
	if title == "" {
		title = a.Title
	}
	if siteName != "" {
		title += " | " + siteName
	}
	desc := a.MetaDescription
	if desc == "" {
		desc = a.Summary
	}
	link := ArticleURL(siteURL, a.Slug)

	return MetaTags{
		Title:         title,
		Description:   desc,
		Keywords:      strings.Join(a.Keywords, ","),
		OGTitle:       a.Title,
		OGDescription: desc,
		OGType:        "article",
		OGURL:         link,
		OGImage:       a.ImageURL,
		Canonical:     link,
	}
}

// Schema returns the schema.org Article object for JSON-LD embedding.
func Schema(a domain.Article, siteURL, siteName string) map[string]any {
	published := a.CreatedAt
	if a.PublishedAt != nil {
		published = *a.PublishedAt
	}
	org := map[string]any{"@type": "Organization", "name": siteName}

	schema := map[string]any{
		"@context":         "https://schema.org",
		"@type":            "Article",
		"headline":         a.Title,
		"description":      a.Summary,
		"datePublished":    published.UTC().Format(time.RFC3339),
		"dateModified":     a.UpdatedAt.UTC().Format(time.RFC3339),
		"author":           org,
		"publisher":        org,
		"keywords":         strings.Join(a.Keywords, ","),
		"articleSection":   string(a.Category),
		"wordCount":        a.WordCount,
		"mainEntityOfPage": ArticleURL(siteURL, a.Slug),
	}
	if a.ImageURL != "" {
		schema["image"] = a.ImageURL
	}
	return schema
}
