package domain

import (
	"strings"
	"time"
)

// Category is one of the fixed article taxonomy values.
type Category string

const (
	CategoryTech      Category = "tech"
	CategoryFinance   Category = "finance"
	CategoryLifestyle Category = "lifestyle"
	CategoryEducation Category = "education"
	CategoryGeneral   Category = "general"
)

// Categories lists the taxonomy in classification order.
var Categories = []Category{CategoryTech, CategoryFinance, CategoryLifestyle, CategoryEducation, CategoryGeneral}

// Article is a generated content unit with a draft/published lifecycle.
type Article struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title" validate:"required,max=500"`
	Slug            string     `json:"slug" validate:"required,max=500"`
	Content         string     `json:"content" validate:"required"`
	Summary         string     `json:"summary" validate:"required"`
	Category        Category   `json:"category" validate:"required,oneof=tech finance lifestyle education general"`
	Tags            []string   `json:"tags" validate:"max=5,dive,required"`
	Keywords        []string   `json:"keywords" validate:"max=10,dive,required"`
	MetaTitle       string     `json:"meta_title" validate:"max=60"`
	MetaDescription string     `json:"meta_description" validate:"max=160"`
	ImageURL        string     `json:"image_url,omitempty" validate:"omitempty,url"`
	SourceURL       string     `json:"source_url,omitempty"`
	SourceType      string     `json:"source_type,omitempty"`
	WordCount       int        `json:"word_count" validate:"gte=0"`
	ViewCount       int64      `json:"view_count"`
	Published       bool       `json:"published"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ArticleUpdate carries the mutable subset of an article. Nil fields are left untouched.
type ArticleUpdate struct {
	Content     *string
	Published   *bool
	PublishedAt *time.Time
}

// PublishUpdate builds the single update that flips an article to published.
func PublishUpdate(content string, at time.Time) ArticleUpdate {
	published := true
	return ArticleUpdate{Content: &content, Published: &published, PublishedAt: &at}
}

// IsPublish reports whether the update sets the published flag.
func (u ArticleUpdate) IsPublish() bool {
	return u.Published != nil && *u.Published
}

// Empty reports whether the update carries no fields.
func (u ArticleUpdate) Empty() bool {
	return u.Content == nil && u.Published == nil && u.PublishedAt == nil
}

// Validate enforces published <=> published_at on the update itself.
func (u ArticleUpdate) Validate() error {
	if u.Published != nil && *u.Published != (u.PublishedAt != nil) {
		return &ValidationError{Fields: map[string]string{"published_at": "must be set exactly when published is true"}}
	}
	if u.Published == nil && u.PublishedAt != nil {
		return &ValidationError{Fields: map[string]string{"published": "published_at requires published"}}
	}
	return nil
}

// HasTag reports whether the article carries any of the given tags.
func (a Article) HasTag(tags []string) bool {
	for _, own := range a.Tags {
		for _, t := range tags {
			if strings.EqualFold(own, t) {
				return true
			}
		}
	}
	return false
}

// ArticleStats summarizes the article table for the serving layer.
type ArticleStats struct {
	TotalArticles     int64 `json:"total_articles" db:"total_articles"`
	PublishedArticles int64 `json:"published_articles" db:"published_articles"`
	TotalViews        int64 `json:"total_views" db:"total_views"`
}
