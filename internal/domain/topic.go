package domain

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Competition is an informational difficulty tier of a topic keyword.
type Competition string

const (
	CompetitionLow    Competition = "low"
	CompetitionMedium Competition = "medium"
	CompetitionHigh   Competition = "high"
)

// TopicCandidate is the raw shape returned by a source adapter.
type TopicCandidate struct {
	Title        string
	Keyword      string
	SearchVolume *float64
	Competition  Competition
	URL          string
}

// Topic is a discovered candidate subject for article generation.
type Topic struct {
	ID           int64       `json:"id"`
	Title        string      `json:"title" validate:"required,max=500"`
	Keyword      string      `json:"keyword" validate:"required,max=200"`
	SearchVolume *float64    `json:"search_volume,omitempty" validate:"omitempty,gte=0"`
	Competition  Competition `json:"competition" validate:"required,oneof=low medium high"`
	Source       string      `json:"source" validate:"required,max=100"`
	URL          string      `json:"url,omitempty" validate:"max=500"`
	DedupKey     string      `json:"-" validate:"required"`
	Processed    bool        `json:"processed"`
	CreatedAt    time.Time   `json:"created_at"`
}

// NewTopic normalizes a candidate fetched from the named source.
// Keyword defaults to the title, competition to medium.
func NewTopic(source string, c TopicCandidate) Topic {
	title := strings.TrimSpace(c.Title)
	keyword := strings.TrimSpace(c.Keyword)
	if keyword == "" {
		keyword = title
	}
	competition := c.Competition
	if competition == "" {
		competition = CompetitionMedium
	}
	return Topic{
		Title:        title,
		Keyword:      keyword,
		SearchVolume: c.SearchVolume,
		Competition:  competition,
		Source:       source,
		URL:          strings.TrimSpace(c.URL),
		DedupKey:     DedupKey(title),
	}
}

// DedupKey is the normalized title used together with the source as the topic uniqueness key.
func DedupKey(title string) string {
	normalized := norm.NFKC.String(strings.ToLower(title))
	return strings.Join(strings.Fields(normalized), " ")
}
