package parser

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"

	"TrendPress/internal/domain"
	"TrendPress/internal/scanner"
)

// RSSScanner reads topic candidates from an RSS or Atom feed.
type RSSScanner struct {
	client *http.Client
}

var _ scanner.Scanner = (*RSSScanner)(nil)

// NewRSSScanner wires an HTTP client for feed retrieval.
func NewRSSScanner(client *http.Client) *RSSScanner {
	return &RSSScanner{client: defaultClient(client)}
}

// Name identifies the strategy inside the registry.
func (s *RSSScanner) Name() string {
	return "rss"
}

// Scan parses the feed and turns its newest items into candidates.
func (s *RSSScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.TopicCandidate, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("no feed url provided for source %s", req.Source)
	}

	fp := gofeed.NewParser()
	fp.Client = s.client
	fp.UserAgent = userAgent

	feed, err := fp.ParseURLWithContext(req.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	limit := limitOf(req.Limit)
	topics := make([]domain.TopicCandidate, 0, min(limit, len(feed.Items)))
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		keyword := title
		if len(item.Categories) > 0 && req.Options["keyword"] == "category" {
			keyword = strings.TrimSpace(item.Categories[0])
		}
		topics = append(topics, domain.TopicCandidate{
			Title:   title,
			Keyword: keyword,
			URL:     item.Link,
		})
		if len(topics) == limit {
			break
		}
	}
	return topics, nil
}
