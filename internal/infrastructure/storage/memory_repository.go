package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"TrendPress/internal/domain"
	"TrendPress/internal/ports"
)

// MemoryRepository keeps topics and articles in process memory. It backs the
// memory database driver and the stage tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	now      func() time.Time
	topics   []domain.Topic
	articles []domain.Article
	nextID   struct{ topic, article int64 }
}

var (
	_ ports.TopicStore    = (*MemoryRepository)(nil)
	_ ports.ArticleStore  = (*MemoryRepository)(nil)
	_ ports.ArticleReader = (*MemoryRepository)(nil)
)

// NewMemoryRepository returns an empty store. A nil now defaults to time.Now.
func NewMemoryRepository(now func() time.Time) *MemoryRepository {
	if now == nil {
		now = time.Now
	}
	return &MemoryRepository{now: now}
}

// InsertTopicIfAbsent stores the topic unless (source, dedup key) is already present.
func (m *MemoryRepository) InsertTopicIfAbsent(_ context.Context, topic domain.Topic) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if topic.DedupKey == "" {
		topic.DedupKey = domain.DedupKey(topic.Title)
	}
	for _, t := range m.topics {
		if t.Source == topic.Source && t.DedupKey == topic.DedupKey {
			return false, nil
		}
	}

	m.nextID.topic++
	topic.ID = m.nextID.topic
	topic.Processed = false
	topic.CreatedAt = m.now()
	m.topics = append(m.topics, topic)
	return true, nil
}

// ListUnprocessedTopics orders by search volume descending with unranked topics last.
func (m *MemoryRepository) ListUnprocessedTopics(_ context.Context, limit int) ([]domain.Topic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.Topic
	for _, t := range m.topics {
		if !t.Processed {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].SearchVolume, out[j].SearchVolume
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
	return capTopics(out, limit), nil
}

// MarkTopicProcessed flips the processed flag.
func (m *MemoryRepository) MarkTopicProcessed(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.topics {
		if m.topics[i].ID == id {
			m.topics[i].Processed = true
			return nil
		}
	}
	return fmt.Errorf("topic %d: %w", id, domain.ErrNotFound)
}

// Topics returns a snapshot of every stored topic in insertion order.
func (m *MemoryRepository) Topics() []domain.Topic {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Topic(nil), m.topics...)
}

// CreateArticle stores a new draft. Slugs are unique.
func (m *MemoryRepository) CreateArticle(_ context.Context, article domain.Article) (domain.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.articles {
		if a.Slug == article.Slug {
			return domain.Article{}, &domain.PersistenceError{
				Op:  "create article",
				Err: fmt.Errorf("duplicate slug %q", article.Slug),
			}
		}
	}

	m.nextID.article++
	now := m.now()
	article.ID = m.nextID.article
	article.Published = false
	article.PublishedAt = nil
	article.CreatedAt = now
	article.UpdatedAt = now
	article.Tags = append([]string(nil), article.Tags...)
	article.Keywords = append([]string(nil), article.Keywords...)
	m.articles = append(m.articles, article)
	return article, nil
}

// ListUnpublishedArticles returns drafts in creation order.
func (m *MemoryRepository) ListUnpublishedArticles(_ context.Context, limit int) ([]domain.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := m.filter(func(a domain.Article) bool { return !a.Published })
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return capArticles(out, 0, limit), nil
}

// UpdateArticle applies a partial update. Publishing an already published
// article fails with domain.ErrAlreadyPublished.
func (m *MemoryRepository) UpdateArticle(_ context.Context, id int64, update domain.ArticleUpdate) error {
	if err := update.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.index(id)
	if idx < 0 {
		return fmt.Errorf("article %d: %w", id, domain.ErrNotFound)
	}
	if update.Empty() {
		return nil
	}

	a := &m.articles[idx]
	if update.IsPublish() && a.Published {
		return fmt.Errorf("article %d: %w", id, domain.ErrAlreadyPublished)
	}
	if update.Content != nil {
		a.Content = *update.Content
	}
	if update.Published != nil {
		a.Published = *update.Published
		a.PublishedAt = nil
		if update.PublishedAt != nil {
			at := *update.PublishedAt
			a.PublishedAt = &at
		}
	}
	a.UpdatedAt = m.now()
	return nil
}

// ListPublishedArticles returns published articles newest first.
func (m *MemoryRepository) ListPublishedArticles(_ context.Context, limit, offset int) ([]domain.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return capArticles(m.published(func(domain.Article) bool { return true }), offset, limit), nil
}

// ListRelatedArticles returns other published articles sharing a tag.
func (m *MemoryRepository) ListRelatedArticles(_ context.Context, id int64, tags []string, limit int) ([]domain.Article, error) {
	if len(tags) == 0 || limit <= 0 {
		return nil, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := m.published(func(a domain.Article) bool {
		return a.ID != id && a.HasTag(tags)
	})
	return capArticles(out, 0, limit), nil
}

// ListArticlesByCategory returns published articles of one category.
func (m *MemoryRepository) ListArticlesByCategory(_ context.Context, category string, limit int) ([]domain.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := m.published(func(a domain.Article) bool { return string(a.Category) == category })
	return capArticles(out, 0, limit), nil
}

// ListArticlesByTag returns published articles carrying the tag.
func (m *MemoryRepository) ListArticlesByTag(_ context.Context, tag string, limit int) ([]domain.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := m.published(func(a domain.Article) bool { return a.HasTag([]string{tag}) })
	return capArticles(out, 0, limit), nil
}

// GetArticleByID loads one article.
func (m *MemoryRepository) GetArticleByID(_ context.Context, id int64) (domain.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if idx := m.index(id); idx >= 0 {
		return m.articles[idx], nil
	}
	return domain.Article{}, fmt.Errorf("article %d: %w", id, domain.ErrNotFound)
}

// GetArticleBySlug loads one article by slug.
func (m *MemoryRepository) GetArticleBySlug(_ context.Context, slug string) (domain.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, a := range m.articles {
		if a.Slug == slug {
			return a, nil
		}
	}
	return domain.Article{}, fmt.Errorf("article %q: %w", slug, domain.ErrNotFound)
}

// IncrementViewCount bumps the view counter.
func (m *MemoryRepository) IncrementViewCount(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.index(id)
	if idx < 0 {
		return fmt.Errorf("article %d: %w", id, domain.ErrNotFound)
	}
	m.articles[idx].ViewCount++
	return nil
}

// Stats summarizes article counts and views.
func (m *MemoryRepository) Stats(_ context.Context) (domain.ArticleStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var stats domain.ArticleStats
	for _, a := range m.articles {
		stats.TotalArticles++
		stats.TotalViews += a.ViewCount
		if a.Published {
			stats.PublishedArticles++
		}
	}
	return stats, nil
}

func (m *MemoryRepository) index(id int64) int {
	for i := range m.articles {
		if m.articles[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *MemoryRepository) filter(keep func(domain.Article) bool) []domain.Article {
	var out []domain.Article
	for _, a := range m.articles {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func (m *MemoryRepository) published(keep func(domain.Article) bool) []domain.Article {
	out := m.filter(func(a domain.Article) bool { return a.Published && keep(a) })
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := out[i].PublishedAt, out[j].PublishedAt
		if ai.Equal(*aj) {
			return out[i].ID > out[j].ID
		}
		return ai.After(*aj)
	})
	return out
}

func capTopics(in []domain.Topic, limit int) []domain.Topic {
	if limit >= 0 && len(in) > limit {
		return in[:limit]
	}
	return in
}

func capArticles(in []domain.Article, offset, limit int) []domain.Article {
	if offset > 0 {
		if offset >= len(in) {
			return nil
		}
		in = in[offset:]
	}
	if limit >= 0 && len(in) > limit {
		return in[:limit]
	}
	return in
}

