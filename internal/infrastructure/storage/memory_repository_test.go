package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendPress/internal/domain"
)

type tickClock struct{ t time.Time }

func (c *tickClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func volume(v float64) *float64 { return &v }

func TestMemoryTopicDedupAndOrdering(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(nil)

	for _, c := range []domain.TopicCandidate{
		{Title: "Unranked"},
		{Title: "Small", SearchVolume: volume(10)},
		{Title: "Big", SearchVolume: volume(1000)},
	} {
		ok, err := repo.InsertTopicIfAbsent(ctx, domain.NewTopic("baidu", c))
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := repo.InsertTopicIfAbsent(ctx, domain.NewTopic("baidu", domain.TopicCandidate{Title: "  BIG "}))
	require.NoError(t, err)
	assert.False(t, ok, "normalized duplicate within one source")

	ok, err = repo.InsertTopicIfAbsent(ctx, domain.NewTopic("zhihu", domain.TopicCandidate{Title: "Big"}))
	require.NoError(t, err)
	assert.True(t, ok, "same title from another source is distinct")

	topics, err := repo.ListUnprocessedTopics(ctx, 10)
	require.NoError(t, err)
	require.Len(t, topics, 4)
	assert.Equal(t, "Big", topics[0].Title)
	assert.Equal(t, "Small", topics[1].Title)
	assert.Nil(t, topics[3].SearchVolume)

	require.NoError(t, repo.MarkTopicProcessed(ctx, topics[0].ID))
	topics, err = repo.ListUnprocessedTopics(ctx, 1)
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, "Small", topics[0].Title)

	assert.ErrorIs(t, repo.MarkTopicProcessed(ctx, 99), domain.ErrNotFound)
}

func TestMemoryArticleLifecycle(t *testing.T) {
	ctx := context.Background()
	clock := &tickClock{t: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	repo := NewMemoryRepository(clock.now)

	first, err := repo.CreateArticle(ctx, domain.Article{Title: "a", Slug: "a-1", Tags: []string{"Go"}})
	require.NoError(t, err)
	second, err := repo.CreateArticle(ctx, domain.Article{Title: "b", Slug: "b-1", Tags: []string{"Rust"}})
	require.NoError(t, err)

	_, err = repo.CreateArticle(ctx, domain.Article{Title: "dup", Slug: "a-1"})
	var perr *domain.PersistenceError
	assert.ErrorAs(t, err, &perr)

	drafts, err := repo.ListUnpublishedArticles(ctx, 10)
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, first.ID, drafts[0].ID)

	at := clock.now()
	require.NoError(t, repo.UpdateArticle(ctx, first.ID, domain.PublishUpdate("new body", at)))
	err = repo.UpdateArticle(ctx, first.ID, domain.PublishUpdate("again", at.Add(time.Hour)))
	assert.ErrorIs(t, err, domain.ErrAlreadyPublished)

	got, err := repo.GetArticleByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "new body", got.Content)
	require.NotNil(t, got.PublishedAt)
	assert.True(t, got.PublishedAt.Equal(at))

	require.NoError(t, repo.UpdateArticle(ctx, second.ID, domain.PublishUpdate("b body", at.Add(time.Minute))))
	published, err := repo.ListPublishedArticles(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, published, 2)
	assert.Equal(t, second.ID, published[0].ID, "newest first")

	page, err := repo.ListPublishedArticles(ctx, 10, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, first.ID, page[0].ID)

	assert.ErrorIs(t, repo.UpdateArticle(ctx, 404, domain.PublishUpdate("x", at)), domain.ErrNotFound)
}

func TestMemoryReaderQueries(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(nil)
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	for i, a := range []domain.Article{
		{Title: "go", Slug: "go", Category: domain.CategoryTech, Tags: []string{"Go", "Programming"}},
		{Title: "rust", Slug: "rust", Category: domain.CategoryTech, Tags: []string{"Programming"}},
		{Title: "money", Slug: "money", Category: domain.CategoryFinance, Tags: []string{"Finance"}},
		{Title: "draft", Slug: "draft", Category: domain.CategoryTech, Tags: []string{"Go"}},
	} {
		created, err := repo.CreateArticle(ctx, a)
		require.NoError(t, err)
		if a.Slug != "draft" {
			require.NoError(t, repo.UpdateArticle(ctx, created.ID, domain.PublishUpdate(a.Title, at.Add(time.Duration(i)*time.Minute))))
		}
	}

	related, err := repo.ListRelatedArticles(ctx, 1, []string{"Go", "Programming"}, 3)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, "rust", related[0].Slug)

	tech, err := repo.ListArticlesByCategory(ctx, "tech", 10)
	require.NoError(t, err)
	assert.Len(t, tech, 2)

	tagged, err := repo.ListArticlesByTag(ctx, "programming", 10)
	require.NoError(t, err)
	assert.Len(t, tagged, 2)

	bySlug, err := repo.GetArticleBySlug(ctx, "money")
	require.NoError(t, err)
	require.NoError(t, repo.IncrementViewCount(ctx, bySlug.ID))
	require.NoError(t, repo.IncrementViewCount(ctx, bySlug.ID))

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ArticleStats{TotalArticles: 4, PublishedArticles: 3, TotalViews: 2}, stats)

	_, err = repo.GetArticleBySlug(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
