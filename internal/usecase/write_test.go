package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"TrendPress/internal/domain"
)

type failingGenerator struct {
	inner   ArticleGenerator
	failFor string
}

func (g failingGenerator) Generate(ctx context.Context, topic domain.Topic) (domain.Article, error) {
	if topic.Title == g.failFor {
		return domain.Article{}, errors.New("generation exploded")
	}
	return g.inner.Generate(ctx, topic)
}

func newTestGenerator(clock *fixedClock) *Generator {
	return NewGenerator(GeneratorDeps{Clock: clock, WordCount: fixedWords(500), Logger: testLogger})
}

func TestWriteStageConcreteScenario(t *testing.T) {
	clock := newClock()
	store := newStore(clock)
	topic := seedTopic(store, "baidu", "X", nil)

	stage := NewWriteStage(WriteDeps{
		Topics:    store,
		Articles:  store,
		Generator: newTestGenerator(clock),
		Limiter:   rate.NewLimiter(rate.Inf, 1),
		Logger:    testLogger,
	})

	report, err := stage.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{Selected: 1, Succeeded: 1}, report)

	articles, err := store.ListUnpublishedArticles(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Regexp(t, regexp.MustCompile(`^x-[0-9a-z]+$`), articles[0].Slug)
	assert.Equal(t, domain.CategoryGeneral, articles[0].Category)
	assert.LessOrEqual(t, len(articles[0].Tags), 5)
	assert.False(t, articles[0].Published)
	assert.Nil(t, articles[0].PublishedAt)

	remaining, err := store.ListUnprocessedTopics(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, remaining)
	assert.True(t, store.Topics()[0].Processed)
	assert.Equal(t, topic.ID, store.Topics()[0].ID)
}

func TestWriteStageBatchBound(t *testing.T) {
	clock := newClock()
	store := newStore(clock)
	for i := range 100 {
		v := float64(i)
		seedTopic(store, "baidu", fmt.Sprintf("topic %d", i), &v)
	}

	stage := NewWriteStage(WriteDeps{Topics: store, Articles: store, Generator: newTestGenerator(clock), Batch: 10, Logger: testLogger})
	report, err := stage.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, report.Selected)
	assert.Equal(t, 10, report.Succeeded)

	remaining, err := store.ListUnprocessedTopics(context.Background(), 1000)
	require.NoError(t, err)
	assert.Len(t, remaining, 90)
	assert.Equal(t, "topic 89", remaining[0].Title, "highest volumes were drained first")
}

func TestWriteStageIsolatesTopicFailure(t *testing.T) {
	clock := newClock()
	store := newStore(clock)
	seedTopic(store, "baidu", "good one", nil)
	bad := seedTopic(store, "baidu", "bad one", nil)
	seedTopic(store, "baidu", "good two", nil)

	stage := NewWriteStage(WriteDeps{
		Topics:    store,
		Articles:  store,
		Generator: failingGenerator{inner: newTestGenerator(clock), failFor: "bad one"},
		Logger:    testLogger,
	})

	report, err := stage.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)

	remaining, err := store.ListUnprocessedTopics(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, bad.ID, remaining[0].ID)

	drafts, err := store.ListUnpublishedArticles(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, drafts, 2)
}
