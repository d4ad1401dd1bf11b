package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"TrendPress/internal/domain"
	"TrendPress/internal/metrics"
	"TrendPress/internal/ports"
)

const defaultWriteBatch = 10

// WriteDeps wires the write stage.
type WriteDeps struct {
	Topics    ports.TopicStore
	Articles  ports.ArticleStore
	Generator ArticleGenerator
	Limiter   ports.Limiter
	Batch     int
	Logger    *slog.Logger
}

// WriteStage turns a bounded batch of unprocessed topics into draft articles.
type WriteStage struct {
	topics    ports.TopicStore
	articles  ports.ArticleStore
	generator ArticleGenerator
	limiter   ports.Limiter
	batch     int
	logger    *slog.Logger
}

var _ Stage = (*WriteStage)(nil)

// NewWriteStage constructs the write stage.
func NewWriteStage(deps WriteDeps) *WriteStage {
	s := &WriteStage{
		topics:    deps.Topics,
		articles:  deps.Articles,
		generator: deps.Generator,
		limiter:   deps.Limiter,
		batch:     deps.Batch,
		logger:    deps.Logger,
	}
	if s.batch <= 0 {
		s.batch = defaultWriteBatch
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Name implements Stage.
func (s *WriteStage) Name() string { return StageWrite }

// Run processes topics sequentially; a failed topic stays unprocessed for the next run.
func (s *WriteStage) Run(ctx context.Context) (Report, error) {
	topics, err := s.topics.ListUnprocessedTopics(ctx, s.batch)
	if err != nil {
		return Report{}, fmt.Errorf("list unprocessed topics: %w", err)
	}

	report := Report{Selected: len(topics)}
	s.logger.Info("write batch selected", "topics", len(topics))

	for _, topic := range topics {
		if err := wait(ctx, s.limiter); err != nil {
			return report, err
		}

		article, err := s.process(ctx, topic)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.Failed++
			metrics.RecordItem(StageWrite, "failed")
			s.logger.Error("write topic failed", "topic_id", topic.ID, "title", topic.Title, "error", err)
			continue
		}

		report.Succeeded++
		metrics.RecordItem(StageWrite, "created")
		s.logger.Info("article saved", "topic_id", topic.ID, "article_id", article.ID, "slug", article.Slug)
	}
	return report, nil
}

func (s *WriteStage) process(ctx context.Context, topic domain.Topic) (domain.Article, error) {
	article, err := s.generator.Generate(ctx, topic)
	if err != nil {
		return domain.Article{}, fmt.Errorf("generate: %w", err)
	}

	created, err := s.articles.CreateArticle(ctx, article)
	if err != nil {
		return domain.Article{}, fmt.Errorf("create article: %w", err)
	}

	if err := s.topics.MarkTopicProcessed(ctx, topic.ID); err != nil {
		return created, fmt.Errorf("mark topic processed (article %d saved): %w", created.ID, err)
	}
	return created, nil
}
