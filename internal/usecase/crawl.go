package usecase

import (
	"context"
	"log/slog"
	"time"

	"TrendPress/internal/domain"
	"TrendPress/internal/metrics"
	"TrendPress/internal/ports"
	"TrendPress/internal/validation"
)

// CrawlDeps wires the crawl stage.
type CrawlDeps struct {
	Sources   []ports.TopicSource
	Topics    ports.TopicStore
	Limiter   ports.Limiter
	Validator *validation.Validator
	Timeout   time.Duration
	Logger    *slog.Logger
}

// CrawlStage fans out over the configured sources in order and persists candidates.
type CrawlStage struct {
	sources   []ports.TopicSource
	topics    ports.TopicStore
	limiter   ports.Limiter
	validator *validation.Validator
	timeout   time.Duration
	logger    *slog.Logger
}

var _ Stage = (*CrawlStage)(nil)

// NewCrawlStage constructs the crawl stage.
func NewCrawlStage(deps CrawlDeps) *CrawlStage {
	s := &CrawlStage{
		sources:   deps.Sources,
		topics:    deps.Topics,
		limiter:   deps.Limiter,
		validator: deps.Validator,
		timeout:   deps.Timeout,
		logger:    deps.Logger,
	}
	if s.validator == nil {
		s.validator = validation.New()
	}
	if s.timeout <= 0 {
		s.timeout = 10 * time.Second
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Name implements Stage.
func (s *CrawlStage) Name() string { return StageCrawl }

// Run fetches every source once. A failing source is logged and skipped.
func (s *CrawlStage) Run(ctx context.Context) (Report, error) {
	var report Report
	for _, src := range s.sources {
		if err := wait(ctx, s.limiter); err != nil {
			return report, err
		}

		candidates, err := s.fetch(ctx, src)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.Failed++
			metrics.RecordItem(StageCrawl, "source_failed")
			s.logger.Error("source fetch failed", "source", src.Name(), "error", &domain.SourceError{Source: src.Name(), Err: err})
			continue
		}

		saved := s.persist(ctx, src.Name(), candidates, &report)
		s.logger.Info("source crawled", "source", src.Name(), "candidates", len(candidates), "inserted", saved)
	}
	return report, nil
}

func (s *CrawlStage) fetch(ctx context.Context, src ports.TopicSource) ([]domain.TopicCandidate, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return src.Fetch(fetchCtx)
}

func (s *CrawlStage) persist(ctx context.Context, source string, candidates []domain.TopicCandidate, report *Report) int {
	saved := 0
	for _, c := range candidates {
		report.Selected++
		topic := domain.NewTopic(source, c)
		if err := s.validator.Topic(topic); err != nil {
			report.Failed++
			metrics.RecordItem(StageCrawl, "invalid")
			s.logger.Warn("topic rejected", "source", source, "title", topic.Title, "error", err)
			continue
		}

		inserted, err := s.topics.InsertTopicIfAbsent(ctx, topic)
		switch {
		case err != nil:
			report.Failed++
			metrics.RecordItem(StageCrawl, "failed")
			s.logger.Error("persist topic failed", "source", source, "title", topic.Title, "error", err)
		case inserted:
			saved++
			report.Succeeded++
			metrics.RecordItem(StageCrawl, "inserted")
		default:
			report.Skipped++
			metrics.RecordItem(StageCrawl, "duplicate")
		}
	}
	return saved
}
