package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"TrendPress/internal/content"
	"TrendPress/internal/domain"
	"TrendPress/internal/metrics"
	"TrendPress/internal/ports"
)

const (
	defaultPublishBatch = 5
	defaultRelatedLimit = 3
)

// PublishDeps wires the publish stage. Notifier is optional.
type PublishDeps struct {
	Articles     ports.ArticleStore
	Clock        ports.Clock
	Limiter      ports.Limiter
	Notifier     ports.Notifier
	Batch        int
	RelatedLimit int
	SiteURL      string
	Logger       *slog.Logger
}

// PublishStage enriches and publishes the oldest drafts.
type PublishStage struct {
	articles     ports.ArticleStore
	clock        ports.Clock
	limiter      ports.Limiter
	notifier     ports.Notifier
	batch        int
	relatedLimit int
	siteURL      string
	logger       *slog.Logger
}

var _ Stage = (*PublishStage)(nil)

// NewPublishStage constructs the publish stage.
func NewPublishStage(deps PublishDeps) *PublishStage {
	s := &PublishStage{
		articles:     deps.Articles,
		clock:        deps.Clock,
		limiter:      deps.Limiter,
		notifier:     deps.Notifier,
		batch:        deps.Batch,
		relatedLimit: deps.RelatedLimit,
		siteURL:      strings.TrimRight(deps.SiteURL, "/"),
		logger:       deps.Logger,
	}
	if s.clock == nil {
		s.clock = SystemClock{}
	}
	if s.batch <= 0 {
		s.batch = defaultPublishBatch
	}
	if s.relatedLimit <= 0 {
		s.relatedLimit = defaultRelatedLimit
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Name implements Stage.
func (s *PublishStage) Name() string { return StagePublish }

// Run publishes drafts oldest first. Only unpublished articles are selected, so
// related-reading enrichment happens once per article.
func (s *PublishStage) Run(ctx context.Context) (Report, error) {
	drafts, err := s.articles.ListUnpublishedArticles(ctx, s.batch)
	if err != nil {
		return Report{}, fmt.Errorf("list unpublished articles: %w", err)
	}

	report := Report{Selected: len(drafts)}
	if len(drafts) == 0 {
		s.logger.Info("no articles to publish")
		return report, nil
	}

	var published []domain.Article
	for _, article := range drafts {
		if err := wait(ctx, s.limiter); err != nil {
			return report, err
		}

		err := s.publish(ctx, article)
		switch {
		case err == nil:
			report.Succeeded++
			published = append(published, article)
			metrics.RecordItem(StagePublish, "published")
			s.logger.Info("article published", "article_id", article.ID, "slug", article.Slug)
		case errors.Is(err, domain.ErrAlreadyPublished):
			report.Skipped++
			metrics.RecordItem(StagePublish, "already_published")
			s.logger.Info("article already published", "article_id", article.ID)
		case ctx.Err() != nil:
			return report, ctx.Err()
		default:
			report.Failed++
			metrics.RecordItem(StagePublish, "failed")
			s.logger.Error("publish article failed", "article_id", article.ID, "error", err)
		}
	}

	s.notify(ctx, published)
	return report, nil
}

func (s *PublishStage) publish(ctx context.Context, article domain.Article) error {
	related, err := s.articles.ListRelatedArticles(ctx, article.ID, article.Tags, s.relatedLimit)
	if err != nil {
		return fmt.Errorf("list related: %w", err)
	}

	body := content.InjectRelated(article.Content, related)
	return s.articles.UpdateArticle(ctx, article.ID, domain.PublishUpdate(body, s.clock.Now()))
}

func (s *PublishStage) notify(ctx context.Context, published []domain.Article) {
	if s.notifier == nil || len(published) == 0 {
		return
	}
	if err := s.notifier.PublishDigest(ctx, buildDigestMessage(s.siteURL, published)); err != nil {
		s.logger.Warn("publish digest failed", "error", err)
	}
}

func buildDigestMessage(siteURL string, articles []domain.Article) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Published %d article(s)\n\n", len(articles))
	for _, a := range articles {
		fmt.Fprintf(&b, "- %s\n%s/article/%s\n\n", a.Title, siteURL, a.Slug)
	}
	return strings.TrimRight(b.String(), "\n")
}
