package ports

import (
	"context"
	"time"

	"TrendPress/internal/domain"
)

// TopicSource fetches trending candidates from one named external origin.
type TopicSource interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.TopicCandidate, error)
}

// TopicStore is the durable record of discovered topics.
type TopicStore interface {
	// InsertTopicIfAbsent stores the topic unless (source, dedup key) already exists.
	InsertTopicIfAbsent(ctx context.Context, topic domain.Topic) (bool, error)
	// ListUnprocessedTopics orders by search volume descending, unranked last.
	ListUnprocessedTopics(ctx context.Context, limit int) ([]domain.Topic, error)
	MarkTopicProcessed(ctx context.Context, id int64) error
}

// ArticleStore is the durable record of generated articles.
type ArticleStore interface {
	CreateArticle(ctx context.Context, article domain.Article) (domain.Article, error)
	// ListUnpublishedArticles orders oldest first.
	ListUnpublishedArticles(ctx context.Context, limit int) ([]domain.Article, error)
	// UpdateArticle applies the update; a publishing update fails with
	// domain.ErrAlreadyPublished when the article is already published.
	UpdateArticle(ctx context.Context, id int64, update domain.ArticleUpdate) error
	// ListPublishedArticles orders newest published first.
	ListPublishedArticles(ctx context.Context, limit, offset int) ([]domain.Article, error)
	ListRelatedArticles(ctx context.Context, id int64, tags []string, limit int) ([]domain.Article, error)
}

// ArticleReader serves the read-only HTTP layer.
type ArticleReader interface {
	ListPublishedArticles(ctx context.Context, limit, offset int) ([]domain.Article, error)
	ListArticlesByCategory(ctx context.Context, category string, limit int) ([]domain.Article, error)
	ListArticlesByTag(ctx context.Context, tag string, limit int) ([]domain.Article, error)
	ListRelatedArticles(ctx context.Context, id int64, tags []string, limit int) ([]domain.Article, error)
	GetArticleByID(ctx context.Context, id int64) (domain.Article, error)
	GetArticleBySlug(ctx context.Context, slug string) (domain.Article, error)
	IncrementViewCount(ctx context.Context, id int64) error
	Stats(ctx context.Context) (domain.ArticleStats, error)
}

// Backend turns a prompt into generated text.
type Backend interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// Limiter gates calls to external services.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Clock abstracts wall-clock time.
type Clock interface {
	Now() time.Time
}

// Lease grants at-most-one concurrent run per stage.
type Lease interface {
	// TryAcquire returns domain.ErrLeaseHeld when another run owns the stage.
	TryAcquire(ctx context.Context, stage string) (release func(context.Context) error, err error)
}

// Indexer is one external search-engine endpoint notified about the sitemap.
type Indexer interface {
	Name() string
	Notify(ctx context.Context, sitemapURL string) error
}

// Notifier streams digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when stage jobs execute.
type Scheduler interface {
	Register(name, spec string, job func()) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
