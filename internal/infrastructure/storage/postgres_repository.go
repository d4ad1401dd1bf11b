package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"TrendPress/internal/domain"
	"TrendPress/internal/ports"
)

var (
	topicColumns = []string{
		"id", "title", "keyword", "search_volume", "competition", "source", "url",
		"dedup_key", "processed", "created_at",
	}
	articleColumns = []string{
		"id", "title", "slug", "content", "summary", "category", "tags", "keywords",
		"meta_title", "meta_description", "image_url", "source_url", "source_type",
		"word_count", "view_count", "published", "published_at", "created_at", "updated_at",
	}
)

// PostgresRepository persists topics and articles into Postgres.
type PostgresRepository struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

var (
	_ ports.TopicStore    = (*PostgresRepository)(nil)
	_ ports.ArticleStore  = (*PostgresRepository)(nil)
	_ ports.ArticleReader = (*PostgresRepository)(nil)
)

// Open connects to Postgres through lib/pq and verifies the connection.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// NewPostgresRepository wires a sqlx.DB implementation.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

type topicRow struct {
	ID           int64           `db:"id"`
	Title        string          `db:"title"`
	Keyword      string          `db:"keyword"`
	SearchVolume sql.NullFloat64 `db:"search_volume"`
	Competition  string          `db:"competition"`
	Source       string          `db:"source"`
	URL          sql.NullString  `db:"url"`
	DedupKey     string          `db:"dedup_key"`
	Processed    bool            `db:"processed"`
	CreatedAt    time.Time       `db:"created_at"`
}

func (r topicRow) toDomain() domain.Topic {
	t := domain.Topic{
		ID:          r.ID,
		Title:       r.Title,
		Keyword:     r.Keyword,
		Competition: domain.Competition(r.Competition),
		Source:      r.Source,
		URL:         r.URL.String,
		DedupKey:    r.DedupKey,
		Processed:   r.Processed,
		CreatedAt:   r.CreatedAt,
	}
	if r.SearchVolume.Valid {
		v := r.SearchVolume.Float64
		t.SearchVolume = &v
	}
	return t
}

type articleRow struct {
	ID              int64          `db:"id"`
	Title           string         `db:"title"`
	Slug            string         `db:"slug"`
	Content         string         `db:"content"`
	Summary         sql.NullString `db:"summary"`
	Category        sql.NullString `db:"category"`
	Tags            pq.StringArray `db:"tags"`
	Keywords        pq.StringArray `db:"keywords"`
	MetaTitle       sql.NullString `db:"meta_title"`
	MetaDescription sql.NullString `db:"meta_description"`
	ImageURL        sql.NullString `db:"image_url"`
	SourceURL       sql.NullString `db:"source_url"`
	SourceType      sql.NullString `db:"source_type"`
	WordCount       int            `db:"word_count"`
	ViewCount       int64          `db:"view_count"`
	Published       bool           `db:"published"`
	PublishedAt     sql.NullTime   `db:"published_at"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

func (r articleRow) toDomain() domain.Article {
	a := domain.Article{
		ID:              r.ID,
		Title:           r.Title,
		Slug:            r.Slug,
		Content:         r.Content,
		Summary:         r.Summary.String,
		Category:        domain.Category(r.Category.String),
		Tags:            []string(r.Tags),
		Keywords:        []string(r.Keywords),
		MetaTitle:       r.MetaTitle.String,
		MetaDescription: r.MetaDescription.String,
		ImageURL:        r.ImageURL.String,
		SourceURL:       r.SourceURL.String,
		SourceType:      r.SourceType.String,
		WordCount:       r.WordCount,
		ViewCount:       r.ViewCount,
		Published:       r.Published,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.PublishedAt.Valid {
		at := r.PublishedAt.Time
		a.PublishedAt = &at
	}
	return a
}

// InsertTopicIfAbsent inserts the topic unless (source, dedup_key) already exists.
func (r *PostgresRepository) InsertTopicIfAbsent(ctx context.Context, topic domain.Topic) (bool, error) {
	query, args, err := r.sb.Insert("trending_topics").
		Columns("title", "keyword", "search_volume", "competition", "source", "url", "dedup_key").
		Values(topic.Title, topic.Keyword, topic.SearchVolume, string(topic.Competition), topic.Source,
			nullString(topic.URL), topic.DedupKey).
		Suffix("ON CONFLICT (source, dedup_key) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build insert topic: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, &domain.PersistenceError{Op: "insert topic", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, &domain.PersistenceError{Op: "insert topic", Err: err}
	}
	return affected > 0, nil
}

// ListUnprocessedTopics returns the highest-ranked unprocessed topics, unranked last.
func (r *PostgresRepository) ListUnprocessedTopics(ctx context.Context, limit int) ([]domain.Topic, error) {
	query, args, err := r.sb.Select(topicColumns...).
		From("trending_topics").
		Where(sq.Eq{"processed": false}).
		OrderBy("search_volume DESC NULLS LAST", "id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list topics: %w", err)
	}

	var rows []topicRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, &domain.PersistenceError{Op: "list unprocessed topics", Err: err}
	}

	topics := make([]domain.Topic, 0, len(rows))
	for _, row := range rows {
		topics = append(topics, row.toDomain())
	}
	return topics, nil
}

// MarkTopicProcessed flips the processed flag.
func (r *PostgresRepository) MarkTopicProcessed(ctx context.Context, id int64) error {
	query, args, err := r.sb.Update("trending_topics").
		Set("processed", true).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark processed: %w", err)
	}
	return r.execOne(ctx, "mark topic processed", fmt.Sprintf("topic %d", id), query, args)
}

// CreateArticle inserts an unpublished article and returns it with its id.
func (r *PostgresRepository) CreateArticle(ctx context.Context, article domain.Article) (domain.Article, error) {
	query, args, err := r.sb.Insert("articles").
		Columns("title", "slug", "content", "summary", "category", "tags", "keywords",
			"meta_title", "meta_description", "image_url", "source_url", "source_type", "word_count").
		Values(article.Title, article.Slug, article.Content, article.Summary, string(article.Category),
			pq.Array(article.Tags), pq.Array(article.Keywords), article.MetaTitle, article.MetaDescription,
			nullString(article.ImageURL), nullString(article.SourceURL), nullString(article.SourceType),
			article.WordCount).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("build insert article: %w", err)
	}

	row := r.db.QueryRowxContext(ctx, query, args...)
	if err := row.Scan(&article.ID, &article.CreatedAt, &article.UpdatedAt); err != nil {
		return domain.Article{}, &domain.PersistenceError{Op: "create article", Err: err}
	}
	article.Published = false
	article.PublishedAt = nil
	return article, nil
}

// ListUnpublishedArticles returns drafts oldest first.
func (r *PostgresRepository) ListUnpublishedArticles(ctx context.Context, limit int) ([]domain.Article, error) {
	builder := r.articles().
		Where(sq.Eq{"published": false}).
		OrderBy("created_at ASC", "id ASC").
		Limit(uint64(limit))
	return r.selectArticles(ctx, "list unpublished articles", builder)
}

// UpdateArticle applies a partial update. A publishing update only matches drafts,
// so published_at is written exactly once.
func (r *PostgresRepository) UpdateArticle(ctx context.Context, id int64, update domain.ArticleUpdate) error {
	if err := update.Validate(); err != nil {
		return err
	}
	if update.Empty() {
		return nil
	}

	builder := r.sb.Update("articles").
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id})
	if update.Content != nil {
		builder = builder.Set("content", *update.Content)
	}
	if update.Published != nil {
		builder = builder.Set("published", *update.Published)
		if *update.Published {
			builder = builder.Set("published_at", *update.PublishedAt).Where(sq.Eq{"published": false})
		} else {
			builder = builder.Set("published_at", nil)
		}
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build update article: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return &domain.PersistenceError{Op: "update article", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &domain.PersistenceError{Op: "update article", Err: err}
	}
	if affected > 0 {
		return nil
	}

	if _, err := r.GetArticleByID(ctx, id); err != nil {
		return err
	}
	if update.IsPublish() {
		return fmt.Errorf("article %d: %w", id, domain.ErrAlreadyPublished)
	}
	return nil
}

// ListPublishedArticles returns published articles newest first.
func (r *PostgresRepository) ListPublishedArticles(ctx context.Context, limit, offset int) ([]domain.Article, error) {
	builder := r.articles().
		Where(sq.Eq{"published": true}).
		OrderBy("published_at DESC", "id DESC").
		Limit(uint64(limit)).
		Offset(uint64(max(offset, 0)))
	return r.selectArticles(ctx, "list published articles", builder)
}

// ListRelatedArticles returns other published articles sharing at least one tag.
func (r *PostgresRepository) ListRelatedArticles(ctx context.Context, id int64, tags []string, limit int) ([]domain.Article, error) {
	if len(tags) == 0 || limit <= 0 {
		return nil, nil
	}
	builder := r.articles().
		Where(sq.NotEq{"id": id}).
		Where(sq.Eq{"published": true}).
		Where(sq.Expr("tags && ?", pq.Array(tags))).
		OrderBy("published_at DESC", "id DESC").
		Limit(uint64(limit))
	return r.selectArticles(ctx, "list related articles", builder)
}

// ListArticlesByCategory returns published articles of one category.
func (r *PostgresRepository) ListArticlesByCategory(ctx context.Context, category string, limit int) ([]domain.Article, error) {
	builder := r.articles().
		Where(sq.Eq{"category": category, "published": true}).
		OrderBy("published_at DESC", "id DESC").
		Limit(uint64(limit))
	return r.selectArticles(ctx, "list articles by category", builder)
}

// ListArticlesByTag returns published articles carrying the tag.
func (r *PostgresRepository) ListArticlesByTag(ctx context.Context, tag string, limit int) ([]domain.Article, error) {
	builder := r.articles().
		Where(sq.Expr("? = ANY(tags)", tag)).
		Where(sq.Eq{"published": true}).
		OrderBy("published_at DESC", "id DESC").
		Limit(uint64(limit))
	return r.selectArticles(ctx, "list articles by tag", builder)
}

// GetArticleByID loads one article.
func (r *PostgresRepository) GetArticleByID(ctx context.Context, id int64) (domain.Article, error) {
	return r.getArticle(ctx, sq.Eq{"id": id}, fmt.Sprintf("article %d", id))
}

// GetArticleBySlug loads one article by slug.
func (r *PostgresRepository) GetArticleBySlug(ctx context.Context, slug string) (domain.Article, error) {
	return r.getArticle(ctx, sq.Eq{"slug": slug}, fmt.Sprintf("article %q", slug))
}

// IncrementViewCount bumps the view counter.
func (r *PostgresRepository) IncrementViewCount(ctx context.Context, id int64) error {
	query, args, err := r.sb.Update("articles").
		Set("view_count", sq.Expr("view_count + 1")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build increment views: %w", err)
	}
	return r.execOne(ctx, "increment view count", fmt.Sprintf("article %d", id), query, args)
}

// Stats summarizes article counts and views.
func (r *PostgresRepository) Stats(ctx context.Context) (domain.ArticleStats, error) {
	query, args, err := r.sb.Select(
		"COUNT(*) AS total_articles",
		"COUNT(*) FILTER (WHERE published) AS published_articles",
		"COALESCE(SUM(view_count), 0) AS total_views",
	).From("articles").ToSql()
	if err != nil {
		return domain.ArticleStats{}, fmt.Errorf("build stats: %w", err)
	}

	var stats domain.ArticleStats
	if err := r.db.GetContext(ctx, &stats, query, args...); err != nil {
		return domain.ArticleStats{}, &domain.PersistenceError{Op: "stats", Err: err}
	}
	return stats, nil
}

func (r *PostgresRepository) articles() sq.SelectBuilder {
	return r.sb.Select(articleColumns...).From("articles")
}

func (r *PostgresRepository) selectArticles(ctx context.Context, op string, builder sq.SelectBuilder) ([]domain.Article, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", op, err)
	}

	var rows []articleRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, &domain.PersistenceError{Op: op, Err: err}
	}

	articles := make([]domain.Article, 0, len(rows))
	for _, row := range rows {
		articles = append(articles, row.toDomain())
	}
	return articles, nil
}

func (r *PostgresRepository) getArticle(ctx context.Context, pred sq.Eq, what string) (domain.Article, error) {
	query, args, err := r.articles().Where(pred).Limit(1).ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("build get article: %w", err)
	}

	var row articleRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Article{}, fmt.Errorf("%s: %w", what, domain.ErrNotFound)
		}
		return domain.Article{}, &domain.PersistenceError{Op: "get article", Err: err}
	}
	return row.toDomain(), nil
}

func (r *PostgresRepository) execOne(ctx context.Context, op, what, query string, args []interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return &domain.PersistenceError{Op: op, Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &domain.PersistenceError{Op: op, Err: err}
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
