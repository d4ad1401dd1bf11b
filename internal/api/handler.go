package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"TrendPress/internal/domain"
	"TrendPress/internal/infrastructure/seo"
	"TrendPress/internal/ports"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	relatedLimit    = 3
)

type handler struct {
	articles ports.ArticleReader
	sitemap  Sitemap
	site     Site
	logger   *slog.Logger
}

func newHandler(articles ports.ArticleReader, sitemap Sitemap, site Site, log *slog.Logger) *handler {
	return &handler{articles: articles, sitemap: sitemap, site: site, logger: log}
}

type listQuery struct {
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset   int    `form:"offset" binding:"omitempty,min=0"`
	Category string `form:"category" binding:"omitempty,oneof=tech finance lifestyle education general"`
	Tag      string `form:"tag"`
}

// List returns published articles, optionally filtered by category or tag.
func (h *handler) List(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query", "details": err.Error()})
		return
	}
	if q.Limit == 0 {
		q.Limit = defaultPageSize
	}

	ctx := c.Request.Context()
	var (
		articles []domain.Article
		err      error
	)
	switch {
	case q.Category != "":
		articles, err = h.articles.ListArticlesByCategory(ctx, q.Category, q.Limit)
	case q.Tag != "":
		articles, err = h.articles.ListArticlesByTag(ctx, q.Tag, q.Limit)
	default:
		articles, err = h.articles.ListPublishedArticles(ctx, q.Limit, q.Offset)
	}
	if err != nil {
		h.logger.Error("Failed to list articles", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list articles"})
		return
	}
	if articles == nil {
		articles = []domain.Article{}
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": articles,
		"count":    len(articles),
	})
}

// GetByID returns one published article with its page metadata.
func (h *handler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid article id"})
		return
	}
	article, err := h.articles.GetArticleByID(c.Request.Context(), id)
	h.detail(c, article, err)
}

// GetBySlug returns one published article by slug.
func (h *handler) GetBySlug(c *gin.Context) {
	article, err := h.articles.GetArticleBySlug(c.Request.Context(), c.Param("slug"))
	h.detail(c, article, err)
}

func (h *handler) detail(c *gin.Context, article domain.Article, err error) {
	if err == nil && !article.Published {
		err = domain.ErrNotFound
	}
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to load article", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load article"})
		return
	}

	ctx := c.Request.Context()
	if err := h.articles.IncrementViewCount(ctx, article.ID); err != nil {
		h.logger.Warn("Failed to count view", "article_id", article.ID, "error", err)
	} else {
		article.ViewCount++
	}

	related, err := h.articles.ListRelatedArticles(ctx, article.ID, article.Tags, relatedLimit)
	if err != nil {
		h.logger.Warn("Failed to load related articles", "article_id", article.ID, "error", err)
	}
	if related == nil {
		related = []domain.Article{}
	}

	c.JSON(http.StatusOK, gin.H{
		"article": article,
		"related": related,
		"meta":    seo.Meta(article, h.site.URL, h.site.Name),
		"schema":  seo.Schema(article, h.site.URL, h.site.Name),
	})
}

// Stats reports article totals.
func (h *handler) Stats(c *gin.Context) {
	stats, err := h.articles.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to load stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Sitemap serves the artifact, generating it on first access.
func (h *handler) Sitemap(c *gin.Context) {
	data, err := h.sitemap.Read(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to read sitemap", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read sitemap"})
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", data)
}

// RegenerateSitemap rebuilds the artifact on demand.
func (h *handler) RegenerateSitemap(c *gin.Context) {
	path, err := h.sitemap.Generate(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to regenerate sitemap", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to regenerate sitemap"})
		return
	}
	h.logger.Info("Sitemap regenerated", "path", path)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "path": path})
}
