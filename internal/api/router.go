package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"TrendPress/internal/ports"
)

// Sitemap serves and rebuilds the sitemap artifact.
type Sitemap interface {
	Read(ctx context.Context) ([]byte, error)
	Generate(ctx context.Context) (string, error)
}

// Site carries the public identity used in page metadata.
type Site struct {
	URL  string
	Name string
}

// NewRouter builds the read-only HTTP surface.
func NewRouter(articles ports.ArticleReader, sitemap Sitemap, site Site, log *slog.Logger) *gin.Engine {
	if log == nil {
		log = slog.Default()
	}

	router := gin.New()
	router.Use(requestLogger(log))
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := newHandler(articles, sitemap, site, log)
	router.GET("/sitemap.xml", h.Sitemap)

	v := router.Group("/api")
	v.GET("/articles", h.List)
	v.GET("/articles/:id", h.GetByID)
	v.GET("/articles/slug/:slug", h.GetBySlug)
	v.GET("/stats", h.Stats)
	v.GET("/sitemap", h.Sitemap)
	v.POST("/sitemap/regenerate", h.RegenerateSitemap)

	return router
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Debug("HTTP request",
			"method", c.Request.Method,
			"path", path,
			"status_code", c.Writer.Status(),
			"client_ip", c.ClientIP(),
			"duration", time.Since(start),
		)
	}
}
