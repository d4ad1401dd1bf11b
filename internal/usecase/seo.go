package usecase

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"TrendPress/internal/domain"
	"TrendPress/internal/metrics"
	"TrendPress/internal/ports"
)

const (
	defaultSitemapLimit = 1000
	sitemapNamespace    = "http://www.sitemaps.org/schemas/sitemap/0.9"
)

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	Priority   string `xml:"priority"`
	ChangeFreq string `xml:"changefreq"`
}

// SitemapDeps wires the sitemap generator.
type SitemapDeps struct {
	Articles ports.ArticleStore
	Clock    ports.Clock
	SiteURL  string
	Path     string
	Limit    int
	Logger   *slog.Logger
}

// Sitemap maintains the sitemap artifact on disk.
type Sitemap struct {
	articles ports.ArticleStore
	clock    ports.Clock
	siteURL  string
	path     string
	limit    int
	logger   *slog.Logger

	mu sync.Mutex
}

// NewSitemap constructs the sitemap generator.
func NewSitemap(deps SitemapDeps) *Sitemap {
	s := &Sitemap{
		articles: deps.Articles,
		clock:    deps.Clock,
		siteURL:  strings.TrimRight(deps.SiteURL, "/"),
		path:     deps.Path,
		limit:    deps.Limit,
		logger:   deps.Logger,
	}
	if s.clock == nil {
		s.clock = SystemClock{}
	}
	if s.limit <= 0 {
		s.limit = defaultSitemapLimit
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// URL is the public address of the sitemap artifact.
func (s *Sitemap) URL() string {
	return s.siteURL + "/sitemap.xml"
}

// Path is the on-disk location of the artifact.
func (s *Sitemap) Path() string {
	return s.path
}

// Generate rebuilds the artifact from published articles and replaces the file atomically.
func (s *Sitemap) Generate(ctx context.Context) (string, error) {
	articles, err := s.articles.ListPublishedArticles(ctx, s.limit, 0)
	if err != nil {
		return "", fmt.Errorf("list published articles: %w", err)
	}

	payload, err := s.render(articles)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeAtomic(s.path, payload); err != nil {
		return "", err
	}

	s.logger.Info("sitemap generated", "urls", len(articles), "path", s.path)
	return s.path, nil
}

// Read returns the artifact, generating it first when it does not exist.
func (s *Sitemap) Read(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read sitemap: %w", err)
	}

	if _, err := s.Generate(ctx); err != nil {
		return nil, err
	}
	return os.ReadFile(s.path)
}

func (s *Sitemap) render(articles []domain.Article) ([]byte, error) {
	set := urlSet{
		Xmlns: sitemapNamespace,
		URLs:  make([]sitemapURL, 0, len(articles)+1),
	}
	set.URLs = append(set.URLs, sitemapURL{
		Loc:        s.siteURL + "/",
		Priority:   "1.0",
		ChangeFreq: "daily",
	})

	for _, a := range articles {
		lastMod := s.clock.Now()
		if a.PublishedAt != nil {
			lastMod = *a.PublishedAt
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        s.siteURL + "/article/" + a.Slug,
			LastMod:    lastMod.UTC().Format(time.DateOnly),
			Priority:   "0.8",
			ChangeFreq: "weekly",
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func writeAtomic(path string, payload []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sitemap dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".sitemap-*.xml")
	if err != nil {
		return fmt.Errorf("create temp sitemap: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp sitemap: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp sitemap: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod sitemap: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace sitemap: %w", err)
	}
	return nil
}

// SEODeps wires the SEO stage.
type SEODeps struct {
	Sitemap  *Sitemap
	Indexers []ports.Indexer
	Timeout  time.Duration
	Logger   *slog.Logger
}

// SEOStage regenerates the sitemap and notifies search engines.
type SEOStage struct {
	sitemap  *Sitemap
	indexers []ports.Indexer
	timeout  time.Duration
	logger   *slog.Logger
}

var _ Stage = (*SEOStage)(nil)

// NewSEOStage constructs the SEO stage.
func NewSEOStage(deps SEODeps) *SEOStage {
	s := &SEOStage{
		sitemap:  deps.Sitemap,
		indexers: deps.Indexers,
		timeout:  deps.Timeout,
		logger:   deps.Logger,
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
func (s *SEOStage) Name() string { return StageSEO }

// Run regenerates the sitemap, then notifies every indexer.
func (s *SEOStage) Run(ctx context.Context) (Report, error) {
	if _, err := s.sitemap.Generate(ctx); err != nil {
		return Report{}, fmt.Errorf("generate sitemap: %w", err)
	}
	return s.NotifyIndexers(ctx), nil
}

// NotifyIndexers pings each indexer independently; one failure does not block the rest.
func (s *SEOStage) NotifyIndexers(ctx context.Context) Report {
	report := Report{Selected: len(s.indexers)}
	sitemapURL := s.sitemap.URL()

	for _, idx := range s.indexers {
		notifyCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := idx.Notify(notifyCtx, sitemapURL)
		cancel()

		if err != nil {
			report.Failed++
			metrics.RecordItem(StageSEO, "failed")
			s.logger.Warn("indexer notification failed", "indexer", idx.Name(), "error", err)
			continue
		}
		report.Succeeded++
		metrics.RecordItem(StageSEO, "notified")
		s.logger.Info("indexer notified", "indexer", idx.Name())
	}
	return report
}
