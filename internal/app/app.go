package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"TrendPress/internal/api"
	"TrendPress/internal/config"
	"TrendPress/internal/content"
	"TrendPress/internal/infrastructure/lease"
	"TrendPress/internal/infrastructure/llm"
	"TrendPress/internal/infrastructure/parser"
	"TrendPress/internal/infrastructure/scheduler"
	"TrendPress/internal/infrastructure/seo"
	"TrendPress/internal/infrastructure/storage"
	"TrendPress/internal/infrastructure/telegram"
	"TrendPress/internal/logging"
	"TrendPress/internal/ports"
	"TrendPress/internal/usecase"
	"TrendPress/internal/validation"
)

const shutdownTimeout = 10 * time.Second

// store is everything the pipeline and the HTTP layer need from persistence.
type store interface {
	ports.TopicStore
	ports.ArticleStore
	ports.ArticleReader
}

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *sqlx.DB
	redis     *redis.Client
	stages    map[string]usecase.Stage
	runner    *usecase.Runner
	scheduler *usecase.Scheduler
	server    *http.Server
}

// New builds the application: store, lease, stages, scheduler and HTTP server.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	repo, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	stageLease, err := a.openLease(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	registry := parser.DefaultRegistry(&http.Client{Timeout: cfg.Pipeline.FetchTimeout})
	sources, err := parser.BuildSources(registry, cfg.Sources, baseLogger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("build sources: %w", err)
	}

	validator := validation.New()
	clock := usecase.SystemClock{}

	generator := usecase.NewGenerator(usecase.GeneratorDeps{
		Backend:   llm.New(cfg.Backend),
		Limiter:   perSecond(cfg.Backend.RequestsPerSecond),
		Clock:     clock,
		Validator: validator,
		Suffixer:  &content.SlugSuffixer{},
		MinWords:  cfg.Pipeline.MinWords,
		MaxWords:  cfg.Pipeline.MaxWords,
		Logger:    baseLogger.With("component", "generator"),
	})

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.Enabled() {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram, nil)
	}

	sitemap := usecase.NewSitemap(usecase.SitemapDeps{
		Articles: repo,
		Clock:    clock,
		SiteURL:  cfg.SEO.SiteURL,
		Path:     cfg.SEO.SitemapPath,
		Limit:    cfg.Pipeline.SitemapLimit,
		Logger:   baseLogger.With("component", "sitemap"),
	})

	crawl := usecase.NewCrawlStage(usecase.CrawlDeps{
		Sources:   sources,
		Topics:    repo,
		Limiter:   every(cfg.Pipeline.FetchInterval),
		Validator: validator,
		Timeout:   cfg.Pipeline.FetchTimeout,
		Logger:    baseLogger.With("component", "stage.crawl"),
	})
	write := usecase.NewWriteStage(usecase.WriteDeps{
		Topics:    repo,
		Articles:  repo,
		Generator: generator,
		Limiter:   every(cfg.Pipeline.WriteInterval),
		Batch:     cfg.Pipeline.WriteBatch,
		Logger:    baseLogger.With("component", "stage.write"),
	})
	publish := usecase.NewPublishStage(usecase.PublishDeps{
		Articles:     repo,
		Clock:        clock,
		Limiter:      every(cfg.Pipeline.PublishInterval),
		Notifier:     notifier,
		Batch:        cfg.Pipeline.PublishBatch,
		RelatedLimit: cfg.Pipeline.RelatedLimit,
		SiteURL:      cfg.SEO.SiteURL,
		Logger:       baseLogger.With("component", "stage.publish"),
	})
	seoStage := usecase.NewSEOStage(usecase.SEODeps{
		Sitemap:  sitemap,
		Indexers: seo.Indexers(cfg.SEO, nil),
		Timeout:  cfg.SEO.Timeout,
		Logger:   baseLogger.With("component", "stage.seo"),
	})

	a.stages = map[string]usecase.Stage{
		crawl.Name():    crawl,
		write.Name():    write,
		publish.Name():  publish,
		seoStage.Name(): seoStage,
	}
	a.runner = usecase.NewRunner(stageLease, baseLogger)
	a.scheduler = usecase.NewScheduler(
		scheduler.NewCronScheduler(cfg.Scheduler.Location(), baseLogger),
		a.runner,
		cfg.Scheduler.Enabled,
		[]usecase.ScheduledStage{
			{Spec: cfg.Scheduler.Crawl, Stage: crawl},
			{Spec: cfg.Scheduler.Write, Stage: write},
			{Spec: cfg.Scheduler.Publish, Stage: publish},
			{Spec: cfg.Scheduler.SEO, Stage: seoStage},
		},
		baseLogger,
	)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(repo, sitemap, api.Site{URL: cfg.SEO.SiteURL, Name: cfg.Server.SiteName},
		baseLogger.With("component", "api"))
	a.server = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

func (a *Application) openStore(ctx context.Context) (store, error) {
	switch a.cfg.Database.Driver {
	case config.DriverMemory:
		a.logger.Warn("using in-memory store, data is lost on exit")
		return storage.NewMemoryRepository(nil), nil
	case config.DriverPostgres, "":
		db, err := storage.Open(ctx, a.cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		a.db = db
		if a.cfg.Database.Migrate {
			if err := storage.Migrate(db.DB); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		return storage.NewPostgresRepository(db), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", a.cfg.Database.Driver)
	}
}

func (a *Application) openLease(ctx context.Context) (ports.Lease, error) {
	if a.cfg.Redis.Addr == "" {
		return lease.NewLocalLease(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", a.cfg.Redis.Addr, err)
	}
	a.redis = client
	return lease.NewRedisLease(client, a.cfg.Scheduler.LeaseTTL), nil
}

// Serve runs the HTTP server and the scheduler until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("http server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := a.scheduler.Start(gctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(stopCtx); err != nil {
			a.logger.Warn("http shutdown", "error", err)
		}
		return a.scheduler.Stop(stopCtx)
	})

	return g.Wait()
}

// RunStage executes one stage once under its lease.
func (a *Application) RunStage(ctx context.Context, name string) (usecase.Report, error) {
	stage, ok := a.stages[name]
	if !ok {
		return usecase.Report{}, fmt.Errorf("unknown stage %q (want one of %v)", name, a.StageNames())
	}
	return a.runner.Run(ctx, stage)
}

// StageNames lists the runnable stages.
func (a *Application) StageNames() []string {
	names := make([]string, 0, len(a.stages))
	for name := range a.stages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close releases the database and redis connections.
func (a *Application) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

// Migrate applies the embedded schema migrations to the configured database.
func Migrate(ctx context.Context, cfg config.Config) error {
	db, err := storage.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()
	return storage.Migrate(db.DB)
}

// every gates calls to one per interval; a zero interval disables the gate.
func every(interval time.Duration) ports.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

func perSecond(rps float64) ports.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}
