package usecase

import (
	"context"
	"time"

	"TrendPress/internal/ports"
)

// Stage names used for leases, logs and metrics.
const (
	StageCrawl   = "crawl"
	StageWrite   = "write"
	StagePublish = "publish"
	StageSEO     = "seo"
)

// Report summarizes one stage run.
type Report struct {
	Selected  int
	Succeeded int
	Skipped   int
	Failed    int
}

// Stage is one independently scheduled phase of the pipeline.
type Stage interface {
	Name() string
	Run(ctx context.Context) (Report, error)
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now.
func (SystemClock) Now() time.Time { return time.Now() }

func wait(ctx context.Context, limiter ports.Limiter) error {
	if limiter == nil {
		return ctx.Err()
	}
	return limiter.Wait(ctx)
}
