package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"TrendPress/internal/domain"
	"TrendPress/internal/metrics"
	"TrendPress/internal/ports"
)

const releaseTimeout = 5 * time.Second

// Runner executes stages under their per-stage lease.
type Runner struct {
	lease  ports.Lease
	logger *slog.Logger
}

// NewRunner wires the lease used for at-most-one-run-per-stage.
func NewRunner(lease ports.Lease, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{lease: lease, logger: log}
}

// Run executes the stage once. A stage already running elsewhere is skipped with
// domain.ErrLeaseHeld; panics are converted into errors.
func (r *Runner) Run(ctx context.Context, stage Stage) (Report, error) {
	name := stage.Name()
	log := r.logger.With("component", "stage."+name)

	if r.lease != nil {
		release, err := r.lease.TryAcquire(ctx, name)
		if err != nil {
			if errors.Is(err, domain.ErrLeaseHeld) {
				metrics.RecordStage(name, metrics.StatusSkipped, 0)
				log.Info("stage already running, skipping")
			} else {
				metrics.RecordStage(name, metrics.StatusError, 0)
				log.Error("acquire stage lease failed", "error", err)
			}
			return Report{}, err
		}
		defer func() {
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
			defer cancel()
			if err := release(releaseCtx); err != nil {
				log.Warn("release stage lease failed", "error", err)
			}
		}()
	}

	start := time.Now()
	log.Info("stage started")
	report, err := runSafely(ctx, stage)
	elapsed := time.Since(start)

	if err != nil {
		metrics.RecordStage(name, metrics.StatusError, elapsed)
		log.Error("stage failed", "error", err, "duration", elapsed, "succeeded", report.Succeeded, "failed", report.Failed)
		return report, err
	}

	metrics.RecordStage(name, metrics.StatusOK, elapsed)
	log.Info("stage completed",
		"duration", elapsed,
		"selected", report.Selected,
		"succeeded", report.Succeeded,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
	return report, nil
}

func runSafely(ctx context.Context, stage Stage) (report Report, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("stage %s panicked: %v", stage.Name(), rec)
		}
	}()
	return stage.Run(ctx)
}
