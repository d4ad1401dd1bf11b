package usecase

import (
	"context"
	"log/slog"

	"TrendPress/internal/ports"
)

// ScheduledStage pairs a stage with its cron expression.
type ScheduledStage struct {
	Spec  string
	Stage Stage
}

// Scheduler wires the cron-like driver with the pipeline stages.
type Scheduler struct {
	driver  ports.Scheduler
	runner  *Runner
	stages  []ScheduledStage
	enabled bool
	logger  *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring stage runs. When enabled
// is false no trigger is registered.
func NewScheduler(driver ports.Scheduler, runner *Runner, enabled bool, stages []ScheduledStage, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		driver:  driver,
		runner:  runner,
		stages:  stages,
		enabled: enabled,
		logger:  log.With("component", "scheduler"),
	}
}

// Start registers every stage with the driver and starts it. Stage errors are
// logged by the runner; the trigger simply waits for its next activation.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.runner == nil {
		return nil
	}
	if !s.enabled {
		s.logger.Info("automatic generation disabled")
		return nil
	}

	for _, st := range s.stages {
		stage := st.Stage
		job := func() {
			_, _ = s.runner.Run(ctx, stage)
		}
		if err := s.driver.Register(stage.Name(), st.Spec, job); err != nil {
			return err
		}
	}

	s.logger.Info("scheduler started", "stages", len(s.stages))
	return s.driver.Start(ctx)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil || !s.enabled {
		return nil
	}

	return s.driver.Stop(ctx)
}
