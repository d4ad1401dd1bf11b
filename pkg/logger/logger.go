package logger

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// CronLogger adapts slog to the cron.Logger interface so panics recovered by
// the cron chain land in the structured log.
type CronLogger struct {
	log *slog.Logger
}

var _ cron.Logger = (*CronLogger)(nil)

// NewCron wraps a slog logger with a component prefix.
func NewCron(log *slog.Logger) *CronLogger {
	return &CronLogger{log: log.With("component", "cron")}
}

// Info logs routine cron messages at debug level.
func (l *CronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

// Error logs cron failures, including recovered job panics.
func (l *CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}
