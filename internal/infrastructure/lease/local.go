package lease

import (
	"context"
	"fmt"
	"sync"

	"TrendPress/internal/domain"
	"TrendPress/internal/ports"
)

// LocalLease grants stage leases inside one process.
type LocalLease struct {
	mu     sync.Mutex
	stages map[string]*sync.Mutex
}

var _ ports.Lease = (*LocalLease)(nil)

// NewLocalLease returns an empty in-process lease table.
func NewLocalLease() *LocalLease {
	return &LocalLease{stages: map[string]*sync.Mutex{}}
}

// TryAcquire takes the stage mutex without blocking.
func (l *LocalLease) TryAcquire(_ context.Context, stage string) (func(context.Context) error, error) {
	l.mu.Lock()
	m, ok := l.stages[stage]
	if !ok {
		m = &sync.Mutex{}
		l.stages[stage] = m
	}
	l.mu.Unlock()

	if !m.TryLock() {
		return nil, fmt.Errorf("stage %s: %w", stage, domain.ErrLeaseHeld)
	}

	var once sync.Once
	release := func(context.Context) error {
		once.Do(m.Unlock)
		return nil
	}
	return release, nil
}
