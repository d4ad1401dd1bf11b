package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"TrendPress/internal/domain"
	"TrendPress/internal/infrastructure/lease"
)

type funcStage struct {
	name string
	run  func(ctx context.Context) (Report, error)
}

func (s funcStage) Name() string { return s.name }

func (s funcStage) Run(ctx context.Context) (Report, error) { return s.run(ctx) }

func TestRunnerSkipsWhileStageRuns(t *testing.T) {
	runner := NewRunner(lease.NewLocalLease(), testLogger)

	entered := make(chan struct{})
	proceed := make(chan struct{})
	slow := funcStage{name: StageWrite, run: func(context.Context) (Report, error) {
		close(entered)
		<-proceed
		return Report{Succeeded: 1}, nil
	}}

	var wg sync.WaitGroup
	wg.Add(1)
	var first Report
	go func() {
		defer wg.Done()
		first, _ = runner.Run(context.Background(), slow)
	}()
	<-entered

	_, err := runner.Run(context.Background(), funcStage{name: StageWrite, run: func(context.Context) (Report, error) {
		t.Error("overlapping run must not execute")
		return Report{}, nil
	}})
	assert.ErrorIs(t, err, domain.ErrLeaseHeld)

	other, err := runner.Run(context.Background(), funcStage{name: StagePublish, run: func(context.Context) (Report, error) {
		return Report{Succeeded: 2}, nil
	}})
	require.NoError(t, err, "different stages run concurrently")
	assert.Equal(t, 2, other.Succeeded)

	close(proceed)
	wg.Wait()
	assert.Equal(t, 1, first.Succeeded)

	_, err = runner.Run(context.Background(), funcStage{name: StageWrite, run: func(context.Context) (Report, error) {
		return Report{}, nil
	}})
	assert.NoError(t, err, "lease released after completion")
}

func TestRunnerRecoversPanics(t *testing.T) {
	runner := NewRunner(lease.NewLocalLease(), testLogger)

	_, err := runner.Run(context.Background(), funcStage{name: StageSEO, run: func(context.Context) (Report, error) {
		panic("boom")
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	_, err = runner.Run(context.Background(), funcStage{name: StageSEO, run: func(context.Context) (Report, error) {
		return Report{}, errors.New("store unreachable")
	}})
	assert.EqualError(t, err, "store unreachable")

	_, err = runner.Run(context.Background(), funcStage{name: StageSEO, run: func(context.Context) (Report, error) {
		return Report{}, nil
	}})
	assert.NoError(t, err, "lease released after panic and error")
}

type fakeDriver struct {
	jobs    map[string]func()
	specs   map[string]string
	started bool
	stopped bool
}

func (d *fakeDriver) Register(name, spec string, job func()) error {
	if d.jobs == nil {
		d.jobs = map[string]func(){}
		d.specs = map[string]string{}
	}
	d.jobs[name] = job
	d.specs[name] = spec
	return nil
}

func (d *fakeDriver) Start(context.Context) error { d.started = true; return nil }

func (d *fakeDriver) Stop(context.Context) error { d.stopped = true; return nil }

func TestSchedulerRegistersStages(t *testing.T) {
	driver := &fakeDriver{}
	runs := map[string]int{}
	stage := func(name string) Stage {
		return funcStage{name: name, run: func(context.Context) (Report, error) {
			runs[name]++
			return Report{}, nil
		}}
	}

	s := NewScheduler(driver, NewRunner(lease.NewLocalLease(), testLogger), true, []ScheduledStage{
		{Spec: "0 */4 * * *", Stage: stage(StageCrawl)},
		{Spec: "0 * * * *", Stage: stage(StagePublish)},
	}, testLogger)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, driver.started)
	assert.Equal(t, "0 */4 * * *", driver.specs[StageCrawl])

	driver.jobs[StagePublish]()
	assert.Equal(t, 1, runs[StagePublish])
	assert.Zero(t, runs[StageCrawl])

	require.NoError(t, s.Stop(context.Background()))
	assert.True(t, driver.stopped)
}

func TestSchedulerDisabled(t *testing.T) {
	driver := &fakeDriver{}
	s := NewScheduler(driver, NewRunner(nil, testLogger), false, []ScheduledStage{
		{Spec: "0 * * * *", Stage: funcStage{name: StagePublish}},
	}, testLogger)

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, driver.started)
	assert.Empty(t, driver.jobs)
}

type mockLease struct {
	mock.Mock
}

func (m *mockLease) TryAcquire(ctx context.Context, stage string) (func(context.Context) error, error) {
	args := m.Called(ctx, stage)
	release, _ := args.Get(0).(func(context.Context) error)
	return release, args.Error(1)
}

func TestRunnerReleasesLeaseAfterFailure(t *testing.T) {
	released := 0
	l := &mockLease{}
	l.On("TryAcquire", mock.Anything, StageCrawl).
		Return(func(context.Context) error { released++; return nil }, nil).Once()

	_, err := NewRunner(l, testLogger).Run(context.Background(), funcStage{name: StageCrawl, run: func(context.Context) (Report, error) {
		return Report{}, errors.New("store unreachable")
	}})
	assert.ErrorContains(t, err, "store unreachable")
	assert.Equal(t, 1, released)
	l.AssertExpectations(t)
}

func TestRunnerStopsWhenLeaseUnavailable(t *testing.T) {
	l := &mockLease{}
	l.On("TryAcquire", mock.Anything, StageSEO).Return(nil, errors.New("redis down")).Once()

	_, err := NewRunner(l, testLogger).Run(context.Background(), funcStage{name: StageSEO, run: func(context.Context) (Report, error) {
		t.Error("stage must not run without its lease")
		return Report{}, nil
	}})
	assert.ErrorContains(t, err, "redis down")
	l.AssertExpectations(t)
}
