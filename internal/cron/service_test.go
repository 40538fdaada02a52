package cron

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/DevStdio379/settisfy-web/pkg/logger"
	"github.com/DevStdio379/settisfy-web/pkg/metrics"
)

type fakeLock struct {
	mu         sync.Mutex
	held       bool
	releases   int
	refreshes  int
	ttl        time.Duration
	refreshErr error
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Refresh(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return f.refreshErr
}

func (f *fakeLock) Release(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.held = false
	f.releases++
	return nil
}

func (f *fakeLock) TTL() time.Duration { return f.ttl }

func (f *fakeLock) counts() (refreshes, releases int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshes, f.releases
}

type testJob struct {
	name string
	err  error
	runs int
	wait time.Duration
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(ctx context.Context) error {
	t.runs++
	if t.wait > 0 {
		select {
		case <-time.After(t.wait):
		case <-ctx.Done():
			return context.Cause(ctx)
		}
	}
	return t.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

func newTestService(t *testing.T, lock Lock, reg prometheus.Registerer, jobs ...Job) *Service {
	t.Helper()
	registry, err := NewRegistry(jobs...)
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(reg),
	})
	require.NoError(t, err)
	return svc
}

func TestRunOnceRunsAllJobsAndReportsFailures(t *testing.T) {
	success := &testJob{name: "success"}
	failure := &testJob{name: "fail", err: errors.New("boom")}
	reg := prometheus.NewRegistry()
	lock := &fakeLock{}
	svc := newTestService(t, lock, reg, success, failure)

	err := svc.RunOnce(context.Background())
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 1)
	assert.ErrorContains(t, err, "fail: boom")

	assert.Equal(t, 1, success.runs)
	assert.Equal(t, 1, failure.runs)
	_, releases := lock.counts()
	assert.Equal(t, 1, releases)
	assert.False(t, lock.held)

	series, err := testutil.GatherAndCount(reg, "settisfy_cron_job_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 2, series, "one success and one failure series")
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "warranty-expiry"}
	svc := newTestService(t, &fakeLock{held: true}, prometheus.NewRegistry(), job)

	require.NoError(t, svc.RunOnce(context.Background()))
	assert.Zero(t, job.runs)
}

func TestRunOnceRefreshesLockDuringLongJobs(t *testing.T) {
	lock := &fakeLock{ttl: 30 * time.Millisecond}
	svc := newTestService(t, lock, prometheus.NewRegistry(), &testJob{name: "slow", wait: 100 * time.Millisecond})

	require.NoError(t, svc.RunOnce(context.Background()))
	refreshes, releases := lock.counts()
	assert.GreaterOrEqual(t, refreshes, 2)
	assert.Equal(t, 1, releases)
}

func TestRunOnceStopsWhenLockIsLost(t *testing.T) {
	lock := &fakeLock{ttl: 15 * time.Millisecond, refreshErr: ErrLockLost}
	slow := &testJob{name: "slow", wait: 5 * time.Second}
	next := &testJob{name: "next"}
	svc := newTestService(t, lock, prometheus.NewRegistry(), slow, next)

	start := time.Now()
	err := svc.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrLockLost)
	assert.Less(t, time.Since(start), time.Second)
	assert.Zero(t, next.runs, "no job starts after the lock is gone")
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	registry, _ := NewRegistry()
	_, err := NewService(ServiceParams{Logger: testLogger(), Lock: &fakeLock{}})
	assert.Error(t, err)
	_, err = NewService(ServiceParams{Logger: testLogger(), Registry: registry})
	assert.Error(t, err)
	_, err = NewService(ServiceParams{Lock: &fakeLock{}, Registry: registry})
	assert.Error(t, err)
}
