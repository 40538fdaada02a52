package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEventPruner struct {
	batches []int64
	cutoffs []time.Time
	limits  []int
	err     error
}

func (f *fakeEventPruner) DeletePublishedBefore(_ context.Context, cutoff time.Time, limit int) (int64, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return 0, f.err
	}
	if len(f.batches) == 0 {
		return 0, nil
	}
	n := f.batches[0]
	f.batches = f.batches[1:]
	return n, nil
}

type fakeDLQPruner struct {
	cutoff time.Time
	err    error
}

func (f *fakeDLQPruner) DeleteReplayedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return 2, f.err
}

func newRetentionJob(t *testing.T, params OutboxRetentionJobParams) *outboxRetentionJob {
	t.Helper()
	params.Logger = testLogger()
	job, err := NewOutboxRetentionJob(params)
	require.NoError(t, err)
	return job.(*outboxRetentionJob)
}

func TestOutboxRetentionJobCutsAtStartOfDay(t *testing.T) {
	events := &fakeEventPruner{batches: []int64{7}}
	dlq := &fakeDLQPruner{}
	job := newRetentionJob(t, OutboxRetentionJobParams{Events: events, DLQ: dlq})
	job.now = func() time.Time { return time.Date(2026, 2, 10, 17, 45, 0, 0, time.UTC) }

	require.NoError(t, job.Run(context.Background()))

	want := time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC)
	require.Len(t, events.cutoffs, 1)
	assert.True(t, events.cutoffs[0].Equal(want), "cutoff %s", events.cutoffs[0])
	assert.Equal(t, []int{outboxRetentionBatch}, events.limits)
	assert.True(t, dlq.cutoff.Equal(want))
}

func TestOutboxRetentionJobHonoursConfiguredDays(t *testing.T) {
	events := &fakeEventPruner{}
	job := newRetentionJob(t, OutboxRetentionJobParams{Events: events, RetentionDays: 7})
	job.now = func() time.Time { return time.Date(2026, 2, 10, 1, 0, 0, 0, time.UTC) }

	require.NoError(t, job.Run(context.Background()))
	assert.True(t, events.cutoffs[0].Equal(time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)))
}

func TestOutboxRetentionJobDrainsFullBatches(t *testing.T) {
	events := &fakeEventPruner{batches: []int64{10, 10, 3}}
	job := newRetentionJob(t, OutboxRetentionJobParams{Events: events, BatchSize: 10})

	require.NoError(t, job.Run(context.Background()))
	assert.Len(t, events.cutoffs, 3)
}

func TestOutboxRetentionJobPropagatesErrors(t *testing.T) {
	job := newRetentionJob(t, OutboxRetentionJobParams{Events: &fakeEventPruner{err: errors.New("boom")}})
	assert.Error(t, job.Run(context.Background()))

	job = newRetentionJob(t, OutboxRetentionJobParams{
		Events: &fakeEventPruner{},
		DLQ:    &fakeDLQPruner{err: errors.New("boom")},
	})
	assert.Error(t, job.Run(context.Background()))
}

func TestNewOutboxRetentionJobRequiresRepository(t *testing.T) {
	_, err := NewOutboxRetentionJob(OutboxRetentionJobParams{Logger: testLogger()})
	assert.Error(t, err)
}
