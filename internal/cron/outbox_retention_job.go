package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/now"

	"github.com/DevStdio379/settisfy-web/pkg/logger"
)

const (
	outboxRetentionDays  = 30
	outboxRetentionBatch = 5000
)

type publishedEventPruner interface {
	DeletePublishedBefore(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}

type replayedDLQPruner interface {
	DeleteReplayedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type OutboxRetentionJobParams struct {
	Logger        *logger.Logger
	Events        publishedEventPruner
	DLQ           replayedDLQPruner // optional
	RetentionDays int
	BatchSize     int
}

// NewOutboxRetentionJob prunes published outbox rows, and DLQ entries that
// were already replayed, once they fall out of the retention window.
// Pending rows and unreplayed DLQ entries are never removed.
func NewOutboxRetentionJob(params OutboxRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	if params.Events == nil {
		return nil, errors.New("outbox repository required")
	}
	job := &outboxRetentionJob{
		logg:      params.Logger,
		events:    params.Events,
		dlq:       params.DLQ,
		retention: params.RetentionDays,
		batch:     params.BatchSize,
		now:       time.Now,
	}
	if job.retention <= 0 {
		job.retention = outboxRetentionDays
	}
	if job.batch <= 0 {
		job.batch = outboxRetentionBatch
	}
	return job, nil
}

type outboxRetentionJob struct {
	logg      *logger.Logger
	events    publishedEventPruner
	dlq       replayedDLQPruner
	retention int
	batch     int
	now       func() time.Time
}

func (j *outboxRetentionJob) Name() string { return "outbox-retention" }

func (j *outboxRetentionJob) Run(ctx context.Context) error {
	cutoff := now.With(j.now().UTC()).BeginningOfDay().AddDate(0, 0, -j.retention)

	var events int64
	for {
		n, err := j.events.DeletePublishedBefore(ctx, cutoff, j.batch)
		if err != nil {
			return fmt.Errorf("prune published events: %w", err)
		}
		events += n
		if n < int64(j.batch) || ctx.Err() != nil {
			break
		}
	}

	var replayed int64
	if j.dlq != nil {
		n, err := j.dlq.DeleteReplayedBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("prune replayed dlq entries: %w", err)
		}
		replayed = n
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"events_deleted": events,
		"dlq_deleted":    replayed,
	}), "cron.outbox_retention.done")
	return nil
}
