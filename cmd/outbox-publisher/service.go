package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DevStdio379/settisfy-web/pkg/config"
	"github.com/DevStdio379/settisfy-web/pkg/db/models"
	"github.com/DevStdio379/settisfy-web/pkg/logger"
	"github.com/DevStdio379/settisfy-web/pkg/metrics"
	"github.com/DevStdio379/settisfy-web/pkg/outbox/registry"
)

const (
	defaultBatchSize      = 50
	defaultPollInterval   = 500 * time.Millisecond
	defaultPublishTimeout = 15 * time.Second
	defaultMaxAttempts    = 10
	maxBackoff            = 10 * time.Second
	jitterWindow          = 250 * time.Millisecond
)

type txRunner interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type outboxRepository interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	CountPending(ctx context.Context, maxAttempts int) (int64, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type dlqRepository interface {
	InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error
}

type registryResolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

type ServiceParams struct {
	Config     config.OutboxConfig
	Logger     *logger.Logger
	DB         txRunner
	Topics     topicPublishers
	Repository outboxRepository
	Registry   registryResolver
	DLQ        dlqRepository
	Metrics    *metrics.OutboxMetrics
}

// Service drains outbox_events into Pub/Sub. Each poll locks one batch,
// publishes it in order and records the outcome of every row before the
// batch transaction commits.
type Service struct {
	logg     *logger.Logger
	db       txRunner
	topics   topicPublishers
	repo     outboxRepository
	registry registryResolver
	dlq      dlqRepository
	metrics  *metrics.OutboxMetrics

	batchSize      int
	maxAttempts    int
	pollInterval   time.Duration
	publishTimeout time.Duration
}

func NewService(p ServiceParams) (*Service, error) {
	switch {
	case p.Logger == nil:
		return nil, errors.New("logger is required")
	case p.DB == nil:
		return nil, errors.New("database client is required")
	case p.Topics == nil:
		return nil, errors.New("topic publishers are required")
	case p.Repository == nil:
		return nil, errors.New("outbox repository is required")
	case p.Registry == nil:
		return nil, errors.New("event registry is required")
	case p.DLQ == nil:
		return nil, errors.New("dlq repository is required")
	}

	s := &Service{
		logg:           p.Logger,
		db:             p.DB,
		topics:         p.Topics,
		repo:           p.Repository,
		registry:       p.Registry,
		dlq:            p.DLQ,
		metrics:        p.Metrics,
		batchSize:      orDefault(p.Config.BatchSize, defaultBatchSize),
		maxAttempts:    orDefault(p.Config.MaxAttempts, defaultMaxAttempts),
		pollInterval:   time.Duration(p.Config.PollIntervalMS) * time.Millisecond,
		publishTimeout: defaultPublishTimeout,
	}
	if s.pollInterval <= 0 {
		s.pollInterval = defaultPollInterval
	}
	return s, nil
}

func orDefault(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

// Run polls until ctx ends. A failing batch backs off exponentially up to
// maxBackoff; a full batch polls again immediately.
func (s *Service) Run(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}
	if err := s.topics.Ping(ctx); err != nil {
		return fmt.Errorf("pubsub not ready: %w", err)
	}

	backoff := s.pollInterval
	for {
		processed, err := s.processBatch(ctx)
		var wait time.Duration
		switch {
		case err != nil:
			s.logg.Error(ctx, "outbox.batch.failed", err)
			backoff = min(backoff*2, maxBackoff)
			wait = backoff
		case processed:
			backoff = s.pollInterval
			continue
		default:
			backoff = s.pollInterval
			wait = s.pollInterval
			s.sampleBacklog(ctx)
		}
		if err := sleepCtx(ctx, wait+jitter()); err != nil {
			return err
		}
	}
}

func (s *Service) sampleBacklog(ctx context.Context) {
	n, err := s.repo.CountPending(ctx, s.maxAttempts)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "outbox.backlog.sample_failed")
		return
	}
	s.metrics.SetBacklog(n)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func jitter() time.Duration {
	return rand.N(jitterWindow)
}
