package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DevStdio379/settisfy-web/pkg/db/models"
	"github.com/DevStdio379/settisfy-web/pkg/enums"
	"github.com/DevStdio379/settisfy-web/pkg/outbox/registry"
)

// batch is the state of one locked batch: the transaction and the bookings
// that must not publish again until their failed event goes through.
type batch struct {
	tx   *gorm.DB
	held map[uuid.UUID]struct{}
}

// processBatch reports whether any rows were locked.
func (s *Service) processBatch(ctx context.Context) (bool, error) {
	processed := false
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := s.repo.FetchUnpublishedForPublish(tx, s.batchSize, s.maxAttempts)
		if err != nil {
			return fmt.Errorf("fetch batch: %w", err)
		}
		processed = len(events) > 0

		b := &batch{tx: tx, held: map[uuid.UUID]struct{}{}}
		for _, event := range events {
			if _, held := b.held[event.AggregateID]; held {
				continue
			}
			if err := s.handleEvent(ctx, b, event); err != nil {
				return err
			}
		}
		return nil
	})
	return processed, err
}

// handleEvent publishes one row and records the outcome. Only bookkeeping
// failures are returned; they roll the whole batch back.
func (s *Service) handleEvent(ctx context.Context, b *batch, event models.OutboxEvent) error {
	resolved, err := s.registry.Resolve(event)
	if err != nil {
		return s.deadLetter(ctx, b.tx, event, "", enums.OutboxDLQReasonUndecodable, err)
	}
	topic := resolved.Descriptor.Topic
	ctx = s.logg.WithFields(ctx, eventFields(event, resolved, topic))

	pubErr := s.publish(ctx, event, resolved)
	var nonRetryable registry.NonRetryableError
	switch {
	case pubErr == nil:
		if err := s.repo.MarkPublishedTx(b.tx, event.ID); err != nil {
			return fmt.Errorf("mark published %s: %w", event.ID, err)
		}
		s.metrics.IncPublished(string(event.EventType))
		s.logg.Debug(ctx, "outbox.event.published")
		return nil

	case errors.As(pubErr, &nonRetryable):
		return s.deadLetter(ctx, b.tx, event, topic, enums.OutboxDLQReasonNonRetryable, pubErr)

	case event.AttemptCount+1 >= s.maxAttempts:
		return s.deadLetter(ctx, b.tx, event, topic, enums.OutboxDLQReasonMaxAttempts,
			fmt.Errorf("gave up after %d attempts: %w", event.AttemptCount+1, pubErr))

	default:
		b.held[event.AggregateID] = struct{}{}
		s.metrics.IncFailed(string(event.EventType))
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"attempt_count": event.AttemptCount + 1,
			"error":         pubErr.Error(),
		}), "outbox.event.publish_failed")
		if err := s.repo.MarkFailedTx(b.tx, event.ID, pubErr); err != nil {
			return fmt.Errorf("mark failure %s: %w", event.ID, err)
		}
		return nil
	}
}

// deadLetter copies the row into outbox_dlq and takes it out of the pending
// scope, in the batch transaction.
func (s *Service) deadLetter(ctx context.Context, tx *gorm.DB, event models.OutboxEvent, topic string, reason enums.OutboxDLQErrorReason, cause error) error {
	msg := cause.Error()
	entry := models.OutboxDLQ{
		EventID:       event.ID,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       event.Payload,
		ErrorReason:   reason,
		ErrorMessage:  &msg,
		AttemptCount:  event.AttemptCount,
		FailedAt:      time.Now().UTC(),
	}
	if topic != "" {
		entry.Topic = &topic
	}
	if err := s.dlq.InsertTx(tx, entry); err != nil {
		return fmt.Errorf("insert dlq %s: %w", event.ID, err)
	}
	if err := s.repo.MarkTerminalTx(tx, event.ID, cause, s.maxAttempts); err != nil {
		return fmt.Errorf("mark terminal %s: %w", event.ID, err)
	}

	s.metrics.IncDeadLettered(string(reason))
	s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
		"outbox_id":    event.ID.String(),
		"error_reason": reason,
		"error":        msg,
	}), "outbox.event.dead_lettered")
	return nil
}

func eventFields(event models.OutboxEvent, resolved *registry.ResolvedEvent, topic string) map[string]any {
	fields := map[string]any{
		"outbox_id":      event.ID.String(),
		"event_type":     event.EventType,
		"aggregate_type": event.AggregateType,
		"aggregate_id":   event.AggregateID.String(),
		"attempt_count":  event.AttemptCount,
		"topic":          topic,
	}
	if resolved.Envelope.EventID != "" {
		fields["event_id"] = resolved.Envelope.EventID
		fields["occurred_at"] = resolved.Envelope.OccurredAt.Format(time.RFC3339Nano)
	}
	if event.LastError != nil {
		fields["last_error"] = *event.LastError
	}
	return fields
}
