package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/DevStdio379/settisfy-web/internal/analytics/router"
	"github.com/DevStdio379/settisfy-web/internal/analytics/types"
	"github.com/DevStdio379/settisfy-web/pkg/enums"
	"github.com/DevStdio379/settisfy-web/pkg/logger"
	"github.com/DevStdio379/settisfy-web/pkg/outbox"
	"github.com/DevStdio379/settisfy-web/pkg/outbox/idempotency"
)

// consumerName scopes the Redis idempotency keys of this subscriber.
const consumerName = "booking-analytics"

// Handler processes one decoded analytics envelope.
type Handler interface {
	Handle(ctx context.Context, envelope types.Envelope) error
}

type HandlerFunc func(ctx context.Context, envelope types.Envelope) error

func (fn HandlerFunc) Handle(ctx context.Context, envelope types.Envelope) error {
	return fn(ctx, envelope)
}

type claimer interface {
	Begin(ctx context.Context, consumer string, eventID uuid.UUID) (idempotency.Claim, error)
	Complete(ctx context.Context, consumer string, eventID uuid.UUID) error
	Release(ctx context.Context, consumer string, eventID uuid.UUID) error
}

type receiver interface {
	Receive(ctx context.Context, f func(context.Context, *gcppubsub.Message)) error
}

// Service consumes the booking topic subscription and feeds each event to
// the handler at most once per event id.
type Service struct {
	subscription receiver
	handler      Handler
	manager      claimer
	logg         *logger.Logger
}

func NewService(subscription receiver, handler Handler, manager claimer, logg *logger.Logger) (*Service, error) {
	switch {
	case subscription == nil:
		return nil, errors.New("analytics subscription is required")
	case handler == nil:
		return nil, errors.New("analytics handler is required")
	case manager == nil:
		return nil, errors.New("idempotency manager is required")
	case logg == nil:
		return nil, errors.New("logger is required")
	}
	return &Service{
		subscription: subscription,
		handler:      handler,
		manager:      manager,
		logg:         logg,
	}, nil
}

// Run blocks receiving messages until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	return s.subscription.Receive(ctx, func(msgCtx context.Context, msg *gcppubsub.Message) {
		if s.process(msgCtx, msg) == outcomeRetry {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type outcome int

const (
	outcomeDone outcome = iota
	outcomeRetry
)

// process decides the fate of one message. Malformed and unsupported events
// are acked since redelivery cannot fix them. Handler failures release the
// claim and nack; a delivery racing an in-flight claim is nacked as well.
func (s *Service) process(ctx context.Context, msg *gcppubsub.Message) outcome {
	logCtx := s.logg.WithField(ctx, "message_id", msg.ID)

	envelope, err := envelopeFromMessage(msg)
	if err != nil {
		logCtx = s.logg.WithField(logCtx, "error", err.Error())
		s.logg.Warn(logCtx, "analytics.envelope.invalid")
		return outcomeDone
	}
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"event_id":        envelope.EventID,
		"event_type":      envelope.EventType,
		"aggregate_id":    envelope.AggregateID,
		"payload_version": envelope.Version,
		"occurred_at":     envelope.OccurredAt.Format(time.RFC3339Nano),
	})

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		s.logg.Warn(logCtx, "analytics.envelope.bad_event_id")
		return outcomeDone
	}

	claim, err := s.manager.Begin(logCtx, consumerName, eventID)
	if err != nil {
		s.logg.Error(logCtx, "analytics.idempotency.failed", err)
		return outcomeRetry
	}
	switch claim {
	case idempotency.ClaimDone:
		s.logg.Info(logCtx, "analytics.event.duplicate")
		return outcomeDone
	case idempotency.ClaimInFlight:
		s.logg.Info(logCtx, "analytics.event.in_flight")
		return outcomeRetry
	}

	err = s.handler.Handle(logCtx, *envelope)
	switch {
	case err == nil:
		s.logg.Info(logCtx, "analytics.event.handled")
	case errors.Is(err, router.ErrUnsupportedEventType):
		s.logg.Warn(logCtx, "analytics.event.unsupported")
	default:
		s.logg.Error(logCtx, "analytics.event.failed", err)
		if relErr := s.manager.Release(logCtx, consumerName, eventID); relErr != nil {
			s.logg.Error(logCtx, "analytics.idempotency.release_failed", relErr)
		}
		return outcomeRetry
	}
	if err := s.manager.Complete(logCtx, consumerName, eventID); err != nil {
		s.logg.Error(logCtx, "analytics.idempotency.complete_failed", err)
	}
	return outcomeDone
}

// envelopeFromMessage joins the routing attributes set by the outbox
// publisher with the payload envelope carried in the message body.
func envelopeFromMessage(msg *gcppubsub.Message) (*types.Envelope, error) {
	stored, err := outbox.DecodeEnvelope(msg.Data)
	if err != nil {
		return nil, err
	}
	attr := func(key string) string { return strings.TrimSpace(msg.Attributes[key]) }

	eventType, err := enums.ParseOutboxEventType(attr("event_type"))
	if err != nil {
		return nil, fmt.Errorf("event_type: %w", err)
	}
	aggregateType, err := enums.ParseOutboxAggregateType(attr("aggregate_type"))
	if err != nil {
		return nil, fmt.Errorf("aggregate_type: %w", err)
	}
	aggregateID := attr("aggregate_id")
	if aggregateID == "" {
		return nil, errors.New("aggregate_id missing")
	}

	eventID := strings.TrimSpace(stored.EventID)
	if eventID == "" {
		eventID = attr("event_id")
	}
	if eventID == "" {
		return nil, errors.New("event_id missing")
	}

	occurredAt := stored.OccurredAt
	if occurredAt.IsZero() {
		if parsed, err := time.Parse(time.RFC3339Nano, attr("created_at")); err == nil {
			occurredAt = parsed
		}
	}

	envelope := &types.Envelope{
		EventID:       eventID,
		EventType:     eventType,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Version:       stored.Version,
		OccurredAt:    occurredAt.UTC(),
		Payload:       stored.Data,
	}
	if stored.Actor != nil {
		envelope.Actor = &types.EnvelopeActor{
			AccountID: stored.Actor.AccountID,
			Role:      stored.Actor.Role,
			Actor:     stored.Actor.Actor,
		}
	}
	return envelope, nil
}
