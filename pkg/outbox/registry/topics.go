package registry

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/DevStdio379/settisfy-web/pkg/config"
	"github.com/DevStdio379/settisfy-web/pkg/db/models"
	"github.com/DevStdio379/settisfy-web/pkg/enums"
	"github.com/DevStdio379/settisfy-web/pkg/outbox"
)

// EventDescriptor is where an event type is published.
type EventDescriptor struct {
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	Topic         string
}

// ResolvedEvent is an outbox row ready to publish.
type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   outbox.PayloadEnvelope
	Payload    any
}

// NonRetryableError marks a row that will never publish as stored.
type NonRetryableError struct {
	Err error
}

func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable error"
	}
	return e.Err.Error()
}

func (e NonRetryableError) Unwrap() error { return e.Err }

func NewNonRetryableError(err error) NonRetryableError {
	return NonRetryableError{Err: err}
}

type bookingScoped interface {
	BookingRef() uuid.UUID
}

// EventRegistry routes booking events to their topic and decodes payloads
// through the versioned decoders.
type EventRegistry struct {
	routes   map[enums.OutboxEventType]EventDescriptor
	decoders *DecoderRegistry
}

func NewEventRegistry(cfg config.PubSubConfig) (*EventRegistry, error) {
	if cfg.BookingTopic == "" {
		return nil, errors.New("booking topic is required")
	}
	reg := &EventRegistry{
		routes:   make(map[enums.OutboxEventType]EventDescriptor, 2),
		decoders: NewBookingDecoders(),
	}
	for _, eventType := range []enums.OutboxEventType{enums.EventBookingCreated, enums.EventBookingActivityRecorded} {
		reg.routes[eventType] = EventDescriptor{
			EventType:     eventType,
			AggregateType: enums.AggregateBooking,
			Topic:         cfg.BookingTopic,
		}
	}
	return reg, nil
}

// Resolve checks the row against its route and decodes the payload. Every
// failure is non-retryable: the row is dead-lettered rather than retried.
func (r *EventRegistry) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	desc, ok := r.routes[event.EventType]
	switch {
	case !ok:
		return nil, NewNonRetryableError(fmt.Errorf("unsupported event type %s", event.EventType))
	case desc.AggregateType != event.AggregateType:
		return nil, NewNonRetryableError(fmt.Errorf("%s belongs to %s, row says %s", event.EventType, desc.AggregateType, event.AggregateType))
	case event.AggregateID == uuid.Nil:
		return nil, NewNonRetryableError(errors.New("missing aggregate_id"))
	}

	envelope, err := outbox.DecodeEnvelope(event.Payload)
	if err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("%s: %w", event.EventType, err))
	}
	payload, err := r.decoders.Decode(event.EventType, envelope.Version, envelope.Data)
	if err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode %s: %w", event.EventType, err))
	}
	if scoped, ok := payload.(bookingScoped); ok && scoped.BookingRef() != event.AggregateID {
		return nil, NewNonRetryableError(fmt.Errorf("%s payload is for booking %s, row aggregate is %s",
			event.EventType, scoped.BookingRef(), event.AggregateID))
	}

	return &ResolvedEvent{Descriptor: desc, Envelope: envelope, Payload: payload}, nil
}
