package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/DevStdio379/settisfy-web/internal/analytics/types"
	"github.com/DevStdio379/settisfy-web/pkg/enums"
	"github.com/DevStdio379/settisfy-web/pkg/logger"
	"github.com/DevStdio379/settisfy-web/pkg/outbox/registry"
)

// ErrUnsupportedEventType marks envelopes the router will never be able to
// handle; the worker acks them instead of redelivering.
var ErrUnsupportedEventType = errors.New("unsupported analytics event type")

// Writer delivers BigQuery rows produced by analytics handlers.
type Writer interface {
	InsertBookingEvent(ctx context.Context, row types.BookingEventRow) error
}

// Handler receives an envelope plus its decoded event payload.
type Handler interface {
	Handle(ctx context.Context, envelope types.Envelope, payload any) error
}

// Router decodes each envelope with the versioned payload decoders and
// dispatches it to the handler for its event type.
type Router struct {
	decoders *registry.DecoderRegistry
	handlers map[enums.OutboxEventType]Handler
	logg     *logger.Logger
}

// NewRouter wires the booking handlers; overrides replace the handler for
// an event type that already has one.
func NewRouter(writer Writer, logg *logger.Logger, overrides map[enums.OutboxEventType]Handler) (*Router, error) {
	if writer == nil {
		return nil, errors.New("writer is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}

	handlers := map[enums.OutboxEventType]Handler{
		enums.EventBookingCreated:          newBookingCreatedHandler(writer, logg),
		enums.EventBookingActivityRecorded: newBookingActivityHandler(writer, logg),
	}
	for event, custom := range overrides {
		if _, ok := handlers[event]; ok && custom != nil {
			handlers[event] = custom
		}
	}

	return &Router{
		decoders: registry.NewBookingDecoders(),
		handlers: handlers,
		logg:     logg,
	}, nil
}

func (r *Router) Handle(ctx context.Context, envelope types.Envelope) error {
	handler, ok := r.handlers[envelope.EventType]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedEventType, envelope.EventType)
	}
	payload, err := r.decoders.Decode(envelope.EventType, envelope.Version, envelope.Payload)
	if errors.Is(err, registry.ErrNoDecoder) {
		return fmt.Errorf("%w: %v", ErrUnsupportedEventType, err)
	}
	if err != nil {
		return fmt.Errorf("decode %s payload: %w", envelope.EventType, err)
	}
	return handler.Handle(ctx, envelope, payload)
}
