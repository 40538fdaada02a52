package router

import (
	"context"
	"fmt"

	"github.com/DevStdio379/settisfy-web/internal/analytics/types"
	"github.com/DevStdio379/settisfy-web/internal/analytics/writer"
	"github.com/DevStdio379/settisfy-web/pkg/logger"
	"github.com/DevStdio379/settisfy-web/pkg/outbox/payloads"
)

type bookingCreatedHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newBookingCreatedHandler(writer Writer, logg *logger.Logger) Handler {
	return &bookingCreatedHandler{writer: writer, logg: logg}
}

func (h *bookingCreatedHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*payloads.BookingCreatedEvent)
	if !ok {
		return fmt.Errorf("invalid payload for booking_created")
	}
	logCtx := h.logg.WithFields(ctx, map[string]any{
		"event_type": envelope.EventType,
		"booking_id": event.BookingID.String(),
	})

	encoded, err := writer.EncodeJSON(event)
	if err != nil {
		h.logg.Error(logCtx, "failed to encode booking payload", err)
		return err
	}

	occurredAt := envelope.OccurredAt
	if !event.CreatedAt.IsZero() {
		occurredAt = event.CreatedAt.UTC()
	}

	row := types.BookingEventRow{
		EventID:          envelope.EventID,
		EventType:        string(envelope.EventType),
		OccurredAt:       occurredAt,
		BookingID:        event.BookingID.String(),
		CustomerID:       idString(event.UserID),
		Actor:            nonEmpty(actorOf(envelope)),
		ActorRole:        actorRole(envelope),
		ToStatus:         ptr(float64(event.Status)),
		CatalogueService: nonEmpty(event.CatalogueService),
		PaymentMethod:    nonEmpty(event.PaymentMethod),
		TotalCents:       cents(event.Total),
		Payload:          encoded,
	}

	if err := h.writer.InsertBookingEvent(logCtx, row); err != nil {
		h.logg.Error(logCtx, "failed to insert booking event row", err)
		return err
	}

	h.logg.Info(logCtx, "booking_created handler inserted booking event row")
	return nil
}
