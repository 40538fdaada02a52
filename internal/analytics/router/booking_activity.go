package router

import (
	"context"
	"fmt"

	"github.com/DevStdio379/settisfy-web/internal/analytics/types"
	"github.com/DevStdio379/settisfy-web/internal/analytics/writer"
	"github.com/DevStdio379/settisfy-web/pkg/logger"
	"github.com/DevStdio379/settisfy-web/pkg/outbox/payloads"
)

type bookingActivityHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newBookingActivityHandler(writer Writer, logg *logger.Logger) Handler {
	return &bookingActivityHandler{writer: writer, logg: logg}
}

func (h *bookingActivityHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*payloads.BookingActivityRecordedEvent)
	if !ok {
		return fmt.Errorf("invalid payload for booking_activity_recorded")
	}
	logCtx := h.logg.WithFields(ctx, map[string]any{
		"event_type":    envelope.EventType,
		"booking_id":    event.BookingID.String(),
		"activity_type": event.Type,
	})

	encoded, err := writer.EncodeJSON(event.Payload)
	if err != nil {
		h.logg.Error(logCtx, "failed to encode activity payload", err)
		return err
	}

	occurredAt := envelope.OccurredAt
	if !event.OccurredAt.IsZero() {
		occurredAt = event.OccurredAt.UTC()
	}

	row := types.BookingEventRow{
		EventID:      envelope.EventID,
		EventType:    string(envelope.EventType),
		OccurredAt:   occurredAt,
		BookingID:    event.BookingID.String(),
		CustomerID:   idString(event.CustomerID),
		ActivityID:   idString(event.ActivityID),
		ActivitySeq:  ptr(event.Seq),
		ActivityType: nonEmpty(string(event.Type)),
		Actor:        nonEmpty(string(event.Actor)),
		ActorRole:    actorRole(envelope),
		FromStatus:   ptr(float64(event.FromStatus)),
		ToStatus:     ptr(float64(event.ToStatus)),
		TotalCents:   cents(event.BookingTotal),
		Payload:      encoded,
	}
	if event.SettlerID != nil {
		row.SettlerID = idString(*event.SettlerID)
	}
	if event.Amount != nil {
		row.AmountCents = cents(*event.Amount)
	}

	if err := h.writer.InsertBookingEvent(logCtx, row); err != nil {
		h.logg.Error(logCtx, "failed to insert booking event row", err)
		return err
	}

	h.logg.Info(logCtx, "booking_activity handler inserted booking event row")
	return nil
}
