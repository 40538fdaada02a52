package router

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DevStdio379/settisfy-web/internal/analytics/types"
	"github.com/DevStdio379/settisfy-web/pkg/enums"
	"github.com/DevStdio379/settisfy-web/pkg/logger"
	"github.com/DevStdio379/settisfy-web/pkg/outbox/payloads"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestRouterUnsupportedEvent(t *testing.T) {
	router := newTestRouter(t, &recordingSink{}, nil)
	env := types.Envelope{
		EventType: enums.OutboxEventType("unsupported"),
		Payload:   []byte(`{"foo":"bar"}`),
	}
	err := router.Handle(context.Background(), env)
	if !errors.Is(err, ErrUnsupportedEventType) {
		t.Fatalf("expected unsupported error, got %v", err)
	}
}

func TestRouterRoutesToOverride(t *testing.T) {
	handler := &stubHandler{}
	router := newTestRouter(t, &recordingSink{}, map[enums.OutboxEventType]Handler{
		enums.EventBookingCreated: handler,
	})
	data, _ := json.Marshal(payloads.BookingCreatedEvent{BookingID: uuid.New()})
	env := types.Envelope{EventType: enums.EventBookingCreated, Payload: data}
	if err := router.Handle(context.Background(), env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handler.called {
		t.Fatalf("handler not invoked")
	}
}

func TestRouterRejectsEmptyPayload(t *testing.T) {
	router := newTestRouter(t, &recordingSink{}, nil)
	err := router.Handle(context.Background(), types.Envelope{EventType: enums.EventBookingCreated})
	if err == nil {
		t.Fatalf("expected error for empty payload")
	}
}

func TestBookingCreatedRow(t *testing.T) {
	writer := &recordingSink{}
	router := newTestRouter(t, writer, nil)

	bookingID := uuid.New()
	customerID := uuid.New()
	createdAt := time.Date(2026, 6, 1, 8, 30, 0, 0, time.UTC)
	data, _ := json.Marshal(payloads.BookingCreatedEvent{
		BookingID:        bookingID,
		UserID:           customerID,
		CatalogueService: "Deep Cleaning",
		Total:            decimal.RequireFromString("77.50"),
		Status:           enums.BookingStatusVerifyBooking,
		PaymentMethod:    "card",
		CreatedAt:        createdAt,
	})
	env := types.Envelope{
		EventID:    uuid.NewString(),
		EventType:  enums.EventBookingCreated,
		OccurredAt: createdAt.Add(time.Second),
		Payload:    data,
	}
	if err := router.Handle(context.Background(), env); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(writer.rows) != 1 {
		t.Fatalf("expected one row, got %d", len(writer.rows))
	}
	row := writer.rows[0]
	if row.BookingID != bookingID.String() || row.CustomerID == nil || *row.CustomerID != customerID.String() {
		t.Fatalf("unexpected ids %+v", row)
	}
	if row.TotalCents == nil || *row.TotalCents != 7750 {
		t.Fatalf("expected 7750 cents, got %v", row.TotalCents)
	}
	if !row.OccurredAt.Equal(createdAt) {
		t.Fatalf("expected created_at to win, got %s", row.OccurredAt)
	}
	if row.ActivityType != nil {
		t.Fatalf("creation rows carry no activity type")
	}
	if row.ToStatus == nil || *row.ToStatus != 0.1 {
		t.Fatalf("expected status 0.1, got %v", row.ToStatus)
	}
}

func TestBookingActivityRow(t *testing.T) {
	writer := &recordingSink{}
	router := newTestRouter(t, writer, nil)

	settlerID := uuid.New()
	amount := decimal.RequireFromString("120")
	data, _ := json.Marshal(payloads.BookingActivityRecordedEvent{
		BookingID:    uuid.New(),
		ActivityID:   uuid.New(),
		Seq:          9,
		Type:         enums.ActivityPaymentReleasedToSettler,
		Actor:        enums.BookingActorSystem,
		FromStatus:   enums.BookingStatusIncompletionResolving,
		ToStatus:     enums.BookingStatusIncompletionResolving,
		Payload:      json.RawMessage(`{"recipient":"settler"}`),
		OccurredAt:   time.Now().UTC(),
		SettlerID:    &settlerID,
		CustomerID:   uuid.New(),
		Amount:       &amount,
		BookingTotal: decimal.RequireFromString("150"),
	})
	env := types.Envelope{EventID: uuid.NewString(), EventType: enums.EventBookingActivityRecorded, Payload: data}
	if err := router.Handle(context.Background(), env); err != nil {
		t.Fatalf("handle: %v", err)
	}
	row := writer.rows[0]
	if row.AmountCents == nil || *row.AmountCents != 12000 {
		t.Fatalf("expected 12000 cents, got %v", row.AmountCents)
	}
	if row.SettlerID == nil || *row.SettlerID != settlerID.String() {
		t.Fatalf("expected settler id, got %v", row.SettlerID)
	}
	if row.ActivitySeq == nil || *row.ActivitySeq != 9 {
		t.Fatalf("expected seq 9, got %v", row.ActivitySeq)
	}
	if !row.Payload.Valid || row.Payload.JSONVal != `{"recipient":"settler"}` {
		t.Fatalf("unexpected payload %+v", row.Payload)
	}
}

func TestBookingActivityWriterFailure(t *testing.T) {
	writer := &recordingSink{err: errors.New("bigquery down")}
	router := newTestRouter(t, writer, nil)
	data, _ := json.Marshal(payloads.BookingActivityRecordedEvent{BookingID: uuid.New(), Type: enums.ActivityBookingApproved})
	env := types.Envelope{EventID: uuid.NewString(), EventType: enums.EventBookingActivityRecorded, Payload: data}
	if err := router.Handle(context.Background(), env); err == nil {
		t.Fatalf("expected writer error to surface")
	}
}

func newTestRouter(t *testing.T, writer Writer, overrides map[enums.OutboxEventType]Handler) *Router {
	t.Helper()
	router, err := NewRouter(writer, logger.New(logger.Options{ServiceName: "router-test"}), overrides)
	if err != nil {
		t.Fatalf("construct router: %v", err)
	}
	return router
}

type stubHandler struct {
	called bool
}

func (s *stubHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	s.called = true
	return nil
}

func TestRouterTreatsUnknownVersionAsUnsupported(t *testing.T) {
	router := newTestRouter(t, &recordingSink{}, nil)
	data, _ := json.Marshal(payloads.BookingCreatedEvent{BookingID: uuid.New()})
	env := types.Envelope{EventType: enums.EventBookingCreated, Version: 7, Payload: data}
	if err := router.Handle(context.Background(), env); !errors.Is(err, ErrUnsupportedEventType) {
		t.Fatalf("expected unsupported for unknown version, got %v", err)
	}
}

func TestBookingActivityRowCarriesActorRole(t *testing.T) {
	writer := &recordingSink{}
	router := newTestRouter(t, writer, nil)
	data, _ := json.Marshal(payloads.BookingActivityRecordedEvent{
		BookingID:  uuid.New(),
		Type:       enums.ActivityBookingApproved,
		Actor:      enums.BookingActorSystem,
		CustomerID: uuid.New(),
	})
	env := types.Envelope{
		EventID:   uuid.NewString(),
		EventType: enums.EventBookingActivityRecorded,
		Version:   1,
		Actor:     &types.EnvelopeActor{Role: enums.AccountRoleAdmin, Actor: enums.BookingActorSystem},
		Payload:   data,
	}
	if err := router.Handle(context.Background(), env); err != nil {
		t.Fatalf("handle: %v", err)
	}
	row := writer.rows[0]
	if row.ActorRole == nil || *row.ActorRole != string(enums.AccountRoleAdmin) {
		t.Fatalf("expected admin actor role, got %v", row.ActorRole)
	}
	if row.ActivityID != nil {
		t.Fatalf("nil activity id should stay NULL, got %v", *row.ActivityID)
	}
}

// recordingSink stands in for the BigQuery writer.
type recordingSink struct {
	rows []types.BookingEventRow
	err  error
}

func (s *recordingSink) InsertBookingEvent(_ context.Context, row types.BookingEventRow) error {
	if s.err == nil {
		s.rows = append(s.rows, row)
	}
	return s.err
}
