package payloads

import (
	"encoding/json"
	"time"

	"github.com/DevStdio379/settisfy-web/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingCreatedEvent is emitted when checkout hands a booking over.
type BookingCreatedEvent struct {
	BookingID        uuid.UUID           `json:"booking_id"`
	UserID           uuid.UUID           `json:"user_id"`
	CatalogueService string              `json:"catalogue_service"`
	Total            decimal.Decimal     `json:"total"`
	Status           enums.BookingStatus `json:"status"`
	SelectedDate     string              `json:"selected_date,omitempty"`
	PaymentMethod    string              `json:"payment_method,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
}

// BookingActivityRecordedEvent mirrors one appended timeline entry.
type BookingActivityRecordedEvent struct {
	BookingID    uuid.UUID                 `json:"booking_id"`
	ActivityID   uuid.UUID                 `json:"activity_id"`
	Seq          int64                     `json:"seq"`
	Type         enums.BookingActivityType `json:"type"`
	Actor        enums.BookingActor        `json:"actor"`
	FromStatus   enums.BookingStatus       `json:"from_status"`
	ToStatus     enums.BookingStatus       `json:"to_status"`
	Message      string                    `json:"message,omitempty"`
	Payload      json.RawMessage           `json:"payload,omitempty"`
	OccurredAt   time.Time                 `json:"occurred_at"`
	SettlerID    *uuid.UUID                `json:"settler_id,omitempty"`
	CustomerID   uuid.UUID                 `json:"customer_id"`
	Amount       *decimal.Decimal          `json:"amount,omitempty"`
	BookingTotal decimal.Decimal           `json:"booking_total"`
}

// BookingRef reports the booking the event belongs to.
func (e BookingCreatedEvent) BookingRef() uuid.UUID { return e.BookingID }

func (e BookingActivityRecordedEvent) BookingRef() uuid.UUID { return e.BookingID }
