package types

import (
	"time"

	cbigquery "cloud.google.com/go/bigquery"
)

// BookingEventRow mirrors the booking_events BigQuery schema. Creation and
// every timeline entry land in the same table; ActivityType is empty for
// creation rows.
type BookingEventRow struct {
	EventID          string             `bigquery:"event_id"`
	EventType        string             `bigquery:"event_type"`
	OccurredAt       time.Time          `bigquery:"occurred_at"`
	BookingID        string             `bigquery:"booking_id"`
	CustomerID       *string            `bigquery:"customer_id"`
	SettlerID        *string            `bigquery:"settler_id"`
	ActivityID       *string            `bigquery:"activity_id"`
	ActivitySeq      *int64             `bigquery:"activity_seq"`
	ActivityType     *string            `bigquery:"activity_type"`
	Actor            *string            `bigquery:"actor"`
	ActorRole        *string            `bigquery:"actor_role"`
	FromStatus       *float64           `bigquery:"from_status"`
	ToStatus         *float64           `bigquery:"to_status"`
	CatalogueService *string            `bigquery:"catalogue_service"`
	PaymentMethod    *string            `bigquery:"payment_method"`
	AmountCents      *int64             `bigquery:"amount_cents"`
	TotalCents       *int64             `bigquery:"total_cents"`
	Payload          cbigquery.NullJSON `bigquery:"payload"`
}
