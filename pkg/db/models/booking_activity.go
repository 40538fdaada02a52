package models

import (
	"encoding/json"
	"time"

	"github.com/DevStdio379/settisfy-web/pkg/enums"
	"github.com/google/uuid"
)

// BookingActivity is an append-only timeline row. Seq orders the entries of a
// booking and is unique per booking.
type BookingActivity struct {
	ID         uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	BookingID  uuid.UUID                 `gorm:"column:booking_id;type:uuid;not null;uniqueIndex:booking_activities_booking_seq_key,priority:1"`
	Seq        int                       `gorm:"column:seq;not null;uniqueIndex:booking_activities_booking_seq_key,priority:2"`
	Type       enums.BookingActivityType `gorm:"column:type;type:text;not null"`
	Actor      enums.BookingActor        `gorm:"column:actor;type:text;not null"`
	Message    *string                   `gorm:"column:message"`
	Payload    json.RawMessage           `gorm:"column:payload;type:jsonb"`
	OccurredAt time.Time                 `gorm:"column:occurred_at;not null"`
}
