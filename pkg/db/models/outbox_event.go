package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/DevStdio379/settisfy-web/pkg/enums"
)

// OutboxEvent is a domain event written in the same transaction as the
// booking change it describes. The publisher sets PublishedAt; AttemptCount
// only grows, and reaching the configured maximum parks the row in the DLQ.
type OutboxEvent struct {
	ID            uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	EventType     enums.OutboxEventType     `gorm:"column:event_type;type:text;not null"`
	AggregateType enums.OutboxAggregateType `gorm:"column:aggregate_type;type:text;not null"`
	AggregateID   uuid.UUID                 `gorm:"column:aggregate_id;type:uuid;not null;index"`
	Payload       json.RawMessage           `gorm:"column:payload;type:jsonb;not null"`
	CreatedAt     time.Time                 `gorm:"column:created_at;autoCreateTime;index:idx_outbox_events_pending,priority:2"`
	PublishedAt   *time.Time                `gorm:"column:published_at;index:idx_outbox_events_pending,priority:1"`
	AttemptCount  int                       `gorm:"column:attempt_count;not null;default:0"`
	LastError     *string                   `gorm:"column:last_error"`
}

func (e OutboxEvent) Published() bool { return e.PublishedAt != nil }

// OrderingKey keeps one aggregate's events in order on the topic.
func (e OutboxEvent) OrderingKey() string { return e.AggregateID.String() }
