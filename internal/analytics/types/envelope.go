package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/DevStdio379/settisfy-web/pkg/enums"
)

// Envelope is one booking event as received on the analytics subscription:
// routing metadata from the message attributes plus the stored payload
// envelope's version, actor and data.
type Envelope struct {
	EventID       string
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	AggregateID   string
	Version       int
	OccurredAt    time.Time
	Actor         *EnvelopeActor
	Payload       json.RawMessage
}

// EnvelopeActor is who caused the event, when the producer recorded it.
type EnvelopeActor struct {
	AccountID *uuid.UUID
	Role      enums.AccountRole
	Actor     enums.BookingActor
}
