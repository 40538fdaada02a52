package outbox

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/DevStdio379/settisfy-web/pkg/enums"
)

// CurrentEnvelopeVersion is stamped on events that do not pick a version.
const CurrentEnvelopeVersion = 1

// ErrEmptyPayload marks an envelope whose data is missing or null.
var ErrEmptyPayload = errors.New("envelope data is empty")

// ActorRef names who caused an event: the account and its role, plus the
// lifecycle actor the transition was evaluated as.
type ActorRef struct {
	AccountID *uuid.UUID         `json:"accountId,omitempty"`
	Role      enums.AccountRole  `json:"role,omitempty"`
	Actor     enums.BookingActor `json:"actor"`
}

// PayloadEnvelope is the JSON stored in outbox_events.payload and sent as
// the Pub/Sub message body.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// HasData is false for an absent or literal null payload.
func (e PayloadEnvelope) HasData() bool {
	trimmed := bytes.TrimSpace(e.Data)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// DecodeEnvelope parses a stored envelope and insists on a payload.
func DecodeEnvelope(raw []byte) (PayloadEnvelope, error) {
	var env PayloadEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return PayloadEnvelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if !env.HasData() {
		return env, ErrEmptyPayload
	}
	return env, nil
}
