package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DevStdio379/settisfy-web/pkg/enums"
	"github.com/DevStdio379/settisfy-web/pkg/outbox/payloads"
)

// ErrNoDecoder is returned for an event type and payload version no consumer
// knows how to read.
var ErrNoDecoder = errors.New("no payload decoder")

// Decoder turns the data section of a payload envelope into a typed event.
type Decoder func(data json.RawMessage) (any, error)

type decoderKey struct {
	eventType enums.OutboxEventType
	version   int
}

// DecoderRegistry maps (event type, envelope version) to a payload decoder.
// It is filled at startup and read-only afterwards.
type DecoderRegistry struct {
	decoders map[decoderKey]Decoder
}

func NewDecoderRegistry() *DecoderRegistry {
	return &DecoderRegistry{decoders: make(map[decoderKey]Decoder)}
}

// NewBookingDecoders knows the v1 booking payloads.
func NewBookingDecoders() *DecoderRegistry {
	reg := NewDecoderRegistry()
	reg.Register(enums.EventBookingCreated, 1, Typed[payloads.BookingCreatedEvent])
	reg.Register(enums.EventBookingActivityRecorded, 1, Typed[payloads.BookingActivityRecordedEvent])
	return reg
}

func (r *DecoderRegistry) Register(eventType enums.OutboxEventType, version int, decoder Decoder) {
	r.decoders[decoderKey{eventType: eventType, version: version}] = decoder
}

// Decode reads data with the decoder registered for eventType at version.
// Version 0 means the envelope predates versioning and is read as v1.
func (r *DecoderRegistry) Decode(eventType enums.OutboxEventType, version int, data json.RawMessage) (any, error) {
	if version == 0 {
		version = 1
	}
	decoder, ok := r.decoders[decoderKey{eventType: eventType, version: version}]
	if !ok {
		return nil, fmt.Errorf("%w for %s@v%d", ErrNoDecoder, eventType, version)
	}
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, fmt.Errorf("empty %s payload", eventType)
	}
	return decoder(data)
}

// Typed decodes into a fresh *T.
func Typed[T any](data json.RawMessage) (any, error) {
	out := new(T)
	if err := json.Unmarshal(data, out); err != nil {
		return nil, err
	}
	return out, nil
}
