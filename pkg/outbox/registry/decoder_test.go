package registry

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevStdio379/settisfy-web/pkg/enums"
	"github.com/DevStdio379/settisfy-web/pkg/outbox/payloads"
)

func TestDecoderRegistryKeysOnVersion(t *testing.T) {
	reg := NewDecoderRegistry()
	reg.Register(enums.EventBookingCreated, 2, func(data json.RawMessage) (any, error) {
		var decoded map[string]string
		err := json.Unmarshal(data, &decoded)
		return decoded, err
	})

	out, err := reg.Decode(enums.EventBookingCreated, 2, json.RawMessage(`{"status":"approved"}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"status": "approved"}, out)

	_, err = reg.Decode(enums.EventBookingCreated, 3, json.RawMessage(`{}`))
	assert.True(t, errors.Is(err, ErrNoDecoder))
}

func TestBookingDecodersReadUnversionedAsV1(t *testing.T) {
	reg := NewBookingDecoders()
	bookingID := uuid.New()
	raw, err := json.Marshal(payloads.BookingActivityRecordedEvent{
		BookingID: bookingID,
		Type:      enums.ActivitySettlerSelected,
		ToStatus:  enums.BookingStatusSettlerAssigned,
	})
	require.NoError(t, err)

	for _, version := range []int{0, 1} {
		out, err := reg.Decode(enums.EventBookingActivityRecorded, version, raw)
		require.NoError(t, err)
		event, ok := out.(*payloads.BookingActivityRecordedEvent)
		require.True(t, ok, "unexpected type %T", out)
		assert.Equal(t, bookingID, event.BookingID)
		assert.Equal(t, enums.BookingStatusSettlerAssigned, event.ToStatus)
	}
}

func TestDecoderRegistryRejectsEmptyData(t *testing.T) {
	reg := NewBookingDecoders()
	for _, data := range []string{"", "  ", "null"} {
		_, err := reg.Decode(enums.EventBookingCreated, 1, json.RawMessage(data))
		assert.Error(t, err, "data %q", data)
	}
}
