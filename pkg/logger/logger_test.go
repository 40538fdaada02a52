package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/DevStdio379/settisfy-web/pkg/errors"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
	return entry
}

func TestLoggerErrorIncludesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf, Format: "json"})

	ctx := log.WithRequestID(context.Background(), "req-123")
	ctx = log.WithBookingID(ctx, "bk-1")
	log.Error(ctx, "boom", errors.New("boom"))

	entry := decodeEntry(t, buf)
	assert.Equal(t, "req-123", entry[FieldRequestID])
	assert.Equal(t, "bk-1", entry[FieldBookingID])
	assert.Equal(t, "test", entry["service"])
	assert.Contains(t, entry, "stack")
}

func TestLoggerErrorTypedCodeSkipsStack(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf, Format: "json"})

	log.Error(context.Background(), "stale", pkgerrors.New(pkgerrors.CodeConflict, "booking was modified"))

	entry := decodeEntry(t, buf)
	assert.Equal(t, string(pkgerrors.CodeConflict), entry[FieldErrorCode])
	assert.NotContains(t, entry, "stack")
}

func TestLoggerEmptyIDsAreNotAttached(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf, Format: "json"})

	ctx := log.WithUserID(context.Background(), "")
	log.Info(ctx, "anonymous")

	assert.NotContains(t, decodeEntry(t, buf), FieldUserID)
}

func TestLoggerDebugRespectsLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf, Format: "json"})
	log.Debug(context.Background(), "hidden")
	assert.Zero(t, buf.Len())
}

func TestLoggerWarnStackToggle(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf, Format: "json"})
	log.Warn(context.Background(), "quiet")
	assert.NotContains(t, decodeEntry(t, buf), "stack")

	buf.Reset()
	log = New(Options{ServiceName: "test", Output: buf, Format: "json", WarnStack: true})
	log.Warn(context.Background(), "loud")
	assert.Contains(t, decodeEntry(t, buf), "stack")
}

func TestParseLevelDefaults(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("invalid"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" WARN "))
}
