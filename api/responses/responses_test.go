package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/DevStdio379/settisfy-web/pkg/errors"
	"github.com/DevStdio379/settisfy-web/pkg/logger"
	"github.com/DevStdio379/settisfy-web/pkg/types"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func TestWriteSuccessStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccessStatus(rec, http.StatusCreated, map[string]string{"bookingId": "b1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body types.SuccessEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, map[string]any{"bookingId": "b1"}, body.Data)
}

func TestWriteErrorKeepsClientMessageAndDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.Header().Set(types.RequestIDHeader, "req-42")
	err := pkgerrors.New(pkgerrors.CodeValidation, "bad input").WithDetails(map[string]string{"field": "version"})
	WriteError(context.Background(), nil, rec, err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	apiErr := decodeError(t, rec)
	assert.Equal(t, string(pkgerrors.CodeValidation), apiErr.Code)
	assert.Equal(t, "bad input", apiErr.Message)
	assert.Equal(t, map[string]any{"field": "version"}, apiErr.Details)
	assert.False(t, apiErr.Retryable)
	assert.Equal(t, "req-42", apiErr.RequestID)
}

func TestWriteErrorVersionConflictIsRetryable(t *testing.T) {
	var out bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &out})
	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeConflict, "booking was modified").
		WithDetails(map[string]int64{"expectedVersion": 3, "currentVersion": 4})
	WriteError(context.Background(), logg, rec, fmt.Errorf("accept: %w", err))

	assert.Equal(t, http.StatusConflict, rec.Code)
	apiErr := decodeError(t, rec)
	assert.True(t, apiErr.Retryable)
	assert.Equal(t, map[string]any{"expectedVersion": float64(3), "currentVersion": float64(4)}, apiErr.Details)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "request.rejected", entry["message"])
	assert.Equal(t, float64(4), entry["currentVersion"])
	assert.NotContains(t, entry, "pg_code")
}

func TestWriteErrorHidesServerMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("dial tcp"), "load booking"))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	apiErr := decodeError(t, rec)
	assert.Equal(t, "dependency unavailable", apiErr.Message)
	assert.True(t, apiErr.Retryable)
}

func TestWriteErrorDefaultsToInternalForUntypedErrors(t *testing.T) {
	var out bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &out})
	rec := httptest.NewRecorder()
	WriteError(context.Background(), logg, rec, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	apiErr := decodeError(t, rec)
	assert.Equal(t, string(pkgerrors.CodeInternal), apiErr.Code)
	assert.Equal(t, "internal server error", apiErr.Message)
	assert.Nil(t, apiErr.Details)
	assert.Contains(t, out.String(), `"level":"error"`)
}
