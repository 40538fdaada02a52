package router

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DevStdio379/settisfy-web/internal/analytics/types"
)

// BigQuery NULLABLE columns are pointers; these keep the row builders flat.

func ptr[T any](v T) *T {
	return &v
}

func nonEmpty(value string) *string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return &trimmed
	}
	return nil
}

func idString(id uuid.UUID) *string {
	if id == uuid.Nil {
		return nil
	}
	return ptr(id.String())
}

// cents converts a ringgit amount to whole sen, rounding half away from zero.
func cents(amount decimal.Decimal) *int64 {
	return ptr(amount.Shift(2).Round(0).IntPart())
}

func actorRole(envelope types.Envelope) *string {
	if envelope.Actor == nil {
		return nil
	}
	return nonEmpty(string(envelope.Actor.Role))
}

func actorOf(envelope types.Envelope) string {
	if envelope.Actor == nil {
		return ""
	}
	return string(envelope.Actor.Actor)
}
