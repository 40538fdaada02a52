package validators

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jinzhu/now"

	pkgerrors "github.com/DevStdio379/settisfy-web/pkg/errors"
)

// MaxReportRange bounds explicit from/to windows on report endpoints.
const MaxReportRange = 366 * 24 * time.Hour

func invalidField(field, msg string, extra map[string]any) *pkgerrors.Error {
	details := map[string]any{"field": field}
	for k, v := range extra {
		details[k] = v
	}
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(details)
}

// ParseQueryInt reads an optional bounded integer query parameter.
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidField(key, "query parameter must be numeric", nil)
	}
	if value < min || value > max {
		return 0, invalidField(key, "query parameter out of range", map[string]any{"min": min, "max": max})
	}
	return value, nil
}

// PathUUID parses a chi route parameter as a UUID.
func PathUUID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, param)))
	if err != nil {
		return uuid.Nil, invalidField(param, "invalid "+param, nil)
	}
	return id, nil
}

// ParseQueryUUIDs splits a comma separated id list, skipping blank entries.
func ParseQueryUUIDs(r *http.Request, key string) ([]uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	ids := []uuid.UUID{}
	if raw == "" {
		return ids, nil
	}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, invalidField(key, "invalid id in list", map[string]any{"value": part})
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ParseQueryRange resolves a reporting window from either an explicit
// from/to pair (RFC3339) or a named preset relative to ref. Presets are
// today, mtd (month to date), 7d, 30d and 90d; 30d is the default.
func ParseQueryRange(r *http.Request, ref time.Time) (time.Time, time.Time, error) {
	query := r.URL.Query()
	from := strings.TrimSpace(query.Get("from"))
	to := strings.TrimSpace(query.Get("to"))
	ref = ref.UTC()

	if from == "" && to == "" {
		return presetRange(strings.TrimSpace(query.Get("preset")), ref)
	}
	if from == "" || to == "" {
		return time.Time{}, time.Time{}, invalidField("from", "from and to must be provided together", nil)
	}
	start, err := time.Parse(time.RFC3339, from)
	if err != nil {
		return time.Time{}, time.Time{}, invalidField("from", "invalid from timestamp", nil)
	}
	end, err := time.Parse(time.RFC3339, to)
	if err != nil {
		return time.Time{}, time.Time{}, invalidField("to", "invalid to timestamp", nil)
	}
	start, end = start.UTC(), end.UTC()
	if !end.After(start) {
		return time.Time{}, time.Time{}, invalidField("to", "to must be after from", nil)
	}
	if end.Sub(start) > MaxReportRange {
		return time.Time{}, time.Time{}, invalidField("from", "range too large", map[string]any{"maxDays": int(MaxReportRange.Hours() / 24)})
	}
	return start, end, nil
}

func presetRange(preset string, ref time.Time) (time.Time, time.Time, error) {
	day := 24 * time.Hour
	switch strings.ToLower(preset) {
	case "today":
		return now.With(ref).BeginningOfDay(), ref, nil
	case "mtd":
		return now.With(ref).BeginningOfMonth(), ref, nil
	case "7d":
		return ref.Add(-7 * day), ref, nil
	case "", "30d":
		return ref.Add(-30 * day), ref, nil
	case "90d":
		return ref.Add(-90 * day), ref, nil
	}
	return time.Time{}, time.Time{}, invalidField("preset", "invalid preset", map[string]any{"allowed": "today, mtd, 7d, 30d, 90d"})
}
