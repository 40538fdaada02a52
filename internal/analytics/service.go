package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/DevStdio379/settisfy-web/internal/analytics/query"
	"github.com/DevStdio379/settisfy-web/internal/analytics/types"
	"github.com/DevStdio379/settisfy-web/pkg/bigquery"
	"github.com/DevStdio379/settisfy-web/pkg/logger"
)

const bookingsReport = "bookings"

// Service provides booking reports built from the booking_events table.
type Service interface {
	Query(ctx context.Context, req types.BookingQueryRequest) (*types.BookingQueryResponse, error)
}

// ReportCache stores rendered reports for a short while. The Redis client
// satisfies it.
type ReportCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	ReportKey(report, window string) string
}

type service struct {
	bookings query.BookingService
	cache    ReportCache
	ttl      time.Duration
	logg     *logger.Logger
}

// NewService builds an analytics service backed by BigQuery. A nil cache or a
// non-positive ttl disables caching.
func NewService(client *bigquery.Client, cache ReportCache, ttl time.Duration, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, errors.New("bigquery client required")
	}
	bookings, err := query.NewBookingService(client)
	if err != nil {
		return nil, err
	}
	return &service{bookings: bookings, cache: cache, ttl: ttl, logg: logg}, nil
}

// Query serves a cached report for the same window when one exists. Cache
// failures fall through to BigQuery.
func (s *service) Query(ctx context.Context, req types.BookingQueryRequest) (*types.BookingQueryResponse, error) {
	if s.cache == nil || s.ttl <= 0 {
		return s.bookings.Query(ctx, req)
	}

	key := s.cache.ReportKey(bookingsReport, windowKey(req))
	if raw, err := s.cache.Get(ctx, key); err == nil {
		var cached types.BookingQueryResponse
		if json.Unmarshal([]byte(raw), &cached) == nil {
			return &cached, nil
		}
	}

	resp, err := s.bookings.Query(ctx, req)
	if err != nil {
		return nil, err
	}
	if encoded, err := json.Marshal(resp); err == nil {
		if err := s.cache.Set(ctx, key, string(encoded), s.ttl); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "cacheKey", key), "analytics.report.cache_write_failed")
		}
	}
	return resp, nil
}

// windowKey truncates to the minute so repeated "last 7 days" requests within
// a minute share an entry.
func windowKey(req types.BookingQueryRequest) string {
	return fmt.Sprintf("%d-%d",
		req.Start.UTC().Truncate(time.Minute).Unix(),
		req.End.UTC().Truncate(time.Minute).Unix(),
	)
}
