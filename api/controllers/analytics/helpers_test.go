package analytics

import (
	"context"
	"time"

	"github.com/DevStdio379/settisfy-web/internal/analytics/types"
)

type testAnalyticsService struct {
	calls    int
	last     types.BookingQueryRequest
	response *types.BookingQueryResponse
	err      error
}

func (s *testAnalyticsService) Query(ctx context.Context, req types.BookingQueryRequest) (*types.BookingQueryResponse, error) {
	s.calls++
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	if s.response == nil {
		s.response = &types.BookingQueryResponse{}
	}
	return s.response, nil
}

func (s *testAnalyticsService) period() time.Duration {
	return s.last.End.Sub(s.last.Start)
}
