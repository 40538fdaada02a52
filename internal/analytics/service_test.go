package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevStdio379/settisfy-web/internal/analytics/types"
)

type fakeBookingService struct {
	calls    int
	lastReq  types.BookingQueryRequest
	response *types.BookingQueryResponse
	err      error
}

func (f *fakeBookingService) Query(_ context.Context, req types.BookingQueryRequest) (*types.BookingQueryResponse, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	if f.response == nil {
		f.response = &types.BookingQueryResponse{}
	}
	return f.response, nil
}

type memoryCache struct {
	values  map[string]string
	ttl     time.Duration
	failSet bool
}

func newMemoryCache() *memoryCache { return &memoryCache{values: map[string]string{}} }

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if m.failSet {
		return errors.New("OOM command not allowed")
	}
	m.values[key] = value.(string)
	m.ttl = ttl
	return nil
}

func (m *memoryCache) ReportKey(report, window string) string { return report + ":" + window }

func testWindow() types.BookingQueryRequest {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return types.BookingQueryRequest{Start: start, End: start.AddDate(0, 0, 7)}
}

func TestServiceQueryWithoutCacheForwards(t *testing.T) {
	fake := &fakeBookingService{}
	srv := &service{bookings: fake}

	resp, err := srv.Query(context.Background(), testWindow())
	require.NoError(t, err)
	assert.Same(t, fake.response, resp)
	assert.True(t, fake.lastReq.Start.Equal(testWindow().Start))
}

func TestServiceQueryServesCachedReport(t *testing.T) {
	fake := &fakeBookingService{response: &types.BookingQueryResponse{DisputesOpened: 4, RefundedCents: 1250}}
	cache := newMemoryCache()
	srv := &service{bookings: fake, cache: cache, ttl: time.Minute}

	first, err := srv.Query(context.Background(), testWindow())
	require.NoError(t, err)
	second, err := srv.Query(context.Background(), testWindow())
	require.NoError(t, err)

	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, first.DisputesOpened, second.DisputesOpened)
	assert.Equal(t, int64(1250), second.RefundedCents)
	assert.Equal(t, time.Minute, cache.ttl)
}

func TestServiceQueryIgnoresCacheWriteFailure(t *testing.T) {
	fake := &fakeBookingService{}
	srv := &service{bookings: fake, cache: &memoryCache{values: map[string]string{}, failSet: true}, ttl: time.Minute}

	_, err := srv.Query(context.Background(), testWindow())
	require.NoError(t, err)
	_, err = srv.Query(context.Background(), testWindow())
	require.NoError(t, err)
	assert.Equal(t, 2, fake.calls)
}

func TestServiceQueryPropagatesError(t *testing.T) {
	want := errors.New("query failed")
	srv := &service{bookings: &fakeBookingService{err: want}, cache: newMemoryCache(), ttl: time.Minute}

	resp, err := srv.Query(context.Background(), testWindow())
	assert.ErrorIs(t, err, want)
	assert.Nil(t, resp)
}

func TestWindowKeyTruncatesToMinute(t *testing.T) {
	req := testWindow()
	later := types.BookingQueryRequest{Start: req.Start.Add(20 * time.Second), End: req.End.Add(40 * time.Second)}
	assert.Equal(t, windowKey(req), windowKey(later))
}

func TestNewServiceRequiresClient(t *testing.T) {
	_, err := NewService(nil, nil, 0, nil)
	assert.Error(t, err)
}
