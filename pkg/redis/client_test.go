package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevStdio379/settisfy-web/pkg/config"
)

type memoryCmdable struct {
	data    map[string]string
	counter map[string]int64
	ttl     map[string]time.Duration
	incrErr error
}

func newMemoryCmdable() *memoryCmdable {
	return &memoryCmdable{
		data:    map[string]string{},
		counter: map[string]int64{},
		ttl:     map[string]time.Duration{},
	}
}

func (m *memoryCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *memoryCmdable) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *memoryCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memoryCmdable) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	if _, ok := m.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *memoryCmdable) Incr(_ context.Context, key string) *redis.IntCmd {
	if m.incrErr != nil {
		return redis.NewIntResult(0, m.incrErr)
	}
	m.counter[key]++
	return redis.NewIntResult(m.counter[key], nil)
}

func (m *memoryCmdable) ExpireNX(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	if _, ok := m.ttl[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.ttl[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (m *memoryCmdable) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	if _, ok := m.data[key]; !ok {
		return redis.NewBoolResult(false, nil)
	}
	m.ttl[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (m *memoryCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	store := newMemoryCmdable()
	client := &Client{store: store}

	var allowed []bool
	for i := 0; i < 3; i++ {
		ok, count, err := client.FixedWindowAllow(ctx, "login:ip:1.2.3.4", 2, time.Minute)
		require.NoError(t, err)
		assert.EqualValues(t, i+1, count)
		allowed = append(allowed, ok)
	}
	assert.Equal(t, []bool{true, true, false}, allowed)
	assert.Equal(t, map[string]time.Duration{"settisfy:rate_limit:login:ip:1.2.3.4": time.Minute}, store.ttl)
}

func TestFixedWindowAllowSurfacesIncrError(t *testing.T) {
	store := newMemoryCmdable()
	store.incrErr = errors.New("READONLY")
	client := &Client{store: store}

	allowed, _, err := client.FixedWindowAllow(context.Background(), "api:acct", 5, time.Minute)
	assert.False(t, allowed)
	assert.ErrorContains(t, err, "READONLY")
}

func TestSetNXOnlyOnce(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMemoryCmdable()}
	key := client.ProcessedEventKey("booking-analytics", "evt-1")

	first, err := client.SetNX(ctx, key, "1", time.Hour)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := client.SetNX(ctx, key, "1", time.Hour)
	require.NoError(t, err)
	assert.False(t, second)

	_, err = client.Get(ctx, "missing")
	assert.ErrorIs(t, err, redis.Nil)
}

func TestExpireOnlyTouchesExistingKeys(t *testing.T) {
	store := newMemoryCmdable()
	client := &Client{store: store}
	ctx := context.Background()

	ok, err := client.Expire(ctx, "missing", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, client.Set(ctx, "lock", "owner", 0))
	ok, err = client.Expire(ctx, "lock", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Minute, store.ttl["lock"])
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	assert.ErrorIs(t, client.Ping(context.Background()), errNotInitialized)
	assert.NoError(t, client.Close())
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	assert.Equal(t, "settisfy:idempotency:scope:id", client.IdempotencyKey("scope", "id"))
	assert.Equal(t, "settisfy:rate_limit:login:1.2.3.4", client.RateLimitKey("login:1.2.3.4"))
	assert.Equal(t, "settisfy:session:access:jti", client.AccessSessionKey("jti"))
	assert.Equal(t, "settisfy:processed:booking-analytics", client.ProcessedEventKey("booking-analytics", " "))
	assert.Equal(t, "settisfy:report:bookings:1-2", client.ReportKey("bookings", "1-2"))
}

func TestOptionsFromConfig(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{
		URL:         "redis://:pw@cache:6380/3",
		PoolSize:    20,
		DialTimeout: 2 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 3, opts.DB)
	assert.Equal(t, 20, opts.PoolSize)
	assert.Equal(t, 2*time.Second, opts.DialTimeout)

	_, err = optionsFromConfig(config.RedisConfig{})
	assert.Error(t, err)
}
