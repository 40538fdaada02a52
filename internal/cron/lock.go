package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultLockKey = "cron:settisfy"
	defaultLockTTL = 55 * time.Minute
)

// LockKey scopes the cron lock to an environment so staging and production
// workers sharing a Redis never block each other.
func LockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("settisfy:cron-worker:lock:%s", env)
}

// ErrLockLost means the lock expired or changed hands during a cycle.
var ErrLockLost = errors.New("cron lock lost")

// Lock keeps two cron workers from running the same cycle. Refresh extends a
// held lock and returns ErrLockLost once this worker no longer owns it.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Refresh(ctx context.Context) error
	Release(ctx context.Context) error
	TTL() time.Duration
}

type redisStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

// RedisLock is a SETNX lock whose value names the owning worker so a worker
// never releases a lock that expired and was taken over by another.
type RedisLock struct {
	client   redisStore
	key      string
	ttl      time.Duration
	instance string
	owner    string
}

// NewRedisLock builds a lock under key; empty key and non-positive ttl fall
// back to the defaults.
func NewRedisLock(client redisStore, key, instance string, ttl time.Duration) (*RedisLock, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	if key == "" {
		key = defaultLockKey
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{client: client, key: key, ttl: ttl, instance: instance}, nil
}

func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	owner := l.instance + ":" + uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, owner, l.ttl)
	if err != nil {
		return false, fmt.Errorf("acquire %s: %w", l.key, err)
	}
	if ok {
		l.owner = owner
	}
	return ok, nil
}

func (l *RedisLock) TTL() time.Duration { return l.ttl }

func (l *RedisLock) Refresh(ctx context.Context) error {
	owned, err := l.owned(ctx)
	if err != nil {
		return err
	}
	if !owned {
		return ErrLockLost
	}
	ok, err := l.client.Expire(ctx, l.key, l.ttl)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", l.key, err)
	}
	if !ok {
		return ErrLockLost
	}
	return nil
}

func (l *RedisLock) Release(ctx context.Context) error {
	if l.owner == "" {
		return nil
	}
	defer func() { l.owner = "" }()

	owned, err := l.owned(ctx)
	if err != nil || !owned {
		return err
	}
	if err := l.client.Del(ctx, l.key); err != nil {
		return fmt.Errorf("release %s: %w", l.key, err)
	}
	return nil
}

func (l *RedisLock) owned(ctx context.Context) (bool, error) {
	if l.owner == "" {
		return false, nil
	}
	current, err := l.client.Get(ctx, l.key)
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("read lock owner: %w", err)
	}
	return current == l.owner, nil
}
