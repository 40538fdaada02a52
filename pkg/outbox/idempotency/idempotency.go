package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const (
	markerClaimed = "claimed"
	markerDone    = "done"

	// DefaultClaimTTL bounds how long a crashed consumer can hold an event.
	DefaultClaimTTL = 5 * time.Minute
)

var (
	ErrConsumerRequired = errors.New("consumer name is required")
	ErrEventIDRequired  = errors.New("event id is required")
)

// Store is the Redis surface the claim markers live in.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	ProcessedEventKey(consumer, eventID string) string
}

// Claim reports what a consumer should do with a delivery.
type Claim int

const (
	// ClaimAcquired means the caller owns the event and must Complete or Release it.
	ClaimAcquired Claim = iota
	// ClaimInFlight means another delivery holds the event; redeliver later.
	ClaimInFlight
	// ClaimDone means the event was already handled.
	ClaimDone
)

func (c Claim) String() string {
	switch c {
	case ClaimAcquired:
		return "acquired"
	case ClaimInFlight:
		return "in_flight"
	case ClaimDone:
		return "done"
	default:
		return fmt.Sprintf("claim(%d)", int(c))
	}
}

// Manager de-duplicates deliveries per consumer. A delivery first takes a
// short-lived claim; only a completed handler turns it into a long-lived
// done marker, so a consumer that dies mid-event does not swallow it.
type Manager struct {
	store    Store
	doneTTL  time.Duration
	claimTTL time.Duration
}

func NewManager(store Store, doneTTL time.Duration) (*Manager, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if doneTTL <= 0 {
		return nil, fmt.Errorf("done ttl must be positive, got %s", doneTTL)
	}
	claimTTL := DefaultClaimTTL
	if claimTTL > doneTTL {
		claimTTL = doneTTL
	}
	return &Manager{store: store, doneTTL: doneTTL, claimTTL: claimTTL}, nil
}

// Begin claims eventID for consumer.
func (m *Manager) Begin(ctx context.Context, consumer string, eventID uuid.UUID) (Claim, error) {
	key, err := m.key(consumer, eventID)
	if err != nil {
		return ClaimInFlight, err
	}
	ok, err := m.store.SetNX(ctx, key, markerClaimed, m.claimTTL)
	if err != nil {
		return ClaimInFlight, fmt.Errorf("claim %s: %w", key, err)
	}
	if ok {
		return ClaimAcquired, nil
	}

	marker, err := m.store.Get(ctx, key)
	switch {
	case errors.Is(err, goredis.Nil):
		// the claim expired between the two calls
		return ClaimInFlight, nil
	case err != nil:
		return ClaimInFlight, fmt.Errorf("read claim %s: %w", key, err)
	case marker == markerDone:
		return ClaimDone, nil
	default:
		return ClaimInFlight, nil
	}
}

// Complete records that the event was handled.
func (m *Manager) Complete(ctx context.Context, consumer string, eventID uuid.UUID) error {
	key, err := m.key(consumer, eventID)
	if err != nil {
		return err
	}
	return m.store.Set(ctx, key, markerDone, m.doneTTL)
}

// Release drops the claim so the next delivery can retry.
func (m *Manager) Release(ctx context.Context, consumer string, eventID uuid.UUID) error {
	key, err := m.key(consumer, eventID)
	if err != nil {
		return err
	}
	return m.store.Del(ctx, key)
}

func (m *Manager) key(consumer string, eventID uuid.UUID) (string, error) {
	if consumer == "" {
		return "", ErrConsumerRequired
	}
	if eventID == uuid.Nil {
		return "", ErrEventIDRequired
	}
	return m.store.ProcessedEventKey(consumer, eventID.String()), nil
}
