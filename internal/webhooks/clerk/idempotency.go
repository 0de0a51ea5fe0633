package clerkwebhook

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// IdempotencyStore is the slice of the Redis client the guard needs.
type IdempotencyStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IdempotencyKey(scope, id string) string
}

// IdempotencyGuard remembers processed svix message ids so redeliveries are
// acknowledged without re-running their side effects.
type IdempotencyGuard struct {
	store IdempotencyStore
	ttl   time.Duration
	scope string
}

func NewIdempotencyGuard(store IdempotencyStore, ttl time.Duration, scope string) (*IdempotencyGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if scope == "" {
		return nil, errors.New("scope is required")
	}
	return &IdempotencyGuard{store: store, ttl: ttl, scope: scope}, nil
}

// CheckAndMark returns true when the message was already processed. A fresh
// message is marked before the caller handles it.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, messageID string) (bool, error) {
	if messageID == "" {
		return false, errors.New("message id is required")
	}
	key := g.store.IdempotencyKey(g.scope, messageID)
	set, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !set, nil
}

// Release forgets a mark so a failed handler gets another delivery attempt.
func (g *IdempotencyGuard) Release(ctx context.Context, messageID string) error {
	if messageID == "" {
		return errors.New("message id is required")
	}
	return g.store.Del(ctx, g.store.IdempotencyKey(g.scope, messageID))
}
