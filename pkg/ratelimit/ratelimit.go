// Package ratelimit implements fixed-window request counters shared across processes.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// Store atomically increments the counter for key, starting a window of the given length on first hit.
// It returns the count after increment and the time left in the window.
type Store interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}

type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAfter time.Duration
}

type Limiter struct {
	store  Store
	max    int
	window time.Duration
}

func New(store Store, max int, window time.Duration) (*Limiter, error) {
	if store == nil {
		return nil, errors.New("ratelimit: store is required")
	}
	if max <= 0 || window <= 0 {
		return nil, errors.New("ratelimit: max and window must be positive")
	}
	return &Limiter{store: store, max: max, window: window}, nil
}

func (l *Limiter) Limit() int { return l.max }

// Allow counts one attempt against key. Every attempt counts, allowed or not.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	count, ttl, err := l.store.Incr(ctx, key, l.window)
	if err != nil {
		return Result{}, err
	}
	if ttl <= 0 {
		ttl = l.window
	}
	remaining := l.max - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:    int(count) <= l.max,
		Limit:      l.max,
		Remaining:  remaining,
		ResetAfter: ttl,
	}, nil
}
