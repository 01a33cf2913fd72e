package auth

import (
	"context"
	"sync"
	"time"
)

// RateLimiter decides whether a request from the given identity may
// proceed.
type RateLimiter interface {
	Allow(ctx context.Context, identity *Identity) error
}

// TierConfig holds the limit for one service tier.
type TierConfig struct {
	RequestsPerMinute int
}

// InProcessLimiter counts requests per subject within a fixed one
// minute window, entirely in memory.
type InProcessLimiter struct {
	tiers      map[string]TierConfig
	defaultRPM int
	mu         sync.Mutex
	counters   map[string]*counter
}

type counter struct {
	count    int
	windowAt time.Time
}

// NewInProcessLimiter creates a limiter with per-tier configuration.
// Identities whose tier has no entry fall back to defaultRPM.
func NewInProcessLimiter(tiers map[string]TierConfig, defaultRPM int) *InProcessLimiter {
	return &InProcessLimiter{
		tiers:      tiers,
		defaultRPM: defaultRPM,
		counters:   make(map[string]*counter),
	}
}

// Allow reports whether the identity is within its limit. A tier with
// a non-positive limit is unthrottled.
func (l *InProcessLimiter) Allow(_ context.Context, identity *Identity) error {
	tier := identity.ServiceTier
	if tier == "" {
		tier = "default"
	}

	rpm := l.defaultRPM
	if tc, ok := l.tiers[tier]; ok {
		rpm = tc.RequestsPerMinute
	}
	if rpm <= 0 {
		return nil
	}

	key := identity.Subject + ":" + tier

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	c, ok := l.counters[key]
	if !ok || now.Sub(c.windowAt) >= time.Minute {
		l.counters[key] = &counter{count: 1, windowAt: now}
		return nil
	}

	c.count++
	if c.count > rpm {
		return ErrTooManyRequests
	}
	return nil
}
