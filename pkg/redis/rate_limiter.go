package redis

import (
	"context"
	"fmt"
	"time"
)

// Rule is a fixed-window limit for one action.
type Rule struct {
	Limit  int
	Window time.Duration
}

// RateLimiter counts actions per (subject, action) in Redis fixed windows.
// Limits are injected per action so callers never share a global table.
type RateLimiter struct {
	rules    map[string]Rule
	fallback Rule
}

var (
	limiterIncr   = Incr
	limiterExpire = Expire
)

// NewRateLimiter creates a rate limiter with the given per-action rules
func NewRateLimiter(rules map[string]Rule) *RateLimiter {
	return &RateLimiter{
		rules:    rules,
		fallback: Rule{Limit: 5, Window: 5 * time.Minute},
	}
}

// Allow reports whether subject may perform action, consuming one slot if so
func (l *RateLimiter) Allow(ctx context.Context, subject, action string) (bool, error) {
	rule, ok := l.rules[action]
	if !ok {
		rule = l.fallback
	}

	key := fmt.Sprintf("rate_limit:%s:%s", action, subject)
	count, err := limiterIncr(ctx, key)
	if err != nil {
		return false, err
	}
	if count == 1 {
		// First hit opens the window
		if err := limiterExpire(ctx, key, rule.Window); err != nil {
			return false, err
		}
	}

	return count <= int64(rule.Limit), nil
}
