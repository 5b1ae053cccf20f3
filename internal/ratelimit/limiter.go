package ratelimit

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/S-FX-com/Enque-Backend/internal/metrics"
)

// Policy names the limit applied to one route class. Callers pick a
// policy per route class, not per call.
type Policy struct {
	Name      string
	Limit     int64
	Window    time.Duration
	KeyPrefix string
}

// Default policies per route class.
var (
	PolicyAuth    = Policy{Name: "auth", Limit: 10, Window: time.Minute, KeyPrefix: "rl:auth"}
	PolicyWrite   = Policy{Name: "write", Limit: 60, Window: time.Minute, KeyPrefix: "rl:write"}
	PolicyRead    = Policy{Name: "read", Limit: 240, Window: time.Minute, KeyPrefix: "rl:read"}
	PolicyGeneral = Policy{Name: "general", Limit: 120, Window: time.Minute, KeyPrefix: "rl:general"}
)

// Decision is the outcome of one rate limit check. A rejection is a
// normal outcome, not an error.
type Decision struct {
	Allowed    bool
	Limit      int64
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter admits or rejects requests against a shared counter store.
type Limiter struct {
	store  Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewLimiter creates a Limiter over the given store.
func NewLimiter(store Store, logger zerolog.Logger) *Limiter {
	return &Limiter{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Check applies policy to the identity key. A store failure admits the
// request: rejecting legitimate traffic over an infrastructure hiccup
// is the wrong trade, so availability wins over strictness here.
func (l *Limiter) Check(ctx context.Context, key string, policy Policy) Decision {
	rec, admitted, err := l.store.Take(ctx, policy.KeyPrefix+":"+key, policy.Limit, policy.Window)
	if err != nil {
		metrics.RateLimitStoreFailures.Inc()
		l.logger.Warn().
			Err(err).
			Str("policy", policy.Name).
			Str("key", key).
			Msg("rate limit store unavailable, failing open")
		return Decision{
			Allowed:   true,
			Limit:     policy.Limit,
			Remaining: policy.Limit,
			ResetAt:   l.now().Add(policy.Window),
		}
	}

	remaining := policy.Limit - rec.Count
	if remaining < 0 {
		remaining = 0
	}

	if admitted {
		return Decision{
			Allowed:   true,
			Limit:     policy.Limit,
			Remaining: remaining,
			ResetAt:   rec.ResetAt,
		}
	}

	return Decision{
		Allowed:    false,
		Limit:      policy.Limit,
		Remaining:  0,
		ResetAt:    rec.ResetAt,
		RetryAfter: ceilSeconds(rec.ResetAt.Sub(l.now())),
	}
}

// ceilSeconds rounds a duration up to whole seconds, clamping at one so
// a Retry-After header is never zero.
func ceilSeconds(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Second
	}
	s := d / time.Second
	if d%time.Second != 0 {
		s++
	}
	return s * time.Second
}
