package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"
)

// For any limit, the first `limit` calls in a window are admitted with
// a strictly decreasing remaining count ending at zero, and the next
// call is rejected without touching the counter.
func TestWindowAccountingProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("limit calls admit, the next rejects", prop.ForAll(
		func(limit int64) bool {
			limiter, _ := newTestLimiter()
			policy := Policy{Name: "p", Limit: limit, Window: time.Minute, KeyPrefix: "rl:p"}
			ctx := context.Background()

			for i := int64(1); i <= limit; i++ {
				d := limiter.Check(ctx, "agent:X", policy)
				if !d.Allowed || d.Remaining != limit-i {
					return false
				}
			}

			d := limiter.Check(ctx, "agent:X", policy)
			return !d.Allowed && d.Remaining == 0
		},
		gen.Int64Range(1, 50),
	))

	properties.Property("expiry resets the count regardless of prior value", prop.ForAll(
		func(limit int64, extra int64) bool {
			limiter, clock := newTestLimiter()
			policy := Policy{Name: "p", Limit: limit, Window: time.Minute, KeyPrefix: "rl:p"}
			ctx := context.Background()

			for i := int64(0); i < limit+extra; i++ {
				limiter.Check(ctx, "agent:X", policy)
			}

			clock.Advance(time.Minute + time.Second)
			d := limiter.Check(ctx, "agent:X", policy)
			return d.Allowed && d.Remaining == limit-1
		},
		gen.Int64Range(1, 20),
		gen.Int64Range(0, 20),
	))

	properties.TestingRun(t)
}

// Concurrent checks on one key never corrupt the counter: the admitted
// total stays within the limit for the memory store, and the count is
// never negative.
func TestConcurrentChecksStayBounded(t *testing.T) {
	store := NewMemoryStore()
	limiter := NewLimiter(store, zerolog.Nop())
	policy := Policy{Name: "p", Limit: 50, Window: time.Minute, KeyPrefix: "rl:p"}

	const goroutines = 8
	const perGoroutine = 20

	admitted := make(chan int, goroutines)
	for g := 0; g < goroutines; g++ {
		go func() {
			n := 0
			for i := 0; i < perGoroutine; i++ {
				if d := limiter.Check(context.Background(), "agent:X", policy); d.Allowed {
					n++
				}
			}
			admitted <- n
		}()
	}

	total := 0
	for g := 0; g < goroutines; g++ {
		total += <-admitted
	}

	if total != int(policy.Limit) {
		t.Errorf("expected exactly %d admissions from the locked store, got %d", policy.Limit, total)
	}
}
