package ratelimit

import (
	"context"
	"time"
)

// Record is the shared counter for one key. Once the wall clock passes
// ResetAt the record is logically expired and must be treated as absent
// regardless of the stored count.
type Record struct {
	Count   int64
	ResetAt time.Time
}

// Store holds the shared counters. Take is the single atomic operation
// every backend must provide:
//
//   - no record (or an expired one): write count=1 with an expiry of
//     window and report it admitted;
//   - a current record below limit: increment and report admitted;
//   - a current record at or above limit: leave the count untouched and
//     report not admitted — rejected requests never consume budget.
//
// Take returns the record as observed after the operation. Backends are
// not required to linearize concurrent calls on the same key; bounded
// over-admission under races is accepted, corrupt counters are not.
type Store interface {
	Take(ctx context.Context, key string, limit int64, window time.Duration) (Record, bool, error)
}
