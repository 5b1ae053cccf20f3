package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a single-process Store backed by a mutex-guarded map.
// Expired records are dropped lazily, when their key is next taken.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*Record
	now     func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
		now:     time.Now,
	}
}

// Take implements Store.
func (m *MemoryStore) Take(ctx context.Context, key string, limit int64, window time.Duration) (Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	rec, ok := m.records[key]
	if !ok || !now.Before(rec.ResetAt) {
		rec = &Record{Count: 1, ResetAt: now.Add(window)}
		m.records[key] = rec
		return *rec, true, nil
	}

	if rec.Count < limit {
		rec.Count++
		return *rec, true, nil
	}

	return *rec, false, nil
}

// Len returns the number of stored records, including lazily expired
// ones.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
