package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreTake(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore()
	store.now = clock.Now
	ctx := context.Background()

	rec, admitted, err := store.Take(ctx, "k", 2, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !admitted || rec.Count != 1 {
		t.Fatalf("expected fresh record with count 1, got count=%d admitted=%v", rec.Count, admitted)
	}
	if got, want := rec.ResetAt, clock.Now().Add(time.Minute); !got.Equal(want) {
		t.Errorf("expected resetAt %v, got %v", want, got)
	}

	rec, admitted, _ = store.Take(ctx, "k", 2, time.Minute)
	if !admitted || rec.Count != 2 {
		t.Fatalf("expected count 2, got count=%d admitted=%v", rec.Count, admitted)
	}

	// At the limit: the count must not move.
	rec, admitted, _ = store.Take(ctx, "k", 2, time.Minute)
	if admitted {
		t.Fatal("expected rejection at the limit")
	}
	if rec.Count != 2 {
		t.Errorf("rejected take must not increment: got %d", rec.Count)
	}
}

func TestMemoryStoreExpiresLazily(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore()
	store.now = clock.Now
	ctx := context.Background()

	store.Take(ctx, "k", 1, time.Minute)
	store.Take(ctx, "k", 1, time.Minute)

	clock.Advance(2 * time.Minute)

	rec, admitted, _ := store.Take(ctx, "k", 1, time.Minute)
	if !admitted || rec.Count != 1 {
		t.Fatalf("expired record must behave as absent: count=%d admitted=%v", rec.Count, admitted)
	}
	if got, want := rec.ResetAt, clock.Now().Add(time.Minute); !got.Equal(want) {
		t.Errorf("expected new window end %v, got %v", want, got)
	}
}

func TestMemoryStoreTracksDistinctKeys(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Take(ctx, "a", 1, time.Minute)
	store.Take(ctx, "b", 1, time.Minute)

	if store.Len() != 2 {
		t.Errorf("expected 2 records, got %d", store.Len())
	}
}
