package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_CollapsesConcurrentMisses(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "rows", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "leaderboard:global", loader)
			if err != nil {
				t.Errorf("GetOrLoad error: %v", err)
				return
			}
			if got, _ := v.(string); got != "rows" {
				t.Errorf("unexpected value: %v", v)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_ExpiryAndPrefixInvalidation(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ctx := context.Background()
	store.Set(ctx, "scores:week:1", 10)
	store.Set(ctx, "scores:week:2", 20)
	store.Set(ctx, "standings:league:a", "rows")

	if _, ok := store.Get(ctx, "scores:week:1"); !ok {
		t.Fatal("expected fresh entry to be present")
	}

	store.DeletePrefix(ctx, "scores:")
	if _, ok := store.Get(ctx, "scores:week:2"); ok {
		t.Fatal("expected prefix delete to drop scores entries")
	}
	if _, ok := store.Get(ctx, "standings:league:a"); !ok {
		t.Fatal("expected unrelated entry to survive prefix delete")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := store.Get(ctx, "standings:league:a"); ok {
		t.Fatal("expected entry to expire after ttl")
	}
}

func TestStore_NilStoreAlwaysLoads(t *testing.T) {
	t.Parallel()

	var store *Store
	ctx := context.Background()

	store.Set(ctx, "key", 1)
	if _, ok := store.Get(ctx, "key"); ok {
		t.Fatal("expected nil store to never hold entries")
	}

	calls := 0
	for range 3 {
		value, err := store.GetOrLoad(ctx, "key", func(context.Context) (any, error) {
			calls++
			return calls, nil
		})
		if err != nil {
			t.Fatalf("get or load: %v", err)
		}
		if value != calls {
			t.Fatalf("unexpected value: got %v want %d", value, calls)
		}
	}
	if calls != 3 {
		t.Fatalf("expected loader to run every time, ran %d times", calls)
	}
}
