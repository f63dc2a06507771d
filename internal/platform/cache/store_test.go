package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_DeduplicatesConcurrentLoads(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "value", nil
	}

	const workers = 16
	var wg sync.WaitGroup
	results := make(chan any, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := store.GetOrLoad(context.Background(), "same-key", loader)
			if err != nil {
				results <- err
				return
			}
			results <- v
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	for v := range results {
		if got, _ := v.(string); got != "value" {
			t.Fatalf("unexpected result: %v", v)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_Expiry(t *testing.T) {
	store := NewStore(time.Second)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Set(t.Context(), "k", 1)
	if _, ok := store.Get(t.Context(), "k"); !ok {
		t.Fatalf("expected fresh entry")
	}

	now = now.Add(time.Second)
	if _, ok := store.Get(t.Context(), "k"); ok {
		t.Fatalf("expected entry to expire")
	}
	if store.Len() != 0 {
		t.Fatalf("expected expired entry to be evicted")
	}
}

func TestStore_LoaderErrorIsNotCached(t *testing.T) {
	store := NewStore(time.Minute)
	boom := errors.New("boom")
	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return "ok", nil
	}

	if _, err := store.GetOrLoad(t.Context(), "k", loader); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
	v, err := store.GetOrLoad(t.Context(), "k", loader)
	if err != nil || v != "ok" {
		t.Fatalf("expected retry to load, got %v, %v", v, err)
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	store := NewStore(0)
	store.Set(t.Context(), "match:list:10", 1)
	store.Set(t.Context(), "match:list:20", 2)
	store.Set(t.Context(), "match:id:a", 3)

	store.DeletePrefix(t.Context(), "match:list:")
	store.Delete(t.Context(), "missing")

	if store.Len() != 1 {
		t.Fatalf("expected one entry left, got %d", store.Len())
	}
	if _, ok := store.Get(t.Context(), "match:id:a"); !ok {
		t.Fatalf("expected unrelated key to survive")
	}
}
