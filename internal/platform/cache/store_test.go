package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_SingleFlightUnderContention(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "loaded", nil
	}

	const workers = 24
	start := make(chan struct{})
	errCh := make(chan error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "hot-key", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "loaded" {
				errCh <- errors.New("unexpected loaded value")
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_ServesCachedValue(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
			t.Fatalf("GetOrLoad %d error: %v", i, err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_TTLExpiry(t *testing.T) {
	t.Parallel()

	store := NewStore(15 * time.Millisecond)
	store.Set(context.Background(), "k", "v")

	if _, ok := store.Get(context.Background(), "k"); !ok {
		t.Fatal("expected fresh entry to be served")
	}

	time.Sleep(30 * time.Millisecond)

	if _, ok := store.Get(context.Background(), "k"); ok {
		t.Fatal("expected entry to expire")
	}
	if got := store.Len(); got != 0 {
		t.Fatalf("expected expired entry to be evicted, have %d entries", got)
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	ctx := context.Background()
	store.Set(ctx, "artist:id:a1", 1)
	store.Set(ctx, "artist:id:a2", 2)
	store.Set(ctx, "season:active", 3)

	store.DeletePrefix(ctx, "artist:")

	if _, ok := store.Get(ctx, "artist:id:a1"); ok {
		t.Fatal("expected artist keys to be dropped")
	}
	if _, ok := store.Get(ctx, "season:active"); !ok {
		t.Fatal("expected unrelated key to survive")
	}
}
