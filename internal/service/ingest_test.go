package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"exchange_go/internal/domain"
)

func tick(bid, ask float64) domain.Quote {
	return domain.Quote{
		BestBid:    bid,
		BestAsk:    ask,
		OriginTime: "2024-03-01T12:00:00Z",
		ObservedAt: "2024-03-01T12:00:00.1Z",
	}
}

func TestIngestor_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("Tick Reaches Cache And Broadcaster", func(t *testing.T) {
		cache := &fakeCache{}
		bc := &fakeBroadcaster{}
		ing := NewIngestor(cache, bc, 8)

		ing.process(ctx, tick(1000000, 1000100))

		if len(cache.puts) != 1 {
			t.Fatalf("cache puts = %d, want 1", len(cache.puts))
		}
		if bc.publishCount() != 1 {
			t.Fatalf("publishes = %d, want 1", bc.publishCount())
		}
	})

	t.Run("Cache Failure Does Not Block Publish", func(t *testing.T) {
		cache := &fakeCache{putErr: errors.New("cache down")}
		bc := &fakeBroadcaster{}
		ing := NewIngestor(cache, bc, 8)

		ing.process(ctx, tick(1, 2))

		if bc.publishCount() != 1 {
			t.Error("publish must be attempted even when the cache write fails")
		}
	})

	t.Run("Publish Failure Does Not Block Cache", func(t *testing.T) {
		cache := &fakeCache{}
		bc := &fakeBroadcaster{publishErr: errors.New("topic down")}
		ing := NewIngestor(cache, bc, 8)

		ing.process(ctx, tick(1, 2))
		ing.process(ctx, tick(3, 4))

		if len(cache.puts) != 2 {
			t.Errorf("cache puts = %d, want 2; a failed publish must not block the next tick", len(cache.puts))
		}
	})

	t.Run("Last Value Wins", func(t *testing.T) {
		cache := &fakeCache{}
		bc := &fakeBroadcaster{}
		ing := NewIngestor(cache, bc, 8)

		ing.process(ctx, tick(1, 2))
		ing.process(ctx, tick(3, 4))

		got, ok, _ := cache.Get(ctx)
		if !ok || got.BestBid != 3 {
			t.Errorf("cache should hold the latest quote, got %+v", got)
		}
	})
}

func TestIngestor_Run(t *testing.T) {
	cache := &fakeCache{}
	bc := &fakeBroadcaster{}
	ing := NewIngestor(cache, bc, 8)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ing.Run(ctx)
		close(done)
	}()

	ing.Inbox() <- tick(1000000, 1000100)
	ing.Inbox() <- tick(1000010, 1000110)

	deadline := time.After(2 * time.Second)
	for bc.publishCount() < 2 {
		select {
		case <-deadline:
			t.Fatal("ticks were not processed")
		case <-time.After(5 * time.Millisecond):
		}
	}

	// Arrival order is preserved by the serial consumer loop.
	bc.mu.Lock()
	first, second := bc.published[0], bc.published[1]
	bc.mu.Unlock()
	if first.BestBid != 1000000 || second.BestBid != 1000010 {
		t.Errorf("ticks processed out of order: %+v then %+v", first, second)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on context cancellation")
	}
}
