package service

import (
	"context"
	"sync"
	"sync/atomic"

	"exchange_go/internal/domain"
)

// fakeCache is a scripted QuoteCache.
type fakeCache struct {
	mu     sync.Mutex
	quote  domain.Quote
	hit    bool
	getErr error
	putErr error
	puts   []domain.Quote
}

func (f *fakeCache) Put(ctx context.Context, quote domain.Quote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, quote)
	if f.putErr != nil {
		return f.putErr
	}
	f.quote = quote
	f.hit = true
	return nil
}

func (f *fakeCache) Get(ctx context.Context) (domain.Quote, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return domain.Quote{}, false, f.getErr
	}
	return f.quote, f.hit, nil
}

// fakeSequence is an in-memory atomic counter, optionally failing.
type fakeSequence struct {
	counter atomic.Int64
	err     error
}

func (f *fakeSequence) Next(ctx context.Context) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.counter.Add(1), nil
}

// fakeBroadcaster records published quotes.
type fakeBroadcaster struct {
	mu         sync.Mutex
	published  []domain.Quote
	publishErr error
}

func (f *fakeBroadcaster) Publish(ctx context.Context, quote domain.Quote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, quote)
	if f.publishErr != nil {
		return f.publishErr
	}
	return nil
}

func (f *fakeBroadcaster) Subscribe(ctx context.Context) (domain.QuoteSubscription, error) {
	return nil, domain.ErrSubscriptionClosed
}

func (f *fakeBroadcaster) publishCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}
