// Package redisstore binds the backing-store primitives the exchange
// depends on (get/set-with-TTL/increment plus publish/subscribe) to
// Redis. Any backend offering the same four atomic primitives and
// at-least-once topic delivery is substitutable.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"exchange_go/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const tokenKeyPrefix = "token:"

// Options configures key namespacing and expiry.
type Options struct {
	Namespace   string
	QuoteKey    string
	SequenceKey string
	QuoteTTL    time.Duration
	TokenTTL    time.Duration
}

// Store implements domain.QuoteCache, domain.SequenceGenerator,
// domain.QuoteBroadcaster and domain.TokenIssuer on top of a single
// Redis client. Every operation is one atomic backend call; the store
// never performs a read-modify-write across two calls.
type Store struct {
	client *redis.Client
	opts   Options
}

// Compile-time checks for the backing-store contracts.
var (
	_ domain.QuoteCache        = (*Store)(nil)
	_ domain.SequenceGenerator = (*Store)(nil)
	_ domain.QuoteBroadcaster  = (*Store)(nil)
	_ domain.TokenIssuer       = (*Store)(nil)
)

// New creates a Store over an existing Redis client.
func New(client *redis.Client, opts Options) *Store {
	if opts.Namespace == "" {
		opts.Namespace = "exchange"
	}
	if opts.QuoteKey == "" {
		opts.QuoteKey = "rate"
	}
	if opts.SequenceKey == "" {
		opts.SequenceKey = "id"
	}
	if opts.QuoteTTL <= 0 {
		opts.QuoteTTL = 30 * time.Second
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 60 * time.Second
	}
	return &Store{client: client, opts: opts}
}

func (s *Store) key(k string) string {
	return s.opts.Namespace + ":" + k
}

// topic is the pub-sub channel quotes are broadcast on. It reuses the
// quote key name, matching the original cache/topic pairing.
func (s *Store) topic() string {
	return s.key(s.opts.QuoteKey)
}

// Put unconditionally overwrites the single quote slot and resets its TTL.
func (s *Store) Put(ctx context.Context, quote domain.Quote) error {
	payload, err := json.Marshal(quote)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(s.opts.QuoteKey), payload, s.opts.QuoteTTL).Err()
}

// Get returns the cached quote. A missing or expired key is a miss, not
// an error; only backend failures surface as errors.
func (s *Store) Get(ctx context.Context) (domain.Quote, bool, error) {
	var quote domain.Quote
	payload, err := s.client.Get(ctx, s.key(s.opts.QuoteKey)).Result()
	if errors.Is(err, redis.Nil) {
		return quote, false, nil
	}
	if err != nil {
		return quote, false, domain.NewTransportError("cache.get", err)
	}
	if err := json.Unmarshal([]byte(payload), &quote); err != nil {
		return quote, false, domain.NewTransportError("cache.decode", err)
	}
	return quote, true, nil
}

// Next atomically increments the shared sequence counter. Values are
// strictly increasing across concurrent callers; gaps are acceptable.
func (s *Store) Next(ctx context.Context) (int64, error) {
	val, err := s.client.Incr(ctx, s.key(s.opts.SequenceKey)).Result()
	if err != nil {
		return 0, domain.NewTransportError("sequence.incr", err)
	}
	return val, nil
}

// Publish broadcasts the quote to all current subscribers. Disconnected
// subscribers do not receive it retroactively.
func (s *Store) Publish(ctx context.Context, quote domain.Quote) error {
	payload, err := json.Marshal(quote)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, s.topic(), payload).Err()
}

// Subscribe opens a quote subscription. Delivery order follows publish
// order from the single publisher. The returned subscription is terminal:
// once its channel closes the caller must subscribe anew.
func (s *Store) Subscribe(ctx context.Context) (domain.QuoteSubscription, error) {
	ps := s.client.Subscribe(ctx, s.topic())

	// Wait for the subscription confirmation so no tick published after
	// this call returns can be missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, domain.NewTransportError("topic.subscribe", err)
	}

	sub := &subscription{
		ps:     ps,
		quotes: make(chan domain.Quote, 64),
	}
	go sub.loop(ctx)
	return sub, nil
}

// Issue generates a disposable subscription credential with its own TTL.
func (s *Store) Issue(ctx context.Context) (string, error) {
	token := uuid.NewString()
	err := s.client.Set(ctx, s.key(tokenKeyPrefix+token), "1", s.opts.TokenTTL).Err()
	if err != nil {
		return "", domain.NewTransportError("token.issue", err)
	}
	return token, nil
}

// Redeem consumes a credential. GETDEL makes redemption single-use:
// a second redeem of the same token, or a redeem after expiry, fails.
func (s *Store) Redeem(ctx context.Context, token string) (bool, error) {
	_, err := s.client.GetDel(ctx, s.key(tokenKeyPrefix+token)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, domain.NewTransportError("token.redeem", err)
	}
	return true, nil
}

// Close releases the underlying Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

// subscription bridges the Redis pub-sub stream into the channel-based
// contract of domain.QuoteSubscription.
type subscription struct {
	ps     *redis.PubSub
	quotes chan domain.Quote

	mu  sync.Mutex
	err error
}

func (sub *subscription) loop(ctx context.Context) {
	defer close(sub.quotes)
	for {
		msg, err := sub.ps.ReceiveMessage(ctx)
		if err != nil {
			sub.setErr(err)
			return
		}

		var quote domain.Quote
		if json.Unmarshal([]byte(msg.Payload), &quote) != nil {
			// Malformed payloads are skipped, not fatal.
			continue
		}

		select {
		case sub.quotes <- quote:
		case <-ctx.Done():
			sub.setErr(ctx.Err())
			return
		}
	}
}

func (sub *subscription) setErr(err error) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.err == nil {
		sub.err = err
	}
}

// Quotes returns the delivery channel. It closes when the subscription
// terminates.
func (sub *subscription) Quotes() <-chan domain.Quote {
	return sub.quotes
}

// Err reports the terminal error after Quotes closes.
func (sub *subscription) Err() error {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	return sub.err
}

// Close tears the subscription down. The delivery channel closes shortly
// after.
func (sub *subscription) Close() error {
	sub.setErr(domain.ErrSubscriptionClosed)
	return sub.ps.Close()
}
