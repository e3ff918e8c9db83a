package domain

import "context"

// QuoteCache is the single-slot store of the latest quote. Put overwrites
// unconditionally and resets the TTL. Get returns a tri-state tagged
// result: (quote, true, nil) on hit, (zero, false, nil) on miss or
// expiry, (zero, false, err) on backend failure. Expiry must surface as
// a miss so that a stalled feed rejects orders instead of executing
// against arbitrarily old prices.
type QuoteCache interface {
	Put(ctx context.Context, quote Quote) error
	Get(ctx context.Context) (Quote, bool, error)
}

// SequenceGenerator produces execution identifiers. Each value is
// strictly greater than any previously returned value across all
// concurrent callers; gaps are acceptable, duplicates are not.
type SequenceGenerator interface {
	Next(ctx context.Context) (int64, error)
}

// QuoteSubscription delivers broadcast quotes in publish order from the
// single publisher. The channel closes when the subscription terminates;
// Err then reports the terminal error, if any. At-least-once delivery,
// no replay buffer.
type QuoteSubscription interface {
	Quotes() <-chan Quote
	Err() error
	Close() error
}

// QuoteBroadcaster republishes every ingested quote to all current
// subscribers. A subscriber that is disconnected when a quote is
// published does not receive it retroactively.
type QuoteBroadcaster interface {
	Publish(ctx context.Context, quote Quote) error
	Subscribe(ctx context.Context) (QuoteSubscription, error)
}

// TokenIssuer hands out short-lived, single-use subscription credentials.
// Redeem consumes the token: it returns true exactly once per issued
// token, and false for unknown, expired or already-redeemed tokens.
type TokenIssuer interface {
	Issue(ctx context.Context) (string, error)
	Redeem(ctx context.Context, token string) (bool, error)
}

// FeedWorker defines the interface for market feed websocket connectors
type FeedWorker interface {
	Connect(ctx context.Context) error
	Disconnect()
	IsConnected() bool
}
