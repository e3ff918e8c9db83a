package service

import (
	"context"
	"log/slog"

	"exchange_go/internal/domain"
	"exchange_go/internal/infra"
)

// Ingestor consumes normalized quotes from the feed worker's inbox and
// fans each one out to the quote cache and the broadcaster. The two
// writes are independent failure domains: both are attempted on every
// tick, a failure of either is logged and never blocks the next tick.
type Ingestor struct {
	cache       domain.QuoteCache
	broadcaster domain.QuoteBroadcaster
	inbox       chan domain.Quote
	metrics     *infra.Metrics
}

// NewIngestor creates an Ingestor with an inbox buffer of the given size.
func NewIngestor(cache domain.QuoteCache, broadcaster domain.QuoteBroadcaster, buffer int) *Ingestor {
	if buffer <= 0 {
		buffer = 256
	}
	return &Ingestor{
		cache:       cache,
		broadcaster: broadcaster,
		inbox:       make(chan domain.Quote, buffer),
		metrics:     infra.GlobalMetrics,
	}
}

// Inbox is the channel the feed worker delivers quotes into.
func (s *Ingestor) Inbox() chan<- domain.Quote {
	return s.inbox
}

// Run processes quotes until the context is cancelled. Ticks from the
// single feed connection are handled serially, in arrival order.
func (s *Ingestor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case quote := <-s.inbox:
			s.process(ctx, quote)
		}
	}
}

func (s *Ingestor) process(ctx context.Context, quote domain.Quote) {
	if err := s.cache.Put(ctx, quote); err != nil {
		s.metrics.RecordCachePutFailure()
		slog.Warn("quote cache put failed", slog.Any("error", err))
	}
	if err := s.broadcaster.Publish(ctx, quote); err != nil {
		s.metrics.RecordPublishFailure()
		slog.Warn("quote publish failed", slog.Any("error", err))
	}
	slog.Debug("tick ingested",
		slog.Float64("best_bid", quote.BestBid),
		slog.Float64("best_ask", quote.BestAsk),
	)
}
