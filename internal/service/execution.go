package service

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"exchange_go/internal/domain"
	"exchange_go/internal/infra"

	"github.com/shopspring/decimal"
)

// ExecutionService evaluates orders against the most recently observed
// quote. It is stateless per request and never returns an error to the
// caller: any internal failure resolves to a "nothing" execution.
type ExecutionService struct {
	cache    domain.QuoteCache
	sequence domain.SequenceGenerator
	slippage decimal.Decimal
	metrics  *infra.Metrics
	now      func() time.Time
}

// NewExecutionService creates an ExecutionService with the given slippage
// tolerance (instrument-scale units).
func NewExecutionService(cache domain.QuoteCache, sequence domain.SequenceGenerator, slippage decimal.Decimal) *ExecutionService {
	return &ExecutionService{
		cache:    cache,
		sequence: sequence,
		slippage: slippage,
		metrics:  infra.GlobalMetrics,
		now:      time.Now,
	}
}

// Execute runs the slippage decision for one order. A sequence id is
// consumed on every evaluated order, executed or not, so emitted ids are
// strictly increasing in evaluation order even for rejections. When the
// cache has no usable quote the order resolves to "nothing"; when the
// sequence generator is also unreachable the id is omitted entirely.
func (s *ExecutionService) Execute(ctx context.Context, order domain.Order) domain.Execution {
	quote, ok, err := s.cache.Get(ctx)
	if err != nil {
		slog.Warn("quote cache read failed", slog.Any("error", err))
		ok = false
	}

	id := ""
	serial, err := s.sequence.Next(ctx)
	if err != nil {
		s.metrics.RecordSequenceFailure()
		slog.Warn("sequence increment failed", slog.Any("error", err))
	} else {
		id = strconv.FormatInt(serial, 10)
	}

	if !ok || id == "" {
		s.metrics.RecordEvaluation(false, 0)
		return domain.NothingExecution(id, order)
	}

	now := s.now()
	quoteAge, hasAge := quote.Age(now)
	if hasAge {
		slog.Info("execution latency", slog.Int64("ms", quoteAge.Milliseconds()))
	}

	execution := s.decide(id, order, quote, now)

	ageNs := int64(0)
	if hasAge {
		ageNs = quoteAge.Nanoseconds()
	}
	s.metrics.RecordEvaluation(execution.Status == domain.StatusDone, ageNs)

	return execution
}

// decide applies the fixed-tolerance touch-price rule: an order either
// fully executes at the current touch price or is fully rejected. No
// queuing, no partial fills, no price improvement beyond the tolerance.
func (s *ExecutionService) decide(id string, order domain.Order, quote domain.Quote, now time.Time) domain.Execution {
	price := decimal.NewFromFloat(order.Price)

	switch order.Side {
	case domain.SideBuy:
		ask := decimal.NewFromFloat(quote.BestAsk)
		if price.Add(s.slippage).GreaterThanOrEqual(ask) {
			return domain.DoneExecution(id, order, quote.BestAsk, now)
		}
	case domain.SideSell:
		bid := decimal.NewFromFloat(quote.BestBid)
		if price.Sub(s.slippage).LessThanOrEqual(bid) {
			return domain.DoneExecution(id, order, quote.BestBid, now)
		}
	}

	return domain.NothingExecution(id, order)
}
