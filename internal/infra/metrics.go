package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Ingest side
	ticksIngested  atomic.Uint64
	cachePutFails  atomic.Uint64
	publishFails   atomic.Uint64
	feedReconnects atomic.Uint64

	// Execution side
	ordersEvaluated atomic.Uint64
	ordersExecuted  atomic.Uint64
	ordersRejected  atomic.Uint64
	sequenceFails   atomic.Uint64

	// Quote age at execution time
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64

	feedConnected atomic.Int32 // 1 = connected
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordTick records one ingested feed tick.
func (m *Metrics) RecordTick() {
	m.ticksIngested.Add(1)
}

// RecordCachePutFailure records a failed quote cache write.
func (m *Metrics) RecordCachePutFailure() {
	m.cachePutFails.Add(1)
}

// RecordPublishFailure records a failed topic publish.
func (m *Metrics) RecordPublishFailure() {
	m.publishFails.Add(1)
}

// RecordFeedReconnect records a feed reconnect attempt.
func (m *Metrics) RecordFeedReconnect() {
	m.feedReconnects.Add(1)
}

// RecordEvaluation records an evaluated order and, when the order was
// priced against a cached quote, the quote's age at evaluation time.
func (m *Metrics) RecordEvaluation(executed bool, quoteAgeNs int64) {
	m.ordersEvaluated.Add(1)
	if executed {
		m.ordersExecuted.Add(1)
	} else {
		m.ordersRejected.Add(1)
	}
	if quoteAgeNs > 0 {
		m.latencySumNs.Add(quoteAgeNs)
		m.latencyCount.Add(1)
	}
}

// RecordSequenceFailure records a failed sequence increment.
func (m *Metrics) RecordSequenceFailure() {
	m.sequenceFails.Add(1)
}

// SetFeedConnected sets the feed connection gauge.
func (m *Metrics) SetFeedConnected(connected bool) {
	if connected {
		m.feedConnected.Store(1)
	} else {
		m.feedConnected.Store(0)
	}
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	TicksIngested    uint64    `json:"ticks_ingested"`
	CachePutFailures uint64    `json:"cache_put_failures"`
	PublishFailures  uint64    `json:"publish_failures"`
	FeedReconnects   uint64    `json:"feed_reconnects"`
	OrdersEvaluated  uint64    `json:"orders_evaluated"`
	OrdersExecuted   uint64    `json:"orders_executed"`
	OrdersRejected   uint64    `json:"orders_rejected"`
	SequenceFailures uint64    `json:"sequence_failures"`
	AvgQuoteAgeNs    int64     `json:"avg_quote_age_ns"`
	FeedConnected    bool      `json:"feed_connected"`
	Timestamp        time.Time `json:"timestamp"`
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgAge int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgAge = m.latencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		TicksIngested:    m.ticksIngested.Load(),
		CachePutFailures: m.cachePutFails.Load(),
		PublishFailures:  m.publishFails.Load(),
		FeedReconnects:   m.feedReconnects.Load(),
		OrdersEvaluated:  m.ordersEvaluated.Load(),
		OrdersExecuted:   m.ordersExecuted.Load(),
		OrdersRejected:   m.ordersRejected.Load(),
		SequenceFailures: m.sequenceFails.Load(),
		AvgQuoteAgeNs:    avgAge,
		FeedConnected:    m.feedConnected.Load() == 1,
		Timestamp:        time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.ticksIngested.Store(0)
	m.cachePutFails.Store(0)
	m.publishFails.Store(0)
	m.feedReconnects.Store(0)
	m.ordersEvaluated.Store(0)
	m.ordersExecuted.Store(0)
	m.ordersRejected.Store(0)
	m.sequenceFails.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
	m.feedConnected.Store(0)
}
