package domain

import "time"

// Quote is the latest best bid/ask pair for the tracked instrument.
// OriginTime carries the feed's own timestamp; ObservedAt is always the
// ingestor's local clock at receipt, so downstream consumers can measure
// propagation latency. Last-value semantics: each tick overwrites the
// previous quote, no history is retained.
type Quote struct {
	BestBid    float64 `json:"best_bid"`
	BestAsk    float64 `json:"best_ask"`
	OriginTime string  `json:"orig_timestamp"`
	ObservedAt string  `json:"timestamp"`
}

// Age returns how long ago the quote was observed by the ingestor.
// The second return value is false when ObservedAt cannot be parsed.
func (q Quote) Age(now time.Time) (time.Duration, bool) {
	observed, err := time.Parse(time.RFC3339Nano, q.ObservedAt)
	if err != nil {
		return 0, false
	}
	return now.Sub(observed), true
}

// Equal reports whether two quotes are identical. Subscribers use this to
// treat duplicate delivery as a no-op.
func (q Quote) Equal(other Quote) bool {
	return q == other
}
