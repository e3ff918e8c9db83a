package infra

import (
	"sync"
	"testing"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := &Metrics{}

	m.RecordTick()
	m.RecordTick()
	m.RecordCachePutFailure()
	m.RecordPublishFailure()
	m.RecordFeedReconnect()
	m.RecordEvaluation(true, 1000)
	m.RecordEvaluation(false, 3000)
	m.RecordEvaluation(false, 0) // no quote, no age sample
	m.RecordSequenceFailure()
	m.SetFeedConnected(true)

	snap := m.Snapshot()

	if snap.TicksIngested != 2 {
		t.Errorf("ticks = %d, want 2", snap.TicksIngested)
	}
	if snap.CachePutFailures != 1 || snap.PublishFailures != 1 || snap.FeedReconnects != 1 {
		t.Errorf("failure counters wrong: %+v", snap)
	}
	if snap.OrdersEvaluated != 3 || snap.OrdersExecuted != 1 || snap.OrdersRejected != 2 {
		t.Errorf("order counters wrong: %+v", snap)
	}
	if snap.SequenceFailures != 1 {
		t.Errorf("sequence failures = %d, want 1", snap.SequenceFailures)
	}
	if snap.AvgQuoteAgeNs != 2000 {
		t.Errorf("avg quote age = %d, want 2000", snap.AvgQuoteAgeNs)
	}
	if !snap.FeedConnected {
		t.Error("feed should be connected")
	}
}

func TestMetrics_ConcurrentAccess(t *testing.T) {
	m := &Metrics{}
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.RecordTick()
				m.RecordEvaluation(j%2 == 0, 10)
			}
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	if snap.TicksIngested != 5000 {
		t.Errorf("ticks = %d, want 5000", snap.TicksIngested)
	}
	if snap.OrdersEvaluated != 5000 || snap.OrdersExecuted != 2500 {
		t.Errorf("order counters wrong under concurrency: %+v", snap)
	}
}

func TestMetrics_Reset(t *testing.T) {
	m := &Metrics{}
	m.RecordTick()
	m.SetFeedConnected(true)
	m.Reset()

	snap := m.Snapshot()
	if snap.TicksIngested != 0 || snap.FeedConnected {
		t.Errorf("reset did not clear metrics: %+v", snap)
	}
}
