// Package metrics collects process-wide counters for outbound calls and
// burn submissions using atomic counters.
package metrics

import (
	"sync/atomic"
	"time"
)

// Source identifies the upstream a call was made to.
type Source string

// Known call sources.
const (
	SourceExplorer Source = "explorer"
	SourcePrice    Source = "price"
	SourceRPC      Source = "rpc"
)

type callCounters struct {
	total        atomic.Int64
	errors       atomic.Int64
	latencyNanos atomic.Int64
}

func (c *callCounters) record(d time.Duration, err error) {
	c.total.Add(1)
	c.latencyNanos.Add(d.Nanoseconds())
	if err != nil {
		c.errors.Add(1)
	}
}

func (c *callCounters) snapshot() CallStats {
	return CallStats{
		Total:        c.total.Load(),
		Errors:       c.errors.Load(),
		LatencyNanos: c.latencyNanos.Load(),
	}
}

func (c *callCounters) reset() {
	c.total.Store(0)
	c.errors.Store(0)
	c.latencyNanos.Store(0)
}

// Metrics holds application metrics using atomic counters for thread safety.
type Metrics struct {
	explorer callCounters
	price    callCounters
	rpc      callCounters

	burnsSubmitted atomic.Int64
	burnsConfirmed atomic.Int64
	burnsFailed    atomic.Int64

	staleResultsDropped atomic.Int64
}

// Global is the global metrics instance.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = &Metrics{}

func (m *Metrics) counters(src Source) *callCounters {
	switch src {
	case SourceExplorer:
		return &m.explorer
	case SourcePrice:
		return &m.price
	default:
		return &m.rpc
	}
}

// RecordCall records an outbound call with its duration and outcome.
func (m *Metrics) RecordCall(src Source, duration time.Duration, err error) {
	m.counters(src).record(duration, err)
}

// RecordBurnSubmitted counts a burn transaction broadcast to the network.
func (m *Metrics) RecordBurnSubmitted() {
	m.burnsSubmitted.Add(1)
}

// RecordBurnResult counts the final outcome of a burn attempt.
func (m *Metrics) RecordBurnResult(err error) {
	if err != nil {
		m.burnsFailed.Add(1)
		return
	}
	m.burnsConfirmed.Add(1)
}

// RecordStaleResult counts an aggregation result discarded because a newer
// refresh had already started.
func (m *Metrics) RecordStaleResult() {
	m.staleResultsDropped.Add(1)
}

// CallStats is a point-in-time view of one call source.
type CallStats struct {
	Total        int64 `json:"total"`
	Errors       int64 `json:"errors"`
	LatencyNanos int64 `json:"latency_nanos"`
}

// AvgLatencyMs returns the average latency in milliseconds, or 0 with no calls.
func (s CallStats) AvgLatencyMs() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.LatencyNanos) / float64(s.Total) / 1e6
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	Explorer            CallStats `json:"explorer"`
	Price               CallStats `json:"price"`
	RPC                 CallStats `json:"rpc"`
	BurnsSubmitted      int64     `json:"burns_submitted"`
	BurnsConfirmed      int64     `json:"burns_confirmed"`
	BurnsFailed         int64     `json:"burns_failed"`
	StaleResultsDropped int64     `json:"stale_results_dropped"`
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Explorer:            m.explorer.snapshot(),
		Price:               m.price.snapshot(),
		RPC:                 m.rpc.snapshot(),
		BurnsSubmitted:      m.burnsSubmitted.Load(),
		BurnsConfirmed:      m.burnsConfirmed.Load(),
		BurnsFailed:         m.burnsFailed.Load(),
		StaleResultsDropped: m.staleResultsDropped.Load(),
	}
}

// Reset resets all metrics to zero.
// Useful for testing.
func (m *Metrics) Reset() {
	m.explorer.reset()
	m.price.reset()
	m.rpc.reset()
	m.burnsSubmitted.Store(0)
	m.burnsConfirmed.Store(0)
	m.burnsFailed.Store(0)
	m.staleResultsDropped.Store(0)
}
