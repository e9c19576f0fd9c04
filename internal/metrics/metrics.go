package metrics

import (
	"sync/atomic"
	"time"
)

// MetricID indexes one counter or histogram slot.
type MetricID uint16

// Metric identifiers. The order is frozen: exporters key their defs by
// these values and snapshots index by them.
const (
	MetricSignUpSuccess MetricID = iota
	MetricSignUpDuplicate
	MetricSignUpRejected
	MetricLoginSuccess
	MetricLoginFailure
	MetricLoginRateLimited
	MetricTokenIssued
	MetricTokenRejected
	MetricSessionOpened
	MetricSessionClosed
	MetricLogout
	MetricLogoutAll
	MetricVerifyLatency

	MetricIDCount
)

// HistogramBuckets is the fixed bucket count for latency histograms.
const HistogramBuckets = 8

// histogramBounds are upper bounds in nanoseconds for buckets 0..6;
// bucket 7 is +Inf.
var histogramBounds = [HistogramBuckets - 1]int64{
	int64(5 * time.Microsecond),
	int64(25 * time.Microsecond),
	int64(100 * time.Microsecond),
	int64(500 * time.Microsecond),
	int64(2500 * time.Microsecond),
	int64(10 * time.Millisecond),
	int64(50 * time.Millisecond),
}

// paddedCounter keeps each counter on its own cache line so concurrent
// increments from different request goroutines do not false-share.
type paddedCounter struct {
	value uint64
	_     [56]byte
}

// Config controls metric collection behavior.
type Config struct {
	Enabled       bool
	EnableLatency bool
}

// Metrics holds atomic counters and optional latency histograms. All
// methods are safe for concurrent use; a nil or disabled Metrics is a
// no-op on every path.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [MetricIDCount]paddedCounter
	histograms    [MetricIDCount][HistogramBuckets]paddedCounter
}

// Snapshot is a point-in-time deep copy of all metric values.
type Snapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// New creates a Metrics instance. When cfg.Enabled is false all
// operations are no-ops and Snapshot returns empty maps.
func New(cfg Config) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatency,
	}
}

// Inc atomically increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a latency sample into the histogram for id.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || id >= MetricIDCount {
		return
	}
	bucket := HistogramBuckets - 1
	ns := int64(d)
	for i, bound := range histogramBounds {
		if ns <= bound {
			bucket = i
			break
		}
	}
	atomic.AddUint64(&m.histograms[id][bucket].value, 1)
}

// Snapshot returns a deep copy of every non-zero counter and histogram.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{
		Counters:   make(map[MetricID]uint64),
		Histograms: make(map[MetricID][]uint64),
	}
	if m == nil || !m.enabled {
		return snap
	}

	for id := MetricID(0); id < MetricIDCount; id++ {
		if v := atomic.LoadUint64(&m.counters[id].value); v > 0 {
			snap.Counters[id] = v
		}
	}

	if !m.enableLatency {
		return snap
	}

	for id := MetricID(0); id < MetricIDCount; id++ {
		var buckets []uint64
		for b := 0; b < HistogramBuckets; b++ {
			v := atomic.LoadUint64(&m.histograms[id][b].value)
			if v > 0 && buckets == nil {
				buckets = make([]uint64, HistogramBuckets)
			}
			if buckets != nil {
				buckets[b] = v
			}
		}
		if buckets != nil {
			snap.Histograms[id] = buckets
		}
	}

	return snap
}
