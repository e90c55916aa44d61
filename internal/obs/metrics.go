package obs

import (
	"sync/atomic"
	"time"
)

// Metrics collects lightweight counters and latency stats for the
// quote path.
type Metrics struct {
	venueFetchOK      uint64
	venueFetchDropped uint64
	venueFetchStale   uint64
	cacheHits         uint64
	cacheMisses       uint64

	fetchLatency LatencyStats
	routeLatency LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	VenueFetchOK      uint64
	VenueFetchDropped uint64
	VenueFetchStale   uint64
	CacheHits         uint64
	CacheMisses       uint64
	FetchLatency      LatencySnapshot
	RouteLatency      LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// IncVenueFetchOK records a venue that returned a usable quote.
func (m *Metrics) IncVenueFetchOK() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.venueFetchOK, 1)
}

// IncVenueFetchDropped records a venue dropped for a read or decode
// failure.
func (m *Metrics) IncVenueFetchDropped() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.venueFetchDropped, 1)
}

// IncVenueFetchStale records a venue dropped for oracle staleness.
func (m *Metrics) IncVenueFetchStale() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.venueFetchStale, 1)
}

// IncCacheHit records a slab cache hit.
func (m *Metrics) IncCacheHit() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.cacheHits, 1)
}

// IncCacheMiss records a slab cache miss.
func (m *Metrics) IncCacheMiss() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.cacheMisses, 1)
}

// ObserveFetch measures one full quote fan-out.
func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.fetchLatency.Observe(d)
}

// ObserveRoute measures one routing decision.
func (m *Metrics) ObserveRoute(d time.Duration) {
	if m == nil {
		return
	}
	m.routeLatency.Observe(d)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		VenueFetchOK:      atomic.LoadUint64(&m.venueFetchOK),
		VenueFetchDropped: atomic.LoadUint64(&m.venueFetchDropped),
		VenueFetchStale:   atomic.LoadUint64(&m.venueFetchStale),
		CacheHits:         atomic.LoadUint64(&m.cacheHits),
		CacheMisses:       atomic.LoadUint64(&m.cacheMisses),
		FetchLatency:      m.fetchLatency.Snapshot(),
		RouteLatency:      m.routeLatency.Snapshot(),
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos) {
			break
		}
	}

	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	min := atomic.LoadUint64(&l.min)
	max := atomic.LoadUint64(&l.max)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(min),
		Max:   time.Duration(max),
		Avg:   time.Duration(sum / count),
	}
}
