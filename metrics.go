package tokgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    prefetchCounter prometheus.Counter
//	    getHistogram    prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordPrefetch(blocks int, tokens int64, duration time.Duration, err error) {
//	    p.prefetchCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordPrefetch is called after each prefetch operation.
	// blocks is the number of distinct blocks requested, tokens the total
	// token count loaded, duration the total time taken, err nil on success.
	RecordPrefetch(blocks int, tokens int64, duration time.Duration, err error)

	// RecordGet is called after each sample fetch.
	RecordGet(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordPrefetch(int, int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordGet(time.Duration, error)                  {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	PrefetchCount      atomic.Int64
	PrefetchErrors     atomic.Int64
	PrefetchBlocks     atomic.Int64
	PrefetchTokens     atomic.Int64
	PrefetchTotalNanos atomic.Int64
	GetCount           atomic.Int64
	GetErrors          atomic.Int64
	GetTotalNanos      atomic.Int64
}

// RecordPrefetch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPrefetch(blocks int, tokens int64, duration time.Duration, err error) {
	b.PrefetchCount.Add(1)
	b.PrefetchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.PrefetchErrors.Add(1)
		return
	}
	b.PrefetchBlocks.Add(int64(blocks))
	b.PrefetchTokens.Add(tokens)
}

// RecordGet implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGet(duration time.Duration, err error) {
	b.GetCount.Add(1)
	b.GetTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.GetErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		PrefetchCount:    b.PrefetchCount.Load(),
		PrefetchErrors:   b.PrefetchErrors.Load(),
		PrefetchBlocks:   b.PrefetchBlocks.Load(),
		PrefetchTokens:   b.PrefetchTokens.Load(),
		PrefetchAvgNanos: b.getAvgPrefetchNanos(),
		GetCount:         b.GetCount.Load(),
		GetErrors:        b.GetErrors.Load(),
		GetAvgNanos:      b.getAvgGetNanos(),
	}
}

func (b *BasicMetricsCollector) getAvgPrefetchNanos() int64 {
	count := b.PrefetchCount.Load()
	if count == 0 {
		return 0
	}
	return b.PrefetchTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgGetNanos() int64 {
	count := b.GetCount.Load()
	if count == 0 {
		return 0
	}
	return b.GetTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	PrefetchCount    int64
	PrefetchErrors   int64
	PrefetchBlocks   int64
	PrefetchTokens   int64
	PrefetchAvgNanos int64
	GetCount         int64
	GetErrors        int64
	GetAvgNanos      int64
}
