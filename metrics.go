package vectis

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting client-side metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    requests *prometheus.CounterVec
//	    latency  *prometheus.HistogramVec
//	}
//
//	func (p *PrometheusCollector) RecordRequest(op string, d time.Duration, err error) {
//	    p.requests.WithLabelValues(op).Inc()
//	    p.latency.WithLabelValues(op).Observe(d.Seconds())
//	}
type MetricsCollector interface {
	// RecordRequest is called after each HTTP round trip.
	// op is the operation name (e.g. "put", "batch_get"), err is nil if successful.
	RecordRequest(op string, duration time.Duration, err error)

	// RecordBatch is called after each batch operation.
	// count is the number of keys sent, missing the number reported absent.
	RecordBatch(op string, count, missing int, duration time.Duration)

	// RecordSearch is called after each similarity search.
	// k is the number of neighbors requested, results the number returned.
	RecordSearch(k, results int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRequest(string, time.Duration, error)  {}
func (NoopMetricsCollector) RecordBatch(string, int, int, time.Duration) {}
func (NoopMetricsCollector) RecordSearch(int, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	RequestCount      atomic.Int64
	RequestErrors     atomic.Int64
	RequestTotalNanos atomic.Int64
	BatchCount        atomic.Int64
	BatchItems        atomic.Int64
	BatchMissing      atomic.Int64
	SearchCount       atomic.Int64
	SearchErrors      atomic.Int64
	SearchTotalNanos  atomic.Int64
	SearchResults     atomic.Int64

	mu   sync.Mutex
	byOp map[string]int64
}

// RecordRequest implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRequest(op string, duration time.Duration, err error) {
	b.RequestCount.Add(1)
	b.RequestTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RequestErrors.Add(1)
	}

	b.mu.Lock()
	if b.byOp == nil {
		b.byOp = make(map[string]int64)
	}
	b.byOp[op]++
	b.mu.Unlock()
}

// RecordBatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatch(_ string, count, missing int, _ time.Duration) {
	b.BatchCount.Add(1)
	b.BatchItems.Add(int64(count))
	b.BatchMissing.Add(int64(missing))
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(_ int, results int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	b.SearchResults.Add(int64(results))
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	b.mu.Lock()
	byOp := make(map[string]int64, len(b.byOp))
	for k, v := range b.byOp {
		byOp[k] = v
	}
	b.mu.Unlock()

	return BasicMetricsStats{
		RequestCount:    b.RequestCount.Load(),
		RequestErrors:   b.RequestErrors.Load(),
		RequestAvgNanos: avg(b.RequestTotalNanos.Load(), b.RequestCount.Load()),
		RequestsByOp:    byOp,
		BatchCount:      b.BatchCount.Load(),
		BatchItems:      b.BatchItems.Load(),
		BatchMissing:    b.BatchMissing.Load(),
		SearchCount:     b.SearchCount.Load(),
		SearchErrors:    b.SearchErrors.Load(),
		SearchAvgNanos:  avg(b.SearchTotalNanos.Load(), b.SearchCount.Load()),
		SearchResults:   b.SearchResults.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	RequestCount    int64
	RequestErrors   int64
	RequestAvgNanos int64
	RequestsByOp    map[string]int64
	BatchCount      int64
	BatchItems      int64
	BatchMissing    int64
	SearchCount     int64
	SearchErrors    int64
	SearchAvgNanos  int64
	SearchResults   int64
}
