package knngo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational
// metrics. Implement this interface to integrate with monitoring
// systems like Prometheus.
type MetricsCollector interface {
	// RecordFit is called after each fit operation.
	// duration is the total time taken, err is nil if successful.
	RecordFit(duration time.Duration, err error)

	// RecordPredict is called after each predict operation.
	// rows is the number of query points.
	RecordPredict(rows int, duration time.Duration, err error)

	// RecordPredictProba is called after each probability estimation.
	// rows is the number of query points.
	RecordPredictProba(rows int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordFit(time.Duration, error)               {}
func (NoopMetricsCollector) RecordPredict(int, time.Duration, error)      {}
func (NoopMetricsCollector) RecordPredictProba(int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external
// dependencies.
type BasicMetricsCollector struct {
	FitCount          atomic.Int64
	FitErrors         atomic.Int64
	PredictCount      atomic.Int64
	PredictRows       atomic.Int64
	PredictErrors     atomic.Int64
	PredictTotalNanos atomic.Int64
	ProbaCount        atomic.Int64
	ProbaRows         atomic.Int64
	ProbaErrors       atomic.Int64
	ProbaTotalNanos   atomic.Int64
}

// RecordFit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFit(_ time.Duration, err error) {
	b.FitCount.Add(1)
	if err != nil {
		b.FitErrors.Add(1)
	}
}

// RecordPredict implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPredict(rows int, duration time.Duration, err error) {
	b.PredictCount.Add(1)
	b.PredictRows.Add(int64(rows))
	b.PredictTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.PredictErrors.Add(1)
	}
}

// RecordPredictProba implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPredictProba(rows int, duration time.Duration, err error) {
	b.ProbaCount.Add(1)
	b.ProbaRows.Add(int64(rows))
	b.ProbaTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ProbaErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		FitCount:        b.FitCount.Load(),
		FitErrors:       b.FitErrors.Load(),
		PredictCount:    b.PredictCount.Load(),
		PredictRows:     b.PredictRows.Load(),
		PredictErrors:   b.PredictErrors.Load(),
		PredictAvgNanos: avgNanos(&b.PredictTotalNanos, &b.PredictCount),
		ProbaCount:      b.ProbaCount.Load(),
		ProbaRows:       b.ProbaRows.Load(),
		ProbaErrors:     b.ProbaErrors.Load(),
		ProbaAvgNanos:   avgNanos(&b.ProbaTotalNanos, &b.ProbaCount),
	}
}

func avgNanos(total, count *atomic.Int64) int64 {
	c := count.Load()
	if c == 0 {
		return 0
	}
	return total.Load() / c
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	FitCount        int64
	FitErrors       int64
	PredictCount    int64
	PredictRows     int64
	PredictErrors   int64
	PredictAvgNanos int64
	ProbaCount      int64
	ProbaRows       int64
	ProbaErrors     int64
	ProbaAvgNanos   int64
}
