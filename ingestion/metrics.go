package ingestion

import (
	"slices"
	"sync"

	"github.com/poiesic/newsimport/core"
)

// MetricsAggregator collects query metrics from concurrent writers.
// Metrics are kept in the order they were recorded.
type MetricsAggregator struct {
	mu      sync.Mutex
	metrics []*core.QueryMetric
}

// NewMetricsAggregator creates an aggregator sized for n metrics.
func NewMetricsAggregator(n int) *MetricsAggregator {
	return &MetricsAggregator{metrics: make([]*core.QueryMetric, 0, max(n, 0))}
}

// Record appends a metric.
func (a *MetricsAggregator) Record(m *core.QueryMetric) {
	a.mu.Lock()
	a.metrics = append(a.metrics, m)
	a.mu.Unlock()
}

// Snapshot returns a copy of the recorded metrics.
func (a *MetricsAggregator) Snapshot() []*core.QueryMetric {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.metrics)
}

// Len returns the number of recorded metrics.
func (a *MetricsAggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.metrics)
}
