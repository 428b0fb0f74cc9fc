package telemetry

import (
	"time"

	"github.com/poiesic/newsimport/core"
	"github.com/poiesic/newsimport/ingestion"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors records importer activity as Prometheus metrics.
// It implements ingestion.Instruments.
type Collectors struct {
	BatchesTotal     *prometheus.CounterVec
	BatchesInFlight  prometheus.Gauge
	BatchDuration    prometheus.Histogram
	QueriesTotal     *prometheus.CounterVec
	RecordsImported  prometheus.Counter
	ArticlesRejected prometheus.Counter
	RecordsRetained  prometheus.Counter
	ObservedFailures prometheus.Counter
}

var _ ingestion.Instruments = (*Collectors)(nil)

// NewCollectors creates the importer collectors and registers them with reg.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	factory := promauto.With(reg)
	return &Collectors{
		BatchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsimport_batches_total",
				Help: "Total number of import batches by lifecycle event",
			},
			[]string{"event"},
		),
		BatchesInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "newsimport_batches_in_flight",
				Help: "Number of import batches currently running",
			},
		),
		BatchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "newsimport_batch_duration_seconds",
				Help:    "Duration of import batches in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
		),
		QueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsimport_queries_total",
				Help: "Total number of dispatched queries by outcome",
			},
			[]string{"outcome"},
		),
		RecordsImported: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "newsimport_records_imported_total",
				Help: "Total number of records built from provider responses",
			},
		),
		ArticlesRejected: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "newsimport_records_rejected_total",
				Help: "Total number of articles dropped because they could not be parsed",
			},
		),
		RecordsRetained: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "newsimport_records_retained_total",
				Help: "Total number of distinct records returned after deduplication",
			},
		),
		ObservedFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "newsimport_observed_failures_total",
				Help: "Total number of query failures forwarded to the error observer",
			},
		),
	}
}

// BatchStarted counts a new batch.
func (c *Collectors) BatchStarted(int) {
	c.BatchesTotal.WithLabelValues("started").Inc()
	c.BatchesInFlight.Inc()
}

// QueryCompleted counts one query outcome.
func (c *Collectors) QueryCompleted(m *core.QueryMetric) {
	if m.Failed() {
		c.QueriesTotal.WithLabelValues("failure").Inc()
		return
	}
	c.QueriesTotal.WithLabelValues("success").Inc()
	c.RecordsImported.Add(float64(m.SuccessCount))
}

// RecordsRejected counts unparseable articles.
func (c *Collectors) RecordsRejected(n int) {
	c.ArticlesRejected.Add(float64(n))
}

// BatchFinished records batch duration and the retained record count.
func (c *Collectors) BatchFinished(result *core.ImportResult, elapsed time.Duration) {
	c.BatchesTotal.WithLabelValues("finished").Inc()
	c.BatchesInFlight.Dec()
	c.BatchDuration.Observe(elapsed.Seconds())
	c.RecordsRetained.Add(float64(len(result.Records)))
}

// CountingObserver wraps an observer and counts every failure it sees.
func (c *Collectors) CountingObserver(next ingestion.ErrorObserver) ingestion.ErrorObserver {
	return ingestion.ErrorObserverFunc(func(err error) {
		c.ObservedFailures.Inc()
		if next != nil {
			next.Observe(err)
		}
	})
}
