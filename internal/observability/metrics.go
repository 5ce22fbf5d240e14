package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "runway_selector"

// Metrics holds the Prometheus counters, histograms, and gauges for the selector.
type Metrics struct {
	CyclesTotal       prometheus.Counter
	AirportsProcessed prometheus.Counter
	AirportErrors     *prometheus.CounterVec // labels: kind={parse,configuration,missing_metar,operator}
	Selections        *prometheus.CounterVec // labels: reason
	OperatorPrompts   prometheus.Counter
	PipelineRunning   prometheus.Gauge
	CycleDuration     prometheus.Histogram

	// METAR source metrics.
	FetchDuration prometheus.Histogram
	FetchErrors   prometheus.Counter
	METARCache    *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.CyclesTotal,
		m.AirportsProcessed,
		m.AirportErrors,
		m.Selections,
		m.OperatorPrompts,
		m.PipelineRunning,
		m.CycleDuration,
		m.FetchDuration,
		m.FetchErrors,
		m.METARCache,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Total selection cycles run.",
		}),
		AirportsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "airports_processed_total",
			Help:      "Total airports that produced a runway decision.",
		}),
		AirportErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "airport_errors_total",
			Help:      "Airports skipped in a cycle, by kind of failure.",
		}, []string{"kind"}),
		Selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selections_total",
			Help:      "Runway decisions by reason.",
		}, []string{"reason"}),
		OperatorPrompts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operator_prompts_total",
			Help:      "Times the operator was asked to choose an ENGM configuration.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while the selector is running, 0 when shut down.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a complete fetch-select-write cycle.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "metar_fetch_duration_seconds",
			Help:      "Duration of a METAR fetch.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "metar_fetch_errors_total",
			Help:      "Failed METAR fetch attempts.",
		}),
		METARCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "metar_cache_total",
			Help:      "METAR cache lookups by result.",
		}, []string{"result"}),
	}
}
