package discovery

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "bassline"

// Page and search outcomes used as metric labels.
const (
	outcomeOK        = "ok"
	outcomeRetried   = "retried"
	outcomeSkipped   = "skipped"
	outcomeMatched   = "matched"
	outcomeUnmatched = "unmatched"
	outcomeFailed    = "failed"
)

// Metrics holds the Prometheus collectors for discovery runs. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	pages       *prometheus.CounterVec
	searches    *prometheus.CounterVec
	runs        *prometheus.CounterVec
	runDuration prometheus.Histogram
	lastSuccess prometheus.Gauge
	artists     prometheus.Gauge
}

// NewMetrics creates and registers the discovery collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		pages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "discovery",
			Name:      "source_pages_total",
			Help:      "MusicBrainz browse pages by outcome (ok, retried, skipped).",
		}, []string{"outcome"}),
		searches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "discovery",
			Name:      "catalog_searches_total",
			Help:      "Deezer artist searches by outcome (matched, unmatched, failed).",
		}, []string{"outcome"}),
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "discovery",
			Name:      "runs_total",
			Help:      "Completed pipeline runs by outcome.",
		}, []string{"outcome"}),
		runDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "discovery",
			Name:      "run_duration_seconds",
			Help:      "Wall time of pipeline runs.",
			Buckets:   []float64{10, 30, 60, 120, 300, 600, 1200, 2400, 4800},
		}),
		lastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "discovery",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last snapshot written.",
		}),
		artists: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "discovery",
			Name:      "artists",
			Help:      "Artists in the current snapshot.",
		}),
	}
}

func (m *Metrics) page(outcome string) {
	if m != nil {
		m.pages.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) search(outcome string) {
	if m != nil {
		m.searches.WithLabelValues(outcome).Inc()
	}
}

// RunFinished records the outcome of a full run. res is nil on failure.
func (m *Metrics) RunFinished(elapsed time.Duration, res *Result, err error) {
	if m == nil {
		return
	}
	m.runDuration.Observe(elapsed.Seconds())
	if err != nil {
		m.runs.WithLabelValues("failure").Inc()
		return
	}
	m.runs.WithLabelValues("success").Inc()
	if res != nil {
		m.lastSuccess.Set(float64(res.GeneratedAt.Unix()))
		m.artists.Set(float64(len(res.Artists)))
	}
}
