package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/use-agent/fintables/models"
)

// Recorder collects scrape metrics on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	scrapes   *prometheus.CounterVec
	errors    *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	sessions  prometheus.GaugeFunc
	statement *prometheus.HistogramVec
}

// New creates a Recorder. activeSessions is sampled on every collection;
// it may be nil.
func New(activeSessions func() int) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		scrapes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintables_scrapes_total",
				Help: "Scrape requests by outcome",
			},
			[]string{"outcome"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintables_errors_total",
				Help: "Scrape failures by error code",
			},
			[]string{"code"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fintables_scrape_duration_seconds",
				Help:    "End-to-end duration of a three-statement scrape",
				Buckets: []float64{1, 2.5, 5, 10, 20, 30, 45, 60, 90},
			},
			[]string{"outcome"},
		),
		statement: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fintables_statement_duration_seconds",
				Help:    "Duration of a single statement extraction",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30},
			},
			[]string{"statement", "outcome"},
		),
	}

	if activeSessions == nil {
		activeSessions = func() int { return 0 }
	}
	r.sessions = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "fintables_browser_sessions_active",
			Help: "Browser sessions currently held by requests",
		},
		func() float64 { return float64(activeSessions()) },
	)

	r.registry.MustRegister(r.scrapes, r.errors, r.latency, r.statement, r.sessions)
	return r
}

// RecordScrape records one finished scrape. err is nil on success.
func (r *Recorder) RecordScrape(d time.Duration, err error) {
	outcome := outcomeOf(err)
	r.scrapes.WithLabelValues(outcome).Inc()
	r.latency.WithLabelValues(outcome).Observe(d.Seconds())
	if err != nil {
		r.errors.WithLabelValues(models.AsScrapeError(err).Code).Inc()
	}
}

// RecordRejected counts a request refused before any browser work.
func (r *Recorder) RecordRejected() {
	r.scrapes.WithLabelValues("rejected").Inc()
}

// ObserveStatement implements financials.Observer.
func (r *Recorder) ObserveStatement(statement string, d time.Duration, err error) {
	r.statement.WithLabelValues(statement, outcomeOf(err)).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry (tests gather from it).
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func outcomeOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
