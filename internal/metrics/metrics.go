package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Collector owns the process metrics registry.
type Collector struct {
	reg    *prometheus.Registry
	logger zerolog.Logger

	PlansTotal       prometheus.Counter
	CandidatesScored prometheus.Histogram
	SelectedScore    prometheus.Histogram
	CrowdMisses      prometheus.Counter
	LearnEvents      prometheus.Counter

	TripsPublished  prometheus.Counter
	TripPublishErrs prometheus.Counter
}

// NewCollector creates and registers all collectors on a private registry.
func NewCollector(logger zerolog.Logger) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg:    reg,
		logger: logger.With().Str("component", "metrics").Logger(),
		PlansTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_plans_total",
			Help: "Total plan requests served.",
		}),
		CandidatesScored: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "planner_candidates_per_plan",
			Help:    "Candidate itineraries scored per plan request.",
			Buckets: prometheus.LinearBuckets(0, 2, 10),
		}),
		SelectedScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "planner_selected_score",
			Help:    "Score of the selected route.",
			Buckets: prometheus.ExponentialBuckets(5, 2, 10),
		}),
		CrowdMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_crowd_lookup_misses_total",
			Help: "Crowd lookups that fell back to the default level.",
		}),
		LearnEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_learn_events_total",
			Help: "Preference learning updates applied.",
		}),
		TripsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_trips_published_total",
			Help: "Trip events published to NATS.",
		}),
		TripPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_trip_publish_errors_total",
			Help: "Trip event publish errors.",
		}),
	}

	reg.MustRegister(
		c.PlansTotal, c.CandidatesScored, c.SelectedScore,
		c.CrowdMisses, c.LearnEvents,
		c.TripsPublished, c.TripPublishErrs,
	)

	return c
}

// PlanInc implements service.Metrics.
func (c *Collector) PlanInc() { c.PlansTotal.Inc() }

// CandidatesObserve implements service.Metrics.
func (c *Collector) CandidatesObserve(n int) { c.CandidatesScored.Observe(float64(n)) }

// SelectedScoreObserve implements service.Metrics.
func (c *Collector) SelectedScoreObserve(score float64) { c.SelectedScore.Observe(score) }

// CrowdMissInc implements service.Metrics.
func (c *Collector) CrowdMissInc() { c.CrowdMisses.Inc() }

// LearnInc implements service.Metrics.
func (c *Collector) LearnInc() { c.LearnEvents.Inc() }

// TripPublishedInc implements publisher.PublisherMetrics.
func (c *Collector) TripPublishedInc() { c.TripsPublished.Inc() }

// TripPublishErrInc implements publisher.PublisherMetrics.
func (c *Collector) TripPublishErrInc() { c.TripPublishErrs.Inc() }

// Handler returns the metrics HTTP handler.
func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			c.logger.Error().Err(err).Msg("metrics server error")
		}
	}()
	c.logger.Info().Str("addr", addr).Msg("metrics listening")
	return srv
}
