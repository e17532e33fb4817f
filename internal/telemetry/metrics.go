package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the client-side counters for remote calls and searches.
type Metrics struct {
	FetchesTotal  *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	SearchesTotal *prometheus.CounterVec
	TripsReturned *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arrivatui_fetches_total",
				Help: "Total number of remote fetches by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "arrivatui_fetch_duration_seconds",
				Help:    "Duration of remote fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		SearchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arrivatui_searches_total",
				Help: "Total number of trip searches by result kind",
			},
			[]string{"result"},
		),
		TripsReturned: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arrivatui_trips_returned_total",
				Help: "Total number of trips parsed by side",
			},
			[]string{"side"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.FetchesTotal, m.FetchDuration, m.SearchesTotal, m.TripsReturned)
	}
	return m
}

// ObserveFetch records one remote call. A nil receiver is a no-op.
func (m *Metrics) ObserveFetch(endpoint string, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.FetchesTotal.WithLabelValues(endpoint, outcome).Inc()
	m.FetchDuration.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())
}

// ObserveSearch records the result kind of a search and how many trips each side produced.
func (m *Metrics) ObserveSearch(result string, outbound, inbound int) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(result).Inc()
	m.TripsReturned.WithLabelValues("outward").Add(float64(outbound))
	m.TripsReturned.WithLabelValues("return").Add(float64(inbound))
}

// NewMetricsRouter exposes gatherer on GET /metrics.
func NewMetricsRouter(gatherer prometheus.Gatherer) *httprouter.Router {
	router := httprouter.New()
	router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return router
}

// StartMetricsServer serves metrics on addr until ctx is cancelled.
func StartMetricsServer(ctx context.Context, addr string, gatherer prometheus.Gatherer) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewMetricsRouter(gatherer),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	LogInfo("Starting metrics server", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
