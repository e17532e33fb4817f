package telemetry

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveFetch(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveFetch("trips", time.Now(), nil)
	m.ObserveFetch("trips", time.Now(), errors.New("timeout"))
	m.ObserveFetch("stops", time.Now(), nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchesTotal.WithLabelValues("trips", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchesTotal.WithLabelValues("trips", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchesTotal.WithLabelValues("stops", "success")))
}

func TestMetrics_ObserveSearch(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveSearch("ok", 3, 2)
	m.ObserveSearch("side_parse", 0, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchesTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchesTotal.WithLabelValues("side_parse")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.TripsReturned.WithLabelValues("outward")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TripsReturned.WithLabelValues("return")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveFetch("trips", time.Now(), nil)
		m.ObserveSearch("ok", 1, 1)
	})
}

func TestNewMetricsRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.ObserveSearch("ok", 1, 0)

	router := NewMetricsRouter(reg)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "arrivatui_searches_total"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/metrics", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
