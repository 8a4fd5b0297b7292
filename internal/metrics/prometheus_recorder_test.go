package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("crawl", 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncBuildOutcome(BuildSuccess)
	pr.SetEntries("/srv/site", 42)
	pr.IncCacheLookup(CacheHit)
	pr.IncCacheLookup(CacheHit)
	pr.IncDispatch("Entry")
	pr.IncDispatch("")

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, mfs, 6)

	assert.InDelta(t, 2, testutil.ToFloat64(pr.cacheLookups.WithLabelValues("hit")), 0.001)
	assert.InDelta(t, 42, testutil.ToFloat64(pr.entries.WithLabelValues("/srv/site")), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.dispatches.WithLabelValues("none")), 0.001)
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.IncDispatch("Entry")
		pr.ObserveBuildDuration(time.Second)
	})
}

func TestOrNoop(t *testing.T) {
	assert.Equal(t, NoopRecorder{}, OrNoop(nil))
	pr := NewPrometheusRecorder(nil)
	assert.Same(t, pr, OrNoop(pr))
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).IncBuildOutcome(BuildFailed)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `flatsite_generation_outcomes_total{outcome="failed"} 1`)
}
