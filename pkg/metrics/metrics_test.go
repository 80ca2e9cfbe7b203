package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amoylab/ifood-dashboard/internal/common/config"
)

func newTestMetrics() *Metrics {
	return New(config.MetricsConfig{Namespace: "test"})
}

func TestObserveQuery(t *testing.T) {
	m := newTestMetrics()
	m.ObserveQuery("monthly_revenue", 10*time.Millisecond, nil)
	m.ObserveQuery("monthly_revenue", 20*time.Millisecond, nil)
	m.ObserveQuery("monthly_revenue", time.Millisecond, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.queryCnt.WithLabelValues("monthly_revenue", statusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queryCnt.WithLabelValues("monthly_revenue", statusError)))
}

func TestCollectorAndRateLimitCounters(t *testing.T) {
	m := newTestMetrics()
	m.CollectorRun("ifood-fetch", nil)
	m.CollectorRun("ifood-fetch", errors.New("timeout"))
	m.RateLimited("login")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.collectorRuns.WithLabelValues("ifood-fetch", statusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.collectorRuns.WithLabelValues("ifood-fetch", statusError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimited.WithLabelValues("login")))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := newTestMetrics()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/pedidos/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/prometheus", gin.WrapH(m.Handler()))

	for _, path := range []string{"/pedidos/1", "/pedidos/2", "/nope"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpReqCnt.WithLabelValues(http.MethodGet, "/pedidos/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpReqCnt.WithLabelValues(http.MethodGet, unmatchedRoute, "404")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/prometheus", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_http_requests_total")
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
