package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amoylab/ifood-dashboard/internal/common/config"
)

const (
	statusOK    = "ok"
	statusError = "error"

	unmatchedRoute = "unmatched"
)

type Metrics struct {
	registry      *prometheus.Registry
	httpReqCnt    *prometheus.CounterVec
	httpDur       *prometheus.HistogramVec
	httpInfl      *prometheus.GaugeVec
	queryCnt      *prometheus.CounterVec
	queryDur      *prometheus.HistogramVec
	collectorRuns *prometheus.CounterVec
	rateLimited   *prometheus.CounterVec
}

func New(cfg config.MetricsConfig) *Metrics {
	ns := cfg.Namespace
	buckets := cfg.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "http_requests_total"}, []string{"method", "route", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "http_request_duration_seconds", Buckets: buckets}, []string{"method", "route", "status"})
	httpInfl := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: ns, Name: "http_requests_inflight"}, []string{"route"})
	r.MustRegister(httpReqCnt, httpDur, httpInfl)

	queryCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "analytics_queries_total"}, []string{"query", "status"})
	queryDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "analytics_query_duration_seconds", Buckets: buckets}, []string{"query"})
	r.MustRegister(queryCnt, queryDur)

	collectorRuns := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "collector_runs_total"}, []string{"job", "status"})
	rateLimited := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "rate_limited_requests_total"}, []string{"rule"})
	r.MustRegister(collectorRuns, rateLimited)

	return &Metrics{
		registry:      r,
		httpReqCnt:    httpReqCnt,
		httpDur:       httpDur,
		httpInfl:      httpInfl,
		queryCnt:      queryCnt,
		queryDur:      queryDur,
		collectorRuns: collectorRuns,
		rateLimited:   rateLimited,
	}
}

// ObserveQuery records one analytics query
func (m *Metrics) ObserveQuery(name string, duration time.Duration, err error) {
	m.queryCnt.WithLabelValues(name, outcome(err)).Inc()
	m.queryDur.WithLabelValues(name).Observe(duration.Seconds())
}

// CollectorRun counts one background job execution
func (m *Metrics) CollectorRun(job string, err error) {
	m.collectorRuns.WithLabelValues(job, outcome(err)).Inc()
}

// RateLimited counts a request rejected by the named rule
func (m *Metrics) RateLimited(rule string) {
	m.rateLimited.WithLabelValues(rule).Inc()
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// unmatched paths share one label to bound cardinality
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		m.httpInfl.WithLabelValues(route).Inc()
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		m.httpReqCnt.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpInfl.WithLabelValues(route).Dec()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	if err != nil {
		return statusError
	}
	return statusOK
}
