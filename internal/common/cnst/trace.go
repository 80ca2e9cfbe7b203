package cnst

// Tracer names used across the services
const (
	TraceAnalytics = "ifood-dashboard/analytics"
	TraceCollector = "ifood-dashboard/collector"
)

// Common span names and attribute keys
const (
	SpanQueryPrefix    = "analytics.query."
	SpanCollectorRun   = "collector.run"
	AttrQueryName      = "analytics.query"
	AttrUnitScope      = "analytics.unit_scope"
	AttrRowCount       = "analytics.rows"
	AttrCollectorJob   = "collector.job"
	AttrHTTPStatusCode = "http.status_code"
)
