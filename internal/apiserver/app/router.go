package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/amoylab/ifood-dashboard/internal/apiserver/handler"
	"github.com/amoylab/ifood-dashboard/internal/apiserver/middleware"
	"github.com/amoylab/ifood-dashboard/internal/i18n"
	"github.com/amoylab/ifood-dashboard/pkg/openapi"
	"github.com/amoylab/ifood-dashboard/pkg/version"
)

const apiTitle = "iFood dashboard API"

// rate limit rule names
const (
	ruleLogin = "login"
	ruleRead  = "read"
)

// route is a documented endpoint with its handler
type route struct {
	openapi.Route
	handler gin.HandlerFunc
	limit   string
}

var (
	rangeQuery = []openapi.Param{
		{Name: "start_date", Description: "first day, YYYY-MM-DD"},
		{Name: "end_date", Description: "last day included, YYYY-MM-DD"},
	}
	requiredRangeQuery = []openapi.Param{
		{Name: "start_date", Description: "first day, YYYY-MM-DD", Required: true},
		{Name: "end_date", Description: "last day included, YYYY-MM-DD", Required: true},
	}
	rangeLimitQuery = append(append([]openapi.Param{}, rangeQuery...),
		openapi.Param{Name: "limit", Description: "rows to return, 1 to 100", Integer: true})
	dayQuery = []openapi.Param{{Name: "date", Description: "day, YYYY-MM-DD", Required: true}}
)

func (a *App) routes() (public, secured []route) {
	auth := handler.NewAuth(a.db, a.jwtService, a.logger)
	orders := handler.NewOrders(a.db, a.logger)
	m := handler.NewMetrics(a.analytics, a.logger)
	health := handler.NewHealth(a.db, a.logger)

	get := func(path, summary, tag string, h gin.HandlerFunc, q []openapi.Param) route {
		return route{Route: openapi.Route{Method: http.MethodGet, Path: path, Summary: summary, Tag: tag, Query: q}, handler: h}
	}
	limited := func(r route, rule string) route {
		r.limit = rule
		return r
	}

	public = []route{
		get("/healthz", "Liveness and database reachability", "system", health.Check, nil),
		{Route: openapi.Route{Method: http.MethodPost, Path: "/auth/register", Summary: "Register a user", Tag: "auth"}, handler: auth.Register},
		limited(route{Route: openapi.Route{Method: http.MethodPost, Path: "/auth/login", Summary: "Exchange email and password for a token", Tag: "auth"}, handler: auth.Login}, ruleLogin),
		limited(route{Route: openapi.Route{Method: http.MethodPost, Path: "/auth/token", Summary: "OAuth2 password grant", Tag: "auth"}, handler: auth.Token}, ruleLogin),
	}

	export := get("/pedidos/:id/export", "Order as a CSV attachment", "orders", orders.ExportPedido, nil)
	export.Produces = "text/csv"

	secured = []route{
		get("/auth/me", "Authenticated user", "auth", auth.Me, nil),

		limited(get("/lojas", "All units", "orders", orders.ListUnidades, nil), ruleRead),
		limited(get("/pedidos", "All orders", "orders", orders.ListPedidos, nil), ruleRead),
		limited(get("/pedidos/:id", "Order by id", "orders", orders.GetPedido, nil), ruleRead),
		limited(export, ruleRead),
		limited(get("/metricas", "Daily rollups", "orders", orders.ListMetricasDiarias, nil), ruleRead),
		limited(get("/relatorios", "Revenue per unit", "orders", orders.Relatorios, nil), ruleRead),

		get("/metrics/monthly-revenue", "Revenue per unit and month", "metrics", m.MonthlyRevenue, rangeQuery),
		get("/metrics/orders-by-status", "Orders per status", "metrics", m.OrdersByStatus, rangeQuery),
		get("/metrics/average-ratings", "Mean rating per unit", "metrics", m.AverageRatings, rangeQuery),
		get("/metrics/weekly-orders", "Orders per week", "metrics", m.WeeklyOrders, rangeQuery),
		get("/metrics/top-products", "Products by quantity sold", "metrics", m.TopProducts, rangeLimitQuery),
		get("/metrics/top-products-revenue", "Products by revenue", "metrics", m.TopProductsRevenue, rangeLimitQuery),
		get("/metrics/daily-revenue", "Revenue per day", "metrics", m.DailyRevenue, requiredRangeQuery),
		get("/metrics/cancellation-cost", "Value of cancelled orders", "metrics", m.CancellationCost, rangeQuery),
		get("/metrics/daily-overview", "KPIs of one day", "daily", m.DailyOverview, dayQuery),
		get("/metrics/daily-cumulative-revenue", "Running revenue over one day", "daily", m.DailyCumulativeRevenue, dayQuery),
		get("/metrics/daily-accept-time-by-hour", "Mean accept minutes per hour", "daily", m.DailyAcceptTimeByHour, dayQuery),
		get("/metrics/daily-cancellations-by-hour", "Cancellations per hour and reason", "daily", m.DailyCancellationsByHour, dayQuery),

		get("/insights/cancellation-reasons", "Cancellation reasons ranked", "insights", m.CancellationReasons, rangeLimitQuery),
		get("/insights/orders-heatmap", "Orders per weekday and hour", "insights", m.OrdersHeatmap, rangeQuery),
		get("/insights/delivery-time-by-region", "Mean delivery minutes per region", "insights", m.DeliveryTimeByRegion, rangeQuery),
		get("/insights/unit-ranking", "Units ranked by revenue", "insights", m.UnitRanking, rangeLimitQuery),
	}
	for i := range secured {
		secured[i].Secured = true
	}
	return public, secured
}

func (a *App) buildRouter(ctx context.Context) (*gin.Engine, error) {
	r := gin.New()
	r.Use(middleware.Recovery(a.logger), middleware.RequestID())
	if a.cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(a.cfg.Tracing.ServiceName))
	}
	if a.metrics != nil {
		r.Use(a.metrics.Middleware())
	}
	r.Use(middleware.Logger(a.logger.Named("http")), middleware.Language(), middleware.CORS(&a.cfg.CORS))

	public, secured := a.routes()

	all := make([]openapi.Route, 0, len(public)+len(secured))
	for _, rt := range append(append([]route{}, public...), secured...) {
		all = append(all, rt.Route)
	}
	doc, err := openapi.BuildDocument(ctx, apiTitle, version.Get(), all)
	if err != nil {
		return nil, fmt.Errorf("build openapi document: %w", err)
	}
	r.GET("/openapi.json", handler.NewOpenAPI(doc).Document)

	if a.metrics != nil {
		r.GET(a.cfg.Metrics.Path, gin.WrapH(a.metrics.Handler()))
	}

	for _, rt := range public {
		r.Handle(rt.Method, rt.Path, a.chain(rt)...)
	}
	gate := r.Group("", middleware.JWTAuthMiddleware(a.jwtService, a.db, a.logger.Named("auth")))
	for _, rt := range secured {
		gate.Handle(rt.Method, rt.Path, a.chain(rt)...)
	}

	r.NoRoute(func(c *gin.Context) {
		i18n.RespondWithError(c, i18n.ErrRouteNotFound)
	})
	return r, nil
}

// chain puts the route's rate limit, if any, in front of its handler
func (a *App) chain(rt route) []gin.HandlerFunc {
	switch rt.limit {
	case ruleLogin:
		return []gin.HandlerFunc{a.limiter.Middleware(ruleLogin, a.cfg.RateLimit.Login), rt.handler}
	case ruleRead:
		return []gin.HandlerFunc{a.limiter.Middleware(ruleRead, a.cfg.RateLimit.Read), rt.handler}
	default:
		return []gin.HandlerFunc{rt.handler}
	}
}
