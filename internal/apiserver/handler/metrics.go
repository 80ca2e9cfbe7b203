package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/amoylab/ifood-dashboard/internal/apiserver/analytics"
	"github.com/amoylab/ifood-dashboard/internal/apiserver/middleware"
)

const (
	defaultTopProductsLimit    = 5
	defaultProductRevenueLimit = 10
	defaultInsightLimit        = 10
)

type (
	rangeQuery      func(ctx context.Context, scope analytics.Scope, r analytics.DateRange) ([]analytics.Row, error)
	rangeLimitQuery func(ctx context.Context, scope analytics.Scope, r analytics.DateRange, limit int) ([]analytics.Row, error)
	dayQuery        func(ctx context.Context, scope analytics.Scope, day time.Time) ([]analytics.Row, error)
)

// Metrics serves the dashboard aggregation endpoints under /metrics and /insights
type Metrics struct {
	svc    *analytics.Service
	logger *zap.Logger
}

// NewMetrics creates a new metrics handler
func NewMetrics(svc *analytics.Service, logger *zap.Logger) *Metrics {
	return &Metrics{svc: svc, logger: logger.Named("metrics")}
}

func (h *Metrics) MonthlyRevenue(c *gin.Context) { h.byRange(c, h.svc.MonthlyRevenue) }

func (h *Metrics) OrdersByStatus(c *gin.Context) { h.byRange(c, h.svc.OrdersByStatus) }

func (h *Metrics) AverageRatings(c *gin.Context) { h.byRange(c, h.svc.AverageRatings) }

func (h *Metrics) WeeklyOrders(c *gin.Context) { h.byRange(c, h.svc.WeeklyOrders) }

func (h *Metrics) TopProducts(c *gin.Context) {
	h.byRangeLimit(c, defaultTopProductsLimit, h.svc.TopProducts)
}

func (h *Metrics) TopProductsRevenue(c *gin.Context) {
	h.byRangeLimit(c, defaultProductRevenueLimit, h.svc.TopProductsRevenue)
}

// DailyRevenue needs both ends of the range
func (h *Metrics) DailyRevenue(c *gin.Context) {
	r, err := completeDateRangeParams(c)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	h.rows(c)(h.svc.DailyRevenue(c.Request.Context(), scope(c), r))
}

// CancellationCost always answers with one row
func (h *Metrics) CancellationCost(c *gin.Context) {
	r, err := dateRangeParams(c)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	row, err := h.svc.CancellationCost(c.Request.Context(), scope(c), r)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *Metrics) DailyOverview(c *gin.Context) {
	day, err := dayParam(c)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	row, err := h.svc.DailyOverview(c.Request.Context(), scope(c), day)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *Metrics) DailyCumulativeRevenue(c *gin.Context) {
	h.byDay(c, h.svc.DailyCumulativeRevenue)
}

func (h *Metrics) DailyAcceptTimeByHour(c *gin.Context) {
	h.byDay(c, h.svc.DailyAcceptTimeByHour)
}

func (h *Metrics) DailyCancellationsByHour(c *gin.Context) {
	h.byDay(c, h.svc.DailyCancellationsByHour)
}

func (h *Metrics) CancellationReasons(c *gin.Context) {
	h.byRangeLimit(c, defaultInsightLimit, h.svc.CancellationReasons)
}

func (h *Metrics) OrdersHeatmap(c *gin.Context) { h.byRange(c, h.svc.OrdersHeatmap) }

func (h *Metrics) DeliveryTimeByRegion(c *gin.Context) { h.byRange(c, h.svc.DeliveryTimeByRegion) }

// UnitRanking compares every unit, whatever the caller's home unit
func (h *Metrics) UnitRanking(c *gin.Context) {
	h.byRangeLimit(c, defaultInsightLimit, func(ctx context.Context, _ analytics.Scope, r analytics.DateRange, limit int) ([]analytics.Row, error) {
		return h.svc.UnitRanking(ctx, r, limit)
	})
}

func (h *Metrics) byRange(c *gin.Context, q rangeQuery) {
	r, err := dateRangeParams(c)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	h.rows(c)(q(c.Request.Context(), scope(c), r))
}

func (h *Metrics) byRangeLimit(c *gin.Context, def int, q rangeLimitQuery) {
	r, err := dateRangeParams(c)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	limit, err := limitParam(c, def)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	h.rows(c)(q(c.Request.Context(), scope(c), r, limit))
}

func (h *Metrics) byDay(c *gin.Context, q dayQuery) {
	day, err := dayParam(c)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	h.rows(c)(q(c.Request.Context(), scope(c), day))
}

// rows writes a query result, an empty JSON array when there are no rows
func (h *Metrics) rows(c *gin.Context) func([]analytics.Row, error) {
	return func(rows []analytics.Row, err error) {
		if err != nil {
			fail(c, h.logger, err)
			return
		}
		if rows == nil {
			rows = []analytics.Row{}
		}
		c.JSON(http.StatusOK, rows)
	}
}

// scope restricts the query to the caller's home unit, if any
func scope(c *gin.Context) analytics.Scope {
	user, _ := middleware.CurrentUser(c)
	return analytics.ScopeFor(user)
}
