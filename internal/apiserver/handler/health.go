package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/amoylab/ifood-dashboard/internal/common/dto"
	"github.com/amoylab/ifood-dashboard/pkg/version"
)

const pingTimeout = 2 * time.Second

// Pinger is the part of the database the health check needs
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports liveness together with database reachability
type Health struct {
	db     Pinger
	logger *zap.Logger
}

func NewHealth(db Pinger, logger *zap.Logger) *Health {
	return &Health{db: db, logger: logger.Named("health")}
}

// Check answers 200 while the database responds, 503 otherwise
func (h *Health) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	resp := dto.HealthResponse{Status: "ok", Database: "ok", Version: version.Get()}
	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("database ping failed", zap.Error(err))
		resp.Status = "degraded"
		resp.Database = "unavailable"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
