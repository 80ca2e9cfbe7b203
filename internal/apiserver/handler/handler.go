package handler

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/amoylab/ifood-dashboard/internal/common/cnst"
	"github.com/amoylab/ifood-dashboard/internal/i18n"
)

// fail responds with err when it is a client error. Anything else is logged
// with the request id and hidden behind a generic 500, or a 503 when the
// database connection is gone.
func fail(c *gin.Context, logger *zap.Logger, err error) {
	if _, ok := i18n.AsErrorWithCode(err); ok {
		i18n.RespondWithError(c, err)
		return
	}
	logger.Error("request failed",
		zap.String("request_id", c.GetString(cnst.CtxKeyRequestID)),
		zap.String("path", c.FullPath()),
		zap.Error(err))
	if databaseOffline(err) {
		i18n.RespondWithError(c, i18n.ErrDatabaseOffline)
		return
	}
	i18n.RespondWithError(c, i18n.ErrInternalServer)
}

func databaseOffline(err error) bool {
	return errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded)
}
