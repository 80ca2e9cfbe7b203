package middleware

import (
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/amoylab/ifood-dashboard/internal/common/cnst"
	"github.com/amoylab/ifood-dashboard/internal/i18n"
)

// maxRequestIDLength bounds request ids accepted from clients
const maxRequestIDLength = 128

// RequestID reuses the caller's X-Request-ID or assigns a new one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(cnst.HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		c.Set(cnst.CtxKeyRequestID, id)
		c.Header(cnst.HeaderRequestID, id)
		c.Next()
	}
}

// Language stores the response language picked from X-Lang or Accept-Language
func Language() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(cnst.XLang, i18n.LanguageFromRequest(c.Request))
		c.Next()
	}
}

// Logger logs one line per request once the response is written
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Int("size", c.Writer.Size()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString(cnst.CtxKeyRequestID)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Error("request completed", fields...)
		case status >= 400:
			logger.Warn("request completed", fields...)
		default:
			logger.Info("request completed", fields...)
		}
	}
}

// Recovery turns a panic into a 500 answer and logs it with the stack
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", c.GetString(cnst.CtxKeyRequestID)),
					zap.ByteString("stack", debug.Stack()),
				)
				i18n.RespondWithError(c, i18n.ErrInternalServer)
			}
		}()
		c.Next()
	}
}
