package ratelimit

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/amoylab/ifood-dashboard/internal/common/cnst"
	"github.com/amoylab/ifood-dashboard/internal/common/config"
	"github.com/amoylab/ifood-dashboard/internal/i18n"
)

const (
	HeaderLimit     = "X-RateLimit-Limit"
	HeaderRemaining = "X-RateLimit-Remaining"
)

// Limiter rejects clients that exceed a per route ceiling. Rejected requests are never queued.
type Limiter struct {
	store    Store
	logger   *zap.Logger
	enabled  bool
	rejected func(rule string)
}

// OnReject registers a callback run for every rejected request
func (l *Limiter) OnReject(fn func(rule string)) {
	l.rejected = fn
}

// NewLimiter creates a limiter; a nil store or enabled=false lets every request through
func NewLimiter(store Store, logger *zap.Logger, enabled bool) *Limiter {
	return &Limiter{
		store:   store,
		logger:  logger,
		enabled: enabled && store != nil,
	}
}

// Middleware limits each client IP to rule.Limit requests per rule.Window on
// the routes it is attached to. name separates the counters of different rules.
func (l *Limiter) Middleware(name string, rule config.RateLimitRule) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.enabled {
			c.Next()
			return
		}

		key := name + ":" + c.ClientIP()
		count, ttl, err := l.store.Incr(c.Request.Context(), key, rule.Window)
		if err != nil {
			// the limiter fails open so a store outage does not take the API down
			l.logger.Warn("rate limit store unavailable",
				zap.String("rule", name),
				zap.Error(err))
			c.Next()
			return
		}

		remaining := int64(rule.Limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header(HeaderLimit, strconv.Itoa(rule.Limit))
		c.Header(HeaderRemaining, strconv.FormatInt(remaining, 10))

		if count > int64(rule.Limit) {
			c.Header(cnst.HeaderRetryAfter, strconv.Itoa(retryAfterSeconds(ttl)))
			l.logger.Debug("rate limit exceeded",
				zap.String("rule", name),
				zap.String("client_ip", c.ClientIP()))
			if l.rejected != nil {
				l.rejected(name)
			}
			i18n.RespondWithError(c, i18n.ErrRateLimited.
				WithParam("Limit", rule.Limit).
				WithParam("Window", humanWindow(rule.Window)))
			return
		}

		c.Next()
	}
}

func retryAfterSeconds(ttl time.Duration) int {
	secs := int(math.Ceil(ttl.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

// humanWindow renders a window as "1 minute", "30 seconds" or "2 hours"
func humanWindow(d time.Duration) string {
	units := []struct {
		size time.Duration
		name string
	}{
		{time.Hour, "hour"},
		{time.Minute, "minute"},
		{time.Second, "second"},
	}
	for _, u := range units {
		if d >= u.size && d%u.size == 0 {
			n := int64(d / u.size)
			if n == 1 {
				return "1 " + u.name
			}
			return fmt.Sprintf("%d %ss", n, u.name)
		}
	}
	return d.String()
}
