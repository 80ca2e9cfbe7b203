package ratelimit

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/amoylab/ifood-dashboard/internal/common/config"
)

// NewStore creates a new rate limit store based on configuration
func NewStore(logger *zap.Logger, cfg *config.RateLimitConfig) (Store, error) {
	logger.Info("Initializing rate limit store", zap.String("type", cfg.Store))
	switch cfg.Store {
	case "memory":
		return NewMemoryStore(), nil
	case "redis":
		s, err := NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported rate limit store: %s", cfg.Store)
	}
}
