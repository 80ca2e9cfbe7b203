package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/amoylab/ifood-dashboard/internal/apiserver/analytics"
	"github.com/amoylab/ifood-dashboard/internal/apiserver/collector"
	"github.com/amoylab/ifood-dashboard/internal/apiserver/database"
	"github.com/amoylab/ifood-dashboard/internal/apiserver/ratelimit"
	"github.com/amoylab/ifood-dashboard/internal/auth/jwt"
	"github.com/amoylab/ifood-dashboard/internal/common/config"
	"github.com/amoylab/ifood-dashboard/internal/i18n"
	"github.com/amoylab/ifood-dashboard/pkg/metrics"
	"github.com/amoylab/ifood-dashboard/pkg/trace"
)

const readHeaderTimeout = 10 * time.Second

// App is the process wide application context. It is built once at startup
// and owns every long lived resource until Shutdown.
type App struct {
	cfg        *config.APIServerConfig
	logger     *zap.Logger
	db         database.Database
	jwtService *jwt.Service
	analytics  *analytics.Service
	limitStore ratelimit.Store
	limiter    *ratelimit.Limiter
	scheduler  *collector.Scheduler
	metrics    *metrics.Metrics
	tracing    trace.Shutdown
	router     *gin.Engine
	server     *http.Server
	listener   net.Listener
}

// New wires the application around an open database. The database is
// closed by Shutdown.
func New(ctx context.Context, cfg *config.APIServerConfig, logger *zap.Logger, db database.Database) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	i18n.SetDefaultLanguage(cfg.I18n.DefaultLanguage)
	if err := i18n.InitTranslator(cfg.I18n.Path); err != nil {
		return nil, fmt.Errorf("load translations: %w", err)
	}

	a := &App{cfg: cfg, logger: logger, db: db}

	jwtService, err := jwt.NewService(jwt.Config{SecretKey: cfg.JWT.SecretKey, Duration: cfg.JWT.Duration})
	if err != nil {
		return nil, fmt.Errorf("create jwt service: %w", err)
	}
	if jwtService.WeakKey() {
		logger.Warn("jwt secret key is shorter than recommended",
			zap.Int("min_length", jwt.MinRecommendedKeyLength))
	}
	logger.Debug("jwt service ready", zap.Duration("token_lifetime", jwtService.Duration()))
	a.jwtService = jwtService

	if cfg.Metrics.Enabled {
		a.metrics = metrics.New(cfg.Metrics)
	}

	a.tracing, err = trace.InitTracing(ctx, &cfg.Tracing, logger)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	opts := []analytics.Option{analytics.WithLogger(logger.Named("analytics"))}
	if a.metrics != nil {
		opts = append(opts, analytics.WithObserver(a.metrics))
	}
	a.analytics, err = analytics.NewService(db, opts...)
	if err != nil {
		_ = a.release(ctx)
		return nil, err
	}

	if cfg.RateLimit.Enabled {
		a.limitStore, err = ratelimit.NewStore(logger, &cfg.RateLimit)
		if err != nil {
			_ = a.release(ctx)
			return nil, fmt.Errorf("create rate limit store: %w", err)
		}
	}
	a.limiter = ratelimit.NewLimiter(a.limitStore, logger.Named("ratelimit"), cfg.RateLimit.Enabled)
	if a.metrics != nil {
		a.limiter.OnReject(a.metrics.RateLimited)
	}

	var onRun collector.RunHook
	if a.metrics != nil {
		onRun = a.metrics.CollectorRun
	}
	a.scheduler = collector.NewScheduler(logger, onRun)
	if cfg.Collector.Enabled {
		fetcher := collector.NewFetcher(cfg.Collector, logger)
		if err := a.scheduler.AddJob(collector.JobFetch, cfg.Collector.Interval, fetcher.Run); err != nil {
			_ = a.release(ctx)
			return nil, err
		}
	}

	a.router, err = a.buildRouter(ctx)
	if err != nil {
		_ = a.release(ctx)
		return nil, err
	}
	a.server = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           a.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return a, nil
}

// Handler exposes the router, mainly for tests
func (a *App) Handler() http.Handler {
	return a.router
}

// Addr is the bound listen address once Start returned
func (a *App) Addr() string {
	if a.listener == nil {
		return a.server.Addr
	}
	return a.listener.Addr().String()
}

// Start binds the listen address, then serves HTTP and runs the background
// jobs until Shutdown
func (a *App) Start() error {
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.server.Addr, err)
	}
	a.listener = ln

	if err := a.scheduler.Start(); err != nil {
		_ = ln.Close()
		return err
	}
	for _, job := range a.scheduler.Jobs() {
		a.logger.Info("background job scheduled",
			zap.String("job", job.Name),
			zap.Duration("interval", job.Interval))
	}

	go func() {
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server stopped", zap.Error(err))
		}
	}()
	a.logger.Info("http server listening", zap.String("addr", ln.Addr().String()))
	return nil
}

// Shutdown stops the scheduler timers, drains HTTP requests and releases
// the rate limit store, the tracer and the database
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.scheduler.Running() {
		if err := a.scheduler.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.listener != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	errs = append(errs, a.release(ctx))
	return errors.Join(errs...)
}

// release closes what New acquired
func (a *App) release(ctx context.Context) error {
	var errs []error
	if a.limitStore != nil {
		if err := a.limitStore.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close rate limit store: %w", err))
		}
	}
	if a.tracing != nil {
		if err := a.tracing(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracing: %w", err))
		}
	}
	if err := a.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}
