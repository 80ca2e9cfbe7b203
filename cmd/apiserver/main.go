package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amoylab/ifood-dashboard/internal/apiserver/app"
	"github.com/amoylab/ifood-dashboard/internal/apiserver/database"
	"github.com/amoylab/ifood-dashboard/internal/common/config"
	"github.com/amoylab/ifood-dashboard/pkg/logger"
	"github.com/amoylab/ifood-dashboard/pkg/utils"
	"github.com/amoylab/ifood-dashboard/pkg/version"
)

const defaultConfig = "apiserver.yaml"

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "apiserver",
		Short:         "iFood dashboard API server",
		Long:          `Serves authenticated sales, operations and customer metrics over HTTP`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, configPath, nil)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "conf", "c", defaultConfig, "path to configuration file")

	root.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number of apiserver",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "apiserver version %s\n", version.Get())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDatabase(configPath, func(ctx context.Context, db database.Database, lg *zap.Logger) error {
					lg.Info("database schema is up to date", zap.String("dialect", db.Dialect()))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Insert demo units, products and orders into an empty database",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDatabase(configPath, func(ctx context.Context, db database.Database, lg *zap.Logger) error {
					if err := db.Seed(ctx); err != nil {
						return fmt.Errorf("seed database: %w", err)
					}
					lg.Info("demo data in place")
					return nil
				})
			},
		},
	)
	return root
}

// bootstrap loads the configuration and builds the logger every command shares
func bootstrap(configPath string) (*config.APIServerConfig, *zap.Logger, error) {
	cfg, cfgPath, err := config.LoadConfig[config.APIServerConfig](configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration %s: %w", cfgPath, err)
	}
	lg, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	lg.Info("loaded configuration", zap.String("path", cfgPath))
	return cfg, lg, nil
}

func withDatabase(configPath string, fn func(ctx context.Context, db database.Database, lg *zap.Logger) error) error {
	cfg, lg, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	return errors.Join(fn(context.Background(), db, lg), db.Close())
}

// serve runs the API until ctx is cancelled. started, when set, receives the
// bound address once the listener is up.
func serve(ctx context.Context, configPath string, started chan<- string) error {
	cfg, lg, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	a, err := app.New(ctx, cfg, lg, db)
	if err != nil {
		_ = db.Close()
		return err
	}

	pid := utils.NewPIDFile(cfg.Server.PIDFile)
	if old, err := pid.Read(); err == nil && old != os.Getpid() {
		lg.Warn("replacing PID file left by another process",
			zap.String("path", pid.Path()), zap.Int("pid", old))
	}
	if err := pid.Write(); err != nil {
		lg.Warn("failed to write PID file", zap.String("path", pid.Path()), zap.Error(err))
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			lg.Warn("failed to remove PID file", zap.String("path", pid.Path()), zap.Error(err))
		}
	}()

	if err := a.Start(); err != nil {
		_ = a.Shutdown(context.Background())
		return err
	}
	lg.Info("apiserver started", zap.String("version", version.Get()), zap.String("addr", a.Addr()))
	if started != nil {
		started <- a.Addr()
	}

	<-ctx.Done()
	lg.Info("shutting down apiserver")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	lg.Info("apiserver stopped")
	return nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
