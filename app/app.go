// app/app.go
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dalemusser/analysis/config"
	"github.com/dalemusser/analysis/httputil"
	"github.com/dalemusser/analysis/logging"
	"github.com/dalemusser/analysis/metrics"
	"github.com/dalemusser/analysis/server"
	"go.uber.org/zap"
)

// Hooks are the service-specific steps of the startup sequence.
type Hooks[C any, D any] struct {
	// Name is used only for logging.
	Name string

	// LoadConfig returns the core config and the service config.
	LoadConfig func(logger *zap.Logger) (*config.CoreConfig, C, error)

	// OpenDB returns the service's database access. It may be lazy: the
	// analysis service returns a provider that connects on first use.
	OpenDB func(ctx context.Context, core *config.CoreConfig, appCfg C, logger *zap.Logger) (D, error)

	// BuildHandler returns the full HTTP handler: router, middleware, routes.
	BuildHandler func(core *config.CoreConfig, appCfg C, db D, logger *zap.Logger) (http.Handler, error)

	// Serve runs the handler until ctx is canceled. Defaults to
	// server.ListenAndServeWithContext.
	Serve func(ctx context.Context, core *config.CoreConfig, handler http.Handler, logger *zap.Logger) error
}

// Run executes the startup sequence:
//
//  1. Bootstrap logger
//  2. Load core + service config (Hooks.LoadConfig)
//  3. Build final logger based on core config
//  4. Register default metrics
//  5. Open DB access (Hooks.OpenDB)
//  6. Wire shutdown signals to a context
//  7. Build the HTTP handler (Hooks.BuildHandler)
//  8. Serve and block until shutdown
func Run[C any, D any](ctx context.Context, hooks Hooks[C, D]) error {
	bootstrap := logging.BootstrapLogger()
	defer func() { _ = bootstrap.Sync() }()
	bootstrap.Info("bootstrap logger initialized", zap.String("app", hooks.Name))

	coreCfg, appCfg, err := hooks.LoadConfig(bootstrap)
	if err != nil {
		bootstrap.Error("config load failed", zap.Error(err))
		return fmt.Errorf("load config: %w", err)
	}
	bootstrap.Info("config loaded",
		zap.String("env", coreCfg.Env),
		zap.String("log_level", coreCfg.LogLevel),
	)

	logger, err := logging.BuildLogger(coreCfg.LogLevel, coreCfg.Env)
	if err != nil {
		bootstrap.Error("logger build failed", zap.Error(err))
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("logger initialized", zap.String("app", hooks.Name))
	logger.Debug("core config", zap.String("config", coreCfg.Dump()))
	httputil.SetLogger(logger)

	metrics.RegisterDefault(logger)

	db, err := hooks.OpenDB(ctx, coreCfg, appCfg, logger)
	if err != nil {
		logger.Error("DB open failed", zap.Error(err))
		return fmt.Errorf("open db: %w", err)
	}

	ctx, cancel := server.WithShutdownSignals(ctx, logger)
	defer cancel()

	handler, err := hooks.BuildHandler(coreCfg, appCfg, db, logger)
	if err != nil {
		logger.Error("handler build failed", zap.Error(err))
		return fmt.Errorf("build handler: %w", err)
	}

	serve := hooks.Serve
	if serve == nil {
		serve = server.ListenAndServeWithContext
	}
	if err := serve(ctx, coreCfg, handler, logger); err != nil {
		logger.Error("server exited with error", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}
