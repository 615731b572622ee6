package analysis

import (
	"context"
	"net/http"
	"os"

	"github.com/dalemusser/analysis/app"
	"github.com/dalemusser/analysis/config"
	"github.com/dalemusser/analysis/router"
	"github.com/dalemusser/analysis/toolkit/db/mongodb"
	"go.uber.org/zap"
)

// Hooks returns the startup hooks for the analysis service. args are the
// command-line arguments without the program name.
func Hooks(args []string) app.Hooks[config.AppConfigValues, *mongodb.Provider] {
	return app.Hooks[config.AppConfigValues, *mongodb.Provider]{
		Name: Name,
		LoadConfig: func(logger *zap.Logger) (*config.CoreConfig, config.AppConfigValues, error) {
			return config.Load(logger, args, AppKeys)
		},
		OpenDB: func(_ context.Context, core *config.CoreConfig, vals config.AppConfigValues, logger *zap.Logger) (*mongodb.Provider, error) {
			return NewProvider(core, vals, logger), nil
		},
		BuildHandler: func(core *config.CoreConfig, _ config.AppConfigValues, db *mongodb.Provider, logger *zap.Logger) (http.Handler, error) {
			r := router.New(core, logger)
			Mount(r, db, logger)
			return r, nil
		},
	}
}

// Main runs the service and returns the process exit code.
func Main(ctx context.Context) int {
	if err := app.Run(ctx, Hooks(os.Args[1:])); err != nil {
		return 1
	}
	return 0
}
