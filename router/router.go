// router/router.go
package router

import (
	"github.com/dalemusser/analysis/config"
	"github.com/dalemusser/analysis/logging"
	"github.com/dalemusser/analysis/metrics"
	"github.com/dalemusser/analysis/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// New creates a chi.Router with the standard middleware stack:
// RequestID, RealIP, panic recovery, body size limit, metrics, access
// logging, CORS, and JSON NotFound/MethodNotAllowed handlers.
// Routes are mounted by the caller.
func New(coreCfg *config.CoreConfig, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(logging.Recoverer(logger))
	r.Use(middleware.LimitBodySize(coreCfg.MaxRequestBodyBytes))
	r.Use(metrics.HTTPMetrics)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.CORSFromConfig(coreCfg))

	r.NotFound(middleware.NotFoundHandler(logger))
	r.MethodNotAllowed(middleware.MethodNotAllowedHandler(logger))

	return r
}
