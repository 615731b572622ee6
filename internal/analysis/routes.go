package analysis

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/analysis/httputil"
	"github.com/dalemusser/analysis/metrics"
	"github.com/dalemusser/analysis/toolkit/db/mongodb"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// DatabaseSource hands out the shared database handle.
type DatabaseSource interface {
	Database(ctx context.Context) (*mongo.Database, error)
}

type statusResponse struct {
	Service string `json:"service"`
	OK      bool   `json:"ok"`
}

type databaseResponse struct {
	Database string `json:"database"`
}

// Mount attaches the service routes to r.
func Mount(r chi.Router, db DatabaseSource, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, statusResponse{Service: Name, OK: true})
	})

	r.Get("/db", func(w http.ResponseWriter, r *http.Request) {
		handle, err := db.Database(r.Context())
		if err != nil {
			logger.Warn("database handle unavailable", zap.Error(err))
			httputil.JSONError(w, http.StatusServiceUnavailable, "db_unavailable", describe(err))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, databaseResponse{Database: handle.Name()})
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler())
}

// describe returns a client-safe message; driver errors can carry hosts.
func describe(err error) string {
	switch {
	case errors.Is(err, mongodb.ErrConfiguration):
		return "database is not configured"
	case errors.Is(err, mongodb.ErrConnection):
		return "database is not reachable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "request canceled while waiting for the database"
	default:
		return "database unavailable"
	}
}
