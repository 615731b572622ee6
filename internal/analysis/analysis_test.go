package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/analysis/config"
	"github.com/dalemusser/analysis/httputil"
	"github.com/dalemusser/analysis/router"
	"github.com/dalemusser/analysis/toolkit/db/mongodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func lazyValues(uri, db string) config.AppConfigValues {
	return config.AppConfigValues{
		KeyMongoURI:        uri,
		KeyMongoDB:         db,
		KeyMongoPingOnOpen: false,
	}
}

func disconnectOnCleanup(t *testing.T, p *mongodb.Provider) {
	t.Cleanup(func() {
		if !p.Initialized() {
			return
		}
		db, err := p.Database(context.Background())
		if err == nil {
			_ = db.Client().Disconnect(context.Background())
		}
	})
}

func TestSettingsFrom(t *testing.T) {
	s, err := SettingsFrom(lazyValues(" mongodb://example:27017 ", "analysis_db"))()
	require.NoError(t, err)
	assert.Equal(t, mongodb.Settings{URI: "mongodb://example:27017", Database: "analysis_db"}, s)

	_, err = SettingsFrom(config.AppConfigValues{})()
	require.Error(t, err)
	assert.Contains(t, err.Error(), KeyMongoURI)
	assert.Contains(t, err.Error(), KeyMongoDB)
}

func TestNewProvider_MissingConfigIsConfigurationError(t *testing.T) {
	p := NewProvider(&config.CoreConfig{DBConnectTimeout: time.Second}, lazyValues("", ""), nil)

	_, err := p.Database(context.Background())
	assert.ErrorIs(t, err, mongodb.ErrConfiguration)
	assert.False(t, p.Initialized())
}

func TestNewProvider_PingsWhenConfigured(t *testing.T) {
	vals := lazyValues("mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=100", "analysis_db")
	vals[KeyMongoPingOnOpen] = true
	p := NewProvider(&config.CoreConfig{DBConnectTimeout: 300 * time.Millisecond}, vals, nil)

	_, err := p.Database(context.Background())
	assert.ErrorIs(t, err, mongodb.ErrConnection)
}

func newHandler(t *testing.T, db DatabaseSource) http.Handler {
	t.Helper()
	r := router.New(&config.CoreConfig{}, zap.NewNop())
	Mount(r, db, nil)
	return r
}

func TestRoutes_Status(t *testing.T) {
	h := newHandler(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"service":"analysis","ok":true}`, rec.Body.String())
}

func TestRoutes_Database(t *testing.T) {
	p := NewProvider(&config.CoreConfig{}, lazyValues("mongodb://example:27017", "analysis_db"), nil)
	disconnectOnCleanup(t, p)
	h := newHandler(t, p)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/db", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"database":"analysis_db"}`, rec.Body.String())
	}
	assert.True(t, p.Initialized())
}

type failingSource struct{ err error }

func (f failingSource) Database(context.Context) (*mongo.Database, error) { return nil, f.err }

func TestRoutes_DatabaseUnavailable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"configuration", mongodb.ErrConfiguration, "database is not configured"},
		{"connection", mongodb.ErrConnection, "database is not reachable"},
		{"canceled", context.Canceled, "request canceled while waiting for the database"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandler(t, failingSource{err: tt.err})

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/db", nil))

			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
			var body httputil.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, "db_unavailable", body.Error)
			assert.Equal(t, tt.want, body.Message)
		})
	}
}

func TestRoutes_Metrics(t *testing.T) {
	h := newHandler(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
