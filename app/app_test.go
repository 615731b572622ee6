package app

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dalemusser/analysis/config"
	"go.uber.org/zap"
)

type stubDB struct{ name string }

func baseHooks() Hooks[string, *stubDB] {
	return Hooks[string, *stubDB]{
		Name: "test",
		LoadConfig: func(*zap.Logger) (*config.CoreConfig, string, error) {
			return &config.CoreConfig{Env: "dev", LogLevel: "error"}, "app-config", nil
		},
		OpenDB: func(context.Context, *config.CoreConfig, string, *zap.Logger) (*stubDB, error) {
			return &stubDB{name: "analysis_db"}, nil
		},
		BuildHandler: func(*config.CoreConfig, string, *stubDB, *zap.Logger) (http.Handler, error) {
			return http.NotFoundHandler(), nil
		},
		Serve: func(context.Context, *config.CoreConfig, http.Handler, *zap.Logger) error {
			return nil
		},
	}
}

func TestRun_PassesValuesThrough(t *testing.T) {
	hooks := baseHooks()

	var gotCfg string
	var gotDB *stubDB
	hooks.BuildHandler = func(_ *config.CoreConfig, appCfg string, db *stubDB, _ *zap.Logger) (http.Handler, error) {
		gotCfg, gotDB = appCfg, db
		return http.NotFoundHandler(), nil
	}

	if err := Run(context.Background(), hooks); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if gotCfg != "app-config" {
		t.Errorf("appCfg = %q, want %q", gotCfg, "app-config")
	}
	if gotDB == nil || gotDB.name != "analysis_db" {
		t.Errorf("db = %+v, want analysis_db", gotDB)
	}
}

func TestRun_StopsAtFirstFailure(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name   string
		mutate func(h *Hooks[string, *stubDB])
	}{
		{"config", func(h *Hooks[string, *stubDB]) {
			h.LoadConfig = func(*zap.Logger) (*config.CoreConfig, string, error) { return nil, "", boom }
		}},
		{"db", func(h *Hooks[string, *stubDB]) {
			h.OpenDB = func(context.Context, *config.CoreConfig, string, *zap.Logger) (*stubDB, error) { return nil, boom }
		}},
		{"handler", func(h *Hooks[string, *stubDB]) {
			h.BuildHandler = func(*config.CoreConfig, string, *stubDB, *zap.Logger) (http.Handler, error) { return nil, boom }
		}},
		{"serve", func(h *Hooks[string, *stubDB]) {
			h.Serve = func(context.Context, *config.CoreConfig, http.Handler, *zap.Logger) error { return boom }
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hooks := baseHooks()
			tt.mutate(&hooks)

			err := Run(context.Background(), hooks)
			if !errors.Is(err, boom) {
				t.Errorf("Run error = %v, want %v", err, boom)
			}
		})
	}
}
