// middleware/cors.go
package middleware

import (
	"net/http"

	"github.com/dalemusser/analysis/config"
	"github.com/go-chi/cors"
)

// CORSFromConfig applies the CORS section of coreCfg. It is a no-op when
// CORS is disabled, so routers can install it unconditionally.
func CORSFromConfig(coreCfg *config.CoreConfig) func(next http.Handler) http.Handler {
	if coreCfg == nil || !coreCfg.CORS.EnableCORS {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	opts := cors.Options{
		AllowedOrigins:   coreCfg.CORS.CORSAllowedOrigins,
		AllowedMethods:   coreCfg.CORS.CORSAllowedMethods,
		AllowedHeaders:   coreCfg.CORS.CORSAllowedHeaders,
		AllowCredentials: coreCfg.CORS.CORSAllowCredentials,
		MaxAge:           coreCfg.CORS.CORSMaxAge,
	}

	return cors.Handler(opts)
}
