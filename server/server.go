// server/server.go
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dalemusser/analysis/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// WithShutdownSignals returns a context canceled on SIGINT or SIGTERM. The
// returned cancel function also stops signal delivery.
func WithShutdownSignals(parent context.Context, logger *zap.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			if logger != nil {
				logger.Info("shutdown signal received", zap.Any("signal", sig))
			}
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// ListenAndServeWithContext listens on cfg.HTTP.HTTPPort and serves handler
// until ctx is canceled or the server fails.
func ListenAndServeWithContext(ctx context.Context, cfg *config.CoreConfig, handler http.Handler, logger *zap.Logger) error {
	if cfg == nil {
		return fmt.Errorf("ListenAndServeWithContext: cfg is nil")
	}
	addr := ":" + strconv.Itoa(cfg.HTTP.HTTPPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen http %s: %w", addr, err)
	}
	return Serve(ctx, ln, cfg, handler, logger)
}

// Serve serves handler on ln until ctx is canceled, then shuts down
// gracefully within cfg.HTTP.ShutdownTimeout. It returns nil after a clean
// shutdown. Serve takes ownership of ln.
func Serve(ctx context.Context, ln net.Listener, cfg *config.CoreConfig, handler http.Handler, logger *zap.Logger) error {
	if cfg == nil {
		_ = ln.Close()
		return fmt.Errorf("Serve: cfg is nil")
	}
	if handler == nil {
		_ = ln.Close()
		return fmt.Errorf("Serve: handler is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}
	if stdlog, err := zap.NewStdLogAt(logger, zapcore.WarnLevel); err == nil {
		srv.ErrorLog = stdlog
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()
	logger.Info("HTTP server listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down HTTP server", zap.Duration("timeout", cfg.HTTP.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-serveErr
}
