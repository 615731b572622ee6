// logging/logging.go
package logging

import (
	"os"
	"slices"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// BootstrapLogger returns the logger used before configuration is loaded:
// development encoding, info level, stderr.
func BootstrapLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// ValidLogLevels lists all valid zap log levels for validation.
var ValidLogLevels = []string{"debug", "info", "warn", "error", "dpanic", "panic", "fatal"}

// IsValidLogLevel reports whether level names a zap level, ignoring case.
func IsValidLogLevel(level string) bool {
	return slices.Contains(ValidLogLevels, strings.ToLower(level))
}

// BuildLogger constructs the service logger. env "prod" selects the JSON
// production config; anything else the development console config.
// An invalid level falls back to info with a warning on stderr.
func BuildLogger(level, env string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "prod" {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "json"
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if !IsValidLogLevel(level) {
		_, _ = os.Stderr.WriteString("WARNING: invalid log level \"" + level +
			"\"; valid levels are: " + strings.Join(ValidLogLevels, ", ") + ". Defaulting to \"info\".\n")
		level = "info"
	}
	if err := cfg.Level.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return nil, err
	}

	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build()
}

// MustBuildLogger is BuildLogger for main: it exits the process on failure.
func MustBuildLogger(level, env string) *zap.Logger {
	logger, err := BuildLogger(level, env)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to build logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	return logger
}
