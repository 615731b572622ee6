// config/appconfig.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// AppKey defines a service-specific configuration key. Load resolves it from
// config files, environment variables, and command-line flags.
type AppKey struct {
	// Name is the key name (e.g., "mongo_uri"). It is used as-is for config
	// files and CLI flags; the env var is ANALYSIS_ plus the uppercased name.
	Name string

	// Default is the default value if not set elsewhere.
	// Supported types: string, int, bool. Durations are strings.
	Default any

	// Desc is a short description for --help output.
	Desc string
}

// AppConfigValues holds the loaded app configuration values.
// Keys are the AppKey.Name values, values are the loaded configuration.
type AppConfigValues map[string]any

// String returns a string value or empty string if not found/wrong type.
func (a AppConfigValues) String(key string) string {
	if v, ok := a[key].(string); ok {
		return v
	}
	return ""
}

// Int returns an int value or 0 if not found/wrong type.
func (a AppConfigValues) Int(key string) int {
	switch v := a[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

// Bool returns a bool value or false if not found/wrong type.
func (a AppConfigValues) Bool(key string) bool {
	if v, ok := a[key].(bool); ok {
		return v
	}
	return false
}

// Duration parses "90s"-style strings or plain seconds. It returns def when
// the key is missing, empty, or invalid.
func (a AppConfigValues) Duration(key string, def time.Duration) time.Duration {
	raw := a[key]
	if raw == nil {
		return def
	}
	dur, err := parseDurationFlexible(raw, def)
	if err != nil {
		return def
	}
	return dur
}

// loadAppConfig resolves app keys with the same precedence as the core
// config: flags > env > config files > defaults. Values are coerced to the
// type of each key's Default, so "true" from the environment is a bool.
func loadAppConfig(logger *zap.Logger, fs *pflag.FlagSet, v *viper.Viper, keys []AppKey) AppConfigValues {
	if len(keys) == 0 {
		return make(AppConfigValues)
	}

	appV := viper.New()
	appV.SetEnvPrefix(EnvPrefix)
	appV.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	appV.AutomaticEnv()

	for _, key := range keys {
		appV.SetDefault(key.Name, key.Default)
		_ = appV.BindEnv(key.Name)

		// config files were merged into the core viper instance
		if v.InConfig(key.Name) {
			appV.Set(key.Name, v.Get(key.Name))
		}

		if f := fs.Lookup(key.Name); f != nil && f.Changed {
			_ = appV.BindPFlag(key.Name, f)
		}
	}

	result := make(AppConfigValues, len(keys))
	for _, key := range keys {
		switch key.Default.(type) {
		case string:
			result[key.Name] = appV.GetString(key.Name)
		case int:
			result[key.Name] = appV.GetInt(key.Name)
		case bool:
			result[key.Name] = appV.GetBool(key.Name)
		default:
			result[key.Name] = appV.Get(key.Name)
		}
	}

	if logger != nil {
		fields := make([]zap.Field, 0, len(keys))
		for _, key := range keys {
			if isSecretKey(key.Name) {
				fields = append(fields, zap.String(key.Name, "[REDACTED]"))
			} else {
				fields = append(fields, zap.Any(key.Name, result[key.Name]))
			}
		}
		logger.Info("app config loaded", fields...)
	}

	return result
}

// isSecretKey reports whether a key's value must not be logged. Connection
// URIs are included because they may embed credentials.
func isSecretKey(name string) bool {
	n := strings.ToLower(name)
	for _, s := range []string{"key", "secret", "password", "token", "uri"} {
		if strings.Contains(n, s) {
			return true
		}
	}
	return false
}

// registerAppFlags registers command-line flags for app config keys.
// Must be called before fs.Parse.
func registerAppFlags(fs *pflag.FlagSet, keys []AppKey) error {
	for _, key := range keys {
		if fs.Lookup(key.Name) != nil {
			return fmt.Errorf("config key %q conflicts with existing flag", key.Name)
		}

		switch d := key.Default.(type) {
		case string:
			fs.String(key.Name, d, key.Desc)
		case int:
			fs.Int(key.Name, d, key.Desc)
		case bool:
			fs.Bool(key.Name, d, key.Desc)
		default:
			return fmt.Errorf("config key %q has unsupported default type %T", key.Name, key.Default)
		}
	}
	return nil
}
