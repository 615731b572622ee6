// config/config.go
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix prefixes every environment variable the service reads,
// e.g. ANALYSIS_HTTP_PORT or ANALYSIS_MONGO_URI.
const EnvPrefix = "ANALYSIS"

// HTTPConfig groups HTTP listener settings.
type HTTPConfig struct {
	HTTPPort          int           `mapstructure:"http_port"`
	ReadHeaderTimeout time.Duration `mapstructure:"-"`
	ShutdownTimeout   time.Duration `mapstructure:"-"`
}

// CORSConfig groups all CORS behavior and lists.
type CORSConfig struct {
	EnableCORS           bool     `mapstructure:"enable_cors"`
	CORSAllowedOrigins   []string `mapstructure:"cors_allowed_origins"`
	CORSAllowedMethods   []string `mapstructure:"cors_allowed_methods"`
	CORSAllowedHeaders   []string `mapstructure:"cors_allowed_headers"`
	CORSAllowCredentials bool     `mapstructure:"cors_allow_credentials"`
	CORSMaxAge           int      `mapstructure:"cors_max_age"`
}

// CoreConfig holds the service-wide configuration. Database URIs and names
// are app keys, not part of the core.
type CoreConfig struct {
	// runtime
	Env      string `mapstructure:"env"`       // "dev" | "prod"
	LogLevel string `mapstructure:"log_level"` // debug, info, warn, error …

	HTTP HTTPConfig `mapstructure:",squash"`
	CORS CORSConfig `mapstructure:",squash"`

	DBConnectTimeout time.Duration `mapstructure:"-"`

	MaxRequestBodyBytes int64 `mapstructure:"max_request_body_bytes"`
}

// Dump returns the config as indented JSON for debug logging.
func (c CoreConfig) Dump() string {
	b, _ := json.MarshalIndent(c, "", "  ")
	return string(b)
}

// Load merges defaults → config.* file(s) → env vars → explicit flags into one
// CoreConfig plus the values for appKeys.
// Final precedence (highest wins): flags(explicit) > env > config > defaults.
//
// args are the command-line arguments without the program name.
func Load(logger *zap.Logger, args []string, appKeys []AppKey) (*CoreConfig, AppConfigValues, error) {
	// 0) Optionally load .env (real env still wins over .env)
	if err := godotenv.Load(); err == nil && logger != nil {
		logger.Info("Loaded .env file")
	}

	// 1) Flags; only explicitly set flags override other sources
	fs := pflag.NewFlagSet("analysis", pflag.ContinueOnError)
	fs.String("env", "dev", `Runtime environment "dev"|"prod"`)
	fs.String("log_level", "debug", "Log level")
	fs.Int("http_port", 8020, "HTTP port")
	fs.String("read_header_timeout", "10s", "HTTP read header timeout")
	fs.String("shutdown_timeout", "15s", "Graceful shutdown timeout")
	fs.String("db_connect_timeout", "10s", "Timeout for the first DB connection (e.g., \"10s\", \"30s\")")
	fs.Bool("enable_cors", false, "Enable CORS")
	fs.String("cors_allowed_origins", "", `JSON array of origins, e.g. '["https://a.example"]'`)
	fs.String("cors_allowed_methods", "", `JSON array of methods, e.g. '["GET","POST"]'`)
	fs.String("cors_allowed_headers", "", `JSON array of headers, e.g. '["Accept","Authorization"]'`)
	fs.Bool("cors_allow_credentials", false, "CORS: allow credentials")
	fs.Int("cors_max_age", 0, "CORS: max age seconds (0 disables cache)")
	fs.Int64("max_request_body_bytes", 2<<20, "Max HTTP request body size in bytes (0 = unlimited)")
	if err := registerAppFlags(fs, appKeys); err != nil {
		return nil, nil, err
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("parse flags: %w", err)
	}

	// 2) Viper + env
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, k := range allKeys() {
		_ = v.BindEnv(k)
	}

	// 3) Optional config.* files
	mergeConfigFiles(logger, v)

	// 4) Defaults (lowest precedence)
	setDefaults(v)

	// 5) Explicit flags (highest precedence)
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			_ = v.BindPFlag(f.Name, f)
		}
	})

	// 6) JSON strings → []string
	if err := normalizeListKeys(logger, v,
		"cors_allowed_origins",
		"cors_allowed_methods",
		"cors_allowed_headers",
	); err != nil {
		return nil, nil, err
	}

	// 7) Build struct
	var cfg CoreConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("unable to decode core config: %w", err)
	}

	var durErrs []string
	cfg.DBConnectTimeout = durationKey(v, "db_connect_timeout", 10*time.Second, &durErrs)
	cfg.HTTP.ReadHeaderTimeout = durationKey(v, "read_header_timeout", 10*time.Second, &durErrs)
	cfg.HTTP.ShutdownTimeout = durationKey(v, "shutdown_timeout", 15*time.Second, &durErrs)

	// 8) Validate
	if err := validateCoreConfig(cfg, durErrs); err != nil {
		return nil, nil, err
	}

	appVals := loadAppConfig(logger, fs, v, appKeys)
	return &cfg, appVals, nil
}

func allKeys() []string {
	return []string{
		"env", "log_level",
		"http_port", "read_header_timeout", "shutdown_timeout",
		"db_connect_timeout",
		"enable_cors",
		"cors_allowed_origins", "cors_allowed_methods", "cors_allowed_headers",
		"cors_allow_credentials", "cors_max_age",
		"max_request_body_bytes",
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("log_level", "debug")

	v.SetDefault("http_port", 8020)
	v.SetDefault("read_header_timeout", "10s")
	v.SetDefault("shutdown_timeout", "15s")

	v.SetDefault("db_connect_timeout", "10s")

	v.SetDefault("enable_cors", false)
	v.SetDefault("cors_allowed_origins", []string{})
	v.SetDefault("cors_allowed_methods", []string{})
	v.SetDefault("cors_allowed_headers", []string{})
	v.SetDefault("cors_allow_credentials", false)
	v.SetDefault("cors_max_age", 0)

	v.SetDefault("max_request_body_bytes", int64(2<<20))
}

// mergeConfigFiles merges config.{yaml,yml,json,toml} from the working
// directory, in that order. Unreadable files are logged and skipped.
func mergeConfigFiles(logger *zap.Logger, v *viper.Viper) {
	for _, ext := range [...]string{"yaml", "yml", "json", "toml"} {
		file := "config." + ext
		if _, err := os.Stat(file); err != nil {
			continue
		}
		b, err := os.ReadFile(file)
		if err != nil {
			if logger != nil {
				logger.Warn("cannot read config file", zap.String("file", file), zap.Error(err))
			}
			continue
		}
		v.SetConfigType(ext)
		if err := v.MergeConfig(bytes.NewReader(b)); err != nil {
			if logger != nil {
				logger.Warn("cannot decode config file", zap.String("file", file), zap.Error(err))
			}
			continue
		}
		if logger != nil {
			logger.Info("Loaded config file", zap.String("file", file))
		}
	}
}

func durationKey(v *viper.Viper, key string, def time.Duration, errs *[]string) time.Duration {
	d, err := parseDurationFlexible(v.Get(key), def)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: %v", key, err))
	}
	return d
}

// normalizeListKeys coerces JSON-string values into []string for the given keys.
func normalizeListKeys(logger *zap.Logger, v *viper.Viper, keys ...string) error {
	for _, key := range keys {
		switch t := v.Get(key).(type) {
		case string:
			s := strings.TrimSpace(t)
			if s == "" {
				continue
			}
			var arr []string
			if err := json.Unmarshal([]byte(s), &arr); err != nil {
				return fmt.Errorf("config key %q expects a JSON array string, got %q: %w", key, s, err)
			}
			v.Set(key, arr)
		case []interface{}:
			arr := make([]string, 0, len(t))
			for _, e := range t {
				arr = append(arr, fmt.Sprint(e))
			}
			v.Set(key, arr)
		case []string, nil:
		default:
			if logger != nil {
				logger.Warn("unexpected type for list key; expected JSON array/string",
					zap.String("key", key), zap.Any("value", t))
			}
		}
	}
	return nil
}

func validateCoreConfig(cfg CoreConfig, invalid []string) error {
	var missing []string

	switch cfg.Env {
	case "dev", "prod":
	default:
		invalid = append(invalid, `env must be "dev" or "prod"`)
	}

	if cfg.HTTP.HTTPPort <= 0 || cfg.HTTP.HTTPPort > 65535 {
		invalid = append(invalid, "http_port must be in 1..65535")
	}
	if cfg.MaxRequestBodyBytes < 0 {
		invalid = append(invalid, "max_request_body_bytes must be >= 0")
	}

	if cfg.CORS.EnableCORS {
		if len(cfg.CORS.CORSAllowedOrigins) == 0 {
			missing = append(missing, "CORS: cors_allowed_origins (JSON array) required when enable_cors=true")
		}
		if len(cfg.CORS.CORSAllowedMethods) == 0 {
			missing = append(missing, "CORS: cors_allowed_methods (JSON array) required when enable_cors=true")
		}
		for _, o := range cfg.CORS.CORSAllowedOrigins {
			if o == "*" && cfg.CORS.CORSAllowCredentials {
				invalid = append(invalid, `CORS: cannot use "*" in cors_allowed_origins when cors_allow_credentials=true`)
				break
			}
		}
		if cfg.CORS.CORSMaxAge < 0 {
			invalid = append(invalid, "CORS: cors_max_age must be >= 0")
		}
	}

	if len(missing) == 0 && len(invalid) == 0 {
		return nil
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		parts = append(parts, "invalid: "+strings.Join(invalid, ", "))
	}
	return fmt.Errorf("core configuration errors: %s", strings.Join(parts, " | "))
}
