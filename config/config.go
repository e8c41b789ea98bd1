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

// EnvPrefix is the prefix used for all environment variables
// (e.g. MARKETPLACE_LOG_LEVEL, MARKETPLACE_MONGO_URI).
const EnvPrefix = "MARKETPLACE"

// CoreConfig holds the settings every marketplace-init command needs,
// independent of which database it talks to.
type CoreConfig struct {
	// runtime
	Env      string `mapstructure:"env"`       // "dev" | "prod"
	LogLevel string `mapstructure:"log_level"` // debug, info, warn, error …

	// DB-related timeouts (no URIs/DB names here). Parsed separately so
	// plain seconds ("120") are accepted alongside "2m".
	DBConnectTimeout time.Duration `mapstructure:"-"`
	IndexBootTimeout time.Duration `mapstructure:"-"`

	// MetricsTextfile is where job metrics are written in Prometheus text
	// format. Empty disables the file.
	MetricsTextfile string `mapstructure:"metrics_textfile"`
}

// Dump returns a pretty JSON string of the config for debugging.
func (c CoreConfig) Dump() string {
	b, _ := json.MarshalIndent(c, "", "  ")
	return string(b)
}

// Load merges defaults → config.* file(s) → env vars → explicit flags into one
// CoreConfig plus the values of the app keys.
// Final precedence (highest wins): flags(explicit) > env > config > defaults.
//
// Flags are registered on fs and parsed from args, so each subcommand can own
// its flag set. App keys are registered on the same flag set.
func Load(logger *zap.Logger, fs *pflag.FlagSet, args []string, keys []AppKey) (*CoreConfig, AppConfigValues, error) {
	// 0) Optionally load .env (safe: real env still wins over .env)
	if err := godotenv.Load(); err == nil && logger != nil {
		logger.Info("Loaded .env file")
	}

	// 1) Define flags (only *explicitly set* flags will override)
	registerCoreFlags(fs)
	if err := registerAppFlags(fs, keys); err != nil {
		return nil, nil, err
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	// 2) Viper + env
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Bind env for all keys so Unmarshal sees them.
	for _, k := range allKeys() {
		_ = v.BindEnv(k)
	}

	// 3) Optional config.* files (yaml|yml|json|toml)
	mergeConfigFiles(logger, v)

	// 4) Defaults (lowest precedence)
	setDefaults(v)

	// 5) Apply *explicit* flags (highest precedence)
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			_ = v.BindPFlag(f.Name, f)
		}
	})

	// 6) Build struct
	var cfg CoreConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("unable to decode core config: %w", err)
	}

	// Parse durations
	dur, err := parseDurationFlexible(v.Get("index_boot_timeout"), 120*time.Second)
	if err != nil && logger != nil {
		logger.Warn("invalid index_boot_timeout; using default 120s",
			zap.Any("value", v.Get("index_boot_timeout")), zap.Error(err))
	}
	cfg.IndexBootTimeout = dur

	dbDur, err := parseDurationFlexible(v.Get("db_connect_timeout"), 10*time.Second)
	if err != nil && logger != nil {
		logger.Warn("invalid db_connect_timeout; using default 10s",
			zap.Any("value", v.Get("db_connect_timeout")), zap.Error(err))
	}
	cfg.DBConnectTimeout = dbDur

	// 7) Validate
	if err := validateCoreConfig(cfg); err != nil {
		return nil, nil, err
	}

	appVals := loadAppConfig(logger, v, fs, keys)
	return &cfg, appVals, nil
}

func registerCoreFlags(fs *pflag.FlagSet) {
	fs.String("env", "dev", `Runtime environment "dev"|"prod"`)
	fs.String("log_level", "info", "Log level")

	fs.String("db_connect_timeout", "10s", "Timeout for DB connect + ping (e.g., \"10s\", \"30s\")")
	fs.String("index_boot_timeout", "120s", "Timeout for creating collections and indexes (e.g., \"90s\", \"2m\")")

	fs.String("metrics_textfile", "", "Write job metrics to this file in Prometheus text format")
}

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

func allKeys() []string {
	return []string{
		"env", "log_level",
		"db_connect_timeout", "index_boot_timeout",
		"metrics_textfile",
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("log_level", "info")

	v.SetDefault("db_connect_timeout", "10s")
	v.SetDefault("index_boot_timeout", "120s")

	v.SetDefault("metrics_textfile", "")
}

func validateCoreConfig(cfg CoreConfig) error {
	var invalid []string

	switch cfg.Env {
	case "dev", "prod":
	default:
		invalid = append(invalid, `env must be "dev" or "prod"`)
	}

	// DB timeouts sanity
	if cfg.DBConnectTimeout <= 0 {
		invalid = append(invalid, "db_connect_timeout must be > 0")
	}
	if cfg.IndexBootTimeout <= 0 {
		invalid = append(invalid, "index_boot_timeout must be > 0")
	}

	if len(invalid) == 0 {
		return nil
	}
	return fmt.Errorf("core configuration errors: invalid: %s", strings.Join(invalid, ", "))
}
