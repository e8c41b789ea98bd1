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

// AppKey defines a configuration key owned by the application layer
// (e.g. the Mongo URI), as opposed to the core keys every command shares.
// App keys follow the same precedence as core keys.
type AppKey struct {
	// Name is the key name (e.g., "mongo_uri").
	// This is used as-is for config files and CLI flags.
	// For env vars, it's uppercased and prefixed (e.g., MARKETPLACE_MONGO_URI).
	Name string

	// Default is the default value if not set elsewhere.
	// Supported types: string, int, bool.
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
// Handles both int and int64 (TOML/Viper returns int64 for integers).
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

// Duration parses a duration value from the config.
// Accepts duration strings ("90s", "2m") or numeric seconds.
// Returns def if the key is not found, empty, or invalid.
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

// loadAppConfig resolves app keys on the same viper instance as the core
// config, so config files, env vars and explicit flags apply to them too.
func loadAppConfig(logger *zap.Logger, v *viper.Viper, fs *pflag.FlagSet, keys []AppKey) AppConfigValues {
	result := make(AppConfigValues, len(keys))
	if len(keys) == 0 {
		return result
	}

	for _, key := range keys {
		v.SetDefault(key.Name, key.Default)
		_ = v.BindEnv(key.Name)
		if f := fs.Lookup(key.Name); f != nil && f.Changed {
			_ = v.BindPFlag(key.Name, f)
		}
	}

	for _, key := range keys {
		switch key.Default.(type) {
		case int:
			result[key.Name] = v.GetInt(key.Name)
		case bool:
			result[key.Name] = v.GetBool(key.Name)
		default:
			result[key.Name] = v.GetString(key.Name)
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

// isSecretKey reports whether a key's value must not be logged as-is.
// URIs are included because connection strings may carry credentials.
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
// Must be called before fs.Parse().
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
