package bootstrap

import (
	"fmt"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/dalemusser/marketplace-init/config"
	"github.com/dalemusser/marketplace-init/internal/schema"
	"github.com/dalemusser/marketplace-init/mongodb"
)

// DefaultMongoURI matches the database container of the local compose setup.
const DefaultMongoURI = "mongodb://localhost:27017"

// AppConfig holds the database settings the commands need on top of the
// core config.
type AppConfig struct {
	MongoURI      string
	MongoDatabase string
}

var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: DefaultMongoURI, Desc: "MongoDB connection string"},
	{Name: "mongo_database", Default: schema.DefaultDatabase, Desc: "Database to initialize"},
}

// LoadConfig returns a Hooks.LoadConfig that registers flags on fs and
// parses args.
func LoadConfig(fs *pflag.FlagSet, args []string) func(*zap.Logger) (*config.CoreConfig, AppConfig, error) {
	return func(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
		core, vals, err := config.Load(logger, fs, args, appConfigKeys)
		if err != nil {
			return nil, AppConfig{}, err
		}
		appCfg := AppConfig{
			MongoURI:      vals.String("mongo_uri"),
			MongoDatabase: vals.String("mongo_database"),
		}
		if err := validateAppConfig(appCfg); err != nil {
			return nil, AppConfig{}, err
		}
		return core, appCfg, nil
	}
}

func validateAppConfig(c AppConfig) error {
	if err := mongodb.ValidateURI(c.MongoURI); err != nil {
		return fmt.Errorf("invalid mongo_uri: %w", err)
	}
	if err := mongodb.ValidateDatabaseName(c.MongoDatabase); err != nil {
		return fmt.Errorf("invalid mongo_database %q: %w", c.MongoDatabase, err)
	}
	return nil
}
