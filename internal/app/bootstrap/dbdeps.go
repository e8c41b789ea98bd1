package bootstrap

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/dalemusser/marketplace-init/config"
	"github.com/dalemusser/marketplace-init/internal/initializer"
	"github.com/dalemusser/marketplace-init/mongodb"
)

// DBDeps is what ConnectDB hands to the tasks.
type DBDeps struct {
	Client *mongo.Client
	Target initializer.Target
}

// ConnectDB connects to MongoDB and selects the configured database.
func ConnectDB(ctx context.Context, core *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	client, err := mongodb.Connect(ctx, appCfg.MongoURI, mongodb.JobPoolConfig(core.DBConnectTimeout))
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect to %s: %w", mongodb.RedactURI(appCfg.MongoURI), err)
	}
	logger.Info("connected to MongoDB",
		zap.String("uri", mongodb.RedactURI(appCfg.MongoURI)),
		zap.String("database", appCfg.MongoDatabase),
	)
	return DBDeps{
		Client: client,
		Target: initializer.NewMongoTarget(client.Database(appCfg.MongoDatabase)),
	}, nil
}

// CloseDB disconnects the client opened by ConnectDB.
func CloseDB(ctx context.Context, deps DBDeps, _ *zap.Logger) error {
	if deps.Client == nil {
		return nil
	}
	return deps.Client.Disconnect(ctx)
}
