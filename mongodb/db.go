// mongodb/db.go
package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// AppName is reported to the server in the client handshake so the
// initializer's connections are identifiable in currentOp and server logs.
const AppName = "marketplace-init"

const defaultConnectTimeout = 10 * time.Second

// PoolConfig holds connection pool settings for MongoDB.
type PoolConfig struct {
	// MaxPoolSize is the maximum number of connections in the pool.
	MaxPoolSize uint64

	// ConnectTimeout bounds connect + ping.
	ConnectTimeout time.Duration

	// ServerSelectionTimeout is the timeout for selecting a server.
	ServerSelectionTimeout time.Duration
}

// JobPoolConfig returns pool settings for a short-lived, sequential job:
// a couple of connections are plenty since commands run one at a time.
func JobPoolConfig(connectTimeout time.Duration) PoolConfig {
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}
	return PoolConfig{
		MaxPoolSize:            2,
		ConnectTimeout:         connectTimeout,
		ServerSelectionTimeout: connectTimeout,
	}
}

// Connect opens a Mongo connection with a bounded timeout derived from the
// provided parent context, and pings the primary before returning.
// The returned client must be disconnected by the caller.
func Connect(ctx context.Context, uri string, pool PoolConfig) (*mongo.Client, error) {
	connectTimeout := pool.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	clientOpts := options.Client().ApplyURI(uri).SetAppName(AppName)
	if pool.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(pool.MaxPoolSize)
	}
	if pool.ConnectTimeout > 0 {
		clientOpts.SetConnectTimeout(pool.ConnectTimeout)
	}
	if pool.ServerSelectionTimeout > 0 {
		clientOpts.SetServerSelectionTimeout(pool.ServerSelectionTimeout)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, err
	}
	// Schema changes must go to the primary.
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return client, nil
}
