package initializer

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// IndexInfo is the subset of a listIndexes entry the verifier compares.
// Text indexes are reported by the server with Keys {_fts: "text", _ftsx: 1}
// and the indexed fields in Weights.
type IndexInfo struct {
	Name    string `bson:"name"`
	Keys    bson.D `bson:"key"`
	Unique  bool   `bson:"unique,omitempty"`
	Weights bson.M `bson:"weights,omitempty"`
}

// Target is the database the initializer and verifier operate on.
// MongoTarget is the production implementation.
type Target interface {
	Name() string
	CollectionNames(ctx context.Context) ([]string, error)
	CreateCollection(ctx context.Context, name string) error
	CreateIndexes(ctx context.Context, collection string, models []mongo.IndexModel) ([]string, error)
	ListIndexes(ctx context.Context, collection string) ([]IndexInfo, error)
	Explain(ctx context.Context, collection string, filter bson.D) (bson.M, error)
	TextSearch(ctx context.Context, collection, term string) (int64, error)
}

// MongoTarget adapts a *mongo.Database to Target.
type MongoTarget struct {
	db *mongo.Database
}

// NewMongoTarget wraps db.
func NewMongoTarget(db *mongo.Database) *MongoTarget {
	return &MongoTarget{db: db}
}

func (t *MongoTarget) Name() string { return t.db.Name() }

func (t *MongoTarget) CollectionNames(ctx context.Context) ([]string, error) {
	return t.db.ListCollectionNames(ctx, bson.D{})
}

func (t *MongoTarget) CreateCollection(ctx context.Context, name string) error {
	return t.db.CreateCollection(ctx, name)
}

func (t *MongoTarget) CreateIndexes(ctx context.Context, collection string, models []mongo.IndexModel) ([]string, error) {
	return t.db.Collection(collection).Indexes().CreateMany(ctx, models)
}

func (t *MongoTarget) ListIndexes(ctx context.Context, collection string) ([]IndexInfo, error) {
	cur, err := t.db.Collection(collection).Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	var out []IndexInfo
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode indexes of %s: %w", collection, err)
	}
	return out, nil
}

// Explain runs a find through the query planner without executing it.
func (t *MongoTarget) Explain(ctx context.Context, collection string, filter bson.D) (bson.M, error) {
	cmd := bson.D{
		{Key: "explain", Value: bson.D{
			{Key: "find", Value: collection},
			{Key: "filter", Value: filter},
		}},
		{Key: "verbosity", Value: "queryPlanner"},
	}
	var out bson.M
	if err := t.db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// TextSearch counts documents matching a $text search. The server rejects
// the query when the collection has no text index.
func (t *MongoTarget) TextSearch(ctx context.Context, collection, term string) (int64, error) {
	filter := bson.D{{Key: "$text", Value: bson.D{{Key: "$search", Value: term}}}}
	return t.db.Collection(collection).CountDocuments(ctx, filter)
}
