package initializer

import (
	"context"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dalemusser/marketplace-init/mongodb"
)

// fakeTarget is an in-memory Target that mimics the server behaviour the
// initializer depends on: NamespaceExists on duplicate collections, no-op on
// identical indexes, IndexOptionsConflict on differing ones, and text
// indexes listed as {_fts, _ftsx} with weights.
type fakeTarget struct {
	name        string
	collections map[string][]IndexInfo
	calls       []string

	listErr   error
	createErr map[string]error
	indexErr  map[string]error
	explain   map[string]bson.M
	searchErr error

	// hideExisting makes CollectionNames omit existing collections, to
	// simulate losing a creation race.
	hideExisting bool
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{
		name:        "marketplace_db",
		collections: map[string][]IndexInfo{},
		createErr:   map[string]error{},
		indexErr:    map[string]error{},
		explain:     map[string]bson.M{},
	}
}

func (f *fakeTarget) Name() string { return f.name }

func (f *fakeTarget) CollectionNames(context.Context) ([]string, error) {
	f.calls = append(f.calls, "list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.hideExisting {
		return nil, nil
	}
	names := make([]string, 0, len(f.collections))
	for n := range f.collections {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeTarget) CreateCollection(_ context.Context, name string) error {
	f.calls = append(f.calls, "create "+name)
	if err := f.createErr[name]; err != nil {
		return err
	}
	if _, ok := f.collections[name]; ok {
		return mongo.CommandError{Code: mongodb.CodeNamespaceExists, Name: "NamespaceExists"}
	}
	f.collections[name] = []IndexInfo{{Name: "_id_", Keys: bson.D{{Key: "_id", Value: int32(1)}}}}
	return nil
}

func (f *fakeTarget) CreateIndexes(_ context.Context, collection string, models []mongo.IndexModel) ([]string, error) {
	f.calls = append(f.calls, "indexes "+collection)
	if err := f.indexErr[collection]; err != nil {
		return nil, err
	}
	existing, ok := f.collections[collection]
	if !ok {
		// The server creates the collection implicitly.
		existing = []IndexInfo{{Name: "_id_", Keys: bson.D{{Key: "_id", Value: int32(1)}}}}
	}

	names := make([]string, 0, len(models))
	for _, m := range models {
		info := toInfo(m)
		if i := indexByName(existing, info.Name); i >= 0 {
			if !sameIndex(existing[i], info) {
				return nil, mongo.CommandError{Code: mongodb.CodeIndexOptionsConflict, Name: "IndexOptionsConflict",
					Message: fmt.Sprintf("index %s already exists with different options", info.Name)}
			}
		} else {
			existing = append(existing, info)
		}
		names = append(names, info.Name)
	}
	f.collections[collection] = existing
	return names, nil
}

func (f *fakeTarget) ListIndexes(_ context.Context, collection string) ([]IndexInfo, error) {
	return f.collections[collection], nil
}

func (f *fakeTarget) Explain(_ context.Context, collection string, filter bson.D) (bson.M, error) {
	field := filter[0].Key
	if doc, ok := f.explain[collection+"."+field]; ok {
		return doc, nil
	}
	stage := "COLLSCAN"
	for _, info := range f.collections[collection] {
		if len(info.Keys) > 0 && info.Keys[0].Key == field {
			stage = "IXSCAN"
		}
	}
	return explainDoc(stage), nil
}

func (f *fakeTarget) TextSearch(_ context.Context, collection, _ string) (int64, error) {
	if f.searchErr != nil {
		return 0, f.searchErr
	}
	for _, info := range f.collections[collection] {
		if _, ok := info.Weights["title"]; ok {
			return 0, nil
		}
	}
	return 0, mongo.CommandError{Code: mongodb.CodeIndexNotFound, Name: "IndexNotFound", Message: "text index required for $text query"}
}

func explainDoc(leaf string) bson.M {
	return bson.M{
		"queryPlanner": bson.M{
			"winningPlan": bson.M{
				"stage":      "FETCH",
				"inputStage": bson.M{"stage": leaf},
			},
			"rejectedPlans": bson.A{},
		},
	}
}

func toInfo(m mongo.IndexModel) IndexInfo {
	info := IndexInfo{Name: *m.Options.Name}
	if m.Options.Unique != nil {
		info.Unique = *m.Options.Unique
	}
	keys := m.Keys.(bson.D)
	for _, e := range keys {
		if e.Value == "text" {
			if info.Weights == nil {
				info.Weights = bson.M{}
			}
			info.Weights[e.Key] = int32(1)
			continue
		}
		info.Keys = append(info.Keys, bson.E{Key: e.Key, Value: int32(e.Value.(int))})
	}
	if info.Weights != nil {
		info.Keys = bson.D{{Key: "_fts", Value: "text"}, {Key: "_ftsx", Value: int32(1)}}
	}
	return info
}

func indexByName(list []IndexInfo, name string) int {
	for i, info := range list {
		if info.Name == name {
			return i
		}
	}
	return -1
}

func sameIndex(a, b IndexInfo) bool {
	return a.Unique == b.Unique && keysEqual(a.Keys, b.Keys) && len(a.Weights) == len(b.Weights)
}
