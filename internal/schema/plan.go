// Package schema declares the marketplace database layout as data: which
// collections exist and which indexes each one carries. The initializer
// applies a Plan, the verifier checks a live database against one, and the
// plan command prints one.
package schema

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/yaml.v3"

	"github.com/dalemusser/marketplace-init/internal/domain/models"
)

// DefaultDatabase is the database the marketplace API reads and writes.
const DefaultDatabase = "marketplace_db"

// Kind is how a single field participates in an index.
type Kind string

const (
	Ascending  Kind = "asc"
	Descending Kind = "desc"
	Text       Kind = "text"
)

// Value is the key-document value the server expects for k.
func (k Kind) Value() any {
	switch k {
	case Descending:
		return -1
	case Text:
		return "text"
	default:
		return 1
	}
}

// Field is one entry of an index key document.
type Field struct {
	Name string `yaml:"field" json:"field"`
	Kind Kind   `yaml:"kind" json:"kind"`
}

func Asc(name string) Field       { return Field{Name: name, Kind: Ascending} }
func Desc(name string) Field      { return Field{Name: name, Kind: Descending} }
func TextField(name string) Field { return Field{Name: name, Kind: Text} }

// Index is an ordered field set plus options.
type Index struct {
	Fields []Field `yaml:"fields" json:"fields"`
	Unique bool    `yaml:"unique,omitempty" json:"unique,omitempty"`
}

// Name is the name the server generates for this key document when none is
// given, e.g. "email_1", "created_at_-1", "title_text_description_text".
// Using it keeps re-runs, and runs after the mongo shell script, no-ops.
func (ix Index) Name() string {
	parts := make([]string, 0, len(ix.Fields))
	for _, f := range ix.Fields {
		parts = append(parts, fmt.Sprintf("%s_%v", f.Name, f.Kind.Value()))
	}
	return strings.Join(parts, "_")
}

// Keys returns the ordered key document.
func (ix Index) Keys() bson.D {
	keys := make(bson.D, 0, len(ix.Fields))
	for _, f := range ix.Fields {
		keys = append(keys, bson.E{Key: f.Name, Value: f.Kind.Value()})
	}
	return keys
}

// IsText reports whether any field is text-indexed.
func (ix Index) IsText() bool {
	for _, f := range ix.Fields {
		if f.Kind == Text {
			return true
		}
	}
	return false
}

// Model converts the index to the driver's representation.
func (ix Index) Model() mongo.IndexModel {
	opts := options.Index().SetName(ix.Name())
	if ix.Unique {
		opts.SetUnique(true)
	}
	return mongo.IndexModel{Keys: ix.Keys(), Options: opts}
}

// Collection is a named collection and the indexes it must carry.
type Collection struct {
	Name    string  `yaml:"name" json:"name"`
	Indexes []Index `yaml:"indexes" json:"indexes"`
}

// Models converts every index of c to driver models, in plan order.
func (c Collection) Models() []mongo.IndexModel {
	out := make([]mongo.IndexModel, 0, len(c.Indexes))
	for _, ix := range c.Indexes {
		out = append(out, ix.Model())
	}
	return out
}

// Plan is the full layout of one database.
type Plan struct {
	Database    string       `yaml:"database" json:"database"`
	Collections []Collection `yaml:"collections" json:"collections"`
}

// Marketplace returns the marketplace layout for the named database.
func Marketplace(database string) Plan {
	if database == "" {
		database = DefaultDatabase
	}
	return Plan{
		Database: database,
		Collections: []Collection{
			{
				Name: models.UsersCollection,
				Indexes: []Index{
					{Fields: []Field{Asc(models.UserFieldEmail)}, Unique: true},
					{Fields: []Field{Asc(models.UserFieldUsername)}, Unique: true},
				},
			},
			{
				Name: models.ProductsCollection,
				Indexes: []Index{
					{Fields: []Field{Asc(models.ProductFieldSellerID)}},
					{Fields: []Field{Asc(models.ProductFieldCategory)}},
					{Fields: []Field{Desc(models.ProductFieldCreatedAt)}},
					{Fields: []Field{TextField(models.ProductFieldTitle), TextField(models.ProductFieldDescription)}},
				},
			},
			{
				Name: models.OrdersCollection,
				Indexes: []Index{
					{Fields: []Field{Asc(models.OrderFieldBuyerID)}},
					{Fields: []Field{Asc(models.OrderFieldSellerID)}},
					{Fields: []Field{Desc(models.OrderFieldCreatedAt)}},
				},
			},
		},
	}
}

// CollectionNames returns the collection names in plan order.
func (p Plan) CollectionNames() []string {
	names := make([]string, 0, len(p.Collections))
	for _, c := range p.Collections {
		names = append(names, c.Name)
	}
	return names
}

// IndexCount is the number of indexes across all collections.
func (p Plan) IndexCount() int {
	n := 0
	for _, c := range p.Collections {
		n += len(c.Indexes)
	}
	return n
}

// Validate catches plans the server would reject or that would be ambiguous:
// duplicate collections, empty indexes, duplicate index names, more than one
// text index per collection.
func (p Plan) Validate() error {
	if p.Database == "" {
		return fmt.Errorf("plan: database name is empty")
	}
	seen := make(map[string]bool, len(p.Collections))
	for _, c := range p.Collections {
		if c.Name == "" {
			return fmt.Errorf("plan: collection with empty name")
		}
		if seen[c.Name] {
			return fmt.Errorf("plan: collection %q listed twice", c.Name)
		}
		seen[c.Name] = true

		names := make(map[string]bool, len(c.Indexes))
		texts := 0
		for _, ix := range c.Indexes {
			if len(ix.Fields) == 0 {
				return fmt.Errorf("plan: %s: index without fields", c.Name)
			}
			name := ix.Name()
			if names[name] {
				return fmt.Errorf("plan: %s: index %q listed twice", c.Name, name)
			}
			names[name] = true
			if ix.IsText() {
				texts++
			}
		}
		if texts > 1 {
			return fmt.Errorf("plan: %s: at most one text index per collection", c.Name)
		}
	}
	return nil
}

// Render writes the plan as "yaml" (default) or "json".
func (p Plan) Render(w io.Writer, format string) error {
	switch strings.ToLower(format) {
	case "", "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("render plan: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	default:
		return fmt.Errorf("unknown plan format %q (want yaml or json)", format)
	}
}
