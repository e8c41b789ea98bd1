// Package initializer creates the marketplace collections and indexes and
// checks a live database against the same plan.
package initializer

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/dalemusser/marketplace-init/internal/schema"
	"github.com/dalemusser/marketplace-init/mongodb"
)

// SuccessMessage is printed once the database is fully initialized.
const SuccessMessage = "Database initialized successfully"

// Result summarizes what a run did.
type Result struct {
	Database            string
	CollectionsCreated  []string
	CollectionsExisting []string
	// Indexes holds "collection.index" for every index ensured, in plan order.
	Indexes  []string
	Duration time.Duration
}

// Initializer applies a schema.Plan to a Target.
type Initializer struct {
	target Target
	plan   schema.Plan
	logger *zap.Logger
	out    io.Writer
}

// New returns an Initializer that reports success on out.
func New(target Target, plan schema.Plan, logger *zap.Logger, out io.Writer) *Initializer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &Initializer{target: target, plan: plan, logger: logger, out: out}
}

// Run creates every missing collection, then every index, in plan order.
// The first error aborts the run; nothing is retried or rolled back.
// Collections and indexes that already exist with the same definition are
// left untouched, so Run can be repeated.
func (in *Initializer) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	res := Result{Database: in.target.Name()}

	if err := in.plan.Validate(); err != nil {
		return res, err
	}

	existing, err := in.target.CollectionNames(ctx)
	if err != nil {
		return res, fmt.Errorf("list collections in %s: %w", res.Database, err)
	}
	have := make(map[string]bool, len(existing))
	for _, name := range existing {
		have[name] = true
	}

	for _, c := range in.plan.Collections {
		if have[c.Name] {
			res.CollectionsExisting = append(res.CollectionsExisting, c.Name)
			in.logger.Debug("collection exists", zap.String("collection", c.Name))
			continue
		}
		if err := in.target.CreateCollection(ctx, c.Name); err != nil {
			// Lost a race with another creator; same end state.
			if mongodb.IsNamespaceExists(err) {
				res.CollectionsExisting = append(res.CollectionsExisting, c.Name)
				continue
			}
			return res, fmt.Errorf("create collection %s: %w", c.Name, err)
		}
		res.CollectionsCreated = append(res.CollectionsCreated, c.Name)
		in.logger.Info("collection created", zap.String("collection", c.Name))
	}

	for _, c := range in.plan.Collections {
		if len(c.Indexes) == 0 {
			continue
		}
		names, err := in.target.CreateIndexes(ctx, c.Name, c.Models())
		if err != nil {
			if mongodb.IsIndexConflict(err) {
				return res, fmt.Errorf("create indexes on %s: an existing index has the same name or keys with different options; drop it to apply this plan: %w", c.Name, err)
			}
			return res, fmt.Errorf("create indexes on %s: %w", c.Name, err)
		}
		for _, n := range names {
			res.Indexes = append(res.Indexes, c.Name+"."+n)
		}
		in.logger.Info("indexes ensured",
			zap.String("collection", c.Name),
			zap.Strings("indexes", names),
		)
	}

	res.Duration = time.Since(start)
	if _, err := fmt.Fprintln(in.out, SuccessMessage); err != nil {
		return res, fmt.Errorf("write confirmation: %w", err)
	}
	return res, nil
}
