package initializer

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/marketplace-init/internal/domain/models"
	"github.com/dalemusser/marketplace-init/internal/schema"
	"github.com/dalemusser/marketplace-init/mongodb"
)

// Check is one verification outcome.
type Check struct {
	Name   string
	OK     bool
	Detail string
}

// Report is the outcome of a verification run.
type Report struct {
	Database string
	Checks   []Check
	// Notes are informational findings such as indexes not in the plan.
	Notes []string
}

// Failed returns the number of failed checks.
func (r Report) Failed() int {
	n := 0
	for _, c := range r.Checks {
		if !c.OK {
			n++
		}
	}
	return n
}

// OK reports whether every check passed.
func (r Report) OK() bool { return r.Failed() == 0 }

func (r *Report) pass(name string) {
	r.Checks = append(r.Checks, Check{Name: name, OK: true})
}

func (r *Report) fail(name, format string, args ...any) {
	r.Checks = append(r.Checks, Check{Name: name, Detail: fmt.Sprintf(format, args...)})
}

// PlannerProbe is an equality query that must be answered from an index.
type PlannerProbe struct {
	Collection string
	Field      string
}

// DefaultPlannerProbes are the lookups the marketplace API depends on.
var DefaultPlannerProbes = []PlannerProbe{
	{Collection: models.ProductsCollection, Field: models.ProductFieldSellerID},
	{Collection: models.ProductsCollection, Field: models.ProductFieldCategory},
}

// textProbeTerm is searched for to prove the text index is usable.
// Matches are irrelevant; only the absence of an error counts.
const textProbeTerm = "marketplace"

// Verifier checks a live database against a plan without modifying it.
type Verifier struct {
	target Target
	plan   schema.Plan
	probes []PlannerProbe
	logger *zap.Logger
}

// NewVerifier returns a Verifier using DefaultPlannerProbes.
func NewVerifier(target Target, plan schema.Plan, logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{target: target, plan: plan, probes: DefaultPlannerProbes, logger: logger}
}

// Verify runs every check. It only returns an error when the database cannot
// be inspected at all; individual findings go into the Report.
func (v *Verifier) Verify(ctx context.Context) (Report, error) {
	rep := Report{Database: v.target.Name()}

	names, err := v.target.CollectionNames(ctx)
	if err != nil {
		return rep, fmt.Errorf("list collections in %s: %w", rep.Database, err)
	}
	have := make(map[string]bool, len(names))
	for _, n := range names {
		have[n] = true
	}

	for _, c := range v.plan.Collections {
		check := "collection " + c.Name
		if !have[c.Name] {
			rep.fail(check, "missing")
			for _, ix := range c.Indexes {
				rep.fail(indexCheckName(c.Name, ix), "collection missing")
			}
			continue
		}
		rep.pass(check)
		v.verifyIndexes(ctx, &rep, c)
	}

	for _, p := range v.probes {
		v.verifyPlanner(ctx, &rep, p)
	}
	v.verifyTextSearch(ctx, &rep)

	v.logger.Info("verification finished",
		zap.String("database", rep.Database),
		zap.Int("checks", len(rep.Checks)),
		zap.Int("failed", rep.Failed()),
	)
	return rep, nil
}

func indexCheckName(collection string, ix schema.Index) string {
	return fmt.Sprintf("index %s.%s", collection, ix.Name())
}

func (v *Verifier) verifyIndexes(ctx context.Context, rep *Report, c schema.Collection) {
	actual, err := v.target.ListIndexes(ctx, c.Name)
	if err != nil {
		for _, ix := range c.Indexes {
			rep.fail(indexCheckName(c.Name, ix), "list indexes: %v", err)
		}
		return
	}
	byName := make(map[string]IndexInfo, len(actual))
	for _, info := range actual {
		byName[info.Name] = info
	}

	planned := make(map[string]bool, len(c.Indexes))
	for _, ix := range c.Indexes {
		name := ix.Name()
		planned[name] = true
		check := indexCheckName(c.Name, ix)

		info, ok := byName[name]
		if !ok {
			rep.fail(check, "missing")
			continue
		}
		if msg := compareIndex(ix, info); msg != "" {
			rep.fail(check, "%s", msg)
			continue
		}
		rep.pass(check)
	}

	for _, info := range actual {
		if info.Name == "_id_" || planned[info.Name] {
			continue
		}
		rep.Notes = append(rep.Notes, fmt.Sprintf("%s has index %s not in the plan", c.Name, info.Name))
	}
}

// compareIndex returns "" when info matches ix, otherwise what differs.
func compareIndex(ix schema.Index, info IndexInfo) string {
	if ix.Unique != info.Unique {
		return fmt.Sprintf("unique is %t, want %t", info.Unique, ix.Unique)
	}
	if ix.IsText() {
		if s, _ := lookup(info.Keys, "_fts").(string); s != "text" {
			return "not a text index"
		}
		for _, f := range ix.Fields {
			if f.Kind != schema.Text {
				continue
			}
			if _, ok := info.Weights[f.Name]; !ok {
				return fmt.Sprintf("text index does not cover %s", f.Name)
			}
		}
		return ""
	}
	if !keysEqual(ix.Keys(), info.Keys) {
		return fmt.Sprintf("keys are %s, want %s", formatKeys(info.Keys), formatKeys(ix.Keys()))
	}
	return ""
}

func lookup(d bson.D, key string) any {
	for _, e := range d {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

// keysEqual compares key documents in order. Numeric directions are compared
// by value since the shell stores doubles and the driver stores int32.
func keysEqual(want, got bson.D) bool {
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if want[i].Key != got[i].Key {
			return false
		}
		wf, wNum := toFloat(want[i].Value)
		gf, gNum := toFloat(got[i].Value)
		if wNum || gNum {
			if !wNum || !gNum || wf != gf {
				return false
			}
			continue
		}
		if fmt.Sprint(want[i].Value) != fmt.Sprint(got[i].Value) {
			return false
		}
	}
	return true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func formatKeys(d bson.D) string {
	parts := make([]string, 0, len(d))
	for _, e := range d {
		parts = append(parts, fmt.Sprintf("%s:%v", e.Key, e.Value))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (v *Verifier) verifyPlanner(ctx context.Context, rep *Report, p PlannerProbe) {
	check := fmt.Sprintf("planner %s by %s", p.Collection, p.Field)
	plan, err := v.target.Explain(ctx, p.Collection, bson.D{{Key: p.Field, Value: "probe"}})
	if err != nil {
		rep.fail(check, "explain: %v", err)
		return
	}
	if !usesIndex(winningPlan(plan)) {
		rep.fail(check, "winning plan does not scan an index")
		return
	}
	rep.pass(check)
}

func (v *Verifier) verifyTextSearch(ctx context.Context, rep *Report) {
	check := "text search " + models.ProductsCollection
	if _, err := v.target.TextSearch(ctx, models.ProductsCollection, textProbeTerm); err != nil {
		if mongodb.IsIndexNotFound(err) {
			rep.fail(check, "no text index")
			return
		}
		rep.fail(check, "%v", err)
		return
	}
	rep.pass(check)
}

// winningPlan narrows an explain result to queryPlanner.winningPlan when
// present, so rejected plans are not mistaken for the chosen one.
func winningPlan(explain bson.M) any {
	qp, ok := asMap(explain["queryPlanner"])
	if !ok {
		return explain
	}
	if wp, ok := qp["winningPlan"]; ok {
		return wp
	}
	return qp
}

// usesIndex walks a plan tree looking for an index scan stage.
func usesIndex(node any) bool {
	if m, ok := asMap(node); ok {
		if stage, _ := m["stage"].(string); strings.Contains(stage, "IXSCAN") {
			return true
		}
		for _, child := range m {
			if usesIndex(child) {
				return true
			}
		}
		return false
	}
	switch t := node.(type) {
	case primitive.A:
		for _, child := range t {
			if usesIndex(child) {
				return true
			}
		}
	case []any:
		for _, child := range t {
			if usesIndex(child) {
				return true
			}
		}
	}
	return false
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case bson.M:
		return t, true
	case map[string]any:
		return t, true
	case bson.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = e.Value
		}
		return m, true
	}
	return nil, false
}
