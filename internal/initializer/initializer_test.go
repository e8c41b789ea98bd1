package initializer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dalemusser/marketplace-init/internal/schema"
	"github.com/dalemusser/marketplace-init/mongodb"
)

func TestRun_EmptyDatabase(t *testing.T) {
	target := newFakeTarget()
	var out bytes.Buffer

	res, err := New(target, schema.Marketplace(""), nil, &out).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "marketplace_db", res.Database)
	assert.Equal(t, []string{"users", "products", "orders"}, res.CollectionsCreated)
	assert.Empty(t, res.CollectionsExisting)
	assert.Equal(t, []string{
		"users.email_1", "users.username_1",
		"products.seller_id_1", "products.category_1", "products.created_at_-1", "products.title_text_description_text",
		"orders.buyer_id_1", "orders.seller_id_1", "orders.created_at_-1",
	}, res.Indexes)
	assert.Equal(t, SuccessMessage+"\n", out.String())
}

func TestRun_CollectionsBeforeIndexes(t *testing.T) {
	target := newFakeTarget()
	_, err := New(target, schema.Marketplace(""), nil, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"list",
		"create users", "create products", "create orders",
		"indexes users", "indexes products", "indexes orders",
	}, target.calls)
}

func TestRun_IsRepeatable(t *testing.T) {
	target := newFakeTarget()
	plan := schema.Marketplace("")

	_, err := New(target, plan, nil, nil).Run(context.Background())
	require.NoError(t, err)
	before := len(target.collections["products"])

	var out bytes.Buffer
	res, err := New(target, plan, nil, &out).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, res.CollectionsCreated)
	assert.ElementsMatch(t, []string{"orders", "products", "users"}, res.CollectionsExisting)
	assert.Len(t, target.collections["products"], before)
	assert.Len(t, target.collections["users"], 3) // _id_ + email + username
	assert.Equal(t, SuccessMessage+"\n", out.String())
}

func TestRun_ToleratesCreationRace(t *testing.T) {
	target := newFakeTarget()
	target.collections["users"] = nil
	target.hideExisting = true

	res, err := New(target, schema.Marketplace(""), nil, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"users"}, res.CollectionsExisting)
	assert.Equal(t, []string{"products", "orders"}, res.CollectionsCreated)
}

func TestRun_ListFailureAborts(t *testing.T) {
	target := newFakeTarget()
	target.listErr = errors.New("connection refused")
	var out bytes.Buffer

	_, err := New(target, schema.Marketplace(""), nil, &out).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list collections in marketplace_db")
	assert.Empty(t, out.String())
}

func TestRun_CreateFailureAborts(t *testing.T) {
	target := newFakeTarget()
	target.createErr["products"] = mongo.CommandError{Code: 13, Name: "Unauthorized"}
	var out bytes.Buffer

	res, err := New(target, schema.Marketplace(""), nil, &out).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create collection products")
	assert.Equal(t, []string{"users"}, res.CollectionsCreated)
	assert.NotContains(t, target.calls, "create orders")
	assert.Empty(t, out.String())
}

func TestRun_IndexConflictIsSurfaced(t *testing.T) {
	target := newFakeTarget()
	// email_1 exists but is not unique.
	target.collections["users"] = []IndexInfo{
		{Name: "_id_", Keys: bson.D{{Key: "_id", Value: int32(1)}}},
		{Name: "email_1", Keys: bson.D{{Key: "email", Value: int32(1)}}},
	}

	_, err := New(target, schema.Marketplace(""), nil, nil).Run(context.Background())
	require.Error(t, err)
	assert.True(t, mongodb.IsIndexConflict(err))
	assert.Contains(t, err.Error(), "create indexes on users")
	assert.NotContains(t, target.calls, "indexes products")
}

func TestRun_InvalidPlan(t *testing.T) {
	target := newFakeTarget()
	_, err := New(target, schema.Plan{}, nil, nil).Run(context.Background())
	require.Error(t, err)
	assert.Empty(t, target.calls)
}
