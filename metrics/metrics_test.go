package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJob_Success(t *testing.T) {
	j := NewJob("init", "marketplace_db")
	j.CollectionsCreated(2)
	j.CollectionsExisting(1)
	j.IndexEnsured("users")
	j.IndexEnsured("users")
	j.IndexEnsured("orders")
	j.Finish(1500*time.Millisecond, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(j.collectionsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(j.collectionsExisted))
	assert.Equal(t, 2.0, testutil.ToFloat64(j.indexesEnsured.WithLabelValues("users")))
	assert.Equal(t, 1.0, testutil.ToFloat64(j.indexesEnsured.WithLabelValues("orders")))
	assert.Equal(t, 1.5, testutil.ToFloat64(j.duration))
	assert.Equal(t, 0.0, testutil.ToFloat64(j.failed))
	assert.Greater(t, testutil.ToFloat64(j.lastSuccess), 0.0)
}

func TestJob_Failure(t *testing.T) {
	j := NewJob("init", "marketplace_db")
	j.Finish(time.Second, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(j.failed))
	assert.Equal(t, 0.0, testutil.ToFloat64(j.lastSuccess))
}

func TestJob_WriteTextfile(t *testing.T) {
	j := NewJob("init", "marketplace_db")
	j.CollectionsCreated(3)
	j.Finish(time.Second, nil)

	path := filepath.Join(t.TempDir(), "marketplace_init.prom")
	require.NoError(t, j.WriteTextfile(path, nil))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(b)
	assert.Contains(t, out, `marketplace_init_collections_created_total{command="init",database="marketplace_db"} 3`)
	assert.True(t, strings.Contains(out, "# HELP marketplace_init_failed"))
}

func TestJob_WriteTextfileEmptyPath(t *testing.T) {
	assert.NoError(t, NewJob("verify", "x").WriteTextfile("", nil))
}
