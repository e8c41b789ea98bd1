package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := Run("marketplace-init", args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_PlanYAML(t *testing.T) {
	code, out, _ := run("plan")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "database: marketplace_db")
	assert.Contains(t, out, "name: products")
	assert.Contains(t, out, "kind: text")
}

func TestRun_PlanJSON(t *testing.T) {
	code, out, _ := run("plan", "--format=json", "--mongo_database=shop")
	require.Equal(t, 0, code)

	var decoded struct {
		Database    string `json:"database"`
		Collections []struct {
			Name string `json:"name"`
		} `json:"collections"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "shop", decoded.Database)
	assert.Len(t, decoded.Collections, 3)
}

func TestRun_PlanBadFormat(t *testing.T) {
	code, _, errOut := run("plan", "--format=xml")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "unknown plan format")
}

func TestRun_Version(t *testing.T) {
	code, out, _ := run("version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "marketplace-init dev")
}

func TestRun_Help(t *testing.T) {
	code, out, _ := run("help")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "verify [flags]")
}

func TestRun_UnknownCommand(t *testing.T) {
	code, _, errOut := run("migrate")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, `unknown command: "migrate"`)
}

func TestRun_InitRejectsBadConfigBeforeConnecting(t *testing.T) {
	code, out, _ := run("--mongo_uri=http://localhost")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
}

func TestRun_InitHelp(t *testing.T) {
	code, _, errOut := run("init", "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, errOut, "--mongo_uri")
}
