package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	assert.Equal(t, "dev", String())

	prev := [3]string{Version, Commit, BuildTime}
	t.Cleanup(func() { Version, Commit, BuildTime = prev[0], prev[1], prev[2] })

	Version, Commit, BuildTime = "1.2.3", "abc123", "2024-01-15T10:30:00Z"
	assert.Equal(t, "1.2.3 (abc123, built 2024-01-15T10:30:00Z)", String())
	assert.True(t, strings.HasSuffix(Long(), runtime.GOOS+"/"+runtime.GOARCH))
}
