package cli

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withVersion(t *testing.T, v string) {
	t.Helper()
	prev := version
	version = v
	t.Cleanup(func() { version = prev })
}

func TestVersionCmd(t *testing.T) {
	withVersion(t, "1.4.0")

	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "hub version 1.4.0")
	assert.Contains(t, out, runtime.GOOS+"/"+runtime.GOARCH)
	assert.Contains(t, out, runtime.Version())
}

func TestVersionCmd_JSON(t *testing.T) {
	withVersion(t, "1.4.0")

	out, err := execute(t, "version", "--json")
	require.NoError(t, err)

	var got buildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "1.4.0", got.Version)
	assert.Equal(t, runtime.Version(), got.Go)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, got.Platform)
}

func TestCurrentBuild_ReleaseVersionWins(t *testing.T) {
	withVersion(t, "2.0.0-rc1")

	assert.Equal(t, "2.0.0-rc1", currentBuild().Version)
}

func TestCurrentBuild_DevIsNeverEmpty(t *testing.T) {
	withVersion(t, "dev")

	assert.NotEmpty(t, currentBuild().Version)
}
