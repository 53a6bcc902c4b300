package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "repograph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Cleanup(func() { current.Store(newViper()) })

	require.NoError(t, Load(""))

	assert.False(t, IsDev())
	assert.Equal(t, "info", Log.Level())
	assert.Equal(t, int64(0), Harvest.Concurrency())
	assert.Equal(t, "tmp", Harvest.MirrorDir())
	assert.Equal(t, "github.com", Harvest.Host())
	assert.Equal(t, 10*time.Minute, Harvest.CloneTimeout())
	assert.Equal(t, 5*time.Minute, Harvest.SummarizeTimeout())
	assert.Equal(t, int64(3), Ranking.Concurrency())
	assert.Equal(t, int64(8080), Server.Port())
	assert.False(t, Server.Enabled())
}

func TestLoad_FileAndEnv(t *testing.T) {
	t.Cleanup(func() { current.Store(newViper()) })

	path := writeConfig(t, `
env: dev
harvest:
  concurrency: 4
  mirror_dir: /var/lib/repograph
  clone_timeout: 90s
server:
  enabled: true
  port: 9090
`)
	t.Setenv("REPOGRAPH_GITHUB_TOKEN", "secret")
	t.Setenv("REPOGRAPH_HARVEST_CONCURRENCY", "6")

	require.NoError(t, Load(path))

	assert.True(t, IsDev())
	assert.Equal(t, int64(6), Harvest.Concurrency(), "env overrides file")
	assert.Equal(t, "/var/lib/repograph", Harvest.MirrorDir())
	assert.Equal(t, 90*time.Second, Harvest.CloneTimeout())
	assert.True(t, Server.Enabled())
	assert.Equal(t, int64(9090), Server.Port())
	assert.Equal(t, "secret", GitHub.Token())
}

func TestLoad_Invalid(t *testing.T) {
	t.Cleanup(func() { current.Store(newViper()) })

	testCases := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "port out of range", body: "server:\n  port: 70000\n", wantErr: ErrInvalidPort},
		{name: "negative harvest concurrency", body: "harvest:\n  concurrency: -1\n", wantErr: ErrInvalidConcurrency},
		{name: "zero ranking concurrency", body: "ranking:\n  concurrency: 0\n", wantErr: ErrInvalidConcurrency},
		{name: "zero clone timeout", body: "harvest:\n  clone_timeout: 0s\n", wantErr: ErrInvalidTimeout},
		{name: "zero request rate", body: "ranking:\n  requests_per_second: 0\n", wantErr: ErrInvalidRate},
		{name: "empty dsn", body: "database:\n  dsn: \"\"\n", wantErr: ErrMissingDsn},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Load(writeConfig(t, tc.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
