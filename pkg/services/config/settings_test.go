package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := `db_path: "/var/lib/repo-atlas/cache.db"
profile: "acme-app"
staleness_window: "12h"
concurrency: 8
redis:
  addr: "localhost:6379"
  db: 2
server:
  port: "9090"`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/repo-atlas/cache.db", s.DbPath)
	assert.Equal(t, "acme-app", s.Profile)
	assert.Equal(t, 12*time.Hour, s.StalenessWindow)
	assert.Equal(t, 8, s.Concurrency)
	assert.Equal(t, "localhost:6379", s.Redis.Addr)
	assert.Equal(t, 2, s.Redis.DB)
	assert.Equal(t, "9090", s.Server.Port)
	assert.Equal(t, "localhost", s.Server.Host)
	assert.Equal(t, 30*24*time.Hour, s.FindingAge)
	assert.Equal(t, 5, s.CommitRepoLimit)
}

func TestLoadSettings_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`profile: "default"`), 0o644))
	t.Setenv("REPO_ATLAS_PROFILE", "from-env")
	t.Setenv("REPO_ATLAS_REDIS_ADDR", "redis:6379")

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", s.Profile)
	assert.Equal(t, "redis:6379", s.Redis.Addr)
}

func TestLoadSettings_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	s, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, "repo-atlas.db", s.DbPath)
	assert.Equal(t, 24*time.Hour, s.StalenessWindow)
	assert.Equal(t, 4, s.Concurrency)
	assert.Equal(t, "@every 1h", s.Schedule)
}

func TestLoadSettings_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_path: a: b"), 0o644))

	_, err := LoadSettings(path)
	assert.Error(t, err)
}
