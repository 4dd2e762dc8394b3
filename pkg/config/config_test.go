package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	assert.Equal(t, "Orchestrator", cfg.AgentBucket)
	assert.Equal(t, "Docs", cfg.DocsBucket)
	assert.Equal(t, 16, cfg.RecentResources)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"docsBucket":"Planner","agentBucket":"Agents","recentResources":4}`), 0o600))
	t.Setenv("WORKBENCH_AGENT_BUCKET", "FromEnv")
	t.Setenv("WORKBENCH_LOG_LEVEL", "debug")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "Planner", cfg.DocsBucket)
	assert.Equal(t, "FromEnv", cfg.AgentBucket, "env overrides the file")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 4, cfg.RecentResources)
}

func TestLoadFromRejectsBadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o600))
	_, err := LoadFrom(path)
	assert.Error(t, err)

	good := filepath.Join(t.TempDir(), "config.json")
	t.Setenv("WORKBENCH_RECENT_RESOURCES", "many")
	_, err = LoadFrom(good)
	assert.Error(t, err)
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dir", "config.json")
	cfg := Default()
	cfg.AgentBucket = "Ideas"
	require.NoError(t, SaveTo(path, cfg))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "Ideas", loaded.AgentBucket)
}
