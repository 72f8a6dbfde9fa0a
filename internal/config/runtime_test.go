package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRuntimeConfigDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := LoadRuntimeConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.StateStore.Backend)
	assert.Equal(t, "transact", cfg.Telemetry.ServiceName)
	assert.Equal(t, "none", cfg.Telemetry.Exporter)
}

func TestLoadRuntimeConfigReadsYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
state_store:
  backend: sqlite
  path: /var/lib/transact/state.db
telemetry:
  exporter: stdout
`), 0o644))

	cfg, err := LoadRuntimeConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.StateStore.Backend)
	assert.Equal(t, "/var/lib/transact/state.db", cfg.StateStore.Path)
	assert.Equal(t, "stdout", cfg.Telemetry.Exporter)
}

func TestLoadRuntimeConfigEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
state_store:
  backend: memory
`), 0o644))

	t.Setenv("TRANSACT_STATE_STORE_BACKEND", "sqlite")
	t.Setenv("TRANSACT_STATE_STORE_PATH", "/tmp/override.db")

	cfg, err := LoadRuntimeConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.StateStore.Backend)
	assert.Equal(t, "/tmp/override.db", cfg.StateStore.Path)
}

func TestLoadRuntimeConfigRejectsUnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
state_store:
  backend: postgres
`), 0o644))

	_, err := LoadRuntimeConfig(path)
	assert.Error(t, err)
}

func TestLoadRuntimeConfigRequiresPathForSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
state_store:
  backend: sqlite
`), 0o644))

	_, err := LoadRuntimeConfig(path)
	assert.Error(t, err)
}
