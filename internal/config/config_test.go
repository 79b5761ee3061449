package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"TADA_ADDR", "TADA_DATA_FILE", "TADA_LOG_FILE", "TADA_STORAGE",
		"TADA_SQLITE_FILE", "TADA_LOG_LEVEL", "TADA_THEME",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, "todos.json", cfg.DataFile)
	assert.Equal(t, "logs.txt", cfg.LogFile)
	assert.Equal(t, StorageJSON, cfg.Storage)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr = "127.0.0.1:8080"
storage = "SQLite"
sqlite_file = "/tmp/t.db"
log_level = "debug"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr)
	assert.Equal(t, StorageSQLite, cfg.Storage)
	assert.Equal(t, "/tmp/t.db", cfg.SQLiteFile)
	assert.Equal(t, DefaultDataFile, cfg.DataFile)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestLoadProjectFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectFile), []byte(`theme = "neon"`), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "neon", cfg.Theme)
}

func TestExplicitFileMustExist(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "loading config file")
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "tada.toml")
	require.NoError(t, os.WriteFile(path, []byte(`data_file = "from-file.json"`), 0o644))
	t.Setenv("TADA_DATA_FILE", "from-env.json")
	t.Setenv("TADA_STORAGE", "memory")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.json", cfg.DataFile)
	assert.Equal(t, StorageMemory, cfg.Storage)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad storage", func(c *Config) { c.Storage = "redis" }, `storage "redis"`},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, `log_level "loud"`},
		{"bad theme", func(c *Config) { c.Theme = "pink" }, `theme "pink"`},
		{"empty addr", func(c *Config) { c.Addr = "" }, "addr is empty"},
		{"empty data file", func(c *Config) { c.DataFile = "" }, "data_file is empty"},
		{"empty log file", func(c *Config) { c.LogFile = "" }, "log_file is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	t.Run("data file unused by memory storage", func(t *testing.T) {
		cfg := Default()
		cfg.Storage = StorageMemory
		cfg.DataFile = ""
		assert.NoError(t, cfg.Validate())
	})
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent to testing.T.Chdir in Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
