// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. Config file (-config path, or ./tada.toml when present)
// 3. Environment variables (TADA_*)
//
// Each level overrides the previous one.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Default values.
const (
	DefaultAddr       = ":3000"
	DefaultDataFile   = "todos.json"
	DefaultLogFile    = "logs.txt"
	DefaultStorage    = StorageJSON
	DefaultSQLiteFile = "todos.sqlite3"
	DefaultLogLevel   = "info"
	DefaultTheme      = "classic"

	// ProjectFile is picked up from the working directory when no path is given.
	ProjectFile = "tada.toml"
)

// Storage backends.
const (
	StorageJSON   = "json"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Themes understood by the terminal UI.
var Themes = []string{"classic", "neon", "mono"}

// Config holds the full configuration.
type Config struct {
	Addr       string `toml:"addr"`
	DataFile   string `toml:"data_file"`
	LogFile    string `toml:"log_file"`
	Storage    string `toml:"storage"`
	SQLiteFile string `toml:"sqlite_file"`
	LogLevel   string `toml:"log_level"`
	Theme      string `toml:"theme"`
}

// Default returns a config with every field set to its default.
func Default() *Config {
	return &Config{
		Addr:       DefaultAddr,
		DataFile:   DefaultDataFile,
		LogFile:    DefaultLogFile,
		Storage:    DefaultStorage,
		SQLiteFile: DefaultSQLiteFile,
		LogLevel:   DefaultLogLevel,
		Theme:      DefaultTheme,
	}
}

// Load builds the configuration. An explicit path must exist; without one,
// ProjectFile is read only if it is there.
func Load(path string) (*Config, error) {
	cfg := Default()

	file := path
	if file == "" {
		if _, err := os.Stat(ProjectFile); err == nil {
			file = ProjectFile
		}
	}
	if file != "" {
		if _, err := toml.DecodeFile(file, cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", file, err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TADA_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("TADA_DATA_FILE"); v != "" {
		cfg.DataFile = v
	}
	if v := os.Getenv("TADA_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("TADA_STORAGE"); v != "" {
		cfg.Storage = v
	}
	if v := os.Getenv("TADA_SQLITE_FILE"); v != "" {
		cfg.SQLiteFile = v
	}
	if v := os.Getenv("TADA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TADA_THEME"); v != "" {
		cfg.Theme = v
	}
}

// Validate normalizes and checks the configuration.
func (c *Config) Validate() error {
	var errs []error

	c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))
	switch c.Storage {
	case StorageJSON, StorageSQLite, StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("storage %q: must be one of json, sqlite, memory", c.Storage))
	}

	if c.Addr == "" {
		errs = append(errs, errors.New("addr is empty"))
	}
	if c.Storage == StorageJSON && c.DataFile == "" {
		errs = append(errs, errors.New("data_file is empty"))
	}
	if c.Storage == StorageSQLite && c.SQLiteFile == "" {
		errs = append(errs, errors.New("sqlite_file is empty"))
	}
	if c.LogFile == "" {
		errs = append(errs, errors.New("log_file is empty"))
	}

	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}

	c.Theme = strings.ToLower(strings.TrimSpace(c.Theme))
	if !validTheme(c.Theme) {
		errs = append(errs, fmt.Errorf("theme %q: must be one of %v", c.Theme, Themes))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

func validTheme(name string) bool {
	for _, t := range Themes {
		if t == name {
			return true
		}
	}
	return false
}
