// Package config loads the editor's TOML configuration. A missing file is
// not an error; every field has a default.
//
// Example:
//
//	addr = ":8080"
//	storage_key = "editorContent"
//	placeholder = "Type Here..."
//	placeholder_mode = "blur"
//	status_timeout = "3s"
//	history_limit = 1000
//
//	[store]
//	backend = "file"
//	path = "~/.local/share/blockedit"
//	flush_interval = "5s"
//
//	[log]
//	level = "info"
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Store backends.
const (
	BackendMemory    = "memory"
	BackendFile      = "file"
	BackendFirestore = "firestore"
)

const (
	defaultConfigPath      = "~/.config/blockedit/config.toml"
	defaultAddr            = ":8080"
	defaultStorageKey      = "editorContent"
	defaultPlaceholder     = "Type Here..."
	defaultPlaceholderMode = "blur"
	defaultStatusTimeout   = 3 * time.Second
	defaultHistoryLimit    = 1000
	defaultStorePath       = "~/.local/share/blockedit"
	defaultCollection      = "editor-content"
	defaultFlushInterval   = 5 * time.Second
	defaultLogLevel        = "info"
)

// Config is the resolved configuration.
type Config struct {
	Addr            string
	StorageKey      string
	Placeholder     string
	PlaceholderMode string
	StatusTimeout   time.Duration
	HistoryLimit    int
	Store           StoreConfig
	Log             LogConfig
}

// StoreConfig selects and configures the storage backend.
type StoreConfig struct {
	Backend          string
	Path             string
	FirestoreProject string
	Collection       string
	// FlushInterval is how often a cached remote store writes behind.
	FlushInterval time.Duration
}

type LogConfig struct {
	Level       string
	Development bool
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Addr:            defaultAddr,
		StorageKey:      defaultStorageKey,
		Placeholder:     defaultPlaceholder,
		PlaceholderMode: defaultPlaceholderMode,
		StatusTimeout:   defaultStatusTimeout,
		HistoryLimit:    defaultHistoryLimit,
		Store: StoreConfig{
			Backend:       BackendMemory,
			Path:          mustExpand(defaultStorePath),
			Collection:    defaultCollection,
			FlushInterval: defaultFlushInterval,
		},
		Log: LogConfig{Level: defaultLogLevel},
	}
}

type rawConfig struct {
	Addr            string `toml:"addr"`
	StorageKey      string `toml:"storage_key"`
	Placeholder     string `toml:"placeholder"`
	PlaceholderMode string `toml:"placeholder_mode"`
	StatusTimeout   string `toml:"status_timeout"`
	HistoryLimit    int    `toml:"history_limit"`
	Store           struct {
		Backend          string `toml:"backend"`
		Path             string `toml:"path"`
		FirestoreProject string `toml:"firestore_project"`
		Collection       string `toml:"collection"`
		FlushInterval    string `toml:"flush_interval"`
	} `toml:"store"`
	Log struct {
		Level       string `toml:"level"`
		Development bool   `toml:"development"`
	} `toml:"log"`
}

// Load reads the config at path, or the default location when path is
// empty, falling back to defaults when the file is missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	setString(&cfg.Addr, raw.Addr)
	setString(&cfg.StorageKey, raw.StorageKey)
	if raw.Placeholder != "" {
		cfg.Placeholder = raw.Placeholder
	}
	setString(&cfg.PlaceholderMode, raw.PlaceholderMode)
	if raw.HistoryLimit > 0 {
		cfg.HistoryLimit = raw.HistoryLimit
	}
	if err := setDuration(&cfg.StatusTimeout, raw.StatusTimeout, "status_timeout"); err != nil {
		return Config{}, err
	}

	setString(&cfg.Store.Backend, strings.ToLower(raw.Store.Backend))
	if p := strings.TrimSpace(raw.Store.Path); p != "" {
		cfg.Store.Path = mustExpand(p)
	}
	setString(&cfg.Store.FirestoreProject, raw.Store.FirestoreProject)
	setString(&cfg.Store.Collection, raw.Store.Collection)
	if err := setDuration(&cfg.Store.FlushInterval, raw.Store.FlushInterval, "store.flush_interval"); err != nil {
		return Config{}, err
	}

	setString(&cfg.Log.Level, raw.Log.Level)
	cfg.Log.Development = raw.Log.Development

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that have no sensible fallback.
func (c Config) Validate() error {
	switch c.PlaceholderMode {
	case "blur", "always":
	default:
		return fmt.Errorf("placeholder_mode %q: want blur or always", c.PlaceholderMode)
	}
	switch c.Store.Backend {
	case BackendMemory, BackendFile:
	case BackendFirestore:
		if c.Store.FirestoreProject == "" {
			return fmt.Errorf("store backend firestore needs store.firestore_project")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.StatusTimeout <= 0 {
		return fmt.Errorf("status_timeout must be positive, got %s", c.StatusTimeout)
	}
	if c.Store.FlushInterval <= 0 {
		return fmt.Errorf("store.flush_interval must be positive, got %s", c.Store.FlushInterval)
	}
	return nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v, field string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parse %s: %w", field, err)
	}
	*dst = d
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
