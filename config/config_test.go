package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if cfg.Store.Path != filepath.Join(home, ".local/share/blockedit") {
		t.Fatalf("Store.Path = %q", cfg.Store.Path)
	}
	if cfg.StatusTimeout != 3*time.Second || cfg.Placeholder != "Type Here..." {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_ParsesConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
addr = "  127.0.0.1:9000  "
storage_key = "notes"
placeholder = "Start writing"
placeholder_mode = "always"
status_timeout = "500ms"
history_limit = 50

[store]
backend = "File"
path = "~/data/editor"
flush_interval = "1m"

[log]
level = "debug"
development = true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := Default()
	want.Addr = "127.0.0.1:9000"
	want.StorageKey = "notes"
	want.Placeholder = "Start writing"
	want.PlaceholderMode = "always"
	want.StatusTimeout = 500 * time.Millisecond
	want.HistoryLimit = 50
	want.Store.Backend = BackendFile
	want.Store.Path = filepath.Join(home, "data/editor")
	want.Store.FlushInterval = time.Minute
	want.Log = LogConfig{Level: "debug", Development: true}

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := writeConfig(t, `
addr = "   "
storage_key = ""
[store]
backend = ""
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Addr != defaultAddr || cfg.StorageKey != defaultStorageKey || cfg.Store.Backend != BackendMemory {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad toml", `addr = `, "parse config"},
		{"bad duration", `status_timeout = "soon"`, "status_timeout"},
		{"zero duration", `status_timeout = "0s"`, "status_timeout"},
		{"bad mode", `placeholder_mode = "hover"`, "placeholder_mode"},
		{"bad backend", "[store]\nbackend = \"redis\"", "unknown store backend"},
		{"firestore without project", "[store]\nbackend = \"firestore\"", "firestore_project"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/x/y")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, "x/y") {
		t.Fatalf("expandPath = %q", got)
	}
	if _, err := expandPath("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
