package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "github.com/plantboard/backend/internal/errors"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ListenAddr != defaultListenAddr {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, defaultListenAddr)
	}
	if cfg.RemoteBaseURL != defaultRemoteURL {
		t.Errorf("RemoteBaseURL = %q, want %q", cfg.RemoteBaseURL, defaultRemoteURL)
	}
	if cfg.SyncTimeout != defaultSyncTimeoutSecs*time.Second {
		t.Errorf("SyncTimeout = %v", cfg.SyncTimeout)
	}
	if !strings.HasPrefix(cfg.DataDir, home) {
		t.Errorf("DataDir = %q, want it under HOME %q", cfg.DataDir, home)
	}
}

func TestLoadParsesAndTrims(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
listen_addr = "  127.0.0.1:9001  "
remote_base_url = "https://mes.example.com/"
data_dir = "~/plantboard-data"
sync_timeout_secs = 5
log_level = "debug"
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:9001" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.RemoteBaseURL != "https://mes.example.com" {
		t.Errorf("RemoteBaseURL = %q, trailing slash should be stripped", cfg.RemoteBaseURL)
	}
	if cfg.DataDir != filepath.Join(home, "plantboard-data") {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.SyncTimeout != 5*time.Second {
		t.Errorf("SyncTimeout = %v, want 5s", cfg.SyncTimeout)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadEmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
listen_addr = "   "
remote_base_url = ""
sync_timeout_secs = 0
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ListenAddr != defaultListenAddr {
		t.Errorf("ListenAddr = %q, want default", cfg.ListenAddr)
	}
	if cfg.RemoteBaseURL != defaultRemoteURL {
		t.Errorf("RemoteBaseURL = %q, want default", cfg.RemoteBaseURL)
	}
	if cfg.SyncTimeout != defaultSyncTimeoutSecs*time.Second {
		t.Errorf("SyncTimeout = %v, want default", cfg.SyncTimeout)
	}
}

func TestLoadInvalidTOMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`listen_addr = [`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := Load(path)
	if !apperrors.Is(err, apperrors.ErrConfig) {
		t.Fatalf("Load error = %v, want CONFIG_ERROR", err)
	}
}

func TestDatabasePath(t *testing.T) {
	cfg := Config{DataDir: "/tmp/pb"}
	if got := cfg.DatabasePath(); got != filepath.Join("/tmp/pb", "plantboard.db") {
		t.Errorf("DatabasePath = %q", got)
	}
}
