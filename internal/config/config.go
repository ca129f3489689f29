// Package config loads the dashboard backend configuration from a TOML
// file, falling back to defaults when the file is missing.
package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/plantboard/backend/internal/errors"
)

// Config holds everything the backend needs at startup.
type Config struct {
	ListenAddr    string
	RemoteBaseURL string
	DataDir       string
	SyncTimeout   time.Duration
	LogLevel      string
}

const (
	defaultConfigPath = "~/.config/plantboard/config.toml"
	defaultListenAddr = "127.0.0.1:8090"
	defaultRemoteURL  = "http://localhost:4000"
	defaultDataDir    = "~/.local/share/plantboard"
	defaultLogLevel   = "info"

	defaultSyncTimeoutSecs = 30
)

// Load locates and parses the config file. A missing file is not an error;
// malformed TOML is.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		ListenAddr:    defaultListenAddr,
		RemoteBaseURL: defaultRemoteURL,
		DataDir:       mustExpand(defaultDataDir),
		SyncTimeout:   defaultSyncTimeoutSecs * time.Second,
		LogLevel:      defaultLogLevel,
	}

	file, err := os.Open(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, errors.Wrap(errors.ErrConfig, "open config", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrConfig, "read config", err)
	}

	var raw struct {
		ListenAddr      string `toml:"listen_addr"`
		RemoteBaseURL   string `toml:"remote_base_url"`
		DataDir         string `toml:"data_dir"`
		SyncTimeoutSecs int    `toml:"sync_timeout_secs"`
		LogLevel        string `toml:"log_level"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, errors.Wrap(errors.ErrConfig, "parse config", err)
	}

	if v := strings.TrimSpace(raw.ListenAddr); v != "" {
		cfg.ListenAddr = v
	}
	if v := strings.TrimSpace(raw.RemoteBaseURL); v != "" {
		cfg.RemoteBaseURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(raw.DataDir); v != "" {
		cfg.DataDir = mustExpand(v)
	}
	if raw.SyncTimeoutSecs > 0 {
		cfg.SyncTimeout = time.Duration(raw.SyncTimeoutSecs) * time.Second
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = v
	}

	return cfg, nil
}

// DatabasePath returns the sqlite file location under the data directory.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "plantboard.db")
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
		return "", errors.New(errors.ErrConfig, "path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(errors.ErrConfig, "resolve home dir", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
