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

// Config holds inkwell's runtime settings.
type Config struct {
	APIURL          string
	RefreshInterval time.Duration // silent refresh of the visible list; zero disables it
	CountsInterval  time.Duration // feed unread counts poll
	RequestTimeout  time.Duration
	LogFile         string
	HistoryDB       string
}

const (
	defaultConfigPath      = "~/.config/inkwell/config.toml"
	defaultAPIURL          = "http://127.0.0.1:8750"
	defaultLogFile         = "~/.local/state/inkwell/inkwell.log"
	defaultHistoryDB       = "~/.local/share/inkwell/history.db"
	defaultRefreshInterval = 60 * time.Second
	defaultCountsInterval  = 30 * time.Second
	defaultRequestTimeout  = 10 * time.Second
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:          defaultAPIURL,
		RefreshInterval: defaultRefreshInterval,
		CountsInterval:  defaultCountsInterval,
		RequestTimeout:  defaultRequestTimeout,
		LogFile:         mustExpand(defaultLogFile),
		HistoryDB:       mustExpand(defaultHistoryDB),
	}
}

// Load locates and parses the config, falling back to defaults when missing.
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

	var raw struct {
		APIURL          string `toml:"api_url"`
		RefreshInterval *int   `toml:"refresh_interval"`
		CountsInterval  int    `toml:"counts_interval"`
		RequestTimeout  int    `toml:"request_timeout"`
		LogFile         string `toml:"log_file"`
		HistoryDB       string `toml:"history_db"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if raw.RefreshInterval != nil {
		// An explicit zero turns silent refresh off.
		if *raw.RefreshInterval < 0 {
			return Config{}, fmt.Errorf("parse config: refresh_interval must not be negative")
		}
		cfg.RefreshInterval = time.Duration(*raw.RefreshInterval) * time.Second
	}
	if raw.CountsInterval > 0 {
		cfg.CountsInterval = time.Duration(raw.CountsInterval) * time.Second
	}
	if raw.RequestTimeout > 0 {
		cfg.RequestTimeout = time.Duration(raw.RequestTimeout) * time.Second
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.HistoryDB); v != "" {
		cfg.HistoryDB = mustExpand(v)
	}

	return cfg, nil
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
