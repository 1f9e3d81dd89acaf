package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("api_url = \"http://reader.local:9000\"\ncounts_interval = 45\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(Options{ConfigPath: path})
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.APIURL != "http://reader.local:9000" || cfg.CountsInterval != 45*time.Second {
		t.Fatalf("file values not applied: %+v", cfg)
	}

	cfg, err = LoadConfig(Options{ConfigPath: path, APIURL: "http://other:1", PollEvery: 5})
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.APIURL != "http://other:1" {
		t.Errorf("APIURL = %q, want flag override", cfg.APIURL)
	}
	if cfg.CountsInterval != 5*time.Second {
		t.Errorf("CountsInterval = %v, want 5s", cfg.CountsInterval)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("api_url = ["), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(Options{ConfigPath: path}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestOpenLoggerCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "inkwell.log")
	logger, closeLog := openLogger(path)
	logger.Info("hello", "view", "all")
	closeLog()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("log file is empty")
	}
}

func TestOpenLoggerWithoutPath(t *testing.T) {
	logger, closeLog := openLogger("")
	defer closeLog()
	logger.Info("dropped")
}
