package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"BASE_URL", "PATH", "TIMEOUT", "LOG_LEVEL", "LISTEN", "DB", "RETENTION"} {
		t.Setenv(envPrefix+k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	c, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Path != "**.php" || c.Timeout != 30*time.Second || c.LogLevel != "info" {
		t.Fatalf("unexpected defaults %+v", c)
	}
	if c.Listen != ":8080" || c.DBPath != "warnmode.db" || c.Retention != 168*time.Hour {
		t.Fatalf("unexpected serve defaults %+v", c)
	}
	if err := c.RequireBaseURL(); err == nil {
		t.Fatalf("expected missing base URL error")
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("WARNMODE_BASE_URL", "https://guard.example.com/api/")
	t.Setenv("WARNMODE_TIMEOUT", "5s")
	t.Setenv("WARNMODE_LOG_LEVEL", "debug")
	c, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.BaseURL != "https://guard.example.com/api/" || c.Timeout != 5*time.Second || c.LogLevel != "debug" {
		t.Fatalf("unexpected config %+v", c)
	}
	if err := c.RequireBaseURL(); err != nil {
		t.Fatalf("RequireBaseURL: %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("WARNMODE_BASE_URL")
	os.Unsetenv("WARNMODE_LISTEN")
	f := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(f, []byte("WARNMODE_BASE_URL=http://127.0.0.1:9000/\nWARNMODE_LISTEN=:9000\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("WARNMODE_BASE_URL")
		os.Unsetenv("WARNMODE_LISTEN")
	})
	c, err := Load(f)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.BaseURL != "http://127.0.0.1:9000/" || c.Listen != ":9000" {
		t.Fatalf("dotenv not applied: %+v", c)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		key, val string
	}{
		{"WARNMODE_TIMEOUT", "soon"},
		{"WARNMODE_TIMEOUT", "-1s"},
		{"WARNMODE_LOG_LEVEL", "loud"},
		{"WARNMODE_BASE_URL", "not a url"},
		{"WARNMODE_RETENTION", "0s"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.val, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)
			if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.val)
			}
		})
	}
}

func TestLoadAcceptsEveryLogLevel(t *testing.T) {
	for _, lvl := range []string{"trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled"} {
		t.Run(lvl, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("WARNMODE_LOG_LEVEL", lvl)
			c, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if c.LogLevel != lvl {
				t.Fatalf("LogLevel = %q, want %q", c.LogLevel, lvl)
			}
		})
	}
}
