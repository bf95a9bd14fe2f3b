// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv blanks every variable ParseFlags reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "DATABASE_URL", "DATABASE_TYPE", "API_URL", "BRIDGE_KEY_SALT",
		"LOG_LEVEL", "LOG_FORMAT", "SYNC_INTERVAL", "USER_CHECK_INTERVAL",
		"INITIAL_DELAY", "PROBE_INTERVAL", "HTTP_TIMEOUT", "HIGHLIGHTLY_CONFIG",
	} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseFlags_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("BRIDGE_KEY_SALT", "salt")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != DefaultPort {
		t.Errorf("expected port %d, got %d", DefaultPort, cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" || cfg.DatabaseURL != DefaultDatabaseURL {
		t.Errorf("unexpected database defaults: %s %s", cfg.DatabaseType, cfg.DatabaseURL)
	}
	if cfg.SyncInterval != 5*time.Minute || cfg.UserCheckInterval != 10*time.Minute || cfg.InitialDelay != 8*time.Second {
		t.Errorf("unexpected interval defaults: %+v", cfg)
	}
	if cfg.LogFormat != "auto" {
		t.Errorf("expected auto log format, got %s", cfg.LogFormat)
	}
}

func TestParseFlags_EnvVars(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("BRIDGE_KEY_SALT", "test-salt")
	t.Setenv("SYNC_INTERVAL", "1m")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("expected postgres, got %s", cfg.DatabaseType)
	}
	if cfg.SyncInterval != time.Minute {
		t.Errorf("expected 1m sync interval, got %v", cfg.SyncInterval)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("API_URL", "https://env.example")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-bridge-salt", "s1", "-api-url", "https://flag.example"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.APIURL != "https://flag.example" {
		t.Errorf("CLI should override env: got %s", cfg.APIURL)
	}
}

func TestParseFlags_ConfigFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "highlightly.yaml", `
port: 4000
database:
  type: postgres
  url: postgres://file
api_url: https://file.example
bridge_salt: file-salt
log:
  level: debug
  format: json
sync:
  interval: 2m
  initial_delay: 1s
`)
	t.Setenv("API_URL", "https://env.example")

	cfg, err := ParseFlags([]string{"-c", path})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 4000 || cfg.DatabaseURL != "postgres://file" || cfg.BridgeSalt != "file-salt" {
		t.Errorf("config file values not applied: %+v", cfg)
	}
	if cfg.APIURL != "https://env.example" {
		t.Errorf("env should override config file: got %s", cfg.APIURL)
	}
	if cfg.SyncInterval != 2*time.Minute || cfg.InitialDelay != time.Second {
		t.Errorf("durations not parsed: %v %v", cfg.SyncInterval, cfg.InitialDelay)
	}
	if cfg.UserCheckInterval != DefaultUserCheckInterval {
		t.Errorf("missing file value should default: got %v", cfg.UserCheckInterval)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("expected json log format, got %s", cfg.LogFormat)
	}
}

func TestParseFlags_EnvFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, ".env", "BRIDGE_KEY_SALT=dotenv-salt\nLOG_LEVEL=warn\n")
	t.Setenv("LOG_LEVEL", "error")
	t.Cleanup(func() { os.Unsetenv("BRIDGE_KEY_SALT") })
	os.Unsetenv("BRIDGE_KEY_SALT")

	cfg, err := ParseFlags([]string{"-env-file", path})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.BridgeSalt != "dotenv-salt" {
		t.Errorf("expected salt from .env, got %q", cfg.BridgeSalt)
	}
	if cfg.LogLevel != "error" {
		t.Errorf(".env must not override env: got %s", cfg.LogLevel)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"missing salt", nil, nil},
		{"bad port", map[string]string{"PORT": "abc", "BRIDGE_KEY_SALT": "s"}, nil},
		{"bad db type", map[string]string{"BRIDGE_KEY_SALT": "s"}, []string{"-t", "mysql"}},
		{"bad duration", map[string]string{"BRIDGE_KEY_SALT": "s", "SYNC_INTERVAL": "soon"}, nil},
		{"bad log level", map[string]string{"BRIDGE_KEY_SALT": "s"}, []string{"-log-level", "chatty"}},
		{"bad log format", map[string]string{"BRIDGE_KEY_SALT": "s"}, []string{"-log-format", "xml"}},
		{"missing config file", map[string]string{"BRIDGE_KEY_SALT": "s"}, []string{"-c", "/nonexistent/highlightly.yaml"}},
		{"unknown flag", map[string]string{"BRIDGE_KEY_SALT": "s"}, []string{"-nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := ParseFlags(tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil {
			t.Errorf("ParseLevel(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
