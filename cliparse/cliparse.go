// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults
const (
	DefaultPort              = 3318
	DefaultDatabaseType      = "sqlite"
	DefaultDatabaseURL       = "file:highlightly.db"
	DefaultAPIURL            = "http://localhost:3000"
	DefaultSyncInterval      = 5 * time.Minute
	DefaultUserCheckInterval = 10 * time.Minute
	DefaultInitialDelay      = 8 * time.Second
	DefaultProbeInterval     = 30 * time.Second
	DefaultHTTPTimeout       = 30 * time.Second
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	APIURL       string
	BridgeSalt   string
	LogLevel     string
	LogFormat    string

	SyncInterval      time.Duration
	UserCheckInterval time.Duration
	InitialDelay      time.Duration
	ProbeInterval     time.Duration
	HTTPTimeout       time.Duration

	ConfigFile string
	EnvFile    string
}

// fileConfig is the YAML config file layout.
type fileConfig struct {
	Port     int `yaml:"port"`
	Database struct {
		URL  string `yaml:"url"`
		Type string `yaml:"type"`
	} `yaml:"database"`
	APIURL     string `yaml:"api_url"`
	BridgeSalt string `yaml:"bridge_salt"`
	Log        struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Sync struct {
		Interval          time.Duration `yaml:"interval"`
		UserCheckInterval time.Duration `yaml:"user_check_interval"`
		InitialDelay      time.Duration `yaml:"initial_delay"`
	} `yaml:"sync"`
	ProbeInterval time.Duration `yaml:"probe_interval"`
	HTTPTimeout   time.Duration `yaml:"http_timeout"`
}

// ParseFlags builds the config. Precedence: flags, environment, .env file,
// YAML config file, defaults.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	flags := flag.NewFlagSet("highlightly", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	flags.IntVar(&cfg.Port, "p", 0, "Bridge port")
	flags.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	flags.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	flags.StringVar(&cfg.APIURL, "api-url", "", "Remote API base URL")

	// Secrets (prefer env variables, but allow CLI for dev)
	flags.StringVar(&cfg.BridgeSalt, "bridge-salt", "", "Bridge key salt (prefer env)")

	flags.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&cfg.LogFormat, "log-format", "", "Log format (auto, text, json)")

	flags.DurationVar(&cfg.SyncInterval, "sync-interval", 0, "Word sync interval")
	flags.DurationVar(&cfg.UserCheckInterval, "user-check-interval", 0, "User check interval")
	flags.DurationVar(&cfg.InitialDelay, "initial-delay", 0, "Delay before the first checks")
	flags.DurationVar(&cfg.ProbeInterval, "probe-interval", 0, "Network probe interval")
	flags.DurationVar(&cfg.HTTPTimeout, "http-timeout", 0, "Remote API request timeout")

	flags.StringVar(&cfg.ConfigFile, "c", "", "YAML config file")
	flags.StringVar(&cfg.EnvFile, "env-file", ".env", "dotenv file")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	// .env never overrides variables already set
	if cfg.EnvFile != "" {
		if err := godotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", cfg.EnvFile, err)
		}
	}

	if cfg.ConfigFile == "" {
		cfg.ConfigFile = os.Getenv("HIGHLIGHTLY_CONFIG")
	}
	var file fileConfig
	if cfg.ConfigFile != "" {
		data, err := os.ReadFile(cfg.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Fall back to environment variables, then the config file
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else if file.Port != 0 {
			cfg.Port = file.Port
		} else {
			cfg.Port = DefaultPort
		}
	}

	cfg.DatabaseURL = pick(cfg.DatabaseURL, "DATABASE_URL", file.Database.URL, DefaultDatabaseURL)
	cfg.DatabaseType = pick(cfg.DatabaseType, "DATABASE_TYPE", file.Database.Type, DefaultDatabaseType)
	cfg.APIURL = pick(cfg.APIURL, "API_URL", file.APIURL, DefaultAPIURL)
	cfg.LogLevel = pick(cfg.LogLevel, "LOG_LEVEL", file.Log.Level, "info")
	cfg.LogFormat = pick(cfg.LogFormat, "LOG_FORMAT", file.Log.Format, "auto")

	var err error
	if cfg.SyncInterval, err = pickDuration(cfg.SyncInterval, "SYNC_INTERVAL", file.Sync.Interval, DefaultSyncInterval); err != nil {
		return Config{}, err
	}
	if cfg.UserCheckInterval, err = pickDuration(cfg.UserCheckInterval, "USER_CHECK_INTERVAL", file.Sync.UserCheckInterval, DefaultUserCheckInterval); err != nil {
		return Config{}, err
	}
	if cfg.InitialDelay, err = pickDuration(cfg.InitialDelay, "INITIAL_DELAY", file.Sync.InitialDelay, DefaultInitialDelay); err != nil {
		return Config{}, err
	}
	if cfg.ProbeInterval, err = pickDuration(cfg.ProbeInterval, "PROBE_INTERVAL", file.ProbeInterval, DefaultProbeInterval); err != nil {
		return Config{}, err
	}
	if cfg.HTTPTimeout, err = pickDuration(cfg.HTTPTimeout, "HTTP_TIMEOUT", file.HTTPTimeout, DefaultHTTPTimeout); err != nil {
		return Config{}, err
	}

	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported DATABASE_TYPE %q", cfg.DatabaseType)
	}
	switch cfg.LogFormat {
	case "auto", "text", "json":
	default:
		return Config{}, fmt.Errorf("unsupported LOG_FORMAT %q", cfg.LogFormat)
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}

	// Secrets - MUST be provided
	cfg.BridgeSalt = pick(cfg.BridgeSalt, "BRIDGE_KEY_SALT", file.BridgeSalt, "")
	if cfg.BridgeSalt == "" {
		return Config{}, errors.New("BRIDGE_KEY_SALT required")
	}

	return cfg, nil
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
	return level, nil
}

func pick(flagVal, env, fileVal, def string) string {
	if flagVal != "" {
		return flagVal
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	if fileVal != "" {
		return fileVal
	}
	return def
}

func pickDuration(flagVal time.Duration, env string, fileVal, def time.Duration) (time.Duration, error) {
	if flagVal != 0 {
		return flagVal, nil
	}
	if v := os.Getenv(env); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s env variable: %w", env, err)
		}
		return d, nil
	}
	if fileVal != 0 {
		return fileVal, nil
	}
	return def, nil
}
