// Package config loads runtime settings from an optional YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rajshekhar-verma01/task-manage/internal/storage"
)

// Config keeps the runtime settings for the tracker daemon.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Sweep   SweepConfig   `yaml:"sweep"`
	Notify  NotifyConfig  `yaml:"notify"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type StorageConfig struct {
	// Backend is one of "memory", "file" or "sqlite".
	Backend string `yaml:"backend"`
	// Path is the data file for the file and sqlite backends.
	Path string `yaml:"path"`
}

type SweepConfig struct {
	// Interval between recurring-task activation sweeps.
	Interval time.Duration `yaml:"interval"`
}

type NotifyConfig struct {
	// Desktop selects native desktop notifications; when false,
	// notifications go to the log instead.
	Desktop bool `yaml:"desktop"`
}

// Default returns the configuration used when no file or overrides are
// present.
func Default() Config {
	return Config{
		Server:  ServerConfig{Addr: ":8484"},
		Storage: StorageConfig{Backend: storage.BackendSQLite, Path: "task-manage.db"},
		Sweep:   SweepConfig{Interval: time.Hour},
		Notify:  NotifyConfig{Desktop: true},
	}
}

// Load reads the YAML file at path when it exists, then applies environment
// overrides. An empty path skips the file entirely.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Missing file falls back to defaults.
		case err != nil:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("TASKMANAGE_ADDR")); v != "" {
		cfg.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKMANAGE_STORAGE_BACKEND")); v != "" {
		cfg.Storage.Backend = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKMANAGE_STORAGE_PATH")); v != "" {
		cfg.Storage.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKMANAGE_SWEEP_INTERVAL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Sweep.Interval = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("TASKMANAGE_DESKTOP_NOTIFY")); v != "" {
		cfg.Notify.Desktop = v == "1" || strings.EqualFold(v, "true")
	}
}

func (c Config) Validate() error {
	switch c.Storage.Backend {
	case storage.BackendMemory:
	case storage.BackendFile, storage.BackendSQLite:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return fmt.Errorf("config: storage path is required for the %s backend", c.Storage.Backend)
		}
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.Storage.Backend)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("config: server addr is required")
	}
	if c.Sweep.Interval <= 0 {
		return fmt.Errorf("config: sweep interval must be positive")
	}
	return nil
}
