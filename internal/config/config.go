// Package config loads server settings from defaults, an optional YAML file
// and PAPERDESK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "PAPERDESK_"
	envFileVar = "PAPERDESK_CONFIG"

	BackendDisk = "disk"
	BackendGCS  = "gcs"
)

type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr   string `koanf:"addr"`
	DBPath string `koanf:"db_path"`

	// StorageBackend is "disk" or "gcs".
	StorageBackend string `koanf:"storage_backend"`
	UploadDir      string `koanf:"upload_dir"`
	GCSBucket      string `koanf:"gcs_bucket"`

	// RefTTL bounds how long an unrefreshed download link stays valid.
	RefTTL time.Duration `koanf:"ref_ttl"`
	// MaxUploadMB caps the request body of an upload.
	MaxUploadMB int64 `koanf:"max_upload_mb"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:           ":8080",
		DBPath:         "paperdesk.db",
		StorageBackend: BackendDisk,
		UploadDir:      "uploads",
		RefTTL:         30 * time.Minute,
		MaxUploadMB:    25,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// Load layers, lowest precedence first: defaults, .env, the YAML file named
// by PAPERDESK_CONFIG, then PAPERDESK_* variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("error loading .env file", "err", err)
	}

	k := koanf.New(".")
	if path := os.Getenv(envFileVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// PAPERDESK_MAX_UPLOAD_MB -> max_upload_mb
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path must not be empty"))
	}
	switch c.StorageBackend {
	case BackendDisk:
		if c.UploadDir == "" {
			errs = append(errs, errors.New("upload_dir must not be empty"))
		}
	case BackendGCS:
		if c.GCSBucket == "" {
			errs = append(errs, errors.New("gcs_bucket is required for the gcs backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage_backend %q", c.StorageBackend))
	}
	if c.RefTTL < time.Second {
		errs = append(errs, errors.New("ref_ttl must be at least 1s"))
	}
	if c.MaxUploadMB <= 0 {
		errs = append(errs, errors.New("max_upload_mb must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Logger builds the process logger from LogLevel and LogFormat.
func (c Config) Logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
