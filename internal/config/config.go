// Package config loads edugen settings from defaults, an optional YAML
// file, an optional .env file and EDUGEN_* environment variables, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	API        APIConfig        `yaml:"api"`
	Assessment AssessmentConfig `yaml:"assessment"`
	Cache      CacheConfig      `yaml:"cache"`
	Log        LogConfig        `yaml:"log"`
	Store      StoreConfig      `yaml:"store"`
}

// APIConfig points at the tutoring backend.
type APIConfig struct {
	BaseURL string        `yaml:"base_url" validate:"required,url"`
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
	Retry   RetryConfig   `yaml:"retry"`
}

// RetryConfig configures retries of idempotent reads.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" validate:"min=1,max=10"`
	InitialWait time.Duration `yaml:"initial_wait" validate:"gte=0"`
	MaxWait     time.Duration `yaml:"max_wait" validate:"gtefield=InitialWait"`
	Multiplier  float64       `yaml:"multiplier" validate:"gte=1"`
}

// AssessmentConfig holds session rules.
type AssessmentConfig struct {
	// TimeLimit is the countdown for one assessment. Default: 20m.
	TimeLimit time.Duration `yaml:"time_limit" validate:"gte=1s"`
}

// CacheConfig selects the result/summary cache. An empty RedisURL uses an
// in-process cache.
type CacheConfig struct {
	RedisURL   string        `yaml:"redis_url" validate:"omitempty,url"`
	Prefix     string        `yaml:"prefix" validate:"required"`
	ResultTTL  time.Duration `yaml:"result_ttl" validate:"gt=0"`
	SummaryTTL time.Duration `yaml:"summary_ttl" validate:"gt=0"`
}

// LogConfig configures the file logger.
type LogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level" validate:"oneof=debug info warn error"`
	Mode    string `yaml:"mode" validate:"oneof=dev prod"`
	File    string `yaml:"file"`
}

// StoreConfig locates the local database.
type StoreConfig struct {
	// Path of the SQLite file. Empty resolves EDUGEN_DB or the XDG default.
	Path string `yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000/api",
			Timeout: 30 * time.Second,
			Retry: RetryConfig{
				MaxAttempts: 3,
				InitialWait: 500 * time.Millisecond,
				MaxWait:     5 * time.Second,
				Multiplier:  2.0,
			},
		},
		Assessment: AssessmentConfig{
			TimeLimit: 20 * time.Minute,
		},
		Cache: CacheConfig{
			Prefix:     "edugen",
			ResultTTL:  24 * time.Hour,
			SummaryTTL: 5 * time.Minute,
		},
		Log: LogConfig{
			Enabled: true,
			Level:   "info",
			Mode:    "dev",
		},
	}
}

// Load builds the configuration. path names a YAML file; when empty the
// default location is tried and silently skipped if absent. A .env file in
// the working directory is loaded if present and never overrides variables
// already set in the environment.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	explicit := path != ""
	if !explicit {
		if p := os.Getenv("EDUGEN_CONFIG"); p != "" {
			path, explicit = p, true
		} else if p, err := DefaultPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return cfg, err
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if cfg.Log.Enabled && cfg.Log.File == "" {
		if p, err := DefaultLogPath(); err == nil {
			cfg.Log.File = p
		}
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")

	return cfg, cfg.Validate()
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays EDUGEN_* variables.
func applyEnv(cfg *Config) error {
	if v := os.Getenv("EDUGEN_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if err := envDuration("EDUGEN_API_TIMEOUT", &cfg.API.Timeout); err != nil {
		return err
	}
	if v := os.Getenv("EDUGEN_API_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("EDUGEN_API_RETRIES: %w", err)
		}
		cfg.API.Retry.MaxAttempts = n
	}
	if err := envDuration("EDUGEN_TIME_LIMIT", &cfg.Assessment.TimeLimit); err != nil {
		return err
	}
	if v := os.Getenv("EDUGEN_REDIS_URL"); v != "" {
		cfg.Cache.RedisURL = v
	}
	if v := os.Getenv("EDUGEN_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("EDUGEN_LOG_MODE"); v != "" {
		cfg.Log.Mode = strings.ToLower(v)
	}
	if v := os.Getenv("EDUGEN_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("EDUGEN_LOG"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("EDUGEN_LOG: %w", err)
		}
		cfg.Log.Enabled = on
	}
	if v := os.Getenv("EDUGEN_DB"); v != "" {
		cfg.Store.Path = v
	}
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every field and reports the first problems by YAML key.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		key := fe.Namespace()
		if i := strings.IndexByte(key, '.'); i >= 0 {
			key = key[i+1:]
		}
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", key, fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
}

// DefaultPath returns $XDG_CONFIG_HOME/edugen/config.yaml.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "edugen", "config.yaml"), nil
}

// DefaultLogPath returns $XDG_STATE_HOME/edugen/edugen.log.
func DefaultLogPath() (string, error) {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "edugen", "edugen.log"), nil
}
