// Package config manages totp-recover CLI configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables overriding file values.
const (
	EnvConfig     = "TOTP_RECOVER_CONFIG"
	EnvThreads    = "TOTP_RECOVER_THREADS"
	EnvIterations = "TOTP_RECOVER_ITERATIONS"
	EnvJobID      = "TOTP_RECOVER_JOB_ID"
	EnvAlgorithm  = "TOTP_RECOVER_ALGORITHM"
	EnvPeriod     = "TOTP_RECOVER_PERIOD"
	EnvLogLevel   = "TOTP_RECOVER_LOG_LEVEL"
)

// DefaultIterations is the per-thread candidate budget of one attempt.
const DefaultIterations = 100000

// Config holds the CLI configuration.
type Config struct {
	Threads    int    `yaml:"threads"`
	Iterations uint64 `yaml:"iterations"`
	JobID      uint64 `yaml:"job_id"`
	Algorithm  string `yaml:"algorithm"`
	Period     uint   `yaml:"period"`
	LogLevel   string `yaml:"log_level"`
	Issuer     string `yaml:"issuer,omitempty"`
	Account    string `yaml:"account,omitempty"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Threads:    runtime.NumCPU(),
		Iterations: DefaultIterations,
		Algorithm:  "SHA1",
		Period:     30,
		LogLevel:   "info",
	}
}

// Load reads a config file from the given path. If the file does not exist,
// it returns the default config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Save writes a config to the given path, creating parent directories as needed.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// LoadDotEnv loads KEY=value pairs from an env file into the process
// environment without overriding variables that are already set.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg fields with TOTP_RECOVER_* environment variables.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv(EnvThreads); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvThreads, err)
		}
		cfg.Threads = n
	}
	if v := os.Getenv(EnvIterations); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvIterations, err)
		}
		cfg.Iterations = n
	}
	if v := os.Getenv(EnvJobID); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvJobID, err)
		}
		cfg.JobID = n
	}
	if v := os.Getenv(EnvPeriod); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPeriod, err)
		}
		cfg.Period = uint(n)
	}
	if v := os.Getenv(EnvAlgorithm); v != "" {
		cfg.Algorithm = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

// Validate checks the fields the search cannot default.
func (c *Config) Validate() error {
	if c.Threads <= 0 {
		return fmt.Errorf("threads must be positive, got %d", c.Threads)
	}
	if c.Iterations == 0 {
		return errors.New("iterations must be positive")
	}
	return nil
}

// ConfigPath returns the config file path, respecting TOTP_RECOVER_CONFIG.
func ConfigPath() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine config directory: %w", err)
	}
	return filepath.Join(dir, "totp-recover", "config.yaml"), nil
}
