package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_FileNotFound(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}

	def := DefaultConfig()
	if *cfg != *def {
		t.Errorf("config = %+v, want %+v", cfg, def)
	}
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := []byte(`threads: 3
iterations: 5000
job_id: 2
issuer: ExampleCo
`)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Threads != 3 {
		t.Errorf("threads = %d, want 3", cfg.Threads)
	}
	if cfg.Iterations != 5000 {
		t.Errorf("iterations = %d, want 5000", cfg.Iterations)
	}
	if cfg.JobID != 2 {
		t.Errorf("job_id = %d, want 2", cfg.JobID)
	}
	if cfg.Issuer != "ExampleCo" {
		t.Errorf("issuer = %q, want ExampleCo", cfg.Issuer)
	}
	// unset keys keep defaults
	if cfg.Period != 30 || cfg.LogLevel != "info" {
		t.Errorf("defaults not kept: %+v", cfg)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("threads: [not a number"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Threads = 7
	cfg.Account = "alice"
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvThreads, "12")
	t.Setenv(EnvIterations, "250")
	t.Setenv(EnvJobID, "4")
	t.Setenv(EnvPeriod, "60")
	t.Setenv(EnvAlgorithm, "SHA256")
	t.Setenv(EnvLogLevel, "debug")

	cfg := DefaultConfig()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	want := Config{Threads: 12, Iterations: 250, JobID: 4, Period: 60, Algorithm: "SHA256", LogLevel: "debug"}
	if *cfg != want {
		t.Errorf("config = %+v, want %+v", cfg, want)
	}
}

func TestApplyEnv_Invalid(t *testing.T) {
	t.Setenv(EnvThreads, "many")

	if err := ApplyEnv(DefaultConfig()); err == nil {
		t.Fatal("expected error for non-numeric threads")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte(EnvIterations+"=999\n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	t.Setenv(EnvIterations, "")
	os.Unsetenv(EnvIterations)

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv(EnvIterations); got != "999" {
		t.Errorf("%s = %q, want 999", EnvIterations, got)
	}

	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("expected missing file to be ignored, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}

	cfg.Threads = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero threads")
	}

	cfg = DefaultConfig()
	cfg.Iterations = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero iterations")
	}
}

func TestConfigPath_EnvOverride(t *testing.T) {
	t.Setenv(EnvConfig, "/tmp/custom.yaml")

	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath() error = %v", err)
	}
	if path != "/tmp/custom.yaml" {
		t.Errorf("path = %q, want /tmp/custom.yaml", path)
	}
}
