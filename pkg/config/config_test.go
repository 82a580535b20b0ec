package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stacktools/stableset/pkg/errors"
	"github.com/stacktools/stableset/pkg/stability"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Cap != stability.DefaultCap {
		t.Errorf("Cap = %d, want %d", cfg.Cap, stability.DefaultCap)
	}
	if cfg.Predicates.W != 1 {
		t.Errorf("Predicates.W = %d, want 1", cfg.Predicates.W)
	}
	if cfg.Cache.Disabled {
		t.Error("cache should be enabled by default")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stableset.toml")
	content := `
cap = 12
workers = 4

[predicates]
w = 3
m = 1

[cache]
dir = "/tmp/sscache"
disabled = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Cap != 12 || cfg.Workers != 4 {
		t.Errorf("Cap, Workers = %d, %d; want 12, 4", cfg.Cap, cfg.Workers)
	}
	if cfg.Predicates.W != 3 || cfg.Predicates.M != 1 {
		t.Errorf("Predicates = %+v", cfg.Predicates)
	}
	if cfg.Cache.Dir != "/tmp/sscache" || !cfg.Cache.Disabled {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stableset.toml")
	if err := os.WriteFile(path, []byte("workers = 2\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers = %d, want 2", cfg.Workers)
	}
	if cfg.Cap != stability.DefaultCap {
		t.Errorf("Cap = %d, unset keys should keep defaults", cfg.Cap)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatal("Load() succeeded on a missing file")
	}
	if got := errors.GetCode(err); got != errors.ErrCodeFileNotFound {
		t.Errorf("error code = %q, want %q", got, errors.ErrCodeFileNotFound)
	}
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stableset.toml")
	if err := os.WriteFile(path, []byte("cap = ["), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load() succeeded on invalid TOML")
	}
}
