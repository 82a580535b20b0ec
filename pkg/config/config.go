// Package config loads engine defaults from an optional TOML file.
//
// Per-invocation settings come from CLI flags; the config file supplies the
// durable defaults a user wants on every run (search cap, worker count,
// predicate parameters, cache location). Flags always win over file values.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/stacktools/stableset/pkg/errors"
	"github.com/stacktools/stableset/pkg/stability"
)

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = "stableset.toml"

// Config holds engine defaults.
type Config struct {
	// Cap is the maximum universe size for an unforced exhaustive search.
	Cap int `toml:"cap"`

	// Workers is the search worker count. Zero lets the engine decide.
	Workers int `toml:"workers"`

	Predicates Predicates `toml:"predicates"`
	Cache      CacheConf  `toml:"cache"`
}

// Predicates holds the numeric parameters of the parameterized variants.
type Predicates struct {
	// W is the w-Stable margin threshold.
	W int `toml:"w"`

	// M is the m-Stable tolerance for undefeated outside alternatives.
	M int `toml:"m"`
}

// CacheConf configures the local result cache.
type CacheConf struct {
	// Dir overrides the cache directory. Empty uses the user cache dir.
	Dir string `toml:"dir"`

	// Disabled turns caching off entirely.
	Disabled bool `toml:"disabled"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Cap: stability.DefaultCap,
		Predicates: Predicates{
			W: 1,
			M: 0,
		},
	}
}

// Load reads a TOML config file, layering it over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return cfg, errors.New(errors.ErrCodeFileNotFound, "config file %s does not exist", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	return cfg, nil
}

// LoadOptional reads DefaultFileName from the working directory if present,
// and returns the defaults when it is not.
func LoadOptional() (Config, error) {
	path := filepath.Join(".", DefaultFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}
