// Package config loads motifmerge defaults from a TOML file.
//
// The file lives at ~/.config/motifmerge/config.toml and supplies the
// merge defaults; command-line flags override anything set here. A
// missing file yields the built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/strandlab/motifmerge/pkg/merge"
)

// Config holds user-tunable defaults for the merge commands.
type Config struct {
	Merge MergeConfig `toml:"merge"`
	Cache CacheConfig `toml:"cache"`
}

// MergeConfig mirrors the merge engine knobs.
type MergeConfig struct {
	Threshold float64 `toml:"threshold"`
	GapPolicy string  `toml:"gap_policy"`
	GapBase   float64 `toml:"gap_base"`
	Combine   string  `toml:"combine"`
	Prefix    string  `toml:"prefix"`
}

// CacheConfig controls the motif-database response cache.
type CacheConfig struct {
	Dir       string `toml:"dir"`        // empty selects the default cache dir
	TTLHours  int    `toml:"ttl_hours"`  // 0 means never expire
	RedisAddr string `toml:"redis_addr"` // non-empty switches serve mode to Redis
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Merge: MergeConfig{
			Threshold: merge.DefaultThreshold,
			GapPolicy: merge.DefaultGapPolicy,
			GapBase:   merge.DefaultGapBase,
			Combine:   merge.DefaultCombinePolicy,
			Prefix:    merge.DefaultPrefix,
		},
		Cache: CacheConfig{TTLHours: 24},
	}
}

// DefaultPath returns the expected config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "motifmerge", "config.toml"), nil
}

// Load reads the config at path, layering it over the defaults. An
// empty path selects [DefaultPath]; a missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the policy names against the merge engine.
func (c Config) Validate() error {
	if _, err := merge.NewOptions(c.Merge.GapPolicy, c.Merge.GapBase, c.Merge.Combine); err != nil {
		return err
	}
	if c.Cache.TTLHours < 0 {
		return fmt.Errorf("config: cache ttl_hours must not be negative, got %d", c.Cache.TTLHours)
	}
	return nil
}

// Options builds merge options from the configured policies.
func (c Config) Options() (merge.Options, error) {
	return merge.NewOptions(c.Merge.GapPolicy, c.Merge.GapBase, c.Merge.Combine)
}
