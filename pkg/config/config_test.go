package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strandlab/motifmerge/pkg/merge"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, merge.DefaultThreshold, cfg.Merge.Threshold)
	require.Equal(t, merge.GapExp, cfg.Merge.GapPolicy)
	require.Equal(t, merge.CombineL1, cfg.Merge.Combine)
	require.Equal(t, "merged", cfg.Merge.Prefix)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[merge]
threshold = 0.35
gap_policy = "linear"
gap_base = 0.1
combine = "l2"

[cache]
ttl_hours = 6
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 0.35, cfg.Merge.Threshold)
	require.Equal(t, merge.GapLinear, cfg.Merge.GapPolicy)
	require.Equal(t, merge.CombineL2, cfg.Merge.Combine)
	require.Equal(t, 6, cfg.Cache.TTLHours)

	// Untouched keys keep their defaults.
	require.Equal(t, "merged", cfg.Merge.Prefix)
}

func TestLoad_UnknownPolicy(t *testing.T) {
	path := writeConfig(t, `
[merge]
gap_policy = "logarithmic"
`)
	_, err := Load(path)
	require.ErrorIs(t, err, merge.ErrUnknownGapPolicy)
}

func TestLoad_BadTOML(t *testing.T) {
	path := writeConfig(t, "[merge\nthreshold = ")
	_, err := Load(path)
	require.Error(t, err)
}

func TestConfig_Options(t *testing.T) {
	opts, err := Default().Options()
	require.NoError(t, err)
	require.NotNil(t, opts.Gap)
	require.NotNil(t, opts.Combine)
}

func TestValidate_NegativeTTL(t *testing.T) {
	cfg := Default()
	cfg.Cache.TTLHours = -1
	require.Error(t, cfg.Validate())
}
