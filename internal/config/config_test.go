package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Ledger.Driver)
	assert.Equal(t, "ledger.db", cfg.Ledger.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.InDelta(t, 0.85, cfg.Dedupe.SimilarityThreshold, 0.001)
	assert.Equal(t, 50, cfg.Pipeline.TargetCount)
	assert.Equal(t, 50, cfg.Pipeline.MaxSeeds)
	assert.Equal(t, 25, cfg.Pipeline.MaxSearches)
	assert.Equal(t, 200, cfg.Pipeline.MaxFetches)
	assert.Equal(t, 100, cfg.Pipeline.MaxEnrich)
	assert.Equal(t, 4, cfg.Pipeline.FetchConcurrency)
	assert.Equal(t, "runs", cfg.Output.Dir)
	assert.Equal(t, "docs/schemas", cfg.Output.SchemaDir)
	assert.True(t, cfg.Enrich.Enabled)
	assert.False(t, cfg.Scoring.HealthcareRelaxed)
	assert.Contains(t, cfg.Scoring.AggregatorDomains, "linkedin.com")

	for _, seg := range []string{"healthcare", "corporate", "providers"} {
		assert.NotEmpty(t, cfg.Pipeline.Queries[seg], "segment %s should have default queries", seg)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
ledger:
  driver: postgres
  database_url: postgres://localhost/icp
dedupe:
  similarity_threshold: 0.9
pipeline:
  target_count: 25
scoring:
  healthcare_relaxed: true
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Ledger.Driver)
	assert.Equal(t, "postgres://localhost/icp", cfg.Ledger.DatabaseURL)
	assert.InDelta(t, 0.9, cfg.Dedupe.SimilarityThreshold, 0.001)
	assert.Equal(t, 25, cfg.Pipeline.TargetCount)
	assert.True(t, cfg.Scoring.HealthcareRelaxed)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)

	// Untouched sections keep defaults.
	assert.Equal(t, 50, cfg.Pipeline.MaxSeeds)
	assert.Equal(t, "runs", cfg.Output.Dir)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("ledger: [not: valid"), 0o644))

	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	_, err := Load()
	assert.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	require.NoError(t, InitLogger(LogConfig{Level: "warn", Format: "json"}))

	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	assert.Error(t, err)
}
