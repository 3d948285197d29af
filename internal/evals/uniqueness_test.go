package evals

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_AllDistinct(t *testing.T) {
	names := []string{
		"Acme Widgets",
		"Zenith Forge",
		"Northwind Traders",
		"Blue Harbor Logistics",
		"Cedar Point Robotics",
		"Ironwood Analytics",
		"Silver Lake Foundry",
		"Pinnacle Textiles",
		"Redstone Materials",
		"Harborview Shipping",
	}

	report, err := Evaluate(names)
	require.NoError(t, err)
	assert.Equal(t, 10, report.TotalOrganizations)
	assert.Equal(t, 10, report.UniqueNormalized)
	assert.Equal(t, 100.0, report.FinalScore)
	assert.True(t, report.Passed())
	assert.Empty(t, report.Samples)
}

func TestEvaluate_ExactDuplicatesFail(t *testing.T) {
	names := []string{
		"Mayo Clinic",
		"Mayo Clinic Health System",
		"Acme Widgets",
	}

	report, err := Evaluate(names)
	require.NoError(t, err)
	// Two of the three names collapse to one normalized key.
	assert.Equal(t, 2, report.UniqueNormalized)
	assert.Equal(t, 1, report.HighConfidenceDuplicates)
	assert.Less(t, report.FinalScore, PassThreshold)
	assert.False(t, report.Passed())
	require.Len(t, report.Samples, 1)
	assert.Equal(t, 1.0, report.Samples[0].Similarity)
}

func TestEvaluate_EmptyInput(t *testing.T) {
	_, err := Evaluate(nil)
	assert.Error(t, err)
}

func TestEvaluate_ScoreFloorsAtZero(t *testing.T) {
	names := []string{"Acme Inc", "Acme LLC", "Acme Corp", "ACME"}
	report, err := Evaluate(names)
	require.NoError(t, err)
	assert.Equal(t, 0.0, report.FinalScore)
}

func TestEvaluateCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.csv")
	csvData := "Organization,Region,Tier\nAcme Widgets,Texas,Confirmed\nZenith Forge,Ohio,Probable\n"
	require.NoError(t, os.WriteFile(path, []byte(csvData), 0o644))

	report, err := EvaluateCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalOrganizations)
	assert.Equal(t, 100.0, report.FinalScore)
}

func TestEvaluateCSV_CompanyColumnFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.csv")
	csvData := "Company,Notes\nAcme Widgets,\nZenith Forge,\n"
	require.NoError(t, os.WriteFile(path, []byte(csvData), 0o644))

	report, err := EvaluateCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalOrganizations)
}

func TestEvaluateCSV_MissingColumn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.csv")
	require.NoError(t, os.WriteFile(path, []byte("Name,Region\nAcme,TX\n"), 0o644))

	_, err := EvaluateCSV(path)
	assert.Error(t, err)
}
