package output

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keystone-gtm/icp-discovery/internal/model"
)

func sampleRows() map[model.Segment][]model.OutputRow {
	return map[model.Segment][]model.OutputRow{
		model.SegmentHealthcare: {
			{
				Organization: "Riverbend Health",
				Segment:      model.SegmentHealthcare,
				Region:       "Midwest",
				Tier:         model.TierOne,
				Score:        95,
				EvidenceURL:  "https://example.org/riverbend",
				Extra: map[string]string{
					"EHR_Vendor":  "Epic",
					"GoLive_Date": "June 1, 2026",
				},
			},
		},
		model.SegmentCorporate: {
			{
				Organization: "Acme Widgets",
				Segment:      model.SegmentCorporate,
				Region:       "Texas",
				Tier:         model.TierConfirmed,
				Score:        100,
				EvidenceURL:  "https://academy.acme.com",
				Notes:        "missing=size_requirement",
				Extra:        map[string]string{"Academy_Name": "Acme Academy"},
			},
		},
	}
}

func TestWriter_WriteRun(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "")

	runDir, err := w.WriteRun("run_1_abc", sampleRows())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "run_1_abc"), runDir)

	for _, sub := range []string{"run_1_abc", "latest"} {
		for _, name := range []string{"healthcare.csv", "corporate.csv", "summary.txt"} {
			_, err := os.Stat(filepath.Join(dir, sub, name))
			assert.NoError(t, err, "%s/%s should exist", sub, name)
		}
	}

	f, err := os.Open(filepath.Join(runDir, "healthcare.csv"))
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, defaultHeaders[model.SegmentHealthcare], records[0])

	header := records[0]
	row := records[1]
	byCol := map[string]string{}
	for i, h := range header {
		byCol[h] = row[i]
	}
	assert.Equal(t, "Riverbend Health", byCol["Organization"])
	assert.Equal(t, "Epic", byCol["EHR_Vendor"])
	assert.Equal(t, "95", byCol["Confidence"])
	assert.Equal(t, "Tier 1", byCol["Tier"])
}

func TestWriter_SummaryContents(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "")

	runDir, err := w.WriteRun("run_2_def", sampleRows())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(runDir, "summary.txt"))
	require.NoError(t, err)
	summary := string(data)
	assert.Contains(t, summary, "run: run_2_def")
	assert.Contains(t, summary, "healthcare: 1 rows")
	assert.Contains(t, summary, "total: 2")
}

func TestWriter_SchemaFileOverridesHeaders(t *testing.T) {
	schemaDir := t.TempDir()
	custom := "Organization,Tier,Confidence\n"
	require.NoError(t, os.WriteFile(
		filepath.Join(schemaDir, "corporate_headers.txt"), []byte(custom), 0o644))

	w := NewWriter(t.TempDir(), schemaDir)
	assert.Equal(t, []string{"Organization", "Tier", "Confidence"}, w.Headers(model.SegmentCorporate))
	// Missing schema file falls back to defaults.
	assert.Equal(t, defaultHeaders[model.SegmentProviders], w.Headers(model.SegmentProviders))
}

func TestReadRows_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corporate.csv")
	rows := sampleRows()[model.SegmentCorporate]
	headers := defaultHeaders[model.SegmentCorporate]
	require.NoError(t, WriteCSV(path, headers, rows))

	got, err := ReadRows(path, model.SegmentCorporate)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Acme Widgets", got[0].Organization)
	assert.Equal(t, model.TierConfirmed, got[0].Tier)
	assert.Equal(t, 100, got[0].Score)
	assert.Equal(t, "https://academy.acme.com", got[0].EvidenceURL)
	assert.Equal(t, "Acme Academy", got[0].Extra["Academy_Name"])
}

func TestBuildRecord_UnknownExtraIgnored(t *testing.T) {
	row := model.OutputRow{Organization: "Acme", Extra: map[string]string{"Nonexistent": "x"}}
	record := buildRecord([]string{"Organization", "Notes"}, row)
	assert.Equal(t, []string{"Acme", ""}, record)
}

func TestReadHeaderFile_TrimsFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "headers.txt")
	require.NoError(t, os.WriteFile(path, []byte(" A , B ,\nC "), 0o644))

	headers, err := readHeaderFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, headers)
}
