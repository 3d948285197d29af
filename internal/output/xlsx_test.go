package output

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/keystone-gtm/icp-discovery/internal/model"
)

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.xlsx")
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	entries := map[model.Segment][]model.LedgerEntry{
		model.SegmentHealthcare: {
			{
				Organization:  "Riverbend Health",
				Segment:       model.SegmentHealthcare,
				Region:        "Midwest",
				Status:        "active",
				Tier:          model.TierOne,
				Score:         95,
				EvidenceURL:   "https://example.org",
				FirstAdded:    now,
				LastValidated: now,
			},
		},
		model.SegmentCorporate: {},
	}

	order := []model.Segment{model.SegmentHealthcare, model.SegmentCorporate}
	require.NoError(t, ExportXLSX(path, entries, order))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 2)
	assert.Equal(t, "healthcare", f.Sheets[0].Name)
	assert.Equal(t, "corporate", f.Sheets[1].Name)

	sheet := f.Sheets[0]
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "Organization", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "Riverbend Health", sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "Tier 1", sheet.Rows[1].Cells[4].String())
	assert.Equal(t, "2026-06-01", sheet.Rows[1].Cells[8].String())
}
