package output

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/keystone-gtm/icp-discovery/internal/model"
)

var ledgerColumns = []string{
	"Organization", "Segment", "Region", "Status", "Tier", "Confidence",
	"Evidence_URLs", "Notes", "First_Added", "Last_Validated",
}

// ExportXLSX writes ledger entries to an XLSX workbook, one sheet per
// segment in the order given.
func ExportXLSX(path string, entries map[model.Segment][]model.LedgerEntry, order []model.Segment) error {
	f := xlsx.NewFile()

	for _, seg := range order {
		sheet, err := f.AddSheet(string(seg))
		if err != nil {
			return eris.Wrapf(err, "xlsx: add sheet %s", seg)
		}

		header := sheet.AddRow()
		for _, col := range ledgerColumns {
			header.AddCell().SetString(col)
		}

		for _, e := range entries[seg] {
			row := sheet.AddRow()
			row.AddCell().SetString(e.Organization)
			row.AddCell().SetString(string(e.Segment))
			row.AddCell().SetString(e.Region)
			row.AddCell().SetString(e.Status)
			row.AddCell().SetString(string(e.Tier))
			row.AddCell().SetString(strconv.Itoa(e.Score))
			row.AddCell().SetString(e.EvidenceURL)
			row.AddCell().SetString(e.Notes)
			row.AddCell().SetString(e.FirstAdded.UTC().Format("2006-01-02"))
			row.AddCell().SetString(e.LastValidated.UTC().Format("2006-01-02"))
		}
	}

	return eris.Wrapf(f.Save(path), "xlsx: save %s", path)
}
