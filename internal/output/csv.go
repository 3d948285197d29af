// Package output writes run artifacts: per-segment CSVs, a run summary,
// and a latest/ mirror of the most recent run. Column order comes from
// an on-disk schema file when one exists, otherwise from built-in
// per-segment defaults.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/keystone-gtm/icp-discovery/internal/model"
)

// Canonical columns handled directly; everything else maps through
// OutputRow.Extra keyed by header name.
const (
	colOrganization = "Organization"
	colSegment      = "Segment"
	colRegion       = "Region"
	colTier         = "Tier"
	colConfidence   = "Confidence"
	colScore        = "Score"
	colEvidenceURLs = "Evidence_URLs"
	colNotes        = "Notes"
)

var defaultHeaders = map[model.Segment][]string{
	model.SegmentHealthcare: {
		colOrganization, colRegion, "Type", "Facilities", "EHR_Vendor",
		"EHR_Lifecycle_Phase", "GoLive_Date", "Training_Model", "VILT_Evidence",
		"Web_Conferencing", "LMS", colTier, colConfidence, colEvidenceURLs, colNotes,
	},
	model.SegmentCorporate: {
		colOrganization, colRegion, "Academy_Name", "Academy_URL", "Employee_Range",
		colTier, colConfidence, colEvidenceURLs, colNotes,
	},
	model.SegmentProviders: {
		colOrganization, colRegion, "VILT_Sessions_90d", "Schedule_URL",
		"Accreditations", "Instructor_Bench", colTier, colConfidence,
		colEvidenceURLs, colNotes,
	},
}

// Writer produces run directories under a base output dir.
type Writer struct {
	baseDir   string
	schemaDir string
}

// NewWriter creates a Writer. schemaDir may be empty to use built-in
// headers only.
func NewWriter(baseDir, schemaDir string) *Writer {
	return &Writer{baseDir: baseDir, schemaDir: schemaDir}
}

// Headers returns the column order for a segment, preferring
// <schemaDir>/<segment>_headers.txt over the built-in defaults.
func (w *Writer) Headers(segment model.Segment) []string {
	if w.schemaDir != "" {
		path := filepath.Join(w.schemaDir, string(segment)+"_headers.txt")
		if headers, err := readHeaderFile(path); err == nil && len(headers) > 0 {
			return headers
		}
	}
	return defaultHeaders[segment]
}

// WriteRun writes one CSV per segment plus summary.txt into
// <baseDir>/<runID>/ and mirrors the same files into <baseDir>/latest/.
func (w *Writer) WriteRun(runID string, rows map[model.Segment][]model.OutputRow) (string, error) {
	runDir := filepath.Join(w.baseDir, runID)
	latestDir := filepath.Join(w.baseDir, "latest")

	for _, dir := range []string{runDir, latestDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", eris.Wrapf(err, "output: mkdir %s", dir)
		}
	}

	segments := make([]model.Segment, 0, len(rows))
	for seg := range rows {
		segments = append(segments, seg)
	}
	sort.Slice(segments, func(i, j int) bool { return segments[i] < segments[j] })

	for _, seg := range segments {
		name := string(seg) + ".csv"
		headers := w.Headers(seg)
		if err := WriteCSV(filepath.Join(runDir, name), headers, rows[seg]); err != nil {
			return "", err
		}
		if err := copyFile(filepath.Join(runDir, name), filepath.Join(latestDir, name)); err != nil {
			return "", err
		}
		zap.L().Info("wrote segment output",
			zap.String("segment", string(seg)),
			zap.Int("rows", len(rows[seg])),
			zap.String("file", filepath.Join(runDir, name)))
	}

	summary := buildSummary(runID, segments, rows)
	for _, dir := range []string{runDir, latestDir} {
		if err := os.WriteFile(filepath.Join(dir, "summary.txt"), []byte(summary), 0o644); err != nil {
			return "", eris.Wrap(err, "output: write summary")
		}
	}
	return runDir, nil
}

// WriteCSV writes rows to a single CSV file with the given column order.
func WriteCSV(path string, headers []string, rows []model.OutputRow) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "output: create %s", path)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if err := cw.Write(headers); err != nil {
		return eris.Wrap(err, "output: write header")
	}
	for _, row := range rows {
		if err := cw.Write(buildRecord(headers, row)); err != nil {
			return eris.Wrapf(err, "output: write row %s", row.Organization)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "output: flush")
}

func buildRecord(headers []string, row model.OutputRow) []string {
	record := make([]string, len(headers))
	for i, h := range headers {
		switch h {
		case colOrganization:
			record[i] = row.Organization
		case colSegment:
			record[i] = string(row.Segment)
		case colRegion:
			record[i] = row.Region
		case colTier:
			record[i] = string(row.Tier)
		case colConfidence, colScore:
			record[i] = strconv.Itoa(row.Score)
		case colEvidenceURLs:
			record[i] = row.EvidenceURL
		case colNotes:
			record[i] = row.Notes
		default:
			record[i] = row.Extra[h]
		}
	}
	return record
}

func buildSummary(runID string, segments []model.Segment, rows map[model.Segment][]model.OutputRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "run: %s\n", runID)
	total := 0
	for _, seg := range segments {
		tiers := make(map[model.Tier]int)
		for _, row := range rows[seg] {
			tiers[row.Tier]++
		}
		fmt.Fprintf(&b, "%s: %d rows", seg, len(rows[seg]))
		tierNames := make([]model.Tier, 0, len(tiers))
		for t := range tiers {
			tierNames = append(tierNames, t)
		}
		sort.Slice(tierNames, func(i, j int) bool { return tierNames[i] < tierNames[j] })
		for _, t := range tierNames {
			fmt.Fprintf(&b, ", %s=%d", t, tiers[t])
		}
		b.WriteString("\n")
		total += len(rows[seg])
	}
	fmt.Fprintf(&b, "total: %d\n", total)
	return b.String()
}

// ReadRows loads a previously written segment CSV back into OutputRows.
// Unknown columns land in Extra. Used by the standalone dedupe command.
func ReadRows(path string, segment model.Segment) ([]model.OutputRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "output: open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	headers, err := r.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "output: read header %s", path)
	}

	var rows []model.OutputRow
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "output: read %s", path)
		}
		row := model.OutputRow{Segment: segment, Extra: map[string]string{}}
		for i, h := range headers {
			if i >= len(record) {
				break
			}
			val := record[i]
			switch strings.TrimSpace(h) {
			case colOrganization:
				row.Organization = val
			case colSegment:
				row.Segment = model.Segment(val)
			case colRegion:
				row.Region = val
			case colTier:
				row.Tier = model.Tier(val)
			case colConfidence, colScore:
				row.Score, _ = strconv.Atoi(val)
			case colEvidenceURLs:
				row.EvidenceURL = val
			case colNotes:
				row.Notes = val
			default:
				row.Extra[h] = val
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readHeaderFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var headers []string
	for _, field := range strings.Split(strings.TrimSpace(string(data)), ",") {
		if field = strings.TrimSpace(field); field != "" {
			headers = append(headers, field)
		}
	}
	return headers, nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return eris.Wrapf(err, "output: read %s", src)
	}
	return eris.Wrapf(os.WriteFile(dst, data, 0o644), "output: copy to %s", dst)
}
