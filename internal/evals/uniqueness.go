// Package evals contains offline quality audits run against emitted result
// CSVs. The uniqueness evaluator is the release gate for duplicate leakage.
package evals

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/keystone-gtm/icp-discovery/internal/dedupe"
)

// PassThreshold is the minimum final score for a passing batch.
const PassThreshold = 90.0

// Confidence bands for flagged duplicate pairs.
const (
	highConfidenceSim   = 0.95
	mediumConfidenceSim = 0.85
)

// DuplicatePair is one flagged near-duplicate with its similarity.
type DuplicatePair struct {
	OrgA       string
	OrgB       string
	Similarity float64
}

// UniquenessReport is the audit result for one batch of organizations.
type UniquenessReport struct {
	FinalScore                 float64
	TotalOrganizations         int
	UniqueNormalized           int
	UniquenessRatio            float64
	PotentialDuplicates        int
	HighConfidenceDuplicates   int
	MediumConfidenceDuplicates int
	Samples                    []DuplicatePair
}

// Passed reports whether the batch clears the uniqueness gate.
func (r *UniquenessReport) Passed() bool {
	return r.FinalScore >= PassThreshold
}

// Evaluate audits a batch of organization names. The final score is the
// distinct-normalized ratio minus a penalty of two points per
// high-confidence duplicate pair and one per medium, floored at zero and
// scaled to 0-100. An empty batch is a structured error, not a panic.
func Evaluate(names []string) (*UniquenessReport, error) {
	if len(names) == 0 {
		return nil, eris.New("evals: no organization names to evaluate")
	}

	normalized := make(map[string]struct{}, len(names))
	for _, name := range names {
		normalized[dedupe.Normalize(name)] = struct{}{}
	}

	var pairs []DuplicatePair
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			sim := dedupe.Similarity(names[i], names[j])
			if sim >= mediumConfidenceSim {
				pairs = append(pairs, DuplicatePair{OrgA: names[i], OrgB: names[j], Similarity: sim})
			}
		}
	}

	high, medium := 0, 0
	for _, p := range pairs {
		if p.Similarity >= highConfidenceSim {
			high++
		} else {
			medium++
		}
	}

	total := len(names)
	ratio := float64(len(normalized)) / float64(total)
	penalty := float64(2*high+medium) / float64(total)

	final := ratio - penalty
	if final < 0 {
		final = 0
	}

	samples := pairs
	if len(samples) > 5 {
		samples = samples[:5]
	}

	return &UniquenessReport{
		FinalScore:                 final * 100,
		TotalOrganizations:         total,
		UniqueNormalized:           len(normalized),
		UniquenessRatio:            ratio * 100,
		PotentialDuplicates:        len(pairs),
		HighConfidenceDuplicates:   high,
		MediumConfidenceDuplicates: medium,
		Samples:                    samples,
	}, nil
}

// EvaluateCSV reads organization names from the Organization (or Company)
// column of a result CSV and audits them.
func EvaluateCSV(path string) (*UniquenessReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "evals: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	names, err := readOrganizations(f)
	if err != nil {
		return nil, err
	}
	return Evaluate(names)
}

func readOrganizations(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "evals: read CSV header")
	}

	col := -1
	for i, h := range header {
		name := strings.TrimSpace(h)
		if strings.EqualFold(name, "Organization") {
			col = i
			break
		}
		if strings.EqualFold(name, "Company") && col < 0 {
			col = i
		}
	}
	if col < 0 {
		return nil, eris.New("evals: no Organization or Company column in CSV")
	}

	var names []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "evals: read CSV row")
		}
		if col >= len(record) {
			continue
		}
		if name := strings.TrimSpace(record[col]); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}
