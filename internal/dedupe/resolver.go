package dedupe

import (
	"strings"

	"go.uber.org/zap"

	"github.com/keystone-gtm/icp-discovery/internal/model"
)

// DefaultThreshold is the similarity at or above which two candidate rows
// are treated as the same organization.
const DefaultThreshold = 0.85

// Resolution reports the outcome of a dedup pass. ConfidenceScores maps
// each surviving organization that won a duplicate conflict to the
// similarity against its evicted counterpart.
type Resolution struct {
	Unique            []model.OutputRow
	DuplicatesRemoved int
	ConfidenceScores  map[string]float64
}

// Resolver finds and collapses near-duplicate organization rows.
type Resolver struct {
	threshold float64
}

// NewResolver creates a Resolver. A non-positive threshold selects
// DefaultThreshold.
func NewResolver(threshold float64) *Resolver {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Resolver{threshold: threshold}
}

// Threshold returns the configured similarity threshold.
func (r *Resolver) Threshold() float64 { return r.threshold }

type duplicatePair struct {
	i, j int
	sim  float64
}

// Resolve pairwise-compares every row against every later row, then
// resolves each flagged pair greedily: the side with the lower completeness
// score is evicted, ties keeping the earlier row. Survivors retain their
// original relative order. The scan is O(n²), acceptable for the tens to
// low hundreds of candidates a run produces.
func (r *Resolver) Resolve(rows []model.OutputRow) Resolution {
	if len(rows) == 0 {
		return Resolution{Unique: []model.OutputRow{}, ConfidenceScores: map[string]float64{}}
	}

	var pairs []duplicatePair
	for i := 0; i < len(rows); i++ {
		for j := i + 1; j < len(rows); j++ {
			sim := Similarity(rows[i].Organization, rows[j].Organization)
			if sim >= r.threshold {
				pairs = append(pairs, duplicatePair{i: i, j: j, sim: sim})
			}
		}
	}

	kept := make(map[int]bool, len(rows))
	for i := range rows {
		kept[i] = true
	}
	confidence := make(map[string]float64, len(pairs))

	for _, p := range pairs {
		if !kept[p.i] || !kept[p.j] {
			continue
		}

		ci := completeness(rows[p.i])
		cj := completeness(rows[p.j])

		winner, loser := p.i, p.j
		if cj > ci {
			winner, loser = p.j, p.i
		}
		kept[loser] = false
		confidence[rows[winner].Organization] = p.sim

		zap.L().Debug("dedupe: evicted duplicate",
			zap.String("kept", rows[winner].Organization),
			zap.String("removed", rows[loser].Organization),
			zap.Float64("similarity", p.sim),
		)
	}

	unique := make([]model.OutputRow, 0, len(rows))
	for i, row := range rows {
		if kept[i] {
			unique = append(unique, row)
		}
	}

	return Resolution{
		Unique:            unique,
		DuplicatesRemoved: len(rows) - len(unique),
		ConfidenceScores:  confidence,
	}
}

// Required fields weigh 2, optional fields 1, normalized by the maximum of
// 9. Placeholder values do not count as present.
func completeness(row model.OutputRow) float64 {
	score := 0.0
	for _, v := range []string{row.Organization, row.Region, row.EvidenceURL} {
		if present(v) {
			score += 2
		}
	}
	if present(string(row.Tier)) {
		score++
	}
	if row.Score > 0 {
		score++
	}
	if present(row.Notes) {
		score++
	}
	return score / 9.0
}

func present(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "na", "n/a", "none":
		return false
	}
	return true
}
