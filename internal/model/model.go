// Package model defines the shared domain types for the ICP discovery pipeline.
package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// Segment identifies one of the three ICP definitions.
type Segment string

const (
	SegmentHealthcare Segment = "healthcare"
	SegmentCorporate  Segment = "corporate"
	SegmentProviders  Segment = "providers"
)

// Segments lists every known segment in display order.
var Segments = []Segment{SegmentHealthcare, SegmentCorporate, SegmentProviders}

// ParseSegment validates a segment string from CLI flags or config.
func ParseSegment(s string) (Segment, error) {
	switch Segment(s) {
	case SegmentHealthcare, SegmentCorporate, SegmentProviders:
		return Segment(s), nil
	}
	return "", eris.Errorf("model: unknown segment %q", s)
}

// Tier is the discrete qualification decision for a scored candidate.
// Healthcare uses the Tier 1/2/3 labels; corporate and providers use
// Confirmed/Probable/Needs Confirmation, with Excluded reserved for
// red-flagged providers.
type Tier string

const (
	TierConfirmed Tier = "Confirmed"
	TierProbable  Tier = "Probable"
	TierNeeds     Tier = "Needs Confirmation"
	TierExcluded  Tier = "Excluded"

	TierOne   Tier = "Tier 1"
	TierTwo   Tier = "Tier 2"
	TierThree Tier = "Tier 3"
)

// Accepted reports whether a tier qualifies for output and ledger upsert.
func (t Tier) Accepted() bool {
	switch t {
	case TierConfirmed, TierProbable, TierOne, TierTwo:
		return true
	}
	return false
}

// Evidence is the per-page flag map produced by harvesting. Boolean
// indicators are segment specific; full_text and evidence_url carry the
// raw material for the secondary extractors. Missing keys read as
// false/empty, never as an error.
type Evidence map[string]any

// Flag returns the boolean value for key, false when absent or non-boolean.
func (e Evidence) Flag(key string) bool {
	if e == nil {
		return false
	}
	b, _ := e[key].(bool)
	return b
}

// Text returns the string value for key, empty when absent or non-string.
func (e Evidence) Text(key string) string {
	if e == nil {
		return ""
	}
	s, _ := e[key].(string)
	return s
}

// Int returns the integer value for key, zero when absent.
func (e Evidence) Int(key string) int {
	if e == nil {
		return 0
	}
	switch n := e[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// Clone returns a shallow copy the caller may extend without touching the
// harvested original.
func (e Evidence) Clone() Evidence {
	out := make(Evidence, len(e)+4)
	for k, v := range e {
		out[k] = v
	}
	return out
}

// ScoreResult is the outcome of one evidence-scoring pass. Missing holds
// requirement identifiers in rule order.
type ScoreResult struct {
	Score   int      `json:"score"`
	Tier    Tier     `json:"tier"`
	Missing []string `json:"missing,omitempty"`
}

// Candidate is the unit flowing from harvest into dedup and scoring.
type Candidate struct {
	Organization string   `json:"organization"`
	Evidence     Evidence `json:"evidence"`
	Region       string   `json:"region"`
}

// OutputRow is an accepted organization headed for CSV output and the
// ledger. Extra carries segment-specific columns (EHR vendor, go-live
// date, academy name) keyed by CSV header name.
type OutputRow struct {
	Organization string            `json:"organization"`
	Segment      Segment           `json:"segment"`
	Region       string            `json:"region"`
	Tier         Tier              `json:"tier"`
	Score        int               `json:"score"`
	EvidenceURL  string            `json:"evidence_url"`
	Notes        string            `json:"notes"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// LedgerEntry is one persisted row of the master ledger, keyed by
// normalized organization name within a segment.
type LedgerEntry struct {
	Organization  string
	Segment       Segment
	Region        string
	Status        string
	Tier          Tier
	Score         int
	EvidenceURL   string
	Notes         string
	FirstAdded    time.Time
	LastValidated time.Time
}
