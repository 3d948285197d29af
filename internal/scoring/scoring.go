// Package scoring converts harvested page evidence into tier decisions for
// each ICP segment. Scorers are pure functions of their evidence input;
// fields they derive from free text come back as an explicit Derived map
// rather than mutations of the caller's evidence.
package scoring

import "github.com/keystone-gtm/icp-discovery/internal/model"

// Derived holds the fields a scorer extracted from free text as a side
// output of the scoring pass.
type Derived map[string]any

// Scorer is one segment's rule engine.
type Scorer interface {
	Segment() model.Segment
	Score(ev model.Evidence) (model.ScoreResult, Derived)
}

// Config selects scoring policy variants.
type Config struct {
	// HealthcareRelaxed switches the healthcare scorer to the relaxed
	// MUST policy (either EHR activity or VILT, thresholds 70/50). The
	// strict policy is the default.
	HealthcareRelaxed bool
}

// NewScorers builds the scorer set keyed by segment.
func NewScorers(cfg Config) map[model.Segment]Scorer {
	return map[model.Segment]Scorer{
		model.SegmentHealthcare: HealthcareScorer{Relaxed: cfg.HealthcareRelaxed},
		model.SegmentCorporate:  CorporateScorer{},
		model.SegmentProviders:  ProvidersScorer{},
	}
}
