package scoring

import "github.com/keystone-gtm/icp-discovery/internal/model"

// HealthcareScorer scores healthcare EHR/training evidence. The strict
// policy requires both EHR activity and VILT presence for Tier 1 with a
// 90/70 threshold ladder; the relaxed variant accepts either flag and
// lowers the ladder to 70/50.
type HealthcareScorer struct {
	Relaxed bool
}

func (HealthcareScorer) Segment() model.Segment { return model.SegmentHealthcare }

func (s HealthcareScorer) Score(ev model.Evidence) (model.ScoreResult, Derived) {
	score := 0
	var missing []string

	if ev.Flag("provider_org") {
		score += 5
	}

	if ev.Flag("ehr_activity") {
		score += 40
	} else {
		missing = append(missing, "ehr_activity")
	}

	if ev.Flag("vilt_present") {
		score += 30
	} else {
		missing = append(missing, "vilt_present")
	}

	if ev.Flag("training_program") {
		score += 15
	}

	if ev.Flag("large_scale") {
		score += 5
	}

	mustOK := ev.Flag("ehr_activity") && ev.Flag("vilt_present")
	top, mid := 90, 70
	if s.Relaxed {
		mustOK = ev.Flag("ehr_activity") || ev.Flag("vilt_present")
		top, mid = 70, 50
	}

	var tier model.Tier
	switch {
	case mustOK && score >= top:
		tier = model.TierOne
	case score >= mid:
		tier = model.TierTwo
	default:
		tier = model.TierThree
	}

	return model.ScoreResult{Score: score, Tier: tier, Missing: missing}, Derived{}
}
