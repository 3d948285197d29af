package scoring

import (
	"strings"

	"github.com/keystone-gtm/icp-discovery/internal/model"
)

var awardsKeywords = []string{"top 125", "clo", "atd", "award", "recognition"}

// CorporateScorer scores corporate-academy evidence. It derives the academy
// name and URL from the page text before scoring; a named academy combined
// with a documented training program is the anchor requirement.
type CorporateScorer struct{}

func (CorporateScorer) Segment() model.Segment { return model.SegmentCorporate }

func (CorporateScorer) Score(ev model.Evidence) (model.ScoreResult, Derived) {
	text := ev.Text("full_text")
	pageURL := ev.Text("evidence_url")

	academyName := ExtractAcademyName(text, pageURL)
	academyURL := ExtractAcademyURL(text, pageURL)
	derived := Derived{
		"academy_name": academyName,
		"academy_url":  academyURL,
	}

	score := 0
	var missing []string

	if ev.Flag("training_program") && academyName != "" {
		score += 50
	} else {
		missing = append(missing, "named_academy")
	}

	if ev.Flag("large_scale") {
		score += 10
	} else {
		missing = append(missing, "size_requirement")
	}

	if ev.Flag("structured_learning") {
		score += 15
	}

	if ev.Flag("vilt_present") {
		score += 15
	} else {
		missing = append(missing, "vilt_modality")
	}

	if containsAny(strings.ToLower(text), awardsKeywords...) {
		score += 10
	}

	if ev.Flag("external_scope") {
		score += 5
	}

	mustOK := ev.Flag("training_program") && ev.Flag("large_scale") &&
		ev.Flag("vilt_present") && academyName != ""

	var tier model.Tier
	switch {
	case mustOK && score >= 90:
		tier = model.TierConfirmed
	case score >= 70:
		tier = model.TierProbable
	default:
		tier = model.TierNeeds
	}

	return model.ScoreResult{Score: score, Tier: tier, Missing: missing}, derived
}
