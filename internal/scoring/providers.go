package scoring

import (
	"strings"

	"github.com/keystone-gtm/icp-discovery/internal/model"
)

var (
	enterpriseKeywords = []string{"enterprise clients", "fortune", "case studies", "success stories"}
	geoReachKeywords   = []string{"global", "international", "worldwide", "na and emea"}
)

// ProvidersScorer scores B2B training-provider evidence. A red-flag match
// in the page text excludes the candidate before any scoring runs; the
// public-calendar and instructor-bench requirements come from the derived
// free-text metrics rather than harvested flags.
type ProvidersScorer struct{}

func (ProvidersScorer) Segment() model.Segment { return model.SegmentProviders }

func (ProvidersScorer) Score(ev model.Evidence) (model.ScoreResult, Derived) {
	text := ev.Text("full_text")
	pageURL := ev.Text("evidence_url")

	if HasRedFlags(text) {
		return model.ScoreResult{
			Score:   0,
			Tier:    model.TierExcluded,
			Missing: []string{"red_flags_present"},
		}, Derived{}
	}

	sessions := CountVILTSessions(text)
	scheduleURL := ExtractScheduleURL(text, pageURL)
	accreditations := ExtractAccreditations(text)
	instructorBench := CountInstructorBench(text)

	derived := Derived{
		"vilt_sessions_90d": sessions,
		"vilt_schedule_url": scheduleURL,
		"accreditations":    accreditations,
		"instructor_bench":  instructorBench,
	}

	score := 0
	var missing []string

	if ev.Flag("corporate_focus") {
		score += 20
	} else {
		missing = append(missing, "b2b_focus")
	}

	if ev.Flag("virtual_capability") {
		score += 25
	} else {
		missing = append(missing, "vilt_core_offering")
	}

	calendarOK := scheduleURL != "" && sessions >= 5
	if calendarOK {
		score += 20
	} else {
		missing = append(missing, "public_calendar_5plus")
	}

	if instructorBench >= 5 {
		score += 15
	} else {
		missing = append(missing, "instructor_bench_5plus")
	}

	if accreditations != "" {
		score += 10
	}

	lower := strings.ToLower(text)
	if containsAny(lower, enterpriseKeywords...) {
		score += 10
	}
	if containsAny(lower, geoReachKeywords...) {
		score += 5
	}

	mustOK := ev.Flag("corporate_focus") && ev.Flag("virtual_capability") &&
		calendarOK && instructorBench >= 5

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
