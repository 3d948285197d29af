// Package extract pulls healthcare-specific entities (EHR vendor,
// lifecycle phase, organization type, go-live date) out of scraped page
// text for the output columns the healthcare CSV schema carries.
package extract

import (
	"regexp"
	"strings"
)

// EntityMatch is one matched entity with a heuristic confidence.
type EntityMatch struct {
	Type       string
	Value      string
	Confidence float64
}

// Entities aggregates everything the extractor found on one page.
type Entities struct {
	EHRVendor      string
	LifecyclePhase string
	OrgType        string
	GoLiveDate     string
}

// Extractor matches healthcare entity keyword tables against page text.
// Construct one per pipeline and inject it; there is no package-level
// instance.
type Extractor struct {
	vendors      map[string][]string
	phases       map[string][]string
	orgTypes     map[string][]string
	datePatterns []*regexp.Regexp
}

// NewExtractor builds an Extractor with the built-in keyword tables.
func NewExtractor() *Extractor {
	return &Extractor{
		vendors: map[string][]string{
			"Epic":            {"epic systems", "epic ehr", "epic go-live", "epic training", "epic"},
			"Cerner":          {"cerner corporation", "cerner ehr", "cerner"},
			"Meditech":        {"meditech", "medical information technology"},
			"Allscripts":      {"allscripts healthcare", "allscripts"},
			"Athenahealth":    {"athenahealth", "athena health"},
			"NextGen":         {"nextgen healthcare", "nextgen"},
			"eClinicalWorks":  {"eclinicalworks", "eclinical works"},
			"Greenway Health": {"greenway health", "greenway"},
			"CPSI":            {"computer programs and systems", "cpsi"},
			"Medhost":         {"medhost", "med host"},
			"Paragon":         {"paragon ehr", "paragon"},
			"Sunrise":         {"sunrise clinical manager", "sunrise"},
		},
		phases: map[string][]string{
			"Planning":       {"vendor selection", "planning", "evaluation", "selection"},
			"Implementation": {"implementation", "go-live", "go live", "deployment", "rollout"},
			"Optimization":   {"optimization", "enhancement", "upgrade", "improvement"},
			"Maintenance":    {"maintenance", "ongoing support", "operational"},
			"Replacement":    {"replacement", "migration", "transition", "new system"},
		},
		orgTypes: map[string][]string{
			"Health System":      {"health system", "healthcare system", "medical system"},
			"Hospital":           {"hospital", "medical center", "health center"},
			"Physician Practice": {"physician practice", "medical practice"},
			"Urgent Care":        {"urgent care", "walk-in clinic", "immediate care"},
			"Long-term Care":     {"nursing home", "long-term care", "skilled nursing"},
			"Home Health":        {"home health", "homecare", "home care"},
			"Behavioral Health":  {"behavioral health", "mental health", "psychiatry"},
			"Rehabilitation":     {"rehabilitation", "physical therapy"},
		},
		datePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:go-live|go live|implementation|deployment)\s+(?:date|on|in)?\s*:?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
			regexp.MustCompile(`(?i)\b(?:go-live|go live|implementation|deployment)\s+(?:date|on|in)?\s*:?\s*(\w+\s+\d{1,2},?\s+\d{4})`),
			regexp.MustCompile(`(?i)\b(?:go-live|go live|implementation|deployment)\s+(?:date|on|in)?\s*:?\s*(\d{4}[-/]\d{1,2}[-/]\d{1,2})`),
		},
	}
}

// vendorOrder fixes the match order so ties resolve deterministically.
var vendorOrder = []string{
	"Epic", "Cerner", "Meditech", "Allscripts", "Athenahealth", "NextGen",
	"eClinicalWorks", "Greenway Health", "CPSI", "Medhost", "Paragon", "Sunrise",
}

// EHRVendor returns the first vendor whose keyword appears in the text.
// Confidence rises when EHR context surrounds the mention.
func (e *Extractor) EHRVendor(text string) *EntityMatch {
	lower := strings.ToLower(text)
	for _, vendor := range vendorOrder {
		terms := e.vendors[vendor]
		for _, term := range terms {
			if strings.Contains(lower, term) {
				conf := 0.8
				if strings.Contains(lower, "ehr") || strings.Contains(lower, "electronic health record") {
					conf = 0.95
				}
				return &EntityMatch{Type: "EHR_Vendor", Value: vendor, Confidence: conf}
			}
		}
	}
	return nil
}

var phaseOrder = []string{"Planning", "Implementation", "Optimization", "Maintenance", "Replacement"}

// LifecyclePhase returns the EHR lifecycle phase implied by the text.
func (e *Extractor) LifecyclePhase(text string) *EntityMatch {
	lower := strings.ToLower(text)
	for _, phase := range phaseOrder {
		terms := e.phases[phase]
		for _, term := range terms {
			if strings.Contains(lower, term) {
				conf := 0.7
				if strings.Contains(lower, "ehr") || strings.Contains(lower, "electronic health record") {
					conf = 0.9
				}
				return &EntityMatch{Type: "EHR_Lifecycle_Phase", Value: phase, Confidence: conf}
			}
		}
	}
	return nil
}

// OrganizationType classifies the provider organization mentioned in the
// text. Health systems are checked before plain hospitals so the broader
// match wins.
func (e *Extractor) OrganizationType(text string) *EntityMatch {
	lower := strings.ToLower(text)
	ordered := []string{
		"Health System", "Hospital", "Physician Practice", "Urgent Care",
		"Long-term Care", "Home Health", "Behavioral Health", "Rehabilitation",
	}
	for _, orgType := range ordered {
		for _, term := range e.orgTypes[orgType] {
			if strings.Contains(lower, term) {
				return &EntityMatch{Type: "Type", Value: orgType, Confidence: 0.75}
			}
		}
	}
	return nil
}

// GoLiveDate returns the first go-live date string found, verbatim.
func (e *Extractor) GoLiveDate(text string) string {
	for _, p := range e.datePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

// Extract runs every extractor over the text and aggregates the values.
func (e *Extractor) Extract(text string) Entities {
	var out Entities
	if m := e.EHRVendor(text); m != nil {
		out.EHRVendor = m.Value
	}
	if m := e.LifecyclePhase(text); m != nil {
		out.LifecyclePhase = m.Value
	}
	if m := e.OrganizationType(text); m != nil {
		out.OrgType = m.Value
	}
	out.GoLiveDate = e.GoLiveDate(text)
	return out
}
