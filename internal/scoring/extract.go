package scoring

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Named free-text extractors. Each heuristic is independent and returns its
// zero value when nothing matches; none of them error on arbitrary scraped
// text.

var titleCaser = cases.Title(language.English)

var academyNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\w+)\s+(?:corporate\s+)?academy`),
	regexp.MustCompile(`(\w+)\s+university`),
	regexp.MustCompile(`(\w+)\s+learning\s+center`),
	regexp.MustCompile(`(\w+)\s+training\s+center`),
	regexp.MustCompile(`(\w+)\s+development\s+center`),
}

// ExtractAcademyName pulls a named corporate academy out of page text, or
// from an academy-bearing hostname when the text has none.
func ExtractAcademyName(text, pageURL string) string {
	lower := strings.ToLower(text)
	for _, p := range academyNamePatterns {
		if m := p.FindStringSubmatch(lower); m != nil {
			return titleCaser.String(m[1]) + " Academy"
		}
	}

	u, err := url.Parse(pageURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if !strings.Contains(host, "academy") {
		return ""
	}
	for _, part := range strings.Split(host, ".") {
		switch part {
		case "www", "academy", "com", "org":
			continue
		}
		if len(part) > 2 {
			return titleCaser.String(part) + " Academy"
		}
	}
	return ""
}

var academyURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(https?://\S+academy\S*)`),
	regexp.MustCompile(`(https?://academy\.\S+)`),
	regexp.MustCompile(`(https?://\S+/academy\S*)`),
	regexp.MustCompile(`(https?://\S+university\S*)`),
}

// ExtractAcademyURL finds an academy-specific URL in the text, falling back
// to the current page when it already sits on an academy subdomain.
func ExtractAcademyURL(text, baseURL string) string {
	lower := strings.ToLower(text)
	for _, p := range academyURLPatterns {
		if m := p.FindStringSubmatch(lower); m != nil {
			return m[1]
		}
	}

	u, err := url.Parse(baseURL)
	if err == nil && u.Hostname() != "" {
		host := strings.ToLower(u.Hostname())
		if strings.Contains(host, "academy") || strings.Contains(host, "university") {
			return baseURL
		}
	}
	return ""
}

var sessionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\s+(?:live|virtual|online)\s+sessions?`),
	regexp.MustCompile(`(\d+)\s+sessions?\s+(?:per|each|every)\s+(?:month|week)`),
	regexp.MustCompile(`(\d+)\s+upcoming\s+(?:sessions?|courses?|classes?)`),
	regexp.MustCompile(`(\d+)\s+scheduled\s+(?:sessions?|courses?|classes?)`),
}

// CountVILTSessions returns the largest session count mentioned in the
// text, zero when none is found.
func CountVILTSessions(text string) int {
	return maxPatternCount(strings.ToLower(text), sessionPatterns)
}

var schedulePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(https?://\S+(?:schedule|calendar|courses|training)\S*)`),
	regexp.MustCompile(`(https?://\S+/(?:events|sessions|classes)\S*)`),
}

var scheduleIndicators = []string{"upcoming sessions", "schedule", "calendar", "register"}

// ExtractScheduleURL finds a public training-calendar URL in the text; a
// page that itself carries schedule language counts as its own calendar.
func ExtractScheduleURL(text, baseURL string) string {
	lower := strings.ToLower(text)
	for _, p := range schedulePatterns {
		if m := p.FindStringSubmatch(lower); m != nil {
			return m[1]
		}
	}
	if containsAny(lower, scheduleIndicators...) {
		return baseURL
	}
	return ""
}

var accreditationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(PMI|Project Management Institute)`),
	regexp.MustCompile(`(?i)(NEBOSH)`),
	regexp.MustCompile(`(?i)(CompTIA)`),
	regexp.MustCompile(`(?i)(SHRM)`),
	regexp.MustCompile(`(?i)(ATD)`),
	regexp.MustCompile(`(?i)(IACET)`),
	regexp.MustCompile(`(?i)(Six Sigma)`),
	regexp.MustCompile(`(?i)(PMP)`),
	regexp.MustCompile(`(?i)(CISSP)`),
	regexp.MustCompile(`(?i)(ISO \d+)`),
}

// ExtractAccreditations collects recognized accreditation acronyms from the
// text, semicolon-joined, first occurrence wins.
func ExtractAccreditations(text string) string {
	var found []string
	seen := map[string]bool{}
	for _, p := range accreditationPatterns {
		for _, m := range p.FindAllString(text, -1) {
			key := strings.ToLower(m)
			if !seen[key] {
				seen[key] = true
				found = append(found, m)
			}
		}
	}
	return strings.Join(found, "; ")
}

var instructorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\s+(?:instructors?|trainers?|facilitators?)`),
	regexp.MustCompile(`(?:team|staff)\s+of\s+(\d+)`),
	regexp.MustCompile(`(\d+)\s+(?:expert|certified|experienced)\s+(?:instructors?|trainers?)`),
}

// CountInstructorBench estimates the instructor bench size: the largest
// explicit count, else a conservative estimate from descriptive terms.
func CountInstructorBench(text string) int {
	lower := strings.ToLower(text)
	if n := maxPatternCount(lower, instructorPatterns); n > 0 {
		return n
	}
	if containsAny(lower, "large team", "extensive", "numerous") {
		return 10
	}
	if containsAny(lower, "team of experts", "experienced staff") {
		return 5
	}
	return 0
}

// providerRedFlags disqualify a training provider outright: MOOC
// marketplaces, K-12/test prep, async-only delivery, micro bootcamps, and
// consulting-primary firms.
var providerRedFlags = []string{
	"mooc", "coursera", "udemy", "edx", "khan academy",
	"k-12", "high school", "elementary", "sat prep", "gmat prep",
	"self-paced only", "no live instruction", "recorded only",
	"micro bootcamp", "1-day course", "2-hour session",
	"consulting services", "advisory only", "strategy consulting",
}

// HasRedFlags reports whether the text matches any provider exclusion term.
func HasRedFlags(text string) bool {
	return containsAny(strings.ToLower(text), providerRedFlags...)
}

func maxPatternCount(lower string, patterns []*regexp.Regexp) int {
	best := 0
	for _, p := range patterns {
		for _, m := range p.FindAllStringSubmatch(lower, -1) {
			if n, err := strconv.Atoi(m[1]); err == nil && n > best {
				best = n
			}
		}
	}
	return best
}

// containsAny checks if s contains any of the given substrings.
func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
