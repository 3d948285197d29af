// Package dedupe implements organization-name normalization, fuzzy
// similarity, and duplicate resolution for discovery candidates.
package dedupe

import (
	"regexp"
	"strings"
)

// Word-boundary-anchored stop patterns: legal entity suffixes first, then
// domain-generic words that carry no identity ("Mayo Clinic Health System"
// and "Mayo Clinic" must normalize to the same key).
var stopPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(inc|llc|ltd|corporation|corp|company|co|limited|incorporated)\b`),
	regexp.MustCompile(`\b(health|healthcare|medical|center|centre|clinic|hospital|systems?|group|associates|partners|university|academy|institute|services|solutions|international|global|worldwide)\b`),
}

var (
	punctPattern = regexp.MustCompile(`[^\w\s]`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// Normalize produces the canonical comparison key for an organization name.
// It lower-cases, strips legal suffixes and domain-generic words as whole
// words, replaces punctuation with spaces, and collapses whitespace. The
// result is idempotent and empty input yields an empty string.
func Normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return ""
	}
	for _, p := range stopPatterns {
		n = p.ReplaceAllString(n, " ")
	}
	n = punctPattern.ReplaceAllString(n, " ")
	n = spacePattern.ReplaceAllString(n, " ")
	return strings.TrimSpace(n)
}
