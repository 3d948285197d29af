package scoring

import (
	"net/url"
	"strings"

	"github.com/keystone-gtm/icp-discovery/internal/model"
)

// commonNameWords never establish domain ownership on their own.
var commonNameWords = map[string]bool{
	"the": true, "and": true, "for": true, "inc": true, "llc": true,
	"ltd": true, "corp": true, "company": true, "group": true,
	"of": true, "a": true, "an": true,
}

// ApplyDomainAuthority downgrades a Confirmed result to Probable when the
// evidence URL is not on a domain the organization plausibly owns: either
// the host is a known aggregator/news domain, or no substantive token of
// the organization name appears in the hostname. Applied by the pipeline
// after scoring, never inside a scorer.
func ApplyDomainAuthority(result model.ScoreResult, organization, evidenceURL string, aggregators []string) model.ScoreResult {
	if result.Tier != model.TierConfirmed {
		return result
	}

	u, err := url.Parse(evidenceURL)
	if err != nil || u.Hostname() == "" {
		return result
	}
	host := strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))

	for _, agg := range aggregators {
		agg = strings.ToLower(agg)
		if host == agg || strings.HasSuffix(host, "."+agg) {
			result.Tier = model.TierProbable
			return result
		}
	}

	for _, tok := range strings.Fields(strings.ToLower(organization)) {
		tok = strings.Trim(tok, ".,;:'\"()")
		if len(tok) <= 3 || commonNameWords[tok] {
			continue
		}
		if strings.Contains(host, tok) {
			return result
		}
	}

	result.Tier = model.TierProbable
	return result
}
