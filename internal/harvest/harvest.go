// Package harvest turns fetched pages into scoring candidates by deriving
// segment-specific evidence flags from keyword tables.
package harvest

import (
	_ "embed"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/keystone-gtm/icp-discovery/internal/model"
	"github.com/keystone-gtm/icp-discovery/pkg/websearch"
)

// maxTextLen caps the page text the scorers see, matching the upstream
// fetch truncation.
const maxTextLen = 20000

// maxOrgNameLen caps the organization name taken from a page title.
const maxOrgNameLen = 120

//go:embed keywords.yaml
var keywordsYAML []byte

// Keywords maps an evidence flag to its trigger terms.
type Keywords map[string][]string

// Harvester derives evidence flags from page text.
type Harvester struct {
	tables map[model.Segment]Keywords
}

// New loads the embedded keyword tables.
func New() (*Harvester, error) {
	var tables map[model.Segment]Keywords
	if err := yaml.Unmarshal(keywordsYAML, &tables); err != nil {
		return nil, eris.Wrap(err, "harvest: parse keyword tables")
	}
	for _, seg := range model.Segments {
		if len(tables[seg]) == 0 {
			return nil, eris.Errorf("harvest: no keyword table for segment %s", seg)
		}
	}
	return &Harvester{tables: tables}, nil
}

// Candidate builds a scoring candidate from a fetched page. The
// organization name comes from the title's left side ("Org - Site"),
// falling back to the page URL; evidence flags fire on case-insensitive
// keyword containment in the truncated page text.
func (h *Harvester) Candidate(seg model.Segment, page websearch.Page, title, region string) model.Candidate {
	text := strings.ToLower(page.Text)
	if len(text) > maxTextLen {
		text = text[:maxTextLen]
	}

	org := orgFromTitle(title)
	if org == "" {
		org = page.URL
	}

	ev := model.Evidence{
		"full_text":    text,
		"evidence_url": page.URL,
	}
	for flag, terms := range h.tables[seg] {
		ev[flag] = containsAny(text, terms)
	}

	return model.Candidate{Organization: org, Evidence: ev, Region: region}
}

func orgFromTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	if idx := strings.Index(title, " - "); idx >= 0 {
		title = title[:idx]
	}
	if len(title) > maxOrgNameLen {
		title = title[:maxOrgNameLen]
	}
	return strings.TrimSpace(title)
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}
