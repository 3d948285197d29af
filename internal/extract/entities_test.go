package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEHRVendor(t *testing.T) {
	e := NewExtractor()

	tests := []struct {
		name       string
		text       string
		expected   string
		confidence float64
	}{
		{"epic with context", "the hospital begins Epic EHR training in june", "Epic", 0.95},
		{"cerner without context", "migrating from Cerner next year", "Cerner", 0.8},
		{"meditech", "running Meditech across all sites", "Meditech", 0.8},
		{"epic wins ties", "replacing Cerner with Epic Systems", "Epic", 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := e.EHRVendor(tt.text)
			require.NotNil(t, m)
			assert.Equal(t, tt.expected, m.Value)
			assert.Equal(t, tt.confidence, m.Confidence)
		})
	}

	assert.Nil(t, e.EHRVendor("no vendor mentioned here"))
}

func TestLifecyclePhase(t *testing.T) {
	e := NewExtractor()

	m := e.LifecyclePhase("the go-live is scheduled for spring")
	require.NotNil(t, m)
	assert.Equal(t, "Implementation", m.Value)

	m = e.LifecyclePhase("vendor selection is underway")
	require.NotNil(t, m)
	assert.Equal(t, "Planning", m.Value)

	assert.Nil(t, e.LifecyclePhase("quarterly earnings report"))
}

func TestLifecyclePhase_OrderIsDeterministic(t *testing.T) {
	e := NewExtractor()
	// Text matching both Planning and Implementation resolves to the
	// earlier phase every time.
	for i := 0; i < 20; i++ {
		m := e.LifecyclePhase("planning the go-live deployment")
		require.NotNil(t, m)
		assert.Equal(t, "Planning", m.Value)
	}
}

func TestOrganizationType(t *testing.T) {
	e := NewExtractor()

	m := e.OrganizationType("Riverbend is a 12-hospital health system")
	require.NotNil(t, m)
	assert.Equal(t, "Health System", m.Value, "health system outranks hospital")

	m = e.OrganizationType("the regional medical center expanded")
	require.NotNil(t, m)
	assert.Equal(t, "Hospital", m.Value)

	assert.Nil(t, e.OrganizationType("a software company"))
}

func TestGoLiveDate(t *testing.T) {
	e := NewExtractor()

	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"slash date", "go-live date: 03/15/2026 confirmed", "03/15/2026"},
		{"month name", "the go-live on June 1, 2026 is set", "June 1, 2026"},
		{"iso date", "deployment 2026-03-15 announced", "2026-03-15"},
		{"no date", "go-live announced for next year", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, e.GoLiveDate(tt.text))
		})
	}
}

func TestExtract_Aggregates(t *testing.T) {
	e := NewExtractor()

	text := "Riverbend Health System will complete its Epic EHR implementation " +
		"with a go-live on June 1, 2026 across nine hospitals."
	ents := e.Extract(text)

	assert.Equal(t, "Epic", ents.EHRVendor)
	assert.Equal(t, "Implementation", ents.LifecyclePhase)
	assert.Equal(t, "Health System", ents.OrgType)
	assert.Equal(t, "June 1, 2026", ents.GoLiveDate)
}
