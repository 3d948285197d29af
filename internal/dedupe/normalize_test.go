package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "ACME", "acme"},
		{"strips legal suffix", "Acme Inc.", "acme"},
		{"strips llc", "Acme, LLC", "acme"},
		{"strips generic health words", "Mayo Clinic Health System", "mayo"},
		{"mayo clinic collapses", "Mayo Clinic", "mayo"},
		{"strips punctuation", "St. Luke's", "st luke s"},
		{"collapses whitespace", "  Acme   Widgets  ", "acme widgets"},
		{"empty input", "", ""},
		{"whitespace only", "   ", ""},
		{"all stop words", "Health System Inc", ""},
		{"keeps identity words", "Cleveland", "cleveland"},
		{"no partial word match", "Cobalt", "cobalt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalize_SameKeyForVariants(t *testing.T) {
	variants := []string{
		"Mayo Clinic",
		"Mayo Clinic Health System",
		"The Mayo Clinic",
	}
	assert.Equal(t, "the mayo", Normalize(variants[2]))
	assert.Equal(t, Normalize(variants[0]), Normalize(variants[1]))
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Mayo Clinic Health System",
		"Acme, Inc.",
		"Kaiser Permanente",
		"St. Jude Children's Research Hospital",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize should be idempotent for %q", in)
	}
}
