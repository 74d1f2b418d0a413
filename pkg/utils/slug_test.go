package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSlug(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"New Delhi", "new-delhi"},
		{"  Fortis  Hospital, Gurgaon ", "fortis-hospital-gurgaon"},
		{"Knee -- Replacement", "knee-replacement"},
		{"Dr. A. Sharma (MBBS)", "dr-a-sharma-mbbs"},
		{"snake_case_name", "snake_case_name"},
		{"!!!", ""},
		{"", ""},
		{"   ", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, GenerateSlug(tc.input))
		})
	}
}

func TestGenerateSlug_Idempotent(t *testing.T) {
	inputs := []string{
		"Angioplasty",
		"Heart Care & Cardiology",
		" -a- ",
		"Café Société",
		"Multi   Space\tTabs\nLines",
		"--leading and trailing--",
		"a !",
		"ÅNGSTRÖM – test",
		"123 Main St.",
	}

	for _, input := range inputs {
		once := GenerateSlug(input)
		assert.Equal(t, once, GenerateSlug(once), "slug of %q is not stable", input)
	}
}

func TestMatchesText(t *testing.T) {
	assert.True(t, MatchesText("New Delhi", "delhi"))
	assert.True(t, MatchesText("New Delhi", "new-delhi"))
	assert.True(t, MatchesText("New  Delhi", "NEW DELHI"))
	assert.True(t, MatchesText("Anything", ""))
	assert.False(t, MatchesText("Suva", "nadi"))
}
