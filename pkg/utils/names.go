package utils

import (
	"regexp"
	"strings"
)

// NotAvailable is shown wherever a display string is missing.
const NotAvailable = "N/A"

var groupSuffixPattern = regexp.MustCompile(`(?i)[\s\-,|()]*\bgroup\b[\s)]*$`)

// CleanHospitalName strips a trailing "Group" token from a hospital name
// ("Apollo Hospitals Group" -> "Apollo Hospitals").
func CleanHospitalName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return NotAvailable
	}

	cleaned := strings.TrimSpace(groupSuffixPattern.ReplaceAllString(trimmed, ""))
	if cleaned == "" {
		return trimmed
	}
	return cleaned
}

// FirstNonEmpty returns the first argument that is not blank.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
