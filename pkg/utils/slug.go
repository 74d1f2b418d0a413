package utils

import (
	"regexp"
	"strings"
)

var (
	slugStripPattern    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapsePattern = regexp.MustCompile(`[\s-]+`)
)

// GenerateSlug converts a display name into a lower-cased, hyphenated,
// URL-safe token. An empty name yields an empty slug and callers decide
// what to do with it.
func GenerateSlug(name string) string {
	slug := strings.TrimSpace(strings.ToLower(name))
	if slug == "" {
		return ""
	}

	slug = slugStripPattern.ReplaceAllString(slug, "")
	slug = slugCollapsePattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// NormalizeName lower-cases a name and collapses inner whitespace so names
// can be compared regardless of the spacing editors typed into the CMS.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// MatchesText reports whether name contains query, either literally
// (case-insensitive) or in slug form. Slug form lets a query copied out of
// a URL ("new-delhi") match "New Delhi".
func MatchesText(name, query string) bool {
	q := NormalizeName(query)
	if q == "" {
		return true
	}
	if strings.Contains(NormalizeName(name), q) {
		return true
	}
	qs := GenerateSlug(query)
	return qs != "" && strings.Contains(GenerateSlug(name), qs)
}
