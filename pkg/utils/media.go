package utils

import (
	"strings"
)

const (
	wixImagePrefix = "wix:image://v1/"
	wixMediaBase   = "https://static.wixstatic.com/media/"
)

// WixImageURL turns a CMS media reference such as
// "wix:image://v1/abc123~mv2.jpg/photo.jpg#originWidth=800&originHeight=600"
// into a CDN URL. Anything that is not a media reference yields "".
func WixImageURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, wixImagePrefix) {
		return ""
	}

	rest := strings.TrimPrefix(raw, wixImagePrefix)
	if i := strings.IndexAny(rest, "/#"); i >= 0 {
		rest = rest[:i]
	}
	if rest == "" {
		return ""
	}

	return wixMediaBase + rest
}

// ImageURL resolves a media reference and passes absolute http(s) URLs
// through untouched.
func ImageURL(raw string) string {
	if u := WixImageURL(raw); u != "" {
		return u
	}
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "https://") || strings.HasPrefix(trimmed, "http://") {
		return trimmed
	}
	return ""
}
