package language

import (
	"regexp"
	"strings"
)

var bcp47Shape = regexp.MustCompile(`^[a-z]{2,3}(-[a-z]{2,4})?$`)

// NormalizeBCP47 trims and lowercases tag. Anything that is not a
// language subtag with an optional region or script subtag becomes Fallback.
// Registered and unregistered subtags are treated alike.
func NormalizeBCP47(tag string) string {
	normalized, ok := ParseBCP47(tag)
	if !ok {
		return Fallback
	}
	return normalized
}

// ParseBCP47 is NormalizeBCP47 that also reports whether tag was usable.
func ParseBCP47(tag string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(tag))
	if normalized == "" || !bcp47Shape.MatchString(normalized) {
		return "", false
	}
	return normalized, true
}

// Primary returns the primary subtag of a normalized tag.
func Primary(tag string) string {
	primary, _, _ := strings.Cut(NormalizeBCP47(tag), "-")
	return primary
}
