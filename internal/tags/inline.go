// Package tags pulls the trailing "(#tag #tag)" block out of item
// descriptions.
package tags

import (
	"regexp"
	"strings"
)

var trailingBlock = regexp.MustCompile(`(?i)\((\s*#[a-z0-9_-]+(?:\s+#[a-z0-9_-]+)*\s*)\)\s*$`)

// ExtractInline returns description without its trailing tag block and the
// lowercased, de-duplicated tags in first-seen order. When no block is
// present the description is returned unchanged with an empty, non-nil
// slice. Hashtags outside the trailing block are left alone.
func ExtractInline(description string) (string, []string) {
	loc := trailingBlock.FindStringSubmatchIndex(description)
	if loc == nil {
		return description, []string{}
	}

	inner := description[loc[2]:loc[3]]
	fields := strings.Fields(inner)
	out := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		tag := strings.ToLower(strings.TrimPrefix(field, "#"))
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}

	return strings.TrimSpace(description[:loc[0]]), out
}

// HasBlock reports whether description ends with a tag block.
func HasBlock(description string) bool {
	return trailingBlock.MatchString(description)
}
