package markdown

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-awesome-pages/internal/diagnostics"
)

var frontmatterLine = regexp.MustCompile(`^(\w+):\s*(.+)$`)

// frontmatterBlock receives the decoded fence contents.
type frontmatterBlock struct {
	found   bool
	values  map[string]any
	ignored []int
}

var fenceFormat = frontmatter.NewFormat("---", "---", decodeFrontmatter)

// decodeFrontmatter reads "key: value" lines. Anything else is skipped and
// remembered so the caller can report it.
func decodeFrontmatter(data []byte, v interface{}) error {
	block, ok := v.(*frontmatterBlock)
	if !ok {
		return fmt.Errorf("frontmatter: unexpected target %T", v)
	}
	block.found = true
	block.values = map[string]any{}

	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		match := frontmatterLine.FindStringSubmatch(line)
		if match == nil {
			if strings.TrimSpace(line) != "" {
				block.ignored = append(block.ignored, i+1)
			}
			continue
		}
		block.values[match[1]] = strings.TrimSpace(stripQuotes(match[2]))
	}
	return nil
}

func stripQuotes(value string) string {
	if value != "" && (value[0] == '"' || value[0] == '\'') {
		value = value[1:]
	}
	if n := len(value); n > 0 && (value[n-1] == '"' || value[n-1] == '\'') {
		value = value[:n-1]
	}
	return value
}

// frontmatterResult is the outcome of splitting a document.
type frontmatterResult struct {
	Values map[string]any
	Body   []byte
	// LineOffset is the number of lines consumed before Body starts.
	LineOffset int
}

// ParseFrontmatter splits a leading "---" fenced block from text. The block
// must open on the very first line. Malformed or empty blocks yield nil
// values and never an error.
func ParseFrontmatter(text string) (map[string]any, []byte) {
	res := splitFrontmatter(text, nil)
	return res.Values, res.Body
}

func splitFrontmatter(text string, diags *diagnostics.List) frontmatterResult {
	source := []byte(text)
	if !opensWithFence(text) {
		return frontmatterResult{Body: source}
	}

	var block frontmatterBlock
	body, err := frontmatter.Parse(bytes.NewReader(source), &block, fenceFormat)
	if err != nil || !block.found {
		diags.WarnAt(1, diagnostics.CodeFrontmatterUnclosed, "frontmatter fence is never closed; treating it as content")
		return frontmatterResult{Body: source}
	}

	for _, line := range block.ignored {
		// data starts right after the opening fence on line 1
		diags.WarnAt(line+1, diagnostics.CodeFrontmatterLine, "frontmatter line is not a key: value pair")
	}

	offset := bytes.Count(source[:len(source)-len(body)], []byte("\n"))
	if len(block.values) == 0 {
		diags.Warn(diagnostics.CodeFrontmatterEmpty, "frontmatter block has no usable keys")
		return frontmatterResult{Body: body, LineOffset: offset}
	}
	return frontmatterResult{Values: block.values, Body: body, LineOffset: offset}
}

func opensWithFence(text string) bool {
	first, _, _ := strings.Cut(text, "\n")
	return strings.TrimSuffix(first, "\r") == "---"
}

// stringValue returns a non-empty string frontmatter value.
func stringValue(values map[string]any, key string) (string, bool) {
	raw, ok := values[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
