// Package diagnostics records soft conditions met while parsing and building.
// None of them stop the pipeline; callers inspect the list when they care.
package diagnostics

import "fmt"

// Severity ranks a diagnostic.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Codes emitted by the pipeline.
const (
	CodeUnmatchedEnd         = "visibility.unmatched_end"
	CodeUnclosedStart        = "visibility.unclosed_start"
	CodeUnmatchedIgnoreEnd   = "visibility.unmatched_ignore_end"
	CodeUnclosedIgnore       = "visibility.unclosed_ignore"
	CodeFrontmatterLine      = "frontmatter.line_ignored"
	CodeFrontmatterEmpty     = "frontmatter.empty"
	CodeFrontmatterUnclosed  = "frontmatter.unclosed"
	CodeTitleFallback        = "metadata.title_fallback"
	CodeDescriptionMissing   = "metadata.description_missing"
	CodeListOutsideSection   = "domain.list_outside_section"
	CodeItemWithoutParagraph = "domain.item_without_paragraph"
	CodeTagBlockWithoutTags  = "tags.block_without_tags"
	CodeLanguageFallback     = "language.fallback"
	CodeLanguageInvalid      = "language.invalid_tag"
	CodeUnsupportedStopwords = "search.stopwords_fallback"
)

// Diagnostic is a single soft condition.
type Diagnostic struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Line     int      `json:"line,omitempty"`
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s (line %d): %s", d.Code, d.Line, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Code, d.Message)
}

// List accumulates diagnostics in the order they were reported. The zero
// value is ready to use.
type List struct {
	entries []Diagnostic
}

// Warn appends a warning.
func (l *List) Warn(code, format string, args ...any) {
	l.add(SeverityWarning, 0, code, format, args...)
}

// Info appends an informational entry.
func (l *List) Info(code, format string, args ...any) {
	l.add(SeverityInfo, 0, code, format, args...)
}

// WarnAt appends a warning tied to a source line.
func (l *List) WarnAt(line int, code, format string, args ...any) {
	l.add(SeverityWarning, line, code, format, args...)
}

func (l *List) add(severity Severity, line int, code, format string, args ...any) {
	if l == nil {
		return
	}
	l.entries = append(l.entries, Diagnostic{
		Code:     code,
		Severity: severity,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
	})
}

// Append copies entries from other lists.
func (l *List) Append(others ...Diagnostic) {
	if l == nil {
		return
	}
	l.entries = append(l.entries, others...)
}

// Entries returns a copy of the recorded diagnostics.
func (l *List) Entries() []Diagnostic {
	if l == nil || len(l.entries) == 0 {
		return nil
	}
	return append([]Diagnostic(nil), l.entries...)
}

// Len reports the number of diagnostics.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// Has reports whether a diagnostic with code was recorded.
func (l *List) Has(code string) bool {
	if l == nil {
		return false
	}
	for _, entry := range l.entries {
		if entry.Code == code {
			return true
		}
	}
	return false
}
