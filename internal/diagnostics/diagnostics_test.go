package diagnostics

import "testing"

func TestListKeepsOrderAndCopies(t *testing.T) {
	var list List
	list.Warn(CodeUnmatchedEnd, "end marker without start")
	list.Info(CodeTitleFallback, "title taken from %q", "README.md")
	list.WarnAt(3, CodeFrontmatterLine, "ignored line")

	entries := list.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[1].Message != `title taken from "README.md"` || entries[1].Severity != SeverityInfo {
		t.Fatalf("unexpected entry %+v", entries[1])
	}
	if entries[2].String() != "frontmatter.line_ignored (line 3): ignored line" {
		t.Fatalf("unexpected string %q", entries[2].String())
	}

	entries[0].Code = "mutated"
	if !list.Has(CodeUnmatchedEnd) {
		t.Fatalf("Entries must return a copy")
	}
}

func TestNilListIsSafe(t *testing.T) {
	var list *List
	list.Warn(CodeUnclosedStart, "x")
	if list.Len() != 0 || list.Entries() != nil || list.Has(CodeUnclosedStart) {
		t.Fatalf("nil list should stay empty")
	}
}
