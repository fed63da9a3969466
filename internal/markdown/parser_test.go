package markdown

import (
	"os"
	"strings"
	"testing"

	"github.com/yuin/goldmark/ast"

	"github.com/goliatone/go-awesome-pages/internal/diagnostics"
)

func TestParseFixture(t *testing.T) {
	doc := parseFixture(t, "testdata/awesome.md", "local:/lists/awesome.md")

	if doc.Title == nil || *doc.Title != "Awesome Tools" {
		t.Fatalf("expected frontmatter title, got %v", doc.Title)
	}
	if doc.Description == nil || *doc.Description != "A curated list of developer tools." {
		t.Fatalf("unexpected description %v", doc.Description)
	}
	if doc.DescriptionHTML == nil || *doc.DescriptionHTML != "<p>A curated list of <strong>developer</strong> tools.</p>" {
		t.Fatalf("unexpected description html %v", doc.DescriptionHTML)
	}
	if doc.Language == nil || *doc.Language != "en-us" {
		t.Fatalf("expected normalized language, got %v", doc.Language)
	}
	if !doc.HasExplicitBlocks {
		t.Fatalf("expected explicit blocks")
	}
	if doc.Frontmatter["title"] != "Awesome Tools" {
		t.Fatalf("unexpected frontmatter %#v", doc.Frontmatter)
	}
	if !hasDiagnostic(doc.Diagnostics, diagnostics.CodeFrontmatterLine, 4) {
		t.Fatalf("expected ignored frontmatter line 4, got %v", doc.Diagnostics)
	}

	headings := topLevelHeadings(doc)
	want := []string{"Editors", "Plugins"}
	if strings.Join(headings, ",") != strings.Join(want, ",") {
		t.Fatalf("visible headings = %v, want %v", headings, want)
	}
}

func TestParseTitleAndDescriptionFromBody(t *testing.T) {
	doc, err := Parse("# <img src=\"logo.png\"> Awesome ![badge](b.svg)Go\n\nFirst para with <em>x</em>.\n\nSecond para.\n\n## Section\n", "README.md")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Title == nil || *doc.Title != "Awesome Go" {
		t.Fatalf("unexpected title %v", doc.Title)
	}
	if doc.Description == nil || *doc.Description != "First para with x." {
		t.Fatalf("unexpected description %v", doc.Description)
	}
	if doc.DescriptionHTML == nil || *doc.DescriptionHTML != "<p>First para with x.</p>" {
		t.Fatalf("raw html must not pass through, got %v", doc.DescriptionHTML)
	}
	if doc.Frontmatter != nil {
		t.Fatalf("expected nil frontmatter, got %#v", doc.Frontmatter)
	}
	if doc.Language != nil {
		t.Fatalf("language must only come from frontmatter")
	}
}

func TestParseDescriptionStopsAtSection(t *testing.T) {
	doc, err := Parse("# Title\n\n## Tools\n\nLate paragraph.\n", "x.md")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Description != nil || doc.DescriptionHTML != nil {
		t.Fatalf("expected no description, got %v", doc.Description)
	}
	if !hasDiagnostic(doc.Diagnostics, diagnostics.CodeDescriptionMissing, 0) {
		t.Fatalf("expected description_missing diagnostic")
	}
}

func TestParseDescriptionRequiresTitle(t *testing.T) {
	doc, err := Parse("Orphan paragraph.\n\n# Title\n\nReal description.\n", "x.md")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Description == nil || *doc.Description != "Real description." {
		t.Fatalf("unexpected description %v", doc.Description)
	}
}

func TestParseTitleFallsBackToSourceName(t *testing.T) {
	cases := map[string]string{
		"local:/tmp/lists/README.md":       "README.md",
		"github:owner/repo@main:docs/x.md": "x.md",
		"http:https://example.com/list.md": "list.md",
		"plain.md":                         "plain.md",
	}
	for sourceID, want := range cases {
		doc, err := Parse("Just text.\n", sourceID)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if doc.Title == nil || *doc.Title != want {
			t.Fatalf("%s: title = %v, want %q", sourceID, doc.Title, want)
		}
		if !hasDiagnostic(doc.Diagnostics, diagnostics.CodeTitleFallback, 0) {
			t.Fatalf("%s: expected title fallback diagnostic", sourceID)
		}
	}
}

func TestParseFrontmatterEdgeCases(t *testing.T) {
	t.Run("unclosed", func(t *testing.T) {
		doc, err := Parse("---\ntitle: x\n\n# Real\n", "x.md")
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if doc.Frontmatter != nil {
			t.Fatalf("expected nil frontmatter, got %#v", doc.Frontmatter)
		}
		if doc.Title == nil || *doc.Title != "Real" {
			t.Fatalf("unexpected title %v", doc.Title)
		}
		if !hasDiagnostic(doc.Diagnostics, diagnostics.CodeFrontmatterUnclosed, 1) {
			t.Fatalf("expected unclosed diagnostic, got %v", doc.Diagnostics)
		}
	})

	t.Run("empty", func(t *testing.T) {
		doc, err := Parse("---\n---\n# Real\n", "x.md")
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if doc.Frontmatter != nil {
			t.Fatalf("expected nil frontmatter")
		}
		if !hasDiagnostic(doc.Diagnostics, diagnostics.CodeFrontmatterEmpty, 0) {
			t.Fatalf("expected empty diagnostic")
		}
	})

	t.Run("quotes and invalid language", func(t *testing.T) {
		values, body := ParseFrontmatter("---\nname: 'quoted'\nlanguage: nope123\n---\nbody\n")
		if values["name"] != "quoted" {
			t.Fatalf("unexpected values %#v", values)
		}
		if string(body) != "body\n" {
			t.Fatalf("unexpected body %q", body)
		}

		doc, err := Parse("---\nlanguage: nope123\n---\n# T\n", "x.md")
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if doc.Language == nil || *doc.Language != "en" {
			t.Fatalf("invalid language should normalize to en, got %v", doc.Language)
		}
		if !hasDiagnostic(doc.Diagnostics, diagnostics.CodeLanguageInvalid, 0) {
			t.Fatalf("expected invalid language diagnostic")
		}
	})

	t.Run("fence must open the document", func(t *testing.T) {
		values, _ := ParseFrontmatter("\n---\ntitle: x\n---\n")
		if values != nil {
			t.Fatalf("fence after a blank line is not frontmatter")
		}
	})
}

func TestFlattenTextResolvesEscapes(t *testing.T) {
	doc, err := Parse("# Hello \\*world\\* &amp; `co*de`\n", "x.md")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Title == nil || *doc.Title != "Hello *world* & co*de" {
		t.Fatalf("unexpected title %v", doc.Title)
	}
}

func TestRendererParagraphTrimsLeadingRun(t *testing.T) {
	p := NewParser(Options{})
	source := []byte("[Link](https://x.dev) - uses <b>raw</b> and **bold**\n")
	doc := p.engine.Parser().Parse(textReader(source))

	para := doc.FirstChild()
	var nodes []ast.Node
	for child := para.FirstChild(); child != nil; child = child.NextSibling() {
		if child.Kind() == ast.KindLink {
			continue
		}
		nodes = append(nodes, child)
	}

	html, err := p.Renderer().Paragraph(source, nodes, func(s string) string {
		return strings.TrimLeft(s, " -")
	})
	if err != nil {
		t.Fatalf("Paragraph: %v", err)
	}
	if html != "<p>uses raw and <strong>bold</strong></p>" {
		t.Fatalf("unexpected html %q", html)
	}

	empty, err := p.Renderer().Paragraph(source, nil, nil)
	if err != nil || empty != "" {
		t.Fatalf("expected empty paragraph, got %q (%v)", empty, err)
	}
}

func parseFixture(tb testing.TB, path, sourceID string) *ParsedDocument {
	tb.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		tb.Fatalf("read fixture %s: %v", path, err)
	}
	doc, err := Parse(string(data), sourceID)
	if err != nil {
		tb.Fatalf("Parse %s: %v", path, err)
	}
	return doc
}

func topLevelHeadings(doc *ParsedDocument) []string {
	var out []string
	for node := doc.AST.FirstChild(); node != nil; node = node.NextSibling() {
		if heading, ok := node.(*ast.Heading); ok {
			out = append(out, FlattenText(heading, doc.Source))
		}
	}
	return out
}

func hasDiagnostic(list []diagnostics.Diagnostic, code string, line int) bool {
	for _, d := range list {
		if d.Code == code && (line == 0 || d.Line == line) {
			return true
		}
	}
	return false
}
