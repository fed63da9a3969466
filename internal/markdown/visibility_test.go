package markdown

import (
	"testing"

	"github.com/yuin/goldmark/ast"

	"github.com/goliatone/go-awesome-pages/internal/diagnostics"
)

func TestApplyVisibility(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		explicit bool
		visible  []string
		diag     string
	}{
		{
			name:    "no markers keeps everything",
			input:   "a\n\nb\n",
			visible: []string{"a", "b"},
		},
		{
			name:     "explicit blocks",
			input:    "a\n\n<!--awesome-pages:start-->\n\nb\n\n<!--awesome-pages:end-->\n\nc\n",
			explicit: true,
			visible:  []string{"b"},
		},
		{
			name:    "ignore block",
			input:   "a\n\n<!--awesome-pages:ignore:start-->\n\nb\n\n<!--awesome-pages:ignore:end-->\n\nc\n",
			visible: []string{"a", "c"},
		},
		{
			name:     "ignore inside explicit",
			input:    "<!--awesome-pages:start-->\n\na\n\n<!--awesome-pages:ignore:start-->\n\nb\n\n<!--awesome-pages:ignore:end-->\n\nc\n\n<!--awesome-pages:end-->\n",
			explicit: true,
			visible:  []string{"a", "c"},
		},
		{
			name:    "unmatched end clamps",
			input:   "<!--awesome-pages:end-->\n\na\n",
			visible: []string{"a"},
			diag:    diagnostics.CodeUnmatchedEnd,
		},
		{
			name:     "unclosed start runs to end",
			input:    "a\n\n<!--awesome-pages:start-->\n\nb\n",
			explicit: true,
			visible:  []string{"b"},
			diag:     diagnostics.CodeUnclosedStart,
		},
		{
			name:    "unclosed ignore hides the rest",
			input:   "a\n\n<!--awesome-pages:ignore:start-->\n\nb\n",
			visible: []string{"a"},
			diag:    diagnostics.CodeUnclosedIgnore,
		},
		{
			name:    "other html blocks are dropped",
			input:   "<div>\nx\n</div>\n\n<!-- note -->\n\na\n",
			visible: []string{"a"},
		},
		{
			name:    "markers tolerate surrounding space",
			input:   "  <!--awesome-pages:ignore:start-->  \n\na\n\n<!--awesome-pages:ignore:end-->\n\nb\n",
			visible: []string{"b"},
		},
	}

	p := NewParser(Options{})
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			source := []byte(tc.input)
			doc := p.engine.Parser().Parse(textReader(source))

			var diags diagnostics.List
			res := ApplyVisibility(doc, source, &diags)
			if res.HasExplicitBlocks != tc.explicit {
				t.Fatalf("explicit = %v, want %v", res.HasExplicitBlocks, tc.explicit)
			}

			var visible []string
			for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
				if node.Kind() == ast.KindHTMLBlock {
					t.Fatalf("html block survived filtering")
				}
				visible = append(visible, FlattenText(node, source))
			}
			if len(visible) != len(tc.visible) {
				t.Fatalf("visible = %q, want %q", visible, tc.visible)
			}
			for i := range visible {
				if visible[i] != tc.visible[i] {
					t.Fatalf("visible = %q, want %q", visible, tc.visible)
				}
			}
			if tc.diag != "" && !diags.Has(tc.diag) {
				t.Fatalf("expected diagnostic %s, got %v", tc.diag, diags.Entries())
			}
			if tc.diag == "" && diags.Len() != 0 {
				t.Fatalf("unexpected diagnostics %v", diags.Entries())
			}
		})
	}
}
