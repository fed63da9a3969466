package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// Renderer turns AST fragments into HTML. Raw HTML never passes through.
type Renderer struct {
	renderer renderer.Renderer
}

// NewRenderer returns a safe renderer over the default engine.
func NewRenderer() *Renderer {
	return &Renderer{renderer: newEngine(EngineOptions{}).Renderer()}
}

// Node renders node and its descendants without the trailing newline.
func (r *Renderer) Node(source []byte, node ast.Node) (string, error) {
	var buf bytes.Buffer
	if err := r.renderer.Render(&buf, source, node); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// Paragraph renders nodes as the children of a synthetic <p>. The text of
// the leading run of plain text nodes goes through trimLeading before it is
// escaped. An empty result renders as "".
func (r *Renderer) Paragraph(source []byte, nodes []ast.Node, trimLeading func(string) string) (string, error) {
	var inner bytes.Buffer

	i := 0
	if trimLeading != nil {
		var lead strings.Builder
		for ; i < len(nodes); i++ {
			text, ok := nodes[i].(*ast.Text)
			if !ok {
				break
			}
			lead.WriteString(TextValue(text, source))
			if text.SoftLineBreak() || text.HardLineBreak() {
				lead.WriteByte('\n')
			}
		}
		inner.Write(util.EscapeHTML([]byte(trimLeading(lead.String()))))
	}

	for ; i < len(nodes); i++ {
		if err := r.renderer.Render(&inner, source, nodes[i]); err != nil {
			return "", err
		}
	}

	content := strings.TrimRight(inner.String(), "\n")
	if strings.TrimSpace(content) == "" {
		return "", nil
	}
	return "<p>" + content + "</p>", nil
}
