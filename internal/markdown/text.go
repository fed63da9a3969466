package markdown

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/util"
)

// FlattenText concatenates the literal text below node in document order.
// Raw HTML and images contribute nothing. Line breaks become "\n".
func FlattenText(node ast.Node, source []byte) string {
	if node == nil {
		return ""
	}
	var b strings.Builder
	writeText(&b, node, source)
	return b.String()
}

// FlattenNodes flattens each node and joins the results.
func FlattenNodes(nodes []ast.Node, source []byte) string {
	var b strings.Builder
	for _, node := range nodes {
		writeText(&b, node, source)
	}
	return b.String()
}

func writeText(b *strings.Builder, node ast.Node, source []byte) {
	switch n := node.(type) {
	case *ast.RawHTML, *ast.HTMLBlock, *ast.Image:
		return
	case *ast.Text:
		b.WriteString(TextValue(n, source))
		if n.SoftLineBreak() || n.HardLineBreak() {
			b.WriteByte('\n')
		}
		return
	case *ast.String:
		b.Write(n.Value)
		return
	case *ast.AutoLink:
		b.Write(n.Label(source))
		return
	case *ast.CodeSpan:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				b.Write(t.Segment.Value(source))
			}
		}
		return
	}

	if node.Type() == ast.TypeBlock && node.FirstChild() == nil {
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			segment := lines.At(i)
			b.Write(segment.Value(source))
		}
		return
	}

	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		writeText(b, c, source)
	}
}

// TextValue returns the literal value of a text node with backslash escapes
// and character references resolved.
func TextValue(n *ast.Text, source []byte) string {
	value := n.Segment.Value(source)
	if n.IsRaw() {
		return string(value)
	}
	value = util.UnescapePunctuations(value)
	value = util.ResolveNumericReferences(value)
	value = util.ResolveEntityNames(value)
	return string(value)
}
