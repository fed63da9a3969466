package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark/ast"

	"github.com/goliatone/go-awesome-pages/internal/diagnostics"
)

// Visibility markers are HTML comments placed between top-level blocks.
const (
	MarkerStart       = "<!--awesome-pages:start-->"
	MarkerEnd         = "<!--awesome-pages:end-->"
	MarkerIgnoreStart = "<!--awesome-pages:ignore:start-->"
	MarkerIgnoreEnd   = "<!--awesome-pages:ignore:end-->"
)

// VisibilityResult reports what ApplyVisibility did.
type VisibilityResult struct {
	HasExplicitBlocks bool
	Kept              int
	Dropped           int
}

// ApplyVisibility removes hidden top-level nodes from doc in place. When any
// start marker exists only content between start and end markers stays;
// ignore markers hide content in either mode. Every top-level HTML block,
// markers included, is dropped. Unbalanced markers never fail: depths clamp
// at zero and the imbalance is reported on diags.
func ApplyVisibility(doc ast.Node, source []byte, diags *diagnostics.List) VisibilityResult {
	return applyVisibility(doc, source, 0, diags)
}

func applyVisibility(doc ast.Node, source []byte, lineOffset int, diags *diagnostics.List) VisibilityResult {
	var res VisibilityResult
	if doc == nil {
		return res
	}

	for child := doc.FirstChild(); child != nil; child = child.NextSibling() {
		if markerText(child, source) == MarkerStart {
			res.HasExplicitBlocks = true
			break
		}
	}

	parseDepth, ignoreDepth := 0, 0
	var lastStart, lastIgnore int

	child := doc.FirstChild()
	for child != nil {
		next := child.NextSibling()

		if child.Kind() == ast.KindHTMLBlock {
			line := nodeLine(child, source) + lineOffset
			switch markerText(child, source) {
			case MarkerStart:
				parseDepth++
				lastStart = line
			case MarkerEnd:
				if parseDepth == 0 {
					diags.WarnAt(line, diagnostics.CodeUnmatchedEnd, "end marker without a matching start marker")
				} else {
					parseDepth--
				}
			case MarkerIgnoreStart:
				ignoreDepth++
				lastIgnore = line
			case MarkerIgnoreEnd:
				if ignoreDepth == 0 {
					diags.WarnAt(line, diagnostics.CodeUnmatchedIgnoreEnd, "ignore end marker without a matching ignore start marker")
				} else {
					ignoreDepth--
				}
			}
			doc.RemoveChild(doc, child)
			res.Dropped++
			child = next
			continue
		}

		include := ignoreDepth == 0
		if res.HasExplicitBlocks {
			include = parseDepth > 0 && ignoreDepth == 0
		}
		if include {
			res.Kept++
		} else {
			doc.RemoveChild(doc, child)
			res.Dropped++
		}
		child = next
	}

	if parseDepth > 0 {
		diags.WarnAt(lastStart, diagnostics.CodeUnclosedStart, "start marker is never closed; content runs to the end of the document")
	}
	if ignoreDepth > 0 {
		diags.WarnAt(lastIgnore, diagnostics.CodeUnclosedIgnore, "ignore marker is never closed; content is hidden to the end of the document")
	}
	return res
}

// markerText returns the trimmed text of an HTML block, or "" for any other
// node.
func markerText(node ast.Node, source []byte) string {
	block, ok := node.(*ast.HTMLBlock)
	if !ok {
		return ""
	}
	var buf bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		buf.Write(segment.Value(source))
	}
	if block.HasClosure() {
		buf.Write(block.ClosureLine.Value(source))
	}
	return strings.TrimSpace(buf.String())
}

func nodeLine(node ast.Node, source []byte) int {
	lines := node.Lines()
	if lines == nil || lines.Len() == 0 {
		return 0
	}
	start := lines.At(0).Start
	if start < 0 || start > len(source) {
		return 0
	}
	return bytes.Count(source[:start], []byte("\n")) + 1
}
