package markdown

import (
	"regexp"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// A checkbox needs whitespace after "]", so "- [X](https://x.com)" stays a
// link titled "X".
var taskCheckBoxPattern = regexp.MustCompile(`^\[([ \txX])\][ \t\r\n]+`)

type taskCheckBoxParser struct{}

func (taskCheckBoxParser) Trigger() []byte { return []byte{'['} }

func (taskCheckBoxParser) Parse(parent gast.Node, block text.Reader, _ parser.Context) gast.Node {
	item := parent.Parent()
	if item == nil || item.FirstChild() != parent || parent.HasChildren() {
		return nil
	}
	if _, ok := item.(*gast.ListItem); !ok {
		return nil
	}
	line, _ := block.PeekLine()
	m := taskCheckBoxPattern.FindSubmatchIndex(line)
	if m == nil {
		return nil
	}
	mark := line[m[2]]
	block.Advance(m[1])
	return east.NewTaskCheckBox(mark == 'x' || mark == 'X')
}

func (taskCheckBoxParser) CloseBlock(gast.Node, parser.Context) {}

type taskList struct{}

func (taskList) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(taskCheckBoxParser{}, 0),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(extension.NewTaskCheckBoxHTMLRenderer(), 500),
	))
}

// gfm is goldmark's GFM bundle with the stricter checkbox parser.
type gfm struct{}

func (gfm) Extend(m goldmark.Markdown) {
	extension.Linkify.Extend(m)
	extension.Table.Extend(m)
	extension.Strikethrough.Extend(m)
	taskList{}.Extend(m)
}
