package markdown

import (
	"path"
	"strings"

	"github.com/yuin/goldmark/ast"
)

// documentMetadata is what the top-level scan resolved.
type documentMetadata struct {
	Title           *string
	TitleFromSource bool
	Description     *string
	DescriptionNode ast.Node
	FromFrontmatter bool
}

// extractMetadata scans the top-level blocks of the unfiltered tree.
//
// Title: frontmatter title, then the first level-1 heading. Description:
// frontmatter description, then the first paragraph once a title has been
// seen and before the first heading of level 2 or deeper. The first such
// paragraph settles the description even when its text is empty.
func extractMetadata(doc ast.Node, source []byte, fm map[string]any, sourceID string) documentMetadata {
	var meta documentMetadata

	fmTitle, hasFMTitle := stringValue(fm, "title")
	if hasFMTitle {
		meta.Title = &fmTitle
	}
	if desc, ok := stringValue(fm, "description"); ok {
		meta.Description = &desc
		meta.FromFrontmatter = true
	}

	foundH1 := false
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		if node.Kind() == ast.KindHTMLBlock {
			continue
		}

		if heading, ok := node.(*ast.Heading); ok {
			if heading.Level == 1 && meta.Title == nil {
				title := strings.TrimSpace(FlattenText(heading, source))
				meta.Title = &title
				foundH1 = true
				continue
			}
			if heading.Level >= 2 && (foundH1 || hasFMTitle) {
				break
			}
			continue
		}

		if meta.Description != nil || !(foundH1 || hasFMTitle) {
			continue
		}
		if node.Kind() == ast.KindParagraph {
			desc := strings.TrimSpace(FlattenText(node, source))
			meta.Description = &desc
			meta.DescriptionNode = node
			break
		}
	}

	if meta.Title == nil {
		if base := sourceBaseName(sourceID); base != "" {
			meta.Title = &base
			meta.TitleFromSource = true
		}
	}
	return meta
}

// sourceBaseName returns the file name at the end of a source id such as
// "local:/abs/README.md" or "github:owner/repo@main:docs/list.md".
func sourceBaseName(sourceID string) string {
	id := strings.ReplaceAll(strings.TrimSpace(sourceID), `\`, "/")
	if idx := strings.LastIndex(id, ":"); idx >= 0 {
		id = id[idx+1:]
	}
	base := path.Base(id)
	if base == "." || base == "/" {
		return ""
	}
	return base
}
