package generator

import (
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-awesome-pages/internal/domain"
)

type bookmarkFolder struct {
	Title    string
	Items    []domain.Item
	Children []*bookmarkFolder
}

// bookmarkTree nests sections under their parents. A parent always precedes
// its children, so the latest folder seen for an id is the right anchor.
func bookmarkTree(d *domain.Domain) []*bookmarkFolder {
	var roots []*bookmarkFolder
	byID := map[string]*bookmarkFolder{}
	for _, section := range d.Sections {
		folder := &bookmarkFolder{Title: section.Title}
		byID[section.ID] = folder
		if section.ParentID == nil {
			roots = append(roots, folder)
			continue
		}
		if parent, ok := byID[*section.ParentID]; ok && parent != folder {
			parent.Children = append(parent.Children, folder)
			continue
		}
		roots = append(roots, folder)
	}

	for _, item := range d.Items {
		if folder, ok := byID[item.SectionID]; ok {
			folder.Items = append(folder.Items, item)
		}
	}
	return roots
}

func renderBookmarks(d *domain.Domain) []byte {
	stamp := generatedAt(d).Unix()
	title := defaultFeedTitle
	if value := deref(d.Meta.Title); strings.TrimSpace(value) != "" {
		title = value
	}

	var builder strings.Builder
	builder.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	builder.WriteString("<!-- This is an automatically generated file.\n")
	builder.WriteString("     It will be read and overwritten.\n")
	builder.WriteString("     DO NOT EDIT! -->\n")
	builder.WriteString(`<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">` + "\n")
	builder.WriteString(fmt.Sprintf("<TITLE>%s</TITLE>\n", html.EscapeString(title)))
	builder.WriteString(fmt.Sprintf("<H1>%s</H1>\n", html.EscapeString(title)))
	builder.WriteString("<DL><p>\n")
	builder.WriteString(fmt.Sprintf("    <DT><H3 ADD_DATE=\"%d\">%s</H3>\n", stamp, html.EscapeString(title)))
	builder.WriteString("    <DL><p>\n")
	for _, folder := range bookmarkTree(d) {
		writeBookmarkFolder(&builder, folder, stamp, 2)
	}
	builder.WriteString("    </DL><p>\n")
	builder.WriteString("</DL><p>\n")
	return []byte(builder.String())
}

func writeBookmarkFolder(builder *strings.Builder, folder *bookmarkFolder, stamp int64, depth int) {
	indent := strings.Repeat("    ", depth)
	entryIndent := strings.Repeat("    ", depth+1)

	builder.WriteString(fmt.Sprintf("%s<DT><H3 ADD_DATE=\"%d\">%s</H3>\n", indent, stamp, html.EscapeString(folder.Title)))
	builder.WriteString(indent + "<DL><p>\n")
	for _, item := range folder.Items {
		href := item.URL
		if href == "" {
			href = "#"
		}
		line := fmt.Sprintf("%s<DT><A HREF=\"%s\" ADD_DATE=\"%d\">%s</A>", entryIndent, html.EscapeString(href), stamp, html.EscapeString(item.Title))
		if desc := deref(item.Description); desc != "" {
			line += " - " + html.EscapeString(desc)
		}
		builder.WriteString(line + "\n")
	}
	for _, child := range folder.Children {
		writeBookmarkFolder(builder, child, stamp, depth+1)
	}
	builder.WriteString(indent + "</DL><p>\n")
}
