package generator

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-awesome-pages/internal/domain"
)

const (
	sitemapChangeFreq = "weekly"
	sitemapPriority   = "0.5"
)

func renderSitemap(d *domain.Domain) []byte {
	lastMod := generatedAt(d).Format("2006-01-02")

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	seen := map[string]struct{}{}
	for _, section := range d.Sections {
		for _, item := range d.ItemsInSection(section.ID) {
			if item.URL == "" {
				continue
			}
			if _, ok := seen[item.URL]; ok {
				continue
			}
			seen[item.URL] = struct{}{}
			builder.WriteString("  <url>\n")
			builder.WriteString(fmt.Sprintf("    <loc>%s</loc>\n", escapeXML(item.URL)))
			builder.WriteString(fmt.Sprintf("    <lastmod>%s</lastmod>\n", lastMod))
			builder.WriteString(fmt.Sprintf("    <changefreq>%s</changefreq>\n", sitemapChangeFreq))
			builder.WriteString(fmt.Sprintf("    <priority>%s</priority>\n", sitemapPriority))
			builder.WriteString("  </url>\n")
		}
	}
	builder.WriteString(`</urlset>` + "\n")
	return []byte(builder.String())
}
