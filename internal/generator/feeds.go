package generator

import (
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/goliatone/go-awesome-pages/internal/domain"
)

const (
	defaultFeedTitle = "Awesome List"
	feedGenerator    = "awesome-pages/parser"
	jsonFeedVersion  = "https://jsonfeed.org/version/1.1"
	rfc822GMT        = "Mon, 02 Jan 2006 15:04:05 GMT"
)

var githubSourcePattern = regexp.MustCompile(`^github:/?/?([^@]+)@`)

type feedItem struct {
	ID              string
	URL             string
	Title           string
	Description     string
	DescriptionHTML string
	Section         string
	Tags            []string
}

// feedView is shared by the RSS and JSON Feed renderers so both formats
// list the same entries.
type feedView struct {
	Title       string
	Description string
	HomePageURL string
	GeneratedAt time.Time
	Items       []feedItem
}

func buildFeedView(d *domain.Domain) feedView {
	view := feedView{
		Title:       defaultFeedTitle,
		HomePageURL: homePageURL(d.Meta.Source),
		GeneratedAt: generatedAt(d),
	}
	if title := deref(d.Meta.Title); strings.TrimSpace(title) != "" {
		view.Title = title
	}
	view.Description = deref(d.Meta.Description)

	for _, section := range d.Sections {
		for _, item := range d.ItemsInSection(section.ID) {
			if item.URL == "" {
				continue
			}
			view.Items = append(view.Items, feedItem{
				ID:              item.ID,
				URL:             item.URL,
				Title:           item.Title,
				Description:     deref(item.Description),
				DescriptionHTML: deref(item.DescriptionHTML),
				Section:         section.Title,
				Tags:            item.Tags,
			})
		}
	}
	return view
}

// homePageURL maps github:owner/repo@ref:path to the repository page and
// passes plain http(s) sources through.
func homePageURL(source string) string {
	source = strings.TrimSpace(source)
	if match := githubSourcePattern.FindStringSubmatch(source); match != nil {
		return "https://github.com/" + match[1]
	}
	for _, candidate := range []string{strings.TrimPrefix(source, "http:"), source} {
		if strings.HasPrefix(candidate, "http://") || strings.HasPrefix(candidate, "https://") {
			return candidate
		}
	}
	return ""
}

func renderRSS(d *domain.Domain) []byte {
	view := buildFeedView(d)
	buildDate := view.GeneratedAt.UTC().Format(rfc822GMT)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<rss version="2.0">` + "\n")
	builder.WriteString("  <channel>\n")
	builder.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(view.Title)))
	builder.WriteString(fmt.Sprintf("    <link>%s</link>\n", escapeXML(view.HomePageURL)))
	builder.WriteString(fmt.Sprintf("    <description>%s</description>\n", escapeXML(view.Description)))
	if lang := deref(d.Meta.Language); lang != "" {
		builder.WriteString(fmt.Sprintf("    <language>%s</language>\n", escapeXML(lang)))
	}
	builder.WriteString(fmt.Sprintf("    <lastBuildDate>%s</lastBuildDate>\n", buildDate))
	builder.WriteString(fmt.Sprintf("    <generator>%s</generator>\n", feedGenerator))
	for _, item := range view.Items {
		builder.WriteString("    <item>\n")
		builder.WriteString(fmt.Sprintf("      <title>%s</title>\n", escapeXML(item.Title)))
		builder.WriteString(fmt.Sprintf("      <link>%s</link>\n", escapeXML(item.URL)))
		builder.WriteString(fmt.Sprintf("      <guid isPermaLink=\"false\">%s</guid>\n", escapeXML(item.ID)))
		if item.Description != "" {
			builder.WriteString(fmt.Sprintf("      <description>%s</description>\n", escapeXML(item.Description)))
		}
		if item.Section != "" {
			builder.WriteString(fmt.Sprintf("      <category>%s</category>\n", escapeXML(item.Section)))
		}
		for _, tag := range item.Tags {
			builder.WriteString(fmt.Sprintf("      <category>%s</category>\n", escapeXML(tag)))
		}
		builder.WriteString(fmt.Sprintf("      <pubDate>%s</pubDate>\n", buildDate))
		builder.WriteString("    </item>\n")
	}
	builder.WriteString("  </channel>\n")
	builder.WriteString(`</rss>` + "\n")
	return []byte(builder.String())
}

type jsonFeed struct {
	Version     string         `json:"version"`
	Title       string         `json:"title"`
	HomePageURL string         `json:"home_page_url,omitempty"`
	FeedURL     string         `json:"feed_url,omitempty"`
	Description string         `json:"description,omitempty"`
	Language    string         `json:"language,omitempty"`
	Items       []jsonFeedItem `json:"items"`
}

type jsonFeedItem struct {
	ID            string   `json:"id"`
	URL           string   `json:"url,omitempty"`
	Title         string   `json:"title,omitempty"`
	ContentText   string   `json:"content_text,omitempty"`
	ContentHTML   string   `json:"content_html,omitempty"`
	DatePublished string   `json:"date_published,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

func renderJSONFeed(d *domain.Domain, feedURL string) ([]byte, error) {
	view := buildFeedView(d)
	feed := jsonFeed{
		Version:     jsonFeedVersion,
		Title:       view.Title,
		HomePageURL: view.HomePageURL,
		FeedURL:     strings.TrimSpace(feedURL),
		Description: view.Description,
		Language:    deref(d.Meta.Language),
		Items:       make([]jsonFeedItem, 0, len(view.Items)),
	}
	for _, item := range view.Items {
		feed.Items = append(feed.Items, jsonFeedItem{
			ID:            item.ID,
			URL:           item.URL,
			Title:         item.Title,
			ContentText:   item.Description,
			ContentHTML:   item.DescriptionHTML,
			DatePublished: d.Meta.GeneratedAt,
			Tags:          item.Tags,
		})
	}
	return marshalIndented(feed)
}

func marshalIndented(value any) ([]byte, error) {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(payload, '\n'), nil
}

func generatedAt(d *domain.Domain) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, d.Meta.GeneratedAt)
	if err != nil {
		return time.Unix(0, 0).UTC()
	}
	return ts.UTC()
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func escapeXML(value string) string {
	return html.EscapeString(value)
}
