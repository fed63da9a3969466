package generator

import (
	"fmt"
	"slices"
	"strings"
)

// Artifact names an output format derived from a domain.
type Artifact string

const (
	ArtifactDomain    Artifact = "domain"
	ArtifactIndex     Artifact = "index"
	ArtifactRSSXML    Artifact = "rss-xml"
	ArtifactRSSJSON   Artifact = "rss-json"
	ArtifactSitemap   Artifact = "sitemap"
	ArtifactBookmarks Artifact = "bookmarks"
	ArtifactCSV       Artifact = "csv"
)

type artifactSpec struct {
	ext         string
	contentType string
}

var artifactSpecs = map[Artifact]artifactSpec{
	ArtifactDomain:    {ext: ".json", contentType: "application/json"},
	ArtifactIndex:     {ext: ".json", contentType: "application/json"},
	ArtifactRSSXML:    {ext: ".xml", contentType: "application/rss+xml"},
	ArtifactRSSJSON:   {ext: ".json", contentType: "application/feed+json"},
	ArtifactSitemap:   {ext: ".xml", contentType: "application/xml"},
	ArtifactBookmarks: {ext: ".html", contentType: "text/html"},
	ArtifactCSV:       {ext: ".csv", contentType: "text/csv"},
}

// Artifacts lists every known artifact in a stable order.
func Artifacts() []Artifact {
	return []Artifact{
		ArtifactDomain,
		ArtifactIndex,
		ArtifactRSSXML,
		ArtifactRSSJSON,
		ArtifactSitemap,
		ArtifactBookmarks,
		ArtifactCSV,
	}
}

// ParseArtifact resolves a case-insensitive artifact name.
func ParseArtifact(name string) (Artifact, error) {
	candidate := Artifact(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := artifactSpecs[candidate]; !ok {
		return "", fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownArtifact, name, artifactList())
	}
	return candidate, nil
}

// Extension returns the file extension conventionally used for a.
func (a Artifact) Extension() string {
	return artifactSpecs[a].ext
}

// ContentType returns the media type written alongside a.
func (a Artifact) ContentType() string {
	return artifactSpecs[a].contentType
}

func (a Artifact) String() string { return string(a) }

func artifactList() string {
	names := make([]string, 0, len(artifactSpecs))
	for _, a := range Artifacts() {
		names = append(names, string(a))
	}
	slices.Sort(names)
	return strings.Join(names, ", ")
}
