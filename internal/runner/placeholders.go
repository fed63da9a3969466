package runner

import (
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/goliatone/go-awesome-pages/internal/identity"
	"github.com/goliatone/go-awesome-pages/internal/sources"
)

// Placeholders are the values available to output path templates.
type Placeholders map[string]string

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z0-9_:-]+)\}`)

// Render replaces {key} in tpl. Keys this map does not know are left as
// written so typos stay visible in the output path.
func (p Placeholders) Render(tpl string) string {
	return placeholderPattern.ReplaceAllStringFunc(tpl, func(match string) string {
		key := match[1 : len(match)-1]
		value, ok := p[key]
		if !ok {
			return match
		}
		return value
	})
}

// With returns a copy of p with key set.
func (p Placeholders) With(key, value string) Placeholders {
	out := make(Placeholders, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	out[key] = value
	return out
}

// placeholdersFor derives the template values of a source. Every value
// except path is slugified.
func placeholdersFor(info sources.Info, sourceID, rootDir string) Placeholders {
	p := Placeholders{
		"dir":    "",
		"name":   "",
		"ext":    "",
		"owner":  "",
		"repo":   "",
		"ref":    "",
		"path":   "",
		"host":   identity.Slugify(info.Host),
		"source": identity.Slugify(sourceID),
	}

	switch info.Kind {
	case sources.KindGithub:
		dir, name, ext := splitPath(info.Path, "readme")
		p["dir"], p["name"], p["ext"] = dir, name, ext
		p["owner"] = identity.Slugify(info.Owner)
		p["repo"] = identity.Slugify(info.Repo)
		p["ref"] = identity.Slugify(info.Ref)
		p["path"] = info.Path
	case sources.KindHTTP:
		pathname := info.Path
		if u, err := url.Parse(info.URL); err == nil {
			pathname = u.Path
		}
		dir, name, ext := splitPath(pathname, "index")
		p["dir"], p["name"], p["ext"] = dir, name, ext
		p["path"] = pathname
	default:
		rel := info.Path
		if r, err := filepath.Rel(rootDir, info.Path); err == nil {
			rel = r
		}
		dir, name, ext := splitPath(filepath.ToSlash(rel), "index")
		p["dir"], p["name"], p["ext"] = dir, name, ext
		p["path"] = filepath.ToSlash(rel)
	}
	return p
}

// splitPath returns slugified dir and name plus the extension without the
// dot. An empty base name falls back to fallback.
func splitPath(p, fallback string) (dir, name, ext string) {
	base := path.Base(p)
	if base == "." || base == "/" || base == "" {
		base = fallback
	}
	ext = strings.TrimPrefix(path.Ext(base), ".")
	name = strings.TrimSuffix(base, path.Ext(base))
	if name == "" {
		name = fallback
	}

	rawDir := path.Dir(p)
	if rawDir == "." || rawDir == "/" {
		rawDir = ""
	}
	return identity.Slugify(rawDir), identity.Slugify(name), ext
}
