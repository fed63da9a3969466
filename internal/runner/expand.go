package runner

import (
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

var (
	remoteInput = regexp.MustCompile(`(?i)^(https?://|github:)`)
	globChars   = regexp.MustCompile(`[*?\[\]{},]`)
)

// skippedDirs are never descended into while matching globs.
var skippedDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
	CacheDirName:   {},
}

// expandInput turns one from entry into concrete inputs. Remote specs pass
// through, local globs are matched against files under rootDir and plain
// local paths are anchored at rootDir.
func expandInput(from, rootDir string) ([]string, error) {
	from = strings.TrimSpace(from)
	if remoteInput.MatchString(from) {
		return []string{from}, nil
	}
	if !globChars.MatchString(from) {
		if filepath.IsAbs(from) {
			return []string{filepath.Clean(from)}, nil
		}
		return []string{filepath.Join(rootDir, from)}, nil
	}
	return matchGlob(from, rootDir)
}

func matchGlob(pattern, rootDir string) ([]string, error) {
	base := rootDir
	rel := filepath.ToSlash(pattern)
	if filepath.IsAbs(pattern) {
		base, rel = splitGlobBase(rel)
	}

	g, err := glob.Compile(rel, '/')
	if err != nil {
		return nil, err
	}

	var matches []string
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if _, skip := skippedDirs[d.Name()]; skip && p != base {
				return filepath.SkipDir
			}
			return nil
		}
		r, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		if g.Match(filepath.ToSlash(r)) {
			matches = append(matches, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// splitGlobBase separates the static directory prefix of an absolute
// pattern from the part that contains glob syntax.
func splitGlobBase(pattern string) (string, string) {
	segments := strings.Split(pattern, "/")
	for i, segment := range segments {
		if globChars.MatchString(segment) {
			base := strings.Join(segments[:i], "/")
			if base == "" {
				base = "/"
			}
			return filepath.FromSlash(base), strings.Join(segments[i:], "/")
		}
	}
	return filepath.Dir(filepath.FromSlash(pattern)), filepath.Base(pattern)
}
