package runner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-awesome-pages/internal/domain"
	"github.com/goliatone/go-awesome-pages/internal/generator"
	"github.com/goliatone/go-awesome-pages/internal/sources"
	"github.com/goliatone/go-awesome-pages/internal/validation"
)

const awesomeGo = `# Awesome Go

A curated list of Go tools.

## Command Line

- [Cobra](https://github.com/spf13/cobra) - Commander for modern CLI apps (#cli)
- [Viper](https://github.com/spf13/viper) - Configuration with fangs.
`

func fixedPipeline() *Pipeline {
	return NewPipeline(PipelineConfig{
		Clock: func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) },
	})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDecodeOptionsYAML(t *testing.T) {
	opts, err := DecodeOptions([]byte(`
strict: true
concurrency: 4
sources:
  - from: lists/*.md
    outputs:
      - artifact: domain
        to: out/{name}.json
  - from: [a.md, b.md]
    strict: false
    outputs:
      - artifact: [index, csv]
        to: out/{name}.{artifact}
`), ".yaml")
	require.NoError(t, err)

	assert.True(t, opts.Strict)
	assert.Equal(t, 4, opts.Concurrency)
	require.Len(t, opts.Sources, 2)
	assert.Equal(t, []string{"lists/*.md"}, opts.Sources[0].From)
	assert.Equal(t, []string{"domain"}, opts.Sources[0].Outputs[0].Artifact)
	assert.Equal(t, []string{"a.md", "b.md"}, opts.Sources[1].From)
	assert.Equal(t, []string{"index", "csv"}, opts.Sources[1].Outputs[0].Artifact)
	require.NotNil(t, opts.Sources[1].Strict)
	assert.False(t, *opts.Sources[1].Strict)
}

func TestDecodeOptionsTOML(t *testing.T) {
	opts, err := DecodeOptions([]byte(`
concurrency = 2
cache = false

[[sources]]
from = "README.md"

[[sources.outputs]]
artifact = ["rss-xml", "sitemap"]
to = "public/{artifact}"
`), "toml")
	require.NoError(t, err)

	assert.Equal(t, 2, opts.Concurrency)
	assert.False(t, opts.CacheEnabled())
	require.Len(t, opts.Sources, 1)
	assert.Equal(t, []string{"README.md"}, opts.Sources[0].From)
	assert.Equal(t, []string{"rss-xml", "sitemap"}, opts.Sources[0].Outputs[0].Artifact)
	assert.Equal(t, "public/{artifact}", opts.Sources[0].Outputs[0].To)
}

func TestDecodeOptionsRejectsNonStringFrom(t *testing.T) {
	_, err := DecodeOptions([]byte("sources:\n  - from: [1, 2]\n"), ".yml")
	require.Error(t, err)

	var gerr *goerrors.Error
	require.True(t, goerrors.As(err, &gerr))
	assert.Equal(t, TextCodeConfigInvalid, gerr.TextCode)
}

func TestLoadOptionsResolvesRootDirAgainstFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf", "run.yaml")
	writeFile(t, path, "rootDir: ../site\nsources:\n  - from: README.md\n    outputs:\n      - artifact: domain\n        to: out.json\n")

	opts, err := LoadOptions(path)
	require.NoError(t, err)
	abs, err := filepath.Abs(filepath.Join(dir, "site"))
	require.NoError(t, err)
	assert.Equal(t, abs, opts.RootDir)

	writeFile(t, path, "sources: []\n")
	opts, err = LoadOptions(path)
	require.NoError(t, err)
	base, err := filepath.Abs(filepath.Join(dir, "conf"))
	require.NoError(t, err)
	assert.Equal(t, base, opts.RootDir)
}

func TestNormalizeAppliesDefaults(t *testing.T) {
	root := t.TempDir()
	opts, err := Options{
		RootDir: root,
		Sources: []SourceSpec{{From: []string{"README.md"}, Outputs: []Output{{Artifact: []string{"domain"}, To: "out.json"}}}},
	}.Normalize()
	require.NoError(t, err)

	assert.Equal(t, DefaultConcurrency, opts.Concurrency)
	assert.True(t, opts.CacheEnabled())
	assert.Equal(t, filepath.Join(root, CacheDirName, sources.CacheFileName), opts.CachePath)
}

func TestNormalizeRejectsInvalidOptions(t *testing.T) {
	valid := SourceSpec{From: []string{"README.md"}, Outputs: []Output{{Artifact: []string{"domain"}, To: "out.json"}}}
	cases := map[string]Options{
		"no sources":       {},
		"concurrency":      {Concurrency: MaxConcurrency + 1, Sources: []SourceSpec{valid}},
		"empty from":       {Sources: []SourceSpec{{Outputs: valid.Outputs}}},
		"blank from entry": {Sources: []SourceSpec{{From: []string{""}, Outputs: valid.Outputs}}},
		"no outputs":       {Sources: []SourceSpec{{From: valid.From}}},
		"unknown artifact": {Sources: []SourceSpec{{From: valid.From, Outputs: []Output{{Artifact: []string{"pdf"}, To: "x"}}}}},
		"missing to":       {Sources: []SourceSpec{{From: valid.From, Outputs: []Output{{Artifact: []string{"csv"}}}}}},
	}

	for name, opts := range cases {
		t.Run(name, func(t *testing.T) {
			opts.RootDir = t.TempDir()
			_, err := opts.Normalize()
			require.Error(t, err)
			assert.True(t, goerrors.IsCategory(err, goerrors.CategoryBadInput))

			var gerr *goerrors.Error
			require.True(t, goerrors.As(err, &gerr))
			assert.Equal(t, TextCodeConfigInvalid, gerr.TextCode)
		})
	}
}

func TestPlaceholdersRenderKeepsUnknownKeys(t *testing.T) {
	p := Placeholders{"name": "readme", "owner": ""}
	assert.Equal(t, "out/readme-/{nope}.json", p.Render("out/{name}-{owner}/{nope}.json"))
	assert.Equal(t, "domain/readme", p.With("artifact", "domain").Render("{artifact}/{name}"))
	assert.NotContains(t, p, "artifact")
}

func TestPlaceholdersForSources(t *testing.T) {
	gh := placeholdersFor(sources.Info{
		Kind:  sources.KindGithub,
		Owner: "My-Owner_123",
		Repo:  "My_Repo",
		Ref:   "feature/new-branch",
		Path:  "src/api/file.json",
		Host:  "github.com",
	}, "github:My-Owner_123/My_Repo@feature/new-branch:src/api/file.json", "/root")
	assert.Equal(t, "src-api", gh["dir"])
	assert.Equal(t, "file", gh["name"])
	assert.Equal(t, "json", gh["ext"])
	assert.Equal(t, "my-owner-123", gh["owner"])
	assert.Equal(t, "my-repo", gh["repo"])
	assert.Equal(t, "feature-new-branch", gh["ref"])
	assert.Equal(t, "src/api/file.json", gh["path"])
	assert.Equal(t, "github-com", gh["host"])

	web := placeholdersFor(sources.Info{
		Kind: sources.KindHTTP,
		Host: "example.com",
		Path: "/",
		URL:  "https://example.com/",
	}, "http:https://example.com/", "/root")
	assert.Equal(t, "index", web["name"])
	assert.Equal(t, "", web["ext"])
	assert.Equal(t, "", web["dir"])

	web = placeholdersFor(sources.Info{Kind: sources.KindHTTP, URL: "https://example.com/docs/Awesome%20List.md"}, "http:x", "/root")
	assert.Equal(t, "docs", web["dir"])
	assert.Equal(t, "awesome-list", web["name"])
	assert.Equal(t, "md", web["ext"])

	root := t.TempDir()
	local := placeholdersFor(sources.Info{Kind: sources.KindFile, Path: filepath.Join(root, "Lists", "Go Tools.md")}, "local:x", root)
	assert.Equal(t, "lists", local["dir"])
	assert.Equal(t, "go-tools", local["name"])
	assert.Equal(t, "md", local["ext"])
	assert.Equal(t, "Lists/Go Tools.md", local["path"])
	assert.Equal(t, "", local["owner"])
}

func TestExpandInput(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "lists", "b.md"), "# B\n")
	writeFile(t, filepath.Join(root, "lists", "a.md"), "# A\n")
	writeFile(t, filepath.Join(root, "lists", "notes.txt"), "x")
	writeFile(t, filepath.Join(root, "lists", "deep", "c.md"), "# C\n")
	writeFile(t, filepath.Join(root, "node_modules", "pkg", "d.md"), "# D\n")

	got, err := expandInput("lists/*.md", root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "lists", "a.md"), filepath.Join(root, "lists", "b.md")}, got)

	got, err = expandInput("**.md", root)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = expandInput(filepath.Join(root, "lists", "{a,b}.md"), root)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = expandInput("README.md", root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "README.md")}, got)

	got, err = expandInput("github://acme/awesome", root)
	require.NoError(t, err)
	assert.Equal(t, []string{"github://acme/awesome"}, got)
}

func TestRunWritesArtifacts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "lists", "go.md"), awesomeGo)
	writeFile(t, filepath.Join(root, "lists", "rust.md"), strings.ReplaceAll(awesomeGo, "Go", "Rust"))

	report, err := Run(context.Background(), Options{
		RootDir: root,
		Sources: []SourceSpec{{
			From: []string{"lists/*.md"},
			Outputs: []Output{
				{Artifact: []string{"domain", "index"}, To: "dist/{dir}/{name}.{artifact}.json"},
				{Artifact: []string{"csv"}, To: "dist/{name}.{ext}.csv"},
			},
		}},
	}, Dependencies{Pipeline: fixedPipeline()})
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.NotEmpty(t, report.RunID)
	assert.False(t, report.Failed())
	require.Len(t, report.Files, 6)

	first := report.Files[0]
	assert.Equal(t, filepath.Join(root, "dist", "lists", "go.domain.json"), first.File)
	assert.Equal(t, generator.ArtifactDomain, first.Artifact)
	assert.Equal(t, "local:"+filepath.Join(root, "lists", "go.md"), first.SourceID)
	assert.Equal(t, filepath.Join(root, "dist", "lists", "go.index.json"), report.Files[1].File)
	assert.Equal(t, filepath.Join(root, "dist", "go.md.csv"), report.Files[2].File)
	assert.Equal(t, filepath.Join(root, "dist", "lists", "rust.domain.json"), report.Files[3].File)

	payload, err := os.ReadFile(first.File)
	require.NoError(t, err)
	require.NoError(t, validation.ValidateDomainJSON(payload))
	assert.Len(t, payload, first.Bytes)

	var d domain.Domain
	require.NoError(t, json.Unmarshal(payload, &d))
	assert.Equal(t, "2025-03-01T12:00:00.000Z", d.Meta.GeneratedAt)
	require.NotNil(t, d.Meta.Language)
	require.Len(t, d.Items, 2)
	assert.Equal(t, "cobra", d.Items[0].ID)

	index, err := os.ReadFile(report.Files[1].File)
	require.NoError(t, err)
	require.NoError(t, validation.ValidateIndexJSON(index))

	_, err = os.Stat(filepath.Join(root, CacheDirName, sources.CacheFileName))
	require.NoError(t, err)
}

func TestRunRecordsFailuresWhenNotStrict(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ok.md"), awesomeGo)
	disabled := false

	report, err := Run(context.Background(), Options{
		RootDir: root,
		Cache:   &disabled,
		Sources: []SourceSpec{{
			From:    []string{"missing.md", "ok.md"},
			Outputs: []Output{{Artifact: []string{"sitemap"}, To: "{name}.xml"}},
		}},
	}, Dependencies{Pipeline: fixedPipeline()})
	require.NoError(t, err)

	require.True(t, report.Failed())
	require.Len(t, report.Failures, 1)
	failure := report.Failures[0]
	assert.Equal(t, filepath.Join(root, "missing.md"), failure.Input)
	assert.Equal(t, sources.CodeLocalRead, sources.CodeOf(failure.Err))
	assert.True(t, goerrors.IsCategory(failure.Err, goerrors.CategoryOperation))

	require.Len(t, report.Files, 1)
	assert.Equal(t, filepath.Join(root, "ok.xml"), report.Files[0].File)

	_, err = os.Stat(filepath.Join(root, CacheDirName))
	assert.True(t, os.IsNotExist(err))
}

func TestRunStrictSourceAborts(t *testing.T) {
	root := t.TempDir()
	strict := true

	report, err := Run(context.Background(), Options{
		RootDir:     root,
		Concurrency: 1,
		Sources: []SourceSpec{{
			From:    []string{"missing.md"},
			Strict:  &strict,
			Outputs: []Output{{Artifact: []string{"domain"}, To: "{name}.json"}},
		}},
	}, Dependencies{Pipeline: fixedPipeline()})
	require.Error(t, err)
	require.NotNil(t, report)

	var gerr *goerrors.Error
	require.True(t, goerrors.As(err, &gerr))
	assert.Equal(t, TextCodeSourceFailed, gerr.TextCode)
	assert.Equal(t, sources.CodeLocalRead, sources.CodeOf(err))
	assert.Len(t, report.Failures, 1)
}

func TestRunPersistsValidatorsAcrossRuns(t *testing.T) {
	var requests, conditional atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			conditional.Add(1)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(awesomeGo))
	}))
	defer server.Close()

	root := t.TempDir()
	opts := Options{
		RootDir: root,
		Sources: []SourceSpec{{
			From:    []string{server.URL + "/lists/awesome.md"},
			Outputs: []Output{{Artifact: []string{"rss-xml"}, To: "feeds/{dir}-{name}.{artifact}"}},
		}},
	}

	for range 2 {
		report, err := Run(context.Background(), opts, Dependencies{Pipeline: fixedPipeline()})
		require.NoError(t, err)
		require.Len(t, report.Files, 1)
		assert.Equal(t, filepath.Join(root, "feeds", "lists-awesome.rss-xml"), report.Files[0].File)
	}

	// The second run revalidates, finds no body in the fresh in-memory cache
	// and refetches.
	assert.Equal(t, int32(3), requests.Load())
	assert.Equal(t, int32(1), conditional.Load())
}

func TestWatchRerunsWhenInputChanges(t *testing.T) {
	root := t.TempDir()
	input := filepath.Join(root, "README.md")
	writeFile(t, input, awesomeGo)
	disabled := false

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runs := make(chan *Report, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, Options{
			RootDir: root,
			Cache:   &disabled,
			Sources: []SourceSpec{{
				From:    []string{"README.md"},
				Outputs: []Output{{Artifact: []string{"csv"}, To: "out/{name}.csv"}},
			}},
		}, Dependencies{Pipeline: fixedPipeline()}, 20*time.Millisecond, func(report *Report, err error) {
			if err == nil {
				runs <- report
			}
		})
	}()

	select {
	case report := <-runs:
		require.Len(t, report.Files, 1)
	case <-time.After(5 * time.Second):
		t.Fatal("initial run did not complete")
	}

	writeFile(t, input, awesomeGo+"- [Extra](https://extra.dev) - Added later.\n")
	output := filepath.Join(root, "out", "readme.csv")

	deadline := time.After(5 * time.Second)
	for found := false; !found; {
		select {
		case <-runs:
			data, err := os.ReadFile(output)
			require.NoError(t, err)
			found = strings.Contains(string(data), "https://extra.dev")
		case <-deadline:
			t.Fatal("change was not picked up")
		}
	}

	cancel()
	require.NoError(t, <-done)
}

func TestWatchDirs(t *testing.T) {
	root := t.TempDir()
	dirs := watchDirs(Options{
		RootDir: root,
		Sources: []SourceSpec{
			{From: []string{"README.md", "lists/*.md", "https://example.com/a.md", "github://acme/awesome"}},
			{From: []string{"docs/guide.md"}},
		},
	})
	assert.Equal(t, []string{root, filepath.Join(root, "docs"), filepath.Join(root, "lists")}, dirs)
}
