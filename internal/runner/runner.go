package runner

import (
	"context"
	"path/filepath"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-awesome-pages/internal/diagnostics"
	"github.com/goliatone/go-awesome-pages/internal/generator"
	"github.com/goliatone/go-awesome-pages/internal/logging"
	"github.com/goliatone/go-awesome-pages/internal/search"
	"github.com/goliatone/go-awesome-pages/internal/sources"
	"github.com/goliatone/go-awesome-pages/pkg/interfaces"
)

// TextCodeSourceFailed tags the error of a source that could not be
// processed.
const TextCodeSourceFailed = "RUN_SOURCE_FAILED"

// Dependencies lists collaborators of a run. Zero values pick defaults.
type Dependencies struct {
	// LoggerProvider supplies module loggers; nil keeps every stage silent.
	LoggerProvider interfaces.LoggerProvider
	SourceOptions  sources.Options
	Pipeline       *Pipeline
	Generator      generator.Service
	IndexOptions   []search.Option
	BodyCacheSize  int
}

func (d Dependencies) withDefaults() Dependencies {
	if d.SourceOptions.Logger == nil {
		d.SourceOptions.Logger = logging.SourcesLogger(d.LoggerProvider)
	}
	if d.Pipeline == nil {
		d.Pipeline = NewPipeline(PipelineConfig{
			Logger:       logging.ParserLogger(d.LoggerProvider),
			DomainLogger: logging.DomainLogger(d.LoggerProvider),
		})
	}
	if d.Generator == nil {
		d.Generator = generator.NewService(generator.Config{}, generator.Dependencies{
			Writer: generator.NewFileWriter(),
			Logger: logging.GeneratorLogger(d.LoggerProvider),
		})
	}
	if d.BodyCacheSize <= 0 {
		d.BodyCacheSize = sources.DefaultBodyCacheSize
	}
	return d
}

// FileResult describes one written artifact.
type FileResult struct {
	File     string
	Artifact generator.Artifact
	SourceID string
	Bytes    int
	Checksum string
}

// Failure records a source that could not be processed.
type Failure struct {
	Input    string
	SourceID string
	Err      error
}

// Report summarises a run. Files and Failures follow the order of the
// configured sources, not completion order.
type Report struct {
	RunID       string
	Files       []FileResult
	Failures    []Failure
	Diagnostics map[string][]diagnostics.Diagnostic
}

// Failed reports whether any source failed.
func (r *Report) Failed() bool {
	return r != nil && len(r.Failures) > 0
}

type job struct {
	input     string
	spec      SourceSpec
	strict    bool
	expandErr error
}

type jobResult struct {
	sourceID    string
	files       []FileResult
	diagnostics []diagnostics.Diagnostic
	err         error
}

// Run processes every source of opts. Failures are collected in
// Report.Failures. A failure in a strict source also stops the run and is
// returned together with the partial report.
func Run(ctx context.Context, opts Options, deps Dependencies) (*Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	opts, err := opts.Normalize()
	if err != nil {
		return nil, err
	}
	deps = deps.withDefaults()
	if deps.SourceOptions.GithubToken == "" {
		deps.SourceOptions.GithubToken = opts.GithubToken
	}

	runID := uuid.NewString()
	ctx = logging.ContextWithFields(ctx, map[string]any{"run_id": runID})
	logger := logging.RunnerLogger(deps.LoggerProvider).WithContext(ctx)

	jobs := planJobs(opts)
	logger.Info("runner.start", "sources", len(jobs), "concurrency", opts.Concurrency, "root", opts.RootDir)

	var cache sources.Cache = sources.NoopCache{}
	var fileCache *sources.FileCache
	if opts.CacheEnabled() {
		fileCache = sources.LoadCache(opts.CachePath,
			sources.WithCacheLogger(logger),
			sources.WithBodyCacheSize(deps.BodyCacheSize),
		)
		cache = fileCache
	}

	results := make([]jobResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, j := range jobs {
		g.Go(func() error {
			res := processJob(gctx, j, opts.RootDir, deps, cache, logger)
			results[i] = res
			if res.err == nil {
				return nil
			}
			if j.strict {
				return res.err
			}
			logger.Warn("runner.source_failed", "input", j.input, "source_id", res.sourceID, "error", res.err)
			return nil
		})
	}
	runErr := g.Wait()

	if fileCache != nil {
		if err := fileCache.Save(); err != nil {
			logger.Warn("runner.cache_save_failed", "path", fileCache.Path(), "error", err)
		}
	}

	report := &Report{RunID: runID, Diagnostics: map[string][]diagnostics.Diagnostic{}}
	for i, res := range results {
		report.Files = append(report.Files, res.files...)
		if len(res.diagnostics) > 0 {
			report.Diagnostics[res.sourceID] = res.diagnostics
		}
		if res.err != nil {
			report.Failures = append(report.Failures, Failure{Input: jobs[i].input, SourceID: res.sourceID, Err: res.err})
		}
	}

	if runErr != nil {
		logger.Error("runner.aborted", "error", runErr)
		return report, runErr
	}
	logger.Info("runner.done", "files", len(report.Files), "failures", len(report.Failures))
	return report, nil
}

func planJobs(opts Options) []job {
	var jobs []job
	for _, spec := range opts.Sources {
		strict := opts.Strict
		if spec.Strict != nil {
			strict = *spec.Strict
		}
		for _, from := range spec.From {
			inputs, err := expandInput(from, opts.RootDir)
			if err != nil {
				jobs = append(jobs, job{input: from, spec: spec, strict: strict, expandErr: err})
				continue
			}
			for _, input := range inputs {
				jobs = append(jobs, job{input: input, spec: spec, strict: strict})
			}
		}
	}
	return jobs
}

func processJob(ctx context.Context, j job, rootDir string, deps Dependencies, cache sources.Cache, logger interfaces.Logger) jobResult {
	res := jobResult{sourceID: j.input}
	if j.expandErr != nil {
		res.err = sourceFailed(j.expandErr, j.input, "")
		return res
	}

	src, err := sources.New(j.input, deps.SourceOptions)
	if err != nil {
		res.err = sourceFailed(err, j.input, "")
		return res
	}
	res.sourceID = src.ID()

	text, err := src.Read(ctx, cache)
	if err != nil {
		res.err = sourceFailed(err, j.input, res.sourceID)
		return res
	}

	built, err := deps.Pipeline.Process(text, res.sourceID)
	if err != nil {
		res.err = sourceFailed(err, j.input, res.sourceID)
		return res
	}
	res.diagnostics = built.Diagnostics

	in := generator.Input{Domain: built.Domain}
	values := placeholdersFor(src.Info(), res.sourceID, rootDir)

	for _, out := range j.spec.Outputs {
		for _, name := range out.Artifact {
			artifact, err := generator.ParseArtifact(name)
			if err != nil {
				res.err = sourceFailed(err, j.input, res.sourceID)
				return res
			}
			if artifact == generator.ArtifactIndex && in.Index == nil {
				in.Index = search.BuildIndex(built.Domain, deps.IndexOptions...)
			}

			target := values.With("artifact", artifact.String()).Render(out.To)
			if !filepath.IsAbs(target) {
				target = filepath.Join(rootDir, target)
			}

			written, err := deps.Generator.Emit(ctx, artifact, in, target)
			if err != nil {
				res.err = sourceFailed(err, j.input, res.sourceID)
				return res
			}
			logging.WithSourceContext(logger, res.sourceID, artifact.String(), target).
				Debug("runner.artifact_written", "bytes", len(written.Content))
			res.files = append(res.files, FileResult{
				File:     target,
				Artifact: artifact,
				SourceID: res.sourceID,
				Bytes:    len(written.Content),
				Checksum: written.Checksum,
			})
		}
	}
	return res
}

func sourceFailed(err error, input, sourceID string) error {
	if sourceID == "" {
		sourceID = input
	}
	e := goerrors.New("source "+sourceID+" failed", goerrors.CategoryOperation).
		WithTextCode(TextCodeSourceFailed).
		WithMetadata(map[string]any{"input": input, "source_id": sourceID})
	e.Source = err
	return e
}
