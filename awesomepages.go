package awesomepages

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-awesome-pages/internal/diagnostics"
	"github.com/goliatone/go-awesome-pages/internal/domain"
	"github.com/goliatone/go-awesome-pages/internal/generator"
	"github.com/goliatone/go-awesome-pages/internal/logging"
	"github.com/goliatone/go-awesome-pages/internal/logging/console"
	"github.com/goliatone/go-awesome-pages/internal/logging/gologger"
	"github.com/goliatone/go-awesome-pages/internal/markdown"
	"github.com/goliatone/go-awesome-pages/internal/runner"
	"github.com/goliatone/go-awesome-pages/internal/search"
	"github.com/goliatone/go-awesome-pages/internal/sources"
	"github.com/goliatone/go-awesome-pages/pkg/interfaces"
)

type (
	// Domain is the validated hierarchical form of an awesome list.
	Domain  = domain.Domain
	Section = domain.Section
	Item    = domain.Item
	Meta    = domain.Meta

	// ParsedDocument is the parser output consumed by BuildDomain.
	ParsedDocument = markdown.ParsedDocument

	SearchIndex  = search.Index
	Posting      = search.Posting
	FieldWeights = search.FieldWeights

	Diagnostic = diagnostics.Diagnostic

	// Artifact names a downstream rendering of a domain.
	Artifact         = generator.Artifact
	RenderedArtifact = generator.Output
	ArtifactWriter   = generator.Writer

	RunOptions = runner.Options
	RunReport  = runner.Report
	SourceSpec = runner.SourceSpec
	Output     = runner.Output
)

// Supported artifacts.
const (
	ArtifactDomain    = generator.ArtifactDomain
	ArtifactIndex     = generator.ArtifactIndex
	ArtifactRSSXML    = generator.ArtifactRSSXML
	ArtifactRSSJSON   = generator.ArtifactRSSJSON
	ArtifactSitemap   = generator.ArtifactSitemap
	ArtifactBookmarks = generator.ArtifactBookmarks
	ArtifactCSV       = generator.ArtifactCSV
)

// Result bundles a built domain, its search index and every diagnostic met
// along the way.
type Result struct {
	Domain      *Domain
	Index       *SearchIndex
	Diagnostics []Diagnostic
}

var defaultPipeline = runner.NewPipeline(runner.PipelineConfig{})

// Parse converts markdown text into a ParsedDocument.
func Parse(text, sourceID string) (*ParsedDocument, error) {
	return markdown.Parse(text, sourceID)
}

// BuildDomain builds and validates a Domain with a fresh ID assigner.
func BuildDomain(doc *ParsedDocument, source string) (*Domain, error) {
	return domain.NewBuilder().Build(doc, domain.Metadata{Source: source})
}

// BuildIndex indexes d with the default field weights.
func BuildIndex(d *Domain) *SearchIndex {
	return search.BuildIndex(d)
}

// Process runs parse, language detection, build and indexing with defaults.
func Process(text, sourceID string) (*Result, error) {
	return process(defaultPipeline, text, sourceID, nil)
}

func process(p *runner.Pipeline, text, sourceID string, indexOpts []search.Option) (*Result, error) {
	built, err := p.Process(text, sourceID)
	if err != nil {
		return nil, err
	}
	diags := &diagnostics.List{}
	diags.Append(built.Diagnostics...)
	opts := append([]search.Option{search.WithDiagnostics(diags)}, indexOpts...)
	return &Result{
		Domain:      built.Domain,
		Index:       search.BuildIndex(built.Domain, opts...),
		Diagnostics: diags.Entries(),
	}, nil
}

// Module is the configured entry point used by the CLI.
type Module struct {
	cfg        Config
	provider   interfaces.LoggerProvider
	logger     interfaces.Logger
	pipeline   *runner.Pipeline
	generator  generator.Service
	sourceOpts sources.Options
	indexOpts  []search.Option
}

type moduleOptions struct {
	provider        interfaces.LoggerProvider
	clock           func() time.Time
	writer          generator.Writer
	httpClient      *http.Client
	lookupEnv       sources.LookupEnv
	feedURL         string
	validateSchemas bool
}

// Option customises New.
type Option func(*moduleOptions)

// WithLoggerProvider replaces the provider built from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(o *moduleOptions) { o.provider = provider }
}

// WithClock fixes the generatedAt timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *moduleOptions) { o.clock = now }
}

// WithWriter routes emitted artifacts through w instead of the filesystem.
func WithWriter(w ArtifactWriter) Option {
	return func(o *moduleOptions) { o.writer = w }
}

// WithHTTPClient sets the client used by remote sources.
func WithHTTPClient(client *http.Client) Option {
	return func(o *moduleOptions) { o.httpClient = client }
}

// WithLookupEnv overrides environment lookups for token resolution.
func WithLookupEnv(lookup sources.LookupEnv) Option {
	return func(o *moduleOptions) { o.lookupEnv = lookup }
}

// WithFeedURL publishes url as feed_url in JSON feeds.
func WithFeedURL(url string) Option {
	return func(o *moduleOptions) { o.feedURL = url }
}

// WithSchemaValidation checks domain and index JSON against the embedded
// schemas before they are written.
func WithSchemaValidation(enabled bool) Option {
	return func(o *moduleOptions) { o.validateSchemas = enabled }
}

// New validates cfg and wires the pipeline, sources and generator.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var mo moduleOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&mo)
		}
	}

	provider := mo.provider
	if provider == nil {
		var err error
		if provider, err = NewLoggerProvider(cfg.Logging); err != nil {
			return nil, err
		}
	}

	weights := search.FieldWeights{
		Title:       cfg.Index.TitleWeight,
		Description: cfg.Index.DescriptionWeight,
		Tags:        cfg.Index.TagsWeight,
	}
	indexOpts := []search.Option{
		search.WithFieldWeights(weights),
		search.WithLogger(logging.SearchLogger(provider)),
	}

	writer := mo.writer
	if writer == nil {
		writer = generator.NewFileWriter()
	}

	pipeline := runner.NewPipeline(runner.PipelineConfig{
		Logger:        logging.ParserLogger(provider),
		DomainLogger:  logging.DomainLogger(provider),
		MinConfidence: cfg.Language.MinConfidence,
		Clock:         mo.clock,
	})
	gen := generator.NewService(generator.Config{
		FeedURL:         mo.feedURL,
		ValidateSchemas: mo.validateSchemas,
		IndexOptions:    indexOpts,
	}, generator.Dependencies{
		Writer: writer,
		Logger: logging.GeneratorLogger(provider),
	})
	sourceOpts := sources.Options{
		GithubToken:                cfg.Sources.GithubToken,
		HTTPClient:                 mo.httpClient,
		Timeout:                    cfg.Sources.Timeout,
		MaxBytes:                   cfg.Sources.MaxBytes,
		AllowedContentTypes:        cfg.Sources.AllowedContentTypes,
		DisableMdExtensionFallback: cfg.Sources.DisableMdExtensionFallback,
		UserAgent:                  cfg.Sources.UserAgent,
		LookupEnv:                  mo.lookupEnv,
		Logger:                     logging.SourcesLogger(provider),
	}

	m := &Module{
		cfg:        cfg,
		provider:   provider,
		logger:     logging.ModuleLogger(provider, ""),
		pipeline:   pipeline,
		generator:  gen,
		sourceOpts: sourceOpts,
		indexOpts:  indexOpts,
	}
	return m, nil
}

// Config returns the configuration the module was built with.
func (m *Module) Config() Config { return m.cfg }

// LoggerProvider exposes the provider shared by every stage.
func (m *Module) LoggerProvider() interfaces.LoggerProvider { return m.provider }

// Process builds the domain and index for text.
func (m *Module) Process(text, sourceID string) (*Result, error) {
	return process(m.pipeline, text, sourceID, m.indexOpts)
}

// Index rebuilds the search index of an existing domain using the
// configured field weights.
func (m *Module) Index(d *Domain) *SearchIndex {
	return search.BuildIndex(d, m.indexOpts...)
}

// Load reads spec through the matching source and processes it. No cache
// file is involved.
func (m *Module) Load(ctx context.Context, spec string) (*Result, error) {
	src, err := sources.New(spec, m.sourceOpts)
	if err != nil {
		return nil, err
	}
	text, err := src.Read(ctx, sources.NoopCache{})
	if err != nil {
		return nil, err
	}
	m.logger.Debug("awesome.load", "source_id", src.ID(), "bytes", len(text))
	return m.Process(text, src.ID())
}

// Render produces artifact from res without writing it.
func (m *Module) Render(ctx context.Context, artifact Artifact, res *Result) (*RenderedArtifact, error) {
	return m.generator.Render(ctx, artifact, input(res))
}

// Emit renders artifact and writes it to path.
func (m *Module) Emit(ctx context.Context, artifact Artifact, res *Result, path string) (*RenderedArtifact, error) {
	return m.generator.Emit(ctx, artifact, input(res), path)
}

// Run processes a multi-source run. Zero values in opts fall back to
// Config.Runner and Config.Cache.
func (m *Module) Run(ctx context.Context, opts RunOptions) (*RunReport, error) {
	return runner.Run(ctx, m.runOptions(opts), m.runDependencies())
}

// Watch runs opts once and again whenever a local input changes, until ctx
// is done. onRun sees every report.
func (m *Module) Watch(ctx context.Context, opts RunOptions, onRun func(*RunReport, error)) error {
	return runner.Watch(ctx, m.runOptions(opts), m.runDependencies(), runner.DefaultDebounce, onRun)
}

func (m *Module) runOptions(opts RunOptions) RunOptions {
	if opts.Concurrency == 0 {
		opts.Concurrency = m.cfg.Runner.Concurrency
	}
	if !opts.Strict {
		opts.Strict = m.cfg.Runner.Strict
	}
	if opts.RootDir == "" {
		opts.RootDir = m.cfg.Runner.RootDir
	}
	if opts.Cache == nil {
		enabled := m.cfg.Cache.Enabled
		opts.Cache = &enabled
	}
	if opts.CachePath == "" {
		opts.CachePath = m.cfg.Cache.Path
	}
	return opts
}

func (m *Module) runDependencies() runner.Dependencies {
	return runner.Dependencies{
		LoggerProvider: m.provider,
		SourceOptions:  m.sourceOpts,
		Pipeline:       m.pipeline,
		Generator:      m.generator,
		IndexOptions:   m.indexOpts,
		BodyCacheSize:  m.cfg.Cache.BodyCacheSize,
	}
}

// LoadRunOptions reads a YAML, TOML or JSON run file.
func LoadRunOptions(path string) (RunOptions, error) {
	return runner.LoadOptions(path)
}

func input(res *Result) generator.Input {
	if res == nil {
		return generator.Input{}
	}
	return generator.Input{Domain: res.Domain, Index: res.Index}
}

// ParseArtifact resolves an artifact name such as "rss-xml".
func ParseArtifact(name string) (Artifact, error) {
	return generator.ParseArtifact(name)
}

// Artifacts lists every supported artifact.
func Artifacts() []Artifact {
	return generator.Artifacts()
}

// NewLoggerProvider builds the provider named by cfg.Provider.
func NewLoggerProvider(cfg LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "console":
		opts := console.Options{}
		if level, ok := console.ParseLevel(cfg.Level); ok {
			opts.MinLevel = &level
		}
		return console.NewProvider(opts), nil
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, cfg.Provider)
	}
}
