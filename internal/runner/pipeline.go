package runner

import (
	"strings"
	"time"

	"github.com/goliatone/go-awesome-pages/internal/domain"
	"github.com/goliatone/go-awesome-pages/internal/language"
	"github.com/goliatone/go-awesome-pages/internal/markdown"
	"github.com/goliatone/go-awesome-pages/pkg/interfaces"
)

// Pipeline turns markdown text into a validated domain. It is safe for
// concurrent use; every Process call gets its own ID assigner.
type Pipeline struct {
	parser        *markdown.Parser
	builder       *domain.Builder
	detector      *language.Detector
	minConfidence float64
	now           func() time.Time
}

// PipelineConfig configures NewPipeline. Zero values pick defaults.
type PipelineConfig struct {
	Logger        interfaces.Logger
	DomainLogger  interfaces.Logger
	Detector      *language.Detector
	MinConfidence float64
	Clock         func() time.Time
}

// NewPipeline wires a parser, a builder and a language detector.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	parser := markdown.NewParser(markdown.Options{Logger: cfg.Logger})
	now := cfg.Clock
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	detector := cfg.Detector
	if detector == nil {
		detector = language.NewDetector()
	}
	minConfidence := cfg.MinConfidence
	if minConfidence <= 0 {
		minConfidence = language.DefaultMinConfidence
	}
	return &Pipeline{
		parser: parser,
		builder: domain.NewBuilder(
			domain.WithClock(now),
			domain.WithLogger(cfg.DomainLogger),
			domain.WithRenderer(parser.Renderer()),
		),
		detector:      detector,
		minConfidence: minConfidence,
		now:           now,
	}
}

// Process parses text, fills in the document language when frontmatter did
// not declare one and builds the domain. Parser diagnostics come first in
// the result.
func (p *Pipeline) Process(text, sourceID string) (*domain.Result, error) {
	doc, err := p.parser.Parse(text, sourceID)
	if err != nil {
		return nil, err
	}

	meta := domain.Metadata{
		Source:      sourceID,
		GeneratedAt: p.now().UTC().Format(domain.GeneratedAtLayout),
	}
	if doc.Language == nil {
		lang := p.detector.Detect(detectionText(doc), p.minConfidence)
		meta.Language = &lang
	}

	res, err := p.builder.BuildWithDiagnostics(doc, meta)
	if err != nil {
		return nil, err
	}
	parsed := doc.Diagnostics[:len(doc.Diagnostics):len(doc.Diagnostics)]
	res.Diagnostics = append(parsed, res.Diagnostics...)
	return res, nil
}

func detectionText(doc *markdown.ParsedDocument) string {
	var parts []string
	if doc.Title != nil {
		parts = append(parts, *doc.Title)
	}
	if doc.Description != nil {
		parts = append(parts, *doc.Description)
	}
	return strings.Join(parts, " ")
}
