package markdown

import (
	"fmt"
	"maps"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-awesome-pages/internal/diagnostics"
	"github.com/goliatone/go-awesome-pages/internal/language"
	"github.com/goliatone/go-awesome-pages/internal/logging"
	"github.com/goliatone/go-awesome-pages/pkg/interfaces"
)

// ParsedDocument is the parser output consumed by the domain builder.
// Treat it as read-only.
type ParsedDocument struct {
	// AST is the visibility-filtered document. Segments point into Source.
	AST    ast.Node
	Source []byte

	SourceID          string
	Title             *string
	Description       *string
	DescriptionHTML   *string
	Frontmatter       map[string]any
	Language          *string
	HasExplicitBlocks bool
	Diagnostics       []diagnostics.Diagnostic
}

// Options configures a Parser.
type Options struct {
	Engine EngineOptions
	Logger interfaces.Logger
}

// Parser converts raw markdown into ParsedDocument values. It holds no
// per-document state and is safe for concurrent use.
type Parser struct {
	engine   goldmark.Markdown
	renderer *Renderer
	logger   interfaces.Logger
}

// NewParser constructs a parser. The zero Options give GFM parsing and a
// no-op logger.
func NewParser(opts Options) *Parser {
	engine := newEngine(opts.Engine)
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Parser{
		engine:   engine,
		renderer: &Renderer{renderer: engine.Renderer()},
		logger:   logger,
	}
}

// Renderer exposes the safe HTML renderer bound to this parser's engine.
func (p *Parser) Renderer() *Renderer {
	return p.renderer
}

// Parse reads text and returns its filtered AST plus metadata. Metadata is
// resolved before the visibility filter runs, so a title or description
// outside the visible blocks still counts.
func (p *Parser) Parse(text string, sourceID string) (*ParsedDocument, error) {
	var diags diagnostics.List

	split := splitFrontmatter(text, &diags)
	source := split.Body
	doc := p.engine.Parser().Parse(textReader(source))

	meta := extractMetadata(doc, source, split.Values, sourceID)
	if meta.TitleFromSource {
		diags.Info(diagnostics.CodeTitleFallback, "no title found; using %q", *meta.Title)
	}
	if meta.Description == nil {
		diags.Info(diagnostics.CodeDescriptionMissing, "no description paragraph found")
	}

	descriptionHTML, err := p.descriptionHTML(meta, source)
	if err != nil {
		return nil, fmt.Errorf("markdown: render description: %w", err)
	}

	var lang *string
	if raw, ok := stringValue(split.Values, "language"); ok {
		normalized, valid := language.ParseBCP47(raw)
		if !valid {
			diags.Warn(diagnostics.CodeLanguageInvalid, "frontmatter language %q is not a BCP 47 tag", raw)
			normalized = language.Fallback
		}
		lang = &normalized
	}

	visibility := applyVisibility(doc, source, split.LineOffset, &diags)

	parsed := &ParsedDocument{
		AST:               doc,
		Source:            source,
		SourceID:          sourceID,
		Title:             meta.Title,
		Description:       meta.Description,
		DescriptionHTML:   descriptionHTML,
		Frontmatter:       maps.Clone(split.Values),
		Language:          lang,
		HasExplicitBlocks: visibility.HasExplicitBlocks,
		Diagnostics:       diags.Entries(),
	}

	p.logger.Debug("markdown.parsed",
		"source_id", sourceID,
		"explicit_blocks", visibility.HasExplicitBlocks,
		"kept_blocks", visibility.Kept,
		"dropped_blocks", visibility.Dropped,
		"diagnostics", len(parsed.Diagnostics),
	)
	return parsed, nil
}

func (p *Parser) descriptionHTML(meta documentMetadata, source []byte) (*string, error) {
	if meta.Description == nil {
		return nil, nil
	}

	var (
		rendered string
		err      error
	)
	if meta.FromFrontmatter {
		rendered, err = p.renderSynthetic(*meta.Description)
	} else if meta.DescriptionNode != nil {
		rendered, err = p.renderer.Node(source, meta.DescriptionNode)
	}
	if err != nil {
		return nil, err
	}
	if rendered == "" {
		return nil, nil
	}
	return &rendered, nil
}

// renderSynthetic renders a frontmatter description as inline markdown
// inside a single paragraph.
func (p *Parser) renderSynthetic(description string) (string, error) {
	source := []byte(strings.TrimSpace(description))
	doc := p.engine.Parser().Parse(textReader(source))

	var inline []ast.Node
	for block := doc.FirstChild(); block != nil; block = block.NextSibling() {
		for child := block.FirstChild(); child != nil; child = child.NextSibling() {
			inline = append(inline, child)
		}
	}
	if len(inline) == 0 {
		return "", nil
	}
	return p.renderer.Paragraph(source, inline, nil)
}

func textReader(source []byte) text.Reader {
	return text.NewReader(source)
}

// Parse uses a default parser.
func Parse(text string, sourceID string) (*ParsedDocument, error) {
	return defaultParser.Parse(text, sourceID)
}

var defaultParser = NewParser(Options{})
