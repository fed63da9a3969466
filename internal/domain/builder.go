package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/yuin/goldmark/ast"

	"github.com/goliatone/go-awesome-pages/internal/diagnostics"
	"github.com/goliatone/go-awesome-pages/internal/identity"
	"github.com/goliatone/go-awesome-pages/internal/logging"
	"github.com/goliatone/go-awesome-pages/internal/markdown"
	"github.com/goliatone/go-awesome-pages/internal/tags"
	"github.com/goliatone/go-awesome-pages/pkg/interfaces"
)

// Metadata carries the values the parsed document cannot supply.
type Metadata struct {
	// Source identifies the input, e.g. "local:/abs/README.md". Required.
	Source string
	// GeneratedAt is an RFC 3339 UTC timestamp. Empty means now.
	GeneratedAt string
	// Language overrides the parsed document language.
	Language *string
}

// Result is a built domain plus the soft conditions met while building.
type Result struct {
	Domain      *Domain
	Diagnostics []diagnostics.Diagnostic
}

// Builder folds a parsed document into a Domain.
type Builder struct {
	now      func() time.Time
	logger   interfaces.Logger
	renderer *markdown.Renderer
}

// Option configures a Builder.
type Option func(*Builder)

// WithClock overrides the timestamp source used when Metadata.GeneratedAt is
// empty.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithLogger sets the builder logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithRenderer sets the HTML renderer used for item descriptions.
func WithRenderer(r *markdown.Renderer) Option {
	return func(b *Builder) {
		if r != nil {
			b.renderer = r
		}
	}
}

// NewBuilder returns a builder with a UTC clock and a no-op logger.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		now:    func() time.Time { return time.Now().UTC() },
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	if b.renderer == nil {
		b.renderer = markdown.NewRenderer()
	}
	return b
}

// Build walks the document and returns a validated Domain. Validation
// failures are returned as a single aggregated validation error.
func (b *Builder) Build(doc *markdown.ParsedDocument, meta Metadata) (*Domain, error) {
	res, err := b.BuildWithDiagnostics(doc, meta)
	if err != nil {
		return nil, err
	}
	return res.Domain, nil
}

// BuildWithDiagnostics is Build plus the builder diagnostics.
func (b *Builder) BuildWithDiagnostics(doc *markdown.ParsedDocument, meta Metadata) (*Result, error) {
	if doc == nil || doc.AST == nil {
		return nil, validationError(fieldError("document", "parsed document is required", nil))
	}

	env := stepEnv{
		source:   doc.Source,
		renderer: b.renderer,
		assigner: identity.NewAssigner(),
		diags:    &diagnostics.List{},
	}

	state := buildState{}
	var walkErr error
	_ = ast.Walk(doc.AST, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		next, err := step(state, node, env)
		if err != nil {
			walkErr = err
			return ast.WalkStop, nil
		}
		state = next
		return ast.WalkContinue, nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("domain: build: %w", walkErr)
	}

	generatedAt := strings.TrimSpace(meta.GeneratedAt)
	if generatedAt == "" {
		generatedAt = b.now().UTC().Format(GeneratedAtLayout)
	}
	language := doc.Language
	if meta.Language != nil {
		language = meta.Language
	}

	d := &Domain{
		SchemaVersion: SchemaVersion,
		Meta: Meta{
			Title:           nonEmpty(doc.Title),
			Description:     nonEmpty(doc.Description),
			DescriptionHTML: nonEmpty(doc.DescriptionHTML),
			GeneratedAt:     generatedAt,
			Source:          meta.Source,
			Language:        nonEmpty(language),
			Frontmatter:     doc.Frontmatter,
		},
		Sections: state.sections,
		Items:    state.items,
	}
	if d.Sections == nil {
		d.Sections = []Section{}
	}
	if d.Items == nil {
		d.Items = []Item{}
	}

	if err := Validate(d); err != nil {
		b.logger.Warn("domain.validation_failed", "source", meta.Source, "error", err)
		return nil, err
	}

	b.logger.Debug("domain.built",
		"source", meta.Source,
		"sections", len(d.Sections),
		"items", len(d.Items),
		"diagnostics", env.diags.Len(),
	)
	return &Result{Domain: d, Diagnostics: env.diags.Entries()}, nil
}

// buildState is the accumulator folded over the walk.
type buildState struct {
	sections []Section
	items    []Item
	// openStack[depth] is the id of the open section at that depth; nil
	// marks a skipped level.
	openStack    []*string
	sectionOrder int
}

// stepEnv holds what a step reads but never replaces.
type stepEnv struct {
	source   []byte
	renderer *markdown.Renderer
	assigner *identity.Assigner
	diags    *diagnostics.List
}

// currentSection is the deepest open section.
func (s buildState) currentSection() (string, bool) {
	for i := len(s.openStack) - 1; i >= 0; i-- {
		if s.openStack[i] != nil {
			return *s.openStack[i], true
		}
	}
	return "", false
}

// step folds one node into the state. Headings of level 2 or deeper open
// sections; lists under an open section produce items. Everything else
// passes through unchanged.
func step(state buildState, node ast.Node, env stepEnv) (buildState, error) {
	switch n := node.(type) {
	case *ast.Heading:
		if n.Level < 2 {
			return state, nil
		}
		return openSection(state, n, env), nil
	case *ast.List:
		return collectItems(state, n, env)
	default:
		return state, nil
	}
}

func openSection(state buildState, heading *ast.Heading, env stepEnv) buildState {
	depth := heading.Level - 2
	title := strings.TrimSpace(markdown.FlattenText(heading, env.source))
	id := identity.Slugify(title)

	var parentID *string
	if depth > 0 && depth-1 < len(state.openStack) && state.openStack[depth-1] != nil {
		parent := *state.openStack[depth-1]
		parentID = &parent
	}

	state.sections = append(state.sections, Section{
		ID:       id,
		Title:    title,
		ParentID: parentID,
		Depth:    depth,
		Order:    state.sectionOrder,
		Path:     sectionPath(parentID, id),
	})
	state.sectionOrder++

	stack := make([]*string, depth+1)
	copy(stack, state.openStack)
	stack[depth] = &id
	state.openStack = stack
	return state
}

func collectItems(state buildState, list *ast.List, env stepEnv) (buildState, error) {
	sectionID, ok := state.currentSection()
	if !ok {
		env.diags.Info(diagnostics.CodeListOutsideSection, "list before the first section heading is ignored")
		return state, nil
	}

	order := 0
	for child := list.FirstChild(); child != nil; child = child.NextSibling() {
		para := firstParagraph(child)
		if para == nil {
			env.diags.Info(diagnostics.CodeItemWithoutParagraph, "list item without text in section %q is ignored", sectionID)
			continue
		}

		item, err := buildItem(para, sectionID, order, env)
		if err != nil {
			return state, err
		}
		state.items = append(state.items, item)
		order++
	}
	return state, nil
}

func buildItem(para ast.Node, sectionID string, order int, env stepEnv) (Item, error) {
	link := firstLink(para)

	var title, url string
	if link != nil {
		title = strings.TrimSpace(markdown.FlattenText(link, env.source))
		url = linkURL(link, env.source)
	} else {
		title = strings.TrimSpace(markdown.FlattenText(para, env.source))
	}

	var rest []ast.Node
	for child := para.FirstChild(); child != nil; child = child.NextSibling() {
		if child == link {
			continue
		}
		rest = append(rest, child)
	}

	normalized := stripSeparators(collapseSpace(markdown.FlattenNodes(rest, env.source)))
	clean, itemTags := "", []string{}
	if normalized != "" {
		clean, itemTags = tags.ExtractInline(normalized)
		if len(itemTags) == 0 && malformedTagBlock.MatchString(clean) {
			env.diags.Info(diagnostics.CodeTagBlockWithoutTags, "trailing block in %q is not a tag list", title)
		}
	}

	html, err := env.renderer.Paragraph(env.source, rest, stripSeparators)
	if err != nil {
		return Item{}, err
	}

	return Item{
		ID:              env.assigner.Assign(sectionID, title),
		SectionID:       sectionID,
		Title:           title,
		URL:             url,
		Description:     stringOrNil(clean),
		DescriptionHTML: stringOrNil(html),
		Order:           order,
		Tags:            itemTags,
	}, nil
}

var malformedTagBlock = regexp.MustCompile(`\([^()]*#[^()]*\)\s*$`)

func firstParagraph(listItem ast.Node) ast.Node {
	for child := listItem.FirstChild(); child != nil; child = child.NextSibling() {
		switch child.Kind() {
		case ast.KindParagraph, ast.KindTextBlock:
			return child
		}
	}
	return nil
}

func firstLink(para ast.Node) ast.Node {
	for child := para.FirstChild(); child != nil; child = child.NextSibling() {
		switch child.Kind() {
		case ast.KindLink, ast.KindAutoLink:
			return child
		}
	}
	return nil
}

func linkURL(node ast.Node, source []byte) string {
	switch n := node.(type) {
	case *ast.Link:
		return strings.TrimSpace(string(n.Destination))
	case *ast.AutoLink:
		url := string(n.URL(source))
		if n.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(strings.ToLower(url), "mailto:") {
			url = "mailto:" + url
		}
		return url
	}
	return ""
}

func collapseSpace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

func stripSeparators(value string) string {
	return strings.TrimLeftFunc(value, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '–' || r == '—' || r == ':'
	})
}

func stringOrNil(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func nonEmpty(value *string) *string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	v := *value
	return &v
}
