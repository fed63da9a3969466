package generator

import (
	"context"
	"errors"
	"path/filepath"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-awesome-pages/internal/domain"
	"github.com/goliatone/go-awesome-pages/internal/logging"
	"github.com/goliatone/go-awesome-pages/internal/search"
	"github.com/goliatone/go-awesome-pages/internal/validation"
	"github.com/goliatone/go-awesome-pages/pkg/interfaces"
)

// TextCodeRenderFailed tags errors raised while rendering or writing an
// artifact.
const TextCodeRenderFailed = "ARTIFACT_RENDER_FAILED"

var (
	// ErrUnknownArtifact is returned for artifact names without a renderer.
	ErrUnknownArtifact = errors.New("generator: unknown artifact")
	// ErrDomainRequired is returned when no domain is supplied.
	ErrDomainRequired = errors.New("generator: domain is required")
)

// Service renders artifacts from a domain and writes them out.
type Service interface {
	Render(ctx context.Context, artifact Artifact, in Input) (*Output, error)
	Emit(ctx context.Context, artifact Artifact, in Input, path string) (*Output, error)
}

// Config captures rendering toggles.
type Config struct {
	// FeedURL is published as feed_url in the JSON feed when set.
	FeedURL string
	// ValidateSchemas checks domain and index JSON against the embedded
	// schemas before they are returned.
	ValidateSchemas bool
	IndexOptions    []search.Option
}

// Dependencies lists collaborators of the generator.
type Dependencies struct {
	Writer Writer
	Logger interfaces.Logger
}

// Input carries what renderers read. Index is built on demand when nil.
type Input struct {
	Domain *domain.Domain
	Index  *search.Index
}

// Output is one rendered artifact.
type Output struct {
	Artifact    Artifact
	Path        string
	Content     []byte
	ContentType string
	Checksum    string
}

type renderFunc func(cfg Config, in Input) ([]byte, error)

var renderers = map[Artifact]renderFunc{
	ArtifactDomain:    renderDomainJSON,
	ArtifactIndex:     renderIndexJSON,
	ArtifactRSSXML:    func(_ Config, in Input) ([]byte, error) { return renderRSS(in.Domain), nil },
	ArtifactRSSJSON:   func(cfg Config, in Input) ([]byte, error) { return renderJSONFeed(in.Domain, cfg.FeedURL) },
	ArtifactSitemap:   func(_ Config, in Input) ([]byte, error) { return renderSitemap(in.Domain), nil },
	ArtifactBookmarks: func(_ Config, in Input) ([]byte, error) { return renderBookmarks(in.Domain), nil },
	ArtifactCSV:       func(_ Config, in Input) ([]byte, error) { return renderCSV(in.Domain) },
}

// NewService wires a generator with cfg and deps. A nil writer discards
// output and a nil logger is silent.
func NewService(cfg Config, deps Dependencies) Service {
	if deps.Writer == nil {
		deps.Writer = NewDiscardWriter()
	}
	if deps.Logger == nil {
		deps.Logger = logging.NoOp()
	}
	return &service{cfg: cfg, deps: deps}
}

type service struct {
	cfg  Config
	deps Dependencies
}

func (s *service) Render(ctx context.Context, artifact Artifact, in Input) (*Output, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if in.Domain == nil {
		return nil, ErrDomainRequired
	}
	render, ok := renderers[artifact]
	if !ok {
		return nil, goerrors.Wrap(ErrUnknownArtifact, goerrors.CategoryBadInput, "unknown artifact "+artifact.String()).
			WithTextCode(TextCodeRenderFailed)
	}

	content, err := render(s.cfg, in)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "render "+artifact.String()).
			WithTextCode(TextCodeRenderFailed).
			WithMetadata(map[string]any{"artifact": artifact.String(), "source": in.Domain.Meta.Source})
	}

	s.deps.Logger.Debug("generator.render", "artifact", artifact.String(), "bytes", len(content))
	return &Output{
		Artifact:    artifact,
		Content:     content,
		ContentType: artifact.ContentType(),
		Checksum:    computeHash(content),
	}, nil
}

func (s *service) Emit(ctx context.Context, artifact Artifact, in Input, path string) (*Output, error) {
	out, err := s.Render(ctx, artifact, in)
	if err != nil {
		return nil, err
	}
	out.Path = path

	if err := s.deps.Writer.EnsureDir(ctx, filepath.Dir(path)); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "create output directory").
			WithTextCode(TextCodeRenderFailed).
			WithMetadata(map[string]any{"path": path})
	}
	if err := s.deps.Writer.WriteFile(ctx, WriteRequest{
		Path:        path,
		Content:     out.Content,
		Artifact:    artifact,
		ContentType: out.ContentType,
		Checksum:    out.Checksum,
	}); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "write artifact").
			WithTextCode(TextCodeRenderFailed).
			WithMetadata(map[string]any{"path": path, "artifact": artifact.String()})
	}

	s.deps.Logger.Info("generator.write", "artifact", artifact.String(), "path", path, "checksum", out.Checksum)
	return out, nil
}

func renderDomainJSON(cfg Config, in Input) ([]byte, error) {
	payload, err := marshalIndented(in.Domain)
	if err != nil {
		return nil, err
	}
	if cfg.ValidateSchemas {
		if err := validation.ValidateDomainJSON(payload); err != nil {
			return nil, err
		}
	}
	return payload, nil
}

func renderIndexJSON(cfg Config, in Input) ([]byte, error) {
	idx := in.Index
	if idx == nil {
		idx = search.BuildIndex(in.Domain, cfg.IndexOptions...)
	}
	payload, err := marshalIndented(idx)
	if err != nil {
		return nil, err
	}
	if cfg.ValidateSchemas {
		if err := validation.ValidateIndexJSON(payload); err != nil {
			return nil, err
		}
	}
	return payload, nil
}
