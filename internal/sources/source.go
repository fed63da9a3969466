package sources

import (
	"context"
	"net/http"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/goliatone/go-awesome-pages/internal/logging"
	"github.com/goliatone/go-awesome-pages/pkg/interfaces"
)

// Defaults applied by New.
const (
	DefaultTimeout   = 10 * time.Second
	DefaultMaxBytes  = 2 * 1024 * 1024
	DefaultUserAgent = "awesome-pages-parser"
	DefaultRef       = "main"
	DefaultPath      = "README.md"
)

// DefaultAllowedContentTypes are accepted for http sources.
var DefaultAllowedContentTypes = []string{
	"text/markdown",
	"text/x-markdown",
	"text/plain",
	"application/octet-stream",
}

// Kind identifies the transport behind a source.
type Kind string

const (
	KindGithub Kind = "github"
	KindHTTP   Kind = "http"
	KindFile   Kind = "local"
)

// Info describes a source for logging and output path templating.
type Info struct {
	Kind  Kind
	Owner string
	Repo  string
	Ref   string
	Path  string
	Host  string
	URL   string
}

// Source yields markdown text.
type Source interface {
	ID() string
	Info() Info
	Read(ctx context.Context, cache Cache) (string, error)
}

// Options tune how sources fetch.
type Options struct {
	GithubToken                string
	HTTPClient                 *http.Client
	Timeout                    time.Duration
	MaxBytes                   int64
	AllowedContentTypes        []string
	DisableMdExtensionFallback bool
	UserAgent                  string

	// RawBaseURL and APIBaseURL point github sources at alternative hosts.
	RawBaseURL string
	APIBaseURL string
	LookupEnv  LookupEnv
	Logger     interfaces.Logger
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = DefaultMaxBytes
	}
	if len(o.AllowedContentTypes) == 0 {
		o.AllowedContentTypes = DefaultAllowedContentTypes
	}
	if strings.TrimSpace(o.UserAgent) == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: o.Timeout}
	}
	if o.RawBaseURL == "" {
		o.RawBaseURL = "https://raw.githubusercontent.com"
	}
	if o.Logger == nil {
		o.Logger = logging.NoOp()
	}
	return o
}

var githubSpec = regexp.MustCompile(`^github:(?://)?([^/@:\s]+)/([^/@:\s]+)(?:@([^:\s]+))?(?::(.+))?$`)

// New resolves spec into a Source:
//
//	github://owner/repo@ref:path   GitHub file (ref main, path README.md by default)
//	http(s)://host/path            plain HTTP fetch
//	anything else                  local file
func New(spec string, opts Options) (Source, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, newSourceError(CodeInvalidSource, "", 0, "empty source", nil)
	}
	opts = opts.withDefaults()

	lower := strings.ToLower(spec)
	switch {
	case strings.HasPrefix(lower, "github:"):
		match := githubSpec.FindStringSubmatch(spec)
		if match == nil {
			return nil, newSourceError(CodeInvalidSource, spec, 0, "expected github://owner/repo@ref:path", nil)
		}
		ref := match[3]
		if ref == "" {
			ref = DefaultRef
		}
		filePath := strings.TrimPrefix(match[4], "/")
		if filePath == "" {
			filePath = DefaultPath
		}
		return newGithubSource(match[1], match[2], ref, filePath, opts), nil
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		parsed, err := url.Parse(spec)
		if err != nil || parsed.Host == "" {
			return nil, newSourceError(CodeInvalidSource, spec, 0, "invalid url", err)
		}
		return newHTTPSource(parsed, opts), nil
	default:
		abs, err := filepath.Abs(spec)
		if err != nil {
			return nil, newSourceError(CodeInvalidSource, spec, 0, "invalid path", err)
		}
		return newLocalSource(abs, opts), nil
	}
}
