package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// EnvLogLevel overrides Logging.Level when set.
const EnvLogLevel = "AWESOME_PAGES_LOG_LEVEL"

var ErrLoggingProviderRequired = errors.New("awesome config: logging provider is required")
var ErrLoggingProviderUnknown = errors.New("awesome config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("awesome config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("awesome config: logging format is invalid")

// ErrSourcesTimeoutInvalid rejects non-positive fetch timeouts.
var ErrSourcesTimeoutInvalid = errors.New("awesome config: sources timeout must be positive")
var ErrSourcesMaxBytesInvalid = errors.New("awesome config: sources max bytes must be positive")
var ErrSourcesContentTypesRequired = errors.New("awesome config: at least one allowed content type is required")

// ErrCacheBodySizeInvalid guards the in-memory body cache capacity.
var ErrCacheBodySizeInvalid = errors.New("awesome config: cache body size must be positive when cache is enabled")
var ErrRunnerConcurrencyInvalid = errors.New("awesome config: runner concurrency must be between 1 and 128")
var ErrIndexWeightsInvalid = errors.New("awesome config: index field weights must be zero or positive")
var ErrLanguageConfidenceInvalid = errors.New("awesome config: language min confidence must be within [0, 1]")

// MaxConcurrency bounds Runner.Concurrency.
const MaxConcurrency = 128

// Config aggregates the knobs shared by the CLI and the runner.
type Config struct {
	Logging  LoggingConfig
	Sources  SourcesConfig
	Cache    CacheConfig
	Runner   RunnerConfig
	Index    IndexConfig
	Language LanguageConfig
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// SourcesConfig mirrors the fetch options of remote sources.
type SourcesConfig struct {
	Timeout                    time.Duration
	MaxBytes                   int64
	AllowedContentTypes        []string
	UserAgent                  string
	DisableMdExtensionFallback bool
	GithubToken                string
}

// CacheConfig captures conditional request cache behaviour.
type CacheConfig struct {
	Enabled bool
	// Path of the cache file. Empty means <root>/.awesome-pages/cache.v1.json.
	Path          string
	BodyCacheSize int
}

// RunnerConfig holds defaults for multi-source runs.
type RunnerConfig struct {
	Concurrency int
	Strict      bool
	RootDir     string
}

// IndexConfig sets search index field weights.
type IndexConfig struct {
	TitleWeight       float64
	DescriptionWeight float64
	TagsWeight        float64
}

type LanguageConfig struct {
	MinConfidence float64
}

// DefaultConfig returns the defaults used by the CLI.
func DefaultConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "",
		},
		Sources: SourcesConfig{
			Timeout:  10 * time.Second,
			MaxBytes: 2 * 1024 * 1024,
			AllowedContentTypes: []string{
				"text/markdown",
				"text/x-markdown",
				"text/plain",
				"application/octet-stream",
			},
			UserAgent: "awesome-pages-parser",
		},
		Cache: CacheConfig{
			Enabled:       true,
			BodyCacheSize: 64,
		},
		Runner: RunnerConfig{
			Concurrency: 8,
		},
		Index: IndexConfig{
			TitleWeight:       2,
			DescriptionWeight: 1,
			TagsWeight:        1.5,
		},
		Language: LanguageConfig{
			MinConfidence: 0.5,
		},
	}
}

// ApplyEnv overlays environment overrides using lookup, or os.LookupEnv when
// lookup is nil.
func (cfg *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if level, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(level) != "" {
		cfg.Logging.Level = strings.TrimSpace(level)
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	provider := normalizeProvider(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}

	if cfg.Sources.Timeout <= 0 {
		return ErrSourcesTimeoutInvalid
	}
	if cfg.Sources.MaxBytes <= 0 {
		return ErrSourcesMaxBytesInvalid
	}
	if len(cfg.Sources.AllowedContentTypes) == 0 {
		return ErrSourcesContentTypesRequired
	}

	if cfg.Cache.Enabled && cfg.Cache.BodyCacheSize <= 0 {
		return ErrCacheBodySizeInvalid
	}
	if cfg.Runner.Concurrency < 1 || cfg.Runner.Concurrency > MaxConcurrency {
		return fmt.Errorf("%w: %d", ErrRunnerConcurrencyInvalid, cfg.Runner.Concurrency)
	}

	if cfg.Index.TitleWeight < 0 {
		return fmt.Errorf("%w: title", ErrIndexWeightsInvalid)
	}
	if cfg.Index.DescriptionWeight < 0 {
		return fmt.Errorf("%w: description", ErrIndexWeightsInvalid)
	}
	if cfg.Index.TagsWeight < 0 {
		return fmt.Errorf("%w: tags", ErrIndexWeightsInvalid)
	}
	if cfg.Language.MinConfidence < 0 || cfg.Language.MinConfidence > 1 {
		return ErrLanguageConfidenceInvalid
	}
	return nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
