package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-awesome-pages/internal/generator"
	"github.com/goliatone/go-awesome-pages/internal/sources"
)

const (
	// TextCodeConfigInvalid tags run option problems.
	TextCodeConfigInvalid = "RUN_CONFIG_INVALID"

	DefaultConcurrency = 8
	MaxConcurrency     = 128

	// CacheDirName is created under RootDir for the default cache path.
	CacheDirName = ".awesome-pages"
)

// Output maps artifacts to a path template.
type Output struct {
	Artifact []string
	To       string
}

// SourceSpec lists inputs sharing the same outputs. Strict overrides
// Options.Strict when set.
type SourceSpec struct {
	From    []string
	Outputs []Output
	Strict  *bool
}

// Options drive one run.
type Options struct {
	Strict      bool
	Concurrency int
	GithubToken string
	// RootDir anchors relative inputs and outputs. Empty means the working
	// directory.
	RootDir string
	// Cache toggles the conditional request cache. Nil means enabled.
	Cache     *bool
	CachePath string
	Sources   []SourceSpec
}

// CacheEnabled reports whether the run uses the cache file.
func (o Options) CacheEnabled() bool {
	return o.Cache == nil || *o.Cache
}

// Normalize fills defaults and validates the result.
func (o Options) Normalize() (Options, error) {
	if strings.TrimSpace(o.RootDir) == "" {
		wd, err := os.Getwd()
		if err != nil {
			return o, configError(err, "resolve working directory")
		}
		o.RootDir = wd
	}
	root, err := filepath.Abs(o.RootDir)
	if err != nil {
		return o, configError(err, "resolve root dir")
	}
	o.RootDir = root

	if o.Concurrency == 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.CachePath == "" {
		o.CachePath = filepath.Join(o.RootDir, CacheDirName, sources.CacheFileName)
	} else if !filepath.IsAbs(o.CachePath) {
		o.CachePath = filepath.Join(o.RootDir, o.CachePath)
	}

	if err := o.Validate(); err != nil {
		return o, err
	}
	return o, nil
}

// Validate implements validation.Validatable and reports problems as a
// single bad-input error.
func (o Options) Validate() error {
	err := validation.ValidateStruct(&o,
		validation.Field(&o.Concurrency, validation.Min(1), validation.Max(MaxConcurrency)),
		validation.Field(&o.Sources, validation.Required),
	)
	if err == nil {
		return nil
	}
	verr := goerrors.FromOzzoValidation(err, "invalid run options")
	verr.Category = goerrors.CategoryBadInput
	return verr.WithTextCode(TextCodeConfigInvalid)
}

// Validate implements validation.Validatable.
func (s SourceSpec) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.From, validation.Required, validation.Each(validation.Required)),
		validation.Field(&s.Outputs, validation.Required),
	)
}

// Validate implements validation.Validatable.
func (o Output) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Artifact, validation.Required, validation.Each(validation.By(knownArtifact))),
		validation.Field(&o.To, validation.Required),
	)
}

func knownArtifact(value any) error {
	name, _ := value.(string)
	if _, err := generator.ParseArtifact(name); err != nil {
		return fmt.Errorf("must be one of %s", artifactNames())
	}
	return nil
}

func artifactNames() string {
	names := make([]string, 0, len(generator.Artifacts()))
	for _, artifact := range generator.Artifacts() {
		names = append(names, artifact.String())
	}
	return strings.Join(names, ", ")
}

func configError(err error, message string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryBadInput, message).WithTextCode(TextCodeConfigInvalid)
}

// runFile is the on-disk shape. from and artifact accept a string or a list.
type runFile struct {
	Strict      bool          `yaml:"strict" toml:"strict" json:"strict"`
	Concurrency int           `yaml:"concurrency" toml:"concurrency" json:"concurrency"`
	GithubToken string        `yaml:"githubToken" toml:"githubToken" json:"githubToken"`
	RootDir     string        `yaml:"rootDir" toml:"rootDir" json:"rootDir"`
	Cache       *bool         `yaml:"cache" toml:"cache" json:"cache"`
	CachePath   string        `yaml:"cachePath" toml:"cachePath" json:"cachePath"`
	Sources     []runFileSpec `yaml:"sources" toml:"sources" json:"sources"`
}

type runFileSpec struct {
	From    any             `yaml:"from" toml:"from" json:"from"`
	Outputs []runFileOutput `yaml:"outputs" toml:"outputs" json:"outputs"`
	Strict  *bool           `yaml:"strict" toml:"strict" json:"strict"`
}

type runFileOutput struct {
	Artifact any    `yaml:"artifact" toml:"artifact" json:"artifact"`
	To       string `yaml:"to" toml:"to" json:"to"`
}

// LoadOptions reads a run file. The format follows the extension: .yaml,
// .yml, .toml or .json. A relative or empty rootDir is resolved against the
// file's directory.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, configError(err, "read run file").WithMetadata(map[string]any{"path": path})
	}
	opts, err := DecodeOptions(data, filepath.Ext(path))
	if err != nil {
		return Options{}, err
	}

	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return Options{}, configError(err, "resolve run file directory")
	}
	switch {
	case opts.RootDir == "":
		opts.RootDir = base
	case !filepath.IsAbs(opts.RootDir):
		opts.RootDir = filepath.Join(base, opts.RootDir)
	}
	return opts, nil
}

// DecodeOptions decodes a run file body. ext selects the format and
// defaults to YAML.
func DecodeOptions(data []byte, ext string) (Options, error) {
	var raw runFile
	var err error
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "toml":
		err = toml.Unmarshal(data, &raw)
	case "json":
		err = json.Unmarshal(data, &raw)
	default:
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return Options{}, configError(err, "decode run file")
	}
	return raw.options()
}

func (f runFile) options() (Options, error) {
	opts := Options{
		Strict:      f.Strict,
		Concurrency: f.Concurrency,
		GithubToken: f.GithubToken,
		RootDir:     f.RootDir,
		Cache:       f.Cache,
		CachePath:   f.CachePath,
	}
	for i, spec := range f.Sources {
		from, err := stringList(spec.From)
		if err != nil {
			return Options{}, configError(err, fmt.Sprintf("sources.%d.from", i))
		}
		converted := SourceSpec{From: from, Strict: spec.Strict}
		for j, out := range spec.Outputs {
			artifacts, err := stringList(out.Artifact)
			if err != nil {
				return Options{}, configError(err, fmt.Sprintf("sources.%d.outputs.%d.artifact", i, j))
			}
			converted.Outputs = append(converted.Outputs, Output{Artifact: artifacts, To: out.To})
		}
		opts.Sources = append(opts.Sources, converted)
	}
	return opts, nil
}

func stringList(value any) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, entry := range v {
			s, ok := entry.(string)
			if !ok {
				return nil, fmt.Errorf("expected string, got %T", entry)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected string or list of strings, got %T", value)
	}
}
