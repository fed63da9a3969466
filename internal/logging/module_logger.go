package logging

import (
	"context"
	"maps"
	"strings"

	"github.com/goliatone/go-awesome-pages/pkg/interfaces"
)

const (
	rootModule      = "awesome"
	parserModule    = "awesome.parser"
	domainModule    = "awesome.domain"
	searchModule    = "awesome.search"
	sourcesModule   = "awesome.sources"
	runnerModule    = "awesome.runner"
	generatorModule = "awesome.generator"
)

const (
	fieldSourceID = "source_id"
	fieldArtifact = "artifact"
	fieldPath     = "path"
)

// ModuleLogger resolves the logger for module from provider and tags it with
// a "module" field. A nil provider yields the no-op logger.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// ParserLogger returns the logger used by the markdown parser.
func ParserLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, parserModule)
}

// DomainLogger returns the logger used by the domain builder.
func DomainLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, domainModule)
}

// SearchLogger returns the logger used by the index builder.
func SearchLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, searchModule)
}

// SourcesLogger returns the logger used by byte sources.
func SourcesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, sourcesModule)
}

// RunnerLogger returns the logger used by the run orchestrator.
func RunnerLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, runnerModule)
}

// GeneratorLogger returns the logger used by artifact writers.
func GeneratorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, generatorModule)
}

// WithSourceContext adds source id, artifact and output path fields. Blank
// values are skipped.
func WithSourceContext(logger interfaces.Logger, sourceID, artifact, path string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(sourceID); trimmed != "" {
		fields[fieldSourceID] = trimmed
	}
	if trimmed := strings.TrimSpace(artifact); trimmed != "" {
		fields[fieldArtifact] = trimmed
	}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldPath] = trimmed
	}
	return WithFields(logger, fields)
}

// WithFields attaches a copy of fields when logger implements
// interfaces.FieldsLogger.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok && len(fields) > 0 {
		return fieldsLogger.WithFields(maps.Clone(fields))
	}
	return logger
}

// NoOp returns a logger that discards everything.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
