package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-awesome-pages/pkg/interfaces"
)

type recordingLogger struct {
	fields   []map[string]any
	contexts []context.Context
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	r.fields = append(r.fields, copied)
	return r
}

func (r *recordingLogger) WithContext(ctx context.Context) interfaces.Logger {
	r.contexts = append(r.contexts, ctx)
	return r
}

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, parserModule)
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger fallback, got %T", logger)
	}
	logger.WithContext(context.Background()).Info("noop")
}

func TestModuleLoggerAnnotatesModule(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	_ = SearchLogger(provider)

	if len(provider.requested) != 1 || provider.requested[0] != searchModule {
		t.Fatalf("expected %s request, got %v", searchModule, provider.requested)
	}
	if len(rec.fields) != 1 || rec.fields[0]["module"] != searchModule {
		t.Fatalf("expected module field, got %v", rec.fields)
	}
}

func TestModuleLoggerDefaultsToRoot(t *testing.T) {
	provider := &stubProvider{logger: &recordingLogger{}}
	_ = ModuleLogger(provider, "")
	if provider.requested[0] != rootModule {
		t.Fatalf("expected %s, got %v", rootModule, provider.requested)
	}
}

func TestWithSourceContextSkipsBlankValues(t *testing.T) {
	rec := &recordingLogger{}
	WithSourceContext(rec, " github:a/b@main:README.md ", "", "out/index.json")

	if len(rec.fields) != 1 {
		t.Fatalf("expected one WithFields call, got %d", len(rec.fields))
	}
	fields := rec.fields[0]
	if fields[fieldSourceID] != "github:a/b@main:README.md" {
		t.Fatalf("unexpected source id %v", fields[fieldSourceID])
	}
	if _, ok := fields[fieldArtifact]; ok {
		t.Fatalf("blank artifact should be skipped")
	}
	if fields[fieldPath] != "out/index.json" {
		t.Fatalf("unexpected path %v", fields[fieldPath])
	}
}

func TestContextFieldsMerge(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]any{"run_id": "a"})
	ctx = ContextWithFields(ctx, map[string]any{"source_id": "b"})

	fields := ContextFields(ctx)
	if fields["run_id"] != "a" || fields["source_id"] != "b" {
		t.Fatalf("unexpected fields %v", fields)
	}

	fields["run_id"] = "mutated"
	if ContextFields(ctx)["run_id"] != "a" {
		t.Fatalf("expected ContextFields to return a copy")
	}
}
