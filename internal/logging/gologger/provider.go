package gologger

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-awesome-pages/internal/logging"
	"github.com/goliatone/go-awesome-pages/pkg/interfaces"
)

// Config mirrors the logging section of the runtime configuration.
type Config struct {
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

var levels = map[string]string{
	"trace":   glog.Trace,
	"debug":   glog.Debug,
	"info":    glog.Info,
	"warn":    glog.Warn,
	"warning": glog.Warn,
	"error":   glog.Error,
	"fatal":   glog.Fatal,
}

// Provider hands out go-logger backed loggers, one per pipeline stage.
// Loggers are cached by name so every stage shares a single child logger.
type Provider struct {
	root *glog.BaseLogger

	mu    sync.Mutex
	named map[string]interfaces.Logger
}

// NewProvider builds the root go-logger instance for cfg. JSON is the
// default format.
func NewProvider(cfg Config) (*Provider, error) {
	var options []glog.Option

	format := strings.ToLower(strings.TrimSpace(cfg.Format))
	switch format {
	case "", "json":
		options = append(options, glog.WithLoggerTypeJSON())
	case "console":
		options = append(options, glog.WithLoggerTypeConsole())
	case "pretty":
		options = append(options, glog.WithLoggerTypePretty())
	default:
		return nil, fmt.Errorf("logging: unsupported go-logger format %q", cfg.Format)
	}
	if level, ok := levels[strings.ToLower(strings.TrimSpace(cfg.Level))]; ok {
		options = append(options, glog.WithLevel(level))
	}
	if cfg.AddSource {
		options = append(options, glog.WithAddSource(true))
	}

	root := glog.NewLogger(options...)
	var focus []string
	for _, name := range cfg.Focus {
		if name = strings.TrimSpace(name); name != "" {
			focus = append(focus, name)
		}
	}
	if len(focus) > 0 {
		root.Focus(focus...)
	}

	return &Provider{root: root, named: map[string]interfaces.Logger{}}, nil
}

// GetLogger implements interfaces.LoggerProvider. An empty name returns the
// root logger.
func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil || p.root == nil {
		return logging.NoOp()
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return &stageLogger{inner: p.root}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if logger, ok := p.named[name]; ok {
		return logger
	}
	logger := &stageLogger{inner: p.root.GetLogger(name)}
	p.named[name] = logger
	return logger
}

// stageLogger forwards to go-logger and carries fields through WithFields
// and WithContext.
type stageLogger struct {
	inner glog.Logger
}

var (
	_ interfaces.Logger       = (*stageLogger)(nil)
	_ interfaces.FieldsLogger = (*stageLogger)(nil)
)

func (l *stageLogger) Trace(msg string, args ...any) { l.inner.Trace(msg, args...) }
func (l *stageLogger) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *stageLogger) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *stageLogger) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *stageLogger) Error(msg string, args ...any) { l.inner.Error(msg, args...) }
func (l *stageLogger) Fatal(msg string, args ...any) { l.inner.Fatal(msg, args...) }

func (l *stageLogger) WithFields(fields map[string]any) interfaces.Logger {
	with, ok := l.inner.(glog.FieldsLogger)
	if !ok || len(fields) == 0 {
		return l
	}
	return derive(with.WithFields(maps.Clone(fields)))
}

func (l *stageLogger) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return l
	}
	return derive(l.inner.WithContext(ctx))
}

func derive(inner glog.Logger) interfaces.Logger {
	if inner == nil {
		return logging.NoOp()
	}
	return &stageLogger{inner: inner}
}
