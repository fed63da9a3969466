package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// WriteRequest describes a rendered artifact routed through a Writer.
type WriteRequest struct {
	Path        string
	Content     []byte
	Artifact    Artifact
	ContentType string
	Checksum    string
}

// Writer abstracts where rendered artifacts end up.
type Writer interface {
	EnsureDir(ctx context.Context, path string) error
	WriteFile(ctx context.Context, req WriteRequest) error
}

// NewFileWriter writes artifacts to the local filesystem. Files are
// replaced atomically so readers never observe a partial artifact.
func NewFileWriter() Writer {
	return fileWriter{perm: 0o644}
}

// NewDiscardWriter accepts every write and stores nothing.
func NewDiscardWriter() Writer {
	return noopWriter{}
}

type fileWriter struct {
	perm os.FileMode
}

func (fileWriter) EnsureDir(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(path) == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o755)
}

func (w fileWriter) WriteFile(ctx context.Context, req WriteRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(req.Path) == "" {
		return errors.New("generator: write requires path")
	}
	if req.Content == nil {
		return errors.New("generator: write requires content")
	}

	dir := filepath.Dir(req.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(req.Path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(req.Content); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpName, w.perm); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, req.Path); err != nil {
		cleanup()
		return err
	}
	return nil
}

type noopWriter struct{}

func (noopWriter) EnsureDir(context.Context, string) error { return nil }

func (noopWriter) WriteFile(context.Context, WriteRequest) error { return nil }

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
