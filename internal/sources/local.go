package sources

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

type localSource struct {
	path string
	opts Options
}

func newLocalSource(abs string, opts Options) *localSource {
	return &localSource{path: abs, opts: opts}
}

func (s *localSource) ID() string { return "local:" + s.path }

func (s *localSource) Info() Info {
	return Info{Kind: KindFile, Path: s.path, Host: "local"}
}

func (s *localSource) Read(ctx context.Context, cache Cache) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	info, err := os.Stat(s.path)
	if err != nil {
		return "", s.readError(err)
	}
	if info.IsDir() {
		return "", newSourceError(CodeLocalRead, s.ID(), 0, "path is a directory", nil)
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", s.readError(err)
	}

	if cache != nil {
		cache.SetEntry(s.ID(), Entry{
			Kind:     KindLocal,
			MtimeMs:  float64(info.ModTime().UnixNano()) / 1e6,
			Size:     info.Size(),
			LastSeen: nowStamp(),
		})
	}
	s.opts.Logger.Debug("sources.local.read", "source_id", s.ID(), "bytes", len(data), "file", filepath.Base(s.path))
	return string(data), nil
}

func (s *localSource) readError(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return newSourceError(CodeLocalRead, s.ID(), 0, "file does not exist", err)
	}
	return newSourceError(CodeLocalRead, s.ID(), 0, "read file", err)
}
