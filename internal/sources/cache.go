package sources

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/goliatone/go-awesome-pages/internal/logging"
	"github.com/goliatone/go-awesome-pages/pkg/interfaces"
)

const (
	// CacheFileName is the default cache file name inside the cache dir.
	CacheFileName = "cache.v1.json"
	cacheVersion  = 1

	// DefaultBodyCacheSize bounds how many response bodies stay in memory.
	DefaultBodyCacheSize = 64

	KindRemote = "remote"
	KindLocal  = "local"
)

// Entry records what was last seen for a source. Remote entries carry
// validators for conditional requests, local entries carry file stats.
type Entry struct {
	Kind         string  `json:"kind"`
	ETag         string  `json:"etag,omitempty"`
	LastModified string  `json:"lastModified,omitempty"`
	LastStatus   int     `json:"lastStatus,omitempty"`
	MtimeMs      float64 `json:"mtimeMs,omitempty"`
	Size         int64   `json:"size,omitempty"`
	LastSeen     string  `json:"lastSeen"`
}

// Cache stores per-source validators and recently fetched bodies.
type Cache interface {
	Entry(sourceID string) (Entry, bool)
	SetEntry(sourceID string, entry Entry)
	Body(sourceID string) (string, bool)
	StoreBody(sourceID, body string)
}

type cacheFile struct {
	Version int              `json:"version"`
	Entries map[string]Entry `json:"entries"`
}

// FileCache persists entries to a JSON file and keeps bodies in an
// in-memory LRU. Bodies are never written to disk.
type FileCache struct {
	path   string
	mu     sync.RWMutex
	data   map[string]Entry
	bodies *lru.Cache[string, string]
	logger interfaces.Logger
}

// CacheOption customises a FileCache.
type CacheOption func(*FileCache)

// WithCacheLogger sets the logger used for load and save events.
func WithCacheLogger(logger interfaces.Logger) CacheOption {
	return func(c *FileCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBodyCacheSize overrides DefaultBodyCacheSize.
func WithBodyCacheSize(size int) CacheOption {
	return func(c *FileCache) {
		if size <= 0 {
			return
		}
		if bodies, err := lru.New[string, string](size); err == nil {
			c.bodies = bodies
		}
	}
}

// LoadCache reads path into a FileCache. A missing, unreadable, corrupt or
// version-mismatched file yields an empty cache rather than an error.
func LoadCache(path string, opts ...CacheOption) *FileCache {
	bodies, _ := lru.New[string, string](DefaultBodyCacheSize)
	cache := &FileCache{
		path:   path,
		data:   map[string]Entry{},
		bodies: bodies,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cache)
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			cache.logger.Warn("sources.cache.read_failed", "path", path, "error", err)
		}
		return cache
	}

	var file cacheFile
	if err := json.Unmarshal(raw, &file); err != nil || file.Version != cacheVersion || !validEntries(file.Entries) {
		cache.logger.Warn("sources.cache.corrupt", "path", path)
		return cache
	}
	cache.data = file.Entries
	cache.logger.Debug("sources.cache.loaded", "path", path, "entries", len(file.Entries))
	return cache
}

func validEntries(entries map[string]Entry) bool {
	if entries == nil {
		return false
	}
	for _, entry := range entries {
		if entry.Kind != KindRemote && entry.Kind != KindLocal {
			return false
		}
		if entry.LastSeen == "" {
			return false
		}
	}
	return true
}

// Path returns the backing file path.
func (c *FileCache) Path() string { return c.path }

func (c *FileCache) Entry(sourceID string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.data[sourceID]
	return entry, ok
}

func (c *FileCache) SetEntry(sourceID string, entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[sourceID] = entry
}

func (c *FileCache) Body(sourceID string) (string, bool) {
	if c.bodies == nil {
		return "", false
	}
	return c.bodies.Get(sourceID)
}

func (c *FileCache) StoreBody(sourceID, body string) {
	if c.bodies == nil {
		return
	}
	c.bodies.Add(sourceID, body)
}

// Len reports the number of persisted entries.
func (c *FileCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Save writes the cache file while holding a lock on path+".lock" so
// concurrent runs do not interleave writes.
func (c *FileCache) Save() error {
	if c.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("sources: create cache dir: %w", err)
	}

	lock := flock.New(c.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("sources: lock cache: %w", err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	c.mu.RLock()
	payload, err := json.MarshalIndent(cacheFile{Version: cacheVersion, Entries: c.data}, "", "  ")
	count := len(c.data)
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("sources: encode cache: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("sources: write cache: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("sources: replace cache: %w", err)
	}
	c.logger.Debug("sources.cache.saved", "path", c.path, "entries", count)
	return nil
}

// NoopCache remembers nothing.
type NoopCache struct{}

func (NoopCache) Entry(string) (Entry, bool) { return Entry{}, false }
func (NoopCache) SetEntry(string, Entry)     {}
func (NoopCache) Body(string) (string, bool) { return "", false }
func (NoopCache) StoreBody(string, string)   {}

func nowStamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}
