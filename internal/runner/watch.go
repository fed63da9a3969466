package runner

import (
	"context"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-awesome-pages/internal/logging"
)

// DefaultDebounce groups bursts of file events into one rerun.
const DefaultDebounce = 300 * time.Millisecond

// WatchFunc receives the outcome of every run started by Watch.
type WatchFunc func(report *Report, err error)

// Watch runs opts once and again whenever a local input changes, until ctx
// is done. Remote sources are processed on every run but never watched.
// Writes to the run's own outputs and cache file are ignored.
func Watch(ctx context.Context, opts Options, deps Dependencies, debounce time.Duration, onRun WatchFunc) error {
	opts, err := opts.Normalize()
	if err != nil {
		return err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if onRun == nil {
		onRun = func(*Report, error) {}
	}
	logger := logging.RunnerLogger(deps.LoggerProvider)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "create file watcher")
	}
	defer watcher.Close()

	dirs := watchDirs(opts)
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			logger.Warn("runner.watch_add_failed", "dir", dir, "error", err)
		}
	}
	logger.Info("runner.watch", "dirs", len(dirs), "debounce", debounce.String())

	ignored := map[string]struct{}{opts.CachePath: {}}
	run := func() {
		report, err := Run(ctx, opts, deps)
		if report != nil {
			ignored = map[string]struct{}{opts.CachePath: {}}
			for _, file := range report.Files {
				ignored[file.File] = struct{}{}
			}
		}
		onRun(report, err)
	}
	run()

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event, ignored) {
				continue
			}
			logger.Debug("runner.watch_event", "path", event.Name, "op", event.Op.String())
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("runner.watch_error", "error", err)
		case <-timer.C:
			run()
		}
	}
}

func relevant(event fsnotify.Event, ignored map[string]struct{}) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(event.Name)
	if _, skip := ignored[name]; skip {
		return false
	}
	// Atomic writes land through temp files next to the target.
	return filepath.Base(name)[0] != '.'
}

// watchDirs lists the directories holding local inputs. Globs watch their
// static base directory only, not its subdirectories.
func watchDirs(opts Options) []string {
	seen := map[string]struct{}{}
	for _, spec := range opts.Sources {
		for _, from := range spec.From {
			if remoteInput.MatchString(from) {
				continue
			}
			abs := from
			if !filepath.IsAbs(abs) {
				abs = filepath.Join(opts.RootDir, from)
			}
			dir := filepath.Dir(abs)
			if globChars.MatchString(from) {
				dir, _ = splitGlobBase(filepath.ToSlash(abs))
			}
			seen[dir] = struct{}{}
		}
	}
	dirs := make([]string, 0, len(seen))
	for dir := range seen {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}
