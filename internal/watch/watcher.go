// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Config.Debounce is not positive.
const DefaultDebounce = 300 * time.Millisecond

// defaultIgnores are never watched: VCS metadata, installed dependencies,
// editor swap files, and the temporary files of atomic manifest writes.
var defaultIgnores = []string{
	"**/.git/**",
	"**/vendor/**",
	"**/node_modules/**",
	"**/*.tmp",
	"**/*.swp",
	"**/*~",
	"**/.DS_Store",
}

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("watch: Run called more than once")

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// BaseDir is the root project directory. Empty selects the working directory.
		BaseDir string
		// Patterns are slash-separated doublestar patterns relative to BaseDir.
		// An empty list matches every file that is not ignored.
		Patterns []string
		// Ignore extends the built-in ignore patterns.
		Ignore []string
		// Debounce is the quiet period after the last event.
		Debounce time.Duration
		// OnChange receives the sorted, deduplicated paths (relative to
		// BaseDir) changed since the previous call. An error is logged and
		// watching continues.
		OnChange func(ctx context.Context, changed []string) error
		// Logger receives watcher diagnostics; nil discards them.
		Logger *log.Logger
	}

	// Watcher monitors the project tree and fires a debounced callback.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		logger   *log.Logger
		ignores  []string
		baseDir  string
		debounce time.Duration
		started  atomic.Bool

		mu      sync.Mutex
		pending map[string]struct{}
		timer   *time.Timer
		stopped bool
		busy    atomic.Bool

		// inflight counts callbacks started by the debounce timer; stop
		// waits for them.
		inflight sync.WaitGroup
	}
)

// New validates cfg and registers every non-ignored directory under BaseDir.
func New(cfg Config) (*Watcher, error) {
	if err := validatePatterns("watch", cfg.Patterns); err != nil {
		return nil, err
	}
	if err := validatePatterns("ignore", cfg.Ignore); err != nil {
		return nil, err
	}

	baseDir := cfg.BaseDir
	if baseDir == "" {
		baseDir = "."
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve base directory: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		logger:   logger,
		ignores:  slices.Concat(defaultIgnores, cfg.Ignore),
		baseDir:  absBase,
		debounce: debounce,
		pending:  make(map[string]struct{}),
	}
	if err := w.addTree(absBase); err != nil {
		_ = fsw.Close() // Best-effort cleanup
		return nil, err
	}
	return w, nil
}

// Run processes events until ctx is cancelled. It returns nil on
// cancellation and an error when the underlying watcher breaks.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer w.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed")
			}
			w.handle(ctx, evt)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed")
			}
			if fatalErr := fatalWatchError(err); fatalErr != nil {
				return fatalErr
			}
			w.logger.Warn("File watcher error", "err", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, evt fsnotify.Event) {
	rel, err := filepath.Rel(w.baseDir, evt.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	if w.ignored(rel) {
		return
	}

	// New directories may hold members matched by a pattern later on.
	if evt.Has(fsnotify.Create) {
		if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
			if err := w.addTree(evt.Name); err != nil {
				w.logger.Warn("Cannot watch new directory", "path", evt.Name, "err", err)
			}
			return
		}
	}
	if !w.Matches(rel) {
		return
	}

	w.logger.Debug("Change detected", "path", rel, "op", evt.Op.String())
	w.mu.Lock()
	w.pending[rel] = struct{}{}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, func() { w.tick(ctx) })
	} else {
		w.timer.Reset(w.debounce)
	}
	w.mu.Unlock()
}

// tick runs fire unless the watcher has stopped. stopped and the
// inflight counter change under mu, so stop never misses a callback.
func (w *Watcher) tick(ctx context.Context) {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.inflight.Add(1)
	w.mu.Unlock()
	defer w.inflight.Done()
	w.fire(ctx)
}

// fire drains the pending set into one callback. A burst arriving while a
// callback runs is retried after another debounce period.
func (w *Watcher) fire(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if !w.busy.CompareAndSwap(false, true) {
		w.mu.Lock()
		if !w.stopped {
			w.timer.Reset(w.debounce)
		}
		w.mu.Unlock()
		return
	}
	defer w.busy.Store(false)

	w.mu.Lock()
	changed := slices.Sorted(maps.Keys(w.pending))
	clear(w.pending)
	w.mu.Unlock()
	if len(changed) == 0 || w.cfg.OnChange == nil {
		return
	}

	if err := w.cfg.OnChange(ctx, changed); err != nil {
		w.logger.Error("Merge failed", "err", err)
	}
}

// Close releases the watcher without running it. Run closes it on return.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// stop cancels the pending debounce, waits for a running callback and
// closes the fsnotify watcher.
func (w *Watcher) stop() {
	w.mu.Lock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	w.inflight.Wait()
	if err := w.fsw.Close(); err != nil {
		w.logger.Warn("Cannot close file watcher", "err", err)
	}
}

// addTree registers dir and every non-ignored directory below it.
func (w *Watcher) addTree(dir string) error {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			w.logger.Debug("Skipping inaccessible path", "path", path, "err", walkErr)
			return nil //nolint:nilerr // inaccessible directories are not watched
		}
		if !d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(w.baseDir, path)
		if err != nil {
			return nil //nolint:nilerr // outside the base directory
		}
		if r := filepath.ToSlash(rel); rel != "." && (w.ignored(r) || w.ignored(r+"/")) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk directory tree: %w", err)
	}
	return nil
}

// Matches reports whether rel (slash-separated, relative to BaseDir)
// selects a watched file.
func (w *Watcher) Matches(rel string) bool {
	if len(w.cfg.Patterns) == 0 {
		return true
	}
	for _, pat := range w.cfg.Patterns {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func (w *Watcher) ignored(rel string) bool {
	for _, pat := range w.ignores {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func validatePatterns(label string, patterns []string) error {
	for _, pat := range patterns {
		if pat == "" || !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid %s pattern %q", label, pat)
		}
	}
	return nil
}

// ManifestPatterns returns the watch patterns for a root manifest and its
// include patterns, relative to baseDir. Absolute patterns outside baseDir
// cannot be watched and are dropped.
func ManifestPatterns(baseDir, manifestPath string, include []string) []string {
	out := make([]string, 0, len(include)+1)
	add := func(p string) {
		if filepath.IsAbs(p) {
			rel, err := filepath.Rel(baseDir, p)
			if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				return
			}
			p = rel
		}
		p = strings.TrimPrefix(filepath.ToSlash(filepath.Clean(p)), "./")
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	add(manifestPath)
	for _, pat := range include {
		add(pat)
	}
	return out
}
