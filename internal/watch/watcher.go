// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Options.Debounce is not positive.
const DefaultDebounce = 300 * time.Millisecond

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("watch: Run called more than once")

// builtinIgnores are never watched: VCS metadata, interpreter caches, virtual
// environments and editor droppings.
var builtinIgnores = []string{
	"**/.git/**",
	"**/__pycache__/**",
	"**/.venv/**",
	"**/venv/**",
	"**/.mypy_cache/**",
	"**/.pytest_cache/**",
	"**/.ruff_cache/**",
	"**/.*.swp",
	"**/*~",
}

type (
	// Options configures a Watcher.
	Options struct {
		// Folder is the scripts folder; relative paths are resolved against
		// the working directory.
		Folder string
		// Recursive watches *.py at any depth instead of the top level only.
		Recursive bool
		// Ignore adds doublestar patterns (relative to Folder) to the
		// built-in ignore list.
		Ignore []string
		// Debounce is the quiet period after the last event.
		Debounce time.Duration
		// OnChange receives the sorted, deduplicated changed paths relative to
		// Folder. Errors are logged and do not stop the watcher.
		OnChange func(ctx context.Context, changed []string) error
		// Logger defaults to slog.Default().
		Logger *slog.Logger
	}

	// Watcher reports *.py changes under a scripts folder.
	Watcher struct {
		opts     Options
		fsw      *fsnotify.Watcher
		root     string
		pattern  string
		ignores  []string
		debounce time.Duration
		log      *slog.Logger
		started  atomic.Bool

		mu      sync.Mutex
		pending map[string]struct{}
		timer   *time.Timer
		busy    atomic.Bool
	}
)

// ScriptPattern returns the doublestar pattern selecting scripts for a scan.
func ScriptPattern(recursive bool) string {
	if recursive {
		return "**/*.py"
	}
	return "*.py"
}

// New validates opts and registers the folder (and, when recursive, every
// non-ignored subdirectory) with fsnotify.
func New(opts Options) (*Watcher, error) {
	root, err := filepath.Abs(opts.Folder)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve folder: %w", err)
	}
	if info, statErr := os.Stat(root); statErr != nil || !info.IsDir() {
		return nil, fmt.Errorf("watch: %s is not a directory", root)
	}

	for _, pat := range opts.Ignore {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("watch: invalid ignore pattern %q", pat)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		opts:     opts,
		fsw:      fsw,
		root:     root,
		pattern:  ScriptPattern(opts.Recursive),
		ignores:  slices.Concat(builtinIgnores, opts.Ignore),
		debounce: opts.Debounce,
		log:      opts.Logger,
		pending:  make(map[string]struct{}),
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.log == nil {
		w.log = slog.Default()
	}

	if err := w.register(); err != nil {
		_ = fsw.Close() // best-effort cleanup; the register error is more useful
		return nil, err
	}
	return w, nil
}

// Root returns the absolute folder being watched.
func (w *Watcher) Root() string {
	return w.root
}

// Run processes events until ctx is cancelled, returning nil in that case.
// Resource exhaustion reported by fsnotify is returned as an error.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	defer func() {
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.log.Warn("watch: close fsnotify", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			w.handle(ctx, evt)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isResourceExhausted(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.log.Warn("watch: fsnotify error", "error", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, evt fsnotify.Event) {
	if evt.Op == fsnotify.Chmod {
		return
	}

	if evt.Has(fsnotify.Create) && w.opts.Recursive {
		w.addIfDir(evt.Name)
	}

	rel, ok := w.relevant(evt.Name)
	if !ok {
		return
	}
	w.log.Debug("watch: change", "path", rel, "op", evt.Op.String())

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[rel] = struct{}{}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, func() { w.fire(ctx) })
		return
	}
	w.timer.Reset(w.debounce)
}

// fire hands the pending set to OnChange unless a previous call is still
// running, in which case it reschedules itself.
func (w *Watcher) fire(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if !w.busy.CompareAndSwap(false, true) {
		w.log.Debug("watch: previous run still in progress, deferring")
		w.mu.Lock()
		w.timer.Reset(w.debounce)
		w.mu.Unlock()
		return
	}
	defer w.busy.Store(false)

	w.mu.Lock()
	changed := slices.Sorted(maps.Keys(w.pending))
	clear(w.pending)
	w.mu.Unlock()

	if len(changed) == 0 || w.opts.OnChange == nil {
		return
	}
	if err := w.opts.OnChange(ctx, changed); err != nil {
		w.log.Warn("watch: callback failed", "error", err)
	}
}

// relevant maps an absolute event path to its folder-relative, slash-separated
// form and reports whether it selects a script.
func (w *Watcher) relevant(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if w.ignored(rel) {
		return "", false
	}
	matched, err := doublestar.Match(w.pattern, rel)
	return rel, err == nil && matched
}

func (w *Watcher) ignored(rel string) bool {
	for _, pat := range w.ignores {
		if matched, err := doublestar.Match(pat, rel); err == nil && matched {
			return true
		}
	}
	return false
}

func (w *Watcher) register() error {
	if !w.opts.Recursive {
		if err := w.fsw.Add(w.root); err != nil {
			return fmt.Errorf("watch: add %q: %w", w.root, err)
		}
		return nil
	}

	err := filepath.WalkDir(w.root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			w.log.Warn("watch: skipping unreadable path", "path", path, "error", walkErr)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.ignoredDir(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add %q: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk folder: %w", err)
	}
	return nil
}

// ignoredDir tests a directory by probing a path inside it, so "**/x/**"
// patterns exclude the directory itself.
func (w *Watcher) ignoredDir(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	return w.ignored(filepath.ToSlash(rel) + "/_")
}

func (w *Watcher) addIfDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || w.ignoredDir(path) {
		return
	}
	if err := w.fsw.Add(path); err != nil {
		w.log.Warn("watch: add new directory", "path", path, "error", err)
	}
}
