package policy

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceInterval is the delay between observing a file change and
// reloading the identity, collapsing editor write bursts into one rotation.
const DefaultDebounceInterval = 100 * time.Millisecond

// FileWatcher watches an identity file and rotates the Holder when the file
// changes. Changes are debounced to prevent rotation storms from editors
// that write in multiple syscalls.
type FileWatcher struct {
	source   *FileSource
	holder   *Holder
	logger   *slog.Logger
	debounce time.Duration
}

// NewFileWatcher creates a watcher for the given source and holder.
func NewFileWatcher(source *FileSource, holder *Holder, logger *slog.Logger) *FileWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileWatcher{
		source:   source,
		holder:   holder,
		logger:   logger,
		debounce: DefaultDebounceInterval,
	}
}

// Watch blocks, watching the identity file until the context is cancelled.
// Each effective change to the file contents triggers a rotation on the
// Holder. Reload failures are logged and the previous identity stays active.
func (w *FileWatcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the parent directory so atomic rename-over-file updates
	// (the common way identity files are published) are observed.
	dir := filepath.Dir(w.source.Path())
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", dir, err)
	}

	w.logger.Info("policy identity watcher started",
		"path", w.source.Path(),
		"debounce_ms", w.debounce.Milliseconds(),
	)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("policy identity watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.source.Path()) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.reload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("policy identity watcher error", "error", err)
		}
	}
}

// reload loads the identity file and rotates the holder on change.
func (w *FileWatcher) reload(ctx context.Context) {
	id, err := w.source.Load(ctx)
	if err != nil {
		w.logger.Warn("policy identity reload failed, keeping current identity",
			"path", w.source.Path(),
			"error", err,
		)
		return
	}
	if w.holder.Rotate(id) {
		w.logger.Info("policy identity rotated",
			"identity", id.Short(),
		)
	}
}
