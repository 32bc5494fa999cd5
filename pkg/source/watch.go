package source

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"gopkg.in/fsnotify.v1"
)

// Invalidator is implemented by rules.Cache.
type Invalidator interface {
	Invalidate()
}

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	// OnChange is called after the target has been invalidated.
	OnChange func(path string)

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Watcher invalidates a cache whenever a local rules document changes.
// The containing directory is watched so that editors replacing the file
// by rename are noticed too.
type Watcher struct {
	path     string
	target   Invalidator
	onChange func(path string)
	logger   *slog.Logger

	watcher  *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewWatcher creates a Watcher for the document at path.
func NewWatcher(path string, target Invalidator, options WatcherOptions) (*Watcher, error) {
	absolutePath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		path:     absolutePath,
		target:   target,
		onChange: options.OnChange,
		logger:   logger,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching in a background goroutine.
func (documentWatcher *Watcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(documentWatcher.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watching directory: %w", err)
	}
	documentWatcher.watcher = watcher

	documentWatcher.wg.Add(1)
	go documentWatcher.watchLoop()
	return nil
}

// Stop ends watching and waits for the background goroutine.
func (documentWatcher *Watcher) Stop() {
	documentWatcher.stopOnce.Do(func() {
		close(documentWatcher.done)
		if documentWatcher.watcher != nil {
			documentWatcher.watcher.Close()
		}
	})
	documentWatcher.wg.Wait()
}

func (documentWatcher *Watcher) watchLoop() {
	defer documentWatcher.wg.Done()

	for {
		select {
		case <-documentWatcher.done:
			return

		case event, ok := <-documentWatcher.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != documentWatcher.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			documentWatcher.handleChange(event)

		case err, ok := <-documentWatcher.watcher.Errors:
			if !ok {
				return
			}
			documentWatcher.logger.Warn("rules file watch error", "error", err)
		}
	}
}

func (documentWatcher *Watcher) handleChange(event fsnotify.Event) {
	documentWatcher.logger.Info("rules file changed", "path", event.Name, "op", event.Op.String())
	documentWatcher.target.Invalidate()
	if documentWatcher.onChange != nil {
		documentWatcher.onChange(documentWatcher.path)
	}
}
