package watchfolder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"v2s/internal/logging"
	"v2s/internal/queue"
)

// Enqueuer admits a media file into the queue. Duplicate paths are reported
// with added=false and are not an error.
type Enqueuer interface {
	Enqueue(path string) (queue.Job, bool, error)
}

// Watcher enqueues media files as they appear in a configured directory.
// Only create events for known media extensions are acted on; partially
// copied files are fine to admit early because transcription only starts
// when the operator launches a batch.
type Watcher struct {
	dir    string
	sink   Enqueuer
	logger *slog.Logger

	fsw *fsnotify.Watcher

	mu      sync.Mutex
	started bool
	done    chan struct{}
}

// New validates the directory and prepares a watcher on it.
func New(dir string, sink Enqueuer, logger *slog.Logger) (*Watcher, error) {
	if sink == nil {
		return nil, errors.New("watchfolder requires an enqueuer")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("watch directory is not configured")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch path %q is not a directory", dir)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	return &Watcher{
		dir:    dir,
		sink:   sink,
		logger: logging.NewComponentLogger(logger, "watchfolder"),
		fsw:    fsw,
	}, nil
}

// Start registers the directory and begins consuming events until the
// context is cancelled or Close is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return errors.New("watchfolder already started")
	}
	if err := w.fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.started = true
	w.done = make(chan struct{})
	w.logger.Info("watching folder", logging.String("dir", w.dir))
	go w.loop(ctx)
	return nil
}

// Close stops event delivery. Safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	done := w.done
	w.mu.Unlock()
	err := w.fsw.Close()
	if done != nil {
		<-done
	}
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", logging.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Create) {
		return
	}
	name := event.Name
	if strings.HasSuffix(name, ".tmp") || strings.HasSuffix(name, ".part") {
		return
	}
	if !queue.IsMediaPath(name) {
		return
	}
	if info, err := os.Stat(name); err != nil || info.IsDir() {
		return
	}
	job, added, err := w.sink.Enqueue(name)
	if err != nil {
		w.logger.Warn("auto-enqueue failed",
			logging.String(logging.FieldSourcePath, name),
			logging.Error(err))
		return
	}
	if !added {
		w.logger.Debug("file already queued", logging.String(logging.FieldSourcePath, name))
		return
	}
	w.logger.Info("file picked up from watch folder",
		logging.String(logging.FieldJobID, job.ID),
		logging.String(logging.FieldSourcePath, name))
}
