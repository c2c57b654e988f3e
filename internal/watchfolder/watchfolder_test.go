package watchfolder_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"v2s/internal/logging"
	"v2s/internal/queue"
	"v2s/internal/watchfolder"
)

type captureSink struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	added chan string
}

func newCaptureSink() *captureSink {
	return &captureSink{seen: make(map[string]struct{}), added: make(chan string, 16)}
}

func (s *captureSink) Enqueue(path string) (queue.Job, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.seen[path]; dup {
		return queue.Job{}, false, nil
	}
	s.seen[path] = struct{}{}
	s.added <- path
	return queue.Job{ID: "test-job", SourcePath: path}, true, nil
}

func (s *captureSink) next(t *testing.T) string {
	t.Helper()
	select {
	case path := <-s.added:
		return path
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for enqueue")
		return ""
	}
}

func startWatcher(t *testing.T, dir string, sink *captureSink) *watchfolder.Watcher {
	t.Helper()
	w, err := watchfolder.New(dir, sink, logging.NewNop())
	if err != nil {
		t.Fatalf("watchfolder.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() {
		if err := w.Close(); err != nil {
			t.Logf("close watcher: %v", err)
		}
	})
	return w
}

func TestWatcherEnqueuesNewMediaFiles(t *testing.T) {
	dir := t.TempDir()
	sink := newCaptureSink()
	startWatcher(t, dir, sink)

	path := filepath.Join(dir, "episode.mp4")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("write media file: %v", err)
	}

	if got := sink.next(t); got != path {
		t.Fatalf("expected enqueue of %s, got %s", path, got)
	}
}

func TestWatcherSkipsNonMediaAndTempFiles(t *testing.T) {
	dir := t.TempDir()
	sink := newCaptureSink()
	startWatcher(t, dir, sink)

	for _, name := range []string{"notes.txt", "clip.mp4.tmp", "copying.part"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	wanted := filepath.Join(dir, "voice.mp3")
	if err := os.WriteFile(wanted, []byte("x"), 0o644); err != nil {
		t.Fatalf("write media file: %v", err)
	}

	// The media file was written last; anything skipped would have arrived
	// before it.
	if got := sink.next(t); got != wanted {
		t.Fatalf("expected %s first, got %s", wanted, got)
	}
	select {
	case extra := <-sink.added:
		t.Fatalf("unexpected extra enqueue: %s", extra)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherIgnoresSubdirectories(t *testing.T) {
	dir := t.TempDir()
	sink := newCaptureSink()
	startWatcher(t, dir, sink)

	if err := os.Mkdir(filepath.Join(dir, "season.mp4"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	wanted := filepath.Join(dir, "after.wav")
	if err := os.WriteFile(wanted, []byte("x"), 0o644); err != nil {
		t.Fatalf("write media file: %v", err)
	}
	if got := sink.next(t); got != wanted {
		t.Fatalf("expected %s, got %s", wanted, got)
	}
}

func TestNewRejectsMissingDirectory(t *testing.T) {
	sink := newCaptureSink()
	if _, err := watchfolder.New(filepath.Join(t.TempDir(), "absent"), sink, logging.NewNop()); err == nil {
		t.Fatal("expected error for missing directory")
	}
	if _, err := watchfolder.New("", sink, logging.NewNop()); err == nil {
		t.Fatal("expected error for empty directory")
	}
}
