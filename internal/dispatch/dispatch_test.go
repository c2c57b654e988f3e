package dispatch_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"v2s/internal/dispatch"
	"v2s/internal/engine"
	"v2s/internal/events"
	"v2s/internal/history"
	"v2s/internal/logging"
	"v2s/internal/queue"
	"v2s/internal/settings"
)

type fakeWorker struct {
	mu      sync.Mutex
	submits []any
	err     error
	running bool
}

func (w *fakeWorker) Submit(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.submits = append(w.submits, v)
	return nil
}

func (w *fakeWorker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *fakeWorker) transcribes() []engine.TranscribeRequest {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []engine.TranscribeRequest
	for _, v := range w.submits {
		if task, ok := v.(engine.TranscribeRequest); ok {
			out = append(out, task)
		}
	}
	return out
}

func (w *fakeWorker) analyzes() []engine.AnalyzeRequest {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []engine.AnalyzeRequest
	for _, v := range w.submits {
		if req, ok := v.(engine.AnalyzeRequest); ok {
			out = append(out, req)
		}
	}
	return out
}

type recordingHistory struct {
	mu      sync.Mutex
	entries []history.Entry
}

func (h *recordingHistory) Record(_ context.Context, entry history.Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, entry)
	return nil
}

type fixture struct {
	ctrl     *dispatch.Controller
	worker   *fakeWorker
	hub      *events.Hub
	settings *settings.Store
	history  *recordingHistory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := settings.NewStore(filepath.Join(t.TempDir(), "settings.json"))
	if err := store.Load(); err != nil {
		t.Fatalf("load settings: %v", err)
	}
	worker := &fakeWorker{running: true}
	hub := events.NewHub(128)
	hist := &recordingHistory{}
	ctrl, err := dispatch.New(dispatch.Deps{
		Queue:    queue.New(),
		Worker:   worker,
		Hub:      hub,
		Settings: store,
		History:  hist,
		Logger:   logging.NewNop(),
		Opener:   func(string) error { return nil },
	})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return &fixture{ctrl: ctrl, worker: worker, hub: hub, settings: store, history: hist}
}

func mediaFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("media bytes"), 0o644); err != nil {
		t.Fatalf("write media file: %v", err)
	}
	return path
}

func (f *fixture) enqueue(t *testing.T, path string) queue.Job {
	t.Helper()
	job, added, err := f.ctrl.Enqueue(path)
	if err != nil {
		t.Fatalf("enqueue %s: %v", path, err)
	}
	if !added {
		t.Fatalf("enqueue %s: expected a new job", path)
	}
	return job
}

func (f *fixture) jobByPath(t *testing.T, path string) queue.Job {
	t.Helper()
	for _, job := range f.ctrl.Snapshot() {
		if job.SourcePath == path {
			return job
		}
	}
	t.Fatalf("no job for path %s", path)
	return queue.Job{}
}

func progressMessage(percent string, text string) engine.Message {
	return engine.Message{Type: engine.TypeProgress, Message: text, Data: json.RawMessage(percent)}
}

func successMessage(t *testing.T, path, savePath string, words, confidence int) engine.Message {
	t.Helper()
	data, err := json.Marshal(engine.SuccessData{Path: path, SavePath: savePath, WordCount: words, Confidence: confidence})
	if err != nil {
		t.Fatalf("marshal success data: %v", err)
	}
	return engine.Message{Type: engine.TypeSuccess, Message: "done", Data: data}
}

func analysisMessage(t *testing.T, path, duration, thumbnail string) engine.Message {
	t.Helper()
	data, err := json.Marshal(engine.AnalysisData{Path: path, Duration: duration, Thumbnail: thumbnail})
	if err != nil {
		t.Fatalf("marshal analysis data: %v", err)
	}
	return engine.Message{Type: engine.TypeAnalysisResult, Message: "ok", Data: data}
}

func errorMessage(text string) engine.Message {
	return engine.Message{Type: engine.TypeError, Message: text}
}

func countByStatus(jobs []queue.Job, status queue.Status) int {
	n := 0
	for _, job := range jobs {
		if job.Status == status {
			n++
		}
	}
	return n
}

func assertSingleProcessing(t *testing.T, jobs []queue.Job) {
	t.Helper()
	if n := countByStatus(jobs, queue.StatusProcessing); n > 1 {
		t.Fatalf("%d jobs processing at once", n)
	}
}

var errWorkerDown = errors.New("engine is not running")
