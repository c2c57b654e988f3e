package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"v2s/internal/engine"
	"v2s/internal/events"
	"v2s/internal/history"
	"v2s/internal/logging"
	"v2s/internal/queue"
	"v2s/internal/settings"
)

// Sentinel errors for rejected commands.
var (
	ErrUnknownJob  = errors.New("unknown job")
	ErrBatchActive = errors.New("a batch is running")
	ErrNotMedia    = errors.New("unsupported media type")
)

type batchState int

const (
	stateIdle batchState = iota
	stateRunning
)

// Worker is the submit side of the engine channel.
type Worker interface {
	Submit(v any) error
	Running() bool
}

// HistoryRecorder persists finished transcriptions. May be nil when the
// history log is disabled.
type HistoryRecorder interface {
	Record(ctx context.Context, entry history.Entry) error
}

// Deps wires the controller's collaborators.
type Deps struct {
	Queue    *queue.Queue
	Worker   Worker
	Hub      *events.Hub
	Settings *settings.Store
	History  HistoryRecorder
	Logger   *slog.Logger
	// Opener reveals a finished file in the desktop shell. Defaults to
	// xdg-open on the file's directory.
	Opener func(path string) error
}

// Controller owns the queue and drives the worker one task at a time.
type Controller struct {
	mu       sync.Mutex
	queue    *queue.Queue
	worker   Worker
	hub      *events.Hub
	settings *settings.Store
	history  HistoryRecorder
	logger   *slog.Logger
	opener   func(path string) error

	state         batchState
	currentTask   *engine.TranscribeRequest
	lastSavedPath string
	engineNote    string
}

// New builds a controller. Queue, Worker, Hub and Settings are required.
func New(deps Deps) (*Controller, error) {
	if deps.Queue == nil || deps.Worker == nil || deps.Hub == nil || deps.Settings == nil {
		return nil, errors.New("dispatch: queue, worker, hub and settings are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	opener := deps.Opener
	if opener == nil {
		opener = revealInShell
	}
	return &Controller{
		queue:    deps.Queue,
		worker:   deps.Worker,
		hub:      deps.Hub,
		settings: deps.Settings,
		history:  deps.History,
		logger:   logging.NewComponentLogger(logger, "dispatcher"),
		opener:   opener,
	}, nil
}

// Enqueue validates one file and appends it as a pending job. Enqueuing a
// path that is already queued returns the existing job with added=false.
// Each new job triggers a background analysis request for its metadata.
func (c *Controller) Enqueue(path string) (queue.Job, bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return queue.Job{}, false, fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return queue.Job{}, false, fmt.Errorf("stat %s: %w", abs, err)
	}
	if info.IsDir() {
		return queue.Job{}, false, fmt.Errorf("%s is a directory, expected a media file", abs)
	}
	if !queue.IsMediaPath(abs) {
		return queue.Job{}, false, fmt.Errorf("%w: %s", ErrNotMedia, filepath.Ext(abs))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	job, added := c.queue.Enqueue(abs)
	if !added {
		return job.Clone(), false, nil
	}
	c.logger.Info("job enqueued",
		logging.String(logging.FieldJobID, job.ID),
		logging.String(logging.FieldSourcePath, job.SourcePath),
		logging.String("kind", string(job.Kind)))
	c.hub.Publish(events.NewJobUpdate(events.KindJobAdded, job))
	c.requestAnalysisLocked(job)
	return job.Clone(), true, nil
}

// requestAnalysisLocked fires the metadata request for a new job. Failures
// only cost the thumbnail and duration, never the job itself.
func (c *Controller) requestAnalysisLocked(job *queue.Job) {
	if err := c.worker.Submit(engine.NewAnalyzeRequest(job.SourcePath)); err != nil {
		c.logger.Debug("analysis request skipped",
			logging.String(logging.FieldSourcePath, job.SourcePath),
			logging.Error(err))
	}
}

// Remove deletes a job. Removal is refused for the whole queue while a
// batch runs: the worker reports on the processing job by position, not by
// id, and shrinking the queue under it would misroute those reports.
func (c *Controller) Remove(id string) (queue.Job, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == stateRunning {
		return queue.Job{}, ErrBatchActive
	}
	job := c.queue.Get(id)
	if job == nil {
		return queue.Job{}, fmt.Errorf("%w: %s", ErrUnknownJob, id)
	}
	removed := c.queue.Remove(id)
	snapshot := removed.Clone()
	c.hub.Publish(events.NewJobUpdate(events.KindJobRemoved, removed))
	c.logger.Info("job removed", logging.String(logging.FieldJobID, id))
	return snapshot, nil
}

// Reorder moves the job at index from to index to. Valid at any time; while
// a batch runs it changes which pending job is picked next.
func (c *Controller) Reorder(from, to int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.queue.Reorder(from, to); err != nil {
		return err
	}
	moved := c.queue.Jobs()[to]
	upd := events.NewJobUpdate(events.KindQueueReordered, moved)
	upd.Message = fmt.Sprintf("moved from position %d to %d", from, to)
	c.hub.Publish(upd)
	return nil
}

// ClearQueue removes every job. Like Remove it is refused while a batch
// runs. Returns how many jobs were removed.
func (c *Controller) ClearQueue() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == stateRunning {
		return 0, ErrBatchActive
	}
	jobs := append([]*queue.Job(nil), c.queue.Jobs()...)
	for _, job := range jobs {
		c.queue.Remove(job.ID)
		c.hub.Publish(events.NewJobUpdate(events.KindJobRemoved, job))
	}
	if len(jobs) > 0 {
		c.logger.Info("queue cleared", logging.Int("removed", len(jobs)))
	}
	return len(jobs), nil
}

// StartBatch begins a fresh run. Jobs finished or failed in an earlier run
// go back to pending first; starting while already running is a no-op. An
// empty queue completes immediately.
func (c *Controller) StartBatch() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == stateRunning {
		return nil
	}
	requeued := c.queue.ResetTerminal()
	c.state = stateRunning
	c.lastSavedPath = ""
	upd := events.Update{Kind: events.KindBatchStarted}
	if requeued > 0 {
		upd.Message = fmt.Sprintf("%d finished jobs re-queued", requeued)
	}
	c.hub.Publish(upd)
	c.logger.Info("batch started",
		logging.Int("queued", c.queue.Len()),
		logging.Int("requeued", requeued),
		logging.String(logging.FieldBatchState, "running"))
	c.advanceLocked()
	return nil
}

// Snapshot returns copies of all jobs in queue order.
func (c *Controller) Snapshot() []queue.Job {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.Snapshot()
}

// Stats returns job counts per status.
func (c *Controller) Stats() map[queue.Status]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.Stats()
}

// BatchActive reports whether a run is in progress.
func (c *Controller) BatchActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateRunning
}

// LastSavedPath returns the output path of the most recent success in the
// current or last run.
func (c *Controller) LastSavedPath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSavedPath
}

// EngineStatus reports worker liveness plus the last status text it sent.
func (c *Controller) EngineStatus() (running bool, note string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.worker.Running(), c.engineNote
}
