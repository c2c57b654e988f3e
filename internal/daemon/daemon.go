package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"v2s/internal/api"
	"v2s/internal/config"
	"v2s/internal/deps"
	"v2s/internal/dispatch"
	"v2s/internal/engine"
	"v2s/internal/events"
	"v2s/internal/history"
	"v2s/internal/logging"
	"v2s/internal/preflight"
	"v2s/internal/preset"
	"v2s/internal/queue"
	"v2s/internal/settings"
	"v2s/internal/watchfolder"
)

const (
	engineStopTimeout = 5 * time.Second
	eventHubCapacity  = 256
)

// Daemon composes the coordination services and enforces single-instance
// execution. It is the facade the IPC service calls into.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	settings *settings.Store
	queue    *queue.Queue
	hub      *events.Hub
	history  *history.Store
	engine   *engine.Client
	ctrl     *dispatch.Controller
	watcher  *watchfolder.Watcher

	lockPath string
	lock     *flock.Flock
	logPath  string

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc

	noteMu   sync.Mutex
	bootNote string

	stopOnce sync.Once
	stopCh   chan struct{}
}

// Option adjusts daemon assembly.
type Option func(*assembly)

type assembly struct {
	engine *engine.Client
	opener func(path string) error
}

// WithEngineClient substitutes a pre-built worker client. Tests use this to
// attach the dispatcher to in-process pipes instead of a spawned process.
func WithEngineClient(client *engine.Client) Option {
	return func(a *assembly) { a.engine = client }
}

// WithOpener overrides how finished files are revealed in the desktop shell.
func WithOpener(fn func(path string) error) Option {
	return func(a *assembly) { a.opener = fn }
}

// New wires config, settings, queue, event hub, history, worker client and
// dispatcher into a daemon. It does not start anything.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	var asm assembly
	for _, opt := range opts {
		opt(&asm)
	}

	settingsStore := settings.NewStore(cfg.SettingsPath())
	if err := settingsStore.Load(); err != nil {
		logging.WarnWithContext(logger, "settings file unreadable, using defaults", "settings_load",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix or delete "+cfg.SettingsPath()))
	}

	var historyStore *history.Store
	if cfg.History.Enabled {
		store, err := history.Open(cfg.HistoryPath())
		if err != nil {
			logging.WarnWithContext(logger, "history store unavailable", "history_open",
				logging.Error(err),
				logging.String(logging.FieldImpact, "finished jobs will not be recorded"))
		} else {
			historyStore = store
		}
	}

	engineClient := asm.engine
	if engineClient == nil {
		client, err := engine.New(cfg.Engine, logger)
		if err != nil {
			if historyStore != nil {
				_ = historyStore.Close()
			}
			return nil, err
		}
		engineClient = client
	}

	q := queue.New()
	hub := events.NewHub(eventHubCapacity)
	ctrlDeps := dispatch.Deps{
		Queue:    q,
		Worker:   engineClient,
		Hub:      hub,
		Settings: settingsStore,
		Logger:   logger,
		Opener:   asm.opener,
	}
	if historyStore != nil {
		ctrlDeps.History = historyStore
	}
	ctrl, err := dispatch.New(ctrlDeps)
	if err != nil {
		if historyStore != nil {
			_ = historyStore.Close()
		}
		return nil, err
	}

	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		settings: settingsStore,
		queue:    q,
		hub:      hub,
		history:  historyStore,
		engine:   engineClient,
		ctrl:     ctrl,
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
		logPath:  cfg.LogPointerPath(),
		stopCh:   make(chan struct{}),
	}

	if cfg.Watch.Enabled {
		watcher, err := watchfolder.New(cfg.Watch.Dir, ctrl, logger)
		if err != nil {
			logging.WarnWithContext(logger, "watch folder disabled", "watchfolder_init",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check [watch] dir in the config"))
		} else {
			d.watcher = watcher
		}
	}
	return d, nil
}

// Start acquires the instance lock and brings up the worker process and the
// optional watch folder. A worker that fails to spawn leaves the daemon up
// with the engine marked down; recovery is an engine restart.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another v2s daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.running.Store(true)
	d.logPreflight()

	if err := d.engine.Start(d.ctx, d.ctrl); err != nil {
		d.setBootNote(fmt.Sprintf("engine failed to start: %v", err))
		d.hub.Publish(events.Update{Kind: events.KindEngineStatus, Status: "down", Message: err.Error()})
		logging.ErrorWithContext(d.logger, "engine failed to start", "engine_start",
			logging.Error(err),
			logging.String(logging.FieldImpact, "jobs cannot run until the engine starts"),
			logging.String(logging.FieldErrorHint, "check [engine] command, then run 'v2s engine restart'"))
	} else {
		d.setBootNote("")
	}

	if d.watcher != nil {
		if err := d.watcher.Start(d.ctx); err != nil {
			d.logger.Warn("watch folder failed to start", logging.Error(err))
		}
	}

	d.logger.Info("v2s daemon started",
		logging.String("lock", d.lockPath),
		logging.Bool("history", d.history != nil),
		logging.Bool("watch", d.watcher != nil))
	return nil
}

// Stop winds down the watcher and the worker process and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.watcher != nil {
		if err := d.watcher.Close(); err != nil {
			d.logger.Warn("watch folder close failed", logging.Error(err))
		}
	}
	if err := d.engine.Stop(engineStopTimeout); err != nil {
		d.logger.Warn("engine stop failed", logging.Error(err))
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("v2s daemon stopped")
}

// Close stops the daemon and releases held resources.
func (d *Daemon) Close() error {
	d.Stop()
	if d.history != nil {
		return d.history.Close()
	}
	return nil
}

// RequestStop asks the daemon process to shut down. The run loop watches
// StopRequested and performs the actual teardown.
func (d *Daemon) RequestStop() {
	d.stopOnce.Do(func() { close(d.stopCh) })
}

// StopRequested is closed after the first RequestStop call.
func (d *Daemon) StopRequested() <-chan struct{} {
	return d.stopCh
}

// Enqueue admits one media file into the queue.
func (d *Daemon) Enqueue(path string) (queue.Job, bool, error) {
	return d.ctrl.Enqueue(path)
}

// Jobs returns the queue in order.
func (d *Daemon) Jobs() []queue.Job {
	return d.ctrl.Snapshot()
}

// RemoveJob removes a job by id. Refused while a batch is active.
func (d *Daemon) RemoveJob(id string) (queue.Job, error) {
	return d.ctrl.Remove(id)
}

// ReorderJobs moves the job at index from to index to and returns the new
// ordering.
func (d *Daemon) ReorderJobs(from, to int) ([]queue.Job, error) {
	if err := d.ctrl.Reorder(from, to); err != nil {
		return nil, err
	}
	return d.ctrl.Snapshot(), nil
}

// ClearQueue removes every job. Refused while a batch is active.
func (d *Daemon) ClearQueue() (int, error) {
	return d.ctrl.ClearQueue()
}

// StartBatch begins processing pending jobs front to back.
func (d *Daemon) StartBatch() error {
	return d.ctrl.StartBatch()
}

// BatchActive reports whether a processing run is under way.
func (d *Daemon) BatchActive() bool {
	return d.ctrl.BatchActive()
}

// StatusUpdates returns published updates after the given sequence. With
// wait set the call blocks until an update arrives or ctx ends.
func (d *Daemon) StatusUpdates(ctx context.Context, since uint64, limit int, wait bool) ([]events.Update, uint64, error) {
	return d.hub.Fetch(ctx, since, limit, wait)
}

// Settings returns the current persisted settings.
func (d *Daemon) Settings() settings.Settings {
	return d.settings.Get()
}

// UpdateSetting validates and persists a single key change.
func (d *Daemon) UpdateSetting(key, value string) (settings.Settings, error) {
	return d.settings.Update(func(s *settings.Settings) error {
		return settings.Apply(s, key, value)
	})
}

// Presets lists built-in presets merged with the user's custom ones.
func (d *Daemon) Presets() []preset.Preset {
	return preset.Catalog(d.settings.Get().CustomPresets)
}

// HistoryEnabled reports whether finished jobs are being recorded.
func (d *Daemon) HistoryEnabled() bool {
	return d.history != nil
}

// History lists the most recent finished transcriptions.
func (d *Daemon) History(ctx context.Context, limit int) ([]history.Entry, error) {
	if d.history == nil {
		return nil, nil
	}
	return d.history.List(ctx, limit)
}

// EngineRestart replaces the worker process. Refused while a batch runs
// because the in-flight job would lose its terminal message.
func (d *Daemon) EngineRestart() error {
	if !d.running.Load() {
		return errors.New("daemon is not running")
	}
	if d.ctrl.BatchActive() {
		return dispatch.ErrBatchActive
	}
	if err := d.engine.Stop(engineStopTimeout); err != nil {
		d.logger.Warn("engine stop before restart failed", logging.Error(err))
	}
	if err := d.engine.Start(d.ctx, d.ctrl); err != nil {
		d.setBootNote(fmt.Sprintf("engine failed to start: %v", err))
		d.hub.Publish(events.Update{Kind: events.KindEngineStatus, Status: "down", Message: err.Error()})
		return fmt.Errorf("restart engine: %w", err)
	}
	d.setBootNote("")
	d.hub.Publish(events.Update{Kind: events.KindEngineStatus, Status: "up", Message: "restarted"})
	d.logger.Info("engine restarted", logging.Int("pid", d.engine.PID()))
	return nil
}

// LogPath returns the stable pointer to the current daemon log.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Status assembles the full runtime picture for status consumers.
func (d *Daemon) Status(ctx context.Context) api.DaemonStatus {
	_, note := d.ctrl.EngineStatus()
	if boot := d.getBootNote(); boot != "" {
		note = boot
	}
	return api.DaemonStatus{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		BatchActive:  d.ctrl.BatchActive(),
		QueueStats:   api.MergeQueueStats(d.ctrl.Stats()),
		Jobs:         api.FromJobs(d.ctrl.Snapshot()),
		Engine:       api.EngineStatus{Running: d.engine.Running(), PID: d.engine.PID(), Note: note},
		Dependencies: api.FromDependencies(deps.Check(d.cfg)),
		LockPath:     d.lockPath,
		SocketPath:   d.cfg.SocketPath(),
		LogPath:      d.logPath,
	}
}

func (d *Daemon) setBootNote(note string) {
	d.noteMu.Lock()
	d.bootNote = note
	d.noteMu.Unlock()
}

func (d *Daemon) getBootNote() string {
	d.noteMu.Lock()
	defer d.noteMu.Unlock()
	return d.bootNote
}

// logPreflight records dependency and directory readiness at startup so a
// misconfigured host is visible in the log without running v2s status.
func (d *Daemon) logPreflight() {
	for _, dep := range deps.Check(d.cfg) {
		if dep.Available {
			continue
		}
		if dep.Optional {
			d.logger.Warn("optional dependency missing",
				logging.String("dependency", dep.Name),
				logging.String("detail", dep.Detail))
			continue
		}
		logging.WarnWithContext(d.logger, "required dependency missing", "dependency_missing",
			logging.String("dependency", dep.Name),
			logging.String("detail", dep.Detail),
			logging.String(logging.FieldImpact, "jobs will fail until this is installed"))
	}
	results := preflight.RunAll(d.cfg)
	if out := strings.TrimSpace(d.settings.Get().OutputDir); out != "" {
		results = append(results, preflight.CheckDirectoryAccess("Output directory", out))
	}
	for _, res := range results {
		if res.Passed {
			d.logger.Debug("preflight ok",
				logging.String("check", res.Name),
				logging.String("detail", res.Detail))
			continue
		}
		d.logger.Warn("preflight check failed",
			logging.String("check", res.Name),
			logging.String("detail", res.Detail))
	}
}
