package daemon_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"v2s/internal/config"
	"v2s/internal/daemon"
	"v2s/internal/dispatch"
	"v2s/internal/engine"
	"v2s/internal/events"
	"v2s/internal/logging"
	"v2s/internal/queue"
	"v2s/internal/testsupport"
)

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// newPipedDaemon builds a started daemon whose engine reads protocol lines
// from the returned pipe writer instead of a spawned process.
func newPipedDaemon(t *testing.T, cfg *config.Config) (*daemon.Daemon, *io.PipeWriter) {
	t.Helper()
	pr, pw := io.Pipe()
	client, err := engine.New(config.Engine{}, logging.NewNop(),
		engine.WithPipes(nopWriteCloser{io.Discard}, pr))
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	d, err := daemon.New(cfg, logging.NewNop(), daemon.WithEngineClient(client))
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	t.Cleanup(func() { _ = pw.Close() })
	return d, pw
}

func writeLine(t *testing.T, pw *io.PipeWriter, line string) {
	t.Helper()
	if _, err := pw.Write([]byte(line + "\n")); err != nil {
		t.Fatalf("write engine line: %v", err)
	}
}

func waitForKind(t *testing.T, d *daemon.Daemon, kind string) events.Update {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var since uint64
	for {
		upds, next, err := d.StatusUpdates(ctx, since, 64, true)
		if err != nil {
			t.Fatalf("waiting for %s: %v", kind, err)
		}
		for _, upd := range upds {
			if upd.Kind == kind {
				return upd
			}
		}
		since = next
	}
}

func TestDaemonLifecycleWithSpawnedEngine(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithEngineCommand(testsupport.FakeEngine(t)),
		testsupport.WithHistory())
	d, err := daemon.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	status := d.Status(context.Background())
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
	if !status.Engine.Running || status.Engine.PID == 0 {
		t.Fatalf("expected live engine, got %+v", status.Engine)
	}
	if status.SocketPath != cfg.SocketPath() || status.LockPath != cfg.LockPath() {
		t.Fatalf("unexpected paths in status: %+v", status)
	}
	if len(status.Dependencies) == 0 {
		t.Fatal("expected dependency checks in status")
	}

	media := testsupport.MediaFile(t, testsupport.BaseDir(cfg), "clip.mp4")
	job, added, err := d.Enqueue(media)
	if err != nil || !added {
		t.Fatalf("enqueue: added=%v err=%v", added, err)
	}
	if job.Status != queue.StatusPending {
		t.Fatalf("expected pending job, got %s", job.Status)
	}

	if err := d.StartBatch(); err != nil {
		t.Fatalf("StartBatch: %v", err)
	}
	finished := waitForKind(t, d, events.KindBatchFinished)
	if !strings.HasSuffix(finished.SavePath, ".srt") {
		t.Fatalf("expected srt save path in batch_finished, got %q", finished.SavePath)
	}

	jobs := d.Jobs()
	if len(jobs) != 1 || jobs[0].Status != queue.StatusDone {
		t.Fatalf("expected one done job, got %+v", jobs)
	}
	if jobs[0].WordCount != 120 {
		t.Fatalf("expected word count from worker, got %d", jobs[0].WordCount)
	}

	entries, err := d.History(context.Background(), 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 1 || entries[0].SourcePath != media {
		t.Fatalf("expected one history entry for %s, got %+v", media, entries)
	}
}

func TestDaemonSecondInstanceRefused(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first, _ := newPipedDaemon(t, cfg)
	if !first.Status(context.Background()).Running {
		t.Fatal("expected first instance to run")
	}

	pr2, pw2 := io.Pipe()
	t.Cleanup(func() { _ = pw2.Close() })
	client, err := engine.New(config.Engine{}, logging.NewNop(),
		engine.WithPipes(nopWriteCloser{io.Discard}, pr2))
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	second, err := daemon.New(cfg, logging.NewNop(), daemon.WithEngineClient(client))
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { _ = second.Close() })
	if err := second.Start(context.Background()); err == nil {
		t.Fatal("expected second instance start to fail on the lock")
	}
}

func TestEngineRestartRefusedWhileBatchActive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, _ := newPipedDaemon(t, cfg)

	media := testsupport.MediaFile(t, testsupport.BaseDir(cfg), "talk.mp3")
	if _, _, err := d.Enqueue(media); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := d.StartBatch(); err != nil {
		t.Fatalf("StartBatch: %v", err)
	}
	if !d.BatchActive() {
		t.Fatal("expected batch to be active")
	}
	if err := d.EngineRestart(); !errors.Is(err, dispatch.ErrBatchActive) {
		t.Fatalf("expected ErrBatchActive, got %v", err)
	}
}

func TestEngineRestartSpawnsNewWorker(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithEngineCommand(testsupport.FakeEngine(t)))
	d, err := daemon.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	before := d.Status(context.Background()).Engine
	if !before.Running || before.PID == 0 {
		t.Fatalf("expected live engine before restart, got %+v", before)
	}
	if err := d.EngineRestart(); err != nil {
		t.Fatalf("EngineRestart: %v", err)
	}
	after := d.Status(context.Background()).Engine
	if !after.Running || after.PID == 0 {
		t.Fatalf("expected live engine after restart, got %+v", after)
	}
	if after.PID == before.PID {
		t.Fatalf("expected a new worker process, pid stayed %d", after.PID)
	}
}

func TestDaemonSurvivesMissingEngineBinary(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithEngineCommand("definitely-not-a-real-engine"))
	d, err := daemon.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("expected daemon to start without an engine, got %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	status := d.Status(context.Background())
	if !status.Running {
		t.Fatal("expected daemon running")
	}
	if status.Engine.Running {
		t.Fatal("expected engine down")
	}
	if status.Engine.Note == "" {
		t.Fatal("expected a note explaining the dead engine")
	}
}

func TestWatchFolderAutoEnqueue(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithWatchFolder())
	d, _ := newPipedDaemon(t, cfg)

	media := testsupport.MediaFile(t, cfg.Watch.Dir, "drop.mp4")
	added := waitForKind(t, d, events.KindJobAdded)
	if added.SourcePath != media {
		t.Fatalf("expected %s to be picked up, got %+v", media, added)
	}

	jobs := d.Jobs()
	if len(jobs) != 1 || jobs[0].Status != queue.StatusPending {
		t.Fatalf("expected one pending job, got %+v", jobs)
	}
}

func TestStatusReportsStubbedDependencies(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	d, _ := newPipedDaemon(t, cfg)

	status := d.Status(context.Background())
	if len(status.Dependencies) != 3 {
		t.Fatalf("expected 3 dependency checks, got %d", len(status.Dependencies))
	}
	for _, dep := range status.Dependencies {
		if !dep.Available {
			t.Fatalf("expected %s to resolve from the stub PATH, got %#v", dep.Name, dep)
		}
	}
}

func TestStatusUpdatesStreamOrdering(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, pw := newPipedDaemon(t, cfg)

	a := testsupport.MediaFile(t, testsupport.BaseDir(cfg), "a.mp4")
	b := testsupport.MediaFile(t, testsupport.BaseDir(cfg), "b.mp3")
	for _, path := range []string{a, b} {
		if _, _, err := d.Enqueue(path); err != nil {
			t.Fatalf("enqueue %s: %v", path, err)
		}
	}
	if err := d.StartBatch(); err != nil {
		t.Fatalf("StartBatch: %v", err)
	}
	writeLine(t, pw, `{"type":"success","data":{"path":"`+a+`","savePath":"`+a+`.srt","wordCount":5,"confidence":90}}`)
	writeLine(t, pw, `{"type":"success","data":{"path":"`+b+`","savePath":"`+b+`.srt","wordCount":7,"confidence":91}}`)

	waitForKind(t, d, events.KindBatchFinished)

	jobs := d.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	for i, job := range jobs {
		if job.Status != queue.StatusDone {
			t.Fatalf("job %d not done: %s", i, job.Status)
		}
	}
	if jobs[0].SavePath != a+".srt" || jobs[1].SavePath != b+".srt" {
		t.Fatalf("save paths out of order: %q, %q", jobs[0].SavePath, jobs[1].SavePath)
	}
}

func TestUpdateSettingPersistsAndValidates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, _ := newPipedDaemon(t, cfg)

	updated, err := d.UpdateSetting("model", "professional")
	if err != nil {
		t.Fatalf("UpdateSetting: %v", err)
	}
	if updated.Model != "professional" {
		t.Fatalf("expected model update, got %q", updated.Model)
	}
	if _, err := d.UpdateSetting("model", "imaginary"); err == nil {
		t.Fatal("expected invalid model to be rejected")
	}
	if got := d.Settings().Model; got != "professional" {
		t.Fatalf("expected rejected update to leave model, got %q", got)
	}

	presets := d.Presets()
	if len(presets) == 0 {
		t.Fatal("expected built-in presets")
	}
}
