package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"strings"
	"sync"
	"time"

	"v2s/internal/api"
	"v2s/internal/daemon"
	"v2s/internal/logging"
	"v2s/internal/logs"
	"v2s/internal/queue"
)

// maxUpdateWait bounds how long one StatusUpdates call may block so a dead
// client cannot pin a connection goroutine forever.
const maxUpdateWait = 30 * time.Second

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logging.NewComponentLogger(logger, "ipc"), ctx: ctx}
	if err := rpcServer.RegisterName("V2S", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "remove the socket file manually or rerun v2s daemon stop"))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) Ping(_ PingRequest, resp *PingResponse) error {
	resp.PID = os.Getpid()
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	*resp = s.daemon.Status(s.ctx)
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.logger.Info("daemon stop requested via IPC",
		logging.String(logging.FieldEventType, "daemon_stop"))
	s.daemon.RequestStop()
	resp.Stopped = true
	return nil
}

func (s *service) Enqueue(req EnqueueRequest, resp *EnqueueResponse) error {
	if len(req.Paths) == 0 {
		return errors.New("enqueue requires at least one path")
	}
	for _, path := range req.Paths {
		job, added, err := s.daemon.Enqueue(path)
		if err != nil {
			resp.Rejected = append(resp.Rejected, EnqueueRejection{Path: path, Reason: err.Error()})
			continue
		}
		if !added {
			resp.Rejected = append(resp.Rejected, EnqueueRejection{Path: job.SourcePath, Reason: "already queued"})
			continue
		}
		resp.Added = append(resp.Added, api.FromJob(job, -1))
	}
	if len(resp.Added) > 0 {
		positions := make(map[string]int)
		for i, job := range s.daemon.Jobs() {
			positions[job.ID] = i
		}
		for i := range resp.Added {
			if pos, ok := positions[resp.Added[i].ID]; ok {
				resp.Added[i].Position = pos
			}
		}
		s.logger.Info("files enqueued via IPC",
			logging.String(logging.FieldEventType, "enqueue"),
			logging.Int("added", len(resp.Added)),
			logging.Int("rejected", len(resp.Rejected)))
	}
	return nil
}

func (s *service) QueueList(req QueueListRequest, resp *QueueListResponse) error {
	var allowed map[queue.Status]struct{}
	if len(req.Statuses) > 0 {
		allowed = make(map[queue.Status]struct{}, len(req.Statuses))
		for _, raw := range req.Statuses {
			if parsed, ok := queue.ParseStatus(raw); ok {
				allowed[parsed] = struct{}{}
			}
		}
	}
	for i, job := range s.daemon.Jobs() {
		if allowed != nil {
			if _, ok := allowed[job.Status]; !ok {
				continue
			}
		}
		resp.Jobs = append(resp.Jobs, api.FromJob(job, i))
	}
	return nil
}

func (s *service) QueueRemove(req QueueRemoveRequest, resp *QueueRemoveResponse) error {
	if strings.TrimSpace(req.ID) == "" {
		return errors.New("queue remove requires a job id")
	}
	job, err := s.daemon.RemoveJob(req.ID)
	if err != nil {
		return err
	}
	resp.Removed = api.FromJob(job, -1)
	s.logger.Info("job removed via IPC",
		logging.String(logging.FieldEventType, "queue_remove"),
		logging.String(logging.FieldJobID, job.ID))
	return nil
}

func (s *service) QueueReorder(req QueueReorderRequest, resp *QueueReorderResponse) error {
	jobs, err := s.daemon.ReorderJobs(req.From, req.To)
	if err != nil {
		return err
	}
	resp.Jobs = api.FromJobs(jobs)
	s.logger.Info("queue reordered via IPC",
		logging.String(logging.FieldEventType, "queue_reorder"),
		logging.Int("from", req.From),
		logging.Int("to", req.To))
	return nil
}

func (s *service) QueueClear(_ QueueClearRequest, resp *QueueClearResponse) error {
	removed, err := s.daemon.ClearQueue()
	if err != nil {
		return err
	}
	resp.Removed = removed
	s.logger.Info("queue cleared via IPC",
		logging.String(logging.FieldEventType, "queue_clear"),
		logging.Int("removed_count", removed))
	return nil
}

func (s *service) StartBatch(_ StartBatchRequest, resp *StartBatchResponse) error {
	if s.daemon.BatchActive() {
		resp.Started = false
		resp.Message = "a batch is already running"
		return nil
	}
	if err := s.daemon.StartBatch(); err != nil {
		return err
	}
	resp.Started = true
	s.logger.Info("batch started via IPC",
		logging.String(logging.FieldEventType, "batch_start"))
	return nil
}

func (s *service) StatusUpdates(req StatusUpdatesRequest, resp *StatusUpdatesResponse) error {
	wait := time.Duration(req.WaitMillis) * time.Millisecond
	if wait > maxUpdateWait {
		wait = maxUpdateWait
	}
	ctx := s.ctx
	if wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, wait)
		defer cancel()
	}
	updates, next, err := s.daemon.StatusUpdates(ctx, req.Since, req.Limit, wait > 0)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return err
	}
	resp.Updates = updates
	resp.Next = next
	return nil
}

func (s *service) SettingsGet(_ SettingsGetRequest, resp *SettingsGetResponse) error {
	resp.Settings = api.FromSettings(s.daemon.Settings())
	return nil
}

func (s *service) SettingsSet(req SettingsSetRequest, resp *SettingsSetResponse) error {
	updated, err := s.daemon.UpdateSetting(req.Key, req.Value)
	if err != nil {
		return err
	}
	resp.Settings = api.FromSettings(updated)
	s.logger.Info("setting changed via IPC",
		logging.String(logging.FieldEventType, "settings_set"),
		logging.String("key", req.Key))
	return nil
}

func (s *service) PresetList(_ PresetListRequest, resp *PresetListResponse) error {
	resp.Presets = api.FromPresets(s.daemon.Presets())
	return nil
}

func (s *service) HistoryList(req HistoryListRequest, resp *HistoryListResponse) error {
	resp.Enabled = s.daemon.HistoryEnabled()
	if !resp.Enabled {
		return nil
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	entries, err := s.daemon.History(s.ctx, limit)
	if err != nil {
		return err
	}
	resp.Entries = api.FromHistoryEntries(entries)
	return nil
}

func (s *service) EngineRestart(_ EngineRestartRequest, resp *EngineRestartResponse) error {
	if err := s.daemon.EngineRestart(); err != nil {
		return err
	}
	engine := s.daemon.Status(s.ctx).Engine
	resp.Running = engine.Running
	resp.PID = engine.PID
	return nil
}

func (s *service) LogTail(req LogTailRequest, resp *LogTailResponse) error {
	logPath := s.daemon.LogPath()
	if logPath == "" {
		resp.Offset = 0
		return nil
	}
	wait := time.Duration(req.WaitMillis) * time.Millisecond
	if wait <= 0 && req.Follow {
		wait = time.Second
	}
	options := logs.Options{
		Offset: req.Offset,
		Limit:  req.Limit,
		Follow: req.Follow,
		Wait:   wait,
	}
	ctx := s.ctx
	if req.Follow && wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, wait+500*time.Millisecond)
		defer cancel()
	}
	result, err := logs.Tail(ctx, logPath, options)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			resp.Offset = result.Offset
			return nil
		}
		return err
	}
	resp.Lines = result.Lines
	resp.Offset = result.Offset
	return nil
}
