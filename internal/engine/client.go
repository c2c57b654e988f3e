package engine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"v2s/internal/config"
	"v2s/internal/logging"
)

// ErrNotRunning is returned by Submit when no worker process is attached.
var ErrNotRunning = errors.New("engine is not running")

// Sink receives every protocol message the worker emits, in arrival order,
// plus a single exit notification when the process dies on its own. Calls
// come from the client's reader goroutine one at a time.
type Sink interface {
	HandleMessage(msg Message)
	HandleEngineExit(err error)
}

// Client owns one worker process and its stdio channel. Commands go down
// stdin as single newline-terminated JSON writes; stdout is reframed into
// lines and parsed into Messages for the sink. The client never matches a
// response to a request, correlation belongs to the caller.
type Client struct {
	command string
	args    []string
	workdir string
	logger  *slog.Logger

	mu       sync.Mutex
	started  bool
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	exitCh   chan error
	stopping atomic.Bool

	testStdin  io.WriteCloser
	testStdout io.Reader
}

// Option adjusts client construction.
type Option func(*Client)

// WithPipes attaches the client to caller-supplied pipes instead of spawning
// a process. Stop closes stdin and waits for stdout EOF as usual.
func WithPipes(stdin io.WriteCloser, stdout io.Reader) Option {
	return func(c *Client) {
		c.testStdin = stdin
		c.testStdout = stdout
	}
}

// New builds a client for the configured worker command. The command may be
// empty only when pipes are injected.
func New(cfg config.Engine, logger *slog.Logger, opts ...Option) (*Client, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	c := &Client{
		command: strings.TrimSpace(cfg.Command),
		args:    append([]string(nil), cfg.Args...),
		workdir: cfg.Workdir,
		logger:  logging.NewComponentLogger(logger, "engine"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.command == "" && c.testStdout == nil {
		return nil, errors.New("engine command is not configured")
	}
	return c, nil
}

// Start launches the worker and begins pumping its stdout into sink. The
// context bounds the process lifetime; cancelling it kills the worker.
func (c *Client) Start(ctx context.Context, sink Sink) error {
	if sink == nil {
		return errors.New("engine sink is required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return errors.New("engine already running")
	}
	c.stopping.Store(false)
	c.exitCh = make(chan error, 1)

	if c.testStdout != nil {
		c.stdin = c.testStdin
		c.started = true
		go func() {
			c.readLoop(c.testStdout, sink)
			c.finish(nil, sink)
		}()
		return nil
	}

	cmd := exec.CommandContext(ctx, c.command, c.args...)
	if c.workdir != "" {
		cmd.Dir = c.workdir
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("engine stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("engine stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("engine stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start engine %s: %w", c.command, err)
	}
	c.cmd = cmd
	c.stdin = stdin
	c.started = true
	c.logger.Info("engine started",
		logging.String("command", c.command),
		logging.Int("pid", cmd.Process.Pid))

	var readers sync.WaitGroup
	readers.Add(2)
	go func() {
		defer readers.Done()
		c.readLoop(stdout, sink)
	}()
	go func() {
		defer readers.Done()
		c.stderrLoop(stderr)
	}()
	go func() {
		readers.Wait()
		c.finish(cmd.Wait(), sink)
	}()
	return nil
}

// finish records the exit and notifies the sink unless Stop initiated it.
func (c *Client) finish(err error, sink Sink) {
	c.mu.Lock()
	c.started = false
	c.cmd = nil
	c.stdin = nil
	exitCh := c.exitCh
	c.mu.Unlock()

	if c.stopping.Load() {
		c.logger.Info("engine stopped")
	} else {
		sink.HandleEngineExit(err)
	}
	if exitCh != nil {
		exitCh <- err
	}
}

// Submit marshals one command and writes it to the worker as a single
// newline-terminated write. The lock keeps concurrent submits from
// interleaving on the pipe.
func (c *Client) Submit(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode engine command: %w", err)
	}
	payload = append(payload, '\n')

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stdin == nil {
		return ErrNotRunning
	}
	if _, err := c.stdin.Write(payload); err != nil {
		return fmt.Errorf("write engine command: %w", err)
	}
	return nil
}

// Stop closes the worker's stdin so it can exit on its own, then kills it
// if it is still alive after the timeout. Safe to call when not running.
func (c *Client) Stop(timeout time.Duration) error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return nil
	}
	c.stopping.Store(true)
	if c.stdin != nil {
		_ = c.stdin.Close()
		c.stdin = nil
	}
	cmd := c.cmd
	exitCh := c.exitCh
	c.mu.Unlock()

	select {
	case <-exitCh:
		return nil
	case <-time.After(timeout):
	}
	if cmd == nil || cmd.Process == nil {
		return errors.New("engine did not stop before timeout")
	}
	c.logger.Warn("engine did not exit on stdin close, killing",
		logging.Int("pid", cmd.Process.Pid))
	_ = cmd.Process.Kill()
	select {
	case <-exitCh:
		return nil
	case <-time.After(2 * time.Second):
		return errors.New("engine did not exit after kill")
	}
}

// Running reports whether a worker process is currently attached.
func (c *Client) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

// PID returns the worker's process ID, or 0 when not running.
func (c *Client) PID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cmd == nil || c.cmd.Process == nil {
		return 0
	}
	return c.cmd.Process.Pid
}

func (c *Client) readLoop(r io.Reader, sink Sink) {
	asm := &LineAssembler{}
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			for _, line := range asm.Feed(buf[:n]) {
				c.dispatchLine(line, sink)
			}
		}
		if err != nil {
			if tail := asm.Pending(); len(tail) > 0 {
				c.dispatchLine(tail, sink)
			}
			if !errors.Is(err, io.EOF) && !c.stopping.Load() {
				c.logger.Debug("engine stdout read ended", logging.Error(err))
			}
			return
		}
	}
}

func (c *Client) dispatchLine(line []byte, sink Sink) {
	msg, ok := ParseMessage(line)
	if !ok {
		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			c.logger.Debug("engine emitted non-protocol output",
				logging.String("line", truncateForLog(trimmed)))
		}
		return
	}
	sink.HandleMessage(msg)
}

func (c *Client) stderrLoop(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		c.logger.Debug("engine stderr", logging.String("line", line))
	}
}

func truncateForLog(b []byte) string {
	const max = 200
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "..."
}
