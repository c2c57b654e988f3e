package dispatch

import (
	"fmt"

	"v2s/internal/engine"
	"v2s/internal/events"
	"v2s/internal/logging"
	"v2s/internal/queue"
)

// HandleMessage implements engine.Sink. Messages arrive one at a time from
// the adapter's reader goroutine, in the order the worker emitted them.
func (c *Controller) HandleMessage(msg engine.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch msg.Type {
	case engine.TypeAnalysisResult:
		c.handleAnalysisLocked(msg)
	case engine.TypeProgress:
		c.handleProgressLocked(msg)
	case engine.TypeSuccess:
		c.handleSuccessLocked(msg)
	case engine.TypeError:
		c.handleErrorLocked(msg)
	case engine.TypeStatus, engine.TypeInfo:
		c.engineNote = msg.Message
		c.hub.Publish(events.Update{Kind: events.KindEngineStatus, Status: "up", Message: msg.Message})
		c.logger.Info("engine status",
			logging.String(logging.FieldEngineMessage, msg.Type),
			logging.String("message", msg.Message))
	default:
		c.logger.Debug("unhandled engine message",
			logging.String(logging.FieldEngineMessage, msg.Type))
	}
}

// handleAnalysisLocked attaches metadata to the job owning the analyzed
// path. Results for removed jobs are dropped.
func (c *Controller) handleAnalysisLocked(msg engine.Message) {
	data, err := msg.AnalysisData()
	if err != nil {
		c.logger.Debug("undecodable analysis result", logging.Error(err))
		return
	}
	job := c.queue.FindByPath(data.Path)
	if job == nil {
		c.logger.Debug("analysis result for unknown path",
			logging.String(logging.FieldSourcePath, data.Path))
		return
	}
	job.SetMetadata(queue.Metadata{Duration: data.Duration, Thumbnail: data.Thumbnail})
	c.hub.Publish(events.NewJobUpdate(events.KindJobUpdated, job))
}

// handleProgressLocked applies a progress report to the in-flight job.
// Progress with nothing processing arrives after completion or removal and
// is dropped.
func (c *Controller) handleProgressLocked(msg engine.Message) {
	job := c.queue.FirstWithStatus(queue.StatusProcessing)
	if job == nil {
		c.logger.Debug("progress with no job processing",
			logging.String("message", msg.Message))
		return
	}
	if percent, ok := msg.ProgressPercent(); ok {
		job.SetProgress(percent)
	}
	upd := events.NewJobUpdate(events.KindJobUpdated, job)
	upd.Message = msg.Message
	c.hub.Publish(upd)
}

func (c *Controller) handleSuccessLocked(msg engine.Message) {
	job := c.queue.FirstWithStatus(queue.StatusProcessing)
	if job == nil {
		c.logger.Debug("success with no job processing")
		return
	}
	data, err := msg.SuccessData()
	if err != nil {
		// Still terminal for the in-flight job; only the result details
		// are lost.
		c.logger.Warn("success payload undecodable", logging.Error(err))
		job.ForceDone()
	} else {
		job.SetDone(data.SavePath, data.WordCount, data.Confidence)
		c.lastSavedPath = data.SavePath
	}
	c.hub.Publish(events.NewJobUpdate(events.KindJobUpdated, job))
	c.recordHistoryLocked(job)
	c.currentTask = nil
	c.logger.Info("job finished",
		logging.String(logging.FieldJobID, job.ID),
		logging.String("save_path", job.SavePath),
		logging.Int("word_count", job.WordCount))
	c.advanceLocked()
}

func (c *Controller) handleErrorLocked(msg engine.Message) {
	job := c.queue.FirstWithStatus(queue.StatusProcessing)
	if job == nil {
		// Analysis failures and other out-of-task errors end up here.
		c.logger.Debug("engine error with no job processing",
			logging.String("message", msg.Message))
		return
	}
	job.SetFailed(msg.Message)
	c.hub.Publish(events.NewJobUpdate(events.KindJobUpdated, job))
	c.currentTask = nil
	logging.WarnWithContext(c.logger, "job failed", "engine_error",
		logging.String(logging.FieldJobID, job.ID),
		logging.String("message", msg.Message),
		logging.String(logging.FieldImpact, "job marked error; batch continues"))
	c.advanceLocked()
}

// HandleEngineExit implements engine.Sink for worker deaths the controller
// did not ask for. The in-flight job fails, the run winds down, and the
// daemon stays up so the queue remains inspectable. Recovery is an explicit
// engine restart.
func (c *Controller) HandleEngineExit(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	detail := "exited"
	if err != nil {
		detail = fmt.Sprintf("exited: %v", err)
	}
	reason := "engine " + detail
	c.engineNote = reason
	if job := c.queue.FirstWithStatus(queue.StatusProcessing); job != nil {
		job.SetFailed(reason)
		c.hub.Publish(events.NewJobUpdate(events.KindJobUpdated, job))
	}
	c.currentTask = nil
	if c.state == stateRunning {
		c.state = stateIdle
		c.hub.Publish(events.Update{Kind: events.KindBatchFinished, Message: reason})
	}
	c.hub.Publish(events.Update{Kind: events.KindEngineStatus, Status: "down", Message: detail})
	logging.ErrorWithContext(c.logger, "engine process exited", "engine_exit",
		logging.Error(err),
		logging.String(logging.FieldImpact, "batch halted; run 'v2s engine restart'"))
}
