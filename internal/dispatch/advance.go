package dispatch

import (
	"context"
	"fmt"
	"time"

	"v2s/internal/engine"
	"v2s/internal/events"
	"v2s/internal/history"
	"v2s/internal/logging"
	"v2s/internal/preset"
	"v2s/internal/queue"
)

// advanceLocked submits the next pending job, or winds the run down when
// none is left. Caller holds c.mu.
func (c *Controller) advanceLocked() {
	if c.state != stateRunning {
		return
	}
	for {
		job := c.queue.NextPending()
		if job == nil {
			c.finishRunLocked()
			return
		}
		job.BeginProcessing()
		c.hub.Publish(events.NewJobUpdate(events.KindJobUpdated, job))

		task := c.buildTaskLocked(job)
		if err := c.worker.Submit(task); err != nil {
			logging.ErrorWithContext(c.logger, "task submission failed", "engine_submit",
				logging.String(logging.FieldJobID, job.ID),
				logging.Error(err))
			job.SetFailed(fmt.Sprintf("could not reach engine: %v", err))
			c.hub.Publish(events.NewJobUpdate(events.KindJobUpdated, job))
			continue
		}
		c.currentTask = &task
		c.logger.Info("task submitted",
			logging.String(logging.FieldJobID, job.ID),
			logging.String(logging.FieldSourcePath, job.SourcePath),
			logging.String("model", task.Model),
			logging.String("format", task.Format))
		return
	}
}

// buildTaskLocked snapshots the current settings into a task description.
// Later settings edits never reach a task that is already submitted.
func (c *Controller) buildTaskLocked(job *queue.Job) engine.TranscribeRequest {
	s := c.settings.Get()
	maxChars, maxLines := s.MaxChars, s.MaxLines
	if maxChars <= 0 || maxLines <= 0 {
		p, _ := preset.Resolve(s.Preset, s.CustomPresets)
		if maxChars <= 0 {
			maxChars = p.MaxChars
		}
		if maxLines <= 0 {
			maxLines = p.MaxLines
		}
	}
	return engine.TranscribeRequest{
		Command:    engine.CommandTranscribe,
		Path:       job.SourcePath,
		Model:      s.Model,
		Language:   s.Language,
		Device:     s.Device,
		Format:     s.Format,
		OutputName: s.OutputName,
		OutputDir:  s.OutputDir,
		Preset:     s.Preset,
		MaxChars:   maxChars,
		MaxLines:   maxLines,
		Profanity:  s.Profanity,
	}
}

// finishRunLocked returns the controller to idle. A job still marked
// processing here means a terminal message was missed; it is forced done
// rather than left wedged.
func (c *Controller) finishRunLocked() {
	for {
		stuck := c.queue.FirstWithStatus(queue.StatusProcessing)
		if stuck == nil {
			break
		}
		c.logger.Warn("job still processing at batch end, forcing done",
			logging.String(logging.FieldJobID, stuck.ID))
		stuck.ForceDone()
		c.hub.Publish(events.NewJobUpdate(events.KindJobUpdated, stuck))
	}
	c.state = stateIdle
	c.currentTask = nil
	c.hub.Publish(events.Update{Kind: events.KindBatchFinished, SavePath: c.lastSavedPath})
	c.logger.Info("batch finished",
		logging.String(logging.FieldBatchState, "idle"),
		logging.String("last_saved", c.lastSavedPath))
	if c.lastSavedPath != "" && c.settings.Get().AutoOpen {
		go c.reveal(c.lastSavedPath)
	}
}

// recordHistoryLocked logs a finished job, using the submitted task for the
// option values because settings may have changed since submission.
func (c *Controller) recordHistoryLocked(job *queue.Job) {
	if c.history == nil {
		return
	}
	entry := history.Entry{
		JobID:       job.ID,
		SourcePath:  job.SourcePath,
		DisplayName: job.DisplayName,
		Kind:        string(job.Kind),
		SavePath:    job.SavePath,
		WordCount:   job.WordCount,
		Confidence:  job.Confidence,
		FinishedAt:  time.Now().UTC(),
	}
	if job.Metadata != nil {
		entry.Duration = job.Metadata.Duration
	}
	if c.currentTask != nil {
		entry.Format = c.currentTask.Format
		entry.Model = c.currentTask.Model
		entry.Language = c.currentTask.Language
		entry.Preset = c.currentTask.Preset
	}
	if err := c.history.Record(context.Background(), entry); err != nil {
		logging.WarnWithContext(c.logger, "history record failed", "history_write",
			logging.String(logging.FieldJobID, job.ID),
			logging.Error(err))
	}
}
