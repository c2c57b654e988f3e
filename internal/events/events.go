package events

import (
	"time"

	"v2s/internal/queue"
)

// Update kinds published by the daemon.
const (
	KindJobAdded       = "job_added"
	KindJobUpdated     = "job_updated"
	KindJobRemoved     = "job_removed"
	KindQueueReordered = "queue_reordered"
	KindBatchStarted   = "batch_started"
	KindBatchFinished  = "batch_finished"
	KindEngineStatus   = "engine_status"
)

// Update is one observable state change. Job fields are set for the job_*
// kinds; Message carries engine status text or a failure reason.
type Update struct {
	Sequence    uint64    `json:"seq"`
	Timestamp   time.Time `json:"ts"`
	Kind        string    `json:"kind"`
	JobID       string    `json:"job_id,omitempty"`
	SourcePath  string    `json:"source_path,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	JobKind     string    `json:"job_kind,omitempty"`
	Status      string    `json:"status,omitempty"`
	Progress    float64   `json:"progress,omitempty"`
	Message     string    `json:"message,omitempty"`
	SavePath    string    `json:"save_path,omitempty"`
	Duration    string    `json:"duration,omitempty"`
}

// NewJobUpdate copies a job's observable state into an Update of the given
// kind. Sequence and Timestamp are assigned on publish.
func NewJobUpdate(kind string, job *queue.Job) Update {
	upd := Update{
		Kind:        kind,
		JobID:       job.ID,
		SourcePath:  job.SourcePath,
		DisplayName: job.DisplayName,
		JobKind:     string(job.Kind),
		Status:      string(job.Status),
		Progress:    job.ProgressPercent,
		Message:     job.ErrorMessage,
		SavePath:    job.SavePath,
	}
	if job.Metadata != nil {
		upd.Duration = job.Metadata.Duration
	}
	return upd
}
