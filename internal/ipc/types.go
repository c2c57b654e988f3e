package ipc

import (
	"v2s/internal/api"
	"v2s/internal/events"
)

// PingRequest probes daemon liveness.
type PingRequest struct{}

// PingResponse carries the daemon process id.
type PingResponse struct {
	PID int `json:"pid"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse is the aggregate daemon status.
type StatusResponse = api.DaemonStatus

// StopRequest asks the daemon process to shut down.
type StopRequest struct{}

// StopResponse indicates stop acceptance.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// EnqueueRequest adds media files to the queue.
type EnqueueRequest struct {
	Paths []string `json:"paths"`
}

// EnqueueRejection explains why one path was not enqueued.
type EnqueueRejection struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// EnqueueResponse lists admitted jobs and per-path rejections.
type EnqueueResponse struct {
	Added    []api.Job          `json:"added"`
	Rejected []EnqueueRejection `json:"rejected"`
}

// QueueListRequest lists the queue, optionally filtered by status names.
type QueueListRequest struct {
	Statuses []string `json:"statuses"`
}

// QueueListResponse contains queue entries in queue order.
type QueueListResponse struct {
	Jobs []api.Job `json:"jobs"`
}

// QueueRemoveRequest removes one job by id.
type QueueRemoveRequest struct {
	ID string `json:"id"`
}

// QueueRemoveResponse returns the removed job.
type QueueRemoveResponse struct {
	Removed api.Job `json:"removed"`
}

// QueueReorderRequest moves the job at index From to index To.
type QueueReorderRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// QueueReorderResponse returns the queue after the move.
type QueueReorderResponse struct {
	Jobs []api.Job `json:"jobs"`
}

// QueueClearRequest removes every queued job.
type QueueClearRequest struct{}

// QueueClearResponse reports how many jobs were removed.
type QueueClearResponse struct {
	Removed int `json:"removed"`
}

// StartBatchRequest begins a processing run.
type StartBatchRequest struct{}

// StartBatchResponse indicates whether a new run began. Started is false
// when a run was already active.
type StartBatchResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message,omitempty"`
}

// Update is one observable state change, as published by the daemon.
type Update = events.Update

// StatusUpdatesRequest reads the update stream after a known sequence.
// WaitMillis > 0 blocks until something newer than Since arrives or the
// wait elapses.
type StatusUpdatesRequest struct {
	Since      uint64 `json:"since"`
	Limit      int    `json:"limit"`
	WaitMillis int64  `json:"waitMillis"`
}

// StatusUpdatesResponse carries updates and the cursor for the next read.
type StatusUpdatesResponse struct {
	Updates []Update `json:"updates"`
	Next    uint64   `json:"next"`
}

// SettingsGetRequest fetches the persisted transcription settings.
type SettingsGetRequest struct{}

// SettingsGetResponse carries the current settings.
type SettingsGetResponse struct {
	Settings api.SettingsView `json:"settings"`
}

// SettingsSetRequest changes one settings key.
type SettingsSetRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SettingsSetResponse carries the settings after the change.
type SettingsSetResponse struct {
	Settings api.SettingsView `json:"settings"`
}

// PresetListRequest lists subtitle presets.
type PresetListRequest struct{}

// PresetListResponse contains built-in and custom presets.
type PresetListResponse struct {
	Presets []api.PresetView `json:"presets"`
}

// HistoryListRequest fetches recent finished transcriptions.
type HistoryListRequest struct {
	Limit int `json:"limit"`
}

// HistoryListResponse contains history entries, newest first. Enabled is
// false when the daemon runs without a history store.
type HistoryListResponse struct {
	Enabled bool               `json:"enabled"`
	Entries []api.HistoryEntry `json:"entries"`
}

// EngineRestartRequest replaces the worker process.
type EngineRestartRequest struct{}

// EngineRestartResponse reports the worker state after the restart.
type EngineRestartResponse struct {
	Running bool `json:"running"`
	PID     int  `json:"pid"`
}

// LogTailRequest reads daemon log lines from an offset. A negative offset
// means "the last Limit lines".
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int64 `json:"waitMillis"`
}

// LogTailResponse carries log lines and the offset for the next read.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}
