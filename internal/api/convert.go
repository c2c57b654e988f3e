package api

import (
	"time"

	"v2s/internal/deps"
	"v2s/internal/history"
	"v2s/internal/preset"
	"v2s/internal/queue"
	"v2s/internal/settings"
)

// Severity levels attached to dependency and status rows.
const (
	SeverityOK      = "ok"
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// FromJob converts a queue job to its API representation. Position is the
// job's zero-based place in queue order. Thumbnails stay daemon-side; the
// DTO only signals their presence.
func FromJob(job queue.Job, position int) Job {
	dto := Job{
		ID:              job.ID,
		Position:        position,
		SourcePath:      job.SourcePath,
		DisplayName:     job.DisplayName,
		Kind:            string(job.Kind),
		Status:          string(job.Status),
		ProgressPercent: job.ProgressPercent,
		ErrorMessage:    job.ErrorMessage,
		SavePath:        job.SavePath,
		WordCount:       job.WordCount,
		Confidence:      job.Confidence,
		EnqueuedAt:      FormatTime(job.EnqueuedAt),
		UpdatedAt:       FormatTime(job.UpdatedAt),
	}
	if job.Metadata != nil {
		dto.Duration = job.Metadata.Duration
		dto.HasThumbnail = job.Metadata.Thumbnail != ""
	}
	return dto
}

// FromJobs converts a queue snapshot into API DTOs, preserving order.
func FromJobs(jobs []queue.Job) []Job {
	if len(jobs) == 0 {
		return nil
	}
	out := make([]Job, 0, len(jobs))
	for i, job := range jobs {
		out = append(out, FromJob(job, i))
	}
	return out
}

// FromHistoryEntry converts a stored transcription record.
func FromHistoryEntry(entry history.Entry) HistoryEntry {
	return HistoryEntry{
		ID:          entry.ID,
		JobID:       entry.JobID,
		SourcePath:  entry.SourcePath,
		DisplayName: entry.DisplayName,
		Kind:        entry.Kind,
		SavePath:    entry.SavePath,
		Format:      entry.Format,
		Model:       entry.Model,
		Language:    entry.Language,
		Preset:      entry.Preset,
		WordCount:   entry.WordCount,
		Confidence:  entry.Confidence,
		Duration:    entry.Duration,
		FinishedAt:  FormatTime(entry.FinishedAt),
	}
}

// FromHistoryEntries converts a slice of transcription records.
func FromHistoryEntries(entries []history.Entry) []HistoryEntry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, FromHistoryEntry(entry))
	}
	return out
}

// FromPreset converts a preset definition.
func FromPreset(p preset.Preset) PresetView {
	return PresetView{
		Name:     p.Name,
		Label:    p.Label,
		MaxChars: p.MaxChars,
		MaxLines: p.MaxLines,
		Builtin:  p.Builtin,
	}
}

// FromPresets converts a preset catalog, preserving order.
func FromPresets(presets []preset.Preset) []PresetView {
	if len(presets) == 0 {
		return nil
	}
	out := make([]PresetView, 0, len(presets))
	for _, p := range presets {
		out = append(out, FromPreset(p))
	}
	return out
}

// FromSettings converts the persisted settings. Custom presets travel
// separately through the preset catalog.
func FromSettings(s settings.Settings) SettingsView {
	return SettingsView{
		Model:      s.Model,
		Language:   s.Language,
		Device:     s.Device,
		Format:     s.Format,
		OutputName: s.OutputName,
		OutputDir:  s.OutputDir,
		Preset:     s.Preset,
		MaxChars:   s.MaxChars,
		MaxLines:   s.MaxLines,
		Profanity:  s.Profanity,
		AutoOpen:   s.AutoOpen,
	}
}

// FromDependency converts a binary check result, deriving severity from
// availability and whether the dependency is optional.
func FromDependency(status deps.Status) DependencyStatus {
	dto := DependencyStatus{
		Name:        status.Name,
		Command:     status.Command,
		Description: status.Description,
		Optional:    status.Optional,
		Available:   status.Available,
		Detail:      status.Detail,
		Severity:    SeverityOK,
	}
	if !status.Available {
		if status.Optional {
			dto.Severity = SeverityWarning
		} else {
			dto.Severity = SeverityError
		}
	}
	return dto
}

// FromDependencies converts a slice of binary check results.
func FromDependencies(statuses []deps.Status) []DependencyStatus {
	if len(statuses) == 0 {
		return nil
	}
	out := make([]DependencyStatus, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, FromDependency(status))
	}
	return out
}

// MergeQueueStats produces a string-keyed representation of queue stats.
func MergeQueueStats(stats map[queue.Status]int) map[string]int {
	out := make(map[string]int, len(stats))
	for status, count := range stats {
		out[string(status)] = count
	}
	return out
}

// FormatTime converts a time to RFC3339 or returns empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
