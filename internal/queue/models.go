package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a queue job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusError      Status = "error"
)

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusDone,
	StatusError,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var terminalStatuses = map[Status]struct{}{
	StatusDone:  {},
	StatusError: {},
}

// Kind distinguishes audio sources from video sources. The worker uses it to
// decide whether thumbnail extraction applies.
type Kind string

const (
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
)

// Metadata holds analysis results that arrive asynchronously after enqueue.
type Metadata struct {
	// Duration is the media runtime as reported by the worker ("MM:SS").
	Duration string
	// Thumbnail is a base64 data URI for video sources, empty otherwise.
	Thumbnail string
}

// Job represents one transcription request in the queue.
type Job struct {
	ID              string
	SourcePath      string
	DisplayName     string
	Kind            Kind
	Status          Status
	ProgressPercent float64
	ErrorMessage    string
	SavePath        string
	WordCount       int
	Confidence      int
	Metadata        *Metadata
	EnqueuedAt      time.Time
	UpdatedAt       time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether the job finished its last run (done or error).
func (j Job) IsTerminal() bool {
	_, ok := terminalStatuses[j.Status]
	return ok
}

// BeginProcessing moves the job into the single in-flight slot. Progress is
// reset so a job re-run after an earlier batch does not show stale percentages.
func (j *Job) BeginProcessing() {
	j.Status = StatusProcessing
	j.ProgressPercent = 0
	j.ErrorMessage = ""
	j.touch()
}

// SetProgress updates the completion percentage reported by the worker.
func (j *Job) SetProgress(percent float64) {
	j.ProgressPercent = percent
	j.touch()
}

// SetDone records a successful transcription.
func (j *Job) SetDone(savePath string, wordCount, confidence int) {
	j.Status = StatusDone
	j.ProgressPercent = 100
	j.SavePath = savePath
	j.WordCount = wordCount
	j.Confidence = confidence
	j.ErrorMessage = ""
	j.touch()
}

// ForceDone marks a job done without a success payload. Used when the run
// winds down with the job still flagged as processing.
func (j *Job) ForceDone() {
	j.Status = StatusDone
	j.ProgressPercent = 100
	j.touch()
}

// SetFailed marks the job as errored with the given message.
func (j *Job) SetFailed(message string) {
	j.Status = StatusError
	j.ErrorMessage = message
	j.ProgressPercent = 0
	j.touch()
}

// SetMetadata attaches analysis results to the job.
func (j *Job) SetMetadata(meta Metadata) {
	j.Metadata = &meta
	j.touch()
}

// Clone returns a deep copy of the job.
func (j *Job) Clone() Job {
	out := *j
	if j.Metadata != nil {
		meta := *j.Metadata
		out.Metadata = &meta
	}
	return out
}

func (j *Job) touch() {
	j.UpdatedAt = time.Now().UTC()
}
