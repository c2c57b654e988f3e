package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Job describes a queue entry in a transport-friendly format.
type Job struct {
	ID              string  `json:"id"`
	Position        int     `json:"position"`
	SourcePath      string  `json:"sourcePath"`
	DisplayName     string  `json:"displayName"`
	Kind            string  `json:"kind"`
	Status          string  `json:"status"`
	ProgressPercent float64 `json:"progressPercent"`
	ErrorMessage    string  `json:"errorMessage,omitempty"`
	SavePath        string  `json:"savePath,omitempty"`
	WordCount       int     `json:"wordCount,omitempty"`
	Confidence      int     `json:"confidence,omitempty"`
	Duration        string  `json:"duration,omitempty"`
	HasThumbnail    bool    `json:"hasThumbnail"`
	EnqueuedAt      string  `json:"enqueuedAt,omitempty"`
	UpdatedAt       string  `json:"updatedAt,omitempty"`
}

// EngineStatus reports worker process state.
type EngineStatus struct {
	Running bool   `json:"running"`
	PID     int    `json:"pid,omitempty"`
	Note    string `json:"note,omitempty"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
	Severity    string `json:"severity,omitempty"`
}

// DependencySummary aggregates dependency readiness for status output.
type DependencySummary struct {
	Total           int    `json:"total"`
	Available       int    `json:"available"`
	MissingRequired int    `json:"missingRequired"`
	MissingOptional int    `json:"missingOptional"`
	Severity        string `json:"severity"`
	Detail          string `json:"detail"`
}

// StatusLine is one labelled status row for CLI rendering.
type StatusLine struct {
	Label    string `json:"label"`
	Severity string `json:"severity"`
	Detail   string `json:"detail"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
// SystemChecks and DependencySummary are filled client-side so offline
// snapshots render the same way as live ones.
type DaemonStatus struct {
	Running           bool               `json:"running"`
	PID               int                `json:"pid"`
	BatchActive       bool               `json:"batchActive"`
	QueueStats        map[string]int     `json:"queueStats"`
	Jobs              []Job              `json:"jobs,omitempty"`
	Engine            EngineStatus       `json:"engine"`
	Dependencies      []DependencyStatus `json:"dependencies,omitempty"`
	SystemChecks      []StatusLine       `json:"systemChecks,omitempty"`
	DependencySummary DependencySummary  `json:"dependencySummary"`
	LockPath          string             `json:"lockPath,omitempty"`
	SocketPath        string             `json:"socketPath,omitempty"`
	LogPath           string             `json:"logPath,omitempty"`
}

// HistoryEntry is one finished transcription in transport form.
type HistoryEntry struct {
	ID          int64  `json:"id"`
	JobID       string `json:"jobId"`
	SourcePath  string `json:"sourcePath"`
	DisplayName string `json:"displayName"`
	Kind        string `json:"kind"`
	SavePath    string `json:"savePath"`
	Format      string `json:"format,omitempty"`
	Model       string `json:"model,omitempty"`
	Language    string `json:"language,omitempty"`
	Preset      string `json:"preset,omitempty"`
	WordCount   int    `json:"wordCount"`
	Confidence  int    `json:"confidence"`
	Duration    string `json:"duration,omitempty"`
	FinishedAt  string `json:"finishedAt"`
}

// PresetView is a subtitle preset in transport form.
type PresetView struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	MaxChars int    `json:"maxChars"`
	MaxLines int    `json:"maxLines"`
	Builtin  bool   `json:"builtin"`
}

// SettingsView mirrors the persisted transcription settings for clients.
type SettingsView struct {
	Model      string `json:"model"`
	Language   string `json:"language"`
	Device     string `json:"device"`
	Format     string `json:"format"`
	OutputName string `json:"outputName"`
	OutputDir  string `json:"outputDir"`
	Preset     string `json:"preset"`
	MaxChars   int    `json:"maxChars"`
	MaxLines   int    `json:"maxLines"`
	Profanity  bool   `json:"profanity"`
	AutoOpen   bool   `json:"autoOpen"`
}
