package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"v2s/internal/config"
)

// Requirement defines an external binary v2s relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the binaries for the given configuration. The engine
// command is the only hard requirement; ffmpeg and ffprobe are what the
// engine itself shells out to, so their absence is advisory here and fatal
// only inside the worker.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "Engine",
			Command:     cfg.Engine.Command,
			Description: "Transcription worker process",
		},
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Audio extraction inside the engine",
			Optional:    true,
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Media analysis inside the engine",
			Optional:    true,
		},
	}
}

// Check resolves the configured requirements against the current PATH.
func Check(cfg *config.Config) []Status {
	return CheckBinaries(Requirements(cfg))
}

// CheckBinaries evaluates the provided requirements and reports availability.
// The resolved path is recorded for available binaries so status output shows
// what the daemon will actually exec.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Command = resolved
		status.Available = true
		results = append(results, status)
	}
	return results
}
