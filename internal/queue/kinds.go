package queue

import (
	"path/filepath"
	"strings"
)

// Extension sets mirror what the worker accepts. Anything outside the audio
// set is treated as video; the worker itself makes the same split.
var audioExtensions = map[string]struct{}{
	".mp3":  {},
	".wav":  {},
	".m4a":  {},
	".aac":  {},
	".flac": {},
	".ogg":  {},
}

var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".mkv":  {},
	".avi":  {},
	".mov":  {},
	".webm": {},
	".m4v":  {},
	".mpg":  {},
	".mpeg": {},
	".wmv":  {},
	".flv":  {},
	".ts":   {},
}

// KindForPath classifies a source file by extension.
func KindForPath(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := audioExtensions[ext]; ok {
		return KindAudio
	}
	return KindVideo
}

// IsMediaPath reports whether the path carries a known media extension. Used
// by the watch folder to skip sidecar files dropped next to recordings.
func IsMediaPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := audioExtensions[ext]; ok {
		return true
	}
	_, ok := videoExtensions[ext]
	return ok
}

// InferDisplayName derives the human-facing job title from the source path.
func InferDisplayName(path string) string {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	base = strings.TrimSpace(base)
	if base == "" {
		return filepath.Base(path)
	}
	return base
}
