// Package settings persists the transcription options applied to new jobs.
// Changes take effect for tasks dispatched after the change; a task already
// submitted to the worker keeps the snapshot it was built from.
package settings

import (
	"fmt"
	"strconv"
	"strings"

	"v2s/internal/config"
	"v2s/internal/language"
	"v2s/internal/preset"
	"v2s/internal/textutil"
)

// Valid values for enumerated settings. Model names are the user-facing
// quality tiers; the worker maps them onto speech model sizes.
var (
	validModels  = []string{"lightning", "standard", "enhanced", "professional", "studio"}
	validDevices = []string{"auto", "cpu", "cuda"}
	validFormats = []string{"srt", "vtt", "txt"}
)

// Settings is the full option set sent with each transcription task.
type Settings struct {
	Model         string          `json:"model"`
	Language      string          `json:"language"`
	Device        string          `json:"device"`
	Format        string          `json:"format"`
	OutputName    string          `json:"outputName"`
	OutputDir     string          `json:"outputDir"`
	Preset        string          `json:"preset"`
	MaxChars      int             `json:"maxChars"`
	MaxLines      int             `json:"maxLines"`
	Profanity     bool            `json:"profanity"`
	AutoOpen      bool            `json:"autoOpen"`
	CustomPresets []preset.Preset `json:"customPresets,omitempty"`
}

// Default returns the settings applied before the user changes anything.
// The values match the worker's own fallbacks.
func Default() Settings {
	return Settings{
		Model:      "standard",
		Language:   language.Auto,
		Device:     "auto",
		Format:     "srt",
		OutputName: "subs",
		Preset:     preset.Standard,
		MaxChars:   42,
		MaxLines:   2,
	}
}

// Keys lists the names accepted by Apply, in display order.
func Keys() []string {
	return []string{
		"model", "language", "device", "format", "outputName", "outputDir",
		"preset", "maxChars", "maxLines", "profanity", "autoOpen",
	}
}

// Apply validates one key/value pair and writes it into s. Keys match their
// JSON names case-insensitively. Selecting a preset also adopts its
// character and line bounds; set maxChars or maxLines afterwards to deviate.
func Apply(s *Settings, key, value string) error {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "model":
		v := strings.ToLower(strings.TrimSpace(value))
		if !contains(validModels, v) {
			return fmt.Errorf("model: unknown value %q (valid: %s)", value, strings.Join(validModels, ", "))
		}
		s.Model = v
	case "language":
		code, err := language.Normalize(value)
		if err != nil {
			return fmt.Errorf("language: %w", err)
		}
		s.Language = code
	case "device":
		v := strings.ToLower(strings.TrimSpace(value))
		if !contains(validDevices, v) {
			return fmt.Errorf("device: unknown value %q (valid: %s)", value, strings.Join(validDevices, ", "))
		}
		s.Device = v
	case "format":
		v := strings.ToLower(strings.TrimSpace(value))
		if !contains(validFormats, v) {
			return fmt.Errorf("format: unknown value %q (valid: %s)", value, strings.Join(validFormats, ", "))
		}
		s.Format = v
	case "outputname":
		if textutil.SafeSuffix(value) == "" {
			return fmt.Errorf("outputName: %q contains no usable characters", value)
		}
		s.OutputName = strings.TrimSpace(value)
	case "outputdir":
		v := strings.TrimSpace(value)
		if v == "" {
			s.OutputDir = ""
			return nil
		}
		expanded, err := config.ExpandPath(v)
		if err != nil {
			return fmt.Errorf("outputDir: %w", err)
		}
		s.OutputDir = expanded
	case "preset":
		p, ok := preset.Resolve(value, s.CustomPresets)
		if !ok {
			return fmt.Errorf("preset: unknown preset %q", value)
		}
		s.Preset = p.Name
		s.MaxChars = p.MaxChars
		s.MaxLines = p.MaxLines
	case "maxchars":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 8 || n > 200 {
			return fmt.Errorf("maxChars: must be an integer between 8 and 200, got %q", value)
		}
		s.MaxChars = n
	case "maxlines":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 1 || n > 10 {
			return fmt.Errorf("maxLines: must be an integer between 1 and 10, got %q", value)
		}
		s.MaxLines = n
	case "profanity":
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("profanity: expected true or false, got %q", value)
		}
		s.Profanity = b
	case "autoopen":
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("autoOpen: expected true or false, got %q", value)
		}
		s.AutoOpen = b
	default:
		return fmt.Errorf("unknown setting %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	return nil
}

func contains(values []string, needle string) bool {
	for _, v := range values {
		if v == needle {
			return true
		}
	}
	return false
}
