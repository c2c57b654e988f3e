// Package preset defines the subtitle shaping presets offered to the
// transcription worker. A preset bounds how many characters and lines one
// subtitle block may hold; the worker applies the limits while grouping
// word timestamps into blocks.
package preset

import "strings"

// Builtin preset names. The worker keys word-per-block mode off the tiktok
// name, ignoring the character and line limits for that preset.
const (
	Standard = "standard"
	Compact  = "compact"
	TikTok   = "tiktok"
)

// Preset bounds subtitle block shape.
type Preset struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	MaxChars int    `json:"maxChars"`
	MaxLines int    `json:"maxLines"`
	Builtin  bool   `json:"builtin,omitempty"`
}

var builtins = []Preset{
	{Name: Standard, Label: "Standard", MaxChars: 42, MaxLines: 2, Builtin: true},
	{Name: Compact, Label: "Compact", MaxChars: 32, MaxLines: 1, Builtin: true},
	{Name: TikTok, Label: "TikTok", MaxChars: 12, MaxLines: 1, Builtin: true},
}

// Builtins returns the builtin presets in display order.
func Builtins() []Preset {
	out := make([]Preset, len(builtins))
	copy(out, builtins)
	return out
}

// Catalog merges the builtin presets with custom ones. A custom preset whose
// name collides with a builtin is dropped, the builtin wins.
func Catalog(custom []Preset) []Preset {
	out := Builtins()
	for _, p := range custom {
		if _, ok := lookupBuiltin(p.Name); ok {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Resolve finds a preset by name, checking builtins first and then the
// custom list. Unknown names fall back to the standard preset with ok=false.
func Resolve(name string, custom []Preset) (Preset, bool) {
	if p, ok := lookupBuiltin(name); ok {
		return p, true
	}
	needle := normalizeName(name)
	for _, p := range custom {
		if normalizeName(p.Name) == needle {
			return p, true
		}
	}
	standard, _ := lookupBuiltin(Standard)
	return standard, false
}

func lookupBuiltin(name string) (Preset, bool) {
	needle := normalizeName(name)
	for _, p := range builtins {
		if p.Name == needle {
			return p, true
		}
	}
	return Preset{}, false
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
