// Package textutil provides text helpers for filename handling.
package textutil

import "unicode"

// SafeSuffix reduces an output name to the characters the worker keeps when
// it builds a save path: letters, digits, underscore and hyphen. Everything
// else is dropped. The result can be empty; callers that need a usable
// suffix must reject that.
func SafeSuffix(value string) string {
	out := make([]rune, 0, len(value))
	for _, r := range value {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
			out = append(out, r)
		}
	}
	return string(out)
}
