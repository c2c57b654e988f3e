package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// fakeEngineScript speaks the worker protocol with canned replies: every
// analyze gets an analysis-result echoing the path, every transcribe gets a
// progress report and a success. The script exits when stdin closes.
const fakeEngineScript = `#!/bin/sh
printf '%s\n' '{"type":"status","message":"engine ready"}'
while IFS= read -r line; do
  case "$line" in
  *'"command":"analyze"'*)
    path=${line#*'"path":"'}
    path=${path%%'"'*}
    printf '%s\n' "{\"type\":\"analysis-result\",\"data\":{\"path\":\"$path\",\"duration\":\"01:00\",\"thumbnail\":null}}"
    ;;
  *'"command":"transcribe"'*)
    path=${line#*'"path":"'}
    path=${path%%'"'*}
    printf '%s\n' '{"type":"progress","message":"transcribing","data":50}'
    printf '%s\n' "{\"type\":\"success\",\"data\":{\"path\":\"$path\",\"savePath\":\"$path.srt\",\"wordCount\":120,\"confidence\":93}}"
    ;;
  esac
done
`

// FakeEngine writes a worker stand-in shell script and returns its path.
// Pair it with WithEngineCommand to run daemon tests against a spawned
// process instead of injected pipes.
func FakeEngine(t testing.TB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-engine")
	if err := os.WriteFile(path, []byte(fakeEngineScript), 0o755); err != nil {
		t.Fatalf("write fake engine: %v", err)
	}
	return path
}
