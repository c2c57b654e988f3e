package engine_test

import (
	"encoding/json"
	"testing"

	"v2s/internal/engine"
)

func TestParseMessageDiscardsNonProtocolLines(t *testing.T) {
	rejected := []string{
		"",
		"   ",
		"Loading model weights...",
		"{broken json",
		`{"message":"no type tag"}`,
		`[1,2,3]`,
	}
	for _, line := range rejected {
		if _, ok := engine.ParseMessage([]byte(line)); ok {
			t.Fatalf("line %q should not parse as a protocol message", line)
		}
	}

	msg, ok := engine.ParseMessage([]byte(`  {"type":"status","message":"Engine Ready"}` + "\r"))
	if !ok {
		t.Fatalf("status line did not parse")
	}
	if msg.Type != engine.TypeStatus || msg.Message != "Engine Ready" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestProgressPercentReadsBareNumber(t *testing.T) {
	msg, ok := engine.ParseMessage([]byte(`{"type":"progress","message":"Transcribing...","data":50}`))
	if !ok {
		t.Fatalf("progress line did not parse")
	}
	percent, ok := msg.ProgressPercent()
	if !ok || percent != 50 {
		t.Fatalf("expected percent 50, got %v ok=%v", percent, ok)
	}

	if _, ok := (engine.Message{Type: engine.TypeProgress}).ProgressPercent(); ok {
		t.Fatalf("progress without data should not decode")
	}
}

func TestAnalysisDataDecodesNullThumbnail(t *testing.T) {
	line := `{"type":"analysis-result","message":"ok","data":{"path":"/media/a.mp3","duration":"03:25","thumbnail":null}}`
	msg, ok := engine.ParseMessage([]byte(line))
	if !ok {
		t.Fatalf("analysis-result line did not parse")
	}
	data, err := msg.AnalysisData()
	if err != nil {
		t.Fatalf("decode analysis data: %v", err)
	}
	if data.Path != "/media/a.mp3" || data.Duration != "03:25" {
		t.Fatalf("unexpected analysis data: %+v", data)
	}
	if data.Thumbnail != "" {
		t.Fatalf("null thumbnail should decode to empty string, got %q", data.Thumbnail)
	}
}

func TestSuccessDataRequiresPayload(t *testing.T) {
	if _, err := (engine.Message{Type: engine.TypeSuccess}).SuccessData(); err == nil {
		t.Fatalf("success without data should error")
	}

	line := `{"type":"success","message":"done","data":{"path":"/media/a.mp4","savePath":"/media/a_mp4_subs.srt","wordCount":120,"confidence":94}}`
	msg, _ := engine.ParseMessage([]byte(line))
	data, err := msg.SuccessData()
	if err != nil {
		t.Fatalf("decode success data: %v", err)
	}
	if data.SavePath != "/media/a_mp4_subs.srt" || data.WordCount != 120 || data.Confidence != 94 {
		t.Fatalf("unexpected success data: %+v", data)
	}
}

func TestTranscribeRequestWireNames(t *testing.T) {
	req := engine.TranscribeRequest{
		Command:    engine.CommandTranscribe,
		Path:       "/media/a.mp4",
		Model:      "standard",
		Language:   "auto",
		Device:     "auto",
		Format:     "srt",
		OutputName: "subs",
		OutputDir:  "/out",
		Preset:     "standard",
		MaxChars:   42,
		MaxLines:   2,
	}
	raw, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var wire map[string]any
	if err := json.Unmarshal(raw, &wire); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"command", "path", "outputName", "outputDir", "maxChars", "maxLines", "profanity"} {
		if _, ok := wire[key]; !ok {
			t.Fatalf("wire payload missing key %q: %s", key, raw)
		}
	}
	if wire["command"] != "transcribe" {
		t.Fatalf("unexpected command on the wire: %v", wire["command"])
	}
}
