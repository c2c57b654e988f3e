package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Command names accepted by the worker.
const (
	CommandAnalyze    = "analyze"
	CommandTranscribe = "transcribe"
)

// Message type tags emitted by the worker.
const (
	TypeStatus         = "status"
	TypeInfo           = "info"
	TypeProgress       = "progress"
	TypeAnalysisResult = "analysis-result"
	TypeSuccess        = "success"
	TypeError          = "error"
)

// AnalyzeRequest asks the worker for media metadata (duration, thumbnail).
// The result arrives later as an analysis-result message carrying the path.
type AnalyzeRequest struct {
	Command string `json:"command"`
	Path    string `json:"path"`
}

// NewAnalyzeRequest builds an analyze command for the given source file.
func NewAnalyzeRequest(path string) AnalyzeRequest {
	return AnalyzeRequest{Command: CommandAnalyze, Path: path}
}

// TranscribeRequest carries one job together with the settings snapshot taken
// when the job was dispatched. Later settings edits never reach a task that
// has already been submitted.
type TranscribeRequest struct {
	Command    string `json:"command"`
	Path       string `json:"path"`
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
}

// Message is one decoded line from the worker's stdout. Data stays raw until
// a typed accessor is applied; its shape depends on Type and the worker omits
// it entirely for messages without a payload.
type Message struct {
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ParseMessage decodes a single stdout line. Lines that are empty, not a JSON
// object, or missing the type tag are discarded with ok=false; the worker
// can interleave plain diagnostic text with protocol messages on the same
// pipe and the stream must survive that.
func ParseMessage(line []byte) (Message, bool) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Message{}, false
	}
	var msg Message
	if err := json.Unmarshal(trimmed, &msg); err != nil {
		return Message{}, false
	}
	if msg.Type == "" {
		return Message{}, false
	}
	return msg, true
}

// AnalysisData is the payload of an analysis-result message.
type AnalysisData struct {
	Path     string `json:"path"`
	Duration string `json:"duration"`
	// Thumbnail is a base64 data URI for video sources; the worker sends
	// null for audio, which decodes to an empty string.
	Thumbnail string `json:"thumbnail"`
}

// AnalysisData decodes the payload of an analysis-result message.
func (m Message) AnalysisData() (AnalysisData, error) {
	if len(m.Data) == 0 {
		return AnalysisData{}, errors.New("analysis-result message without data")
	}
	var data AnalysisData
	if err := json.Unmarshal(m.Data, &data); err != nil {
		return AnalysisData{}, fmt.Errorf("decode analysis data: %w", err)
	}
	return data, nil
}

// ProgressPercent decodes the bare-number payload of a progress message.
func (m Message) ProgressPercent() (float64, bool) {
	if len(m.Data) == 0 {
		return 0, false
	}
	var percent float64
	if err := json.Unmarshal(m.Data, &percent); err != nil {
		return 0, false
	}
	return percent, true
}

// SuccessData is the payload of a success message.
type SuccessData struct {
	Path       string `json:"path"`
	SavePath   string `json:"savePath"`
	WordCount  int    `json:"wordCount"`
	Confidence int    `json:"confidence"`
}

// SuccessData decodes the payload of a success message.
func (m Message) SuccessData() (SuccessData, error) {
	if len(m.Data) == 0 {
		return SuccessData{}, errors.New("success message without data")
	}
	var data SuccessData
	if err := json.Unmarshal(m.Data, &data); err != nil {
		return SuccessData{}, fmt.Errorf("decode success data: %w", err)
	}
	return data, nil
}
