// Package command defines the wire contract between the chat bot and the PC
// agent: command names, parameters and the structured Result every command
// produces.
package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Command names understood by the agent.
const (
	Lock       = "lock"
	Sleep      = "sleep"
	Shutdown   = "shutdown"
	Screenshot = "screenshot"
	Volume     = "volume"
	Mute       = "mute"
	Copy       = "copy"
	Paste      = "paste"
	PlayPause  = "play_pause"
	Next       = "next"
	Previous   = "previous"
	Stop       = "stop"
	Battery    = "battery"
	Network    = "network"
	Processes  = "processes"
)

var (
	// ErrUnknownCommand is returned for a command name with no configured action.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrInvalidParams is returned when a command's parameters fail validation.
	ErrInvalidParams = errors.New("invalid parameters")
)

// Outcome is the status field of a Result.
type Outcome string

const (
	Success Outcome = "success"
	Failure Outcome = "error"
)

// Result is the structured outcome of one command.
// On the wire it is a flat JSON object: status and message plus any number of
// extra keys, which land in Attributes.
type Result struct {
	Status     Outcome
	Message    string
	Attributes map[string]any
}

// OK builds a success result.
func OK(message string) Result {
	return Result{Status: Success, Message: message}
}

// Fail builds an error result.
func Fail(message string) Result {
	return Result{Status: Failure, Message: message}
}

// With returns a copy of r with key set in its attributes.
func (r Result) With(key string, value any) Result {
	attrs := make(map[string]any, len(r.Attributes)+1)
	for k, v := range r.Attributes {
		attrs[k] = v
	}
	attrs[key] = value
	r.Attributes = attrs
	return r
}

// Succeeded reports whether the command succeeded.
func (r Result) Succeeded() bool {
	return r.Status == Success
}

// Icon returns the chat icon for the result status.
func (r Result) Icon() string {
	if r.Succeeded() {
		return "✅"
	}
	return "❌"
}

// String returns the attribute key as a string, or "" when absent.
func (r Result) String(key string) string {
	v, ok := r.Attributes[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// MarshalJSON flattens attributes next to status and message.
func (r Result) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(r.Attributes)+2)
	for k, v := range r.Attributes {
		flat[k] = v
	}
	flat["status"] = r.Status
	flat["message"] = r.Message
	return json.Marshal(flat)
}

// UnmarshalJSON accepts the flat wire form.
func (r *Result) UnmarshalJSON(data []byte) error {
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	status, _ := flat["status"].(string)
	message, _ := flat["message"].(string)
	delete(flat, "status")
	delete(flat, "message")
	r.Status = Outcome(status)
	r.Message = message
	r.Attributes = nil
	if len(flat) > 0 {
		r.Attributes = flat
	}
	return nil
}

// Request is the body of POST /command.
type Request struct {
	Command string         `json:"command"`
	Params  map[string]any `json:"params,omitempty"`
}

// SystemStatus is the body of GET /status.
type SystemStatus struct {
	Hostname string  `json:"hostname"`
	OS       string  `json:"os"`
	CPU      float64 `json:"cpu"`
	Memory   float64 `json:"memory"`
	Uptime   string  `json:"uptime"`
}

// UploadRequest is the body of POST /upload: the agent downloads URL into its
// upload directory under Filename.
type UploadRequest struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
}

// FetchRequest is the body of POST /getfile.
type FetchRequest struct {
	Path string `json:"path"`
}

// VolumeLevel extracts and validates the "level" parameter (0-100).
// JSON numbers decode as float64, so both int and float inputs are accepted.
func VolumeLevel(params map[string]any) (int, error) {
	raw, ok := params["level"]
	if !ok {
		return 0, fmt.Errorf("%w: level is required", ErrInvalidParams)
	}
	var level int
	switch v := raw.(type) {
	case int:
		level = v
	case int64:
		level = int(v)
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("%w: level must be a whole number", ErrInvalidParams)
		}
		level = int(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: level must be a whole number", ErrInvalidParams)
		}
		level = int(n)
	default:
		return 0, fmt.Errorf("%w: level must be a number, got %T", ErrInvalidParams, raw)
	}
	if level < 0 || level > 100 {
		return 0, fmt.Errorf("%w: level must be between 0 and 100, got %d", ErrInvalidParams, level)
	}
	return level, nil
}

// Text extracts the non-empty "text" parameter used by copy.
func Text(params map[string]any) (string, error) {
	s, _ := params["text"].(string)
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: text is required", ErrInvalidParams)
	}
	return s, nil
}
