package types

import (
	"time"

	"github.com/urmzd/kenkudeck/pkg/dispatch"
)

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned from GET /health
type HealthResponse struct {
	Status          string         `json:"status"`
	Serial          string         `json:"serial"`
	Dispatcher      dispatch.Stats `json:"dispatcher"`
	LastRemoteError string         `json:"last_remote_error,omitempty"`
	Timestamp       time.Time      `json:"timestamp"`
}

// Command is one step of a binding
type Command struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
}

// Binding describes what a key does
type Binding struct {
	Code        string    `json:"code"`
	Description string    `json:"description,omitempty"`
	Commands    []Command `json:"commands"`
}

// BindingsResponse is returned from GET /bindings
type BindingsResponse struct {
	Bindings []Binding `json:"bindings"`
	Count    int       `json:"count"`
}

// PressResponse is returned from POST /keys/:code
type PressResponse struct {
	Outcome dispatch.Outcome `json:"outcome"`
}

// ViewSnapshot is the cached copy of one Kenku FM playback view
type ViewSnapshot struct {
	Cached bool           `json:"cached"`
	Fresh  bool           `json:"fresh"`
	Expiry *time.Time     `json:"expiry,omitempty"`
	State  map[string]any `json:"state,omitempty"`
}

// PlaybackResponse is returned from GET /state
type PlaybackResponse struct {
	Playlist   ViewSnapshot `json:"playlist"`
	Soundboard ViewSnapshot `json:"soundboard"`
	Timestamp  time.Time    `json:"timestamp"`
}

// HistoryEntry is one journaled instruction
type HistoryEntry struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	Source       string    `json:"source"`
	Commands     []string  `json:"commands"`
	Acknowledged bool      `json:"acknowledged"`
	Error        string    `json:"error,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	DurationMS   int64     `json:"duration_ms"`
}

// HistoryResponse is returned from GET /history
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
	Count   int            `json:"count"`
}
