package dispatch

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// State is a step of the instruction state machine.
type State int32

const (
	Idle State = iota
	ResolvingCode
	Executing
	Acknowledging
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ResolvingCode:
		return "resolving"
	case Executing:
		return "executing"
	case Acknowledging:
		return "acknowledging"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Source tells where an instruction came from.
type Source string

const (
	// SourceSerial instructions arrive on the serial line and are acknowledged there.
	SourceSerial Source = "serial"
	// SourceVirtual instructions are key presses injected through the API or MCP.
	SourceVirtual Source = "virtual"
)

// Instruction is one key press to execute.
type Instruction struct {
	Code   byte
	Source Source
}

// Outcome is the structured result of one instruction.
type Outcome struct {
	ID           uuid.UUID     `json:"id"`
	Code         string        `json:"code"`
	Source       Source        `json:"source"`
	Commands     []string      `json:"commands"`
	Acknowledged bool          `json:"acknowledged"`
	Err          error         `json:"-"`
	Error        string        `json:"error,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration_ns"`
}

// OK reports whether every command ran.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Event types published to subscribers
const (
	EventCompleted   = "instruction_completed"
	EventFailed      = "instruction_failed"
	EventUnknownCode = "unknown_code"
)

// Event is published after every instruction.
type Event struct {
	Type      string    `json:"type"`
	Outcome   Outcome   `json:"outcome"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats is a point-in-time summary of the dispatcher.
type Stats struct {
	State        string    `json:"state"`
	Heartbeats   uint64    `json:"heartbeats"`
	Instructions uint64    `json:"instructions"`
	Acknowledged uint64    `json:"acknowledged"`
	DecodeErrors uint64    `json:"decode_errors"`
	Dropped      uint64    `json:"dropped_events"`
	LastError    string    `json:"last_error,omitempty"`
	LastErrorAt  time.Time `json:"last_error_at,omitzero"`
}

var (
	// ErrNotRunning is returned by Press before Start.
	ErrNotRunning = errors.New("dispatcher not running")

	// ErrStopped is returned for instructions submitted after Stop or after a
	// configuration error halted execution.
	ErrStopped = errors.New("dispatcher stopped")
)
