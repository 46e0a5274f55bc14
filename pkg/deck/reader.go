package deck

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
)

// EventKind distinguishes heartbeat probes from instructions.
type EventKind int

const (
	EventHeartbeat EventKind = iota
	EventInstruction
)

func (k EventKind) String() string {
	switch k {
	case EventHeartbeat:
		return "heartbeat"
	case EventInstruction:
		return "instruction"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is one decoded line.
type Event struct {
	Kind EventKind
	Code byte   // instruction code; zero for heartbeats
	Raw  []byte // line without the delimiter
}

// Reader splits a byte stream into newline-terminated lines and decodes each
// into an Event. Bytes after the code are ignored.
type Reader struct {
	br *bufio.Reader
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReaderSize(r, maxLineLen)}
}

// Next blocks until a complete non-empty line arrives. Empty lines are
// skipped. A line whose first byte is not ASCII returns an error matching
// ErrDecode; the caller may keep reading. Any other error means the stream
// is finished, and a trailing partial line is discarded.
func (r *Reader) Next() (Event, error) {
	for {
		line, err := r.readLine()
		if err != nil {
			if len(line) > 0 {
				log.Debug().Int("bytes", len(line)).Msg("Discarding partial line")
			}
			return Event{}, err
		}

		line = bytes.TrimRight(line, "\r")
		if len(line) == 0 {
			continue
		}

		if line[0] == HeartbeatMarker {
			return Event{Kind: EventHeartbeat, Raw: line}, nil
		}

		code := line[0]
		if code > 0x7F {
			return Event{}, fmt.Errorf("%w: code byte 0x%02x is not ASCII", ErrDecode, code)
		}

		log.Debug().Str("code", string(code)).Int("len", len(line)).Msg("Instruction line")
		return Event{Kind: EventInstruction, Code: code, Raw: line}, nil
	}
}

// readLine returns one line without its delimiter. Overlong lines are
// truncated to maxLineLen; the rest is drained.
func (r *Reader) readLine() ([]byte, error) {
	var line []byte
	for {
		chunk, err := r.br.ReadSlice(Delimiter)
		if len(line) < maxLineLen {
			line = append(line, chunk...)
		}
		switch {
		case err == nil:
			line = bytes.TrimSuffix(line, []byte{Delimiter})
			if len(line) > maxLineLen {
				line = line[:maxLineLen]
			}
			return line, nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		default:
			return line, err
		}
	}
}

// String renders an event for logs.
func (e Event) String() string {
	if e.Kind == EventHeartbeat {
		return "heartbeat"
	}
	return fmt.Sprintf("instruction %q", strings.TrimSpace(string(e.Raw)))
}
