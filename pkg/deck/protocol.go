package deck

import (
	"errors"
	"fmt"
	"io"
)

// Serial protocol bytes
const (
	// HeartbeatMarker starts a liveness probe line sent by the board
	HeartbeatMarker byte = 'p'

	// HeartbeatReply answers a probe
	HeartbeatReply byte = 'a'

	// AckByte confirms an instruction ran to completion
	AckByte byte = 'Y'

	// Delimiter ends every line
	Delimiter byte = '\n'

	maxLineLen = 256
)

var (
	// ErrDecode indicates a line whose instruction code is not ASCII
	ErrDecode = errors.New("malformed instruction")

	// ErrClosed indicates the serial connection is gone
	ErrClosed = errors.New("serial connection closed")
)

// ReplyHeartbeat answers a heartbeat probe.
func ReplyHeartbeat(w io.Writer) error {
	return writeByte(w, HeartbeatReply)
}

// Acknowledge reports a completed instruction.
func Acknowledge(w io.Writer) error {
	return writeByte(w, AckByte)
}

func writeByte(w io.Writer, b byte) error {
	if _, err := w.Write([]byte{b}); err != nil {
		return fmt.Errorf("write %q: %w", b, err)
	}
	return nil
}
