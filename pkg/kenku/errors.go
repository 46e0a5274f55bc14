package kenku

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport indicates the remote service could not be reached
	ErrTransport = errors.New("kenku transport error")

	// ErrRemote indicates the remote service answered with a non-success status
	ErrRemote = errors.New("kenku remote error")
)

// RemoteError describes a non-success response from Kenku FM.
type RemoteError struct {
	Method string
	Path   string
	Status int
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s %s returned status %d", e.Method, e.Path, e.Status)
}

// Unwrap lets callers match RemoteError with errors.Is(err, ErrRemote).
func (e *RemoteError) Unwrap() error {
	return ErrRemote
}
