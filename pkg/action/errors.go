package action

import "errors"

var (
	// ErrUnknownCode indicates an instruction code with no binding
	ErrUnknownCode = errors.New("unknown instruction code")

	// ErrConfiguration indicates a binding that can never execute: an unknown
	// command name, an invalid code, or parameters violating the command's contract
	ErrConfiguration = errors.New("configuration error")
)
