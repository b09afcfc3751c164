package script

import "errors"

var (
	// ErrClosed is returned when loading into or running a closed host.
	ErrClosed = errors.New("script host is closed")

	// ErrTimeout is returned when a script runs past its time limit.
	ErrTimeout = errors.New("script execution timeout")

	// ErrDefinition is returned when a script defines a command incorrectly.
	ErrDefinition = errors.New("invalid command definition")
)
