package engine

import "errors"

// Errors returned by engine operations.
var (
	// ErrUnknownCommand indicates no command is registered under a name.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrReadOnly indicates an edit was attempted on a read-only engine.
	ErrReadOnly = errors.New("engine is read-only")

	// ErrRebind indicates the document could not be moved to a new schema.
	ErrRebind = errors.New("document does not fit the new schema")

	// ErrClosed indicates an operation on a closed engine.
	ErrClosed = errors.New("engine closed")
)
