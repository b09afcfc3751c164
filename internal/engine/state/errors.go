package state

import "errors"

// Errors returned by state operations.
var (
	// ErrTransactionFailed indicates a transaction that was discarded
	// because a step failed or the result was invalid.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrMismatchedState indicates a transaction built from a different
	// document than the state it is applied to.
	ErrMismatchedState = errors.New("transaction does not belong to this state")
)
