package transform

import "errors"

// Errors returned by transform operations.
var (
	// ErrStepFailed indicates a step that cannot be applied to the document.
	ErrStepFailed = errors.New("step failed")

	// ErrInvalidWrapping indicates wrapper types that do not nest validly.
	ErrInvalidWrapping = errors.New("invalid wrapping")

	// ErrNoTarget indicates a structural edit without a valid target position.
	ErrNoTarget = errors.New("no valid target")
)
