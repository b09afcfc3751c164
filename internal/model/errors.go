package model

import "errors"

// Errors returned by model operations.
var (
	// ErrInvalidContent indicates content that does not satisfy a node type's content expression.
	ErrInvalidContent = errors.New("invalid content")

	// ErrInvalidAttrs indicates a missing required attribute or an unsupported attribute value.
	ErrInvalidAttrs = errors.New("invalid attributes")

	// ErrReplace indicates a replace operation that cannot produce a valid tree.
	ErrReplace = errors.New("replace failed")

	// ErrUnknownType indicates a node or mark type name that is not in the schema.
	ErrUnknownType = errors.New("unknown type")

	// ErrSchema indicates an invalid schema specification.
	ErrSchema = errors.New("invalid schema")
)

// ReplaceError describes why a replace could not be performed.
type ReplaceError struct {
	Message string
}

// Error implements the error interface.
func (e *ReplaceError) Error() string {
	return "replace: " + e.Message
}

// Unwrap returns ErrReplace so callers can match with errors.Is.
func (e *ReplaceError) Unwrap() error {
	return ErrReplace
}

func replaceErrorf(msg string) error {
	return &ReplaceError{Message: msg}
}
