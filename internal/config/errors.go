package config

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFormat is returned for a file extension that is neither TOML
	// nor YAML.
	ErrUnknownFormat = errors.New("unknown config format")

	// ErrValidationFailed is returned for a configuration that decodes but
	// cannot build a schema.
	ErrValidationFailed = errors.New("validation failed")
)

// ParseError is a decode failure. Line and Column are zero when the
// decoder does not report a position.
type ParseError struct {
	Source string
	Format Format
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("%s %s:%d:%d: %v", e.Format, e.Source, e.Line, e.Column, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("%s %s:%d: %v", e.Format, e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Format, e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
