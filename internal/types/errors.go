package types

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR TAXONOMY
// =============================================================================
//
// Every failure of a conversion run falls into one of these kinds. Callers
// test for a kind with errors.Is against the sentinels, or extract details
// with errors.As against the typed errors.
//
// =============================================================================

var (
	// ErrSelectionCancelled means the user did not choose both an input file
	// and an output directory. It is reported, not treated as a failure.
	ErrSelectionCancelled = errors.New("selection cancelled")

	// ErrParse means the input is not readable tabular data.
	ErrParse = errors.New("parse error")

	// ErrSchema means the input lacks a column the transformation needs.
	ErrSchema = errors.New("schema error")

	// ErrIO means a read or write failed.
	ErrIO = errors.New("io error")

	// ErrUnsupportedFormat means no serializer exists for the output format.
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// SchemaError reports a required column missing from the record set.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error: required column %q not found", e.Column)
}

// Is matches ErrSchema.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// ParseError reports input that could not be read as a table.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse error: %v", e.Err)
	}
	return fmt.Sprintf("parse error in %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is matches ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// IOError reports a failed filesystem operation.
type IOError struct {
	// Op is a short verb such as "open", "read" or "write".
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Is matches ErrIO.
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}
