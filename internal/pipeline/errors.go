package pipeline

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownColumn = errors.New("unknown column")
	ErrMissingValue  = errors.New("missing value")
	ErrNotInteger    = errors.New("not an integer")
	ErrOutOfRange    = errors.New("out of range")
)

// FieldError reports a numeric source field that is missing or malformed.
// Index is the zero-based position of the record in the dataset.
type FieldError struct {
	Index int
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("record %d: field %s: invalid value %q: %v", e.Index, e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ParseError reports an order_date value that matches none of the accepted layouts.
type ParseError struct {
	Index int
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("record %d: unparsable order date %q: %v", e.Index, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
