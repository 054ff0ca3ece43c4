package result

import (
	"errors"
	"fmt"

	"github.com/hugr-lab/infinity-go/wire"
)

// Standard errors returned by the decoder. Match with errors.Is.
var (
	// ErrMalformedColumnBuffer indicates a buffer whose length or layout does
	// not match its column type.
	ErrMalformedColumnBuffer = errors.New("malformed column buffer")

	// ErrUnsupportedColumnType indicates a column type tag with no decoding rule.
	ErrUnsupportedColumnType = errors.New("unknown column type")

	// ErrMissingColumnField indicates a column definition whose id has no buffer.
	ErrMissingColumnField = errors.New("missing column field")
)

// BufferError reports a malformed column buffer.
type BufferError struct {
	Column string
	Type   wire.ColumnType
	Length int
	// Width is the element width for fixed-width types, 0 otherwise.
	Width int
	// Offset and Reason describe variable-width layout failures.
	// Offset is -1 when Reason concerns the buffer as a whole.
	Offset int
	Reason string
}

func (e *BufferError) Error() string {
	switch {
	case e.Width > 0 && e.Reason == "":
		return fmt.Sprintf("result: %v: column %q (%s): %d bytes is not a multiple of %d",
			ErrMalformedColumnBuffer, e.Column, e.Type, e.Length, e.Width)
	case e.Offset < 0:
		return fmt.Sprintf("result: %v: column %q (%s): %s",
			ErrMalformedColumnBuffer, e.Column, e.Type, e.Reason)
	}
	return fmt.Sprintf("result: %v: column %q (%s): %s at offset %d of %d",
		ErrMalformedColumnBuffer, e.Column, e.Type, e.Reason, e.Offset, e.Length)
}

func (e *BufferError) Unwrap() error { return ErrMalformedColumnBuffer }

// ColumnTypeError reports a column type the decoder cannot handle.
type ColumnTypeError struct {
	Column string
	Type   wire.ColumnType
}

func (e *ColumnTypeError) Error() string {
	return fmt.Sprintf("result: %v: %s (column %q)", ErrUnsupportedColumnType, e.Type, e.Column)
}

func (e *ColumnTypeError) Unwrap() error { return ErrUnsupportedColumnType }

// FieldIndexError reports a column id outside the column field array.
type FieldIndexError struct {
	Column string
	ID     int
	Max    int
}

func (e *FieldIndexError) Error() string {
	return fmt.Sprintf("result: %v: column %q has id %d (fields: %d)",
		ErrMissingColumnField, e.Column, e.ID, e.Max)
}

func (e *FieldIndexError) Unwrap() error { return ErrMissingColumnField }
