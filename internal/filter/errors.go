package filter

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// ColumnNotFoundError reports a condition referencing a column absent
// from the table at evaluation time.
type ColumnNotFoundError struct {
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q not found", e.Column)
}

// UnsupportedTypeError reports an operator applied to a column type it
// cannot evaluate against, e.g. a relational operator on a string
// column.
type UnsupportedTypeError struct {
	Column   string
	Operator string
	Type     arrow.DataType
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("operator %s not supported on column %q of type %s", e.Operator, e.Column, e.Type)
}

// OperandParseError reports operand text that does not parse into the
// target column's type. This is a recoverable evaluation error, never a
// panic.
type OperandParseError struct {
	Column   string
	Operator string
	Value    string
	Type     arrow.DataType
	Err      error
}

func (e *OperandParseError) Error() string {
	return fmt.Sprintf("operator %s on column %q: operand %q does not parse as %s", e.Operator, e.Column, e.Value, e.Type)
}

func (e *OperandParseError) Unwrap() error { return e.Err }

// DecodeError reports a malformed persisted tree: unknown tag, missing
// field, or invalid JSON.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decoding filter: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decoding filter: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }
