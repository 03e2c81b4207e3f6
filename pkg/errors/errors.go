// Package errors defines the typed error taxonomy shared by the pipeline.
//
// Every failure mode the pipeline can hit maps onto one of a small set of
// error structs so that callers can branch with errors.As:
//
//   - FormatError: the raw input file is missing required columns
//   - ValidationError: a value survived transform in an invalid state
//   - IntegrityError: a fact row references a dimension that does not exist
//   - NotFittedError: an estimator was used before training
//   - DimensionError: matrix shapes do not line up
//
// All constructors return errors compatible with errors.Is/errors.As and
// compose with github.com/cockroachdb/errors wrapping used elsewhere in
// the repository.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrEmptyData is returned when an operation receives a dataset with no rows.
var ErrEmptyData = errors.New("empty data")

// FormatError reports a malformed input file at extract time.
type FormatError struct {
	Path    string
	Missing []string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error in %s: missing required columns %v", e.Path, e.Missing)
}

// NewFormatError creates a FormatError for the given file and missing columns.
func NewFormatError(path string, missing []string) error {
	return &FormatError{Path: path, Missing: missing}
}

// ValidationError reports a value that is out of range or non-numeric
// after the transform stage should have repaired it.
type ValidationError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field %s value %v: %s", e.Field, e.Value, e.Reason)
}

// NewValidationError creates a ValidationError for a field/value pair.
func NewValidationError(field, reason string, value interface{}) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// IntegrityError reports a fact row whose dimension lookup failed to
// resolve to exactly one row.
type IntegrityError struct {
	Table string
	Key   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity error: no %s row for key %q", e.Table, e.Key)
}

// NewIntegrityError creates an IntegrityError for a dimension table and key.
func NewIntegrityError(table, key string) error {
	return &IntegrityError{Table: table, Key: key}
}

// NotFittedError indicates a model was used before Fit was called.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("%s.%s: model is not fitted", e.ModelName, e.Method)
}

// NewNotFittedError creates a NotFittedError for a model and method.
func NewNotFittedError(modelName, method string) error {
	return &NotFittedError{ModelName: modelName, Method: method}
}

// DimensionError indicates mismatched matrix dimensions.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: dimension mismatch on axis %d: expected %d, got %d",
		e.Op, e.Axis, e.Expected, e.Got)
}

// NewDimensionError creates a DimensionError for an operation.
func NewDimensionError(op string, expected, got, axis int) error {
	return &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
}

// ValueError reports an invalid argument value.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError for an operation.
func NewValueError(op, message string) error {
	return &ValueError{Op: op, Message: message}
}

// NewModelError wraps a sentinel error with operation context.
func NewModelError(op, message string, cause error) error {
	return errors.Wrapf(cause, "%s: %s", op, message)
}

// Recover converts a panic inside a numeric routine into a returned error.
// Intended for use as: defer errors.Recover(&err, "Scaler.Fit").
func Recover(err *error, op string) {
	if r := recover(); r != nil {
		*err = errors.Newf("%s: panic: %v", op, r)
	}
}
