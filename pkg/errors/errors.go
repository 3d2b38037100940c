// Package errors provides error handling and the warning system for the whole
// project. Configuration mistakes (unknown loss kernel, bad parameters) become
// structured errors with stack traces; numerical soft failures such as
// non-convergence are dispatched through a process-wide warning handler.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// Default handler logs to standard error.
		log.Printf("pointalign-warning: %v\n", w)
	}
)

// SetWarningHandler installs the warning handler used by the whole library.
// It controls how soft failures such as ConvergenceWarning are reported.
//
// Example:
//
//	errors.SetWarningHandler(func(w error) {
//	    // drop warnings
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// Warn dispatches a warning to the installed handler.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Warning types
//
// ===========================================================================

// ConvergenceWarning is raised when an iterative solver stops before reaching
// its convergence criterion.
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	if w.Message != "" {
		return fmt.Sprintf("%s failed to converge after %d iterations: %s", w.Algorithm, w.Iterations, w.Message)
	}
	return fmt.Sprintf("%s failed to converge after %d iterations. Consider increasing max iterations or relaxing the tolerance.", w.Algorithm, w.Iterations)
}

// MarshalZerologObject adds the structured warning fields to a zerolog event.
func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations).
		Str("message", w.Message).
		Str("type", "ConvergenceWarning")
}

// NewConvergenceWarning creates a new ConvergenceWarning.
func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

// DegenerateGeometryWarning is raised when the correspondence set does not
// constrain all six degrees of freedom (for example, all points on one plane).
type DegenerateGeometryWarning struct {
	Operation string
	Inliers   int
	Reason    string
}

func (w *DegenerateGeometryWarning) Error() string {
	return fmt.Sprintf("%s: degenerate correspondence geometry (%d inliers): %s", w.Operation, w.Inliers, w.Reason)
}

// MarshalZerologObject adds the structured warning fields to a zerolog event.
func (w *DegenerateGeometryWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("operation", w.Operation).
		Int("inliers", w.Inliers).
		Str("reason", w.Reason).
		Str("type", "DegenerateGeometryWarning")
}

// NewDegenerateGeometryWarning creates a new DegenerateGeometryWarning.
func NewDegenerateGeometryWarning(op string, inliers int, reason string) *DegenerateGeometryWarning {
	return &DegenerateGeometryWarning{Operation: op, Inliers: inliers, Reason: reason}
}

// ===========================================================================
//
//	Structured error types
//
// ===========================================================================

// UnsupportedKernelError is returned when a robust-loss method value outside
// the closed enumeration reaches the resolver. The method set is fixed at
// compile time, so this is a non-recoverable configuration mistake, not a
// data error.
type UnsupportedKernelError struct {
	Method string
	Value  int
}

func (e *UnsupportedKernelError) Error() string {
	return fmt.Sprintf("pointalign: unsupported robust kernel method %s (%d)", e.Method, e.Value)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *UnsupportedKernelError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("method", e.Method).
		Int("value", e.Value).
		Str("type", "UnsupportedKernelError")
}

// NewUnsupportedKernelError creates a new UnsupportedKernelError with a stack trace.
func NewUnsupportedKernelError(method string, value int) error {
	err := &UnsupportedKernelError{Method: method, Value: value}
	return errors.WithStack(err)
}

// DimensionError is returned when input slices or matrices disagree in size.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows/points, 1 for columns/components
}

func (e *DimensionError) Error() string {
	axisName := "components"
	if e.Axis == 0 {
		axisName = "points"
	}
	return fmt.Sprintf("pointalign: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "components"
	if e.Axis == 0 {
		axisName = "points"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError creates a new DimensionError with a stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError is returned when a parameter fails validation, for example
// a non-positive scaling parameter for a robust kernel.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("pointalign: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a new ValidationError with a stack trace.
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError is returned when an argument value is invalid or out of range.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("pointalign: %s: %s", e.Op, e.Message)
}

// NewValueError creates a new ValueError with a stack trace.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As reports whether err can be assigned to target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an existing error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an existing error with a format string.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates an error with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Common error variables
//
// ===========================================================================

var (
	// ErrEmptyData is returned when an empty point set is passed in.
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix is returned when the normal equations cannot be solved.
	ErrSingularMatrix = New("singular matrix")

	// ErrNoCorrespondences is returned when no valid correspondence survives
	// the pruning step.
	ErrNoCorrespondences = New("no valid correspondences")
)
