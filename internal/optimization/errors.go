package optimization

import (
	"errors"
	"fmt"
)

// Error kinds a search can fail with. Match them with errors.Is.
var (
	// ErrInvalidInterval is returned when lo >= hi, step <= 0 or the bounds are not finite.
	ErrInvalidInterval = errors.New("invalid interval")

	// ErrObjectiveEvaluation is returned when the objective or predicate fails at a grid point.
	ErrObjectiveEvaluation = errors.New("objective evaluation failure")

	// ErrNoFeasiblePoint is returned when the predicate rejects every grid point.
	ErrNoFeasiblePoint = errors.New("no feasible point")
)

// Error represents an optimization error with context
// that can be wrapped with additional information.
type Error struct {
	// Message describes the error that occurred.
	Message string
	// Op is the operation that caused the error.
	Op string
	// Component is the component where the error occurred.
	Component string
	// X is the grid point being processed, when the error is tied to one.
	X *float64
	// Err is the underlying error that triggered this one, if any.
	Err error
	// kind is the sentinel this error reports through Is.
	kind error
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var prefix string
	if e.Component != "" && e.Op != "" {
		prefix = fmt.Sprintf("%s: %s", e.Component, e.Op)
	} else if e.Component != "" {
		prefix = e.Component
	} else if e.Op != "" {
		prefix = e.Op
	}

	msg := e.Message
	if e.X != nil {
		msg = fmt.Sprintf("%s at x=%g", msg, *e.X)
	}
	if prefix != "" {
		msg = prefix + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target is the sentinel kind of this error.
func (e *Error) Is(target error) bool {
	return e != nil && e.kind != nil && e.kind == target
}

// Kind returns the sentinel this error was created with, or nil.
func (e *Error) Kind() error {
	if e == nil {
		return nil
	}
	return e.kind
}

// WithOperation adds operation context to the error.
func (e *Error) WithOperation(op string) *Error {
	e.Op = op
	return e
}

// WithComponent adds component context to the error.
func (e *Error) WithComponent(component string) *Error {
	e.Component = component
	return e
}

// AtPoint records the grid point that failed.
func (e *Error) AtPoint(x float64) *Error {
	e.X = &x
	return e
}

// NewError creates a new optimization error with the given message.
func NewError(message string) *Error {
	return &Error{
		Message: message,
	}
}

// NewErrorf creates a new optimization error with formatted message.
func NewErrorf(format string, args ...interface{}) *Error {
	return &Error{
		Message: fmt.Sprintf(format, args...),
	}
}

// NewKindError creates an error that matches kind through errors.Is.
func NewKindError(kind error, format string, args ...interface{}) *Error {
	return &Error{
		Message: fmt.Sprintf(format, args...),
		kind:    kind,
	}
}

// WrapKindError wraps err so that it matches both kind and err.
// If err is nil, WrapKindError returns nil.
func WrapKindError(kind, err error, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Message: message,
		Err:     err,
		kind:    kind,
	}
}

// IsOptimizationError checks if an error is of type Error.
// If the error is an optimization error, it returns the error and true.
// Otherwise, it returns nil and false.
func IsOptimizationError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
