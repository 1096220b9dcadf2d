// Package errors provides the API error type of the chemsweep service and maps
// domain failures onto HTTP statuses and JSON-RPC codes.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"

	"github.com/copyleftdev/chemsweep/internal/chemistry"
	"github.com/copyleftdev/chemsweep/internal/optimization"
	"github.com/copyleftdev/chemsweep/internal/process"
)

// Machine-readable error codes returned to clients.
const (
	CodeInvalidInterval  = "invalid_interval"
	CodeInvalidRequest   = "invalid_request"
	CodeNoFeasiblePoint  = "no_feasible_point"
	CodeObjectiveFailure = "objective_evaluation_failure"
	CodeNotFound         = "not_found"
	CodeTimeout          = "timeout"
	CodeInternal         = "internal_error"
)

// JSON-RPC 2.0 error codes.
const (
	RPCParseError       = -32700
	RPCInvalidRequest   = -32600
	RPCMethodNotFound   = -32601
	RPCInvalidParams    = -32602
	RPCServerError      = -32000
	RPCNoFeasiblePoint  = -32001
	RPCObjectiveFailure = -32002
)

// Error represents an error with context and stack trace.
type Error struct {
	// The underlying error that was returned
	Err error
	// A human-readable message describing the error
	Message string
	// The operation that was being performed when the error occurred
	Operation string
	// The component or package where the error occurred
	Component string
	// HTTP status the error maps to; zero means 500
	Status int
	// Machine-readable code
	Code string
	// The stack trace
	Stack []string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var builder strings.Builder

	if e.Message != "" {
		builder.WriteString(e.Message)
	}

	if e.Operation != "" {
		if builder.Len() > 0 {
			builder.WriteString(": ")
		}
		builder.WriteString("operation=")
		builder.WriteString(e.Operation)
	}

	if e.Component != "" {
		if builder.Len() > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString("component=")
		builder.WriteString(e.Component)
	}

	if e.Err != nil {
		if builder.Len() > 0 {
			builder.WriteString(": ")
		}
		builder.WriteString(e.Err.Error())
	}

	return builder.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithMessage adds a message to the error.
func (e *Error) WithMessage(msg string) *Error {
	e.Message = msg
	return e
}

// WithOperation adds an operation to the error.
func (e *Error) WithOperation(op string) *Error {
	e.Operation = op
	return e
}

// WithComponent adds a component to the error.
func (e *Error) WithComponent(component string) *Error {
	e.Component = component
	return e
}

// WithStatus sets the HTTP status and machine code.
func (e *Error) WithStatus(status int, code string) *Error {
	e.Status = status
	e.Code = code
	return e
}

// HTTPStatus returns the status to answer with.
func (e *Error) HTTPStatus() int {
	if e.Status == 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}

// RPCCode returns the JSON-RPC error code for the error.
func (e *Error) RPCCode() int {
	switch e.Code {
	case CodeInvalidInterval, CodeInvalidRequest, CodeNotFound:
		return RPCInvalidParams
	case CodeNoFeasiblePoint:
		return RPCNoFeasiblePoint
	case CodeObjectiveFailure:
		return RPCObjectiveFailure
	default:
		return RPCServerError
	}
}

// ClientMessage is the text safe to return to callers. Internal errors hide
// their cause.
func (e *Error) ClientMessage() string {
	if e.HTTPStatus() >= http.StatusInternalServerError {
		if e.Message != "" {
			return e.Message
		}
		return http.StatusText(e.HTTPStatus())
	}
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

// StackTrace returns the stack trace as a slice of strings.
func (e *Error) StackTrace() []string {
	return e.Stack
}

// New creates a new error with a message.
func New(msg string) *Error {
	return &Error{
		Message: msg,
		Stack:   getStackTrace(),
	}
}

// Errorf creates a new error with a formatted message.
func Errorf(format string, args ...interface{}) *Error {
	return &Error{
		Message: fmt.Sprintf(format, args...),
		Stack:   getStackTrace(),
	}
}

// BadRequest creates a 400 invalid_request error.
func BadRequest(format string, args ...interface{}) *Error {
	return &Error{
		Message: fmt.Sprintf(format, args...),
		Status:  http.StatusBadRequest,
		Code:    CodeInvalidRequest,
		Stack:   getStackTrace(),
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if !stderrors.As(err, &e) {
		e = &Error{
			Err:   err,
			Stack: getStackTrace(),
		}
	}

	if msg != "" {
		e.Message = msg
	}

	return e
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// FromDomain classifies an error returned by the advisor. An *Error already in
// the chain is returned as is.
func FromDomain(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if stderrors.As(err, &e) {
		return e
	}

	e = &Error{Err: err, Stack: getStackTrace()}
	switch {
	case stderrors.Is(err, optimization.ErrInvalidInterval):
		e.WithStatus(http.StatusBadRequest, CodeInvalidInterval)
	case stderrors.Is(err, process.ErrInvalidInput):
		e.WithStatus(http.StatusBadRequest, CodeInvalidRequest)
	case stderrors.Is(err, optimization.ErrNoFeasiblePoint):
		e.WithStatus(http.StatusUnprocessableEntity, CodeNoFeasiblePoint)
	case stderrors.Is(err, optimization.ErrObjectiveEvaluation):
		e.WithStatus(http.StatusUnprocessableEntity, CodeObjectiveFailure)
	case stderrors.Is(err, chemistry.ErrUnknownCompound), stderrors.Is(err, chemistry.ErrUnknownSubstance):
		e.WithStatus(http.StatusNotFound, CodeNotFound)
	case stderrors.Is(err, context.DeadlineExceeded), stderrors.Is(err, context.Canceled):
		e.WithStatus(http.StatusServiceUnavailable, CodeTimeout)
		e.Message = "request timed out"
	default:
		e.WithStatus(http.StatusInternalServerError, CodeInternal)
		e.Message = "internal server error"
	}
	return e
}

// getStackTrace returns the current stack trace as a slice of strings.
func getStackTrace() []string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:]) // Skip runtime.Callers, getStackTrace, and the constructor
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	stack := make([]string, 0, n)

	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") && !strings.Contains(frame.File, "internal/errors") {
			stack = append(stack, fmt.Sprintf("%s\n\t%s:%d", frame.Function, frame.File, frame.Line))
		}
		if !more {
			break
		}
	}

	return stack
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err, if err's
// type contains an Unwrap method returning error.
// Otherwise, Unwrap returns nil.
func Unwrap(err error) error {
	return stderrors.Unwrap(err)
}
