package errx

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Error is the single error value that reaches the client.
// It is built directly by pipeline stages or derived by Translate.
type Error struct {
	// Code is the application error code
	Code Code `json:"errorCode"`

	// Message is the human-readable error message
	Message string `json:"message"`

	// Status is the response status label
	Status Status `json:"status"`

	// HTTPStatus is the HTTP status code to respond with
	HTTPStatus int `json:"httpStatus"`

	// Operational is true when the failure is anticipated and safe to describe
	Operational bool `json:"isOperational"`

	// Details contains additional structured context
	Details map[string]interface{} `json:"details,omitempty"`

	// Timestamp is when the error was constructed
	Timestamp time.Time `json:"timestamp"`

	// Err is the underlying cause (never rendered in production)
	Err error `json:"-"`

	pcs []uintptr
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail to the error and returns the error for chaining
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithCause attaches the underlying cause
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// Stack renders the call stack captured when the error was built.
func (e *Error) Stack() string {
	if len(e.pcs) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(e.Error())

	frames := runtime.CallersFrames(e.pcs)
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "\n    at %s (%s:%d)", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return b.String()
}

// newError builds an Error and captures the caller stack.
// skip counts frames above newError itself.
func newError(def *Definition, message string, skip int) *Error {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+2, pcs)

	if message == "" {
		message = def.Message
	}

	return &Error{
		Code:        def.Code,
		Message:     message,
		Status:      def.Status,
		HTTPStatus:  def.HTTPStatus,
		Operational: def.Operational,
		Details:     make(map[string]interface{}),
		Timestamp:   time.Now().UTC(),
		pcs:         pcs[:n],
	}
}

// New creates a new Error from a registered definition
func New(def *Definition) *Error {
	return newError(def, "", 1)
}

// Newf creates a new Error from a definition with a formatted message
func Newf(def *Definition, format string, args ...interface{}) *Error {
	return newError(def, fmt.Sprintf(format, args...), 1)
}

// Wrap wraps an existing error with a definition.
// An existing *Error in the chain is returned unchanged.
func Wrap(err error, def *Definition) *Error {
	if err == nil {
		return nil
	}

	var existing *Error
	if errors.As(err, &existing) {
		return existing
	}

	e := newError(def, "", 1)
	e.Err = err
	return e
}

// Is checks if an error matches the target error
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// HasCode reports whether err carries an *Error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
