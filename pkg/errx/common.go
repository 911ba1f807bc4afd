package errx

import "net/http"

// ErrRegistry holds the application-wide error catalogue.
// Codes are registered without prefix so clients see the bare taxonomy.
var ErrRegistry = NewRegistry("")

var (
	DefUnauthorized    = ErrRegistry.Register(CodeUnauthorized, http.StatusUnauthorized, StatusUnauthorized, true, "Unauthorized")
	DefForbidden       = ErrRegistry.Register(CodeForbidden, http.StatusForbidden, StatusForbidden, true, "Forbidden")
	DefRecordNotFound  = ErrRegistry.Register(CodeRecordNotFound, http.StatusNotFound, StatusFail, true, "Record not found")
	DefDuplicateEntry  = ErrRegistry.Register(CodeDuplicateEntry, http.StatusBadRequest, StatusFail, true, "Duplicate entry")
	DefForeignKey      = ErrRegistry.Register(CodeForeignKey, http.StatusBadRequest, StatusFail, true, "Invalid foreign key")
	DefInvalidValue    = ErrRegistry.Register(CodeInvalidValue, http.StatusBadRequest, StatusFail, true, "Invalid value")
	DefValueTooLong    = ErrRegistry.Register(CodeValueTooLong, http.StatusBadRequest, StatusFail, true, "Value too long")
	DefValueTooShort   = ErrRegistry.Register(CodeValueTooShort, http.StatusBadRequest, StatusFail, true, "Value too short")
	DefInvalidDataType = ErrRegistry.Register(CodeInvalidDataType, http.StatusBadRequest, StatusFail, true, "Invalid data type")
	DefValidation      = ErrRegistry.Register(CodeValidation, http.StatusBadRequest, StatusFail, true, "Validation error")
	DefDatabase        = ErrRegistry.Register(CodeDatabase, http.StatusInternalServerError, StatusError, false, "Database error")
	DefUpstream        = ErrRegistry.Register(CodeUpstream, http.StatusBadGateway, StatusError, false, "Identity provider request failed")
	DefRouteNotFound   = ErrRegistry.Register(CodeRouteNotFound, http.StatusBadRequest, StatusFail, true, "Route not found")
)

// Definitions that share a code with a catalogue entry but differ in label
// or message. They are kept out of the registry so lookups stay unambiguous.
var (
	// DefUnexpected is the fallback for failures of unknown origin
	DefUnexpected = &Definition{
		Code:        CodeDatabase,
		HTTPStatus:  http.StatusInternalServerError,
		Status:      StatusError,
		Operational: false,
		Message:     "Something went wrong.",
	}

	// DefVerification covers rejected session tokens
	DefVerification = &Definition{
		Code:        CodeUnauthorized,
		HTTPStatus:  http.StatusUnauthorized,
		Status:      StatusFail,
		Operational: true,
		Message:     "Unauthorized access.",
	}
)

// Common error constructors for convenience

// Unauthorized creates a 401 error with the given message
func Unauthorized(message string) *Error {
	return newError(DefUnauthorized, message, 1)
}

// Forbidden creates a 403 error with the given message
func Forbidden(message string) *Error {
	return newError(DefForbidden, message, 1)
}

// NotFound creates a 404 error with the given message
func NotFound(message string) *Error {
	return newError(DefRecordNotFound, message, 1)
}

// Validation creates a 400 validation error with the given message
func Validation(message string) *Error {
	return newError(DefValidation, message, 1)
}

// Upstream creates a 502 error for a failed identity provider call
func Upstream(cause error) *Error {
	e := newError(DefUpstream, "", 1)
	e.Err = cause
	return e
}

// Internal creates a non-operational 500 error wrapping cause
func Internal(cause error) *Error {
	e := newError(DefUnexpected, "", 1)
	e.Err = cause
	return e
}

// RouteNotFound creates the error returned for unmatched routes
func RouteNotFound(path string) *Error {
	return newError(DefRouteNotFound, "Can't find this route `"+path+"`", 1)
}
