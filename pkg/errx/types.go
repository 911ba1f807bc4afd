package errx

// Status is the coarse label rendered as "status" in every error response.
type Status string

const (
	// StatusFail marks client-caused or otherwise anticipated failures
	StatusFail Status = "fail"

	// StatusError marks server-caused, unexpected failures
	StatusError Status = "error"

	// StatusUnauthorized marks a missing or unusable identity
	StatusUnauthorized Status = "unauthorized"

	// StatusForbidden marks an identity that is not allowed to proceed
	StatusForbidden Status = "forbidden"
)

// String returns the string representation of the status label
func (s Status) String() string {
	return string(s)
}

// Code is the application error code rendered as "errorCode".
type Code string

const (
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeRecordNotFound  Code = "RECORD_NOT_FOUND"
	CodeDuplicateEntry  Code = "DUPLICATE_ENTRY"
	CodeForeignKey      Code = "FOREIGN_KEY_ERROR"
	CodeInvalidValue    Code = "INVALID_VALUE"
	CodeValueTooLong    Code = "VALUE_TOO_LONG"
	CodeValueTooShort   Code = "VALUE_TOO_SHORT"
	CodeInvalidDataType Code = "INVALID_DATA_TYPE"
	CodeValidation      Code = "VALIDATION_ERROR"
	CodeDatabase        Code = "DATABASE_ERROR"
	CodeUpstream        Code = "UPSTREAM_ERROR"
	CodeRouteNotFound   Code = "ROUTE_NOT_FOUND"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}
