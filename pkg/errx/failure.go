package errx

import (
	"fmt"
	"strings"
)

// Failure is a tagged internal failure that Translate knows how to map.
// The set is closed: only types in this package implement it.
type Failure interface {
	error
	failure()
}

// ============================================================================
// Store failures
// ============================================================================

// StoreCode classifies a persistence failure independently of the driver.
type StoreCode string

const (
	StoreNotFound     StoreCode = "not_found"
	StoreUnique       StoreCode = "unique"
	StoreForeignKey   StoreCode = "foreign_key"
	StoreInvalidValue StoreCode = "invalid_value"
	StoreTooLong      StoreCode = "too_long"
	StoreTooShort     StoreCode = "too_short"
	StoreInvalidType  StoreCode = "invalid_type"
)

// StoreFailure is raised by repositories
type StoreFailure struct {
	Code   StoreCode
	Fields []string
	Err    error
}

func (f *StoreFailure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("store failure %s (%s): %v", f.Code, strings.Join(f.Fields, ","), f.Err)
	}
	return fmt.Sprintf("store failure %s (%s)", f.Code, strings.Join(f.Fields, ","))
}

func (f *StoreFailure) Unwrap() error { return f.Err }

func (*StoreFailure) failure() {}

// Field returns the first offending field or "unknown field".
func (f *StoreFailure) Field() string {
	if len(f.Fields) == 0 || f.Fields[0] == "" {
		return "unknown field"
	}
	return f.Fields[0]
}

// ============================================================================
// Validation failures
// ============================================================================

// Violation is a single failed input constraint
type Violation struct {
	Path    []string `json:"path"`
	Message string   `json:"message"`
	Tag     string   `json:"tag,omitempty"`
}

// DottedPath joins the violation path with dots
func (v Violation) DottedPath() string {
	return strings.Join(v.Path, ".")
}

// ValidationFailure carries schema violations for a request input
type ValidationFailure struct {
	Violations []Violation
}

func (f *ValidationFailure) Error() string {
	if len(f.Violations) == 0 {
		return "validation failure"
	}
	return fmt.Sprintf("validation failure: %s at %s", f.Violations[0].Message, f.Violations[0].DottedPath())
}

func (*ValidationFailure) failure() {}

// ============================================================================
// Verification failures
// ============================================================================

// VerificationFailure is raised when a session token cannot be verified
type VerificationFailure struct {
	Message string
	Err     error
}

func (f *VerificationFailure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("verification failure: %s: %v", f.Message, f.Err)
	}
	return "verification failure: " + f.Message
}

func (f *VerificationFailure) Unwrap() error { return f.Err }

func (*VerificationFailure) failure() {}

// ============================================================================
// Provider failures
// ============================================================================

// ProviderKind classifies an identity provider failure
type ProviderKind string

const (
	ProviderNotFound     ProviderKind = "not_found"
	ProviderUnauthorized ProviderKind = "unauthorized"
	ProviderUnavailable  ProviderKind = "unavailable"
	ProviderBadResponse  ProviderKind = "bad_response"
)

// ProviderFailure is raised by identity provider clients
type ProviderFailure struct {
	Kind       ProviderKind
	Operation  string
	StatusCode int
	Err        error
}

func (f *ProviderFailure) Error() string {
	msg := fmt.Sprintf("identity provider %s failed (%s", f.Operation, f.Kind)
	if f.StatusCode != 0 {
		msg += fmt.Sprintf(", status %d", f.StatusCode)
	}
	msg += ")"
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f *ProviderFailure) Unwrap() error { return f.Err }

func (*ProviderFailure) failure() {}
