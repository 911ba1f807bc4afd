package kernel

import (
	"context"
	"time"
)

// Assertion is the verified identity claim set for one request.
// It is built once by the token verifier and read-only afterwards.
type Assertion struct {
	SubjectID     SubjectID      `json:"sub"`
	SessionID     SessionID      `json:"sid,omitempty"`
	EmailVerified bool           `json:"email_verified"`
	AuthTime      *time.Time     `json:"auth_time,omitempty"`
	Claims        map[string]any `json:"-"`
}

// HasSubject reports whether the assertion names a caller
func (a *Assertion) HasSubject() bool {
	return a != nil && !a.SubjectID.IsEmpty()
}

// HasSession reports whether the assertion carries a session id
func (a *Assertion) HasSession() bool {
	return a != nil && !a.SessionID.IsEmpty()
}

// ============================================================================
// Context Keys
// ============================================================================

type ContextKey string

const (
	// AssertionKey stores the *Assertion in context.Context and fiber Locals
	AssertionKey ContextKey = "identity_assertion"

	// UserContextKey stores the resolved local user
	UserContextKey ContextKey = "user"

	// RequestIDKey stores the request id
	RequestIDKey ContextKey = "request_id"
)

// WithAssertion returns a copy of ctx carrying a
func WithAssertion(ctx context.Context, a *Assertion) context.Context {
	return context.WithValue(ctx, AssertionKey, a)
}

// AssertionFromContext returns the assertion stored by WithAssertion
func AssertionFromContext(ctx context.Context) (*Assertion, bool) {
	a, ok := ctx.Value(AssertionKey).(*Assertion)
	return a, ok && a != nil
}

// WithRequestID returns a copy of ctx carrying the request id
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// RequestIDFromContext returns the request id or ""
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
