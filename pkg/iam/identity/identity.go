package identity

import (
	"context"
	"strings"

	"github.com/Abraxas-365/gatekeeper/pkg/kernel"
)

// EmailAddress is one address on a provider profile
type EmailAddress struct {
	ID       string `json:"id"`
	Address  string `json:"emailAddress"`
	Verified bool   `json:"verified"`
}

// Profile is the provider's view of a user
type Profile struct {
	ID                    kernel.SubjectID `json:"id"`
	FirstName             string           `json:"firstName"`
	LastName              string           `json:"lastName"`
	ImageURL              string           `json:"imageUrl,omitempty"`
	PrimaryEmailAddressID string           `json:"primaryEmailAddressId,omitempty"`
	EmailAddresses        []EmailAddress   `json:"emailAddresses"`
	CreatedAt             int64            `json:"createdAt"`
	LastSignInAt          int64            `json:"lastSignInAt,omitempty"`
}

// PrimaryEmail returns the primary address, falling back to the first one.
func (p *Profile) PrimaryEmail() (EmailAddress, bool) {
	for _, e := range p.EmailAddresses {
		if e.ID == p.PrimaryEmailAddressID {
			return e, true
		}
	}
	if len(p.EmailAddresses) > 0 {
		return p.EmailAddresses[0], true
	}
	return EmailAddress{}, false
}

// DisplayName joins first and last name
func (p *Profile) DisplayName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

// NameUpdate is the name change sent to the provider
type NameUpdate struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Session is a provider session record
type Session struct {
	ID     kernel.SessionID `json:"id"`
	UserID kernel.SubjectID `json:"userId"`
	Status string           `json:"status"`
}

type freshReadKey struct{}

// WithFreshRead marks ctx so that caching clients fetch profiles from the
// provider instead of serving a cached copy.
func WithFreshRead(ctx context.Context) context.Context {
	return context.WithValue(ctx, freshReadKey{}, true)
}

// FreshRead reports whether ctx was marked by WithFreshRead.
func FreshRead(ctx context.Context) bool {
	fresh, _ := ctx.Value(freshReadKey{}).(bool)
	return fresh
}

// Client talks to the identity provider.
// Failures are *errx.ProviderFailure.
type Client interface {
	GetUser(ctx context.Context, subjectID kernel.SubjectID) (*Profile, error)
	UpdateUser(ctx context.Context, subjectID kernel.SubjectID, update NameUpdate) (*Profile, error)
	RevokeSession(ctx context.Context, sessionID kernel.SessionID) (*Session, error)
	ListUsers(ctx context.Context, opts kernel.PaginationOptions) ([]Profile, error)
	CountUsers(ctx context.Context) (int, error)
}
