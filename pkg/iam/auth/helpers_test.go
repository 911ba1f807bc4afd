package auth

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/Abraxas-365/gatekeeper/pkg/errx"
	"github.com/Abraxas-365/gatekeeper/pkg/iam/identity"
	"github.com/Abraxas-365/gatekeeper/pkg/iam/user"
	"github.com/Abraxas-365/gatekeeper/pkg/kernel"
)

type stubIdentity struct {
	mu       sync.Mutex
	profiles map[kernel.SubjectID]*identity.Profile
	calls    atomic.Int32
}

func newStubIdentity(profiles ...*identity.Profile) *stubIdentity {
	s := &stubIdentity{profiles: make(map[kernel.SubjectID]*identity.Profile)}
	for _, p := range profiles {
		s.profiles[p.ID] = p
	}
	return s
}

func (s *stubIdentity) GetUser(_ context.Context, id kernel.SubjectID) (*identity.Profile, error) {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, &errx.ProviderFailure{Kind: errx.ProviderNotFound, Operation: "get_user", StatusCode: 404}
	}
	cp := *p
	return &cp, nil
}

func (s *stubIdentity) UpdateUser(context.Context, kernel.SubjectID, identity.NameUpdate) (*identity.Profile, error) {
	return nil, nil
}

func (s *stubIdentity) RevokeSession(context.Context, kernel.SessionID) (*identity.Session, error) {
	return nil, nil
}

func (s *stubIdentity) ListUsers(context.Context, kernel.PaginationOptions) ([]identity.Profile, error) {
	return nil, nil
}

func (s *stubIdentity) CountUsers(context.Context) (int, error) {
	return 0, nil
}

func (s *stubIdentity) set(p *identity.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
}

type recordingAudit struct {
	mu     sync.Mutex
	events []string
}

func (a *recordingAudit) add(e string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAudit) Events() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.events...)
}

func (a *recordingAudit) LogUnauthorized(context.Context, string, string, string) {
	a.add("unauthorized")
}

func (a *recordingAudit) LogForbidden(context.Context, kernel.UserID, user.Role, string, string) {
	a.add("forbidden")
}

func (a *recordingAudit) LogUserSynced(context.Context, kernel.UserID, kernel.SubjectID, SyncPolicy) {
	a.add("user_synced")
}

func (a *recordingAudit) LogLogout(context.Context, kernel.UserID, kernel.SessionID, string) {
	a.add("logout")
}

func jane() *identity.Profile {
	return &identity.Profile{
		ID:                    "user_jane",
		FirstName:             "Jane",
		LastName:              "Doe",
		ImageURL:              "https://img.example.com/jane.png",
		PrimaryEmailAddressID: "idn_1",
		EmailAddresses: []identity.EmailAddress{
			{ID: "idn_1", Address: "jane@example.com", Verified: true},
		},
	}
}
