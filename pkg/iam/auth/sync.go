package auth

import (
	"context"

	"github.com/Abraxas-365/gatekeeper/pkg/errx"
	"github.com/Abraxas-365/gatekeeper/pkg/iam/identity"
	"github.com/Abraxas-365/gatekeeper/pkg/iam/user"
	"github.com/Abraxas-365/gatekeeper/pkg/kernel"
	"github.com/Abraxas-365/gatekeeper/pkg/logx"
	"github.com/Abraxas-365/gatekeeper/pkg/metricsx"
	"github.com/Abraxas-365/gatekeeper/pkg/ptrx"
)

// SyncPolicy decides when the local record is refreshed from the provider.
type SyncPolicy string

const (
	// SyncLazy creates the record once and never refreshes it
	SyncLazy SyncPolicy = "lazy"
	// SyncAlways refreshes name, email and avatar on every request
	SyncAlways SyncPolicy = "always"
)

// UserSync keeps the local user record in step with the provider.
type UserSync struct {
	users   user.Repository
	idp     identity.Client
	policy  SyncPolicy
	audit   AuditService
	metrics metricsx.Recorder
	log     *logx.Logger
}

// NewUserSync creates a resolver. An unknown policy falls back to lazy.
func NewUserSync(users user.Repository, idp identity.Client, policy SyncPolicy, audit AuditService, metrics metricsx.Recorder, log *logx.Logger) *UserSync {
	if policy != SyncAlways {
		policy = SyncLazy
	}
	if metrics == nil {
		metrics = metricsx.Nop{}
	}
	return &UserSync{
		users:   users,
		idp:     idp,
		policy:  policy,
		audit:   audit,
		metrics: metrics,
		log:     log,
	}
}

// Policy returns the active sync policy
func (s *UserSync) Policy() SyncPolicy {
	return s.policy
}

// Resolve returns the local user for a, creating or refreshing it as the
// policy requires. It performs at most one store write.
func (s *UserSync) Resolve(ctx context.Context, a *kernel.Assertion) (*user.User, error) {
	if !a.HasSubject() {
		return nil, errx.Unauthorized("")
	}

	if s.policy == SyncLazy {
		existing, err := s.users.FindByExternalID(ctx, a.SubjectID)
		if err != nil {
			s.metrics.UserSync(string(s.policy), "error")
			return nil, err
		}
		if existing != nil {
			s.metrics.UserSync(string(s.policy), "hit")
			return existing, nil
		}
	}

	fetchCtx := ctx
	if s.policy == SyncAlways {
		fetchCtx = identity.WithFreshRead(ctx)
	}

	profile, err := s.idp.GetUser(fetchCtx, a.SubjectID)
	if err != nil {
		s.metrics.UserSync(string(s.policy), "provider_error")
		return nil, err
	}

	create, update, err := fieldsFromProfile(profile)
	if err != nil {
		s.metrics.UserSync(string(s.policy), "rejected")
		return nil, err
	}
	if s.policy == SyncLazy {
		update = nil
	}

	u, err := s.users.Upsert(ctx, a.SubjectID, create, update)
	if err != nil {
		s.metrics.UserSync(string(s.policy), "error")
		return nil, err
	}

	s.metrics.UserSync(string(s.policy), "synced")
	s.audit.LogUserSynced(ctx, u.ID, u.ExternalID, s.policy)
	s.log.WithFields(logx.Fields{
		"user_id":     u.ID,
		"external_id": u.ExternalID,
		"policy":      s.policy,
	}).WithContext(ctx).Debug("user record synced from identity provider")

	return u, nil
}

// fieldsFromProfile maps a provider profile onto store fields.
// A primary email that exists but is unverified is refused.
func fieldsFromProfile(p *identity.Profile) (user.CreateFields, *user.UpdateFields, error) {
	create := user.CreateFields{
		Name: p.DisplayName(),
		Role: user.RoleUser,
	}
	update := &user.UpdateFields{Name: &create.Name}

	if email, ok := p.PrimaryEmail(); ok {
		if !email.Verified {
			return create, nil, errx.Forbidden("Email address is not verified")
		}
		create.Email = ptrx.NonZero(email.Address)
		update.Email = create.Email
	}
	create.AvatarURL = ptrx.NonZero(p.ImageURL)
	update.AvatarURL = create.AvatarURL
	return create, update, nil
}
