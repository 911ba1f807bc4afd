package profilesrv

import (
	"context"
	"strings"

	"github.com/Abraxas-365/gatekeeper/pkg/asyncx"
	"github.com/Abraxas-365/gatekeeper/pkg/errx"
	"github.com/Abraxas-365/gatekeeper/pkg/iam/identity"
	"github.com/Abraxas-365/gatekeeper/pkg/iam/profile"
	"github.com/Abraxas-365/gatekeeper/pkg/iam/user"
	"github.com/Abraxas-365/gatekeeper/pkg/kernel"
	"github.com/Abraxas-365/gatekeeper/pkg/logx"
	"github.com/Abraxas-365/gatekeeper/pkg/metricsx"
)

type ProfileService struct {
	users   user.Repository
	idp     identity.Client
	alerter *Alerter
	metrics metricsx.Recorder
	log     *logx.Logger
}

func NewProfileService(
	users user.Repository,
	idp identity.Client,
	alerter *Alerter,
	metrics metricsx.Recorder,
	log *logx.Logger,
) *ProfileService {
	if metrics == nil {
		metrics = metricsx.Nop{}
	}
	return &ProfileService{
		users:   users,
		idp:     idp,
		alerter: alerter,
		metrics: metrics,
		log:     log,
	}
}

// GetProfile returns the local record for userID.
func (s *ProfileService) GetProfile(ctx context.Context, userID kernel.UserID) (*user.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errx.NotFound("User not found")
	}
	return u, nil
}

// UpdateProfile writes the name to the identity provider and the profile
// to the local store. A local failure restores the provider's previous
// name. Every failure surfaces as ProfileUpdateFailed.
func (s *ProfileService) UpdateProfile(
	ctx context.Context,
	userID kernel.UserID,
	in profile.UpdateInput,
	current *user.User,
) (*user.User, error) {
	if current == nil {
		var err error
		if current, err = s.GetProfile(ctx, userID); err != nil {
			return nil, profile.ErrProfileUpdateFailed(err)
		}
	}

	first, last := resolveName(in, current)
	name := user.FullName(first, last)
	externalID := current.ExternalID

	var (
		before  *identity.Profile
		updated *user.User
	)

	sg := &saga{
		steps: []step{
			{
				name: "read provider profile",
				apply: func(ctx context.Context) error {
					p, err := s.idp.GetUser(identity.WithFreshRead(ctx), externalID)
					before = p
					return err
				},
			},
			{
				name: "update provider name",
				apply: func(ctx context.Context) error {
					_, err := s.idp.UpdateUser(ctx, externalID, identity.NameUpdate{FirstName: first, LastName: last})
					return err
				},
				undo: func(ctx context.Context) error {
					_, err := s.idp.UpdateUser(ctx, externalID, identity.NameUpdate{
						FirstName: before.FirstName,
						LastName:  before.LastName,
					})
					return err
				},
			},
			{
				name: "update local record",
				apply: func(ctx context.Context) error {
					u, err := s.users.Update(ctx, userID, user.UpdateFields{
						Name:      &name,
						AvatarURL: in.AvatarURL,
						BirthDate: in.BirthDate,
					})
					updated = u
					return err
				},
			},
		},
		onUndo: func(ctx context.Context, stepName string, err error) {
			s.compensated(ctx, current, before, stepName, err)
		},
	}

	if err := sg.run(ctx); err != nil {
		s.log.WithError(err).WithFields(logx.Fields{
			"user_id":     userID,
			"external_id": externalID,
		}).WithContext(ctx).Error("profile update failed")
		return nil, profile.ErrProfileUpdateFailed(err)
	}

	return updated, nil
}

func (s *ProfileService) compensated(ctx context.Context, u *user.User, before *identity.Profile, stepName string, err error) {
	fields := logx.Fields{
		"user_id":     u.ID,
		"external_id": u.ExternalID,
		"step":        stepName,
	}

	if err == nil {
		s.metrics.Compensation("restored")
		s.log.WithFields(fields).WithContext(ctx).Warn("provider profile restored after local update failure")
		return
	}

	s.metrics.Compensation("failed")
	s.log.WithError(err).WithFields(fields).WithContext(ctx).Error("failed to restore provider profile after local update failure")
	s.alerter.RollbackFailed(ctx, rollbackAlert{
		UserID:     u.ID,
		ExternalID: u.ExternalID,
		Step:       stepName,
		FirstName:  before.FirstName,
		LastName:   before.LastName,
		Error:      err.Error(),
	})
}

// resolveName fills a missing first or last name from the current record.
func resolveName(in profile.UpdateInput, current *user.User) (first, last string) {
	if in.FirstName != nil {
		first = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		last = strings.TrimSpace(*in.LastName)
	}
	if first == "" || last == "" {
		curFirst, curLast := current.SplitName()
		if first == "" {
			first = curFirst
		}
		if last == "" {
			last = curLast
		}
	}
	return first, last
}

// LogOut revokes the caller's provider session.
func (s *ProfileService) LogOut(ctx context.Context, a *kernel.Assertion) (*identity.Session, error) {
	if a == nil || !a.HasSession() {
		s.log.WithContext(ctx).Warn("logout failed: no active session found")
		return nil, errx.Unauthorized("No active session found")
	}

	session, err := s.idp.RevokeSession(ctx, a.SessionID)
	if err != nil {
		s.log.WithError(err).WithField("session_id", a.SessionID).WithContext(ctx).Error("error during logout")
		var e *errx.Error
		if errx.As(err, &e) {
			return nil, e
		}
		return nil, profile.ErrLogoutFailed(err)
	}

	s.log.WithField("session_id", a.SessionID).WithContext(ctx).Info("user logged out, session revoked")
	return session, nil
}

// ListUsers returns one page of provider users merged with local roles.
func (s *ProfileService) ListUsers(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[profile.AdminUser], error) {
	opts = opts.Normalize()

	page := asyncx.Run(ctx, func(ctx context.Context) ([]identity.Profile, error) {
		return s.idp.ListUsers(ctx, opts)
	})
	count := asyncx.Run(ctx, s.idp.CountUsers)

	profiles, err := page.Await(ctx)
	if err != nil {
		return kernel.Paginated[profile.AdminUser]{}, err
	}
	total, err := count.Await(ctx)
	if err != nil {
		return kernel.Paginated[profile.AdminUser]{}, err
	}

	ids := make([]kernel.SubjectID, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}
	locals, err := s.users.FindByExternalIDs(ctx, ids)
	if err != nil {
		return kernel.Paginated[profile.AdminUser]{}, err
	}
	byExternal := make(map[kernel.SubjectID]*user.User, len(locals))
	for _, u := range locals {
		byExternal[u.ExternalID] = u
	}

	items := make([]profile.AdminUser, 0, len(profiles))
	for _, p := range profiles {
		row := profile.AdminUser{
			ExternalID:   p.ID,
			Name:         p.DisplayName(),
			ImageURL:     p.ImageURL,
			CreatedAt:    p.CreatedAt,
			LastSignInAt: p.LastSignInAt,
		}
		if email, ok := p.PrimaryEmail(); ok {
			row.Email = email.Address
		}
		if u, ok := byExternal[p.ID]; ok {
			row.UserID = u.ID
			row.Role = u.Role
			row.Synced = true
		}
		items = append(items, row)
	}

	return kernel.NewPaginated(items, opts, total), nil
}
