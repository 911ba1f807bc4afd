package auth

import (
	"context"

	"github.com/Abraxas-365/gatekeeper/pkg/iam/user"
	"github.com/Abraxas-365/gatekeeper/pkg/kernel"
)

// AuditService records security-relevant decisions.
type AuditService interface {
	LogUnauthorized(ctx context.Context, ip, path, reason string)
	LogForbidden(ctx context.Context, userID kernel.UserID, role user.Role, path, reason string)
	LogUserSynced(ctx context.Context, userID kernel.UserID, externalID kernel.SubjectID, policy SyncPolicy)
	LogLogout(ctx context.Context, userID kernel.UserID, sessionID kernel.SessionID, ip string)
}

// Resolver maps an assertion to the local user record.
type Resolver interface {
	Resolve(ctx context.Context, a *kernel.Assertion) (*user.User, error)
}
