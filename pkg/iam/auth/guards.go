package auth

import (
	"slices"
	"time"

	"github.com/Abraxas-365/gatekeeper/pkg/errx"
	"github.com/Abraxas-365/gatekeeper/pkg/iam/user"
	"github.com/Abraxas-365/gatekeeper/pkg/kernel"
)

const (
	msgMissingAuthTime = "missing auth_time claim"
	msgReauthRequired  = "re-authentication required"
)

// AuthorizeRole fails with Forbidden unless u holds one of allowed.
func AuthorizeRole(u *user.User, allowed ...user.Role) error {
	if u == nil {
		return errx.Unauthorized("")
	}
	if !slices.Contains(allowed, u.Role) {
		return errx.Forbidden("You do not have permission to perform this action")
	}
	return nil
}

// AuthorizeRecency fails unless the caller authenticated within maxAge of now.
// Ages are whole seconds with no skew allowance: age == maxAge passes.
func AuthorizeRecency(a *kernel.Assertion, maxAge time.Duration, now time.Time) error {
	if a == nil || !a.HasSubject() {
		return errx.Unauthorized("")
	}
	if a.AuthTime == nil {
		return errx.Forbidden(msgMissingAuthTime)
	}

	age := now.Unix() - a.AuthTime.Unix()
	if age > int64(maxAge/time.Second) {
		return errx.Forbidden(msgReauthRequired)
	}
	return nil
}
