package profile

import (
	"net/http"
	"time"

	"github.com/Abraxas-365/gatekeeper/pkg/errx"
	"github.com/Abraxas-365/gatekeeper/pkg/iam/user"
	"github.com/Abraxas-365/gatekeeper/pkg/kernel"
)

var ErrRegistry = errx.NewRegistry("")

var (
	CodeProfileUpdateFailed = ErrRegistry.Register(errx.CodeDatabase, http.StatusInternalServerError, errx.StatusFail, true, "Failed to update user profile")
	CodeLogoutFailed        = ErrRegistry.Register(errx.CodeUpstream, http.StatusInternalServerError, errx.StatusFail, true, "Failed to log out")
)

func ErrProfileUpdateFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeProfileUpdateFailed, cause)
}

func ErrLogoutFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeLogoutFailed, cause)
}

// UpdateInput is a partial profile change. Nil fields keep their current value.
type UpdateInput struct {
	FirstName *string
	LastName  *string
	AvatarURL *string
	BirthDate *time.Time
}

// AdminUser is one row of the admin listing: the provider profile merged
// with the local record when one exists.
type AdminUser struct {
	ExternalID   kernel.SubjectID `json:"externalId"`
	UserID       kernel.UserID    `json:"userId,omitempty"`
	Name         string           `json:"name"`
	Email        string           `json:"email,omitempty"`
	ImageURL     string           `json:"imageUrl,omitempty"`
	Role         user.Role        `json:"role,omitempty"`
	Synced       bool             `json:"synced"`
	CreatedAt    int64            `json:"createdAt"`
	LastSignInAt int64            `json:"lastSignInAt,omitempty"`
}
