package user

import (
	"strings"
	"time"

	"github.com/Abraxas-365/gatekeeper/pkg/kernel"
)

// Role is the local authorization role
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the local record mirrored from the identity provider.
// ExternalID is unique and never changes after creation.
type User struct {
	ID         kernel.UserID    `json:"id"`
	ExternalID kernel.SubjectID `json:"externalId"`
	Name       string           `json:"name"`
	Email      *string          `json:"email,omitempty"`
	AvatarURL  *string          `json:"avatarUrl,omitempty"`
	BirthDate  *time.Time       `json:"birthDate,omitempty"`
	Role       Role             `json:"role"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// SplitName splits the stored display name into first and last parts.
// Everything after the first space is the last name.
func (u *User) SplitName() (first, last string) {
	parts := strings.SplitN(strings.TrimSpace(u.Name), " ", 2)
	first = parts[0]
	if len(parts) == 2 {
		last = strings.TrimSpace(parts[1])
	}
	return first, last
}

// CreateFields is the field set written when a record is first created.
type CreateFields struct {
	Name      string
	Email     *string
	AvatarURL *string
	Role      Role
}

// UpdateFields lists the mutable fields. Nil pointers are left unchanged.
// ExternalID is deliberately absent.
type UpdateFields struct {
	Name      *string
	Email     *string
	AvatarURL *string
	BirthDate *time.Time
	Role      *Role
}

// IsEmpty reports whether no field is set
func (f UpdateFields) IsEmpty() bool {
	return f.Name == nil && f.Email == nil && f.AvatarURL == nil && f.BirthDate == nil && f.Role == nil
}

// Apply copies the set fields onto u
func (f UpdateFields) Apply(u *User) {
	if f.Name != nil {
		u.Name = *f.Name
	}
	if f.Email != nil {
		u.Email = f.Email
	}
	if f.AvatarURL != nil {
		u.AvatarURL = f.AvatarURL
	}
	if f.BirthDate != nil {
		u.BirthDate = f.BirthDate
	}
	if f.Role != nil {
		u.Role = *f.Role
	}
}

// FullName joins first and last name the way the record stores it
func FullName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
