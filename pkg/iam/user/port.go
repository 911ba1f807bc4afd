package user

import (
	"context"

	"github.com/Abraxas-365/gatekeeper/pkg/kernel"
)

// Repository persists local user records.
// Lookups return (nil, nil) when nothing matches; every other failure is
// an *errx.StoreFailure.
type Repository interface {
	FindByExternalID(ctx context.Context, externalID kernel.SubjectID) (*User, error)
	FindByID(ctx context.Context, id kernel.UserID) (*User, error)
	Create(ctx context.Context, externalID kernel.SubjectID, fields CreateFields) (*User, error)

	// Upsert creates the record for externalID or, when it exists, applies
	// update (nil update leaves the row untouched). It is a single atomic
	// statement: concurrent callers for the same externalID observe one row.
	Upsert(ctx context.Context, externalID kernel.SubjectID, create CreateFields, update *UpdateFields) (*User, error)

	// Update applies fields to the record with id and returns the result.
	// A missing record is a StoreFailure with code not_found.
	Update(ctx context.Context, id kernel.UserID, fields UpdateFields) (*User, error)

	// FindByExternalIDs returns the records whose external ids are listed
	FindByExternalIDs(ctx context.Context, externalIDs []kernel.SubjectID) ([]*User, error)
}
