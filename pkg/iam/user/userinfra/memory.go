package userinfra

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Abraxas-365/gatekeeper/pkg/errx"
	"github.com/Abraxas-365/gatekeeper/pkg/iam/user"
	"github.com/Abraxas-365/gatekeeper/pkg/kernel"
	"github.com/google/uuid"
)

// MemoryUserRepository is a mutex-guarded user.Repository for local runs
// and tests. Every method is atomic with respect to the others.
type MemoryUserRepository struct {
	mu         sync.Mutex
	byID       map[kernel.UserID]*user.User
	byExternal map[kernel.SubjectID]kernel.UserID
	writes     int
}

// NewMemoryUserRepository creates an empty repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:       make(map[kernel.UserID]*user.User),
		byExternal: make(map[kernel.SubjectID]kernel.UserID),
	}
}

func (r *MemoryUserRepository) FindByExternalID(_ context.Context, externalID kernel.SubjectID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byExternal[externalID]
	if !ok {
		return nil, nil
	}
	return clone(r.byID[id]), nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id kernel.UserID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return clone(r.byID[id]), nil
}

func (r *MemoryUserRepository) Create(_ context.Context, externalID kernel.SubjectID, fields user.CreateFields) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byExternal[externalID]; exists {
		return nil, &errx.StoreFailure{Code: errx.StoreUnique, Fields: []string{"external_id"}}
	}
	if err := r.checkEmail(fields.Email, ""); err != nil {
		return nil, err
	}
	return clone(r.insert(externalID, fields)), nil
}

func (r *MemoryUserRepository) Upsert(_ context.Context, externalID kernel.SubjectID, create user.CreateFields, update *user.UpdateFields) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, exists := r.byExternal[externalID]
	if !exists {
		if err := r.checkEmail(create.Email, ""); err != nil {
			return nil, err
		}
		return clone(r.insert(externalID, create)), nil
	}

	u := r.byID[id]
	if update != nil && !update.IsEmpty() {
		if err := r.apply(u, *update); err != nil {
			return nil, err
		}
	}
	return clone(u), nil
}

func (r *MemoryUserRepository) Update(_ context.Context, id kernel.UserID, fields user.UpdateFields) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, &errx.StoreFailure{Code: errx.StoreNotFound}
	}
	if !fields.IsEmpty() {
		if err := r.apply(u, fields); err != nil {
			return nil, err
		}
	}
	return clone(u), nil
}

func (r *MemoryUserRepository) FindByExternalIDs(_ context.Context, externalIDs []kernel.SubjectID) ([]*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*user.User, 0, len(externalIDs))
	for _, ext := range externalIDs {
		if id, ok := r.byExternal[ext]; ok {
			out = append(out, clone(r.byID[id]))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Count returns the number of stored records
func (r *MemoryUserRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// Writes returns how many mutating operations changed state
func (r *MemoryUserRepository) Writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

func (r *MemoryUserRepository) insert(externalID kernel.SubjectID, fields user.CreateFields) *user.User {
	role := fields.Role
	if role == "" {
		role = user.RoleUser
	}
	now := time.Now().UTC()
	u := &user.User{
		ID:         kernel.NewUserID(uuid.NewString()),
		ExternalID: externalID,
		Name:       fields.Name,
		Email:      fields.Email,
		AvatarURL:  fields.AvatarURL,
		Role:       role,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.byID[u.ID] = u
	r.byExternal[externalID] = u.ID
	r.writes++
	return u
}

func (r *MemoryUserRepository) apply(u *user.User, fields user.UpdateFields) error {
	if fields.Role != nil && !fields.Role.IsValid() {
		return &errx.StoreFailure{Code: errx.StoreInvalidValue, Fields: []string{"role"}}
	}
	if err := r.checkEmail(fields.Email, u.ID); err != nil {
		return err
	}
	fields.Apply(u)
	u.UpdatedAt = time.Now().UTC()
	r.writes++
	return nil
}

func (r *MemoryUserRepository) checkEmail(email *string, self kernel.UserID) error {
	if email == nil {
		return nil
	}
	for id, other := range r.byID {
		if id != self && other.Email != nil && *other.Email == *email {
			return &errx.StoreFailure{Code: errx.StoreUnique, Fields: []string{"email"}}
		}
	}
	return nil
}

func clone(u *user.User) *user.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
