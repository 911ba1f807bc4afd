package userinfra

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abraxas-365/gatekeeper/pkg/iam/user"
	"github.com/Abraxas-365/gatekeeper/pkg/kernel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const userColumns = `id, external_id, name, email, avatar_url, birth_date, role, created_at, updated_at`

// PostgresUserRepository implements user.Repository on PostgreSQL.
type PostgresUserRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewPostgresUserRepository creates a new repository over db.
func NewPostgresUserRepository(db *sqlx.DB) *PostgresUserRepository {
	return &PostgresUserRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// FindByExternalID returns the record for a provider subject, or nil.
func (r *PostgresUserRepository) FindByExternalID(ctx context.Context, externalID kernel.SubjectID) (*user.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE external_id = $1`, externalID.String())
}

// FindByID returns the record with the given id, or nil.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id kernel.UserID) (*user.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id.String())
}

func (r *PostgresUserRepository) findOne(ctx context.Context, query string, arg any) (*user.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, classify(err)
	}
	return row.toDomain(), nil
}

// Create inserts a new record.
func (r *PostgresUserRepository) Create(ctx context.Context, externalID kernel.SubjectID, fields user.CreateFields) (*user.User, error) {
	query := `
		INSERT INTO users (id, external_id, name, email, avatar_url, role, created_at, updated_at)
		VALUES (:id, :external_id, :name, :email, :avatar_url, :role, :created_at, :updated_at)
		RETURNING ` + userColumns

	rows, err := r.db.NamedQueryContext(ctx, query, r.newRow(externalID, fields))
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	return scanOne(rows)
}

// Upsert is a single INSERT ... ON CONFLICT (external_id) statement.
// With a nil update the conflict branch rewrites external_id to itself so
// RETURNING still yields the existing row without changing it.
func (r *PostgresUserRepository) Upsert(ctx context.Context, externalID kernel.SubjectID, create user.CreateFields, update *user.UpdateFields) (*user.User, error) {
	row := r.newRow(externalID, create)
	args := []any{row.ID, row.ExternalID, row.Name, row.Email, row.AvatarURL, row.Role, row.CreatedAt, row.UpdatedAt}

	set := "external_id = EXCLUDED.external_id"
	if update != nil && !update.IsEmpty() {
		var clauses []string
		clauses, args = setClauses(*update, args)
		clauses = append(clauses, fmt.Sprintf("updated_at = $%d", len(args)+1))
		args = append(args, r.now())
		set = strings.Join(clauses, ", ")
	}

	query := `
		INSERT INTO users (id, external_id, name, email, avatar_url, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (external_id) DO UPDATE SET ` + set + `
		RETURNING ` + userColumns

	var out userRow
	if err := r.db.GetContext(ctx, &out, query, args...); err != nil {
		return nil, classify(err)
	}
	return out.toDomain(), nil
}

// Update applies fields to the record with id.
func (r *PostgresUserRepository) Update(ctx context.Context, id kernel.UserID, fields user.UpdateFields) (*user.User, error) {
	if fields.IsEmpty() {
		u, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, classify(sql.ErrNoRows)
		}
		return u, nil
	}

	clauses, args := setClauses(fields, nil)
	clauses = append(clauses, fmt.Sprintf("updated_at = $%d", len(args)+1))
	args = append(args, r.now(), id.String())

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(clauses, ", "), len(args), userColumns)

	var out userRow
	if err := r.db.GetContext(ctx, &out, query, args...); err != nil {
		return nil, classify(err)
	}
	return out.toDomain(), nil
}

// FindByExternalIDs returns the records for the given subjects.
func (r *PostgresUserRepository) FindByExternalIDs(ctx context.Context, externalIDs []kernel.SubjectID) ([]*user.User, error) {
	if len(externalIDs) == 0 {
		return []*user.User{}, nil
	}

	ids := make([]string, len(externalIDs))
	for i, id := range externalIDs {
		ids[i] = id.String()
	}

	var rows []userRow
	query := `SELECT ` + userColumns + ` FROM users WHERE external_id = ANY($1) ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, classify(err)
	}

	users := make([]*user.User, len(rows))
	for i := range rows {
		users[i] = rows[i].toDomain()
	}
	return users, nil
}

func (r *PostgresUserRepository) newRow(externalID kernel.SubjectID, fields user.CreateFields) userRow {
	role := fields.Role
	if role == "" {
		role = user.RoleUser
	}
	now := r.now()
	return userRow{
		ID:         uuid.NewString(),
		ExternalID: externalID.String(),
		Name:       fields.Name,
		Email:      nullString(fields.Email),
		AvatarURL:  nullString(fields.AvatarURL),
		Role:       string(role),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// setClauses renders "col = $n" for each set field, numbering after args.
func setClauses(f user.UpdateFields, args []any) ([]string, []any) {
	var clauses []string
	add := func(col string, v any) {
		args = append(args, v)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if f.Name != nil {
		add("name", *f.Name)
	}
	if f.Email != nil {
		add("email", nullString(f.Email))
	}
	if f.AvatarURL != nil {
		add("avatar_url", nullString(f.AvatarURL))
	}
	if f.BirthDate != nil {
		add("birth_date", *f.BirthDate)
	}
	if f.Role != nil {
		add("role", string(*f.Role))
	}
	return clauses, args
}

func scanOne(rows *sqlx.Rows) (*user.User, error) {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, classify(err)
		}
		return nil, classify(sql.ErrNoRows)
	}
	var row userRow
	if err := rows.StructScan(&row); err != nil {
		return nil, classify(err)
	}
	return row.toDomain(), nil
}

// ============================================================================
// Persistence model
// ============================================================================

type userRow struct {
	ID         string         `db:"id"`
	ExternalID string         `db:"external_id"`
	Name       string         `db:"name"`
	Email      sql.NullString `db:"email"`
	AvatarURL  sql.NullString `db:"avatar_url"`
	BirthDate  sql.NullTime   `db:"birth_date"`
	Role       string         `db:"role"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func (r userRow) toDomain() *user.User {
	u := &user.User{
		ID:         kernel.NewUserID(r.ID),
		ExternalID: kernel.SubjectID(r.ExternalID),
		Name:       r.Name,
		Role:       user.Role(r.Role),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.Email.Valid {
		u.Email = &r.Email.String
	}
	if r.AvatarURL.Valid {
		u.AvatarURL = &r.AvatarURL.String
	}
	if r.BirthDate.Valid {
		u.BirthDate = &r.BirthDate.Time
	}
	return u
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
