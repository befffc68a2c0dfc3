package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"donationtracker/internal/domain"
	"donationtracker/internal/infra"
	"donationtracker/internal/sqlinline"
)

const userEmailConstraint = "users_email_key"

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
type UserRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(sql infra.SQLExecutor) *UserRepositoryPG {
	return &UserRepositoryPG{sql: sql}
}

// Create inserts a new account. A duplicate email yields domain.ErrConflict.
func (r *UserRepositoryPG) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	role := user.Role
	if role == "" {
		role = domain.UserRoleUser
	}
	row := r.sql.QueryRow(ctx, sqlinline.QInsertUser, user.Name, domain.NormalizeEmail(user.Email), user.PasswordHash, string(role))
	u, err := scanUser(row)
	if err != nil {
		if infra.IsUniqueViolation(err, userEmailConstraint) {
			return nil, fmt.Errorf("%w: email already registered", domain.ErrConflict)
		}
		return nil, err
	}
	return u, nil
}

// GetByID fetches a user by UUID. Ids that are not UUIDs cannot exist.
func (r *UserRepositoryPG) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return scanUser(r.sql.QueryRow(ctx, sqlinline.QSelectUserByID, id))
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepositoryPG) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.sql.QueryRow(ctx, sqlinline.QSelectUserByEmail, domain.NormalizeEmail(email)))
}

// UpdateRole assigns role to the account registered under email.
func (r *UserRepositoryPG) UpdateRole(ctx context.Context, email string, role domain.UserRole) (*domain.User, error) {
	if !role.Valid() {
		return nil, &domain.ValidationError{Field: "role", Message: fmt.Sprintf("unsupported role %q", role)}
	}
	return scanUser(r.sql.QueryRow(ctx, sqlinline.QUpdateUserRole, domain.NormalizeEmail(email), string(role)))
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		if infra.IsUniqueViolation(err, "") {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	u.Role = domain.UserRole(role)
	return &u, nil
}

var _ domain.UserRepository = (*UserRepositoryPG)(nil)
