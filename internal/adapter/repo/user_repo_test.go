package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"donationtracker/internal/domain"
	"donationtracker/internal/sqlinline"
)

func userRow(email, role string) []any {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return []any{"5b1c3d6e-0000-4000-8000-000000000001", "Asha", email, "$2a$10$hash", role, now, now}
}

func TestUserCreateNormalizesEmailAndDefaultsRole(t *testing.T) {
	sql := newFakeSQL()
	sql.rowFns[sqlinline.QInsertUser] = func(args []any) pgx.Row {
		return fakeRow{values: userRow(args[1].(string), args[3].(string))}
	}
	repo := NewUserRepository(sql)

	u, err := repo.Create(context.Background(), &domain.User{Name: "Asha", Email: " Asha@Example.com ", PasswordHash: "$2a$10$hash"})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if u.Email != "asha@example.com" || u.Role != domain.UserRoleUser {
		t.Fatalf("unexpected user %+v", u)
	}
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	sql := newFakeSQL()
	sql.rowFns[sqlinline.QInsertUser] = func([]any) pgx.Row {
		return fakeRow{err: &pgconn.PgError{Code: "23505", ConstraintName: userEmailConstraint}}
	}
	repo := NewUserRepository(sql)

	_, err := repo.Create(context.Background(), &domain.User{Name: "Asha", Email: "asha@example.com"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("Create() error = %v, want conflict", err)
	}
}

func TestUserGetByEmailNotFound(t *testing.T) {
	sql := newFakeSQL()
	sql.rowFns[sqlinline.QSelectUserByEmail] = func([]any) pgx.Row {
		return fakeRow{err: pgx.ErrNoRows}
	}
	repo := NewUserRepository(sql)

	if _, err := repo.GetByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByEmail() error = %v, want not found", err)
	}
}

func TestUserGetByIDMalformedIsNotFound(t *testing.T) {
	sql := newFakeSQL()
	repo := NewUserRepository(sql)

	if _, err := repo.GetByID(context.Background(), "not-a-uuid"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByID() error = %v, want not found", err)
	}
	if calls := sql.callsFor(sqlinline.QSelectUserByID); len(calls) != 0 {
		t.Fatalf("expected no query, got %d", len(calls))
	}
}

func TestUserUpdateRole(t *testing.T) {
	sql := newFakeSQL()
	sql.rowFns[sqlinline.QUpdateUserRole] = func(args []any) pgx.Row {
		return fakeRow{values: userRow(args[0].(string), args[1].(string))}
	}
	repo := NewUserRepository(sql)

	u, err := repo.UpdateRole(context.Background(), "ASHA@example.com", domain.UserRoleAdmin)
	if err != nil {
		t.Fatalf("UpdateRole() unexpected error: %v", err)
	}
	if !u.IsAdmin() || u.Email != "asha@example.com" {
		t.Fatalf("unexpected user %+v", u)
	}
	if _, err := repo.UpdateRole(context.Background(), "asha@example.com", "root"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("UpdateRole(root) error = %v, want validation error", err)
	}
}
