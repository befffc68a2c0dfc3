package domain

import "time"

// UserRole enumerates supported roles.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r == UserRoleUser || r == UserRoleAdmin
}

// User represents an account that can own donations.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user may use administrative endpoints.
func (u User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// Owner returns the public projection of u.
func (u User) Owner() *Owner {
	return &Owner{ID: u.ID, Name: u.Name, Email: u.Email}
}
