package domain

import (
	"context"
	"time"
)

// UserRepository defines access methods for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateRole(ctx context.Context, email string, role UserRole) (*User, error)
}

// DonationRepository persists donations. Donations are never updated or deleted.
type DonationRepository interface {
	Create(ctx context.Context, in NewDonation) (*Donation, error)
	ListByOwner(ctx context.Context, ownerID string, page Page) ([]Donation, int, error)
	ListAll(ctx context.Context, page Page) ([]Donation, int, error)
}

// StatsRepository computes per-owner statistics at query time.
type StatsRepository interface {
	ComputeStats(ctx context.Context, ownerID string, now time.Time) (*DonationStats, error)
}
