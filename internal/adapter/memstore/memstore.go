// Package memstore is an in-process implementation of the repository ports
// for local development and tests. It mirrors the PostgreSQL semantics,
// including the transaction id uniqueness constraint.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"donationtracker/internal/domain"
)

// Store holds users and donations in memory.
type Store struct {
	mu           sync.RWMutex
	users        map[string]*domain.User
	usersByEmail map[string]string
	donations    []domain.Donation
	transactions map[string]struct{}

	now    func() time.Time
	newID  func() string
	// swapped in tests to force collisions
	txnIDs func(time.Time) string
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:        make(map[string]*domain.User),
		usersByEmail: make(map[string]string),
		transactions: make(map[string]struct{}),
		now:          time.Now,
		newID:        uuid.NewString,
		txnIDs:       domain.NewTransactionID,
	}
}

// Create implements domain.UserRepository.
func (s *Store) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	email := domain.NormalizeEmail(user.Email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.usersByEmail[email]; exists {
		return nil, fmt.Errorf("%w: email already registered", domain.ErrConflict)
	}
	now := s.now().UTC()
	u := *user
	u.ID = s.newID()
	u.Email = email
	if u.Role == "" {
		u.Role = domain.UserRoleUser
	}
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = &u
	s.usersByEmail[email] = u.ID
	out := u
	return &out, nil
}

// GetByID implements domain.UserRepository.
func (s *Store) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *u
	return &out, nil
}

// GetByEmail implements domain.UserRepository.
func (s *Store) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	id, ok := s.usersByEmail[domain.NormalizeEmail(email)]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.GetByID(ctx, id)
}

// UpdateRole implements domain.UserRepository.
func (s *Store) UpdateRole(_ context.Context, email string, role domain.UserRole) (*domain.User, error) {
	if !role.Valid() {
		return nil, &domain.ValidationError{Field: "role", Message: fmt.Sprintf("unsupported role %q", role)}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.usersByEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u := s.users[id]
	u.Role = role
	u.UpdatedAt = s.now().UTC()
	out := *u
	return &out, nil
}

// Donations exposes the donation side of the store.
func (s *Store) Donations() *DonationStore { return &DonationStore{s: s} }

// DonationStore implements domain.DonationRepository and domain.StatsRepository.
type DonationStore struct {
	s *Store
}

// Create validates and appends a donation.
func (d *DonationStore) Create(_ context.Context, in domain.NewDonation) (*domain.Donation, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	s := d.s
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	txnID := in.TransactionID
	if txnID == "" {
		txnID = s.txnIDs(now)
		if _, taken := s.transactions[txnID]; taken {
			txnID = s.txnIDs(now)
		}
	}
	if _, taken := s.transactions[txnID]; taken {
		return nil, fmt.Errorf("%w: transaction id %s already exists", domain.ErrConflict, txnID)
	}

	donation := domain.Donation{
		ID:            s.newID(),
		OwnerID:       in.OwnerID,
		Amount:        in.Amount,
		Category:      in.Category,
		DonorName:     in.DonorName,
		DonorEmail:    in.DonorEmail,
		Message:       in.Message,
		Status:        domain.StatusCompleted,
		TransactionID: txnID,
		PaymentMethod: domain.DefaultPaymentMethod,
		Currency:      domain.DefaultCurrency,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.donations = append(s.donations, donation)
	s.transactions[txnID] = struct{}{}
	return s.withOwner(donation), nil
}

// ListByOwner returns the owner's donations newest first.
func (d *DonationStore) ListByOwner(_ context.Context, ownerID string, page domain.Page) ([]domain.Donation, int, error) {
	s := d.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page(func(x domain.Donation) bool { return x.OwnerID == ownerID }, page)
}

// ListAll returns every donation newest first.
func (d *DonationStore) ListAll(_ context.Context, page domain.Page) ([]domain.Donation, int, error) {
	s := d.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page(func(domain.Donation) bool { return true }, page)
}

// ComputeStats projects the owner's donations with domain.ComputeStats.
func (d *DonationStore) ComputeStats(_ context.Context, ownerID string, now time.Time) (*domain.DonationStats, error) {
	s := d.s
	s.mu.RLock()
	owned := make([]domain.Donation, 0)
	for _, x := range s.donations {
		if x.OwnerID == ownerID {
			owned = append(owned, x)
		}
	}
	s.mu.RUnlock()
	return domain.ComputeStats(owned, now), nil
}

func (s *Store) page(keep func(domain.Donation) bool, page domain.Page) ([]domain.Donation, int, error) {
	matched := make([]domain.Donation, 0)
	for _, x := range s.donations {
		if keep(x) {
			matched = append(matched, x)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	start := page.Offset()
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := start + page.Size
	if end > total {
		end = total
	}
	items := make([]domain.Donation, 0, end-start)
	for _, x := range matched[start:end] {
		items = append(items, *s.withOwner(x))
	}
	return items, total, nil
}

// withOwner must be called with s.mu held.
func (s *Store) withOwner(x domain.Donation) *domain.Donation {
	if u, ok := s.users[x.OwnerID]; ok {
		x.Owner = u.Owner()
	} else {
		x.Owner = &domain.Owner{ID: x.OwnerID}
	}
	return &x
}

var (
	_ domain.UserRepository     = (*Store)(nil)
	_ domain.DonationRepository = (*DonationStore)(nil)
	_ domain.StatsRepository    = (*DonationStore)(nil)
)
