package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"donationtracker/internal/domain"
	"donationtracker/internal/infra"
	"donationtracker/internal/sqlinline"
)

// transactionIDConstraint is the unique constraint guarding donations.transaction_id.
const transactionIDConstraint = "donations_transaction_id_key"

// DonationRepositoryPG implements domain.DonationRepository using PostgreSQL.
type DonationRepositoryPG struct {
	sql infra.SQLExecutor
	now func() time.Time
}

// NewDonationRepository creates a new donation repo.
func NewDonationRepository(sql infra.SQLExecutor) *DonationRepositoryPG {
	return &DonationRepositoryPG{sql: sql, now: time.Now}
}

// Create validates and inserts a donation. A generated transaction id that
// collides is regenerated once; a caller-supplied one is never regenerated.
func (r *DonationRepositoryPG) Create(ctx context.Context, in domain.NewDonation) (*domain.Donation, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	generated := in.TransactionID == ""
	attempts := 1
	if generated {
		attempts = 2
	}

	for attempt := 1; ; attempt++ {
		txnID := in.TransactionID
		if generated {
			txnID = domain.NewTransactionID(r.now())
		}
		row := r.sql.QueryRow(ctx, sqlinline.QInsertDonation,
			in.OwnerID,
			in.Amount,
			string(in.Category),
			in.DonorName,
			in.DonorEmail,
			in.Message,
			string(domain.StatusCompleted),
			txnID,
			domain.DefaultPaymentMethod,
			domain.DefaultCurrency,
		)
		donation, err := scanDonation(row)
		if err == nil {
			return donation, nil
		}
		if infra.IsUniqueViolation(err, transactionIDConstraint) {
			if attempt < attempts {
				continue
			}
			return nil, fmt.Errorf("%w: transaction id %s already exists", domain.ErrConflict, txnID)
		}
		return nil, fmt.Errorf("%w: insert donation: %v", domain.ErrStoreUnavailable, err)
	}
}

// ListByOwner returns one page of the owner's donations, newest first, and the owner's total.
func (r *DonationRepositoryPG) ListByOwner(ctx context.Context, ownerID string, page domain.Page) ([]domain.Donation, int, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListDonationsByOwner, ownerID, page.Size, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("%w: list donations: %v", domain.ErrStoreUnavailable, err)
	}
	items, err := collectDonations(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.sql.QueryRow(ctx, sqlinline.QCountDonationsByOwner, ownerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: count donations: %v", domain.ErrStoreUnavailable, err)
	}
	return items, total, nil
}

// ListAll returns one page of every owner's donations, newest first.
func (r *DonationRepositoryPG) ListAll(ctx context.Context, page domain.Page) ([]domain.Donation, int, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListAllDonations, page.Size, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("%w: list all donations: %v", domain.ErrStoreUnavailable, err)
	}
	items, err := collectDonations(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.sql.QueryRow(ctx, sqlinline.QCountAllDonations).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: count all donations: %v", domain.ErrStoreUnavailable, err)
	}
	return items, total, nil
}

func collectDonations(rows pgx.Rows) ([]domain.Donation, error) {
	defer rows.Close()
	items := []domain.Donation{}
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan donation: %v", domain.ErrStoreUnavailable, err)
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate donations: %v", domain.ErrStoreUnavailable, err)
	}
	return items, nil
}

func scanDonation(row pgx.Row) (*domain.Donation, error) {
	var (
		d          domain.Donation
		category   string
		status     string
		ownerName  string
		ownerEmail string
	)
	if err := row.Scan(
		&d.ID,
		&d.OwnerID,
		&d.Amount,
		&category,
		&d.DonorName,
		&d.DonorEmail,
		&d.Message,
		&status,
		&d.TransactionID,
		&d.PaymentMethod,
		&d.Currency,
		&d.CreatedAt,
		&d.UpdatedAt,
		&ownerName,
		&ownerEmail,
	); err != nil {
		return nil, err
	}
	d.Category = domain.Category(category)
	d.Status = domain.Status(status)
	d.Owner = &domain.Owner{ID: d.OwnerID, Name: ownerName, Email: ownerEmail}
	return &d, nil
}

var _ domain.DonationRepository = (*DonationRepositoryPG)(nil)
