package repo

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"donationtracker/internal/domain"
	"donationtracker/internal/infra"
	"donationtracker/internal/sqlinline"
)

// StatsRepositoryPG computes owner statistics with three aggregate queries.
type StatsRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewStatsRepository constructs the repository.
func NewStatsRepository(sql infra.SQLExecutor) *StatsRepositoryPG {
	return &StatsRepositoryPG{sql: sql}
}

// ComputeStats runs the totals, category and monthly aggregations concurrently.
// Any failure aborts the whole computation; nothing is retried.
func (r *StatsRepositoryPG) ComputeStats(ctx context.Context, ownerID string, now time.Time) (*domain.DonationStats, error) {
	stats := domain.EmptyStats()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		row := r.sql.QueryRow(gctx, sqlinline.QStatsTotals, ownerID)
		if err := row.Scan(&stats.Total.TotalAmount, &stats.Total.TotalDonations); err != nil {
			return fmt.Errorf("totals: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		rows, err := r.sql.Query(gctx, sqlinline.QStatsByCategory, ownerID)
		if err != nil {
			return fmt.Errorf("categories: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var (
				ct       domain.CategoryTotal
				category string
			)
			if err := rows.Scan(&category, &ct.Amount, &ct.Count); err != nil {
				return fmt.Errorf("categories scan: %w", err)
			}
			ct.Category = domain.Category(category)
			stats.Categories = append(stats.Categories, ct)
		}
		return rows.Err()
	})

	g.Go(func() error {
		rows, err := r.sql.Query(gctx, sqlinline.QStatsMonthly, ownerID, domain.MonthlyWindowStart(now))
		if err != nil {
			return fmt.Errorf("monthly: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var mt domain.MonthlyTotal
			if err := rows.Scan(&mt.Year, &mt.Month, &mt.Amount, &mt.Count); err != nil {
				return fmt.Errorf("monthly scan: %w", err)
			}
			stats.Monthly = append(stats.Monthly, mt)
		}
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: compute stats: %v", domain.ErrStoreUnavailable, err)
	}

	// The SQL already orders both lists; sorting again keeps the tie-break
	// independent of the database collation.
	domain.SortCategoryTotals(stats.Categories)
	domain.SortMonthlyTotals(stats.Monthly)
	stats.FavoriteCause = domain.FavoriteCause(stats.Categories)
	return stats, nil
}

var _ domain.StatsRepository = (*StatsRepositoryPG)(nil)
