package domain

import (
	"sort"
	"time"
)

// MonthlyWindowMonths is how far back the monthly trend reaches.
const MonthlyWindowMonths = 6

// DonationTotals holds the overall sum and count for an owner.
type DonationTotals struct {
	TotalAmount    int64  `json:"totalAmount"`
	TotalDonations int64  `json:"totalDonations"`
	Formatted      string `json:"totalAmountFormatted,omitempty"`
}

// CategoryTotal is one entry of the category breakdown.
type CategoryTotal struct {
	Category Category `json:"category"`
	Amount   int64    `json:"amount"`
	Count    int64    `json:"count"`
}

// MonthlyTotal is one (year, month) bucket of the monthly trend.
type MonthlyTotal struct {
	Year   int   `json:"year"`
	Month  int   `json:"month"`
	Amount int64 `json:"amount"`
	Count  int64 `json:"count"`
}

// DonationStats is the derived statistics view for one owner. It is never persisted.
type DonationStats struct {
	Total         DonationTotals  `json:"total"`
	Categories    []CategoryTotal `json:"categories"`
	Monthly       []MonthlyTotal  `json:"monthly"`
	FavoriteCause Category        `json:"favoriteCause"`
}

// EmptyStats is the result for an owner without donations.
func EmptyStats() *DonationStats {
	return &DonationStats{
		Categories:    []CategoryTotal{},
		Monthly:       []MonthlyTotal{},
		FavoriteCause: DefaultFavoriteCause,
	}
}

// MonthlyWindowStart returns the inclusive lower bound of the monthly trend:
// now minus six calendar months in UTC. A day that does not exist in the
// target month is clamped to its last day.
func MonthlyWindowStart(now time.Time) time.Time {
	now = now.UTC()
	year, month, day := now.Date()
	m := int(month) - MonthlyWindowMonths
	for m < 1 {
		m += 12
		year--
	}
	if last := daysIn(year, time.Month(m)); day > last {
		day = last
	}
	return time.Date(year, time.Month(m), day, now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// SortCategoryTotals orders by amount descending, then category name ascending.
func SortCategoryTotals(items []CategoryTotal) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Amount != items[j].Amount {
			return items[i].Amount > items[j].Amount
		}
		return items[i].Category < items[j].Category
	})
}

// SortMonthlyTotals orders buckets chronologically.
func SortMonthlyTotals(items []MonthlyTotal) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Year != items[j].Year {
			return items[i].Year < items[j].Year
		}
		return items[i].Month < items[j].Month
	})
}

// FavoriteCause returns the category with the highest total, given a sorted breakdown.
func FavoriteCause(sorted []CategoryTotal) Category {
	if len(sorted) == 0 {
		return DefaultFavoriteCause
	}
	return sorted[0].Category
}

// ComputeStats projects donations, which must all belong to one owner, into DonationStats.
func ComputeStats(donations []Donation, now time.Time) *DonationStats {
	stats := EmptyStats()
	if len(donations) == 0 {
		return stats
	}

	since := MonthlyWindowStart(now)
	byCategory := make(map[Category]*CategoryTotal)
	type monthKey struct{ year, month int }
	byMonth := make(map[monthKey]*MonthlyTotal)

	for _, d := range donations {
		stats.Total.TotalAmount += d.Amount
		stats.Total.TotalDonations++

		ct, ok := byCategory[d.Category]
		if !ok {
			ct = &CategoryTotal{Category: d.Category}
			byCategory[d.Category] = ct
		}
		ct.Amount += d.Amount
		ct.Count++

		created := d.CreatedAt.UTC()
		if created.Before(since) {
			continue
		}
		key := monthKey{year: created.Year(), month: int(created.Month())}
		mt, ok := byMonth[key]
		if !ok {
			mt = &MonthlyTotal{Year: key.year, Month: key.month}
			byMonth[key] = mt
		}
		mt.Amount += d.Amount
		mt.Count++
	}

	for _, ct := range byCategory {
		stats.Categories = append(stats.Categories, *ct)
	}
	SortCategoryTotals(stats.Categories)

	for _, mt := range byMonth {
		stats.Monthly = append(stats.Monthly, *mt)
	}
	SortMonthlyTotals(stats.Monthly)

	stats.FavoriteCause = FavoriteCause(stats.Categories)
	return stats
}
