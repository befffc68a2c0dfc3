package handlers

import (
	"net/http"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"donationtracker/internal/domain"
	"donationtracker/internal/middleware"
)

func (a *App) DonationsStats(w http.ResponseWriter, r *http.Request) {
	p, ok := a.currentPrincipal(r)
	if !ok {
		a.Deny(w, r, domain.ErrUnauthorized)
		return
	}
	stats, err := a.Stats.ComputeStats(r.Context(), p.UserID, a.now())
	if err != nil {
		a.fail(w, r, "donations.stats", err, msgStatsFailed)
		return
	}
	stats.Total.Formatted = formatAmount(middleware.LocaleFromContext(r.Context()), domain.DefaultCurrency, stats.Total.TotalAmount)
	a.ok(w, http.StatusOK, "", stats)
}

// formatAmount renders amount whole units of code with the locale's symbol.
func formatAmount(tag language.Tag, code string, amount int64) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		unit = currency.INR
	}
	return message.NewPrinter(tag).Sprint(currency.Symbol(unit.Amount(amount)))
}
