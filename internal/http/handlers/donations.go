package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"donationtracker/internal/domain"
)

const (
	msgMissingFields      = "Please provide all required fields"
	msgMinimumAmount      = "Donation amount must be at least ₹1"
	msgDonationCreated    = "Donation created successfully!"
	msgCreateFailed       = "Error processing donation"
	msgHistoryFailed      = "Error fetching donation history"
	msgStatsFailed        = "Error fetching donation statistics"
	msgAllDonationsFailed = "Error fetching donations"
)

// Amount is a pointer so an absent field can be told apart from zero.
type donationRequest struct {
	Amount   *int64 `json:"amount"`
	Category string `json:"category"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Message  string `json:"message"`
}

type donationListResponse struct {
	Donations  []domain.Donation `json:"donations"`
	Pagination domain.Pagination `json:"pagination"`
}

func (a *App) DonationsCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := a.currentPrincipal(r)
	if !ok {
		a.Deny(w, r, domain.ErrUnauthorized)
		return
	}
	var req donationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "amount" {
			a.error(w, http.StatusBadRequest, "validation", "Donation amount must be a whole number")
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", "Invalid request payload")
		return
	}
	if req.Amount == nil || strings.TrimSpace(req.Category) == "" ||
		strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		a.error(w, http.StatusBadRequest, "validation", msgMissingFields)
		return
	}
	if *req.Amount < domain.MinDonationAmount {
		a.error(w, http.StatusBadRequest, "validation", msgMinimumAmount)
		return
	}

	donation, err := a.Donations.Create(r.Context(), domain.NewDonation{
		OwnerID:    p.UserID,
		Amount:     *req.Amount,
		Category:   domain.Category(req.Category),
		DonorName:  req.Name,
		DonorEmail: req.Email,
		Message:    req.Message,
	})
	if err != nil {
		a.fail(w, r, "donations.create", err, msgCreateFailed)
		return
	}
	a.Metrics.ObserveDonation(string(donation.Category), donation.Amount)
	a.Logger.Info().
		Str("donation_id", donation.ID).
		Str("transaction_id", donation.TransactionID).
		Str("user_id", p.UserID).
		Msg("donation created")
	a.ok(w, http.StatusCreated, msgDonationCreated, donation)
}

func (a *App) DonationsMine(w http.ResponseWriter, r *http.Request) {
	p, ok := a.currentPrincipal(r)
	if !ok {
		a.Deny(w, r, domain.ErrUnauthorized)
		return
	}
	q := r.URL.Query()
	page := domain.NewPage(q.Get("page"), q.Get("limit"), domain.DefaultOwnerPageSize)
	items, total, err := a.Donations.ListByOwner(r.Context(), p.UserID, page)
	if err != nil {
		a.fail(w, r, "donations.list_mine", err, msgHistoryFailed)
		return
	}
	a.ok(w, http.StatusOK, "", donationListResponse{Donations: items, Pagination: page.Paginate(total)})
}

func (a *App) DonationsAll(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := domain.NewPage(q.Get("page"), q.Get("limit"), domain.DefaultAdminPageSize)
	items, total, err := a.Donations.ListAll(r.Context(), page)
	if err != nil {
		a.fail(w, r, "donations.list_all", err, msgAllDonationsFailed)
		return
	}
	a.ok(w, http.StatusOK, "", donationListResponse{Donations: items, Pagination: page.Paginate(total)})
}
