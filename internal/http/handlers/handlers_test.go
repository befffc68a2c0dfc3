package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"donationtracker/internal/adapter/memstore"
	"donationtracker/internal/domain"
	"donationtracker/internal/infra"
	"donationtracker/internal/middleware"
)

var fixedNow = time.Date(2024, 8, 31, 12, 0, 0, 0, time.UTC)

type testEnvelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T) (*App, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	donations := store.Donations()
	return &App{
		Users:      store,
		Donations:  donations,
		Stats:      donations,
		Tokens:     middleware.NewTokenIssuer("test-secret", "donation-api", time.Hour),
		Logger:     zerolog.Nop(),
		Metrics:    infra.NewMetrics(),
		AppEnv:     "test",
		BcryptCost: bcrypt.MinCost,
		Now:        func() time.Time { return fixedNow },
	}, store
}

func seedUser(t *testing.T, store *memstore.Store, email string, role domain.UserRole) *domain.User {
	t.Helper()
	u, err := store.Create(context.Background(), &domain.User{Name: "Asha", Email: email, Role: role})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func authed(r *http.Request, u *domain.User) *http.Request {
	return r.WithContext(middleware.ContextWithPrincipal(r.Context(), middleware.Principal{UserID: u.ID, Role: u.Role}))
}

func doJSON(t *testing.T, h http.HandlerFunc, r *http.Request) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()
	rr := httptest.NewRecorder()
	h(rr, r)
	var env testEnvelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return rr, env
}

func TestDonationsCreateValidation(t *testing.T) {
	app, store := newTestApp(t)
	owner := seedUser(t, store, "owner@example.com", domain.UserRoleUser)

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing amount", `{"category":"education","name":"Asha","email":"a@example.com"}`, msgMissingFields},
		{"missing category", `{"amount":10,"name":"Asha","email":"a@example.com"}`, msgMissingFields},
		{"blank name", `{"amount":10,"category":"education","name":"  ","email":"a@example.com"}`, msgMissingFields},
		{"missing email", `{"amount":10,"category":"education","name":"Asha"}`, msgMissingFields},
		{"zero amount", `{"amount":0,"category":"education","name":"Asha","email":"a@example.com"}`, msgMinimumAmount},
		{"negative amount", `{"amount":-5,"category":"education","name":"Asha","email":"a@example.com"}`, msgMinimumAmount},
		{"fractional amount", `{"amount":10.5,"category":"education","name":"Asha","email":"a@example.com"}`, "Donation amount must be a whole number"},
		{"unknown category", `{"amount":10,"category":"arts","name":"Asha","email":"a@example.com"}`, "category must be one of education, healthcare, environment, emergency"},
		{"bad email", `{"amount":10,"category":"education","name":"Asha","email":"not-an-email"}`, "donor email is not a valid address"},
		{"malformed json", `{"amount":`, "Invalid request payload"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := authed(httptest.NewRequest(http.MethodPost, "/api/donations", strings.NewReader(tc.body)), owner)
			rr, env := doJSON(t, app.DonationsCreate, req)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (%s)", rr.Code, rr.Body.String())
			}
			if env.Success || env.Message != tc.message {
				t.Fatalf("message = %q, want %q", env.Message, tc.message)
			}
		})
	}

	_, total, _ := store.Donations().ListAll(context.Background(), domain.Page{Number: 1, Size: 10})
	if total != 0 {
		t.Fatalf("rejected requests persisted %d donations", total)
	}
}

func TestDonationsCreateSuccess(t *testing.T) {
	app, store := newTestApp(t)
	owner := seedUser(t, store, "owner@example.com", domain.UserRoleUser)

	body := `{"amount":250,"category":"Healthcare","name":"Asha","email":" Asha@Example.com ","message":"get well"}`
	req := authed(httptest.NewRequest(http.MethodPost, "/api/donations", strings.NewReader(body)), owner)
	rr, env := doJSON(t, app.DonationsCreate, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", rr.Code, rr.Body.String())
	}
	if !env.Success || env.Message != msgDonationCreated {
		t.Fatalf("unexpected envelope %+v", env)
	}
	var got domain.Donation
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode donation: %v", err)
	}
	if got.Amount != 250 || got.Category != domain.CategoryHealthcare || got.DonorEmail != "asha@example.com" {
		t.Fatalf("unexpected donation %+v", got)
	}
	if got.Status != domain.StatusCompleted || !strings.HasPrefix(got.TransactionID, domain.TransactionIDPrefix) {
		t.Fatalf("unexpected status/transaction id %+v", got)
	}
	if got.Owner == nil || got.Owner.Email != "owner@example.com" {
		t.Fatalf("owner not joined: %+v", got.Owner)
	}
}

func TestDonationsCreateIgnoresBodyOwner(t *testing.T) {
	app, store := newTestApp(t)
	owner := seedUser(t, store, "owner@example.com", domain.UserRoleUser)
	other := seedUser(t, store, "other@example.com", domain.UserRoleUser)

	body := fmt.Sprintf(`{"amount":5,"category":"education","name":"Asha","email":"a@example.com","user":%q}`, other.ID)
	req := authed(httptest.NewRequest(http.MethodPost, "/api/donations", strings.NewReader(body)), owner)
	if rr, _ := doJSON(t, app.DonationsCreate, req); rr.Code != http.StatusCreated {
		t.Fatalf("status = %d", rr.Code)
	}
	_, total, _ := store.Donations().ListByOwner(context.Background(), other.ID, domain.Page{Number: 1, Size: 10})
	if total != 0 {
		t.Fatalf("donation attributed to body user")
	}
}

type failingDonations struct{ err error }

func (f failingDonations) Create(context.Context, domain.NewDonation) (*domain.Donation, error) {
	return nil, f.err
}

func (f failingDonations) ListByOwner(context.Context, string, domain.Page) ([]domain.Donation, int, error) {
	return nil, 0, f.err
}

func (f failingDonations) ListAll(context.Context, domain.Page) ([]domain.Donation, int, error) {
	return nil, 0, f.err
}

func (f failingDonations) ComputeStats(context.Context, string, time.Time) (*domain.DonationStats, error) {
	return nil, f.err
}

func TestStoreFailuresAreGeneric(t *testing.T) {
	storeErr := fmt.Errorf("insert donation: %w: dial tcp 10.0.0.5:5432: connection refused", domain.ErrStoreUnavailable)
	body := `{"amount":5,"category":"education","name":"Asha","email":"a@example.com"}`

	for _, env := range []string{"production", "development"} {
		t.Run(env, func(t *testing.T) {
			app, store := newTestApp(t)
			app.AppEnv = env
			app.Donations = failingDonations{err: storeErr}
			app.Stats = failingDonations{err: storeErr}
			owner := seedUser(t, store, "owner@example.com", domain.UserRoleUser)

			req := authed(httptest.NewRequest(http.MethodPost, "/api/donations", strings.NewReader(body)), owner)
			rr, got := doJSON(t, app.DonationsCreate, req)
			if rr.Code != http.StatusInternalServerError || got.Message != msgCreateFailed {
				t.Fatalf("create: status=%d message=%q", rr.Code, got.Message)
			}
			leaked := strings.Contains(rr.Body.String(), "10.0.0.5")
			if env == "production" && leaked {
				t.Fatalf("internal details leaked: %s", rr.Body.String())
			}
			if env == "development" && got.Error == "" {
				t.Fatalf("development mode should include error detail")
			}

			req = authed(httptest.NewRequest(http.MethodGet, "/api/donations/stats", nil), owner)
			rr, got = doJSON(t, app.DonationsStats, req)
			if rr.Code != http.StatusInternalServerError || got.Message != msgStatsFailed {
				t.Fatalf("stats: status=%d message=%q", rr.Code, got.Message)
			}
		})
	}
}

func TestDonationsCreateConflict(t *testing.T) {
	app, store := newTestApp(t)
	app.Donations = failingDonations{err: fmt.Errorf("%w: transaction id TXN1 already exists", domain.ErrConflict)}
	owner := seedUser(t, store, "owner@example.com", domain.UserRoleUser)

	body := `{"amount":5,"category":"education","name":"Asha","email":"a@example.com"}`
	req := authed(httptest.NewRequest(http.MethodPost, "/api/donations", strings.NewReader(body)), owner)
	if rr, _ := doJSON(t, app.DonationsCreate, req); rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rr.Code)
	}
}

func TestDonationsMinePaginates(t *testing.T) {
	app, store := newTestApp(t)
	owner := seedUser(t, store, "owner@example.com", domain.UserRoleUser)
	for i := 0; i < 23; i++ {
		in := domain.NewDonation{OwnerID: owner.ID, Amount: 10, Category: domain.CategoryEducation, DonorName: "Asha", DonorEmail: "a@example.com"}
		if _, err := store.Donations().Create(context.Background(), in); err != nil {
			t.Fatalf("seed donation: %v", err)
		}
	}

	req := authed(httptest.NewRequest(http.MethodGet, "/api/donations/my-donations?page=3&limit=abc", nil), owner)
	rr, env := doJSON(t, app.DonationsMine, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var page donationListResponse
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	want := domain.Pagination{Page: 3, Limit: 10, Total: 23, Pages: 3}
	if page.Pagination != want || len(page.Donations) != 3 {
		t.Fatalf("pagination = %+v, items = %d", page.Pagination, len(page.Donations))
	}
}

func TestDonationsMineEmptyListIsArray(t *testing.T) {
	app, store := newTestApp(t)
	owner := seedUser(t, store, "owner@example.com", domain.UserRoleUser)

	req := authed(httptest.NewRequest(http.MethodGet, "/api/donations/my-donations", nil), owner)
	rr := httptest.NewRecorder()
	app.DonationsMine(rr, req)
	if !bytes.Contains(rr.Body.Bytes(), []byte(`"donations":[]`)) {
		t.Fatalf("expected empty array, got %s", rr.Body.String())
	}
}

func TestDonationsMineHugePageIsEmpty(t *testing.T) {
	app, store := newTestApp(t)
	owner := seedUser(t, store, "owner@example.com", domain.UserRoleUser)
	in := domain.NewDonation{OwnerID: owner.ID, Amount: 10, Category: domain.CategoryEducation, DonorName: "Asha", DonorEmail: "a@example.com"}
	if _, err := store.Donations().Create(context.Background(), in); err != nil {
		t.Fatalf("seed donation: %v", err)
	}

	for _, path := range []string{
		"/api/donations/my-donations?page=9223372036854775807",
		"/api/donations/my-donations?page=300000000&limit=100",
	} {
		req := authed(httptest.NewRequest(http.MethodGet, path, nil), owner)
		rr, env := doJSON(t, app.DonationsMine, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: status = %d (%s)", path, rr.Code, rr.Body.String())
		}
		var page donationListResponse
		if err := json.Unmarshal(env.Data, &page); err != nil {
			t.Fatalf("decode page: %v", err)
		}
		if len(page.Donations) != 0 || page.Pagination.Total != 1 || page.Pagination.Pages != 1 || page.Pagination.Page < 2 {
			t.Fatalf("%s: pagination = %+v, items = %d", path, page.Pagination, len(page.Donations))
		}
	}
}

func TestDonationsStats(t *testing.T) {
	app, store := newTestApp(t)
	owner := seedUser(t, store, "owner@example.com", domain.UserRoleUser)
	for _, d := range []struct {
		amount   int64
		category domain.Category
	}{{100, domain.CategoryEducation}, {200, domain.CategoryEducation}, {300, domain.CategoryHealthcare}} {
		in := domain.NewDonation{OwnerID: owner.ID, Amount: d.amount, Category: d.category, DonorName: "Asha", DonorEmail: "a@example.com"}
		if _, err := store.Donations().Create(context.Background(), in); err != nil {
			t.Fatalf("seed donation: %v", err)
		}
	}
	// stored now is wall clock; keep the window anchored near it
	app.Now = time.Now

	req := authed(httptest.NewRequest(http.MethodGet, "/api/donations/stats", nil), owner)
	rr, env := doJSON(t, app.DonationsStats, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var stats domain.DonationStats
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Total.TotalAmount != 600 || stats.Total.TotalDonations != 3 {
		t.Fatalf("totals = %+v", stats.Total)
	}
	if !strings.Contains(stats.Total.Formatted, "600") {
		t.Fatalf("formatted total = %q", stats.Total.Formatted)
	}
	if len(stats.Categories) != 2 || stats.Categories[0].Amount != 300 || stats.Categories[1].Amount != 300 {
		t.Fatalf("categories = %+v", stats.Categories)
	}
	// equal amounts fall back to category name order
	if stats.Categories[0].Category != domain.CategoryEducation || stats.FavoriteCause != domain.CategoryEducation {
		t.Fatalf("tie-break = %+v, favorite %q", stats.Categories, stats.FavoriteCause)
	}
}

func TestDonationsStatsEmpty(t *testing.T) {
	app, store := newTestApp(t)
	owner := seedUser(t, store, "owner@example.com", domain.UserRoleUser)

	req := authed(httptest.NewRequest(http.MethodGet, "/api/donations/stats", nil), owner)
	rr := httptest.NewRecorder()
	app.DonationsStats(rr, req)
	body := rr.Body.String()
	for _, want := range []string{`"totalAmount":0`, `"totalDonations":0`, `"categories":[]`, `"monthly":[]`, `"favoriteCause":"education"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %s in %s", want, body)
		}
	}
}

func TestDonationHandlersRequirePrincipal(t *testing.T) {
	app, _ := newTestApp(t)
	for name, h := range map[string]http.HandlerFunc{
		"create": app.DonationsCreate,
		"mine":   app.DonationsMine,
		"stats":  app.DonationsStats,
	} {
		req := httptest.NewRequest(http.MethodGet, "/", strings.NewReader(`{}`))
		if rr, _ := doJSON(t, h, req); rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d, want 401", name, rr.Code)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	got := formatAmount(middleware.DefaultLocale, "INR", 1500)
	if !strings.Contains(got, "1500") && !strings.Contains(got, "1,500") {
		t.Fatalf("formatAmount() = %q", got)
	}
	if !strings.Contains(got, "₹") && !strings.Contains(got, "INR") {
		t.Fatalf("formatAmount() = %q, want rupee symbol", got)
	}
}
