package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"donationtracker/internal/domain"
	"donationtracker/internal/infra"
	"donationtracker/internal/middleware"
)

type App struct {
	Users     domain.UserRepository
	Donations domain.DonationRepository
	Stats     domain.StatsRepository

	Tokens  *middleware.TokenIssuer
	Logger  infra.Logger
	Metrics *infra.Metrics

	AppEnv     string
	BcryptCost int
	Now        func() time.Time
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) bcryptCost() int {
	if a.BcryptCost >= bcrypt.MinCost {
		return a.BcryptCost
	}
	return bcrypt.DefaultCost
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) ok(w http.ResponseWriter, code int, message string, data any) {
	a.json(w, code, envelope{Success: true, Message: message, Data: data})
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, errorEnvelope{Code: code, Message: message})
}

// fail maps err onto a status code. fallback is the client message for
// server-side failures; the underlying error is only echoed in development.
func (a *App) fail(w http.ResponseWriter, r *http.Request, op string, err error, fallback string) {
	var verr *domain.ValidationError
	status, code, message := http.StatusInternalServerError, "internal", fallback
	switch {
	case errors.As(err, &verr):
		status, code, message = http.StatusBadRequest, "validation", verr.Message
	case errors.Is(err, domain.ErrValidation):
		status, code, message = http.StatusBadRequest, "validation", err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		status, code, message = http.StatusUnauthorized, "invalid_credentials", "Invalid email or password"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code, message = http.StatusUnauthorized, "unauthorized", "Not authorized, token failed"
	case errors.Is(err, domain.ErrForbidden):
		status, code, message = http.StatusForbidden, "forbidden", "Not authorized as an admin"
	case errors.Is(err, domain.ErrNotFound):
		status, code, message = http.StatusNotFound, "not_found", "Resource not found"
	case errors.Is(err, domain.ErrConflict):
		status, code, message = http.StatusConflict, "conflict", fallback
	}

	if status >= http.StatusInternalServerError || status == http.StatusConflict {
		a.Logger.Error().Err(err).
			Str("op", op).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Str("user_id", middleware.UserIDFromContext(r.Context())).
			Int("status", status).
			Msg("request failed")
	}

	body := errorEnvelope{Code: code, Message: message}
	if a.AppEnv == "development" && status >= http.StatusInternalServerError {
		body.Error = err.Error()
	}
	a.json(w, status, body)
}

// Deny is the rejection hook handed to the auth middleware.
func (a *App) Deny(w http.ResponseWriter, r *http.Request, err error) {
	a.fail(w, r, "auth", err, "Not authorized")
}

func (a *App) TooManyRequests(w http.ResponseWriter, _ *http.Request) {
	a.error(w, http.StatusTooManyRequests, "rate_limited", "Too many requests, please try again later")
}

// InternalError answers requests whose handler panicked.
func (a *App) InternalError(w http.ResponseWriter, _ *http.Request) {
	a.error(w, http.StatusInternalServerError, "internal", "Internal server error")
}

func (a *App) NotFound(w http.ResponseWriter, _ *http.Request) {
	a.json(w, http.StatusNotFound, errorEnvelope{Message: "Route not found"})
}

func (a *App) MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	a.error(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
}

func (a *App) currentPrincipal(r *http.Request) (middleware.Principal, bool) {
	return middleware.PrincipalFromContext(r.Context())
}
