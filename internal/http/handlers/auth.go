package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"donationtracker/internal/domain"
)

const (
	minPasswordLength = 6
	// bcrypt rejects longer inputs.
	maxPasswordBytes = 72
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userProfileDTO struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      domain.UserRole `json:"role"`
	CreatedAt time.Time       `json:"createdAt"`
}

type authResponse struct {
	Token string         `json:"token"`
	User  userProfileDTO `json:"user"`
}

func profileOf(u *domain.User) userProfileDTO {
	return userProfileDTO{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

func (a *App) AuthSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "Invalid request payload")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = domain.NormalizeEmail(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		a.error(w, http.StatusBadRequest, "validation", msgMissingFields)
		return
	}
	if !domain.ValidEmail(req.Email) {
		a.error(w, http.StatusBadRequest, "validation", "Please provide a valid email")
		return
	}
	if len(req.Password) < minPasswordLength {
		a.error(w, http.StatusBadRequest, "validation", "Password must be at least 6 characters")
		return
	}
	if len(req.Password) > maxPasswordBytes {
		a.error(w, http.StatusBadRequest, "validation", "Password must be at most 72 bytes")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), a.bcryptCost())
	if err != nil {
		a.fail(w, r, "auth.signup", err, "Error creating user")
		return
	}
	user, err := a.Users.Create(r.Context(), &domain.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         domain.UserRoleUser,
	})
	if err != nil {
		a.fail(w, r, "auth.signup", err, "User already exists")
		return
	}
	a.issue(w, r, http.StatusCreated, "User registered successfully", user)
}

func (a *App) AuthLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "Invalid request payload")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		a.error(w, http.StatusBadRequest, "validation", "Please provide email and password")
		return
	}
	user, err := a.Users.GetByEmail(r.Context(), req.Email)
	if errors.Is(err, domain.ErrNotFound) {
		err = domain.ErrInvalidCredentials
	}
	if err == nil && bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		err = domain.ErrInvalidCredentials
	}
	if err != nil {
		a.fail(w, r, "auth.login", err, "Error logging in")
		return
	}
	a.issue(w, r, http.StatusOK, "Login successful", user)
}

func (a *App) AuthProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := a.currentPrincipal(r)
	if !ok {
		a.Deny(w, r, domain.ErrUnauthorized)
		return
	}
	user, err := a.Users.GetByID(r.Context(), p.UserID)
	if err != nil {
		a.fail(w, r, "auth.profile", err, "Error fetching profile")
		return
	}
	a.ok(w, http.StatusOK, "", profileOf(user))
}

func (a *App) issue(w http.ResponseWriter, r *http.Request, status int, message string, user *domain.User) {
	token, err := a.Tokens.Sign(user)
	if err != nil {
		a.fail(w, r, "auth.sign", err, "Error issuing token")
		return
	}
	a.ok(w, status, message, authResponse{Token: token, User: profileOf(user)})
}
