package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"donationtracker/internal/domain"
)

// TokenClaims is the bearer token payload. Subject carries the owner id.
type TokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller attached to the request context.
// It is the only source of owner identity for handlers.
type Principal struct {
	UserID string
	Role   domain.UserRole
}

// IsAdmin reports whether the principal may use administrative endpoints.
func (p Principal) IsAdmin() bool { return p.Role == domain.UserRoleAdmin }

type principalKey struct{}

type principalHolderKey struct{}

type principalHolder struct {
	userID string
}

func withPrincipalHolder(ctx context.Context, h *principalHolder) context.Context {
	return context.WithValue(ctx, principalHolderKey{}, h)
}

// TokenIssuer signs and verifies HS256 bearer tokens.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret, issuer string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// Sign issues a token for user.
func (t *TokenIssuer) Sign(user *domain.User) (string, error) {
	now := t.now()
	claims := TokenClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify parses token and returns its principal.
func (t *TokenIssuer) Verify(token string) (*Principal, error) {
	var claims TokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if !parsed.Valid || strings.TrimSpace(claims.Subject) == "" {
		return nil, fmt.Errorf("%w: token has no subject", domain.ErrUnauthorized)
	}
	role := domain.UserRole(claims.Role)
	if !role.Valid() {
		role = domain.UserRoleUser
	}
	return &Principal{UserID: claims.Subject, Role: role}, nil
}

// UnauthorizedFunc writes the response for rejected credentials.
type UnauthorizedFunc func(w http.ResponseWriter, r *http.Request, err error)

// UserLookup loads the account a token was issued for.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// AuthJWT rejects requests without a valid bearer token and attaches the Principal otherwise.
// The token subject must still exist in users; the role is taken from the stored account.
func AuthJWT(issuer *TokenIssuer, users UserLookup, deny UnauthorizedFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r.Header.Get("Authorization"))
			if err != nil {
				deny(w, r, err)
				return
			}
			principal, err := issuer.Verify(token)
			if err != nil {
				deny(w, r, err)
				return
			}
			user, err := users.GetByID(r.Context(), principal.UserID)
			if errors.Is(err, domain.ErrNotFound) {
				err = fmt.Errorf("%w: user no longer exists", domain.ErrUnauthorized)
			}
			if err != nil {
				deny(w, r, err)
				return
			}
			principal.Role = user.Role
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), *principal)))
		})
	}
}

// RequireRole rejects authenticated principals lacking role.
func RequireRole(role domain.UserRole, deny UnauthorizedFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				deny(w, r, domain.ErrUnauthorized)
				return
			}
			if p.Role != role {
				deny(w, r, domain.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", fmt.Errorf("%w: missing authorization", domain.ErrUnauthorized)
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", fmt.Errorf("%w: invalid authorization", domain.ErrUnauthorized)
	}
	return strings.TrimSpace(parts[1]), nil
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// UserIDFromContext returns the authenticated owner id or "".
func UserIDFromContext(ctx context.Context) string {
	p, _ := PrincipalFromContext(ctx)
	return p.UserID
}

func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	if strings.TrimSpace(p.UserID) == "" {
		return ctx
	}
	if h, ok := ctx.Value(principalHolderKey{}).(*principalHolder); ok {
		h.userID = p.UserID
	}
	return context.WithValue(ctx, principalKey{}, p)
}
