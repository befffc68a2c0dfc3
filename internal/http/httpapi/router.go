package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"donationtracker/internal/domain"
	"donationtracker/internal/http/handlers"
	"donationtracker/internal/middleware"
)

type Options struct {
	CORSAllowedOrigins []string
	DefaultLocale      string
	// CountryLookup is optional; it feeds locale negotiation when requests carry no language headers.
	CountryLookup      middleware.CountryLookup
	// AuthRateLimit is the number of signup/login attempts allowed per client IP per minute.
	AuthRateLimit      int
	// TrustProxy lets forwarded headers replace RemoteAddr. Enable only behind a proxy that overwrites them.
	TrustProxy         bool
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if opts.TrustProxy {
		r.Use(chimw.RealIP)
	}
	if app.Metrics != nil {
		r.Use(middleware.Metrics(app.Metrics))
	}
	r.Use(
		middleware.Logger(app.Logger),
		middleware.Recover(app.Logger, app.InternalError),
		middleware.CORS(opts.CORSAllowedOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	r.NotFound(app.NotFound)
	r.MethodNotAllowed(app.MethodNotAllowed)

	r.Method(http.MethodGet, "/metrics", app.MetricsHandler())

	authn := middleware.AuthJWT(app.Tokens, app.Users, app.Deny)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", app.Health)

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(opts.AuthRateLimit, time.Minute, app.TooManyRequests))
				r.Post("/signup", app.AuthSignup)
				r.Post("/login", app.AuthLogin)
			})
			r.With(authn).Get("/profile", app.AuthProfile)
		})

		r.Route("/donations", func(r chi.Router) {
			r.Use(authn)
			r.Post("/", app.DonationsCreate)
			r.Get("/my-donations", app.DonationsMine)
			r.Get("/stats", app.DonationsStats)
			r.With(middleware.RequireRole(domain.UserRoleAdmin, app.Deny)).Get("/all", app.DonationsAll)
		})
	})

	return r
}
