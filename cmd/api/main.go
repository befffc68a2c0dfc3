package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"donationtracker/internal/adapter/memstore"
	"donationtracker/internal/adapter/repo"
	"donationtracker/internal/http/handlers"
	httpapi "donationtracker/internal/http/httpapi"
	"donationtracker/internal/infra"
	"donationtracker/internal/infra/geoip"
	"donationtracker/internal/middleware"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		bootLogger := infra.NewLogger("production")
		bootLogger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := infra.NewLogger(cfg.AppEnv)

	app := &handlers.App{
		Tokens:  middleware.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL),
		Logger:  logger,
		Metrics: infra.NewMetrics(),
		AppEnv:  cfg.AppEnv,
		Now:     time.Now,
	}

	switch cfg.DataBackend {
	case infra.BackendMemory:
		store := memstore.New()
		donations := store.Donations()
		app.Users, app.Donations, app.Stats = store, donations, donations
		logger.Warn().Msg("using in-memory store; data is lost on restart")
	default:
		if cfg.MigrateOnStart {
			if err := infra.RunMigrations(cfg.DatabaseURL, logger); err != nil {
				logger.Fatal().Err(err).Msg("failed to run migrations")
			}
		}
		dbpool, err := infra.NewDBPool(context.Background(), cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()

		runner := infra.NewSQLRunner(dbpool, logger)
		app.Users = repo.NewUserRepository(runner)
		app.Donations = repo.NewDonationRepository(runner)
		app.Stats = repo.NewStatsRepository(runner)
	}

	opts := httpapi.Options{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		DefaultLocale:      cfg.DefaultLocale,
		AuthRateLimit:      cfg.RateLimitPerMin,
		TrustProxy:         cfg.TrustProxy,
	}
	geo, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	if geo != nil {
		defer geo.Close()
		opts.CountryLookup = geo.CountryCode
	}

	router := httpapi.NewRouter(app, opts)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().
			Str("addr", server.Addr()).
			Str("backend", cfg.DataBackend).
			Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
