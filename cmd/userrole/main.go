package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"donationtracker/internal/adapter/repo"
	"donationtracker/internal/domain"
	"donationtracker/internal/infra"
)

func main() {
	var (
		emailFlag string
		roleFlag  string
	)

	flag.StringVar(&emailFlag, "email", "", "email of the account to update")
	flag.StringVar(&roleFlag, "role", string(domain.UserRoleAdmin), "role to assign (user, admin)")
	flag.Parse()

	_ = godotenv.Load()

	email := domain.NormalizeEmail(emailFlag)
	role := domain.UserRole(strings.TrimSpace(strings.ToLower(roleFlag)))

	if email == "" {
		exitWithError(errors.New("-email is required"))
	}
	if !role.Valid() {
		exitWithError(fmt.Errorf("unsupported role %q", roleFlag))
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "userrole").Logger()
	users := repo.NewUserRepository(infra.NewSQLRunner(pool, logger))

	user, err := users.UpdateRole(ctx, email, role)
	if errors.Is(err, domain.ErrNotFound) {
		exitWithError(fmt.Errorf("no account registered for %s", email))
	}
	if err != nil {
		exitWithError(fmt.Errorf("failed to update role: %w", err))
	}

	fmt.Printf("User %s (%s) now has role %s\n", user.ID, user.Email, user.Role)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
