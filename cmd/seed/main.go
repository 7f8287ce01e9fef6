// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"dukkan/internal/core/id"
	"dukkan/internal/infrastructure/storage/postgres"
	"dukkan/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := seedAuthzSettings(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed authorization settings", "error", err)
	}
	if err := seedAdminUser(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	log.Info("seeding completed successfully")
}

// seedAuthzSettings installs the default authorization switches: the
// super-admin username and an unlocked platform.
func seedAuthzSettings(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	superAdmin := os.Getenv("SUPER_ADMIN_USERNAME")
	if superAdmin == "" {
		superAdmin = "admin"
	}

	_, err := pool.Pool.Exec(ctx, `
		INSERT INTO authz_settings (id, super_admin, global_lock)
		VALUES (1, $1, false)
		ON CONFLICT (id) DO NOTHING
	`, superAdmin)
	if err != nil {
		return fmt.Errorf("insert authz settings: %w", err)
	}

	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO authz_exempt_roles (role) VALUES ('owner')
		ON CONFLICT (role) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("insert exempt roles: %w", err)
	}

	log.Infow("authorization settings seeded", "super_admin", superAdmin)
	return nil
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "Admin123!"
	}
	branchID := os.Getenv("ADMIN_BRANCH_ID")
	if branchID == "" {
		branchID = "main"
	}

	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM sys_users WHERE username = $1 AND NOT deletion_mark`,
		username,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "username", username, "user_id", existingID)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO sys_users (id, username, password_hash, role, branch_id, is_active, created_at, version)
		VALUES ($1, $2, $3, 'owner', $4, true, $5, 1)
	`, id.New(), username, string(passwordHash), branchID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}

	log.Infow("admin user created", "username", username, "branch", branchID)
	return nil
}
