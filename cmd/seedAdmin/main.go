package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"stockroom/frontend/login"
	"stockroom/infrastructure/config"
	"stockroom/infrastructure/logging"
	"stockroom/infrastructure/rbac"
	"stockroom/infrastructure/sqlite"
)

func main() {
	username := flag.String("username", "admin", "user to create or reset")
	role := flag.String("role", rbac.RoleAdmin, "role to assign: "+strings.Join(rbac.Roles, ", "))
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := seed(context.Background(), cfg, *username, *role, os.Stdout); err != nil {
		slog.Error("seed user", slog.Any("err", err))
		os.Exit(1)
	}
}

// seed migrates the database and upserts one user with ADMIN_PASSWORD.
func seed(ctx context.Context, cfg *config.Config, username, role string, out io.Writer) error {
	db, err := sqlite.OpenDB(cfg.SQLitePath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	migrationsDir := cfg.MigrationsDir
	if migrationsDir == "" {
		if dir, err := resolveMigrationsDir(); err == nil {
			migrationsDir = dir
		}
	}
	if migrationsDir != "" {
		err = sqlite.ApplyMigrations(ctx, db, migrationsDir)
	} else {
		err = sqlite.ApplyEmbeddedMigrations(ctx, db)
	}
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	if err := login.UpsertUserPasswordHash(ctx, db, username, role, cfg.AdminPassword); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "seeded %s user (username=%s)\n", role, username)
	return err
}

// resolveMigrationsDir finds the SQL migrations from the repo root, from
// cmd/seedAdmin or next to this source file.
func resolveMigrationsDir() (string, error) {
	candidates := []string{
		filepath.Join("infrastructure", "sqlite", "migrations"),
		filepath.Join("..", "..", "infrastructure", "sqlite", "migrations"),
	}
	if _, file, _, ok := runtime.Caller(0); ok {
		candidates = append(candidates, filepath.Join(filepath.Dir(file), "..", "..", "infrastructure", "sqlite", "migrations"))
	}

	tried := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		absPath, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		tried = append(tried, absPath)
		if info, err := os.Stat(absPath); err == nil && info.IsDir() {
			return absPath, nil
		}
	}
	return "", fmt.Errorf("migrations dir not found; tried: %s", strings.Join(tried, ", "))
}
