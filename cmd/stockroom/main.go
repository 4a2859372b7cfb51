package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockroom/infrastructure/audit"
	"stockroom/infrastructure/cache"
	"stockroom/infrastructure/config"
	httpserver "stockroom/infrastructure/http"
	"stockroom/infrastructure/logging"
	"stockroom/infrastructure/rbac"
	"stockroom/infrastructure/sqlite"
)

const sessionSweepInterval = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("stockroom stopped", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	db, err := sqlite.OpenDB(cfg.SQLitePath)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.MigrationsDir != "" {
		err = sqlite.ApplyMigrations(ctx, db, cfg.MigrationsDir)
	} else {
		err = sqlite.ApplyEmbeddedMigrations(ctx, db)
	}
	if err != nil {
		return err
	}

	sessionCache := cache.NewUserSessionCache()
	userCache := cache.NewUserCache()
	rbacCache := cache.NewRbacRolesCache()
	rbacSvc := rbac.New(rbacCache)
	auditSvc := audit.NewService()

	httpserver.ShutdownTimeout = cfg.ShutdownTimeout
	server := httpserver.NewServer(cfg.Addr, db, sessionCache, userCache, rbacSvc, rbacCache, auditSvc, cfg.SessionTTL)
	if err := server.Start(ctx); err != nil {
		return err
	}
	slog.Info("stockroom listening", slog.String("addr", cfg.Addr), slog.String("db", db.Path()))

	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("shutting down")
			if err := server.Stop(); err != nil {
				slog.Error("graceful shutdown error", slog.Any("err", err))
			}
			return nil
		case now := <-ticker.C:
			server.SweepSessions(ctx, now)
		}
	}
}
