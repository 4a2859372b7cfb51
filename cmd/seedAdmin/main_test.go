package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/uptrace/bun"

	"stockroom/frontend/login"
	"stockroom/infrastructure/config"
	"stockroom/infrastructure/rbac"
	"stockroom/infrastructure/sqlite"
)

func TestResolveMigrationsDir(t *testing.T) {
	cmdDir, repoRoot := testPaths(t)
	for _, dir := range []string{repoRoot, cmdDir} {
		withWorkingDir(t, dir)
		got, err := resolveMigrationsDir()
		if err != nil {
			t.Fatalf("resolve migrations dir from %s: %v", dir, err)
		}
		if !strings.HasSuffix(filepath.ToSlash(got), "infrastructure/sqlite/migrations") {
			t.Fatalf("unexpected migrations path: %s", got)
		}
	}
}

func TestSeedCreatesAndResetsUser(t *testing.T) {
	cfg := &config.Config{
		SQLitePath:    filepath.Join(t.TempDir(), "seed.db"),
		AdminPassword: "Admin123!Stockroom",
	}
	var out bytes.Buffer
	if err := seed(context.Background(), cfg, "admin", rbac.RoleAdmin, &out); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !strings.Contains(out.String(), "username=admin") {
		t.Fatalf("unexpected output %q", out.String())
	}

	cfg.AdminPassword = "Keeper456!Stockroom"
	if err := seed(context.Background(), cfg, "admin", rbac.RoleStorekeeper, &out); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	db, err := sqlite.OpenDB(cfg.SQLitePath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	var users int
	var role string
	err = db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewRaw(`SELECT COUNT(*) FROM users`).Scan(ctx, &users); err != nil {
			return err
		}
		return tx.NewRaw(`SELECT role FROM users WHERE username = ?`, "admin").Scan(ctx, &role)
	})
	if err != nil {
		t.Fatalf("query users: %v", err)
	}
	if users != 1 || role != rbac.RoleStorekeeper {
		t.Fatalf("expected one storekeeper, got users=%d role=%s", users, role)
	}
}

func TestSeedRejectsWeakPassword(t *testing.T) {
	cfg := &config.Config{
		SQLitePath:    filepath.Join(t.TempDir(), "seed.db"),
		AdminPassword: "short",
	}
	err := seed(context.Background(), cfg, "admin", rbac.RoleAdmin, &bytes.Buffer{})
	if !errors.Is(err, login.ErrPasswordPolicy) {
		t.Fatalf("expected password policy error, got %v", err)
	}
}

func testPaths(t *testing.T) (cmdDir string, repoRoot string) {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	cmdDir = filepath.Dir(file)
	repoRoot = filepath.Clean(filepath.Join(cmdDir, "..", ".."))
	return cmdDir, repoRoot
}

func withWorkingDir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir to %s: %v", dir, err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(wd)
	})
}
