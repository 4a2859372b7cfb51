package adminusers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"stockroom/frontend/login"
	"stockroom/infrastructure/argon"
	"stockroom/infrastructure/audit"
	"stockroom/infrastructure/rbac"
	"stockroom/infrastructure/sqlite"
	"stockroom/models"
)

var (
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrInvalidRole      = errors.New("role must be admin, storekeeper or viewer")
	ErrUsernameExists   = errors.New("username already exists")
	ErrUserNotFound     = errors.New("user not found")
)

func ListUsers(ctx context.Context, db *sqlite.DB) ([]UserView, error) {
	users := make([]UserView, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw("SELECT id, username, role, created_at FROM users ORDER BY id ASC").Scan(ctx, &users)
	})
	return users, err
}

// CreateUser validates and stores a new user with a hashed password.
func CreateUser(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actorID int64, username, password, role string) (UserView, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	role = strings.TrimSpace(role)
	if username == "" {
		return UserView{}, ErrUsernameRequired
	}
	if password == "" {
		return UserView{}, ErrPasswordRequired
	}
	if !rbac.ValidRole(role) {
		return UserView{}, ErrInvalidRole
	}
	if err := login.ValidatePasswordPolicy(password); err != nil {
		return UserView{}, err
	}
	hash, err := argon.CreateHash(password, argon.DefaultParams)
	if err != nil {
		return UserView{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{Username: username, PasswordHash: hash, Role: role}
	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&user).Returning("id, created_at").Exec(ctx); err != nil {
			if sqlite.IsUniqueViolation(err) {
				return ErrUsernameExists
			}
			return err
		}
		return auditSvc.WriteID(ctx, tx, actorID, "user.create", audit.EntityUser, user.ID, nil, toView(user))
	})
	if err != nil {
		return UserView{}, err
	}
	return toView(user), nil
}

// UpdateUserRole changes a user's role and deletes their sessions so the new
// role applies on next sign-in.
func UpdateUserRole(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actorID, userID int64, role string) (UserView, error) {
	role = strings.TrimSpace(role)
	if !rbac.ValidRole(role) {
		return UserView{}, ErrInvalidRole
	}

	var updated models.User
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var before models.User
		err := tx.NewSelect().Model(&before).Where("id = ?", userID).Limit(1).Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}

		updated = before
		updated.Role = role
		updated.UpdatedAt = time.Now()
		if _, err := tx.NewUpdate().Model(&updated).Column("role", "updated_at").WherePK().Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*models.Session)(nil)).Where("user_id = ?", userID).Exec(ctx); err != nil {
			return err
		}
		return auditSvc.WriteID(ctx, tx, actorID, "user.role", audit.EntityUser, userID, toView(before), toView(updated))
	})
	if err != nil {
		return UserView{}, err
	}
	return toView(updated), nil
}

func toView(u models.User) UserView {
	return UserView{ID: u.ID, Username: u.Username, Role: u.Role, CreatedAt: u.CreatedAt}
}
