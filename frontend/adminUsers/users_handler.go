package adminusers

import (
	"errors"
	"log/slog"
	"net/http"

	"stockroom/frontend/login"
	"stockroom/frontend/shared/context"
	"stockroom/frontend/shared/respond"
	"stockroom/infrastructure/audit"
	"stockroom/infrastructure/cache"
	"stockroom/infrastructure/sqlite"
)

func ListUsersHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := ListUsers(r.Context(), db)
		if err != nil {
			slog.Error("admin users: list failed", slog.Any("err", err))
			respond.Error(w, http.StatusInternalServerError, "failed to load users")
			return
		}
		respond.JSON(w, http.StatusOK, users)
	}
}

func CreateUserHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createUserRequest
		if err := respond.DecodeValid(r, &req); err != nil {
			respond.BadRequest(w, err)
			return
		}

		user, err := CreateUser(r.Context(), db, auditSvc, context.UserID(r.Context()), req.Username, req.Password, req.Role)
		switch {
		case err == nil:
			respond.JSON(w, http.StatusCreated, user)
		case errors.Is(err, ErrUsernameExists):
			respond.Error(w, http.StatusConflict, err.Error())
		case errors.Is(err, ErrUsernameRequired),
			errors.Is(err, ErrPasswordRequired),
			errors.Is(err, ErrInvalidRole),
			errors.Is(err, login.ErrPasswordPolicy):
			respond.Error(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("admin users: create failed", slog.Any("err", err))
			respond.Error(w, http.StatusInternalServerError, "failed to create user")
		}
	}
}

// UpdateUserRoleHandler changes the role and drops the user's cached sessions.
func UpdateUserRoleHandler(db *sqlite.DB, auditSvc *audit.Service, sessionCache *cache.UserSessionCache, userCache *cache.UserCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := respond.IDParam(r, "id")
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		var req updateRoleRequest
		if err := respond.DecodeValid(r, &req); err != nil {
			respond.BadRequest(w, err)
			return
		}

		user, err := UpdateUserRole(r.Context(), db, auditSvc, context.UserID(r.Context()), userID, req.Role)
		switch {
		case err == nil:
			sessionCache.DeleteSessionsByUserID(user.ID)
			userCache.Remove(user.Username)
			respond.JSON(w, http.StatusOK, user)
		case errors.Is(err, ErrInvalidRole):
			respond.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrUserNotFound):
			respond.Error(w, http.StatusNotFound, err.Error())
		default:
			slog.Error("admin users: update role failed", slog.Int64("user_id", userID), slog.Any("err", err))
			respond.Error(w, http.StatusInternalServerError, "failed to update role")
		}
	}
}
