package masters

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"stockroom/frontend/shared/context"
	"stockroom/frontend/shared/respond"
	"stockroom/infrastructure/audit"
	"stockroom/infrastructure/sqlite"
)

func ListHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := ParseKind(chi.URLParam(r, "kind"))
		if err != nil {
			respond.Error(w, http.StatusNotFound, err.Error())
			return
		}
		rows, err := List(r.Context(), db, kind)
		if err != nil {
			slog.Error("masters: list failed", slog.String("kind", kind.Name), slog.Any("err", err))
			respond.Error(w, http.StatusInternalServerError, "failed to load "+kind.Name)
			return
		}
		respond.JSON(w, http.StatusOK, rows)
	}
}

func CreateHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := ParseKind(chi.URLParam(r, "kind"))
		if err != nil {
			respond.Error(w, http.StatusNotFound, err.Error())
			return
		}
		var in Input
		if err := respond.DecodeValid(r, &in); err != nil {
			respond.BadRequest(w, err)
			return
		}
		row, err := Create(r.Context(), db, auditSvc, context.UserID(r.Context()), kind, in)
		if err != nil {
			writeError(w, kind, err)
			return
		}
		respond.JSON(w, http.StatusCreated, row)
	}
}

func UpdateHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := ParseKind(chi.URLParam(r, "kind"))
		if err != nil {
			respond.Error(w, http.StatusNotFound, err.Error())
			return
		}
		id, err := respond.IDParam(r, "id")
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		var in Input
		if err := respond.DecodeValid(r, &in); err != nil {
			respond.BadRequest(w, err)
			return
		}
		row, err := Update(r.Context(), db, auditSvc, context.UserID(r.Context()), kind, id, in)
		if err != nil {
			writeError(w, kind, err)
			return
		}
		respond.JSON(w, http.StatusOK, row)
	}
}

func DeleteHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := ParseKind(chi.URLParam(r, "kind"))
		if err != nil {
			respond.Error(w, http.StatusNotFound, err.Error())
			return
		}
		id, err := respond.IDParam(r, "id")
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := Delete(r.Context(), db, auditSvc, context.UserID(r.Context()), kind, id); err != nil {
			writeError(w, kind, err)
			return
		}
		respond.NoContent(w)
	}
}

func writeError(w http.ResponseWriter, kind Kind, err error) {
	switch {
	case errors.Is(err, ErrNameRequired),
		errors.Is(err, ErrFinancialYearRequired),
		errors.Is(err, ErrNegativeAmount):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		respond.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNameExists), errors.Is(err, ErrInUse):
		respond.Error(w, http.StatusConflict, err.Error())
	default:
		slog.Error("masters: write failed", slog.String("kind", kind.Name), slog.Any("err", err))
		respond.Error(w, http.StatusInternalServerError, "failed to save "+kind.Name)
	}
}
