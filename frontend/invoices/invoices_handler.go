package invoices

import (
	"errors"
	"log/slog"
	"net/http"

	"stockroom/frontend/shared/context"
	"stockroom/frontend/shared/respond"
	"stockroom/infrastructure/audit"
	"stockroom/infrastructure/sqlite"
)

func ListHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		budgetID, err := respond.QueryID(r, "budget_id")
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid budget_id")
			return
		}
		rows, err := List(r.Context(), db, Filter{BudgetID: budgetID, Vendor: r.URL.Query().Get("vendor")})
		if err != nil {
			slog.Error("invoices: list failed", slog.Any("err", err))
			respond.Error(w, http.StatusInternalServerError, "failed to load invoices")
			return
		}
		respond.JSON(w, http.StatusOK, rows)
	}
}

func GetHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := respond.IDParam(r, "id")
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		view, err := Get(r.Context(), db, id)
		if err != nil {
			writeError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, view)
	}
}

func CreateHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in Input
		if err := respond.DecodeValid(r, &in); err != nil {
			respond.BadRequest(w, err)
			return
		}
		view, err := Create(r.Context(), db, auditSvc, context.UserID(r.Context()), in)
		if err != nil {
			writeError(w, err)
			return
		}
		respond.JSON(w, http.StatusCreated, view)
	}
}

func DeleteHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := respond.IDParam(r, "id")
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := Delete(r.Context(), db, auditSvc, context.UserID(r.Context()), id); err != nil {
			writeError(w, err)
			return
		}
		respond.NoContent(w)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvoiceNoRequired),
		errors.Is(err, ErrVendorRequired),
		errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrNegativeTotal),
		errors.Is(err, ErrUnknownBudget):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		respond.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvoiceExists), errors.Is(err, ErrInUse):
		respond.Error(w, http.StatusConflict, err.Error())
	default:
		slog.Error("invoices: write failed", slog.Any("err", err))
		respond.Error(w, http.StatusInternalServerError, "failed to save invoice")
	}
}
