package stock

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stockroom/frontend/shared/context"
	"stockroom/frontend/shared/respond"
	"stockroom/infrastructure/audit"
	"stockroom/infrastructure/batchgroup"
	"stockroom/infrastructure/rangespec"
	"stockroom/infrastructure/sqlite"
)

// ValidateRangesHandler runs the strict range check so the form can show
// feedback before a batch is submitted.
func ValidateRangesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req validateRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Quantity < 1 || req.Quantity > rangespec.MaxUnits {
			respond.ErrorDetails(w, http.StatusBadRequest,
				fmt.Sprintf("quantity must be between 1 and %d", rangespec.MaxUnits),
				validationDetails{Kind: validationKind(rangespec.ErrInvalidTotal)})
			return
		}

		skipped := make([]string, 0)
		for _, m := range req.LocationRangeMappings {
			skipped = append(skipped, rangespec.SkippedTokens(m.Range)...)
		}

		if err := rangespec.ValidateMappings(req.LocationRangeMappings, req.Quantity); err != nil {
			details := validationDetails{Kind: "invalid", Skipped: skipped}
			var ve *rangespec.ValidationError
			if errors.As(err, &ve) {
				details.Kind = validationKind(ve.Kind)
				details.Row = ve.Row
				details.Token = ve.Token
				details.Unit = ve.Unit
			}
			respond.ErrorDetails(w, http.StatusUnprocessableEntity, err.Error(), details)
			return
		}
		assigned := make([]int, 0, req.Quantity)
		for _, m := range req.LocationRangeMappings {
			assigned = append(assigned, rangespec.Parse(m.Range)...)
		}
		respond.JSON(w, http.StatusOK, validateResponse{Valid: true, Assigned: rangespec.Compress(assigned), Skipped: skipped})
	}
}

func validationKind(kind error) string {
	switch kind {
	case rangespec.ErrInvalidTotal:
		return "invalid_total"
	case rangespec.ErrBlankRange:
		return "blank_range"
	case rangespec.ErrMalformedToken:
		return "malformed_token"
	case rangespec.ErrOutOfBounds:
		return "out_of_bounds"
	case rangespec.ErrDuplicateUnit:
		return "duplicate_unit"
	case rangespec.ErrIncompleteCoverage:
		return "incomplete_coverage"
	default:
		return "invalid"
	}
}

func RegisterBatchHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in batchgroup.ProductInput
		if err := respond.DecodeJSON(r, &in); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		result, err := RegisterBatch(r.Context(), db, auditSvc, context.UserID(r.Context()), in)
		if err != nil {
			writeError(w, "register batch", err)
			return
		}
		respond.JSON(w, http.StatusCreated, result)
	}
}

func ListUnitsHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := FilterFromQuery(r)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		units, err := ListUnits(r.Context(), db, f)
		if err != nil {
			writeError(w, "list units", err)
			return
		}
		respond.JSON(w, http.StatusOK, units)
	}
}

func ListBatchesHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invoiceID, err := respond.QueryID(r, "invoice_id")
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid invoice_id")
			return
		}
		products, err := Batches(r.Context(), db, invoiceID)
		if err != nil {
			writeError(w, "list batches", err)
			return
		}
		respond.JSON(w, http.StatusOK, products)
	}
}

func MoveUnitHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := respond.IDParam(r, "id")
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		var req moveRequest
		if err := respond.DecodeValid(r, &req); err != nil {
			respond.BadRequest(w, err)
			return
		}
		unit, err := MoveUnit(r.Context(), db, auditSvc, context.UserID(r.Context()), id, req.Location)
		if err != nil {
			writeError(w, "move unit", err)
			return
		}
		respond.JSON(w, http.StatusOK, unit)
	}
}

func SetStatusHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := respond.IDParam(r, "id")
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		var req statusRequest
		if err := respond.DecodeValid(r, &req); err != nil {
			respond.BadRequest(w, err)
			return
		}
		unit, err := SetStatus(r.Context(), db, auditSvc, context.UserID(r.Context()), id, req.StatusID)
		if err != nil {
			writeError(w, "set status", err)
			return
		}
		respond.JSON(w, http.StatusOK, unit)
	}
}

func DeleteUnitHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := respond.IDParam(r, "id")
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := DeleteUnit(r.Context(), db, auditSvc, context.UserID(r.Context()), id); err != nil {
			writeError(w, "delete unit", err)
			return
		}
		respond.NoContent(w)
	}
}

// LabelsPDFHandler prints labels for ?ids=1,2,3 or, without ids, for every
// unit of ?invoice_id=.
func LabelsPDFHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := respond.ParseIDList(r.URL.Query().Get("ids"))
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid ids")
			return
		}
		invoiceID, err := respond.QueryID(r, "invoice_id")
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid invoice_id")
			return
		}
		if len(ids) == 0 && invoiceID == 0 {
			respond.Error(w, http.StatusBadRequest, ErrNoUnits.Error())
			return
		}

		units, err := ListUnits(r.Context(), db, Filter{IDs: ids, InvoiceID: invoiceID})
		if err != nil {
			writeError(w, "load label units", err)
			return
		}
		if len(units) == 0 {
			respond.Error(w, http.StatusNotFound, ErrNoUnits.Error())
			return
		}

		pdfBytes, err := renderUnitLabelsPDF(units, time.Now())
		if err != nil {
			slog.Error("stock: render labels failed", slog.Int("units", len(units)), slog.Any("err", err))
			respond.Error(w, http.StatusInternalServerError, "failed to render labels")
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `inline; filename="stock-labels.pdf"`)
		w.Header().Set("Content-Length", strconv.Itoa(len(pdfBytes)))
		_, _ = w.Write(pdfBytes)
	}
}

// FilterFromQuery reads the shared stock filter query parameters.
func FilterFromQuery(r *http.Request) (Filter, error) {
	var f Filter
	for _, p := range []struct {
		name string
		dst  *int64
	}{
		{"invoice_id", &f.InvoiceID},
		{"location_id", &f.LocationID},
		{"status_id", &f.StatusID},
		{"category_id", &f.CategoryID},
		{"budget_id", &f.BudgetID},
	} {
		id, err := respond.QueryID(r, p.name)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: %s", ErrInvalidFilter, p.name)
		}
		*p.dst = id
	}
	f.Search = strings.TrimSpace(r.URL.Query().Get("q"))
	return f, nil
}

func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case isClientError(err), errors.Is(err, ErrInvalidFilter):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		respond.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrStockIDExists):
		respond.Error(w, http.StatusConflict, err.Error())
	default:
		slog.Error("stock: "+op+" failed", slog.Any("err", err))
		respond.Error(w, http.StatusInternalServerError, "failed to "+op)
	}
}
