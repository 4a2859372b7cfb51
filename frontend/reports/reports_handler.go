package reports

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"stockroom/frontend/shared/context"
	"stockroom/frontend/shared/html"
	"stockroom/frontend/shared/nav"
	"stockroom/frontend/shared/respond"
	"stockroom/frontend/stock"
	"stockroom/infrastructure/audit"
	"stockroom/infrastructure/customcolumn"
	"stockroom/infrastructure/sqlite"
)

// exportFilters is what an export run records about its request.
type exportFilters struct {
	stock.Filter
	Mode string `json:"mode"`
}

// buildReport loads the caller's settings and the filtered stock, then lays
// the report out. ?mode=batch collapses units into batches.
func buildReport(r *http.Request, db *sqlite.DB) (Report, exportFilters, error) {
	f, err := stock.FilterFromQuery(r)
	if err != nil {
		return Report{}, exportFilters{}, err
	}
	mode := ModeUnit
	if strings.EqualFold(r.URL.Query().Get("mode"), ModeBatch) {
		mode = ModeBatch
	}

	settings, err := LoadSettings(r.Context(), db, context.UserID(r.Context()))
	if err != nil {
		return Report{}, exportFilters{}, err
	}
	units, err := stock.ListUnits(r.Context(), db, f)
	if err != nil {
		return Report{}, exportFilters{}, err
	}

	rows := FlattenUnits(units)
	if mode == ModeBatch {
		rows = FlattenBatches(units)
	}
	return Build(rows, settings, mode), exportFilters{Filter: f, Mode: mode}, nil
}

func StockReportHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, _, err := buildReport(r, db)
		if err != nil {
			writeBuildError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, report)
	}
}

// ExportHandler streams the report as xlsx, csv or pdf and records the run.
func ExportHandler(db *sqlite.DB, format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, filters, err := buildReport(r, db)
		if err != nil {
			writeBuildError(w, err)
			return
		}

		var buf bytes.Buffer
		var contentType string
		switch format {
		case "xlsx":
			contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
			err = writeXLSX(&buf, report)
		case "csv":
			contentType = "text/csv; charset=utf-8"
			err = writeCSV(&buf, report)
		case "pdf":
			contentType = "application/pdf"
			err = writePDF(&buf, report, "Stock report", time.Now())
		default:
			respond.Error(w, http.StatusNotFound, "unknown export format")
			return
		}
		if err != nil {
			slog.Error("reports: export failed", slog.String("format", format), slog.Any("err", err))
			respond.Error(w, http.StatusInternalServerError, "failed to export report")
			return
		}

		runID, err := recordExportRun(r.Context(), db, context.UserID(r.Context()), format, len(report.Rows), filters)
		if err != nil {
			slog.Error("record export run failed", slog.String("format", format), slog.Any("err", err))
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", `attachment; filename="stock-report.`+format+`"`)
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		if runID != "" {
			w.Header().Set("X-Export-Run", runID)
		}
		_, _ = w.Write(buf.Bytes())
	}
}

func GetSettingsHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := LoadSettings(r.Context(), db, context.UserID(r.Context()))
		if err != nil {
			slog.Error("reports: load settings failed", slog.Any("err", err))
			respond.Error(w, http.StatusInternalServerError, "failed to load report settings")
			return
		}
		respond.JSON(w, http.StatusOK, settingsResponse(settings))
	}
}

func PutSettingsHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in Settings
		if err := respond.DecodeJSON(r, &in); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		saved, err := SaveSettings(r.Context(), db, auditSvc, context.UserID(r.Context()), in)
		if err != nil {
			writeSettingsError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, settingsResponse(saved))
	}
}

func AddColumnHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var def customcolumn.Definition
		if err := respond.DecodeJSON(r, &def); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		saved, added, err := AddCustomColumn(r.Context(), db, auditSvc, context.UserID(r.Context()), def)
		if err != nil {
			writeSettingsError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, struct {
			Column   customcolumn.Definition `json:"column"`
			Settings any                     `json:"settings"`
		}{Column: added, Settings: settingsResponse(saved)})
	}
}

func RemoveColumnHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		saved, err := RemoveCustomColumn(r.Context(), db, auditSvc, context.UserID(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			writeSettingsError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, settingsResponse(saved))
	}
}

// ReportPageHandler renders the caller's report as an HTML table.
func ReportPageHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := context.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		report, _, err := buildReport(r, db)
		if err != nil {
			slog.Error("reports: build page failed", slog.Any("err", err))
			http.Error(w, "failed to load report", http.StatusInternalServerError)
			return
		}

		page := html.Layout("Stock report", nav.BuildTopNavData(session), ReportPage(report, r.URL.RawQuery))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := page.Render(r.Context(), w); err != nil {
			slog.Error("reports: render page failed", slog.Any("err", err))
			http.Error(w, "failed to render report", http.StatusInternalServerError)
		}
	}
}

// settingsResponse adds the available columns so clients can offer them.
func settingsResponse(s Settings) any {
	return struct {
		Settings
		AvailableColumns []Column `json:"availableColumns"`
	}{Settings: s, AvailableColumns: Columns(Settings{CustomColumns: s.CustomColumns})}
}

func writeBuildError(w http.ResponseWriter, err error) {
	if errors.Is(err, stock.ErrInvalidFilter) {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	slog.Error("reports: build failed", slog.Any("err", err))
	respond.Error(w, http.StatusInternalServerError, "failed to build report")
}

func writeSettingsError(w http.ResponseWriter, err error) {
	var cycle *customcolumn.CycleError
	switch {
	case errors.As(err, &cycle):
		respond.ErrorDetails(w, http.StatusBadRequest, err.Error(), map[string]any{"cycle": cycle.Path})
	case errors.Is(err, customcolumn.ErrColumnNotFound):
		respond.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, customcolumn.ErrColumnReferenced):
		respond.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, customcolumn.ErrUnknownKind),
		errors.Is(err, customcolumn.ErrInvalidVariant),
		errors.Is(err, customcolumn.ErrIDRequired),
		errors.Is(err, customcolumn.ErrDuplicateID),
		errors.Is(err, customcolumn.ErrReservedID),
		errors.Is(err, ErrUnknownColumn),
		errors.Is(err, ErrReservedColumn):
		respond.Error(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("reports: save settings failed", slog.Any("err", err))
		respond.Error(w, http.StatusInternalServerError, "failed to save report settings")
	}
}
