package http

import (
	"net/http"

	adminusers "stockroom/frontend/adminUsers"
	auditlogs "stockroom/frontend/auditLogs"
	"stockroom/frontend/exports"
	"stockroom/frontend/help"
	"stockroom/frontend/invoices"
	"stockroom/frontend/login"
	"stockroom/frontend/masters"
	"stockroom/frontend/me"
	"stockroom/frontend/reports"
	"stockroom/frontend/stock"
	"stockroom/infrastructure/rbac"

	"github.com/go-chi/chi/v5"
)

var (
	allRoles    = []string{rbac.RoleAdmin, rbac.RoleStorekeeper, rbac.RoleViewer}
	editorRoles = []string{rbac.RoleAdmin, rbac.RoleStorekeeper}
	adminOnly   = []string{rbac.RoleAdmin}
)

// RegisterLoginRoutes registers login/logout routes.
func (s *Server) RegisterLoginRoutes() {
	s.router.Get("/login", login.GetLoginScreenHandler)
	s.router.Post("/login", login.CreateLoginHandler(s.DB, s.SessionCache, s.UserCache, s.SessionTTL))
	s.router.Post("/logout", login.LogoutHandler(s.DB, s.SessionCache))
}

// RegisterPageRoutes registers the server-rendered pages.
func (s *Server) RegisterPageRoutes(r chi.Router) {
	s.Rbac.Grant("REPORTS_PAGE_VIEW", http.MethodGet, "/reports", allRoles...)
	r.Get("/reports", reports.ReportPageHandler(s.DB))
	s.Rbac.Grant("HELP_PAGE_VIEW", http.MethodGet, "/help", allRoles...)
	r.Get("/help", help.HelpPageQueryHandler())
}

// RegisterAPIRoutes registers the JSON API under /api.
func (s *Server) RegisterAPIRoutes(r chi.Router) {
	s.Rbac.Grant("ME_PRIVILEGES_VIEW", http.MethodGet, "/api/me/privileges", allRoles...)
	r.Get("/me/privileges", me.PrivilegesHandler(s.Rbac))

	s.RegisterAdminRoutes(r)
	s.RegisterMasterRoutes(r)
	s.RegisterInvoiceRoutes(r)
	s.RegisterStockRoutes(r)
	s.RegisterReportRoutes(r)
}

func (s *Server) RegisterAdminRoutes(r chi.Router) {
	s.Rbac.Grant("ADMIN_USERS_LIST", http.MethodGet, "/api/admin/users", adminOnly...)
	r.Get("/admin/users", adminusers.ListUsersHandler(s.DB))
	s.Rbac.Grant("ADMIN_USERS_CREATE", http.MethodPost, "/api/admin/users", adminOnly...)
	r.Post("/admin/users", adminusers.CreateUserHandler(s.DB, s.Audit))
	s.Rbac.Grant("ADMIN_USERS_ROLE_EDIT", http.MethodPut, "/api/admin/users/*/role", adminOnly...)
	r.Put("/admin/users/{id}/role", adminusers.UpdateUserRoleHandler(s.DB, s.Audit, s.SessionCache, s.UserCache))

	s.Rbac.Grant("AUDIT_LOGS_LIST", http.MethodGet, "/api/audit-logs", adminOnly...)
	r.Get("/audit-logs", auditlogs.ListHandler(s.DB, s.Audit))
}

func (s *Server) RegisterMasterRoutes(r chi.Router) {
	s.Rbac.Grant("MASTERS_LIST", http.MethodGet, "/api/masters/*", allRoles...)
	r.Get("/masters/{kind}", masters.ListHandler(s.DB))
	s.Rbac.Grant("MASTERS_CREATE", http.MethodPost, "/api/masters/*", editorRoles...)
	r.Post("/masters/{kind}", masters.CreateHandler(s.DB, s.Audit))
	s.Rbac.Grant("MASTERS_EDIT", http.MethodPut, "/api/masters/*/*", editorRoles...)
	r.Put("/masters/{kind}/{id}", masters.UpdateHandler(s.DB, s.Audit))
	s.Rbac.Grant("MASTERS_DELETE", http.MethodDelete, "/api/masters/*/*", editorRoles...)
	r.Delete("/masters/{kind}/{id}", masters.DeleteHandler(s.DB, s.Audit))
}

func (s *Server) RegisterInvoiceRoutes(r chi.Router) {
	s.Rbac.Grant("INVOICES_LIST", http.MethodGet, "/api/invoices", allRoles...)
	r.Get("/invoices", invoices.ListHandler(s.DB))
	s.Rbac.Grant("INVOICES_VIEW", http.MethodGet, "/api/invoices/*", allRoles...)
	r.Get("/invoices/{id}", invoices.GetHandler(s.DB))
	s.Rbac.Grant("INVOICES_CREATE", http.MethodPost, "/api/invoices", editorRoles...)
	r.Post("/invoices", invoices.CreateHandler(s.DB, s.Audit))
	s.Rbac.Grant("INVOICES_DELETE", http.MethodDelete, "/api/invoices/*", editorRoles...)
	r.Delete("/invoices/{id}", invoices.DeleteHandler(s.DB, s.Audit))
}

func (s *Server) RegisterStockRoutes(r chi.Router) {
	s.Rbac.Grant("STOCK_LIST", http.MethodGet, "/api/stock", allRoles...)
	r.Get("/stock", stock.ListUnitsHandler(s.DB))
	s.Rbac.Grant("STOCK_BATCHES_LIST", http.MethodGet, "/api/stock/batches", allRoles...)
	r.Get("/stock/batches", stock.ListBatchesHandler(s.DB))
	s.Rbac.Grant("STOCK_LABELS_PRINT", http.MethodGet, "/api/stock/labels.pdf", allRoles...)
	r.Get("/stock/labels.pdf", stock.LabelsPDFHandler(s.DB))

	s.Rbac.Grant("STOCK_RANGES_VALIDATE", http.MethodPost, "/api/stock/range/validate", editorRoles...)
	r.Post("/stock/range/validate", stock.ValidateRangesHandler())
	s.Rbac.Grant("STOCK_BATCH_CREATE", http.MethodPost, "/api/stock/batches", editorRoles...)
	r.Post("/stock/batches", stock.RegisterBatchHandler(s.DB, s.Audit))
	s.Rbac.Grant("STOCK_LOCATION_EDIT", http.MethodPost, "/api/stock/*/location", editorRoles...)
	r.Post("/stock/{id}/location", stock.MoveUnitHandler(s.DB, s.Audit))
	s.Rbac.Grant("STOCK_STATUS_EDIT", http.MethodPost, "/api/stock/*/status", editorRoles...)
	r.Post("/stock/{id}/status", stock.SetStatusHandler(s.DB, s.Audit))
	s.Rbac.Grant("STOCK_DELETE", http.MethodDelete, "/api/stock/*", editorRoles...)
	r.Delete("/stock/{id}", stock.DeleteUnitHandler(s.DB, s.Audit))
}

func (s *Server) RegisterReportRoutes(r chi.Router) {
	s.Rbac.Grant("REPORTS_STOCK_VIEW", http.MethodGet, "/api/reports/stock", allRoles...)
	r.Get("/reports/stock", reports.StockReportHandler(s.DB))

	s.Rbac.Grant("REPORTS_EXPORT_XLSX", http.MethodGet, "/api/reports/stock.xlsx", allRoles...)
	r.Get("/reports/stock.xlsx", reports.ExportHandler(s.DB, "xlsx"))
	s.Rbac.Grant("REPORTS_EXPORT_CSV", http.MethodGet, "/api/reports/stock.csv", allRoles...)
	r.Get("/reports/stock.csv", reports.ExportHandler(s.DB, "csv"))
	s.Rbac.Grant("REPORTS_EXPORT_PDF", http.MethodGet, "/api/reports/stock.pdf", allRoles...)
	r.Get("/reports/stock.pdf", reports.ExportHandler(s.DB, "pdf"))

	s.Rbac.Grant("REPORTS_EXPORTS_LIST", http.MethodGet, "/api/reports/exports", allRoles...)
	r.Get("/reports/exports", exports.ListRunsHandler(s.DB))

	s.Rbac.Grant("REPORTS_SETTINGS_VIEW", http.MethodGet, "/api/reports/settings", allRoles...)
	r.Get("/reports/settings", reports.GetSettingsHandler(s.DB))
	s.Rbac.Grant("REPORTS_SETTINGS_EDIT", http.MethodPut, "/api/reports/settings", allRoles...)
	r.Put("/reports/settings", reports.PutSettingsHandler(s.DB, s.Audit))
	s.Rbac.Grant("REPORTS_COLUMNS_ADD", http.MethodPost, "/api/reports/settings/columns", allRoles...)
	r.Post("/reports/settings/columns", reports.AddColumnHandler(s.DB, s.Audit))
	s.Rbac.Grant("REPORTS_COLUMNS_REMOVE", http.MethodDelete, "/api/reports/settings/columns/*", allRoles...)
	r.Delete("/reports/settings/columns/{id}", reports.RemoveColumnHandler(s.DB, s.Audit))
}
