package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// User represents an authenticated app user.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Username     string    `bun:"username,unique,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	Role         string    `bun:"role,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Session is used by middleware and auth handlers.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	ID                string         `bun:"id,pk"`
	UserID            int64          `bun:"user_id,notnull"`
	User              User           `bun:"rel:belongs-to,join:user_id=id"`
	UserRoles         []string       `bun:"-"`
	ScreenPermissions map[string]int `bun:"-"`
	ExpiresAt         time.Time      `bun:"expires_at,notnull"`
	CreatedAt         time.Time      `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt         time.Time      `bun:"updated_at,notnull,default:current_timestamp"`
}

// Expired returns true when the session expiry time has passed.
func (s Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Privilege is a route permission code registered at startup.
type Privilege struct {
	bun.BaseModel `bun:"table:privileges,alias:pv"`

	Code   string `bun:"code,pk"`
	Method string `bun:"method,notnull"`
	Path   string `bun:"path,notnull"`
}

// RolePrivilege grants a privilege code to a role.
type RolePrivilege struct {
	bun.BaseModel `bun:"table:role_privileges,alias:rpv"`

	Role          string `bun:"role,pk"`
	PrivilegeCode string `bun:"privilege_code,pk"`
}

// Budget is the funding head an invoice is booked against.
type Budget struct {
	bun.BaseModel `bun:"table:budgets,alias:b"`

	ID            int64           `bun:"id,pk,autoincrement"`
	Name          string          `bun:"name,notnull"`
	FinancialYear string          `bun:"financial_year,notnull"`
	Amount        decimal.Decimal `bun:"amount,type:text,notnull"`
	CreatedAt     time.Time       `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt     time.Time       `bun:"updated_at,notnull,default:current_timestamp"`
}

// Category, Location and Status are named master rows.
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:c"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,unique,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

type Location struct {
	bun.BaseModel `bun:"table:locations,alias:l"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,unique,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

type Status struct {
	bun.BaseModel `bun:"table:statuses,alias:st"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,unique,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Invoice is a purchase document stock units are received against.
type Invoice struct {
	bun.BaseModel `bun:"table:invoices,alias:i"`

	ID          int64           `bun:"id,pk,autoincrement"`
	InvoiceNo   string          `bun:"invoice_no,unique,notnull"`
	InvoiceDate time.Time       `bun:"invoice_date,notnull"`
	Vendor      string          `bun:"vendor,notnull"`
	BudgetID    int64           `bun:"budget_id,nullzero"`
	Total       decimal.Decimal `bun:"total,type:text,notnull"`
	CreatedBy   int64           `bun:"created_by,notnull"`
	CreatedAt   time.Time       `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time       `bun:"updated_at,notnull,default:current_timestamp"`
}

// StockUnit is one physical item. Units registered together share their
// batch fields and differ in serial number and location.
type StockUnit struct {
	bun.BaseModel `bun:"table:stock_units,alias:su"`

	ID          int64           `bun:"id,pk,autoincrement"`
	StockName   string          `bun:"stock_name,notnull"`
	Description string          `bun:"description,notnull"`
	Price       decimal.Decimal `bun:"price,type:text,notnull"`
	TaxAmount   decimal.Decimal `bun:"tax_amount,type:text,notnull"`
	CategoryID  int64           `bun:"category_id,nullzero"`
	StatusID    int64           `bun:"status_id,nullzero"`
	LocationID  int64           `bun:"location_id,notnull"`
	InvoiceID   int64           `bun:"invoice_id,nullzero"`
	VolumeNo    string          `bun:"volume_no,notnull"`
	PageNo      string          `bun:"page_no,notnull"`
	SerialNo    int             `bun:"serial_no,notnull"`
	StockID     string          `bun:"stock_id,unique,notnull"`
	Staff       string          `bun:"staff,notnull"`
	Remarks     string          `bun:"remarks,notnull"`
	CreatedBy   int64           `bun:"created_by,notnull"`
	CreatedAt   time.Time       `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time       `bun:"updated_at,notnull,default:current_timestamp"`
}

// AuditLog captures immutable change history for key operations.
type AuditLog struct {
	bun.BaseModel `bun:"table:audit_logs,alias:al"`

	ID         int64     `bun:"id,pk,autoincrement"`
	UserID     int64     `bun:"user_id,notnull"`
	Action     string    `bun:"action,notnull"`
	EntityType string    `bun:"entity_type,notnull"`
	EntityID   string    `bun:"entity_id,notnull"`
	BeforeJSON string    `bun:"before_json"`
	AfterJSON  string    `bun:"after_json"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// ReportSetting stores one user's report layout as JSON.
type ReportSetting struct {
	bun.BaseModel `bun:"table:report_settings,alias:rs"`

	UserID       int64     `bun:"user_id,pk"`
	SettingsJSON string    `bun:"settings_json,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// ExportRun records each report download.
type ExportRun struct {
	bun.BaseModel `bun:"table:export_runs,alias:er"`

	ID        string    `bun:"id,pk"`
	UserID    *int64    `bun:"user_id"`
	Format    string    `bun:"format,notnull"`
	RowCount  int       `bun:"row_count,notnull"`
	Filters   string    `bun:"filters_json,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
