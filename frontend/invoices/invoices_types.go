package invoices

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var (
	ErrInvoiceNoRequired = errors.New("invoice number is required")
	ErrVendorRequired    = errors.New("vendor is required")
	ErrInvalidDate       = errors.New("invoice date must be YYYY-MM-DD")
	ErrNegativeTotal     = errors.New("total must not be negative")
	ErrUnknownBudget     = errors.New("unknown budget")
	ErrInvoiceExists     = errors.New("invoice number already exists")
	ErrNotFound          = errors.New("invoice not found")
	ErrInUse             = errors.New("invoice has stock units and cannot be deleted")
)

// InvoiceView is an invoice with its budget name and registered unit count.
type InvoiceView struct {
	ID          int64           `json:"id" bun:"id"`
	InvoiceNo   string          `json:"invoiceNo" bun:"invoice_no"`
	InvoiceDate time.Time       `json:"-" bun:"invoice_date"`
	Date        string          `json:"invoiceDate" bun:"-"`
	Vendor      string          `json:"vendor" bun:"vendor"`
	BudgetID    int64           `json:"budgetId,omitempty" bun:"budget_id"`
	BudgetName  string          `json:"budgetName,omitempty" bun:"budget_name"`
	Total       decimal.Decimal `json:"total" bun:"total"`
	UnitCount   int             `json:"unitCount" bun:"unit_count"`
}

// Input is the create payload. Date is YYYY-MM-DD.
type Input struct {
	InvoiceNo   string          `json:"invoiceNo" validate:"required,max=64"`
	InvoiceDate string          `json:"invoiceDate" validate:"required,datetime=2006-01-02"`
	Vendor      string          `json:"vendor" validate:"required,max=200"`
	BudgetID    int64           `json:"budgetId" validate:"gte=0"`
	Total       decimal.Decimal `json:"total"`
}

// Filter narrows List; zero values match all.
type Filter struct {
	BudgetID int64
	Vendor   string
}
