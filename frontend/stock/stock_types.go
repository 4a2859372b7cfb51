package stock

import (
	"errors"
	"strconv"

	"github.com/shopspring/decimal"

	"stockroom/infrastructure/batchgroup"
	"stockroom/infrastructure/rangespec"
)

var (
	ErrNotFound         = errors.New("stock unit not found")
	ErrStockIDExists    = errors.New("stock id already registered")
	ErrUnknownReference = errors.New("unknown category, status or invoice")
	ErrLocationRequired = errors.New("location is required")
	ErrStatusRequired   = errors.New("status is required")
	ErrNoUnits          = errors.New("no stock units selected")
	ErrInvalidFilter    = errors.New("invalid filter")
)

// UnitView is one stock unit with its master names resolved.
type UnitView struct {
	ID           int64           `json:"id" bun:"id"`
	StockID      string          `json:"stockId" bun:"stock_id"`
	StockName    string          `json:"stockName" bun:"stock_name"`
	Description  string          `json:"description" bun:"description"`
	Price        decimal.Decimal `json:"price" bun:"price"`
	TaxAmount    decimal.Decimal `json:"taxAmount" bun:"tax_amount"`
	CategoryID   int64           `json:"categoryId,omitempty" bun:"category_id"`
	CategoryName string          `json:"categoryName" bun:"category_name"`
	StatusID     int64           `json:"statusId,omitempty" bun:"status_id"`
	StatusName   string          `json:"statusName" bun:"status_name"`
	LocationID   int64           `json:"locationId" bun:"location_id"`
	LocationName string          `json:"locationName" bun:"location_name"`
	InvoiceID    int64           `json:"invoiceId,omitempty" bun:"invoice_id"`
	InvoiceNo    string          `json:"invoiceNo" bun:"invoice_no"`
	InvoiceDate  string          `json:"invoiceDate" bun:"invoice_date"`
	Vendor       string          `json:"vendor" bun:"vendor"`
	BudgetName   string          `json:"budgetName" bun:"budget_name"`
	VolumeNo     string          `json:"volumeNo" bun:"volume_no"`
	PageNo       string          `json:"pageNo" bun:"page_no"`
	SerialNo     int             `json:"serialNo" bun:"serial_no"`
	Staff        string          `json:"staff" bun:"staff"`
	Remarks      string          `json:"remarks" bun:"remarks"`
}

// BatchUnit converts the view to the grouping input.
func (u UnitView) BatchUnit() batchgroup.Unit {
	serial := ""
	if u.SerialNo > 0 {
		serial = strconv.Itoa(u.SerialNo)
	}
	return batchgroup.Unit{
		ID:           u.ID,
		StockName:    u.StockName,
		Description:  u.Description,
		Price:        u.Price,
		CategoryID:   u.CategoryID,
		StatusID:     u.StatusID,
		InvoiceID:    u.InvoiceID,
		VolumeNo:     u.VolumeNo,
		PageNo:       u.PageNo,
		SerialNo:     serial,
		StockID:      u.StockID,
		LocationName: u.LocationName,
	}
}

// Filter narrows ListUnits. Zero values match everything.
type Filter struct {
	IDs        []int64 `json:"ids,omitempty"`
	InvoiceID  int64   `json:"invoiceId,omitempty"`
	LocationID int64   `json:"locationId,omitempty"`
	StatusID   int64   `json:"statusId,omitempty"`
	CategoryID int64   `json:"categoryId,omitempty"`
	BudgetID   int64   `json:"budgetId,omitempty"`
	Search     string  `json:"q,omitempty"`
}

// BatchResult reports the units created for one registered batch.
type BatchResult struct {
	Created  int      `json:"created"`
	UnitIDs  []int64  `json:"unitIds"`
	StockIDs []string `json:"stockIds"`
}

type validateRequest struct {
	Quantity              int                 `json:"quantity"`
	LocationRangeMappings []rangespec.Mapping `json:"locationRangeMappings"`
}

type validateResponse struct {
	Valid    bool     `json:"valid"`
	Assigned string   `json:"assigned"`
	Skipped  []string `json:"skipped,omitempty"`
}

type validationDetails struct {
	Kind    string   `json:"kind"`
	Row     int      `json:"row,omitempty"`
	Token   string   `json:"token,omitempty"`
	Unit    int      `json:"unit,omitempty"`
	Skipped []string `json:"skipped,omitempty"`
}

type moveRequest struct {
	Location string `json:"location" validate:"required,max=100"`
}

type statusRequest struct {
	StatusID int64 `json:"statusId" validate:"required,gt=0"`
}
