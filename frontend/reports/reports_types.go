package reports

import (
	"errors"

	"stockroom/infrastructure/customcolumn"
)

var (
	ErrUnknownColumn  = errors.New("unknown report column")
	ErrReservedColumn = errors.New("custom column id clashes with a stock column")
)

// Column ids of the flattened stock row. Arithmetic expressions refer to
// these names.
const (
	ColStockID     = "stockId"
	ColStockName   = "stockName"
	ColDescription = "description"
	ColCategory    = "category"
	ColStatus      = "status"
	ColLocation    = "location"
	ColInvoiceNo   = "invoiceNo"
	ColInvoiceDate = "invoiceDate"
	ColVendor      = "vendor"
	ColBudget      = "budget"
	ColVolumeNo    = "volumeNo"
	ColPageNo      = "pageNo"
	ColSerialNo    = "serialNo"
	ColStaff       = "staff"
	ColRemarks     = "remarks"
	ColPrice       = "price"
	ColTaxAmount   = "taxAmount"
	ColTotal       = "total"
	ColQuantity    = "quantity"
)

// Column is one report column header.
type Column struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Custom bool   `json:"custom,omitempty"`
}

var baseColumns = []Column{
	{ID: customcolumn.DisplaySerialNo, Label: "S.No."},
	{ID: ColStockID, Label: "Stock ID"},
	{ID: ColStockName, Label: "Stock name"},
	{ID: ColDescription, Label: "Description"},
	{ID: ColCategory, Label: "Category"},
	{ID: ColStatus, Label: "Status"},
	{ID: ColLocation, Label: "Location"},
	{ID: ColQuantity, Label: "Qty"},
	{ID: ColPrice, Label: "Price"},
	{ID: ColTaxAmount, Label: "Tax"},
	{ID: ColTotal, Label: "Total"},
	{ID: ColInvoiceNo, Label: "Invoice no."},
	{ID: ColInvoiceDate, Label: "Invoice date"},
	{ID: ColVendor, Label: "Vendor"},
	{ID: ColBudget, Label: "Budget"},
	{ID: ColVolumeNo, Label: "Vol."},
	{ID: ColPageNo, Label: "Page"},
	{ID: ColSerialNo, Label: "Serial"},
	{ID: ColStaff, Label: "Staff"},
	{ID: ColRemarks, Label: "Remarks"},
}

func isBaseColumn(id string) bool {
	for _, c := range baseColumns {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Settings is one user's report layout. Empty VisibleColumns shows every
// column; ColumnOrder lists ids first, the rest follow in default order.
type Settings struct {
	VisibleColumns []string                  `json:"visibleColumns"`
	ColumnOrder    []string                  `json:"columnOrder"`
	CustomColumns  []customcolumn.Definition `json:"customColumns"`
}

// Report is a rendered stock report. Rows are aligned with Columns.
type Report struct {
	Mode    string                 `json:"mode"`
	Columns []Column               `json:"columns"`
	Rows    [][]customcolumn.Value `json:"rows"`
}

const (
	ModeUnit  = "unit"
	ModeBatch = "batch"
)
