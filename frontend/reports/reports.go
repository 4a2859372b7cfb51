// Package reports flattens stock into report rows, applies each user's
// layout and custom columns, and exports the result.
package reports

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"stockroom/frontend/stock"
	"stockroom/infrastructure/batchgroup"
	"stockroom/infrastructure/customcolumn"
)

// FlattenUnits produces one row per unit.
func FlattenUnits(units []stock.UnitView) []customcolumn.Row {
	rows := make([]customcolumn.Row, 0, len(units))
	for _, u := range units {
		row := baseRow(u)
		row[ColStockID] = u.StockID
		row[ColLocation] = u.LocationName
		row[ColSerialNo] = u.SerialNo
		row[ColQuantity] = 1
		row[ColTotal] = u.Price.Add(u.TaxAmount)
		rows = append(rows, row)
	}
	return rows
}

// FlattenBatches collapses units into their registered batches: one row per
// batch with the locations listed by range and totals multiplied out.
func FlattenBatches(units []stock.UnitView) []customcolumn.Row {
	byID := make(map[int64]stock.UnitView, len(units))
	for _, u := range units {
		byID[u.ID] = u
	}

	products := batchgroup.Group(stock.BatchUnits(units), nil)
	rows := make([]customcolumn.Row, 0, len(products))
	for _, p := range products {
		first := byID[p.UnitIDs[0]]
		row := baseRow(first)

		locations := make([]string, 0, len(p.LocationRangeMappings))
		for _, m := range p.LocationRangeMappings {
			if m.Range == "" {
				locations = append(locations, m.Location)
				continue
			}
			locations = append(locations, fmt.Sprintf("%s (%s)", m.Location, m.Range))
		}

		qty := decimal.NewFromInt(int64(p.Quantity))
		row[ColStockID] = p.StockID
		row[ColLocation] = strings.Join(locations, ", ")
		row[ColSerialNo] = fmt.Sprintf("1-%d", p.Quantity)
		row[ColQuantity] = p.Quantity
		row[ColTotal] = first.Price.Add(first.TaxAmount).Mul(qty)
		rows = append(rows, row)
	}
	return rows
}

func baseRow(u stock.UnitView) customcolumn.Row {
	return customcolumn.Row{
		ColStockName:   u.StockName,
		ColDescription: u.Description,
		ColCategory:    u.CategoryName,
		ColStatus:      u.StatusName,
		ColInvoiceNo:   u.InvoiceNo,
		ColInvoiceDate: u.InvoiceDate,
		ColVendor:      u.Vendor,
		ColBudget:      u.BudgetName,
		ColVolumeNo:    u.VolumeNo,
		ColPageNo:      u.PageNo,
		ColStaff:       u.Staff,
		ColRemarks:     u.Remarks,
		ColPrice:       u.Price,
		ColTaxAmount:   u.TaxAmount,
	}
}

// Columns resolves the ordered, visible column list for settings.
func Columns(s Settings) []Column {
	all := make([]Column, 0, len(baseColumns)+len(s.CustomColumns))
	all = append(all, baseColumns...)
	for _, d := range s.CustomColumns {
		label := d.DisplayName
		if label == "" {
			label = d.ID
		}
		all = append(all, Column{ID: d.ID, Label: label, Custom: true})
	}

	byID := make(map[string]Column, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}

	ordered := make([]Column, 0, len(all))
	placed := make(map[string]bool, len(all))
	for _, id := range s.ColumnOrder {
		if c, ok := byID[id]; ok && !placed[id] {
			ordered = append(ordered, c)
			placed[id] = true
		}
	}
	for _, c := range all {
		if !placed[c.ID] {
			ordered = append(ordered, c)
		}
	}

	if len(s.VisibleColumns) == 0 {
		return ordered
	}
	visible := make(map[string]bool, len(s.VisibleColumns))
	for _, id := range s.VisibleColumns {
		visible[id] = true
	}
	out := make([]Column, 0, len(s.VisibleColumns))
	for _, c := range ordered {
		if visible[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

// Build evaluates custom columns over rows and lays the cells out in column
// order.
func Build(rows []customcolumn.Row, s Settings, mode string) Report {
	columns := Columns(s)
	custom := customcolumn.Apply(rows, s.CustomColumns)
	customIndex := make(map[string]int, len(s.CustomColumns))
	for i, d := range s.CustomColumns {
		customIndex[d.ID] = i
	}

	out := Report{Mode: mode, Columns: columns, Rows: make([][]customcolumn.Value, 0, len(rows))}
	for i, row := range rows {
		cells := make([]customcolumn.Value, 0, len(columns))
		for _, c := range columns {
			switch {
			case c.Custom:
				cells = append(cells, custom[i][customIndex[c.ID]])
			case c.ID == customcolumn.DisplaySerialNo:
				cells = append(cells, customcolumn.Number(decimal.NewFromInt(int64(i+1))))
			default:
				cells = append(cells, customcolumn.FromAny(row[c.ID]))
			}
		}
		out.Rows = append(out.Rows, cells)
	}
	return out
}

// validateSettings checks custom columns and that every listed id exists.
func validateSettings(s Settings) error {
	for _, d := range s.CustomColumns {
		if isBaseColumn(d.ID) {
			return fmt.Errorf("%w: %q", ErrReservedColumn, d.ID)
		}
	}
	if err := customcolumn.Validate(s.CustomColumns); err != nil {
		return err
	}
	known := make(map[string]bool, len(baseColumns)+len(s.CustomColumns))
	for _, c := range baseColumns {
		known[c.ID] = true
	}
	for _, d := range s.CustomColumns {
		known[d.ID] = true
	}
	for _, list := range [][]string{s.VisibleColumns, s.ColumnOrder} {
		for _, id := range list {
			if !known[id] {
				return fmt.Errorf("%w: %q", ErrUnknownColumn, id)
			}
		}
	}
	return nil
}
