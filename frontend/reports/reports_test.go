package reports

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"stockroom/frontend/stock"
	"stockroom/infrastructure/customcolumn"
)

func sampleUnits() []stock.UnitView {
	unit := func(id int64, serial int, location string) stock.UnitView {
		return stock.UnitView{
			ID:           id,
			StockID:      "V1-P2-" + string(rune('0'+serial)),
			StockName:    "Chair",
			Description:  "Steel frame",
			Price:        decimal.RequireFromString("100"),
			TaxAmount:    decimal.RequireFromString("18"),
			CategoryID:   1,
			CategoryName: "Furniture",
			StatusID:     1,
			StatusName:   "In use",
			LocationName: location,
			InvoiceNo:    "INV-1",
			VolumeNo:     "V1",
			PageNo:       "P2",
			SerialNo:     serial,
		}
	}
	return []stock.UnitView{
		unit(1, 1, "Lab"),
		unit(2, 2, "Lab"),
		unit(3, 3, "Store"),
	}
}

func TestFlattenUnits(t *testing.T) {
	rows := FlattenUnits(sampleUnits())
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][ColStockID] != "V1-P2-1" || rows[2][ColLocation] != "Store" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	total, ok := rows[0][ColTotal].(decimal.Decimal)
	if !ok || !total.Equal(decimal.NewFromInt(118)) {
		t.Fatalf("expected total 118, got %v", rows[0][ColTotal])
	}
}

func TestFlattenBatches(t *testing.T) {
	rows := FlattenBatches(sampleUnits())
	if len(rows) != 1 {
		t.Fatalf("expected one batch row, got %d", len(rows))
	}
	row := rows[0]
	if row[ColStockID] != "V1-P2-[1-3]" {
		t.Fatalf("unexpected stock id %v", row[ColStockID])
	}
	if row[ColLocation] != "Lab (1-2), Store (3)" {
		t.Fatalf("unexpected locations %v", row[ColLocation])
	}
	if row[ColQuantity] != 3 {
		t.Fatalf("unexpected quantity %v", row[ColQuantity])
	}
	total := row[ColTotal].(decimal.Decimal)
	if !total.Equal(decimal.NewFromInt(354)) {
		t.Fatalf("expected total 354, got %s", total)
	}
}

func TestColumnsOrderAndVisibility(t *testing.T) {
	s := Settings{
		ColumnOrder:    []string{ColPrice, "cc_margin", ColStockName},
		VisibleColumns: []string{ColStockName, ColPrice, "cc_margin"},
		CustomColumns:  []customcolumn.Definition{customcolumn.NewArithmetic("cc_margin", "Margin", "price * 0.1")},
	}
	cols := Columns(s)
	got := make([]string, 0, len(cols))
	for _, c := range cols {
		got = append(got, c.ID)
	}
	want := []string{ColPrice, "cc_margin", ColStockName}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if !cols[1].Custom || cols[1].Label != "Margin" {
		t.Fatalf("expected custom margin column, got %+v", cols[1])
	}

	all := Columns(Settings{})
	if len(all) != len(baseColumns) || all[0].ID != customcolumn.DisplaySerialNo {
		t.Fatalf("expected default columns, got %+v", all)
	}
}

func TestBuildEvaluatesCustomColumns(t *testing.T) {
	s := Settings{
		VisibleColumns: []string{customcolumn.DisplaySerialNo, ColStockID, "cc_gross", "cc_label"},
		CustomColumns: []customcolumn.Definition{
			customcolumn.NewArithmetic("cc_gross", "Gross", "(price + taxAmount) * quantity"),
			customcolumn.NewConcat("cc_label", "Label", []string{ColStockName, ColLocation}, " @ "),
		},
	}
	report := Build(FlattenUnits(sampleUnits()), s, ModeUnit)

	if len(report.Columns) != 4 || len(report.Rows) != 3 {
		t.Fatalf("unexpected report shape: %d columns, %d rows", len(report.Columns), len(report.Rows))
	}
	last := report.Rows[2]
	if last[0].String() != "3" {
		t.Fatalf("expected serial 3, got %s", last[0])
	}
	if last[1].String() != "V1-P2-3" {
		t.Fatalf("unexpected stock id %s", last[1])
	}
	if last[2].String() != "118" {
		t.Fatalf("expected gross 118, got %s", last[2])
	}
	if last[3].String() != "Chair @ Store" {
		t.Fatalf("unexpected label %q", last[3].String())
	}
}

func TestValidateSettings(t *testing.T) {
	cases := []struct {
		name string
		s    Settings
		want error
	}{
		{
			name: "unknown visible column",
			s:    Settings{VisibleColumns: []string{"ghost"}},
			want: ErrUnknownColumn,
		},
		{
			name: "custom id clashes with stock column",
			s:    Settings{CustomColumns: []customcolumn.Definition{customcolumn.NewStatic(ColPrice, "Price", customcolumn.Text("x"))}},
			want: ErrReservedColumn,
		},
		{
			name: "duplicate custom ids",
			s: Settings{CustomColumns: []customcolumn.Definition{
				customcolumn.NewStatic("cc_a", "A", customcolumn.Text("x")),
				customcolumn.NewStatic("cc_a", "A", customcolumn.Text("y")),
			}},
			want: customcolumn.ErrDuplicateID,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := validateSettings(tc.s); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	cyclic := Settings{CustomColumns: []customcolumn.Definition{
		customcolumn.NewArithmetic("cc_a", "A", "cc_b + 1"),
		customcolumn.NewArithmetic("cc_b", "B", "cc_a + 1"),
	}}
	var cycle *customcolumn.CycleError
	if err := validateSettings(cyclic); !errors.As(err, &cycle) {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func exportSample() Report {
	s := Settings{VisibleColumns: []string{ColStockID, ColLocation, ColTotal, "cc_bad"},
		CustomColumns: []customcolumn.Definition{customcolumn.NewArithmetic("cc_bad", "Bad", "price / 0")}}
	return Build(FlattenUnits(sampleUnits()[:2]), s, ModeUnit)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := writeCSV(&buf, exportSample()); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	want := "Stock ID,Location,Total,Bad\nV1-P2-1,Lab,118,Err:Infinite\nV1-P2-2,Lab,118,Err:Infinite\n"
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%s", buf.String())
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := writeXLSX(&buf, exportSample()); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()

	header, err := f.GetCellValue(sheetName, "A1")
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	if header != "Stock ID" {
		t.Fatalf("unexpected header %q", header)
	}
	total, err := f.GetCellValue(sheetName, "C2")
	if err != nil {
		t.Fatalf("read total: %v", err)
	}
	if total != "118" {
		t.Fatalf("expected total 118, got %q", total)
	}
	sentinel, err := f.GetCellValue(sheetName, "D3")
	if err != nil {
		t.Fatalf("read sentinel: %v", err)
	}
	if sentinel != customcolumn.ErrInfinite {
		t.Fatalf("expected %s, got %q", customcolumn.ErrInfinite, sentinel)
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	if err := writePDF(&buf, exportSample(), "Stock report", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("expected pdf output")
	}
}
