package batchgroup

import (
	"errors"
	"reflect"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"

	"stockroom/infrastructure/rangespec"
)

func printerUnit(id int64, serial, location string) Unit {
	return Unit{
		ID:           id,
		StockName:    "Laser Printer",
		Description:  "A4 mono",
		Price:        decimal.RequireFromString("149.50"),
		CategoryID:   2,
		StatusID:     1,
		InvoiceID:    7,
		VolumeNo:     "3",
		PageNo:       "12",
		SerialNo:     serial,
		StockID:      "3-12-" + serial,
		LocationName: location,
	}
}

func TestGroupRebuildsBatchAcrossLocations(t *testing.T) {
	units := []Unit{
		printerUnit(1, "1", "Lab A"),
		printerUnit(2, "2", "Lab A"),
		printerUnit(3, "5", "Office"),
		printerUnit(4, "3", "Lab A"),
		printerUnit(5, "4", "Office"),
	}

	products := Group(units, nil)
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	p := products[0]
	if p.Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", p.Quantity)
	}
	if p.StockID != "3-12-[1-5]" {
		t.Fatalf("unexpected stock id %q", p.StockID)
	}
	want := []rangespec.Mapping{
		{Range: "1-3", Location: "Lab A"},
		{Range: "4-5", Location: "Office"},
	}
	if !reflect.DeepEqual(p.LocationRangeMappings, want) {
		t.Fatalf("unexpected mappings: %+v", p.LocationRangeMappings)
	}
	if err := rangespec.ValidateMappings(p.LocationRangeMappings, p.Quantity); err != nil {
		t.Fatalf("rebuilt mappings should validate: %v", err)
	}
	if !reflect.DeepEqual(p.UnitIDs, []int64{1, 2, 3, 4, 5}) {
		t.Fatalf("unexpected unit ids: %v", p.UnitIDs)
	}
}

func TestGroupSplitsOnKeyFields(t *testing.T) {
	other := printerUnit(3, "1", "Lab A")
	other.Price = decimal.RequireFromString("99")
	samePriceDifferentScale := printerUnit(4, "2", "Lab A")
	samePriceDifferentScale.Price = decimal.RequireFromString("149.5")

	products := Group([]Unit{printerUnit(1, "1", "Lab A"), other, samePriceDifferentScale}, nil)
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].Quantity != 2 || products[1].Quantity != 1 {
		t.Fatalf("unexpected quantities: %d, %d", products[0].Quantity, products[1].Quantity)
	}
}

func TestGroupFallsBackToCompositeStockID(t *testing.T) {
	units := []Unit{
		{ID: 1, StockName: "Chair", StockID: "V2-P9-1", LocationName: "Hall"},
		{ID: 2, StockName: "Chair", StockID: "V2-P9-2", LocationName: "Hall"},
		{ID: 3, StockName: "Chair", StockID: "Vol.No.V2/Pg.No.P9/S.No.3", LocationName: "Hall"},
	}
	products := Group(units, nil)
	if len(products) != 1 {
		t.Fatalf("expected composite ids to group together, got %d products", len(products))
	}
	p := products[0]
	if p.VolumeNo != "V2" || p.PageNo != "P9" {
		t.Fatalf("unexpected vol/page %q/%q", p.VolumeNo, p.PageNo)
	}
	if p.LocationRangeMappings[0].Range != "1-3" {
		t.Fatalf("unexpected range %q", p.LocationRangeMappings[0].Range)
	}
}

func TestGroupUnparseableUnitsDegrade(t *testing.T) {
	units := []Unit{
		{ID: 1, StockName: "Desk", StockID: "legacy", LocationName: "Room 1"},
		{ID: 2, StockName: "Desk", StockID: "legacy", LocationName: "Room 1"},
	}
	products := Group(units, nil)
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	p := products[0]
	if p.VolumeNo != NotAvailable || p.PageNo != NotAvailable {
		t.Fatalf("expected N/A placeholders, got %q/%q", p.VolumeNo, p.PageNo)
	}
	if p.Quantity != 2 || p.Unparsed != 2 {
		t.Fatalf("expected quantity 2 unparsed 2, got %d/%d", p.Quantity, p.Unparsed)
	}
	if p.LocationRangeMappings[0].Range != "" {
		t.Fatalf("expected empty range, got %q", p.LocationRangeMappings[0].Range)
	}
}

type fixedParser struct{}

func (fixedParser) ParseSerial(u Unit) (Serial, bool) {
	return Serial{VolumeNo: "X", PageNo: "Y", Number: int(u.ID)}, true
}

func TestGroupUsesInjectedParser(t *testing.T) {
	products := Group([]Unit{{ID: 4, StockName: "Fan"}, {ID: 5, StockName: "Fan"}}, fixedParser{})
	if products[0].StockID != "X-Y-[1-2]" || products[0].LocationRangeMappings[0].Range != "4-5" {
		t.Fatalf("unexpected product: %+v", products[0])
	}
}

func TestExpand(t *testing.T) {
	input := ProductInput{
		BatchFields: BatchFields{StockName: " Monitor ", VolumeNo: "1", PageNo: "4", Price: decimal.NewFromInt(120)},
		Quantity:    4,
		LocationRangeMappings: []rangespec.Mapping{
			{Range: "1-2", Location: "Lab"},
			{Range: "3,4", Location: "Store"},
		},
	}
	drafts, err := Expand(input)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(drafts) != 4 {
		t.Fatalf("expected 4 drafts, got %d", len(drafts))
	}
	if drafts[0].StockID != "1-4-1" || drafts[0].LocationName != "Lab" || drafts[0].StockName != "Monitor" {
		t.Fatalf("unexpected first draft: %+v", drafts[0])
	}
	if drafts[3].StockID != "1-4-4" || drafts[3].LocationName != "Store" || drafts[3].SerialNo != 4 {
		t.Fatalf("unexpected last draft: %+v", drafts[3])
	}
}

func TestExpandGate(t *testing.T) {
	cases := []struct {
		name  string
		input ProductInput
		want  error
	}{
		{name: "no quantity", input: ProductInput{}, want: ErrQuantityRequired},
		{name: "negative quantity", input: ProductInput{Quantity: -4}, want: ErrQuantityRequired},
		{
			name:  "above batch limit",
			input: ProductInput{Quantity: rangespec.MaxUnits + 1, LocationRangeMappings: []rangespec.Mapping{{Range: "1-10001", Location: "A"}}},
			want:  ErrQuantityTooLarge,
		},
		{name: "no mappings", input: ProductInput{Quantity: 2}, want: ErrMappingsRequired},
		{
			name:  "missing location",
			input: ProductInput{Quantity: 1, LocationRangeMappings: []rangespec.Mapping{{Range: "1"}}},
			want:  ErrLocationRequired,
		},
		{
			name:  "short",
			input: ProductInput{Quantity: 3, LocationRangeMappings: []rangespec.Mapping{{Range: "1-2", Location: "A"}}},
			want:  ErrAssignedMismatch,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Expand(tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestGroupExpandRoundTrip(t *testing.T) {
	input := ProductInput{
		BatchFields: BatchFields{StockName: "Projector", VolumeNo: "5", PageNo: "2", Price: decimal.NewFromInt(300)},
		Quantity:    6,
		LocationRangeMappings: []rangespec.Mapping{
			{Range: "1,3,5", Location: "Room 1"},
			{Range: "2,4,6", Location: "Room 2"},
		},
	}
	drafts, err := Expand(input)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	units := make([]Unit, 0, len(drafts))
	for i, d := range drafts {
		units = append(units, Unit{
			ID:           int64(i + 1),
			StockName:    d.StockName,
			Price:        d.Price,
			VolumeNo:     d.VolumeNo,
			PageNo:       d.PageNo,
			SerialNo:     strconv.Itoa(d.SerialNo),
			StockID:      d.StockID,
			LocationName: d.LocationName,
		})
	}
	products := Group(units, nil)
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	if !reflect.DeepEqual(products[0].LocationRangeMappings, input.LocationRangeMappings) {
		t.Fatalf("round trip mismatch: %+v", products[0].LocationRangeMappings)
	}
}
