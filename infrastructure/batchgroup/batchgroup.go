// Package batchgroup folds individually stored stock units back into the
// batches they were registered as, and expands a batch into per-unit drafts.
package batchgroup

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"stockroom/infrastructure/rangespec"
)

var (
	ErrQuantityRequired = errors.New("quantity must be at least 1")
	ErrQuantityTooLarge = fmt.Errorf("quantity must not exceed %d", rangespec.MaxUnits)
	ErrMappingsRequired = errors.New("at least one location range is required")
	ErrLocationRequired = errors.New("location is required for every range")
	ErrAssignedMismatch = errors.New("assigned units do not match quantity")
)

// BatchFields are shared by every unit of one batch.
type BatchFields struct {
	StockName   string          `json:"stockName"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	TaxAmount   decimal.Decimal `json:"taxAmount"`
	CategoryID  int64           `json:"categoryId"`
	StatusID    int64           `json:"statusId"`
	InvoiceID   int64           `json:"invoiceId"`
	VolumeNo    string          `json:"volumeNo"`
	PageNo      string          `json:"pageNo"`
	Staff       string          `json:"staff"`
	Remarks     string          `json:"remarks"`
}

// Unit is one persisted stock unit as returned by the stock listing.
type Unit struct {
	ID           int64
	StockName    string
	Description  string
	Price        decimal.Decimal
	CategoryID   int64
	StatusID     int64
	InvoiceID    int64
	VolumeNo     string
	PageNo       string
	SerialNo     string
	StockID      string
	LocationName string
}

// Product is the batch-level view rebuilt from units.
type Product struct {
	StockName             string              `json:"stockName"`
	Description           string              `json:"description"`
	Price                 decimal.Decimal     `json:"price"`
	CategoryID            int64               `json:"categoryId"`
	StatusID              int64               `json:"statusId"`
	InvoiceID             int64               `json:"invoiceId"`
	VolumeNo              string              `json:"volumeNo"`
	PageNo                string              `json:"pageNo"`
	Quantity              int                 `json:"quantity"`
	StockID               string              `json:"stockId"`
	LocationRangeMappings []rangespec.Mapping `json:"locationRangeMappings"`
	UnitIDs               []int64             `json:"unitIds"`
	// Unparsed counts units whose serial number could not be recovered; they
	// are part of Quantity but missing from the ranges.
	Unparsed int `json:"unparsed,omitempty"`
}

// ProductInput is a batch as submitted for registration.
type ProductInput struct {
	BatchFields
	Quantity              int                 `json:"quantity"`
	LocationRangeMappings []rangespec.Mapping `json:"locationRangeMappings"`
}

// UnitDraft is one unit to insert for a registered batch.
type UnitDraft struct {
	BatchFields
	SerialNo     int
	StockID      string
	LocationName string
}

type groupKey struct {
	name, price, description string
	categoryID, statusID     int64
	volumeNo, pageNo         string
}

type locationBucket struct {
	location string
	numbers  []int
}

type group struct {
	product Product
	buckets []*locationBucket
	byName  map[string]*locationBucket
}

// Group rebuilds batches from units. Groups and location buckets keep the
// order in which they first appear. A nil parser uses LegacySerialParser.
func Group(units []Unit, parser SerialParser) []Product {
	if parser == nil {
		parser = LegacySerialParser{}
	}

	groups := make([]*group, 0)
	byKey := make(map[groupKey]*group)

	for _, u := range units {
		serial, ok := parser.ParseSerial(u)
		key := groupKey{
			name:        strings.TrimSpace(u.StockName),
			price:       u.Price.String(),
			description: strings.TrimSpace(u.Description),
			categoryID:  u.CategoryID,
			statusID:    u.StatusID,
			volumeNo:    serial.VolumeNo,
			pageNo:      serial.PageNo,
		}

		g, found := byKey[key]
		if !found {
			g = &group{
				product: Product{
					StockName:   key.name,
					Description: key.description,
					Price:       u.Price,
					CategoryID:  u.CategoryID,
					StatusID:    u.StatusID,
					InvoiceID:   u.InvoiceID,
					VolumeNo:    serial.VolumeNo,
					PageNo:      serial.PageNo,
				},
				byName: make(map[string]*locationBucket),
			}
			byKey[key] = g
			groups = append(groups, g)
		}

		g.product.Quantity++
		g.product.UnitIDs = append(g.product.UnitIDs, u.ID)

		location := strings.TrimSpace(u.LocationName)
		bucket, found := g.byName[location]
		if !found {
			bucket = &locationBucket{location: location}
			g.byName[location] = bucket
			g.buckets = append(g.buckets, bucket)
		}
		if !ok {
			g.product.Unparsed++
			continue
		}
		bucket.numbers = append(bucket.numbers, serial.Number)
	}

	out := make([]Product, 0, len(groups))
	for _, g := range groups {
		p := g.product
		p.LocationRangeMappings = make([]rangespec.Mapping, 0, len(g.buckets))
		for _, b := range g.buckets {
			p.LocationRangeMappings = append(p.LocationRangeMappings, rangespec.Mapping{
				Range:    rangespec.Compress(b.numbers),
				Location: b.location,
			})
		}
		p.StockID = fmt.Sprintf("%s-%s-[1-%d]", p.VolumeNo, p.PageNo, p.Quantity)
		out = append(out, p)
	}
	return out
}

// Expand turns a submitted batch into per-unit drafts. Only the weak gate is
// applied here: the lenient parse must name exactly Quantity units.
// Overlapping ranges that still add up pass; ValidateMappings is the strict
// check callers run for feedback.
func Expand(p ProductInput) ([]UnitDraft, error) {
	if p.Quantity < 1 {
		return nil, ErrQuantityRequired
	}
	if p.Quantity > rangespec.MaxUnits {
		return nil, ErrQuantityTooLarge
	}
	if len(p.LocationRangeMappings) == 0 {
		return nil, ErrMappingsRequired
	}
	for _, m := range p.LocationRangeMappings {
		if strings.TrimSpace(m.Location) == "" {
			return nil, ErrLocationRequired
		}
	}
	if assigned := rangespec.CountAssigned(p.LocationRangeMappings); assigned != p.Quantity {
		return nil, fmt.Errorf("%w: assigned %d, quantity %d", ErrAssignedMismatch, assigned, p.Quantity)
	}

	fields := p.BatchFields
	fields.StockName = strings.TrimSpace(fields.StockName)
	fields.VolumeNo = strings.TrimSpace(fields.VolumeNo)
	fields.PageNo = strings.TrimSpace(fields.PageNo)

	drafts := make([]UnitDraft, 0, p.Quantity)
	for _, m := range p.LocationRangeMappings {
		location := strings.TrimSpace(m.Location)
		for _, n := range rangespec.Parse(m.Range) {
			drafts = append(drafts, UnitDraft{
				BatchFields:  fields,
				SerialNo:     n,
				StockID:      ComposeStockID(fields.VolumeNo, fields.PageNo, n),
				LocationName: location,
			})
		}
	}
	return drafts, nil
}

// ComposeStockID renders the "vol-page-serial" identifier stored per unit.
func ComposeStockID(volumeNo, pageNo string, serial int) string {
	return volumeNo + "-" + pageNo + "-" + strconv.Itoa(serial)
}
