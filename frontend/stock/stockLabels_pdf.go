package stock

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strings"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/jung-kurt/gofpdf"
)

// A4 portrait sheet of 3 x 8 labels.
const (
	labelColumns = 3
	labelRows    = 8
	sheetMargin  = 8.0
)

// renderUnitLabelsPDF prints one code128 label per unit, the barcode
// carrying the unit's stock id.
func renderUnitLabelsPDF(units []UnitView, printedAt time.Time) ([]byte, error) {
	if len(units) == 0 {
		return nil, errors.New("no labels to render")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Stock Labels", false)
	pdf.SetAutoPageBreak(false, 0)

	pageW, pageH := pdf.GetPageSize()
	cellW := (pageW - 2*sheetMargin) / labelColumns
	cellH := (pageH - 2*sheetMargin) / labelRows
	perPage := labelColumns * labelRows

	for i, u := range units {
		slot := i % perPage
		if slot == 0 {
			pdf.AddPage()
		}
		x := sheetMargin + float64(slot%labelColumns)*cellW
		y := sheetMargin + float64(slot/labelColumns)*cellH
		if err := addUnitLabel(pdf, u, i, x, y, cellW, cellH, printedAt); err != nil {
			return nil, err
		}
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func addUnitLabel(pdf *gofpdf.Fpdf, u UnitView, index int, x, y, w, h float64, printedAt time.Time) error {
	stockID := strings.TrimSpace(u.StockID)
	if stockID == "" {
		return fmt.Errorf("unit %d has no stock id", u.ID)
	}
	name := strings.TrimSpace(u.StockName)
	if name == "" {
		name = "Unnamed stock"
	}
	location := strings.TrimSpace(u.LocationName)
	if location == "" {
		location = "-"
	}

	barcodePNG, err := renderCode128PNG(stockID, 600, 160)
	if err != nil {
		return err
	}

	pdf.SetLineWidth(0.2)
	pdf.SetDrawColor(180, 180, 180)
	pdf.Rect(x+1, y+1, w-2, h-2, "D")

	inner := w - 6
	nameFont := fitFontSizeForWidth(pdf, "Helvetica", "B", 10, 6, name, inner)
	pdf.SetFont("Helvetica", "B", nameFont)
	pdf.SetXY(x+3, y+2.5)
	pdf.CellFormat(inner, 4.5, name, "", 0, "L", false, 0, "")

	opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	imageName := fmt.Sprintf("stock-barcode-%d-%d", u.ID, index)
	pdf.RegisterImageOptionsReader(imageName, opt, bytes.NewReader(barcodePNG))
	pdf.ImageOptions(imageName, x+3, y+7.5, inner, h-17, false, opt, 0, "")

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(x+3, y+h-9)
	pdf.CellFormat(inner, 3.5, stockID, "", 0, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 6.5)
	pdf.SetXY(x+3, y+h-5.5)
	pdf.CellFormat(inner/2, 3, location, "", 0, "L", false, 0, "")
	pdf.CellFormat(inner/2, 3, printedAt.Format("02/01/2006"), "", 0, "R", false, 0, "")
	return nil
}

func fitFontSizeForWidth(pdf *gofpdf.Fpdf, family, style string, base, min float64, text string, maxWidth float64) float64 {
	if maxWidth <= 0 {
		return min
	}
	size := base
	pdf.SetFont(family, style, size)
	for size > min && pdf.GetStringWidth(text) > maxWidth {
		size -= 0.5
		pdf.SetFont(family, style, size)
	}
	return size
}

func renderCode128PNG(value string, width, height int) ([]byte, error) {
	code, err := code128.Encode(value)
	if err != nil {
		return nil, err
	}
	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, toNRGBA(scaled)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	dst := image.NewNRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)
	return dst
}
