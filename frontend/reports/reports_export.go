package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Stock"

// writeXLSX writes the report as a single-sheet workbook. Numbers stay
// numeric so totals can be summed in the spreadsheet.
func writeXLSX(w io.Writer, report Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E8EEF4"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	for i, c := range report.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, c.Label); err != nil {
			return err
		}
	}
	if len(report.Columns) > 0 {
		last, err := excelize.CoordinatesToCellName(len(report.Columns), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, "A1", last, header); err != nil {
			return err
		}
		if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return err
		}
	}

	for r, cells := range report.Rows {
		for c, v := range cells {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, v.Interface()); err != nil {
				return err
			}
		}
	}
	return f.Write(w)
}

func writeCSV(w io.Writer, report Report) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, len(report.Columns))
	for _, c := range report.Columns {
		header = append(header, c.Label)
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, cells := range report.Rows {
		record := make([]string, 0, len(cells))
		for _, v := range cells {
			record = append(record, v.String())
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writePDF renders the report as a landscape table, repeating the header on
// every page.
func writePDF(w io.Writer, report Report, title string, generatedAt time.Time) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(title, false)
	pdf.SetMargins(8, 10, 8)
	pdf.SetAutoPageBreak(false, 10)

	pageW, pageH := pdf.GetPageSize()
	left, top, right, _ := pdf.GetMargins()
	usable := pageW - left - right
	colW := usable
	if n := len(report.Columns); n > 0 {
		colW = usable / float64(n)
	}
	const rowH = 6.0

	drawHeader := func() {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetXY(left, top)
		pdf.CellFormat(usable/2, 7, title, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(usable/2, 7, fmt.Sprintf("Generated %s | %d rows", generatedAt.Format("02/01/2006 15:04"), len(report.Rows)), "", 1, "R", false, 0, "")
		pdf.SetFont("Helvetica", "B", 7)
		pdf.SetFillColor(232, 238, 244)
		for _, c := range report.Columns {
			pdf.CellFormat(colW, rowH, fitText(pdf, c.Label, colW-1), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(rowH)
		pdf.SetFont("Helvetica", "", 7)
	}

	pdf.AddPage()
	drawHeader()
	for _, cells := range report.Rows {
		if pdf.GetY()+rowH > pageH-10 {
			pdf.AddPage()
			drawHeader()
		}
		for _, v := range cells {
			align := "L"
			if v.IsNumber() {
				align = "R"
			}
			pdf.CellFormat(colW, rowH, fitText(pdf, v.String(), colW-1), "1", 0, align, false, 0, "")
		}
		pdf.Ln(rowH)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// fitText truncates text with an ellipsis until it fits maxWidth at the
// current font.
func fitText(pdf *gofpdf.Fpdf, text string, maxWidth float64) string {
	if pdf.GetStringWidth(text) <= maxWidth {
		return text
	}
	rs := []rune(text)
	for len(rs) > 0 && pdf.GetStringWidth(string(rs)+"...") > maxWidth {
		rs = rs[:len(rs)-1]
	}
	return string(rs) + "..."
}
