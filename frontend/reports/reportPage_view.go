package reports

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// ReportPage renders the report table with export links carrying the same
// query string.
func ReportPage(report Report, rawQuery string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		suffix := ""
		if rawQuery != "" {
			suffix = "?" + rawQuery
		}

		var b strings.Builder
		b.WriteString(`<section class="report"><header><h1>Stock report</h1><p class="exports">`)
		for _, f := range []string{"xlsx", "csv", "pdf"} {
			b.WriteString(`<a href="`)
			b.WriteString(templ.EscapeString("/api/reports/stock." + f + suffix))
			b.WriteString(`">`)
			b.WriteString(strings.ToUpper(f))
			b.WriteString(`</a> `)
		}
		toggle, label := "mode=batch", "Group by batch"
		if report.Mode == ModeBatch {
			toggle, label = "mode=unit", "Show units"
		}
		b.WriteString(`<a class="mode" href="/reports?` + toggle + `">` + label + `</a></p></header>`)

		if len(report.Rows) == 0 {
			b.WriteString(`<p class="empty">No stock matches the current filters.</p></section>`)
			_, err := io.WriteString(w, b.String())
			return err
		}

		b.WriteString(`<table><thead><tr>`)
		for _, c := range report.Columns {
			class := ""
			if c.Custom {
				class = ` class="custom"`
			}
			b.WriteString(`<th` + class + `>` + templ.EscapeString(c.Label) + `</th>`)
		}
		b.WriteString(`</tr></thead><tbody>`)
		for _, cells := range report.Rows {
			b.WriteString(`<tr>`)
			for _, v := range cells {
				switch {
				case v.IsSentinel():
					b.WriteString(`<td class="err">`)
				case v.IsNumber():
					b.WriteString(`<td class="num">`)
				default:
					b.WriteString(`<td>`)
				}
				b.WriteString(templ.EscapeString(v.String()))
				b.WriteString(`</td>`)
			}
			b.WriteString(`</tr>`)
		}
		b.WriteString(`</tbody></table></section>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
