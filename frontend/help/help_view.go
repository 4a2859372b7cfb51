package help

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

type PageData struct {
	IsAdmin  bool
	CanEdit  bool
	Username string
}

// HelpPage documents the range syntax and custom column formulas, plus the
// sections relevant to the caller's role.
func HelpPage(data PageData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<section class="help"><h1>Help</h1>`)

		b.WriteString(`<h2>Unit ranges</h2>` +
			`<p>A range lists unit numbers inside a batch, counted from 1. ` +
			`Separate entries with commas: <code>1-3, 5, 8-10</code>. ` +
			`Write pairs low to high: <code>5-3</code> is rejected.</p>` +
			`<p>Every number from 1 to the batch quantity must belong to exactly one location.</p>`)

		b.WriteString(`<h2>Custom report columns</h2><ul>` +
			`<li><strong>Static</strong> columns repeat one value on every row.</li>` +
			`<li><strong>Concatenation</strong> columns join other columns with a separator.</li>` +
			`<li><strong>Arithmetic</strong> columns compute a formula such as <code>(price + taxAmount) * quantity</code>. ` +
			`<code>Math.round</code>, <code>Math.max</code> and the other Math functions are available.</li>` +
			`</ul><p>Cells that cannot be computed show a marker such as <code>Err:Var</code> or <code>CycleErr</code>.</p>`)

		if data.CanEdit {
			b.WriteString(`<h2>Registering stock</h2>` +
				`<p>Register a batch against an invoice with its quantity and location ranges. ` +
				`Stock ids are built from volume, page and serial number, so the same page cannot be registered twice.</p>`)
		}
		if data.IsAdmin {
			b.WriteString(`<h2>Administration</h2>` +
				`<p>Admins manage users and roles, and can read the audit log. Changing a role signs the user out.</p>`)
		}

		b.WriteString(`<p class="muted">Signed in as ` + templ.EscapeString(data.Username) + `.</p></section>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
