package login

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"stockroom/frontend/shared/html"
)

// GetLoginScreen renders the sign-in form, with errorMessage above it when
// set.
func GetLoginScreen(errorMessage string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		page := `<!doctype html><html lang="en"><head><meta charset="utf-8"><title>Sign in | Stockroom</title>` +
			`<link rel="stylesheet" href="/assets/app.css"></head><body class="login"><main><h1>Stockroom</h1>`
		if errorMessage != "" {
			page += `<p class="error" role="alert">` + templ.EscapeString(errorMessage) + `</p>`
		}
		page += `<form method="post" action="/login">` +
			`<label>Username <input name="username" autocomplete="username" required></label>` +
			`<label>Password <input name="password" type="password" autocomplete="current-password" required></label>` +
			`<button type="submit">Sign in</button></form></main>` + html.CSRFFormScript() + `</body></html>`
		_, err := io.WriteString(w, page)
		return err
	})
}
