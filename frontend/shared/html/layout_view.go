package html

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"stockroom/frontend/shared/nav"
)

// Layout wraps body in the page shell with the top navigation.
func Layout(title string, top nav.TopNavData, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!doctype html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`+
			templ.EscapeString(title)+
			`</title><link rel="stylesheet" href="/assets/app.css"></head><body>`); err != nil {
			return err
		}
		if err := nav.TopNav(top).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<main>`); err != nil {
			return err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</main>`+CSRFFormScript()+`</body></html>`)
		return err
	})
}
