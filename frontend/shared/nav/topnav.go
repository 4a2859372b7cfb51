package nav

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"stockroom/models"
)

// Link is one entry of the top navigation.
type Link struct {
	Label string
	Href  string
}

// TopNavData is shared with page renderers.
type TopNavData struct {
	Username string
	Role     string
	Links    []Link
}

// pageLinks maps page privilege codes to their navigation entry, in display
// order.
var pageLinks = []struct {
	code string
	link Link
}{
	{code: "REPORTS_PAGE_VIEW", link: Link{Label: "Reports", Href: "/reports"}},
	{code: "HELP_PAGE_VIEW", link: Link{Label: "Help", Href: "/help"}},
}

// BuildTopNavData keeps the links whose privilege code is in permissions.
func BuildTopNavData(session models.Session) TopNavData {
	data := TopNavData{Username: session.User.Username, Role: session.User.Role}
	for _, pl := range pageLinks {
		if session.ScreenPermissions[pl.code] == 1 {
			data.Links = append(data.Links, pl.link)
		}
	}
	return data
}

func TopNav(data TopNavData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		out := `<nav class="topnav"><span class="brand">Stockroom</span>`
		for _, l := range data.Links {
			out += `<a href="` + templ.EscapeString(l.Href) + `">` + templ.EscapeString(l.Label) + `</a>`
		}
		out += `<span class="user">` + templ.EscapeString(data.Username) + ` (` + templ.EscapeString(data.Role) + `)</span>` +
			`<form method="post" action="/logout"><button type="submit">Log out</button></form></nav>`
		_, err := io.WriteString(w, out)
		return err
	})
}
