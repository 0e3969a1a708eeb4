// Package views renders the console pages. Pages are html/template files exposed as
// templ components so handlers render every page the same way.
package views

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/a-h/templ"
	"github.com/user-admin/user-admin/internal/http/viewmodels"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = mustParsePages("login", "users")

func LoginPage(data viewmodels.LoginViewData) templ.Component {
	return page("login", data)
}

func UsersPage(data viewmodels.UsersViewData) templ.Component {
	return page("users", data)
}

func page(name string, data any) templ.Component {
	return templ.FromGoHTML(pages[name].Lookup("layout"), data)
}

func mustParsePages(names ...string) map[string]*template.Template {
	base := template.Must(template.New("base").Funcs(funcs).ParseFS(templateFS, "templates/layout.html"))
	out := make(map[string]*template.Template, len(names))
	for _, name := range names {
		clone := template.Must(base.Clone())
		out[name] = template.Must(clone.ParseFS(templateFS, fmt.Sprintf("templates/%s.html", name)))
	}
	return out
}
