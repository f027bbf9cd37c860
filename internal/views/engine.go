// Package views holds the embedded HTML pages and their fiber template engine.
package views

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var templatesFS embed.FS

// Layout wraps every page; pages are inserted at {{embed}}.
const Layout = "layouts/main"

// New returns an html engine over the embedded templates. Page names are file
// names without extension, e.g. "database" or "layouts/main".
func New() *html.Engine {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		panic(err)
	}
	return html.NewFileSystem(http.FS(sub), ".html")
}
