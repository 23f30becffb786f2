// Package views holds the HTML templates of the calls pages.
package views

import (
	"embed"
	"html/template"

	"phonecalls/internal/services"
)

//go:embed templates/*.html
var files embed.FS

const (
	CallsList  = "calls_list.html"
	CallDetail = "call_detail.html"
)

var funcs = template.FuncMap{
	"pageHref": services.CallsListPath,
	"directionIcon": func(icon string) string {
		if icon == services.IconDiagonalDown {
			return "↙"
		}
		return "↗"
	},
}

// Load parses all templates; the result is meant for gin's SetHTMLTemplate.
func Load() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(files, "templates/*.html")
}
