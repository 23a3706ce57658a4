package web

import (
	"embed"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// FuncMap returns the helpers available to every template. markdown
// renders user text as sanitized HTML.
func FuncMap(markdown func(string) template.HTML) template.FuncMap {
	return template.FuncMap{
		"markdown": markdown,
		"datetime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.UTC().Format("02/01/2006 15:04 UTC")
		},
	}
}

// LoadTemplates parses the embedded page templates.
func LoadTemplates(funcs template.FuncMap) (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}
