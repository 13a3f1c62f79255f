package templates

import (
	"embed"
	"html/template"
	"time"
)

//go:embed *.tmpl
var files embed.FS

var funcs = template.FuncMap{
	"datetime": func(t time.Time) string {
		return t.UTC().Format("Jan 2, 2006 15:04 MST")
	},
	"isChoice": func(selected *uint, id uint) bool {
		return selected != nil && *selected == id
	},
}

// Load parses every embedded page template
func Load() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(files, "*.tmpl")
}
