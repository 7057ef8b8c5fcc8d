// Package web holds the embedded HTML templates and static assets.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses every page template with the shared layout
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"lower": strings.ToLower,
		"initial": func(s string) string {
			for _, r := range s {
				return strings.ToUpper(string(r))
			}
			return "?"
		},
	}).ParseFS(templatesFS, "templates/*.html")
}

// GetFileSystem returns the embedded static assets
func GetFileSystem() (http.FileSystem, error) {
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}
	return http.FS(static), nil
}
