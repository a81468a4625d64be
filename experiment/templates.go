package experiment

import (
	"embed"
	"fmt"
	"html/template"
	"path/filepath"
)

// PageTemplate is the template rendered for GET /.
const PageTemplate = "go_no_go.tmpl"

//go:embed templates/*.tmpl
var embedded embed.FS

// loadTemplates parses the *.tmpl files in viewsDir, or the embedded
// templates when viewsDir is empty.
func loadTemplates(viewsDir string) (*template.Template, error) {
	if viewsDir == "" {
		return template.ParseFS(embedded, "templates/*.tmpl")
	}
	t, err := template.ParseGlob(filepath.Join(viewsDir, "*.tmpl"))
	if err != nil {
		return nil, fmt.Errorf("load views from %s: %w", viewsDir, err)
	}
	if t.Lookup(PageTemplate) == nil {
		return nil, fmt.Errorf("views dir %s has no %s", viewsDir, PageTemplate)
	}
	return t, nil
}
