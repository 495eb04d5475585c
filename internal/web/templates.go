package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

// views holds the parsed page templates, each paired with the shared
// layout.
type views struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

func newViews(logger *slog.Logger) (*views, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{"signin", "signup", "dashboard", "reservations", "notfound"} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return &views{pages: pages, logger: logger}, nil
}

// render writes a page. Template failures at this point are programming
// errors; the body may be partially written, so just log.
func (v *views) render(w io.Writer, name string, data any) {
	t, ok := v.pages[name]
	if !ok {
		v.logger.Error("unknown template", "name", name)
		return
	}
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		v.logger.Error("template render failed", "name", name, "error", err)
	}
}

func (v *views) renderPage(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	v.render(w, name, data)
}
