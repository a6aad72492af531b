package main

import (
	"fmt"
	"html/template"
	"path/filepath"

	"go-live-preview/internal/render"
)

// newTemplateCache parses each page template together with layout.html.
func newTemplateCache(templatesDir string) (map[string]*template.Template, error) {
	cache := map[string]*template.Template{}

	pages := []string{
		"home.html",
		"node_page.html",
		"node_form.html",
	}

	for _, page := range pages {
		ts, err := template.New(page).Funcs(render.Funcs()).ParseFiles(filepath.Join(templatesDir, "layout.html"))
		if err != nil {
			return nil, fmt.Errorf("error parsing layout template: %w", err)
		}
		ts, err = ts.ParseFiles(filepath.Join(templatesDir, page))
		if err != nil {
			return nil, fmt.Errorf("error parsing page template %s: %w", page, err)
		}
		cache[page] = ts
	}
	return cache, nil
}
