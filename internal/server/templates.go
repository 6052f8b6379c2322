package server

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/Its-donkey/sharebox/internal/ui/state"
)

//go:embed templates/*.tmpl static/*
var embedded embed.FS

// loadTemplates parses each page together with the shared base layout.
func loadTemplates() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"limitLabel": state.LimitLabel,
	}

	templates := make(map[string]*template.Template)
	for _, page := range []string{"login", "index"} {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(embedded, "templates/base.tmpl", "templates/"+page+".tmpl")
		if err != nil {
			return nil, fmt.Errorf("parse %s templates: %w", page, err)
		}
		templates[page] = tmpl
	}
	return templates, nil
}

func staticHandler() http.Handler {
	sub, err := fs.Sub(embedded, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
