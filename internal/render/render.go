// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the public site.
// Every page template is paired with the shared base layout; a few
// standalone templates carry their own document.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// ErrorData holds the values of the standalone error page.
type ErrorData struct {
	SiteName string
	Status   int
	Message  string
}

// Renderer handles template parsing and execution for public pages.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

// standaloneTemplates lists templates that render as full HTML pages
// without the base layout.
var standaloneTemplates = map[string]bool{
	"error": true,
}

// New creates a Renderer by parsing all templates from the embedded
// filesystem.
func New() (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		funcMap: template.FuncMap{
			"date": func(t time.Time) string {
				return t.Format("January 2, 2006")
			},
			"isoDate": func(t time.Time) string {
				return t.Format("2006-01-02")
			},
			"pageURL":   PageURL,
			"searchURL": SearchURL,
		},
	}

	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == "base.html" || !strings.HasSuffix(name, ".html") {
			continue
		}
		tmplName := strings.TrimSuffix(name, ".html")

		var tmpl *template.Template
		if standaloneTemplates[tmplName] {
			tmpl, err = template.New(name).Funcs(r.funcMap).ParseFS(templateFS, "templates/"+name)
		} else {
			tmpl, err = template.New("base.html").Funcs(r.funcMap).ParseFS(
				templateFS, "templates/base.html", "templates/"+name,
			)
		}
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[tmplName] = tmpl
	}

	return r, nil
}

// Has reports whether a template of that name was parsed.
func (rn *Renderer) Has(name string) bool {
	_, ok := rn.templates[name]
	return ok
}

// Render executes a template into w. Output is buffered first so a
// failing template never leaves a half-written page behind.
func (rn *Renderer) Render(w io.Writer, name string, data any) error {
	tmpl, ok := rn.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	execName := "base.html"
	if standaloneTemplates[name] {
		execName = name + ".html"
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, execName, data); err != nil {
		return fmt.Errorf("execute template %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// PageURL returns the address of page n of a paginated listing. Page 1 is
// the bare listing path.
func PageURL(path string, n int) string {
	if n <= 1 {
		return path
	}
	return path + "?page=" + strconv.Itoa(n)
}

// SearchURL returns the address of page n of the results for q.
func SearchURL(q string, n int) string {
	v := url.Values{"q": {q}}
	if n > 1 {
		v.Set("page", strconv.Itoa(n))
	}
	return "/search?" + v.Encode()
}
