// Package web holds the embedded application shell served behind the session gate.
package web

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"strings"
)

//go:embed templates/*
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Shell renders the single-page application shell.
type Shell struct {
	tmpl *template.Template
}

// PageData is passed to the shell template.
type PageData struct {
	Page          string
	Title         string
	Lang          string
	Authenticated bool
}

func NewShell() (*Shell, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/app.gohtml")
	if err != nil {
		return nil, err
	}
	return &Shell{tmpl: tmpl}, nil
}

// Render writes the shell for the page at path.
func (s *Shell) Render(w io.Writer, path string, authenticated bool) error {
	page := strings.Trim(path, "/")
	if i := strings.IndexByte(page, '/'); i >= 0 {
		page = page[:i]
	}
	if page == "" {
		page = "sale"
	}
	return s.tmpl.ExecuteTemplate(w, "app.gohtml", PageData{
		Page:          page,
		Title:         strings.ToUpper(page[:1]) + strings.ReplaceAll(page[1:], "-", " "),
		Lang:          "en",
		Authenticated: authenticated,
	})
}

// Static returns the embedded assets rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
