// Package pages renders the landing and admin documents. The markup carries
// the element ids and data-i18n keys the browser components bind to; the
// server renders it in the visitor's locale so the page reads correctly
// before the WebAssembly bundle loads.
package pages

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"finitefield.org/heara-web/internal/api"
	"finitefield.org/heara-web/internal/i18n"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Page names accepted by Render.
const (
	Landing = "landing"
	Admin   = "admin"
)

// DefaultAppPath is where the WebAssembly bundle is served.
const DefaultAppPath = "/app/"

var featureKeys = []string{"smart", "circuit", "temperature", "app"}

var adminColumns = []string{"date", "name", "email", "phone", "status", "actions"}

// PageData is the view model shared by both pages.
type PageData struct {
	Lang       string
	Dir        string
	Other      string
	TitleKey   string
	AppPath    string
	Year       int
	Alternates []string
	Features   []string
	Products   []api.Product
	Statuses   []api.LeadStatus
	Columns    []string
}

// Renderer executes the embedded templates against a dictionary bundle.
type Renderer struct {
	bundle  *i18n.Bundle
	tmpl    *template.Template
	appPath string
	now     func() time.Time
}

// Option customises a Renderer.
type Option func(*Renderer)

// WithAppPath sets the URL prefix of the WebAssembly bundle.
func WithAppPath(path string) Option {
	return func(r *Renderer) {
		if path = strings.TrimSpace(path); path != "" {
			if !strings.HasSuffix(path, "/") {
				path += "/"
			}
			r.appPath = path
		}
	}
}

// WithClock overrides the time source used for the footer year.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		if now != nil {
			r.now = now
		}
	}
}

// New parses the templates once.
func New(bundle *i18n.Bundle, opts ...Option) (*Renderer, error) {
	if bundle == nil {
		return nil, fmt.Errorf("pages: bundle is required")
	}
	r := &Renderer{bundle: bundle, appPath: DefaultAppPath, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	funcs := template.FuncMap{
		"t": bundle.T,
		"th": func(lang, key string) template.HTML {
			// Dictionary HTML is sanitised when the bundle loads.
			return template.HTML(bundle.HTML(lang, key))
		},
		"text":  bundle.Text,
		"upper": strings.ToUpper,
	}
	tmpl, err := template.New("_root").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("pages: parse templates: %w", err)
	}
	r.tmpl = tmpl
	return r, nil
}

// Data builds the view model for lang.
func (r *Renderer) Data(page, lang string) PageData {
	lang = r.bundle.Normalize(lang)
	data := PageData{
		Lang:       lang,
		Dir:        i18n.Direction(lang),
		Other:      r.bundle.Other(lang),
		TitleKey:   "meta.title",
		AppPath:    r.appPath,
		Year:       r.now().Year(),
		Alternates: r.bundle.Supported(),
	}
	switch page {
	case Admin:
		data.TitleKey = "meta.admin_title"
		data.Statuses = api.Statuses()
		data.Columns = adminColumns
	default:
		data.Features = featureKeys
	}
	return data
}

// Render executes page into w. Output is buffered so a template failure
// never leaves a half-written document.
func (r *Renderer) Render(w io.Writer, page string, data PageData) error {
	if page != Landing && page != Admin {
		return fmt.Errorf("pages: unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, page, data); err != nil {
		return fmt.Errorf("pages: render %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
