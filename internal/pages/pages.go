// Package pages renders the site's HTML templates with a small shared data
// contract. Parsed templates are cached; dev mode invalidates per file.
package pages

import (
	"bytes"
	"html/template"
	"io/fs"
	"sync"
)

// PageData is the context every page template receives.
type PageData struct {
	Title     string
	SiteName  string
	BaseURL   string
	RoutePath string
	Year      int
	Extra     map[string]any
}

// Renderer parses and executes page templates from a filesystem.
type Renderer struct {
	fs    fs.FS
	funcs template.FuncMap
	cache sync.Map // name -> *template.Template
}

// New constructs a Renderer over fsys.
func New(fsys fs.FS, funcs template.FuncMap) *Renderer {
	if funcs == nil {
		funcs = template.FuncMap{}
	}
	return &Renderer{fs: fsys, funcs: funcs}
}

// Render executes the named template with data.
func (r *Renderer) Render(name string, data PageData) ([]byte, error) {
	tmpl, err := r.template(name)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Exists reports whether the template file is present.
func (r *Renderer) Exists(name string) bool {
	if r == nil || name == "" {
		return false
	}
	_, err := fs.Stat(r.fs, name)
	return err == nil
}

// Invalidate evicts a parsed template, forcing a re-read on next render.
func (r *Renderer) Invalidate(name string) {
	if r == nil || name == "" {
		return
	}
	r.cache.Delete(name)
}

func (r *Renderer) template(name string) (*template.Template, error) {
	if r == nil {
		return nil, fs.ErrNotExist
	}

	if v, ok := r.cache.Load(name); ok {
		return v.(*template.Template), nil
	}

	src, err := fs.ReadFile(r.fs, name)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New(name).
		Funcs(r.funcs).
		Option("missingkey=zero").
		Parse(string(src))
	if err != nil {
		return nil, err
	}

	r.cache.Store(name, tmpl)
	return tmpl, nil
}
