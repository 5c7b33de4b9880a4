// Package router is a small mux with exact and prefix matching plus a
// configurable fallback, which net/http's ServeMux makes awkward when the
// 404 page is custom.
package router

import (
	"net/http"
	"strings"
)

// Mux dispatches requests by exact path first, then by registered prefixes,
// and finally to the fallback handler.
type Mux struct {
	exact    map[string]http.Handler
	prefixes []prefixRoute
	fallback http.Handler
}

type prefixRoute struct {
	prefix  string
	handler http.Handler
}

// New returns an empty Mux.
func New() *Mux {
	return &Mux{exact: make(map[string]http.Handler)}
}

// Handle registers an exact path match. Empty paths and nil handlers are
// ignored.
func (m *Mux) Handle(path string, handler http.Handler) {
	if path == "" || handler == nil {
		return
	}
	m.exact[path] = handler
}

// HandleFunc registers an exact path match via a function.
func (m *Mux) HandleFunc(path string, fn http.HandlerFunc) {
	if fn == nil {
		return
	}
	m.Handle(path, fn)
}

// HandlePrefix registers a prefix match, e.g. for static assets. Prefixes
// are tried in registration order.
func (m *Mux) HandlePrefix(prefix string, handler http.Handler) {
	if prefix == "" || handler == nil {
		return
	}
	m.prefixes = append(m.prefixes, prefixRoute{prefix: prefix, handler: handler})
}

// NotFound sets the fallback handler.
func (m *Mux) NotFound(handler http.Handler) {
	m.fallback = handler
}

// ServeHTTP implements http.Handler.
func (m *Mux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if handler, ok := m.exact[r.URL.Path]; ok {
		handler.ServeHTTP(w, r)
		return
	}

	for _, pr := range m.prefixes {
		if strings.HasPrefix(r.URL.Path, pr.prefix) {
			pr.handler.ServeHTTP(w, r)
			return
		}
	}

	if m.fallback != nil {
		m.fallback.ServeHTTP(w, r)
		return
	}

	http.NotFound(w, r)
}
