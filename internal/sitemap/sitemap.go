// Package sitemap renders the sitemap.xml document from the route table.
package sitemap

import (
	"encoding/xml"
	"errors"
	"net/url"
	"time"

	"github.com/meridianaero/flightsite/internal/config"
)

const namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ErrBaseURLRequired indicates Build was called without a base URL.
var ErrBaseURLRequired = errors.New("base URL is required")

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	XMLNS   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// Build generates the sitemap for routes, stamped with the generated time.
func Build(baseURL string, routes []config.Route, generated time.Time) ([]byte, error) {
	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	entries := make([]urlEntry, 0, len(routes))
	for _, rt := range routes {
		ref, err := url.Parse(rt.Path)
		if err != nil {
			return nil, err
		}

		entries = append(entries, urlEntry{
			Loc:     base.ResolveReference(ref).String(),
			LastMod: generated.UTC().Format(time.RFC3339),
		})
	}

	return xml.MarshalIndent(urlSet{XMLNS: namespace, URLs: entries}, "", "  ")
}
