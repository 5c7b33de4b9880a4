// Package errors carries the built-in 404/500 pages used when the site does
// not ship its own overrides.
package errors

import (
	"bytes"
	"html/template"

	"github.com/meridianaero/flightsite/internal/pages"
)

const default404Source = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>404 - Page Not Found</title>
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <meta name="robots" content="noindex">
  <link rel="stylesheet" href="/static/app.css">
</head>
<body>
  <main class="error-page">
    <h1>404</h1>
    <p class="lead">This page has flown off course.</p>
    <p>The page you&#39;re looking for doesn&#39;t exist or has been moved.</p>
    <a class="btn" href="/">Back to {{if .SiteName}}{{.SiteName}}{{else}}the homepage{{end}}</a>
  </main>
</body>
</html>
`

const default500Source = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>500 - Server Error</title>
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <meta name="robots" content="noindex">
  <link rel="stylesheet" href="/static/app.css">
</head>
<body>
  <main class="error-page">
    <h1>500</h1>
    <p class="lead">Something went wrong on our end.</p>
    <p>We apologize for the inconvenience. Please try again later.</p>
  </main>
</body>
</html>
`

const (
	fallback404 = `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>Page Not Found</title><meta name="robots" content="noindex"></head><body><h1>404 Not Found</h1><p>The requested page could not be found.</p></body></html>`
	fallback500 = `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>Server Error</title><meta name="robots" content="noindex"></head><body><h1>500 Internal Server Error</h1><p>Something went wrong.</p></body></html>`
)

var (
	default404Template = mustParse("404.html", default404Source)
	default500Template = mustParse("500.html", default500Source)
)

// Default404 renders the built-in 404 page.
func Default404(data pages.PageData) []byte {
	return render(default404Template, data, fallback404)
}

// Default500 renders the built-in 500 page.
func Default500(data pages.PageData) []byte {
	return render(default500Template, data, fallback500)
}

func render(tmpl *template.Template, data pages.PageData, fallback string) []byte {
	if tmpl == nil {
		return []byte(fallback)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return []byte(fallback)
	}

	return buf.Bytes()
}

func mustParse(name, src string) *template.Template {
	tmpl, err := template.New(name).Option("missingkey=zero").Parse(src)
	if err != nil {
		return nil
	}
	return tmpl
}
