package pages

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestRender(t *testing.T) {
	fsys := fstest.MapFS{
		"home.html": {Data: []byte(`<title>{{.Title}} | {{.SiteName}}</title>`)},
	}

	r := New(fsys, nil)

	out, err := r.Render("home.html", PageData{Title: "Home", SiteName: "Meridian Flight Academy"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.Contains(string(out), "Home | Meridian Flight Academy") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestRenderMissingTemplate(t *testing.T) {
	r := New(fstest.MapFS{}, nil)
	if _, err := r.Render("nope.html", PageData{}); err == nil {
		t.Fatal("expected error for missing template")
	}
}

func TestExistsAndInvalidate(t *testing.T) {
	fsys := fstest.MapFS{
		"contact.html": {Data: []byte(`contact`)},
	}

	r := New(fsys, nil)

	if !r.Exists("contact.html") {
		t.Fatal("existing template reported missing")
	}
	if r.Exists("404.html") {
		t.Fatal("missing template reported present")
	}

	if _, err := r.Render("contact.html", PageData{}); err != nil {
		t.Fatalf("render: %v", err)
	}

	// Swap content; the cache still serves the old parse until invalidated.
	fsys["contact.html"] = &fstest.MapFile{Data: []byte(`updated`)}

	out, _ := r.Render("contact.html", PageData{})
	if string(out) != "contact" {
		t.Fatalf("expected cached render, got %s", out)
	}

	r.Invalidate("contact.html")

	out, err := r.Render("contact.html", PageData{})
	if err != nil {
		t.Fatalf("render after invalidate: %v", err)
	}
	if string(out) != "updated" {
		t.Fatalf("expected fresh render, got %s", out)
	}
}
