package assets

import (
	"mime"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

func TestRegisteredMIMETypes(t *testing.T) {
	cases := map[string]string{
		".css":  "text/css; charset=utf-8",
		".js":   "application/javascript",
		".svg":  "image/svg+xml",
		".webp": "image/webp",
		".ico":  "image/x-icon",
	}

	for ext, want := range cases {
		if got := mime.TypeByExtension(ext); got != want {
			t.Errorf("TypeByExtension(%q) = %q, want %q", ext, got, want)
		}
	}
}

func TestNewEmbeddedRequiresManifest(t *testing.T) {
	if _, err := NewEmbedded(fstest.MapFS{}); err == nil {
		t.Fatal("expected error without manifest")
	}
}

func TestNewEmbedded(t *testing.T) {
	fsys := fstest.MapFS{
		"manifest.json": {Data: []byte(`{
  "generated_at": "2026-03-01T12:00:00Z",
  "files": {
    "static/app.css": {"path": "static/app.css", "sha256": "abc123", "size": 4, "mime": "text/css; charset=utf-8", "mod_time": "2026-02-28T00:00:00Z"}
  }
}`)},
		"static/app.css":  {Data: []byte("body")},
		"pages/home.html": {Data: []byte("<html></html>")},
	}

	src, err := NewEmbedded(fsys)
	if err != nil {
		t.Fatalf("new embedded: %v", err)
	}

	if src.Kind() != KindEmbedded {
		t.Fatal("wrong kind")
	}
	if !src.GeneratedAt.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("generated at not taken from manifest: %v", src.GeneratedAt)
	}
	if !src.PageExists("home.html") {
		t.Fatal("page should exist")
	}
	if src.PageExists("missing.html") {
		t.Fatal("missing page reported present")
	}

	cache := NewCache(src)
	asset, err := cache.Get("static/app.css")
	if err != nil {
		t.Fatalf("get asset: %v", err)
	}

	if asset.ETag != `"abc123"` {
		t.Fatalf("manifest etag not applied: %s", asset.ETag)
	}
	if asset.MIME != "text/css; charset=utf-8" {
		t.Fatalf("manifest mime not applied: %s", asset.MIME)
	}
	if asset.LastModified.IsZero() {
		t.Fatal("last modified missing")
	}
}

func TestDiskSourceAndComputedMetadata(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "static"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "static", "app.css"), []byte("body{margin:0}"), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := NewDisk(root)
	if err != nil {
		t.Fatalf("new disk: %v", err)
	}

	cache := NewCache(src)
	asset, err := cache.Get("static/app.css")
	if err != nil {
		t.Fatalf("get asset: %v", err)
	}

	if !strings.HasPrefix(asset.ETag, `"`) || len(asset.ETag) != 66 {
		t.Fatalf("expected quoted sha256 etag, got %s", asset.ETag)
	}
	if !strings.HasPrefix(asset.MIME, "text/css") {
		t.Fatalf("unexpected mime: %s", asset.MIME)
	}

	// Cached: rewriting the file does not change the served bytes until
	// invalidated.
	if err := os.WriteFile(filepath.Join(root, "static", "app.css"), []byte("body{margin:1px}"), 0o644); err != nil {
		t.Fatal(err)
	}

	again, _ := cache.Get("static/app.css")
	if string(again.Body) != "body{margin:0}" {
		t.Fatal("cache should serve the original bytes")
	}

	cache.Invalidate("static/app.css")
	fresh, err := cache.Get("static/app.css")
	if err != nil {
		t.Fatal(err)
	}
	if string(fresh.Body) != "body{margin:1px}" {
		t.Fatal("invalidate should force a re-read")
	}
}

func TestNewDiskRejectsFiles(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewDisk(f); err == nil {
		t.Fatal("expected error for non-directory root")
	}
}
