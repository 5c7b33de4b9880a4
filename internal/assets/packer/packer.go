// Package packer turns the web/ source tree into the embeddable build
// output: routed pages, every static asset those pages reference, a
// manifest with hashes for ETag handling, and the generated embed stub.
package packer

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/meridianaero/flightsite/internal/assets"
	"github.com/meridianaero/flightsite/internal/config"
)

// Run packs webDir into buildDir/public using the route table from
// configPath.
func Run(configPath, webDir, buildDir string) error {
	if configPath == "" {
		configPath = "config.json"
	}
	if webDir == "" {
		webDir = "web"
	}
	if buildDir == "" {
		buildDir = "build"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	pagesDir := filepath.Join(webDir, "pages")
	if err := cfg.Validate(func(name string) bool {
		_, err := os.Stat(filepath.Join(pagesDir, name))
		return err == nil
	}); err != nil {
		return err
	}

	publicDir := filepath.Join(buildDir, "public")
	if err := os.RemoveAll(publicDir); err != nil {
		return fmt.Errorf("clean build directory: %w", err)
	}
	if err := os.MkdirAll(publicDir, 0o755); err != nil {
		return fmt.Errorf("create build directory: %w", err)
	}

	manifest := assets.Manifest{
		GeneratedAt: time.Now().UTC(),
		Files:       make(map[string]assets.ManifestEntry),
	}

	staticRefs := make(map[string]struct{})

	for _, page := range pageList(cfg) {
		src := filepath.Join(pagesDir, page)

		info, err := os.Stat(src)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				// Optional error-page overrides may be absent.
				continue
			}
			return fmt.Errorf("stat page %s: %w", page, err)
		}

		data, err := os.ReadFile(src)
		if err != nil {
			return fmt.Errorf("read page %s: %w", page, err)
		}

		rel := filepath.ToSlash(filepath.Join("pages", page))
		if err := writeFile(filepath.Join(publicDir, "pages", page), data); err != nil {
			return err
		}
		addEntry(&manifest, rel, data, info.ModTime().UTC())

		for _, ref := range staticReferences(data) {
			staticRefs[ref] = struct{}{}
		}
	}

	for ref := range staticRefs {
		src := filepath.Join(webDir, filepath.FromSlash(ref))

		info, err := os.Stat(src)
		if err != nil {
			return fmt.Errorf("stat asset %s: %w", ref, err)
		}

		data, err := os.ReadFile(src)
		if err != nil {
			return fmt.Errorf("read asset %s: %w", ref, err)
		}

		if err := writeFile(filepath.Join(publicDir, filepath.FromSlash(ref)), data); err != nil {
			return err
		}
		addEntry(&manifest, ref, data, info.ModTime().UTC())
	}

	if err := writeManifest(filepath.Join(publicDir, assets.ManifestFilename), &manifest); err != nil {
		return err
	}

	confData, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("read config for embedding: %w", err)
	}
	if err := writeFile(filepath.Join(publicDir, "config.json"), confData); err != nil {
		return err
	}

	return writeEmbedStub(buildDir)
}

func pageList(cfg *config.Config) []string {
	set := make(map[string]struct{})
	for _, rt := range cfg.Routes {
		if rt.Page != "" {
			set[rt.Page] = struct{}{}
		}
	}

	// Error-page overrides travel with the pack when present.
	set["404.html"] = struct{}{}
	set["500.html"] = struct{}{}

	pages := make([]string, 0, len(set))
	for page := range set {
		pages = append(pages, page)
	}
	sort.Strings(pages)

	return pages
}

// staticReferences parses a page and collects every local /static asset it
// links, embeds or preloads.
func staticReferences(page []byte) []string {
	node, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil
	}

	refs := make(map[string]struct{})

	add := func(raw string) {
		if normalized, ok := normalizeRef(raw); ok {
			refs[normalized] = struct{}{}
		}
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "link":
				add(attr(n, "href"))
			case "script", "img", "source", "video", "audio", "iframe":
				add(attr(n, "src"))
				add(attr(n, "poster"))
				for _, candidate := range srcsetRefs(attr(n, "srcset")) {
					add(candidate)
				}
			case "meta":
				prop := strings.ToLower(attr(n, "property"))
				if prop == "og:image" || prop == "twitter:image" {
					add(attr(n, "content"))
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)

	out := make([]string, 0, len(refs))
	for ref := range refs {
		out = append(out, ref)
	}
	sort.Strings(out)

	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func srcsetRefs(srcset string) []string {
	if srcset == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(srcset, ",") {
		fields := strings.Fields(strings.TrimSpace(part))
		if len(fields) > 0 {
			out = append(out, fields[0])
		}
	}
	return out
}

// normalizeRef reduces a reference to a slash path under static/, rejecting
// external, inline and fragment references.
func normalizeRef(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") {
		return "", false
	}

	lower := strings.ToLower(ref)
	for _, prefix := range []string{"http://", "https://", "//", "data:", "mailto:", "tel:"} {
		if strings.HasPrefix(lower, prefix) {
			return "", false
		}
	}

	if idx := strings.IndexAny(ref, "?#"); idx >= 0 {
		ref = ref[:idx]
	}

	ref = strings.TrimPrefix(ref, "/")
	ref = strings.TrimPrefix(ref, "./")
	for strings.HasPrefix(ref, "../") {
		ref = strings.TrimPrefix(ref, "../")
	}

	ref = filepath.ToSlash(ref)
	if !strings.HasPrefix(ref, "static/") {
		return "", false
	}

	return ref, true
}

func addEntry(manifest *assets.Manifest, rel string, data []byte, modTime time.Time) {
	sum := sha256.Sum256(data)

	manifest.Files[rel] = assets.ManifestEntry{
		Path:    rel,
		SHA256:  hex.EncodeToString(sum[:]),
		Size:    int64(len(data)),
		MIME:    packMIME(rel),
		ModTime: modTime,
	}
}

func packMIME(rel string) string {
	ext := strings.ToLower(filepath.Ext(rel))
	if ext == ".html" || ext == ".htm" {
		return "text/html; charset=utf-8"
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return mt
	}
	return "application/octet-stream"
}

func writeFile(dst string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", dst, err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return nil
}

func writeManifest(path string, manifest *assets.Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

func writeEmbedStub(buildDir string) error {
	const stub = `// Code generated by cmd/pack. DO NOT EDIT.

package build

import "embed"

//go:embed all:public
var FS embed.FS
`
	return writeFile(filepath.Join(buildDir, "embedded.go"), []byte(stub))
}
