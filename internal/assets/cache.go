package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"
)

// Asset is the cached representation of a static file.
type Asset struct {
	Path         string
	Body         []byte
	ETag         string
	LastModified time.Time
	MIME         string
	Size         int64
}

// Cache lazily reads static files and keeps them in memory with resolved
// ETag, modification time and MIME type.
type Cache struct {
	source *Source
	assets sync.Map // path -> *Asset
}

// NewCache constructs a Cache over src.
func NewCache(src *Source) *Cache {
	return &Cache{source: src}
}

// Get returns the asset at the slash-separated path, reading and caching it
// on first use.
func (c *Cache) Get(assetPath string) (*Asset, error) {
	if c == nil || c.source == nil {
		return nil, errors.New("cache is nil")
	}
	if assetPath == "" {
		return nil, errors.New("path is empty")
	}

	if v, ok := c.assets.Load(assetPath); ok {
		return v.(*Asset), nil
	}

	body, err := fs.ReadFile(c.source.FS, assetPath)
	if err != nil {
		return nil, err
	}

	asset := &Asset{
		Path: assetPath,
		Body: body,
		Size: int64(len(body)),
	}

	if c.source.Manifest != nil {
		if entry, ok := c.source.Manifest.Files[assetPath]; ok {
			asset.ETag = quoteETag(entry.SHA256)
			asset.MIME = entry.MIME
			if !entry.ModTime.IsZero() {
				asset.LastModified = entry.ModTime.UTC()
			}
		}
	}

	if asset.ETag == "" {
		asset.ETag = strongETag(body)
	}
	if asset.LastModified.IsZero() {
		if mt, err := c.source.ModTime(assetPath); err == nil {
			asset.LastModified = mt
		} else {
			asset.LastModified = c.source.GeneratedAt
		}
	}
	if asset.MIME == "" {
		asset.MIME = resolveMIME(assetPath, body)
	}

	c.assets.Store(assetPath, asset)

	return asset, nil
}

// Invalidate evicts one asset, used by dev mode on file change.
func (c *Cache) Invalidate(assetPath string) {
	if c == nil || assetPath == "" {
		return
	}
	c.assets.Delete(assetPath)
}

func strongETag(body []byte) string {
	sum := sha256.Sum256(body)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

func quoteETag(hash string) string {
	if hash == "" {
		return ""
	}
	if strings.HasPrefix(hash, `"`) {
		return hash
	}
	return `"` + hash + `"`
}

func resolveMIME(assetPath string, body []byte) string {
	ext := strings.ToLower(path.Ext(assetPath))
	if mt := mime.TypeByExtension(ext); mt != "" {
		return mt
	}
	if mt := fallbackMIME(ext); mt != "" && mt != "application/octet-stream" {
		return mt
	}
	return http.DetectContentType(body)
}

func fallbackMIME(ext string) string {
	switch ext {
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	case ".js", ".mjs":
		return "application/javascript"
	case ".json", ".map":
		return "application/json"
	case ".svg":
		return "image/svg+xml"
	case ".xml":
		return "application/xml"
	case ".txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
