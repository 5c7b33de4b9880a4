package assets

import "mime"

// The system mime table varies across hosts; register the extensions the
// site ships so responses stay deterministic.
func init() {
	types := map[string]string{
		".css":  "text/css; charset=utf-8",
		".js":   "application/javascript",
		".svg":  "image/svg+xml",
		".webp": "image/webp",
		".ico":  "image/x-icon",
	}

	for ext, mt := range types {
		_ = mime.AddExtensionType(ext, mt)
	}
}
