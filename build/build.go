// Package build exposes the packed site content embedded at compile time.
// The public/ tree and embedded.go are produced by cmd/pack.
package build

import (
	"io/fs"
)

// Public returns the packed content tree: pages/, static/, manifest.json
// and config.json.
func Public() (fs.FS, error) {
	return fs.Sub(FS, "public")
}

// EmbeddedConfig returns the site configuration captured at pack time. It
// serves as the fallback when no config file is present at runtime.
func EmbeddedConfig() ([]byte, error) {
	return FS.ReadFile("public/config.json")
}
