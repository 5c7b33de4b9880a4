package assets

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"time"
)

// ManifestFilename is the metadata file emitted by the packer at the root
// of the packed tree.
const ManifestFilename = "manifest.json"

// ManifestEntry describes one packed file.
type ManifestEntry struct {
	Path    string    `json:"path"`
	SHA256  string    `json:"sha256"`
	Size    int64     `json:"size"`
	MIME    string    `json:"mime"`
	ModTime time.Time `json:"mod_time"`
}

// Manifest captures pack metadata used for ETag and cache handling.
type Manifest struct {
	GeneratedAt time.Time                `json:"generated_at"`
	Files       map[string]ManifestEntry `json:"files"`
}

// LoadManifest reads and parses the manifest from fsys.
func LoadManifest(fsys fs.FS) (*Manifest, error) {
	if fsys == nil {
		return nil, errors.New("nil filesystem")
	}

	data, err := fs.ReadFile(fsys, ManifestFilename)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	if manifest.Files == nil {
		manifest.Files = make(map[string]ManifestEntry)
	}

	return &manifest, nil
}
