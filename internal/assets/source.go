// Package assets abstracts where the site content comes from: the embedded
// build output in production, or the web/ directory on disk in dev mode.
package assets

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"time"
)

// Kind identifies the backing store of a Source.
type Kind int

const (
	// KindEmbedded serves from the packed, embedded filesystem.
	KindEmbedded Kind = iota
	// KindDisk serves straight from a directory (dev mode).
	KindDisk
)

// Source exposes the site content filesystem plus pack metadata when
// available.
type Source struct {
	FS          fs.FS
	Manifest    *Manifest
	GeneratedAt time.Time

	kind Kind
	root string
}

// NewEmbedded wraps the packed filesystem produced by cmd/pack. The pack
// manifest must be present.
func NewEmbedded(fsys fs.FS) (*Source, error) {
	if fsys == nil {
		return nil, errors.New("embedded filesystem is nil")
	}

	manifest, err := LoadManifest(fsys)
	if err != nil {
		return nil, err
	}

	generated := manifest.GeneratedAt
	if generated.IsZero() {
		generated = time.Now().UTC()
	}

	return &Source{
		FS:          fsys,
		Manifest:    manifest,
		GeneratedAt: generated,
		kind:        KindEmbedded,
	}, nil
}

// NewDisk wraps a directory on disk. No manifest is expected; metadata is
// derived per file.
func NewDisk(root string) (*Source, error) {
	if root == "" {
		return nil, errors.New("disk root is empty")
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("disk root must be a directory")
	}

	return &Source{
		FS:          os.DirFS(root),
		GeneratedAt: time.Now().UTC(),
		kind:        KindDisk,
		root:        root,
	}, nil
}

// Kind reports the backing store type.
func (s *Source) Kind() Kind {
	if s == nil {
		return KindDisk
	}
	return s.kind
}

// Sub returns the subtree rooted at dir.
func (s *Source) Sub(dir string) (fs.FS, error) {
	if s == nil || s.FS == nil {
		return nil, errors.New("source is nil")
	}
	return fs.Sub(s.FS, dir)
}

// Exists reports whether the slash-separated path is present.
func (s *Source) Exists(name string) bool {
	if s == nil || name == "" {
		return false
	}
	_, err := fs.Stat(s.FS, name)
	return err == nil
}

// PageExists reports whether the page file is present beneath pages/.
func (s *Source) PageExists(page string) bool {
	if page == "" {
		return false
	}
	return s.Exists(path.Join("pages", page))
}

// ModTime returns the best-effort modification time for a file.
func (s *Source) ModTime(name string) (time.Time, error) {
	if s == nil {
		return time.Time{}, errors.New("source is nil")
	}

	if s.Manifest != nil {
		if entry, ok := s.Manifest.Files[name]; ok && !entry.ModTime.IsZero() {
			return entry.ModTime.UTC(), nil
		}
	}

	info, err := fs.Stat(s.FS, name)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime().UTC(), nil
}
