package core

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// IconStore persists cached icon bytes on the local filesystem, one
// file per site keyed by the site identifier. Files are served publicly
// under IconPublicPrefix.
type IconStore struct {
	dir string
}

func NewIconStore(dir string) *IconStore {
	if dir == "" {
		dir = DefaultIconsDir
	}
	return &IconStore{dir: dir}
}

func (s *IconStore) Dir() string {
	return s.dir
}

// EnsureDir creates the cache directory if it does not exist yet. Every
// writing operation calls it, so there is no load-time side effect to
// order around.
func (s *IconStore) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create icon directory: %w", err)
	}
	return nil
}

// IconFileName returns the deterministic cache file name for a site, so
// repeated downloads overwrite rather than accumulate.
func IconFileName(siteID, ext string) string {
	if ext == "" {
		ext = "png"
	}
	return fmt.Sprintf("site-%s.%s", siteID, ext)
}

// IconPublicPath returns the URL path a site's cached icon is served at.
func IconPublicPath(siteID, ext string) string {
	return IconPublicPrefix + IconFileName(siteID, ext)
}

// FilePath returns the on-disk path for a site's cached icon.
func (s *IconStore) FilePath(siteID, ext string) string {
	return filepath.Join(s.dir, IconFileName(siteID, ext))
}

// Write streams r into the site's cache file, replacing any previous
// content, and returns the public path of the stored file.
func (s *IconStore) Write(siteID, ext string, r io.Reader) (string, error) {
	if err := s.EnsureDir(); err != nil {
		return "", err
	}

	path := s.FilePath(siteID, ext)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create icon file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write icon file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close icon file: %w", err)
	}
	return IconPublicPath(siteID, ext), nil
}

// localPath maps a public icon path (with or without a cache-bust query)
// back to a file inside the managed directory. Paths outside it map to "".
func (s *IconStore) localPath(publicPath string) string {
	p := publicPath
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	if !strings.HasPrefix(p, IconPublicPrefix) {
		return ""
	}
	name := filepath.Base(strings.TrimPrefix(p, IconPublicPrefix))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return ""
	}
	return filepath.Join(s.dir, name)
}

// Exists reports whether the file backing a public icon path is present
// on disk.
func (s *IconStore) Exists(publicPath string) bool {
	path := s.localPath(publicPath)
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Remove deletes the file backing a public icon path. A missing file or
// a path outside the managed directory is not an error.
func (s *IconStore) Remove(publicPath string) error {
	path := s.localPath(publicPath)
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove icon file: %w", err)
	}
	return nil
}
