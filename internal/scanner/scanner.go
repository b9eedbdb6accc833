// Package scanner enumerates image files under a root directory.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// imageExts is the fixed set of recognized image file extensions.
var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
}

// IsImagePath reports whether path carries a recognized image extension.
// The comparison is case-insensitive.
func IsImagePath(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// NotFoundError reports a scan root that is missing or not a directory.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("folder not found at %s", e.Path)
}

// Scanner enumerates candidate image files on a filesystem.
type Scanner struct {
	fs  afero.Fs
	log *zap.Logger
}

// New returns a Scanner over the given filesystem. A nil logger disables
// diagnostics.
func New(fs afero.Fs, log *zap.Logger) *Scanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{fs: fs, log: log}
}

// Scan walks root recursively and returns the image files found, in
// traversal order. Entries that cannot be read (permissions, dangling
// symlinks) are skipped, not fatal. A missing or non-directory root is a
// *NotFoundError.
func (s *Scanner) Scan(root string) ([]string, error) {
	if err := s.checkRoot(root); err != nil {
		return nil, err
	}

	var candidates []string
	err := afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			s.log.Debug("skipping unreadable entry", zap.String("path", path), zap.Error(err))
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if IsImagePath(path) {
			candidates = append(candidates, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

// ScanShallow returns the image files that are immediate children of root,
// in directory order. Subdirectories are not descended into.
func (s *Scanner) ScanShallow(root string) ([]string, error) {
	if err := s.checkRoot(root); err != nil {
		return nil, err
	}

	entries, err := afero.ReadDir(s.fs, root)
	if err != nil {
		return nil, err
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() || !IsImagePath(entry.Name()) {
			continue
		}
		candidates = append(candidates, filepath.Join(root, entry.Name()))
	}
	return candidates, nil
}

func (s *Scanner) checkRoot(root string) error {
	info, err := s.fs.Stat(root)
	if err != nil || !info.IsDir() {
		return &NotFoundError{Path: root}
	}
	return nil
}
