package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	apperrors "productimg/pkg/errors"
)

// ImageExt is the extension of every saved image
const ImageExt = ".jpg"

// FileName converts a search term to its output file name.
// Spaces become underscores; nothing else is changed.
func FileName(term string) string {
	return strings.ReplaceAll(term, " ", "_") + ImageExt
}

// CategoryDir returns the directory holding a category's images
func CategoryDir(baseDir, category string) string {
	return filepath.Join(baseDir, category)
}

// ImagePath returns the output path for a (category, term) pair
func ImagePath(baseDir, category, term string) string {
	return filepath.Join(CategoryDir(baseDir, category), FileName(term))
}

// EnsureCategoryDirs creates baseDir/<category> for every category.
// Existing directories are left as they are.
func EnsureCategoryDirs(baseDir string, categories []string) error {
	for _, category := range categories {
		dir := CategoryDir(baseDir, category)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return apperrors.Wrap(apperrors.ErrorTypeFilesystem, err,
				fmt.Sprintf("failed to create directory %s", dir))
		}
	}
	return nil
}

// Manager handles atomic image writes under a base directory
type Manager struct {
	baseDir string
}

// NewManager creates the category directories and returns a Manager for them
func NewManager(baseDir string, categories []string) (*Manager, error) {
	if err := EnsureCategoryDirs(baseDir, categories); err != nil {
		return nil, err
	}

	return &Manager{baseDir: baseDir}, nil
}

// SaveImage writes the output of encode to path atomically.
// Data goes to path+".tmp" first, is synced, then renamed over path.
// On any failure the temp file is removed and path is left untouched.
func (m *Manager) SaveImage(path string, encode func(w io.Writer) error) (int64, error) {
	tempFile := path + ".tmp"
	out, err := os.OpenFile(tempFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrorTypeFilesystem, err, "failed to create temporary file")
	}

	counter := &countingWriter{w: out}
	bw := bufio.NewWriter(counter)

	if err := encode(bw); err != nil {
		out.Close()
		os.Remove(tempFile)
		return 0, err
	}
	if err := bw.Flush(); err != nil {
		out.Close()
		os.Remove(tempFile)
		return 0, apperrors.Wrap(apperrors.ErrorTypeFilesystem, err, "failed to write image data")
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(tempFile)
		return 0, apperrors.Wrap(apperrors.ErrorTypeFilesystem, err, "failed to sync file")
	}
	if err := out.Close(); err != nil {
		os.Remove(tempFile)
		return 0, apperrors.Wrap(apperrors.ErrorTypeFilesystem, err, "failed to close file")
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return 0, apperrors.Wrap(apperrors.ErrorTypeFilesystem, err, "failed to rename temporary file")
	}

	return counter.n, nil
}

// GetBaseDir returns the output base directory
func (m *Manager) GetBaseDir() string {
	return m.baseDir
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
