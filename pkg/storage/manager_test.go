package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "productimg/pkg/errors"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		term     string
		expected string
	}{
		{"dog food", "dog_food.jpg"},
		{"pet grooming brush", "pet_grooming_brush.jpg"},
		{"collar", "collar.jpg"},
		{"Dog-Bed", "Dog-Bed.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			assert.Equal(t, tt.expected, FileName(tt.term))
		})
	}
}

func TestImagePath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("assets", "images", "products", "food", "dog_food.jpg"),
		ImagePath(filepath.Join("assets", "images", "products"), "food", "dog food"))
}

func TestEnsureCategoryDirs(t *testing.T) {
	base := filepath.Join(t.TempDir(), "products")
	categories := []string{"food", "toys", "accessories"}

	require.NoError(t, EnsureCategoryDirs(base, categories))
	for _, c := range categories {
		info, err := os.Stat(filepath.Join(base, c))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	// existing content survives a second call
	marker := filepath.Join(base, "food", "keep.jpg")
	require.NoError(t, os.WriteFile(marker, []byte("x"), 0644))
	require.NoError(t, EnsureCategoryDirs(base, categories))
	assert.FileExists(t, marker)
}

func TestEnsureCategoryDirsFailure(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "food")
	require.NoError(t, os.WriteFile(blocker, []byte("not a dir"), 0644))

	err := EnsureCategoryDirs(base, []string{"food"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeFilesystem, apperrors.TypeOf(err))
	assert.True(t, apperrors.IsFatal(err))
}

func TestSaveImage(t *testing.T) {
	base := t.TempDir()
	manager, err := NewManager(base, []string{"food"})
	require.NoError(t, err)

	path := ImagePath(base, "food", "dog food")
	assert.NoFileExists(t, path)
	assert.Equal(t, base, manager.GetBaseDir())

	n, err := manager.SaveImage(path, func(w io.Writer) error {
		_, err := w.Write([]byte("first"))
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.FileExists(t, path)
	assert.NoFileExists(t, path+".tmp")

	// rerun overwrites
	_, err = manager.SaveImage(path, func(w io.Writer) error {
		_, err := w.Write([]byte("second"))
		return err
	})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))
}

func TestSaveImageEncodeFailure(t *testing.T) {
	base := t.TempDir()
	manager, err := NewManager(base, []string{"food"})
	require.NoError(t, err)

	path := ImagePath(base, "food", "cat food")
	encodeErr := errors.New("encoder exploded")

	_, err = manager.SaveImage(path, func(w io.Writer) error {
		w.Write([]byte("partial"))
		return encodeErr
	})
	require.ErrorIs(t, err, encodeErr)
	assert.NoFileExists(t, path)
	assert.NoFileExists(t, path+".tmp")
}

func TestSaveImageFailureKeepsPrevious(t *testing.T) {
	base := t.TempDir()
	manager, err := NewManager(base, []string{"toys"})
	require.NoError(t, err)

	path := ImagePath(base, "toys", "dog toys")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0644))

	_, err = manager.SaveImage(path, func(w io.Writer) error {
		return errors.New("decode failed")
	})
	require.Error(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(content))
}

func TestSaveImageMissingDirectory(t *testing.T) {
	base := t.TempDir()
	manager, err := NewManager(base, nil)
	require.NoError(t, err)

	_, err = manager.SaveImage(filepath.Join(base, "missing", "x.jpg"), func(w io.Writer) error { return nil })
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeFilesystem, apperrors.TypeOf(err))
}
