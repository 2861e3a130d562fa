package downloader

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "productimg/pkg/errors"
	"productimg/pkg/logger"
	"productimg/pkg/storage"
	"productimg/pkg/transform"
)

// mockFetcher returns canned bytes or an error
type mockFetcher struct {
	data  []byte
	err   error
	calls []string
}

func (m *mockFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	m.calls = append(m.calls, url)
	if m.err != nil {
		return nil, m.err
	}
	return m.data, nil
}

// failingStorage always fails to write
type failingStorage struct{}

func (failingStorage) SaveImage(path string, encode func(w io.Writer) error) (int64, error) {
	return 0, apperrors.New(apperrors.ErrorTypeFilesystem, 0, "disk full")
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func newTestProcessor(t *testing.T, fetcher ImageFetcher, store ImageStorage) (*Processor, *logger.TestLogger) {
	t.Helper()
	log := logger.NewTestLogger()
	tp, err := transform.NewProcessor(transform.DefaultOptions(), log)
	require.NoError(t, err)
	return NewProcessor(fetcher, tp, store, log), log
}

func newStorage(t *testing.T, categories ...string) (*storage.Manager, string) {
	t.Helper()
	base := t.TempDir()
	m, err := storage.NewManager(base, categories)
	require.NoError(t, err)
	return m, base
}

func TestProcessSaved(t *testing.T) {
	store, base := newStorage(t, "food")
	fetcher := &mockFetcher{data: pngBytes(t, 2000, 1200)}
	p, _ := newTestProcessor(t, fetcher, store)

	job := Job{Category: "food", Term: "dog food", Path: storage.ImagePath(base, "food", "dog food")}
	result := p.Process(context.Background(), job, "https://images.example/dog.png")

	require.NoError(t, result.Err)
	assert.Equal(t, StatusSaved, result.Status)
	assert.True(t, result.OK())
	assert.Equal(t, 800, result.Width)
	assert.Equal(t, 480, result.Height)
	assert.Positive(t, result.Size)
	assert.Equal(t, []string{"https://images.example/dog.png"}, fetcher.calls)

	f, err := os.Open(job.Path)
	require.NoError(t, err)
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 480, cfg.Height)
}

func TestProcessDownloadFailure(t *testing.T) {
	store, base := newStorage(t, "toys")
	fetcher := &mockFetcher{err: apperrors.New(apperrors.ErrorTypeStatus, 503, "unavailable")}
	p, log := newTestProcessor(t, fetcher, store)

	job := Job{Category: "toys", Term: "cat toys", Path: storage.ImagePath(base, "toys", "cat toys")}
	result := p.Process(context.Background(), job, "https://images.example/cat.png")

	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, apperrors.ErrorTypeStatus, apperrors.TypeOf(result.Err))
	assert.NoFileExists(t, job.Path)
	assert.True(t, log.HasMessage("error", "Failed to download image"))
}

func TestProcessCorruptImage(t *testing.T) {
	store, base := newStorage(t, "housing")
	fetcher := &mockFetcher{data: []byte("definitely not a jpeg")}
	p, _ := newTestProcessor(t, fetcher, store)

	job := Job{Category: "housing", Term: "dog bed", Path: storage.ImagePath(base, "housing", "dog bed")}
	result := p.Process(context.Background(), job, "https://images.example/bed.jpg")

	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, apperrors.ErrorTypeDecode, apperrors.TypeOf(result.Err))

	entries, err := os.ReadDir(filepath.Join(base, "housing"))
	require.NoError(t, err)
	assert.Empty(t, entries, "no partial or temp file is left behind")
}

func TestProcessSaveFailure(t *testing.T) {
	fetcher := &mockFetcher{data: pngBytes(t, 100, 100)}
	p, _ := newTestProcessor(t, fetcher, failingStorage{})

	result := p.Process(context.Background(), Job{Category: "grooming", Term: "dog shampoo", Path: "unused"}, "u")

	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, apperrors.ErrorTypeFilesystem, apperrors.TypeOf(result.Err))
	assert.Zero(t, result.Size)
}

func TestProcessCancelled(t *testing.T) {
	store, base := newStorage(t, "food")
	fetcher := &mockFetcher{err: context.Canceled}
	p, _ := newTestProcessor(t, fetcher, store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := p.Process(ctx, Job{Category: "food", Term: "cat food", Path: storage.ImagePath(base, "food", "cat food")}, "u")
	assert.Equal(t, StatusFailed, result.Status)
	assert.True(t, errors.Is(result.Err, context.Canceled))
}
