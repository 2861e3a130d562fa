package downloader

import (
	"context"
	"image"
	"io"
	"time"

	"productimg/pkg/logger"
	"productimg/pkg/unsplash"
)

// Status is the outcome of one (category, term) pair
type Status string

const (
	// StatusSaved means a JPEG was written
	StatusSaved Status = "saved"
	// StatusNoImage means the API returned nothing usable for the term
	StatusNoImage Status = "no_image"
	// StatusFailed means the download, transform or write failed
	StatusFailed Status = "failed"
)

// Job is one unit of work: a search term and where its image goes
type Job struct {
	Category string
	Term     string
	Path     string
}

// Result describes what happened to a Job
type Result struct {
	Job      Job
	Status   Status
	Err      error
	Duration time.Duration
	Size     int64
	Width    int
	Height   int
	Photo    *unsplash.Photo
}

// OK reports whether the job produced an image
func (r Result) OK() bool {
	return r.Status == StatusSaved
}

// ImageFetcher downloads raw image bytes
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ImageTransformer decodes, resizes and encodes images
type ImageTransformer interface {
	Transform(data []byte) (image.Image, error)
	Encode(w io.Writer, img image.Image) error
}

// ImageStorage writes encoded images atomically
type ImageStorage interface {
	SaveImage(path string, encode func(w io.Writer) error) (int64, error)
}

// Processor runs the download, transform and save steps for one job at a time
type Processor struct {
	fetcher     ImageFetcher
	transformer ImageTransformer
	storage     ImageStorage
	logger      logger.Logger
}

// NewProcessor creates a new Processor
func NewProcessor(
	fetcher ImageFetcher,
	transformer ImageTransformer,
	storage ImageStorage,
	log logger.Logger,
) *Processor {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Processor{
		fetcher:     fetcher,
		transformer: transformer,
		storage:     storage,
		logger:      log,
	}
}

// Process downloads url and writes the transformed image to job.Path.
// Every failure is reported in the Result; nothing is written unless all
// steps succeed.
func (p *Processor) Process(ctx context.Context, job Job, url string) Result {
	start := time.Now()
	result := Result{
		Job:    job,
		Status: StatusFailed,
	}

	log := p.logger.WithFields(map[string]interface{}{
		"category": job.Category,
		"term":     job.Term,
	})
	log.DebugWithFields("Processing job", map[string]interface{}{
		"url":  url,
		"path": job.Path,
	})

	data, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		log.WithError(err).Error("Failed to download image")
		return result
	}

	img, err := p.transformer.Transform(data)
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		log.WithError(err).ErrorWithFields("Failed to transform image", map[string]interface{}{
			"size": len(data),
		})
		return result
	}

	size, err := p.storage.SaveImage(job.Path, func(w io.Writer) error {
		return p.transformer.Encode(w, img)
	})
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		log.WithError(err).ErrorWithFields("Failed to save image", map[string]interface{}{
			"path": job.Path,
		})
		return result
	}

	result.Status = StatusSaved
	result.Size = size
	result.Width = img.Bounds().Dx()
	result.Height = img.Bounds().Dy()
	result.Duration = time.Since(start)

	log.DebugWithFields("Job completed successfully", map[string]interface{}{
		"path":     job.Path,
		"size":     result.Size,
		"width":    result.Width,
		"height":   result.Height,
		"duration": result.Duration,
	})

	return result
}
