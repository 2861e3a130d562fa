package fetcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"productimg/internal/downloader"
	"productimg/pkg/config"
	apperrors "productimg/pkg/errors"
	"productimg/pkg/logger"
	"productimg/pkg/metadata"
	"productimg/pkg/ratelimit"
	"productimg/pkg/storage"
	"productimg/pkg/transform"
	"productimg/pkg/unsplash"
)

// PhotoSource finds a candidate photo for a search term and is told
// when one was actually used
type PhotoSource interface {
	RandomPhoto(ctx context.Context, query string) (*unsplash.Photo, error)
	TrackDownload(ctx context.Context, photo *unsplash.Photo) error
}

// ItemProcessor downloads and stores the image for one job
type ItemProcessor interface {
	Process(ctx context.Context, job downloader.Job, url string) downloader.Result
}

// Progress receives per-item updates for terminal display
type Progress interface {
	StartItem(category, term string)
	CompleteItem(path string, size int64, width, height int)
	SkipItem(reason string)
	FailItem(err error)
	Complete()
}

// Summary is the outcome of one run
type Summary struct {
	RunID     string
	StartedAt time.Time
	EndedAt   time.Time
	Results   []downloader.Result
	Saved     int
	Skipped   int
	Failed    int
	Cancelled bool
}

// Total returns the number of processed items
func (s *Summary) Total() int {
	return len(s.Results)
}

// Duration returns the wall time of the run
func (s *Summary) Duration() time.Duration {
	return s.EndedAt.Sub(s.StartedAt)
}

func (s *Summary) add(r downloader.Result) {
	s.Results = append(s.Results, r)
	switch {
	case r.OK():
		s.Saved++
	case r.Status == downloader.StatusNoImage:
		s.Skipped++
	default:
		s.Failed++
	}
}

// Fetcher drives the category table through the source and the pipeline
type Fetcher struct {
	config      *config.Config
	source      PhotoSource
	processor   ItemProcessor
	transformer *transform.Processor
	limiter     ratelimit.Limiter
	progress    Progress
	logger      logger.Logger
	dryRun      bool
}

// Option customizes a Fetcher
type Option func(*Fetcher)

// WithSource replaces the Unsplash client
func WithSource(src PhotoSource) Option {
	return func(f *Fetcher) { f.source = src }
}

// WithProcessor replaces the download pipeline
func WithProcessor(p ItemProcessor) Option {
	return func(f *Fetcher) { f.processor = p }
}

// WithLimiter replaces the hourly request budget
func WithLimiter(l ratelimit.Limiter) Option {
	return func(f *Fetcher) { f.limiter = l }
}

// WithProgress attaches a terminal progress display
func WithProgress(p Progress) Option {
	return func(f *Fetcher) { f.progress = p }
}

// WithDryRun logs the plan without touching the network or the image files
func WithDryRun(dryRun bool) Option {
	return func(f *Fetcher) { f.dryRun = dryRun }
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// New wires a Fetcher from cfg. Components not supplied through options
// are built from the configuration; invalid image settings are reported
// here, before anything touches the filesystem.
func New(cfg *config.Config, opts ...Option) (*Fetcher, error) {
	f := &Fetcher{config: cfg}
	for _, opt := range opts {
		opt(f)
	}

	if f.logger == nil {
		f.logger = logger.GetLogger()
	}
	if f.limiter == nil {
		f.limiter = ratelimit.New(cfg.RateLimit.RequestsPerHour)
	}
	if f.source == nil {
		client := unsplash.NewClient(cfg.Unsplash.AccessKey, cfg.Unsplash.Timeout, f.logger)
		client.SetBaseURL(cfg.Unsplash.BaseURL)
		if cfg.Unsplash.UserAgent != "" {
			client.SetHeader("User-Agent", cfg.Unsplash.UserAgent)
		}
		f.source = client
	}

	if f.processor == nil && !f.dryRun {
		tp, err := transform.NewProcessor(transform.Options{
			MaxWidth:  cfg.Image.MaxWidth,
			MaxHeight: cfg.Image.MaxHeight,
			Quality:   cfg.Image.Quality,
			Engine:    cfg.Image.Engine,
			UserAgent: cfg.Unsplash.UserAgent,
			Timeout:   cfg.Unsplash.Timeout,
		}, f.logger)
		if err != nil {
			return nil, fmt.Errorf("invalid image settings: %w", err)
		}
		f.transformer = tp
	}

	return f, nil
}

// Run processes every (category, term) pair of the table exactly once.
// The only error it returns is a failure to create the output directories;
// per-item failures are recorded in the summary. Cancelling ctx stops the
// loop before the next term and returns the partial summary.
func (f *Fetcher) Run(ctx context.Context) (*Summary, error) {
	cfg := f.config
	summary := &Summary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	log := f.logger.WithField("run_id", summary.RunID)

	names := make([]string, 0, len(cfg.Categories))
	for _, c := range cfg.Categories {
		names = append(names, c.Name)
	}

	store, err := storage.NewManager(cfg.Output.BaseDirectory, names)
	if err != nil {
		log.WithError(err).Error("Failed to create output directories")
		return nil, err
	}

	if f.processor == nil && f.transformer != nil {
		f.processor = downloader.NewProcessor(f.transformer, f.transformer, store, f.logger)
	}

	logger.LogComponentStart("fetcher", map[string]interface{}{
		"run_id":     summary.RunID,
		"output_dir": cfg.Output.BaseDirectory,
		"categories": len(cfg.Categories),
		"terms":      cfg.TermCount(),
		"dry_run":    f.dryRun,
	})

	var credits []metadata.Credit
	remaining := cfg.TermCount()

loop:
	for _, category := range cfg.Categories {
		for _, term := range category.Terms {
			if ctx.Err() != nil {
				summary.Cancelled = true
				break loop
			}
			remaining--

			job := downloader.Job{
				Category: category.Name,
				Term:     term,
				Path:     storage.ImagePath(cfg.Output.BaseDirectory, category.Name, term),
			}

			result := f.processItem(ctx, job)
			summary.add(result)
			f.report(result)
			if f.progress != nil {
				// the progress display already shows every item
				logger.LogItemDebug(job.Category, job.Term, string(result.Status), savedPath(result), result.Err)
			} else {
				logger.LogItem(job.Category, job.Term, string(result.Status), savedPath(result), result.Err)
			}

			if result.OK() && result.Photo != nil {
				credit := metadata.FromPhoto(result.Photo, job.Category, job.Term, job.Path)
				credit.Width = result.Width
				credit.Height = result.Height
				credit.FileSize = result.Size
				credits = append(credits, credit)
			}

			if remaining > 0 && !f.dryRun {
				if err := ratelimit.Pause(ctx, cfg.RateLimit.Delay); err != nil {
					summary.Cancelled = true
					break loop
				}
			}
		}
	}

	if cfg.Output.Manifest && len(credits) > 0 {
		manifest := filepath.Join(store.GetBaseDir(), metadata.ManifestName)
		if err := metadata.Update(manifest, summary.RunID, credits); err != nil {
			log.WithError(err).Warn("Failed to write credits manifest")
		}
	}

	summary.EndedAt = time.Now()
	if f.progress != nil {
		f.progress.Complete()
	}

	reason := "completed"
	if summary.Cancelled {
		reason = "cancelled"
	}
	logger.LogComponentStop("fetcher", reason)
	logger.LogRunSummary(summary.Saved, summary.Skipped, summary.Failed, summary.Duration())

	return summary, nil
}

// processItem runs one term through the source and the pipeline
func (f *Fetcher) processItem(ctx context.Context, job downloader.Job) downloader.Result {
	if f.progress != nil {
		f.progress.StartItem(job.Category, job.Term)
	}

	if f.dryRun {
		f.logger.InfoWithFields("Dry run: would fetch", map[string]interface{}{
			"category": job.Category,
			"term":     job.Term,
			"path":     job.Path,
		})
		return downloader.Result{Job: job, Status: downloader.StatusNoImage}
	}

	start := time.Now()
	if err := f.limiter.Wait(ctx); err != nil {
		return downloader.Result{Job: job, Status: downloader.StatusFailed, Err: err, Duration: time.Since(start)}
	}

	photo, err := f.source.RandomPhoto(ctx, job.Term)
	if err != nil {
		return downloader.Result{Job: job, Status: downloader.StatusNoImage, Err: err, Duration: time.Since(start)}
	}

	result := f.processor.Process(ctx, job, photo.URLs.Regular)
	result.Photo = photo
	result.Duration = time.Since(start)

	if result.OK() {
		if err := f.source.TrackDownload(ctx, photo); err != nil {
			f.logger.WithError(err).WarnWithFields("Failed to report download", map[string]interface{}{
				"photo_id": photo.ID,
			})
		}
	}
	return result
}

func (f *Fetcher) report(r downloader.Result) {
	if f.progress == nil {
		return
	}

	switch r.Status {
	case downloader.StatusSaved:
		f.progress.CompleteItem(r.Job.Path, r.Size, r.Width, r.Height)
	case downloader.StatusNoImage:
		reason := "dry run"
		if r.Err != nil {
			reason = reasonFor(r.Err)
		}
		f.progress.SkipItem(reason)
	default:
		f.progress.FailItem(r.Err)
	}
}

// reasonFor gives a short human description of a source failure
func reasonFor(err error) string {
	var e *apperrors.Error
	if errors.As(err, &e) {
		switch e.Type {
		case apperrors.ErrorTypeNotFound:
			return "no matching photo"
		case apperrors.ErrorTypeAuth:
			return "access key rejected"
		case apperrors.ErrorTypeRateLimit:
			return "rate limit exceeded"
		}
	}
	return err.Error()
}

func savedPath(r downloader.Result) string {
	if r.OK() {
		return r.Job.Path
	}
	return ""
}
