package transform

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	apperrors "productimg/pkg/errors"
	"productimg/pkg/logger"

	// imaging registers jpeg, png, gif, bmp and tiff; webp is decode-only
	_ "golang.org/x/image/webp"
)

const (
	// EngineImaging resizes with disintegration/imaging
	EngineImaging = "imaging"
	// EngineNfnt resizes with nfnt/resize
	EngineNfnt = "nfnt"

	// MaxImageBytes caps how much of a download is read into memory
	MaxImageBytes = 64 << 20
)

// Options controls the transform pipeline
type Options struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
	Engine    string
	UserAgent string
	Timeout   time.Duration
}

// DefaultOptions returns the 800x800, quality 85 pipeline
func DefaultOptions() Options {
	return Options{
		MaxWidth:  800,
		MaxHeight: 800,
		Quality:   85,
		Engine:    EngineImaging,
	}
}

// fitFunc scales img down to fit within w x h
type fitFunc func(img image.Image, w, h int) image.Image

// Processor downloads, normalizes, resizes and encodes images
type Processor struct {
	httpClient *http.Client
	opts       Options
	fit        fitFunc
	logger     logger.Logger
}

// NewProcessor creates a Processor for opts
func NewProcessor(opts Options, log logger.Logger) (*Processor, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if opts.MaxWidth <= 0 || opts.MaxHeight <= 0 {
		return nil, fmt.Errorf("bounding box must be positive, got %dx%d", opts.MaxWidth, opts.MaxHeight)
	}
	if opts.Quality < 1 || opts.Quality > 100 {
		return nil, fmt.Errorf("quality must be between 1 and 100, got %d", opts.Quality)
	}

	var fit fitFunc
	opts.Engine = strings.ToLower(strings.TrimSpace(opts.Engine))
	switch opts.Engine {
	case "", EngineImaging:
		fit = fitImaging
	case EngineNfnt:
		fit = fitNfnt
	default:
		return nil, fmt.Errorf("unknown resize engine: %s", opts.Engine)
	}

	return &Processor{
		httpClient: &http.Client{Timeout: opts.Timeout},
		opts:       opts,
		fit:        fit,
		logger:     log,
	}, nil
}

// Fetch downloads the bytes at url with a single GET
func (p *Processor) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrorTypeUnknown, err, "failed to create request")
	}
	if p.opts.UserAgent != "" {
		req.Header.Set("User-Agent", p.opts.UserAgent)
	}

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.ErrorWithFields("image download failed", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
		return nil, apperrors.Wrap(apperrors.ErrorTypeNetwork, err, "image download failed")
	}
	defer resp.Body.Close()

	logger.LogRequest(req.Method, url, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.New(apperrors.ErrorTypeStatus, resp.StatusCode,
			fmt.Sprintf("image download returned status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageBytes+1))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrorTypeNetwork, err, "failed to read image data")
	}
	if len(data) > MaxImageBytes {
		return nil, apperrors.New(apperrors.ErrorTypePayload, resp.StatusCode, "image exceeds size limit")
	}

	p.logger.DebugWithFields("image downloaded", map[string]interface{}{
		"url":  url,
		"size": len(data),
	})
	return data, nil
}

// Transform decodes data, drops any alpha channel and fits the result
// inside the bounding box. Images already inside the box keep their size.
func (p *Processor) Transform(data []byte) (image.Image, error) {
	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrorTypeDecode, err, "failed to decode image")
	}

	rgb := Opaque(src)
	out := p.fit(rgb, p.opts.MaxWidth, p.opts.MaxHeight)

	p.logger.DebugWithFields("image transformed", map[string]interface{}{
		"source_width":  src.Bounds().Dx(),
		"source_height": src.Bounds().Dy(),
		"width":         out.Bounds().Dx(),
		"height":        out.Bounds().Dy(),
		"engine":        p.opts.Engine,
	})
	return out, nil
}

// Encode writes img to w as a JPEG at the configured quality
func (p *Processor) Encode(w io.Writer, img image.Image) error {
	if err := imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(p.opts.Quality)); err != nil {
		return apperrors.Wrap(apperrors.ErrorTypeDecode, err, "failed to encode JPEG")
	}
	return nil
}

// Opaque converts img to NRGBA with every pixel fully opaque.
// Colour values are kept as stored; transparency is discarded, not blended.
func Opaque(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

func fitImaging(img image.Image, w, h int) image.Image {
	return imaging.Fit(img, w, h, imaging.Lanczos)
}

func fitNfnt(img image.Image, w, h int) image.Image {
	return resize.Thumbnail(uint(w), uint(h), img, resize.Lanczos3)
}
