package transform

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	apperrors "productimg/pkg/errors"
	"productimg/pkg/logger"
)

// gradient returns a w x h test image with varying colour and the given alpha
func gradient(w, h int, alpha uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: alpha})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func isOpaque(img image.Image) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA).A != 0xff {
				return false
			}
		}
	}
	return true
}

func newTestProcessor(t *testing.T, engine string) *Processor {
	t.Helper()
	opts := DefaultOptions()
	opts.Engine = engine
	p, err := NewProcessor(opts, logger.NewTestLogger())
	require.NoError(t, err)
	return p
}

func TestNewProcessorValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *Options)
	}{
		{"zero width", func(o *Options) { o.MaxWidth = 0 }},
		{"negative height", func(o *Options) { o.MaxHeight = -1 }},
		{"quality zero", func(o *Options) { o.Quality = 0 }},
		{"quality too high", func(o *Options) { o.Quality = 101 }},
		{"unknown engine", func(o *Options) { o.Engine = "magick" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			_, err := NewProcessor(opts, logger.NewNopLogger())
			assert.Error(t, err)
		})
	}
}

func TestNewProcessorEngineCase(t *testing.T) {
	for _, engine := range []string{"Imaging", "NFNT", " nfnt "} {
		t.Run(engine, func(t *testing.T) {
			p := newTestProcessor(t, engine)
			out, err := p.Transform(encodePNG(t, gradient(1600, 400, 255)))
			require.NoError(t, err)
			assert.Equal(t, image.Pt(800, 200), out.Bounds().Size())
		})
	}
}

func TestTransformDecodesBMP(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, gradient(1200, 900, 255)))

	out, err := newTestProcessor(t, EngineImaging).Transform(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, image.Pt(800, 600), out.Bounds().Size())
}

func TestTransformFitsBox(t *testing.T) {
	tests := []struct {
		name         string
		srcW, srcH   int
		wantW, wantH int
	}{
		{"landscape", 2000, 1200, 800, 480},
		{"portrait", 900, 1800, 400, 800},
		{"square", 1600, 1600, 800, 800},
		{"small stays small", 640, 427, 640, 427},
		{"exact fit", 800, 600, 800, 600},
	}

	for _, engine := range []string{EngineImaging, EngineNfnt} {
		p := newTestProcessor(t, engine)
		for _, tt := range tests {
			t.Run(engine+"/"+tt.name, func(t *testing.T) {
				out, err := p.Transform(encodePNG(t, gradient(tt.srcW, tt.srcH, 0xff)))
				require.NoError(t, err)
				assert.Equal(t, tt.wantW, out.Bounds().Dx())
				assert.Equal(t, tt.wantH, out.Bounds().Dy())
			})
		}
	}
}

func TestTransformDropsAlpha(t *testing.T) {
	p := newTestProcessor(t, EngineImaging)

	src := gradient(300, 200, 0x40)
	out, err := p.Transform(encodePNG(t, src))
	require.NoError(t, err)
	assert.True(t, isOpaque(out))

	// colour channels are kept, not blended against a background
	got := color.NRGBAModel.Convert(out.At(10, 20)).(color.NRGBA)
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 128, A: 0xff}, got)
}

func TestTransformPalettedGIF(t *testing.T) {
	p := newTestProcessor(t, EngineNfnt)

	pal := image.NewPaletted(image.Rect(0, 0, 1000, 500), color.Palette{
		color.RGBA{A: 0},
		color.RGBA{R: 0xff, A: 0xff},
	})
	for i := range pal.Pix {
		pal.Pix[i] = uint8(i % 2)
	}
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, pal, nil))

	out, err := p.Transform(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 800, out.Bounds().Dx())
	assert.Equal(t, 400, out.Bounds().Dy())
	assert.True(t, isOpaque(out))
}

func TestTransformCorruptData(t *testing.T) {
	p := newTestProcessor(t, EngineImaging)

	for name, data := range map[string][]byte{
		"empty":     {},
		"text":      []byte("<html>not an image</html>"),
		"truncated": encodePNG(t, gradient(50, 50, 0xff))[:40],
	} {
		t.Run(name, func(t *testing.T) {
			_, err := p.Transform(data)
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrorTypeDecode, apperrors.TypeOf(err))
		})
	}
}

func TestEncodeJPEG(t *testing.T) {
	p := newTestProcessor(t, EngineImaging)

	out, err := p.Transform(encodePNG(t, gradient(2000, 1200, 0xff)))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, p.Encode(&buf, out))

	cfg, format, err := image.DecodeConfig(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 480, cfg.Height)

	decoded, err := jpeg.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, out.Bounds().Size(), decoded.Bounds().Size())
}

func TestEncodeQualityAffectsSize(t *testing.T) {
	img := gradient(400, 400, 0xff)

	low, err := NewProcessor(Options{MaxWidth: 800, MaxHeight: 800, Quality: 10}, logger.NewNopLogger())
	require.NoError(t, err)
	high, err := NewProcessor(Options{MaxWidth: 800, MaxHeight: 800, Quality: 100}, logger.NewNopLogger())
	require.NoError(t, err)

	var lowBuf, highBuf bytes.Buffer
	require.NoError(t, low.Encode(&lowBuf, img))
	require.NoError(t, high.Encode(&highBuf, img))
	assert.Less(t, lowBuf.Len(), highBuf.Len())
}

func TestFetch(t *testing.T) {
	payload := encodePNG(t, gradient(10, 10, 0xff))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(payload)
		case "/gone.png":
			w.WriteHeader(http.StatusGone)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	p := newTestProcessor(t, EngineImaging)

	data, err := p.Fetch(context.Background(), server.URL+"/ok.png")
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	_, err = p.Fetch(context.Background(), server.URL+"/gone.png")
	require.Error(t, err)
	var e *apperrors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, apperrors.ErrorTypeStatus, e.Type)
	assert.Equal(t, http.StatusGone, e.Code)

	_, err = p.Fetch(context.Background(), "http://127.0.0.1:1/unreachable.png")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeNetwork, apperrors.TypeOf(err))
}
