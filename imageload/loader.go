// Package imageload validates and decodes user-supplied images for the
// sticker editor: base photos and image stickers.
package imageload

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF so it is recognized and rejected by name
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"sync/atomic"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"  // Register BMP so it is recognized and rejected by name
	_ "golang.org/x/image/tiff" // Register TIFF so it is recognized and rejected by name
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/phanxgames/decal"
)

// Format is an accepted image encoding.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

// DefaultMaxBytes is the upload cap used by New when none is given.
const DefaultMaxBytes int64 = 10 << 20

// DefaultFormats are the encodings accepted by New.
var DefaultFormats = []Format{FormatJPEG, FormatPNG, FormatWebP}

// Bitmap is a decoded, validated image.
type Bitmap struct {
	Image  image.Image
	Width  int
	Height int
	Format Format
	Bytes  int64

	// HasAlpha reports whether the decoded pixel type carries an alpha
	// channel.
	HasAlpha bool
}

// Footprint returns the sticker footprint for this bitmap with the longer
// side capped at max.
func (b *Bitmap) Footprint(max float64) (float64, float64) {
	return decal.Footprint(float64(b.Width), float64(b.Height), max)
}

// Loader validates byte size and format, then decodes with EXIF
// auto-orientation. One load runs at a time per Loader; a second concurrent
// call fails with decal.ErrBusy.
type Loader struct {
	MaxBytes int64
	Formats  []Format

	log  *zap.Logger
	busy atomic.Bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the loader's logger.
func WithLogger(l *zap.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.log = l
		}
	}
}

// WithFormats replaces the accepted formats.
func WithFormats(f ...Format) Option {
	return func(ld *Loader) { ld.Formats = f }
}

// New returns a loader with the given byte cap. A non-positive cap uses
// DefaultMaxBytes.
func New(maxBytes int64, opts ...Option) *Loader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	ld := &Loader{
		MaxBytes: maxBytes,
		Formats:  DefaultFormats,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Load reads at most MaxBytes+1 bytes from r, validates them and decodes.
// Errors are *decal.ValidationError for rejected input, decal.ErrBusy when
// another load is in flight, or the context's error.
func (l *Loader) Load(ctx context.Context, r io.Reader) (*Bitmap, error) {
	if !l.busy.CompareAndSwap(false, true) {
		return nil, decal.ErrBusy
	}
	defer l.busy.Store(false)

	data, err := io.ReadAll(io.LimitReader(r, l.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.decode(ctx, data)
}

// LoadImage implements decal.ImageLoader.
func (l *Loader) LoadImage(ctx context.Context, r io.Reader) (image.Image, error) {
	bm, err := l.Load(ctx, r)
	if err != nil {
		return nil, err
	}
	return bm.Image, nil
}

// LoadFile opens path and loads it. Files over MaxBytes are rejected from
// their size before any bytes are read.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Bitmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	if st, err := f.Stat(); err == nil && st.Size() > l.MaxBytes {
		return nil, l.tooLarge(st.Size())
	}
	return l.Load(ctx, f)
}

func (l *Loader) decode(ctx context.Context, data []byte) (*Bitmap, error) {
	n := int64(len(data))
	if n == 0 {
		return nil, &decal.ValidationError{Reason: decal.ReasonEmpty, Detail: "no image data"}
	}
	if n > l.MaxBytes {
		return nil, l.tooLarge(n)
	}

	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &decal.ValidationError{Reason: decal.ReasonInvalidFormat, Detail: "unrecognized image data", Err: err}
	}
	format := Format(name)
	if !l.accepts(format) {
		l.log.Warn("image format rejected", zap.String("format", name))
		return nil, &decal.ValidationError{Reason: decal.ReasonInvalidFormat, Detail: fmt.Sprintf("%s is not accepted", name)}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, &decal.ValidationError{Reason: decal.ReasonEmpty, Detail: "image has no pixels"}
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &decal.ValidationError{Reason: decal.ReasonInvalidFormat, Detail: "decode " + name, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := img.Bounds()
	l.log.Debug("image decoded",
		zap.String("format", name),
		zap.Int("width", b.Dx()),
		zap.Int("height", b.Dy()),
		zap.Int64("bytes", n),
	)
	return &Bitmap{
		Image:    img,
		Width:    b.Dx(),
		Height:   b.Dy(),
		Format:   format,
		Bytes:    n,
		HasAlpha: hasAlpha(img),
	}, nil
}

func (l *Loader) accepts(f Format) bool {
	for _, a := range l.Formats {
		if a == f {
			return true
		}
	}
	return false
}

func (l *Loader) tooLarge(n int64) error {
	return &decal.ValidationError{
		Reason: decal.ReasonTooLarge,
		Detail: fmt.Sprintf("%d bytes exceeds the %d byte limit", n, l.MaxBytes),
	}
}

func hasAlpha(img image.Image) bool {
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64, *image.Alpha, *image.Alpha16, *image.NYCbCrA:
		return true
	}
	return false
}
