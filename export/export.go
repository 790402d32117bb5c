// Package export composites a recorded editor scene at an arbitrary scale and
// encodes it as PNG, JPEG or WebP.
package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"

	"github.com/phanxgames/decal"
)

// Format is an output encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatWebP Format = "webp"
)

// ParseFormat accepts "png", "jpeg"/"jpg" and "webp", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "webp":
		return FormatWebP, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// Ext returns the file extension for f, with the dot.
func (f Format) Ext() string {
	if f == FormatJPEG {
		return ".jpg"
	}
	return "." + string(f)
}

// Options controls one export.
type Options struct {
	Scale   float64 // > 0; 1 keeps the base image's pixel size
	Format  Format
	Quality float64 // 0..1, JPEG only; WebP output is lossless

	// Background is the hex colour JPEG output is flattened onto, since JPEG
	// has no alpha. Empty means white.
	Background string
}

// DefaultOptions returns a 1× PNG export.
func DefaultOptions() Options {
	return Options{Scale: 1, Format: FormatPNG, Quality: 0.92, Background: "#ffffff"}
}

func (o Options) validate() error {
	if !(o.Scale > 0) || math.IsInf(o.Scale, 0) {
		return fmt.Errorf("export scale must be positive, got %v", o.Scale)
	}
	switch o.Format {
	case FormatPNG, FormatJPEG, FormatWebP:
	default:
		return fmt.Errorf("unsupported export format %q", o.Format)
	}
	if o.Quality < 0 || o.Quality > 1 {
		return fmt.Errorf("export quality must be within [0, 1], got %v", o.Quality)
	}
	return nil
}

// Result is one encoded export.
type Result struct {
	Data   []byte
	Width  int
	Height int
	Format Format
	Scale  float64
}

// Exporter replays a decal.CommandList onto a software canvas and encodes the
// result. One export runs at a time per Exporter; a concurrent call fails
// with decal.ErrBusy.
type Exporter struct {
	log     *zap.Logger
	metrics *Metrics
	emoji   *emojiRasterizer
	busy    atomic.Bool

	fontTTF []byte
	ink     color.Color
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets the exporter's logger.
func WithLogger(l *zap.Logger) Option {
	return func(x *Exporter) {
		if l != nil {
			x.log = l
		}
	}
}

// WithMetrics records export counts and durations into m.
func WithMetrics(m *Metrics) Option {
	return func(x *Exporter) { x.metrics = m }
}

// WithFont adds an outline TrueType/OpenType font (for example Noto Emoji)
// tried before Go Regular, which has no emoji glyphs. Each sticker is drawn
// with the first font covering all of its text.
func WithFont(ttf []byte) Option {
	return func(x *Exporter) { x.fontTTF = ttf }
}

// WithInk sets the colour used for emoji glyphs.
func WithInk(c color.Color) Option {
	return func(x *Exporter) { x.ink = c }
}

// New returns an exporter.
func New(opts ...Option) (*Exporter, error) {
	x := &Exporter{
		log: zap.NewNop(),
		ink: color.Black,
	}
	for _, opt := range opts {
		opt(x)
	}
	emoji, err := newEmojiRasterizer(x.fontTTF, x.ink)
	if err != nil {
		return nil, err
	}
	x.emoji = emoji
	return x, nil
}

// Export composites cmds at opt.Scale and encodes it.
func (x *Exporter) Export(ctx context.Context, cmds *decal.CommandList, opt Options) (*Result, error) {
	if !x.busy.CompareAndSwap(false, true) {
		x.metrics.busy()
		return nil, decal.ErrBusy
	}
	defer x.busy.Store(false)
	return x.export(ctx, cmds, opt)
}

// ExportSet exports cmds once per scale, in order, under a single busy guard.
func (x *Exporter) ExportSet(ctx context.Context, cmds *decal.CommandList, scales []float64, opt Options) ([]*Result, error) {
	if !x.busy.CompareAndSwap(false, true) {
		x.metrics.busy()
		return nil, decal.ErrBusy
	}
	defer x.busy.Store(false)

	out := make([]*Result, 0, len(scales))
	for _, k := range scales {
		o := opt
		o.Scale = k
		res, err := x.export(ctx, cmds, o)
		if err != nil {
			return out, fmt.Errorf("export at %gx: %w", k, err)
		}
		out = append(out, res)
	}
	return out, nil
}

func (x *Exporter) export(ctx context.Context, cmds *decal.CommandList, opt Options) (res *Result, err error) {
	start := time.Now()
	defer func() { x.metrics.observe(opt.Format, start, err) }()

	if err := opt.validate(); err != nil {
		return nil, err
	}
	if cmds == nil || cmds.Width <= 0 || cmds.Height <= 0 {
		return nil, fmt.Errorf("export: %w", decal.ErrNoBaseImage)
	}

	cv := newCanvas(ctx, x.log, x.emoji, cmds.Width, cmds.Height, opt.Scale)
	cmds.Replay(cv)
	if cv.err != nil {
		return nil, cv.err
	}

	img := cv.image()
	var buf bytes.Buffer
	if err := encode(&buf, img, opt); err != nil {
		return nil, fmt.Errorf("encode %s: %w", opt.Format, err)
	}

	x.log.Info("export finished",
		zap.String("format", string(opt.Format)),
		zap.Float64("scale", opt.Scale),
		zap.Int("width", cv.width),
		zap.Int("height", cv.height),
		zap.Int("bytes", buf.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &Result{
		Data:   buf.Bytes(),
		Width:  cv.width,
		Height: cv.height,
		Format: opt.Format,
		Scale:  opt.Scale,
	}, nil
}

func encode(buf *bytes.Buffer, img image.Image, opt Options) error {
	switch opt.Format {
	case FormatJPEG:
		bg, err := background(opt.Background)
		if err != nil {
			return err
		}
		b := img.Bounds()
		flat := imaging.Overlay(imaging.New(b.Dx(), b.Dy(), bg), img, image.Pt(0, 0), 1)
		q := int(math.Round(opt.Quality * 100))
		return imaging.Encode(buf, flat, imaging.JPEG, imaging.JPEGQuality(max(q, 1)))
	case FormatWebP:
		return nativewebp.Encode(buf, img, nil)
	default:
		return imaging.Encode(buf, img, imaging.PNG)
	}
}

func background(hex string) (color.Color, error) {
	if hex == "" {
		return color.White, nil
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("background colour: %w", err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}
