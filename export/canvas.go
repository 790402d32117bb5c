package export

import (
	"context"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/phanxgames/decal"
)

// canvas is a software decal.Renderer compositing at a fixed scale factor.
// Every canvas coordinate from the editor is multiplied by scale, so the
// output layout matches the on-screen render exactly, only larger or smaller.
type canvas struct {
	ctx   context.Context
	log   *zap.Logger
	emoji *emojiRasterizer

	width, height int
	scale         float64
	dst           *image.NRGBA
	err           error
}

func newCanvas(ctx context.Context, log *zap.Logger, emoji *emojiRasterizer, w, h int, scale float64) *canvas {
	return &canvas{
		ctx:    ctx,
		log:    log,
		emoji:  emoji,
		width:  scaled(float64(w), scale),
		height: scaled(float64(h), scale),
		scale:  scale,
	}
}

func (c *canvas) DrawBackground(img image.Image) {
	if c.failed() {
		return
	}
	c.dst = imaging.Resize(img, c.width, c.height, imaging.Lanczos)
}

func (c *canvas) DrawSticker(d decal.StickerDraw) {
	if c.failed() {
		return
	}
	if c.dst == nil {
		c.dst = imaging.New(c.width, c.height, color.Transparent)
	}
	if d.PayloadMissing() {
		c.log.Debug("export skipped sticker without payload", zap.String("sticker", d.ID))
		return
	}

	scale, rotation, center := decompose(d)
	w := scaled(d.Width*scale, c.scale)
	h := scaled(d.Height*scale, c.scale)

	var src image.Image
	switch d.Kind {
	case decal.KindImage:
		src = imaging.Resize(d.Image, w, h, imaging.Lanczos)
	default:
		img, covered := c.emoji.rasterize(d.Emoji, w, h)
		if !covered {
			c.log.Warn("emoji font lacks glyphs, drawing notdef boxes",
				zap.String("sticker", d.ID), zap.String("emoji", d.Emoji))
		}
		src = img
	}

	// bild rotates clockwise for positive degrees, which is the same visual
	// direction as a positive angle in y-down canvas space.
	if deg := rotation * 180 / math.Pi; deg != 0 {
		src = transform.Rotate(src, deg, &transform.RotationOptions{ResizeBounds: true})
	}

	b := src.Bounds()
	pos := image.Pt(
		int(math.Round(center.X*c.scale-float64(b.Dx())/2)),
		int(math.Round(center.Y*c.scale-float64(b.Dy())/2)),
	)
	c.dst = imaging.Overlay(c.dst, src, pos, d.Opacity)
}

// DrawSelectionOverlay is a no-op: exports never show editing chrome.
func (c *canvas) DrawSelectionOverlay(decal.Overlay) {}

func (c *canvas) failed() bool {
	if c.err != nil {
		return true
	}
	if err := c.ctx.Err(); err != nil {
		c.err = err
		return true
	}
	return false
}

func (c *canvas) image() image.Image {
	if c.dst == nil {
		return imaging.New(c.width, c.height, color.Transparent)
	}
	return c.dst
}

// decompose splits a sticker transform T(center)·R(θ)·S(s)·T(-w/2, -h/2)
// back into its uniform scale, rotation and center.
func decompose(d decal.StickerDraw) (scale, rotation float64, center decal.Vec2) {
	m := d.Transform
	scale = math.Hypot(m[0], m[1])
	rotation = math.Atan2(m[1], m[0])
	center = m.ApplyVec(decal.Vec2{X: d.Width / 2, Y: d.Height / 2})
	return scale, rotation, center
}

func scaled(v, k float64) int {
	n := int(math.Round(v * k))
	if n < 1 {
		return 1
	}
	return n
}
