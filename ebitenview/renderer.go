// Package ebitenview is the live Ebitengine view of a decal.Editor: a
// renderer for the editor's draw calls, an input adapter polling mouse,
// touch and keyboard, and a game loop tying them together.
package ebitenview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/tanema/gween/ease"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/phanxgames/decal"
)

const (
	handleSize     = 10.0
	outlineWidth   = 1.5
	dashLength     = 6.0
	dashGap        = 4.0
	emojiGlyphSize = 0.8 // glyph size relative to the sticker box
	pulsePeriod    = 0.8 // seconds per half cycle of the overlay pulse
)

// Palette holds the overlay colours.
type Palette struct {
	Outline     colorful.Color
	Handle      colorful.Color
	Rotate      colorful.Color
	Delete      colorful.Color
	Placeholder colorful.Color
}

// DefaultPalette returns the stock overlay colours.
func DefaultPalette() Palette {
	return Palette{
		Outline:     mustHex("#3b82f6"),
		Handle:      mustHex("#ffffff"),
		Rotate:      mustHex("#22c55e"),
		Delete:      mustHex("#ef4444"),
		Placeholder: mustHex("#9ca3af"),
	}
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// --- White pixel singleton (no sync.Once; the game loop is single-threaded) ---

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white pixel image used
// for outlines, handles and placeholders.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.White)
	}
	return whitePixelImage
}

type cachedImage struct {
	src image.Image
	img *ebiten.Image
}

// Renderer draws decal render calls onto an ebiten.Image. Set the target and
// canvas→screen matrix with Begin before each frame.
type Renderer struct {
	Palette Palette

	dst  *ebiten.Image
	view decal.Affine

	base   cachedImage
	images map[string]cachedImage // by sticker id
	seen   map[string]bool

	faceSources []*text.GoTextFaceSource // preference order; Go Regular is last

	pulse      float64
	pulseTween *decal.TweenGroup
	pulseUp    bool
}

// NewRenderer returns a renderer with the default palette. fontTTF, when
// non-nil, is an emoji-capable font tried glyph by glyph before Go Regular,
// which has no emoji.
func NewRenderer(fontTTF []byte) (*Renderer, error) {
	srcs, err := faceSources(fontTTF)
	if err != nil {
		return nil, err
	}
	r := &Renderer{
		Palette:     DefaultPalette(),
		view:        decal.IdentityAffine,
		images:      make(map[string]cachedImage),
		seen:        make(map[string]bool),
		faceSources: srcs,
		pulse:       1,
	}
	r.restartPulse()
	return r, nil
}

// Update advances the overlay pulse by dt seconds.
func (r *Renderer) Update(dt float32) {
	r.pulseTween.Update(dt)
	if r.pulseTween.Done {
		r.restartPulse()
	}
}

func (r *Renderer) restartPulse() {
	to := 0.55
	if r.pulseUp {
		to = 1
	}
	r.pulseUp = !r.pulseUp
	r.pulseTween = decal.TweenFloat(&r.pulse, to, pulsePeriod, ease.InOutSine)
}

// Begin sets the frame target and the canvas→screen matrix.
func (r *Renderer) Begin(dst *ebiten.Image, view decal.Affine) {
	r.dst = dst
	r.view = view
	clear(r.seen)
}

// End drops cached textures for stickers not drawn this frame.
func (r *Renderer) End() {
	for id, c := range r.images {
		if !r.seen[id] {
			c.img.Deallocate()
			delete(r.images, id)
		}
	}
}

func (r *Renderer) DrawBackground(img image.Image) {
	if r.base.src != img {
		if r.base.img != nil {
			r.base.img.Deallocate()
		}
		r.base = cachedImage{src: img, img: ebiten.NewImageFromImage(img)}
	}
	var op ebiten.DrawImageOptions
	op.GeoM = geoM(r.view)
	op.Filter = ebiten.FilterLinear
	r.dst.DrawImage(r.base.img, &op)
}

func (r *Renderer) DrawSticker(d decal.StickerDraw) {
	m := r.view.Mul(d.Transform)
	switch {
	case d.PayloadMissing():
		r.drawPlaceholder(d, m)
	case d.Kind == decal.KindImage:
		r.drawImage(d, m)
	default:
		r.drawEmoji(d, m)
	}
}

func (r *Renderer) drawImage(d decal.StickerDraw, m decal.Affine) {
	c, ok := r.images[d.ID]
	if !ok || c.src != d.Image {
		if ok {
			c.img.Deallocate()
		}
		c = cachedImage{src: d.Image, img: ebiten.NewImageFromImage(d.Image)}
		r.images[d.ID] = c
	}
	r.seen[d.ID] = true

	b := c.img.Bounds()
	fit := decal.ScaleAffine(d.Width/float64(b.Dx()), d.Height/float64(b.Dy()))
	var op ebiten.DrawImageOptions
	op.GeoM = geoM(m.Mul(fit))
	op.ColorScale.ScaleAlpha(float32(d.Opacity))
	op.Filter = ebiten.FilterLinear
	r.dst.DrawImage(c.img, &op)
}

func faceSources(fontTTF []byte) ([]*text.GoTextFaceSource, error) {
	var out []*text.GoTextFaceSource
	if fontTTF != nil {
		src, err := text.NewGoTextFaceSource(bytes.NewReader(fontTTF))
		if err != nil {
			return nil, fmt.Errorf("parse emoji font: %w", err)
		}
		out = append(out, src)
	}
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, err
	}
	return append(out, src), nil
}

func (r *Renderer) emojiFace(size float64) text.Face {
	faces := make([]text.Face, len(r.faceSources))
	for i, src := range r.faceSources {
		faces[i] = &text.GoTextFace{Source: src, Size: size}
	}
	if len(faces) == 1 {
		return faces[0]
	}
	mf, err := text.NewMultiFace(faces...)
	if err != nil {
		return faces[0]
	}
	return mf
}

func (r *Renderer) drawEmoji(d decal.StickerDraw, m decal.Affine) {
	face := r.emojiFace(math.Min(d.Width, d.Height) * emojiGlyphSize)
	op := &text.DrawOptions{}
	op.LayoutOptions.PrimaryAlign = text.AlignCenter
	op.LayoutOptions.SecondaryAlign = text.AlignCenter
	op.GeoM = geoM(m.Mul(decal.TranslateAffine(d.Width/2, d.Height/2)))
	op.ColorScale.ScaleAlpha(float32(d.Opacity))
	op.Filter = ebiten.FilterLinear
	text.Draw(r.dst, d.Emoji, face, op)
}

// drawPlaceholder fills the footprint of an image sticker whose pixels are
// gone.
func (r *Renderer) drawPlaceholder(d decal.StickerDraw, m decal.Affine) {
	var op ebiten.DrawImageOptions
	op.GeoM = geoM(m.Mul(decal.ScaleAffine(d.Width, d.Height)))
	op.ColorScale.ScaleWithColor(r.Palette.Placeholder)
	op.ColorScale.ScaleAlpha(float32(0.6 * d.Opacity))
	r.dst.DrawImage(ensureWhitePixel(), &op)
}

func (r *Renderer) DrawSelectionOverlay(o decal.Overlay) {
	alpha := float32(r.pulse)
	for i := range o.Outline {
		a := r.view.ApplyVec(o.Outline[i])
		b := r.view.ApplyVec(o.Outline[(i+1)%len(o.Outline)])
		r.dashedLine(a, b, r.Palette.Outline, alpha)
	}

	for _, h := range o.Handles {
		p := r.view.ApplyVec(h.Pos)
		col := r.Palette.Handle
		switch h.Handle {
		case decal.HandleRotate:
			col = r.Palette.Rotate
			// Stem from the top edge midpoint to the rotate handle.
			top := r.view.ApplyVec(midpoint(o.Outline[0], o.Outline[1]))
			r.line(top, p, r.Palette.Outline, alpha)
		case decal.HandleDelete:
			col = r.Palette.Delete
		}
		r.square(p, o.Rotation, r.Palette.Outline, handleSize+2, 1)
		r.square(p, o.Rotation, col, handleSize, 1)
	}
}

func (r *Renderer) dashedLine(a, b decal.Vec2, c colorful.Color, alpha float32) {
	total := a.Dist(b)
	if total == 0 {
		return
	}
	dir := decal.Vec2{X: (b.X - a.X) / total, Y: (b.Y - a.Y) / total}
	for s := 0.0; s < total; s += dashLength + dashGap {
		e := math.Min(s+dashLength, total)
		r.line(
			decal.Vec2{X: a.X + dir.X*s, Y: a.Y + dir.Y*s},
			decal.Vec2{X: a.X + dir.X*e, Y: a.Y + dir.Y*e},
			c, alpha,
		)
	}
}

func (r *Renderer) line(a, b decal.Vec2, c colorful.Color, alpha float32) {
	length := a.Dist(b)
	if length == 0 {
		return
	}
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(length, outlineWidth)
	op.GeoM.Translate(0, -outlineWidth/2)
	op.GeoM.Rotate(math.Atan2(b.Y-a.Y, b.X-a.X))
	op.GeoM.Translate(a.X, a.Y)
	op.ColorScale.ScaleWithColor(c)
	op.ColorScale.ScaleAlpha(alpha)
	r.dst.DrawImage(ensureWhitePixel(), &op)
}

func (r *Renderer) square(center decal.Vec2, rotation float64, c colorful.Color, size float64, alpha float32) {
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(size, size)
	op.GeoM.Translate(-size/2, -size/2)
	op.GeoM.Rotate(rotation)
	op.GeoM.Translate(center.X, center.Y)
	op.ColorScale.ScaleWithColor(c)
	op.ColorScale.ScaleAlpha(alpha)
	r.dst.DrawImage(ensureWhitePixel(), &op)
}

// geoM converts a decal affine to an ebiten.GeoM.
//
//	decal:  x' = m0*x + m2*y + m4,  y' = m1*x + m3*y + m5
//	GeoM:   x' = a*x  + b*y  + tx,  y' = c*x  + d*y  + ty
func geoM(m decal.Affine) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(0, 1, m[2])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 0, m[1])
	g.SetElement(1, 1, m[3])
	g.SetElement(1, 2, m[5])
	return g
}

func midpoint(a, b decal.Vec2) decal.Vec2 {
	return decal.Vec2{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}
