package export

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// emojiGlyphRatio is the glyph size relative to the sticker box.
const emojiGlyphRatio = 0.8

// emojiRasterizer draws sticker text into a transparent bitmap.
type emojiRasterizer struct {
	fonts []*opentype.Font // preference order; Go Regular is always last
	ink   color.Color
	buf   sfnt.Buffer
}

func newEmojiRasterizer(ttf []byte, ink color.Color) (*emojiRasterizer, error) {
	r := &emojiRasterizer{ink: ink}
	if ttf != nil {
		f, err := opentype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("parse emoji font: %w", err)
		}
		r.fonts = append(r.fonts, f)
	}
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	r.fonts = append(r.fonts, f)
	return r, nil
}

// pick returns the first font with a glyph for every rune of text. When none
// covers it, the first font is returned with ok false.
func (r *emojiRasterizer) pick(text string) (*opentype.Font, bool) {
	for _, f := range r.fonts {
		if r.covers(f, text) {
			return f, true
		}
	}
	return r.fonts[0], false
}

func (r *emojiRasterizer) covers(f *opentype.Font, text string) bool {
	for _, ch := range text {
		if ch == '\u200d' || (ch >= '\ufe00' && ch <= '\ufe0f') {
			continue // joiners and variation selectors have no glyph of their own
		}
		idx, err := f.GlyphIndex(&r.buf, ch)
		if err != nil || idx == 0 {
			return false
		}
	}
	return true
}

// rasterize renders text centered in a w×h transparent image. covered is
// false when no configured font has every glyph; missing glyphs then render
// as the notdef box.
func (r *emojiRasterizer) rasterize(text string, w, h int) (dst *image.NRGBA, covered bool) {
	dst = image.NewNRGBA(image.Rect(0, 0, w, h))
	if text == "" {
		return dst, true
	}
	fnt, covered := r.pick(text)
	size := float64(min(w, h)) * emojiGlyphRatio
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return dst, covered
	}
	defer face.Close()

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(r.ink),
		Face: face,
	}
	m := face.Metrics()
	adv := d.MeasureString(text)
	x := (fixed.I(w) - adv) / 2
	y := (fixed.I(h) + m.Ascent - m.Descent) / 2
	d.Dot = fixed.Point26_6{X: x, Y: y}
	d.DrawString(text)
	return dst, covered
}
