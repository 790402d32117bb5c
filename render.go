package decal

import "image"

// StickerDraw describes one sticker for a renderer. Transform maps the
// unscaled local box (0..Width, 0..Height) to canvas pixels.
type StickerDraw struct {
	ID        string
	Kind      Kind
	Emoji     string
	Image     image.Image // nil for emoji stickers and missing payloads
	Width     float64
	Height    float64
	Transform Affine
	Opacity   float64
}

// PayloadMissing reports whether an image sticker has no pixels to draw.
func (d StickerDraw) PayloadMissing() bool {
	return d.Kind == KindImage && d.Image == nil
}

// Overlay describes the selection decoration: a dashed outline around the
// rotated footprint plus the six control handles.
type Overlay struct {
	StickerID string
	Bounds    Rect    // unrotated footprint
	Center    Vec2    // rotation pivot
	Rotation  float64 // radians
	Outline   [4]Vec2 // rotated corners, clockwise from top-left
	Handles   []ControlPoint
}

// Renderer draws a scene. Calls arrive in paint order: background, then each
// sticker bottom to top, then at most one overlay.
type Renderer interface {
	DrawBackground(img image.Image)
	DrawSticker(d StickerDraw)
	DrawSelectionOverlay(o Overlay)
}

// DrawScene issues the render calls for base and doc to r. A nil base draws
// nothing. withOverlay adds the selection overlay when a sticker is selected.
func DrawScene(r Renderer, base image.Image, doc *Document, withOverlay bool) {
	if base == nil {
		return
	}
	r.DrawBackground(base)
	for _, s := range doc.Stickers() {
		r.DrawSticker(stickerDraw(s))
	}
	if sel := doc.Selected(); withOverlay && sel != nil {
		r.DrawSelectionOverlay(selectionOverlay(sel))
	}
}

func stickerDraw(s *Sticker) StickerDraw {
	return StickerDraw{
		ID:        s.ID,
		Kind:      s.Kind,
		Emoji:     s.Emoji,
		Image:     s.Image,
		Width:     s.BaseWidth,
		Height:    s.BaseHeight,
		Transform: s.Transform(),
		Opacity:   s.opacity,
	}
}

func selectionOverlay(s *Sticker) Overlay {
	b := s.Bounds()
	return Overlay{
		StickerID: s.ID,
		Bounds:    b,
		Center:    b.Center(),
		Rotation:  s.rotation,
		Outline: [4]Vec2{
			s.ToCanvas(Vec2{b.X, b.Y}),
			s.ToCanvas(Vec2{b.X + b.Width, b.Y}),
			s.ToCanvas(Vec2{b.X + b.Width, b.Y + b.Height}),
			s.ToCanvas(Vec2{b.X, b.Y + b.Height}),
		},
		Handles: s.ControlPoints(),
	}
}

// CommandType identifies a recorded draw call.
type CommandType uint8

const (
	CommandBackground CommandType = iota
	CommandSticker
	CommandOverlay
)

// DrawCommand is one recorded render call. Only the field matching Type is
// meaningful.
type DrawCommand struct {
	Type       CommandType
	Background image.Image
	Sticker    StickerDraw
	Overlay    Overlay
}

// CommandList is a Renderer that records calls for later replay. It is the
// handoff from the editor to renderers that run elsewhere, such as an
// exporter compositing at a different resolution.
type CommandList struct {
	Width, Height int // canvas size in pixels
	Commands      []DrawCommand
}

// NewCommandList returns an empty list for a w×h canvas.
func NewCommandList(w, h int) *CommandList {
	return &CommandList{Width: w, Height: h}
}

func (l *CommandList) DrawBackground(img image.Image) {
	l.Commands = append(l.Commands, DrawCommand{Type: CommandBackground, Background: img})
}

func (l *CommandList) DrawSticker(d StickerDraw) {
	l.Commands = append(l.Commands, DrawCommand{Type: CommandSticker, Sticker: d})
}

func (l *CommandList) DrawSelectionOverlay(o Overlay) {
	l.Commands = append(l.Commands, DrawCommand{Type: CommandOverlay, Overlay: o})
}

// Replay issues every recorded call to r in order.
func (l *CommandList) Replay(r Renderer) {
	for i := range l.Commands {
		cmd := &l.Commands[i]
		switch cmd.Type {
		case CommandBackground:
			r.DrawBackground(cmd.Background)
		case CommandSticker:
			r.DrawSticker(cmd.Sticker)
		case CommandOverlay:
			r.DrawSelectionOverlay(cmd.Overlay)
		}
	}
}

// Stickers returns the recorded sticker draws in paint order.
func (l *CommandList) Stickers() []StickerDraw {
	var out []StickerDraw
	for _, cmd := range l.Commands {
		if cmd.Type == CommandSticker {
			out = append(out, cmd.Sticker)
		}
	}
	return out
}

// Reset empties the list, keeping its capacity.
func (l *CommandList) Reset() {
	l.Commands = l.Commands[:0]
}
