package decal

import (
	"image"
	"math"

	"github.com/google/uuid"
)

// Geometry constants shared by every sticker.
const (
	MinScale = 0.2
	MaxScale = 3.0

	DefaultStickerSize = 80.0 // unscaled footprint of emoji stickers

	HandleRadius       = 12.0 // pick distance for control points
	PivotEpsilon       = 5.0  // pivots closer than this to the center rotate in place
	CloneOffset        = 20.0 // clone displacement on both axes
	rotateHandleOffset = 30.0 // distance above top-center
	deleteHandleOffset = 18.0 // up-left of the top-left corner on both axes
)

// Sticker is a positioned, transformable overlay on the base image.
//
// X and Y are the top-left of the unscaled-position bounding box: scaling
// keeps X, Y fixed unless a pivot is supplied. Rotation, scale and opacity are
// only reachable through methods so their invariants always hold.
type Sticker struct {
	ID   string
	Kind Kind

	// Emoji is the text drawn for KindEmoji.
	Emoji string
	// Image is a non-owning reference to decoded pixels for KindImage.
	Image image.Image

	X, Y       float64
	BaseWidth  float64
	BaseHeight float64

	rotation float64 // (-π, π]
	scale    float64 // [MinScale, MaxScale]
	opacity  float64 // [0, 1]
}

func newSticker(kind Kind) *Sticker {
	return &Sticker{
		ID:         uuid.NewString(),
		Kind:       kind,
		BaseWidth:  DefaultStickerSize,
		BaseHeight: DefaultStickerSize,
		scale:      1,
		opacity:    1,
	}
}

// NewEmojiSticker creates an emoji sticker with the default 80×80 footprint
// at (x, y).
func NewEmojiSticker(emoji string, x, y float64) *Sticker {
	s := newSticker(KindEmoji)
	s.Emoji = emoji
	s.X, s.Y = x, y
	return s
}

// NewImageSticker creates an image sticker whose footprint is the image's
// intrinsic size scaled down (never up) so the longer side is at most
// maxFootprint. A non-positive maxFootprint disables the cap.
func NewImageSticker(img image.Image, x, y, maxFootprint float64) *Sticker {
	s := newSticker(KindImage)
	s.Image = img
	s.X, s.Y = x, y
	if img != nil {
		b := img.Bounds()
		s.BaseWidth, s.BaseHeight = Footprint(float64(b.Dx()), float64(b.Dy()), maxFootprint)
	}
	return s
}

// Footprint scales (w, h) down uniformly so that neither side exceeds max.
// Degenerate sizes fall back to the default footprint.
func Footprint(w, h, max float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return DefaultStickerSize, DefaultStickerSize
	}
	if max <= 0 {
		return w, h
	}
	longest := math.Max(w, h)
	if longest <= max {
		return w, h
	}
	k := max / longest
	return w * k, h * k
}

// Rotation returns the rotation in radians, in (-π, π].
func (s *Sticker) Rotation() float64 { return s.rotation }

// Scale returns the uniform scale, in [MinScale, MaxScale].
func (s *Sticker) Scale() float64 { return s.scale }

// Opacity returns the opacity, in [0, 1].
func (s *Sticker) Opacity() float64 { return s.opacity }

// SetRotation sets the rotation, normalized into (-π, π].
func (s *Sticker) SetRotation(r float64) { s.rotation = normalizeAngle(r) }

// SetScale sets the scale, clamped to [MinScale, MaxScale]. NaN is ignored.
func (s *Sticker) SetScale(v float64) {
	if math.IsNaN(v) {
		return
	}
	s.scale = clamp(v, MinScale, MaxScale)
}

// SetOpacity sets the opacity, clamped to [0, 1]. NaN is ignored.
func (s *Sticker) SetOpacity(v float64) {
	if math.IsNaN(v) {
		return
	}
	s.opacity = clamp(v, 0, 1)
}

// PayloadMissing reports whether an image sticker has lost its pixel handle,
// which happens when a snapshot is restored after every reference to the
// image was dropped.
func (s *Sticker) PayloadMissing() bool {
	return s.Kind == KindImage && s.Image == nil
}

// Bounds returns the scaled, unrotated footprint.
func (s *Sticker) Bounds() Rect {
	return Rect{
		X:      s.X,
		Y:      s.Y,
		Width:  s.BaseWidth * s.scale,
		Height: s.BaseHeight * s.scale,
	}
}

// Center returns the midpoint of Bounds.
func (s *Sticker) Center() Vec2 {
	return s.Bounds().Center()
}

// ContainsPoint reports whether the canvas point lies inside the rotated
// footprint. The point is rotated into the sticker's local frame first.
func (s *Sticker) ContainsPoint(x, y float64) bool {
	p := s.ToLocal(x, y)
	return s.Bounds().Contains(p.X, p.Y)
}

// ControlPoint is a named anchor position in canvas space.
type ControlPoint struct {
	Handle Handle
	Pos    Vec2
}

// localControlPoints returns the six anchors in the unrotated frame, in
// handleOrder.
func (s *Sticker) localControlPoints() [6]ControlPoint {
	b := s.Bounds()
	right := b.X + b.Width
	bottom := b.Y + b.Height
	return [6]ControlPoint{
		{HandleTopLeft, Vec2{b.X, b.Y}},
		{HandleTopRight, Vec2{right, b.Y}},
		{HandleBottomRight, Vec2{right, bottom}},
		{HandleBottomLeft, Vec2{b.X, bottom}},
		{HandleRotate, Vec2{b.X + b.Width/2, b.Y - rotateHandleOffset}},
		{HandleDelete, Vec2{b.X - deleteHandleOffset, b.Y - deleteHandleOffset}},
	}
}

// ControlPoints returns the six anchors rotated into canvas space, matching
// what is drawn on screen.
func (s *Sticker) ControlPoints() []ControlPoint {
	local := s.localControlPoints()
	out := make([]ControlPoint, len(local))
	for i, cp := range local {
		out[i] = ControlPoint{Handle: cp.Handle, Pos: s.ToCanvas(cp.Pos)}
	}
	return out
}

// ControlPointAt returns the handle nearest to (x, y) within HandleRadius, or
// HandleNone. The query is rotated into the local frame, so handles track the
// visual footprint. Equal distances resolve in handleOrder.
//
// Selection is not checked here; see Document.ControlPointAt.
func (s *Sticker) ControlPointAt(x, y float64) Handle {
	p := s.ToLocal(x, y)
	best := HandleNone
	bestDist := math.Inf(1)
	for _, cp := range s.localControlPoints() {
		d := p.Dist(cp.Pos)
		if d <= HandleRadius && d < bestDist {
			best = cp.Handle
			bestDist = d
		}
	}
	return best
}

// Move translates the sticker. No clamping is applied.
func (s *Sticker) Move(dx, dy float64) {
	s.X += dx
	s.Y += dy
}

// Resize multiplies the scale by factor and clamps it. When pivot is non-nil
// the sticker is repositioned so the pivot keeps its place relative to the
// footprint: the center's offset from the pivot is scaled by the effective
// ratio newScale/oldScale.
func (s *Sticker) Resize(factor float64, pivot *Vec2) {
	if math.IsNaN(factor) {
		return
	}
	old := s.scale
	oldCenter := s.Center()
	s.SetScale(old * factor)
	if pivot == nil || s.scale == old {
		return
	}
	ratio := s.scale / old
	c := Vec2{
		X: pivot.X + (oldCenter.X-pivot.X)*ratio,
		Y: pivot.Y + (oldCenter.Y-pivot.Y)*ratio,
	}
	s.setCenter(c)
}

// Rotate adds delta radians and normalizes. When pivot is non-nil and farther
// than PivotEpsilon from the center, the center orbits the pivot by delta.
func (s *Sticker) Rotate(delta float64, pivot *Vec2) {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return
	}
	s.SetRotation(s.rotation + delta)
	if pivot == nil {
		return
	}
	c := s.Center()
	if c.Dist(*pivot) <= PivotEpsilon {
		return
	}
	s.setCenter(rotateAround(c, *pivot, delta))
}

// setCenter moves the sticker so its bounds are centered on c.
func (s *Sticker) setCenter(c Vec2) {
	b := s.Bounds()
	s.X = c.X - b.Width/2
	s.Y = c.Y - b.Height/2
}

// Clone returns a copy with a fresh id, offset by CloneOffset on both axes.
// The image payload is shared, not copied.
func (s *Sticker) Clone() *Sticker {
	c := *s
	c.ID = uuid.NewString()
	c.X += CloneOffset
	c.Y += CloneOffset
	return &c
}

// StickerState is the plain-data form of a Sticker used by snapshots and the
// export handoff. Image pixels are never included.
type StickerState struct {
	ID         string  `json:"id" yaml:"id"`
	Kind       string  `json:"kind" yaml:"kind"`
	Emoji      string  `json:"emoji,omitempty" yaml:"emoji,omitempty"`
	X          float64 `json:"x" yaml:"x"`
	Y          float64 `json:"y" yaml:"y"`
	BaseWidth  float64 `json:"baseWidth" yaml:"baseWidth"`
	BaseHeight float64 `json:"baseHeight" yaml:"baseHeight"`
	Rotation   float64 `json:"rotation" yaml:"rotation"`
	Scale      float64 `json:"scale" yaml:"scale"`
	Opacity    float64 `json:"opacity" yaml:"opacity"`
}

// Serialize returns the sticker's plain-data state.
func (s *Sticker) Serialize() StickerState {
	return StickerState{
		ID:         s.ID,
		Kind:       s.Kind.String(),
		Emoji:      s.Emoji,
		X:          s.X,
		Y:          s.Y,
		BaseWidth:  s.BaseWidth,
		BaseHeight: s.BaseHeight,
		Rotation:   s.rotation,
		Scale:      s.scale,
		Opacity:    s.opacity,
	}
}

// Deserialize rebuilds a sticker from state. img is attached to image
// stickers and ignored for emoji stickers. Out-of-range values are pulled
// back inside their invariants.
func Deserialize(st StickerState, img image.Image) *Sticker {
	kind, ok := ParseKind(st.Kind)
	if !ok {
		kind = KindEmoji
	}
	s := &Sticker{
		ID:         st.ID,
		Kind:       kind,
		Emoji:      st.Emoji,
		X:          st.X,
		Y:          st.Y,
		BaseWidth:  st.BaseWidth,
		BaseHeight: st.BaseHeight,
		scale:      1,
		opacity:    1,
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if kind == KindImage {
		s.Image = img
	}
	s.SetRotation(st.Rotation)
	s.SetScale(st.Scale)
	s.SetOpacity(st.Opacity)
	return s
}
