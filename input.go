package decal

import "time"

// PointerSample is one normalized pointer position in canvas pixel space.
// Mouse and single-finger touch input both arrive in this shape.
type PointerSample struct {
	X, Y      float64
	Time      time.Time
	Modifiers KeyModifiers
}

// Pos returns the sample position.
func (p PointerSample) Pos() Vec2 { return Vec2{p.X, p.Y} }

// TouchPhase identifies a touch event kind.
type TouchPhase uint8

const (
	TouchStart  TouchPhase = iota // a finger landed
	TouchMove                     // one or more fingers moved
	TouchEnd                      // a finger lifted
	TouchCancel                   // the platform aborted the touch sequence
)

// TouchPoint is one active finger in canvas pixel space.
type TouchPoint struct {
	ID   int
	X, Y float64
}

// TouchEvent reports a touch change. Touches lists the fingers still active
// after the change, so a TouchEnd for the last finger has no touches.
type TouchEvent struct {
	Phase   TouchPhase
	Touches []TouchPoint
	Time    time.Time
}

// Key identifies a key the editor reacts to.
type Key uint8

const (
	KeyUnknown Key = iota
	KeyDelete
	KeyBackspace
	KeyEscape
	KeyArrowLeft
	KeyArrowRight
	KeyArrowUp
	KeyArrowDown
	KeyD // duplicate with Ctrl/Meta
	KeyZ // undo with Ctrl/Meta, redo with Ctrl/Meta+Shift
	KeyY // redo with Ctrl/Meta
)

// ParseKey maps script key names to keys.
func ParseKey(name string) Key {
	switch name {
	case "delete", "Delete":
		return KeyDelete
	case "backspace", "Backspace":
		return KeyBackspace
	case "escape", "Escape", "esc":
		return KeyEscape
	case "left", "ArrowLeft":
		return KeyArrowLeft
	case "right", "ArrowRight":
		return KeyArrowRight
	case "up", "ArrowUp":
		return KeyArrowUp
	case "down", "ArrowDown":
		return KeyArrowDown
	case "d", "D":
		return KeyD
	case "z", "Z":
		return KeyZ
	case "y", "Y":
		return KeyY
	}
	return KeyUnknown
}

// KeyEvent is one key press with the modifiers held at the time.
type KeyEvent struct {
	Key       Key
	Modifiers KeyModifiers
}

// Viewport maps device (display) pixels to canvas pixels. The canvas of
// CanvasWidth×CanvasHeight is shown stretched into the display rectangle
// (X, Y, Width, Height), like a canvas element sized by CSS.
type Viewport struct {
	X, Y, Width, Height       float64
	CanvasWidth, CanvasHeight float64

	toCanvas Affine
	dirty    bool
}

// NewViewport returns a viewport showing a canvas of cw×ch in display rect r.
func NewViewport(r Rect, cw, ch float64) *Viewport {
	return &Viewport{
		X: r.X, Y: r.Y, Width: r.Width, Height: r.Height,
		CanvasWidth: cw, CanvasHeight: ch,
		dirty: true,
	}
}

// SetDisplay updates the display rectangle.
func (v *Viewport) SetDisplay(r Rect) {
	v.X, v.Y, v.Width, v.Height = r.X, r.Y, r.Width, r.Height
	v.dirty = true
}

// SetCanvas updates the canvas size.
func (v *Viewport) SetCanvas(cw, ch float64) {
	v.CanvasWidth, v.CanvasHeight = cw, ch
	v.dirty = true
}

// computeMatrix recomputes the cached display→canvas matrix if dirty.
//
//	toCanvas = Scale(cw/w, ch/h) * Translate(-X, -Y)
func (v *Viewport) computeMatrix() Affine {
	if !v.dirty {
		return v.toCanvas
	}
	v.dirty = false
	sx, sy := 1.0, 1.0
	if v.Width > 0 && v.CanvasWidth > 0 {
		sx = v.CanvasWidth / v.Width
	}
	if v.Height > 0 && v.CanvasHeight > 0 {
		sy = v.CanvasHeight / v.Height
	}
	v.toCanvas = ScaleAffine(sx, sy).Mul(TranslateAffine(-v.X, -v.Y))
	return v.toCanvas
}

// ToCanvas converts display coordinates to canvas coordinates.
func (v *Viewport) ToCanvas(dx, dy float64) (float64, float64) {
	return v.computeMatrix().Apply(dx, dy)
}

// ToDisplay converts canvas coordinates to display coordinates.
func (v *Viewport) ToDisplay(cx, cy float64) (float64, float64) {
	return v.computeMatrix().Invert().Apply(cx, cy)
}

// DisplayToCanvas returns the display→canvas matrix, for renderers that draw
// in display space.
func (v *Viewport) DisplayToCanvas() Affine {
	return v.computeMatrix()
}

// Sample builds a pointer sample from display coordinates.
func (v *Viewport) Sample(dx, dy float64, t time.Time, mods KeyModifiers) PointerSample {
	x, y := v.ToCanvas(dx, dy)
	return PointerSample{X: x, Y: y, Time: t, Modifiers: mods}
}

// Touch builds a canvas-space touch point from display coordinates.
func (v *Viewport) Touch(id int, dx, dy float64) TouchPoint {
	x, y := v.ToCanvas(dx, dy)
	return TouchPoint{ID: id, X: x, Y: y}
}
