package decal

import (
	"math"
	"time"

	"go.uber.org/zap"
)

// PointerMode is the state of the single-pointer interaction machine.
// Exactly one mode is active, so dragging and rotating at once cannot be
// expressed.
type PointerMode uint8

const (
	ModeIdle     PointerMode = iota // no interaction in progress
	ModeDragging                    // moving the selected sticker
	ModeResizing                    // scaling via a corner handle
	ModeRotating                    // turning via the rotate handle
)

func (m PointerMode) String() string {
	switch m {
	case ModeDragging:
		return "dragging"
	case ModeResizing:
		return "resizing"
	case ModeRotating:
		return "rotating"
	default:
		return "idle"
	}
}

// host is the editor surface the input machines drive.
type host interface {
	document() *Document
	hasBase() bool
	config() *Config
	logger() *zap.Logger
	commit(reason string)
	deleteSticker(s *Sticker)
	duplicate(s *Sticker) *Sticker
	redraw()
}

// PointerMachine turns single-pointer samples (mouse or one finger) into
// select, move, resize, rotate, delete and duplicate operations.
type PointerMachine struct {
	h      host
	mode   PointerMode
	handle Handle // corner being dragged while ModeResizing

	downPos Vec2
	lastPos Vec2

	// target and start record the sticker and pose at the press, for Cancel.
	target *Sticker
	start  pose

	// Double-click tracking: the last press that landed on a sticker body.
	lastDownID   string
	lastDownTime time.Time
}

func newPointerMachine(h host) *PointerMachine {
	return &PointerMachine{h: h}
}

// Mode returns the current mode.
func (m *PointerMachine) Mode() PointerMode { return m.mode }

// Handle returns the active resize handle, or HandleNone.
func (m *PointerMachine) Handle() Handle { return m.handle }

// Down handles a pointer press.
func (m *PointerMachine) Down(s PointerSample) {
	if !m.h.hasBase() {
		return
	}
	doc := m.h.document()
	p := s.Pos()

	if sel := doc.Selected(); sel != nil {
		switch hd := sel.ControlPointAt(p.X, p.Y); {
		case hd == HandleDelete:
			m.h.deleteSticker(sel)
			m.reset()
			m.lastDownID = ""
			return
		case hd.IsCorner():
			m.begin(ModeResizing, hd, p)
			return
		case hd == HandleRotate:
			m.begin(ModeRotating, HandleNone, p)
			return
		}
	}

	hit := doc.HitTest(p.X, p.Y)
	if hit == nil {
		if doc.Selected() != nil {
			doc.Deselect()
			m.h.redraw()
		}
		m.reset()
		m.lastDownID = ""
		return
	}

	if doc.IsSelected(hit) && hit.ID == m.lastDownID && m.withinDoubleClick(s.Time) {
		m.h.duplicate(hit)
		m.reset()
		m.lastDownID = ""
		return
	}

	doc.Select(hit)
	m.lastDownID = hit.ID
	m.lastDownTime = s.Time
	m.begin(ModeDragging, HandleNone, p)
	m.h.redraw()
}

// Move handles pointer motion. Motion while idle is ignored.
func (m *PointerMachine) Move(s PointerSample) {
	if m.mode == ModeIdle {
		return
	}
	sel := m.h.document().Selected()
	if sel == nil {
		m.reset()
		return
	}
	p := s.Pos()
	dx := p.X - m.lastPos.X
	dy := p.Y - m.lastPos.Y

	switch m.mode {
	case ModeDragging:
		sel.Move(dx, dy)
	case ModeResizing:
		sel.Resize(m.resizeStep(sel, dx, dy), centerOf(sel))
	case ModeRotating:
		c := sel.Center()
		prev := math.Atan2(m.lastPos.Y-c.Y, m.lastPos.X-c.X)
		cur := math.Atan2(p.Y-c.Y, p.X-c.X)
		sel.Rotate(normalizeAngle(cur-prev), nil)
	}
	m.lastPos = p
	m.h.redraw()
}

// Up handles a pointer release. A snapshot is pushed when the pointer
// travelled farther than the drag threshold since the press.
func (m *PointerMachine) Up(s PointerSample) {
	if m.mode == ModeIdle {
		return
	}
	mode := m.mode
	if s.Pos().Dist(m.downPos) > m.h.config().DragThreshold {
		m.h.commit(mode.String())
	}
	m.h.logger().Debug("pointer up", zap.Stringer("from", mode))
	m.reset()
}

// Finish ends the current interaction as if the pointer were released where
// it last moved, committing it past the drag threshold.
func (m *PointerMachine) Finish() {
	if m.mode == ModeIdle {
		return
	}
	m.Up(PointerSample{X: m.lastPos.X, Y: m.lastPos.Y})
}

// Cancel abandons the current interaction without a snapshot and puts the
// sticker back in the pose it had at the press.
func (m *PointerMachine) Cancel() {
	if m.mode != ModeIdle && m.target != nil {
		m.start.apply(m.target)
		m.h.redraw()
	}
	m.reset()
}

func (m *PointerMachine) begin(mode PointerMode, hd Handle, p Vec2) {
	m.mode = mode
	m.handle = hd
	m.downPos = p
	m.lastPos = p
	m.target = m.h.document().Selected()
	if m.target != nil {
		m.start = poseOf(m.target)
	}
	m.h.logger().Debug("pointer down", zap.Stringer("mode", mode), zap.Stringer("handle", hd))
}

func (m *PointerMachine) reset() {
	m.mode = ModeIdle
	m.handle = HandleNone
	m.target = nil
}

// pose is the transform part of a sticker.
type pose struct {
	x, y, scale, rotation float64
}

func poseOf(s *Sticker) pose {
	return pose{x: s.X, y: s.Y, scale: s.scale, rotation: s.rotation}
}

func (p pose) apply(s *Sticker) {
	s.X, s.Y = p.x, p.y
	s.scale, s.rotation = p.scale, p.rotation
}

func (m *PointerMachine) withinDoubleClick(t time.Time) bool {
	if m.lastDownTime.IsZero() || t.IsZero() {
		return false
	}
	dt := t.Sub(m.lastDownTime)
	return dt >= 0 && dt <= m.h.config().DoubleClickWindow
}

// resizeStep derives the per-frame scale factor for a corner drag. The
// pointer delta is rotated into the sticker's frame and projected onto the
// corner's outward diagonal, so dragging a corner away from the center grows
// the sticker and toward it shrinks it. The factor is clamped so a single
// large mouse jump cannot blow the size up.
func (m *PointerMachine) resizeStep(s *Sticker, dx, dy float64) float64 {
	sx, sy := m.handle.cornerSigns()
	sin, cos := math.Sincos(-s.rotation)
	ldx := dx*cos - dy*sin
	ldy := dx*sin + dy*cos
	d := (sx*ldx + sy*ldy) / 2

	b := s.Bounds()
	half := math.Max(b.Width, b.Height) / 2
	factor := 1.0
	if half > 0 {
		factor = 1 + d/half
	}
	cfg := m.h.config()
	return clamp(factor, cfg.ResizeStepMin, cfg.ResizeStepMax)
}

func centerOf(s *Sticker) *Vec2 {
	c := s.Center()
	return &c
}
