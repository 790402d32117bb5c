package decal

import (
	"math"

	"go.uber.org/zap"
)

// minGestureDistance is the smallest finger separation that can start a
// gesture; closer touches make the scale ratio meaningless.
const minGestureDistance = 1.0

// GestureMode is the state of the two-finger gesture interpreter.
type GestureMode uint8

const (
	GestureIdle   GestureMode = iota // no two-finger gesture
	GestureActive                    // pinch/rotate driving the selected sticker
)

func (m GestureMode) String() string {
	if m == GestureActive {
		return "gesturing"
	}
	return "idle"
}

// GestureInterpreter drives the selected sticker from two touch points.
//
// Each sample is treated as one similarity transform solved from the two
// point correspondences (initial fingers → current fingers): the sticker's
// scale and rotation are overwritten from the initial values, and its center
// is carried along so the point under the pinch centroid stays under it.
type GestureInterpreter struct {
	h    host
	mode GestureMode

	target *Sticker
	ids    [2]int

	initDist     float64
	initAngle    float64
	initScale    float64
	initRotation float64
	initCentroid Vec2
	initCenter   Vec2
}

func newGestureInterpreter(h host) *GestureInterpreter {
	return &GestureInterpreter{h: h}
}

// Mode returns the current mode.
func (g *GestureInterpreter) Mode() GestureMode { return g.mode }

// Active reports whether a gesture is in progress.
func (g *GestureInterpreter) Active() bool { return g.mode == GestureActive }

// Start begins a gesture when exactly two touches are active. With nothing
// selected, the sticker under the touch midpoint is selected first. Reports
// whether a gesture started.
func (g *GestureInterpreter) Start(touches []TouchPoint) bool {
	if g.mode == GestureActive || len(touches) != 2 || !g.h.hasBase() {
		return false
	}
	p0 := Vec2{touches[0].X, touches[0].Y}
	p1 := Vec2{touches[1].X, touches[1].Y}
	mid := midpoint(p0, p1)

	dist := p0.Dist(p1)
	if dist < minGestureDistance {
		return false
	}

	doc := g.h.document()
	if doc.Selected() == nil {
		if hit := doc.HitTest(mid.X, mid.Y); hit != nil {
			doc.Select(hit)
		}
	}
	sel := doc.Selected()
	if sel == nil {
		return false
	}

	g.mode = GestureActive
	g.target = sel
	g.ids = [2]int{touches[0].ID, touches[1].ID}
	g.initDist = dist
	g.initAngle = math.Atan2(p1.Y-p0.Y, p1.X-p0.X)
	g.initScale = sel.Scale()
	g.initRotation = sel.Rotation()
	g.initCentroid = mid
	g.initCenter = sel.Center()

	g.h.logger().Debug("gesture start", append(stickerFields(sel), zap.Float64("distance", dist))...)
	g.h.redraw()
	return true
}

// Move applies a two-finger sample. Samples with any other touch count, or
// that do not contain both starting fingers, are ignored.
func (g *GestureInterpreter) Move(touches []TouchPoint) {
	if g.mode != GestureActive || len(touches) != 2 {
		return
	}
	if !g.h.document().IsSelected(g.target) {
		g.Cancel()
		return
	}
	p0, p1, ok := g.match(touches)
	if !ok {
		return
	}

	dist := p0.Dist(p1)
	angle := math.Atan2(p1.Y-p0.Y, p1.X-p0.X)
	centroid := midpoint(p0, p1)

	s := g.target
	s.SetScale(g.initScale * dist / g.initDist)
	ratio := s.Scale() / g.initScale
	theta := angle - g.initAngle
	s.SetRotation(g.initRotation + theta)

	// Carry the center through the same similarity transform as the fingers.
	off := g.initCenter.Sub(g.initCentroid)
	off = Vec2{off.X * ratio, off.Y * ratio}
	off = rotateAround(off, Vec2{}, theta)
	s.setCenter(centroid.Add(off))

	g.h.redraw()
}

// End finishes the gesture once fewer than two touches remain and pushes a
// single snapshot. Reports whether a gesture ended.
func (g *GestureInterpreter) End(touches []TouchPoint) bool {
	if g.mode != GestureActive || len(touches) >= 2 {
		return false
	}
	g.h.logger().Debug("gesture end", stickerFields(g.target)...)
	g.reset()
	g.h.commit("gesture")
	return true
}

// Cancel abandons the gesture without a snapshot.
func (g *GestureInterpreter) Cancel() {
	g.reset()
}

func (g *GestureInterpreter) reset() {
	g.mode = GestureIdle
	g.target = nil
}

// match returns the current positions of the two starting fingers in start
// order.
func (g *GestureInterpreter) match(touches []TouchPoint) (Vec2, Vec2, bool) {
	var p [2]Vec2
	var found [2]bool
	for _, t := range touches {
		for i, id := range g.ids {
			if t.ID == id {
				p[i] = Vec2{t.X, t.Y}
				found[i] = true
			}
		}
	}
	return p[0], p[1], found[0] && found[1]
}

func midpoint(a, b Vec2) Vec2 {
	return Vec2{(a.X + b.X) / 2, (a.Y + b.Y) / 2}
}
