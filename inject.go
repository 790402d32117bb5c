package decal

import (
	"math"
	"time"
)

// DefaultFrameInterval is the synthetic clock step per injected frame.
const DefaultFrameInterval = time.Second / 60

type syntheticKind uint8

const (
	synthPress syntheticKind = iota
	synthMove
	synthRelease
	synthTouch
	synthKey
)

// syntheticEvent is a single injected input event in canvas coordinates.
type syntheticEvent struct {
	kind  syntheticKind
	x, y  float64
	touch TouchEvent
	key   KeyEvent
}

// Injector queues synthetic input and feeds it to an Editor one event per
// frame, exactly as real input would arrive. It carries its own clock so
// double-click timing is deterministic.
type Injector struct {
	ed    *Editor
	queue []syntheticEvent

	now           time.Time
	FrameInterval time.Duration
}

// NewInjector returns an injector driving e, with its clock starting at the
// editor's current time.
func NewInjector(e *Editor) *Injector {
	return &Injector{
		ed:            e,
		now:           e.now(),
		FrameInterval: DefaultFrameInterval,
	}
}

// Now returns the injector's clock.
func (in *Injector) Now() time.Time { return in.now }

// Pending returns the number of queued events.
func (in *Injector) Pending() int { return len(in.queue) }

// InjectPress queues a pointer press at (x, y).
func (in *Injector) InjectPress(x, y float64) {
	in.queue = append(in.queue, syntheticEvent{kind: synthPress, x: x, y: y})
}

// InjectMove queues a pointer move to (x, y). Use this between InjectPress
// and InjectRelease to simulate a drag.
func (in *Injector) InjectMove(x, y float64) {
	in.queue = append(in.queue, syntheticEvent{kind: synthMove, x: x, y: y})
}

// InjectRelease queues a pointer release at (x, y).
func (in *Injector) InjectRelease(x, y float64) {
	in.queue = append(in.queue, syntheticEvent{kind: synthRelease, x: x, y: y})
}

// InjectClick is a convenience that queues a press followed by a release at
// the same position. Consumes two frames.
func (in *Injector) InjectClick(x, y float64) {
	in.InjectPress(x, y)
	in.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY), frames-2
// linearly interpolated moves ending exactly on (toX, toY), and release
// there. The total sequence consumes `frames` frames. Minimum frames is 3
// (press + move + release), since a release alone moves nothing.
func (in *Injector) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 3 {
		frames = 3
	}
	in.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		in.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	in.InjectRelease(toX, toY)
}

// InjectPinch queues a two-finger gesture centered on (cx, cy). The fingers
// start fromDist apart at fromAngle (radians) and end toDist apart at
// toAngle, interpolated over frames move frames. Finger 0 lands first, so the
// sequence is: one-finger start, two-finger start, moves, one lift, last lift.
func (in *Injector) InjectPinch(cx, cy, fromDist, toDist, fromAngle, toAngle float64, frames int) {
	if frames < 1 {
		frames = 1
	}
	fingers := func(dist, angle float64) []TouchPoint {
		sin, cos := math.Sincos(angle)
		hx, hy := cos*dist/2, sin*dist/2
		return []TouchPoint{
			{ID: 0, X: cx - hx, Y: cy - hy},
			{ID: 1, X: cx + hx, Y: cy + hy},
		}
	}
	start := fingers(fromDist, fromAngle)
	in.injectTouch(TouchStart, start[:1])
	in.injectTouch(TouchStart, start)
	var last []TouchPoint
	for i := 1; i <= frames; i++ {
		t := float64(i) / float64(frames)
		last = fingers(fromDist+(toDist-fromDist)*t, fromAngle+(toAngle-fromAngle)*t)
		in.injectTouch(TouchMove, last)
	}
	in.injectTouch(TouchEnd, last[:1])
	in.injectTouch(TouchEnd, nil)
}

// InjectTouch queues a raw touch event. Its time is assigned when consumed.
func (in *Injector) InjectTouch(phase TouchPhase, touches []TouchPoint) {
	in.injectTouch(phase, touches)
}

func (in *Injector) injectTouch(phase TouchPhase, touches []TouchPoint) {
	cp := append([]TouchPoint(nil), touches...)
	in.queue = append(in.queue, syntheticEvent{kind: synthTouch, touch: TouchEvent{Phase: phase, Touches: cp}})
}

// InjectKey queues a key press.
func (in *Injector) InjectKey(k Key, mods KeyModifiers) {
	in.queue = append(in.queue, syntheticEvent{kind: synthKey, key: KeyEvent{Key: k, Modifiers: mods}})
}

// Step advances the clock by one frame and feeds at most one queued event.
// Returns true if an event was consumed.
func (in *Injector) Step() bool {
	in.now = in.now.Add(in.FrameInterval)
	if len(in.queue) == 0 {
		return false
	}
	evt := in.queue[0]
	copy(in.queue, in.queue[1:])
	in.queue = in.queue[:len(in.queue)-1]

	sample := PointerSample{X: evt.x, Y: evt.y, Time: in.now}
	switch evt.kind {
	case synthPress:
		in.ed.HandlePointerDown(sample)
	case synthMove:
		in.ed.HandlePointerMove(sample)
	case synthRelease:
		in.ed.HandlePointerUp(sample)
	case synthTouch:
		evt.touch.Time = in.now
		in.ed.HandleTouch(evt.touch)
	case synthKey:
		in.ed.HandleKey(evt.key)
	}
	return true
}

// Flush feeds every queued event, one frame each.
func (in *Injector) Flush() {
	for len(in.queue) > 0 {
		in.Step()
	}
}
