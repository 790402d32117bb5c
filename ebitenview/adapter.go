package ebitenview

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/phanxgames/decal"
)

// maxTouches is the number of simultaneous touches tracked.
const maxTouches = 10

// keyRepeatDelay and keyRepeatInterval are in ticks.
const (
	keyRepeatDelay    = 30
	keyRepeatInterval = 4
)

var keyMap = []struct {
	ebiten ebiten.Key
	key    decal.Key
	repeat bool
}{
	{ebiten.KeyDelete, decal.KeyDelete, false},
	{ebiten.KeyBackspace, decal.KeyBackspace, false},
	{ebiten.KeyEscape, decal.KeyEscape, false},
	{ebiten.KeyArrowLeft, decal.KeyArrowLeft, true},
	{ebiten.KeyArrowRight, decal.KeyArrowRight, true},
	{ebiten.KeyArrowUp, decal.KeyArrowUp, true},
	{ebiten.KeyArrowDown, decal.KeyArrowDown, true},
	{ebiten.KeyD, decal.KeyD, false},
	{ebiten.KeyZ, decal.KeyZ, true},
	{ebiten.KeyY, decal.KeyY, true},
}

// Adapter polls Ebitengine input each tick and feeds the editor through a
// viewport.
type Adapter struct {
	ed *decal.Editor
	vp *decal.Viewport

	mouse   pointerTracker
	touches touchTracker

	touchIDs  []ebiten.TouchID
	touchMap  [maxTouches]ebiten.TouchID
	touchUsed [maxTouches]bool

	src inputSource
	now func() time.Time
}

// inputSource is the slice of Ebitengine's polling API the adapter reads.
type inputSource interface {
	modifiers() decal.KeyModifiers
	cursor() (x, y int, pressed bool)
	appendTouchIDs(ids []ebiten.TouchID) []ebiten.TouchID
	touchPosition(id ebiten.TouchID) (x, y int)
	keyTriggered(k ebiten.Key, repeat bool) bool
}

// NewAdapter returns an adapter feeding ed. Display coordinates are mapped
// through vp.
func NewAdapter(ed *decal.Editor, vp *decal.Viewport) *Adapter {
	return &Adapter{ed: ed, vp: vp, src: ebitenInput{}, now: time.Now}
}

// Update reads one tick of input.
func (a *Adapter) Update() {
	mods := a.src.modifiers()
	now := a.now()

	// Touch takes precedence over the mouse. Keys are read either way.
	if !a.processTouches(now) {
		a.processMouse(now, mods)
	}
	a.processKeys(mods)
}

// ebitenInput polls the running game.
type ebitenInput struct{}

func (ebitenInput) cursor() (int, int, bool) {
	x, y := ebiten.CursorPosition()
	return x, y, ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
}

func (ebitenInput) appendTouchIDs(ids []ebiten.TouchID) []ebiten.TouchID {
	return ebiten.AppendTouchIDs(ids)
}

func (ebitenInput) touchPosition(id ebiten.TouchID) (int, int) {
	return ebiten.TouchPosition(id)
}

func (ebitenInput) keyTriggered(k ebiten.Key, repeat bool) bool {
	return keyTriggered(k, repeat)
}

// modifiers reads the current keyboard modifier state.
func (ebitenInput) modifiers() decal.KeyModifiers {
	var mods decal.KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) || ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		mods |= decal.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight) {
		mods |= decal.ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) || ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight) {
		mods |= decal.ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) || ebiten.IsKeyPressed(ebiten.KeyMetaLeft) || ebiten.IsKeyPressed(ebiten.KeyMetaRight) {
		mods |= decal.ModMeta
	}
	return mods
}

// processMouse handles the left mouse button as the single pointer.
func (a *Adapter) processMouse(now time.Time, mods decal.KeyModifiers) {
	mx, my, pressed := a.src.cursor()
	s := a.vp.Sample(float64(mx), float64(my), now, mods)

	switch a.mouse.update(pressed, s.Pos()) {
	case pointerDown:
		a.ed.HandlePointerDown(s)
	case pointerMove:
		a.ed.HandlePointerMove(s)
	case pointerUp:
		a.ed.HandlePointerUp(s)
	}
}

// processTouches converts this tick's touches to touch events. Reports
// whether any touch was active or just ended.
func (a *Adapter) processTouches(now time.Time) bool {
	a.touchIDs = a.src.appendTouchIDs(a.touchIDs[:0])

	cur := make([]decal.TouchPoint, 0, len(a.touchIDs))
	var active [maxTouches]bool
	for _, tid := range a.touchIDs {
		slot := a.touchSlot(tid)
		if slot < 0 {
			continue
		}
		active[slot] = true
		tx, ty := a.src.touchPosition(tid)
		cur = append(cur, a.vp.Touch(slot, float64(tx), float64(ty)))
	}
	// Release slots whose touches ended.
	for i := range a.touchUsed {
		if a.touchUsed[i] && !active[i] {
			a.touchUsed[i] = false
			a.touchMap[i] = 0
		}
	}

	events := a.touches.update(cur, now)
	for _, ev := range events {
		a.ed.HandleTouch(ev)
	}
	return len(cur) > 0 || len(events) > 0
}

// touchSlot maps an ebiten.TouchID to a stable small id. Returns the existing
// slot or allocates a new one. Returns -1 if full.
func (a *Adapter) touchSlot(tid ebiten.TouchID) int {
	for i := range a.touchUsed {
		if a.touchUsed[i] && a.touchMap[i] == tid {
			return i
		}
	}
	for i := range a.touchUsed {
		if !a.touchUsed[i] {
			a.touchUsed[i] = true
			a.touchMap[i] = tid
			return i
		}
	}
	return -1
}

// processKeys dispatches just-pressed (and auto-repeating) shortcut keys.
func (a *Adapter) processKeys(mods decal.KeyModifiers) {
	for _, k := range keyMap {
		if a.src.keyTriggered(k.ebiten, k.repeat) {
			a.ed.HandleKey(decal.KeyEvent{Key: k.key, Modifiers: mods})
		}
	}
}

func keyTriggered(k ebiten.Key, repeat bool) bool {
	if inpututil.IsKeyJustPressed(k) {
		return true
	}
	if !repeat {
		return false
	}
	return repeatTick(inpututil.KeyPressDuration(k))
}

// repeatTick reports whether a key held for d ticks fires an auto-repeat.
func repeatTick(d int) bool {
	return d > keyRepeatDelay && (d-keyRepeatDelay)%keyRepeatInterval == 0
}

// --- pure trackers ---

type pointerEdge uint8

const (
	pointerNone pointerEdge = iota
	pointerDown
	pointerMove
	pointerUp
)

// pointerTracker turns a polled button state into press/move/release edges.
type pointerTracker struct {
	down bool
	last decal.Vec2
}

func (t *pointerTracker) update(pressed bool, p decal.Vec2) pointerEdge {
	switch {
	case pressed && !t.down:
		t.down = true
		t.last = p
		return pointerDown
	case pressed && t.down:
		if p == t.last {
			return pointerNone
		}
		t.last = p
		return pointerMove
	case !pressed && t.down:
		t.down = false
		return pointerUp
	}
	return pointerNone
}

// touchTracker diffs polled touch sets into decal touch events: one TouchEnd
// per lifted finger, one TouchStart per new finger, then a TouchMove when any
// remaining finger moved. Touches on each event are the fingers active after
// that event.
type touchTracker struct {
	prev []decal.TouchPoint
}

func (t *touchTracker) update(cur []decal.TouchPoint, now time.Time) []decal.TouchEvent {
	var events []decal.TouchEvent
	live := append([]decal.TouchPoint(nil), t.prev...)

	for _, p := range t.prev {
		if indexTouch(cur, p.ID) < 0 {
			live = removeTouch(live, p.ID)
			events = append(events, decal.TouchEvent{Phase: decal.TouchEnd, Touches: cloneTouches(live), Time: now})
		}
	}

	moved := false
	for _, c := range cur {
		i := indexTouch(live, c.ID)
		if i < 0 {
			live = append(live, c)
			events = append(events, decal.TouchEvent{Phase: decal.TouchStart, Touches: cloneTouches(live), Time: now})
			continue
		}
		if live[i] != c {
			live[i] = c
			moved = true
		}
	}
	if moved {
		events = append(events, decal.TouchEvent{Phase: decal.TouchMove, Touches: cloneTouches(live), Time: now})
	}

	t.prev = live
	return events
}

func indexTouch(ts []decal.TouchPoint, id int) int {
	for i, t := range ts {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func removeTouch(ts []decal.TouchPoint, id int) []decal.TouchPoint {
	if i := indexTouch(ts, id); i >= 0 {
		return append(ts[:i], ts[i+1:]...)
	}
	return ts
}

func cloneTouches(ts []decal.TouchPoint) []decal.TouchPoint {
	return append([]decal.TouchPoint(nil), ts...)
}
