package ebitenview

import (
	"image"
	"math"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/decal"
)

func TestPointerTracker(t *testing.T) {
	var tr pointerTracker
	p := decal.Vec2{X: 10, Y: 10}
	q := decal.Vec2{X: 20, Y: 10}

	steps := []struct {
		pressed bool
		pos     decal.Vec2
		want    pointerEdge
	}{
		{false, p, pointerNone},
		{true, p, pointerDown},
		{true, p, pointerNone},
		{true, q, pointerMove},
		{false, q, pointerUp},
		{false, q, pointerNone},
	}
	for i, st := range steps {
		if got := tr.update(st.pressed, st.pos); got != st.want {
			t.Errorf("step %d: edge = %d, want %d", i, got, st.want)
		}
	}
}

func TestTouchTrackerSequence(t *testing.T) {
	var tr touchTracker
	now := time.Unix(0, 0)
	a := decal.TouchPoint{ID: 0, X: 10, Y: 10}
	b := decal.TouchPoint{ID: 1, X: 50, Y: 10}

	evs := tr.update([]decal.TouchPoint{a}, now)
	if len(evs) != 1 || evs[0].Phase != decal.TouchStart || len(evs[0].Touches) != 1 {
		t.Fatalf("first finger: %+v", evs)
	}

	evs = tr.update([]decal.TouchPoint{a, b}, now)
	if len(evs) != 1 || evs[0].Phase != decal.TouchStart || len(evs[0].Touches) != 2 {
		t.Fatalf("second finger: %+v", evs)
	}

	b.X = 70
	evs = tr.update([]decal.TouchPoint{a, b}, now)
	if len(evs) != 1 || evs[0].Phase != decal.TouchMove || evs[0].Touches[1].X != 70 {
		t.Fatalf("move: %+v", evs)
	}

	// No change, no events.
	if evs = tr.update([]decal.TouchPoint{a, b}, now); len(evs) != 0 {
		t.Fatalf("idle: %+v", evs)
	}

	evs = tr.update([]decal.TouchPoint{b}, now)
	if len(evs) != 1 || evs[0].Phase != decal.TouchEnd || len(evs[0].Touches) != 1 || evs[0].Touches[0].ID != 1 {
		t.Fatalf("first lift: %+v", evs)
	}

	evs = tr.update(nil, now)
	if len(evs) != 1 || evs[0].Phase != decal.TouchEnd || len(evs[0].Touches) != 0 {
		t.Fatalf("last lift: %+v", evs)
	}
}

func TestTouchTrackerSimultaneousLanding(t *testing.T) {
	var tr touchTracker
	evs := tr.update([]decal.TouchPoint{{ID: 3}, {ID: 4, X: 100}}, time.Time{})
	if len(evs) != 2 {
		t.Fatalf("got %d events, want 2", len(evs))
	}
	if len(evs[0].Touches) != 1 || len(evs[1].Touches) != 2 {
		t.Errorf("touch counts = %d, %d; want 1, 2", len(evs[0].Touches), len(evs[1].Touches))
	}
}

func TestTouchTrackerDrivesGesture(t *testing.T) {
	ed := decal.NewEditor(decal.DefaultConfig())
	if err := ed.SetBaseImage(newTestImage(400, 300)); err != nil {
		t.Fatal(err)
	}
	s, err := ed.AddEmoji("x")
	if err != nil {
		t.Fatal(err)
	}
	c := s.Center()

	var tr touchTracker
	feed := func(ts ...decal.TouchPoint) {
		for _, ev := range tr.update(ts, time.Time{}) {
			ed.HandleTouch(ev)
		}
	}
	feed(decal.TouchPoint{ID: 0, X: c.X - 50, Y: c.Y})
	feed(decal.TouchPoint{ID: 0, X: c.X - 50, Y: c.Y}, decal.TouchPoint{ID: 1, X: c.X + 50, Y: c.Y})
	if !ed.Gesturing() {
		t.Fatal("expected gesture")
	}
	feed(decal.TouchPoint{ID: 0, X: c.X - 100, Y: c.Y}, decal.TouchPoint{ID: 1, X: c.X + 100, Y: c.Y})
	feed(decal.TouchPoint{ID: 1, X: c.X + 100, Y: c.Y})
	feed()

	if math.Abs(s.Scale()-2) > 1e-9 {
		t.Errorf("scale = %v, want 2", s.Scale())
	}
	if ed.Gesturing() {
		t.Error("gesture should have ended")
	}
}

type fakeInput struct {
	mods    decal.KeyModifiers
	mouse   [2]int
	pressed bool
	touches map[ebiten.TouchID][2]int
	keys    map[ebiten.Key]bool
}

func (f *fakeInput) modifiers() decal.KeyModifiers { return f.mods }

func (f *fakeInput) cursor() (int, int, bool) { return f.mouse[0], f.mouse[1], f.pressed }

func (f *fakeInput) appendTouchIDs(ids []ebiten.TouchID) []ebiten.TouchID {
	for id := range f.touches {
		ids = append(ids, id)
	}
	return ids
}

func (f *fakeInput) touchPosition(id ebiten.TouchID) (int, int) {
	p := f.touches[id]
	return p[0], p[1]
}

func (f *fakeInput) keyTriggered(k ebiten.Key, _ bool) bool { return f.keys[k] }

func newTestAdapter(t *testing.T) (*Adapter, *fakeInput, *decal.Editor) {
	t.Helper()
	ed := decal.NewEditor(decal.DefaultConfig())
	if err := ed.SetBaseImage(newTestImage(400, 300)); err != nil {
		t.Fatal(err)
	}
	if _, err := ed.AddEmoji("x"); err != nil {
		t.Fatal(err)
	}
	vp := decal.NewViewport(decal.Rect{Width: 400, Height: 300}, 400, 300)
	src := &fakeInput{touches: map[ebiten.TouchID][2]int{}, keys: map[ebiten.Key]bool{}}
	a := NewAdapter(ed, vp)
	a.src = src
	a.now = func() time.Time { return time.Unix(0, 0) }
	return a, src, ed
}

func TestAdapterKeysDuringTouch(t *testing.T) {
	a, src, ed := newTestAdapter(t)
	c := ed.Selected().Center()

	src.touches[7] = [2]int{int(c.X), int(c.Y)}
	src.keys[ebiten.KeyDelete] = true
	a.Update()
	if n := ed.Document().Len(); n != 0 {
		t.Fatalf("Delete while touching: %d stickers left, want 0", n)
	}

	// The tick that lifts the finger still reads keys.
	src.keys[ebiten.KeyDelete] = false
	src.keys[ebiten.KeyZ] = true
	src.mods = decal.ModCtrl
	delete(src.touches, 7)
	a.Update()
	if n := ed.Document().Len(); n != 1 {
		t.Errorf("Ctrl+Z on touch end: %d stickers, want 1", n)
	}
}

func TestAdapterMouseIgnoredDuringTouch(t *testing.T) {
	a, src, ed := newTestAdapter(t)
	c := ed.Selected().Center()

	src.touches[1] = [2]int{int(c.X), int(c.Y)}
	src.pressed = true
	src.mouse = [2]int{5, 5}
	a.Update()
	if ed.Selected() == nil {
		t.Fatal("mouse press on empty canvas was dispatched during touch")
	}
}

func TestRepeatTick(t *testing.T) {
	if repeatTick(1) || repeatTick(keyRepeatDelay) {
		t.Error("no repeat before the delay")
	}
	if !repeatTick(keyRepeatDelay + keyRepeatInterval) {
		t.Error("expected repeat after one interval")
	}
	if repeatTick(keyRepeatDelay + 1) {
		t.Error("unexpected repeat between intervals")
	}
}

func TestFitRect(t *testing.T) {
	tests := []struct {
		cw, ch, sw, sh float64
		want           decal.Rect
	}{
		{400, 300, 800, 600, decal.Rect{X: 0, Y: 0, Width: 800, Height: 600}},
		{400, 300, 800, 800, decal.Rect{X: 0, Y: 100, Width: 800, Height: 600}},
		{300, 300, 900, 600, decal.Rect{X: 150, Y: 0, Width: 600, Height: 600}},
		{400, 300, 0, 0, decal.Rect{Width: 400, Height: 300}},
	}
	for _, tt := range tests {
		if got := fitRect(tt.cw, tt.ch, tt.sw, tt.sh); got != tt.want {
			t.Errorf("fitRect(%v,%v,%v,%v) = %+v, want %+v", tt.cw, tt.ch, tt.sw, tt.sh, got, tt.want)
		}
	}
}

func TestGeoMMatchesAffine(t *testing.T) {
	m := decal.TranslateAffine(30, 40).
		Mul(decal.RotateAffine(0.7)).
		Mul(decal.ScaleAffine(2, 2))
	g := geoM(m)

	for _, p := range []decal.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 3, Y: -2}} {
		wx, wy := m.Apply(p.X, p.Y)
		gx, gy := g.Apply(p.X, p.Y)
		if math.Abs(wx-gx) > 1e-9 || math.Abs(wy-gy) > 1e-9 {
			t.Errorf("point %v: geoM (%v,%v), affine (%v,%v)", p, gx, gy, wx, wy)
		}
	}
	var _ ebiten.GeoM = g
}

func newTestImage(w, h int) *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, w, h))
}
