package decal

import (
	"math"
	"testing"
)

func touches(pts ...Vec2) []TouchPoint {
	out := make([]TouchPoint, len(pts))
	for i, p := range pts {
		out[i] = TouchPoint{ID: i, X: p.X, Y: p.Y}
	}
	return out
}

func pinch(e *Editor, from, to [2]Vec2) {
	e.HandleTouch(TouchEvent{Phase: TouchStart, Touches: touches(from[0])})
	e.HandleTouch(TouchEvent{Phase: TouchStart, Touches: touches(from[0], from[1])})
	e.HandleTouch(TouchEvent{Phase: TouchMove, Touches: touches(to[0], to[1])})
	e.HandleTouch(TouchEvent{Phase: TouchEnd, Touches: touches(to[0])})
	e.HandleTouch(TouchEvent{Phase: TouchEnd})
}

func TestGestureRotates(t *testing.T) {
	e, s, _ := newTestEditor(t)
	pinch(e,
		[2]Vec2{{150, 150}, {250, 150}},
		[2]Vec2{{200, 100}, {200, 200}},
	)
	assertNear(t, "rotation", s.Rotation(), math.Pi/2)
	assertNear(t, "scale", s.Scale(), 1)
	assertVec(t, "center", s.Center(), Vec2{200, 150})
}

func TestGestureTranslatesWithCentroid(t *testing.T) {
	e, s, _ := newTestEditor(t)
	pinch(e,
		[2]Vec2{{150, 150}, {250, 150}},
		[2]Vec2{{200, 180}, {300, 180}},
	)
	assertVec(t, "center", s.Center(), Vec2{250, 180})
	assertNear(t, "scale", s.Scale(), 1)
}

func TestGestureKeepsPointUnderCentroid(t *testing.T) {
	e, s, _ := newTestEditor(t)
	// Pinch off-center: the sticker point under the start centroid must stay
	// under the centroid through scale and rotation.
	from := [2]Vec2{{180, 120}, {220, 120}}
	mid0 := midpoint(from[0], from[1])
	local := s.ToLocal(mid0.X, mid0.Y)
	rel := Vec2{(local.X - s.X) / s.Scale(), (local.Y - s.Y) / s.Scale()}

	to := [2]Vec2{{250, 150}, {250, 210}} // distance 60 (x1.5), rotated 90°
	pinch(e, from, to)

	assertNear(t, "scale", s.Scale(), 1.5)
	assertNear(t, "rotation", s.Rotation(), math.Pi/2)
	// Map the same relative point back to canvas.
	got := s.Transform().ApplyVec(rel)
	assertVec(t, "anchored point", got, midpoint(to[0], to[1]))
}

func TestGestureOverwritesNotAccumulates(t *testing.T) {
	e, s, _ := newTestEditor(t)
	e.HandleTouch(TouchEvent{Phase: TouchStart, Touches: touches(Vec2{150, 150}, Vec2{250, 150})})
	for i := 0; i < 5; i++ {
		e.HandleTouch(TouchEvent{Phase: TouchMove, Touches: touches(Vec2{100, 150}, Vec2{300, 150})})
	}
	assertNear(t, "scale", s.Scale(), 2)
}

func TestGestureSelectsUnderMidpoint(t *testing.T) {
	e, s, _ := newTestEditor(t)
	e.Deselect()
	e.HandleTouch(TouchEvent{Phase: TouchStart, Touches: touches(Vec2{150, 150}, Vec2{250, 150})})
	if !e.Gesturing() || e.Selected() != s {
		t.Error("gesture should select the sticker under the midpoint")
	}
}

func TestGestureNeedsTarget(t *testing.T) {
	e, _, _ := newTestEditor(t)
	e.Deselect()
	e.HandleTouch(TouchEvent{Phase: TouchStart, Touches: touches(Vec2{0, 0}, Vec2{20, 0})})
	if e.Gesturing() {
		t.Error("gesture over empty canvas should not start")
	}
}

func TestGestureIgnoresCoincidentFingers(t *testing.T) {
	e, _, _ := newTestEditor(t)
	e.HandleTouch(TouchEvent{Phase: TouchStart, Touches: touches(Vec2{200, 150}, Vec2{200.5, 150})})
	if e.Gesturing() {
		t.Error("fingers closer than the minimum distance should not start a gesture")
	}

	// A refused start leaves the selection alone.
	e.Deselect()
	e.HandleTouch(TouchEvent{Phase: TouchStart, Touches: touches(Vec2{200, 150}, Vec2{200.5, 150})})
	if e.Selected() != nil {
		t.Error("refused gesture should not select the sticker under the fingers")
	}
}

func TestGestureIgnoresThirdFinger(t *testing.T) {
	e, s, _ := newTestEditor(t)
	e.HandleTouch(TouchEvent{Phase: TouchStart, Touches: touches(Vec2{150, 150}, Vec2{250, 150})})
	e.HandleTouch(TouchEvent{Phase: TouchStart, Touches: touches(Vec2{150, 150}, Vec2{250, 150}, Vec2{10, 10})})
	e.HandleTouch(TouchEvent{Phase: TouchMove, Touches: touches(Vec2{100, 150}, Vec2{300, 150}, Vec2{10, 10})})
	assertNear(t, "scale", s.Scale(), 1)
	if !e.Gesturing() {
		t.Error("a third finger should not end the gesture")
	}
}

func TestGestureCancelsPointer(t *testing.T) {
	e, s, _ := newTestEditor(t)
	e.HandleTouch(TouchEvent{Phase: TouchStart, Touches: touches(Vec2{200, 150})})
	if e.PointerMode() != ModeDragging {
		t.Fatalf("mode = %v, want dragging", e.PointerMode())
	}
	e.HandleTouch(TouchEvent{Phase: TouchStart, Touches: touches(Vec2{200, 150}, Vec2{260, 150})})
	if e.PointerMode() != ModeIdle || !e.Gesturing() {
		t.Error("second finger should hand control to the gesture")
	}
	e.HandleTouch(TouchEvent{Phase: TouchEnd, Touches: touches(Vec2{200, 150})})
	e.HandleTouch(TouchEvent{Phase: TouchEnd})
	if e.History().Len() != 3 {
		t.Errorf("history length = %d, want 3 (one gesture snapshot)", e.History().Len())
	}
	assertNear(t, "scale", s.Scale(), 1)
}

func TestSingleTouchDrags(t *testing.T) {
	e, s, _ := newTestEditor(t)
	e.HandleTouch(TouchEvent{Phase: TouchStart, Touches: touches(Vec2{200, 150})})
	e.HandleTouch(TouchEvent{Phase: TouchMove, Touches: touches(Vec2{240, 150})})
	e.HandleTouch(TouchEvent{Phase: TouchEnd})
	assertVec(t, "center", s.Center(), Vec2{240, 150})
	if e.History().Len() != 3 {
		t.Errorf("history length = %d, want 3", e.History().Len())
	}
}

func TestTouchCancelCommitsDrag(t *testing.T) {
	e, _, _ := newTestEditor(t)
	e.HandleTouch(TouchEvent{Phase: TouchStart, Touches: touches(Vec2{200, 150})})
	e.HandleTouch(TouchEvent{Phase: TouchMove, Touches: touches(Vec2{240, 150})})
	e.HandleTouch(TouchEvent{Phase: TouchCancel})
	if e.PointerMode() != ModeIdle {
		t.Errorf("mode = %v, want idle", e.PointerMode())
	}
	if e.History().Len() != 3 {
		t.Fatalf("history length = %d, want 3", e.History().Len())
	}

	e.Undo()
	assertVec(t, "center after undo", e.Document().Stickers()[0].Center(), Vec2{200, 150})
	e.Redo()
	assertVec(t, "center after redo", e.Document().Stickers()[0].Center(), Vec2{240, 150})
}

func TestTouchCancelBelowThreshold(t *testing.T) {
	e, s, _ := newTestEditor(t)
	e.HandleTouch(TouchEvent{Phase: TouchStart, Touches: touches(Vec2{200, 150})})
	e.HandleTouch(TouchEvent{Phase: TouchMove, Touches: touches(Vec2{202, 150})})
	e.HandleTouch(TouchEvent{Phase: TouchCancel})
	if e.History().Len() != 2 {
		t.Errorf("history length = %d, want 2", e.History().Len())
	}
	assertVec(t, "center", s.Center(), Vec2{202, 150})
}

func TestSecondFingerCommitsDrag(t *testing.T) {
	e, _, _ := newTestEditor(t)
	e.HandleTouch(TouchEvent{Phase: TouchStart, Touches: touches(Vec2{200, 150})})
	e.HandleTouch(TouchEvent{Phase: TouchMove, Touches: touches(Vec2{240, 150})})
	e.HandleTouch(TouchEvent{Phase: TouchStart, Touches: touches(Vec2{240, 150}, Vec2{300, 150})})
	if !e.Gesturing() {
		t.Fatal("second finger should start a gesture")
	}
	if e.History().Len() != 3 {
		t.Errorf("history length = %d, want 3 (drag recorded before the gesture)", e.History().Len())
	}
}

func TestGestureCanceledWhenTargetDeselected(t *testing.T) {
	e, s, _ := newTestEditor(t)
	e.HandleTouch(TouchEvent{Phase: TouchStart, Touches: touches(Vec2{150, 150}, Vec2{250, 150})})
	e.Document().Deselect()
	e.HandleTouch(TouchEvent{Phase: TouchMove, Touches: touches(Vec2{100, 150}, Vec2{300, 150})})
	if e.Gesturing() {
		t.Error("gesture should cancel once its target is no longer selected")
	}
	assertNear(t, "scale", s.Scale(), 1)
}
