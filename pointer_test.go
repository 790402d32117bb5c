package decal

import (
	"math"
	"testing"
	"time"
)

// The fixture sticker spans (160, 110)..(240, 190) with its rotate handle at
// (200, 80) and delete handle at (142, 92).

func TestPointerDragCommitsPastThreshold(t *testing.T) {
	e, s, _ := newTestEditor(t)
	e.HandlePointerDown(at(200, 150))
	if e.PointerMode() != ModeDragging {
		t.Fatalf("mode = %v, want dragging", e.PointerMode())
	}
	e.HandlePointerMove(at(215, 150))
	e.HandlePointerMove(at(230, 160))
	e.HandlePointerUp(at(230, 160))

	assertVec(t, "center", s.Center(), Vec2{230, 160})
	if e.History().Len() != 3 {
		t.Errorf("history length = %d, want 3", e.History().Len())
	}
	if e.PointerMode() != ModeIdle {
		t.Errorf("mode = %v, want idle", e.PointerMode())
	}
}

func TestPointerJitterBelowThreshold(t *testing.T) {
	e, s, _ := newTestEditor(t)
	e.HandlePointerDown(at(200, 150))
	e.HandlePointerMove(at(203, 150))
	e.HandlePointerUp(at(203, 150))

	assertNear(t, "moved", s.Center().X, 203)
	if e.History().Len() != 2 {
		t.Errorf("history length = %d, want 2 (no snapshot under the threshold)", e.History().Len())
	}
}

func TestPointerDownOnEmptyDeselects(t *testing.T) {
	e, _, _ := newTestEditor(t)
	e.HandlePointerDown(at(20, 20))
	if e.Selected() != nil {
		t.Error("press on empty canvas should deselect")
	}
	if e.PointerMode() != ModeIdle {
		t.Errorf("mode = %v, want idle", e.PointerMode())
	}
	e.HandlePointerMove(at(30, 30))
	e.HandlePointerUp(at(30, 30))
	if e.History().Len() != 2 {
		t.Errorf("history length = %d, want 2", e.History().Len())
	}
}

func TestPointerResizeFromCorner(t *testing.T) {
	tests := []struct {
		name   string
		from   Vec2
		to     Vec2
		handle Handle
		want   float64
	}{
		{"grow bottom-right", Vec2{240, 190}, Vec2{244, 194}, HandleBottomRight, 1.1},
		{"shrink bottom-right", Vec2{240, 190}, Vec2{236, 186}, HandleBottomRight, 0.9},
		{"grow top-left", Vec2{160, 110}, Vec2{156, 106}, HandleTopLeft, 1.1},
		{"small step", Vec2{240, 190}, Vec2{241, 190}, HandleBottomRight, 1 + 0.5/40},
		{"clamped jump", Vec2{240, 190}, Vec2{400, 400}, HandleBottomRight, 1.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, s, _ := newTestEditor(t)
			c := s.Center()
			e.HandlePointerDown(at(tt.from.X, tt.from.Y))
			m := e.pointer
			if m.Mode() != ModeResizing || m.Handle() != tt.handle {
				t.Fatalf("mode %v handle %v, want resizing %v", m.Mode(), m.Handle(), tt.handle)
			}
			e.HandlePointerMove(at(tt.to.X, tt.to.Y))
			assertNear(t, "scale", s.Scale(), tt.want)
			assertVec(t, "center", s.Center(), c)
		})
	}
}

func TestPointerResizeRotatedSticker(t *testing.T) {
	e, s, _ := newTestEditor(t)
	s.SetRotation(math.Pi / 2)
	// Local bottom-right now sits at the visual bottom-left.
	br := s.ToCanvas(Vec2{240, 190})
	e.HandlePointerDown(at(br.X, br.Y))
	if e.pointer.Handle() != HandleBottomRight {
		t.Fatalf("handle = %v, want bottom-right", e.pointer.Handle())
	}
	// Dragging outward along the visual diagonal grows the sticker.
	e.HandlePointerMove(at(br.X-4, br.Y+4))
	assertNear(t, "scale", s.Scale(), 1.1)
}

func TestPointerRotateHandle(t *testing.T) {
	e, s, _ := newTestEditor(t)
	e.HandlePointerDown(at(200, 80))
	if e.PointerMode() != ModeRotating {
		t.Fatalf("mode = %v, want rotating", e.PointerMode())
	}
	// Quarter turn clockwise about the center (200, 150).
	e.HandlePointerMove(at(270, 150))
	assertNear(t, "rotation", s.Rotation(), math.Pi/2)
	assertVec(t, "center", s.Center(), Vec2{200, 150})

	e.HandlePointerUp(at(270, 150))
	if e.History().Len() != 3 {
		t.Errorf("history length = %d, want 3", e.History().Len())
	}
}

func TestPointerRotateAcrossSeam(t *testing.T) {
	e, s, _ := newTestEditor(t)
	e.HandlePointerDown(at(200, 80))
	// Sweep through the ±π seam on the left side of the center.
	for _, p := range []Vec2{{130, 150}, {130, 149}, {130, 151}} {
		e.HandlePointerMove(at(p.X, p.Y))
	}
	want := normalizeAngle(math.Atan2(1, -70) + math.Pi/2)
	if math.Abs(s.Rotation()-want) > 1e-9 {
		t.Errorf("rotation = %v, want %v", s.Rotation(), want)
	}
}

func TestPointerDeleteHandle(t *testing.T) {
	e, s, _ := newTestEditor(t)
	e.HandlePointerDown(at(142, 92))
	if e.Document().Find(s.ID) != nil {
		t.Error("sticker should be deleted")
	}
	if e.Selected() != nil || e.PointerMode() != ModeIdle {
		t.Error("delete should leave nothing selected and the machine idle")
	}
	if e.History().Len() != 3 {
		t.Errorf("history length = %d, want 3", e.History().Len())
	}
	e.Undo()
	if e.Document().Find(s.ID) == nil {
		t.Error("undo should restore the deleted sticker")
	}
}

func TestPointerHandlesNeedSelection(t *testing.T) {
	e, s, _ := newTestEditor(t)
	e.Deselect()
	// The delete handle spot is outside the body; without a selection it is
	// empty canvas.
	e.HandlePointerDown(at(142, 92))
	if e.Document().Find(s.ID) == nil {
		t.Error("unselected sticker must not be deletable via its handle")
	}
}

func TestPointerDoubleClickWindow(t *testing.T) {
	tests := []struct {
		name  string
		gap   time.Duration
		clone bool
	}{
		{"inside", 200 * time.Millisecond, true},
		{"edge", 300 * time.Millisecond, true},
		{"outside", 400 * time.Millisecond, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, clk := newTestEditor(t)
			e.HandlePointerDown(at(200, 150))
			e.HandlePointerUp(at(200, 150))
			clk.advance(tt.gap)
			e.HandlePointerDown(at(200, 150))
			e.HandlePointerUp(at(200, 150))
			if got := e.Document().Len() == 2; got != tt.clone {
				t.Errorf("cloned = %v, want %v", got, tt.clone)
			}
		})
	}
}

func TestPointerDoubleClickNeedsSameSticker(t *testing.T) {
	e, a, clk := newTestEditor(t)
	b, err := e.AddEmojiAt("b", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	e.HandlePointerDown(at(200, 150)) // a
	e.HandlePointerUp(at(200, 150))
	clk.advance(100 * time.Millisecond)
	e.HandlePointerDown(at(40, 40)) // b
	e.HandlePointerUp(at(40, 40))

	if e.Document().Len() != 2 {
		t.Errorf("Len = %d, want 2", e.Document().Len())
	}
	if e.Selected() != b || e.Document().IsSelected(a) {
		t.Error("second press should just select b")
	}
}

func TestPointerTripleClickClonesOnce(t *testing.T) {
	e, _, clk := newTestEditor(t)
	for i := 0; i < 3; i++ {
		e.HandlePointerDown(at(200, 150))
		e.HandlePointerUp(at(200, 150))
		clk.advance(50 * time.Millisecond)
	}
	// The third press lands on the clone; cloning reset the double-click
	// state, so it only starts a drag.
	if e.Document().Len() != 2 {
		t.Errorf("Len = %d, want 2", e.Document().Len())
	}
}

func TestPointerIgnoredDuringGesture(t *testing.T) {
	e, s, _ := newTestEditor(t)
	e.HandleTouch(TouchEvent{Phase: TouchStart, Touches: []TouchPoint{{0, 150, 150}, {1, 250, 150}}})
	c := s.Center()
	e.HandlePointerDown(at(200, 150))
	e.HandlePointerMove(at(300, 300))
	if e.PointerMode() != ModeIdle {
		t.Errorf("mode = %v, want idle", e.PointerMode())
	}
	assertVec(t, "center", s.Center(), c)
}

func TestPointerCancelRestoresPose(t *testing.T) {
	tests := []struct {
		name     string
		from, to Vec2
		mode     PointerMode
	}{
		{"drag", Vec2{200, 150}, Vec2{260, 150}, ModeDragging},
		{"resize", Vec2{240, 190}, Vec2{260, 210}, ModeResizing},
		{"rotate", Vec2{200, 80}, Vec2{280, 150}, ModeRotating},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, s, _ := newTestEditor(t)
			e.HandlePointerDown(at(tt.from.X, tt.from.Y))
			if e.PointerMode() != tt.mode {
				t.Fatalf("mode = %v, want %v", e.PointerMode(), tt.mode)
			}
			e.HandlePointerMove(at(tt.to.X, tt.to.Y))
			e.pointer.Cancel()

			assertVec(t, "center", s.Center(), Vec2{200, 150})
			assertNear(t, "scale", s.Scale(), 1)
			assertNear(t, "rotation", s.Rotation(), 0)
			if e.History().Len() != 2 {
				t.Errorf("history length = %d, want 2", e.History().Len())
			}
		})
	}
}

func TestDeleteDuringDragUndoesToPress(t *testing.T) {
	e, _, _ := newTestEditor(t)
	e.HandlePointerDown(at(200, 150))
	e.HandlePointerMove(at(300, 150))
	if err := e.DeleteSelected(); err != nil {
		t.Fatal(err)
	}
	e.HandlePointerUp(at(300, 150))
	if e.History().Len() != 3 {
		t.Fatalf("history length = %d, want 3", e.History().Len())
	}
	e.Undo()
	assertVec(t, "restored center", e.Document().Stickers()[0].Center(), Vec2{200, 150})
}

func TestPointerModeString(t *testing.T) {
	for m, want := range map[PointerMode]string{
		ModeIdle: "idle", ModeDragging: "dragging", ModeResizing: "resizing", ModeRotating: "rotating",
	} {
		if m.String() != want {
			t.Errorf("%d.String() = %q, want %q", m, m.String(), want)
		}
	}
}
