package decal

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertVec(t *testing.T, name string, got, want Vec2) {
	t.Helper()
	if math.Abs(got.X-want.X) > 1e-6 || math.Abs(got.Y-want.Y) > 1e-6 {
		t.Errorf("%s = %+v, want %+v", name, got, want)
	}
}

func assertMatrix(t *testing.T, name string, got, want Affine) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

// --- Affine ---

func TestAffineRotation90(t *testing.T) {
	// cos(90)=0, sin(90)=1 → a=0, b=1, c=-1, d=0
	assertMatrix(t, "rot90", RotateAffine(math.Pi/2), Affine{0, 1, -1, 0, 0, 0})
}

func TestAffineMulOrder(t *testing.T) {
	// Scale first, then translate.
	m := TranslateAffine(10, 20).Mul(ScaleAffine(2, 3))
	x, y := m.Apply(1, 1)
	assertNear(t, "x", x, 12)
	assertNear(t, "y", y, 23)
}

func TestAffineInvert(t *testing.T) {
	m := TranslateAffine(30, -4).Mul(RotateAffine(0.6)).Mul(ScaleAffine(1.5, 0.5))
	assertMatrix(t, "m*inv", m.Mul(m.Invert()), IdentityAffine)
}

func TestAffineInvertSingular(t *testing.T) {
	assertMatrix(t, "singular", ScaleAffine(0, 1).Invert(), IdentityAffine)
}

func TestRotateAround(t *testing.T) {
	got := rotateAround(Vec2{20, 10}, Vec2{10, 10}, math.Pi/2)
	assertVec(t, "quarter turn", got, Vec2{10, 20})
}

// --- Sticker transform ---

func TestStickerTransformCorners(t *testing.T) {
	s := NewEmojiSticker("x", 100, 50)
	s.SetScale(2)
	s.SetRotation(math.Pi / 2)
	m := s.Transform()

	// The local box maps onto the rotated, scaled footprint.
	b := s.Bounds()
	c := s.Center()
	assertVec(t, "center", m.ApplyVec(Vec2{40, 40}), c)
	assertVec(t, "top-left", m.ApplyVec(Vec2{0, 0}), s.ToCanvas(Vec2{b.X, b.Y}))
	assertVec(t, "bottom-right", m.ApplyVec(Vec2{80, 80}), s.ToCanvas(Vec2{b.X + b.Width, b.Y + b.Height}))
}

func TestToLocalRoundTrip(t *testing.T) {
	s := NewEmojiSticker("x", 0, 0)
	for _, r := range []float64{0, 0.3, -1.2, math.Pi} {
		s.SetRotation(r)
		p := Vec2{17, -3}
		l := s.ToLocal(p.X, p.Y)
		assertVec(t, "round trip", s.ToCanvas(l), p)
	}
}
