package decal

import "math"

// Affine is a 2D affine matrix stored as [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Affine [6]float64

// IdentityAffine is the identity matrix.
var IdentityAffine = Affine{1, 0, 0, 1, 0, 0}

// TranslateAffine returns a translation matrix.
func TranslateAffine(x, y float64) Affine { return Affine{1, 0, 0, 1, x, y} }

// ScaleAffine returns a scale matrix.
func ScaleAffine(sx, sy float64) Affine { return Affine{sx, 0, 0, sy, 0, 0} }

// RotateAffine returns a rotation matrix for angle radians. With Y pointing
// down, positive angles turn clockwise on screen.
func RotateAffine(angle float64) Affine {
	sin, cos := math.Sincos(angle)
	return Affine{cos, sin, -sin, cos, 0, 0}
}

// Mul returns m * o, i.e. o is applied first.
func (m Affine) Mul(o Affine) Affine {
	return Affine{
		m[0]*o[0] + m[2]*o[1],
		m[1]*o[0] + m[3]*o[1],
		m[0]*o[2] + m[2]*o[3],
		m[1]*o[2] + m[3]*o[3],
		m[0]*o[4] + m[2]*o[5] + m[4],
		m[1]*o[4] + m[3]*o[5] + m[5],
	}
}

// Invert computes the inverse matrix.
// Returns the identity matrix if the matrix is singular (determinant ≈ 0).
func (m Affine) Invert() Affine {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return IdentityAffine
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Affine{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// Apply transforms a point.
func (m Affine) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// ApplyVec is Apply for a Vec2.
func (m Affine) ApplyVec(v Vec2) Vec2 {
	x, y := m.Apply(v.X, v.Y)
	return Vec2{x, y}
}

// rotateAround rotates p by angle radians about pivot.
func rotateAround(p, pivot Vec2, angle float64) Vec2 {
	sin, cos := math.Sincos(angle)
	dx := p.X - pivot.X
	dy := p.Y - pivot.Y
	return Vec2{
		pivot.X + dx*cos - dy*sin,
		pivot.Y + dx*sin + dy*cos,
	}
}

// Transform returns the matrix mapping the sticker's unscaled local box
// (0..BaseWidth, 0..BaseHeight) to canvas space.
//
// Composition order:
//
//	Translate(-BaseWidth/2, -BaseHeight/2) -> Scale -> Rotate -> Translate(center)
func (s *Sticker) Transform() Affine {
	c := s.Center()
	m := TranslateAffine(c.X, c.Y)
	m = m.Mul(RotateAffine(s.rotation))
	m = m.Mul(ScaleAffine(s.scale, s.scale))
	return m.Mul(TranslateAffine(-s.BaseWidth/2, -s.BaseHeight/2))
}

// ToLocal maps a canvas point into the sticker's unrotated frame by rotating
// it about the center by -rotation. The result is still in canvas units and
// can be compared against Bounds.
func (s *Sticker) ToLocal(x, y float64) Vec2 {
	p := Vec2{x, y}
	if s.rotation == 0 {
		return p
	}
	return rotateAround(p, s.Center(), -s.rotation)
}

// ToCanvas is the inverse of ToLocal.
func (s *Sticker) ToCanvas(p Vec2) Vec2 {
	if s.rotation == 0 {
		return p
	}
	return rotateAround(p, s.Center(), s.rotation)
}
