package decal

import "math"

// Vec2 is a 2D vector used for positions, offsets and pivots in canvas pixel
// space.
type Vec2 struct {
	X, Y float64
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the Euclidean distance between v and o.
func (v Vec2) Dist(o Vec2) float64 { return math.Hypot(v.X-o.X, v.Y-o.Y) }

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Center returns the centroid of the rectangle.
func (r Rect) Center() Vec2 {
	return Vec2{r.X + r.Width/2, r.Y + r.Height/2}
}

// Kind distinguishes how a sticker is drawn. Geometry is identical for all kinds.
type Kind uint8

const (
	KindEmoji Kind = iota // short text drawn with a font
	KindImage             // decoded bitmap owned outside the sticker
)

// String returns the lowercase kind name used in snapshots and scripts.
func (k Kind) String() string {
	switch k {
	case KindEmoji:
		return "emoji"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "emoji":
		return KindEmoji, true
	case "image":
		return KindImage, true
	}
	return 0, false
}

// Handle identifies one of the six control points of a selected sticker.
type Handle uint8

const (
	HandleNone        Handle = iota // no control point under the pointer
	HandleTopLeft                   // corner resize
	HandleTopRight                  // corner resize
	HandleBottomRight               // corner resize
	HandleBottomLeft                // corner resize
	HandleRotate                    // above top-center
	HandleDelete                    // up-left of the top-left corner
)

// handleOrder is the fixed iteration order used as a tie-break when two
// handles are at the same distance from the query point.
var handleOrder = [...]Handle{
	HandleTopLeft, HandleTopRight, HandleBottomRight, HandleBottomLeft,
	HandleRotate, HandleDelete,
}

// IsCorner reports whether h is one of the four resize handles.
func (h Handle) IsCorner() bool {
	return h >= HandleTopLeft && h <= HandleBottomLeft
}

// String returns a short handle name.
func (h Handle) String() string {
	switch h {
	case HandleTopLeft:
		return "top-left"
	case HandleTopRight:
		return "top-right"
	case HandleBottomRight:
		return "bottom-right"
	case HandleBottomLeft:
		return "bottom-left"
	case HandleRotate:
		return "rotate"
	case HandleDelete:
		return "delete"
	default:
		return "none"
	}
}

// cornerSigns returns the outward direction of a corner handle in the
// sticker's local frame: +1 for right/bottom, -1 for left/top.
func (h Handle) cornerSigns() (sx, sy float64) {
	switch h {
	case HandleTopLeft:
		return -1, -1
	case HandleTopRight:
		return 1, -1
	case HandleBottomRight:
		return 1, 1
	case HandleBottomLeft:
		return -1, 1
	}
	return 0, 0
}

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// Has reports whether all bits of m2 are set in m.
func (m KeyModifiers) Has(m2 KeyModifiers) bool { return m&m2 == m2 }

// command reports whether the platform command modifier (Ctrl or Meta) is held.
func (m KeyModifiers) command() bool { return m&(ModCtrl|ModMeta) != 0 }

// clamp limits v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// normalizeAngle folds a radian angle into (-π, π].
func normalizeAngle(a float64) float64 {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0
	}
	if a > math.Pi || a <= -math.Pi {
		a = math.Mod(a, 2*math.Pi)
	}
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
