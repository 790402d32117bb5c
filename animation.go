package decal

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 values simultaneously. Create one via the
// convenience constructors (TweenPosition, TweenScale, TweenRotation,
// TweenOpacity, TweenFloat) and call Update(dt) each frame. Sticker tweens
// write through the sticker's setters, so clamping and angle normalization
// hold on every frame.
//
// Tweens do not record history; callers commit once the group is Done if the
// result should be undoable.
//
// There is no global animation manager; users call Update themselves.
type TweenGroup struct {
	tweens [4]*gween.Tween
	apply  [4]func(float64)
	count  int
	Done   bool
}

// Update advances all tweens by dt seconds and writes the values.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		g.apply[i](float64(val))
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
}

func (g *TweenGroup) add(from, to float64, duration float32, fn ease.TweenFunc, apply func(float64)) {
	g.tweens[g.count] = gween.New(float32(from), float32(to), duration, fn)
	g.apply[g.count] = apply
	g.count++
}

// TweenPosition animates the sticker's top-left to (toX, toY).
func TweenPosition(s *Sticker, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{}
	g.add(s.X, toX, duration, fn, func(v float64) { s.X = v })
	g.add(s.Y, toY, duration, fn, func(v float64) { s.Y = v })
	return g
}

// TweenScale animates the sticker's scale about its center.
func TweenScale(s *Sticker, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{}
	g.add(s.scale, to, duration, fn, func(v float64) {
		c := s.Center()
		s.SetScale(v)
		s.setCenter(c)
	})
	return g
}

// TweenRotation animates the sticker's rotation along the shorter arc.
func TweenRotation(s *Sticker, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{}
	from := s.rotation
	g.add(from, from+normalizeAngle(to-from), duration, fn, s.SetRotation)
	return g
}

// TweenOpacity animates the sticker's opacity.
func TweenOpacity(s *Sticker, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{}
	g.add(s.opacity, to, duration, fn, s.SetOpacity)
	return g
}

// TweenFloat animates an arbitrary value, for view-local effects that are not
// part of the document.
func TweenFloat(field *float64, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{}
	g.add(*field, to, duration, fn, func(v float64) { *field = v })
	return g
}
