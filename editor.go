package decal

import (
	"context"
	"fmt"
	"image"
	"io"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ImageLoader decodes user-supplied image bytes. The imageload package
// provides the stock implementation.
type ImageLoader interface {
	LoadImage(ctx context.Context, r io.Reader) (image.Image, error)
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.log = l
		}
	}
}

// WithClock sets the time source used to stamp samples that carry no time.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLoader sets the loader used by LoadBaseImage and AddImage.
func WithLoader(l ImageLoader) Option {
	return func(e *Editor) { e.loader = l }
}

// WithRedraw registers a callback invoked whenever the scene changes.
func WithRedraw(fn func()) Option {
	return func(e *Editor) { e.onRedraw = fn }
}

// Editor owns the document, history and input machines for one base image.
// It is not safe for concurrent use; drive it from a single goroutine (the
// game loop or an event handler).
type Editor struct {
	cfg Config
	log *zap.Logger

	doc     *Document
	hist    *History
	pointer *PointerMachine
	gesture *GestureInterpreter

	base   image.Image
	loader ImageLoader

	loading atomic.Bool

	now      func() time.Time
	onRedraw func()

	// lastTouch is the most recent single-finger position, used to synthesize
	// the pointer-up when that finger lifts.
	lastTouch Vec2
}

// NewEditor returns an editor with no base image. A cfg that fails Validate
// is replaced by DefaultConfig.
func NewEditor(cfg Config, opts ...Option) *Editor {
	e := &Editor{
		log: zap.NewNop(),
		doc: NewDocument(),
		now: time.Now,
	}
	e.pointer = newPointerMachine(e)
	e.gesture = newGestureInterpreter(e)
	for _, opt := range opts {
		opt(e)
	}
	if err := cfg.Validate(); err != nil {
		e.log.Warn("invalid editor config, using defaults", zap.Error(err))
		cfg = DefaultConfig()
	}
	e.cfg = cfg
	e.hist = NewHistory(cfg.HistoryCapacity)
	return e
}

// Document returns the live document.
func (e *Editor) Document() *Document { return e.doc }

// History returns the undo history.
func (e *Editor) History() *History { return e.hist }

// Config returns the editor's tunables.
func (e *Editor) Config() Config { return e.cfg }

// Base returns the base image, or nil.
func (e *Editor) Base() image.Image { return e.base }

// HasBase reports whether a base image is loaded.
func (e *Editor) HasBase() bool { return e.base != nil }

// PointerMode returns the pointer machine's mode.
func (e *Editor) PointerMode() PointerMode { return e.pointer.Mode() }

// Gesturing reports whether a two-finger gesture is in progress.
func (e *Editor) Gesturing() bool { return e.gesture.Active() }

// Selected returns the selected sticker, or nil.
func (e *Editor) Selected() *Sticker { return e.doc.Selected() }

// CanvasSize returns the base image's pixel size, or zero without one.
func (e *Editor) CanvasSize() (int, int) {
	if e.base == nil {
		return 0, 0
	}
	b := e.base.Bounds()
	return b.Dx(), b.Dy()
}

// SetBaseImage installs img as the base image. Existing stickers and history
// are discarded and a single initial snapshot is recorded.
func (e *Editor) SetBaseImage(img image.Image) error {
	if img == nil || img.Bounds().Empty() {
		return &ValidationError{Reason: ReasonEmpty, Detail: "base image has no pixels"}
	}
	e.pointer.Cancel()
	e.gesture.Cancel()
	e.base = img
	e.doc.Clear()
	e.hist.Reset()
	e.hist.Push(e.doc)

	b := img.Bounds()
	e.log.Info("base image set", zap.Int("width", b.Dx()), zap.Int("height", b.Dy()))
	e.redraw()
	return nil
}

// LoadBaseImage decodes r with the configured loader and installs the result.
// Returns ErrBusy while another load is running.
func (e *Editor) LoadBaseImage(ctx context.Context, r io.Reader) error {
	img, err := e.load(ctx, "load base image", r)
	if err != nil {
		return err
	}
	return e.SetBaseImage(img)
}

// AddEmoji adds an emoji sticker centered on the base image and selects it.
func (e *Editor) AddEmoji(emoji string) (*Sticker, error) {
	if e.base == nil {
		return nil, precondition("add emoji", ErrNoBaseImage)
	}
	c := e.canvasCenter()
	return e.AddEmojiAt(emoji, c.X-DefaultStickerSize/2, c.Y-DefaultStickerSize/2)
}

// AddEmojiAt adds an emoji sticker with its top-left at (x, y).
func (e *Editor) AddEmojiAt(emoji string, x, y float64) (*Sticker, error) {
	if e.base == nil {
		return nil, precondition("add emoji", ErrNoBaseImage)
	}
	if emoji == "" {
		return nil, &ValidationError{Reason: ReasonEmpty, Detail: "emoji text is empty"}
	}
	s := NewEmojiSticker(emoji, x, y)
	e.addSticker(s, "add emoji")
	return s, nil
}

// AddImageSticker adds an already decoded image as a sticker centered on the
// base image.
func (e *Editor) AddImageSticker(img image.Image) (*Sticker, error) {
	if e.base == nil {
		return nil, precondition("add image", ErrNoBaseImage)
	}
	if img == nil || img.Bounds().Empty() {
		return nil, &ValidationError{Reason: ReasonEmpty, Detail: "sticker image has no pixels"}
	}
	s := NewImageSticker(img, 0, 0, e.cfg.MaxImageFootprint)
	s.setCenter(e.canvasCenter())
	e.addSticker(s, "add image")
	return s, nil
}

// AddImage decodes r with the configured loader and adds it as a sticker.
func (e *Editor) AddImage(ctx context.Context, r io.Reader) (*Sticker, error) {
	if e.base == nil {
		return nil, precondition("add image", ErrNoBaseImage)
	}
	img, err := e.load(ctx, "add image", r)
	if err != nil {
		return nil, err
	}
	return e.AddImageSticker(img)
}

// DeleteSelected removes the selected sticker.
func (e *Editor) DeleteSelected() error {
	sel := e.doc.Selected()
	if sel == nil {
		return precondition("delete", ErrNoSelection)
	}
	e.pointer.Cancel()
	e.gesture.Cancel()
	e.deleteSticker(sel)
	return nil
}

// DuplicateSelected clones the selected sticker, offset by CloneOffset, and
// selects the clone.
func (e *Editor) DuplicateSelected() (*Sticker, error) {
	sel := e.doc.Selected()
	if sel == nil {
		return nil, precondition("duplicate", ErrNoSelection)
	}
	return e.duplicate(sel), nil
}

// Nudge moves the selected sticker by (dx, dy) and records a snapshot.
func (e *Editor) Nudge(dx, dy float64) error {
	sel := e.doc.Selected()
	if sel == nil {
		return precondition("nudge", ErrNoSelection)
	}
	sel.Move(dx, dy)
	e.commit("nudge")
	e.redraw()
	return nil
}

// SetOpacity sets the selected sticker's opacity and records a snapshot.
func (e *Editor) SetOpacity(v float64) error {
	sel := e.doc.Selected()
	if sel == nil {
		return precondition("set opacity", ErrNoSelection)
	}
	sel.SetOpacity(v)
	e.commit("opacity")
	e.redraw()
	return nil
}

// BringToFront raises the selected sticker to the top of the paint order.
func (e *Editor) BringToFront() error {
	sel := e.doc.Selected()
	if sel == nil {
		return precondition("bring to front", ErrNoSelection)
	}
	if e.doc.BringToFront(sel) {
		e.commit("raise")
		e.redraw()
	}
	return nil
}

// SendToBack lowers the selected sticker to the bottom of the paint order.
func (e *Editor) SendToBack() error {
	sel := e.doc.Selected()
	if sel == nil {
		return precondition("send to back", ErrNoSelection)
	}
	if e.doc.SendToBack(sel) {
		e.commit("lower")
		e.redraw()
	}
	return nil
}

// Deselect clears the selection.
func (e *Editor) Deselect() {
	if e.doc.Selected() == nil {
		return
	}
	e.doc.Deselect()
	e.redraw()
}

// Undo restores the previous snapshot. Any in-flight pointer or gesture
// interaction is abandoned first since restoring rebuilds every sticker.
func (e *Editor) Undo() bool {
	e.pointer.Cancel()
	e.gesture.Cancel()
	if !e.hist.Undo(e.doc) {
		return false
	}
	e.log.Debug("undo", zap.Int("cursor", e.hist.Cursor()))
	e.redraw()
	return true
}

// Redo re-applies the next snapshot.
func (e *Editor) Redo() bool {
	e.pointer.Cancel()
	e.gesture.Cancel()
	if !e.hist.Redo(e.doc) {
		return false
	}
	e.log.Debug("redo", zap.Int("cursor", e.hist.Cursor()))
	e.redraw()
	return true
}

// HandlePointerDown feeds a mouse press (or single-finger touch start).
func (e *Editor) HandlePointerDown(s PointerSample) {
	if e.gesture.Active() {
		return
	}
	e.pointer.Down(e.stamp(s))
}

// HandlePointerMove feeds pointer motion.
func (e *Editor) HandlePointerMove(s PointerSample) {
	if e.gesture.Active() {
		return
	}
	e.pointer.Move(e.stamp(s))
}

// HandlePointerUp feeds a pointer release.
func (e *Editor) HandlePointerUp(s PointerSample) {
	if e.gesture.Active() {
		return
	}
	e.pointer.Up(e.stamp(s))
}

// HandleTouch arbitrates touch input between the pointer machine and the
// gesture interpreter. One finger drives the pointer machine; a second finger
// ends it and starts a gesture; the gesture ends (with one snapshot) when
// fewer than two fingers remain. Three or more fingers are ignored.
func (e *Editor) HandleTouch(ev TouchEvent) {
	if ev.Time.IsZero() {
		ev.Time = e.now()
	}
	n := len(ev.Touches)

	if e.gesture.Active() {
		switch ev.Phase {
		case TouchMove:
			e.gesture.Move(ev.Touches)
		case TouchEnd, TouchCancel:
			e.gesture.End(ev.Touches)
		}
		return
	}

	switch ev.Phase {
	case TouchStart:
		switch n {
		case 1:
			e.lastTouch = Vec2{ev.Touches[0].X, ev.Touches[0].Y}
			e.pointer.Down(touchSample(ev.Touches[0], ev.Time))
		case 2:
			e.pointer.Finish()
			if !e.gesture.Start(ev.Touches) {
				e.log.Debug("two-finger start ignored")
			}
		}
	case TouchMove:
		if n == 1 {
			e.lastTouch = Vec2{ev.Touches[0].X, ev.Touches[0].Y}
			e.pointer.Move(touchSample(ev.Touches[0], ev.Time))
		}
	case TouchEnd:
		if n == 0 {
			e.pointer.Up(PointerSample{X: e.lastTouch.X, Y: e.lastTouch.Y, Time: ev.Time})
		}
	case TouchCancel:
		e.pointer.Finish()
	}
}

func touchSample(t TouchPoint, at time.Time) PointerSample {
	return PointerSample{X: t.X, Y: t.Y, Time: at}
}

// Draw renders the scene with the selection overlay.
func (e *Editor) Draw(r Renderer) {
	DrawScene(r, e.base, e.doc, true)
}

// Record captures the scene as a replayable command list. withOverlay
// controls whether the selection overlay is included; exports omit it.
func (e *Editor) Record(withOverlay bool) *CommandList {
	l := NewCommandList(e.CanvasSize())
	DrawScene(l, e.base, e.doc, withOverlay)
	return l
}

// --- host implementation ---

func (e *Editor) document() *Document { return e.doc }
func (e *Editor) hasBase() bool       { return e.base != nil }
func (e *Editor) config() *Config     { return &e.cfg }
func (e *Editor) logger() *zap.Logger { return e.log }

func (e *Editor) commit(reason string) {
	e.hist.Push(e.doc)
	e.log.Debug("snapshot",
		zap.String("reason", reason),
		zap.Int("cursor", e.hist.Cursor()),
		zap.Int("entries", e.hist.Len()),
	)
}

func (e *Editor) deleteSticker(s *Sticker) {
	if !e.doc.Remove(s) {
		return
	}
	e.log.Info("sticker deleted", stickerFields(s)...)
	e.commit("delete")
	e.redraw()
}

func (e *Editor) duplicate(s *Sticker) *Sticker {
	c := s.Clone()
	e.doc.Add(c)
	e.doc.Select(c)
	e.log.Info("sticker duplicated", append(stickerFields(c), zap.String("source", s.ID))...)
	e.commit("duplicate")
	e.redraw()
	return c
}

func (e *Editor) redraw() {
	if e.onRedraw != nil {
		e.onRedraw()
	}
}

func (e *Editor) addSticker(s *Sticker, op string) {
	e.doc.Add(s)
	e.doc.Select(s)
	e.log.Info("sticker added", append(stickerFields(s), zap.String("op", op))...)
	e.commit(op)
	e.redraw()
}

func (e *Editor) canvasCenter() Vec2 {
	w, h := e.CanvasSize()
	return Vec2{float64(w) / 2, float64(h) / 2}
}

func (e *Editor) stamp(s PointerSample) PointerSample {
	if s.Time.IsZero() {
		s.Time = e.now()
	}
	return s
}

func (e *Editor) load(ctx context.Context, op string, r io.Reader) (image.Image, error) {
	if e.loader == nil {
		return nil, fmt.Errorf("decal: %s: no image loader configured", op)
	}
	if !e.loading.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer e.loading.Store(false)

	img, err := e.loader.LoadImage(ctx, r)
	if err != nil {
		e.log.Warn("image load failed", zap.String("op", op), zap.Error(err))
		return nil, err
	}
	return img, nil
}
