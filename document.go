package decal

// Document is the ordered sticker collection plus the single selection.
// Order is paint order: later stickers draw on top and are hit first.
//
// The selected sticker, when non-nil, is always an element of the collection.
type Document struct {
	stickers []*Sticker
	selected *Sticker
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{}
}

// Stickers returns the stickers in paint order. The returned slice MUST NOT
// be mutated.
func (d *Document) Stickers() []*Sticker {
	return d.stickers
}

// Len returns the number of stickers.
func (d *Document) Len() int {
	return len(d.stickers)
}

// Add appends s on top of the paint order. Adding a sticker that is already
// present is a no-op.
func (d *Document) Add(s *Sticker) {
	if s == nil || d.indexOf(s) >= 0 {
		return
	}
	d.stickers = append(d.stickers, s)
}

// Remove deletes s from the document and clears the selection if it pointed
// at s. Reports whether s was present.
func (d *Document) Remove(s *Sticker) bool {
	i := d.indexOf(s)
	if i < 0 {
		return false
	}
	copy(d.stickers[i:], d.stickers[i+1:])
	d.stickers[len(d.stickers)-1] = nil
	d.stickers = d.stickers[:len(d.stickers)-1]
	if d.selected == s {
		d.selected = nil
	}
	return true
}

// Clear removes every sticker and the selection.
func (d *Document) Clear() {
	for i := range d.stickers {
		d.stickers[i] = nil
	}
	d.stickers = d.stickers[:0]
	d.selected = nil
}

// Find returns the sticker with the given id, or nil.
func (d *Document) Find(id string) *Sticker {
	for _, s := range d.stickers {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Selected returns the selected sticker, or nil.
func (d *Document) Selected() *Sticker {
	return d.selected
}

// IsSelected reports whether s is the selected sticker.
func (d *Document) IsSelected(s *Sticker) bool {
	return s != nil && d.selected == s
}

// Select makes s the selected sticker. Selecting a sticker that is not in the
// document is refused and reported as false; nil deselects.
func (d *Document) Select(s *Sticker) bool {
	if s == nil {
		d.selected = nil
		return true
	}
	if d.indexOf(s) < 0 {
		return false
	}
	d.selected = s
	return true
}

// Deselect clears the selection.
func (d *Document) Deselect() {
	d.selected = nil
}

// HitTest returns the topmost sticker containing (x, y), or nil.
func (d *Document) HitTest(x, y float64) *Sticker {
	// Iterate backward (reverse paint order): topmost sticker first.
	for i := len(d.stickers) - 1; i >= 0; i-- {
		if d.stickers[i].ContainsPoint(x, y) {
			return d.stickers[i]
		}
	}
	return nil
}

// ControlPointAt returns the handle of the selected sticker under (x, y).
// Without a selection it always returns HandleNone.
func (d *Document) ControlPointAt(x, y float64) Handle {
	if d.selected == nil {
		return HandleNone
	}
	return d.selected.ControlPointAt(x, y)
}

// BringToFront moves s to the top of the paint order.
func (d *Document) BringToFront(s *Sticker) bool {
	i := d.indexOf(s)
	if i < 0 {
		return false
	}
	copy(d.stickers[i:], d.stickers[i+1:])
	d.stickers[len(d.stickers)-1] = s
	return true
}

// SendToBack moves s to the bottom of the paint order.
func (d *Document) SendToBack(s *Sticker) bool {
	i := d.indexOf(s)
	if i < 0 {
		return false
	}
	copy(d.stickers[1:i+1], d.stickers[:i])
	d.stickers[0] = s
	return true
}

func (d *Document) indexOf(s *Sticker) int {
	for i, x := range d.stickers {
		if x == s {
			return i
		}
	}
	return -1
}
