package decal

import "image"

// DefaultHistoryCapacity is the number of snapshots retained by NewHistory
// when no capacity is given.
const DefaultHistoryCapacity = 20

// Snapshot is an immutable copy of the document's stickers and selection.
type Snapshot struct {
	Stickers   []StickerState `json:"stickers" yaml:"stickers"`
	SelectedID string         `json:"selectedId,omitempty" yaml:"selectedId,omitempty"`
}

// Capture serializes the document into a snapshot.
func Capture(d *Document) Snapshot {
	snap := Snapshot{Stickers: make([]StickerState, len(d.stickers))}
	for i, s := range d.stickers {
		snap.Stickers[i] = s.Serialize()
	}
	if d.selected != nil {
		snap.SelectedID = d.selected.ID
	}
	return snap
}

// Restore replaces the document's contents with snap. Image payloads are
// re-attached from live stickers matched by id, then from payloads (which
// may be nil). Image stickers found in neither come back with a nil image.
func Restore(d *Document, snap Snapshot, payloads map[string]image.Image) {
	live := make(map[string]image.Image, len(d.stickers))
	for _, s := range d.stickers {
		if s.Kind == KindImage && s.Image != nil {
			live[s.ID] = s.Image
		}
	}

	rebuilt := make([]*Sticker, 0, len(snap.Stickers))
	var selected *Sticker
	for _, st := range snap.Stickers {
		img := live[st.ID]
		if img == nil {
			img = payloads[st.ID]
		}
		s := Deserialize(st, img)
		rebuilt = append(rebuilt, s)
		if snap.SelectedID != "" && s.ID == snap.SelectedID {
			selected = s
		}
	}

	d.Clear()
	d.stickers = append(d.stickers, rebuilt...)
	d.selected = selected
}

// History is a bounded undo/redo stack of snapshots with a cursor at the
// current entry. The cursor is -1 only while the history is empty.
//
// History also keeps non-owning references to the image payloads of every
// sticker that appears in a retained snapshot, so undoing past a deletion can
// still re-attach pixels.
type History struct {
	entries  []Snapshot
	cursor   int
	capacity int
	payloads map[string]image.Image
}

// NewHistory returns an empty history. Non-positive capacities fall back to
// DefaultHistoryCapacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{
		cursor:   -1,
		capacity: capacity,
		payloads: make(map[string]image.Image),
	}
}

// Len returns the number of retained snapshots.
func (h *History) Len() int { return len(h.entries) }

// Cursor returns the index of the current snapshot, or -1 when empty.
func (h *History) Cursor() int { return h.cursor }

// Capacity returns the maximum number of retained snapshots.
func (h *History) Capacity() int { return h.capacity }

// CanUndo reports whether Undo would move the cursor.
func (h *History) CanUndo() bool { return h.cursor > 0 }

// CanRedo reports whether Redo would move the cursor.
func (h *History) CanRedo() bool { return h.cursor >= 0 && h.cursor < len(h.entries)-1 }

// Current returns the snapshot at the cursor.
func (h *History) Current() (Snapshot, bool) {
	if h.cursor < 0 {
		return Snapshot{}, false
	}
	return h.entries[h.cursor], true
}

// Reset drops every snapshot and retained payload.
func (h *History) Reset() {
	h.entries = h.entries[:0]
	h.cursor = -1
	clear(h.payloads)
}

// Push records the document's state. Redo entries after the cursor are
// discarded first; when over capacity the oldest entry is evicted and the
// cursor shifts down with it.
func (h *History) Push(d *Document) {
	h.entries = append(h.entries[:h.cursor+1], Capture(d))
	h.cursor = len(h.entries) - 1
	if len(h.entries) > h.capacity {
		over := len(h.entries) - h.capacity
		copy(h.entries, h.entries[over:])
		h.entries = h.entries[:h.capacity]
		h.cursor -= over
	}
	for _, s := range d.stickers {
		if s.Kind == KindImage && s.Image != nil {
			h.payloads[s.ID] = s.Image
		}
	}
	h.prunePayloads()
}

// Undo moves the cursor back one entry and restores it into d. Reports
// whether anything changed.
func (h *History) Undo(d *Document) bool {
	if !h.CanUndo() {
		return false
	}
	h.cursor--
	Restore(d, h.entries[h.cursor], h.payloads)
	return true
}

// Redo moves the cursor forward one entry and restores it into d.
func (h *History) Redo(d *Document) bool {
	if !h.CanRedo() {
		return false
	}
	h.cursor++
	Restore(d, h.entries[h.cursor], h.payloads)
	return true
}

// prunePayloads drops payload references for ids no retained snapshot
// mentions.
func (h *History) prunePayloads() {
	if len(h.payloads) == 0 {
		return
	}
	seen := make(map[string]struct{}, len(h.payloads))
	for _, e := range h.entries {
		for _, st := range e.Stickers {
			seen[st.ID] = struct{}{}
		}
	}
	for id := range h.payloads {
		if _, ok := seen[id]; !ok {
			delete(h.payloads, id)
		}
	}
}
