package decal

import "testing"

func threeStickers() (*Document, *Sticker, *Sticker, *Sticker) {
	d := NewDocument()
	a := NewEmojiSticker("a", 0, 0)
	b := NewEmojiSticker("b", 40, 0)
	c := NewEmojiSticker("c", 500, 500)
	d.Add(a)
	d.Add(b)
	d.Add(c)
	return d, a, b, c
}

func TestDocumentAddIgnoresDuplicates(t *testing.T) {
	d, a, _, _ := threeStickers()
	d.Add(a)
	d.Add(nil)
	if d.Len() != 3 {
		t.Errorf("Len = %d, want 3", d.Len())
	}
}

func TestDocumentHitTestTopmost(t *testing.T) {
	d, a, b, _ := threeStickers()
	// (60, 40) is inside both a (0..80) and b (40..120).
	if got := d.HitTest(60, 40); got != b {
		t.Errorf("HitTest overlap = %v, want b", got)
	}
	if got := d.HitTest(10, 10); got != a {
		t.Errorf("HitTest a-only = %v, want a", got)
	}
	if got := d.HitTest(300, 300); got != nil {
		t.Errorf("HitTest empty = %v, want nil", got)
	}
}

func TestDocumentSingleSelection(t *testing.T) {
	d, a, b, _ := threeStickers()
	d.Select(a)
	d.Select(b)
	if d.Selected() != b || d.IsSelected(a) {
		t.Error("selecting b should deselect a")
	}
	if d.Select(NewEmojiSticker("stray", 0, 0)) {
		t.Error("selecting a sticker outside the document should fail")
	}
	if d.Selected() != b {
		t.Error("failed select must not change the selection")
	}
}

func TestDocumentRemoveClearsSelection(t *testing.T) {
	d, a, _, _ := threeStickers()
	d.Select(a)
	if !d.Remove(a) {
		t.Fatal("Remove returned false")
	}
	if d.Selected() != nil {
		t.Error("selection should be cleared")
	}
	if d.Remove(a) {
		t.Error("second Remove should report false")
	}
	if d.Find(a.ID) != nil {
		t.Error("removed sticker still found")
	}
}

func TestDocumentControlPointAtRequiresSelection(t *testing.T) {
	d, a, _, _ := threeStickers()
	if h := d.ControlPointAt(0, 0); h != HandleNone {
		t.Errorf("without selection = %v, want none", h)
	}
	d.Select(a)
	if h := d.ControlPointAt(0, 0); h != HandleTopLeft {
		t.Errorf("with selection = %v, want top-left", h)
	}
}

func TestDocumentPaintOrder(t *testing.T) {
	d, a, b, c := threeStickers()
	d.BringToFront(a)
	if got := d.Stickers(); got[0] != b || got[1] != c || got[2] != a {
		t.Errorf("after BringToFront: %v %v %v", got[0].Emoji, got[1].Emoji, got[2].Emoji)
	}
	d.SendToBack(a)
	if got := d.Stickers(); got[0] != a || got[1] != b || got[2] != c {
		t.Errorf("after SendToBack: %v %v %v", got[0].Emoji, got[1].Emoji, got[2].Emoji)
	}
}
