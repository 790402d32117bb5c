package ebitenview

import (
	"strings"
	"testing"

	"github.com/phanxgames/decal"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"after-drag", "after-drag"},
		{"frame.01", "frame.01"},
		{"has spaces", "has_spaces"},
		{"path/to/thing", "path_to_thing"},
		{"special!@#$%", "special_____"},
		{"", "unlabeled"},
		{"   ", "unlabeled"},
	}
	for _, tt := range tests {
		if got := sanitizeLabel(tt.in); got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUnpremultiply(t *testing.T) {
	pixels := []byte{
		128, 64, 0, 128, // half-transparent
		10, 20, 30, 255, // opaque
		0, 0, 0, 0, // clear
	}
	img := unpremultiply(pixels, 3, 1)
	want := []byte{255, 127, 0, 128, 10, 20, 30, 255, 0, 0, 0, 0}
	for i := range want {
		if img.Pix[i] != want[i] {
			t.Fatalf("Pix = %v, want %v", img.Pix, want)
		}
	}
}

func TestScreenshotQueue(t *testing.T) {
	g := &Game{}
	g.Screenshot("a")
	g.Screenshot("b")
	if len(g.screenshotQueue) != 2 || g.screenshotQueue[0] != "a" || g.screenshotQueue[1] != "b" {
		t.Errorf("queue = %v, want [a b]", g.screenshotQueue)
	}
}

func TestHUDText(t *testing.T) {
	ed := decal.NewEditor(decal.DefaultConfig())
	if err := ed.SetBaseImage(newTestImage(100, 100)); err != nil {
		t.Fatal(err)
	}
	if _, err := ed.AddEmoji("x"); err != nil {
		t.Fatal(err)
	}
	got := hudText(60, 60, ed)
	for _, want := range []string{"Stickers: 1", "Mode: idle", "Selected: emoji x1.00", "History: 2/2"} {
		if !strings.Contains(got, want) {
			t.Errorf("hudText missing %q:\n%s", want, got)
		}
	}
}
