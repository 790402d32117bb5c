package ebitenview

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/decal"
)

// hudRefresh is how often (seconds) the HUD text is rebuilt.
const hudRefresh = 0.5

// hud is a small debug panel with frame rates and editor state, toggled with
// F3.
type hud struct {
	visible bool
	img     *ebiten.Image
	elapsed float64
	text    string
}

func (h *hud) update(dt float64, ed *decal.Editor) {
	if !h.visible {
		return
	}
	h.elapsed += dt
	if h.text != "" && h.elapsed < hudRefresh {
		return
	}
	h.elapsed = 0
	h.text = hudText(ebiten.ActualFPS(), ebiten.ActualTPS(), ed)
}

func (h *hud) draw(screen *ebiten.Image) {
	if !h.visible || h.text == "" {
		return
	}
	if h.img == nil {
		h.img = ebiten.NewImage(220, 80)
	}
	h.img.Clear()
	// Semi-transparent background for readability
	h.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(h.img, h.text)
	screen.DrawImage(h.img, nil)
}

// hudText formats the panel contents.
func hudText(fps, tps float64, ed *decal.Editor) string {
	hist := ed.History()
	mode := ed.PointerMode().String()
	if ed.Gesturing() {
		mode = "gesturing"
	}
	sel := "-"
	if s := ed.Selected(); s != nil {
		sel = fmt.Sprintf("%s x%.2f", s.Kind, s.Scale())
	}
	return fmt.Sprintf("FPS: %.1f  TPS: %.1f\nStickers: %d\nMode: %s\nSelected: %s\nHistory: %d/%d",
		fps, tps, ed.Document().Len(), mode, sel, hist.Cursor()+1, hist.Len())
}
