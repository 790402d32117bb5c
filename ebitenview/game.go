package ebitenview

import (
	"context"
	"image/color"
	"io/fs"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/phanxgames/decal"
)

// RunConfig configures Run.
type RunConfig struct {
	Title         string
	Width, Height int
	Background    color.Color

	// Emoji is the palette inserted with keys 1-9.
	Emoji []string

	// Script, when set, replaces live input with scripted input until done.
	Script *decal.Script

	// ScreenshotDir receives F12 captures. Defaults to "screenshots".
	ScreenshotDir string

	// FontTTF is an optional emoji-capable font. Go Regular alone draws
	// pictographs such as "⭐" as boxes.
	FontTTF []byte

	Logger *zap.Logger
}

// Game is an ebiten.Game showing an editor scaled to fit the window.
type Game struct {
	ed       *decal.Editor
	cfg      RunConfig
	log      *zap.Logger
	vp       *decal.Viewport
	adapter  *Adapter
	renderer *Renderer

	injector *decal.Injector
	script   *decal.Script

	screenW, screenH int

	hud             hud
	screenshotQueue []string
}

// NewGame returns a game driving ed.
func NewGame(ed *decal.Editor, cfg RunConfig) (*Game, error) {
	r, err := NewRenderer(cfg.FontTTF)
	if err != nil {
		return nil, err
	}
	if cfg.Background == nil {
		cfg.Background = color.RGBA{R: 0x20, G: 0x22, B: 0x28, A: 0xff}
	}
	if cfg.ScreenshotDir == "" {
		cfg.ScreenshotDir = "screenshots"
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	cw, ch := ed.CanvasSize()
	vp := decal.NewViewport(decal.Rect{Width: float64(cw), Height: float64(ch)}, float64(cw), float64(ch))
	g := &Game{
		ed:       ed,
		cfg:      cfg,
		log:      log,
		vp:       vp,
		adapter:  NewAdapter(ed, vp),
		renderer: r,
		script:   cfg.Script,
	}
	if g.script != nil {
		g.injector = decal.NewInjector(ed)
	}
	return g, nil
}

// Update advances one tick.
func (g *Game) Update() error {
	g.fitViewport()

	if g.script != nil && !g.script.Done() {
		if err := g.script.Step(g.injector); err != nil {
			g.log.Warn("script step failed", zap.Error(err))
		}
		g.injector.Step()
	} else {
		g.adapter.Update()
		g.processPalette()
		g.processDrops()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.hud.visible = !g.hud.visible
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		g.Screenshot("window")
	}

	dt := 1.0 / float64(ebiten.TPS())
	g.renderer.Update(float32(dt))
	g.hud.update(dt, g.ed)
	return nil
}

// Draw renders the editor.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.cfg.Background)
	g.renderer.Begin(screen, g.vp.DisplayToCanvas().Invert())
	g.ed.Draw(g.renderer)
	g.renderer.End()
	g.hud.draw(screen)
	g.flushScreenshots(screen)
}

// Layout keeps a 1:1 mapping between device-independent and screen pixels.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.screenW, g.screenH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

func (g *Game) fitViewport() {
	cw, ch := g.ed.CanvasSize()
	g.vp.SetCanvas(float64(cw), float64(ch))
	g.vp.SetDisplay(fitRect(float64(cw), float64(ch), float64(g.screenW), float64(g.screenH)))
}

var digitKeys = []ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3,
	ebiten.KeyDigit4, ebiten.KeyDigit5, ebiten.KeyDigit6,
	ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
}

func (g *Game) processPalette() {
	for i, k := range digitKeys {
		if i >= len(g.cfg.Emoji) {
			return
		}
		if inpututil.IsKeyJustPressed(k) {
			if _, err := g.ed.AddEmoji(g.cfg.Emoji[i]); err != nil {
				g.log.Warn("add emoji", zap.Error(err))
			}
		}
	}
}

// processDrops adds dropped image files as stickers, or as the base image
// when none is loaded yet.
func (g *Game) processDrops() {
	files := ebiten.DroppedFiles()
	if files == nil {
		return
	}
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		g.log.Warn("read dropped files", zap.Error(err))
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := g.addDropped(files, e.Name()); err != nil {
			g.log.Warn("dropped file rejected", zap.String("file", e.Name()), zap.Error(err))
		}
	}
}

func (g *Game) addDropped(files fs.FS, name string) error {
	f, err := files.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	ctx := context.Background()
	if !g.ed.HasBase() {
		return g.ed.LoadBaseImage(ctx, f)
	}
	_, err = g.ed.AddImage(ctx, f)
	return err
}

// fitRect returns the largest rectangle with the canvas aspect ratio that
// fits the screen, centered.
func fitRect(cw, ch, sw, sh float64) decal.Rect {
	if cw <= 0 || ch <= 0 || sw <= 0 || sh <= 0 {
		return decal.Rect{Width: cw, Height: ch}
	}
	k := min(sw/cw, sh/ch)
	w, h := cw*k, ch*k
	return decal.Rect{X: (sw - w) / 2, Y: (sh - h) / 2, Width: w, Height: h}
}

// Run opens a window and runs the editor until it is closed.
func Run(ed *decal.Editor, cfg RunConfig) error {
	g, err := NewGame(ed, cfg)
	if err != nil {
		return err
	}
	w, h := cfg.Width, cfg.Height
	if w <= 0 || h <= 0 {
		w, h = ed.CanvasSize()
	}
	if w <= 0 || h <= 0 {
		w, h = 800, 600
	}
	ebiten.SetWindowSize(w, h)
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(g)
}
