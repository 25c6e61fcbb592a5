package lightning

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// game adapts a Renderer to ebiten.Game. Update collects input; Draw runs
// one renderer frame into the screen image.
type game struct {
	r       *Renderer
	surface *EbitenSurface
	input   *EbitenInput
	width   int
	height  int
}

// Update collects input and stops the game once the renderer quits.
func (g *game) Update() error {
	g.input.Collect(g.width, g.height)
	if !g.r.Running() {
		return ebiten.Termination
	}
	return nil
}

// Draw renders one frame onto screen.
func (g *game) Draw(screen *ebiten.Image) {
	g.surface.SetTarget(screen)
	g.r.Frame()
}

// Layout keeps the logical screen at the configured resolution.
func (g *game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

// NewEbitenRenderer creates a renderer drawing through a new EbitenSurface
// and reading input from Ebitengine. Frame pacing is left to Ebitengine.
func NewEbitenRenderer(cfg RenderConfig, opts Options) (*Renderer, error) {
	if opts.Input == nil {
		opts.Input = NewEbitenInput()
	}
	opts.NoThrottle = true
	return NewRenderer(NewEbitenSurface(), cfg, opts)
}

// Run opens the window and drives r until the window closes or the renderer
// quits, then shuts r down. r must have been created by NewEbitenRenderer.
func Run(r *Renderer) error {
	surface, ok := r.surface.(*EbitenSurface)
	if !ok {
		return errors.New("lightning: Run needs a renderer with an EbitenSurface")
	}
	input, ok := r.input.(*EbitenInput)
	if !ok {
		input = NewEbitenInput()
		r.input = input
	}
	cfg := r.config
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.ResolutionX, cfg.ResolutionY)
	ebiten.SetVsyncEnabled(cfg.VSync)
	ebiten.SetWindowClosingHandled(true)
	if cfg.MaxFPS > 0 {
		ebiten.SetTPS(cfg.MaxFPS)
	}

	g := &game{r: r, surface: surface, input: input, width: cfg.ResolutionX, height: cfg.ResolutionY}
	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		err = nil
	}
	if serr := r.Shutdown(); serr != nil {
		err = errors.Join(err, serr)
	}
	if err != nil {
		return fmt.Errorf("lightning: run: %w", err)
	}
	return nil
}
