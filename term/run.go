package term

import (
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/lightning2d/lightning"
)

// NewRenderer wraps screen in a Surface and Input and creates a renderer
// whose resolution matches the terminal. screen must be initialized.
func NewRenderer(screen tcell.Screen, cfg lightning.RenderConfig, opts lightning.Options) (*lightning.Renderer, *Surface, error) {
	s := NewSurface(screen)
	cfg.ResolutionX, cfg.ResolutionY = s.Resolution()
	in := opts.Input
	var tin *Input
	if in == nil {
		tin = NewInput(screen)
		opts.Input = tin
	}
	r, err := lightning.NewRenderer(s, cfg, opts)
	if err != nil {
		if tin != nil {
			tin.Close()
		}
		return nil, nil, err
	}
	if tin != nil {
		s.input = tin
		tin.OnResize = func(int, int) {
			screen.Sync()
			s.Resize()
			r.SetResolution(s.Resolution())
		}
	}
	return r, s, nil
}

// Run opens the default terminal, builds the scene with setup and drives
// frames until the renderer quits.
func Run(cfg lightning.RenderConfig, opts lightning.Options, setup func(r *lightning.Renderer) error) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("term: new screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("term: init screen: %w", err)
	}
	r, s, err := NewRenderer(screen, cfg, opts)
	if err != nil {
		screen.Fini()
		return err
	}
	if setup != nil {
		if err := setup(r); err != nil {
			return fmt.Errorf("term: setup: %w", errors.Join(err, r.Shutdown()))
		}
	}
	Loop(r, s)
	return r.Shutdown()
}

// Loop runs frames until the renderer stops: clear, frame, present.
func Loop(r *lightning.Renderer, s *Surface) {
	for r.Running() {
		s.Clear()
		r.Frame()
		s.Present()
	}
}
