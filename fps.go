package lightning

import "fmt"

// fpsRefresh is the seconds between FPS counter updates.
const fpsRefresh = 0.5

// NewFPSCounter creates a screen-snapped text node showing the renderer's
// measured frame rate, refreshed about twice a second. It draws above its
// siblings.
func NewFPSCounter(name string, f *Font, pos Vec2) *Renderable {
	n := NewText(name, "FPS: 0.0", f, pos, TextOptions{
		Color:      ColorWhite,
		Background: Color{0, 0, 0, 128},
		Smoothing:  SmoothingShaded,
	})
	n.SnapToScreen = true
	n.NotCullable = true
	n.ZIndex = 255
	n.RelativeZ = false

	var since float64
	n.OnUpdate = func(ctx *RenderContext, n *Renderable) {
		since += ctx.DeltaTime
		if since < fpsRefresh {
			return
		}
		since = 0
		n.SetText(fmt.Sprintf("FPS: %.1f", ctx.Renderer.Stats().FPS))
	}
	return n
}
