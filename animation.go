package lightning

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Animation is advanced once per frame for the node it is attached to via
// Renderable.CurrentAnimation, whether or not the node is on screen.
type Animation interface {
	Advance(ctx *RenderContext, node *Renderable)
	Stop()
	Done() bool
}

// FrameAnimation cycles a sprite through a list of textures.
type FrameAnimation struct {
	Frames []*Texture
	// FrameTime is the seconds each frame is shown.
	FrameTime float64
	Loop      bool

	elapsed float64
	index   int
	done    bool
}

// NewFrameAnimation creates an animation showing fps frames per second.
func NewFrameAnimation(frames []*Texture, fps float64, loop bool) *FrameAnimation {
	a := &FrameAnimation{Frames: frames, Loop: loop}
	if fps > 0 {
		a.FrameTime = 1 / fps
	}
	return a
}

// Advance moves the animation by the frame's delta time and assigns the
// current frame to node.Texture.
func (a *FrameAnimation) Advance(ctx *RenderContext, node *Renderable) {
	if a.done || len(a.Frames) == 0 {
		return
	}
	if a.FrameTime > 0 {
		a.elapsed += ctx.DeltaTime
		for a.elapsed >= a.FrameTime {
			a.elapsed -= a.FrameTime
			a.index++
			if a.index >= len(a.Frames) {
				if !a.Loop {
					a.index = len(a.Frames) - 1
					a.done = true
					break
				}
				a.index = 0
			}
		}
	}
	node.Texture = a.Frames[a.index]
}

// Frame returns the index of the frame currently shown.
func (a *FrameAnimation) Frame() int { return a.index }

// Reset rewinds to the first frame.
func (a *FrameAnimation) Reset() {
	a.index = 0
	a.elapsed = 0
	a.done = false
}

// Stop halts the animation on its current frame.
func (a *FrameAnimation) Stop()      { a.done = true }
// Done reports whether the animation has finished or been stopped.
func (a *FrameAnimation) Done() bool { return a.done }

// TweenAnimation animates up to four node values simultaneously. Create one
// with TweenPosition, TweenSize or TweenColor. If the node is destroyed the
// animation finishes immediately.
type TweenAnimation struct {
	tweens [4]*gween.Tween
	count  int
	set    [4]func(n *Renderable, v float64)
	done   bool
}

// Advance steps every tween by the frame's delta time and writes the values.
func (g *TweenAnimation) Advance(ctx *RenderContext, node *Renderable) {
	if g.done {
		return
	}
	if node == nil || node.destroyed {
		g.done = true
		return
	}
	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(float32(ctx.DeltaTime))
		g.set[i](node, float64(val))
		if !finished {
			allDone = false
		}
	}
	g.done = allDone
}

// Stop halts the tween group where it is.
func (g *TweenAnimation) Stop()      { g.done = true }
// Done reports whether every tween has finished or the group was stopped.
func (g *TweenAnimation) Done() bool { return g.done }

// TweenPosition animates node.Position to `to`.
func TweenPosition(node *Renderable, to Vec2, duration float32, fn ease.TweenFunc) *TweenAnimation {
	g := &TweenAnimation{count: 2}
	g.tweens[0] = gween.New(float32(node.Position.X), float32(to.X), duration, fn)
	g.tweens[1] = gween.New(float32(node.Position.Y), float32(to.Y), duration, fn)
	g.set[0] = func(n *Renderable, v float64) { n.Position.X = v }
	g.set[1] = func(n *Renderable, v float64) { n.Position.Y = v }
	return g
}

// TweenSize animates node.Size to `to`.
func TweenSize(node *Renderable, to Vec2, duration float32, fn ease.TweenFunc) *TweenAnimation {
	g := &TweenAnimation{count: 2}
	g.tweens[0] = gween.New(float32(node.Size.X), float32(to.X), duration, fn)
	g.tweens[1] = gween.New(float32(node.Size.Y), float32(to.Y), duration, fn)
	g.set[0] = func(n *Renderable, v float64) { n.Size.X = v }
	g.set[1] = func(n *Renderable, v float64) { n.Size.Y = v }
	return g
}

// TweenColor animates all four components of node.Color to `to`.
func TweenColor(node *Renderable, to Color, duration float32, fn ease.TweenFunc) *TweenAnimation {
	g := &TweenAnimation{count: 4}
	g.tweens[0] = gween.New(float32(node.Color.R), float32(to.R), duration, fn)
	g.tweens[1] = gween.New(float32(node.Color.G), float32(to.G), duration, fn)
	g.tweens[2] = gween.New(float32(node.Color.B), float32(to.B), duration, fn)
	g.tweens[3] = gween.New(float32(node.Color.A), float32(to.A), duration, fn)
	g.set[0] = func(n *Renderable, v float64) { n.Color.R = clampByte(v) }
	g.set[1] = func(n *Renderable, v float64) { n.Color.G = clampByte(v) }
	g.set[2] = func(n *Renderable, v float64) { n.Color.B = clampByte(v) }
	g.set[3] = func(n *Renderable, v float64) { n.Color.A = clampByte(v) }
	return g
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}
