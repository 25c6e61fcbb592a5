package lightning

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// CameraMode moves the camera once per frame, after rendering.
type CameraMode interface {
	Update(c *Camera, ctx *RenderContext)
}

// FixedMode leaves the camera where it was placed.
type FixedMode struct{}

// Update leaves the camera where it is.
func (FixedMode) Update(*Camera, *RenderContext) {}

// FollowMode keeps the target centred on screen, shifted by Offset.
type FollowMode struct {
	Offset Vec2
}

// Update centres the camera on the target node.
func (m FollowMode) Update(c *Camera, _ *RenderContext) {
	if t := c.Target(); t != nil {
		c.Position = c.centreOn(t).Add(m.Offset)
	}
}

// ChaseMode eases the camera toward the followed position. Lerp is the
// fraction of the remaining distance covered per frame; 1 snaps.
type ChaseMode struct {
	Offset Vec2
	Lerp   float64
}

// defaultChaseLerp is used when ChaseMode.Lerp is not positive.
const defaultChaseLerp = 0.1

// Update moves the camera a fraction of the way towards the target.
func (m ChaseMode) Update(c *Camera, _ *RenderContext) {
	t := c.Target()
	if t == nil {
		return
	}
	lerp := m.Lerp
	if lerp <= 0 {
		lerp = defaultChaseLerp
	}
	c.Position = c.Position.Lerp(c.centreOn(t).Add(m.Offset), math.Min(lerp, 1))
}

// scrollAnim holds active scroll-to tweens for camera X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera is the view into world space. Position is the world point drawn at
// the top-left of the screen, so a node's render position is its world
// position minus the camera position.
type Camera struct {
	Position Vec2
	Mode     CameraMode
	// Viewport is the screen size in pixels.
	Viewport Vec2

	// BoundsEnabled clamps Position so the visible area stays within Bounds.
	BoundsEnabled bool
	Bounds        Rect

	target *Renderable
	scroll *scrollAnim
}

// NewCamera creates a fixed camera at the origin.
func NewCamera(viewport Vec2) *Camera {
	return &Camera{Mode: FixedMode{}, Viewport: viewport}
}

// Follow tracks target with mode. A nil mode keeps the current one.
func (c *Camera) Follow(target *Renderable, mode CameraMode) {
	c.target = target
	if mode != nil {
		c.Mode = mode
	}
}

// Unfollow stops tracking and returns to FixedMode.
func (c *Camera) Unfollow() {
	c.target = nil
	c.Mode = FixedMode{}
}

// Target returns the followed node, or nil when there is none or it has been
// destroyed.
func (c *Camera) Target() *Renderable {
	if c.target == nil || c.target.destroyed {
		return nil
	}
	return c.target
}

// ScrollTo animates Position to pos over duration seconds. The scroll
// overrides the mode until it completes.
func (c *Camera) ScrollTo(pos Vec2, duration float32, easeFn ease.TweenFunc) {
	if easeFn == nil {
		easeFn = ease.Linear
	}
	c.scroll = &scrollAnim{
		tweenX: gween.New(float32(c.Position.X), float32(pos.X), duration, easeFn),
		tweenY: gween.New(float32(c.Position.Y), float32(pos.Y), duration, easeFn),
	}
}

// Scrolling reports whether a ScrollTo animation is in progress.
func (c *Camera) Scrolling() bool { return c.scroll != nil }

// SetBounds enables bounds clamping.
func (c *Camera) SetBounds(bounds Rect) {
	c.BoundsEnabled = true
	c.Bounds = bounds
}

// ClearBounds disables bounds clamping.
func (c *Camera) ClearBounds() {
	c.BoundsEnabled = false
}

// Update advances the scroll animation or the mode, then clamps.
func (c *Camera) Update(ctx *RenderContext) {
	if c.scroll != nil {
		dt := float32(0)
		if ctx != nil {
			dt = float32(ctx.DeltaTime)
		}
		if !c.scroll.doneX {
			val, done := c.scroll.tweenX.Update(dt)
			c.Position.X = float64(val)
			c.scroll.doneX = done
		}
		if !c.scroll.doneY {
			val, done := c.scroll.tweenY.Update(dt)
			c.Position.Y = float64(val)
			c.scroll.doneY = done
		}
		if c.scroll.doneX && c.scroll.doneY {
			c.scroll = nil
		}
	} else if c.Mode != nil {
		c.Mode.Update(c, ctx)
	}
	if c.BoundsEnabled {
		c.clampToBounds()
	}
}

// centreOn returns the position that puts t's centre at the screen centre.
func (c *Camera) centreOn(t *Renderable) Vec2 {
	return t.Bounds().Center().Sub(c.Viewport.Scale(0.5))
}

// clampToBounds keeps the visible area inside Bounds, centring when the
// bounds are smaller than the viewport.
func (c *Camera) clampToBounds() {
	maxX := c.Bounds.X + c.Bounds.Width - c.Viewport.X
	maxY := c.Bounds.Y + c.Bounds.Height - c.Viewport.Y
	if maxX < c.Bounds.X {
		c.Position.X = c.Bounds.X + (c.Bounds.Width-c.Viewport.X)/2
	} else {
		c.Position.X = math.Max(c.Bounds.X, math.Min(c.Position.X, maxX))
	}
	if maxY < c.Bounds.Y {
		c.Position.Y = c.Bounds.Y + (c.Bounds.Height-c.Viewport.Y)/2
	} else {
		c.Position.Y = math.Max(c.Bounds.Y, math.Min(c.Position.Y, maxY))
	}
}

// RenderPosition returns where n is drawn: its world position offset by the
// camera, or its position unchanged when snapped to the screen.
func (c *Camera) RenderPosition(n *Renderable) Vec2 {
	if n.SnapToScreen {
		return n.Position
	}
	return n.Position.Sub(c.Position)
}

// WorldToScreen converts a world point to screen space.
func (c *Camera) WorldToScreen(p Vec2) Vec2 { return p.Sub(c.Position) }

// ScreenToWorld converts a screen point to world space.
func (c *Camera) ScreenToWorld(p Vec2) Vec2 { return p.Add(c.Position) }

// VisibleBounds returns the world-space rectangle on screen.
func (c *Camera) VisibleBounds() Rect { return RectFrom(c.Position, c.Viewport) }
