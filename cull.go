package lightning

import "log/slog"

// Cull computes every node's render position and on-screen flag. With
// RenderOffScreen set, every node is on-screen and positions are left as is.
func (r *Renderer) Cull() {
	res := r.config.Resolution()
	for i := 0; i < len(r.roots); i++ {
		r.cullNode(r.roots[i], res)
	}
}

func (r *Renderer) cullNode(id NodeID, res Vec2) {
	n := r.Resolve(id)
	if n == nil {
		return
	}
	if r.config.RenderOffScreen {
		n.IsOnScreen = true
	} else {
		n.RenderPosition = r.camera.RenderPosition(n)
		n.IsOnScreen = n.NotCullable || onScreen(n.RenderPosition, n.Size, res)
	}
	for i := 0; i < len(n.children); i++ {
		r.cullNode(n.children[i], res)
	}
}

// onScreen reports whether a box at pos intersects the viewport grown by the
// box's own size on every side.
func onScreen(pos, size, res Vec2) bool {
	viewport := Rect{Width: res.X, Height: res.Y}.Inflate(size)
	return RectFrom(pos, size).Intersects(viewport)
}

// RenderAll walks the tree in z order, parents before children. On-screen
// nodes are drawn and run OnRender; every node advances its animation and
// runs OnUpdate. Removals requested during the walk take effect after it.
func (r *Renderer) RenderAll() {
	r.beginTraversal()
	roots := r.orderedRoots()
	for i := 0; i < len(roots); i++ {
		r.renderNode(roots[i], 0)
	}
	r.endTraversal()
}

func (r *Renderer) renderNode(id NodeID, parentZ int) {
	n := r.Resolve(id)
	if n == nil || n.pendingRemoval {
		return
	}
	n.effectiveZ = zOf(n, parentZ)
	r.stats.Total++
	// Children attached by this node's hooks wait for the next frame.
	children := r.orderedChildren(n)

	if n.IsOnScreen {
		if !n.IsNotRendering {
			r.draw(n)
			if n.OnRender != nil {
				n.OnRender(&r.ctx, n)
			}
			r.stats.Rendered++
		}
	} else {
		r.stats.Culled++
	}

	if a := n.CurrentAnimation; a != nil && !a.Done() {
		a.Advance(&r.ctx, n)
	}
	if n.OnUpdate != nil {
		n.OnUpdate(&r.ctx, n)
	}
	if n.pendingRemoval || n.destroyed {
		return
	}

	prevZ := 0
	for i := 0; i < len(children); i++ {
		r.renderNode(children[i], n.effectiveZ)
		// ZIndex written directly skips markOrderDirty; catch it here.
		if c := r.Resolve(children[i]); c != nil {
			if i > 0 && c.effectiveZ < prevZ {
				n.childrenSorted = false
			}
			prevZ = c.effectiveZ
		}
	}
}

// draw issues the surface calls for n's kind: the border pass first, then
// the shape itself.
func (r *Renderer) draw(n *Renderable) {
	s := r.surface
	pos := r.camera.RenderPosition(n)
	st := ShapeStyle{Color: n.Color, Filled: n.Filled, Thickness: n.Thickness, Antialias: n.Antialias}
	border := n.BorderSize.X > 0 || n.BorderSize.Y > 0
	bst := st
	bst.Color = n.BorderColor

	switch n.Kind {
	case KindPixel:
		s.DrawPixel(pos, n.Color)

	case KindLine:
		if len(n.Points) < 2 {
			return
		}
		a, b := pos.Add(n.Points[0]), pos.Add(n.Points[1])
		if border {
			bst.Thickness = st.Thickness + 2*max(n.BorderSize.X, n.BorderSize.Y)
			s.DrawLine(a, b, bst)
		}
		s.DrawLine(a, b, st)

	case KindRectangle:
		rect := RectFrom(pos, n.Size)
		if border {
			s.DrawRect(rect.Inflate(n.BorderSize), bst)
		}
		s.DrawRect(rect, st)

	case KindRoundedRectangle:
		rect := RectFrom(pos, n.Size)
		if border {
			s.DrawRoundedRect(rect.Inflate(n.BorderSize), n.CornerRadius+max(n.BorderSize.X, n.BorderSize.Y), bst)
		}
		s.DrawRoundedRect(rect, n.CornerRadius, st)

	case KindEllipse:
		radii := n.Size.Scale(0.5)
		center := pos.Add(radii)
		if border {
			s.DrawEllipse(center, radii.Add(n.BorderSize), bst)
		}
		s.DrawEllipse(center, radii, st)

	case KindTriangle:
		if len(n.Points) < 3 {
			return
		}
		pts := translatePoints(n.Points[:3], pos)
		if border {
			bp := pushOut(pts, n.BorderSize)
			s.DrawTriangle(bp[0], bp[1], bp[2], bst)
		}
		s.DrawTriangle(pts[0], pts[1], pts[2], st)

	case KindPolygon:
		if len(n.Points) < 3 {
			return
		}
		pts := translatePoints(n.Points, pos)
		if border {
			s.DrawPolygon(pushOut(pts, n.BorderSize), bst)
		}
		s.DrawPolygon(pts, st)

	case KindText:
		r.drawText(n, pos)

	case KindSprite:
		if n.Texture == nil || n.Texture.Disposed() {
			return
		}
		size := n.Size
		if size.X == 0 && size.Y == 0 {
			size = n.Texture.Size()
		}
		rect := RectFrom(pos, size)
		if border {
			bst.Filled = true
			s.DrawRect(rect.Inflate(n.BorderSize), bst)
		}
		s.DrawTexture(n.Texture, rect, n.Color)
	}
}

// drawText draws each cached line of n's text block, aligned within n.Size.
func (r *Renderer) drawText(n *Renderable, pos Vec2) {
	tb := n.Text
	if tb == nil || tb.Font == nil || tb.Content == "" {
		return
	}
	e, err := r.text.Render(tb.Font, tb.Content, tb.TextOptions)
	if err != nil {
		if isAllocationError(err) {
			r.fatal("render text", slog.String("node", n.Name), slog.Any("err", err))
			return
		}
		r.logError("render text", slog.String("node", n.Name), slog.Any("err", err))
		return
	}
	if n.Size.X == 0 && n.Size.Y == 0 {
		n.Size = e.Size
	}
	y := pos.Y
	for i, tex := range e.Lines {
		sz := e.LineSizes[i]
		x := pos.X
		switch tb.Align {
		case TextAlignCenter:
			x += (n.Size.X - sz.X) / 2
		case TextAlignRight:
			x += n.Size.X - sz.X
		}
		if tex != nil {
			r.surface.DrawTexture(tex, Rect{X: x, Y: y, Width: sz.X, Height: sz.Y}, ColorWhite)
		}
		y += e.LineHeight
	}
}

func translatePoints(points []Vec2, by Vec2) []Vec2 {
	out := make([]Vec2, len(points))
	for i, p := range points {
		out[i] = p.Add(by)
	}
	return out
}

// pushOut moves each vertex away from the centre of the shape's bounding
// box by d per axis. Vertices exactly on a centre line move toward the
// negative side. This approximates an outline for convex shapes only.
func pushOut(points []Vec2, d Vec2) []Vec2 {
	c := boundsOf(points).Center()
	out := make([]Vec2, len(points))
	for i, p := range points {
		if p.X > c.X {
			p.X += d.X
		} else {
			p.X -= d.X
		}
		if p.Y > c.Y {
			p.Y += d.Y
		} else {
			p.Y -= d.Y
		}
		out[i] = p
	}
	return out
}
