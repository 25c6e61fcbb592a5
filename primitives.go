package lightning

import "math"

// NewPixel creates a single-point node.
func NewPixel(name string, pos Vec2, c Color) *Renderable {
	n := NewRenderable(name, KindPixel)
	n.Position = pos
	n.Size = Vec2{1, 1}
	n.Color = c
	return n
}

// NewLine creates a segment from start to end. The node's Position is the
// top-left of the segment's bounding box and Points are local to it.
func NewLine(name string, start, end Vec2, c Color, thickness float64) *Renderable {
	n := NewRenderable(name, KindLine)
	b := boundsOf([]Vec2{start, end})
	n.Position = Vec2{b.X, b.Y}
	n.Size = Vec2{b.Width, b.Height}
	n.Points = []Vec2{start.Sub(n.Position), end.Sub(n.Position)}
	n.Color = c
	if thickness > 0 {
		n.Thickness = thickness
	}
	return n
}

// NewRectangle creates an axis-aligned box.
func NewRectangle(name string, pos, size Vec2, c Color, filled bool) *Renderable {
	n := NewRenderable(name, KindRectangle)
	n.Position = pos
	n.Size = size
	n.Color = c
	n.Filled = filled
	return n
}

// NewRoundedRectangle creates a box with rounded corners. The radius is
// clamped to half the shorter side.
func NewRoundedRectangle(name string, pos, size Vec2, radius float64, c Color, filled bool) *Renderable {
	n := NewRectangle(name, pos, size, c, filled)
	n.Kind = KindRoundedRectangle
	n.CornerRadius = math.Max(0, math.Min(radius, math.Min(size.X, size.Y)/2))
	return n
}

// NewEllipse creates an ellipse inscribed in the box at pos with size.
func NewEllipse(name string, pos, size Vec2, c Color, filled bool) *Renderable {
	n := NewRectangle(name, pos, size, c, filled)
	n.Kind = KindEllipse
	return n
}

// NewTriangle creates a triangle from three world-space vertices.
func NewTriangle(name string, a, b, c Vec2, col Color, filled bool) *Renderable {
	n := NewPolygon(name, []Vec2{a, b, c}, col, filled)
	n.Kind = KindTriangle
	return n
}

// NewPolygon creates a closed polygon from world-space vertices. Position is
// the top-left of their bounding box and Points are stored relative to it.
func NewPolygon(name string, points []Vec2, c Color, filled bool) *Renderable {
	n := NewRenderable(name, KindPolygon)
	b := boundsOf(points)
	n.Position = Vec2{b.X, b.Y}
	n.Size = Vec2{b.Width, b.Height}
	n.Points = translatePoints(points, n.Position.Scale(-1))
	n.Color = c
	n.Filled = filled
	return n
}

// NewText creates a text node sized to its measured content. Text sits one
// z step above its parent when RelativeZ is set.
func NewText(name, content string, f *Font, pos Vec2, opts TextOptions) *Renderable {
	n := NewRenderable(name, KindText)
	n.Position = pos
	n.RelativeZ = true
	if opts.Color == (Color{}) {
		opts.Color = ColorWhite
	}
	n.Text = &TextBlock{Content: content, Font: f, TextOptions: opts}
	n.Size = n.Text.Measure()
	return n
}

// Measure returns the block's laid-out size including outline padding.
func (tb *TextBlock) Measure() Vec2 {
	if tb == nil || tb.Font == nil {
		return Vec2{}
	}
	size := MeasureString(tb.Font, tb.Content)
	pad := float64(2 * tb.OutlineSize)
	lines := float64(1)
	for _, r := range tb.Content {
		if r == '\n' {
			lines++
		}
	}
	return Vec2{math.Ceil(size.X) + pad, (math.Ceil(tb.Font.LineHeight()) + pad) * lines}
}

// SetText replaces a text node's content and re-measures its size.
func (n *Renderable) SetText(content string) {
	if n.Text == nil {
		n.Text = &TextBlock{TextOptions: TextOptions{Color: ColorWhite}}
	}
	if n.Text.Content == content {
		return
	}
	n.Text.Content = content
	n.Size = n.Text.Measure()
}

// NewSprite creates a node drawing t at its natural size.
func NewSprite(name string, t *Texture, pos Vec2) *Renderable {
	n := NewRenderable(name, KindSprite)
	n.Position = pos
	n.Texture = t
	if t != nil {
		n.Size = t.Size()
	}
	return n
}

// EllipsePoints approximates an ellipse with a closed polygon. Backends
// without a native ellipse primitive draw the result as a polygon.
func EllipsePoints(center, radii Vec2) []Vec2 {
	segs := int(math.Max(radii.X, radii.Y))
	segs = max(16, min(segs, 128))
	pts := make([]Vec2, segs)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(segs)
		pts[i] = Vec2{center.X + radii.X*math.Cos(a), center.Y + radii.Y*math.Sin(a)}
	}
	return pts
}

// RoundedRectPoints approximates a rounded rectangle with a closed polygon,
// clockwise from the top edge.
func RoundedRectPoints(r Rect, radius float64) []Vec2 {
	radius = math.Max(0, math.Min(radius, math.Min(r.Width, r.Height)/2))
	if radius == 0 {
		return []Vec2{{r.X, r.Y}, {r.X + r.Width, r.Y}, {r.X + r.Width, r.Y + r.Height}, {r.X, r.Y + r.Height}}
	}
	const arcSegs = 6
	corners := [4]struct {
		c     Vec2
		start float64
	}{
		{Vec2{r.X + r.Width - radius, r.Y + radius}, -math.Pi / 2},
		{Vec2{r.X + r.Width - radius, r.Y + r.Height - radius}, 0},
		{Vec2{r.X + radius, r.Y + r.Height - radius}, math.Pi / 2},
		{Vec2{r.X + radius, r.Y + radius}, math.Pi},
	}
	pts := make([]Vec2, 0, 4*(arcSegs+1))
	for _, k := range corners {
		for i := 0; i <= arcSegs; i++ {
			a := k.start + (math.Pi/2)*float64(i)/arcSegs
			pts = append(pts, Vec2{k.c.X + radius*math.Cos(a), k.c.Y + radius*math.Sin(a)})
		}
	}
	return pts
}
