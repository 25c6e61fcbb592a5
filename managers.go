package lightning

import "log/slog"

// PrimitiveManager builds shape and text nodes and inserts them into the
// renderer's tree. Every method returns nil when insertion fails.
type PrimitiveManager struct {
	r *Renderer
}

// AddPixel adds a single pixel at pos.
func (m *PrimitiveManager) AddPixel(name string, pos Vec2, c Color, parent *Renderable) *Renderable {
	return m.r.AddRenderable(NewPixel(name, pos, c), parent)
}

// AddLine adds a line from start to end.
func (m *PrimitiveManager) AddLine(name string, start, end Vec2, c Color, thickness float64, parent *Renderable) *Renderable {
	return m.r.AddRenderable(NewLine(name, start, end, c, thickness), parent)
}

// AddRectangle adds an axis-aligned rectangle.
func (m *PrimitiveManager) AddRectangle(name string, pos, size Vec2, c Color, filled bool, parent *Renderable) *Renderable {
	return m.r.AddRenderable(NewRectangle(name, pos, size, c, filled), parent)
}

// AddRoundedRectangle adds a rectangle with corners of the given radius.
func (m *PrimitiveManager) AddRoundedRectangle(name string, pos, size Vec2, radius float64, c Color, filled bool, parent *Renderable) *Renderable {
	return m.r.AddRenderable(NewRoundedRectangle(name, pos, size, radius, c, filled), parent)
}

// AddEllipse adds an ellipse inscribed in the pos/size box.
func (m *PrimitiveManager) AddEllipse(name string, pos, size Vec2, c Color, filled bool, parent *Renderable) *Renderable {
	return m.r.AddRenderable(NewEllipse(name, pos, size, c, filled), parent)
}

// AddTriangle adds a triangle with corners a, b and c.
func (m *PrimitiveManager) AddTriangle(name string, a, b, c Vec2, col Color, filled bool, parent *Renderable) *Renderable {
	return m.r.AddRenderable(NewTriangle(name, a, b, c, col, filled), parent)
}

// AddPolygon adds a convex polygon through points.
func (m *PrimitiveManager) AddPolygon(name string, points []Vec2, c Color, filled bool, parent *Renderable) *Renderable {
	if len(points) < 3 {
		m.r.logError("add polygon: need at least three points",
			slog.String("name", name), slog.Int("points", len(points)))
		return nil
	}
	return m.r.AddRenderable(NewPolygon(name, points, c, filled), parent)
}

// AddText adds a text node using the named font. An unknown font is logged
// and the default font is used when one is loaded.
func (m *PrimitiveManager) AddText(name, content, fontName string, pos Vec2, opts TextOptions, parent *Renderable) *Renderable {
	f := m.r.fonts.Font(fontName)
	if f == nil {
		m.r.logError("add text: font not loaded", slog.String("name", name), slog.String("font", fontName))
		if f = m.r.DefaultFont(); f == nil {
			return nil
		}
	}
	return m.r.AddRenderable(NewText(name, content, f, pos, opts), parent)
}

// DefaultFont returns the configured default font, loading it on first use.
// When the config names no font file the embedded Go Regular face is used.
func (r *Renderer) DefaultFont() *Font {
	size := r.config.DefaultFontSize
	if r.config.DefaultFont == "" {
		if f := r.fonts.Font(FontName(defaultFontName, size)); f != nil {
			return f
		}
		f, err := r.fonts.LoadDefaultFont(size)
		if err != nil {
			r.logError("load default font", slog.Any("err", err))
			return nil
		}
		return f
	}
	if f := r.fonts.Font(FontName(r.config.DefaultFont, size)); f != nil {
		return f
	}
	f, err := r.fonts.LoadFont(r.config.DefaultFont, size, 0)
	if err != nil {
		r.logError("load default font", slog.String("path", r.config.DefaultFont), slog.Any("err", err))
		return nil
	}
	return f
}
