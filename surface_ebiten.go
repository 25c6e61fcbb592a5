package lightning

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// EbitenSurface draws through Ebitengine. Shapes are tessellated with
// vector.Path and drawn as coloured triangles over a white source; textures
// are ebiten images uploaded with WritePixels. Call SetTarget with the
// screen image before each frame.
type EbitenSurface struct {
	target   *ebiten.Image
	white    *ebiten.Image
	released bool

	path     vector.Path
	vertices []ebiten.Vertex
	indices  []uint16
}

// NewEbitenSurface creates a surface with no target yet.
func NewEbitenSurface() *EbitenSurface {
	white := ebiten.NewImage(3, 3)
	white.Fill(color.White)
	return &EbitenSurface{
		white: white.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image),
	}
}

// SetTarget sets the image subsequent draw calls render into.
func (s *EbitenSurface) SetTarget(img *ebiten.Image) { s.target = img }

// Target returns the current draw target.
func (s *EbitenSurface) Target() *ebiten.Image { return s.target }

func (s *EbitenSurface) ready() bool { return s.target != nil && !s.released }

// DrawPixel sets one pixel.
func (s *EbitenSurface) DrawPixel(p Vec2, c Color) {
	if !s.ready() {
		return
	}
	vector.FillRect(s.target, float32(p.X), float32(p.Y), 1, 1, c, false)
}

// DrawLine strokes the segment from a to b.
func (s *EbitenSurface) DrawLine(a, b Vec2, st ShapeStyle) {
	if !s.ready() {
		return
	}
	vector.StrokeLine(s.target, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y),
		float32(math.Max(st.Thickness, 1)), st.Color, st.Antialias)
}

// DrawRect fills or outlines r.
func (s *EbitenSurface) DrawRect(r Rect, st ShapeStyle) {
	if !s.ready() {
		return
	}
	if st.Filled {
		vector.FillRect(s.target, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), st.Color, st.Antialias)
		return
	}
	vector.StrokeRect(s.target, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height),
		float32(math.Max(st.Thickness, 1)), st.Color, st.Antialias)
}

// DrawRoundedRect fills or outlines r with rounded corners.
func (s *EbitenSurface) DrawRoundedRect(r Rect, radius float64, st ShapeStyle) {
	if radius <= 0 {
		s.DrawRect(r, st)
		return
	}
	s.DrawPolygon(RoundedRectPoints(r, radius), st)
}

// DrawEllipse fills or outlines the ellipse at center.
func (s *EbitenSurface) DrawEllipse(center, radii Vec2, st ShapeStyle) {
	s.DrawPolygon(EllipsePoints(center, radii), st)
}

// DrawTriangle fills or outlines the triangle abc.
func (s *EbitenSurface) DrawTriangle(a, b, c Vec2, st ShapeStyle) {
	s.DrawPolygon([]Vec2{a, b, c}, st)
}

// DrawPolygon fills or strokes the closed outline through points.
func (s *EbitenSurface) DrawPolygon(points []Vec2, st ShapeStyle) {
	if !s.ready() || len(points) < 2 {
		return
	}
	s.path.Reset()
	s.path.MoveTo(float32(points[0].X), float32(points[0].Y))
	for _, p := range points[1:] {
		s.path.LineTo(float32(p.X), float32(p.Y))
	}
	s.path.Close()

	op := &ebiten.DrawTrianglesOptions{AntiAlias: st.Antialias}
	if st.Filled {
		s.vertices, s.indices = s.path.AppendVerticesAndIndicesForFilling(s.vertices[:0], s.indices[:0])
		op.FillRule = ebiten.FillRuleNonZero
	} else {
		s.vertices, s.indices = s.path.AppendVerticesAndIndicesForStroke(s.vertices[:0], s.indices[:0], &vector.StrokeOptions{
			Width:    float32(math.Max(st.Thickness, 1)),
			LineJoin: vector.LineJoinRound,
		})
	}
	r, g, b, a := st.Color.Floats()
	for i := range s.vertices {
		s.vertices[i].SrcX = 1
		s.vertices[i].SrcY = 1
		s.vertices[i].ColorR = r
		s.vertices[i].ColorG = g
		s.vertices[i].ColorB = b
		s.vertices[i].ColorA = a
	}
	s.target.DrawTriangles(s.vertices, s.indices, s.white, op)
}

// DrawTexture stretches t over dst, multiplied by tint.
func (s *EbitenSurface) DrawTexture(t *Texture, dst Rect, tint Color) {
	if !s.ready() || t == nil {
		return
	}
	img, ok := t.Native().(*ebiten.Image)
	if !ok || img == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(dst.Width/float64(t.Width()), dst.Height/float64(t.Height()))
	op.GeoM.Translate(dst.X, dst.Y)
	if tint != ColorWhite {
		op.ColorScale.ScaleWithColor(tint)
	}
	s.target.DrawImage(img, op)
}

// RasterizeGlyph renders r in f and style to an alpha bitmap.
func (s *EbitenSurface) RasterizeGlyph(f *Font, r rune, style FontStyle) (GlyphBitmap, error) {
	return RasterizeGlyph(f, r, style)
}

// MeasureText returns the size of str set in f.
func (s *EbitenSurface) MeasureText(f *Font, str string) Vec2 {
	return MeasureString(f, str)
}

// CreateTexture allocates a blank texture.
func (s *EbitenSurface) CreateTexture(width, height int) (*Texture, error) {
	if s.released {
		return nil, ErrSurfaceReleased
	}
	if width <= 0 || height <= 0 {
		return nil, imageSizeError(width, height)
	}
	return NewTexture(s, width, height, ebiten.NewImage(width, height))
}

// LockTexture returns the texture pixels for writing.
func (s *EbitenSurface) LockTexture(t *Texture) (*image.RGBA, error) {
	return t.BeginLock()
}

// UnlockTexture uploads the texture's pixel buffer to the GPU image.
func (s *EbitenSurface) UnlockTexture(t *Texture) error {
	if err := t.EndLock(); err != nil {
		return err
	}
	if img, ok := t.Native().(*ebiten.Image); ok && img != nil {
		img.WritePixels(t.Pixels().Pix)
	}
	return nil
}

// DestroyTexture frees the texture.
func (s *EbitenSurface) DestroyTexture(t *Texture) {
	if t == nil {
		return
	}
	img, _ := t.Native().(*ebiten.Image)
	if t.MarkDisposed() && img != nil {
		img.Deallocate()
	}
}

// Capture reads back the current target.
func (s *EbitenSurface) Capture() (image.Image, error) {
	if !s.ready() {
		return nil, ErrSurfaceReleased
	}
	b := s.target.Bounds()
	pix := make([]byte, 4*b.Dx()*b.Dy())
	s.target.ReadPixels(pix)
	return unpremultiply(pix, b.Dx(), b.Dy()), nil
}

// Release stops further drawing. Ebitengine owns the window and frees it
// when RunGame returns.
func (s *EbitenSurface) Release() error {
	if s.released {
		return nil
	}
	s.released = true
	s.target = nil
	s.white.Deallocate()
	return nil
}
