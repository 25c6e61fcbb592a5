// Package term draws a lightning scene in a terminal. Every character cell
// holds two vertically stacked pixels rendered with the upper half block,
// so the pixel resolution is columns by twice the rows.
package term

import (
	"image"
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/lightning2d/lightning"
)

// halfBlock paints the top pixel with the foreground colour and the bottom
// pixel with the background colour.
const halfBlock = '▀'

// Surface rasterizes shapes and textures into an RGBA framebuffer on the CPU
// and presents it to a tcell screen.
type Surface struct {
	screen   tcell.Screen
	fb       *image.RGBA
	raster   *vector.Rasterizer
	scratch  *image.RGBA
	input    *Input
	released bool

	// Background fills the framebuffer on Clear.
	Background lightning.Color
}

// NewSurface creates a surface sized to screen. The screen must already be
// initialized; Release finalizes it.
func NewSurface(screen tcell.Screen) *Surface {
	s := &Surface{screen: screen, Background: lightning.ColorBlack}
	s.Resize()
	return s
}

// Resize matches the framebuffer to the screen's current size.
func (s *Surface) Resize() {
	cols, rows := s.screen.Size()
	w, h := max(cols, 1), max(rows*2, 2)
	s.fb = image.NewRGBA(image.Rect(0, 0, w, h))
	s.raster = vector.NewRasterizer(w, h)
}

// Resolution returns the framebuffer size in pixels.
func (s *Surface) Resolution() (width, height int) {
	b := s.fb.Bounds()
	return b.Dx(), b.Dy()
}

// Framebuffer returns the pixels drawn since the last Clear.
func (s *Surface) Framebuffer() *image.RGBA { return s.fb }

// Capture returns a copy of the framebuffer.
func (s *Surface) Capture() (image.Image, error) {
	if !s.ready() {
		return nil, lightning.ErrSurfaceReleased
	}
	out := image.NewRGBA(s.fb.Bounds())
	copy(out.Pix, s.fb.Pix)
	return out, nil
}

// Clear fills the framebuffer with Background.
func (s *Surface) Clear() {
	draw.Draw(s.fb, s.fb.Bounds(), image.NewUniform(s.Background), image.Point{}, draw.Src)
}

// Present writes the framebuffer to the screen and shows it.
func (s *Surface) Present() {
	if s.released {
		return
	}
	cols, rows := s.screen.Size()
	b := s.fb.Bounds()
	for y := 0; y < rows && 2*y < b.Dy(); y++ {
		for x := 0; x < cols && x < b.Dx(); x++ {
			top := s.fb.RGBAAt(x, 2*y)
			bottom := top
			if 2*y+1 < b.Dy() {
				bottom = s.fb.RGBAAt(x, 2*y+1)
			}
			st := tcell.StyleDefault.Foreground(cellColor(top)).Background(cellColor(bottom))
			s.screen.SetContent(x, y, halfBlock, nil, st)
		}
	}
	s.screen.Show()
}

func cellColor(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func (s *Surface) ready() bool { return !s.released && s.fb != nil }

// DrawPixel sets one pixel.
func (s *Surface) DrawPixel(p lightning.Vec2, c lightning.Color) {
	if !s.ready() {
		return
	}
	x, y := int(math.Floor(p.X)), int(math.Floor(p.Y))
	if !image.Pt(x, y).In(s.fb.Bounds()) {
		return
	}
	draw.Draw(s.fb, image.Rect(x, y, x+1, y+1), image.NewUniform(c), image.Point{}, draw.Over)
}

// DrawLine strokes the segment from a to b.
func (s *Surface) DrawLine(a, b lightning.Vec2, st lightning.ShapeStyle) {
	if !s.ready() {
		return
	}
	s.fill(lineQuad(a, b, math.Max(st.Thickness, 1)), st.Color)
}

// DrawRect fills or outlines r.
func (s *Surface) DrawRect(r lightning.Rect, st lightning.ShapeStyle) {
	s.DrawPolygon([]lightning.Vec2{
		{X: r.X, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y + r.Height},
		{X: r.X, Y: r.Y + r.Height},
	}, st)
}

// DrawRoundedRect fills or outlines r with rounded corners.
func (s *Surface) DrawRoundedRect(r lightning.Rect, radius float64, st lightning.ShapeStyle) {
	s.DrawPolygon(lightning.RoundedRectPoints(r, radius), st)
}

// DrawEllipse fills or outlines the ellipse at center.
func (s *Surface) DrawEllipse(center, radii lightning.Vec2, st lightning.ShapeStyle) {
	s.DrawPolygon(lightning.EllipsePoints(center, radii), st)
}

// DrawTriangle fills or outlines the triangle abc.
func (s *Surface) DrawTriangle(a, b, c lightning.Vec2, st lightning.ShapeStyle) {
	s.DrawPolygon([]lightning.Vec2{a, b, c}, st)
}

// DrawPolygon fills the polygon or strokes each edge.
func (s *Surface) DrawPolygon(points []lightning.Vec2, st lightning.ShapeStyle) {
	if !s.ready() || len(points) < 2 {
		return
	}
	if st.Filled {
		s.fill(points, st.Color)
		return
	}
	thickness := math.Max(st.Thickness, 1)
	for i := range points {
		s.fill(lineQuad(points[i], points[(i+1)%len(points)], thickness), st.Color)
	}
}

// fill rasterizes a closed polygon onto the framebuffer.
func (s *Surface) fill(points []lightning.Vec2, c lightning.Color) {
	if len(points) < 3 || c.A == 0 {
		return
	}
	w, h := s.Resolution()
	s.raster.Reset(w, h)
	s.raster.DrawOp = draw.Over
	s.raster.MoveTo(float32(points[0].X), float32(points[0].Y))
	for _, p := range points[1:] {
		s.raster.LineTo(float32(p.X), float32(p.Y))
	}
	s.raster.ClosePath()
	s.raster.Draw(s.fb, s.fb.Bounds(), image.NewUniform(c), image.Point{})
}

// lineQuad returns the rectangle covering the segment ab at thickness.
func lineQuad(a, b lightning.Vec2, thickness float64) []lightning.Vec2 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		half := thickness / 2
		return []lightning.Vec2{
			{X: a.X - half, Y: a.Y - half}, {X: a.X + half, Y: a.Y - half},
			{X: a.X + half, Y: a.Y + half}, {X: a.X - half, Y: a.Y + half},
		}
	}
	nx, ny := -dy/l*thickness/2, dx/l*thickness/2
	return []lightning.Vec2{
		{X: a.X + nx, Y: a.Y + ny}, {X: b.X + nx, Y: b.Y + ny},
		{X: b.X - nx, Y: b.Y - ny}, {X: a.X - nx, Y: a.Y - ny},
	}
}

// DrawTexture scales t into dst with nearest-neighbour sampling. A non-white
// tint multiplies every channel.
func (s *Surface) DrawTexture(t *lightning.Texture, dst lightning.Rect, tint lightning.Color) {
	if !s.ready() || t == nil || t.Disposed() || t.Locked() {
		return
	}
	src := t.Pixels()
	if tint != lightning.ColorWhite {
		src = s.tinted(src, tint)
	}
	r := image.Rect(
		int(math.Round(dst.X)), int(math.Round(dst.Y)),
		int(math.Round(dst.X+dst.Width)), int(math.Round(dst.Y+dst.Height)),
	)
	if r.Empty() {
		return
	}
	draw.NearestNeighbor.Scale(s.fb, r, src, src.Bounds(), draw.Over, nil)
}

// tinted multiplies src by c into the scratch buffer.
func (s *Surface) tinted(src *image.RGBA, c lightning.Color) *image.RGBA {
	b := src.Bounds()
	if s.scratch == nil || s.scratch.Bounds() != b {
		s.scratch = image.NewRGBA(b)
	}
	mul := [4]uint32{uint32(c.R), uint32(c.G), uint32(c.B), uint32(c.A)}
	for i := 0; i < len(src.Pix); i++ {
		s.scratch.Pix[i] = uint8(uint32(src.Pix[i]) * mul[i%4] / 255)
	}
	// premultiplied colour cannot exceed alpha
	for i := 0; i+3 < len(s.scratch.Pix); i += 4 {
		a := s.scratch.Pix[i+3]
		for k := 0; k < 3; k++ {
			if s.scratch.Pix[i+k] > a {
				s.scratch.Pix[i+k] = a
			}
		}
	}
	return s.scratch
}

// RasterizeGlyph renders r in f and style to an alpha bitmap.
func (s *Surface) RasterizeGlyph(f *lightning.Font, r rune, style lightning.FontStyle) (lightning.GlyphBitmap, error) {
	return lightning.RasterizeGlyph(f, r, style)
}

// MeasureText returns the size of str set in f.
func (s *Surface) MeasureText(f *lightning.Font, str string) lightning.Vec2 {
	return lightning.MeasureString(f, str)
}

// CreateTexture allocates a blank texture.
func (s *Surface) CreateTexture(width, height int) (*lightning.Texture, error) {
	if s.released {
		return nil, lightning.ErrSurfaceReleased
	}
	return lightning.NewTexture(s, width, height, nil)
}

// LockTexture returns the texture pixels for writing.
func (s *Surface) LockTexture(t *lightning.Texture) (*image.RGBA, error) {
	return t.BeginLock()
}

// UnlockTexture uploads pixels written since LockTexture.
func (s *Surface) UnlockTexture(t *lightning.Texture) error {
	return t.EndLock()
}

// DestroyTexture frees the texture.
func (s *Surface) DestroyTexture(t *lightning.Texture) {
	if t != nil {
		t.MarkDisposed()
	}
}

// Release stops the attached input and finalizes the screen. Safe to call
// repeatedly.
func (s *Surface) Release() error {
	if s.released {
		return nil
	}
	s.released = true
	if s.input != nil {
		s.input.Close()
	}
	s.screen.Fini()
	return nil
}
