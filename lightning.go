package lightning

import "math"

// Color is an 8-bit RGBA color, not premultiplied. It implements color.Color
// so it can be handed straight to image and backend APIs.
type Color struct {
	R, G, B, A uint8
}

var (
	ColorWhite       = Color{255, 255, 255, 255}
	ColorBlack       = Color{0, 0, 0, 255}
	ColorTransparent = Color{}
)

// RGBA implements color.Color. The returned values are alpha-premultiplied
// as the color.Color contract requires.
func (c Color) RGBA() (r, g, b, a uint32) {
	a = uint32(c.A)
	a |= a << 8
	r = uint32(c.R) * a / 0xff
	g = uint32(c.G) * a / 0xff
	b = uint32(c.B) * a / 0xff
	return r, g, b, a
}

// Floats returns the straight-alpha components scaled to [0, 1].
func (c Color) Floats() (r, g, b, a float32) {
	return float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255
}

// Vec2 is a 2D vector used for positions, sizes, offsets and advances.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v multiplied by f.
func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }

// Lerp returns the linear interpolation between v and o by t.
func (v Vec2) Lerp(o Vec2, t float64) Vec2 {
	return Vec2{v.X + (o.X-v.X)*t, v.Y + (o.Y-v.Y)*t}
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// RectFrom builds a rectangle from a position and a size.
func RectFrom(pos, size Vec2) Rect {
	return Rect{X: pos.X, Y: pos.Y, Width: size.X, Height: size.Y}
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Inflate grows the rectangle by d on every side.
func (r Rect) Inflate(d Vec2) Rect {
	return Rect{X: r.X - d.X, Y: r.Y - d.Y, Width: r.Width + 2*d.X, Height: r.Height + 2*d.Y}
}

// Center returns the centre point of the rectangle.
func (r Rect) Center() Vec2 {
	return Vec2{r.X + r.Width/2, r.Y + r.Height/2}
}

// boundsOf returns the bounding box of a point set.
func boundsOf(points []Vec2) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Kind distinguishes drawing behavior for a Renderable.
type Kind uint8

const (
	KindContainer        Kind = iota // group node with no visual output
	KindPixel                        // single point
	KindLine                         // segment between Points[0] and Points[1]
	KindRectangle                    // axis-aligned box of Size
	KindRoundedRectangle             // box with CornerRadius corners
	KindEllipse                      // ellipse inscribed in Size
	KindTriangle                     // three Points
	KindPolygon                      // closed Points outline
	KindText                         // TextBlock rendered through the text cache
	KindSprite                       // Texture stretched over Size
	KindCustom                       // draws only through OnRender
)

var kindNames = [...]string{
	"container", "pixel", "line", "rectangle", "rounded-rectangle",
	"ellipse", "triangle", "polygon", "text", "sprite", "custom",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// kindZOffset is the fixed per-kind offset added when a node's z-index is
// relative to its parent. Text sits above the shape it labels.
func kindZOffset(k Kind) int {
	if k == KindText {
		return 1
	}
	return 0
}

// FontStyle is a bitmask of glyph styling flags.
type FontStyle uint8

const (
	StyleNormal FontStyle = 0
	StyleBold   FontStyle = 1 << (iota - 1)
	StyleItalic
	StyleUnderline
	StyleStrikeout
)

// Has reports whether all bits of flag are set.
func (s FontStyle) Has(flag FontStyle) bool {
	return s&flag == flag
}

// Smoothing selects how glyph coverage is turned into pixels.
type Smoothing uint8

const (
	SmoothingBlended Smoothing = iota // antialiased over transparency
	SmoothingSolid                    // hard-edged, coverage thresholded
	SmoothingShaded                   // antialiased over an opaque background
)

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// Key identifies a non-character key. Printable input arrives as KeyRune
// with the character in Event.Rune.
type Key uint8

const (
	KeyUnknown Key = iota
	KeyRune
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyDelete
	KeyTab
	KeySpace
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
)
