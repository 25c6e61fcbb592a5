package lightning

import "image"

// ShapeStyle carries the pass-through drawing flags for primitive calls.
type ShapeStyle struct {
	Color     Color
	Filled    bool
	Thickness float64
	Antialias bool
}

// GlyphBitmap is a rasterized glyph coverage mask plus its metrics.
// Offset is the mask's top-left relative to the pen position on the baseline.
type GlyphBitmap struct {
	Mask    *image.Alpha
	Advance Vec2
	Offset  Vec2
	Empty   bool
}

// Surface is the drawing backend the renderer talks to. Implementations own
// the native window, draw target and texture storage.
type Surface interface {
	DrawPixel(p Vec2, c Color)
	DrawLine(a, b Vec2, st ShapeStyle)
	DrawRect(r Rect, st ShapeStyle)
	DrawRoundedRect(r Rect, radius float64, st ShapeStyle)
	DrawEllipse(center, radii Vec2, st ShapeStyle)
	DrawTriangle(a, b, c Vec2, st ShapeStyle)
	DrawPolygon(points []Vec2, st ShapeStyle)
	DrawTexture(t *Texture, dst Rect, tint Color)

	RasterizeGlyph(f *Font, r rune, style FontStyle) (GlyphBitmap, error)
	MeasureText(f *Font, s string) Vec2

	CreateTexture(width, height int) (*Texture, error)
	LockTexture(t *Texture) (*image.RGBA, error)
	UnlockTexture(t *Texture) error
	DestroyTexture(t *Texture)

	Release() error
}

// Texture is a backend texture with a CPU-side pixel buffer. Writes go
// through LockTexture/UnlockTexture; UnlockTexture uploads the buffer.
type Texture struct {
	Name string

	width, height int
	pixels        *image.RGBA
	native        any
	locked        bool
	disposed      bool
	surface       Surface
}

// NewTexture allocates the CPU side of a texture. Backends call it from
// CreateTexture and attach their native handle.
func NewTexture(s Surface, width, height int, native any) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, imageSizeError(width, height)
	}
	return &Texture{
		width:   width,
		height:  height,
		pixels:  image.NewRGBA(image.Rect(0, 0, width, height)),
		native:  native,
		surface: s,
	}, nil
}

// Width returns the texture width in pixels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in pixels.
func (t *Texture) Height() int { return t.height }

// Size returns the texture size as a vector.
func (t *Texture) Size() Vec2 { return Vec2{float64(t.width), float64(t.height)} }

// Native returns the backend handle attached at creation.
func (t *Texture) Native() any { return t.native }

// Pixels returns the CPU-side buffer. Backends read it when uploading.
func (t *Texture) Pixels() *image.RGBA { return t.pixels }

// Disposed reports whether the texture's resources have been released.
func (t *Texture) Disposed() bool { return t.disposed }

// Locked reports whether the pixel buffer is checked out for writing.
func (t *Texture) Locked() bool { return t.locked }

// BeginLock marks the texture locked and returns its buffer. Backends call
// it from LockTexture.
func (t *Texture) BeginLock() (*image.RGBA, error) {
	if t.disposed {
		return nil, ErrTextureDisposed
	}
	if t.locked {
		return nil, ErrTextureLocked
	}
	t.locked = true
	return t.pixels, nil
}

// EndLock clears the lock flag. Backends call it from UnlockTexture before
// uploading the buffer.
func (t *Texture) EndLock() error {
	if t.disposed {
		return ErrTextureDisposed
	}
	t.locked = false
	return nil
}

// MarkDisposed drops the texture's buffers. It reports false when the
// texture was already disposed, so backends free native handles only once.
func (t *Texture) MarkDisposed() bool {
	if t.disposed {
		return false
	}
	t.disposed = true
	t.locked = false
	t.pixels = nil
	t.native = nil
	return true
}

// Destroy releases the texture through its surface. Safe to call repeatedly.
func (t *Texture) Destroy() {
	if t == nil || t.disposed {
		return
	}
	if t.surface != nil {
		t.surface.DestroyTexture(t)
		return
	}
	t.MarkDisposed()
}

// uploadImage creates a texture on s holding a copy of img.
func uploadImage(s Surface, img image.Image) (*Texture, error) {
	b := img.Bounds()
	t, err := s.CreateTexture(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	buf, err := s.LockTexture(t)
	if err != nil {
		s.DestroyTexture(t)
		return nil, err
	}
	copyImage(buf, img)
	if err := s.UnlockTexture(t); err != nil {
		s.DestroyTexture(t)
		return nil, err
	}
	return t, nil
}
