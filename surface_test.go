package lightning

import (
	"errors"
	"image"
	"io"
	"log/slog"
	"testing"
	"time"

	"golang.org/x/image/font/basicfont"
)

// drawCall is one recorded surface call.
type drawCall struct {
	op     string
	rect   Rect
	points []Vec2
	style  ShapeStyle
	tex    *Texture
}

// recordSurface is an in-memory Surface that records draw calls and counts
// texture traffic.
type recordSurface struct {
	calls      []drawCall
	rasterized int
	created    int
	destroyed  int
	released   int
	failCreate bool
}

func newRecordSurface() *recordSurface { return &recordSurface{} }

func (s *recordSurface) record(c drawCall) { s.calls = append(s.calls, c) }

func (s *recordSurface) DrawPixel(p Vec2, c Color) {
	s.record(drawCall{op: "pixel", points: []Vec2{p}, style: ShapeStyle{Color: c}})
}

func (s *recordSurface) DrawLine(a, b Vec2, st ShapeStyle) {
	s.record(drawCall{op: "line", points: []Vec2{a, b}, style: st})
}

func (s *recordSurface) DrawRect(r Rect, st ShapeStyle) {
	s.record(drawCall{op: "rect", rect: r, style: st})
}

func (s *recordSurface) DrawRoundedRect(r Rect, radius float64, st ShapeStyle) {
	s.record(drawCall{op: "rounded", rect: r, style: st})
}

func (s *recordSurface) DrawEllipse(center, radii Vec2, st ShapeStyle) {
	s.record(drawCall{op: "ellipse", points: []Vec2{center, radii}, style: st})
}

func (s *recordSurface) DrawTriangle(a, b, c Vec2, st ShapeStyle) {
	s.record(drawCall{op: "triangle", points: []Vec2{a, b, c}, style: st})
}

func (s *recordSurface) DrawPolygon(points []Vec2, st ShapeStyle) {
	s.record(drawCall{op: "polygon", points: append([]Vec2(nil), points...), style: st})
}

func (s *recordSurface) DrawTexture(t *Texture, dst Rect, tint Color) {
	s.record(drawCall{op: "texture", rect: dst, tex: t, style: ShapeStyle{Color: tint}})
}

func (s *recordSurface) RasterizeGlyph(f *Font, r rune, style FontStyle) (GlyphBitmap, error) {
	s.rasterized++
	return RasterizeGlyph(f, r, style)
}

func (s *recordSurface) MeasureText(f *Font, str string) Vec2 { return MeasureString(f, str) }

func (s *recordSurface) CreateTexture(w, h int) (*Texture, error) {
	if s.failCreate {
		return nil, errors.New("out of video memory")
	}
	s.created++
	return NewTexture(s, w, h, nil)
}

func (s *recordSurface) LockTexture(t *Texture) (*image.RGBA, error) { return t.BeginLock() }
func (s *recordSurface) UnlockTexture(t *Texture) error             { return t.EndLock() }

func (s *recordSurface) DestroyTexture(t *Texture) {
	if t != nil && t.MarkDisposed() {
		s.destroyed++
	}
}

func (s *recordSurface) Capture() (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

func (s *recordSurface) Release() error {
	s.released++
	return nil
}

// ops returns the recorded operation names in order.
func (s *recordSurface) ops() []string {
	out := make([]string, len(s.calls))
	for i, c := range s.calls {
		out[i] = c.op
	}
	return out
}

func (s *recordSurface) reset() { s.calls = s.calls[:0] }

// fakeClock advances only when slept on.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Sleep(d time.Duration)   { c.t = c.t.Add(d) }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// fatalExit is the panic value raised by the test exit function.
type fatalExit int

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestRenderer builds an 800x600 renderer over a recordSurface. Fatal
// errors panic with fatalExit instead of exiting.
func newTestRenderer(t *testing.T) (*Renderer, *recordSurface) {
	t.Helper()
	s := newRecordSurface()
	cfg := DefaultRenderConfig()
	cfg.ResolutionX, cfg.ResolutionY = 800, 600
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	r, err := NewRenderer(s, cfg, Options{
		Logger: discardLogger(),
		Exit:   func(code int) { panic(fatalExit(code)) },
		Now:    clock.Now,
		Sleep:  clock.Sleep,
	})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r, s
}

// testFont registers the 7x13 bitmap face: 7px advance, 13px line height.
func testFont(r *Renderer) *Font {
	return r.Fonts().AddFace("basic13", basicfont.Face7x13, 13)
}

// expectFatal runs fn and fails unless it triggers a fatal exit.
func expectFatal(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		rec := recover()
		if rec == nil {
			t.Fatal("expected fatal exit, got none")
		}
		if _, ok := rec.(fatalExit); !ok {
			panic(rec)
		}
	}()
	fn()
}

func TestTextureLockCycle(t *testing.T) {
	s := newRecordSurface()
	tex, err := s.CreateTexture(4, 2)
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	buf, err := s.LockTexture(tex)
	if err != nil {
		t.Fatalf("LockTexture: %v", err)
	}
	if buf.Bounds().Dx() != 4 || buf.Bounds().Dy() != 2 {
		t.Errorf("buffer bounds = %v, want 4x2", buf.Bounds())
	}
	if _, err := s.LockTexture(tex); !errors.Is(err, ErrTextureLocked) {
		t.Errorf("second lock err = %v, want ErrTextureLocked", err)
	}
	if err := s.UnlockTexture(tex); err != nil {
		t.Errorf("UnlockTexture: %v", err)
	}
	if tex.Locked() {
		t.Error("Locked() = true after unlock")
	}
}

func TestTextureDestroyOnce(t *testing.T) {
	s := newRecordSurface()
	tex, _ := s.CreateTexture(1, 1)
	tex.Destroy()
	tex.Destroy()
	if s.destroyed != 1 {
		t.Errorf("destroyed = %d, want 1", s.destroyed)
	}
	if !tex.Disposed() {
		t.Error("Disposed() = false")
	}
	if _, err := s.LockTexture(tex); !errors.Is(err, ErrTextureDisposed) {
		t.Errorf("lock after destroy err = %v, want ErrTextureDisposed", err)
	}
}

func TestNewTextureRejectsEmpty(t *testing.T) {
	if _, err := NewTexture(nil, 0, 5, nil); !errors.Is(err, ErrInvalidTexture) {
		t.Errorf("NewTexture(0x5) err = %v, want ErrInvalidTexture", err)
	}
}
