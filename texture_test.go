package lightning

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestLoadTextureData(t *testing.T) {
	r, _ := newTestRenderer(t)
	tex, err := r.Textures().LoadTextureData("red", pngBytes(t, 4, 3, color.RGBA{255, 0, 0, 255}))
	if err != nil {
		t.Fatalf("LoadTextureData: %v", err)
	}
	if tex.Width() != 4 || tex.Height() != 3 {
		t.Errorf("size = %dx%d, want 4x3", tex.Width(), tex.Height())
	}
	if got := tex.Pixels().RGBAAt(1, 1); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("pixel = %v, want red", got)
	}
	if r.Textures().Texture("red") != tex {
		t.Error("texture not registered")
	}
}

func TestLoadTextureFromFileIsIdempotent(t *testing.T) {
	r, s := newTestRenderer(t)
	path := filepath.Join(t.TempDir(), "tile.png")
	if err := os.WriteFile(path, pngBytes(t, 2, 2, color.White), 0o644); err != nil {
		t.Fatal(err)
	}
	a, err := r.Textures().LoadTexture(path)
	if err != nil {
		t.Fatalf("LoadTexture: %v", err)
	}
	b, err := r.Textures().LoadTexture(path)
	if err != nil {
		t.Fatalf("second LoadTexture: %v", err)
	}
	if a != b || s.created != 1 {
		t.Errorf("texture loaded twice (created %d)", s.created)
	}
	if names := r.Textures().Names(); len(names) != 1 || names[0] != "tile.png" {
		t.Errorf("Names = %v, want [tile.png]", names)
	}
}

func TestLoadTextureMissingFile(t *testing.T) {
	r, _ := newTestRenderer(t)
	if _, err := r.Textures().LoadTexture(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Error("missing file loaded")
	}
}

func TestLoadTextureDataInvalid(t *testing.T) {
	r, _ := newTestRenderer(t)
	_, err := r.Textures().LoadTextureData("junk", []byte("not an image"))
	if !errors.Is(err, ErrInvalidTexture) {
		t.Errorf("err = %v, want ErrInvalidTexture", err)
	}
}

func TestAddImageZeroSize(t *testing.T) {
	r, _ := newTestRenderer(t)
	_, err := r.Textures().AddImage("empty", image.NewRGBA(image.Rect(0, 0, 0, 5)))
	if !errors.Is(err, ErrInvalidTexture) {
		t.Errorf("err = %v, want ErrInvalidTexture", err)
	}
}

func TestAddImageUploadFailureIsFatal(t *testing.T) {
	r, s := newTestRenderer(t)
	s.failCreate = true
	expectFatal(t, func() {
		r.Textures().AddImage("x", image.NewRGBA(image.Rect(0, 0, 2, 2)))
	})
}

func TestAddImageReplacesByName(t *testing.T) {
	r, _ := newTestRenderer(t)
	old, _ := r.Textures().AddImage("x", image.NewRGBA(image.Rect(0, 0, 2, 2)))
	cur, _ := r.Textures().AddImage("x", image.NewRGBA(image.Rect(0, 0, 3, 3)))
	if !old.Disposed() {
		t.Error("replaced texture not destroyed")
	}
	if r.Textures().Texture("x") != cur || r.Textures().Len() != 1 {
		t.Error("replacement not registered")
	}
}

func TestUnloadTwice(t *testing.T) {
	r, s := newTestRenderer(t)
	tex, _ := r.Textures().AddImage("x", image.NewRGBA(image.Rect(0, 0, 2, 2)))
	r.Textures().Unload("x")
	r.Textures().Unload("x")
	if !tex.Disposed() || s.destroyed != 1 {
		t.Errorf("destroyed = %d, want 1", s.destroyed)
	}
	if r.Textures().Texture("x") != nil {
		t.Error("texture still registered")
	}
}

func TestSpriteDraw(t *testing.T) {
	r, s := newTestRenderer(t)
	tex, _ := r.Textures().AddImage("x", image.NewRGBA(image.Rect(0, 0, 8, 4)))
	n := r.Textures().AddSprite("sprite", "x", Vec2{10, 20}, nil)
	if n == nil {
		t.Fatal("AddSprite returned nil")
	}
	r.Frame()
	if len(s.calls) != 1 || s.calls[0].op != "texture" {
		t.Fatalf("calls = %v, want one texture", s.ops())
	}
	if s.calls[0].tex != tex || s.calls[0].rect != (Rect{10, 20, 8, 4}) {
		t.Errorf("texture call = %+v", s.calls[0])
	}
	if r.Textures().AddSprite("missing", "nope", Vec2{}, nil) != nil {
		t.Error("sprite created for unknown texture")
	}
}

func TestOwnedTextureReleasedWithNode(t *testing.T) {
	r, s := newTestRenderer(t)
	tex, _ := s.CreateTexture(2, 2)
	n := NewSprite("s", tex, Vec2{})
	n.OwnsTexture = true
	r.AddRenderable(n, nil)
	r.RemoveRenderable(n)
	if !tex.Disposed() {
		t.Error("owned texture not released")
	}
}

func TestAddAnimatedSprite(t *testing.T) {
	r, _ := newTestRenderer(t)
	a, _ := r.Textures().AddImage("a", image.NewRGBA(image.Rect(0, 0, 2, 2)))
	b, _ := r.Textures().AddImage("b", image.NewRGBA(image.Rect(0, 0, 2, 2)))
	n, err := r.Textures().AddAnimatedSprite("anim", []string{"a", "b"}, 100, true, Vec2{}, nil)
	if err != nil {
		t.Fatalf("AddAnimatedSprite: %v", err)
	}
	if n.Texture != a {
		t.Error("first frame not shown")
	}
	r.Frame()
	r.Frame()
	r.Frame()
	if n.Texture != b {
		t.Error("animation did not advance to second frame")
	}
	if _, err := r.Textures().AddAnimatedSprite("bad", []string{"a", "zzz"}, 1, true, Vec2{}, nil); err == nil {
		t.Error("unknown frame accepted")
	}
	if _, err := r.Textures().AddAnimatedSprite("none", nil, 1, true, Vec2{}, nil); err == nil {
		t.Error("empty frame list accepted")
	}
}
