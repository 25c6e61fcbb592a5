package lightning

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// TextureManager loads images into surface textures and hands them out by
// name. It owns the textures it loads.
type TextureManager struct {
	r        *Renderer
	textures map[string]*Texture
}

func newTextureManager(r *Renderer) *TextureManager {
	return &TextureManager{r: r, textures: make(map[string]*Texture)}
}

// LoadTexture decodes the PNG, JPEG or GIF file at path and uploads it. The
// texture is registered under the file's base name. Loading a name twice
// returns the existing texture.
func (m *TextureManager) LoadTexture(path string) (*Texture, error) {
	name := filepath.Base(path)
	if t := m.textures[name]; t != nil {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lightning: read texture %s: %w", path, err)
	}
	return m.LoadTextureData(name, data)
}

// LoadTextureData decodes an encoded image and registers it under name.
func (m *TextureManager) LoadTextureData(name string, data []byte) (*Texture, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		m.r.logError("decode texture", slog.String("texture", name), slog.Any("err", err))
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTexture, name, err)
	}
	m.r.logger.Debug("texture decoded", slog.String("texture", name), slog.String("format", format))
	return m.AddImage(name, img)
}

// AddImage uploads img and registers it under name, replacing any previous
// texture of that name. Zero-sized images are rejected; a failed upload is
// fatal.
func (m *TextureManager) AddImage(name string, img image.Image) (*Texture, error) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		err := fmt.Errorf("%s: %w", name, imageSizeError(b.Dx(), b.Dy()))
		m.r.logError("add texture", slog.String("texture", name), slog.Any("err", err))
		return nil, err
	}
	t, err := uploadImage(m.r.surface, img)
	if err != nil {
		err = fmt.Errorf("%w: texture %s: %v", ErrSurfaceAllocation, name, err)
		m.r.fatal("upload texture", slog.String("texture", name), slog.Any("err", err))
		return nil, err
	}
	t.Name = name
	if old := m.textures[name]; old != nil {
		old.Destroy()
	}
	m.textures[name] = t
	return t, nil
}

// Texture returns the texture registered under name, or nil.
func (m *TextureManager) Texture(name string) *Texture {
	return m.textures[name]
}

// Names returns the registered names in sorted order.
func (m *TextureManager) Names() []string {
	names := make([]string, 0, len(m.textures))
	for name := range m.textures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered textures.
func (m *TextureManager) Len() int { return len(m.textures) }

// Unload destroys the named texture. Unknown names are ignored, so calling
// it twice is harmless.
func (m *TextureManager) Unload(name string) {
	if t := m.textures[name]; t != nil {
		t.Destroy()
		delete(m.textures, name)
	}
}

// UnloadAll destroys every registered texture.
func (m *TextureManager) UnloadAll() {
	for name, t := range m.textures {
		t.Destroy()
		delete(m.textures, name)
	}
}

// AddSprite creates a sprite node for the named texture and inserts it.
func (m *TextureManager) AddSprite(name, texture string, pos Vec2, parent *Renderable) *Renderable {
	t := m.textures[texture]
	if t == nil {
		m.r.logError("add sprite: texture not loaded",
			slog.String("name", name), slog.String("texture", texture))
		return nil
	}
	return m.r.AddRenderable(NewSprite(name, t, pos), parent)
}

// AddAnimatedSprite creates a sprite cycling through the named textures at
// fps frames per second.
func (m *TextureManager) AddAnimatedSprite(name string, frames []string, fps float64, loop bool, pos Vec2, parent *Renderable) (*Renderable, error) {
	textures := make([]*Texture, 0, len(frames))
	for _, f := range frames {
		t := m.textures[f]
		if t == nil {
			return nil, fmt.Errorf("lightning: animated sprite %s: texture %s not loaded", name, f)
		}
		textures = append(textures, t)
	}
	if len(textures) == 0 {
		return nil, errors.New("lightning: animated sprite " + name + ": no frames")
	}
	n := NewSprite(name, textures[0], pos)
	n.CurrentAnimation = NewFrameAnimation(textures, fps, loop)
	return m.r.AddRenderable(n, parent), nil
}
