package lightning

import (
	"fmt"
	"image"
)

// GlyphKey identifies a rasterized glyph. Every field affects the bitmap, so
// requests differing in any of them are distinct entries.
type GlyphKey struct {
	Font  FontID
	Rune  rune
	Color Color
	Style FontStyle
}

// Glyph is a cached rasterized character.
type Glyph struct {
	Key GlyphKey

	// Bitmap is the colored glyph image, nil when IsEmpty.
	Bitmap *image.RGBA
	// Texture is Bitmap uploaded to the surface, nil when IsEmpty.
	Texture *Texture

	Advance Vec2 // pen advance
	Offset  Vec2 // bitmap top-left relative to the pen on the baseline
	Size    Vec2
	IsEmpty bool // whitespace, control or missing glyph

	UsedThisFrame bool
}

// CacheStats counts cache traffic since creation.
type CacheStats struct {
	Hits      uint64
	Misses    uint64
	Inserts   uint64
	Evictions uint64
}

// GlyphCache maps (font, rune, color, style) to rasterized glyphs. Entries
// not queried during a frame are evicted by Purge, releasing their textures.
// Not safe for concurrent use; the renderer owns it on its frame goroutine.
type GlyphCache struct {
	surface Surface
	glyphs  map[GlyphKey]*Glyph
	stats   CacheStats
}

// NewGlyphCache creates an empty cache that rasterizes and uploads through s.
func NewGlyphCache(s Surface) *GlyphCache {
	return &GlyphCache{
		surface: s,
		glyphs:  make(map[GlyphKey]*Glyph),
	}
}

// Query returns the cached glyph for key and marks it used this frame, or nil
// on a miss. A miss is not an error.
func (c *GlyphCache) Query(key GlyphKey) *Glyph {
	g, ok := c.glyphs[key]
	if !ok {
		c.stats.Misses++
		return nil
	}
	c.stats.Hits++
	g.UsedThisFrame = true
	return g
}

// CacheCharacter rasterizes r and inserts it. If the key is already cached
// the existing entry is returned without rasterizing again.
func (c *GlyphCache) CacheCharacter(f *Font, r rune, col Color, style FontStyle) (*Glyph, error) {
	if f == nil {
		return nil, ErrFontNotFound
	}
	key := GlyphKey{Font: f.id, Rune: r, Color: col, Style: style}
	if g, ok := c.glyphs[key]; ok {
		g.UsedThisFrame = true
		return g, nil
	}

	bm, err := c.surface.RasterizeGlyph(f, r, style)
	if err != nil {
		return nil, fmt.Errorf("lightning: rasterize %q: %w", r, err)
	}
	g := &Glyph{
		Key:           key,
		Advance:       bm.Advance,
		Offset:        bm.Offset,
		IsEmpty:       bm.Empty || bm.Mask == nil,
		UsedThisFrame: true,
	}
	if !g.IsEmpty {
		g.Bitmap = colorizeMask(bm.Mask, col, SmoothingBlended)
		b := g.Bitmap.Bounds()
		g.Size = Vec2{float64(b.Dx()), float64(b.Dy())}
		tex, err := uploadImage(c.surface, g.Bitmap)
		if err != nil {
			return nil, fmt.Errorf("%w: glyph %q: %v", ErrSurfaceAllocation, r, err)
		}
		g.Texture = tex
	}
	c.glyphs[key] = g
	c.stats.Inserts++
	return g, nil
}

// Glyph returns the cached glyph for the request, rasterizing it on a miss.
func (c *GlyphCache) Glyph(f *Font, r rune, col Color, style FontStyle) (*Glyph, error) {
	if f == nil {
		return nil, ErrFontNotFound
	}
	if g := c.Query(GlyphKey{Font: f.id, Rune: r, Color: col, Style: style}); g != nil {
		return g, nil
	}
	return c.CacheCharacter(f, r, col, style)
}

// Purge evicts every entry not used since the previous purge, releasing its
// texture, then clears the used flag on the survivors. It returns the number
// of evicted entries.
func (c *GlyphCache) Purge() int {
	evicted := 0
	for key, g := range c.glyphs {
		if !g.UsedThisFrame {
			g.Texture.Destroy()
			g.Texture = nil
			g.Bitmap = nil
			delete(c.glyphs, key)
			evicted++
			continue
		}
		g.UsedThisFrame = false
	}
	c.stats.Evictions += uint64(evicted)
	return evicted
}

// Clear releases every entry regardless of use.
func (c *GlyphCache) Clear() {
	for key, g := range c.glyphs {
		g.Texture.Destroy()
		g.Texture = nil
		g.Bitmap = nil
		delete(c.glyphs, key)
	}
}

// Len returns the number of cached glyphs.
func (c *GlyphCache) Len() int {
	return len(c.glyphs)
}

// Stats returns the cache counters.
func (c *GlyphCache) Stats() CacheStats {
	return c.stats
}
