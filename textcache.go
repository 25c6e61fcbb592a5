package lightning

import (
	"fmt"
	"image"
	"math"
	"strings"

	"golang.org/x/image/draw"
)

// TextOptions holds every styling dimension that changes a rendered string.
type TextOptions struct {
	Color        Color
	Style        FontStyle
	Smoothing    Smoothing
	OutlineSize  int
	OutlineColor Color
	Background   Color
}

// TextKey identifies a rendered string in the text cache.
type TextKey struct {
	Font FontID
	Text string
	TextOptions
}

// TextCacheEntry is a rendered multi-line string: one texture per line.
// Empty lines have a nil texture and a zero width.
type TextCacheEntry struct {
	Key        TextKey
	Lines      []*Texture
	LineSizes  []Vec2
	LineHeight float64
	Size       Vec2

	UsedThisFrame bool
}

// release destroys every line texture.
func (e *TextCacheEntry) release() {
	for i, t := range e.Lines {
		t.Destroy()
		e.Lines[i] = nil
	}
}

// TextCache maps strings and their styling to composed line bitmaps. Glyphs
// are taken from the glyph cache, so composing a new string only rasterizes
// characters that are not already cached. Eviction follows the same
// used-this-frame discipline as GlyphCache.
type TextCache struct {
	surface Surface
	glyphs  *GlyphCache
	entries map[TextKey]*TextCacheEntry
	stats   CacheStats
}

// NewTextCache creates an empty text cache composing from glyphs.
func NewTextCache(s Surface, glyphs *GlyphCache) *TextCache {
	return &TextCache{
		surface: s,
		glyphs:  glyphs,
		entries: make(map[TextKey]*TextCacheEntry),
	}
}

// Query returns the cached entry for key and marks it used, or nil on a miss.
func (c *TextCache) Query(key TextKey) *TextCacheEntry {
	e, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return nil
	}
	c.stats.Hits++
	e.UsedThisFrame = true
	return e
}

// Render returns the entry for text in f with opts, composing and caching it
// on a miss.
func (c *TextCache) Render(f *Font, text string, opts TextOptions) (*TextCacheEntry, error) {
	if f == nil || !f.loaded {
		return nil, ErrFontNotFound
	}
	key := TextKey{Font: f.id, Text: text, TextOptions: opts}
	if e := c.Query(key); e != nil {
		return e, nil
	}

	lines := strings.Split(text, "\n")
	e := &TextCacheEntry{
		Key:           key,
		Lines:         make([]*Texture, len(lines)),
		LineSizes:     make([]Vec2, len(lines)),
		LineHeight:    math.Ceil(f.LineHeight()) + float64(2*opts.OutlineSize),
		UsedThisFrame: true,
	}
	for i, line := range lines {
		tex, size, err := c.composeLine(f, line, opts)
		if err != nil {
			e.release()
			return nil, err
		}
		e.Lines[i] = tex
		e.LineSizes[i] = size
		e.Size.X = math.Max(e.Size.X, size.X)
	}
	e.Size.Y = e.LineHeight * float64(len(lines))
	c.entries[key] = e
	c.stats.Inserts++
	return e, nil
}

// placedGlyph is a glyph positioned on a line, pen-relative.
type placedGlyph struct {
	glyph   *Glyph
	outline *Glyph
	x       float64
}

// composeLine lays out one line and renders it into a new texture.
func (c *TextCache) composeLine(f *Font, line string, opts TextOptions) (*Texture, Vec2, error) {
	pad := opts.OutlineSize
	lineH := math.Ceil(f.LineHeight()) + float64(2*pad)
	if line == "" {
		return nil, Vec2{0, lineH}, nil
	}

	var placed []placedGlyph
	var pen, right float64
	prev := rune(-1)
	for _, r := range line {
		if prev >= 0 && f.face != nil {
			pen += fixedToFloat(f.face.Kern(prev, r))
		}
		g, err := c.glyphs.Glyph(f, r, opts.Color, opts.Style)
		if err != nil {
			return nil, Vec2{}, err
		}
		pg := placedGlyph{glyph: g, x: pen}
		if pad > 0 && !g.IsEmpty {
			og, err := c.glyphs.Glyph(f, r, opts.OutlineColor, opts.Style)
			if err != nil {
				return nil, Vec2{}, err
			}
			pg.outline = og
		}
		placed = append(placed, pg)
		if !g.IsEmpty {
			right = math.Max(right, pen+g.Offset.X+g.Size.X)
		}
		pen += g.Advance.X
		prev = r
	}

	w := int(math.Ceil(math.Max(pen, right))) + 2*pad
	h := int(lineH)
	if w <= 2*pad {
		return nil, Vec2{0, lineH}, nil
	}

	tex, err := c.surface.CreateTexture(w, h)
	if err != nil {
		return nil, Vec2{}, fmt.Errorf("%w: text line %dx%d: %v", ErrSurfaceAllocation, w, h, err)
	}
	buf, err := c.surface.LockTexture(tex)
	if err != nil {
		tex.Destroy()
		return nil, Vec2{}, err
	}

	if opts.Smoothing == SmoothingShaded || opts.Background.A > 0 {
		fillRGBA(buf, buf.Bounds(), opts.Background)
	}
	baseline := float64(pad) + math.Ceil(f.Ascent)

	if pad > 0 {
		offsets := [8][2]int{
			{-pad, 0}, {pad, 0}, {0, -pad}, {0, pad},
			{-pad, -pad}, {pad, -pad}, {-pad, pad}, {pad, pad},
		}
		for _, off := range offsets {
			for _, pg := range placed {
				if pg.outline != nil {
					blitGlyph(buf, pg.outline, float64(pad)+pg.x+float64(off[0]), baseline+float64(off[1]))
				}
			}
		}
	}
	for _, pg := range placed {
		if !pg.glyph.IsEmpty {
			blitGlyph(buf, pg.glyph, float64(pad)+pg.x, baseline)
		}
	}

	thickness := int(math.Max(1, math.Round(f.FontSizePixels/14)))
	if opts.Style.Has(StyleUnderline) {
		y := int(baseline + math.Max(1, math.Round(f.Descent/2)))
		fillRGBA(buf, image.Rect(pad, y, w-pad, y+thickness), opts.Color)
	}
	if opts.Style.Has(StyleStrikeout) {
		y := int(baseline - math.Round(f.Ascent/3))
		fillRGBA(buf, image.Rect(pad, y, w-pad, y+thickness), opts.Color)
	}
	if opts.Smoothing == SmoothingSolid {
		thresholdAlpha(buf)
	}

	if err := c.surface.UnlockTexture(tex); err != nil {
		tex.Destroy()
		return nil, Vec2{}, err
	}
	return tex, Vec2{float64(w), lineH}, nil
}

// blitGlyph composites g with its pen at (penX, baseline).
func blitGlyph(dst *image.RGBA, g *Glyph, penX, baseline float64) {
	x := int(math.Round(penX + g.Offset.X))
	y := int(math.Round(baseline + g.Offset.Y))
	b := g.Bitmap.Bounds()
	r := image.Rect(x, y, x+b.Dx(), y+b.Dy())
	draw.Draw(dst, r, g.Bitmap, b.Min, draw.Over)
}

// thresholdAlpha snaps every pixel to fully opaque or fully transparent.
func thresholdAlpha(img *image.RGBA) {
	for i := 0; i+3 < len(img.Pix); i += 4 {
		a := img.Pix[i+3]
		if a >= 128 {
			if a != 255 {
				// un-premultiply onto full alpha
				for k := 0; k < 3; k++ {
					img.Pix[i+k] = uint8(min(255, uint32(img.Pix[i+k])*255/uint32(a)))
				}
				img.Pix[i+3] = 255
			}
			continue
		}
		img.Pix[i+0], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 0, 0, 0, 0
	}
}

// Purge evicts entries not used since the previous purge and releases their
// textures, then clears the used flag on survivors. Returns the evicted count.
func (c *TextCache) Purge() int {
	evicted := 0
	for key, e := range c.entries {
		if !e.UsedThisFrame {
			e.release()
			delete(c.entries, key)
			evicted++
			continue
		}
		e.UsedThisFrame = false
	}
	c.stats.Evictions += uint64(evicted)
	return evicted
}

// Clear releases every entry regardless of use.
func (c *TextCache) Clear() {
	for key, e := range c.entries {
		e.release()
		delete(c.entries, key)
	}
}

// Len returns the number of cached strings.
func (c *TextCache) Len() int {
	return len(c.entries)
}

// Stats returns the cache counters.
func (c *TextCache) Stats() CacheStats {
	return c.stats
}
