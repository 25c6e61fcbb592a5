package lightning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/basicfont"
)

func newTestGlyphCache(t *testing.T) (*GlyphCache, *recordSurface, *Font) {
	t.Helper()
	s := newRecordSurface()
	fm := NewFontManager("", discardLogger())
	f := fm.AddFace("basic13", basicfont.Face7x13, 13)
	return NewGlyphCache(s), s, f
}

func TestGlyphCacheQueryMiss(t *testing.T) {
	c, _, f := newTestGlyphCache(t)
	assert.Nil(t, c.Query(GlyphKey{Font: f.ID(), Rune: 'a', Color: ColorWhite}))
	assert.Equal(t, uint64(1), c.Stats().Misses)
}

func TestGlyphCacheRasterizesOnce(t *testing.T) {
	c, s, f := newTestGlyphCache(t)

	g1, err := c.Glyph(f, 'a', ColorWhite, StyleNormal)
	require.NoError(t, err)
	g2, err := c.Glyph(f, 'a', ColorWhite, StyleNormal)
	require.NoError(t, err)

	assert.Same(t, g1, g2)
	assert.Equal(t, 1, s.rasterized)
	assert.Equal(t, 1, c.Len())
	assert.NotNil(t, g1.Texture)
	assert.Equal(t, 7.0, g1.Advance.X)
}

func TestGlyphCacheCacheCharacterReturnsExisting(t *testing.T) {
	c, s, f := newTestGlyphCache(t)
	g1, err := c.CacheCharacter(f, 'b', ColorWhite, StyleNormal)
	require.NoError(t, err)
	g2, err := c.CacheCharacter(f, 'b', ColorWhite, StyleNormal)
	require.NoError(t, err)
	assert.Same(t, g1, g2)
	assert.Equal(t, 1, s.rasterized)
}

func TestGlyphCacheKeyIncludesColorAndStyle(t *testing.T) {
	c, s, f := newTestGlyphCache(t)
	red := Color{255, 0, 0, 255}

	_, err := c.Glyph(f, 'a', ColorWhite, StyleNormal)
	require.NoError(t, err)
	_, err = c.Glyph(f, 'a', red, StyleNormal)
	require.NoError(t, err)
	_, err = c.Glyph(f, 'a', ColorWhite, StyleBold)
	require.NoError(t, err)

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 3, s.rasterized)
}

func TestGlyphCacheWhitespaceIsEmpty(t *testing.T) {
	c, s, f := newTestGlyphCache(t)
	g, err := c.Glyph(f, ' ', ColorWhite, StyleNormal)
	require.NoError(t, err)
	assert.True(t, g.IsEmpty)
	assert.Nil(t, g.Texture)
	assert.Equal(t, 0, s.created)
	assert.Equal(t, 7.0, g.Advance.X)
}

func TestGlyphCachePurge(t *testing.T) {
	c, s, f := newTestGlyphCache(t)
	g, err := c.Glyph(f, 'a', ColorWhite, StyleNormal)
	require.NoError(t, err)
	tex := g.Texture

	// used this frame: survives, flag cleared
	assert.Equal(t, 0, c.Purge())
	assert.Equal(t, 1, c.Len())
	assert.False(t, g.UsedThisFrame)

	// unused for a frame: evicted and its texture released
	assert.Equal(t, 1, c.Purge())
	assert.Equal(t, 0, c.Len())
	assert.True(t, tex.Disposed())
	assert.Equal(t, 1, s.destroyed)

	// idempotent on an empty cache
	assert.Equal(t, 0, c.Purge())
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestGlyphCacheQueryKeepsEntryAlive(t *testing.T) {
	c, _, f := newTestGlyphCache(t)
	_, err := c.Glyph(f, 'a', ColorWhite, StyleNormal)
	require.NoError(t, err)
	c.Purge()

	key := GlyphKey{Font: f.ID(), Rune: 'a', Color: ColorWhite}
	require.NotNil(t, c.Query(key))
	assert.Equal(t, 0, c.Purge())
	assert.Equal(t, 1, c.Len())
}

func TestGlyphCacheAllocationFailure(t *testing.T) {
	c, s, f := newTestGlyphCache(t)
	s.failCreate = true
	_, err := c.Glyph(f, 'a', ColorWhite, StyleNormal)
	require.ErrorIs(t, err, ErrSurfaceAllocation)
	assert.Equal(t, 0, c.Len())
}

func TestGlyphCacheNilFont(t *testing.T) {
	c, _, _ := newTestGlyphCache(t)
	_, err := c.Glyph(nil, 'a', ColorWhite, StyleNormal)
	assert.ErrorIs(t, err, ErrFontNotFound)
}

func TestGlyphCacheClear(t *testing.T) {
	c, s, f := newTestGlyphCache(t)
	for _, r := range "abc" {
		_, err := c.Glyph(f, r, ColorWhite, StyleNormal)
		require.NoError(t, err)
	}
	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, s.created, s.destroyed)
}

func TestSyntheticStylesWidenMask(t *testing.T) {
	_, _, f := newTestGlyphCache(t)
	plain, err := RasterizeGlyph(f, 'l', StyleNormal)
	require.NoError(t, err)
	bold, err := RasterizeGlyph(f, 'l', StyleBold)
	require.NoError(t, err)
	italic, err := RasterizeGlyph(f, 'l', StyleItalic)
	require.NoError(t, err)

	pw := plain.Mask.Bounds().Dx()
	assert.Equal(t, pw+1, bold.Mask.Bounds().Dx())
	assert.Greater(t, italic.Mask.Bounds().Dx(), pw)
	assert.Equal(t, plain.Advance.X+1, bold.Advance.X)
}
