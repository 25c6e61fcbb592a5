package lightning

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
	"unicode"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// italicShear is the horizontal shift per pixel of glyph height used to
// synthesize italics on faces without an italic variant.
const italicShear = 0.2

// RasterizeGlyph renders r from f's face into a coverage mask. Bold and
// italic are synthesized (1px horizontal dilation, row shear); underline and
// strikeout are line decorations drawn by the text cache, not per glyph.
// Backends without a native rasterizer delegate here.
func RasterizeGlyph(f *Font, r rune, style FontStyle) (GlyphBitmap, error) {
	if f == nil || !f.loaded {
		return GlyphBitmap{}, ErrFontNotFound
	}
	face := f.face
	adv, ok := face.GlyphAdvance(r)
	if !ok {
		adv, _ = face.GlyphAdvance(unicode.ReplacementChar)
	}
	advance := Vec2{X: fixedToFloat(adv)}
	if style.Has(StyleBold) {
		advance.X++
	}
	if unicode.IsSpace(r) || unicode.IsControl(r) {
		return GlyphBitmap{Advance: advance, Empty: true}, nil
	}

	dr, mask, maskp, _, ok := face.Glyph(fixed.Point26_6{}, r)
	if !ok {
		dr, mask, maskp, _, ok = face.Glyph(fixed.Point26_6{}, unicode.ReplacementChar)
	}
	if !ok || dr.Empty() {
		return GlyphBitmap{Advance: advance, Empty: true}, nil
	}

	w, h := dr.Dx(), dr.Dy()
	src := image.NewAlpha(image.Rect(0, 0, w, h))
	draw.Draw(src, src.Bounds(), mask, maskp, draw.Src)

	if style.Has(StyleItalic) {
		src = shearAlpha(src, italicShear)
	}
	if style.Has(StyleBold) {
		src = emboldenAlpha(src)
	}
	return GlyphBitmap{
		Mask:    src,
		Advance: advance,
		Offset:  Vec2{float64(dr.Min.X), float64(dr.Min.Y)},
	}, nil
}

// shearAlpha slants a mask to the right, bottom row unshifted.
func shearAlpha(src *image.Alpha, shear float64) *image.Alpha {
	b := src.Bounds()
	extra := int(math.Ceil(float64(b.Dy()) * shear))
	out := image.NewAlpha(image.Rect(0, 0, b.Dx()+extra, b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		shift := int(math.Round(float64(b.Dy()-1-y) * shear))
		for x := 0; x < b.Dx(); x++ {
			out.SetAlpha(x+shift, y, src.AlphaAt(x, y))
		}
	}
	return out
}

// emboldenAlpha widens every stroke by one pixel.
func emboldenAlpha(src *image.Alpha) *image.Alpha {
	b := src.Bounds()
	out := image.NewAlpha(image.Rect(0, 0, b.Dx()+1, b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x <= b.Dx(); x++ {
			var a uint8
			if x < b.Dx() {
				a = src.AlphaAt(x, y).A
			}
			if x > 0 {
				if left := src.AlphaAt(x-1, y).A; left > a {
					a = left
				}
			}
			out.SetAlpha(x, y, color.Alpha{A: a})
		}
	}
	return out
}

// MeasureString measures multi-line text laid out with f. Width is the widest
// line, height is the line count times the line height.
func MeasureString(f *Font, s string) Vec2 {
	if f == nil || !f.loaded {
		return Vec2{}
	}
	lines := strings.Split(s, "\n")
	var maxW float64
	for _, line := range lines {
		w := fixedToFloat(font.MeasureString(f.face, line))
		if w > maxW {
			maxW = w
		}
	}
	return Vec2{maxW, float64(len(lines)) * f.LineHeight()}
}

// colorizeMask turns a coverage mask into a premultiplied RGBA bitmap in c.
// Solid smoothing thresholds coverage at one half.
func colorizeMask(mask *image.Alpha, c Color, smoothing Smoothing) *image.RGBA {
	b := mask.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			cov := uint32(mask.AlphaAt(b.Min.X+x, b.Min.Y+y).A)
			if smoothing == SmoothingSolid {
				if cov >= 128 {
					cov = 255
				} else {
					cov = 0
				}
			}
			if cov == 0 {
				continue
			}
			a := cov * uint32(c.A) / 255
			i := out.PixOffset(x, y)
			out.Pix[i+0] = uint8(uint32(c.R) * a / 255)
			out.Pix[i+1] = uint8(uint32(c.G) * a / 255)
			out.Pix[i+2] = uint8(uint32(c.B) * a / 255)
			out.Pix[i+3] = uint8(a)
		}
	}
	return out
}

// copyImage replaces dst's pixels with src.
func copyImage(dst *image.RGBA, src image.Image) {
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
}

// fillRGBA paints r on dst with c.
func fillRGBA(dst *image.RGBA, r image.Rectangle, c Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Over)
}

// imageSizeError describes a zero or negative texture request.
func imageSizeError(w, h int) error {
	return fmt.Errorf("%w: size %dx%d", ErrInvalidTexture, w, h)
}
