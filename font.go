package lightning

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// FontID identifies a loaded face. It is part of every glyph and text cache
// key, so two fonts never share cache entries.
type FontID uint32

// Font is a loaded face at a given size. Path, Size and Index identify it.
type Font struct {
	Name  string
	Path  string
	Size  float64
	Index int

	// Derived metrics, in pixels.
	FontSizePixels float64
	Ascent         float64
	Descent        float64
	LineGap        float64

	id     FontID
	face   font.Face
	loaded bool
}

// ID returns the font's cache identity.
func (f *Font) ID() FontID { return f.id }

// Face returns the rasterizer face, or nil after Unload.
func (f *Font) Face() font.Face { return f.face }

// Loaded reports whether the face is still usable.
func (f *Font) Loaded() bool { return f.loaded }

// LineHeight returns the distance between consecutive baselines.
func (f *Font) LineHeight() float64 {
	return f.Ascent + f.Descent + f.LineGap
}

// Unload closes the face. Safe to call repeatedly.
func (f *Font) Unload() error {
	if !f.loaded {
		return nil
	}
	f.loaded = false
	face := f.face
	f.face = nil
	if face != nil {
		return face.Close()
	}
	return nil
}

// FontName builds the registry name for a font file at a size, e.g.
// "fonts/Arial.ttf" at 11 becomes "Arial11".
func FontName(path string, size float64) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return base + strconv.FormatFloat(size, 'f', -1, 64)
}

// newFont wraps an open face and derives its metrics.
func newFont(id FontID, name, path string, size float64, index int, face font.Face) *Font {
	m := face.Metrics()
	ascent := fixedToFloat(m.Ascent)
	descent := fixedToFloat(m.Descent)
	gap := fixedToFloat(m.Height) - ascent - descent
	if gap < 0 {
		gap = 0
	}
	return &Font{
		Name:           name,
		Path:           path,
		Size:           size,
		Index:          index,
		FontSizePixels: size,
		Ascent:         ascent,
		Descent:        descent,
		LineGap:        gap,
		id:             id,
		face:           face,
		loaded:         true,
	}
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// FontManager loads faces and hands them out by name.
type FontManager struct {
	fonts     map[string]*Font
	directory string
	nextID    FontID
	logger    *slog.Logger
}

// NewFontManager creates a manager resolving relative paths against dir.
func NewFontManager(dir string, logger *slog.Logger) *FontManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &FontManager{
		fonts:     make(map[string]*Font),
		directory: dir,
		logger:    logger,
	}
}

func (m *FontManager) register(name, path string, size float64, index int, face font.Face) *Font {
	if old, ok := m.fonts[name]; ok {
		_ = old.Unload()
	}
	m.nextID++
	f := newFont(m.nextID, name, path, size, index, face)
	m.fonts[name] = f
	m.logger.Debug("font loaded", slog.String("font", name), slog.Float64("size", size))
	return f
}

// LoadFont parses the font file at path (a single face or a collection) and
// opens face index at size points.
func (m *FontManager) LoadFont(path string, size float64, index int) (*Font, error) {
	full := path
	if m.directory != "" && !filepath.IsAbs(path) {
		full = filepath.Join(m.directory, path)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFontNotFound, full)
		}
		return nil, fmt.Errorf("lightning: read font %s: %w", full, err)
	}
	return m.LoadFontData(FontName(path, size), path, data, size, index)
}

// LoadFontData opens a face from raw TTF/OTF/TTC data and registers it under
// name.
func (m *FontManager) LoadFontData(name, path string, data []byte, size float64, index int) (*Font, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size %v", ErrInvalidFont, size)
	}
	coll, err := opentype.ParseCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFont, name, err)
	}
	if index < 0 || index >= coll.NumFonts() {
		return nil, fmt.Errorf("%w: %s has %d faces, index %d", ErrInvalidFont, name, coll.NumFonts(), index)
	}
	otf, err := coll.Font(index)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFont, name, err)
	}
	face, err := opentype.NewFace(otf, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFont, name, err)
	}
	return m.register(name, path, size, index, face), nil
}

// AddFace registers an already open face, e.g. a bitmap face.
func (m *FontManager) AddFace(name string, face font.Face, size float64) *Font {
	return m.register(name, "", size, 0, face)
}

// defaultFontName is the registry base name of the bundled face.
const defaultFontName = "GoRegular"

// LoadDefaultFont opens the bundled Go Regular face at size.
func (m *FontManager) LoadDefaultFont(size float64) (*Font, error) {
	return m.LoadFontData(FontName(defaultFontName, size), "", goregular.TTF, size, 0)
}

// Font returns the font registered under name, or nil.
func (m *FontManager) Font(name string) *Font {
	return m.fonts[name]
}

// Len returns the number of registered fonts.
func (m *FontManager) Len() int {
	return len(m.fonts)
}

// UnloadFont closes and forgets the named font. Unknown names are ignored.
func (m *FontManager) UnloadFont(name string) error {
	f, ok := m.fonts[name]
	if !ok {
		return nil
	}
	delete(m.fonts, name)
	return f.Unload()
}

// UnloadAll closes every font.
func (m *FontManager) UnloadAll() error {
	var errs []error
	for name, f := range m.fonts {
		if err := f.Unload(); err != nil {
			errs = append(errs, fmt.Errorf("unload %s: %w", name, err))
		}
		delete(m.fonts, name)
	}
	return errors.Join(errs...)
}
