package lightning

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// RenderConfig holds the global render settings. The renderer reads it once
// per frame and never writes to it.
type RenderConfig struct {
	Title string `toml:"title" yaml:"title"`

	// ResolutionX and ResolutionY are the viewport size in pixels used for
	// culling and window layout.
	ResolutionX int `toml:"resolution_x" yaml:"resolution_x"`
	ResolutionY int `toml:"resolution_y" yaml:"resolution_y"`

	// RenderOffScreen marks every renderable on-screen without culling.
	RenderOffScreen bool `toml:"render_offscreen" yaml:"render_offscreen"`

	// MaxFPS throttles the frame driver. Zero disables throttling.
	MaxFPS int `toml:"max_fps" yaml:"max_fps"`

	// TickSpeed multiplies the measured delta time handed to animations and
	// update hooks.
	TickSpeed float64 `toml:"tick_speed" yaml:"tick_speed"`

	VSync bool `toml:"vsync" yaml:"vsync"`
	Debug bool `toml:"debug" yaml:"debug"`

	// ScreenshotDir receives PNGs queued with Renderer.Screenshot.
	ScreenshotDir string `toml:"screenshot_dir" yaml:"screenshot_dir"`

	FontDirectory   string  `toml:"font_directory" yaml:"font_directory"`
	DefaultFont     string  `toml:"default_font" yaml:"default_font"`
	DefaultFontSize float64 `toml:"default_font_size" yaml:"default_font_size"`
}

// DefaultRenderConfig returns the settings used when no config file exists.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Title:           "Lightning",
		ResolutionX:     1024,
		ResolutionY:     768,
		MaxFPS:          60,
		TickSpeed:       1,
		VSync:           true,
		DefaultFontSize: 11,
		ScreenshotDir:   "screenshots",
	}
}

// Validate fills zero values with defaults and rejects values the renderer
// cannot work with.
func (c *RenderConfig) Validate() error {
	def := DefaultRenderConfig()
	if c.ResolutionX == 0 {
		c.ResolutionX = def.ResolutionX
	}
	if c.ResolutionY == 0 {
		c.ResolutionY = def.ResolutionY
	}
	if c.ResolutionX < 0 || c.ResolutionY < 0 {
		return fmt.Errorf("lightning: invalid resolution %dx%d", c.ResolutionX, c.ResolutionY)
	}
	if c.MaxFPS < 0 {
		return fmt.Errorf("lightning: invalid max fps %d", c.MaxFPS)
	}
	if c.TickSpeed == 0 {
		c.TickSpeed = def.TickSpeed
	}
	if c.TickSpeed < 0 {
		return fmt.Errorf("lightning: invalid tick speed %v", c.TickSpeed)
	}
	if c.DefaultFontSize <= 0 {
		c.DefaultFontSize = def.DefaultFontSize
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = def.ScreenshotDir
	}
	return nil
}

// Resolution returns the configured viewport size.
func (c *RenderConfig) Resolution() Vec2 {
	return Vec2{float64(c.ResolutionX), float64(c.ResolutionY)}
}

// LoadRenderConfig reads a TOML (.toml) or YAML (.yaml, .yml) config file.
// Keys absent from the file keep their default values.
func LoadRenderConfig(path string) (RenderConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RenderConfig{}, fmt.Errorf("lightning: read config: %w", err)
	}
	return ParseRenderConfig(data, filepath.Ext(path))
}

// ParseRenderConfig decodes config data in the format named by ext.
func ParseRenderConfig(data []byte, ext string) (RenderConfig, error) {
	cfg := DefaultRenderConfig()
	switch strings.ToLower(ext) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return RenderConfig{}, fmt.Errorf("lightning: parse toml config: %w", err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return RenderConfig{}, fmt.Errorf("lightning: parse yaml config: %w", err)
		}
	default:
		return RenderConfig{}, fmt.Errorf("lightning: unsupported config format %q", ext)
	}
	if err := cfg.Validate(); err != nil {
		return RenderConfig{}, err
	}
	return cfg, nil
}

// SaveRenderConfig writes cfg as TOML.
func SaveRenderConfig(path string, cfg RenderConfig) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("lightning: encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("lightning: write config: %w", err)
	}
	return nil
}
