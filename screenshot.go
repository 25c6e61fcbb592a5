package lightning

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Capturer is implemented by surfaces that can read back the drawn frame.
type Capturer interface {
	Capture() (image.Image, error)
}

// Screenshot queues a labeled capture of the current frame. The PNG is
// written to RenderConfig.ScreenshotDir with a timestamped name once the
// frame has rendered. Surfaces that cannot capture log a warning.
func (r *Renderer) Screenshot(label string) {
	r.screenshots = append(r.screenshots, label)
}

// flushScreenshots writes every queued capture. Called at the end of the
// render pass.
func (r *Renderer) flushScreenshots() {
	if len(r.screenshots) == 0 {
		return
	}
	defer func() { r.screenshots = r.screenshots[:0] }()

	c, ok := r.surface.(Capturer)
	if !ok {
		r.warn("screenshot: surface cannot capture", slog.Int("queued", len(r.screenshots)))
		return
	}
	img, err := c.Capture()
	if err != nil {
		r.logError("screenshot: capture", slog.Any("err", err))
		return
	}
	dir := r.config.ScreenshotDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		r.logError("screenshot: mkdir", slog.String("dir", dir), slog.Any("err", err))
		return
	}
	stamp := r.now().Format("20060102_150405")
	for _, label := range r.screenshots {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
		if err := writePNG(path, img); err != nil {
			r.logError("screenshot: write", slog.Any("err", err))
			continue
		}
		r.logger.Debug("screenshot written", slog.String("path", path))
	}
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// unpremultiply converts premultiplied RGBA bytes to straight alpha.
func unpremultiply(pix []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(pix) && i+3 < len(img.Pix); i += 4 {
		r, g, b, a := pix[i], pix[i+1], pix[i+2], pix[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = r, g, b, a
	}
	return img
}
