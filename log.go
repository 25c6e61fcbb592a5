package lightning

import (
	"context"
	"errors"
	"log/slog"
	"os"
)

// Sentinel errors returned (wrapped) by asset loading and the surface
// boundary. Use errors.Is to test for them.
var (
	ErrFontNotFound      = errors.New("lightning: font not found")
	ErrInvalidFont       = errors.New("lightning: invalid font data")
	ErrInvalidTexture    = errors.New("lightning: invalid texture")
	ErrTextureDisposed   = errors.New("lightning: texture disposed")
	ErrTextureLocked     = errors.New("lightning: texture already locked")
	ErrSurfaceAllocation = errors.New("lightning: surface allocation failed")
	ErrSurfaceReleased   = errors.New("lightning: surface released")
)

// Severity is the engine's error taxonomy. Warnings and errors are logged and
// execution continues; fatal errors are logged and terminate the process.
type Severity uint8

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityFatal
)

// String returns the lower-case severity name.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "fatal"
	}
}

func (s Severity) level() slog.Level {
	if s == SeverityWarning {
		return slog.LevelWarn
	}
	return slog.LevelError
}

// report logs msg at the given severity. Fatal reports call the renderer's
// exit function, which does not return unless overridden.
func (r *Renderer) report(sev Severity, msg string, args ...any) {
	args = append(args, slog.String("severity", sev.String()))
	if r.ctx.Frame > 0 {
		args = append(args, slog.Uint64("frame", r.ctx.Frame))
	}
	r.logger.Log(context.Background(), sev.level(), msg, args...)
	if sev == SeverityFatal {
		r.exit(1)
	}
}

func (r *Renderer) warn(msg string, args ...any)     { r.report(SeverityWarning, msg, args...) }
func (r *Renderer) logError(msg string, args ...any) { r.report(SeverityError, msg, args...) }
func (r *Renderer) fatal(msg string, args ...any)    { r.report(SeverityFatal, msg, args...) }

// defaultExit terminates the process after a fatal report.
func defaultExit(code int) {
	os.Exit(code)
}

// isAllocationError reports whether err came from a failed surface
// allocation, which the renderer treats as fatal.
func isAllocationError(err error) bool {
	return errors.Is(err, ErrSurfaceAllocation)
}
