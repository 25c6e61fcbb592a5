package lightning

import "log/slog"

// debugLog writes the frame's timing and node counts at debug level.
// Only called when RenderConfig.Debug is set.
func (r *Renderer) debugLog(stats FrameStats) {
	total := stats.CullTime + stats.RenderTime + stats.PurgeTime
	r.logger.Debug("frame",
		slog.Uint64("frame", stats.Frame),
		slog.Duration("cull", stats.CullTime),
		slog.Duration("render", stats.RenderTime),
		slog.Duration("purge", stats.PurgeTime),
		slog.Duration("total", total),
		slog.Int("nodes", stats.Total),
		slog.Int("rendered", stats.Rendered),
		slog.Int("culled", stats.Culled),
		slog.Int("glyphs", r.glyphs.Len()),
		slog.Int("glyphs_evicted", stats.GlyphsEvicted),
		slog.Int("texts", r.text.Len()),
		slog.Int("texts_evicted", stats.TextEvicted),
		slog.Float64("fps", stats.FPS))
}

// debugMaxTreeDepth is the depth past which debugCheckNode warns.
const debugMaxTreeDepth = 32

// debugMaxChildCount is the child count past which debugCheckNode warns.
const debugMaxChildCount = 1000

// debugCheckNode warns about trees that are unusually deep or wide.
// Only called when RenderConfig.Debug is set.
func (r *Renderer) debugCheckNode(n *Renderable) {
	depth := 0
	for p := n; p != nil; p = r.Resolve(p.parent) {
		depth++
	}
	if depth > debugMaxTreeDepth {
		r.warn("tree depth exceeds threshold",
			slog.String("node", n.Name), slog.Int("depth", depth), slog.Int("threshold", debugMaxTreeDepth))
	}
	if p := r.Resolve(n.parent); p != nil && len(p.children) == debugMaxChildCount+1 {
		r.warn("child count exceeds threshold",
			slog.String("node", p.Name), slog.Int("children", len(p.children)), slog.Int("threshold", debugMaxChildCount))
	}
}
