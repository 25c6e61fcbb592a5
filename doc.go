// Package lightning is a small retained-mode 2D rendering core for tools,
// demos and games. It draws through a [Surface], which has two
// implementations: [EbitenSurface] for windows via [Ebitengine] and the
// terminal surface in lightning/term via [tcell].
//
// # Quick start
//
// [NewEbitenRenderer] and [Run] open a window and drive frames for you:
//
//	r, err := lightning.NewEbitenRenderer(lightning.DefaultRenderConfig(), lightning.Options{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	r.Primitives().AddRectangle("box", lightning.Vec2{X: 10, Y: 10}, lightning.Vec2{X: 80, Y: 40},
//		lightning.ColorWhite, true, nil)
//	if err := lightning.Run(r); err != nil {
//		log.Fatal(err)
//	}
//
// For another backend, implement [Surface] and call [Renderer.Frame] from
// your own loop.
//
// # Scene tree
//
// Every visual element is a [Renderable]. The renderer owns them in an arena
// and hands out [NodeID] handles; a removed node's handle no longer
// resolves. Nodes are drawn parent first, then children in ascending z
// order. Text nodes sit one z step above their parent by default so labels
// draw over the shape they belong to.
//
// Removing a node while a render pass or input dispatch is running is
// deferred until the pass ends.
//
// # Frames
//
// [Renderer.Frame] dispatches at most one input event, computes render
// positions against the [Camera], culls nodes outside the viewport, draws
// the rest, purges glyphs and text blocks that were not drawn, and paces
// itself to RenderConfig.MaxFPS.
//
// # Text
//
// Glyphs are rasterized once per font, colour and style into a
// [GlyphCache]. Text blocks are composed from cached glyphs into textures
// held by a [TextCache]. Entries not used during a frame are evicted at the
// end of it.
//
// # Errors
//
// Recoverable problems are logged through log/slog and the operation is
// skipped. Allocation failures are fatal: they are logged and the process
// exits through Options.Exit.
//
// [Ebitengine]: https://ebitengine.org
// [tcell]: https://github.com/gdamore/tcell
package lightning
