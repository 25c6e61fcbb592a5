package lightning

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// RenderContext is handed to every hook, animation and input handler. It
// exposes the renderer and the subsystems a node may need while drawing.
type RenderContext struct {
	Renderer   *Renderer
	Surface    Surface
	Camera     *Camera
	Glyphs     *GlyphCache
	Text       *TextCache
	Fonts      *FontManager
	Textures   *TextureManager
	Primitives *PrimitiveManager
	UI         *UIManager
	Config     *RenderConfig
	Logger     *slog.Logger

	// DeltaTime is the scaled time in seconds since the previous frame.
	DeltaTime float64
	// Frame counts completed calls to Renderer.Frame, starting at 1.
	Frame uint64
}

// Options configures a Renderer beyond its RenderConfig.
type Options struct {
	// Logger receives engine diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
	// Input is polled for at most one event per frame. Nil means no input.
	Input InputSource
	// Exit is called after a fatal error is logged. Defaults to os.Exit.
	Exit func(code int)
	// Now and Sleep drive frame timing. They default to the wall clock.
	Now   func() time.Time
	Sleep func(time.Duration)
	// NoThrottle disables MaxFPS pacing, for backends that pace frames
	// themselves.
	NoThrottle bool
}

// FrameStats reports what the most recent frame did.
type FrameStats struct {
	Frame         uint64
	Total         int // nodes visited by the render pass
	Rendered      int // nodes drawn
	Culled        int // nodes skipped as off-screen
	GlyphsEvicted int
	TextEvicted   int
	DeltaTime     float64
	FPS           float64

	CullTime   time.Duration
	RenderTime time.Duration
	PurgeTime  time.Duration
}

type slot struct {
	gen  uint32
	node *Renderable
}

// Renderer owns the scene tree and drives the per-frame pipeline:
// input, cull, render, cache purge, camera update and frame pacing.
// It is not safe for concurrent use.
type Renderer struct {
	ctx    RenderContext
	config RenderConfig

	surface    Surface
	camera     *Camera
	glyphs     *GlyphCache
	text       *TextCache
	fonts      *FontManager
	textures   *TextureManager
	primitives *PrimitiveManager
	ui         *UIManager
	input      InputSource
	logger     *slog.Logger

	slots       []slot
	free        []uint32
	roots       []NodeID
	sortedRoots []NodeID
	rootsSorted bool
	liveCount   int

	// traversing is non-zero while the render pass or input dispatch walks
	// the tree; removals are queued until it drops back to zero.
	traversing int
	pending    []NodeID

	hovered       NodeID
	focused       NodeID
	pressed       NodeID
	windowFocused bool
	mouseInside   bool
	mousePos      Vec2
	listeners     []eventListener
	nextListener  uint32

	screenshots []string

	stats    FrameStats
	lastTick time.Time
	throttle bool
	running  bool
	shutdown bool

	now   func() time.Time
	sleep func(time.Duration)
	exit  func(int)
}

// NewRenderer creates a renderer drawing to s with the given settings.
// The config is validated and copied.
func NewRenderer(s Surface, cfg RenderConfig, opts Options) (*Renderer, error) {
	if s == nil {
		return nil, errors.New("lightning: nil surface")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Renderer{
		config:        cfg,
		surface:       s,
		input:         opts.Input,
		logger:        opts.Logger,
		now:           opts.Now,
		sleep:         opts.Sleep,
		exit:          opts.Exit,
		throttle:      !opts.NoThrottle,
		rootsSorted:   true,
		running:       true,
		windowFocused: true,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.sleep == nil {
		r.sleep = time.Sleep
	}
	if r.exit == nil {
		r.exit = defaultExit
	}

	r.camera = NewCamera(cfg.Resolution())
	r.glyphs = NewGlyphCache(s)
	r.text = NewTextCache(s, r.glyphs)
	r.fonts = NewFontManager(cfg.FontDirectory, r.logger)
	r.textures = newTextureManager(r)
	r.primitives = &PrimitiveManager{r: r}
	r.ui = &UIManager{r: r}

	r.ctx = RenderContext{
		Renderer:   r,
		Surface:    s,
		Camera:     r.camera,
		Glyphs:     r.glyphs,
		Text:       r.text,
		Fonts:      r.fonts,
		Textures:   r.textures,
		Primitives: r.primitives,
		UI:         r.ui,
		Config:     &r.config,
		Logger:     r.logger,
	}
	r.logger.Debug("renderer created",
		slog.String("title", cfg.Title),
		slog.Int("width", cfg.ResolutionX),
		slog.Int("height", cfg.ResolutionY))
	return r, nil
}

// Context returns the context passed to hooks.
func (r *Renderer) Context() *RenderContext { return &r.ctx }

// Config returns the active settings.
func (r *Renderer) Config() RenderConfig { return r.config }

// Camera returns the renderer's camera.
func (r *Renderer) Camera() *Camera { return r.camera }

// Surface returns the drawing backend.
func (r *Renderer) Surface() Surface { return r.surface }

// Glyphs returns the glyph cache.
func (r *Renderer) Glyphs() *GlyphCache { return r.glyphs }

// Text returns the text cache.
func (r *Renderer) Text() *TextCache { return r.text }

// Fonts returns the font manager.
func (r *Renderer) Fonts() *FontManager { return r.fonts }

// Textures returns the texture manager.
func (r *Renderer) Textures() *TextureManager { return r.textures }

// Primitives returns the primitive manager.
func (r *Renderer) Primitives() *PrimitiveManager { return r.primitives }

// UI returns the UI widget manager.
func (r *Renderer) UI() *UIManager { return r.ui }

// Logger returns the renderer's logger.
func (r *Renderer) Logger() *slog.Logger { return r.logger }

// Stats returns the statistics of the most recent frame.
func (r *Renderer) Stats() FrameStats { return r.stats }

// Running reports whether the frame loop should continue.
func (r *Renderer) Running() bool { return r.running && !r.shutdown }

// Quit asks the frame loop to stop after the current frame.
func (r *Renderer) Quit() { r.running = false }

// SetResolution changes the viewport size used for culling and the camera.
func (r *Renderer) SetResolution(width, height int) {
	if width <= 0 || height <= 0 {
		r.warn("set resolution: invalid size", slog.Int("width", width), slog.Int("height", height))
		return
	}
	r.config.ResolutionX = width
	r.config.ResolutionY = height
	r.camera.Viewport = r.config.Resolution()
}

// SetInput replaces the input source.
func (r *Renderer) SetInput(in InputSource) { r.input = in }

// SetThrottle enables or disables MaxFPS pacing.
func (r *Renderer) SetThrottle(on bool) { r.throttle = on }

// --- arena ---

func (r *Renderer) alloc(n *Renderable) NodeID {
	var idx uint32
	if k := len(r.free); k > 0 {
		idx = r.free[k-1]
		r.free = r.free[:k-1]
	} else {
		r.slots = append(r.slots, slot{})
		idx = uint32(len(r.slots) - 1)
	}
	s := &r.slots[idx]
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	s.node = n
	r.liveCount++
	return NodeID{index: idx, gen: s.gen}
}

func (r *Renderer) freeSlot(id NodeID) {
	s := &r.slots[id.index]
	s.node = nil
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	r.free = append(r.free, id.index)
	r.liveCount--
}

// Resolve returns the live node addressed by id, or nil when the ID is
// invalid or stale.
func (r *Renderer) Resolve(id NodeID) *Renderable {
	if !id.Valid() || int(id.index) >= len(r.slots) {
		return nil
	}
	s := r.slots[id.index]
	if s.gen != id.gen {
		return nil
	}
	return s.node
}

// owns reports whether n is a live node of this renderer.
func (r *Renderer) owns(n *Renderable) bool {
	return n != nil && n.id.Valid() && r.Resolve(n.id) == n
}

// Parent returns n's parent, nil for root nodes.
func (r *Renderer) Parent(n *Renderable) *Renderable {
	if n == nil {
		return nil
	}
	return r.Resolve(n.parent)
}

// Children returns n's live children in insertion order. A nil n returns the
// root nodes.
func (r *Renderer) Children(n *Renderable) []*Renderable {
	ids := r.roots
	if n != nil {
		ids = n.children
	}
	out := make([]*Renderable, 0, len(ids))
	for _, id := range ids {
		if c := r.Resolve(id); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// --- tree operations ---

// AddRenderable inserts node under parent, or as a root when parent is nil,
// and runs its OnCreate hook. A parent that is not in the tree is fatal.
func (r *Renderer) AddRenderable(node, parent *Renderable) *Renderable {
	if node == nil {
		r.logError("add renderable: nil node")
		return nil
	}
	if node.destroyed {
		r.logError("add renderable: node already destroyed", slog.String("node", node.Name))
		return nil
	}
	if node.id.Valid() {
		r.logError("add renderable: node already in a tree", slog.String("node", node.Name))
		return node
	}
	var pid NodeID
	if parent != nil {
		if !r.owns(parent) || parent.pendingRemoval {
			r.fatal("add renderable: parent not in tree",
				slog.String("node", node.Name), slog.String("parent", parent.Name))
			return nil
		}
		pid = parent.id
	}

	node.id = r.alloc(node)
	node.parent = pid
	if parent != nil {
		parent.children = append(parent.children, node.id)
		parent.childrenSorted = false
		if r.config.Debug {
			r.debugCheckNode(node)
		}
	} else {
		r.roots = append(r.roots, node.id)
		r.rootsSorted = false
	}
	if node.OnCreate != nil {
		node.OnCreate(&r.ctx, node)
	}
	return node
}

// RemoveRenderable destroys node and its whole subtree, children first.
// During a traversal the removal is deferred until the traversal ends.
func (r *Renderer) RemoveRenderable(node *Renderable) {
	if !r.owns(node) {
		name := ""
		if node != nil {
			name = node.Name
		}
		r.warn("remove renderable: node not in tree", slog.String("node", name))
		return
	}
	if node.destroying {
		return
	}
	if r.traversing > 0 {
		if !node.pendingRemoval {
			node.pendingRemoval = true
			r.pending = append(r.pending, node.id)
		}
		return
	}
	r.destroy(node)
}

// destroy tears down n's subtree post-order.
func (r *Renderer) destroy(n *Renderable) {
	n.destroying = true
	// OnDestroy may attach new children, so loop until empty.
	for len(n.children) > 0 {
		last := n.children[len(n.children)-1]
		c := r.Resolve(last)
		if c == nil {
			n.children = n.children[:len(n.children)-1]
			continue
		}
		r.destroy(c)
	}
	if n.OnDestroy != nil {
		n.OnDestroy(&r.ctx, n)
	}
	r.detach(n)
	r.forget(n.id)
	r.freeSlot(n.id)
	n.release()
	n.destroyed = true
	n.destroying = false
	n.pendingRemoval = false
	n.id = NodeID{}
	n.parent = NodeID{}
}

// detach unlinks n from its parent's child list or the root list.
func (r *Renderer) detach(n *Renderable) {
	if p := r.Resolve(n.parent); p != nil {
		p.children = removeID(p.children, n.id)
		p.childrenSorted = false
		return
	}
	r.roots = removeID(r.roots, n.id)
	r.rootsSorted = false
}

// forget drops input references to id.
func (r *Renderer) forget(id NodeID) {
	if r.hovered == id {
		r.hovered = NodeID{}
	}
	if r.focused == id {
		r.focused = NodeID{}
	}
	if r.pressed == id {
		r.pressed = NodeID{}
	}
}

func removeID(ids []NodeID, id NodeID) []NodeID {
	for i := range ids {
		if ids[i] == id {
			copy(ids[i:], ids[i+1:])
			ids[len(ids)-1] = NodeID{}
			return ids[:len(ids)-1]
		}
	}
	return ids
}

// beginTraversal defers removals until the matching endTraversal.
func (r *Renderer) beginTraversal() { r.traversing++ }

func (r *Renderer) endTraversal() {
	r.traversing--
	if r.traversing == 0 {
		r.flushPending()
	}
}

// flushPending destroys nodes whose removal was requested mid-traversal.
func (r *Renderer) flushPending() {
	for len(r.pending) > 0 {
		batch := r.pending
		r.pending = nil
		for _, id := range batch {
			// A node may already be gone as part of an earlier subtree.
			if n := r.Resolve(id); n != nil {
				r.destroy(n)
			}
		}
	}
}

// GetRenderableByName searches the subtree under parent (the whole tree when
// parent is nil) depth-first in insertion order. When several nodes share the
// name, the last one visited wins.
func (r *Renderer) GetRenderableByName(name string, parent *Renderable) *Renderable {
	ids := r.roots
	if parent != nil {
		if !r.owns(parent) {
			r.warn("get renderable: parent not in tree",
				slog.String("name", name), slog.String("parent", parent.Name))
			return nil
		}
		ids = parent.children
	}
	var found *Renderable
	r.findByName(ids, name, &found)
	return found
}

func (r *Renderer) findByName(ids []NodeID, name string, found **Renderable) {
	for i := 0; i < len(ids); i++ {
		n := r.Resolve(ids[i])
		if n == nil || n.pendingRemoval {
			continue
		}
		if n.Name == name {
			*found = n
		}
		r.findByName(n.children, name, found)
	}
}

// RemoveRenderableByName removes the node GetRenderableByName would return.
// A missing name is fatal.
func (r *Renderer) RemoveRenderableByName(name string) {
	n := r.GetRenderableByName(name, nil)
	if n == nil {
		r.fatal("remove renderable: no node named", slog.String("name", name))
		return
	}
	r.RemoveRenderable(n)
}

// ContainsRenderable reports whether a node with name is in the tree.
func (r *Renderer) ContainsRenderable(name string) bool {
	return r.GetRenderableByName(name, nil) != nil
}

// CountRenderables counts the descendants of parent, or every node in the
// tree when parent is nil.
func (r *Renderer) CountRenderables(parent *Renderable) int {
	if parent == nil {
		return r.countIDs(r.roots)
	}
	if !r.owns(parent) {
		return 0
	}
	return r.countIDs(parent.children)
}

func (r *Renderer) countIDs(ids []NodeID) int {
	count := 0
	for _, id := range ids {
		if n := r.Resolve(id); n != nil && !n.pendingRemoval {
			count += 1 + r.countIDs(n.children)
		}
	}
	return count
}

// Walk visits every live node depth-first in insertion order. Returning false
// from fn skips the node's children.
func (r *Renderer) Walk(fn func(n *Renderable) bool) {
	r.walkIDs(r.roots, fn)
}

func (r *Renderer) walkIDs(ids []NodeID, fn func(n *Renderable) bool) {
	for i := 0; i < len(ids); i++ {
		n := r.Resolve(ids[i])
		if n == nil {
			continue
		}
		if fn(n) {
			r.walkIDs(n.children, fn)
		}
	}
}

// --- ordering ---

// markOrderDirty flags n's sibling list for re-sorting.
func (r *Renderer) markOrderDirty(n *Renderable) {
	if p := r.Resolve(n.parent); p != nil {
		p.childrenSorted = false
		return
	}
	r.rootsSorted = false
}

// zOf resolves a node's effective z against its parent's.
func zOf(n *Renderable, parentZ int) int {
	if n.RelativeZ {
		return parentZ + n.ZIndex + kindZOffset(n.Kind)
	}
	return n.ZIndex
}

// sortByZ insertion-sorts ids by effective z. Stable, so equal z keeps
// insertion order.
func (r *Renderer) sortByZ(dst, ids []NodeID, parentZ int) []NodeID {
	// A walk in progress may still be ranging over dst.
	if r.traversing > 0 {
		dst = nil
	}
	dst = append(dst[:0], ids...)
	key := func(id NodeID) int {
		if n := r.Resolve(id); n != nil {
			return zOf(n, parentZ)
		}
		return 0
	}
	for i := 1; i < len(dst); i++ {
		cur := dst[i]
		kz := key(cur)
		j := i
		for j > 0 && key(dst[j-1]) > kz {
			dst[j] = dst[j-1]
			j--
		}
		dst[j] = cur
	}
	return dst
}

func (r *Renderer) orderedRoots() []NodeID {
	if !r.rootsSorted || len(r.sortedRoots) != len(r.roots) {
		r.sortedRoots = r.sortByZ(r.sortedRoots, r.roots, 0)
		r.rootsSorted = true
	}
	return r.sortedRoots
}

func (r *Renderer) orderedChildren(n *Renderable) []NodeID {
	if !n.childrenSorted || len(n.sortedChildren) != len(n.children) || n.sortedAtZ != n.effectiveZ {
		n.sortedChildren = r.sortByZ(n.sortedChildren, n.children, n.effectiveZ)
		n.childrenSorted = true
		n.sortedAtZ = n.effectiveZ
	}
	return n.sortedChildren
}

// --- frame ---

// Frame runs one iteration of the pipeline: dispatch at most one input
// event, cull, render, purge unused cache entries, update the camera and
// pace to MaxFPS.
func (r *Renderer) Frame() {
	if r.shutdown {
		return
	}
	start := r.now()
	r.ctx.Frame++
	r.stats = FrameStats{
		Frame:     r.ctx.Frame,
		DeltaTime: r.ctx.DeltaTime,
		FPS:       r.stats.FPS,
	}

	r.pollInput()

	t := r.now()
	r.Cull()
	r.stats.CullTime = r.now().Sub(t)

	t = r.now()
	r.RenderAll()
	r.stats.RenderTime = r.now().Sub(t)
	r.flushScreenshots()

	t = r.now()
	r.stats.TextEvicted = r.text.Purge()
	r.stats.GlyphsEvicted = r.glyphs.Purge()
	r.stats.PurgeTime = r.now().Sub(t)

	r.camera.Update(&r.ctx)
	r.endFrame(start)

	if r.config.Debug {
		r.debugLog(r.stats)
	}
}

// endFrame sleeps off the remainder of the frame budget and measures the
// delta time handed to the next frame.
func (r *Renderer) endFrame(start time.Time) {
	if r.throttle && r.config.MaxFPS > 0 {
		budget := time.Second / time.Duration(r.config.MaxFPS)
		if elapsed := r.now().Sub(start); elapsed < budget {
			r.sleep(budget - elapsed)
		}
	}
	now := r.now()
	if !r.lastTick.IsZero() {
		elapsed := now.Sub(r.lastTick).Seconds()
		r.ctx.DeltaTime = elapsed * r.config.TickSpeed
		if elapsed > 0 {
			r.stats.FPS = 1 / elapsed
		}
	}
	r.lastTick = now
}

// Shutdown stops every animation, runs OnShutdown hooks, destroys the tree,
// clears the caches and releases fonts, textures and the surface. Calling it
// again is a no-op.
func (r *Renderer) Shutdown() error {
	if r.shutdown {
		return nil
	}
	r.running = false

	r.Walk(func(n *Renderable) bool {
		if n.CurrentAnimation != nil {
			n.CurrentAnimation.Stop()
		}
		return true
	})
	r.beginTraversal()
	r.Walk(func(n *Renderable) bool {
		if n.OnShutdown != nil {
			n.OnShutdown(&r.ctx, n)
		}
		return true
	})
	r.endTraversal()

	for len(r.roots) > 0 {
		last := r.roots[len(r.roots)-1]
		n := r.Resolve(last)
		if n == nil {
			r.roots = r.roots[:len(r.roots)-1]
			continue
		}
		r.destroy(n)
	}
	r.shutdown = true

	r.text.Clear()
	r.glyphs.Clear()
	r.textures.UnloadAll()
	var errs []error
	if err := r.fonts.UnloadAll(); err != nil {
		errs = append(errs, err)
	}
	if err := r.surface.Release(); err != nil {
		errs = append(errs, fmt.Errorf("lightning: release surface: %w", err))
	}
	r.logger.Debug("renderer shut down", slog.Uint64("frames", r.ctx.Frame))
	return errors.Join(errs...)
}
