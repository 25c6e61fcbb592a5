package lightning

// NodeID addresses a renderable in its renderer's arena. The zero value is
// invalid. A destroyed node's slot is reused with a new generation, so stale
// IDs never resolve to the new occupant.
type NodeID struct {
	index uint32
	gen   uint32
}

// Valid reports whether id was ever assigned.
func (id NodeID) Valid() bool { return id.gen != 0 }

// Hook is a lifecycle callback.
type Hook func(ctx *RenderContext, node *Renderable)

// InputKind identifies a per-node input callback.
type InputKind uint8

const (
	InputMousePressed InputKind = iota
	InputMouseReleased
	InputMouseMove
	InputMouseEnter
	InputMouseLeave
	InputFocusGained
	InputFocusLost
	InputKeyPressed
	InputKeyReleased
)

// InputHandler receives a dispatched event.
type InputHandler func(ctx *RenderContext, node *Renderable, ev Event)

type inputListener struct {
	id   uint32
	kind InputKind
	fn   InputHandler
}

// ListenerHandle removes a registered input listener.
type ListenerHandle struct {
	id   uint32
	node *Renderable
}

// Remove unregisters the listener. No-op when already removed.
func (h ListenerHandle) Remove() {
	if h.node == nil {
		return
	}
	ls := h.node.listeners
	for i := range ls {
		if ls[i].id == h.id {
			// Fresh backing array: emit may be ranging over the old one.
			h.node.listeners = append(ls[:i:i], ls[i+1:]...)
			return
		}
	}
}

func (n *Renderable) hasListener(id uint32) bool {
	for _, l := range n.listeners {
		if l.id == id {
			return true
		}
	}
	return false
}

// TextBlock holds the content and styling of a text renderable.
type TextBlock struct {
	Content string
	Font    *Font
	Align   TextAlign
	TextOptions
}

// TextAlign controls horizontal alignment of lines within a text block.
type TextAlign uint8

const (
	TextAlignLeft TextAlign = iota
	TextAlignCenter
	TextAlignRight
)

// Renderable is a node in the scene tree. A single flat struct serves every
// kind; Kind selects the drawing behavior.
type Renderable struct {
	Name string
	Kind Kind

	// Position is the world-space top-left. RenderPosition is the
	// camera-relative position computed by the cull pass.
	Position       Vec2
	Size           Vec2
	RenderPosition Vec2

	// ZIndex orders siblings. With RelativeZ it is an offset from the
	// parent's effective z.
	ZIndex    int
	RelativeZ bool

	SnapToScreen                   bool
	IsOnScreen                     bool
	IsNotRendering                 bool
	NotCullable                    bool
	Focused                        bool
	CanReceiveEventsWhileUnfocused bool

	// Shape fields
	Color        Color
	BorderColor  Color
	BorderSize   Vec2
	Filled       bool
	Thickness    float64
	Antialias    bool
	CornerRadius float64
	Points       []Vec2 // local-space vertices (line, triangle, polygon)

	Text    *TextBlock // KindText
	Texture *Texture   // KindSprite
	// OwnsTexture releases Texture when the node is destroyed.
	OwnsTexture bool

	CurrentAnimation Animation
	UserData         any

	OnCreate   Hook
	OnUpdate   Hook
	OnRender   Hook
	OnDestroy  Hook
	OnShutdown Hook

	listeners  []inputListener
	nextListen uint32

	id             NodeID
	parent         NodeID
	children       []NodeID
	sortedChildren []NodeID
	childrenSorted bool
	sortedAtZ      int
	effectiveZ     int
	pendingRemoval bool
	destroying     bool
	destroyed      bool
}

// NewRenderable creates a node of the given kind with default flags.
func NewRenderable(name string, kind Kind) *Renderable {
	return &Renderable{
		Name:           name,
		Kind:           kind,
		Color:          ColorWhite,
		Filled:         true,
		Thickness:      1,
		childrenSorted: true,
	}
}

// NewContainer creates a group node with no visual output.
func NewContainer(name string) *Renderable {
	return NewRenderable(name, KindContainer)
}

// NewCustom creates a node drawn only by its OnRender hook.
func NewCustom(name string, size Vec2, render Hook) *Renderable {
	n := NewRenderable(name, KindCustom)
	n.Size = size
	n.OnRender = render
	return n
}

// ID returns the node's arena handle, invalid before AddRenderable and after
// destruction.
func (n *Renderable) ID() NodeID { return n.id }

// Destroyed reports whether the node has been removed from its renderer.
func (n *Renderable) Destroyed() bool { return n.destroyed }

// NumChildren returns the number of direct children.
func (n *Renderable) NumChildren() int { return len(n.children) }

// Bounds returns the node's world-space box.
func (n *Renderable) Bounds() Rect { return RectFrom(n.Position, n.Size) }

// RenderBounds returns the node's camera-relative box from the last cull.
func (n *Renderable) RenderBounds() Rect { return RectFrom(n.RenderPosition, n.Size) }

// EffectiveZ returns the z-index resolved against the parent chain during the
// last render.
func (n *Renderable) EffectiveZ() int { return n.effectiveZ }

// SetZIndex changes the z-index and marks the sibling order for rebuild.
func (n *Renderable) SetZIndex(ctx *RenderContext, z int) {
	if n.ZIndex == z {
		return
	}
	n.ZIndex = z
	if ctx == nil || ctx.Renderer == nil {
		return
	}
	ctx.Renderer.markOrderDirty(n)
}

// On registers fn for events of kind and returns a handle to remove it.
func (n *Renderable) On(kind InputKind, fn InputHandler) ListenerHandle {
	n.nextListen++
	n.listeners = append(n.listeners, inputListener{id: n.nextListen, kind: kind, fn: fn})
	return ListenerHandle{id: n.nextListen, node: n}
}

// HasListeners reports whether any listener of kind is registered.
func (n *Renderable) HasListeners(kind InputKind) bool {
	for i := range n.listeners {
		if n.listeners[i].kind == kind {
			return true
		}
	}
	return false
}

// emit invokes every listener of kind. Listeners added during emission run
// from the next event on; ones removed during it are skipped.
func (n *Renderable) emit(ctx *RenderContext, kind InputKind, ev Event) {
	for _, l := range n.listeners {
		if n.destroyed {
			return
		}
		if l.kind == kind && n.hasListener(l.id) {
			l.fn(ctx, n, ev)
		}
	}
}

// release drops everything the node owns. Called once on destroy.
func (n *Renderable) release() {
	if n.CurrentAnimation != nil {
		n.CurrentAnimation.Stop()
		n.CurrentAnimation = nil
	}
	if n.OwnsTexture {
		n.Texture.Destroy()
	}
	n.Texture = nil
	n.Text = nil
	n.listeners = nil
	n.children = nil
	n.sortedChildren = nil
	n.UserData = nil
	n.OnCreate = nil
	n.OnUpdate = nil
	n.OnRender = nil
	n.OnDestroy = nil
	n.OnShutdown = nil
}
