package lightning

import "log/slog"

// EventKind identifies a platform input event.
type EventKind uint8

const (
	EventKeyDown EventKind = iota
	EventKeyUp
	EventMouseDown
	EventMouseUp
	EventMouseMove
	EventWindowFocusGained
	EventWindowFocusLost
	EventWindowEnter
	EventWindowLeave
	EventQuit
)

var eventNames = [...]string{
	"key-down", "key-up", "mouse-down", "mouse-up", "mouse-move",
	"window-focus-gained", "window-focus-lost", "window-enter", "window-leave", "quit",
}

// String returns the event kind name.
func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Event is one input event. Position is in screen pixels.
type Event struct {
	Kind      EventKind
	Key       Key
	Rune      rune
	Button    MouseButton
	Position  Vec2
	Modifiers KeyModifiers
}

// InputSource yields pending input events without blocking.
type InputSource interface {
	Poll() (Event, bool)
}

// QueueInput is an InputSource fed programmatically. Backends collect
// platform events into one; tests push synthetic events.
type QueueInput struct {
	queue []Event
}

// NewQueueInput creates an empty queue.
func NewQueueInput() *QueueInput { return &QueueInput{} }

// Push appends events.
func (q *QueueInput) Push(evs ...Event) { q.queue = append(q.queue, evs...) }

// Poll pops the oldest event.
func (q *QueueInput) Poll() (Event, bool) {
	if len(q.queue) == 0 {
		return Event{}, false
	}
	ev := q.queue[0]
	copy(q.queue, q.queue[1:])
	q.queue[len(q.queue)-1] = Event{}
	q.queue = q.queue[:len(q.queue)-1]
	return ev, true
}

// Len returns the number of queued events.
func (q *QueueInput) Len() int { return len(q.queue) }

// PushClick queues a left press and release at pos. Consumes two frames.
func (q *QueueInput) PushClick(pos Vec2) {
	q.Push(
		Event{Kind: EventMouseDown, Button: MouseButtonLeft, Position: pos},
		Event{Kind: EventMouseUp, Button: MouseButtonLeft, Position: pos},
	)
}

// PushKey queues a key press and release.
func (q *QueueInput) PushKey(key Key, r rune) {
	q.Push(
		Event{Kind: EventKeyDown, Key: key, Rune: r},
		Event{Kind: EventKeyUp, Key: key, Rune: r},
	)
}

// PushText queues a press and release for every rune of s.
func (q *QueueInput) PushText(s string) {
	for _, r := range s {
		q.PushKey(KeyRune, r)
	}
}

// EventHandler receives every event the renderer dispatches.
type EventHandler func(ctx *RenderContext, ev Event)

type eventListener struct {
	id uint32
	fn EventHandler
}

// EventListenerHandle removes a renderer-level listener.
type EventListenerHandle struct {
	id uint32
	r  *Renderer
}

// Remove unregisters the listener. No-op when already removed.
func (h EventListenerHandle) Remove() {
	if h.r == nil {
		return
	}
	ls := h.r.listeners
	for i := range ls {
		if ls[i].id == h.id {
			h.r.listeners = append(ls[:i:i], ls[i+1:]...)
			return
		}
	}
}

func (r *Renderer) hasListener(id uint32) bool {
	for _, l := range r.listeners {
		if l.id == id {
			return true
		}
	}
	return false
}

// OnEvent registers fn for every dispatched event, before per-node delivery.
func (r *Renderer) OnEvent(fn EventHandler) EventListenerHandle {
	r.nextListener++
	r.listeners = append(r.listeners, eventListener{id: r.nextListener, fn: fn})
	return EventListenerHandle{id: r.nextListener, r: r}
}

// Hovered returns the node under the mouse, or nil.
func (r *Renderer) Hovered() *Renderable { return r.Resolve(r.hovered) }

// Focused returns the focused node, or nil.
func (r *Renderer) Focused() *Renderable { return r.Resolve(r.focused) }

// MousePosition returns the last known mouse position in screen pixels.
func (r *Renderer) MousePosition() Vec2 { return r.mousePos }

// WindowFocused reports whether the window has input focus.
func (r *Renderer) WindowFocused() bool { return r.windowFocused }

// pollInput dispatches at most one pending event.
func (r *Renderer) pollInput() {
	if r.input == nil {
		return
	}
	ev, ok := r.input.Poll()
	if !ok {
		return
	}
	r.Dispatch(ev)
}

// Dispatch routes ev to renderer listeners and then to the nodes it
// concerns. Removals requested by handlers take effect after dispatch.
func (r *Renderer) Dispatch(ev Event) {
	if r.shutdown {
		return
	}
	r.beginTraversal()
	defer r.endTraversal()

	for _, l := range r.listeners {
		if r.hasListener(l.id) {
			l.fn(&r.ctx, ev)
		}
	}

	switch ev.Kind {
	case EventMouseMove:
		r.mousePos = ev.Position
		hit := r.HitTest(ev.Position)
		r.setHovered(hit, ev)
		if hit != nil {
			hit.emit(&r.ctx, InputMouseMove, ev)
		}
		if p := r.Resolve(r.pressed); p != nil && p != hit {
			p.emit(&r.ctx, InputMouseMove, ev)
		}

	case EventMouseDown:
		r.mousePos = ev.Position
		hit := r.HitTest(ev.Position)
		r.setHovered(hit, ev)
		r.setFocus(hit, ev)
		if hit != nil {
			r.pressed = hit.id
			hit.emit(&r.ctx, InputMousePressed, ev)
		}

	case EventMouseUp:
		r.mousePos = ev.Position
		target := r.Resolve(r.pressed)
		r.pressed = NodeID{}
		if target == nil {
			target = r.HitTest(ev.Position)
		}
		if target != nil {
			target.emit(&r.ctx, InputMouseReleased, ev)
		}

	case EventKeyDown, EventKeyUp:
		kind := InputKeyPressed
		if ev.Kind == EventKeyUp {
			kind = InputKeyReleased
		}
		r.dispatchKey(kind, ev)

	case EventWindowFocusGained:
		r.windowFocused = true
	case EventWindowFocusLost:
		r.windowFocused = false
		r.setHovered(nil, ev)
		r.pressed = NodeID{}
	case EventWindowEnter:
		r.mouseInside = true
	case EventWindowLeave:
		r.mouseInside = false
		r.setHovered(nil, ev)

	case EventQuit:
		r.logger.Debug("quit requested", slog.Uint64("frame", r.ctx.Frame))
		r.running = false
	}
}

// dispatchKey delivers a key event to the focused node and to every node
// that receives keys while unfocused.
func (r *Renderer) dispatchKey(kind InputKind, ev Event) {
	focused := r.Resolve(r.focused)
	if focused != nil {
		focused.emit(&r.ctx, kind, ev)
	}
	var extra []*Renderable
	r.Walk(func(n *Renderable) bool {
		if n != focused && n.CanReceiveEventsWhileUnfocused && !n.pendingRemoval {
			extra = append(extra, n)
		}
		return true
	})
	for _, n := range extra {
		n.emit(&r.ctx, kind, ev)
	}
}

// setHovered moves the hover to n, emitting leave and enter.
func (r *Renderer) setHovered(n *Renderable, ev Event) {
	prev := r.Resolve(r.hovered)
	if prev == n {
		return
	}
	r.hovered = NodeID{}
	if n != nil {
		r.hovered = n.id
	}
	if prev != nil {
		prev.emit(&r.ctx, InputMouseLeave, ev)
	}
	if n != nil {
		n.emit(&r.ctx, InputMouseEnter, ev)
	}
}

// setFocus moves keyboard focus to n. A nil n clears focus.
func (r *Renderer) setFocus(n *Renderable, ev Event) {
	prev := r.Resolve(r.focused)
	if prev == n {
		return
	}
	r.focused = NodeID{}
	if prev != nil {
		prev.Focused = false
		prev.emit(&r.ctx, InputFocusLost, ev)
	}
	if n != nil {
		r.focused = n.id
		n.Focused = true
		n.emit(&r.ctx, InputFocusGained, ev)
	}
}

// Focus gives n keyboard focus. A nil n clears focus.
func (r *Renderer) Focus(n *Renderable) {
	if n != nil && !r.owns(n) {
		r.warn("focus: node not in tree", slog.String("node", n.Name))
		return
	}
	r.beginTraversal()
	r.setFocus(n, Event{})
	r.endTraversal()
}

// HitTest returns the topmost drawn node under the screen point p that has
// input listeners. Nodes without listeners do not intercept input.
func (r *Renderer) HitTest(p Vec2) *Renderable {
	var hit *Renderable
	roots := r.orderedRoots()
	for i := 0; i < len(roots); i++ {
		r.hitNode(roots[i], p, &hit)
	}
	return hit
}

// hitNode walks in render order so the last match is the topmost.
func (r *Renderer) hitNode(id NodeID, p Vec2, hit **Renderable) {
	n := r.Resolve(id)
	if n == nil || n.pendingRemoval {
		return
	}
	if n.IsOnScreen && !n.IsNotRendering && len(n.listeners) > 0 && containsPoint(n, p) {
		*hit = n
	}
	children := r.orderedChildren(n)
	for i := 0; i < len(children); i++ {
		r.hitNode(children[i], p, hit)
	}
}

// containsPoint tests p against n's drawn shape in screen space.
func containsPoint(n *Renderable, p Vec2) bool {
	switch n.Kind {
	case KindTriangle, KindPolygon:
		if len(n.Points) >= 3 {
			return convexContains(n.Points, p.Sub(n.RenderPosition))
		}
	case KindEllipse:
		rx, ry := n.Size.X/2, n.Size.Y/2
		if rx <= 0 || ry <= 0 {
			return false
		}
		dx := (p.X - n.RenderPosition.X - rx) / rx
		dy := (p.Y - n.RenderPosition.Y - ry) / ry
		return dx*dx+dy*dy <= 1
	}
	if n.Size.X <= 0 || n.Size.Y <= 0 {
		return false
	}
	return n.RenderBounds().Contains(p.X, p.Y)
}

// convexContains reports whether p lies inside the convex polygon pts, in
// either winding order, using a cross-product sign test.
func convexContains(pts []Vec2, p Vec2) bool {
	var positive, negative bool
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
		if cross > 0 {
			positive = true
		} else if cross < 0 {
			negative = true
		}
		if positive && negative {
			return false
		}
	}
	return true
}
