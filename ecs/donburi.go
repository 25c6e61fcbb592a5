package ecs

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"

	"github.com/lightning2d/lightning"
)

// InputEvent is a dispatched renderer event with its target node.
type InputEvent struct {
	lightning.Event
	// Target is the node under the pointer for mouse events and the focused
	// node for key events. Zero when no node is concerned.
	Target lightning.NodeID
	// TargetName is Target's name at dispatch time.
	TargetName string
	Frame      uint64
}

// InputEventType is the Donburi event type carrying InputEvent.
var InputEventType = events.NewEventType[InputEvent]()

// Bridge publishes a renderer's events into a Donburi world.
type Bridge struct {
	world  donburi.World
	handle lightning.EventListenerHandle
}

// NewBridge starts forwarding r's events to world. Events are queued; call
// InputEventType.ProcessEvents (or events.ProcessAllEvents) from a system.
func NewBridge(r *lightning.Renderer, world donburi.World) *Bridge {
	b := &Bridge{world: world}
	b.handle = r.OnEvent(func(ctx *lightning.RenderContext, ev lightning.Event) {
		out := InputEvent{Event: ev, Frame: ctx.Frame}
		if n := target(r, ev); n != nil {
			out.Target = n.ID()
			out.TargetName = n.Name
		}
		InputEventType.Publish(b.world, out)
	})
	return b
}

// Close stops forwarding.
func (b *Bridge) Close() { b.handle.Remove() }

func target(r *lightning.Renderer, ev lightning.Event) *lightning.Renderable {
	switch ev.Kind {
	case lightning.EventMouseDown, lightning.EventMouseUp, lightning.EventMouseMove:
		return r.HitTest(ev.Position)
	case lightning.EventKeyDown, lightning.EventKeyUp:
		return r.Focused()
	}
	return nil
}
