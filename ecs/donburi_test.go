package ecs

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"

	"github.com/lightning2d/lightning"
	"github.com/lightning2d/lightning/term"
)

func newRenderer(t *testing.T) *lightning.Renderer {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	screen.SetSize(40, 20)
	r, _, err := term.NewRenderer(screen, lightning.DefaultRenderConfig(), lightning.Options{
		Input:      lightning.NewQueueInput(),
		NoThrottle: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { r.Shutdown() })
	return r
}

func TestBridgePublishesTargets(t *testing.T) {
	r := newRenderer(t)
	world := donburi.NewWorld()
	b := NewBridge(r, world)
	defer b.Close()

	box := lightning.NewRectangle("box", lightning.Vec2{X: 2, Y: 2}, lightning.Vec2{X: 10, Y: 10}, lightning.ColorWhite, true)
	box.On(lightning.InputMousePressed, func(*lightning.RenderContext, *lightning.Renderable, lightning.Event) {})
	r.AddRenderable(box, nil)
	r.Cull()

	var received []InputEvent
	InputEventType.Subscribe(world, func(_ donburi.World, e InputEvent) {
		received = append(received, e)
	})

	r.Dispatch(lightning.Event{Kind: lightning.EventMouseDown, Position: lightning.Vec2{X: 5, Y: 5}})
	r.Dispatch(lightning.Event{Kind: lightning.EventMouseMove, Position: lightning.Vec2{X: 30, Y: 30}})
	r.Dispatch(lightning.Event{Kind: lightning.EventKeyDown, Key: lightning.KeyEnter})

	if len(received) != 0 {
		t.Fatal("events delivered before processing")
	}
	InputEventType.ProcessEvents(world)

	if len(received) != 3 {
		t.Fatalf("received %d events, want 3", len(received))
	}
	if received[0].Target != box.ID() || received[0].TargetName != "box" {
		t.Errorf("press target = %+v, want box", received[0])
	}
	if received[1].Target != (lightning.NodeID{}) {
		t.Errorf("move over nothing targeted %v", received[1].TargetName)
	}
	// the press focused the box
	if received[2].Kind != lightning.EventKeyDown || received[2].Target != box.ID() {
		t.Errorf("key event = %+v, want focused box", received[2])
	}
}

func TestBridgeClose(t *testing.T) {
	r := newRenderer(t)
	world := donburi.NewWorld()
	b := NewBridge(r, world)

	count := 0
	InputEventType.Subscribe(world, func(donburi.World, InputEvent) { count++ })

	r.Dispatch(lightning.Event{Kind: lightning.EventWindowFocusLost})
	b.Close()
	r.Dispatch(lightning.Event{Kind: lightning.EventWindowFocusGained})
	events.ProcessAllEvents(world)

	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}
