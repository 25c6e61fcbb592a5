package term

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lightning2d/lightning"
)

func kinds(evs []lightning.Event) []lightning.EventKind {
	out := make([]lightning.EventKind, len(evs))
	for i, ev := range evs {
		out[i] = ev.Kind
	}
	return out
}

func TestTranslateCtrlCQuits(t *testing.T) {
	in := &Input{}
	evs := in.Translate(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl))
	if len(evs) != 1 || evs[0].Kind != lightning.EventQuit {
		t.Errorf("Ctrl+C = %v, want quit", kinds(evs))
	}
}

func TestTranslateRuneSynthesizesRelease(t *testing.T) {
	in := &Input{}
	evs := in.Translate(tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone))
	if len(evs) != 2 || evs[0].Kind != lightning.EventKeyDown || evs[1].Kind != lightning.EventKeyUp {
		t.Fatalf("rune = %v, want down and up", kinds(evs))
	}
	if evs[0].Key != lightning.KeyRune || evs[0].Rune != 'a' {
		t.Errorf("key = %v %q, want rune 'a'", evs[0].Key, evs[0].Rune)
	}

	evs = in.Translate(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone))
	if evs[0].Key != lightning.KeySpace {
		t.Errorf("space key = %v, want KeySpace", evs[0].Key)
	}
	evs = in.Translate(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModShift))
	if evs[0].Key != lightning.KeyEnter || evs[0].Modifiers&lightning.ModShift == 0 {
		t.Errorf("enter = %+v, want KeyEnter with shift", evs[0])
	}
}

func TestTranslateUnknownKeyDropped(t *testing.T) {
	in := &Input{}
	if evs := in.Translate(tcell.NewEventKey(tcell.KeyF12, 0, tcell.ModNone)); len(evs) != 0 {
		t.Errorf("F12 = %v, want nothing", kinds(evs))
	}
}

func TestTranslateMouseButtons(t *testing.T) {
	in := &Input{}
	evs := in.Translate(tcell.NewEventMouse(3, 4, tcell.Button1, tcell.ModNone))
	if len(evs) != 2 || evs[0].Kind != lightning.EventMouseMove || evs[1].Kind != lightning.EventMouseDown {
		t.Fatalf("press = %v, want move and down", kinds(evs))
	}
	if evs[1].Position != (lightning.Vec2{X: 3, Y: 8}) || evs[1].Button != lightning.MouseButtonLeft {
		t.Errorf("press = %+v, want left at {3 8}", evs[1])
	}

	evs = in.Translate(tcell.NewEventMouse(5, 4, tcell.Button1, tcell.ModNone))
	if len(evs) != 1 || evs[0].Kind != lightning.EventMouseMove {
		t.Errorf("drag = %v, want move only", kinds(evs))
	}

	evs = in.Translate(tcell.NewEventMouse(5, 4, tcell.ButtonNone, tcell.ModNone))
	if len(evs) != 2 || evs[1].Kind != lightning.EventMouseUp {
		t.Errorf("release = %v, want move and up", kinds(evs))
	}
}

func TestTranslateFocusAndResize(t *testing.T) {
	in := &Input{}
	if evs := in.Translate(tcell.NewEventFocus(false)); len(evs) != 1 || evs[0].Kind != lightning.EventWindowFocusLost {
		t.Errorf("focus lost = %v", kinds(evs))
	}
	if evs := in.Translate(tcell.NewEventFocus(true)); len(evs) != 1 || evs[0].Kind != lightning.EventWindowFocusGained {
		t.Errorf("focus gained = %v", kinds(evs))
	}

	var cols, rows int
	in.OnResize = func(c, r int) { cols, rows = c, r }
	if evs := in.Translate(tcell.NewEventResize(30, 10)); len(evs) != 0 {
		t.Errorf("resize = %v, want nothing", kinds(evs))
	}
	if cols != 30 || rows != 10 {
		t.Errorf("OnResize(%d, %d), want (30, 10)", cols, rows)
	}
}

func TestInputPollDrainsChannel(t *testing.T) {
	in := &Input{events: make(chan tcell.Event, 4)}
	in.events <- tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)

	var got []lightning.Event
	for i := 0; i < 4; i++ {
		if ev, ok := in.Poll(); ok {
			got = append(got, ev)
		}
	}
	if len(got) != 2 || got[0].Rune != 'x' || got[1].Kind != lightning.EventKeyUp {
		t.Errorf("polled = %v, want press and release of x", kinds(got))
	}

	close(in.events)
	if _, ok := in.Poll(); ok {
		t.Error("closed input produced an event")
	}
}

func TestInputCloseStopsBlockedPump(t *testing.T) {
	in := &Input{events: make(chan tcell.Event, 2), done: make(chan struct{})}
	key := tcell.NewEventKey(tcell.KeyRune, 'k', tcell.ModNone)
	exited := make(chan struct{})
	go func() {
		in.pump(func() tcell.Event { return key })
		close(exited)
	}()

	deadline := time.After(time.Second)
	for len(in.events) < cap(in.events) {
		select {
		case <-deadline:
			t.Fatal("buffer never filled")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	in.Close()
	in.Close()
	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("pump still blocked after Close")
	}
}

func TestInputPumpClosesOnNilEvent(t *testing.T) {
	in := &Input{events: make(chan tcell.Event, 2), done: make(chan struct{})}
	in.pump(func() tcell.Event { return nil })
	if _, ok := <-in.events; ok {
		t.Error("events left open after the screen finished")
	}
	in.Close()
}

func TestReleaseClosesAttachedInput(t *testing.T) {
	screen := newTestScreen(t, 10, 5)
	r, s, err := NewRenderer(screen, lightning.DefaultRenderConfig(), lightning.Options{NoThrottle: true})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	in := s.input
	if in == nil {
		t.Fatal("input not attached to surface")
	}
	if err := r.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	select {
	case <-in.done:
	default:
		t.Error("input not closed by Release")
	}
}
