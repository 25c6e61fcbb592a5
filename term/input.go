package term

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/lightning2d/lightning"
)

// eventBuffer is the capacity of the channel between the tcell poller and
// the frame loop.
const eventBuffer = 100

// Input reads tcell events on a background goroutine and yields them as
// lightning events without blocking the frame loop. Terminals report no key
// releases, so every key press is followed by a synthesized release.
type Input struct {
	screen  tcell.Screen
	events  chan tcell.Event
	done    chan struct{}
	stop    sync.Once
	pending lightning.QueueInput
	buttons tcell.ButtonMask

	// OnResize runs on the frame goroutine when the terminal changes size.
	OnResize func(cols, rows int)
}

// NewInput enables mouse and focus reporting on screen and starts polling.
// The poller exits on Close or when the screen is finalized.
func NewInput(screen tcell.Screen) *Input {
	in := &Input{
		screen: screen,
		events: make(chan tcell.Event, eventBuffer),
		done:   make(chan struct{}),
	}
	screen.EnableMouse()
	screen.EnableFocus()
	go in.pump(screen.PollEvent)
	return in
}

// pump forwards events from poll until poll returns nil or the input is
// closed. A full buffer never outlives Close.
func (in *Input) pump(poll func() tcell.Event) {
	for {
		ev := poll()
		if ev == nil {
			close(in.events)
			return
		}
		select {
		case in.events <- ev:
		case <-in.done:
			return
		}
	}
}

// Close stops the poller. Safe to call repeatedly.
func (in *Input) Close() {
	in.stop.Do(func() {
		if in.done != nil {
			close(in.done)
		}
	})
}

// Poll returns the next pending event, if any.
func (in *Input) Poll() (lightning.Event, bool) {
	for {
		if ev, ok := in.pending.Poll(); ok {
			return ev, true
		}
		select {
		case tev, ok := <-in.events:
			if !ok {
				return lightning.Event{}, false
			}
			in.pending.Push(in.Translate(tev)...)
		default:
			return lightning.Event{}, false
		}
	}
}

// Translate converts one tcell event. Cell coordinates become pixel
// coordinates, two pixels per row.
func (in *Input) Translate(ev tcell.Event) []lightning.Event {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		mods := modifiers(ev.Modifiers())
		if ev.Key() == tcell.KeyCtrlC {
			return []lightning.Event{{Kind: lightning.EventQuit}}
		}
		key, r := translateKey(ev)
		if key == lightning.KeyUnknown {
			return nil
		}
		return []lightning.Event{
			{Kind: lightning.EventKeyDown, Key: key, Rune: r, Modifiers: mods},
			{Kind: lightning.EventKeyUp, Key: key, Rune: r, Modifiers: mods},
		}

	case *tcell.EventMouse:
		x, y := ev.Position()
		pos := lightning.Vec2{X: float64(x), Y: float64(2 * y)}
		mods := modifiers(ev.Modifiers())
		out := []lightning.Event{{Kind: lightning.EventMouseMove, Position: pos, Modifiers: mods}}
		buttons := ev.Buttons()
		for _, m := range mouseButtons {
			was, now := in.buttons&m.mask != 0, buttons&m.mask != 0
			if was == now {
				continue
			}
			kind := lightning.EventMouseUp
			if now {
				kind = lightning.EventMouseDown
			}
			out = append(out, lightning.Event{Kind: kind, Button: m.button, Position: pos, Modifiers: mods})
		}
		in.buttons = buttons
		return out

	case *tcell.EventFocus:
		if ev.Focused {
			return []lightning.Event{{Kind: lightning.EventWindowFocusGained}}
		}
		return []lightning.Event{{Kind: lightning.EventWindowFocusLost}}

	case *tcell.EventResize:
		cols, rows := ev.Size()
		if in.OnResize != nil {
			in.OnResize(cols, rows)
		}
	}
	return nil
}

var mouseButtons = [...]struct {
	mask   tcell.ButtonMask
	button lightning.MouseButton
}{
	{tcell.Button1, lightning.MouseButtonLeft},
	{tcell.Button2, lightning.MouseButtonRight},
	{tcell.Button3, lightning.MouseButtonMiddle},
}

var tcellKeys = map[tcell.Key]lightning.Key{
	tcell.KeyEnter:      lightning.KeyEnter,
	tcell.KeyEscape:     lightning.KeyEscape,
	tcell.KeyBackspace:  lightning.KeyBackspace,
	tcell.KeyBackspace2: lightning.KeyBackspace,
	tcell.KeyDelete:     lightning.KeyDelete,
	tcell.KeyTab:        lightning.KeyTab,
	tcell.KeyLeft:       lightning.KeyLeft,
	tcell.KeyRight:      lightning.KeyRight,
	tcell.KeyUp:         lightning.KeyUp,
	tcell.KeyDown:       lightning.KeyDown,
	tcell.KeyHome:       lightning.KeyHome,
	tcell.KeyEnd:        lightning.KeyEnd,
}

func translateKey(ev *tcell.EventKey) (lightning.Key, rune) {
	if ev.Key() == tcell.KeyRune {
		if ev.Rune() == ' ' {
			return lightning.KeySpace, ' '
		}
		return lightning.KeyRune, ev.Rune()
	}
	return tcellKeys[ev.Key()], 0
}

func modifiers(m tcell.ModMask) lightning.KeyModifiers {
	var out lightning.KeyModifiers
	if m&tcell.ModShift != 0 {
		out |= lightning.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		out |= lightning.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		out |= lightning.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		out |= lightning.ModMeta
	}
	return out
}
