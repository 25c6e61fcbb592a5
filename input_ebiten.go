package lightning

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// EbitenInput polls Ebitengine's input state once per tick and turns changes
// into events. Printable characters arrive as KeyRune events.
type EbitenInput struct {
	queue QueueInput

	started bool
	focused bool
	inside  bool
	cursor  Vec2
	buttons [3]bool

	keys  []ebiten.Key
	runes []rune
}

// NewEbitenInput creates an input source for the running game.
func NewEbitenInput() *EbitenInput { return &EbitenInput{} }

var ebitenButtons = [3]ebiten.MouseButton{
	ebiten.MouseButtonLeft,
	ebiten.MouseButtonRight,
	ebiten.MouseButtonMiddle,
}

var ebitenKeys = map[ebiten.Key]Key{
	ebiten.KeyEnter:       KeyEnter,
	ebiten.KeyNumpadEnter: KeyEnter,
	ebiten.KeyEscape:      KeyEscape,
	ebiten.KeyBackspace:   KeyBackspace,
	ebiten.KeyDelete:      KeyDelete,
	ebiten.KeyTab:         KeyTab,
	ebiten.KeyArrowLeft:   KeyLeft,
	ebiten.KeyArrowRight:  KeyRight,
	ebiten.KeyArrowUp:     KeyUp,
	ebiten.KeyArrowDown:   KeyDown,
	ebiten.KeyHome:        KeyHome,
	ebiten.KeyEnd:         KeyEnd,
}

// Collect queues the events since the previous call. width and height are
// the logical screen size used for enter/leave detection.
func (in *EbitenInput) Collect(width, height int) {
	if ebiten.IsWindowBeingClosed() {
		in.queue.Push(Event{Kind: EventQuit})
	}
	mods := ebitenModifiers()

	focused := ebiten.IsFocused()
	if !in.started || focused != in.focused {
		kind := EventWindowFocusLost
		if focused {
			kind = EventWindowFocusGained
		}
		in.queue.Push(Event{Kind: kind})
		in.focused = focused
	}

	x, y := ebiten.CursorPosition()
	pos := Vec2{float64(x), float64(y)}
	inside := x >= 0 && y >= 0 && x < width && y < height
	if inside != in.inside {
		kind := EventWindowLeave
		if inside {
			kind = EventWindowEnter
		}
		in.queue.Push(Event{Kind: kind, Position: pos})
		in.inside = inside
	}
	if !in.started || pos != in.cursor {
		in.queue.Push(Event{Kind: EventMouseMove, Position: pos, Modifiers: mods})
		in.cursor = pos
	}
	for i, b := range ebitenButtons {
		down := ebiten.IsMouseButtonPressed(b)
		if down == in.buttons[i] {
			continue
		}
		kind := EventMouseUp
		if down {
			kind = EventMouseDown
		}
		in.queue.Push(Event{Kind: kind, Button: MouseButton(i), Position: pos, Modifiers: mods})
		in.buttons[i] = down
	}

	in.keys = inpututil.AppendJustPressedKeys(in.keys[:0])
	for _, k := range in.keys {
		if key, ok := ebitenKeys[k]; ok {
			in.queue.Push(Event{Kind: EventKeyDown, Key: key, Modifiers: mods})
		}
	}
	in.runes = ebiten.AppendInputChars(in.runes[:0])
	for _, r := range in.runes {
		key := KeyRune
		if r == ' ' {
			key = KeySpace
		}
		in.queue.Push(Event{Kind: EventKeyDown, Key: key, Rune: r, Modifiers: mods})
	}
	in.keys = inpututil.AppendJustReleasedKeys(in.keys[:0])
	for _, k := range in.keys {
		if key, ok := ebitenKeys[k]; ok {
			in.queue.Push(Event{Kind: EventKeyUp, Key: key, Modifiers: mods})
		}
	}
	in.started = true
}

// Poll pops the oldest collected event.
func (in *EbitenInput) Poll() (Event, bool) { return in.queue.Poll() }

func ebitenModifiers() KeyModifiers {
	var m KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		m |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		m |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		m |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		m |= ModMeta
	}
	return m
}
