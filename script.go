package lightning

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// scriptStep is a single action in an input script.
type scriptStep struct {
	Action string  `yaml:"action"`
	X      float64 `yaml:"x,omitempty"`
	Y      float64 `yaml:"y,omitempty"`
	ToX    float64 `yaml:"toX,omitempty"`
	ToY    float64 `yaml:"toY,omitempty"`
	Key    string  `yaml:"key,omitempty"`
	Label  string  `yaml:"label,omitempty"`
	Text   string  `yaml:"text,omitempty"`
	Frames int     `yaml:"frames,omitempty"`
}

type scriptFile struct {
	Steps []scriptStep `yaml:"steps"`
}

var scriptKeys = map[string]Key{
	"enter":     KeyEnter,
	"escape":    KeyEscape,
	"backspace": KeyBackspace,
	"delete":    KeyDelete,
	"tab":       KeyTab,
	"space":     KeySpace,
	"left":      KeyLeft,
	"right":     KeyRight,
	"up":        KeyUp,
	"down":      KeyDown,
	"home":      KeyHome,
	"end":       KeyEnd,
}

// InputScript replays a scripted input sequence, one event per frame, for
// automated runs and demos. Scripts are YAML or JSON:
//
//	steps:
//	  - {action: click, x: 100, y: 40}
//	  - {action: wait, frames: 3}
//	  - {action: text, text: "hello"}
//	  - {action: key, key: enter}
//	  - {action: screenshot, label: after-enter}
//	  - {action: quit}
type InputScript struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	pending   QueueInput
	done      bool
	renderer  *Renderer
}

// LoadInputScript parses a script.
func LoadInputScript(data []byte) (*InputScript, error) {
	var f scriptFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("lightning: parse input script: %w", err)
	}
	if len(f.Steps) == 0 {
		return nil, errors.New("lightning: parse input script: no steps")
	}
	for i, st := range f.Steps {
		switch st.Action {
		case "click", "press", "release", "move", "drag", "text", "wait", "quit", "screenshot":
		case "key":
			if _, ok := scriptKeys[st.Key]; !ok && len([]rune(st.Key)) != 1 {
				return nil, fmt.Errorf("lightning: input script step %d: unknown key %q", i, st.Key)
			}
		default:
			return nil, fmt.Errorf("lightning: input script step %d: unknown action %q", i, st.Action)
		}
	}
	return &InputScript{steps: f.Steps}, nil
}

// Attach makes the script r's input source. Screenshot steps need a
// renderer to capture from.
func (s *InputScript) Attach(r *Renderer) {
	s.renderer = r
	r.SetInput(s)
}

// Done reports whether every step has been replayed.
func (s *InputScript) Done() bool { return s.done }

// Poll returns the next scripted event. Wait steps yield no event for their
// frame count.
func (s *InputScript) Poll() (Event, bool) {
	for {
		if ev, ok := s.pending.Poll(); ok {
			return ev, true
		}
		if s.waitCount > 0 {
			s.waitCount--
			return Event{}, false
		}
		if s.cursor >= len(s.steps) {
			s.done = true
			return Event{}, false
		}
		st := s.steps[s.cursor]
		s.cursor++
		s.expand(st)
	}
}

// expand queues the events for one step.
func (s *InputScript) expand(st scriptStep) {
	pos := Vec2{st.X, st.Y}
	switch st.Action {
	case "click":
		s.pending.PushClick(pos)
	case "press":
		s.pending.Push(Event{Kind: EventMouseDown, Button: MouseButtonLeft, Position: pos})
	case "release":
		s.pending.Push(Event{Kind: EventMouseUp, Button: MouseButtonLeft, Position: pos})
	case "move":
		s.pending.Push(Event{Kind: EventMouseMove, Position: pos})
	case "drag":
		frames := max(st.Frames, 2)
		to := Vec2{st.ToX, st.ToY}
		s.pending.Push(Event{Kind: EventMouseDown, Button: MouseButtonLeft, Position: pos})
		steps := frames - 2
		for i := 1; i <= steps; i++ {
			t := float64(i) / float64(steps+1)
			s.pending.Push(Event{Kind: EventMouseMove, Position: pos.Lerp(to, t)})
		}
		s.pending.Push(Event{Kind: EventMouseUp, Button: MouseButtonLeft, Position: to})
	case "key":
		if k, ok := scriptKeys[st.Key]; ok {
			s.pending.PushKey(k, 0)
		} else {
			s.pending.PushKey(KeyRune, []rune(st.Key)[0])
		}
	case "text":
		s.pending.PushText(st.Text)
	case "wait":
		s.waitCount = st.Frames
	case "quit":
		s.pending.Push(Event{Kind: EventQuit})
	case "screenshot":
		if s.renderer != nil {
			s.renderer.Screenshot(st.Label)
		}
	}
}
