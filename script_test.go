package lightning

import (
	"os"
	"path/filepath"
	"testing"
)

func pollAll(s *InputScript, frames int) []Event {
	var out []Event
	for i := 0; i < frames; i++ {
		if ev, ok := s.Poll(); ok {
			out = append(out, ev)
		}
	}
	return out
}

func TestInputScriptClickAndText(t *testing.T) {
	s, err := LoadInputScript([]byte(`
steps:
  - {action: click, x: 10, y: 20}
  - {action: text, text: "ab"}
  - {action: key, key: enter}
`))
	if err != nil {
		t.Fatalf("LoadInputScript: %v", err)
	}
	evs := pollAll(s, 20)
	want := []EventKind{
		EventMouseDown, EventMouseUp,
		EventKeyDown, EventKeyUp, EventKeyDown, EventKeyUp,
		EventKeyDown, EventKeyUp,
	}
	if len(evs) != len(want) {
		t.Fatalf("got %d events, want %d", len(evs), len(want))
	}
	for i, k := range want {
		if evs[i].Kind != k {
			t.Errorf("event %d = %v, want %v", i, evs[i].Kind, k)
		}
	}
	if evs[0].Position != (Vec2{10, 20}) {
		t.Errorf("click at %v, want {10 20}", evs[0].Position)
	}
	if evs[4].Rune != 'b' || evs[6].Key != KeyEnter {
		t.Errorf("text events = %+v %+v", evs[4], evs[6])
	}
	if !s.Done() {
		t.Error("Done() = false after all steps")
	}
}

func TestInputScriptWait(t *testing.T) {
	s, err := LoadInputScript([]byte(`
steps:
  - {action: move, x: 1, y: 1}
  - {action: wait, frames: 3}
  - {action: quit}
`))
	if err != nil {
		t.Fatal(err)
	}
	if ev, ok := s.Poll(); !ok || ev.Kind != EventMouseMove {
		t.Fatalf("first poll = %v %v, want move", ev.Kind, ok)
	}
	for i := 0; i < 3; i++ {
		if _, ok := s.Poll(); ok {
			t.Fatalf("poll %d during wait returned an event", i)
		}
	}
	if ev, ok := s.Poll(); !ok || ev.Kind != EventQuit {
		t.Errorf("poll after wait = %v %v, want quit", ev.Kind, ok)
	}
}

func TestInputScriptDragInterpolates(t *testing.T) {
	s, err := LoadInputScript([]byte(`
steps:
  - {action: drag, x: 0, y: 0, toX: 30, toY: 60, frames: 4}
`))
	if err != nil {
		t.Fatal(err)
	}
	evs := pollAll(s, 10)
	if len(evs) != 4 {
		t.Fatalf("got %d events, want 4", len(evs))
	}
	if evs[0].Kind != EventMouseDown || evs[3].Kind != EventMouseUp {
		t.Errorf("drag ends = %v %v", evs[0].Kind, evs[3].Kind)
	}
	if evs[1].Position != (Vec2{10, 20}) || evs[2].Position != (Vec2{20, 40}) {
		t.Errorf("drag moves = %v %v, want {10 20} {20 40}", evs[1].Position, evs[2].Position)
	}
	if evs[3].Position != (Vec2{30, 60}) {
		t.Errorf("release at %v, want {30 60}", evs[3].Position)
	}
}

func TestInputScriptRejects(t *testing.T) {
	for name, src := range map[string]string{
		"empty":          `steps: []`,
		"unknown action": `steps: [{action: jump}]`,
		"unknown key":    `steps: [{action: key, key: hyperspace}]`,
		"malformed":      `steps: {`,
	} {
		if _, err := LoadInputScript([]byte(src)); err == nil {
			t.Errorf("%s: no error", name)
		}
	}
	if _, err := LoadInputScript([]byte(`steps: [{action: key, key: q}]`)); err != nil {
		t.Errorf("single rune key rejected: %v", err)
	}
}

func TestInputScriptDrivesRenderer(t *testing.T) {
	r, _ := newTestRenderer(t)
	r.config.ScreenshotDir = t.TempDir()
	s, err := LoadInputScript([]byte(`
steps:
  - {action: click, x: 5, y: 5}
  - {action: screenshot, label: after click}
  - {action: quit}
`))
	if err != nil {
		t.Fatal(err)
	}
	s.Attach(r)
	clicks := 0
	n := r.AddRenderable(NewRectangle("target", Vec2{}, Vec2{10, 10}, ColorWhite, true), nil)
	n.On(InputMouseReleased, func(*RenderContext, *Renderable, Event) { clicks++ })
	r.Cull()

	for i := 0; i < 10 && r.Running(); i++ {
		r.Frame()
	}
	if clicks != 1 {
		t.Errorf("clicks = %d, want 1", clicks)
	}
	if r.Running() {
		t.Error("quit step did not stop the renderer")
	}
	files, _ := filepath.Glob(filepath.Join(r.config.ScreenshotDir, "*_after_click.png"))
	if len(files) != 1 {
		t.Errorf("screenshots = %v, want one", files)
	}
	for _, f := range files {
		if st, err := os.Stat(f); err != nil || st.Size() == 0 {
			t.Errorf("screenshot %s empty: %v", f, err)
		}
	}
}
