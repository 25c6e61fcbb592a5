package lightning

import (
	"log/slog"
	"math"
)

// UIManager builds interactive widgets out of shape and text nodes.
type UIManager struct {
	r *Renderer
}

// ButtonStyle holds a button's colours per state.
type ButtonStyle struct {
	Normal  Color
	Hover   Color
	Pressed Color
	Text    Color
	Radius  float64
}

// DefaultButtonStyle is used when AddButton gets a zero style.
var DefaultButtonStyle = ButtonStyle{
	Normal:  Color{60, 60, 70, 255},
	Hover:   Color{80, 80, 95, 255},
	Pressed: Color{40, 40, 50, 255},
	Text:    ColorWhite,
	Radius:  4,
}

// Button is a rounded rectangle with a centred label.
type Button struct {
	Node  *Renderable
	Label *Renderable
	Style ButtonStyle
	// OnClick runs when a press is released over the button.
	OnClick func(ctx *RenderContext, b *Button)

	hovered bool
	pressed bool
}

// AddButton creates a button at pos with the given size and label.
func (m *UIManager) AddButton(name, label string, f *Font, pos, size Vec2, style ButtonStyle, parent *Renderable) *Button {
	if style == (ButtonStyle{}) {
		style = DefaultButtonStyle
	}
	b := &Button{Style: style}
	b.Node = m.r.AddRenderable(NewRoundedRectangle(name, pos, size, style.Radius, style.Normal, true), parent)
	if b.Node == nil {
		return nil
	}
	b.Node.UserData = b
	if f != nil {
		text := NewText(name+".label", label, f, pos, TextOptions{Color: style.Text})
		text.Position = centreIn(b.Node.Bounds(), text.Size)
		b.Label = m.r.AddRenderable(text, b.Node)
	}

	b.Node.On(InputMouseEnter, func(*RenderContext, *Renderable, Event) {
		b.hovered = true
		b.refresh()
	})
	b.Node.On(InputMouseLeave, func(*RenderContext, *Renderable, Event) {
		b.hovered = false
		b.refresh()
	})
	b.Node.On(InputMousePressed, func(*RenderContext, *Renderable, Event) {
		b.pressed = true
		b.refresh()
	})
	b.Node.On(InputMouseReleased, func(ctx *RenderContext, n *Renderable, ev Event) {
		was := b.pressed
		b.pressed = false
		b.refresh()
		if was && containsPoint(n, ev.Position) && b.OnClick != nil {
			b.OnClick(ctx, b)
		}
	})
	return b
}

// Hovered reports whether the mouse is over the button.
func (b *Button) Hovered() bool { return b.hovered }

func (b *Button) refresh() {
	switch {
	case b.pressed:
		b.Node.Color = b.Style.Pressed
	case b.hovered:
		b.Node.Color = b.Style.Hover
	default:
		b.Node.Color = b.Style.Normal
	}
}

// centreIn returns the top-left that centres size within r.
func centreIn(r Rect, size Vec2) Vec2 {
	return Vec2{
		X: math.Round(r.X + (r.Width-size.X)/2),
		Y: math.Round(r.Y + (r.Height-size.Y)/2),
	}
}

// ListBox is a vertical list of selectable text items.
type ListBox struct {
	Node *Renderable
	Font *Font

	ItemColor     Color
	SelectedColor Color
	TextColor     Color
	// OnSelect runs when an item is clicked.
	OnSelect func(ctx *RenderContext, lb *ListBox, index int)

	items    []*Renderable
	selected int
	m        *UIManager
}

// listItemPadding is the vertical space around an item's text.
const listItemPadding = 4

// AddListBox creates an empty list box. Items are added with AddListItem.
func (m *UIManager) AddListBox(name string, f *Font, pos, size Vec2, parent *Renderable) *ListBox {
	n := NewRectangle(name, pos, size, Color{30, 30, 36, 255}, true)
	n.BorderColor = Color{90, 90, 100, 255}
	n.BorderSize = Vec2{1, 1}
	lb := &ListBox{
		Font:          f,
		ItemColor:     Color{30, 30, 36, 255},
		SelectedColor: Color{70, 90, 140, 255},
		TextColor:     ColorWhite,
		selected:      -1,
		m:             m,
	}
	lb.Node = m.r.AddRenderable(n, parent)
	if lb.Node == nil {
		return nil
	}
	lb.Node.UserData = lb
	return lb
}

// AddListItem appends an item named name showing text. The item is a child
// of the list box node, so it is found by GetRenderableByName under it.
func (m *UIManager) AddListItem(lb *ListBox, name, text string) *Renderable {
	if lb == nil || lb.Node == nil || lb.Node.destroyed {
		m.r.logError("add list item: list box not in tree", slog.String("item", name))
		return nil
	}
	h := float64(listItemPadding * 2)
	if lb.Font != nil {
		h += math.Ceil(lb.Font.LineHeight())
	}
	index := len(lb.items)
	pos := lb.Node.Position.Add(Vec2{0, h * float64(index)})
	item := m.r.AddRenderable(NewRectangle(name, pos, Vec2{lb.Node.Size.X, h}, lb.ItemColor, true), lb.Node)
	if item == nil {
		return nil
	}
	item.RelativeZ = true
	item.ZIndex = 1
	if lb.Font != nil {
		label := NewText(name+".label", text, lb.Font, pos.Add(Vec2{listItemPadding, listItemPadding}), TextOptions{Color: lb.TextColor})
		m.r.AddRenderable(label, item)
	}
	lb.items = append(lb.items, item)
	item.On(InputMousePressed, func(ctx *RenderContext, n *Renderable, _ Event) {
		for i, it := range lb.items {
			if it == n {
				lb.Select(i)
				if lb.OnSelect != nil {
					lb.OnSelect(ctx, lb, i)
				}
				return
			}
		}
	})
	return item
}

// Len returns the number of live items.
func (lb *ListBox) Len() int {
	lb.prune()
	return len(lb.items)
}

// Item returns the item at index, or nil.
func (lb *ListBox) Item(index int) *Renderable {
	lb.prune()
	if index < 0 || index >= len(lb.items) {
		return nil
	}
	return lb.items[index]
}

// Selected returns the selected index, -1 when nothing is selected.
func (lb *ListBox) Selected() int { return lb.selected }

// Select highlights the item at index. Out-of-range indexes clear the
// selection.
func (lb *ListBox) Select(index int) {
	lb.prune()
	if index < 0 || index >= len(lb.items) {
		index = -1
	}
	lb.selected = index
	for i, it := range lb.items {
		if i == index {
			it.Color = lb.SelectedColor
		} else {
			it.Color = lb.ItemColor
		}
	}
}

// RemoveItem removes the item at index and restacks the rest.
func (lb *ListBox) RemoveItem(index int) {
	lb.prune()
	if index < 0 || index >= len(lb.items) {
		return
	}
	lb.m.r.RemoveRenderable(lb.items[index])
	lb.items = append(lb.items[:index], lb.items[index+1:]...)
	if lb.selected == index {
		lb.selected = -1
	} else if lb.selected > index {
		lb.selected--
	}
	for i, it := range lb.items {
		y := lb.Node.Position.Y + it.Size.Y*float64(i)
		dy := y - it.Position.Y
		it.Position.Y = y
		for _, c := range lb.m.r.Children(it) {
			c.Position.Y += dy
		}
	}
}

// prune drops items destroyed outside the list box.
func (lb *ListBox) prune() {
	live := lb.items[:0]
	for _, it := range lb.items {
		if !it.destroyed && !it.pendingRemoval {
			live = append(live, it)
		}
	}
	for i := len(live); i < len(lb.items); i++ {
		lb.items[i] = nil
	}
	lb.items = live
	if lb.selected >= len(lb.items) {
		lb.selected = -1
	}
}

// TextBox is a single-line editable field. It takes keyboard input while
// focused.
type TextBox struct {
	Node  *Renderable
	Text  *Renderable
	Font  *Font
	Limit int // maximum runes, zero for unlimited

	FocusColor Color
	BlurColor  Color
	// OnSubmit runs when Enter is pressed.
	OnSubmit func(ctx *RenderContext, tb *TextBox, value string)

	value []rune
}

// AddTextBox creates an empty text box.
func (m *UIManager) AddTextBox(name string, f *Font, pos, size Vec2, parent *Renderable) *TextBox {
	tb := &TextBox{
		Font:       f,
		FocusColor: Color{120, 160, 255, 255},
		BlurColor:  Color{90, 90, 100, 255},
	}
	n := NewRectangle(name, pos, size, Color{20, 20, 24, 255}, true)
	n.BorderColor = tb.BlurColor
	n.BorderSize = Vec2{1, 1}
	tb.Node = m.r.AddRenderable(n, parent)
	if tb.Node == nil {
		return nil
	}
	tb.Node.UserData = tb
	if f != nil {
		y := pos.Y + math.Round((size.Y-f.LineHeight())/2)
		tb.Text = m.r.AddRenderable(NewText(name+".text", "", f, Vec2{pos.X + 4, y}, TextOptions{Color: ColorWhite}), tb.Node)
	}

	tb.Node.On(InputFocusGained, func(_ *RenderContext, n *Renderable, _ Event) {
		n.BorderColor = tb.FocusColor
	})
	tb.Node.On(InputFocusLost, func(_ *RenderContext, n *Renderable, _ Event) {
		n.BorderColor = tb.BlurColor
	})
	tb.Node.On(InputKeyPressed, func(ctx *RenderContext, _ *Renderable, ev Event) {
		tb.handleKey(ctx, ev)
	})
	return tb
}

func (tb *TextBox) handleKey(ctx *RenderContext, ev Event) {
	switch ev.Key {
	case KeyRune, KeySpace:
		r := ev.Rune
		if ev.Key == KeySpace {
			r = ' '
		}
		if r == 0 || (tb.Limit > 0 && len(tb.value) >= tb.Limit) {
			return
		}
		tb.value = append(tb.value, r)
	case KeyBackspace:
		if len(tb.value) == 0 {
			return
		}
		tb.value = tb.value[:len(tb.value)-1]
	case KeyEnter:
		if tb.OnSubmit != nil {
			tb.OnSubmit(ctx, tb, string(tb.value))
		}
		return
	default:
		return
	}
	tb.sync()
}

// Value returns the current contents.
func (tb *TextBox) Value() string { return string(tb.value) }

// SetValue replaces the contents.
func (tb *TextBox) SetValue(s string) {
	tb.value = []rune(s)
	tb.sync()
}

func (tb *TextBox) sync() {
	if tb.Text != nil && !tb.Text.destroyed {
		tb.Text.SetText(string(tb.value))
	}
}
