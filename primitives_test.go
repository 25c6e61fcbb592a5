package lightning

import (
	"math"
	"testing"
)

func TestNewLineLocalPoints(t *testing.T) {
	n := NewLine("l", Vec2{40, 10}, Vec2{10, 30}, ColorWhite, 3)
	if n.Position != (Vec2{10, 10}) {
		t.Errorf("Position = %v, want {10 10}", n.Position)
	}
	if n.Size != (Vec2{30, 20}) {
		t.Errorf("Size = %v, want {30 20}", n.Size)
	}
	if n.Points[0] != (Vec2{30, 0}) || n.Points[1] != (Vec2{0, 20}) {
		t.Errorf("Points = %v, want [{30 0} {0 20}]", n.Points)
	}
	if n.Thickness != 3 {
		t.Errorf("Thickness = %v, want 3", n.Thickness)
	}
}

func TestNewPolygonBounds(t *testing.T) {
	n := NewPolygon("p", []Vec2{{5, 5}, {15, 5}, {20, 15}, {5, 25}}, ColorWhite, true)
	if n.Position != (Vec2{5, 5}) || n.Size != (Vec2{15, 20}) {
		t.Errorf("bounds = %v %v, want {5 5} {15 20}", n.Position, n.Size)
	}
	if n.Points[2] != (Vec2{15, 10}) {
		t.Errorf("Points[2] = %v, want {15 10}", n.Points[2])
	}
}

func TestRoundedRectangleRadiusClamped(t *testing.T) {
	n := NewRoundedRectangle("r", Vec2{}, Vec2{40, 10}, 50, ColorWhite, true)
	if n.CornerRadius != 5 {
		t.Errorf("CornerRadius = %v, want 5", n.CornerRadius)
	}
	if n.Kind != KindRoundedRectangle {
		t.Errorf("Kind = %v", n.Kind)
	}
}

func TestEllipsePointsOnCurve(t *testing.T) {
	pts := EllipsePoints(Vec2{100, 100}, Vec2{50, 20})
	if len(pts) != 50 {
		t.Errorf("len = %d, want 50", len(pts))
	}
	for _, p := range pts {
		dx, dy := (p.X-100)/50, (p.Y-100)/20
		if v := dx*dx + dy*dy; math.Abs(v-1) > 1e-9 {
			t.Fatalf("point %v off the ellipse (%v)", p, v)
		}
	}
	if got := len(EllipsePoints(Vec2{}, Vec2{2, 2})); got != 16 {
		t.Errorf("small ellipse segments = %d, want 16", got)
	}
}

func TestRoundedRectPointsStayInside(t *testing.T) {
	r := Rect{10, 10, 100, 50}
	pts := RoundedRectPoints(r, 10)
	if len(pts) != 28 {
		t.Errorf("len = %d, want 28", len(pts))
	}
	b := boundsOf(pts)
	if !approxEqual(b.X, 10, epsilon) || !approxEqual(b.Width, 100, epsilon) ||
		!approxEqual(b.Y, 10, epsilon) || !approxEqual(b.Height, 50, epsilon) {
		t.Errorf("bounds = %v, want %v", b, r)
	}
	if got := len(RoundedRectPoints(r, 0)); got != 4 {
		t.Errorf("zero radius points = %d, want 4", got)
	}
}

func TestNewTextMeasures(t *testing.T) {
	r, _ := newTestRenderer(t)
	f := testFont(r)
	n := NewText("t", "abc\nde", f, Vec2{}, TextOptions{OutlineSize: 1})
	if n.Size != (Vec2{23, 30}) {
		t.Errorf("Size = %v, want {23 30}", n.Size)
	}
	if n.Text.Color != ColorWhite {
		t.Errorf("default colour = %v, want white", n.Text.Color)
	}
	if !n.RelativeZ {
		t.Error("text not relative z")
	}
	n.SetText("a")
	if n.Size != (Vec2{9, 15}) {
		t.Errorf("Size after SetText = %v, want {9 15}", n.Size)
	}
}

func TestPrimitiveManagerAdds(t *testing.T) {
	r, _ := newTestRenderer(t)
	pm := r.Primitives()
	root := pm.AddRectangle("root", Vec2{}, Vec2{100, 100}, ColorWhite, false, nil)
	pm.AddPixel("px", Vec2{1, 1}, ColorWhite, root)
	pm.AddLine("ln", Vec2{}, Vec2{5, 5}, ColorWhite, 1, root)
	pm.AddRoundedRectangle("rr", Vec2{}, Vec2{10, 10}, 2, ColorWhite, true, root)
	pm.AddEllipse("el", Vec2{}, Vec2{10, 10}, ColorWhite, true, root)
	pm.AddTriangle("tr", Vec2{}, Vec2{5, 0}, Vec2{0, 5}, ColorWhite, true, root)
	pm.AddPolygon("pg", []Vec2{{0, 0}, {5, 0}, {5, 5}, {0, 5}}, ColorWhite, true, root)
	if got := r.CountRenderables(root); got != 6 {
		t.Errorf("children = %d, want 6", got)
	}
	if pm.AddPolygon("bad", []Vec2{{0, 0}, {1, 1}}, ColorWhite, true, root) != nil {
		t.Error("AddPolygon accepted two points")
	}
}

func TestAddTextFallsBackToDefaultFont(t *testing.T) {
	r, _ := newTestRenderer(t)
	n := r.Primitives().AddText("t", "hi", "NoSuchFont", Vec2{}, TextOptions{}, nil)
	if n == nil {
		t.Fatal("AddText returned nil")
	}
	if n.Text.Font == nil || n.Text.Font.Name != FontName(defaultFontName, 11) {
		t.Errorf("font = %v, want default", n.Text.Font)
	}
	if r.DefaultFont() != n.Text.Font {
		t.Error("default font loaded twice")
	}
}

func TestAddTextWithNamedFont(t *testing.T) {
	r, _ := newTestRenderer(t)
	f := testFont(r)
	n := r.Primitives().AddText("t", "hi", "basic13", Vec2{}, TextOptions{}, nil)
	if n.Text.Font != f {
		t.Error("named font not used")
	}
}
