package placement

import (
	"math"
	"testing"

	"shirtforge/internal/geom"
)

func TestHitTest(t *testing.T) {
	r := geom.Rect{X: 100, Y: 100, Width: 80, Height: 80}
	cases := []struct {
		p    geom.Vec2
		kind Kind
		ok   bool
	}{
		{geom.Vec2{X: 140, Y: 76}, Rotate, true},
		{geom.Vec2{X: 180, Y: 180}, Resize, true},
		{geom.Vec2{X: 176, Y: 178}, Resize, true},
		{geom.Vec2{X: 140, Y: 140}, Drag, true},
		{geom.Vec2{X: 10, Y: 10}, 0, false},
	}
	for _, c := range cases {
		k, ok := HitTest(r, c.p)
		if ok != c.ok || (ok && k != c.kind) {
			t.Errorf("HitTest(%v) = %v, %v; want %v, %v", c.p, k, ok, c.kind, c.ok)
		}
	}
}

func TestWidgetDrag(t *testing.T) {
	var w Widget
	r := geom.Rect{X: 0, Y: 0, Width: 50, Height: 50}
	g := w.Press("a", Drag, r, geom.Vec2{X: 25, Y: 25})
	if g.Phase != Start || g.Kind != Drag || g.DecalID != "a" {
		t.Errorf("press = %+v", g)
	}
	g, _ = w.Moved(geom.Vec2{X: 40, Y: 10})
	if g.Delta != (geom.Vec2{X: 15, Y: -15}) {
		t.Errorf("delta = %v", g.Delta)
	}
	g, ok := w.Release()
	if !ok || g.Phase != End {
		t.Errorf("release = %+v %v", g, ok)
	}
	if _, ok := w.Moved(geom.Vec2{}); ok {
		t.Error("move after release produced a gesture")
	}
}

func TestWidgetResizeFromCorner(t *testing.T) {
	var w Widget
	r := geom.Rect{X: 10, Y: 20, Width: 80, Height: 80}
	w.Press("a", Resize, r, geom.Vec2{X: 90, Y: 100})
	g, _ := w.Moved(geom.Vec2{X: 50, Y: 300})
	if g.Rect != (geom.Rect{X: 10, Y: 20, Width: 40, Height: 280}) {
		t.Errorf("rect = %+v", g.Rect)
	}
	g, _ = w.Moved(geom.Vec2{X: -200, Y: 0})
	if g.Rect.Width != 0 || g.Rect.Height != 0 {
		t.Errorf("collapsed rect = %+v", g.Rect)
	}
}

func TestWidgetRotateAccumulates(t *testing.T) {
	var w Widget
	r := geom.Rect{X: 50, Y: 50, Width: 100, Height: 100}
	w.Press("a", Rotate, r, geom.Vec2{X: 200, Y: 100})
	steps := []struct {
		p    geom.Vec2
		want float64
	}{
		{geom.Vec2{X: 100, Y: 200}, 90},
		{geom.Vec2{X: 0, Y: 100}, 180},
		{geom.Vec2{X: 100, Y: 0}, 270},
		{geom.Vec2{X: 200, Y: 100}, 360},
	}
	for _, s := range steps {
		g, _ := w.Moved(s.p)
		if math.Abs(g.Angle-s.want) > 1e-9 {
			t.Errorf("angle at %v = %v, want %v", s.p, g.Angle, s.want)
		}
	}
}
