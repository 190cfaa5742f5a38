package region

import (
	"math"
	"testing"

	"shirtforge/internal/geom"
)

var guide = geom.Vec2{X: 900, Y: 800}

func TestRegionFor2DPointCenters(t *testing.T) {
	g := Default()
	for _, r := range All {
		rect, ok := g.PixelRectOf(r, guide)
		if !ok {
			t.Fatalf("no rect for %s", r)
		}
		if got := g.RegionFor2DPoint(rect.Center(), guide, Front); got != r {
			t.Errorf("center of %s classified as %s", r, got)
		}
	}
}

func TestRegionFor2DPointOutsideKeepsCurrent(t *testing.T) {
	g := Default()
	// Top strip above every rectangle.
	p := geom.Vec2{X: 450, Y: 10}
	for _, cur := range All {
		if got := g.RegionFor2DPoint(p, guide, cur); got != cur {
			t.Errorf("outside point with current %s returned %s", cur, got)
		}
	}
}

func TestRegionFor2DPointDeterministic(t *testing.T) {
	g := Default()
	pts := []geom.Vec2{{X: 100, Y: 300}, {X: 700, Y: 300}, {X: 200, Y: 740}, {X: 600, Y: 760}, {X: 450, Y: 500}}
	for _, p := range pts {
		a := g.RegionFor2DPoint(p, guide, Back)
		b := g.RegionFor2DPoint(p, guide, Back)
		if a != b {
			t.Errorf("point %v classified %s then %s", p, a, b)
		}
	}
}

func TestOverlapFirstMatchWins(t *testing.T) {
	rects := map[Region]geom.Rect{
		Front: {X: 0, Y: 0, Width: 0.6, Height: 1},
		Back:  {X: 0.4, Y: 0, Width: 0.6, Height: 1},
	}
	g := NewRegistry([]Region{Front, Back}, rects, nil)
	if got := g.RegionFor2DPoint(geom.Vec2{X: 50, Y: 50}, geom.Vec2{X: 100, Y: 100}, LeftSleeve); got != Front {
		t.Errorf("overlap resolved to %s, want front", got)
	}
	g = NewRegistry([]Region{Back, Front}, rects, nil)
	if got := g.RegionFor2DPoint(geom.Vec2{X: 50, Y: 50}, geom.Vec2{X: 100, Y: 100}, LeftSleeve); got != Back {
		t.Errorf("overlap resolved to %s, want back", got)
	}
}

func TestBoundsAndPresets(t *testing.T) {
	g := Default()
	b, ok := g.BoundsOf(Back)
	if !ok || b.FixedZ != -0.1 || b.DefaultRotationY != math.Pi {
		t.Errorf("back bounds = %+v", b)
	}
	if _, ok := g.BoundsOf(Region("collar")); ok {
		t.Error("unknown region reported bounds")
	}
	if _, ok := g.RectOf(Region("collar")); ok {
		t.Error("unknown region reported rect")
	}
	for _, r := range All {
		p := PresetOf(r)
		b, _ := g.BoundsOf(r)
		if p.Rotation.Y != b.DefaultRotationY {
			t.Errorf("%s preset rotation %v, bounds default %v", r, p.Rotation.Y, b.DefaultRotationY)
		}
		if p.Position.Z != b.FixedZ {
			t.Errorf("%s preset z %v, fixedZ %v", r, p.Position.Z, b.FixedZ)
		}
	}
}

func TestParse(t *testing.T) {
	if r, ok := Parse("left_sleeve"); !ok || r != LeftSleeve {
		t.Errorf("Parse(left_sleeve) = %s, %v", r, ok)
	}
	if _, ok := Parse("pocket"); ok {
		t.Error("Parse accepted unknown region")
	}
}
