package geom

import (
	"encoding/json"
	"math"
	"testing"
)

func TestRectContainsEdges(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 30, Height: 40}
	cases := []struct {
		p    Vec2
		want bool
	}{
		{Vec2{10, 20}, true},
		{Vec2{40, 60}, true},
		{Vec2{25, 40}, true},
		{Vec2{9.99, 40}, false},
		{Vec2{25, 60.01}, false},
	}
	for _, c := range cases {
		if got := r.Contains(c.p); got != c.want {
			t.Errorf("Contains(%v) = %v, want %v", c.p, got, c.want)
		}
	}
}

func TestEulerRoundTrip(t *testing.T) {
	angles := []Vec3{
		{0, 0, 0},
		{0, math.Pi / 2 * 0.5, 0},
		{0.3, -0.7, 1.2},
		{-1.1, 0.2, -2.9},
	}
	for _, e := range angles {
		got := EulerXYZ(e).ToEulerXYZ()
		if !got.Near(e, 1e-9) {
			t.Errorf("round trip %v -> %v", e, got)
		}
	}
}

func TestVec3JSONArray(t *testing.T) {
	data, err := json.Marshal(Vec3{1, 2.5, -3})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "[1,2.5,-3]" {
		t.Errorf("marshal = %s", data)
	}
	var v Vec3
	if err := json.Unmarshal([]byte("[0.1,0.2,0.3]"), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v != (Vec3{0.1, 0.2, 0.3}) {
		t.Errorf("unmarshal = %v", v)
	}
	if err := json.Unmarshal([]byte(`{"x":1}`), &v); err == nil {
		t.Error("expected error for object form")
	}
}
