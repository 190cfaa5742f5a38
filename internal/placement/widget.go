package placement

import (
	"math"

	"shirtforge/internal/geom"
)

// Handle sizes in pixels.
const (
	HandleSize   = 10.0
	RotateOffset = 24.0
)

// Widget turns raw pointer presses and moves over one overlay element
// into Gestures. The body drags, the bottom-right corner resizes and the
// knob above the top edge rotates.
type Widget struct {
	active bool
	kind   Kind
	id     string

	press     geom.Vec2
	startRect geom.Rect
	lastAngle float64
	angle     float64
}

// HitTest reports which part of the element box r, if any, lies under p.
func HitTest(r geom.Rect, p geom.Vec2) (Kind, bool) {
	k := KnobCenter(r)
	if sq(k.X-p.X)+sq(k.Y-p.Y) <= sq(HandleSize) {
		return Rotate, true
	}
	corner := geom.CenteredAt(geom.Vec2{X: r.X + r.Width, Y: r.Y + r.Height}, HandleSize*1.5, HandleSize*1.5)
	if corner.Contains(p) {
		return Resize, true
	}
	if r.Contains(p) {
		return Drag, true
	}
	return 0, false
}

// KnobCenter is the rotate handle position for box r.
func KnobCenter(r geom.Rect) geom.Vec2 {
	return geom.Vec2{X: r.X + r.Width/2, Y: r.Y - RotateOffset}
}

func sq(v float64) float64 { return v * v }

// Press starts a gesture of the given kind on element id with box r.
func (w *Widget) Press(id string, kind Kind, r geom.Rect, p geom.Vec2) Gesture {
	w.active = true
	w.kind = kind
	w.id = id
	w.press = p
	w.startRect = r
	w.angle = 0
	w.lastAngle = pointerAngle(r.Center(), p)
	return Gesture{Phase: Start, Kind: kind, DecalID: id}
}

// Active reports whether a press is being tracked.
func (w *Widget) Active() bool { return w.active }

// Moved produces the Move gesture for pointer position p.
func (w *Widget) Moved(p geom.Vec2) (Gesture, bool) {
	if !w.active {
		return Gesture{}, false
	}
	g := Gesture{Phase: Move, Kind: w.kind, DecalID: w.id}
	delta := p.Sub(w.press)
	switch w.kind {
	case Drag:
		g.Delta = delta
	case Resize:
		g.Rect = geom.Rect{
			X:      w.startRect.X,
			Y:      w.startRect.Y,
			Width:  math.Max(0, w.startRect.Width+delta.X),
			Height: math.Max(0, w.startRect.Height+delta.Y),
		}
	case Rotate:
		a := pointerAngle(w.startRect.Center(), p)
		step := a - w.lastAngle
		for step > 180 {
			step -= 360
		}
		for step <= -180 {
			step += 360
		}
		w.angle += step
		w.lastAngle = a
		g.Angle = w.angle
	}
	return g, true
}

// Release ends the tracked gesture.
func (w *Widget) Release() (Gesture, bool) {
	if !w.active {
		return Gesture{}, false
	}
	w.active = false
	return Gesture{Phase: End, Kind: w.kind, DecalID: w.id}, true
}

// pointerAngle is the screen-space angle of p around c in degrees. With Y
// pointing down, increasing values turn clockwise.
func pointerAngle(c, p geom.Vec2) float64 {
	return geom.Rad2Deg(math.Atan2(p.Y-c.Y, p.X-c.X))
}
