// Package placement turns pointer gestures on the 2D guide into decal
// state: drags move a decal (possibly onto another region), resizes set
// its scale and rotations spin it about its facing axis.
package placement

import "shirtforge/internal/geom"

type Phase int

const (
	Start Phase = iota
	Move
	End
)

func (p Phase) String() string {
	switch p {
	case Start:
		return "start"
	case Move:
		return "move"
	case End:
		return "end"
	}
	return "unknown"
}

type Kind int

const (
	Drag Kind = iota
	Resize
	Rotate
)

func (k Kind) String() string {
	switch k {
	case Drag:
		return "drag"
	case Resize:
		return "resize"
	case Rotate:
		return "rotate"
	}
	return "unknown"
}

// Gesture is one event from the manipulation widget. All values are in
// container pixels and cumulative since the gesture started.
type Gesture struct {
	Phase   Phase
	Kind    Kind
	DecalID string

	// Delta is the drag offset of the element.
	Delta geom.Vec2
	// Rect is the element's new box during a resize.
	Rect geom.Rect
	// Angle is the clockwise on-screen rotation in degrees.
	Angle float64
}

// OverlayStyle is the inline box applied to the overlay element during a
// gesture, ahead of the store update.
type OverlayStyle struct {
	Left, Top     float64
	Width, Height float64
	RotationDeg   float64
}

func (s OverlayStyle) Rect() geom.Rect {
	return geom.Rect{X: s.Left, Y: s.Top, Width: s.Width, Height: s.Height}
}

// Overlay receives the immediate visual update for an element.
type Overlay interface {
	Apply(id string, s OverlayStyle)
}

// OverlayFunc adapts a function to Overlay.
type OverlayFunc func(id string, s OverlayStyle)

func (f OverlayFunc) Apply(id string, s OverlayStyle) { f(id, s) }

type nopOverlay struct{}

func (nopOverlay) Apply(string, OverlayStyle) {}
