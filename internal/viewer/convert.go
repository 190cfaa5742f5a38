package viewer

import (
	"image/color"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"shirtforge/internal/design"
	"shirtforge/internal/geom"
)

func vec3(v geom.Vec3) rl.Vector3 {
	return rl.Vector3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

func vec2(v geom.Vec2) rl.Vector2 {
	return rl.Vector2{X: float32(v.X), Y: float32(v.Y)}
}

func fromVec2(v rl.Vector2) geom.Vec2 {
	return geom.Vec2{X: float64(v.X), Y: float64(v.Y)}
}

func rect(r geom.Rect) rl.Rectangle {
	return rl.Rectangle{X: float32(r.X), Y: float32(r.Y), Width: float32(r.Width), Height: float32(r.Height)}
}

// hexColor parses a "#rrggbb" store colour, falling back when it is bad.
func hexColor(hex, fallback string) rl.Color {
	c, err := design.ParseHex(hex)
	if err != nil {
		c, _ = design.ParseHex(fallback)
	}
	return rl.Color(c)
}

// tint is a float RGB colour that eases toward its target, so colour
// changes fade in instead of snapping.
type tint [3]float64

func tintOf(c rl.Color) tint {
	return tint{float64(c.R), float64(c.G), float64(c.B)}
}

func (t *tint) ease(target rl.Color, rate, dt float64) {
	k := 1 - math.Exp(-rate*dt)
	goal := tintOf(target)
	for i := range t {
		t[i] += (goal[i] - t[i]) * k
	}
}

func (t tint) color() rl.Color {
	return rl.NewColor(channel(t[0]), channel(t[1]), channel(t[2]), 255)
}

func channel(v float64) uint8 {
	return uint8(clamp(math.Round(v), 0, 255))
}

// shade darkens c by f in [0, 1].
func shade(c rl.Color, f float64) rl.Color {
	return rl.NewColor(channel(float64(c.R)*(1-f)), channel(float64(c.G)*(1-f)), channel(float64(c.B)*(1-f)), c.A)
}

// toHex is the store form of an RGB colour.
func toHex(c rl.Color) string {
	return design.Hex(color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
}
