// Package geom holds the float64 vector and rectangle types shared by the
// placement core. Conversion to raylib float32 types happens at the render
// boundary only.
package geom

import (
	"encoding/json"
	"fmt"
	"math"
)

type Vec2 struct {
	X, Y float64
}

func (a Vec2) Add(b Vec2) Vec2 { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2 { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) Scale(s float64) Vec2 { return Vec2{a.X * s, a.Y * s} }
func (a Vec2) String() string { return fmt.Sprintf("(%.4f, %.4f)", a.X, a.Y) }
func (a Vec2) Near(b Vec2, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps
}

// Vec3 is a point, scale or XYZ Euler rotation (radians) in model space.
// It serializes as a three element JSON array.
type Vec3 struct {
	X, Y, Z float64
}

func V3(x, y, z float64) Vec3 { return Vec3{x, y, z} }

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

func (a Vec3) Len() float64 { return math.Sqrt(a.Dot(a)) }

// Normalize returns the unit vector, or the zero vector for zero input.
func (a Vec3) Normalize() Vec3 {
	l := a.Len()
	if l == 0 {
		return Vec3{}
	}
	return a.Scale(1 / l)
}

func (a Vec3) Near(b Vec3, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps && math.Abs(a.Z-b.Z) <= eps
}

func (a Vec3) String() string { return fmt.Sprintf("(%.4f, %.4f, %.4f)", a.X, a.Y, a.Z) }

func (a Vec3) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{a.X, a.Y, a.Z})
}

func (a *Vec3) UnmarshalJSON(data []byte) error {
	var v [3]float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("geom: vec3: %w", err)
	}
	a.X, a.Y, a.Z = v[0], v[1], v[2]
	return nil
}

// Rect is an axis-aligned rectangle; Y grows downward as on screen.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

func (r Rect) Center() Vec2 { return Vec2{r.X + r.Width/2, r.Y + r.Height/2} }

// Scaled maps a fractional rectangle into a container of the given size.
func (r Rect) Scaled(size Vec2) Rect {
	return Rect{r.X * size.X, r.Y * size.Y, r.Width * size.X, r.Height * size.Y}
}

// CenteredAt returns a rectangle of the given size centred on c.
func CenteredAt(c Vec2, w, h float64) Rect {
	return Rect{c.X - w/2, c.Y - h/2, w, h}
}

func Deg2Rad(d float64) float64 { return d * math.Pi / 180 }
func Rad2Deg(r float64) float64 { return r * 180 / math.Pi }
