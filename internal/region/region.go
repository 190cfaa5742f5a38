// Package region defines the named garment surfaces and the static tables
// that place each one on the 2D guide and in 3D model space.
package region

import (
	"math"

	"shirtforge/internal/geom"
)

// Region names one printable surface of the garment. It is also the
// key persisted in decal records.
type Region string

const (
	Front       Region = "front"
	Back        Region = "back"
	LeftSleeve  Region = "left_sleeve"
	RightSleeve Region = "right_sleeve"
)

// All lists the regions in classification order.
var All = []Region{Front, Back, LeftSleeve, RightSleeve}

func (r Region) String() string { return string(r) }

// Valid reports whether r is one of the built-in regions.
func (r Region) Valid() bool {
	for _, k := range All {
		if k == r {
			return true
		}
	}
	return false
}

// Parse converts a persisted or wire name into a Region, reporting false
// for names that are not built in.
func Parse(s string) (Region, bool) {
	r := Region(s)
	return r, r.Valid()
}

// Bounds is a region's 3D rectangle in model space, its depth offset and
// the Y rotation a decal takes when it lands on the region.
type Bounds struct {
	MinX, MaxX       float64
	MinY, MaxY       float64
	FixedZ           float64
	DefaultRotationY float64
}

// Empty reports whether the bounds span no area on either axis.
func (b Bounds) Empty() bool {
	return b.MaxX == b.MinX || b.MaxY == b.MinY
}

// Contains reports whether p lies within the X/Y box; Z is ignored.
func (b Bounds) Contains(p geom.Vec3) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Preset is the pose a freshly added decal gets on a region.
type Preset struct {
	Position geom.Vec3
	Rotation geom.Vec3
}

// DefaultScale is the uniform scale given to new decals.
const DefaultScale = 0.4

var defaultRects = map[Region]geom.Rect{
	Front:       {X: 0.05, Y: 0.18, Width: 0.43, Height: 0.65},
	Back:        {X: 0.52, Y: 0.18, Width: 0.43, Height: 0.65},
	LeftSleeve:  {X: 0.02, Y: 0.85, Width: 0.48, Height: 0.15},
	RightSleeve: {X: 0.50, Y: 0.85, Width: 0.48, Height: 0.15},
}

var defaultBounds = map[Region]Bounds{
	Front:       {MinX: -0.5, MaxX: 0.5, MinY: -0.5, MaxY: 0.5, FixedZ: 0.1, DefaultRotationY: 0},
	Back:        {MinX: -0.5, MaxX: 0.5, MinY: -0.5, MaxY: 0.5, FixedZ: -0.1, DefaultRotationY: math.Pi},
	LeftSleeve:  {MinX: 0.2, MaxX: 0.7, MinY: -0.2, MaxY: 0.2, FixedZ: 0.05, DefaultRotationY: math.Pi / 2},
	RightSleeve: {MinX: -0.7, MaxX: -0.2, MinY: -0.2, MaxY: 0.2, FixedZ: 0.05, DefaultRotationY: -math.Pi / 2},
}

var presets = map[Region]Preset{
	Front:       {Position: geom.V3(0, 0, 0.1)},
	Back:        {Position: geom.V3(0, 0, -0.1), Rotation: geom.V3(0, math.Pi, 0)},
	LeftSleeve:  {Position: geom.V3(0.4, 0, 0.05), Rotation: geom.V3(0, math.Pi/2, 0)},
	RightSleeve: {Position: geom.V3(-0.4, 0, 0.05), Rotation: geom.V3(0, -math.Pi/2, 0)},
}

// PresetOf returns the initial pose for a decal added on r. Unknown regions
// get the front pose.
func PresetOf(r Region) Preset {
	if p, ok := presets[r]; ok {
		return p
	}
	return presets[Front]
}
