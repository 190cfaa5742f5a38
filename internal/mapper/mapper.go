// Package mapper converts between guide pixels and model-space decal
// positions for a single region.
package mapper

import (
	"shirtforge/internal/geom"
	"shirtforge/internal/region"
)

const (
	// PixelsPerScale relates the guide's pixel size to model units:
	// an 80px wide overlay corresponds to a scale of 0.4.
	PixelsPerScale = 80 / 0.4

	// MinScale is the smallest scale a decal may take on any axis.
	MinScale = 0.001
)

// Mapper is stateless apart from the registry it reads.
type Mapper struct {
	Registry region.Registry
}

// New returns a Mapper over reg.
func New(reg region.Registry) Mapper {
	return Mapper{Registry: reg}
}

// To3D maps a container-pixel point to a position on r. The point is first
// normalised within r's guide rectangle; the guide's top edge maps to MaxY.
// Z is always the region's FixedZ. Unknown or degenerate regions yield the
// zero vector.
func (m Mapper) To3D(p, container geom.Vec2, r region.Region) geom.Vec3 {
	rect, b, ok := m.lookup(r, container)
	if !ok {
		return geom.Vec3{}
	}
	relX := (p.X - rect.X) / rect.Width
	relY := (p.Y - rect.Y) / rect.Height
	return geom.Vec3{
		X: b.MinX + relX*(b.MaxX-b.MinX),
		Y: b.MaxY - relY*(b.MaxY-b.MinY),
		Z: b.FixedZ,
	}
}

// To2D is the inverse of To3D: it returns the container-pixel point for
// pos on r. Unknown or degenerate regions yield the origin.
func (m Mapper) To2D(pos geom.Vec3, container geom.Vec2, r region.Region) geom.Vec2 {
	rect, b, ok := m.lookup(r, container)
	if !ok {
		return geom.Vec2{}
	}
	relX := (pos.X - b.MinX) / (b.MaxX - b.MinX)
	relY := (b.MaxY - pos.Y) / (b.MaxY - b.MinY)
	return geom.Vec2{
		X: rect.X + relX*rect.Width,
		Y: rect.Y + relY*rect.Height,
	}
}

func (m Mapper) lookup(r region.Region, container geom.Vec2) (geom.Rect, region.Bounds, bool) {
	rect, ok := m.Registry.PixelRectOf(r, container)
	if !ok || rect.Width == 0 || rect.Height == 0 {
		return geom.Rect{}, region.Bounds{}, false
	}
	b, ok := m.Registry.BoundsOf(r)
	if !ok || b.Empty() {
		return geom.Rect{}, region.Bounds{}, false
	}
	return rect, b, true
}

// PixelsToScale converts an overlay size in pixels to a clamped scale.
func PixelsToScale(px float64) float64 {
	s := px / PixelsPerScale
	if s < MinScale {
		return MinScale
	}
	return s
}

// ScaleToPixels converts a scale factor to an overlay size in pixels.
func ScaleToPixels(s float64) float64 {
	return s * PixelsPerScale
}
