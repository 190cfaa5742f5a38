// Package raycast places decals from hits on the 3D garment, bypassing the
// 2D guide.
package raycast

import (
	"math"

	"shirtforge/internal/geom"
	"shirtforge/internal/region"
)

// Hit is a ray intersection with a garment panel, in model space.
type Hit struct {
	Point    geom.Vec3
	Normal   geom.Vec3
	Distance float64
	Region   region.Region
}

// Panel is an axis-aligned box standing in for one garment surface.
type Panel struct {
	Region   region.Region
	Min, Max geom.Vec3
}

// GarmentPanels is the box body used for picking: the torso split into a
// front and a back half, and a sleeve on each side.
func GarmentPanels() []Panel {
	return []Panel{
		{Region: region.Front, Min: geom.V3(-0.5, -0.5, 0), Max: geom.V3(0.5, 0.5, 0.1)},
		{Region: region.Back, Min: geom.V3(-0.5, -0.5, -0.1), Max: geom.V3(0.5, 0.5, 0)},
		{Region: region.LeftSleeve, Min: geom.V3(0.5, -0.2, -0.05), Max: geom.V3(0.7, 0.2, 0.05)},
		{Region: region.RightSleeve, Min: geom.V3(-0.7, -0.2, -0.05), Max: geom.V3(-0.5, 0.2, 0.05)},
	}
}

// Cast returns the closest panel hit along the ray within maxDistance.
func Cast(origin, direction geom.Vec3, panels []Panel, maxDistance float64) (Hit, bool) {
	direction = direction.Normalize()
	if direction == (geom.Vec3{}) {
		return Hit{}, false
	}
	closest := Hit{Distance: maxDistance}
	found := false
	for _, p := range panels {
		h, ok := castBox(origin, direction, p, maxDistance)
		if ok && h.Distance < closest.Distance {
			closest = h
			found = true
		}
	}
	return closest, found
}

func castBox(origin, dir geom.Vec3, p Panel, maxDistance float64) (Hit, bool) {
	tmin, tmax := math.Inf(-1), math.Inf(1)
	o := [3]float64{origin.X, origin.Y, origin.Z}
	d := [3]float64{dir.X, dir.Y, dir.Z}
	lo := [3]float64{p.Min.X, p.Min.Y, p.Min.Z}
	hi := [3]float64{p.Max.X, p.Max.Y, p.Max.Z}

	for i := 0; i < 3; i++ {
		if d[i] == 0 {
			if o[i] < lo[i] || o[i] > hi[i] {
				return Hit{}, false
			}
			continue
		}
		t1 := (lo[i] - o[i]) / d[i]
		t2 := (hi[i] - o[i]) / d[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return Hit{}, false
		}
	}
	if tmax < 0 || tmin > maxDistance {
		return Hit{}, false
	}
	t := tmin
	if t < 0 {
		t = tmax
	}
	if t > maxDistance {
		return Hit{}, false
	}

	point := origin.Add(dir.Scale(t))

	// Face normal from whichever side the point sits on.
	const eps = 1e-6
	var normal geom.Vec3
	switch {
	case math.Abs(point.X-p.Min.X) < eps:
		normal = geom.V3(-1, 0, 0)
	case math.Abs(point.X-p.Max.X) < eps:
		normal = geom.V3(1, 0, 0)
	case math.Abs(point.Y-p.Min.Y) < eps:
		normal = geom.V3(0, -1, 0)
	case math.Abs(point.Y-p.Max.Y) < eps:
		normal = geom.V3(0, 1, 0)
	case math.Abs(point.Z-p.Min.Z) < eps:
		normal = geom.V3(0, 0, -1)
	default:
		normal = geom.V3(0, 0, 1)
	}
	return Hit{Point: point, Normal: normal, Distance: t, Region: p.Region}, true
}
