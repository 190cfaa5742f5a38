package region

import "shirtforge/internal/geom"

// Registry is an immutable pair of lookup tables. The zero value knows no
// regions; use Default for the built-in garment layout.
type Registry struct {
	order  []Region
	rects  map[Region]geom.Rect
	bounds map[Region]Bounds
}

var defaultRegistry = NewRegistry(All, defaultRects, defaultBounds)

// Default returns the registry for the built-in garment layout.
func Default() Registry { return defaultRegistry }

// NewRegistry copies the given tables. order sets classification priority;
// regions missing from rects are never returned by RegionFor2DPoint.
func NewRegistry(order []Region, rects map[Region]geom.Rect, bounds map[Region]Bounds) Registry {
	r := Registry{
		order:  append([]Region(nil), order...),
		rects:  make(map[Region]geom.Rect, len(rects)),
		bounds: make(map[Region]Bounds, len(bounds)),
	}
	for k, v := range rects {
		r.rects[k] = v
	}
	for k, v := range bounds {
		r.bounds[k] = v
	}
	return r
}

// Regions returns the classification order.
func (g Registry) Regions() []Region {
	return append([]Region(nil), g.order...)
}

// RectOf returns the fractional guide rectangle of r.
func (g Registry) RectOf(r Region) (geom.Rect, bool) {
	rect, ok := g.rects[r]
	return rect, ok
}

// BoundsOf returns the 3D bounds of r.
func (g Registry) BoundsOf(r Region) (Bounds, bool) {
	b, ok := g.bounds[r]
	return b, ok
}

// PixelRectOf returns r's guide rectangle scaled to a container.
func (g Registry) PixelRectOf(r Region, container geom.Vec2) (geom.Rect, bool) {
	rect, ok := g.rects[r]
	if !ok {
		return geom.Rect{}, false
	}
	return rect.Scaled(container), true
}

// RegionFor2DPoint classifies a container-pixel point. The first region in
// order whose rectangle contains p wins; when none does, current is
// returned unchanged.
func (g Registry) RegionFor2DPoint(p, container geom.Vec2, current Region) Region {
	for _, r := range g.order {
		rect, ok := g.rects[r]
		if !ok {
			continue
		}
		if rect.Scaled(container).Contains(p) {
			return r
		}
	}
	return current
}

// CameraYaw is the Y rotation the viewer turns the garment to so that r
// faces the camera.
func (g Registry) CameraYaw(r Region) float64 {
	if b, ok := g.bounds[r]; ok {
		return b.DefaultRotationY
	}
	return 0
}
