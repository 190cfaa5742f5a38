package placement

import (
	"shirtforge/internal/design"
	"shirtforge/internal/geom"
	"shirtforge/internal/logging"
	"shirtforge/internal/mapper"
)

// Controller applies gestures to the selected decal. Only one gesture is
// tracked at a time. A Start while one is open is rejected, and Move and
// End must match the open gesture's kind and decal.
type Controller struct {
	store     *design.Store
	mapper    mapper.Mapper
	container geom.Vec2
	overlay   Overlay

	active    bool
	kind      Kind
	id        string
	startRect geom.Rect
	startRot  geom.Vec3
}

func NewController(store *design.Store, m mapper.Mapper, container geom.Vec2) *Controller {
	return &Controller{
		store:     store,
		mapper:    m,
		container: container,
		overlay:   nopOverlay{},
	}
}

// SetOverlay installs the sink for live visual updates; nil disables it.
func (c *Controller) SetOverlay(o Overlay) {
	if o == nil {
		o = nopOverlay{}
	}
	c.overlay = o
}

// SetContainer updates the guide size when the layout changes.
func (c *Controller) SetContainer(size geom.Vec2) { c.container = size }

func (c *Controller) Container() geom.Vec2 { return c.container }

func (c *Controller) Mapper() mapper.Mapper { return c.mapper }

// Active reports whether a gesture is open, and on which decal.
func (c *Controller) Active() (string, bool) { return c.id, c.active }

// ElementRect is the on-screen box of d, derived from its stored pose.
func (c *Controller) ElementRect(d design.Decal) geom.Rect {
	center := c.mapper.To2D(d.Position, c.container, d.Region)
	return geom.CenteredAt(center,
		mapper.ScaleToPixels(d.Scale.X),
		mapper.ScaleToPixels(d.Scale.Y))
}

// OverlayOf is the resting style of d's overlay element.
func (c *Controller) OverlayOf(d design.Decal) OverlayStyle {
	r := c.ElementRect(d)
	return OverlayStyle{
		Left: r.X, Top: r.Y, Width: r.Width, Height: r.Height,
		RotationDeg: -geom.Rad2Deg(d.Rotation.Z),
	}
}

// Click selects id. It reports whether the click was consumed, in which
// case it must not reach the guide background.
func (c *Controller) Click(id string) bool {
	if _, ok := c.store.Decal(id); !ok {
		return false
	}
	c.store.SetActiveDecal(id)
	return true
}

// ClickBackground clears the selection.
func (c *Controller) ClickBackground() {
	c.store.SetActiveDecal("")
}

// Handle applies g and reports whether it had any effect. Gestures on a
// decal other than the selected one are ignored, as are Move and End
// without a matching Start.
func (c *Controller) Handle(g Gesture) bool {
	switch g.Phase {
	case Start:
		return c.begin(g)
	case Move:
		return c.move(g)
	case End:
		return c.end(g)
	}
	return false
}

// owns reports whether g belongs to the open gesture.
func (c *Controller) owns(g Gesture) bool {
	if !c.active || g.Kind != c.kind {
		return false
	}
	return g.DecalID == "" || g.DecalID == c.id
}

// Abort ends the open gesture whatever its kind, for when its source went
// away without sending End.
func (c *Controller) Abort() bool {
	if !c.active {
		return false
	}
	return c.end(Gesture{Phase: End, Kind: c.kind, DecalID: c.id})
}

func (c *Controller) begin(g Gesture) bool {
	if c.active {
		logging.L().Debug("placement: start rejected, gesture open", "kind", g.Kind, "open", c.kind, "id", c.id)
		return false
	}
	selected, ok := c.store.ActiveDecalID()
	if !ok {
		return false
	}
	id := g.DecalID
	if id == "" {
		id = selected
	}
	if id != selected {
		return false
	}
	d, ok := c.store.Decal(id)
	if !ok {
		return false
	}
	c.active = true
	c.kind = g.Kind
	c.id = id
	c.startRect = c.ElementRect(d)
	c.startRot = d.Rotation
	c.store.SetManipulating(true)
	logging.L().Debug("placement: gesture start", "kind", g.Kind, "id", id)
	return true
}

func (c *Controller) move(g Gesture) bool {
	if !c.owns(g) {
		return false
	}
	d, ok := c.store.Decal(c.id)
	if !ok {
		// Removed mid-gesture.
		return false
	}
	switch c.kind {
	case Drag:
		c.drag(d, g.Delta)
	case Resize:
		c.resize(d, g.Rect)
	case Rotate:
		c.rotate(d, g.Angle)
	default:
		return false
	}
	return true
}

func (c *Controller) end(g Gesture) bool {
	if !c.owns(g) {
		return false
	}
	logging.L().Debug("placement: gesture end", "kind", c.kind, "id", c.id)
	c.active = false
	c.id = ""
	c.store.SetManipulating(false)
	return true
}

func (c *Controller) drag(d design.Decal, delta geom.Vec2) {
	box := geom.Rect{
		X:      c.startRect.X + delta.X,
		Y:      c.startRect.Y + delta.Y,
		Width:  c.startRect.Width,
		Height: c.startRect.Height,
	}
	c.overlay.Apply(d.ID, OverlayStyle{
		Left: box.X, Top: box.Y, Width: box.Width, Height: box.Height,
		RotationDeg: -geom.Rad2Deg(d.Rotation.Z),
	})

	center := box.Center()
	reg := c.mapper.Registry
	target := reg.RegionFor2DPoint(center, c.container, d.Region)
	rot := d.Rotation
	if target != d.Region {
		c.store.SetActiveRegion(target)
		if b, ok := reg.BoundsOf(target); ok {
			rot.Y = b.DefaultRotationY
		}
		logging.L().Debug("placement: region change", "id", d.ID, "from", d.Region, "to", target)
	}
	pos := c.mapper.To3D(center, c.container, target)
	c.store.UpdateDecal(d.ID, design.Patch{
		Position: &pos,
		Region:   &target,
		Rotation: &rot,
	})
}

func (c *Controller) resize(d design.Decal, box geom.Rect) {
	c.overlay.Apply(d.ID, OverlayStyle{
		Left: box.X, Top: box.Y, Width: box.Width, Height: box.Height,
		RotationDeg: -geom.Rad2Deg(d.Rotation.Z),
	})
	scale := geom.Vec3{
		X: mapper.PixelsToScale(box.Width),
		Y: mapper.PixelsToScale(box.Height),
		Z: d.Scale.Z,
	}
	c.store.UpdateDecal(d.ID, design.Patch{Scale: &scale})
}

// rotate maps a clockwise on-screen angle to a negative Z rotation so the
// decal turns the same way on the model.
func (c *Controller) rotate(d design.Decal, angle float64) {
	box := c.ElementRect(d)
	startDeg := -geom.Rad2Deg(c.startRot.Z)
	c.overlay.Apply(d.ID, OverlayStyle{
		Left: box.X, Top: box.Y, Width: box.Width, Height: box.Height,
		RotationDeg: startDeg + angle,
	})
	rot := d.Rotation
	rot.Z = c.startRot.Z - geom.Deg2Rad(angle)
	c.store.UpdateDecal(d.ID, design.Patch{Rotation: &rot})
}
