package raycast

import (
	"errors"

	"shirtforge/internal/design"
	"shirtforge/internal/geom"
	"shirtforge/internal/logging"
)

var ErrDegenerateNormal = errors.New("raycast: zero-length normal")

var worldUp = geom.V3(0, 1, 0)

// LookRotation returns XYZ Euler angles for the basis whose Z axis is
// normal and whose Y axis is as close to up as possible. When normal is
// parallel to up, -Z is used as the up hint instead.
func LookRotation(normal, up geom.Vec3) (geom.Vec3, error) {
	z := normal.Normalize()
	if z == (geom.Vec3{}) {
		return geom.Vec3{}, ErrDegenerateNormal
	}
	x := up.Cross(z)
	if x.Len() < 1e-9 {
		x = geom.V3(0, 0, -1).Cross(z)
		if x.Len() < 1e-9 {
			x = geom.V3(1, 0, 0).Cross(z)
		}
	}
	x = x.Normalize()
	y := z.Cross(x)
	m := geom.Basis(x, y, z)
	rot := m.ToEulerXYZ()
	// Adding zero turns -0 into 0.
	rot.X, rot.Y, rot.Z = rot.X+0, rot.Y+0, rot.Z+0
	return rot, nil
}

// Adapter writes raycast hits into the store. The region of the decal is
// not reassigned on this path.
type Adapter struct {
	store *design.Store
}

func NewAdapter(s *design.Store) *Adapter {
	return &Adapter{store: s}
}

// Place moves decal id to the hit point, facing along the hit normal.
// Unknown ids are ignored.
func (a *Adapter) Place(id string, h Hit) error {
	rot, err := LookRotation(h.Normal, worldUp)
	if err != nil {
		return err
	}
	pos := h.Point
	a.store.UpdateDecal(id, design.Patch{Position: &pos, Rotation: &rot})
	logging.L().Debug("raycast: placed", "id", id, "point", pos, "region", h.Region)
	return nil
}

// PlaceSelected places the selected decal, if any. It reports whether a
// decal was placed.
func (a *Adapter) PlaceSelected(h Hit) (bool, error) {
	id, ok := a.store.ActiveDecalID()
	if !ok {
		return false, nil
	}
	if err := a.Place(id, h); err != nil {
		return false, err
	}
	return true, nil
}
