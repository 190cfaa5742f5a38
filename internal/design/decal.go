// Package design holds the authoritative record of a garment design: the
// colours, the placed decals, the selection and the active region.
package design

import (
	"shirtforge/internal/geom"
	"shirtforge/internal/region"
)

// Kind records how a decal's texture was produced. Placement ignores it.
type Kind string

const (
	KindImage Kind = "image"
	KindText  Kind = "text"
)

// Decal is one placed image or text element.
type Decal struct {
	ID       string        `json:"id"`
	Texture  string        `json:"texture"`
	Kind     Kind          `json:"type"`
	Position geom.Vec3     `json:"position"`
	Rotation geom.Vec3     `json:"rotation"`
	Scale    geom.Vec3     `json:"scale"`
	Region   region.Region `json:"side"`
	Visible  bool          `json:"visible"`
}

// Patch lists the decal fields an update touches. Nil fields are left alone.
type Patch struct {
	Texture  *string
	Position *geom.Vec3
	Rotation *geom.Vec3
	Scale    *geom.Vec3
	Region   *region.Region
	Visible  *bool
}

func (p Patch) apply(d *Decal) {
	if p.Texture != nil {
		d.Texture = *p.Texture
	}
	if p.Position != nil {
		d.Position = *p.Position
	}
	if p.Rotation != nil {
		d.Rotation = *p.Rotation
	}
	if p.Scale != nil {
		d.Scale = *p.Scale
	}
	if p.Region != nil {
		d.Region = *p.Region
	}
	if p.Visible != nil {
		d.Visible = *p.Visible
	}
}

// Ptr is a small helper for building patches from literals.
func Ptr[T any](v T) *T { return &v }
