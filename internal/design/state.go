package design

import (
	"slices"

	"shirtforge/internal/region"
)

const (
	DefaultShirtColor      = "#ffffff"
	DefaultBackgroundColor = "#808080"
)

// State is a full copy of the design. ActiveDecalID is empty when nothing
// is selected.
type State struct {
	ShirtColor      string
	BackgroundColor string
	Decals          []Decal
	ActiveDecalID   string
	ActiveRegion    region.Region
	IsManipulating  bool
}

// DefaultState is the state of a new session.
func DefaultState() State {
	return State{
		ShirtColor:      DefaultShirtColor,
		BackgroundColor: DefaultBackgroundColor,
		Decals:          []Decal{},
		ActiveRegion:    region.Front,
	}
}

func (s State) clone() State {
	s.Decals = append([]Decal{}, s.Decals...)
	return s
}

// Snapshot is the persisted subset of State.
type Snapshot struct {
	ShirtColor      string  `json:"shirtColor"`
	BackgroundColor string  `json:"backgroundColor"`
	Decals          []Decal `json:"decals"`
}

func (s State) Snapshot() Snapshot {
	return Snapshot{
		ShirtColor:      s.ShirtColor,
		BackgroundColor: s.BackgroundColor,
		Decals:          append([]Decal{}, s.Decals...),
	}
}

func (s State) indexOf(id string) int {
	return slices.IndexFunc(s.Decals, func(d Decal) bool { return d.ID == id })
}
