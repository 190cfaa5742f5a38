// Package live serves a design session over WebSocket: every connected
// client receives the design after each change and may send the same
// operations the desktop designer performs.
package live

import (
	"fmt"

	"shirtforge/internal/design"
	"shirtforge/internal/geom"
	"shirtforge/internal/placement"
	"shirtforge/internal/region"
)

// Message types.
const (
	TypeSnapshot   = "snapshot"
	TypeError      = "error"
	TypeSelect     = "select"
	TypeGesture    = "gesture"
	TypeAdd        = "add"
	TypeRemove     = "remove"
	TypeVisible    = "visible"
	TypeColor      = "color"
	TypeBackground = "background"
	TypeRegion     = "region"
	TypeReset      = "reset"
	TypePlace      = "place"
)

// Message is the single envelope used in both directions.
type Message struct {
	Type     string `json:"type"`
	ClientID string `json:"client_id,omitempty"`

	ID      string        `json:"id,omitempty"`
	Color   string        `json:"color,omitempty"`
	Region  region.Region `json:"region,omitempty"`
	Texture string        `json:"texture,omitempty"`
	Kind    design.Kind   `json:"kind,omitempty"`
	Text    string        `json:"text,omitempty"`
	Visible *bool         `json:"visible,omitempty"`

	Gesture *GestureMsg `json:"gesture,omitempty"`
	Hit     *HitMsg     `json:"hit,omitempty"`

	State *StateMsg `json:"state,omitempty"`
	Error string    `json:"error,omitempty"`
}

// GestureMsg carries a placement gesture in guide pixels.
type GestureMsg struct {
	Phase string     `json:"phase"`
	Kind  string     `json:"kind"`
	ID    string     `json:"id,omitempty"`
	Delta [2]float64 `json:"delta"`
	Rect  [4]float64 `json:"rect"`
	Angle float64    `json:"angle,omitempty"`
}

type HitMsg struct {
	Point  geom.Vec3 `json:"point"`
	Normal geom.Vec3 `json:"normal"`
}

// StateMsg is the full design as clients see it. Guide is the pixel size
// gestures are measured against.
type StateMsg struct {
	ShirtColor      string         `json:"shirtColor"`
	BackgroundColor string         `json:"backgroundColor"`
	Decals          []design.Decal `json:"decals"`
	ActiveDecalID   string         `json:"activeDecalId,omitempty"`
	ActiveRegion    region.Region  `json:"activeRegion"`
	IsManipulating  bool           `json:"isManipulating"`
	Guide           [2]float64     `json:"guide"`
}

func stateMsg(st design.State, guide geom.Vec2) *StateMsg {
	return &StateMsg{
		ShirtColor:      st.ShirtColor,
		BackgroundColor: st.BackgroundColor,
		Decals:          st.Decals,
		ActiveDecalID:   st.ActiveDecalID,
		ActiveRegion:    st.ActiveRegion,
		IsManipulating:  st.IsManipulating,
		Guide:           [2]float64{guide.X, guide.Y},
	}
}

var phases = map[string]placement.Phase{
	"start": placement.Start,
	"move":  placement.Move,
	"end":   placement.End,
}

var kinds = map[string]placement.Kind{
	"drag":   placement.Drag,
	"resize": placement.Resize,
	"rotate": placement.Rotate,
}

func (g GestureMsg) toGesture() (placement.Gesture, error) {
	phase, ok := phases[g.Phase]
	if !ok {
		return placement.Gesture{}, fmt.Errorf("unknown gesture phase %q", g.Phase)
	}
	kind, ok := kinds[g.Kind]
	if !ok {
		return placement.Gesture{}, fmt.Errorf("unknown gesture kind %q", g.Kind)
	}
	return placement.Gesture{
		Phase:   phase,
		Kind:    kind,
		DecalID: g.ID,
		Delta:   geom.Vec2{X: g.Delta[0], Y: g.Delta[1]},
		Rect:    geom.Rect{X: g.Rect[0], Y: g.Rect[1], Width: g.Rect[2], Height: g.Rect[3]},
		Angle:   g.Angle,
	}, nil
}
