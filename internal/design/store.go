package design

import (
	"github.com/google/uuid"

	"shirtforge/internal/geom"
	"shirtforge/internal/region"
)

// ChangeKind names what a mutation touched.
type ChangeKind int

const (
	ColorChanged ChangeKind = iota
	BackgroundChanged
	RegionChanged
	SelectionChanged
	ManipulationChanged
	DecalAdded
	DecalUpdated
	DecalRemoved
	DesignReset
	SnapshotApplied
)

var changeNames = [...]string{
	"color", "background", "region", "selection", "manipulation",
	"add", "update", "remove", "reset", "snapshot",
}

func (k ChangeKind) String() string {
	if int(k) < len(changeNames) {
		return changeNames[k]
	}
	return "unknown"
}

// Change is delivered to OnChange listeners after every effective mutation.
type Change struct {
	Kind    ChangeKind
	DecalID string
}

// Store owns the design state. It is single-writer: every call must come
// from the goroutine that owns the store (the UI loop or the session hub).
// Mutations that leave the state unchanged do not fire OnChange.
type Store struct {
	state State
	newID func() string
	seed  *Snapshot

	OnChange Event[Change]
}

type Option func(*Store)

// WithIDGenerator replaces the random decal id source.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithSnapshot seeds the store from persisted data.
func WithSnapshot(snap Snapshot) Option {
	return func(s *Store) {
		s.seed = &snap
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		state: DefaultState(),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.seed != nil {
		s.load(*s.seed)
		s.seed = nil
	}
	return s
}

// State returns a deep copy of the current state.
func (s *Store) State() State { return s.state.clone() }

func (s *Store) Snapshot() Snapshot { return s.state.Snapshot() }

func (s *Store) Color() string               { return s.state.ShirtColor }
func (s *Store) BackgroundColor() string     { return s.state.BackgroundColor }
func (s *Store) ActiveRegion() region.Region { return s.state.ActiveRegion }
func (s *Store) IsManipulating() bool        { return s.state.IsManipulating }

// Decals returns the decals in insertion order.
func (s *Store) Decals() []Decal {
	return append([]Decal{}, s.state.Decals...)
}

func (s *Store) Decal(id string) (Decal, bool) {
	i := s.state.indexOf(id)
	if i < 0 {
		return Decal{}, false
	}
	return s.state.Decals[i], true
}

// ActiveDecalID returns the selected decal id and whether one is selected.
func (s *Store) ActiveDecalID() (string, bool) {
	return s.state.ActiveDecalID, s.state.ActiveDecalID != ""
}

// ActiveDecal returns the selected decal, if it still exists.
func (s *Store) ActiveDecal() (Decal, bool) {
	if s.state.ActiveDecalID == "" {
		return Decal{}, false
	}
	return s.Decal(s.state.ActiveDecalID)
}

func (s *Store) emit(kind ChangeKind, id string) {
	s.OnChange.Invoke(Change{Kind: kind, DecalID: id})
}

func (s *Store) SetColor(c string) {
	if s.state.ShirtColor == c {
		return
	}
	s.state.ShirtColor = c
	s.emit(ColorChanged, "")
}

func (s *Store) SetBackgroundColor(c string) {
	if s.state.BackgroundColor == c {
		return
	}
	s.state.BackgroundColor = c
	s.emit(BackgroundChanged, "")
}

func (s *Store) SetActiveRegion(r region.Region) {
	if s.state.ActiveRegion == r {
		return
	}
	s.state.ActiveRegion = r
	s.emit(RegionChanged, "")
}

// SetActiveDecal selects id; the empty string clears the selection.
func (s *Store) SetActiveDecal(id string) {
	if s.state.ActiveDecalID == id {
		return
	}
	s.state.ActiveDecalID = id
	s.emit(SelectionChanged, id)
}

func (s *Store) SetManipulating(on bool) {
	if s.state.IsManipulating == on {
		return
	}
	s.state.IsManipulating = on
	s.emit(ManipulationChanged, "")
}

// AddDecal appends a decal on the active region using that region's preset
// pose, selects it and returns its id.
func (s *Store) AddDecal(texture string, kind Kind) string {
	r := s.state.ActiveRegion
	p := region.PresetOf(r)
	d := Decal{
		ID:       s.newID(),
		Texture:  texture,
		Kind:     kind,
		Position: p.Position,
		Rotation: p.Rotation,
		Scale:    geom.V3(region.DefaultScale, region.DefaultScale, region.DefaultScale),
		Region:   r,
		Visible:  true,
	}
	s.state.Decals = append(s.state.Decals, d)
	s.state.ActiveDecalID = d.ID
	s.emit(DecalAdded, d.ID)
	return d.ID
}

// UpdateDecal merges p into the decal with the given id. Unknown ids and
// patches that change nothing are ignored.
func (s *Store) UpdateDecal(id string, p Patch) {
	i := s.state.indexOf(id)
	if i < 0 {
		return
	}
	d := s.state.Decals[i]
	p.apply(&d)
	if d == s.state.Decals[i] {
		return
	}
	s.state.Decals[i] = d
	s.emit(DecalUpdated, id)
}

// RemoveDecal deletes the decal and clears the selection if it was selected.
func (s *Store) RemoveDecal(id string) {
	i := s.state.indexOf(id)
	if i < 0 {
		return
	}
	s.state.Decals = append(s.state.Decals[:i:i], s.state.Decals[i+1:]...)
	if s.state.ActiveDecalID == id {
		s.state.ActiveDecalID = ""
	}
	s.emit(DecalRemoved, id)
}

// Reset restores every field to DefaultState.
func (s *Store) Reset() {
	s.state = DefaultState()
	s.emit(DesignReset, "")
}

// ApplySnapshot replaces the colours and decals, keeping the active region.
// The selection is cleared if the selected decal is gone.
func (s *Store) ApplySnapshot(snap Snapshot) {
	s.load(snap)
	if s.state.indexOf(s.state.ActiveDecalID) < 0 {
		s.state.ActiveDecalID = ""
	}
	s.emit(SnapshotApplied, "")
}

func (s *Store) load(snap Snapshot) {
	s.state.ShirtColor = DefaultShirtColor
	if snap.ShirtColor != "" {
		s.state.ShirtColor = snap.ShirtColor
	}
	s.state.BackgroundColor = DefaultBackgroundColor
	if snap.BackgroundColor != "" {
		s.state.BackgroundColor = snap.BackgroundColor
	}
	s.state.Decals = s.sanitize(snap.Decals)
}

// sanitize fills holes left by older or hand-edited records.
func (s *Store) sanitize(in []Decal) []Decal {
	out := make([]Decal, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, d := range in {
		if d.ID == "" || seen[d.ID] {
			d.ID = s.newID()
		}
		seen[d.ID] = true
		if d.Kind == "" {
			d.Kind = KindImage
		}
		if _, ok := region.Parse(string(d.Region)); !ok {
			d.Region = region.Front
		}
		out = append(out, d)
	}
	return out
}
