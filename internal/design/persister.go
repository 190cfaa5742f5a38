package design

import "shirtforge/internal/logging"

// Persister saves the store's snapshot after every mutation. While a
// gesture is in progress saves are deferred and a single write happens
// when the gesture ends.
type Persister struct {
	store   *Store
	storage Storage
	dirty   bool

	// Saves counts successful writes.
	Saves int
}

// Persist attaches a persister to s.
func Persist(s *Store, st Storage) *Persister {
	p := &Persister{store: s, storage: st}
	s.OnChange.AddListener(p.onChange)
	return p
}

func (p *Persister) onChange(c Change) {
	switch c.Kind {
	case SelectionChanged, RegionChanged:
		// Not part of the persisted record.
		return
	case ManipulationChanged:
		if !p.store.IsManipulating() && p.dirty {
			p.Flush()
		}
		return
	}
	if p.store.IsManipulating() {
		p.dirty = true
		return
	}
	p.Flush()
}

// Flush writes the current snapshot now. Failures are logged.
func (p *Persister) Flush() {
	if err := p.storage.Save(p.store.Snapshot()); err != nil {
		logging.L().Error("design: save failed", "err", err)
		return
	}
	p.dirty = false
	p.Saves++
}
