package timeline

import (
	"sync"

	"github.com/CrestNiraj12/fedtimeline/domain"
)

// Override is client-local state replacing what was fetched for one item.
// Nil fields leave the fetched value in place.
type Override struct {
	Status *domain.Status
	View   *domain.ViewState
}

// OverrideStore maps item ids to their latest override. A write for an id
// replaces the previous entry wholesale.
type OverrideStore struct {
	mu      sync.RWMutex
	entries map[string]Override
}

// NewOverrideStore returns an empty store.
func NewOverrideStore() *OverrideStore {
	return &OverrideStore{entries: make(map[string]Override)}
}

// Get returns the override for id, if any.
func (s *OverrideStore) Get(id string) (Override, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.entries[id]
	return o, ok
}

// Put stores o for id, replacing any existing entry.
func (s *OverrideStore) Put(id string, o Override) {
	if o.Status != nil {
		st := o.Status.Clone()
		o.Status = &st
	}
	if o.View != nil {
		v := *o.View
		o.View = &v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = o
}

// Delete drops the override for id.
func (s *OverrideStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
}

// Clear wipes every override.
func (s *OverrideStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]Override)
}

// Len returns the number of stored overrides.
func (s *OverrideStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// apply combines a fetched status with its override.
func (o Override) apply(s domain.Status, view domain.ViewState) (domain.Status, domain.ViewState) {
	if o.Status != nil {
		s = o.Status.Clone()
	}
	if o.View != nil {
		view = *o.View
	}
	return s, view
}
