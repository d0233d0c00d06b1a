package store

import (
	"sort"
	"sync"

	"github.com/harborops/recvplan/core/model"
	"github.com/harborops/recvplan/core/plan"
)

// MemoryStore is an in-memory plan repository. It also owns the station-wide
// active-plan slot: AcquireActive is a compare-and-swap under the store lock,
// which is what makes two concurrent start requests mutually exclusive.
type MemoryStore struct {
	mu       sync.RWMutex
	plans    map[string]model.Plan
	activeID string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{plans: map[string]model.Plan{}}
}

var _ plan.Repository = (*MemoryStore)(nil)

// Get returns a deep copy of the stored plan.
func (s *MemoryStore) Get(id string) (model.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.plans[id]
	if !ok {
		return model.Plan{}, plan.ErrNotFound
	}
	return p.Clone(), nil
}

// Save stores a deep copy of the plan, replacing any previous version.
func (s *MemoryStore) Save(p model.Plan) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.plans[p.ID] = p.Clone()
	s.mu.Unlock()
	return nil
}

// List returns copies of all plans ordered by planned start.
func (s *MemoryStore) List() ([]model.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Plan, 0, len(s.plans))
	for _, p := range s.plans {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlannedStart.Before(out[j].PlannedStart) })
	return out, nil
}

// Delete removes the plan. Unknown ids are reported.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.plans[id]; !ok {
		return plan.ErrNotFound
	}
	delete(s.plans, id)
	return nil
}

// AcquireActive claims the active slot for planID if it is free or already
// held by planID.
func (s *MemoryStore) AcquireActive(planID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeID != "" && s.activeID != planID {
		return false
	}
	s.activeID = planID
	return true
}

// ReleaseActive frees the slot if held by planID.
func (s *MemoryStore) ReleaseActive(planID string) {
	s.mu.Lock()
	if s.activeID == planID {
		s.activeID = ""
	}
	s.mu.Unlock()
}

// ActiveID returns the id of the plan currently holding the slot, if any.
func (s *MemoryStore) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}
