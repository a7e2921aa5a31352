// Package memory provides in-process implementations of the ports, used by
// tests and by the server when no DATABASE_URL is configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"prodflow/domain/core"
	"prodflow/domain/initiative"
	"prodflow/ports"
)

// InitiativeRepository implements ports.InitiativeRepository with in-memory storage
type InitiativeRepository struct {
	items map[core.InitiativeID]*initiative.Initiative
	order []core.InitiativeID
	clock core.Clock
	mu    sync.RWMutex
}

var _ ports.InitiativeRepository = (*InitiativeRepository)(nil)

// NewInitiativeRepository creates an empty repository
func NewInitiativeRepository(clock core.Clock) *InitiativeRepository {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &InitiativeRepository{
		items: make(map[core.InitiativeID]*initiative.Initiative),
		clock: clock,
	}
}

// Get retrieves an initiative by id
func (r *InitiativeRepository) Get(ctx context.Context, id core.InitiativeID) (*initiative.Initiative, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[id]
	if !ok {
		return nil, core.NewNotFoundError("initiative", id.String())
	}
	return it.Clone(), nil
}

// List returns initiatives matching filter in creation order
func (r *InitiativeRepository) List(ctx context.Context, filter initiative.Filter) ([]*initiative.Initiative, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]*initiative.Initiative, 0)
	for _, id := range r.order {
		it := r.items[id]
		if !filter.Matches(it) {
			continue
		}
		results = append(results, it.Clone())
		if filter.Limit > 0 && len(results) >= filter.Limit {
			break
		}
	}
	return results, nil
}

// Create stores a copy of it with a fresh id and timestamps.
// A second delivery-phase child of the same parent is refused.
func (r *InitiativeRepository) Create(ctx context.Context, it *initiative.Initiative) (*initiative.Initiative, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if it.ParentID != "" && it.Phase == initiative.PhaseDelivery && r.hasDeliveryChildLocked(it.ParentID, "") {
		return nil, core.NewDuplicateChildError(it.ParentID.String())
	}

	stored := it.Clone()
	stored.ID = core.NewInitiativeID()
	now := r.clock.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	r.items[stored.ID] = stored
	r.order = append(r.order, stored.ID)
	return stored.Clone(), nil
}

// Update applies patch to the stored initiative
func (r *InitiativeRepository) Update(ctx context.Context, id core.InitiativeID, patch initiative.Patch) (*initiative.Initiative, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.items[id]
	if !ok {
		return nil, core.NewNotFoundError("initiative", id.String())
	}

	next := patch.Apply(cur)
	if next.ParentID != "" && next.Phase == initiative.PhaseDelivery && cur.Phase != initiative.PhaseDelivery &&
		r.hasDeliveryChildLocked(next.ParentID, id) {
		return nil, core.NewDuplicateChildError(next.ParentID.String())
	}
	next.UpdatedAt = r.clock.Now()
	r.items[id] = next
	return next.Clone(), nil
}

// Delete removes an initiative
func (r *InitiativeRepository) Delete(ctx context.Context, id core.InitiativeID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return core.NewNotFoundError("initiative", id.String())
	}
	delete(r.items, id)
	for idx, candidate := range r.order {
		if candidate == id {
			r.order = append(r.order[:idx], r.order[idx+1:]...)
			break
		}
	}
	return nil
}

// Seed inserts initiatives as-is, keeping their ids. Used to load fixtures.
func (r *InitiativeRepository) Seed(items ...*initiative.Initiative) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, it := range items {
		stored := it.Clone()
		if stored.ID.IsEmpty() {
			stored.ID = core.NewInitiativeID()
		}
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = r.clock.Now()
		}
		if _, exists := r.items[stored.ID]; !exists {
			r.order = append(r.order, stored.ID)
		}
		r.items[stored.ID] = stored
	}
}

// Len returns the number of stored initiatives
func (r *InitiativeRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func (r *InitiativeRepository) hasDeliveryChildLocked(parent, except core.InitiativeID) bool {
	for id, it := range r.items {
		if id == except {
			continue
		}
		if it.ParentID == parent && it.Phase == initiative.PhaseDelivery {
			return true
		}
	}
	return false
}

// Snapshot returns every stored initiative sorted by id
func (r *InitiativeRepository) Snapshot() []*initiative.Initiative {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*initiative.Initiative, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, it.Clone())
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}
