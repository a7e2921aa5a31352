package memory

import (
	"context"
	"sync"

	"prodflow/ports"
)

// Roster is a fixed, in-memory member roster
type Roster struct {
	members []ports.Member
	mu      sync.RWMutex
}

var _ ports.MemberRoster = (*Roster)(nil)

// NewRoster creates a roster holding members
func NewRoster(members ...ports.Member) *Roster {
	return &Roster{members: append([]ports.Member(nil), members...)}
}

// List returns the members in insertion order
func (r *Roster) List(ctx context.Context) ([]ports.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]ports.Member(nil), r.members...), nil
}

// Add appends a member, replacing any entry with the same id
func (r *Roster) Add(m ports.Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for idx, existing := range r.members {
		if existing.ID == m.ID {
			r.members[idx] = m
			return
		}
	}
	r.members = append(r.members, m)
}
