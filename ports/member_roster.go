package ports

import (
	"context"

	"prodflow/domain/core"
)

// Member is an entry of the owner roster
type Member struct {
	ID          core.MemberID `json:"id" db:"id"`
	DisplayName string        `json:"display_name" db:"display_name"`
}

// MemberRoster lists the people who may own initiatives
type MemberRoster interface {
	List(ctx context.Context) ([]Member, error)
}

// OwnerValidator decides whether an owner reference is acceptable. Lifecycle
// code only depends on this capability, so stricter policies can replace the
// roster lookup without touching transitions.
type OwnerValidator interface {
	ValidateOwner(ctx context.Context, owner core.MemberID) error
}
