package ports

import (
	"context"

	"prodflow/domain/core"
	"prodflow/domain/initiative"
)

// InitiativeRepository is the external persistence collaborator.
//
// Implementations return errors wrapping core.ErrNotFound for missing rows and
// core.ErrDuplicateChild when Create would give an experiment a second
// delivery-phase child. Last writer wins on Update.
type InitiativeRepository interface {
	// Get retrieves one initiative by id
	Get(ctx context.Context, id core.InitiativeID) (*initiative.Initiative, error)

	// List returns initiatives matching the filter, oldest first
	List(ctx context.Context, filter initiative.Filter) ([]*initiative.Initiative, error)

	// Create persists a new initiative, assigning its id and created_at
	Create(ctx context.Context, it *initiative.Initiative) (*initiative.Initiative, error)

	// Update applies a partial update and returns the stored result
	Update(ctx context.Context, id core.InitiativeID, patch initiative.Patch) (*initiative.Initiative, error)

	// Delete removes an initiative permanently
	Delete(ctx context.Context, id core.InitiativeID) error
}
